package storefront_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scentshop/perfumery/pkg/storefront"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(base, fallback string) *storefront.Client {
	c, err := storefront.New(storefront.Config{BaseURL: base, FallbackURL: fallback})
	Expect(err).NotTo(HaveOccurred())
	return c
}

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("New", func() {
		It("requires a base URL", func() {
			_, err := storefront.New(storefront.Config{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects non-http base URLs", func() {
			_, err := storefront.New(storefront.Config{BaseURL: "ftp://example.com/api"})
			Expect(err).To(HaveOccurred())
		})

		It("keeps the /api prefix when building paths", func() {
			var path string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				writeJSON(w, http.StatusOK, []any{})
			}))
			DeferCleanup(srv.Close)

			_, err := newClient(srv.URL+"/api/", "").ListBrands(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("/api/brands"))
		})
	})

	Describe("retry policy", func() {
		It("retries a 5xx once against the fallback URL", func() {
			var primaryHits, fallbackHits atomic.Int32
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				primaryHits.Add(1)
				writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream down"})
			}))
			DeferCleanup(primary.Close)
			fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fallbackHits.Add(1)
				writeJSON(w, http.StatusOK, []map[string]string{{"_id": "b1", "brandName": "Chanel"}})
			}))
			DeferCleanup(fallback.Close)

			brands, err := newClient(primary.URL, fallback.URL).ListBrands(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(brands).To(HaveLen(1))
			Expect(brands[0].Name).To(Equal("Chanel"))
			Expect(primaryHits.Load()).To(BeEquivalentTo(1))
			Expect(fallbackHits.Load()).To(BeEquivalentTo(1))
		})

		It("retries the base URL when no fallback is configured", func() {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if hits.Add(1) == 1 {
					writeJSON(w, http.StatusInternalServerError, nil)
					return
				}
				writeJSON(w, http.StatusOK, []any{})
			}))
			DeferCleanup(srv.Close)

			_, err := newClient(srv.URL, "").ListBrands(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(hits.Load()).To(BeEquivalentTo(2))
		})

		It("retries a network error", func() {
			dead := httptest.NewServer(http.NotFoundHandler())
			deadURL := dead.URL
			dead.Close()

			fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, []any{})
			}))
			DeferCleanup(fallback.Close)

			_, err := newClient(deadURL, fallback.URL).ListBrands(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("does not retry a 4xx", func() {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "Perfume not found"})
			}))
			DeferCleanup(srv.Close)

			_, err := newClient(srv.URL, "").GetPerfume(ctx, "p99")
			Expect(storefront.IsNotFound(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Perfume not found"))
			Expect(hits.Load()).To(BeEquivalentTo(1))
		})

		It("returns the original error when the retry also fails", func() {
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "primary"})
			}))
			DeferCleanup(primary.Close)
			fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]string{"message": "fallback"})
			}))
			DeferCleanup(fallback.Close)

			_, err := newClient(primary.URL, fallback.URL).ListBrands(ctx)

			var apiErr *storefront.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusServiceUnavailable))
			Expect(apiErr.Message).To(Equal("primary"))
		})
	})

	Describe("session cookies", func() {
		It("sends cookies set by login on later requests", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/api/login":
					http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok-1", Path: "/"})
					writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "m2", "email": "john@example.com", "name": "John Doe"}})
				case "/api/profile":
					ck, err := r.Cookie("session")
					if err != nil || ck.Value != "tok-1" {
						writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
						return
					}
					writeJSON(w, http.StatusOK, map[string]any{"id": "m2", "email": "john@example.com", "name": "John Doe"})
				}
			}))
			DeferCleanup(srv.Close)

			c := newClient(srv.URL+"/api", "")
			_, err := c.Profile(ctx)
			Expect(storefront.IsUnauthorized(err)).To(BeTrue())

			u, err := c.Login(ctx, "john@example.com", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("m2"))

			u, err = c.Profile(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("John Doe"))

			cookies := c.Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Value).To(Equal("tok-1"))

			resumed, err := storefront.New(storefront.Config{BaseURL: srv.URL + "/api"}, storefront.WithCookies(cookies))
			Expect(err).NotTo(HaveOccurred())
			_, err = resumed.Profile(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("clears cookies on logout even when the backend fails", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusBadRequest, nil)
			}))
			DeferCleanup(srv.Close)

			c, err := storefront.New(storefront.Config{BaseURL: srv.URL},
				storefront.WithCookies([]*http.Cookie{{Name: "session", Value: "x"}}))
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Cookies()).To(HaveLen(1))

			c.Logout(ctx)
			Expect(c.Cookies()).To(BeEmpty())
		})
	})

	Describe("Login", func() {
		It("accepts an unwrapped user", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"id": "m1", "email": "admin@example.com", "name": "Admin User"})
			}))
			DeferCleanup(srv.Close)

			u, err := newClient(srv.URL, "").Login(ctx, "admin@example.com", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("m1"))
			Expect(u.IsAdmin()).To(BeTrue())
		})

		It("falls back to the profile when login returns no user", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/profile" {
					writeJSON(w, http.StatusOK, map[string]any{"id": "m3", "email": "jane@example.com", "name": "Jane Smith"})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"message": "ok"})
			}))
			DeferCleanup(srv.Close)

			u, err := newClient(srv.URL, "").Login(ctx, "jane@example.com", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Name).To(Equal("Jane Smith"))
		})

		It("registers and then logs in", func() {
			var paths []string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				paths = append(paths, r.URL.Path)
				writeJSON(w, http.StatusOK, map[string]any{"id": "m9", "email": "new@example.com", "name": "New"})
			}))
			DeferCleanup(srv.Close)

			u, err := newClient(srv.URL, "").Register(ctx, "new@example.com", "secret", "New")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal("m9"))
			Expect(paths).To(Equal([]string{"/register", "/login"}))
		})
	})
})

var _ = Describe("User.IsAdmin", func() {
	It("is false for a nil user", func() {
		var u *storefront.User
		Expect(u.IsAdmin()).To(BeFalse())
	})

	It("honours the admin flag", func() {
		Expect((&storefront.User{Email: "x@example.com", Admin: true}).IsAdmin()).To(BeTrue())
	})

	It("falls back to the admin email set", func() {
		Expect((&storefront.User{Email: "admin@example.com"}).IsAdmin()).To(BeTrue())
		Expect((&storefront.User{Email: "john@example.com"}).IsAdmin()).To(BeFalse())
	})
})
