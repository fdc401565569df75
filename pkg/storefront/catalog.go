package storefront

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// filterAll is the "no filter" value used by the shop's dropdowns.
const filterAll = "all"

func (f PerfumeFilter) values() url.Values {
	v := url.Values{}
	add := func(key, val string) {
		val = strings.TrimSpace(val)
		if val == "" || val == filterAll {
			return
		}
		v.Set(key, val)
	}

	add("q", f.Query)
	add("brand", f.Brand)
	add("concentration", f.Concentration)
	add("targetAudience", f.TargetAudience)
	return v
}

// ListPerfumes returns the catalog, narrowed by filter.
func (c *Client) ListPerfumes(ctx context.Context, filter PerfumeFilter) ([]Perfume, error) {
	r, err := newRequest(http.MethodGet, "/perfumes", nil)
	if err != nil {
		return nil, err
	}
	r.query = filter.values()

	var perfumes []Perfume
	if err := c.doJSON(ctx, r, &perfumes); err != nil {
		return nil, err
	}
	return perfumes, nil
}

// GetPerfume returns one perfume with its brand and reviews.
func (c *Client) GetPerfume(ctx context.Context, id string) (*Perfume, error) {
	r, err := newRequest(http.MethodGet, "/perfumes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	perfume := &Perfume{}
	if err := c.doJSON(ctx, r, perfume); err != nil {
		return nil, err
	}
	return perfume, nil
}

// ListBrands returns every brand.
func (c *Client) ListBrands(ctx context.Context) ([]Brand, error) {
	r, err := newRequest(http.MethodGet, "/brands", nil)
	if err != nil {
		return nil, err
	}

	var brands []Brand
	if err := c.doJSON(ctx, r, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// Validate checks the review locally with the same rules the storefront
// enforces.
func (in CommentInput) Validate() error {
	if in.Rating < 1 || in.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", ErrInvalidComment, in.Rating)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidComment)
	}
	return nil
}

// AddComment posts a review on a perfume. It requires a logged in session.
func (c *Client) AddComment(ctx context.Context, perfumeID string, in CommentInput) (*Comment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)

	r, err := newRequest(http.MethodPost, "/perfumes/"+url.PathEscape(perfumeID)+"/comments", in)
	if err != nil {
		return nil, err
	}

	comment := &Comment{}
	if err := c.doJSON(ctx, r, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
