package api

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scentshop/perfumery/pkg/storefront"
)

var (
	errNotFound        = errors.New("not found")
	errBadCredentials  = errors.New("invalid email or password")
	errEmailRegistered = errors.New("email already registered")
	errWrongPassword   = errors.New("current password is incorrect")
)

type account struct {
	member   storefront.Member
	gender   string
	password string
}

func (a *account) user() *storefront.User {
	return &storefront.User{
		ID:     a.member.ID,
		Email:  a.member.Email,
		Name:   a.member.Name,
		Admin:  a.member.IsAdmin,
		YOB:    a.member.YOB,
		Gender: a.gender,
	}
}

type summaryEntry struct {
	summary     string
	similar     []string
	generatedAt time.Time
}

// store is the in-memory state of the mock storefront. All methods are safe
// for concurrent use and return copies.
type store struct {
	mu sync.RWMutex

	brands    []storefront.Brand
	perfumes  []storefront.Perfume
	comments  []storefront.Comment
	accounts  map[string]*account
	sessions  map[string]string
	summaries map[string]summaryEntry

	nextMember  int
	nextComment int
	now         func() time.Time
}

func newStore() *store {
	s := &store{
		brands:    slices.Clone(seedBrands),
		perfumes:  slices.Clone(seedPerfumes),
		accounts:  make(map[string]*account, len(seedMembers)),
		sessions:  make(map[string]string),
		summaries: make(map[string]summaryEntry, len(seedSummaries)),
		now:       time.Now,
	}

	for _, m := range seedMembers {
		s.accounts[m.ID] = &account{member: m.Member, gender: m.gender, password: seedPassword}
	}
	s.nextMember = len(seedMembers)

	for _, c := range seedComments {
		s.comments = append(s.comments, storefront.Comment{
			ID:        c.id,
			Rating:    c.rating,
			Content:   c.content,
			Author:    s.accounts[c.author].member,
			Perfume:   c.perfume,
			CreatedAt: date(c.createdAt),
		})
	}
	s.nextComment = len(seedComments)

	for id, sum := range seedSummaries {
		s.summaries[id] = summaryEntry{summary: sum.summary, similar: sum.similar, generatedAt: sum.lastUpdated}
	}

	return s
}

func (s *store) listBrands() []storefront.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.brands)
}

func (s *store) brandLocked(id string) (storefront.Brand, bool) {
	for _, b := range s.brands {
		if b.ID == id {
			return b, true
		}
	}
	return storefront.Brand{}, false
}

// populateLocked fills in the brand object of p.
func (s *store) populateLocked(p storefront.Perfume) storefront.Perfume {
	if b, ok := s.brandLocked(p.Brand.ID); ok {
		p.Brand = storefront.BrandRef{Brand: b}
	}
	return p
}

func (s *store) perfumeIndexLocked(id string) int {
	return slices.IndexFunc(s.perfumes, func(p storefront.Perfume) bool { return p.ID == id })
}

func matchesFold(value, want string) bool {
	return want == "" || strings.EqualFold(value, want)
}

// listPerfumes returns the catalog narrowed by filter with brands populated.
// Brand matches either the brand id or its name.
func (s *store) listPerfumes(filter storefront.PerfumeFilter) []storefront.Perfume {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := []storefront.Perfume{}
	for _, p := range s.perfumes {
		p = s.populateLocked(p)

		if filter.Brand != "" && p.Brand.ID != filter.Brand && !strings.EqualFold(p.Brand.Name, filter.Brand) {
			continue
		}
		if !matchesFold(p.Concentration, filter.Concentration) || !matchesFold(p.TargetAudience, filter.TargetAudience) {
			continue
		}
		if q != "" && !strings.Contains(searchText(p), q) {
			continue
		}

		out = append(out, p)
	}
	return out
}

func searchText(p storefront.Perfume) string {
	return strings.ToLower(strings.Join([]string{p.Name, p.Brand.Name, p.Description, p.Ingredients}, " "))
}

// perfume returns a populated perfume with its comments, newest first.
func (s *store) perfume(id string) (storefront.Perfume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.perfumeIndexLocked(id)
	if i < 0 {
		return storefront.Perfume{}, errNotFound
	}

	p := s.populateLocked(s.perfumes[i])
	p.Comments = s.commentsLocked(id)
	return p, nil
}

func (s *store) commentsLocked(perfumeID string) []storefront.Comment {
	var out []storefront.Comment
	for _, c := range s.comments {
		if c.Perfume == perfumeID {
			out = append(out, c)
		}
	}
	slices.SortStableFunc(out, func(a, b storefront.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// addComment stores a review and recomputes the perfume's average rating.
// Any cached summary for the perfume is invalidated.
func (s *store) addComment(perfumeID, memberID string, in storefront.CommentInput) (storefront.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.perfumeIndexLocked(perfumeID)
	if i < 0 {
		return storefront.Comment{}, errNotFound
	}
	acct, ok := s.accounts[memberID]
	if !ok {
		return storefront.Comment{}, errNotFound
	}

	s.nextComment++
	c := storefront.Comment{
		ID:        fmt.Sprintf("c%d", s.nextComment),
		Rating:    in.Rating,
		Content:   strings.TrimSpace(in.Content),
		Author:    acct.member,
		Perfume:   perfumeID,
		CreatedAt: s.now().UTC(),
	}
	s.comments = append(s.comments, c)

	total := 0
	comments := s.commentsLocked(perfumeID)
	for _, cc := range comments {
		total += cc.Rating
	}
	s.perfumes[i].AverageRating = roundRating(float64(total) / float64(len(comments)))
	delete(s.summaries, perfumeID)

	return c, nil
}

func roundRating(r float64) float64 {
	return float64(int(r*10+0.5)) / 10
}

func (s *store) login(email, password string) (string, *storefront.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.accountByEmailLocked(email)
	if acct == nil || acct.password != password {
		return "", nil, errBadCredentials
	}

	token := uuid.NewString()
	s.sessions[token] = acct.member.ID
	return token, acct.user(), nil
}

func (s *store) accountByEmailLocked(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.member.Email, email) {
			return a
		}
	}
	return nil
}

func (s *store) register(email, password, name string) (*storefront.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accountByEmailLocked(email) != nil {
		return nil, errEmailRegistered
	}

	s.nextMember++
	acct := &account{
		member: storefront.Member{
			ID:        fmt.Sprintf("m%d", s.nextMember),
			Name:      name,
			Email:     email,
			CreatedAt: s.now().UTC(),
		},
		password: password,
	}
	s.accounts[acct.member.ID] = acct
	return acct.user(), nil
}

func (s *store) logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// session resolves a session token to its member id.
func (s *store) session(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.sessions[token]
	return id, ok
}

func (s *store) profile(memberID string) (*storefront.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[memberID]
	if !ok {
		return nil, errNotFound
	}
	return acct.user(), nil
}

func (s *store) updateProfile(memberID string, update storefront.ProfileUpdate) (*storefront.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[memberID]
	if !ok {
		return nil, errNotFound
	}

	if update.Name != nil {
		acct.member.Name = *update.Name
	}
	if update.YOB != nil {
		acct.member.YOB = *update.YOB
	}
	if update.Gender != nil {
		acct.gender = *update.Gender
	}
	return acct.user(), nil
}

func (s *store) changePassword(memberID, current, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[memberID]
	if !ok {
		return errNotFound
	}
	if acct.password != current {
		return errWrongPassword
	}
	acct.password = next
	return nil
}

// summary returns the review digest of a perfume. A cached entry is served
// unless forceRefresh is set; otherwise one is generated from the reviews.
func (s *store) summary(perfumeID string, forceRefresh bool) (storefront.SummaryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.perfumeIndexLocked(perfumeID)
	if i < 0 {
		return storefront.SummaryResult{}, errNotFound
	}
	comments := s.commentsLocked(perfumeID)

	if entry, ok := s.summaries[perfumeID]; ok && !forceRefresh && entry.summary != "" {
		return storefront.SummaryResult{
			Summary:      entry.summary,
			Source:       "cache",
			GeneratedAt:  entry.generatedAt,
			ReviewsCount: len(comments),
		}, nil
	}

	entry := s.summaries[perfumeID]
	entry.summary = digest(s.perfumes[i], comments)
	entry.generatedAt = s.now().UTC()
	s.summaries[perfumeID] = entry

	return storefront.SummaryResult{
		Summary:      entry.summary,
		Source:       "generated",
		GeneratedAt:  entry.generatedAt,
		ReviewsCount: len(comments),
	}, nil
}

// similar returns perfumes close to perfumeID. Seeded picks are served
// from cache; otherwise the catalog is ranked by shared ingredients, then
// by matching audience, then by rating.
func (s *store) similar(perfumeID string, forceRefresh bool) (storefront.SimilarResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.perfumeIndexLocked(perfumeID)
	if i < 0 {
		return storefront.SimilarResult{}, errNotFound
	}

	if entry, ok := s.summaries[perfumeID]; ok && !forceRefresh && len(entry.similar) > 0 {
		out := make([]storefront.Perfume, 0, len(entry.similar))
		for _, id := range entry.similar {
			if j := s.perfumeIndexLocked(id); j >= 0 {
				out = append(out, s.populateLocked(s.perfumes[j]))
			}
		}
		return storefront.SimilarResult{Perfumes: out, Source: "cache", AnalyzedAt: entry.generatedAt}, nil
	}

	target := s.perfumes[i]
	notes := ingredientSet(target.Ingredients)

	type scored struct {
		p            storefront.Perfume
		shared       int
		sameAudience bool
	}
	var ranked []scored
	for _, p := range s.perfumes {
		if p.ID == target.ID {
			continue
		}
		shared := 0
		for note := range ingredientSet(p.Ingredients) {
			if _, ok := notes[note]; ok {
				shared++
			}
		}
		ranked = append(ranked, scored{p: p, shared: shared, sameAudience: p.TargetAudience == target.TargetAudience})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		if c := cmp.Compare(b.shared, a.shared); c != 0 {
			return c
		}
		if a.sameAudience != b.sameAudience {
			if a.sameAudience {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.p.AverageRating, a.p.AverageRating)
	})

	out := make([]storefront.Perfume, 0, 3)
	ids := make([]string, 0, 3)
	for _, r := range ranked[:min(3, len(ranked))] {
		out = append(out, s.populateLocked(r.p))
		ids = append(ids, r.p.ID)
	}

	now := s.now().UTC()
	entry := s.summaries[perfumeID]
	entry.similar = ids
	if entry.generatedAt.IsZero() {
		entry.generatedAt = now
	}
	s.summaries[perfumeID] = entry

	return storefront.SimilarResult{Perfumes: out, Source: "generated", AnalyzedAt: now}, nil
}

func ingredientSet(ingredients string) map[string]struct{} {
	set := make(map[string]struct{})
	for note := range strings.SplitSeq(ingredients, ",") {
		note = strings.ToLower(strings.TrimSpace(note))
		if note != "" {
			set[note] = struct{}{}
		}
	}
	return set
}

// catalogMatches returns perfumes relevant to a free-text question: those
// whose name, brand, notes, concentration or audience appear in it. With
// no match the best rated perfumes are returned.
func (s *store) catalogMatches(question string, limit int) []storefront.Perfume {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(question)
	var hits []storefront.Perfume
	for _, p := range s.perfumes {
		p = s.populateLocked(p)
		if mentions(q, p) {
			hits = append(hits, p)
		}
	}

	if len(hits) == 0 {
		for _, p := range s.perfumes {
			hits = append(hits, s.populateLocked(p))
		}
	}

	slices.SortStableFunc(hits, func(a, b storefront.Perfume) int {
		return cmp.Compare(b.AverageRating, a.AverageRating)
	})
	return hits[:min(limit, len(hits))]
}

func mentions(q string, p storefront.Perfume) bool {
	terms := []string{strings.ToLower(p.Name), strings.ToLower(p.Brand.Name)}
	for note := range ingredientSet(p.Ingredients) {
		terms = append(terms, note)
	}
	switch p.TargetAudience {
	case "male":
		terms = append(terms, "men", "masculine")
	case "female":
		terms = append(terms, "women", "feminine")
	}

	for _, t := range terms {
		if t != "" && containsWord(q, t) {
			return true
		}
	}
	return false
}

// containsWord reports whether term occurs in s on word boundaries.
func containsWord(s, term string) bool {
	for off := 0; ; {
		i := strings.Index(s[off:], term)
		if i < 0 {
			return false
		}
		start, end := off+i, off+i+len(term)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		off = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '\'' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
