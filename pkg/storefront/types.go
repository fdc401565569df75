package storefront

import (
	"bytes"
	"encoding/json"
	"time"
)

// Brand is a perfume house.
type Brand struct {
	ID          string `json:"_id"`
	Name        string `json:"brandName"`
	Description string `json:"description,omitempty"`
	Country     string `json:"country,omitempty"`
}

// BrandRef is the brand field of a perfume. The backend sends either the
// populated brand object or just its id.
type BrandRef struct {
	Brand
}

func (b *BrandRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.ID)
	}

	return json.Unmarshal(data, &b.Brand)
}

func (b BrandRef) MarshalJSON() ([]byte, error) {
	if b.Name == "" && b.Description == "" && b.Country == "" {
		return json.Marshal(b.ID)
	}
	return json.Marshal(b.Brand)
}

// Label is the brand name, or the id when the brand was not populated.
func (b BrandRef) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}

// Member is a storefront account as it appears on reviews.
type Member struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	YOB       int       `json:"yob,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Comment is a review left on a perfume.
type Comment struct {
	ID        string    `json:"_id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	Author    Member    `json:"author"`
	Perfume   string    `json:"perfume"`
	CreatedAt time.Time `json:"createdAt"`
}

// Perfume is a catalog entry.
type Perfume struct {
	ID             string    `json:"_id"`
	Name           string    `json:"perfumeName"`
	URI            string    `json:"uri"`
	Price          float64   `json:"price"`
	Description    string    `json:"description"`
	Ingredients    string    `json:"ingredients,omitempty"`
	Volume         int       `json:"volume"`
	Stock          int       `json:"stock"`
	Concentration  string    `json:"concentration"`
	TargetAudience string    `json:"targetAudience"`
	Brand          BrandRef  `json:"brand"`
	Comments       []Comment `json:"comments,omitempty"`
	AverageRating  float64   `json:"averageRating"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// PerfumeFilter narrows ListPerfumes. Empty fields and "all" are not sent.
type PerfumeFilter struct {
	Query          string
	Brand          string
	Concentration  string
	TargetAudience string
}

// CommentInput is a new review.
type CommentInput struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// User is the authenticated account returned by login and profile.
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Admin  bool   `json:"isAdmin,omitempty"`
	YOB    int    `json:"yob,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// adminEmails grants admin to accounts whose backend record predates the
// isAdmin flag.
var adminEmails = map[string]struct{}{
	"admin@example.com": {},
}

// IsAdmin reports whether u may use the admin dashboard. A nil user is not
// an admin.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	if u.Admin {
		return true
	}
	_, ok := adminEmails[u.Email]
	return ok
}

// ProfileUpdate changes profile fields. Nil fields are left untouched.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	YOB    *int    `json:"yob,omitempty"`
	Gender *string `json:"gender,omitempty"`
}

// SimilarResult is the response of the similar-perfumes endpoint.
type SimilarResult struct {
	Perfumes   []Perfume `json:"perfumes"`
	Source     string    `json:"source"`
	AnalyzedAt time.Time `json:"analyzedAt,omitzero"`
}

// SummaryResult is the AI review summary of a perfume.
type SummaryResult struct {
	Summary      string    `json:"summary"`
	Source       string    `json:"source"`
	GeneratedAt  time.Time `json:"generatedAt,omitzero"`
	ReviewsCount int       `json:"reviewsCount,omitempty"`
}

// ChatRequest is a question for the fragrance assistant.
type ChatRequest struct {
	Query string

	// IncludeContext lets the assistant ground its answer in the catalog.
	IncludeContext bool

	// Image is an optional base64 encoded picture, see EncodeImage.
	Image string
}

// ChatReply is a complete, non-streamed assistant answer.
type ChatReply struct {
	Reply     string    `json:"reply"`
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
}

// chatBody is the wire form of ChatRequest.
type chatBody struct {
	Query          string `json:"query"`
	IncludeContext bool   `json:"includeContext"`
	Stream         bool   `json:"stream"`
	Image          string `json:"image,omitempty"`
}

func (r ChatRequest) body(stream bool) chatBody {
	return chatBody{
		Query:          r.Query,
		IncludeContext: r.IncludeContext,
		Stream:         stream,
		Image:          r.Image,
	}
}
