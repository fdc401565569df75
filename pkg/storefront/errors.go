package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/scentshop/perfumery/pkg/utils"
)

// ErrInvalidComment is returned by AddComment before any request is made
// when the rating or content is not acceptable.
var ErrInvalidComment = errors.New("invalid comment")

// APIError is a non-2xx response from the storefront.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("storefront: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the storefront.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized reports whether err means the session is missing or has
// expired.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// newAPIError builds an APIError from a response body, using the backend's
// {"message": ...} or {"error": ...} field when present.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}

	if msg == "" {
		msg = utils.Truncate(strings.TrimSpace(string(body)), 200)
	}

	return &APIError{StatusCode: status, Message: msg}
}
