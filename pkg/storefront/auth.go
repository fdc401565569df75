package storefront

import (
	"context"
	"net/http"
)

// loginResponse accepts both shapes the backend uses: the user object
// directly, or wrapped as {"user": {...}}.
type loginResponse struct {
	User
	Wrapped *User `json:"user"`
}

// Login authenticates and stores the session cookie in the jar. When the
// login response carries no user, the profile is fetched instead.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	r, err := newRequest(http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := c.doJSON(ctx, r, &resp); err != nil {
		return nil, err
	}

	switch {
	case resp.Wrapped != nil:
		return resp.Wrapped, nil
	case resp.ID != "":
		u := resp.User
		return &u, nil
	default:
		return c.Profile(ctx)
	}
}

// Register creates an account and then logs into it.
func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	r, err := newRequest(http.MethodPost, "/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return nil, err
	}

	if err := c.doJSON(ctx, r, nil); err != nil {
		return nil, err
	}

	return c.Login(ctx, email, password)
}

// Logout ends the session. The backend call is best effort; the local
// cookie jar is always cleared.
func (c *Client) Logout(ctx context.Context) {
	r, err := newRequest(http.MethodPost, "/logout", nil)
	if err == nil {
		if err := c.doJSON(ctx, r, nil); err != nil {
			c.logger.Debug("logout request failed", "error", err)
		}
	}

	if err := c.resetJar(); err != nil {
		c.logger.Warn("clearing cookies", "error", err)
	}
}

// Profile returns the logged in user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	r, err := newRequest(http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}

	u := &User{}
	if err := c.doJSON(ctx, r, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the logged in user's profile and returns it.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	r, err := newRequest(http.MethodPut, "/profile", update)
	if err != nil {
		return nil, err
	}

	u := &User{}
	if err := c.doJSON(ctx, r, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the logged in user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	r, err := newRequest(http.MethodPut, "/profile/password", map[string]string{
		"currentPassword": current,
		"newPassword":     next,
	})
	if err != nil {
		return err
	}
	return c.doJSON(ctx, r, nil)
}
