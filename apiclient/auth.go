package apiclient

import (
	"context"
	"net/http"
	"strings"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) Result[AuthResponse] {
	if err := requireFields("email", email, "password", password); err != nil {
		return fail[AuthResponse](err)
	}
	res := do[AuthResponse](ctx, c, http.MethodPost, EndpointLogin, loginRequest{Email: email, Password: password})
	c.keepToken(ctx, res)
	return res
}

// Register creates an account, which also signs the user in, and stores the token.
func (c *Client) Register(ctx context.Context, name, email, password string) Result[AuthResponse] {
	if err := requireFields("name", name, "email", email, "password", password); err != nil {
		return fail[AuthResponse](err)
	}
	res := do[AuthResponse](ctx, c, http.MethodPost, EndpointRegister, registerRequest{Name: name, Email: email, Password: password})
	c.keepToken(ctx, res)
	return res
}

// Logout tells the backend to revoke the token, then deletes the local copy whatever the
// backend answered.
func (c *Client) Logout(ctx context.Context) Result[MessageResponse] {
	res := do[MessageResponse](ctx, c, http.MethodPost, EndpointLogout, nil)
	if err := c.tokens.Remove(ctx); err != nil {
		c.logger.Err(err).Msg("Remove token")
	}
	return res
}

// CurrentUser fetches the profile the stored token belongs to.
func (c *Client) CurrentUser(ctx context.Context) Result[User] {
	return do[User](ctx, c, http.MethodGet, EndpointUser, nil)
}

func (c *Client) keepToken(ctx context.Context, res Result[AuthResponse]) {
	if res.Data != nil && res.Data.Token != "" {
		c.storeToken(ctx, res.Data.Token)
	}
}

// requireFields takes name/value pairs and reports every blank value as a validation error.
func requireFields(pairs ...string) *APIError {
	var (
		first  string
		errors map[string][]string
	)
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) != "" {
			continue
		}
		msg := "The " + pairs[i] + " field is required."
		if errors == nil {
			errors = make(map[string][]string)
			first = msg
		}
		errors[pairs[i]] = []string{msg}
	}
	if errors == nil {
		return nil
	}
	return &APIError{Message: first, Errors: errors, Kind: KindValidation}
}
