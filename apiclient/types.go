package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserID is a user's identifier. Backends send it as a JSON number or string; it is kept
// as the decimal or string text either way.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id must be a string or number: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

func (id UserID) String() string {
	return string(id)
}

// User is the profile returned by the backend.
type User struct {
	ID    UserID  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Image *string `json:"image,omitempty"`
}

// AuthResponse is returned by /login and /register.
type AuthResponse struct {
	// User is the authenticated profile
	User User `json:"user"`

	// Token is the bearer credential for every later request.
	// Usage: "Authorization: Bearer <token>"
	Token string `json:"token"`

	// TokenType is normally "Bearer" when present
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the token lifetime in seconds, when the backend reports one
	ExpiresIn int `json:"expires_in,omitempty"`
}

// MessageResponse is the body of endpoints that only acknowledge, such as /logout.
type MessageResponse struct {
	Message string `json:"message"`
}
