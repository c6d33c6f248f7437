package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// Claims is what the client can learn from a bearer token without the signing key.
// The server stays the only judge of validity; these values are for display and hints.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ParseClaims decodes a JWT bearer token without verifying it. Opaque tokens, such as
// Sanctum personal access tokens, return ErrNotJWT.
func ParseClaims(raw string) (*Claims, error) {
	registered := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, registered); err != nil {
		return nil, errors.Wrapf(errors.ErrNotJWT, "[token.ParseClaims] %v", err)
	}
	c := &Claims{
		Subject: registered.Subject,
		Issuer:  registered.Issuer,
	}
	if registered.IssuedAt != nil {
		c.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		c.ExpiresAt = registered.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the token carries an expiry that lies before now.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Valid returns ErrTokenExpired once the expiry has passed.
func (c *Claims) Valid(now time.Time) error {
	if c.Expired(now) {
		return errors.Wrapf(errors.ErrTokenExpired, "[token.Claims] expired at %s", c.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

// ExpiresIn is zero for tokens without an expiry or already expired.
func (c *Claims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || now.After(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
