package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := keystore.NewMemoryStore()
	s := token.NewStore(kv)

	got, err := s.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, s.Set(ctx, "12|plain-text-token"))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "12|plain-text-token", got)

	raw, err := kv.Get(ctx, token.StorageKey)
	require.NoError(t, err)
	require.Equal(t, "12|plain-text-token", raw)

	require.NoError(t, s.Remove(ctx))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestParseClaims(t *testing.T) {
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "learn.example.com",
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	t.Run("jwt", func(t *testing.T) {
		c, err := token.ParseClaims(signed)
		require.NoError(t, err)
		require.Equal(t, "user-1", c.Subject)
		require.Equal(t, "learn.example.com", c.Issuer)
		require.False(t, c.Expired(now))
		require.True(t, c.Expired(now.Add(2*time.Hour)))
		require.InDelta(t, time.Hour.Seconds(), c.ExpiresIn(now).Seconds(), 2)
		require.NoError(t, c.Valid(now))
		require.ErrorIs(t, c.Valid(now.Add(2*time.Hour)), errors.ErrTokenExpired)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := token.ParseClaims("12|plain-text-token")
		require.ErrorIs(t, err, errors.ErrNotJWT)
	})

	t.Run("no expiry", func(t *testing.T) {
		c := &token.Claims{}
		require.False(t, c.Expired(now))
		require.Zero(t, c.ExpiresIn(now))
	})
}
