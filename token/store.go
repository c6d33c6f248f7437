// Package token persists the API bearer token. Only the API client should use it.
package token

import (
	"context"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/keystore"
)

// StorageKey is where the bearer token lives in the key/value store.
const StorageKey = "auth_token"

// Store reads and writes the single bearer token.
type Store struct {
	kv  keystore.KeyValueStore
	key string
}

func NewStore(kv keystore.KeyValueStore) *Store {
	return &Store{kv: kv, key: StorageKey}
}

// Get returns "" when no token is stored.
func (s *Store) Get(ctx context.Context) (string, error) {
	t, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, keystore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "[token.Store.Get]")
	}
	return t, nil
}

func (s *Store) Set(ctx context.Context, t string) error {
	if err := s.kv.Set(ctx, s.key, t); err != nil {
		return errors.Wrapf(err, "[token.Store.Set]")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return errors.Wrapf(err, "[token.Store.Remove]")
	}
	return nil
}
