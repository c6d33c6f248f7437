// Package keystore provides the key/value capability used to persist the bearer token and
// the session record. Backends are chosen once at startup by Open.
package keystore

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.ErrNotFound

// KeyValueStore is a string key/value store. Delete of a missing key is not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CloseFunc releases whatever the backend holds open.
type CloseFunc func() error

func noClose() error { return nil }

// Open builds the backend named by the storage config.
func Open(ctx context.Context, cfg config.StorageConfig) (KeyValueStore, CloseFunc, error) {
	switch cfg.GetStorageBackend() {
	case config.StorageBackendMemory:
		return NewMemoryStore(), noClose, nil
	case config.StorageBackendFile:
		s, err := NewFileStore(cfg.GetStorageDir(), defaultNamespace)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "[keystore Open] file store")
		}
		return s, noClose, nil
	case config.StorageBackendSecure:
		s, err := NewSecureFileStore(cfg.GetStorageDir(), defaultNamespace, cfg.GetSecurePassphrase())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "[keystore Open] secure store")
		}
		return s, noClose, nil
	case config.StorageBackendRedis:
		s, err := DialRedis(ctx, cfg.GetRedisURL(), cfg.GetRedisPrefix())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "[keystore Open] redis store")
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("[keystore Open] %q: %w", cfg.GetStorageBackend(), errors.ErrStorageBackend)
}
