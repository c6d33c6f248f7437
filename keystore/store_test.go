package keystore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testPassphrase = "correct horse battery staple"

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// backends returns one instance of every KeyValueStore implementation.
func backends(t *testing.T) map[string]keystore.KeyValueStore {
	t.Helper()

	fileStore, err := keystore.NewFileStore(t.TempDir(), "test")
	require.NoError(t, err)
	secureStore, err := keystore.NewSecureFileStore(t.TempDir(), "test", testPassphrase)
	require.NoError(t, err)
	_, rdb := newTestRedis(t)

	return map[string]keystore.KeyValueStore{
		"memory": keystore.NewMemoryStore(),
		"file":   fileStore,
		"secure": secureStore,
		"redis":  keystore.NewRedisStore(rdb, "test"),
	}
}

func TestKeyValueStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "auth_token")
			require.ErrorIs(t, err, keystore.ErrNotFound)

			for _, value := range []string{"abc", "", "eyJhbGciOiJIUzI1NiJ9.e30.sig", "ünïcödé token"} {
				require.NoError(t, store.Set(ctx, "auth_token", value))
				got, err := store.Get(ctx, "auth_token")
				require.NoError(t, err)
				require.Equal(t, value, got)
			}

			require.NoError(t, store.Delete(ctx, "auth_token"))
			_, err = store.Get(ctx, "auth_token")
			require.ErrorIs(t, err, keystore.ErrNotFound)

			// Deleting again is a no-op
			require.NoError(t, store.Delete(ctx, "auth_token"))
		})
	}
}

func TestKeyValueStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Set(ctx, "auth_token", "token"))
			require.NoError(t, store.Set(ctx, "auth-store", `{"isLoggedIn":true}`))
			require.NoError(t, store.Delete(ctx, "auth_token"))

			got, err := store.Get(ctx, "auth-store")
			require.NoError(t, err)
			require.Equal(t, `{"isLoggedIn":true}`, got)
		})
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := keystore.NewFileStore(dir, "learn")
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "auth_token", "persisted"))

	second, err := keystore.NewFileStore(dir, "learn")
	require.NoError(t, err)
	got, err := second.Get(ctx, "auth_token")
	require.NoError(t, err)
	require.Equal(t, "persisted", got)

	info, err := os.Stat(filepath.Join(dir, "learn.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_RequiresDir(t *testing.T) {
	_, err := keystore.NewFileStore("", "learn")
	require.Error(t, err)
	require.Contains(t, err.Error(), "dir is required")
}

func TestSecureFileStore_ValuesAreSealed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := keystore.NewSecureFileStore(dir, "learn", testPassphrase)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth_token", "super-secret-token"))

	raw, err := os.ReadFile(filepath.Join(dir, "learn.json"))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret-token")

	reopened, err := keystore.NewSecureFileStore(dir, "learn", testPassphrase)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "auth_token")
	require.NoError(t, err)
	require.Equal(t, "super-secret-token", got)
}

func TestSecureFileStore_WrongPassphrase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := keystore.NewSecureFileStore(dir, "learn", testPassphrase)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "auth_token", "super-secret-token"))

	other, err := keystore.NewSecureFileStore(dir, "learn", "another passphrase")
	require.NoError(t, err)
	_, err = other.Get(ctx, "auth_token")
	require.ErrorIs(t, err, errors.ErrSealedValue)
}

func TestSecureFileStore_RequiresPassphrase(t *testing.T) {
	_, err := keystore.NewSecureFileStore(t.TempDir(), "learn", "")
	require.ErrorIs(t, err, errors.ErrMissingPassphrase)
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	store := keystore.NewRedisStore(rdb, "edu")
	require.NoError(t, store.Set(ctx, "auth_token", "abc"))

	got, err := mr.Get("edu:auth_token")
	require.NoError(t, err)
	require.Equal(t, "abc", got)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr, _ := newTestRedis(t)

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := keystore.Open(ctx, config.Storage{Backend: config.StorageBackendMemory})
		require.NoError(t, err)
		require.IsType(t, &keystore.MemoryStore{}, store)
		require.NoError(t, closeFn())
	})

	t.Run("file", func(t *testing.T) {
		store, _, err := keystore.Open(ctx, config.Storage{Backend: config.StorageBackendFile, Dir: t.TempDir()})
		require.NoError(t, err)
		require.IsType(t, &keystore.FileStore{}, store)
	})

	t.Run("secure", func(t *testing.T) {
		store, _, err := keystore.Open(ctx, config.Storage{
			Backend:          config.StorageBackendSecure,
			Dir:              t.TempDir(),
			SecurePassphrase: testPassphrase,
		})
		require.NoError(t, err)
		require.IsType(t, &keystore.SecureFileStore{}, store)
	})

	t.Run("secure without passphrase", func(t *testing.T) {
		_, _, err := keystore.Open(ctx, config.Storage{Backend: config.StorageBackendSecure, Dir: t.TempDir()})
		require.ErrorIs(t, err, errors.ErrMissingPassphrase)
	})

	t.Run("redis", func(t *testing.T) {
		store, closeFn, err := keystore.Open(ctx, config.Storage{
			Backend:     config.StorageBackendRedis,
			RedisURL:    "redis://" + mr.Addr() + "/0",
			RedisPrefix: "learn",
		})
		require.NoError(t, err)
		require.IsType(t, &keystore.RedisStore{}, store)
		require.NoError(t, closeFn())
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := keystore.Open(ctx, config.Storage{Backend: "floppy"})
		require.ErrorIs(t, err, errors.ErrStorageBackend)
	})
}
