package keystore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltLength    = 16
	argonTime     = 1
	argonMemoryKB = 64 * 1024
	argonThreads  = 4
)

// SecureFileStore is a FileStore whose values are sealed with XChaCha20-Poly1305. The key is
// derived from a passphrase with argon2id and a salt kept next to the data file. Keys are
// bound into the ciphertext, so a value copied under another key will not open.
type SecureFileStore struct {
	files *FileStore
	aead  cipher.AEAD
}

var _ KeyValueStore = (*SecureFileStore)(nil)

func NewSecureFileStore(dir, namespace, passphrase string) (*SecureFileStore, error) {
	if passphrase == "" {
		return nil, errors.Wrapf(errors.ErrMissingPassphrase, "[NewSecureFileStore]")
	}
	files, err := NewFileStore(dir, namespace)
	if err != nil {
		return nil, err
	}
	salt, err := loadOrCreateSalt(files.Path() + ".salt")
	if err != nil {
		return nil, err
	}
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemoryKB, argonThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrapf(err, "[NewSecureFileStore] chacha20poly1305.NewX")
	}
	return &SecureFileStore{files: files, aead: aead}, nil
}

func (s *SecureFileStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.files.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.open(key, sealed)
}

func (s *SecureFileStore) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.files.Set(ctx, key, sealed)
}

func (s *SecureFileStore) Delete(ctx context.Context, key string) error {
	return s.files.Delete(ctx, key)
}

func (s *SecureFileStore) seal(key, value string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(value)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Wrapf(err, "[SecureFileStore] rand.Read")
	}
	out := s.aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *SecureFileStore) open(key, sealed string) (string, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("[SecureFileStore] %q: %w", key, errors.ErrSealedValue)
	}
	if len(raw) < s.aead.NonceSize() {
		return "", fmt.Errorf("[SecureFileStore] %q: %w", key, errors.ErrSealedValue)
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", fmt.Errorf("[SecureFileStore] %q: %w", key, errors.ErrSealedValue)
	}
	return string(plain), nil
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil && len(salt) == saltLength {
		return salt, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "[keystore] read salt %s", filepath.Base(path))
	}
	if err == nil {
		return nil, fmt.Errorf("[keystore] salt %s has length %d", filepath.Base(path), len(salt))
	}
	salt = make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrapf(err, "[keystore] rand.Read")
	}
	if err := os.WriteFile(path, salt, filePerm); err != nil {
		return nil, errors.Wrapf(err, "[keystore] write salt %s", filepath.Base(path))
	}
	return salt, nil
}
