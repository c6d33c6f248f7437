package keystore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/internal/errors"
)

const (
	defaultNamespace = "learnctl"
	dirPerm          = 0o700
	filePerm         = 0o600
)

// FileStore keeps every key of a namespace in one JSON object on disk. It plays the part
// browser local storage plays for the web build: persistent, not encrypted.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ KeyValueStore = (*FileStore)(nil)

func NewFileStore(dir, namespace string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("[NewFileStore] dir is required")
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.Wrapf(err, "[NewFileStore] os.MkdirAll %s", dir)
	}
	return &FileStore{path: filepath.Join(dir, namespace+".json")}, nil
}

// Path is the file backing the store.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "[FileStore] read %s", f.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "[FileStore] decode %s", f.path)
	}
	return values, nil
}

// write replaces the file via rename so a crash never leaves half a document behind.
func (f *FileStore) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "[FileStore] encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "[FileStore] create temp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[FileStore] write temp")
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[FileStore] chmod temp")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[FileStore] close temp")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "[FileStore] rename")
	}
	return nil
}
