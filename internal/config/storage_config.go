package config

import (
	"os"
	"path/filepath"
)

const (
	StorageBackendMemory = "memory"
	StorageBackendFile   = "file"
	StorageBackendSecure = "secure"
	StorageBackendRedis  = "redis"

	defaultStorageFolder = ".learnctl"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStorageDir() string
	GetSecurePassphrase() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type Storage struct {
	Backend          string `env:"STORAGE_BACKEND" envDefault:"secure"`
	Dir              string `env:"STORAGE_DIR"`
	SecurePassphrase string `env:"SECURE_STORAGE_PASSPHRASE"`
	RedisURL         string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisPrefix      string `env:"REDIS_PREFIX" envDefault:"learnctl"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return s.Backend
}

// GetStorageDir falls back to ~/.learnctl, or ./.learnctl when no home directory is known.
func (s Storage) GetStorageDir() string {
	if s.Dir != "" {
		return s.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultStorageFolder
	}
	return filepath.Join(home, defaultStorageFolder)
}

func (s Storage) GetSecurePassphrase() string {
	return s.SecurePassphrase
}

func (s Storage) GetRedisURL() string {
	return s.RedisURL
}

func (s Storage) GetRedisPrefix() string {
	return s.RedisPrefix
}
