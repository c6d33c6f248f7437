package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	OAuth
}

// New reads an optional .env file into the process environment and then parses the
// environment. A missing .env file is not an error.
func New(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("[config New] godotenv.Load: %w", err)
	}
	c := mainConfig{}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config New] env.Parse: %w", err)
	}
	return c, nil
}

// FromMap parses configuration from the given variables only, ignoring the process environment.
func FromMap(vars map[string]string) (Config, error) {
	c := mainConfig{}
	if err := env.ParseWithOptions(&c, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("[config FromMap] env.ParseWithOptions: %w", err)
	}
	return c, nil
}
