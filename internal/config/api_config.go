package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
}

type API struct {
	// EXPO_PUBLIC_API_URL keeps the variable name the mobile app ships with.
	URL            string        `env:"EXPO_PUBLIC_API_URL" envDefault:"http://localhost:8000/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`
}

var _ APIConfig = API{}

func (a API) GetAPIURL() string {
	return strings.TrimRight(a.URL, "/")
}

// GetRequestTimeout returns zero when requests should not time out.
func (a API) GetRequestTimeout() time.Duration {
	if a.RequestTimeout < 0 {
		return 0
	}
	return a.RequestTimeout
}
