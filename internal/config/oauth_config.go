package config

import "time"

type OAuthConfig interface {
	GetRedirectURL() string
	GetAuthWaitTimeout() time.Duration
}

type OAuth struct {
	RedirectURL     string        `env:"OAUTH_REDIRECT_URL" envDefault:"http://127.0.0.1:8765/callback"`
	AuthWaitTimeout time.Duration `env:"OAUTH_WAIT_TIMEOUT" envDefault:"5m"`
}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetRedirectURL() string {
	return o.RedirectURL
}

// GetAuthWaitTimeout is how long the browser flow may stay open before it counts as dismissed.
func (o OAuth) GetAuthWaitTimeout() time.Duration {
	return o.AuthWaitTimeout
}
