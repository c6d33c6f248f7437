// Package apiclient talks to the learning platform's REST API. It owns the bearer token:
// it stores the token handed out by login, register and Google sign-in, attaches it to
// later requests and deletes it on logout.
//
// No call returns a Go error or panics on a failed request. Every operation returns a
// Result holding either Data or an APIError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/browser"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL     = "http://localhost:8000/api"
	DefaultRedirectURL = "http://127.0.0.1:8765/callback"

	headerRequestID = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// Endpoints
const (
	EndpointLogin       = "/login"
	EndpointRegister    = "/register"
	EndpointLogout      = "/logout"
	EndpointUser        = "/user"
	EndpointGoogleAuth  = "/auth/google"
	oauthBasePathPrefix = "/api"
)

// unauthenticated endpoints never carry the bearer token
var unauthenticated = []string{EndpointLogin, EndpointRegister, EndpointGoogleAuth}

// TokenStore persists the bearer token. token.Store implements it.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Remove(ctx context.Context) error
}

// Client is the API gateway. It is safe for concurrent use; concurrent calls race on the
// stored token with last-writer-wins.
type Client struct {
	baseURL       string
	tokens        TokenStore
	httpClient    *http.Client
	authenticator browser.Authenticator
	redirectURL   string
	timeout       time.Duration
	trace         io.Writer
	logger        zerolog.Logger
	newRequestID  func() string
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuthenticator sets the browser used by GoogleAuth.
func WithAuthenticator(a browser.Authenticator) Option {
	return func(c *Client) {
		c.authenticator = a
	}
}

// WithRedirectURL sets where the OAuth provider sends the browser back to.
func WithRedirectURL(u string) Option {
	return func(c *Client) {
		c.redirectURL = u
	}
}

// WithRequestTimeout bounds each request. Zero, the default, means no timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTrace writes a one-line summary of every request to w.
func WithTrace(w io.Writer) Option {
	return func(c *Client) {
		c.trace = w
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the API rooted at baseURL, e.g. "http://localhost:8000/api".
func New(baseURL string, tokens TokenStore, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[apiclient New] baseURL is required")
	}
	if tokens == nil {
		return nil, errors.New("[apiclient New] token store is required")
	}

	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		httpClient:   http.DefaultClient,
		redirectURL:  DefaultRedirectURL,
		logger:       log.Logger,
		newRequestID: uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.trace != nil {
		c.httpClient = withTrace(c.httpClient, c.trace)
	}
	return c, nil
}

// BaseURL is the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the stored bearer token, or "" when there is none.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.tokens.Get(ctx)
}

func includesAuth(endpoint string) bool {
	for _, e := range unauthenticated {
		if strings.HasPrefix(endpoint, e) {
			return false
		}
	}
	return true
}

// do sends one JSON request and decodes the response into T.
func do[T any](ctx context.Context, c *Client, method, endpoint string, body any) Result[T] {
	requestID := c.newRequestID()
	logger := c.logger.With().Str("method", method).Str("endpoint", endpoint).Str("request_id", requestID).Logger()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			logger.Err(err).Msg("Encode request body")
			return fail[T](&APIError{Message: MsgGenericError, Kind: KindAPI})
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		logger.Err(err).Msg("Build request")
		return fail[T](networkError())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)

	if includesAuth(endpoint) {
		c.attachToken(ctx, req, logger)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Request failed")
		return fail[T](networkError())
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Read response")
		return fail[T](networkError())
	}
	logger.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("Response")

	empty := len(bytes.TrimSpace(data)) == 0

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if !empty {
			if err := json.Unmarshal(data, &eb); err != nil {
				logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Decode error response")
				return fail[T](networkError())
			}
		}
		return fail[T](eb.apiError())
	}

	var out T
	if !empty {
		if err := json.Unmarshal(data, &out); err != nil {
			logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("Decode response")
			return fail[T](networkError())
		}
	}
	return ok(out)
}

// attachToken adds the bearer header when a token is stored. A storage failure sends the
// request unauthenticated and lets the backend answer 401.
func (c *Client) attachToken(ctx context.Context, req *http.Request, logger zerolog.Logger) {
	raw, err := c.tokens.Get(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Read token")
		return
	}
	if raw == "" {
		return
	}
	(&oauth2.Token{AccessToken: raw, TokenType: "Bearer"}).SetAuthHeader(req)
}

func (c *Client) storeToken(ctx context.Context, raw string) {
	if err := c.tokens.Set(ctx, raw); err != nil {
		c.logger.Err(err).Msg("Persist token")
	}
}
