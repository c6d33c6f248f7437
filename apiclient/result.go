package apiclient

import "github.com/jrsteele09/go-auth-client/internal/errors"

// ErrorKind says where a failure came from. All kinds share one shape so callers can treat
// them alike; the kind is there for logging and tests.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAPI        ErrorKind = "api"
	KindNetwork    ErrorKind = "network"
	KindOAuth      ErrorKind = "oauth"
)

// User facing messages
const (
	MsgGenericError    = "An error occurred"
	MsgNetworkError    = "Network error. Please check your connection."
	MsgOAuthCancelled  = "Authentication was cancelled or failed"
	MsgOAuthBadRequest = "Failed to process authentication response"
	MsgOAuthFailed     = "Google authentication failed"
)

// APIError is the error branch of a Result.
type APIError struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Kind    ErrorKind           `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap lets callers match transport and validation failures with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Kind {
	case KindNetwork:
		return errors.ErrNetwork
	case KindValidation:
		return errors.ErrInvalidRequest
	}
	return nil
}

// Result holds exactly one of Data or Error.
type Result[T any] struct {
	Data  *T
	Error *APIError
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Error == nil && r.Data != nil
}

func ok[T any](v T) Result[T] {
	return Result[T]{Data: &v}
}

func fail[T any](err *APIError) Result[T] {
	if err == nil {
		err = &APIError{Message: MsgGenericError, Kind: KindAPI}
	}
	return Result[T]{Error: err}
}

func networkError() *APIError {
	return &APIError{Message: MsgNetworkError, Kind: KindNetwork}
}

func oauthError(message string) *APIError {
	return &APIError{Message: message, Kind: KindOAuth}
}
