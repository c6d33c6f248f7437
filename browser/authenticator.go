// Package browser runs the browser half of an OAuth redirect flow: it sends the user to the
// provider and reports the URL the provider redirected back to.
package browser

import "context"

type ResultType string

const (
	// ResultSuccess means the provider redirected back; URL holds the full redirect.
	ResultSuccess ResultType = "success"
	// ResultCancel means the caller gave up, usually through context cancellation.
	ResultCancel ResultType = "cancel"
	// ResultDismiss means the user walked away and the wait timed out.
	ResultDismiss ResultType = "dismiss"
)

// Result is the outcome of an auth session. URL is only set on ResultSuccess.
type Result struct {
	Type ResultType
	URL  string
}

// Authenticator opens authURL and waits for a navigation to redirectURL.
type Authenticator interface {
	OpenAuthSession(ctx context.Context, authURL, redirectURL string) (Result, error)
}

// Opener shows a URL to the user.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}
