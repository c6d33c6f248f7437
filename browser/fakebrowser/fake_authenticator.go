package fakebrowser

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/browser"
)

// Call records one OpenAuthSession invocation.
type Call struct {
	AuthURL     string
	RedirectURL string
}

// FakeAuthenticator returns a canned result and records what it was asked to open.
type FakeAuthenticator struct {
	mu     sync.Mutex
	result browser.Result
	err    error
	calls  []Call
}

var _ browser.Authenticator = (*FakeAuthenticator)(nil)

func NewFakeAuthenticator(result browser.Result, err error) *FakeAuthenticator {
	return &FakeAuthenticator{result: result, err: err}
}

// Redirect is a success result whose URL is redirectURL plus the given query.
func Redirect(redirectURL, rawQuery string) browser.Result {
	return browser.Result{Type: browser.ResultSuccess, URL: redirectURL + "?" + rawQuery}
}

func (f *FakeAuthenticator) OpenAuthSession(_ context.Context, authURL, redirectURL string) (browser.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{AuthURL: authURL, RedirectURL: redirectURL})
	return f.result, f.err
}

func (f *FakeAuthenticator) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
