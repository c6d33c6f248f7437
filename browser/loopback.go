package browser

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

const callbackPage = `<!doctype html>
<html><head><title>Signed in</title></head>
<body><p>Authentication complete. You can close this window and return to the app.</p></body></html>`

// Loopback serves the redirect URL on the local machine, which is how a desktop or CLI
// client receives an OAuth redirect.
type Loopback struct {
	opener  Opener
	timeout time.Duration
	logger  zerolog.Logger
}

var _ Authenticator = (*Loopback)(nil)

type LoopbackOption func(*Loopback)

// WithOpener replaces the default opener, which prints the URL to stderr.
func WithOpener(o Opener) LoopbackOption {
	return func(l *Loopback) {
		l.opener = o
	}
}

// WithTimeout sets how long to wait for the redirect. Zero waits until the context ends.
func WithTimeout(d time.Duration) LoopbackOption {
	return func(l *Loopback) {
		l.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) LoopbackOption {
	return func(l *Loopback) {
		l.logger = logger
	}
}

func NewLoopback(options ...LoopbackOption) *Loopback {
	l := &Loopback{
		opener: PrintOpener(os.Stderr),
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// PrintOpener asks the user to open the URL themselves.
func PrintOpener(w io.Writer) Opener {
	return OpenerFunc(func(_ context.Context, u string) error {
		_, err := fmt.Fprintf(w, "Open this URL in your browser to continue:\n\n  %s\n\n", u)
		return err
	})
}

// OpenAuthSession listens on the redirect URL's host, opens authURL and waits for the first
// request on the redirect path.
func (l *Loopback) OpenAuthSession(ctx context.Context, authURL, redirectURL string) (Result, error) {
	redirect, err := url.Parse(redirectURL)
	if err != nil || redirect.Host == "" || redirect.Scheme != "http" {
		return Result{}, fmt.Errorf("[Loopback] %q: %w", redirectURL, errors.ErrInvalidRedirect)
	}

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return Result{}, errors.Wrapf(err, "[Loopback] listen %s", redirect.Host)
	}

	callbacks := make(chan string, 1)
	srv := &http.Server{
		Handler:           l.callbackHandler(redirect, callbacks),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "[Loopback] serve")
		}
		return nil
	})

	var result Result
	g.Go(func() error {
		defer l.shutdown(srv)

		if err := l.opener.Open(gctx, authURL); err != nil {
			return errors.Wrapf(err, "[Loopback] open")
		}

		var expired <-chan time.Time
		if l.timeout > 0 {
			timer := time.NewTimer(l.timeout)
			defer timer.Stop()
			expired = timer.C
		}

		select {
		case cb := <-callbacks:
			result = Result{Type: ResultSuccess, URL: cb}
		case <-expired:
			l.logger.Debug().Dur("timeout", l.timeout).Msg("Auth session dismissed")
			result = Result{Type: ResultDismiss}
		case <-gctx.Done():
			result = Result{Type: ResultCancel}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (l *Loopback) callbackHandler(redirect *url.URL, callbacks chan<- string) http.Handler {
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+path, func(w http.ResponseWriter, r *http.Request) {
		cb := *redirect
		cb.RawQuery = r.URL.RawQuery
		select {
		case callbacks <- cb.String():
		default:
			// Only the first redirect counts
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, callbackPage)
	})
	return mux
}

func (l *Loopback) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.logger.Err(err).Msg("Loopback shutdown")
	}
}
