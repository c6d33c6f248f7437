package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/browser"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/rs/zerolog/log"
)

const (
	cmdStatus          = "status"
	cmdLogin           = "login"
	cmdRegister        = "register"
	cmdGoogle          = "google"
	cmdLogout          = "logout"
	cmdWhoami          = "whoami"
	cmdOnboard         = "onboard"
	cmdResetOnboarding = "reset-onboarding"
	cmdVip             = "vip"
	cmdCreateAccount   = "create-account"
	cmdSignIn          = "sign-in"
)

const usage = `Usage: learnctl <command> [flags]

Commands:
  status              show the session and the screen the app would open on
  login               sign in with -email and -password
  register            create an account with -name, -email and -password
  google              sign in with Google in the browser
  logout              sign out and forget the token
  whoami              re-validate the session against the server
  onboard             mark onboarding as complete
  reset-onboarding    show onboarding again
  vip                 unlock VIP
  create-account      route the auth screens to registration
  sign-in             route the auth screens to sign-in
`

// app is the driver that stands where the mobile navigation layer would.
type app struct {
	client *apiclient.Client
	tokens *token.Store
	store  *session.Store
	out    io.Writer
}

// appOption adjusts the wiring, mostly for tests.
type appOption func(*appDeps)

type appDeps struct {
	authenticator browser.Authenticator
	trace         io.Writer
}

func withAuthenticator(a browser.Authenticator) appOption {
	return func(d *appDeps) {
		d.authenticator = a
	}
}

func newApp(ctx context.Context, c config.Config, out io.Writer, options ...appOption) (*app, keystore.CloseFunc, error) {
	deps := appDeps{
		authenticator: browser.NewLoopback(
			browser.WithOpener(browser.PrintOpener(os.Stderr)),
			browser.WithTimeout(c.GetAuthWaitTimeout()),
		),
	}
	if c.GetEnv() == "DEV" {
		deps.trace = os.Stderr
	}
	for _, opt := range options {
		opt(&deps)
	}

	kv, closeFn, err := keystore.Open(ctx, c)
	if err != nil {
		return nil, nil, err
	}
	tokens := token.NewStore(kv)

	clientOptions := []apiclient.Option{
		apiclient.WithAuthenticator(deps.authenticator),
		apiclient.WithRedirectURL(c.GetRedirectURL()),
		apiclient.WithRequestTimeout(c.GetRequestTimeout()),
	}
	if deps.trace != nil {
		clientOptions = append(clientOptions, apiclient.WithTrace(deps.trace))
	}
	client, err := apiclient.New(c.GetAPIURL(), tokens, clientOptions...)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	store, err := session.NewStore(client, kv)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	return &app{client: client, tokens: tokens, store: store, out: out}, closeFn, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.Wrapf(errors.ErrInvalidRequest, "no command")
	}

	a.store.Hydrate(ctx)

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case cmdStatus:
		return a.status(ctx)
	case cmdLogin:
		err = a.login(ctx, rest)
	case cmdRegister:
		err = a.register(ctx, rest)
	case cmdGoogle:
		err = a.google(ctx)
	case cmdLogout:
		a.store.LogOut(ctx)
	case cmdWhoami:
		a.store.CheckAuth(ctx)
		err = a.whoami()
	case cmdOnboard:
		a.store.CompleteOnboarding(ctx)
	case cmdResetOnboarding:
		a.store.ResetOnboarding(ctx)
	case cmdVip:
		a.store.LogInAsVip(ctx)
	case cmdCreateAccount:
		a.store.SetShouldCreateAccount(ctx, true)
	case cmdSignIn:
		a.store.SetShouldCreateAccount(ctx, false)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command %q: %w", cmd, errors.ErrInvalidRequest)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "screen: %s\n", a.store.Region())
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(cmdLogin, flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := a.client.Login(ctx, *email, *password)
	if res.Error != nil {
		return a.authFailed("Sign in failed", res.Error)
	}
	a.store.LogIn(ctx, &res.Data.User)
	fmt.Fprintf(a.out, "Signed in as %s\n", res.Data.User.Email)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet(cmdRegister, flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res := a.client.Register(ctx, *name, *email, *password)
	if res.Error != nil {
		return a.authFailed("Registration failed", res.Error)
	}
	a.store.LogIn(ctx, &res.Data.User)
	fmt.Fprintf(a.out, "Welcome, %s\n", res.Data.User.Name)
	return nil
}

func (a *app) google(ctx context.Context) error {
	res := a.client.GoogleAuth(ctx)
	if res.Error != nil {
		return a.authFailed("Google sign in failed", res.Error)
	}
	a.store.LogIn(ctx, res.Data)
	fmt.Fprintf(a.out, "Signed in as %s\n", res.Data.Email)
	return nil
}

// authFailed prints the summary and every field message, then returns the summary.
func (a *app) authFailed(title string, apiErr *apiclient.APIError) error {
	fmt.Fprintf(a.out, "%s: %s\n", title, apiErr.Message)
	if errors.Is(apiErr, errors.ErrNetwork) {
		fmt.Fprintf(a.out, "  is the API reachable at %s?\n", a.client.BaseURL())
	}
	fields := make([]string, 0, len(apiErr.Errors))
	for field := range apiErr.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", field, strings.Join(apiErr.Errors[field], "; "))
	}
	log.Debug().Str("kind", string(apiErr.Kind)).Msg(title)
	return apiErr
}

func (a *app) whoami() error {
	s := a.store.Snapshot()
	if !s.IsLoggedIn || s.User == nil {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", s.User.Name, s.User.Email, s.User.ID)
	return nil
}

func (a *app) status(ctx context.Context) error {
	s := a.store.Snapshot()
	fmt.Fprintf(a.out, "screen:     %s\n", session.RegionFor(s))
	fmt.Fprintf(a.out, "onboarded:  %t\n", s.HasCompletedOnboarding)
	fmt.Fprintf(a.out, "logged in:  %t\n", s.IsLoggedIn)
	fmt.Fprintf(a.out, "vip:        %t\n", s.IsVip)
	if s.User != nil {
		fmt.Fprintf(a.out, "user:       %s <%s>\n", s.User.Name, s.User.Email)
		fmt.Fprintf(a.out, "avatar:     %s\n", utils.ValueOr(s.User.Image, "none"))
	}

	raw, err := a.tokens.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "token:      %s\n", describeToken(raw, time.Now()))
	return nil
}

func describeToken(raw string, now time.Time) string {
	if raw == "" {
		return "none"
	}
	claims, err := token.ParseClaims(raw)
	if err != nil {
		return "stored (opaque)"
	}
	switch err := claims.Valid(now); {
	case claims.ExpiresAt.IsZero():
		return "stored (no expiry)"
	case errors.Is(err, errors.ErrTokenExpired):
		return fmt.Sprintf("expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	default:
		return fmt.Sprintf("valid for %s", claims.ExpiresIn(now).Round(time.Second))
	}
}
