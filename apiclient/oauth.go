package apiclient

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/browser"
	"github.com/jrsteele09/go-auth-client/internal/errors"
)

// OAuthBaseURL is the web root of the backend: the API base with its "/api" segment removed.
func (c *Client) OAuthBaseURL() string {
	return strings.Replace(c.baseURL, oauthBasePathPrefix, "", 1)
}

// GoogleAuthURL is the page that starts the Google sign-in for redirectURL.
func (c *Client) GoogleAuthURL(redirectURL string) string {
	return c.OAuthBaseURL() + EndpointGoogleAuth + "?redirect_uri=" + url.QueryEscape(redirectURL)
}

// GoogleAuth runs the browser sign-in. The backend finishes the Google exchange and sends
// the browser back to the redirect URL with ?token=... or ?error=...; the token is stored
// and the profile fetched with it.
func (c *Client) GoogleAuth(ctx context.Context) Result[User] {
	if c.authenticator == nil {
		c.logger.Error().Msg("GoogleAuth: no authenticator configured")
		return fail[User](oauthError(MsgOAuthFailed))
	}

	session, err := c.authenticator.OpenAuthSession(ctx, c.GoogleAuthURL(c.redirectURL), c.redirectURL)
	if err != nil {
		c.logger.Err(err).Msg("GoogleAuth: auth session")
		return fail[User](oauthError(MsgOAuthFailed))
	}

	if session.Type == browser.ResultSuccess && session.URL != "" {
		redirect, err := url.Parse(session.URL)
		if err != nil {
			c.logger.Warn().Err(err).Msg("GoogleAuth: parse redirect")
			return fail[User](oauthError(MsgOAuthBadRequest))
		}
		query, err := url.ParseQuery(redirect.RawQuery)
		if err != nil {
			c.logger.Warn().Err(err).Msg("GoogleAuth: parse redirect query")
			return fail[User](oauthError(MsgOAuthBadRequest))
		}

		if e := query.Get("error"); e != "" {
			// Some providers escape the message twice
			if unescaped, err := url.PathUnescape(e); err == nil {
				e = unescaped
			}
			return fail[User](oauthError(e))
		}

		if raw := query.Get("token"); raw != "" {
			c.storeToken(ctx, raw)
			return c.CurrentUser(ctx)
		}
	}

	reason := errors.ErrOAuthCancelled
	if session.Type == browser.ResultDismiss {
		reason = errors.ErrOAuthDismissed
	}
	c.logger.Debug().Err(reason).Str("result", string(session.Type)).Msg("GoogleAuth: no token in redirect")
	return fail[User](oauthError(MsgOAuthCancelled))
}
