// Package session holds the client's session state: whether onboarding is done, whether a
// validated token is held and whose profile it is. The Store is the only writer of that
// state; the navigation layer reads it to choose what to show.
package session

import "github.com/jrsteele09/go-auth-client/apiclient"

// Session is a point-in-time copy of the session state.
//
// User being set does not imply IsLoggedIn: SetUser writes the profile alone and
// LogInAsVip logs in without one.
type Session struct {
	IsLoggedIn             bool            `json:"isLoggedIn"`             // IsLoggedIn, a validated token is held
	ShouldCreateAccount    bool            `json:"shouldCreateAccount"`    // ShouldCreateAccount, route to registration rather than sign-in
	HasCompletedOnboarding bool            `json:"hasCompletedOnboarding"` // HasCompletedOnboarding, onboarding has been finished
	IsVip                  bool            `json:"isVip"`                  // IsVip, secondary entitlement, independent of IsLoggedIn
	HasHydrated            bool            `json:"-"`                      // HasHydrated, persisted state has been loaded; never persisted
	User                   *apiclient.User `json:"user"`                   // User, profile or nil
}

// clone copies the session so callers cannot reach the store's profile through pointers.
func (s Session) clone() Session {
	s.User = cloneUser(s.User)
	return s
}

func cloneUser(u *apiclient.User) *apiclient.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Image != nil {
		image := *u.Image
		c.Image = &image
	}
	return &c
}
