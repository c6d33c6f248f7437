package session

// Region is the navigation stack the app should show.
type Region string

const (
	// RegionLoading is shown until persisted state has been loaded
	RegionLoading Region = "loading"
	// RegionOnboarding is the onboarding stack
	RegionOnboarding Region = "onboarding"
	// RegionSignIn is the auth stack on its sign-in screen
	RegionSignIn Region = "sign-in"
	// RegionCreateAccount is the auth stack on its registration screen
	RegionCreateAccount Region = "create-account"
	// RegionApp is the main app
	RegionApp Region = "app"
)

func (r Region) String() string {
	return string(r)
}

// RegionFor maps session flags to a region. Onboarding takes precedence, so resetting it
// shows onboarding again even while logged in.
func RegionFor(s Session) Region {
	switch {
	case !s.HasHydrated:
		return RegionLoading
	case !s.HasCompletedOnboarding:
		return RegionOnboarding
	case s.IsLoggedIn:
		return RegionApp
	case s.ShouldCreateAccount:
		return RegionCreateAccount
	default:
		return RegionSignIn
	}
}
