package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gateway is the part of the API client the store depends on. *apiclient.Client implements it.
type Gateway interface {
	CurrentUser(ctx context.Context) apiclient.Result[apiclient.User]
	Logout(ctx context.Context) apiclient.Result[apiclient.MessageResponse]
}

// Store owns the Session. It is created logged out with onboarding incomplete and not
// hydrated; Hydrate loads the persisted copy and validates it against the backend.
//
// Mutators never return errors. Backend and storage failures are logged, and the network
// backed mutators resolve them to the logged-out state. Concurrent mutators are not
// serialised against their network calls, so the last to finish wins.
type Store struct {
	gateway Gateway
	kv      keystore.KeyValueStore
	key     string
	logger  zerolog.Logger

	mu        sync.RWMutex
	state     Session
	version   uint64
	validated bool // the post-hydration CheckAuth has been started

	persistMu        sync.Mutex
	persistedVersion uint64

	subsMu  sync.Mutex
	subs    map[int]func(Session)
	nextSub int
}

// Option defines a function type to modify the Store instance.
type Option func(*Store)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStorageKey overrides the key the session record is persisted under.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

func NewStore(gateway Gateway, kv keystore.KeyValueStore, options ...Option) (*Store, error) {
	if gateway == nil {
		return nil, errors.New("[NewStore] gateway is required")
	}
	if kv == nil {
		return nil, errors.New("[NewStore] key/value store is required")
	}

	s := &Store{
		gateway: gateway,
		kv:      kv,
		key:     StorageKey,
		logger:  log.Logger,
		subs:    make(map[int]func(Session)),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.key == "" {
		return nil, errors.New("[NewStore] storage key is required")
	}
	return s, nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Region is the navigation region for the current session.
func (s *Store) Region() Region {
	return RegionFor(s.Snapshot())
}

// Subscribe registers fn to receive the session after every change. The returned function
// removes it. fn runs on the mutating goroutine and may call back into the store.
func (s *Store) Subscribe(fn func(Session)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
		})
	}
}

// update applies fn under the lock, then persists and notifies with the result.
func (s *Store) update(ctx context.Context, fn func(*Session)) Session {
	s.mu.Lock()
	fn(&s.state)
	s.version++
	version := s.version
	snap := s.state.clone()
	s.mu.Unlock()

	s.persist(ctx, version, snap)
	s.notify(snap)
	return snap
}

func (s *Store) notify(snap Session) {
	s.subsMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}

// LogIn marks the session logged in. A nil user keeps the current profile. The caller is
// expected to have obtained a token through the API client already.
func (s *Store) LogIn(ctx context.Context, user *apiclient.User) {
	user = cloneUser(user)
	s.update(ctx, func(st *Session) {
		st.IsLoggedIn = true
		if user != nil {
			st.User = user
		}
	})
}

// LogInAsVip grants VIP and marks the session logged in. The profile is untouched.
func (s *Store) LogInAsVip(ctx context.Context) {
	s.update(ctx, func(st *Session) {
		st.IsVip = true
		st.IsLoggedIn = true
	})
}

// LogOut revokes the token through the gateway and then resets the session whatever the
// gateway reported.
func (s *Store) LogOut(ctx context.Context) {
	if err := s.callLogout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Logout request failed, clearing session anyway")
	}
	s.update(ctx, func(st *Session) {
		st.IsVip = false
		st.IsLoggedIn = false
		st.User = nil
	})
}

// SetUser replaces the profile without changing IsLoggedIn.
func (s *Store) SetUser(ctx context.Context, user *apiclient.User) {
	user = cloneUser(user)
	s.update(ctx, func(st *Session) {
		st.User = user
	})
}

func (s *Store) CompleteOnboarding(ctx context.Context) {
	s.update(ctx, func(st *Session) {
		st.HasCompletedOnboarding = true
	})
}

func (s *Store) ResetOnboarding(ctx context.Context) {
	s.update(ctx, func(st *Session) {
		st.HasCompletedOnboarding = false
	})
}

// SetShouldCreateAccount chooses between the registration and sign-in screens.
func (s *Store) SetShouldCreateAccount(ctx context.Context, v bool) {
	s.update(ctx, func(st *Session) {
		st.ShouldCreateAccount = v
	})
}

// SetHasHydrated records that persisted state is loaded. The first transition to true in
// the store's lifetime runs CheckAuth; later calls never do.
func (s *Store) SetHasHydrated(ctx context.Context, v bool) {
	var validate bool
	s.update(ctx, func(st *Session) {
		st.HasHydrated = v
		if v && !s.validated {
			s.validated = true
			validate = true
		}
	})
	if validate {
		s.CheckAuth(ctx)
	}
}

// Hydrate is the startup sequence: load the persisted session, apply it, mark the store
// hydrated and validate the session against the backend. An unreadable record is logged
// and the defaults are used. Calls after the first do nothing.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.RLock()
	done := s.validated
	s.mu.RUnlock()
	if done {
		return
	}

	persisted, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Load persisted session, starting from defaults")
		persisted = Session{}
	}

	s.mu.Lock()
	if s.validated {
		// Another Hydrate finished first; its CheckAuth result stands
		s.mu.Unlock()
		return
	}
	hydrated := s.state.HasHydrated
	persisted.HasHydrated = hydrated
	s.state = persisted
	s.mu.Unlock()

	s.SetHasHydrated(ctx, true)
}

// CheckAuth asks the backend who the stored token belongs to. Success logs the session in
// with that profile; any failure logs it out.
func (s *Store) CheckAuth(ctx context.Context) {
	user, err := s.callCurrentUser(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Session not valid")
		s.update(ctx, func(st *Session) {
			st.IsLoggedIn = false
			st.User = nil
		})
		return
	}
	s.update(ctx, func(st *Session) {
		st.IsLoggedIn = true
		st.User = user
	})
}

// callCurrentUser turns an error result or a panic in the gateway into an error.
func (s *Store) callCurrentUser(ctx context.Context) (user *apiclient.User, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[session.Store.CheckAuth] gateway panic: %v", r)
		}
	}()
	res := s.gateway.CurrentUser(ctx)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Data == nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "[session.Store.CheckAuth] empty result")
	}
	return cloneUser(res.Data), nil
}

func (s *Store) callLogout(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[session.Store.LogOut] gateway panic: %v", r)
		}
	}()
	if res := s.gateway.Logout(ctx); res.Error != nil {
		return res.Error
	}
	return nil
}
