package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/jrsteele09/go-auth-client/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testUser() *apiclient.User {
	return &apiclient.User{ID: "42", Name: "Ada Lovelace", Email: "a@b.com", Image: utils.Ptr("https://cdn.example.com/ada.png")}
}

func userResult(u *apiclient.User) apiclient.Result[apiclient.User] {
	return apiclient.Result[apiclient.User]{Data: u}
}

func errorResult[T any](message string, kind apiclient.ErrorKind) apiclient.Result[T] {
	return apiclient.Result[T]{Error: &apiclient.APIError{Message: message, Kind: kind}}
}

// fakeGateway returns canned results and counts calls. A panic value makes the call panic.
type fakeGateway struct {
	mu               sync.Mutex
	currentUser      apiclient.Result[apiclient.User]
	logout           apiclient.Result[apiclient.MessageResponse]
	panicValue       any
	currentUserCalls int
	logoutCalls      int
}

var _ session.Gateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		currentUser: errorResult[apiclient.User]("Unauthenticated.", apiclient.KindAPI),
		logout:      apiclient.Result[apiclient.MessageResponse]{Data: &apiclient.MessageResponse{Message: "Logged out"}},
	}
}

func (g *fakeGateway) setCurrentUser(r apiclient.Result[apiclient.User]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentUser = r
}

func (g *fakeGateway) setLogout(r apiclient.Result[apiclient.MessageResponse]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.logout = r
}

func (g *fakeGateway) setPanic(v any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.panicValue = v
}

func (g *fakeGateway) CurrentUser(context.Context) apiclient.Result[apiclient.User] {
	g.mu.Lock()
	g.currentUserCalls++
	r, p := g.currentUser, g.panicValue
	g.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return r
}

func (g *fakeGateway) Logout(context.Context) apiclient.Result[apiclient.MessageResponse] {
	g.mu.Lock()
	g.logoutCalls++
	r, p := g.logout, g.panicValue
	g.mu.Unlock()
	if p != nil {
		panic(p)
	}
	return r
}

func (g *fakeGateway) calls() (currentUser, logout int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentUserCalls, g.logoutCalls
}

type storeFixture struct {
	gateway *fakeGateway
	kv      *keystore.MemoryStore
	store   *session.Store
}

func setupStore(t *testing.T) *storeFixture {
	t.Helper()

	gw := newFakeGateway()
	kv := keystore.NewMemoryStore()
	s, err := session.NewStore(gw, kv, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return &storeFixture{gateway: gw, kv: kv, store: s}
}

// persisted writes a session record the way an earlier run would have left it.
func (f *storeFixture) persisted(t *testing.T, record string) {
	t.Helper()
	require.NoError(t, f.kv.Set(context.Background(), session.StorageKey, record))
}

// reopen builds a second store over the same storage, as a new process would.
func (f *storeFixture) reopen(t *testing.T) *session.Store {
	t.Helper()
	s, err := session.NewStore(f.gateway, f.kv, session.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return s
}
