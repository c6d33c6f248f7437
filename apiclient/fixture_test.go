package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/keystore"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testToken    = "1|laravel_sanctum_token"
	testEmail    = "a@b.com"
	testPassword = "password123"
	testName     = "Ada Lovelace"
	userJSON     = `{"id":"42","name":"Ada Lovelace","email":"a@b.com","image":"https://cdn.example.com/ada.png"}`
	authJSON     = `{"user":` + userJSON + `,"token":"` + testToken + `","token_type":"Bearer","expires_in":3600}`
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]string
}

// fakeBackend is an httptest server answering canned responses per "METHOD /path".
type fakeBackend struct {
	t        *testing.T
	srv      *httptest.Server
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{t: t, routes: make(map[string]http.HandlerFunc)}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, rec)
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
		return
	}
	h(w, r)
}

func (b *fakeBackend) respond(method, path string, status int, body string) {
	b.handleFunc(method, path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *fakeBackend) handleFunc(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *fakeBackend) apiURL() string {
	return b.srv.URL + "/api"
}

func (b *fakeBackend) recorded() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedRequest(nil), b.requests...)
}

func (b *fakeBackend) last() recordedRequest {
	b.t.Helper()
	reqs := b.recorded()
	require.NotEmpty(b.t, reqs)
	return reqs[len(reqs)-1]
}

type clientFixture struct {
	backend *fakeBackend
	kv      *keystore.MemoryStore
	tokens  *token.Store
	client  *apiclient.Client
}

func setupClient(t *testing.T, options ...apiclient.Option) *clientFixture {
	t.Helper()

	b := newFakeBackend(t)
	kv := keystore.NewMemoryStore()
	tokens := token.NewStore(kv)
	options = append([]apiclient.Option{apiclient.WithLogger(zerolog.Nop())}, options...)

	c, err := apiclient.New(b.apiURL(), tokens, options...)
	require.NoError(t, err)

	return &clientFixture{backend: b, kv: kv, tokens: tokens, client: c}
}

func (f *clientFixture) storedToken(t *testing.T) string {
	t.Helper()
	raw, err := f.tokens.Get(context.Background())
	require.NoError(t, err)
	return raw
}

// failingTokenStore fails every operation.
type failingTokenStore struct{}

func (failingTokenStore) Get(context.Context) (string, error) { return "", io.ErrUnexpectedEOF }
func (failingTokenStore) Set(context.Context, string) error   { return io.ErrUnexpectedEOF }
func (failingTokenStore) Remove(context.Context) error        { return io.ErrUnexpectedEOF }

func requireExclusive[T any](t *testing.T, res apiclient.Result[T]) {
	t.Helper()
	require.True(t, (res.Data == nil) != (res.Error == nil), "exactly one of Data and Error must be set")
}
