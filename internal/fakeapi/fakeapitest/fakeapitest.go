// Package fakeapitest starts the fake backend for tests of the API wrappers.
package fakeapitest

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/fakeapi"
	"github.com/mkrupp/luxclient/internal/repo/credential"
)

const (
	SeedEmail    = "demo@lux.local"
	SeedPassword = "demo-password"
	SeedName     = "Demo User"
)

// Backend is a running fake backend with a client pointed at it.
type Backend struct {
	Server *fakeapi.Server
	URL    string
	Store  *credential.MemoryStore
	Client *apiclient.Client
}

// New starts a fake backend seeded with the demo account. It is shut down when the
// test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	srv, err := fakeapi.New(fakeapi.Config{
		SigningKey:   "fakeapitest-signing-key",
		AccessTTL:    900,
		SeedEmail:    SeedEmail,
		SeedPassword: SeedPassword,
		SeedName:     SeedName,
	})
	require.NoError(t, err)

	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)

	b := &Backend{Server: srv, URL: server.URL}
	b.Store, b.Client = b.NewClient()

	return b
}

// NewClient returns a further client of the backend with its own store, acting as a
// separate user.
func (b *Backend) NewClient() (*credential.MemoryStore, *apiclient.Client) {
	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = b.URL

	store := credential.NewMemoryStore()

	return store, apiclient.NewClient(cfg, store, nil)
}

// SignIn stores a fresh credential pair for email in the store of client without
// going through any service.
func (b *Backend) SignIn(t testing.TB, client *apiclient.Client, email, password string) domain.User {
	t.Helper()

	env, err := apiclient.Post[domain.LoginResponse](context.Background(), client, "/auth/login",
		domain.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)

	pair, err := env.Data.Pair()
	require.NoError(t, err)
	require.NoError(t, client.Store().SetPair(context.Background(), pair.AccessToken, pair.RefreshToken))

	return env.Data.User
}

// NewUser creates a verified account and returns a client signed in as it.
func (b *Backend) NewUser(t testing.TB, email, name string) (*apiclient.Client, domain.User) {
	t.Helper()

	const password = "guest-password"

	_, err := b.Server.AddUser(email, password, name)
	require.NoError(t, err)

	_, client := b.NewClient()

	return client, b.SignIn(t, client, email, password)
}
