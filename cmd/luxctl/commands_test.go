package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/fakeapi/fakeapitest"
	"github.com/mkrupp/luxclient/internal/repo/credential"
	"github.com/mkrupp/luxclient/internal/svc/authsvc"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer, *fakeapitest.Backend) {
	t.Helper()

	backend := fakeapitest.New(t)

	var out bytes.Buffer

	cfg := Config{
		Store: credential.StoreConfig{Driver: credential.DriverMemory, Profile: "test"},
		Auth:  authsvc.AuthConfig{ProfileImage: authsvc.ProfileImageConfig{MaxWidth: 64, Interpolator: "catmullrom"}},
	}

	return newApp(cfg, backend.Client, &out), &out, backend
}

func TestExecute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, out, _ := newTestApp(t)

	require.NoError(t, a.execute(ctx, []string{"login", "-email", fakeapitest.SeedEmail, "-password", fakeapitest.SeedPassword}))

	var user domain.User
	require.NoError(t, json.Unmarshal(out.Bytes(), &user))
	assert.Equal(t, fakeapitest.SeedEmail, user.Email)

	out.Reset()
	require.NoError(t, a.execute(ctx, []string{"status"}))

	var status statusResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	assert.True(t, status.Authenticated)
	assert.Equal(t, credential.DriverMemory, status.Driver)
	assert.NotEmpty(t, status.AccessExpiresAt)

	out.Reset()
	require.NoError(t, a.execute(ctx, []string{"events", "-limit", "5"}))

	var events domain.Paginated[domain.EventSummary]
	require.NoError(t, json.Unmarshal(out.Bytes(), &events))
	assert.Equal(t, 5, events.Meta.Limit)

	out.Reset()
	require.NoError(t, a.execute(ctx, []string{"logout"}))

	out.Reset()
	require.NoError(t, a.execute(ctx, []string{"status"}))
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	assert.False(t, status.Authenticated)
}

func TestExecuteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no command", args: nil, wantErr: ErrMissingArgument},
		{name: "unknown command", args: []string{"dance"}, wantErr: ErrUnknownCommand},
		{name: "missing flag", args: []string{"event"}, wantErr: ErrMissingArgument},
		{name: "missing password", args: []string{"login", "-email", "x@lux.local"}, wantErr: ErrMissingArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, out, _ := newTestApp(t)

			err := a.execute(context.Background(), tt.args)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, out.Len())
		})
	}
}

func TestWhoamiWithoutSession(t *testing.T) {
	t.Parallel()

	a, _, backend := newTestApp(t)

	err := a.execute(context.Background(), []string{"whoami"})
	require.Error(t, err)
	assert.Zero(t, backend.Server.RefreshCalls())
}
