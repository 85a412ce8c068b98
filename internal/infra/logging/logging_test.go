package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/luxclient/internal/infra/context"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

func TestIsRedactedKey(t *testing.T) {
	t.Parallel()

	for key, want := range map[string]bool{
		"Authorization": true,
		"accessToken":   true,
		"refresh_token": true,
		"Refresh-Token": true,
		"password":      true,
		"newPassword":   true,
		"token":         true,
		"email":         false,
		"tokens":        false,
	} {
		assert.Equal(t, want, logging.IsRedactedKey(key), key)
	}
}

func TestConsoleHandlerRedactsAndFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := &logging.ConsoleHandler{
		Output: &buf,
		Level:  slog.LevelDebug,
		PkgLevels: map[string]slog.Level{
			"":          slog.LevelWarn,
			"apiclient": slog.LevelDebug,
		},
	}

	log := slog.New(handler)

	log.With("logger", "apiclient.client").Debug("refreshing",
		slog.Group("pair", "accessToken", "secret-a", "refreshToken", "secret-r"),
		"email", "ada@example.com",
	)
	log.With("logger", "repo.credential").Info("hidden by catch-all")

	out := buf.String()
	assert.Contains(t, out, "refreshing")
	assert.Contains(t, out, "pair.accessToken=")
	assert.Contains(t, out, logging.RedactedValue)
	assert.NotContains(t, out, "secret-a")
	assert.NotContains(t, out, "secret-r")
	assert.Contains(t, out, "ada@example.com")
	assert.NotContains(t, out, "hidden by catch-all")
}

//nolint:paralleltest
func TestGetLoggerJSON(t *testing.T) {
	var buf bytes.Buffer

	logging.Configure(context.Background(), logging.LoggerConfig{
		Level:        "debug",
		JSON:         true,
		OutputHandle: &buf,
	}, "luxctl")

	t.Cleanup(func() {
		logging.Configure(context.Background(), logging.LoggerConfig{Output: "discard"}, "")
	})

	buf.Reset()

	ctx := context_.WithRequestID(context.Background(), "req-1")
	logging.GetLogger("apiclient.client").InfoContext(ctx, "login", "password", "hunter2")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "login", entry["msg"])
	assert.Equal(t, "luxctl", entry["app"])
	assert.Equal(t, "apiclient.client", entry["logger"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, logging.RedactedValue, entry["password"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	log := logging.NewNopLogger()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
