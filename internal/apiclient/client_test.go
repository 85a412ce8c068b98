package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/repo/credential"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Envelope[any]{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.Envelope[any]{
		Error: &domain.EnvelopeError{Code: code, Message: message},
	})
}

// tokenServer accepts one access token at a time and rotates the pair on refresh.
type tokenServer struct {
	t *testing.T

	mu           sync.Mutex
	access       string
	refresh      string
	nextAccess   string
	nextRefresh  string
	failRefresh  bool
	retryStatus  int
	usedRefresh  []string
	authHeaders  []string
	refreshCalls atomic.Int64
	rejections   atomic.Int64
	refreshWait  func()
	nestedTokens bool
	rejectAll    bool
}

func (s *tokenServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == apiclient.APIPrefix+apiclient.RefreshPath {
		s.serveRefresh(w, r)

		return
	}

	auth := r.Header.Get("Authorization")

	s.mu.Lock()
	s.authHeaders = append(s.authHeaders, auth)
	valid := auth == "Bearer "+s.access && !s.rejectAll
	retryStatus := s.retryStatus
	s.mu.Unlock()

	if !valid {
		s.rejections.Add(1)
		writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")

		return
	}

	if retryStatus != 0 {
		writeFailure(w, retryStatus, "NOT_FOUND", "Event not found")

		return
	}

	writeEnvelope(w, http.StatusOK, map[string]string{"auth": auth})
}

func (s *tokenServer) serveRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	if r.Header.Get("Authorization") != "" {
		s.t.Errorf("refresh call carried an Authorization header")
	}

	if s.refreshWait != nil {
		s.refreshWait()
	}

	var body domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFailure(w, http.StatusBadRequest, "VALIDATION_ERROR", "bad body")

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.usedRefresh = append(s.usedRefresh, body.RefreshToken)

	if s.failRefresh || body.RefreshToken != s.refresh {
		writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid refresh token")

		return
	}

	s.access, s.refresh = s.nextAccess, s.nextRefresh

	if s.nestedTokens {
		writeEnvelope(w, http.StatusOK, map[string]any{
			"tokens": map[string]string{"access_token": s.access, "refresh_token": s.refresh},
		})

		return
	}

	writeEnvelope(w, http.StatusOK, domain.TokenPayload{AccessToken: s.access, RefreshToken: s.refresh})
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()

	return &tokenServer{
		t:           t,
		access:      "A2",
		refresh:     "R1",
		nextAccess:  "A2",
		nextRefresh: "R2",
	}
}

func newClient(t *testing.T, handler http.Handler, access, refresh string) (*apiclient.Client, *credential.MemoryStore) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credential.NewMemoryStore()
	if access != "" || refresh != "" {
		require.NoError(t, store.SetPair(context.Background(), access, refresh))
	}

	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = server.URL

	return apiclient.NewClient(cfg, store, server.Client()), store
}

func storedPair(t *testing.T, store credential.Store) (string, string) {
	t.Helper()

	ctx := context.Background()

	access, _, err := store.GetAccess(ctx)
	require.NoError(t, err)

	refresh, _, err := store.GetRefresh(ctx)
	require.NoError(t, err)

	return access, refresh
}

func TestConcurrentUnauthorizedTriggerOneRefresh(t *testing.T) {
	t.Parallel()

	const n = 8

	server := newTokenServer(t)
	server.access = "A1-expired-on-server"
	server.nextAccess = "A2"
	server.refreshWait = func() {
		deadline := time.Now().Add(5 * time.Second)
		for server.rejections.Load() < n && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	client, store := newClient(t, server, "A1", "R1")

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			_, errs[i] = apiclient.Get[map[string]string](context.Background(), client, "/events", nil)
		}()
	}

	close(start)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}

	assert.Equal(t, int64(1), server.refreshCalls.Load())
	assert.Equal(t, int64(1), client.RefreshCount())

	access, refresh := storedPair(t, store)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R2", refresh)
}

func TestConcurrentUnauthorizedShareRefreshFailure(t *testing.T) {
	t.Parallel()

	const n = 8

	server := newTokenServer(t)
	server.access = "never-valid"
	server.failRefresh = true
	server.refreshWait = func() {
		deadline := time.Now().Add(5 * time.Second)
		for server.rejections.Load() < n && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	client, store := newClient(t, server, "A1", "R1")

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)

	for i := range n {
		wg.Add(1)

		go func() {
			defer wg.Done()
			<-start

			_, errs[i] = client.Get(context.Background(), "/events", apiclient.RequestOptions{})
		}()
	}

	close(start)
	wg.Wait()

	for i, err := range errs {
		require.ErrorIs(t, err, apiclient.ErrUnauthorized, "request %d", i)
	}

	assert.Equal(t, int64(1), server.refreshCalls.Load())

	has, err := store.HasPair(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRefreshRotatesPairAndRetries(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	server.access = "A1-rejected"
	client, store := newClient(t, server, "A1", "R1")

	env, err := apiclient.Get[map[string]string](context.Background(), client, "/events/1", nil)
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, "Bearer A2", env.Data["auth"])

	access, refresh := storedPair(t, store)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R2", refresh)

	// The next request goes out with the rotated token and needs no refresh.
	env, err = apiclient.Get[map[string]string](context.Background(), client, "/events/2", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer A2", env.Data["auth"])

	server.mu.Lock()
	defer server.mu.Unlock()

	assert.Equal(t, []string{"Bearer A1", "Bearer A2", "Bearer A2"}, server.authHeaders)
	assert.Equal(t, []string{"R1"}, server.usedRefresh)
	assert.Equal(t, int64(1), client.RefreshCount())
}

func TestRetryOverridesCallerAuthorization(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	server.access = "A1-rejected"
	client, store := newClient(t, server, "A1", "R1")

	resp, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{
		Headers: map[string]string{"Authorization": "Bearer A1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	access, refresh := storedPair(t, store)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R2", refresh)

	server.mu.Lock()
	defer server.mu.Unlock()

	assert.Equal(t, []string{"Bearer A1", "Bearer A2"}, server.authHeaders)
	assert.Equal(t, int64(1), client.RefreshCount())
}

func TestRefreshAcceptsNestedTokens(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	server.access = "A1-rejected"
	server.nestedTokens = true
	client, store := newClient(t, server, "A1", "R1")

	_, err := client.Get(context.Background(), "/users/me", apiclient.RequestOptions{})
	require.NoError(t, err)

	access, refresh := storedPair(t, store)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R2", refresh)
}

func TestRetryResultIsFinal(t *testing.T) {
	t.Parallel()

	t.Run("second unauthorized is surfaced", func(t *testing.T) {
		t.Parallel()

		server := newTokenServer(t)
		server.access = "A1-rejected"
		server.rejectAll = true
		client, store := newClient(t, server, "A1", "R1")

		_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)

		assert.Equal(t, int64(1), server.refreshCalls.Load())
		assert.Equal(t, int64(2), server.rejections.Load())

		apiErr, ok := apiclient.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
		assert.Equal(t, "Invalid or expired token", apiErr.Message)

		access, _ := storedPair(t, store)
		assert.Equal(t, "A2", access, "a rejected retry keeps the rotated pair")
	})

	t.Run("retry failure is returned verbatim", func(t *testing.T) {
		t.Parallel()

		server := newTokenServer(t)
		server.access = "A1-rejected"
		server.retryStatus = http.StatusNotFound
		client, _ := newClient(t, server, "A1", "R1")

		_, err := client.Get(context.Background(), "/events/missing", apiclient.RequestOptions{})
		require.ErrorIs(t, err, apiclient.ErrNotFound)
		assert.Equal(t, int64(1), client.RefreshCount())
	})
}

func TestAuthPathsAreNotRefreshed(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	client, store := newClient(t, server, "A1", "R1")

	for _, path := range []string{"/auth/login", "auth/logout"} {
		_, err := client.Post(context.Background(), path, apiclient.RequestOptions{Body: map[string]string{}})
		require.ErrorIs(t, err, apiclient.ErrUnauthorized, path)
	}

	assert.Equal(t, int64(0), client.RefreshCount())

	has, err := store.HasPair(context.Background())
	require.NoError(t, err)
	assert.True(t, has, "auth path failures leave credentials alone")
}

func TestDirectRefreshCallIsNotRefreshed(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		auths []string
	)

	client, store := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		mu.Unlock()

		writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid refresh token")
	}), "A1", "R1")

	_, err := client.Post(context.Background(), apiclient.RefreshPath, apiclient.RequestOptions{
		Body: domain.RefreshRequest{RefreshToken: "R0"},
	})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	assert.Equal(t, int64(0), client.RefreshCount())

	access, refresh := storedPair(t, store)
	assert.Equal(t, "A1", access)
	assert.Equal(t, "R1", refresh)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"Bearer A1"}, auths, "one request, sent like any other call")
}

func TestNoCredentialsSkipsRefresh(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	client, _ := newClient(t, server, "", "")

	_, err := client.Get(context.Background(), "/events/mine", apiclient.RequestOptions{})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	assert.Equal(t, int64(0), server.refreshCalls.Load())

	server.mu.Lock()
	defer server.mu.Unlock()

	assert.Equal(t, []string{""}, server.authHeaders)
}

func TestFailedRefreshClearsStore(t *testing.T) {
	t.Parallel()

	refreshStatus := http.StatusInternalServerError
	client, store := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == apiclient.APIPrefix+apiclient.RefreshPath {
			writeFailure(w, refreshStatus, "INTERNAL_ERROR", "boom")

			return
		}

		writeFailure(w, http.StatusUnauthorized, "UNAUTHORIZED", "expired")
	}), "A1", "R1")

	_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)

	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Session expired", apiErr.Message)

	has, err := store.HasPair(context.Background())
	require.NoError(t, err)
	assert.False(t, has)

	_, ok, err = store.GetAccess(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.GetRefresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExplicitRefreshWithoutTokenMakesNoCall(t *testing.T) {
	t.Parallel()

	server := newTokenServer(t)
	client, _ := newClient(t, server, "", "")

	err := client.Refresh(context.Background())
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.ErrorIs(t, err, domain.ErrNoRefreshToken)

	assert.Equal(t, int64(0), server.refreshCalls.Load())
}

func TestCallerCancellationDoesNotAbortSharedRefresh(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := newTokenServer(t)
	server.access = "A1-rejected"
	server.refreshWait = func() { <-release }

	client, store := newClient(t, server, "A1", "R1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		_, err := client.Get(ctx, "/events", apiclient.RequestOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool { return server.refreshCalls.Load() == 1 }, 5*time.Second, time.Millisecond)
	cancel()

	err := <-done
	require.ErrorIs(t, err, apiclient.ErrTimeout)
	require.ErrorIs(t, err, context.Canceled)

	close(release)

	require.Eventually(t, func() bool {
		access, _ := storedPair(t, store)

		return access == "A2"
	}, 5*time.Second, time.Millisecond)
}

func slowHandler(delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}

		writeEnvelope(w, http.StatusOK, "late")
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("default deadline fails with timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(slowHandler(2 * time.Second))
		t.Cleanup(server.Close)

		cfg := apiclient.DefaultConfig()
		cfg.BaseURL = server.URL
		cfg.TimeoutMS = 50
		client := apiclient.NewClient(cfg, credential.NewMemoryStore(), server.Client())

		_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
		require.ErrorIs(t, err, apiclient.ErrTimeout)
		require.NotErrorIs(t, err, apiclient.ErrNetwork)

		apiErr, ok := apiclient.AsError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusRequestTimeout, apiErr.Status)
	})

	t.Run("per request timeout overrides default", func(t *testing.T) {
		t.Parallel()

		client, _ := newClient(t, slowHandler(2*time.Second), "", "")

		_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{Timeout: 20 * time.Millisecond})
		require.ErrorIs(t, err, apiclient.ErrTimeout)
	})

	t.Run("caller context takes precedence", func(t *testing.T) {
		t.Parallel()

		client, _ := newClient(t, slowHandler(100*time.Millisecond), "", "")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		env, err := apiclient.Get[string](ctx, client, "/events", nil)
		require.NoError(t, err)
		assert.Equal(t, "late", env.Data)

		resp, err := client.Get(ctx, "/events", apiclient.RequestOptions{Timeout: 10 * time.Millisecond})
		require.NoError(t, err, "the internal timeout must not fire under a caller context")
		assert.Equal(t, http.StatusOK, resp.Status)
	})

	t.Run("caller deadline is reported as timeout", func(t *testing.T) {
		t.Parallel()

		client, _ := newClient(t, slowHandler(2*time.Second), "", "")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/events", apiclient.RequestOptions{})
		require.ErrorIs(t, err, apiclient.ErrTimeout)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = server.URL
	client := apiclient.NewClient(cfg, nil, nil)

	_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
	require.ErrorIs(t, err, apiclient.ErrNetwork)

	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "Network error. Please check your connection.", apiErr.Message)
}

func TestZeroConfigUsesDefaultBaseURL(t *testing.T) {
	t.Parallel()

	var target string

	httpClient := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		target = r.URL.String()

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"success":true,"data":null}`)),
			Request:    r,
		}, nil
	})}

	client := apiclient.NewClient(apiclient.Config{}, nil, httpClient)

	_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, apiclient.DefaultConfig().BaseURL+"/api/v1/events", target)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestRequestBuilding(t *testing.T) {
	t.Parallel()

	type captured struct {
		method  string
		query   string
		path    string
		header  http.Header
		body    string
		hasBody bool
	}

	var (
		mu   sync.Mutex
		last captured
	)

	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		last = captured{
			method:  r.Method,
			query:   r.URL.RawQuery,
			path:    r.URL.Path,
			header:  r.Header.Clone(),
			body:    string(body),
			hasBody: len(body) > 0,
		}
		mu.Unlock()

		writeEnvelope(w, http.StatusOK, nil)
	}), "A1", "R1")

	ctx := context.Background()

	_, err := client.Get(ctx, "/events", apiclient.RequestOptions{
		Params: apiclient.Params{
			"search": "jazz night",
			"page":   2,
			"status": "",
			"city":   nil,
			"free":   true,
		},
		Body: map[string]string{"ignored": "for GET"},
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, http.MethodGet, last.method)
	assert.Equal(t, "/api/v1/events", last.path)
	assert.Equal(t, "free=true&page=2&search=jazz+night", last.query)
	assert.Equal(t, "Bearer A1", last.header.Get("Authorization"))
	assert.Equal(t, "application/json", last.header.Get("Accept"))
	assert.False(t, last.hasBody)
	mu.Unlock()

	_, err = client.Post(ctx, "/events", apiclient.RequestOptions{
		Headers: map[string]string{"Authorization": "Bearer override", "X-Extra": "1"},
		Body:    map[string]string{"title": "Jam"},
	})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, http.MethodPost, last.method)
	assert.Equal(t, "Bearer override", last.header.Get("Authorization"))
	assert.Equal(t, "1", last.header.Get("X-Extra"))
	assert.Equal(t, "application/json", last.header.Get("Content-Type"))
	assert.JSONEq(t, `{"title":"Jam"}`, last.body)
	mu.Unlock()
}

func TestErrorTranslation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		handler     http.HandlerFunc
		wantErr     error
		wantCode    apiclient.ErrorCode
		wantStatus  int
		wantMessage string
		wantDetails map[string][]string
	}{
		{
			name: "failure envelope is passed through",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Invalid input","details":{"title":["is required"]}}}`)
			},
			wantErr:     apiclient.ErrValidation,
			wantCode:    apiclient.CodeValidation,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid input",
			wantDetails: map[string][]string{"title": {"is required"}},
		},
		{
			name: "unknown backend code is kept",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeFailure(w, http.StatusConflict, "ALREADY_REGISTERED", "Already registered")
			},
			wantCode:    "ALREADY_REGISTERED",
			wantStatus:  http.StatusConflict,
			wantMessage: "Already registered",
		},
		{
			name: "non JSON error derives code from status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, "<html>forbidden</html>")
			},
			wantErr:     apiclient.ErrForbidden,
			wantCode:    apiclient.CodeForbidden,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden",
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr:     apiclient.ErrRateLimit,
			wantCode:    apiclient.CodeRateLimit,
			wantStatus:  http.StatusTooManyRequests,
			wantMessage: "Too Many Requests",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantErr:     apiclient.ErrInternal,
			wantCode:    apiclient.CodeInternal,
			wantStatus:  http.StatusBadGateway,
			wantMessage: "Bad Gateway",
		},
		{
			name: "success status with success false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `{"success":false,"message":"Nothing to do"}`)
			},
			wantErr:     apiclient.ErrInternal,
			wantCode:    apiclient.CodeInternal,
			wantStatus:  http.StatusOK,
			wantMessage: "Nothing to do",
		},
		{
			name: "invalid JSON on success",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "not json")
			},
			wantErr:     apiclient.ErrInternal,
			wantCode:    apiclient.CodeInternal,
			wantStatus:  http.StatusOK,
			wantMessage: "Invalid response from server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newClient(t, tt.handler, "", "")

			_, err := client.Get(context.Background(), "/events", apiclient.RequestOptions{})
			require.Error(t, err)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}

			apiErr, ok := apiclient.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantDetails, apiErr.Details)
		})
	}
}

func TestEmptySuccessBody(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "A1", "R1")

	env, err := apiclient.Delete[struct{}](context.Background(), client, "/events/1")
	require.NoError(t, err)
	assert.True(t, env.Success)
}
