package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
	"github.com/mkrupp/luxclient/internal/repo/credential"
)

const (
	AuthorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// RequestOptions describe one logical API call.
type RequestOptions struct {
	// Method defaults to GET
	Method string

	// Headers override the default and Authorization headers
	Headers map[string]string

	// Body is JSON encoded for non-GET methods
	Body any

	// Params become the query string
	Params Params

	// Timeout bounds each attempt when ctx cannot be cancelled. Zero means the
	// configured default.
	Timeout time.Duration
}

// Response is the outcome of a successful call.
type Response struct {
	Status   int
	Header   http.Header
	Envelope domain.RawEnvelope
}

// Client issues authenticated requests against the backend. A 401 on a non-auth path
// triggers one shared refresh and a single retry of the request.
// Client is safe for concurrent use.
type Client struct {
	cfg          Config
	httpClient   *http.Client
	store        credential.Store
	refresher    *refresher
	refreshCount atomic.Int64
	log          logging.Logger
}

// NewClient creates a new Client. If httpClient is nil, http.DefaultClient is used;
// if store is nil, credentials are not kept.
func NewClient(cfg Config, store credential.Store, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if store == nil {
		store = credential.NopStore{}
	}

	if cfg.DefaultHeaders == nil {
		cfg.DefaultHeaders = DefaultConfig().DefaultHeaders
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		store:      store,
		log:        logging.GetLogger("apiclient.client").With(logging.Group("api", "baseURL", cfg.BaseURL)),
	}
	c.refresher = newRefresher(c.refreshTokens, store, cfg.refreshTimeout(), c.log)

	return c
}

// Store returns the credential store the client reads tokens from.
func (c *Client) Store() credential.Store {
	return c.store
}

// RefreshCount returns the number of calls made to the refresh endpoint.
func (c *Client) RefreshCount() int64 {
	return c.refreshCount.Load()
}

// Refresh rotates the credential pair through the shared refresher, joining a refresh
// that is already in flight.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresher.do(ctx, "")
}

// Request performs one logical API call.
//
// The call is attempted once. A 401 on a path outside /auth/ while a refresh token is
// stored triggers a refresh followed by exactly one retry, whose result is final. When
// the refresh fails the store is cleared and an UNAUTHORIZED error is returned.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}

	var body []byte

	if opts.Method != http.MethodGet && opts.Body != nil {
		var err error

		if body, err = json.Marshal(opts.Body); err != nil {
			return nil, internalError("Could not encode request", err)
		}
	}

	target := c.cfg.url(path, opts.Params.Encode())
	log := c.log.With(logging.Group("request", "method", opts.Method, "path", path))

	resp, access, err := c.attempt(ctx, target, body, opts, false)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized && !isAuthPath(path) {
		_, hasRefresh, err := c.store.GetRefresh(ctx)
		if err != nil {
			return nil, internalError("Could not read credentials", err)
		}

		if hasRefresh {
			log.DebugContext(ctx, "access token rejected, refreshing")

			if err := c.refresher.do(ctx, access); err != nil {
				return nil, c.refreshFailed(ctx, err)
			}

			log.DebugContext(ctx, "retrying after refresh")

			if resp, _, err = c.attempt(ctx, target, body, opts, true); err != nil {
				return nil, err
			}
		}
	}

	if err := resp.err(); err != nil {
		log.DebugContext(ctx, "request failed", "status", resp.Status, "error", err)

		return nil, err
	}

	return resp, nil
}

// refreshFailed ends the session unless the failure was this caller's own
// cancellation, in which case the shared refresh may still succeed for others.
func (c *Client) refreshFailed(ctx context.Context, err error) error {
	apiErr, ok := AsError(err)
	if ok && apiErr.Code == CodeTimeout && ctx.Err() != nil {
		return apiErr
	}

	if clearErr := c.store.Clear(ctx); clearErr != nil {
		c.log.ErrorContext(ctx, "clear credentials", "error", clearErr)
	}

	if ok && apiErr.Code == CodeUnauthorized {
		return apiErr
	}

	return sessionExpired(err)
}

// attempt sends the request once with the access token currently stored and returns
// the token it used. Caller headers override the bearer token except on a retry,
// which always carries the freshly stored one.
func (c *Client) attempt(
	ctx context.Context,
	target string,
	body []byte,
	opts RequestOptions,
	retry bool,
) (*Response, string, error) {
	if ctx.Done() == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = c.cfg.timeout()
		}

		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	access, hasAccess, err := c.store.GetAccess(ctx)
	if err != nil {
		return nil, "", internalError("Could not read credentials", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, target, reader)
	if err != nil {
		return nil, "", internalError("Could not build request", err)
	}

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}

	if hasAccess && !retry {
		req.Header.Set(AuthorizationHeader, bearerPrefix+access)
	}

	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if hasAccess && retry {
		req.Header.Set(AuthorizationHeader, bearerPrefix+access)
	}

	resp, err := c.readResponse(req)
	if err != nil {
		return nil, "", err
	}

	return resp, access, nil
}

func (c *Client) readResponse(req *http.Request) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header}

	if len(bytes.TrimSpace(raw)) == 0 {
		resp.Envelope.Success = resp.ok()

		return resp, nil
	}

	if err := json.Unmarshal(raw, &resp.Envelope); err != nil {
		if resp.ok() {
			return nil, &Error{
				Code:    CodeInternal,
				Message: "Invalid response from server",
				Status:  resp.Status,
				Cause:   fmt.Errorf("decode envelope: %w", err),
			}
		}

		resp.Envelope = domain.RawEnvelope{}
	}

	return resp, nil
}

func (r *Response) ok() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Response) err() error {
	if r.ok() && r.Envelope.Success {
		return nil
	}

	return errorFromEnvelope(r.Status, r.Envelope)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.Method = http.MethodGet

	return c.Request(ctx, path, opts)
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.Method = http.MethodPost

	return c.Request(ctx, path, opts)
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.Method = http.MethodPut

	return c.Request(ctx, path, opts)
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.Method = http.MethodPatch

	return c.Request(ctx, path, opts)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts RequestOptions) (*Response, error) {
	opts.Method = http.MethodDelete

	return c.Request(ctx, path, opts)
}
