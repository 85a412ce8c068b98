package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/luxclient/internal/domain"
)

// Do performs the call described by opts and decodes the envelope data into T.
func Do[T any](ctx context.Context, c *Client, path string, opts RequestOptions) (*domain.Envelope[T], error) {
	resp, err := c.Request(ctx, path, opts)
	if err != nil {
		return nil, err
	}

	return Decode[T](resp)
}

// Decode converts the raw envelope of resp into a typed one.
func Decode[T any](resp *Response) (*domain.Envelope[T], error) {
	env := &domain.Envelope[T]{
		Success:   resp.Envelope.Success,
		Message:   resp.Envelope.Message,
		Error:     resp.Envelope.Error,
		Timestamp: resp.Envelope.Timestamp,
	}

	if data := bytes.TrimSpace(resp.Envelope.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &env.Data); err != nil {
			return nil, &Error{
				Code:    CodeInternal,
				Message: "Invalid response from server",
				Status:  resp.Status,
				Cause:   fmt.Errorf("decode data: %w", err),
			}
		}
	}

	return env, nil
}

// Get performs a GET request and decodes the data into T.
func Get[T any](ctx context.Context, c *Client, path string, params Params) (*domain.Envelope[T], error) {
	return Do[T](ctx, c, path, RequestOptions{Method: http.MethodGet, Params: params})
}

// Post performs a POST request with body and decodes the data into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*domain.Envelope[T], error) {
	return Do[T](ctx, c, path, RequestOptions{Method: http.MethodPost, Body: body})
}

// Put performs a PUT request with body and decodes the data into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (*domain.Envelope[T], error) {
	return Do[T](ctx, c, path, RequestOptions{Method: http.MethodPut, Body: body})
}

// Patch performs a PATCH request with body and decodes the data into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (*domain.Envelope[T], error) {
	return Do[T](ctx, c, path, RequestOptions{Method: http.MethodPatch, Body: body})
}

// Delete performs a DELETE request and decodes the data into T.
func Delete[T any](ctx context.Context, c *Client, path string) (*domain.Envelope[T], error) {
	return Do[T](ctx, c, path, RequestOptions{Method: http.MethodDelete})
}
