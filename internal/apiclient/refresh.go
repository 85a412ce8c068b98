package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/luxclient/internal/domain"
)

// refreshTokens exchanges the stored refresh token for a new pair. It talks to the
// refresh endpoint directly, bypassing Request, so a 401 here can never recurse into
// another refresh. Any failure after the network call clears the store.
func (c *Client) refreshTokens(ctx context.Context) error {
	refreshToken, ok, err := c.store.GetRefresh(ctx)
	if err != nil {
		return internalError("Could not read credentials", err)
	}

	if !ok {
		return &Error{
			Code:    CodeUnauthorized,
			Message: msgNoRefreshToken,
			Status:  http.StatusUnauthorized,
			Cause:   domain.ErrNoRefreshToken,
		}
	}

	c.refreshCount.Add(1)

	body, err := json.Marshal(domain.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return internalError("Could not encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.url(RefreshPath, ""), bytes.NewReader(body))
	if err != nil {
		return internalError("Could not build request", err)
	}

	for k, v := range c.cfg.DefaultHeaders {
		req.Header.Set(k, v)
	}

	pair, err := c.exchange(req)
	if err != nil {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.log.ErrorContext(ctx, "clear credentials", "error", clearErr)
		}

		return sessionExpired(err)
	}

	if err := c.store.SetPair(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		return internalError("Could not store credentials", err)
	}

	return nil
}

func (c *Client) exchange(req *http.Request) (domain.CredentialPair, error) {
	resp, err := c.readResponse(req)
	if err != nil {
		return domain.CredentialPair{}, err
	}

	if err := resp.err(); err != nil {
		return domain.CredentialPair{}, err
	}

	var payload domain.TokenPayload
	if err := json.Unmarshal(resp.Envelope.Data, &payload); err != nil {
		return domain.CredentialPair{}, fmt.Errorf("decode token payload: %w", err)
	}

	pair, err := payload.Pair()
	if err != nil {
		return domain.CredentialPair{}, fmt.Errorf("token payload: %w", err)
	}

	return pair, nil
}
