// Package vps talks to the remote terminal host that reports closed trades
// and balances for a batch of accounts.
package vps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds one batched sync call.
const DefaultTimeout = 30 * time.Second

// ErrStatus is returned when the feed answers with a non-2xx status.
var ErrStatus = errors.New("feed returned error status")

// Client is a venue feed client.
type Client struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a client posting to url with the shared api key.
// A non-positive timeout uses DefaultTimeout.
func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Sync sends all account requests in one call and returns the feed's
// per-account results. Any transport, status or decode failure fails the
// whole batch.
func (c *Client) Sync(ctx context.Context, accounts []AccountRequest) (*SyncResponse, error) {
	if c.url == "" {
		return nil, fmt.Errorf("feed url is not configured")
	}

	body, err := json.Marshal(SyncRequest{Accounts: accounts})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w (status %d): %s", ErrStatus, resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
