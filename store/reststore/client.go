// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Retry policy defaults. MaxRetries counts retries, not attempts; a request
// is issued at most DefaultMaxRetries+1 times.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 300 * time.Millisecond
)

// client issues JSON requests against the remote store's PostgREST-style
// interface. Every call carries the api key and runs through the bounded
// retry loop in requestWithRetry.
type client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	httpc      *http.Client
}

// backoffDelay is the pause after a failed attempt: the base delay doubled
// once per attempt already made.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<attempt)
}

// shouldRetry reports whether an attempt's outcome is worth repeating.
// Transport failures, 5xx responses, and 429 responses are transient; every
// other status is terminal on first sight, since repeating a request the
// server has already judged malformed cannot change the verdict.
func shouldRetry(status int, err error) bool {
	if err != nil {
		return true
	}
	return status >= 500 || status == http.StatusTooManyRequests
}

// classify maps a non-2xx status onto the error taxonomy. The mapping is
// fixed and context-free; callers that know which constraint a conflict
// belongs to rewrap it with a friendlier message.
func classify(status int, body []byte) error {
	var code string
	switch {
	case status == http.StatusConflict:
		code = models.CodeAlreadyVoted
	case status == http.StatusUnprocessableEntity:
		code = models.CodeInvalidData
	case status == http.StatusTooManyRequests:
		code = models.CodeRateLimit
	case status >= 500:
		code = models.CodeServerError
	default:
		code = models.CodeUnknownError
	}

	msg := errorMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return store.NewError(code, msg)
}

// errorMessage pulls the human-readable message out of an error body shaped
// like {"code":"23505","message":"...","details":...}.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// do runs one logical request and maps the outcome: a 2xx response returns
// the body, anything else becomes a typed store error.
func (c *client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var encoded []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s payload: %w", method, path, err)
		}
		encoded = b
	}

	status, body, err := c.requestWithRetry(ctx, method, path, query, encoded)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, classify(status, body)
	}
	return body, nil
}

// requestWithRetry drives the bounded retry loop: up to maxRetries+1
// attempts, pausing backoffDelay between them. The loop breaks early the
// moment an outcome is not retryable, which covers both success and
// client-side request errors. A transport failure that survives every
// attempt becomes NETWORK_ERROR; a retryable status that survives is
// returned for classify to map.
func (c *client) requestWithRetry(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	var (
		status  int
		body    []byte
		lastErr error
	)
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying store request",
				"method", method, "path", path, "attempt", attempt, "status", status, "error", lastErr)
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(backoffDelay(c.retryDelay, attempt-1)):
			}
		}

		status, body, lastErr = c.attempt(ctx, method, path, query, payload)
		if !shouldRetry(status, lastErr) {
			break
		}
	}

	if lastErr != nil {
		return 0, nil, store.NewError(models.CodeNetworkError,
			fmt.Sprintf("no response from store: %v", lastErr))
	}
	return status, body, nil
}

// attempt issues the request once. The body reader is rebuilt from the
// encoded payload so a retry replays exactly the same bytes.
func (c *client) attempt(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		// Writes answer with the affected rows so callers can return the
		// stored representation without a second read
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}
