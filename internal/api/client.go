// Package api is the HTTP client for the nutrition backend. Every call
// normalizes transport and server failures into a single *Error so callers
// can branch on status codes without knowing transport details.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultAnalyzeTimeout = 30 * time.Second

	maxResponseBytes = 8 << 20

	msgServerError = "server returned an error"
	msgUnreachable = "could not reach the server: check your connection"
)

// Error is the one error shape every call returns on failure. Status is the
// HTTP status code when the server responded, and 0 when no response was
// received (network unreachable, timeout).
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

// IsAuthRejection reports whether err is an explicit credential rejection
// from the server, as opposed to a failure to verify. Only this class may
// clear a persisted session.
func IsAuthRejection(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// IsUnreachable reports whether err means the request got no response at all.
func IsUnreachable(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0 && apiErr.Message == msgUnreachable
}

// Client talks to the nutrition backend.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	AnalyzeTimeout time.Duration
	Log            zerolog.Logger

	analyzeLimiter *rate.Limiter
}

// New returns a client for baseURL with the default timeouts and an upload
// throttle of one analyze request per two seconds (burst 1).
func New(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient:     &http.Client{Timeout: defaultTimeout},
		AnalyzeTimeout: defaultAnalyzeTimeout,
		Log:            log,
		analyzeLimiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return c.HTTPClient
}

// errorBody is the backend's structured error envelope.
type errorBody struct {
	Detail string `json:"detail"`
}

// do sends one JSON request. credential, when non-empty, is attached as a
// bearer header. out, when non-nil, receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path, credential string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return &Error{Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.Log.Debug().Str("method", method).Str("path", path).Err(err).Msg("request failed")
		return &Error{Message: msgUnreachable}
	}
	defer resp.Body.Close()

	c.Log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &Error{Message: msgUnreachable}
	}

	if resp.StatusCode >= 400 {
		return newStatusError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Message: fmt.Sprintf("malformed server response: %v", err), Status: resp.StatusCode}
		}
	}
	return nil
}

func newStatusError(status int, raw []byte) *Error {
	var body errorBody
	msg := msgServerError
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		msg = strings.TrimSpace(body.Detail)
	}
	return &Error{Message: msg, Status: status}
}

func (c *Client) get(ctx context.Context, path, credential string, out any) error {
	return c.do(ctx, http.MethodGet, path, credential, nil, out)
}

func (c *Client) post(ctx context.Context, path, credential string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, credential, body, out)
}

func (c *Client) put(ctx context.Context, path, credential string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, credential, body, out)
}

func (c *Client) delete(ctx context.Context, path, credential string) error {
	return c.do(ctx, http.MethodDelete, path, credential, nil, nil)
}
