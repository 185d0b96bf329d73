// Package httpapi is the JSON-over-HTTP transport shared by every outbound
// adapter talking to the calorie-tracking backend and nutrition index.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apperrors "caltrack/internal/platform/errors"
	"caltrack/internal/platform/id"
	"caltrack/internal/platform/logging"
)

const userAgent = "caltrack/1.0"

// TokenSource yields the bearer token for authenticated calls. An empty
// token means no credential is held.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Tokens     TokenSource
	IDs        id.Generator
	Logger     *slog.Logger
}

// statusBodyLimit caps, in runes, how much of an error body Error repeats.
const statusBodyLimit = 200

// StatusError reports a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.ToValidUTF8(strings.TrimSpace(e.Body), "\uFFFD")
	if runes := []rune(body); len(runes) > statusBodyLimit {
		body = string(runes[:statusBodyLimit]) + "…"
	}
	if body == "" {
		return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case apperrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Request describes one call. Path is joined onto BaseURL verbatim, so
// callers escape path segments themselves.
type Request struct {
	Method string
	Path   string
	Body   any
	Auth   bool
}

// Do executes req and decodes a JSON response into out when out is non-nil.
// Empty and `null` bodies leave out untouched.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	logger := c.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("marshal %s %s payload: %w", req.Method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	url := strings.TrimRight(c.BaseURL, "/") + req.Path
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", req.Method, req.Path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	requestID := ""
	if c.IDs != nil {
		requestID = c.IDs.New()
		httpReq.Header.Set("X-Request-ID", requestID)
	}
	if req.Auth {
		token, err := c.token(ctx)
		if err != nil {
			return err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	started := time.Now()
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		logger.Debug("request failed",
			slog.String("method", req.Method), slog.String("path", req.Path),
			slog.String("request_id", requestID), slog.String("error", err.Error()))
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", req.Method, req.Path, apperrors.ErrTimeout)
		}
		return fmt.Errorf("execute %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s %s: %w", req.Method, req.Path, apperrors.ErrTimeout)
		}
		return fmt.Errorf("read %s %s response: %w", req.Method, req.Path, err)
	}
	logger.Debug("request done",
		slog.String("method", req.Method), slog.String("path", req.Path),
		slog.String("request_id", requestID), slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Method: req.Method, Path: req.Path, Status: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.Tokens == nil {
		return "", apperrors.ErrNotAuthenticated
	}
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(token) == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	return token, nil
}
