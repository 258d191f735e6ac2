// Package api is the HTTP/JSON gateway to the FaceTrace service.
package api

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

	"github.com/google/uuid"

	"github.com/facetrace/cli/src/model"
)

// DefaultUserAgent identifies the client when the caller sets none
const DefaultUserAgent = "facetrace-cli/dev"

// MaxResponseSize bounds the body read from any API response
const MaxResponseSize = 10 * 1024 * 1024

// DefaultBaseURL is the production API endpoint
const DefaultBaseURL = "https://bisque-echidna-708046.hostingersite.com"

const (
	// DefaultTimeout applies to every call except search submission
	DefaultTimeout = 30 * time.Second
	// DefaultSubmitTimeout covers the image upload that starts a search
	DefaultSubmitTimeout = 180 * time.Second
)

// Client is the API client for the FaceTrace service
type Client struct {
	BaseURL       string
	Token         string
	UserAgent     string
	Timeout       time.Duration
	SubmitTimeout time.Duration
	HTTPClient    *http.Client
}

// NewClient creates a new API client. timeout is in seconds; zero selects
// DefaultTimeout.
func NewClient(baseURL, token string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t <= 0 {
		t = DefaultTimeout
	}
	return &Client{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		Token:         token,
		UserAgent:     DefaultUserAgent,
		Timeout:       t,
		SubmitTimeout: DefaultSubmitTimeout,
		HTTPClient:    &http.Client{},
	}
}

// request describes one API call
type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
	timeout     time.Duration
}

// jsonBody marshals v for a JSON request
func jsonBody(v interface{}) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// do performs the request and decodes a successful JSON response into out.
// Failures come back as *model.TransportError or *model.APIError.
func (c *Client) do(ctx context.Context, r request, out interface{}) error {
	if r.auth && c.Token == "" {
		return model.ErrNotAuthenticated
	}

	timeout := r.timeout
	if timeout <= 0 {
		timeout = c.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.BaseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	slog.Debug("api request", "op", r.op, "method", r.method, "path", r.path, "request_id", requestID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// Caller cancellation is not a network failure
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return &model.TransportError{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	// One byte past the limit tells an oversized body from one that fits
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return &model.TransportError{Op: r.op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if len(data) > MaxResponseSize {
		return &model.TransportError{Op: r.op, Err: fmt.Errorf("response exceeds %d bytes", MaxResponseSize)}
	}

	slog.Debug("api response", "op", r.op, "status", resp.StatusCode, "bytes", len(data), "request_id", requestID)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &errResp); err != nil {
			return &model.TransportError{
				Op:  r.op,
				Err: fmt.Errorf("invalid response from server (HTTP %d)", resp.StatusCode),
			}
		}
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		return &model.APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.TransportError{
			Op:  r.op,
			Err: fmt.Errorf("invalid response from server (HTTP %d): %w", resp.StatusCode, err),
		}
	}
	return nil
}
