// Package backend implements the HTTP client for the remote analysis
// service. Every failure comes back as a network DomainError; response
// payloads are decoded but never validated, shape recovery belongs to the
// normalizer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

const (
	defaultTimeout = 120 * time.Second
	healthTimeout  = 5 * time.Second

	// maxResponseBytes caps how much of a response body is read. The
	// analysis payload is a few KB in practice.
	maxResponseBytes = 4 << 20
)

// Client talks to the analysis service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the analyze request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a backend client for the given base URL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ core.Backend = (*Client)(nil)

// Analyze submits a scenario and returns the decoded raw payload. A body
// that is not a JSON object decodes to nil, which the normalizer treats as
// the unknown shape.
func (c *Client) Analyze(ctx context.Context, req core.AnalyzeRequest) (core.RawAnalysis, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, core.ErrInternal("encode_request", "encoding analyze request failed").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, core.ErrNetwork("build_request", "building analyze request failed").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.ErrNetwork("analyze_unreachable", "analysis service unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, core.ErrNetwork("analyze_read", "reading analyze response failed").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("analysis service returned non-success status",
			slog.Int("status", resp.StatusCode))
		return nil, core.ErrNetwork(
			fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Sprintf("analysis service returned status %d", resp.StatusCode))
	}

	var raw core.RawAnalysis
	if err := json.Unmarshal(payload, &raw); err != nil {
		// A non-object body is the unknown shape, not a transport failure.
		c.logger.Warn("analysis response is not a JSON object", slog.String("error", err.Error()))
		return nil, nil
	}
	return raw, nil
}

// Health checks service liveness with a short deadline of its own.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return core.ErrNetwork("build_request", "building health request failed").WithCause(err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.ErrNetwork("health_unreachable", "analysis service unreachable").WithCause(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return core.ErrNetwork(
			fmt.Sprintf("http_%d", resp.StatusCode),
			fmt.Sprintf("health endpoint returned status %d", resp.StatusCode))
	}
	return nil
}
