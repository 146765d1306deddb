// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/model"
)

// DefaultBaseURL is the backend address used when nothing else is configured.
const DefaultBaseURL = "http://localhost:5000"

// Endpoint paths relative to the base URL.
const (
	PathHealth = "/health"
	PathChat   = "/chat"
	PathUpload = "/admin/upload"
	PathReset  = "/admin/reset"
	PathStats  = "/admin/stats"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root address (default: http://localhost:5000)
	BaseURL string

	// HealthTimeout bounds the liveness probe (default: 2s)
	HealthTimeout time.Duration

	// RequestTimeout bounds chat, upload, reset and stats calls (default: 5m)
	RequestTimeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client

	// Logger receives debug events. Defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        DefaultBaseURL,
		HealthTimeout:  2 * time.Second,
		RequestTimeout: 5 * time.Minute,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the backend.
//
// The Client is safe for concurrent use. The base URL may be changed at any
// time with SetBaseURL; requests already in flight keep the address they
// started with.
type Client struct {
	mu      sync.RWMutex
	baseURL string

	healthTimeout  time.Duration
	requestTimeout time.Duration
	httpClient     *http.Client
	logger         zerolog.Logger
}

// NewClient creates a client for baseURL with default timeouts. An empty
// baseURL means DefaultBaseURL.
func NewClient(baseURL string) *Client {
	cfg := DefaultConfig()
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.HealthTimeout == 0 {
		config.HealthTimeout = 2 * time.Second
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 5 * time.Minute
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}

	c := &Client{
		healthTimeout:  config.HealthTimeout,
		requestTimeout: config.RequestTimeout,
		httpClient:     httpClient,
		logger:         logger.With().Str("component", "api").Logger(),
	}
	c.SetBaseURL(config.BaseURL)
	return c
}

// SetBaseURL stores url with any trailing slashes removed. The value is not
// validated.
func (c *Client) SetBaseURL(url string) {
	trimmed := strings.TrimRight(url, "/")
	c.mu.Lock()
	c.baseURL = trimmed
	c.mu.Unlock()
	c.logger.Debug().Str("base_url", trimmed).Msg("backend address set")
}

// BaseURL returns the currently configured backend address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL() + path
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckHealth probes GET /health. It returns true only when a 2xx response
// arrives before the health timeout. It never fails.
func (c *Client) CheckHealth(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(PathHealth), nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("health request invalid")
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("health check failed")
		return false
	}
	defer drainAndClose(resp.Body)

	return isSuccess(resp.StatusCode)
}

// =============================================================================
// CHAT
// =============================================================================

// SendMessage posts one chat turn to /chat and returns the backend's reply.
// history is the transcript before prompt was added. Every failure is
// returned as a *ClientError.
func (c *Client) SendMessage(ctx context.Context, history []model.Message, prompt string) (string, error) {
	if history == nil {
		history = []model.Message{}
	}
	body, err := json.Marshal(model.ChatRequest{History: history, Prompt: prompt})
	if err != nil {
		return "", &ClientError{Type: ErrTypeRequest, Message: "failed to marshal request", Cause: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathChat), bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeRequest, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer drainAndClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return "", statusError("chat request", resp.StatusCode, resp.Status)
	}

	var result model.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeDecode, Message: "failed to decode chat response", Cause: err}
	}

	c.logger.Debug().
		Int("history", len(history)).
		Dur("elapsed", time.Since(start)).
		Msg("chat turn completed")
	return result.Response, nil
}

// =============================================================================
// ADMIN
// =============================================================================

// ResetDatabase asks the backend to drop its stored state. It returns true
// iff the backend answered with a 2xx status.
func (c *Client) ResetDatabase(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathReset), nil)
	if err != nil {
		c.logger.Debug().Err(err).Msg("reset request invalid")
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Msg("reset failed")
		return false
	}
	defer drainAndClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug().Int("status", resp.StatusCode).Msg("reset rejected")
		return false
	}
	return true
}

// GetStats fetches knowledge base statistics. Any failure yields
// FallbackStats so dashboards always have something to show.
func (c *Client) GetStats(ctx context.Context) model.EmbeddingStats {
	stats, err := c.fetchStats(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("stats unavailable, using fallback")
		return FallbackStats(time.Now())
	}
	return stats
}

func (c *Client) fetchStats(ctx context.Context) (model.EmbeddingStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(PathStats), nil)
	if err != nil {
		return model.EmbeddingStats{}, &ClientError{Type: ErrTypeRequest, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.EmbeddingStats{}, transportError(err)
	}
	defer drainAndClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return model.EmbeddingStats{}, statusError("stats request", resp.StatusCode, resp.Status)
	}

	var stats model.EmbeddingStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return model.EmbeddingStats{}, &ClientError{Type: ErrTypeDecode, Message: "failed to decode stats", Cause: err}
	}
	return stats, nil
}

// FallbackStats is the value GetStats reports when the backend is unreachable.
func FallbackStats(now time.Time) model.EmbeddingStats {
	return model.EmbeddingStats{
		TotalDocuments: 12,
		TotalChunks:    350,
		LastUpdated:    now.UTC().Format(time.RFC3339),
		DiskUsageMB:    45.2,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func transportError(err error) *ClientError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeUnavailable, Message: "backend is not reachable", Cause: err}
}

// drainAndClose drains and closes a response body so the connection can be
// reused.
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 64<<10))
	_ = r.Close()
}
