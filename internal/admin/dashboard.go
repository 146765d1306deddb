// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package admin implements the knowledge base dashboard: statistics, document
// upload and database reset.
package admin

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ragchat/internal/model"
)

// ResetPrompt is the confirmation question shown before a reset.
const ResetPrompt = "Are you sure? This will delete all conversation history."

// =============================================================================
// UPLOAD STATUS
// =============================================================================

// UploadStatus is the state of the upload indicator.
type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	Uploading
	UploadSuccess
	UploadFailed
)

// String returns a short name for the status.
func (s UploadStatus) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case UploadSuccess:
		return "success"
	case UploadFailed:
		return "error"
	default:
		return "idle"
	}
}

// Message returns the text shown next to the upload control.
func (s UploadStatus) Message() string {
	switch s {
	case Uploading:
		return "Uploading..."
	case UploadSuccess:
		return "Successfully added to knowledge base."
	case UploadFailed:
		return "Failed to upload. Check backend logs."
	default:
		return ""
	}
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Backend is the subset of the API client the dashboard needs. *api.Client
// satisfies it.
type Backend interface {
	GetStats(ctx context.Context) model.EmbeddingStats
	UploadFile(ctx context.Context, path string) bool
	ResetDatabase(ctx context.Context) bool
}

// Dashboard holds the state of the admin view.
type Dashboard struct {
	backend Backend
	limiter *rate.Limiter

	mu         sync.Mutex
	stats      model.EmbeddingStats
	loaded     bool
	loadedAt   time.Time
	status     UploadStatus
	lastUpload string
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithRefreshLimit sets how often manual refreshes may hit the backend.
func WithRefreshLimit(every time.Duration, burst int) Option {
	return func(d *Dashboard) {
		d.limiter = rate.NewLimiter(rate.Every(every), burst)
	}
}

// New creates a dashboard. Manual refreshes default to one per second with a
// burst of three.
func New(backend Backend, opts ...Option) *Dashboard {
	d := &Dashboard{
		backend: backend,
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load fetches statistics. It is called when the view is activated and
// after every successful upload or reset. It never fails because the client
// substitutes fallback statistics.
func (d *Dashboard) Load(ctx context.Context) model.EmbeddingStats {
	stats := d.backend.GetStats(ctx)

	d.mu.Lock()
	d.stats = stats
	d.loaded = true
	d.loadedAt = time.Now()
	d.mu.Unlock()

	return stats
}

// Refresh reloads statistics on user request. It returns false without
// contacting the backend when refreshes are arriving too quickly.
func (d *Dashboard) Refresh(ctx context.Context) (model.EmbeddingStats, bool) {
	if !d.limiter.Allow() {
		log.Debug().Msg("stats refresh throttled")
		return d.Stats(), false
	}
	return d.Load(ctx), true
}

// Upload sends the file at path to the backend. On success statistics are
// reloaded. The resulting status is also kept for Status.
func (d *Dashboard) Upload(ctx context.Context, path string) UploadStatus {
	d.mu.Lock()
	d.status = Uploading
	d.lastUpload = filepath.Base(path)
	d.mu.Unlock()

	status := UploadFailed
	if d.backend.UploadFile(ctx, path) {
		status = UploadSuccess
		d.Load(ctx)
	}

	d.mu.Lock()
	d.status = status
	d.mu.Unlock()

	log.Info().Str("file", filepath.Base(path)).Str("status", status.String()).Msg("document upload")
	return status
}

// Reset drops backend state when confirmed is true and then reloads
// statistics. Without confirmation nothing happens and false is returned.
func (d *Dashboard) Reset(ctx context.Context, confirmed bool) bool {
	if !confirmed {
		return false
	}
	ok := d.backend.ResetDatabase(ctx)
	log.Info().Bool("ok", ok).Msg("database reset")
	d.Load(ctx)
	return ok
}

// Stats returns the last loaded statistics.
func (d *Dashboard) Stats() model.EmbeddingStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Loaded reports whether statistics have been fetched at least once.
func (d *Dashboard) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// LoadedAt returns when statistics were last fetched.
func (d *Dashboard) LoadedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loadedAt
}

// Status returns the upload indicator state and the last uploaded file name.
func (d *Dashboard) Status() (UploadStatus, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status, d.lastUpload
}

// DismissStatus returns the upload indicator to idle.
func (d *Dashboard) DismissStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status != Uploading {
		d.status = UploadIdle
	}
}
