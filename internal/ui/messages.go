// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/jeranaias/ragchat/internal/admin"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/health"
	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// APPLICATION MESSAGES
// =============================================================================

// HealthMsg carries one result of the backend liveness poll.
type HealthMsg struct {
	State health.State
}

// ConfigReloadedMsg is sent when the config file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// RouteMsg switches the active screen.
type RouteMsg struct {
	Route string
}

type exportDoneMsg struct {
	Path string
	Err  error
}

// =============================================================================
// ADMIN MESSAGES
// =============================================================================

type statsLoadedMsg struct {
	Stats     model.EmbeddingStats
	Throttled bool
}

type uploadDoneMsg struct {
	Status admin.UploadStatus
	File   string
}

type resetDoneMsg struct {
	OK bool
}
