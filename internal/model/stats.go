// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"math"
	"time"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	History []Message `json:"history"`
	Prompt  string    `json:"prompt"`
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// EmbeddingStats describes the backend knowledge base. The client only
// displays it.
type EmbeddingStats struct {
	TotalDocuments int     `json:"totalDocuments"`
	TotalChunks    int     `json:"totalChunks"`
	LastUpdated    string  `json:"lastUpdated"`
	DiskUsageMB    float64 `json:"diskUsageMB"`
}

// LastUpdatedTime parses LastUpdated. Backends are expected to send RFC 3339
// but the field is free-form, so the raw string is returned by callers when
// parsing fails.
func (s EmbeddingStats) LastUpdatedTime() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.LastUpdated); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DiskUsageString formats the disk usage for display.
func (s EmbeddingStats) DiskUsageString() string {
	if s.DiskUsageMB >= 1024 {
		return fmt.Sprintf("%.1f GB", s.DiskUsageMB/1024)
	}
	if s.DiskUsageMB > 0 && s.DiskUsageMB < 1 {
		return fmt.Sprintf("%.0f KB", math.Max(math.Round(s.DiskUsageMB*1024), 1))
	}
	return fmt.Sprintf("%.1f MB", s.DiskUsageMB)
}
