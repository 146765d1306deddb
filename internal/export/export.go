// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/util"
)

// ErrEmpty is returned when there is nothing worth exporting.
var ErrEmpty = errors.New("conversation has no messages")

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the exported snapshot.
type Conversation struct {
	Title      string          `json:"title"`
	Backend    string          `json:"backend"`
	ExportedAt time.Time       `json:"exportedAt"`
	Messages   []model.Message `json:"messages"`
}

// NewConversation snapshots msgs. The title is the first user message.
func NewConversation(msgs []model.Message, backend string) *Conversation {
	title := "Chat"
	for _, m := range msgs {
		if m.IsUser() {
			title = util.TruncateWidth(util.FirstLine(m.Content), 60)
			break
		}
	}
	return &Conversation{
		Title:      title,
		Backend:    backend,
		ExportedAt: time.Now(),
		Messages:   append([]model.Message(nil), msgs...),
	}
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a conversation in one format.
type Exporter interface {
	Export(conv *Conversation) ([]byte, error)

	// FileExtension returns the extension including the dot.
	FileExtension() string
}

// Options configures the Markdown exporter.
type Options struct {
	// IncludeMetadata adds the front matter block.
	IncludeMetadata bool

	// IncludeTimestamps adds the time to every message heading.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForPath picks the exporter matching the extension of path.
func ForPath(path string, opts *Options) Exporter {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONExporter()
	}
	return NewMarkdownExporter(opts)
}

// DefaultFilename names an export made at t.
func DefaultFilename(t time.Time) string {
	return "ragchat_" + t.Format("20060102_150405") + ".md"
}

// WriteFile exports conv to path, or to DefaultFilename in the working
// directory when path is empty, and returns the path written.
func WriteFile(path string, conv *Conversation, opts *Options) (string, error) {
	if path == "" {
		path = DefaultFilename(conv.ExportedAt)
	}

	content, err := ForPath(path, opts).Export(conv)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	if err := util.AtomicWriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}

// escapeMarkdown escapes the characters that would break a heading.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("#", "\\#", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]")
	return r.Replace(s)
}
