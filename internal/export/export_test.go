// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/ragchat/internal/model"
)

func sampleConversation() *Conversation {
	msgs := []model.Message{
		model.NewAssistantMessage("Hello! How can I help?"),
		model.NewUserMessage("What is *RAG*?\nExplain briefly."),
		model.NewAssistantMessage("Retrieval-augmented generation.\n\n```go\nfmt.Println(1)\n```"),
	}
	conv := NewConversation(msgs, "http://localhost:5000")
	conv.ExportedAt = time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	return conv
}

func TestNewConversationTitle(t *testing.T) {
	conv := sampleConversation()
	if conv.Title != "What is *RAG*?" {
		t.Errorf("Title = %q, want first line of first user message", conv.Title)
	}

	greetingOnly := NewConversation([]model.Message{model.NewAssistantMessage("hi")}, "")
	if greetingOnly.Title != "Chat" {
		t.Errorf("Title = %q, want %q", greetingOnly.Title, "Chat")
	}
}

func TestNewConversationCopiesMessages(t *testing.T) {
	msgs := []model.Message{model.NewUserMessage("a")}
	conv := NewConversation(msgs, "")
	msgs[0] = model.NewUserMessage("b")
	assert.Equal(t, "a", conv.Messages[0].Content)
}

func TestMarkdownExport(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, "# What is \\*RAG\\*?")
	assert.Contains(t, md, "### [You] <sub>")
	assert.Contains(t, md, "### [Assistant] <sub>")
	assert.Contains(t, md, "```go\nfmt.Println(1)\n```")
	assert.Equal(t, 2, strings.Count(md, "\n---\n\n")-1, "separators between three messages")

	// Front matter is valid YAML.
	parts := strings.SplitN(md, "---\n", 3)
	require.Len(t, parts, 3)
	var meta frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &meta))
	assert.Equal(t, "What is *RAG*?", meta.Title)
	assert.Equal(t, 3, meta.Messages)
	assert.Equal(t, "ragchat", meta.Generator)
}

func TestMarkdownExportWithoutMetadata(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sampleConversation())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "# "))
	assert.Contains(t, md, "### [You]\n")
	assert.NotContains(t, md, "<sub>")
}

func TestJSONExport(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleConversation())
	require.NoError(t, err)

	var decoded struct {
		Title    string          `json:"title"`
		Backend  string          `json:"backend"`
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "http://localhost:5000", decoded.Backend)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, model.RoleUser, decoded.Messages[1].Role)
}

func TestExportEmpty(t *testing.T) {
	empty := &Conversation{}
	for _, e := range []Exporter{NewMarkdownExporter(nil), NewJSONExporter()} {
		if _, err := e.Export(empty); !errors.Is(err, ErrEmpty) {
			t.Errorf("%T.Export(empty) error = %v, want ErrEmpty", e, err)
		}
		if _, err := e.Export(nil); err == nil {
			t.Errorf("%T.Export(nil) should fail", e)
		}
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"chat.json", ".json"},
		{"CHAT.JSON", ".json"},
		{"chat.md", ".md"},
		{"chat.txt", ".md"},
		{"chat", ".md"},
	}
	for _, tt := range tests {
		if got := ForPath(tt.path, nil).FileExtension(); got != tt.want {
			t.Errorf("ForPath(%q) extension = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	written, err := WriteFile(path, sampleConversation(), nil)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestDefaultFilename(t *testing.T) {
	got := DefaultFilename(time.Date(2025, 6, 1, 10, 30, 5, 0, time.UTC))
	if want := "ragchat_20250601_103005.md"; got != want {
		t.Errorf("DefaultFilename() = %q, want %q", got, want)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	if got, want := escapeMarkdown("a_b [c] #1 *x*"), "a\\_b \\[c\\] \\#1 \\*x\\*"; got != want {
		t.Errorf("escapeMarkdown() = %q, want %q", got, want)
	}
}
