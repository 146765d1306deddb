// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
}

// unreachableURL returns an address nothing listens on.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// =============================================================================
// BASE URL TESTS
// =============================================================================

func TestSetBaseURL_StripsTrailingSlashes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:5000", "http://localhost:5000"},
		{"http://localhost:5000/", "http://localhost:5000"},
		{"http://localhost:5000///", "http://localhost:5000"},
		{"http://example.com/api/", "http://example.com/api"},
		{"not a url/", "not a url"},
	}

	c := NewClient("")
	for _, tc := range tests {
		c.SetBaseURL(tc.in)
		if got := c.BaseURL(); got != tc.want {
			t.Errorf("SetBaseURL(%q) -> BaseURL() = %q, want %q", tc.in, got, tc.want)
		}
		// Re-applying the result is a no-op.
		c.SetBaseURL(c.BaseURL())
		if got := c.BaseURL(); got != tc.want {
			t.Errorf("re-applied BaseURL() = %q, want %q", got, tc.want)
		}
	}
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.healthTimeout != 2*time.Second {
		t.Errorf("healthTimeout = %v, want 2s", c.healthTimeout)
	}

	c = NewClientWithConfig(nil)
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("nil config BaseURL() = %q", c.BaseURL())
	}
}

// =============================================================================
// HEALTH TESTS
// =============================================================================

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{"ok", http.StatusOK, true},
		{"no content", http.StatusNoContent, true},
		{"server error", http.StatusInternalServerError, false},
		{"not found", http.StatusNotFound, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != PathHealth || r.Method != http.MethodGet {
					t.Errorf("request = %s %s, want GET /health", r.Method, r.URL.Path)
				}
				w.WriteHeader(tc.status)
			}))
			if got := c.CheckHealth(context.Background()); got != tc.want {
				t.Errorf("CheckHealth() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckHealth_Unreachable(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: unreachableURL(t)})
	if c.CheckHealth(context.Background()) {
		t.Error("CheckHealth() = true for unreachable backend")
	}
}

func TestCheckHealth_TimesOutOnHungServer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))

	start := time.Now()
	ok := c.CheckHealth(context.Background())
	elapsed := time.Since(start)

	if ok {
		t.Error("CheckHealth() = true for hung server")
	}
	if elapsed < 1500*time.Millisecond || elapsed > 3500*time.Millisecond {
		t.Errorf("CheckHealth() took %v, want about 2s", elapsed)
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestSendMessage_Success(t *testing.T) {
	history := []model.Message{model.NewAssistantMessage("Hi")}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PathChat, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req model.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello", req.Prompt)
		require.Len(t, req.History, 1)
		assert.Equal(t, history[0].ID, req.History[0].ID)

		_ = json.NewEncoder(w).Encode(model.ChatResponse{Response: "This is a mock response"})
	}))

	reply, err := c.SendMessage(context.Background(), history, "Hello")
	require.NoError(t, err)
	assert.Equal(t, "This is a mock response", reply)
}

func TestSendMessage_EmptyHistoryEncodesAsArray(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"history":[]`) {
			t.Errorf("body = %s, want empty history array", body)
		}
		_, _ = w.Write([]byte(`{"response":""}`))
	}))

	reply, err := c.SendMessage(context.Background(), nil, "x")
	require.NoError(t, err)
	assert.Equal(t, "", reply)
}

func TestSendMessage_Failures(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		_, err := c.SendMessage(context.Background(), nil, "hi")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBadStatus), "err = %v", err)

		var ce *ClientError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, http.StatusInternalServerError, ce.StatusCode)
	})

	t.Run("bad json", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		_, err := c.SendMessage(context.Background(), nil, "hi")
		assert.True(t, errors.Is(err, ErrDecode), "err = %v", err)
	})

	t.Run("unreachable", func(t *testing.T) {
		c := NewClientWithConfig(&ClientConfig{BaseURL: unreachableURL(t)})
		_, err := c.SendMessage(context.Background(), nil, "hi")
		assert.True(t, IsUnavailable(err), "err = %v", err)
		assert.False(t, IsTimeout(err))
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()
		defer srv.CloseClientConnections()
		c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond})
		_, err := c.SendMessage(context.Background(), nil, "hi")
		assert.True(t, IsTimeout(err), "err = %v", err)
	})
}

// =============================================================================
// ADMIN TESTS
// =============================================================================

func TestUploadDocument(t *testing.T) {
	var gotName, gotBody string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, PathUpload, r.URL.Path)
		f, hdr, err := r.FormFile(UploadField)
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(data)
		w.WriteHeader(http.StatusCreated)
	}))

	ok := c.UploadDocument(context.Background(), "/tmp/notes.md", strings.NewReader("# Notes"))
	assert.True(t, ok)
	assert.Equal(t, "notes.md", gotName)
	assert.Equal(t, "# Notes", gotBody)
}

func TestUploadDocument_Failures(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	if c.UploadDocument(context.Background(), "a.txt", strings.NewReader("x")) {
		t.Error("UploadDocument() = true on 400")
	}

	c = NewClientWithConfig(&ClientConfig{BaseURL: unreachableURL(t)})
	if c.UploadDocument(context.Background(), "a.txt", strings.NewReader("x")) {
		t.Error("UploadDocument() = true for unreachable backend")
	}
}

func TestUploadFile(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0600))

	assert.True(t, c.UploadFile(context.Background(), path))
	assert.False(t, c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")))
}

func TestIsSupportedDocument(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.txt", true},
		{"a.MD", true},
		{"report.pdf", true},
		{"sheet.xlsx", false},
		{"noext", false},
	}
	for _, tc := range tests {
		if got := IsSupportedDocument(tc.name); got != tc.want {
			t.Errorf("IsSupportedDocument(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResetDatabase(t *testing.T) {
	status := http.StatusOK
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathReset {
			t.Errorf("request = %s %s, want POST /admin/reset", r.Method, r.URL.Path)
		}
		w.WriteHeader(status)
	}))

	if !c.ResetDatabase(context.Background()) {
		t.Error("ResetDatabase() = false on 200")
	}
	status = http.StatusForbidden
	if c.ResetDatabase(context.Background()) {
		t.Error("ResetDatabase() = true on 403")
	}
}

func TestGetStats(t *testing.T) {
	want := model.EmbeddingStats{TotalDocuments: 2, TotalChunks: 9, LastUpdated: "2025-05-05T00:00:00Z", DiskUsageMB: 0.3}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(want)
	}))

	got := c.GetStats(context.Background())
	assert.Equal(t, want, got)
}

func TestGetStats_Fallback(t *testing.T) {
	check := func(t *testing.T, got model.EmbeddingStats) {
		t.Helper()
		assert.Equal(t, 12, got.TotalDocuments)
		assert.Equal(t, 350, got.TotalChunks)
		assert.Equal(t, 45.2, got.DiskUsageMB)
		ts, ok := got.LastUpdatedTime()
		require.True(t, ok, "LastUpdated = %q", got.LastUpdated)
		assert.WithinDuration(t, time.Now(), ts, 5*time.Second)
	}

	t.Run("network error", func(t *testing.T) {
		c := NewClientWithConfig(&ClientConfig{BaseURL: unreachableURL(t)})
		check(t, c.GetStats(context.Background()))
	})

	t.Run("bad status", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		check(t, c.GetStats(context.Background()))
	})

	t.Run("bad body", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}))
		check(t, c.GetStats(context.Background()))
	})
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestClientError_Is(t *testing.T) {
	err := transportError(context.DeadlineExceeded)
	if !errors.Is(err, ErrTimeout) {
		t.Error("timeout transport error should match ErrTimeout")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("timeout transport error should not match ErrUnavailable")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause should be reachable through Unwrap")
	}
	if got := ErrTypeDecode.String(); got != "decode" {
		t.Errorf("ErrTypeDecode.String() = %q", got)
	}
}
