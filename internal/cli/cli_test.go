// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ragchat/internal/admin"
	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/server"
	"github.com/jeranaias/ragchat/internal/session"
)

func init() {
	SetColorsEnabled(false)
}

// =============================================================================
// TEST HELPERS
// =============================================================================

type testEnv struct {
	*Env
	out *bytes.Buffer
	err *bytes.Buffer
}

func newEnv(t *testing.T, baseURL string, stdin string) testEnv {
	t.Helper()
	out, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	return testEnv{
		Env: &Env{
			Config:  config.Default(),
			Backend: api.NewClient(baseURL),
			Stdin:   strings.NewReader(stdin),
			Stdout:  out,
			Stderr:  errBuf,
		},
		out: out,
		err: errBuf,
	}
}

// startBackend runs the mock backend behind httptest.
func startBackend(t *testing.T) string {
	t.Helper()
	logger := zerolog.Nop()
	srv, err := server.New(server.Options{Logger: &logger})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func deadBackend(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()
	return url
}

// =============================================================================
// PARSING TESTS
// =============================================================================

func TestParseArgs_Commands(t *testing.T) {
	tests := []struct {
		argv []string
		want Command
	}{
		{nil, CmdTUI},
		{[]string{"tui"}, CmdTUI},
		{[]string{"chat"}, CmdChat},
		{[]string{"ask", "hi"}, CmdAsk},
		{[]string{"status"}, CmdStatus},
		{[]string{"s"}, CmdStatus},
		{[]string{"stats", "--json"}, CmdStats},
		{[]string{"upload", "a.md"}, CmdUpload},
		{[]string{"reset", "--yes"}, CmdReset},
		{[]string{"mock-backend"}, CmdMockBackend},
		{[]string{"serve"}, CmdMockBackend},
		{[]string{"version"}, CmdVersion},
		{[]string{"--help"}, CmdHelp},
		{[]string{"/widget"}, CmdTUI},
		{[]string{"bogus"}, CmdUnknown},
	}

	for _, tc := range tests {
		got, _ := ParseArgs(tc.argv)
		if got != tc.want {
			t.Errorf("ParseArgs(%q) = %v, want %v", tc.argv, got, tc.want)
		}
	}
}

func TestParseArgs_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args := ParseArgs([]string{"--backend", "http://x:1", "ask", "--verbose", "what", "is", "this", "--no-color", "--config=/tmp/c.toml"})

	assert.Equal(t, CmdAsk, cmd)
	assert.Equal(t, "http://x:1", args.Backend)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.True(t, args.Verbose)
	assert.True(t, args.NoColor)
	assert.Equal(t, "what is this", args.Query)
}

func TestParseArgs_CommandFlags(t *testing.T) {
	_, args := ParseArgs([]string{"tui", "/admin?backend=http://h:9"})
	assert.Equal(t, "/admin?backend=http://h:9", args.Target)

	_, args = ParseArgs([]string{"/widget?backend=http://h:9"})
	assert.Equal(t, "/widget?backend=http://h:9", args.Target)

	_, args = ParseArgs([]string{"stats", "--json"})
	assert.True(t, args.JSON)

	_, args = ParseArgs([]string{"reset", "-y"})
	assert.True(t, args.Yes)

	_, args = ParseArgs([]string{"mock-backend", "--addr", ":6000", "--ollama=http://o:11434", "--model", "m"})
	assert.Equal(t, ":6000", args.Addr)
	assert.Equal(t, "http://o:11434", args.OllamaURL)
	assert.Equal(t, "m", args.Model)

	_, args = ParseArgs([]string{"bogus", "x"})
	assert.Equal(t, "bogus", args.Unknown)
}

func TestArgParser(t *testing.T) {
	p := NewArgParser([]string{"first", "--json", "second", "--lines", "50", "--mode=fast", "--", "--literal"}, "json")

	if got := p.Positional(0); got != "first" {
		t.Errorf("Positional(0) = %q, want 'first'", got)
	}
	want := []string{"first", "second", "--literal"}
	if got := p.PositionalFrom(0); !reflect.DeepEqual(got, want) {
		t.Errorf("PositionalFrom(0) = %q, want %q", got, want)
	}
	if !p.BoolFlag("json") {
		t.Error("BoolFlag(json) = false, want true")
	}
	if got := p.Flag("lines"); got != "50" {
		t.Errorf("Flag(lines) = %q, want '50'", got)
	}
	if got := p.Flag("mode"); got != "fast" {
		t.Errorf("Flag(mode) = %q, want 'fast'", got)
	}
	if got := p.FlagOrDefault("missing", "d"); got != "d" {
		t.Errorf("FlagOrDefault = %q, want 'd'", got)
	}
	if !p.HasFlag("--lines") || p.HasFlag("nope") {
		t.Error("HasFlag mismatch")
	}
}

func TestParsePositiveInt(t *testing.T) {
	if n, err := ParsePositiveInt("5", "n"); err != nil || n != 5 {
		t.Errorf("ParsePositiveInt(5) = %d, %v", n, err)
	}
	for _, bad := range []string{"", "x", "0", "-3"} {
		if _, err := ParsePositiveInt(bad, "n"); err == nil {
			t.Errorf("ParsePositiveInt(%q) should fail", bad)
		}
	}
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitGeneralError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUsageError, ExitCode(UsageError("bad %s", "flag")))
	assert.Equal(t, 7, ExitCode(&ExitError{Code: 7}))
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	ReportError(&buf, &ExitError{Code: 1})
	assert.Empty(t, buf.String(), "silent errors are not printed")

	ReportError(&buf, errors.New("visible"))
	assert.Contains(t, buf.String(), "visible")
}

// =============================================================================
// COMMAND TESTS
// =============================================================================

func TestHandleStatus(t *testing.T) {
	env := newEnv(t, startBackend(t), "")
	require.NoError(t, HandleStatus(context.Background(), env.Env, Args{}))
	assert.Contains(t, env.out.String(), "online")

	env = newEnv(t, deadBackend(t), "")
	err := HandleStatus(context.Background(), env.Env, Args{})
	assert.Equal(t, ExitGeneralError, ExitCode(err))
	assert.Contains(t, env.out.String(), OfflineBanner)
}

func TestHandleStatus_JSON(t *testing.T) {
	env := newEnv(t, startBackend(t), "")
	require.NoError(t, HandleStatus(context.Background(), env.Env, Args{JSON: true}))

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			State string `json:"state"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "online", resp.Data.State)
}

func TestHandleAsk(t *testing.T) {
	base := startBackend(t)
	env := newEnv(t, base, "")

	require.True(t, env.Backend.UploadDocument(context.Background(), "facts.txt", strings.NewReader("The office wifi password is hunter2.")))

	require.NoError(t, HandleAsk(context.Background(), env.Env, Args{Query: "what is the office wifi password"}))
	assert.Contains(t, env.out.String(), "hunter2")
}

func TestHandleAsk_Errors(t *testing.T) {
	env := newEnv(t, deadBackend(t), "")

	err := HandleAsk(context.Background(), env.Env, Args{Query: "  "})
	assert.Equal(t, ExitUsageError, ExitCode(err))

	err = HandleAsk(context.Background(), env.Env, Args{Query: "hello"})
	assert.Equal(t, ExitGeneralError, ExitCode(err))
	assert.Contains(t, env.err.String(), session.FullPage.ErrorText)
}

func TestHandleStats_JSON(t *testing.T) {
	env := newEnv(t, startBackend(t), "")
	require.NoError(t, HandleStats(context.Background(), env.Env, Args{JSON: true}))

	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.out.Bytes(), &resp))
	assert.Equal(t, float64(0), resp.Data["totalDocuments"])
}

func TestHandleStats_FallbackWhenOffline(t *testing.T) {
	env := newEnv(t, deadBackend(t), "")
	require.NoError(t, HandleStats(context.Background(), env.Env, Args{}))
	assert.Contains(t, env.out.String(), "350")
	assert.Contains(t, env.out.String(), "45.2 MB")
}

func TestHandleUpload(t *testing.T) {
	env := newEnv(t, startBackend(t), "")
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nSome content."), 0600))

	require.NoError(t, HandleUpload(context.Background(), env.Env, Args{File: path}))
	assert.Contains(t, env.out.String(), admin.UploadSuccess.Message())
	assert.Equal(t, 1, env.Backend.GetStats(context.Background()).TotalDocuments)
}

func TestHandleUpload_Errors(t *testing.T) {
	env := newEnv(t, startBackend(t), "")
	ctx := context.Background()

	assert.Equal(t, ExitUsageError, ExitCode(HandleUpload(ctx, env.Env, Args{})))
	assert.Equal(t, ExitUsageError, ExitCode(HandleUpload(ctx, env.Env, Args{File: "image.png"})))
	assert.Equal(t, ExitGeneralError, ExitCode(HandleUpload(ctx, env.Env, Args{File: filepath.Join(t.TempDir(), "missing.txt")})))

	dead := newEnv(t, deadBackend(t), "")
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
	assert.Equal(t, ExitGeneralError, ExitCode(HandleUpload(ctx, dead.Env, Args{File: path})))
	assert.Contains(t, dead.err.String(), admin.UploadFailed.Message())
}

func TestHandleReset(t *testing.T) {
	env := newEnv(t, startBackend(t), "")

	// Non-terminal stdin without --yes cannot prompt.
	err := HandleReset(context.Background(), env.Env, Args{})
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	require.NoError(t, HandleReset(context.Background(), env.Env, Args{Yes: true}))
	assert.Contains(t, env.out.String(), "reset")
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		got, err := PromptYesNo(strings.NewReader(tc.input), &out, "Sure?")
		if err != nil {
			t.Errorf("PromptYesNo(%q) error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("PromptYesNo(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestRunChat_Transcript(t *testing.T) {
	input := "hello there\n/help\n/clear\n/quit\nnever read\n"
	env := newEnv(t, startBackend(t), input)

	reader := &plainReader{scanner: bufio.NewScanner(env.Stdin), out: io.Discard}
	require.NoError(t, runChat(context.Background(), env.Env, reader))

	out := env.out.String()
	assert.Equal(t, 2, strings.Count(out, session.FullPage.Greeting), "greeting shown at start and after /clear")
	assert.Contains(t, out, session.FullPage.LoadingText)
	assert.Contains(t, out, "/quit")
	assert.Contains(t, out, "Conversation cleared.")
}

func TestRunChat_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.json")
	env := newEnv(t, startBackend(t), "/export "+path+"\n/quit\n")

	reader := &plainReader{scanner: bufio.NewScanner(env.Stdin), out: io.Discard}
	require.NoError(t, runChat(context.Background(), env.Env, reader))

	assert.Contains(t, env.out.String(), "Saved "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), session.FullPage.Greeting)
}

func TestRunChat_BackendDown(t *testing.T) {
	env := newEnv(t, deadBackend(t), "hi\n")

	reader := &plainReader{scanner: bufio.NewScanner(env.Stdin), out: io.Discard}
	require.NoError(t, runChat(context.Background(), env.Env, reader), "EOF ends the chat cleanly")
	assert.Contains(t, env.out.String(), session.FullPage.ErrorText)
}

func TestMockBackendOptions(t *testing.T) {
	env := newEnv(t, "http://localhost:5000", "")
	env.Config.Backend.URL = "http://127.0.0.1:6543"

	opts := mockBackendOptions(env.Env, Args{})
	assert.Equal(t, "127.0.0.1:6543", opts.Addr)

	opts = mockBackendOptions(env.Env, Args{Addr: ":7000"})
	assert.Equal(t, ":7000", opts.Addr)
}
