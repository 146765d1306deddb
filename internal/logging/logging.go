// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide zerolog logger.
//
// Interactive terminal screens own stdout, so in TUI mode log output goes to
// a file (or nowhere). Line-oriented CLI commands log human-readable lines to
// stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode selects where log output goes.
type Mode int

const (
	// ModeCLI writes console-formatted lines to stderr.
	ModeCLI Mode = iota
	// ModeTUI writes JSON lines to Options.File, or discards output when no
	// file is configured.
	ModeTUI
	// ModeServer writes console-formatted lines to stdout.
	ModeServer
)

// Options configures Setup.
type Options struct {
	Mode    Mode
	Level   string
	File    string
	Verbose bool
	NoColor bool
}

// Setup installs the global logger. The returned closer releases the log
// file, if one was opened, and must be called before exit.
func Setup(opts Options) (io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nopCloser{}, err
	}
	if opts.Verbose && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	var closer io.Closer = nopCloser{}
	var out io.Writer

	switch {
	case opts.File != "":
		f, err := openLogFile(opts.File)
		if err != nil {
			return nopCloser{}, err
		}
		out, closer = f, f
	case opts.Mode == ModeTUI:
		out = io.Discard
	case opts.Mode == ModeServer:
		out = console(os.Stdout, opts.NoColor)
	default:
		// Quiet unless asked: CLI output is for the user, not for logs.
		if !opts.Verbose {
			zerolog.SetGlobalLevel(max(level, zerolog.WarnLevel))
		}
		out = console(os.Stderr, opts.NoColor)
	}

	ctx := zerolog.New(out).With().Timestamp()
	if opts.Verbose {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()
	return closer, nil
}

// ParseLevel accepts zerolog level names case-insensitively. Empty means
// info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func console(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: noColor}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
