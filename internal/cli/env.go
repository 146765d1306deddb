// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/model"
)

// Backend is the subset of *api.Client the commands use.
type Backend interface {
	CheckHealth(ctx context.Context) bool
	SendMessage(ctx context.Context, history []model.Message, prompt string) (string, error)
	UploadDocument(ctx context.Context, name string, r io.Reader) bool
	ResetDatabase(ctx context.Context) bool
	GetStats(ctx context.Context) model.EmbeddingStats
	BaseURL() string
}

var _ Backend = (*api.Client)(nil)

// Env is what a command runs against. Commands never touch os.Stdout
// directly so they can be exercised in tests.
type Env struct {
	Config  *config.Config
	Backend Backend
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewEnv returns an Env bound to the process streams.
func NewEnv(cfg *config.Config, backend Backend) *Env {
	return &Env{
		Config:  cfg,
		Backend: backend,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
)

// ExitError carries a process exit code. Message may be empty when the
// command already reported the problem.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("exit status %d", e.Code)
	}
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError returns an ExitError with ExitUsageError.
func UsageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsageError, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitGeneralError
}

// silent reports whether err has already been shown to the user.
func silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Err == nil
}

// ReportError prints err to w unless the command already did.
func ReportError(w io.Writer, err error) {
	if err == nil || silent(err) {
		return
	}
	fmt.Fprintf(w, "%s %v\n", ErrorStyle.Render("Error:"), err)
}
