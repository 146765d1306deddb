// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jeranaias/ragchat/internal/admin"
	"github.com/jeranaias/ragchat/internal/api"
)

// newUploadBar returns a byte progress bar that draws on w.
func newUploadBar(w io.Writer, size int64, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Uploading "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionEnableColorCodes(ColorsEnabled()),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// HandleUpload uploads one document, showing progress on stderr.
func HandleUpload(ctx context.Context, env *Env, args Args) error {
	path := strings.TrimSpace(args.File)
	if path == "" {
		return UsageError("upload requires a file, e.g. ragchat upload notes.md")
	}
	if !api.IsSupportedDocument(path) {
		return UsageError("unsupported file type %q (supported: %s)", filepath.Ext(path), strings.Join(api.SupportedExtensions, ", "))
	}

	f, err := os.Open(path)
	if err != nil {
		return &ExitError{Code: ExitGeneralError, Message: "cannot open file", Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return &ExitError{Code: ExitGeneralError, Message: "cannot stat file", Err: err}
	}

	name := filepath.Base(path)
	bar := newUploadBar(env.Stderr, info.Size(), name)
	reader := progressbar.NewReader(f, bar)

	ok := env.Backend.UploadDocument(ctx, name, &reader)
	_ = bar.Finish()

	if !ok {
		fmt.Fprintln(env.Stderr, ErrorStyle.Render(admin.UploadFailed.Message()))
		return &ExitError{Code: ExitGeneralError}
	}
	fmt.Fprintln(env.Stdout, SuccessStyle.Render(admin.UploadSuccess.Message()))
	return nil
}
