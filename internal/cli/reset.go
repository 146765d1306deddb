// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/ragchat/internal/admin"
)

// HandleReset deletes all conversation history and documents after
// confirmation.
func HandleReset(ctx context.Context, env *Env, args Args) error {
	confirmed, err := RequireConfirmation(env.Stdin, env.Stdout, admin.ResetPrompt, args.Yes)
	if err != nil {
		return &ExitError{Code: ExitUsageError, Err: err}
	}
	if !confirmed {
		fmt.Fprintln(env.Stdout, DimStyle.Render("Cancelled."))
		return nil
	}

	if !env.Backend.ResetDatabase(ctx) {
		fmt.Fprintln(env.Stderr, ErrorStyle.Render("Reset failed. Check backend logs."))
		return &ExitError{Code: ExitGeneralError}
	}
	fmt.Fprintln(env.Stdout, SuccessStyle.Render("Knowledge base reset."))
	return nil
}
