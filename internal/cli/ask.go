// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/session"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders content for a terminal, or returns it unchanged
// when the renderer cannot be built.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(min(GetTerminalWidth()-4, 100)),
		)
		if err != nil {
			log.Debug().Err(err).Msg("markdown renderer unavailable")
			return
		}
		markdownRenderer = r
	})
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayReply prints an assistant reply, rendering markdown only when w is
// a color terminal so piped output stays plain.
func displayReply(w io.Writer, reply string) {
	if isTerminalWriter(w) && ColorsEnabled() {
		fmt.Fprint(w, renderMarkdown(reply))
		return
	}
	fmt.Fprintln(w, strings.TrimRight(reply, "\n"))
}

// =============================================================================
// ASK COMMAND
// =============================================================================

type askResult struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
	Backend  string `json:"backend"`
}

// HandleAsk sends a single prompt with an empty history and prints the
// reply. Failures print the full-page error text and exit 1.
func HandleAsk(ctx context.Context, env *Env, args Args) error {
	prompt := strings.TrimSpace(args.Query)
	if prompt == "" {
		return UsageError("ask requires a question, e.g. ragchat ask \"What is in my notes?\"")
	}

	reply, err := env.Backend.SendMessage(ctx, []model.Message{}, prompt)

	if args.JSON {
		resp := NewJSONResponse("ask", askResult{Prompt: prompt, Response: reply, Backend: env.Backend.BaseURL()})
		if err != nil {
			resp = NewJSONErrorResponse("ask", err)
		}
		if perr := resp.Print(env.Stdout); perr != nil {
			return perr
		}
		if err != nil {
			return &ExitError{Code: ExitGeneralError}
		}
		return nil
	}

	if err != nil {
		log.Debug().Err(err).Msg("ask failed")
		fmt.Fprintln(env.Stderr, SystemStyle.Render(session.FullPage.ErrorText))
		return &ExitError{Code: ExitGeneralError}
	}

	displayReply(env.Stdout, reply)
	return nil
}
