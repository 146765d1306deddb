// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/export"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/session"
)

const chatHelp = `Commands:
  /clear   Start a new conversation
  /export  Save the conversation (/export [file.md|file.json])
  /help    Show this help
  /quit    Leave the chat (also /exit, Ctrl+D)`

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads one line of user input.
type lineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// linerReader wraps peterh/liner for history and line editing on a
// terminal. History is persisted to historyFile on Close.
type linerReader struct {
	state       *liner.State
	historyFile string
}

func newLinerReader(historyFile string) *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)

	r := &linerReader{state: state, historyFile: historyFile}
	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			if _, err := state.ReadHistory(f); err != nil {
				log.Debug().Err(err).Msg("failed to read chat history")
			}
			f.Close()
		}
	}
	return r
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	input, err := r.state.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		r.state.AppendHistory(input)
	}
	return input, nil
}

func (r *linerReader) Close() error {
	defer r.state.Close()
	if r.historyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.state.WriteHistory(f)
	return err
}

// plainReader reads lines from a non-terminal stream such as a pipe.
type plainReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func (r *plainReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *plainReader) Close() error { return nil }

func newLineReader(env *Env) lineReader {
	if isTerminalReader(env.Stdin) {
		path, err := config.HistoryPath()
		if err != nil {
			path = ""
		}
		return newLinerReader(path)
	}
	return &plainReader{scanner: bufio.NewScanner(env.Stdin), out: env.Stdout}
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

// HandleChat runs an interactive chat using the full-page session variant.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	reader := newLineReader(env)
	defer func() {
		if err := reader.Close(); err != nil {
			log.Debug().Err(err).Msg("failed to save chat history")
		}
	}()
	return runChat(ctx, env, reader)
}

func runChat(ctx context.Context, env *Env, reader lineReader) error {
	sess := session.New(env.Backend, session.FullPage)

	fmt.Fprintln(env.Stdout, TitleStyle.Render("ragchat")+DimStyle.Render("  "+env.Backend.BaseURL()))
	fmt.Fprintln(env.Stdout, DimStyle.Render("Type /help for commands."))
	fmt.Fprintln(env.Stdout)
	printMessages(env.Stdout, sess.Messages())

	prompt := PromptStyle.Render("you> ")
	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := reader.ReadLine(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(env.Stdout)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if !handleSlashCommand(env, sess, input) {
				return nil
			}
			continue
		}

		before := sess.Len()
		fmt.Fprintln(env.Stdout, DimStyle.Render(sess.Variant().LoadingText))
		if !sess.Submit(ctx, input) {
			continue
		}

		// Skip the echoed user message.
		msgs := sess.Messages()
		if before+1 < len(msgs) {
			printMessages(env.Stdout, msgs[before+1:])
		}
	}
}

// handleSlashCommand runs a /command. It returns false when the chat should
// end.
func handleSlashCommand(env *Env, sess *session.Session, input string) bool {
	w := env.Stdout
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "/quit", "/exit", "/q":
		return false
	case "/clear":
		sess.Clear()
		fmt.Fprintln(w, DimStyle.Render("Conversation cleared."))
		printMessages(w, sess.Messages())
	case "/export":
		path := ""
		if len(fields) > 1 {
			path = fields[1]
		}
		conv := export.NewConversation(sess.Messages(), env.Backend.BaseURL())
		written, err := export.WriteFile(path, conv, nil)
		if err != nil {
			fmt.Fprintln(env.Stderr, ErrorStyle.Render("Export failed: "+err.Error()))
			break
		}
		fmt.Fprintln(w, SuccessStyle.Render("Saved "+written))
	case "/help", "/?":
		fmt.Fprintln(w, chatHelp)
	default:
		fmt.Fprintf(w, "%s unknown command %s (try /help)\n", WarningStyle.Render("!"), cmd)
	}
	return true
}

func printMessages(w io.Writer, msgs []model.Message) {
	for _, m := range msgs {
		switch m.Role {
		case model.RoleAssistant:
			fmt.Fprintln(w, AssistantLabelStyle.Render(m.Role.DisplayName()+":"))
			displayReply(w, m.Content)
		case model.RoleSystem:
			fmt.Fprintln(w, SystemStyle.Render(m.Content))
		default:
			fmt.Fprintf(w, "%s %s\n", PromptStyle.Render(m.Role.DisplayName()+":"), m.Content)
		}
		fmt.Fprintln(w)
	}
}
