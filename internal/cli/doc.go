// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI commands of
// ragchat.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - ArgParser: Flag and positional argument parsing shared by all commands
//   - Env: The configuration, client and streams a command runs against
//
// # Usage
//
//	cmd, args := cli.Parse()
//	env := cli.NewEnv(cfg, client)
//	switch cmd {
//	case cli.CmdAsk:
//	    err = cli.HandleAsk(ctx, env, args)
//	case cli.CmdChat:
//	    err = cli.HandleChat(ctx, env, args)
//	}
//
// # Commands
//
//   - tui: Interactive terminal UI (default)
//   - chat: Line-based chat with input history
//   - ask: Single question
//   - status: Backend health, exit code 1 when offline
//   - stats: Knowledge base statistics (--json for scripts)
//   - upload: Add a document to the knowledge base
//   - reset: Delete all conversation history and documents
//   - mock-backend: Run a local development backend
package cli
