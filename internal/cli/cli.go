// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (overridden at build time with -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdStatus
	CmdStats
	CmdUpload
	CmdReset
	CmdMockBackend
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[Command]string{
	CmdTUI:         "tui",
	CmdChat:        "chat",
	CmdAsk:         "ask",
	CmdStatus:      "status",
	CmdStats:       "stats",
	CmdUpload:      "upload",
	CmdReset:       "reset",
	CmdMockBackend: "mock-backend",
	CmdVersion:     "version",
	CmdHelp:        "help",
}

// String returns the command name as typed on the command line.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Backend    string
	ConfigPath string
	Verbose    bool
	NoColor    bool

	// Command-specific
	Target    string // TUI launch target, e.g. "/widget?backend=http://x"
	Query     string
	File      string
	JSON      bool
	Yes       bool
	Addr      string
	OllamaURL string
	Model     string

	// Unknown holds the unrecognised command name for CmdUnknown.
	Unknown string

	// Raw holds the arguments after the command name.
	Raw []string
}

const usageText = `ragchat - terminal client for a retrieval-augmented chat backend

Usage:
  ragchat [global flags] [command] [flags]

Commands:
  tui [route]                Start the terminal UI (default)
                             route is /, /widget, /admin or /login and may
                             carry ?backend=URL
  chat                       Line-based chat with input history
  ask "question"             Ask a single question
  status                     Check backend health (exit code 1 when offline)
  stats [--json]             Show knowledge base statistics
  upload <file>              Add a .txt, .md or .pdf file to the knowledge base
  reset [--yes]              Delete all conversation history and documents
  mock-backend [flags]       Run a local development backend
    --addr HOST:PORT         Listen address (default 127.0.0.1:5000)
    --ollama URL             Answer with an Ollama model instead of passages
    --model NAME             Ollama model name
  version                    Show version information
  help                       Show this help

Global flags:
  --backend URL              Backend base URL (overrides config)
  --config PATH              Config file (default ~/.ragchat/config.toml)
  -v, --verbose              Debug logging
  --no-color                 Disable colored output

Chat commands:
  /clear                     Start a new conversation
  /help                      Show chat commands
  /quit                      Leave the chat

Environment:
  RAGCHAT_BACKEND_URL, RAGCHAT_HEALTH_INTERVAL, RAGCHAT_START_ROUTE,
  RAGCHAT_LOG_LEVEL, RAGCHAT_LOG_FILE, NO_COLOR

Version: %s
`

// PrintUsage writes the help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "ragchat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:         %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args
	}

	name := strings.ToLower(remaining[0])
	rest := remaining[1:]
	args.Raw = rest

	switch name {
	case "tui":
		p := NewArgParser(rest)
		args.Target = p.Positional(0)
		return CmdTUI, args

	case "chat":
		return CmdChat, args

	case "ask":
		p := NewArgParser(rest, "json")
		args.Query = strings.Join(p.PositionalFrom(0), " ")
		args.JSON = p.BoolFlag("json")
		return CmdAsk, args

	case "status", "s":
		p := NewArgParser(rest, "json")
		args.JSON = p.BoolFlag("json")
		return CmdStatus, args

	case "stats":
		p := NewArgParser(rest, "json")
		args.JSON = p.BoolFlag("json")
		return CmdStats, args

	case "upload":
		p := NewArgParser(rest)
		args.File = p.Positional(0)
		return CmdUpload, args

	case "reset":
		p := NewArgParser(rest, "yes", "y")
		args.Yes = p.BoolFlag("yes", "y")
		return CmdReset, args

	case "mock-backend", "serve":
		p := NewArgParser(rest)
		args.Addr = p.Flag("addr")
		args.OllamaURL = p.Flag("ollama")
		args.Model = p.Flag("model")
		return CmdMockBackend, args

	case "version", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// A bare route opens the TUI there: "ragchat /widget?backend=..."
		if strings.HasPrefix(name, "/") {
			args.Target = remaining[0]
			return CmdTUI, args
		}
		args.Unknown = remaining[0]
		return CmdUnknown, args
	}
}

// parseGlobalFlags extracts global flags wherever they appear and returns
// the remaining arguments in order.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--no-color":
			args.NoColor = true
		case arg == "--backend" || arg == "--config":
			if i+1 < len(argv) {
				i++
				if arg == "--backend" {
					args.Backend = argv[i]
				} else {
					args.ConfigPath = argv[i]
				}
			}
		case strings.HasPrefix(arg, "--backend="):
			args.Backend = strings.TrimPrefix(arg, "--backend=")
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args
}
