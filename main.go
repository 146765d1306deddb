// ragchat - terminal client for a retrieval-augmented Ollama chat backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/cli"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/logging"
	"github.com/jeranaias/ragchat/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdUnknown:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args.Unknown)
		cli.PrintUsage(os.Stderr)
		return cli.ExitUsageError
	}

	if args.NoColor {
		cli.SetColorsEnabled(false)
	}

	cfg, cfgPath, err := loadConfig(args)
	if err != nil {
		cli.ReportError(os.Stderr, &cli.ExitError{Code: cli.ExitConfigError, Message: "configuration error", Err: err})
		return cli.ExitConfigError
	}

	fileURL := cfg.Backend.URL
	route, err := applyOverrides(cmd, args, cfg)
	if err != nil {
		cli.ReportError(os.Stderr, cli.UsageError("%v", err))
		return cli.ExitUsageError
	}

	closer, err := logging.Setup(logging.Options{
		Mode:    logMode(cmd),
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Verbose: args.Verbose,
		NoColor: args.NoColor || !cli.ColorsEnabled(),
	})
	if err != nil {
		cli.ReportError(os.Stderr, &cli.ExitError{Code: cli.ExitConfigError, Message: "logging setup failed", Err: err})
		return cli.ExitConfigError
	}
	defer closer.Close()

	if err := config.ValidateBackendURL(cfg.Backend.URL); err != nil {
		log.Warn().Err(err).Str("url", cfg.Backend.URL).Msg("backend url looks invalid, using it anyway")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClientWithConfig(cfg.ClientConfig())
	env := cli.NewEnv(cfg, client)

	log.Debug().Str("command", cmd.String()).Str("backend", client.BaseURL()).Msg("starting")

	switch cmd {
	case cli.CmdTUI:
		err = ui.Run(ctx, ui.Options{Client: client, Config: cfg, Route: route, FileBackendURL: fileURL}, cfgPath)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, env, args)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, env, args)
	case cli.CmdStatus:
		err = cli.HandleStatus(ctx, env, args)
	case cli.CmdStats:
		err = cli.HandleStats(ctx, env, args)
	case cli.CmdUpload:
		err = cli.HandleUpload(ctx, env, args)
	case cli.CmdReset:
		err = cli.HandleReset(ctx, env, args)
	case cli.CmdMockBackend:
		err = cli.HandleMockBackend(ctx, env, args)
	}

	if err != nil {
		cli.ReportError(os.Stderr, err)
		return cli.ExitCode(err)
	}
	return cli.ExitSuccess
}

// applyOverrides applies the TUI launch target and --backend to cfg and
// returns the start route. The backend url is taken as given.
func applyOverrides(cmd cli.Command, args cli.Args, cfg *config.Config) (string, error) {
	route := cfg.UI.StartRoute
	if cmd == cli.CmdTUI && args.Target != "" {
		target, err := config.ParseLaunchTarget(args.Target)
		if err != nil {
			return "", err
		}
		route = target.Route
		if target.Backend != "" {
			cfg.Backend.URL = target.Backend
		}
	}
	if args.Backend != "" {
		cfg.Backend.URL = args.Backend
	}
	return route, nil
}

// loadConfig reads the file named by --config, or the first config file
// found in the standard locations. The returned path is empty when the
// defaults were used.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		return cfg, args.ConfigPath, err
	}

	paths, err := config.ConfigPaths()
	if err == nil {
		for _, path := range paths {
			if _, statErr := os.Stat(path); statErr == nil {
				cfg, err := config.LoadFromPath(path)
				return cfg, path, err
			}
		}
	}

	cfg, err := config.Load()
	return cfg, "", err
}

func logMode(cmd cli.Command) logging.Mode {
	switch cmd {
	case cli.CmdTUI:
		return logging.ModeTUI
	case cli.CmdMockBackend:
		return logging.ModeServer
	default:
		return logging.ModeCLI
	}
}
