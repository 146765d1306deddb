// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/health"
)

// Run starts the terminal UI and blocks until the user quits or ctx is
// cancelled. The health poller and, when configPath is set, the config
// watcher run alongside the program and report through Program.Send.
func Run(ctx context.Context, opts Options, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.Context = ctx
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	app := New(opts)

	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	poller := health.NewPoller(opts.Client, opts.Config.Backend.HealthInterval())
	poller.OnResult(func(state health.State) {
		p.Send(HealthMsg{State: state})
	})
	stopPoller := poller.Start(ctx)
	defer stopPoller()

	if configPath != "" {
		go func() {
			err := config.Watch(ctx, configPath, func(cfg *config.Config) {
				p.Send(ConfigReloadedMsg{Config: cfg})
			})
			if err != nil {
				log.Warn().Err(err).Str("path", configPath).Msg("config watcher stopped")
			}
		}()
	}

	log.Info().Str("route", app.Route()).Str("backend", opts.Client.BaseURL()).Msg("starting tui")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
