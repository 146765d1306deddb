// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package ui implements the ragchat terminal interface with Bubble Tea.

The App model hosts four screens addressed by route:

	/        full-page chat (viewport, textarea, glamour markdown)
	/widget  compact chat docked in the corner
	/admin   knowledge base statistics, uploads and reset
	/login   sign-in screen with mock provider buttons

The navigation bar is hidden on /widget and /login. Ctrl+N cycles through the
routes. While the backend fails its health check a banner is shown above the
active screen.

# Key Types

  - App: the root tea.Model
  - Options: client, config and start route
  - Client: the backend surface, satisfied by *api.Client
  - HealthMsg, ConfigReloadedMsg, RouteMsg: messages sent from outside the program

# Usage

	client := api.NewClientWithConfig(cfg.ClientConfig())
	err := ui.Run(ctx, ui.Options{Client: client, Config: cfg, Route: "/"}, cfgPath)
*/
package ui
