// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and lipgloss styles of the ragchat
terminal UI.

Colors are lipgloss AdaptiveColor values so the same palette works on light and
dark terminals. A Theme bundles the concrete styles used by the screens and is
built once at startup from the detected termenv color profile.

# Key Types

  - Theme: rendered styles for navigation, banner, bubbles, cards and inputs
  - Mode: "auto", "light" or "dark", from the [ui] theme setting

# Usage

	theme := styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
	theme.SetSize(width, height)
	fmt.Println(theme.Banner.Render("Backend is offline."))
*/
package styles
