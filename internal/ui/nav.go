// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Brand is the title of the navigation bar.
const Brand = "OllamaChat"

type navItem struct {
	route string
	label string
}

var navItems = []navItem{
	{"/", "Chat"},
	{"/admin", "Admin"},
	{"/widget", "Widget Preview"},
	{"/login", "Sign Out"},
}

func (a App) navView() string {
	t := a.theme

	items := make([]string, 0, len(navItems))
	for _, item := range navItems {
		style := t.NavItem
		if item.route == a.route {
			style = t.NavActive
		}
		items = append(items, style.Render(item.label))
	}
	left := t.NavBrand.Render(Brand) + strings.Join(items, "")

	status := t.Success.Render(styles.StatusIndicators.Online + " online")
	if !a.online {
		status = t.Error.Render(styles.StatusIndicators.Offline + " offline")
	}

	gap := max(a.width-2-lipgloss.Width(left)-lipgloss.Width(status), 1)
	return t.NavBar.Width(a.width).Render(left + strings.Repeat(" ", gap) + status)
}
