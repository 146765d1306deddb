// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Login screen text.
const (
	LoginTitle    = "Welcome Back"
	LoginSubtitle = "Sign in to access your personalized chat history."
)

// Providers lists the sign-in buttons in display order.
var Providers = []string{"Google", "GitHub"}

// OAuthNotice is the message shown when a provider button is pressed. No
// sign-in actually takes place.
func OAuthNotice(provider string) string {
	return fmt.Sprintf("Initiating OAuth flow for %s... (Mock)", provider)
}

// loginModel is the sign-in screen with stub provider buttons.
type loginModel struct {
	theme  *styles.Theme
	keys   KeyMap
	cursor int
	notice string

	width  int
	height int
}

func newLoginModel(theme *styles.Theme, keys KeyMap) loginModel {
	return loginModel{theme: theme, keys: keys, width: theme.Width, height: theme.Height}
}

func (m *loginModel) resize(width, height int) {
	m.width = width
	m.height = height
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Next):
		m.cursor = (m.cursor + 1) % len(Providers)
	case key.Matches(keyMsg, m.keys.Prev):
		m.cursor = (m.cursor + len(Providers) - 1) % len(Providers)
	case key.Matches(keyMsg, m.keys.Submit):
		provider := Providers[m.cursor]
		m.notice = OAuthNotice(provider)
		log.Info().Str("provider", provider).Msg("mock oauth sign-in")
	case key.Matches(keyMsg, m.keys.Cancel):
		m.notice = ""
	}
	return m, nil
}

func (m loginModel) View() string {
	t := m.theme

	buttons := make([]string, 0, len(Providers))
	for i, p := range Providers {
		style := t.Button
		label := "Continue with " + p
		if i == m.cursor {
			style = style.BorderForeground(styles.Purple).Bold(true)
			label = "> " + label
		}
		buttons = append(buttons, style.Render(label))
	}

	parts := []string{
		t.Title.Render(LoginTitle),
		t.Muted.Render(LoginSubtitle),
		"",
		lipgloss.JoinVertical(lipgloss.Center, buttons...),
	}
	if m.notice != "" {
		parts = append(parts, "", t.Warning.Render(m.notice))
	}
	parts = append(parts, "", t.Help.Render(helpLine(m.keys.Next, m.keys.Submit, m.keys.NextRoute)))

	panel := t.Panel.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}
