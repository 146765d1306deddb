// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/ui/styles"
	"github.com/jeranaias/ragchat/internal/util"
)

// WidgetTitle is the header of the open widget.
const WidgetTitle = "Assistant"

const (
	widgetMaxWidth      = 44
	widgetMaxLines      = 16
	widgetLinesPerEntry = 4
)

var widgetUserLine = lipgloss.NewStyle().Foreground(styles.Cyan)

// =============================================================================
// WIDGET CHAT
// =============================================================================

// widgetModel is the compact chat docked in the bottom-right corner. It
// starts collapsed to a single button.
type widgetModel struct {
	ctx     context.Context
	theme   *styles.Theme
	keys    KeyMap
	session *session.Session

	input textinput.Model
	open  bool

	width  int
	height int
}

func newWidgetModel(ctx context.Context, theme *styles.Theme, keys KeyMap, sess *session.Session) widgetModel {
	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.Prompt = "> "
	ti.CharLimit = 1000

	m := widgetModel{
		ctx:     ctx,
		theme:   theme,
		keys:    keys,
		session: sess,
		input:   ti,
	}
	m.resize(theme.Width, theme.Height)
	return m
}

func (m *widgetModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(m.innerWidth()-len(m.input.Prompt)-1, 1)
}

func (m *widgetModel) boxWidth() int {
	return max(min(widgetMaxWidth, m.width-2), 16)
}

// innerWidth is the text width inside the widget border.
func (m *widgetModel) innerWidth() int {
	return m.boxWidth() - 2
}

func (m *widgetModel) transcriptHeight() int {
	// border, header, separator, input and loading line
	return max(min(widgetMaxLines, m.height-6), 3)
}

// Update handles input for the widget.
func (m widgetModel) Update(msg tea.Msg) (widgetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ToggleWidget) || (!m.open && key.Matches(msg, m.keys.Submit)) {
			m.open = !m.open
			if m.open {
				cmd := m.input.Focus()
				return m, cmd
			}
			m.input.Blur()
			return m, nil
		}
		if !m.open {
			return m, nil
		}
		if key.Matches(msg, m.keys.Submit) {
			turn, ok := m.session.Begin(m.input.Value())
			if !ok {
				return m, nil
			}
			m.input.Reset()
			return m, m.session.SendCmd(m.ctx, turn)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case session.ReplyMsg:
		if msg.Session == m.session {
			m.session.Complete(msg.Turn, msg.Reply, msg.Err)
		}
		return m, nil
	}
	return m, nil
}

// View renders the widget docked bottom-right.
func (m widgetModel) View() string {
	var box string
	if m.open {
		box = m.panel()
	} else {
		box = m.theme.Fab.Render("Chat " + m.keys.ToggleWidget.Help().Key)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, box)
}

func (m widgetModel) panel() string {
	inner := m.innerWidth()

	title := WidgetTitle
	hint := m.keys.ToggleWidget.Help().Key + " ×"
	gap := max(inner-2-runewidth.StringWidth(title)-runewidth.StringWidth(hint), 1)
	header := m.theme.WidgetHeader.Render(title + strings.Repeat(" ", gap) + hint)

	lines := m.transcriptLines(inner)
	if h := m.transcriptHeight(); len(lines) > h {
		lines = lines[len(lines)-h:]
	}
	for len(lines) < m.transcriptHeight() {
		lines = append([]string{""}, lines...)
	}

	loading := ""
	if m.session.Busy() {
		loading = m.theme.Loading.Render(m.session.Variant().LoadingText)
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		strings.Join(lines, "\n"),
		loading,
		m.theme.Muted.Render(strings.Repeat("─", inner)),
		m.input.View(),
	)
	return m.theme.WidgetBox.Width(inner).Render(body)
}

// transcriptLines lays out every message in at most widgetLinesPerEntry
// lines of width columns, truncating the rest.
func (m widgetModel) transcriptLines(width int) []string {
	var out []string
	for _, msg := range m.session.Messages() {
		out = append(out, m.entryLines(msg, width)...)
	}
	return out
}

func (m widgetModel) entryLines(msg model.Message, width int) []string {
	textWidth := max(width-2, 1)
	wrapped := util.Wrap(msg.Content, textWidth)
	if len(wrapped) > widgetLinesPerEntry {
		wrapped = wrapped[:widgetLinesPerEntry]
		last := wrapped[widgetLinesPerEntry-1]
		wrapped[widgetLinesPerEntry-1] = runewidth.Truncate(last+" …", textWidth, "…")
	}

	lines := make([]string, 0, len(wrapped))
	for _, line := range wrapped {
		line = runewidth.Truncate(line, textWidth, "…")
		switch {
		case msg.IsUser():
			lines = append(lines, widgetUserLine.Render(runewidth.FillLeft(line, width)))
		case msg.IsSystem():
			lines = append(lines, m.theme.Error.Render(line))
		default:
			lines = append(lines, line)
		}
	}
	return lines
}
