// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/export"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/ui/styles"
	"github.com/jeranaias/ragchat/internal/util"
)

// ChatHeader is the title line of the full-page chat.
const ChatHeader = "Connected to Ollama"

const (
	chatHeaderHeight = 2 // title + border
	chatInputHeight  = 3
	chatInputChrome  = 2 // input border
	chatStatusHeight = 1 // loading line
)

// =============================================================================
// FULL-PAGE CHAT
// =============================================================================

// chatModel is the full-page chat screen.
type chatModel struct {
	ctx     context.Context
	theme   *styles.Theme
	keys    KeyMap
	session *session.Session
	baseURL func() string

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	renderer       *glamour.TermRenderer
	rendererWidth  int
	rendered       map[string]string
	showTimestamps bool
	notice         string

	width  int
	height int
}

func newChatModel(ctx context.Context, theme *styles.Theme, keys KeyMap, sess *session.Session, baseURL func() string, showTimestamps bool) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(chatInputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Loading

	m := chatModel{
		ctx:            ctx,
		theme:          theme,
		keys:           keys,
		session:        sess,
		baseURL:        baseURL,
		viewport:       viewport.New(theme.Width, 10),
		input:          ta,
		spinner:        sp,
		rendered:       make(map[string]string),
		showTimestamps: showTimestamps,
	}
	m.resize(theme.Width, theme.Height)
	return m
}

// resize lays the screen out in width x height cells.
func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - chatHeaderHeight - chatInputHeight - chatInputChrome - chatStatusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.input.SetWidth(max(width-4, 10))

	if m.rendererWidth != m.wrapWidth() {
		m.renderer = nil
		m.rendered = make(map[string]string)
	}
	m.refresh()
}

// Update handles input for the chat screen.
func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.session.Clear()
			m.notice = ""
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Export):
			conv := export.NewConversation(m.session.Messages(), m.baseURL())
			return m, func() tea.Msg {
				path, err := export.WriteFile("", conv, nil)
				return exportDoneMsg{Path: path, Err: err}
			}
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case session.ReplyMsg:
		if msg.Session != m.session {
			return m, nil
		}
		m.session.Complete(msg.Turn, msg.Reply, msg.Err)
		m.refresh()
		return m, nil

	case exportDoneMsg:
		if msg.Err != nil {
			m.notice = "Export failed: " + msg.Err.Error()
		} else {
			m.notice = "Saved " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if msg.ID != m.spinner.ID() || !m.session.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m chatModel) submit() (chatModel, tea.Cmd) {
	turn, ok := m.session.Begin(m.input.Value())
	if !ok {
		return m, nil
	}
	m.input.Reset()
	m.refresh()
	return m, tea.Batch(m.session.SendCmd(m.ctx, turn), m.spinner.Tick)
}

// refresh re-renders the transcript into the viewport and scrolls to the
// newest message.
func (m *chatModel) refresh() {
	msgs := m.session.Messages()
	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n"))
	m.viewport.GotoBottom()
}

// View renders the chat screen.
func (m chatModel) View() string {
	header := m.theme.Header.Width(max(m.width-2, 0)).Render(
		m.theme.HeaderTitle.Render(styles.StatusIndicators.Online+" "+ChatHeader) +
			"  " + m.theme.Help.Render(helpLine(m.keys.Clear, m.keys.Export, m.keys.NextRoute)),
	)

	status := ""
	switch {
	case m.session.Busy():
		status = m.spinner.View() + m.theme.Loading.Render(m.session.Variant().LoadingText)
	case m.notice != "":
		status = m.theme.Muted.Render(m.notice)
	}

	input := m.theme.InputFocused.Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), status, input)
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// wrapWidth is the text width inside a bubble: the bubble width less border
// and padding.
func (m *chatModel) wrapWidth() int {
	return m.theme.BubbleWidth() - 6
}

func (m *chatModel) renderMessage(msg model.Message) string {
	label := m.theme.RoleLabel.Render(msg.Role.DisplayName())
	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.FormatTime())
	}

	var body string
	switch {
	case msg.IsAssistant():
		body = m.theme.AssistantBubble.Render(m.markdown(msg))
	case msg.IsSystem():
		body = m.theme.SystemBubble.Render(m.plain(msg.Content))
	default:
		body = m.theme.UserBubble.Render(m.plain(msg.Content))
	}

	block := lipgloss.JoinVertical(lipgloss.Left, label, body)
	if msg.IsUser() {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, block)
	}
	return block
}

func (m *chatModel) plain(s string) string {
	return strings.Join(util.Wrap(s, m.wrapWidth()), "\n")
}

// markdown renders assistant content with glamour, caching by message ID.
// Content that fails to render is shown as plain text.
func (m *chatModel) markdown(msg model.Message) string {
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}

	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle(m.theme)),
			glamour.WithWordWrap(m.wrapWidth()),
		)
		if err != nil {
			log.Debug().Err(err).Msg("markdown renderer unavailable")
			return m.plain(msg.Content)
		}
		m.renderer = r
		m.rendererWidth = m.wrapWidth()
	}

	out, err := m.renderer.Render(msg.Content)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed")
		out = m.plain(msg.Content)
	} else {
		out = strings.Trim(out, "\n")
	}
	m.rendered[msg.ID] = out
	return out
}

func glamourStyle(theme *styles.Theme) string {
	switch {
	case theme.ColorProfile == termenv.Ascii:
		return "notty"
	case theme.IsDark:
		return "dark"
	default:
		return "light"
	}
}
