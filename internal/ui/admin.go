// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ragchat/internal/admin"
	"github.com/jeranaias/ragchat/internal/api"
	"github.com/jeranaias/ragchat/internal/model"
	"github.com/jeranaias/ragchat/internal/ui/styles"
	"github.com/jeranaias/ragchat/internal/util"
)

// Admin screen text.
const (
	AdminTitle      = "Admin Dashboard"
	AdminSubtitle   = "Manage ChromaDB knowledge base and settings."
	LoadingStats    = "Loading stats..."
	ProcessingText  = "Processing Embeddings..."
	ThrottledText   = "Refreshing too quickly, showing cached stats."
	UnsupportedText = "Unsupported file type. Use .txt, .md or .pdf."
)

const statsBarWidth = 30

// =============================================================================
// ADMIN DASHBOARD
// =============================================================================

// adminModel renders an admin.Dashboard and runs its network calls as
// commands.
type adminModel struct {
	ctx     context.Context
	theme   *styles.Theme
	keys    KeyMap
	dash    *admin.Dashboard
	baseURL func() string

	pathInput textinput.Model
	spinner   spinner.Model

	online     bool
	loading    bool
	editing    bool
	uploading  bool
	confirming bool
	resetting  bool
	notice     string

	width  int
	height int
}

func newAdminModel(ctx context.Context, theme *styles.Theme, keys KeyMap, dash *admin.Dashboard, baseURL func() string) adminModel {
	ti := textinput.New()
	ti.Placeholder = "path/to/document.md"
	ti.Prompt = "File: "
	ti.CharLimit = 1024

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.Loading

	m := adminModel{
		ctx:       ctx,
		theme:     theme,
		keys:      keys,
		dash:      dash,
		baseURL:   baseURL,
		pathInput: ti,
		spinner:   sp,
		online:    true,
	}
	m.resize(theme.Width, theme.Height)
	return m
}

func (m *adminModel) resize(width, height int) {
	m.width = width
	m.height = height
	m.pathInput.Width = max(min(width-12, 60), 10)
}

// activate loads statistics when the screen is shown.
func (m *adminModel) activate() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	dash, ctx := m.dash, m.ctx
	return func() tea.Msg {
		return statsLoadedMsg{Stats: dash.Load(ctx)}
	}
}

// capturesInput reports whether keys should go to this screen before the
// global bindings are checked.
func (m adminModel) capturesInput() bool {
	return m.editing || m.confirming
}

// Update handles input for the admin screen.
func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case m.confirming:
			return m.updateConfirm(msg)
		case m.editing:
			return m.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Upload):
			if m.uploading {
				return m, nil
			}
			m.dash.DismissStatus()
			m.notice = ""
			m.editing = true
			cmd := m.pathInput.Focus()
			return m, cmd
		case key.Matches(msg, m.keys.Refresh):
			dash, ctx := m.dash, m.ctx
			return m, func() tea.Msg {
				stats, ok := dash.Refresh(ctx)
				return statsLoadedMsg{Stats: stats, Throttled: !ok}
			}
		case key.Matches(msg, m.keys.Reset):
			if !m.resetting {
				m.confirming = true
			}
			return m, nil
		case key.Matches(msg, m.keys.Cancel):
			m.dash.DismissStatus()
			m.notice = ""
			return m, nil
		}
		return m, nil

	case statsLoadedMsg:
		m.loading = false
		m.notice = ""
		if msg.Throttled {
			m.notice = ThrottledText
		}
		return m, nil

	case uploadDoneMsg:
		m.uploading = false
		m.pathInput.Reset()
		return m, nil

	case resetDoneMsg:
		m.resetting = false
		if msg.OK {
			m.notice = "Memory reset."
		} else {
			m.notice = "Reset failed. Check backend logs."
		}
		return m, nil

	case spinner.TickMsg:
		if msg.ID != m.spinner.ID() || !(m.uploading || m.resetting) {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m adminModel) updateConfirm(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.confirming = false
		m.resetting = true
		m.notice = ""
		dash, ctx := m.dash, m.ctx
		return m, tea.Batch(func() tea.Msg {
			return resetDoneMsg{OK: dash.Reset(ctx, true)}
		}, m.spinner.Tick)
	case key.Matches(msg, m.keys.Cancel):
		m.confirming = false
	}
	return m, nil
}

func (m adminModel) updateEditing(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.pathInput.Blur()
		return m, nil
	case tea.KeyEnter:
		path := expandHome(strings.TrimSpace(m.pathInput.Value()))
		if path == "" {
			m.editing = false
			m.pathInput.Blur()
			return m, nil
		}
		if !api.IsSupportedDocument(path) {
			m.notice = UnsupportedText
			return m, nil
		}
		m.editing = false
		m.uploading = true
		m.notice = ""
		m.pathInput.Blur()
		dash, ctx := m.dash, m.ctx
		return m, tea.Batch(func() tea.Msg {
			return uploadDoneMsg{Status: dash.Upload(ctx, path), File: filepath.Base(path)}
		}, m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the dashboard.
func (m adminModel) View() string {
	t := m.theme

	backend := t.Muted.Render("Backend: " + m.baseURL())
	title := t.Title.Render(AdminTitle)
	top := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", backend),
		t.Muted.Render(AdminSubtitle),
		"",
	)

	sections := []string{top, m.statsView(), "", m.uploadView(), "", m.dangerView()}
	if m.notice != "" {
		sections = append(sections, "", t.Warning.Render(m.notice))
	}
	sections = append(sections, "", t.Help.Render(helpLine(m.keys.Upload, m.keys.Refresh, m.keys.Reset, m.keys.NextRoute)))

	return lipgloss.NewStyle().Padding(0, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m adminModel) statsView() string {
	t := m.theme
	heading := t.RoleLabel.Render("Vector Stats")
	if !m.dash.Loaded() {
		return lipgloss.JoinVertical(lipgloss.Left, heading, t.Muted.Render(LoadingStats))
	}

	stats := m.dash.Stats()
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		m.card("Documents", util.FormatCount(stats.TotalDocuments)),
		m.card("Chunks", util.FormatCount(stats.TotalChunks)),
		m.card("Disk Usage", stats.DiskUsageString()),
	)

	state := t.Status(m.online, "Status: Online")
	if !m.online {
		state = t.Status(false, "Status: Offline")
	}
	footer := t.Muted.Render("Last Updated: "+lastUpdatedLabel(stats)) + "   " + state

	return lipgloss.JoinVertical(lipgloss.Left, heading, cards, statsBars(t, stats), footer)
}

func (m adminModel) card(label, value string) string {
	return m.theme.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.CardLabel.Render(label),
		m.theme.CardValue.Render(value),
	))
}

func (m adminModel) uploadView() string {
	t := m.theme
	lines := []string{
		t.RoleLabel.Render("Knowledge Base"),
		t.Muted.Render("Upload text files, PDFs, or Markdown to update the RAG embeddings."),
	}

	switch {
	case m.uploading:
		lines = append(lines, m.spinner.View()+t.Loading.Render(ProcessingText))
	case m.editing:
		lines = append(lines, t.InputFocused.Render(m.pathInput.View()),
			t.Help.Render("Enter upload · Esc cancel"))
	default:
		lines = append(lines, t.Muted.Render("Press u to upload a .txt, .md or .pdf file."))
	}

	switch status, file := m.dash.Status(); status {
	case admin.UploadSuccess:
		lines = append(lines, t.Status(true, status.Message()+" ("+file+")"))
	case admin.UploadFailed:
		lines = append(lines, t.Status(false, status.Message()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m adminModel) dangerView() string {
	t := m.theme
	lines := []string{
		t.Error.Render("Danger Zone"),
		t.Muted.Render("Resetting the database will wipe all long-term conversational memory."),
	}
	switch {
	case m.confirming:
		lines = append(lines, t.Warning.Render(admin.ResetPrompt+" (y/n)"))
	case m.resetting:
		lines = append(lines, m.spinner.View()+t.Loading.Render("Resetting..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// lastUpdatedLabel shows the date of the last update, or "-" when the
// backend sent something unparseable.
func lastUpdatedLabel(stats model.EmbeddingStats) string {
	if ts, ok := stats.LastUpdatedTime(); ok {
		return ts.Local().Format("2006-01-02")
	}
	return "-"
}

// statsBars draws the three figures as horizontal bars scaled to the
// largest one.
func statsBars(t *styles.Theme, stats model.EmbeddingStats) string {
	rows := []struct {
		label string
		value float64
		shown string
		color lipgloss.TerminalColor
	}{
		{"Docs", float64(stats.TotalDocuments), util.FormatCount(stats.TotalDocuments), styles.Cyan},
		{"Chunks", float64(stats.TotalChunks), util.FormatCount(stats.TotalChunks), styles.Purple},
		{"MB Used", stats.DiskUsageMB, fmt.Sprintf("%.3g", stats.DiskUsageMB), styles.Emerald},
	}

	peak := 0.0
	for _, r := range rows {
		peak = math.Max(peak, r.value)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		n := 0
		if peak > 0 && r.value > 0 {
			n = max(int(math.Round(r.value/peak*statsBarWidth)), 1)
		}
		bar := lipgloss.NewStyle().Foreground(r.color).Render(strings.Repeat("█", n))
		out = append(out, fmt.Sprintf("%-8s %s %s", r.label, bar, t.Muted.Render(r.shown)))
	}
	return strings.Join(out, "\n")
}
