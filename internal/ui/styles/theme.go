// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME MODE
// =============================================================================

// Mode selects how the background brightness is determined.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode maps a config value to a Mode. Unknown values mean auto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLight:
		return ModeLight
	case ModeDark:
		return ModeDark
	default:
		return ModeAuto
	}
}

// =============================================================================
// LAYOUT
// =============================================================================

// LayoutMode is the layout class for the current terminal width.
type LayoutMode int

const (
	LayoutCompact LayoutMode = iota // < 60 columns
	LayoutNormal                    // 60-119 columns
	LayoutWide                      // >= 120 columns
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every style the screens render with.
type Theme struct {
	Mode         Mode
	IsDark       bool
	ColorProfile termenv.Profile
	Width        int
	Height       int

	// Chrome
	NavBar      lipgloss.Style
	NavBrand    lipgloss.Style
	NavItem     lipgloss.Style
	NavActive   lipgloss.Style
	Banner      lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style
	Help        lipgloss.Style

	// Transcript
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	RoleLabel       lipgloss.Style
	Timestamp       lipgloss.Style
	Loading         lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputFocused   lipgloss.Style

	// Widget
	WidgetBox    lipgloss.Style
	WidgetHeader lipgloss.Style
	Fab          lipgloss.Style

	// Admin
	Card      lipgloss.Style
	CardLabel lipgloss.Style
	CardValue lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style

	// Login
	Panel  lipgloss.Style
	Button lipgloss.Style
	Title  lipgloss.Style
}

// NewTheme detects the terminal color profile and builds the styles. An
// explicit light or dark mode overrides background detection.
func NewTheme(mode Mode) *Theme {
	isDark := true
	switch mode {
	case ModeLight:
		isDark = false
	case ModeDark:
		isDark = true
	default:
		mode = ModeAuto
		isDark = termenv.HasDarkBackground()
	}
	if mode != ModeAuto {
		lipgloss.SetHasDarkBackground(isDark)
	}

	t := &Theme{
		Mode:         mode,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
		Width:        80,
		Height:       24,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.NavBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.NavBrand = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true).
		MarginRight(2)
	t.NavItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.NavActive = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Underline(true).
		Padding(0, 1)

	t.Banner = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		Bold(true).
		Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(SurfaceDim).
		Padding(0, 1)
	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)

	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 2)
	t.UserBubble = bubble.
		Foreground(UserBubbleFg).
		BorderForeground(UserBubbleBorder)
	t.AssistantBubble = bubble.
		Foreground(AssistantBubbleFg).
		BorderForeground(AssistantBubbleBorder)
	t.SystemBubble = bubble.
		Foreground(SystemBubbleFg).
		BorderForeground(SystemBubbleBorder)
	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.Loading = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputFocused = t.InputContainer.
		BorderForeground(Cyan)

	t.WidgetBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Cyan)
	t.WidgetHeader = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)
	t.Fab = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 2)

	t.Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Width(22)
	t.CardLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.CardValue = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Warning = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 4)
	t.Button = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Border(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 2).
		Width(28).
		Align(lipgloss.Center)
	t.Title = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the layout class for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	switch {
	case t.Width < 60:
		return LayoutCompact
	case t.Width < 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}

// BubbleWidth is the maximum width of a message bubble, borders included.
func (t *Theme) BubbleWidth() int {
	w := t.Width * 3 / 4
	if t.GetLayoutMode() == LayoutCompact {
		w = t.Width - 2
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Status renders text with a shape indicator so the state reads without color.
func (t *Theme) Status(ok bool, text string) string {
	if ok {
		return t.Success.Render(StatusIndicators.Success + " " + text)
	}
	return t.Error.Render(StatusIndicators.Error + " " + text)
}
