// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/ragchat/internal/admin"
	"github.com/jeranaias/ragchat/internal/config"
	"github.com/jeranaias/ragchat/internal/health"
	"github.com/jeranaias/ragchat/internal/session"
	"github.com/jeranaias/ragchat/internal/ui/styles"
)

// Client is everything the UI needs from the backend. *api.Client
// satisfies it.
type Client interface {
	session.Sender
	admin.Backend
	health.Checker
	BaseURL() string
	SetBaseURL(url string)
}

// Options configures a new App.
type Options struct {
	// Context bounds every backend request. Defaults to context.Background.
	Context context.Context

	Client Client
	Config *config.Config

	// Route is the screen shown at start. Defaults to Config.UI.StartRoute.
	Route string

	// Theme defaults to one built from Config.UI.Theme.
	Theme *styles.Theme

	// FileBackendURL is the backend url read from the config file before any
	// startup override. Reloads only switch the backend when the file's value
	// changes from it. Defaults to Config.Backend.URL.
	FileBackendURL string
}

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model. It owns the navigation bar and the
// offline banner and forwards input to the active screen.
type App struct {
	ctx    context.Context
	client Client
	theme  *styles.Theme
	keys   KeyMap

	route   string
	online  bool
	fileURL string

	chat   chatModel
	widget widgetModel
	admin  adminModel
	login  loginModel

	width  int
	height int
}

// New builds the application model.
func New(opts Options) App {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ParseMode(cfg.UI.Theme))
	}
	route := opts.Route
	if route == "" {
		route = cfg.UI.StartRoute
	}
	if !config.IsRoute(route) {
		route = "/"
	}

	fileURL := opts.FileBackendURL
	if fileURL == "" {
		fileURL = cfg.Backend.URL
	}

	keys := DefaultKeyMap()
	client := opts.Client

	a := App{
		ctx:     ctx,
		client:  client,
		theme:   theme,
		keys:    keys,
		route:   route,
		online:  true,
		fileURL: fileURL,
		chat:    newChatModel(ctx, theme, keys, session.New(client, session.FullPage), client.BaseURL, cfg.UI.ShowTimestamps),
		widget:  newWidgetModel(ctx, theme, keys, session.New(client, session.Widget)),
		admin:   newAdminModel(ctx, theme, keys, admin.New(client), client.BaseURL),
		login:   newLoginModel(theme, keys),
	}
	a.resize(theme.Width, theme.Height)
	return a
}

// Route returns the active route.
func (a App) Route() string {
	return a.route
}

// Online reports the last known backend state.
func (a App) Online() bool {
	return a.online
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if a.route == "/admin" {
		cmds = append(cmds, a.admin.activate())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keys.NextRoute) && !(a.route == "/admin" && a.admin.capturesInput()) {
			return a.switchRoute(nextRoute(a.route))
		}
		return a.updateActive(msg)

	case tea.MouseMsg:
		if a.route == "/" {
			var cmd tea.Cmd
			a.chat, cmd = a.chat.Update(msg)
			return a, cmd
		}
		return a, nil

	case RouteMsg:
		return a.switchRoute(msg.Route)

	case HealthMsg:
		online := msg.State == health.StateOnline
		if online != a.online {
			a.online = online
			a.admin.online = online
			a.resize(a.width, a.height)
		}
		return a, nil

	case ConfigReloadedMsg:
		// A startup override stays in effect until the file's own url changes.
		if msg.Config != nil && msg.Config.Backend.URL != a.fileURL {
			a.fileURL = msg.Config.Backend.URL
			log.Info().Str("url", a.fileURL).Msg("switching backend")
			a.client.SetBaseURL(a.fileURL)
		}
		return a, nil

	case session.ReplyMsg:
		var c1, c2 tea.Cmd
		a.chat, c1 = a.chat.Update(msg)
		a.widget, c2 = a.widget.Update(msg)
		return a, tea.Batch(c1, c2)

	case exportDoneMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd

	case statsLoadedMsg, uploadDoneMsg, resetDoneMsg:
		var cmd tea.Cmd
		a.admin, cmd = a.admin.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		var c1, c2 tea.Cmd
		a.chat, c1 = a.chat.Update(msg)
		a.admin, c2 = a.admin.Update(msg)
		return a, tea.Batch(c1, c2)
	}

	return a.updateActive(msg)
}

func (a App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.route {
	case "/widget":
		a.widget, cmd = a.widget.Update(msg)
	case "/admin":
		a.admin, cmd = a.admin.Update(msg)
	case "/login":
		a.login, cmd = a.login.Update(msg)
	default:
		a.chat, cmd = a.chat.Update(msg)
	}
	return a, cmd
}

func (a App) switchRoute(route string) (tea.Model, tea.Cmd) {
	if !config.IsRoute(route) || route == a.route {
		return a, nil
	}
	log.Debug().Str("from", a.route).Str("to", route).Msg("route change")
	a.route = route
	a.resize(a.width, a.height)

	switch route {
	case "/admin":
		cmd := a.admin.activate()
		return a, cmd
	case "/":
		cmd := a.chat.input.Focus()
		return a, cmd
	}
	return a, nil
}

// nextRoute returns the route after r in config.Routes, wrapping around.
func nextRoute(r string) string {
	for i, route := range config.Routes {
		if route == r {
			return config.Routes[(i+1)%len(config.Routes)]
		}
	}
	return config.Routes[0]
}

// showNav reports whether the navigation bar is visible on the active route.
func (a App) showNav() bool {
	return !(config.LaunchTarget{Route: a.route}).HidesNavigation()
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	a.theme.SetSize(width, height)

	body := height
	if a.showNav() {
		body--
	}
	if !a.online {
		body--
	}
	body = max(body, 1)

	a.chat.resize(width, body)
	a.widget.resize(width, body)
	a.admin.resize(width, body)
	a.login.resize(width, body)
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (a App) View() string {
	parts := make([]string, 0, 3)
	if a.showNav() {
		parts = append(parts, a.navView())
	}
	if !a.online {
		parts = append(parts, a.theme.Banner.Width(a.width).Render(health.OfflineBanner))
	}

	switch a.route {
	case "/widget":
		parts = append(parts, a.widget.View())
	case "/admin":
		parts = append(parts, a.admin.View())
	case "/login":
		parts = append(parts, a.login.View())
	default:
		parts = append(parts, a.chat.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
