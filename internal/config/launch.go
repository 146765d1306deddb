// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// BackendParam is the query parameter that overrides the backend address.
const BackendParam = "backend"

// LaunchTarget is the route and optional backend override the application
// was started with, e.g. "/widget?backend=http://10.0.0.5:5000".
type LaunchTarget struct {
	Route   string
	Backend string
}

// ParseLaunchTarget parses a launch route. An empty string yields the root
// route. A full URL is accepted and only its path and query are used. The
// route must be one of Routes.
func ParseLaunchTarget(raw string) (LaunchTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return LaunchTarget{Route: "/"}, nil
	}
	if !strings.Contains(raw, "://") && !strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "?") {
		raw = "/" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return LaunchTarget{}, fmt.Errorf("invalid launch target %q: %w", raw, err)
	}

	route := u.Path
	if route == "" {
		route = "/"
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	if !IsRoute(route) {
		return LaunchTarget{}, fmt.Errorf("unknown route %q (valid: %s)", route, strings.Join(Routes, ", "))
	}

	return LaunchTarget{
		Route:   route,
		Backend: u.Query().Get(BackendParam),
	}, nil
}

// HidesNavigation reports whether the route is shown without the navigation
// bar.
func (t LaunchTarget) HidesNavigation() bool {
	return t.Route == "/widget" || t.Route == "/login"
}
