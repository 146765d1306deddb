// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat and embedding backend.
//
// The Client is the single source of truth for the backend address. Every
// component that needs network access receives a *Client explicitly; there is
// no package-level instance.
//
// Each endpoint translates failures in its own way:
//
//   - CheckHealth, UploadDocument and ResetDatabase return a bool and never fail
//   - SendMessage returns a *ClientError so callers can tell "no answer" from "empty answer"
//   - GetStats returns FallbackStats when the backend cannot be reached
//
// # Usage
//
//	client := api.NewClient("http://localhost:5000")
//	client.SetBaseURL("http://localhost:5000/")
//	if client.CheckHealth(ctx) {
//	    reply, err := client.SendMessage(ctx, history, "hello")
//	}
package api
