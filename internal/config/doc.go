// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for ragchat.
//
// Supports TOML, JSON and YAML configuration files with defaults,
// .env files, environment variable overrides and validation.
//
// # Key Types
//
//   - Config: Main configuration structure
//   - BackendConfig: Backend address and timeouts
//   - UIConfig: Start route and display preferences
//   - LoggingConfig: Log level and log file
//   - LaunchTarget: Route plus optional backend override parsed from a launch URL
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line --backend flag or backend query parameter
//   - Environment variables (RAGCHAT_*), including those set by ./.env
//   - ~/.ragchat/config.toml
//   - ~/.ragchat/config.json
//   - ~/.ragchat/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := api.NewClientWithConfig(cfg.ClientConfig())
package config
