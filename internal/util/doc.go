// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI and the TUI.
//
// # Key Functions
//
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - TruncateWidth: Display-width aware truncation with ellipsis
//   - Wrap: Greedy word wrapping by display width
//   - FormatCount: Thousands separators for counters
//
// # Usage
//
//	line := util.TruncateWidth(msg.Content, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
