// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package export writes a chat transcript to a file on request.

Two formats are supported and chosen by file extension: Markdown (the
default) with a YAML front matter block, and JSON. Nothing is ever read back;
an export is a snapshot for the user, not a saved session.

# Key Types

  - Conversation: the messages plus the backend they were exchanged with
  - Exporter: a format, implemented by MarkdownExporter and JSONExporter

# Usage

	conv := export.NewConversation(sess.Messages(), client.BaseURL())
	path, err := export.WriteFile("", conv, nil)
*/
package export
