// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the chat client and
// the backend wire protocol.
//
// # Key Types
//
//   - Message: Single immutable chat message with role, content and epoch-millis timestamp
//   - Transcript: Append-only ordered sequence of messages, oldest first
//   - EmbeddingStats: Knowledge base statistics reported by the backend
//   - ChatRequest / ChatResponse: Bodies of the /chat endpoint
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Build a transcript:
//
//	t := model.NewTranscript(model.NewAssistantMessage("Hi! How can I help?"))
//	t.Append(model.NewUserMessage("What is in the knowledge base?"))
//	history := t.Messages()
package model
