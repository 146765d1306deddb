// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds chat transcripts and drives request/response turns
// against the backend.
//
// One Session type serves both the full-page chat and the compact widget;
// the two differ only in their Variant (greeting, error text and loading
// label).
//
// # Key Types
//
//   - Session: Transcript plus busy flag with Submit and Clear operations
//   - Variant: Presentation strings for a chat surface (FullPage, Widget)
//   - Turn: One in-flight request, tagged with the generation it started in
//   - ReplyMsg: Bubble Tea message carrying the result of a Turn
//
// # Usage
//
// Synchronous use from a CLI:
//
//	s := session.New(client, session.FullPage)
//	s.Submit(ctx, "What documents do you know about?")
//	for _, m := range s.Messages() {
//	    fmt.Println(m.Role.DisplayName(), m.Content)
//	}
//
// Asynchronous use from Bubble Tea:
//
//	if turn, ok := s.Begin(text); ok {
//	    return m, s.SendCmd(ctx, turn)
//	}
//	// later, in Update:
//	case session.ReplyMsg:
//	    msg.Session.Complete(msg.Turn, msg.Reply, msg.Err)
//
// # Ordering
//
// The user message is appended before the request starts and the reply is
// appended after it returns. At most one request is outstanding per session.
// Clear bumps the session generation; a reply whose turn started in an older
// generation is dropped instead of being appended to the fresh transcript.
package session
