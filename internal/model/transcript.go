// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the ordered list of messages in a chat session, oldest first.
// It is append-only apart from Reset. Transcript is not safe for concurrent
// use; owners serialize access.
type Transcript struct {
	messages []Message
}

// NewTranscript creates a transcript seeded with the given messages.
func NewTranscript(seed ...Message) *Transcript {
	t := &Transcript{}
	t.messages = append(t.messages, seed...)
	return t
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Reset replaces the transcript contents with the given messages.
func (t *Transcript) Reset(seed ...Message) {
	t.messages = append([]Message(nil), seed...)
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the messages so callers cannot mutate the
// transcript.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last returns the most recent message, or false when empty.
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// LastUser returns the most recent user message, or false when there is none.
func (t *Transcript) LastUser() (Message, bool) {
	for i := len(t.messages) - 1; i >= 0; i-- {
		if t.messages[i].IsUser() {
			return t.messages[i], true
		}
	}
	return Message{}, false
}
