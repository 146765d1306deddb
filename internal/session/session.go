// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/ragchat/internal/model"
)

// =============================================================================
// VARIANTS
// =============================================================================

// Variant holds the presentation strings of one chat surface.
type Variant struct {
	Name        string
	Greeting    string
	ErrorText   string
	LoadingText string
}

// FullPage is the full-screen chat.
var FullPage = Variant{
	Name:        "full",
	Greeting:    "Hello! I am your Ollama-powered AI assistant with long-term memory. How can I help you today?",
	ErrorText:   "Error: Could not connect to the backend. Is Ollama running?",
	LoadingText: "Thinking...",
}

// Widget is the compact floating chat.
var Widget = Variant{
	Name:        "widget",
	Greeting:    "Hi! How can I help?",
	ErrorText:   "Connection error.",
	LoadingText: "Typing...",
}

// =============================================================================
// SESSION
// =============================================================================

// Sender sends one chat turn. *api.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, history []model.Message, prompt string) (string, error)
}

// Turn describes one request started by Begin.
type Turn struct {
	Generation uint64
	History    []model.Message
	Prompt     string
	UserID     string
}

// Session is a chat transcript with at most one request in flight.
// Session is safe for concurrent use.
type Session struct {
	sender  Sender
	variant Variant

	mu         sync.Mutex
	greeting   model.Message
	transcript *model.Transcript
	busy       bool
	generation uint64
}

// New creates a session whose transcript holds only the variant's greeting.
func New(sender Sender, variant Variant) *Session {
	greeting := model.NewAssistantMessage(variant.Greeting)
	return &Session{
		sender:     sender,
		variant:    variant,
		greeting:   greeting,
		transcript: model.NewTranscript(greeting),
	}
}

// Variant returns the presentation strings of the session.
func (s *Session) Variant() Variant {
	return s.variant
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Messages()
}

// Len returns the transcript length.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Len()
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Generation returns the current generation. It changes on every Clear.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Begin appends a user message for text and marks the session busy. It
// returns false without changing anything when text is blank or a request is
// already in flight. The returned Turn carries the transcript as it was
// before the user message was added.
func (s *Session) Begin(text string) (Turn, bool) {
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return Turn{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		log.Debug().Str("session", s.variant.Name).Msg("submit ignored, request in flight")
		return Turn{}, false
	}

	history := s.transcript.Messages()
	user := model.NewUserMessage(text)
	s.transcript.Append(user)
	s.busy = true

	return Turn{
		Generation: s.generation,
		History:    history,
		Prompt:     text,
		UserID:     user.ID,
	}, true
}

// Complete records the outcome of turn. On success the reply is appended as
// an assistant message, on failure a system message with the variant's error
// text is appended. Busy is cleared either way. It returns false when the
// turn belongs to an older generation, in which case nothing is appended.
func (s *Session) Complete(turn Turn, reply string, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false

	if turn.Generation != s.generation {
		log.Debug().Str("session", s.variant.Name).Msg("dropping reply for cleared transcript")
		return false
	}

	if err != nil {
		log.Warn().Err(err).Str("session", s.variant.Name).Msg("chat request failed")
		s.transcript.Append(model.NewSystemMessage(s.variant.ErrorText))
		return true
	}

	s.transcript.Append(model.NewAssistantMessage(reply))
	return true
}

// Submit runs a full turn synchronously. It returns false when the input was
// ignored (blank text or a request already in flight).
func (s *Session) Submit(ctx context.Context, text string) bool {
	turn, ok := s.Begin(text)
	if !ok {
		return false
	}
	reply, err := s.sender.SendMessage(ctx, turn.History, turn.Prompt)
	s.Complete(turn, reply, err)
	return true
}

// Clear resets the transcript to the greeting. A request still in flight
// keeps the session busy until it returns, and its reply is discarded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.transcript.Reset(s.greeting)
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// ReplyMsg is delivered when a turn started with SendCmd finishes.
type ReplyMsg struct {
	Session *Session
	Turn    Turn
	Reply   string
	Err     error
}

// SendCmd returns a command that performs the network call for turn.
func (s *Session) SendCmd(ctx context.Context, turn Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := s.sender.SendMessage(ctx, turn.History, turn.Prompt)
		return ReplyMsg{Session: s, Turn: turn, Reply: reply, Err: err}
	}
}
