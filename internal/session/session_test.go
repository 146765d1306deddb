// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/ragchat/internal/model"
)

type fakeSender struct {
	reply string
	err   error

	// gate, when set, blocks SendMessage until it is closed.
	gate    chan struct{}
	started chan struct{}

	calls       atomic.Int32
	lastHistory []model.Message
	lastPrompt  string
	mu          sync.Mutex
}

func (f *fakeSender) SendMessage(ctx context.Context, history []model.Message, prompt string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastHistory = history
	f.lastPrompt = prompt
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.reply, f.err
}

// =============================================================================
// SUBMIT TESTS
// =============================================================================

func TestNew_SeedsGreeting(t *testing.T) {
	for _, v := range []Variant{FullPage, Widget} {
		s := New(&fakeSender{}, v)
		msgs := s.Messages()
		if len(msgs) != 1 {
			t.Fatalf("%s: Len = %d, want 1", v.Name, len(msgs))
		}
		if msgs[0].Role != model.RoleAssistant || msgs[0].Content != v.Greeting {
			t.Errorf("%s: greeting = %q (%s)", v.Name, msgs[0].Content, msgs[0].Role)
		}
	}
}

func TestSubmit_BlankIsNoOp(t *testing.T) {
	fs := &fakeSender{reply: "x"}
	s := New(fs, FullPage)

	for _, text := range []string{"", " ", "\t\n", "  "} {
		if s.Submit(context.Background(), text) {
			t.Errorf("Submit(%q) = true, want false", text)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if fs.calls.Load() != 0 {
		t.Errorf("SendMessage called %d times, want 0", fs.calls.Load())
	}
}

func TestSubmit_Success(t *testing.T) {
	fs := &fakeSender{reply: "This is a mock response"}
	s := New(fs, FullPage)

	if !s.Submit(context.Background(), "Hello") {
		t.Fatal("Submit() = false")
	}

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Len = %d, want 3", len(msgs))
	}
	if msgs[1].Role != model.RoleUser || msgs[1].Content != "Hello" {
		t.Errorf("msgs[1] = %s %q, want user 'Hello'", msgs[1].Role, msgs[1].Content)
	}
	if msgs[2].Role != model.RoleAssistant || msgs[2].Content != "This is a mock response" {
		t.Errorf("msgs[2] = %s %q, want assistant reply", msgs[2].Role, msgs[2].Content)
	}
	if s.Busy() {
		t.Error("Busy() = true after completion")
	}

	// The request carries the transcript before the user message.
	if len(fs.lastHistory) != 1 || fs.lastHistory[0].Content != FullPage.Greeting {
		t.Errorf("history = %+v, want only the greeting", fs.lastHistory)
	}
	if fs.lastPrompt != "Hello" {
		t.Errorf("prompt = %q, want 'Hello'", fs.lastPrompt)
	}
}

func TestSubmit_Failure(t *testing.T) {
	tests := []struct {
		variant Variant
	}{
		{FullPage},
		{Widget},
	}

	for _, tc := range tests {
		t.Run(tc.variant.Name, func(t *testing.T) {
			s := New(&fakeSender{err: errors.New("connection refused")}, tc.variant)
			s.Submit(context.Background(), "anything")

			msgs := s.Messages()
			last := msgs[len(msgs)-1]
			if last.Role != model.RoleSystem {
				t.Errorf("last role = %s, want system", last.Role)
			}
			if last.Content != tc.variant.ErrorText {
				t.Errorf("last content = %q, want %q", last.Content, tc.variant.ErrorText)
			}
			if s.Busy() {
				t.Error("Busy() = true after failure")
			}
		})
	}
}

func TestSubmit_SecondCallWhileBusyIsIgnored(t *testing.T) {
	fs := &fakeSender{
		reply:   "first reply",
		gate:    make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := New(fs, Widget)

	done := make(chan struct{})
	go func() {
		s.Submit(context.Background(), "first")
		close(done)
	}()
	<-fs.started

	// User message is visible before the reply arrives.
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[1].Content != "first" {
		t.Fatalf("transcript before reply = %+v", msgs)
	}
	if !s.Busy() {
		t.Error("Busy() = false while request in flight")
	}

	if s.Submit(context.Background(), "second") {
		t.Error("second Submit() = true while busy")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d after ignored submit, want 2", s.Len())
	}

	close(fs.gate)
	<-done

	if fs.calls.Load() != 1 {
		t.Errorf("SendMessage calls = %d, want 1", fs.calls.Load())
	}
	msgs = s.Messages()
	if len(msgs) != 3 || msgs[2].Content != "first reply" {
		t.Errorf("final transcript = %+v", msgs)
	}
}

func TestSessions_AreIndependent(t *testing.T) {
	fs := &fakeSender{reply: "ok"}
	full := New(fs, FullPage)
	widget := New(fs, Widget)

	full.Submit(context.Background(), "a")
	if widget.Len() != 1 {
		t.Errorf("widget Len() = %d, want 1", widget.Len())
	}
}

func TestSubmit_NormalizesToNFC(t *testing.T) {
	fs := &fakeSender{reply: "ok"}
	s := New(fs, FullPage)

	s.Submit(context.Background(), "cafe\u0301")
	if fs.lastPrompt != "caf\u00e9" {
		t.Errorf("prompt = %q, want composed form", fs.lastPrompt)
	}
}

// =============================================================================
// CLEAR TESTS
// =============================================================================

func TestClear_ResetsToGreeting(t *testing.T) {
	s := New(&fakeSender{reply: "r"}, FullPage)
	greeting := s.Messages()[0]

	s.Submit(context.Background(), "one")
	s.Submit(context.Background(), "two")
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}

	s.Clear()
	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Len() after Clear = %d, want 1", len(msgs))
	}
	if msgs[0] != greeting {
		t.Errorf("after Clear = %+v, want original greeting %+v", msgs[0], greeting)
	}
}

func TestClear_DropsStaleReply(t *testing.T) {
	s := New(&fakeSender{}, FullPage)

	turn, ok := s.Begin("question")
	if !ok {
		t.Fatal("Begin() = false")
	}
	s.Clear()

	if !s.Busy() {
		t.Error("Busy() should stay true until the stale request returns")
	}
	if s.Complete(turn, "late answer", nil) {
		t.Error("Complete() = true for stale turn")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, stale reply was appended", s.Len())
	}
	if s.Busy() {
		t.Error("Busy() = true after stale completion")
	}

	// A fresh turn in the new generation is accepted.
	turn, _ = s.Begin("again")
	if !s.Complete(turn, "answer", nil) {
		t.Error("Complete() = false for current turn")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

// =============================================================================
// BUBBLE TEA TESTS
// =============================================================================

func TestSendCmd(t *testing.T) {
	fs := &fakeSender{reply: "from cmd"}
	s := New(fs, Widget)

	turn, ok := s.Begin("hi")
	if !ok {
		t.Fatal("Begin() = false")
	}

	msg, ok := s.SendCmd(context.Background(), turn)().(ReplyMsg)
	if !ok {
		t.Fatal("SendCmd did not produce a ReplyMsg")
	}
	if msg.Session != s || msg.Reply != "from cmd" || msg.Err != nil {
		t.Errorf("ReplyMsg = %+v", msg)
	}
	if turn.UserID == "" {
		t.Error("Turn.UserID is empty")
	}

	msg.Session.Complete(msg.Turn, msg.Reply, msg.Err)
	if s.Len() != 3 || s.Busy() {
		t.Errorf("Len() = %d, Busy() = %v", s.Len(), s.Busy())
	}
}
