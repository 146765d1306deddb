// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeChecker struct {
	online atomic.Bool
	calls  atomic.Int32
}

func (f *fakeChecker) CheckHealth(ctx context.Context) bool {
	f.calls.Add(1)
	return f.online.Load()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(&fakeChecker{}, 0)
	if p.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", p.Interval(), DefaultInterval)
	}
	if !p.Online() {
		t.Error("initial state should be online")
	}
	if !p.LastCheck().IsZero() {
		t.Error("LastCheck() should be zero before the first check")
	}
}

func TestPoller_CheckNow(t *testing.T) {
	fc := &fakeChecker{}
	p := NewPoller(fc, time.Hour)

	var results []State
	p.OnResult(func(s State) { results = append(results, s) })

	if got := p.CheckNow(context.Background()); got != StateOffline {
		t.Errorf("CheckNow() = %v, want offline", got)
	}
	fc.online.Store(true)
	if got := p.CheckNow(context.Background()); got != StateOnline {
		t.Errorf("CheckNow() = %v, want online", got)
	}

	if len(results) != 2 || results[0] != StateOffline || results[1] != StateOnline {
		t.Errorf("results = %v, want [offline online]", results)
	}
	if p.Checks() != 2 {
		t.Errorf("Checks() = %d, want 2", p.Checks())
	}
}

func TestPoller_RunChecksImmediatelyThenPeriodically(t *testing.T) {
	fc := &fakeChecker{}
	p := NewPoller(fc, 20*time.Millisecond)

	stop := p.Start(context.Background())
	waitFor(t, func() bool { return fc.calls.Load() >= 1 })
	if p.Online() {
		t.Error("state should be offline after a failed check")
	}

	fc.online.Store(true)
	waitFor(t, func() bool { return p.Online() })
	waitFor(t, func() bool { return fc.calls.Load() >= 3 })
	stop()

	after := fc.calls.Load()
	time.Sleep(60 * time.Millisecond)
	if got := fc.calls.Load(); got != after {
		t.Errorf("checks continued after stop: %d -> %d", after, got)
	}
}

func TestPoller_FirstCheckIsImmediate(t *testing.T) {
	fc := &fakeChecker{}
	p := NewPoller(fc, time.Hour)

	stop := p.Start(context.Background())
	defer stop()
	waitFor(t, func() bool { return p.Checks() == 1 })
}

func TestPoller_RunReturnsOnCancelledContext(t *testing.T) {
	fc := &fakeChecker{}
	p := NewPoller(fc, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return for a cancelled context")
	}
	if fc.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", fc.calls.Load())
	}
}

func TestCheckerFunc(t *testing.T) {
	var c Checker = CheckerFunc(func(ctx context.Context) bool { return true })
	if !c.CheckHealth(context.Background()) {
		t.Error("CheckerFunc should forward the result")
	}
}

func TestState_String(t *testing.T) {
	if StateOnline.String() != "online" || StateOffline.String() != "offline" {
		t.Errorf("String() = %q, %q", StateOnline, StateOffline)
	}
}
