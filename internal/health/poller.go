// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package health polls the backend liveness probe and tracks whether the
// backend is online.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultInterval is the fixed period between liveness checks.
const DefaultInterval = 30 * time.Second

// OfflineBanner is shown whenever the backend fails its health check.
const OfflineBanner = "Backend is offline. Please check your connection or configuration."

// =============================================================================
// STATE
// =============================================================================

// State is the connectivity state reported by the poller.
type State int

const (
	// StateOnline is also the initial state until the first check resolves.
	StateOnline State = iota
	StateOffline
)

// String returns the state name.
func (s State) String() string {
	if s == StateOffline {
		return "offline"
	}
	return "online"
}

// Checker performs a single liveness check. *api.Client satisfies it.
type Checker interface {
	CheckHealth(ctx context.Context) bool
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) bool

// CheckHealth calls f(ctx).
func (f CheckerFunc) CheckHealth(ctx context.Context) bool {
	return f(ctx)
}

// =============================================================================
// POLLER
// =============================================================================

// Poller runs the checker immediately and then on a fixed period.
type Poller struct {
	checker  Checker
	interval time.Duration

	mu        sync.Mutex
	state     State
	lastCheck time.Time
	checks    int
	onResult  func(State)
	running   bool
}

// NewPoller creates a poller. A non-positive interval selects
// DefaultInterval.
func NewPoller(checker Checker, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		checker:  checker,
		interval: interval,
		state:    StateOnline,
	}
}

// Interval returns the polling period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// State returns the most recent state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Online reports whether the last check succeeded (or none has run yet).
func (p *Poller) Online() bool {
	return p.State() == StateOnline
}

// LastCheck returns when the last check completed; zero before the first.
func (p *Poller) LastCheck() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCheck
}

// Checks returns how many checks have completed.
func (p *Poller) Checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.checks
}

// OnResult sets a callback invoked after every check with the resulting
// state. It runs on the poller goroutine, outside the lock.
func (p *Poller) OnResult(fn func(State)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onResult = fn
}

// CheckNow runs one check synchronously and records the result.
func (p *Poller) CheckNow(ctx context.Context) State {
	online := p.checker.CheckHealth(ctx)

	next := StateOffline
	if online {
		next = StateOnline
	}

	p.mu.Lock()
	prev := p.state
	p.state = next
	p.lastCheck = time.Now()
	p.checks++
	fn := p.onResult
	p.mu.Unlock()

	if prev != next {
		log.Info().Str("from", prev.String()).Str("to", next.String()).Msg("backend connectivity changed")
	}
	if fn != nil {
		fn(next)
	}
	return next
}

// Run checks immediately and then every interval until ctx is cancelled.
// The ticker is stopped before Run returns. Calling Run while another Run is
// active returns immediately.
func (p *Poller) Run(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	if ctx.Err() != nil {
		return
	}
	p.CheckNow(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.CheckNow(ctx)
		}
	}
}

// Start runs the poller on its own goroutine. The returned function cancels
// it and waits for the goroutine to exit.
func (p *Poller) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}
