// Package task provides the cooperative suspend/resume primitive the RFB
// engine runs on: a single goroutine that owns its own state, plus a
// predicate-wait a host goroutine can satisfy from the outside.
//
// Rather than stackful coroutines explicitly switched between an engine
// task and a host event loop, the engine is expressed as a single
// goroutine that blocks on channel receives and Signal waits — Go's
// natural equivalent of that suspend/resume shape.
package task

import (
	"context"
	"sync"
)

// Signal is a broadcastable wakeup with no payload and no "missed wakeup"
// state: Broadcast never blocks, and a Wait channel obtained before a
// Broadcast always fires. It exists so a host goroutine can unblock an
// engine goroutine parked in WaitFor without the two sharing a mutex
// around arbitrary state.
type Signal struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewSignal returns a ready-to-use Signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Wait returns a channel that closes on the next Broadcast.
func (s *Signal) Wait() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch
}

// Broadcast wakes every goroutine currently parked on Wait.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	close(s.ch)
	s.ch = make(chan struct{})
}

// WaitFor blocks the calling goroutine until predicate reports true, ctx is
// canceled, or shutdown fires — whichever happens first. predicate is
// re-evaluated once per wakeup. It is the caller's job to ensure
// predicate's inputs are only mutated by the one goroutine that also calls
// WaitFor (the engine), so no additional locking is needed around the
// predicate itself; whoever changes the inputs from another goroutine
// must call sig.Broadcast() after doing so.
func WaitFor(ctx context.Context, sig *Signal, shutdown <-chan struct{}, predicate func() bool) error {
	for {
		if predicate() {
			return nil
		}
		wake := sig.Wait()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-shutdown:
			return context.Canceled
		case <-wake:
		}
	}
}

// Engine runs a single entry function on its own goroutine and exposes a
// Done channel and a sticky result: one task per Connection, single-
// threaded with respect to its own state. There is exactly one long-lived
// engine task per Connection (never more), so the only meaningful target
// of a "yield" is the host, which Go already expresses as returning
// control to the scheduler by blocking on a channel.
type Engine struct {
	done chan struct{}
	err  error
	mu   sync.Mutex
}

// NewEngine starts fn on a new goroutine. fn receives ctx unchanged; the
// Engine never cancels it itself.
func NewEngine(ctx context.Context, fn func(context.Context) error) *Engine {
	e := &Engine{done: make(chan struct{})}
	go func() {
		defer close(e.done)
		err := fn(ctx)
		e.mu.Lock()
		e.err = err
		e.mu.Unlock()
	}()
	return e
}

// Done returns a channel closed once fn has returned.
func (e *Engine) Done() <-chan struct{} { return e.done }

// Err returns fn's return value. It is only meaningful after Done is
// closed.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}
