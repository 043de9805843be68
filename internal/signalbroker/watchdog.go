// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
)

// Stopper is asked to finish at the next safe point, e.g. the next file boundary.
type Stopper interface {
	Stop() bool
}

// StopperFunc adapts a function to Stopper.
type StopperFunc func() bool

// Stop calls f.
func (f StopperFunc) Stop() bool { return f() }

// Watch monitors the signal channel. The first signal asks every registered
// Stopper to stop, the second signal of any kind cancels the context.
// It returns when the channel is closed or after cancelling.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, stoppers *Stoppers) {
	received := 0

	for sig := range sigCh {
		received++

		if received > 1 {
			ctxlog.Logger(ctx).Warn("watchdog", "detail", "received second signal, forcefully terminating", "signal", sig.String())
			signal.Stop(sigCh)
			cancel()

			return
		}

		ctxlog.Logger(ctx).Warn("watchdog", "detail", "received signal, stopping after the current file; signal again to abort", "signal", sig.String())

		stoppers.stopAll()
	}
}

// Stoppers is a set of Stopper values registered while they are active.
// The zero value is ready to use and a nil *Stoppers holds nothing.
type Stoppers struct {
	mu      sync.Mutex
	members map[int]Stopper
	next    int
}

// Add registers s and returns a function that removes it again.
func (ss *Stoppers) Add(s Stopper) (remove func()) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.members == nil {
		ss.members = make(map[int]Stopper)
	}

	id := ss.next
	ss.next++
	ss.members[id] = s

	return func() {
		ss.mu.Lock()
		defer ss.mu.Unlock()

		delete(ss.members, id)
	}
}

func (ss *Stoppers) stopAll() {
	if ss == nil {
		return
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	for _, s := range ss.members {
		s.Stop()
	}
}

type stoppersKey struct{}

// WithStoppers stores ss in ctx so that commands can register what to stop.
func WithStoppers(ctx context.Context, ss *Stoppers) context.Context {
	return context.WithValue(ctx, stoppersKey{}, ss)
}

// StoppersFrom returns the Stoppers stored in ctx, or an unwatched empty set.
func StoppersFrom(ctx context.Context) *Stoppers {
	if ss, ok := ctx.Value(stoppersKey{}).(*Stoppers); ok && ss != nil {
		return ss
	}

	return &Stoppers{}
}
