// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatch(ctx context.Context, cancel context.CancelFunc, sigCh chan os.Signal, ss *Stoppers) *sync.WaitGroup {
	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel, ss)
	}()

	return &wg
}

func TestWatch_FirstSignalStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	var stops atomic.Int32

	ss := &Stoppers{}
	ss.Add(StopperFunc(func() bool { stops.Add(1); return true }))

	sigCh := make(chan os.Signal, 1)
	wg := startWatch(ctx, cancel, sigCh, ss)

	sigCh <- os.Interrupt

	assert.Eventually(t, func() bool { return stops.Load() == 1 }, time.Second, 10*time.Millisecond)
	assert.NoError(t, ctx.Err(), "context should not be cancelled after first signal")

	close(sigCh)
	wg.Wait()
}

func TestWatch_SecondSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	sigCh := make(chan os.Signal, 2)

	wg := startWatch(ctx, cancel, sigCh, nil)

	sigCh <- os.Interrupt
	sigCh <- os.Kill

	wg.Wait()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestStoppers_Remove(t *testing.T) {
	var calls atomic.Int32

	ss := &Stoppers{}
	remove := ss.Add(StopperFunc(func() bool { calls.Add(1); return true }))
	ss.Add(StopperFunc(func() bool { calls.Add(10); return true }))

	remove()
	ss.stopAll()

	assert.Equal(t, int32(10), calls.Load())
}

func TestStoppersFrom(t *testing.T) {
	ss := &Stoppers{}
	ctx := WithStoppers(context.Background(), ss)

	assert.Same(t, ss, StoppersFrom(ctx))
	assert.NotNil(t, StoppersFrom(context.Background()))
}
