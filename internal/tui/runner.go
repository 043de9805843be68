// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/infiniconv/internal/orchestrator"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
)

// BatchFunc runs the batch shown by the TUI.
type BatchFunc func(ctx context.Context) (orchestrator.BatchResult, error)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	stop     func() bool
	mutex    sync.Mutex
}

var _ progress.Reporter = (*TUIReporter)(nil)

// TUIReporter implements progress.Reporter and forwards events to the TUI.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Report implements progress.Reporter.Report.
func (tr *TUIReporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.Close.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// Option configures a Runner.
type Option func(*Runner, *[]tea.ProgramOption)

// WithStopFunc is called when the user quits before the batch has finished,
// typically orchestrator.Orchestrator.Stop.
func WithStopFunc(stop func() bool) Option {
	return func(r *Runner, _ *[]tea.ProgramOption) {
		r.stop = stop
	}
}

// WithIO replaces the terminal, e.g. for headless tests.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(_ *Runner, po *[]tea.ProgramOption) {
		*po = append(*po, tea.WithInput(in), tea.WithOutput(out))
	}
}

// NewRunner creates a new TUI runner listing files.
func NewRunner(ctx context.Context, files []string, opts ...Option) *Runner {
	r := &Runner{
		model: NewModel(ctx, files),
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}

	for _, o := range opts {
		o(r, &programOpts)
	}

	r.program = tea.NewProgram(r.model, programOpts...)
	r.reporter = NewTUIReporter(r.program)

	return r
}

// Reporter returns the progress reporter for this TUI runner.
func (r *Runner) Reporter() progress.Reporter {
	return r.reporter
}

type batchOutcome struct {
	result orchestrator.BatchResult
	err    error
}

// Run starts the TUI and executes run with progress reporting.
// Quitting the TUI early requests a stop; ctrl+c cancels the batch.
// Once the batch is done the TUI stays open until the user quits.
func (r *Runner) Run(ctx context.Context, run BatchFunc) (orchestrator.BatchResult, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	resultChan := make(chan batchOutcome, 1)

	go func() {
		br, err := run(batchCtx)
		resultChan <- batchOutcome{result: br, err: err}
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		out     batchOutcome
		tuiErr  error
		tuiOpen = true
	)

	select {
	case out = <-resultChan:
		r.program.Send(BatchCompletedMsg{Summary: Summary{
			Processed: out.result.Processed,
			Failed:    out.result.Failed,
			Total:     out.result.Total,
			Stopped:   out.result.Stopped,
		}})

	case tuiErr = <-tuiDone:
		tuiOpen = false

		if r.model.Aborted() || tuiErr != nil {
			cancel()
		} else if r.stop != nil {
			r.stop()
		}

		out = <-resultChan

	case <-ctx.Done():
		out = <-resultChan
		r.program.Quit()
	}

	if tuiOpen {
		tuiErr = <-tuiDone
	}

	r.reporter.Close()

	if errors.Is(tuiErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		tuiErr = nil
	}

	return out.result, errors.Join(out.err, tuiErr)
}
