// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/processor"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/matt-FFFFFF/infiniconv/internal/reconcile"
	"github.com/spf13/afero"
)

// DefaultInterFileDelay is the pause between two files.
const DefaultInterFileDelay = 200 * time.Millisecond

var (
	// ErrAlreadyRunning is returned when a batch is started while another one runs.
	ErrAlreadyRunning = errors.New("a batch is already running")
	// ErrDeleteOriginal is recorded when an input could not be removed.
	ErrDeleteOriginal = errors.New("failed to delete original file")
)

// FileProcessor processes a single file. *processor.Processor implements it.
type FileProcessor interface {
	ProcessFile(ctx context.Context, req processor.Request, onProgress processor.ProgressFunc) processor.Result
}

// Orchestrator runs batches.
type Orchestrator struct {
	proc     FileProcessor
	fs       afero.Fs
	delay    time.Duration
	reporter progress.Reporter

	onFileProgress func(global float64, message string)
	onFileDone     func(index int, res processor.Result)
	onComplete     func(BatchResult)

	mu    sync.RWMutex
	state state
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFs sets the filesystem used for snapshots and deleting originals.
func WithFs(fs afero.Fs) Option {
	return func(o *Orchestrator) {
		o.fs = fs
	}
}

// WithInterFileDelay replaces DefaultInterFileDelay.
func WithInterFileDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.delay = d
	}
}

// WithReporter sends lifecycle events to r.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithFileProgress is called with the batch percentage and a message for every
// percentage the program reports.
func WithFileProgress(fn func(global float64, message string)) Option {
	return func(o *Orchestrator) {
		o.onFileProgress = fn
	}
}

// WithFileDone is called after every file.
func WithFileDone(fn func(index int, res processor.Result)) Option {
	return func(o *Orchestrator) {
		o.onFileDone = fn
	}
}

// WithComplete is called once with the batch result.
func WithComplete(fn func(BatchResult)) Option {
	return func(o *Orchestrator) {
		o.onComplete = fn
	}
}

// New creates an Orchestrator. Callbacks run on the batch goroutine.
func New(proc FileProcessor, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		proc:     proc,
		fs:       processor.FsFactory(),
		delay:    DefaultInterFileDelay,
		reporter: progress.NewNullReporter(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Status returns a copy of the current batch state.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.state.snapshot()
}

// Stop asks the running batch to end after the current file. It reports
// whether a batch was running.
func (o *Orchestrator) Stop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.state.running {
		return false
	}

	o.state.shouldStop = true

	return true
}

// Start runs job on a new goroutine. The returned channel yields the result and is closed.
func (o *Orchestrator) Start(ctx context.Context, job Job) (<-chan BatchResult, error) {
	if err := o.begin(len(job.Files)); err != nil {
		return nil, err
	}

	done := make(chan BatchResult, 1)

	go func() {
		defer close(done)
		done <- o.run(ctx, job)
	}()

	return done, nil
}

// Run processes job and blocks until the batch has ended.
func (o *Orchestrator) Run(ctx context.Context, job Job) (BatchResult, error) {
	if err := o.begin(len(job.Files)); err != nil {
		return BatchResult{}, err
	}

	return o.run(ctx, job), nil
}

func (o *Orchestrator) begin(total int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.running {
		return ErrAlreadyRunning
	}

	o.state.reset(total)

	return nil
}

func (o *Orchestrator) shouldStop(ctx context.Context) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.state.shouldStop || ctx.Err() != nil
}

func (o *Orchestrator) update(fn func(s *state)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	fn(&o.state)
}

func (o *Orchestrator) run(ctx context.Context, job Job) (br BatchResult) {
	start := time.Now()
	total := len(job.Files)
	logger := ctxlog.Logger(ctx).With("batchSize", total)

	br = BatchResult{Total: total}

	defer func() {
		o.update(func(s *state) {
			s.running = false
			s.currentFile = ""
		})

		br.Duration = time.Since(start)
		logger.Info("batch finished", "processed", br.Processed, "failed", br.Failed, "stopped", br.Stopped)

		o.reporter.Report(progress.Event{
			Type:      progress.EventBatchDone,
			Total:     total,
			Message:   fmt.Sprintf("%d succeeded, %d failed", br.Processed, br.Failed),
			Timestamp: time.Now(),
		})

		if o.onComplete != nil {
			o.onComplete(br)
		}
	}()

	if total == 0 {
		return br
	}

	logger.Info("starting batch", "sideBySide", job.sideBySide(), "outputDir", job.OutputDir)

	var sharedPre reconcile.Set

	if !job.sideBySide() {
		pre, err := reconcile.Snapshot(o.fs, job.OutputDir)
		if err != nil {
			br.Problems = append(br.Problems, err)
		}

		sharedPre = pre
	}

	for i, file := range job.Files {
		if o.shouldStop(ctx) {
			logger.Info("batch stopped", "remaining", total-i)
			br.Stopped = true

			for k, f := range job.Files[i:] {
				o.reporter.Report(progress.Event{FilePath: f, Index: i + k, Total: total, Type: progress.EventSkipped, Timestamp: time.Now()})
			}

			break
		}

		res := o.processOne(ctx, job, i, file, &br)
		br.Results = append(br.Results, res)

		o.update(func(s *state) {
			if res.Success {
				s.processed++
			} else {
				s.failed++
			}

			if last, ok := res.LastProgress(); ok {
				s.lastProgress = res.Progress
				s.currentProgress = last.Percentage
			} else {
				s.currentProgress = float64(s.processed+s.failed) / float64(s.total) * 100
			}

			s.overall = float64(s.processed+s.failed) / float64(s.total) * 100
		})

		if res.Success {
			br.Processed++
		} else {
			br.Failed++
		}

		if o.onFileDone != nil {
			o.onFileDone(i, res)
		}

		if i < total-1 && o.delay > 0 {
			select {
			case <-time.After(o.delay):
			case <-ctx.Done():
			}
		}
	}

	if !job.sideBySide() && sharedPre != nil {
		post, err := reconcile.Snapshot(o.fs, job.OutputDir)
		if err != nil {
			br.Problems = append(br.Problems, err)
		} else {
			br.NewFiles = joinAll(job.OutputDir, reconcile.Diff(sharedPre, post))
		}

		if job.DeleteOriginals {
			for _, res := range br.Results {
				o.deleteOriginal(ctx, res, &br)
			}
		}
	}

	slices.Sort(br.NewFiles)

	return br
}

// processOne runs one file, including side-by-side reconciliation and deletion.
func (o *Orchestrator) processOne(ctx context.Context, job Job, i int, file string, br *BatchResult) processor.Result {
	total := len(job.Files)
	req := job.Request(file)

	o.update(func(s *state) {
		s.currentFile = file
		s.currentIndex = i
		s.overall = float64(i) / float64(total) * 100
	})

	ctxlog.Info(ctx, "processing file", "index", i+1, "total", total, "file", file)
	o.reporter.Report(progress.Event{
		FilePath:  file,
		Index:     i,
		Total:     total,
		Type:      progress.EventStarted,
		Message:   fmt.Sprintf("processing %d/%d", i+1, total),
		Timestamp: time.Now(),
	})

	var pre reconcile.Set

	if job.sideBySide() {
		s, err := reconcile.Snapshot(o.fs, req.OutputDir)
		if err != nil {
			br.Problems = append(br.Problems, err)
		}

		pre = s
	}

	onProgress := func(obs progress.Observation) {
		global := (float64(i) + obs.Percentage/100) / float64(total) * 100

		o.update(func(s *state) {
			s.overall = global
		})

		o.reporter.Report(progress.Event{
			FilePath:  file,
			Index:     i,
			Total:     total,
			Type:      progress.EventProgress,
			Message:   obs.Line,
			Timestamp: time.Now(),
			Data:      progress.EventData{Percentage: obs.Percentage, OverallPercentage: global},
		})

		if o.onFileProgress != nil {
			o.onFileProgress(global, fmt.Sprintf("File %d/%d: %s - %s", i+1, total, filepath.Base(file), obs.Line))
		}
	}

	res := o.proc.ProcessFile(ctx, req, onProgress)

	if job.sideBySide() && pre != nil {
		post, err := reconcile.Snapshot(o.fs, req.OutputDir)
		if err != nil {
			br.Problems = append(br.Problems, err)
		} else {
			res.NewFiles = joinAll(req.OutputDir, reconcile.Diff(pre, post))
			br.NewFiles = append(br.NewFiles, res.NewFiles...)
		}

		if job.DeleteOriginals {
			o.deleteOriginal(ctx, res, br)
		}
	}

	ev := progress.Event{
		FilePath:  file,
		Index:     i,
		Total:     total,
		Type:      progress.EventCompleted,
		Timestamp: time.Now(),
		Data:      progress.EventData{ExitCode: res.ExitCode, Error: res.Error, Percentage: 100},
	}

	if !res.Success {
		ev.Type = progress.EventFailed
		ev.Message = res.ErrorString()
	}

	o.reporter.Report(ev)

	return res
}

func (o *Orchestrator) deleteOriginal(ctx context.Context, res processor.Result, br *BatchResult) {
	if !res.Success || res.InputPath == "" || res.InputPath == res.OutputPath {
		return
	}

	if err := o.fs.Remove(res.InputPath); err != nil {
		ctxlog.Warn(ctx, "failed to delete original file", "file", res.InputPath, "error", err)
		br.Problems = append(br.Problems, fmt.Errorf("%w %s: %w", ErrDeleteOriginal, res.InputPath, err))

		return
	}

	ctxlog.Info(ctx, "deleted original file", "file", res.InputPath)
	br.Deleted = append(br.Deleted, res.InputPath)
}

func joinAll(dir string, names []string) []string {
	if len(names) == 0 {
		return nil
	}

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}

	return out
}
