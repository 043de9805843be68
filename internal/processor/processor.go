// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/matt-FFFFFF/infiniconv/internal/runner"
	"github.com/spf13/afero"
)

// DefaultTimeout is the wall-clock limit for one file.
const DefaultTimeout = 300 * time.Second

// FsFactory creates the filesystem used for pre-checks and output handling.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// ProgressFunc receives every progress observation as it is extracted.
// It is called from the output reader goroutines.
type ProgressFunc func(obs progress.Observation)

// Processor runs files through an external program.
type Processor struct {
	fs             afero.Fs
	timeout        time.Duration
	drainGrace     time.Duration
	maxOutputBytes int
	onLine         runner.LineFunc
}

// Option configures a Processor.
type Option func(*Processor)

// WithTimeout replaces DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) {
		p.timeout = d
	}
}

// WithFs replaces the filesystem returned by FsFactory.
func WithFs(fs afero.Fs) Option {
	return func(p *Processor) {
		p.fs = fs
	}
}

// WithDrainGrace sets how long output readers may run after the program exited.
func WithDrainGrace(d time.Duration) Option {
	return func(p *Processor) {
		p.drainGrace = d
	}
}

// WithMaxOutputBytes bounds the captured output per stream.
func WithMaxOutputBytes(n int) Option {
	return func(p *Processor) {
		p.maxOutputBytes = n
	}
}

// WithOutputFunc receives every output line, e.g. to show it live.
func WithOutputFunc(fn runner.LineFunc) Option {
	return func(p *Processor) {
		p.onLine = fn
	}
}

// New creates a Processor.
func New(opts ...Option) *Processor {
	p := &Processor{
		fs:      FsFactory(),
		timeout: DefaultTimeout,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Fs returns the filesystem the processor checks outputs on.
func (p *Processor) Fs() afero.Fs {
	return p.fs
}

// Timeout returns the per-file limit.
func (p *Processor) Timeout() time.Duration {
	return p.timeout
}

// ProcessFile processes one file. It never panics on bad input and always returns a
// Result; onProgress may be nil.
func (p *Processor) ProcessFile(ctx context.Context, req Request, onProgress ProgressFunc) (res Result) {
	start := time.Now()
	res = Result{
		ExitCode:   NoExitCode,
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		OutputDir:  req.OutputDir,
	}

	defer func() { res.Duration = time.Since(start) }()

	logger := ctxlog.Logger(ctx).With("input", req.InputPath)
	ctx = ctxlog.New(ctx, logger)

	if req.Program == "" {
		res.Error = ErrNoProgram
		return res
	}

	input := NormalizePath(p.fs, req.InputPath)
	res.InputPath = input

	if !exists(p.fs, input) {
		res.Error = fmt.Errorf("%w: %s", ErrInputNotFound, input)
		return res
	}

	outPath := req.OutputPath
	if outPath == "" {
		outPath = OutputPath(input, req.OutputDir)
	}

	res.OutputPath = outPath

	if err := prepareOutput(p.fs, outPath); err != nil {
		res.Error = err
		return res
	}

	spec := req.Spec()
	spec.Input = input
	built := cmdtemplate.Build(ctx, spec)
	res.Command = cmdtemplate.DisplayString(spec)

	logger.Info("executing command", "command", res.Command, "mode", built.Kind.String())

	var (
		mu  sync.Mutex
		obs []progress.Observation
	)

	cmd := &runner.Command{
		Built:          built,
		Env:            MergeEnv(os.Environ(), req.EnvVars),
		MaxOutputBytes: p.maxOutputBytes,
		DrainGrace:     p.drainGrace,
	}

	cmd.OnLine = func(stream progress.Stream, line string) {
		if p.onLine != nil {
			p.onLine(stream, line)
		}

		pct, ok := progress.Extract(line)
		if !ok {
			return
		}

		o := progress.Observation{Percentage: pct, Line: line, Stream: stream}

		mu.Lock()
		obs = append(obs, o)
		mu.Unlock()

		logger.Debug("progress detected", "percentage", pct, "stream", stream.String())

		if onProgress != nil {
			onProgress(o)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	exec := cmd.Run(runCtx)

	mu.Lock()
	res.Progress = obs
	mu.Unlock()

	res.Stdout = exec.Stdout
	res.Stderr = exec.Stderr
	res.ExitCode = exec.ExitCode

	switch {
	case errors.Is(exec.Err, runner.ErrTimeoutExceeded):
		logger.Warn("command timed out", "timeout", p.timeout)
		cleanupAfterAbort(ctx, p.fs, outPath, input, "timeout")
		res.Error = fmt.Errorf("%w after %s: %w", ErrTimeout, p.timeout, exec.Err)
	case exec.Err != nil:
		logger.Warn("command execution failed", "error", exec.Err)
		cleanupAfterAbort(ctx, p.fs, outPath, input, "execution failure")
		res.Error = errors.Join(ErrExecution, exec.Err)
	case exec.ExitCode == 0 && !exists(p.fs, outPath) && exec.StdoutTruncated:
		logger.Warn("stdout exceeded the capture limit, not saving a partial output file", "limit", p.maxOutputBytes)
		res.Error = fmt.Errorf("%w: %w", ErrExecution, ErrOutputTruncated)
	case exec.ExitCode == 0:
		if !exists(p.fs, outPath) {
			saveStdout(ctx, p.fs, outPath, exec.Stdout)
		}
	default:
		cleanupAfterFailure(ctx, p.fs, outPath, input, exec.Stdout)
		res.Error = fmt.Errorf("%w: %d", ErrNonZeroExit, exec.ExitCode)
	}

	res.Success = res.Error == nil
	res.OutputExists = exists(p.fs, outPath)

	logger.Debug("command finished",
		"success", res.Success,
		"exitCode", res.ExitCode,
		"output", outPath,
		"outputExists", res.OutputExists,
	)

	return res
}
