// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/matt-FFFFFF/infiniconv/internal/teereader"
)

// NoExitCode is reported when the process did not exit on its own.
const NoExitCode = -1

const (
	// DefaultDrainGrace is how long the readers may keep going after the process exited.
	DefaultDrainGrace = time.Second
	tickerInterval    = 10 * time.Second
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrTimeoutExceeded is returned when the context deadline passed and the process was killed.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrCancelled is returned when the context was cancelled and the process was killed.
	ErrCancelled = errors.New("process cancelled")
	// ErrWait is returned when waiting for the process failed.
	ErrWait = errors.New("failed to wait for process")
	// ErrEmptyCommand is returned for an Argv command without a program.
	ErrEmptyCommand = errors.New("empty command")
)

// LineFunc receives each output line as it is read.
type LineFunc func(stream progress.Stream, line string)

// Command describes one child process.
type Command struct {
	Built cmdtemplate.BuiltCommand
	// Env is the complete environment of the child. Nil inherits the parent's.
	Env []string
	// Dir is the working directory. Empty means the current one.
	Dir string
	// OnLine is called from the reader goroutines; it must be safe for concurrent use.
	OnLine LineFunc
	// MaxOutputBytes bounds the captured lines per stream. Zero uses teereader.DefaultMaxBytes.
	MaxOutputBytes int
	// DrainGrace overrides DefaultDrainGrace.
	DrainGrace time.Duration
}

// Execution is the outcome of Command.Run.
type Execution struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	StdoutTruncated bool
	StderrTruncated bool
	Pid             int
	Duration        time.Duration
	// Err is nil when the process ran to completion, whatever its exit code.
	Err error
}

// Argv returns the program path and argument vector that will be started.
func (c *Command) Argv() (string, []string, error) {
	switch c.Built.Kind {
	case cmdtemplate.KindShell:
		return shellArgv(c.Built.CommandLine)
	default:
		if len(c.Built.Argv) == 0 || c.Built.Argv[0] == "" {
			return "", nil, ErrEmptyCommand
		}

		path, err := exec.LookPath(c.Built.Argv[0])
		if err != nil {
			return "", nil, err //nolint:wrapcheck
		}

		args := append([]string{filepath.Base(c.Built.Argv[0])}, c.Built.Argv[1:]...)

		return path, args, nil
	}
}

func shellArgv(line string) (string, []string, error) {
	if runtime.GOOS == "windows" {
		comspec := os.Getenv("COMSPEC")
		if comspec == "" {
			comspec = "cmd.exe"
		}

		path, err := exec.LookPath(comspec)
		if err != nil {
			return "", nil, err //nolint:wrapcheck
		}

		return path, []string{"cmd.exe", "/C", line}, nil
	}

	return "/bin/sh", []string{"sh", "-c", line}, nil
}

// Run starts the process and blocks until it has exited and its output is collected.
func (c *Command) Run(ctx context.Context) Execution {
	logger := ctxlog.Logger(ctx).With("runnableType", "runner.Command")
	res := Execution{ExitCode: NoExitCode}

	path, args, err := c.Argv()
	if err != nil {
		res.Err = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}

	logger.Debug("command info", "path", path, "args", args, "cwd", c.Dir)

	devNull, err := os.Open(os.DevNull)
	if err != nil {
		res.Err = errors.Join(ErrCouldNotStartProcess, err)
		return res
	}
	defer devNull.Close() //nolint:errcheck

	rOut, wOut, err := os.Pipe()
	if err != nil {
		res.Err = errors.Join(ErrFailedToCreatePipe, err)
		return res
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = rOut.Close()
		_ = wOut.Close()
		res.Err = errors.Join(ErrFailedToCreatePipe, err)

		return res
	}

	env := c.Env
	if env == nil {
		env = os.Environ()
	}

	startTime := time.Now()

	ps, err := os.StartProcess(path, args, &os.ProcAttr{
		Dir:   c.Dir,
		Env:   env,
		Files: []*os.File{devNull, wOut, wErr},
		Sys:   sysProcAttr(),
	})

	// The child holds its own copies of the write ends.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		_ = rOut.Close()
		_ = rErr.Close()
		res.Err = errors.Join(ErrCouldNotStartProcess, err)

		return res
	}

	res.Pid = ps.Pid
	logger.Debug("process started", "pid", ps.Pid)

	outReader := c.newReader(rOut, progress.Stdout)
	errReader := c.newReader(rErr, progress.Stderr)

	var drains sync.WaitGroup

	for _, lt := range []*teereader.LineTeeReader{outReader, errReader} {
		drains.Add(1)

		go func() {
			defer drains.Done()

			if err := lt.Drain(); err != nil {
				logger.Debug("output drain ended with error", "error", err)
			}
		}()
	}

	done := make(chan struct{})
	// buffered so the watchdog never blocks on a process that already finished
	wasKilled := make(chan error, 1)

	var watchdog sync.WaitGroup

	watchdog.Add(1)

	go func() {
		defer watchdog.Done()

		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				logger.Debug("process still running", "pid", ps.Pid, "elapsed", time.Since(startTime).Round(time.Second))
			case <-ctx.Done():
				reason := ErrCancelled
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					reason = ErrTimeoutExceeded
				}

				logger.Info("context done, killing process", "pid", ps.Pid, "reason", reason)
				killProcessGroup(ctx, ps)
				wasKilled <- reason

				return
			case <-done:
				return
			}
		}
	}()

	state, waitErr := ps.Wait()
	close(done)
	watchdog.Wait()

	res.Duration = time.Since(startTime)

	if waitErr != nil {
		res.Err = errors.Join(ErrWait, waitErr)
	} else {
		res.ExitCode = state.ExitCode()
	}

	select {
	case e := <-wasKilled:
		res.Err = errors.Join(res.Err, e)
		res.ExitCode = NoExitCode
	default:
	}

	c.joinDrains(ctx, &drains, rOut, rErr)

	res.Stdout = outReader.Text()
	res.Stderr = errReader.Text()
	res.StdoutTruncated = outReader.Truncated()
	res.StderrTruncated = errReader.Truncated()

	logger.Debug("process finished",
		"pid", ps.Pid,
		"exitCode", res.ExitCode,
		"stdoutBytes", len(res.Stdout),
		"stderrBytes", len(res.Stderr),
		"duration", res.Duration,
	)

	return res
}

func (c *Command) newReader(r *os.File, stream progress.Stream) *teereader.LineTeeReader {
	opts := []teereader.Option{}
	if c.MaxOutputBytes > 0 {
		opts = append(opts, teereader.WithMaxBytes(c.MaxOutputBytes))
	}

	if c.OnLine != nil {
		onLine := c.OnLine
		opts = append(opts, teereader.WithLineFunc(func(line string) { onLine(stream, line) }))
	}

	return teereader.New(r, opts...)
}

// joinDrains waits for both readers, at most DrainGrace. A grandchild that inherited the
// pipes can keep them open after the child exited; closing the read ends unblocks the readers.
func (c *Command) joinDrains(ctx context.Context, wg *sync.WaitGroup, files ...*os.File) {
	grace := c.DrainGrace
	if grace <= 0 {
		grace = DefaultDrainGrace
	}

	joined := make(chan struct{})

	go func() {
		wg.Wait()
		close(joined)
	}()

	select {
	case <-joined:
	case <-time.After(grace):
		ctxlog.Debug(ctx, "output readers did not finish in time, closing pipes", "grace", grace)
	}

	for _, f := range files {
		_ = f.Close()
	}

	<-joined
}
