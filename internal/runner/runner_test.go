// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func shell(line string) cmdtemplate.BuiltCommand {
	return cmdtemplate.BuiltCommand{Kind: cmdtemplate.KindShell, CommandLine: line}
}

func TestRun_ArgvSuccess(t *testing.T) {
	skipOnWindows(t)

	cmd := &Command{Built: cmdtemplate.BuiltCommand{Kind: cmdtemplate.KindArgv, Argv: []string{"echo", "hello world"}}}
	res := cmd.Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello world", res.Stdout)
	assert.Empty(t, res.Stderr)
	assert.Positive(t, res.Pid)
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res := (&Command{Built: shell("echo oops >&2; exit 3")}).Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops", res.Stderr)
}

func TestRun_NotFound(t *testing.T) {
	cmd := &Command{Built: cmdtemplate.BuiltCommand{Kind: cmdtemplate.KindArgv, Argv: []string{"/not/a/real/command"}}}
	res := cmd.Run(context.Background())

	require.ErrorIs(t, res.Err, ErrCouldNotStartProcess)
	assert.Equal(t, NoExitCode, res.ExitCode)
}

func TestRun_EmptyArgv(t *testing.T) {
	res := (&Command{Built: cmdtemplate.BuiltCommand{Kind: cmdtemplate.KindArgv}}).Run(context.Background())
	require.ErrorIs(t, res.Err, ErrEmptyCommand)
	require.ErrorIs(t, res.Err, ErrCouldNotStartProcess)
}

func TestRun_EnvAndDir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	cmd := &Command{
		Built: shell(`echo "$FOO"; pwd`),
		Env:   append(os.Environ(), "FOO=BAR"),
		Dir:   dir,
	}

	res := cmd.Run(context.Background())
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "BAR")
	assert.Contains(t, res.Stdout, filepath.Base(dir))
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := (&Command{Built: shell("echo started; sleep 10")}).Run(ctx)

	require.ErrorIs(t, res.Err, ErrTimeoutExceeded)
	assert.Equal(t, NoExitCode, res.ExitCode)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, "started", res.Stdout)
}

func TestRun_Cancelled(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	res := (&Command{Built: shell("sleep 10")}).Run(ctx)

	require.ErrorIs(t, res.Err, ErrCancelled)
	assert.NotErrorIs(t, res.Err, ErrTimeoutExceeded)
}

func TestRun_DrainsBothStreamsConcurrently(t *testing.T) {
	skipOnWindows(t)

	// far more than a pipe buffer on stderr before anything on stdout
	script := `i=0; while [ $i -lt 20000 ]; do echo "err line $i" >&2; i=$((i+1)); done; echo finished`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res := (&Command{Built: shell(script)}).Run(ctx)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "finished", res.Stdout)
	assert.Equal(t, 20000, strings.Count(res.Stderr, "err line"))
}

func TestRun_OnLine(t *testing.T) {
	skipOnWindows(t)

	var (
		mu    sync.Mutex
		lines = map[progress.Stream][]string{}
	)

	cmd := &Command{
		Built: shell(`printf '10%%\r50%%\r100%%\n'; echo "frame 1 of 2" >&2`),
		OnLine: func(s progress.Stream, l string) {
			mu.Lock()
			defer mu.Unlock()

			lines[s] = append(lines[s], l)
		},
	}

	res := cmd.Run(context.Background())
	require.NoError(t, res.Err)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []string{"10%", "50%", "100%"}, lines[progress.Stdout])
	assert.Equal(t, []string{"frame 1 of 2"}, lines[progress.Stderr])
}

func TestRun_GrandchildHoldsPipe(t *testing.T) {
	skipOnWindows(t)

	cmd := &Command{
		Built:      shell("sleep 3 & echo hi"),
		DrainGrace: 100 * time.Millisecond,
	}

	start := time.Now()
	res := cmd.Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, "hi", res.Stdout)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRun_MaxOutputBytes(t *testing.T) {
	skipOnWindows(t)

	res := (&Command{Built: shell("echo aaaa; echo bbbb; echo cccc"), MaxOutputBytes: 10}).Run(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, "aaaa\nbbbb", res.Stdout)
	assert.True(t, res.StdoutTruncated)
}

func TestCommand_Argv(t *testing.T) {
	skipOnWindows(t)

	path, args, err := (&Command{Built: shell("echo hi")}).Argv()
	require.NoError(t, err)
	assert.Equal(t, "/bin/sh", path)
	assert.Equal(t, []string{"sh", "-c", "echo hi"}, args)

	path, args, err = (&Command{Built: cmdtemplate.BuiltCommand{Argv: []string{"sh", "-c", "true"}}}).Argv()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "/sh"))
	assert.Equal(t, []string{"sh", "-c", "true"}, args)
}
