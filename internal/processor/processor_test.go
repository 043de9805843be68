// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
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

// fixture creates <tmp>/in/<name> and an empty <tmp>/out.
func fixture(t *testing.T, name, content string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	in := filepath.Join(dir, "in", name)
	out := filepath.Join(dir, "out")

	require.NoError(t, os.MkdirAll(filepath.Dir(in), 0o755))
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	return in, out
}

func TestProcessFile_NoProgram(t *testing.T) {
	res := New().ProcessFile(context.Background(), Request{InputPath: "/x"}, nil)

	assert.False(t, res.Success)
	require.ErrorIs(t, res.Error, ErrNoProgram)
	assert.Equal(t, KindConfiguration, res.Kind())
	assert.Equal(t, NoExitCode, res.ExitCode)
	assert.Empty(t, res.Command)
}

func TestProcessFile_InputNotFound(t *testing.T) {
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return afero.NewMemMapFs() })
	defer stubs.Reset()

	res := New().ProcessFile(context.Background(), Request{InputPath: "/data/missing.wav", Program: "echo"}, nil)

	require.ErrorIs(t, res.Error, ErrInputNotFound)
	assert.Equal(t, KindInputNotFound, res.Kind())
	assert.Empty(t, res.Command)
}

func TestProcessFile_OutputNotWritable(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/data/a.wav", []byte("x"), 0o644))

	p := New(WithFs(afero.NewReadOnlyFs(mem)))
	res := p.ProcessFile(context.Background(), Request{InputPath: "/data/a.wav", OutputDir: "/out", Program: "echo"}, nil)

	require.ErrorIs(t, res.Error, ErrPermission)
	assert.Equal(t, KindPermission, res.Kind())
	assert.Equal(t, "/out/a.wav", res.OutputPath)
}

func TestProcessFile_EchoWritesStdout(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "hello")

	res := New().ProcessFile(context.Background(), Request{InputPath: in, OutputDir: out, Program: "echo"}, nil)

	require.NoError(t, res.Error)
	assert.True(t, res.Success)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, filepath.Join(out, "a.txt"), res.OutputPath)
	assert.True(t, res.OutputExists)
	assert.Equal(t, "echo "+in+" "+out, res.Command)
	assert.Positive(t, res.Duration)

	content, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, in+" "+out+"\n", string(content))
}

func TestProcessFile_ProgramOutputKept(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "hello")

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "true",
		Template:  "echo real > {output_dir}/a.txt; echo noise",
	}, nil)

	require.NoError(t, res.Error)

	content, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real\n", string(content))
	assert.Equal(t, "noise", res.Stdout)
}

func TestProcessFile_StdoutOverCapNotSaved(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "hello")

	res := New(WithMaxOutputBytes(100)).ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "sh",
		Template:  "{program} -c 'seq 1 1000' {input}",
	}, nil)

	assert.False(t, res.Success)
	require.ErrorIs(t, res.Error, ErrOutputTruncated)
	require.ErrorIs(t, res.Error, ErrExecution)
	assert.Equal(t, KindExecution, res.Kind())
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.OutputExists)
	assert.NoFileExists(t, filepath.Join(out, "a.txt"))
}

func TestProcessFile_StdoutUnderCapSaved(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "hello")

	res := New(WithMaxOutputBytes(100)).ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "sh",
		Template:  "{program} -c 'seq 1 5' {input}",
	}, nil)

	require.NoError(t, res.Error)

	content, err := os.ReadFile(filepath.Join(out, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n4\n5\n", string(content))
}

func TestProcessFile_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name     string
		template string
		kept     bool
	}{
		{name: "empty output removed", template: "touch {output_dir}/a.txt; exit 1", kept: false},
		{name: "stdout copy removed", template: "echo same | tee {output_dir}/a.txt; exit 2", kept: false},
		{name: "real output kept", template: "echo data > {output_dir}/a.txt; echo log; exit 2", kept: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := fixture(t, "a.txt", "x")

			res := New().ProcessFile(context.Background(), Request{
				InputPath: in,
				OutputDir: out,
				Program:   "true",
				Template:  tt.template,
			}, nil)

			assert.False(t, res.Success)
			require.ErrorIs(t, res.Error, ErrNonZeroExit)
			assert.Equal(t, KindNonZeroExit, res.Kind())
			assert.NotEqual(t, 0, res.ExitCode)
			assert.Equal(t, tt.kept, res.OutputExists)

			_, err := os.Stat(filepath.Join(out, "a.txt"))
			assert.Equal(t, tt.kept, err == nil)

			_, err = os.Stat(in)
			assert.NoError(t, err, "input must never be removed")
		})
	}
}

func TestProcessFile_Timeout(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "x")

	p := New(WithTimeout(300 * time.Millisecond))
	res := p.ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "sleep",
		Template:  "touch {output_dir}/a.txt; {program} 10",
	}, nil)

	assert.False(t, res.Success)
	require.ErrorIs(t, res.Error, ErrTimeout)
	assert.Equal(t, KindTimeout, res.Kind())
	assert.Equal(t, NoExitCode, res.ExitCode)
	assert.False(t, res.OutputExists)

	_, err := os.Stat(filepath.Join(out, "a.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessFile_LaunchFailure(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "x")

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "/definitely/not/here",
	}, nil)

	require.ErrorIs(t, res.Error, ErrExecution)
	assert.Equal(t, KindExecution, res.Kind())
	assert.False(t, res.OutputExists)
}

func TestProcessFile_Progress(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "x")

	var (
		mu   sync.Mutex
		seen []float64
	)

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "true",
		Template:  `printf 'Frame 1 of 4\n'; printf '50%%\n' >&2; echo nothing`,
	}, func(o progress.Observation) {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, o.Percentage)
	})

	require.NoError(t, res.Error)
	require.Len(t, res.Progress, 2)
	assert.ElementsMatch(t, []float64{25, 50}, seen)

	last, ok := res.LastProgress()
	assert.True(t, ok)
	assert.Contains(t, []float64{25, 50}, last.Percentage)
}

func TestProcessFile_EnvVars(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "a.txt", "x")

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "true",
		Template:  `echo "$FOO-$BAR"`,
		EnvVars:   "FOO=bar BAR=a=b IGNORED",
	}, nil)

	require.NoError(t, res.Error)
	assert.Equal(t, "bar-a=b", res.Stdout)
}

func TestProcessFile_PathWithSpaces(t *testing.T) {
	skipOnWindows(t)

	in, out := fixture(t, "my song (live).txt", "la la")

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: out,
		Program:   "cat",
		Template:  "{program} {input}",
	}, nil)

	require.NoError(t, res.Error)

	content, err := os.ReadFile(filepath.Join(out, "my song (live).txt"))
	require.NoError(t, err)
	assert.Equal(t, "la la\n", string(content))
}

func TestProcessFile_SideBySide(t *testing.T) {
	skipOnWindows(t)

	in, _ := fixture(t, "a.txt", "x")

	res := New().ProcessFile(context.Background(), Request{
		InputPath: in,
		OutputDir: filepath.Dir(in),
		Program:   "echo",
	}, nil)

	require.NoError(t, res.Error)
	assert.Equal(t, filepath.Join(filepath.Dir(in), "a_processed.txt"), res.OutputPath)
	assert.True(t, res.OutputExists)

	content, err := os.ReadFile(in)
	require.NoError(t, err)
	assert.Equal(t, "x", string(content))
}

func TestResult_Kind(t *testing.T) {
	assert.Equal(t, KindNone, Result{}.Kind())
	assert.Equal(t, KindExecution, Result{Error: os.ErrClosed}.Kind())
	assert.Equal(t, "non-zero-exit", KindNonZeroExit.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
	assert.Empty(t, Result{}.ErrorString())
	assert.Equal(t, ErrTimeout.Error(), Result{Error: ErrTimeout}.ErrorString())
}
