// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/infiniconv/internal/color"
	"github.com/matt-FFFFFF/infiniconv/internal/orchestrator"
	"github.com/matt-FFFFFF/infiniconv/internal/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noColor(t *testing.T) {
	t.Helper()

	prev := color.Enabled()
	color.SetEnabled(false)
	t.Cleanup(func() { color.SetEnabled(prev) })
}

func testBatch() orchestrator.BatchResult {
	return orchestrator.BatchResult{
		Results: []processor.Result{
			{
				Success:      true,
				InputPath:    "/in/a.txt",
				OutputPath:   "/out/a.txt",
				OutputExists: true,
				Stdout:       "converted a",
				Duration:     1500 * time.Millisecond,
			},
			{
				Success:   false,
				ExitCode:  2,
				InputPath: "/in/b.txt",
				Stderr:    "bad input\nline two",
				Command:   "conv /in/b.txt",
				Error:     fmt.Errorf("%w: 2", processor.ErrNonZeroExit),
			},
		},
		Processed: 1,
		Failed:    1,
		Total:     3,
		Stopped:   true,
		NewFiles:  []string{"/out/a.txt"},
		Duration:  2 * time.Second,
		Problems:  []error{errors.New("snapshot failed")},
	}
}

func TestWriteText(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, testBatch(), nil))

	out := buf.String()
	assert.Contains(t, out, "✓ a.txt [1.5s]")
	assert.Contains(t, out, "➜ Output: /out/a.txt")
	assert.Contains(t, out, "✗ b.txt (exit code: 2)")
	assert.Contains(t, out, "➜ Error: program exited with non-zero code: 2")
	assert.Contains(t, out, "     bad input\n     line two\n")
	assert.NotContains(t, out, "converted a", "stdout is off by default")
	assert.NotContains(t, out, "Command:")
	assert.Contains(t, out, "New files:\n  /out/a.txt\n")
	assert.Contains(t, out, "! snapshot failed")
	assert.Contains(t, out, "1/3 processed, 1 failed, 1 skipped in 2s (stopped)")
}

func TestWriteText_AllDetails(t *testing.T) {
	noColor(t)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, testBatch(), &Options{
		IncludeStdOut:      true,
		ShowSuccessDetails: true,
		ShowCommand:        true,
	}))

	out := buf.String()
	assert.Contains(t, out, "➜ Stdout:\n     converted a\n")
	assert.Contains(t, out, "➜ Command: conv /in/b.txt")
	assert.NotContains(t, out, "bad input", "stderr disabled")
}

func TestWriteText_NoExitCodeHidden(t *testing.T) {
	noColor(t)

	br := orchestrator.BatchResult{
		Results: []processor.Result{{InputPath: "x", ExitCode: processor.NoExitCode, Error: processor.ErrTimeout}},
		Failed:  1,
		Total:   1,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, br, nil))
	assert.NotContains(t, buf.String(), "exit code")
	assert.Contains(t, buf.String(), "0/1 processed, 1 failed in 0s")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, testBatch()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))

	assert.EqualValues(t, 3, got["total"])
	assert.EqualValues(t, 1, got["skipped"])
	assert.Equal(t, true, got["stopped"])
	assert.Equal(t, []any{"snapshot failed"}, got["problems"])

	results, ok := got["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)

	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/in/a.txt", first["input_file"])
	assert.Equal(t, true, first["success"])
	assert.NotContains(t, first, "error")

	second, ok := results[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "program exited with non-zero code: 2", second["error"])
	assert.Equal(t, "non-zero-exit", second["error_kind"])
}
