// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, opts ...Option) *slog.Logger {
	opts = append([]Option{WithDestinationWriter(buf)}, opts...)
	return slog.New(NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, opts...))
}

func TestNewPrettyHandler(t *testing.T) {
	h := NewPrettyHandler(nil)
	require.NotNil(t, h)
	assert.False(t, h.colour)
	assert.NotNil(t, h.writer)

	h = NewPrettyHandler(nil, WithColour(), WithOutputEmptyAttrs())
	assert.True(t, h.colour)
	assert.True(t, h.outputEmptyAttrs)
}

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name  string
		opts  *slog.HandlerOptions
		level slog.Level
		want  bool
	}{
		{name: "default rejects debug", opts: nil, level: slog.LevelDebug, want: false},
		{name: "default accepts info", opts: nil, level: slog.LevelInfo, want: true},
		{name: "warn rejects info", opts: &slog.HandlerOptions{Level: slog.LevelWarn}, level: slog.LevelInfo, want: false},
		{name: "warn accepts error", opts: &slog.HandlerOptions{Level: slog.LevelWarn}, level: slog.LevelError, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPrettyHandler(tt.opts)
			assert.Equal(t, tt.want, h.Enabled(context.Background(), tt.level))
		})
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf)

	logger.Info("processing", "file", "a.txt", "exit_code", 3, "ok", true)
	out := buf.String()

	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "processing")
	assert.Contains(t, out, `"file": "a.txt"`)
	assert.Contains(t, out, `"exit_code": 3`)
	assert.Contains(t, out, `"ok": true`)
	assert.NotContains(t, out, "\033[")
}

func TestPrettyHandler_NoAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	newTestLogger(buf).Warn("bare")
	assert.NotContains(t, buf.String(), "{")

	buf.Reset()
	newTestLogger(buf, WithOutputEmptyAttrs()).Warn("bare")
	assert.Contains(t, buf.String(), "{}")
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newTestLogger(buf).With("batch", "b1").WithGroup("file").With("index", 2)

	logger.Debug("step", "path", "x.wav", slog.Duration("took", time.Second), "err", errors.New("boom"))
	out := buf.String()

	assert.Contains(t, out, `"batch": "b1"`)
	assert.Contains(t, out, `"file": {`)
	assert.Contains(t, out, `"index": 2`)
	assert.Contains(t, out, `"path": "x.wav"`)
	assert.Contains(t, out, `"took": "1s"`)
	assert.Contains(t, out, `"err": "boom"`)
}

func TestPrettyHandler_ReplaceAttrDropsTime(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(buf))

	slog.New(h).Info("no time")
	assert.Regexp(t, `^INFO: no time`, buf.String())
}

func TestPrettyHandler_Colour(t *testing.T) {
	buf := &bytes.Buffer{}
	newTestLogger(buf, WithColour()).Error("red")
	assert.Contains(t, buf.String(), "\033[")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failWriter{}))
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "msg", 0)
	err := h.Handle(context.Background(), r)
	assert.ErrorIs(t, err, ErrIoWrite)
}
