// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"
)

// DefaultMaxBytes bounds the captured lines of one stream.
const DefaultMaxBytes = 8 << 20

// LineFunc is called for every complete line, in order, on the reading goroutine.
type LineFunc func(line string)

// LineTeeReader wraps an io.Reader and splits what passes through it into lines.
// Getters are safe for concurrent use with Read.
type LineTeeReader struct {
	reader    io.Reader
	onLine    LineFunc
	maxBytes  int
	mu        sync.RWMutex
	lines     []string
	size      int
	truncated bool
	lastLine  string
	partial   strings.Builder
	pendingCR bool
}

// Option configures a LineTeeReader.
type Option func(*LineTeeReader)

// WithLineFunc sets the per-line callback.
func WithLineFunc(fn LineFunc) Option {
	return func(lt *LineTeeReader) {
		lt.onLine = fn
	}
}

// WithMaxBytes changes the capture limit. Once a line does not fit, it and every later
// line are still passed to the callback but not stored. Zero or less means unlimited.
func WithMaxBytes(n int) Option {
	return func(lt *LineTeeReader) {
		lt.maxBytes = n
	}
}

// New wraps r.
func New(r io.Reader, opts ...Option) *LineTeeReader {
	lt := &LineTeeReader{
		reader:   r,
		maxBytes: DefaultMaxBytes,
	}

	for _, o := range opts {
		o(lt)
	}

	return lt
}

// Read implements io.Reader.
func (lt *LineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		lt.consume(p[:n])
	}

	if err != nil {
		if errors.Is(err, io.EOF) {
			lt.flush()
		}

		return n, err //nolint:wrapcheck
	}

	return n, nil
}

// Drain reads until EOF. A read on a closed pipe counts as EOF.
func (lt *LineTeeReader) Drain() error {
	_, err := io.Copy(io.Discard, lt)
	if err != nil && errors.Is(err, os.ErrClosed) {
		lt.flush()
		return nil
	}

	return err //nolint:wrapcheck
}

func (lt *LineTeeReader) consume(b []byte) {
	var done []string

	lt.mu.Lock()

	for _, c := range b {
		switch c {
		case '\n':
			if lt.pendingCR {
				lt.pendingCR = false
				continue
			}

			done = append(done, lt.endLine())
		case '\r':
			done = append(done, lt.endLine())
			lt.pendingCR = true
		default:
			lt.pendingCR = false
			lt.partial.WriteByte(c)
		}
	}

	lt.mu.Unlock()

	lt.emit(done)
}

func (lt *LineTeeReader) flush() {
	lt.mu.Lock()

	var done []string
	if lt.partial.Len() > 0 {
		done = append(done, lt.endLine())
	}

	lt.mu.Unlock()

	lt.emit(done)
}

// endLine finishes the partial line. Must be called with the lock held.
func (lt *LineTeeReader) endLine() string {
	line := strings.TrimRightFunc(lt.partial.String(), unicode.IsSpace)
	lt.partial.Reset()
	lt.lastLine = line

	if lt.truncated || (lt.maxBytes > 0 && lt.size+len(line)+1 > lt.maxBytes) {
		lt.truncated = true
		return line
	}

	lt.lines = append(lt.lines, line)
	lt.size += len(line) + 1

	return line
}

func (lt *LineTeeReader) emit(lines []string) {
	if lt.onLine == nil {
		return
	}

	for _, l := range lines {
		lt.onLine(l)
	}
}

// Lines returns a copy of the captured lines.
func (lt *LineTeeReader) Lines() []string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return append([]string(nil), lt.lines...)
}

// Text returns the captured lines joined with "\n".
func (lt *LineTeeReader) Text() string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return strings.Join(lt.lines, "\n")
}

// Truncated reports whether lines were dropped because of the capture limit.
func (lt *LineTeeReader) Truncated() bool {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.truncated
}

// LastLine returns the most recent complete line. With maxLength > 3 a longer line is cut
// and ends in "...".
func (lt *LineTeeReader) LastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	result := lt.lastLine
	if maxLength > 3 && len(result) > maxLength {
		result = result[:maxLength-3] + "..."
	}

	return result
}

// Partial returns text read after the last line break.
func (lt *LineTeeReader) Partial() string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	return lt.partial.String()
}
