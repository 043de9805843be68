// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTeeReader_Split(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "lf", in: "a\nb\n", want: []string{"a", "b"}},
		{name: "crlf", in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{name: "bare cr", in: "10%\r20%\r30%\n", want: []string{"10%", "20%", "30%"}},
		{name: "no trailing newline", in: "a\nlast", want: []string{"a", "last"}},
		{name: "blank lines kept", in: "a\n\nb\n", want: []string{"a", "", "b"}},
		{name: "trailing spaces trimmed", in: "a  \t\nb \n", want: []string{"a", "b"}},
		{name: "empty", in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string

			lt := New(strings.NewReader(tt.in), WithLineFunc(func(l string) { got = append(got, l) }))
			require.NoError(t, lt.Drain())

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, lt.Lines())
		})
	}
}

func TestLineTeeReader_CRLFAcrossReads(t *testing.T) {
	lt := New(iotest.OneByteReader(strings.NewReader("one\r\ntwo\r\n")))
	require.NoError(t, lt.Drain())
	assert.Equal(t, []string{"one", "two"}, lt.Lines())
	assert.Equal(t, "one\ntwo", lt.Text())
}

func TestLineTeeReader_MaxBytes(t *testing.T) {
	var seen int

	lt := New(strings.NewReader("aaaa\nbbbb\ncccc\n"),
		WithMaxBytes(10),
		WithLineFunc(func(string) { seen++ }),
	)
	require.NoError(t, lt.Drain())

	assert.Equal(t, []string{"aaaa", "bbbb"}, lt.Lines())
	assert.True(t, lt.Truncated())
	assert.Equal(t, 3, seen)
	assert.Equal(t, "cccc", lt.LastLine(0))
}

func TestLineTeeReader_NoCaptureAfterOverflow(t *testing.T) {
	var seen []string

	lt := New(strings.NewReader("aaaa\n"+strings.Repeat("b", 20)+"\ncc\n"),
		WithMaxBytes(10),
		WithLineFunc(func(l string) { seen = append(seen, l) }),
	)
	require.NoError(t, lt.Drain())

	assert.Equal(t, "aaaa", lt.Text())
	assert.True(t, lt.Truncated())
	assert.Len(t, seen, 3)
	assert.Equal(t, "cc", lt.LastLine(0))
}

func TestLineTeeReader_LastLine(t *testing.T) {
	lt := New(strings.NewReader("first\na rather long progress line\npartial"))

	buf := make([]byte, len("first\na rather long progress line\n"))
	_, err := io.ReadFull(lt, buf)
	require.NoError(t, err)

	assert.Equal(t, "a rather long progress line", lt.LastLine(0))
	assert.Equal(t, "a rather...", lt.LastLine(11))

	require.NoError(t, lt.Drain())
	assert.Equal(t, "partial", lt.LastLine(0))
	assert.Empty(t, lt.Partial())
}

func TestLineTeeReader_ReadError(t *testing.T) {
	boom := errors.New("boom")
	lt := New(iotest.ErrReader(boom))
	assert.ErrorIs(t, lt.Drain(), boom)
}

func TestLineTeeReader_ClosedPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	_, err = w.WriteString("x\ny")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	lt := New(r)
	require.NoError(t, lt.Drain())
	require.NoError(t, r.Close())

	assert.Equal(t, []string{"x", "y"}, lt.Lines())
}

func TestLineTeeReader_ConcurrentGetters(t *testing.T) {
	pr, pw := io.Pipe()
	lt := New(pr)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		assert.NoError(t, lt.Drain())
	}()

	for i := 0; i < 100; i++ {
		_, _ = pw.Write([]byte("line\r"))
		_ = lt.LastLine(10)
		_ = lt.Lines()
	}

	require.NoError(t, pw.Close())
	wg.Wait()

	assert.Len(t, lt.Lines(), 100)
}
