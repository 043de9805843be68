// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package shellescape

import (
	"os/exec"
	"runtime"
	"strings"
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape_Empty(t *testing.T) {
	for _, m := range []Mode{Quoted, RawInQuotes, RawBare} {
		t.Run(m.String(), func(t *testing.T) {
			assert.Empty(t, Escape("", m))
		})
	}
}

func TestEscapeRaw(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		alreadyQuoted bool
		want          string
	}{
		{name: "plain", in: "/a/b.txt", want: "/a/b.txt"},
		{name: "space bare", in: "/a/b c.txt", want: `/a/b\ c.txt`},
		{name: "space quoted", in: "/a/b c.txt", alreadyQuoted: true, want: "/a/b c.txt"},
		{name: "dollar quoted", in: "$HOME/x", alreadyQuoted: true, want: `\$HOME/x`},
		{name: "backslash first", in: `a\b`, want: `a\\b`},
		{name: "backslash quoted", in: `a\"b`, alreadyQuoted: true, want: `a\\\"b`},
		{name: "single quote bare", in: "it's", want: `it\'s`},
		{name: "single quote kept in double quotes", in: "it's", alreadyQuoted: true, want: "it's"},
		{name: "metachars", in: "a&b|c;d", want: `a\&b\|c\;d`},
		{name: "glob and tilde", in: "~/*.[ch]", want: `\~/\*.\[ch\]`},
		{name: "bang and backtick quoted", in: "x!`y`", alreadyQuoted: true, want: "x\\!\\`y\\`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeRaw(tt.in, tt.alreadyQuoted))
		})
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	paths := []string{
		"/a/b c.txt",
		"it's here.wav",
		`we"ird $HOME & (x) | y; z > w.txt`,
		"tab\there",
		"*?[]~#!",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			words, err := shellquote.Split(Escape(p, Quoted))
			require.NoError(t, err)
			assert.Equal(t, []string{p}, words)
		})
	}
}

func TestQuote_RoundTripThroughShell(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}

	p := `/tmp/a b/it's "$x" & !(y).txt`
	out, err := exec.Command("/bin/sh", "-c", "printf '%s' "+Escape(p, Quoted)).Output()
	require.NoError(t, err)
	assert.Equal(t, p, string(out))
}

func TestRawBare_RoundTrip(t *testing.T) {
	p := "/a/b c/(d) & e's.txt"
	words, err := shellquote.Split(Escape(p, RawBare))
	require.NoError(t, err)
	assert.Equal(t, []string{p}, words)
}

func TestQuoteArgv(t *testing.T) {
	argv := []string{"/bin/x", "/a/b c.txt", "plain"}
	words, err := shellquote.Split(QuoteArgv(argv))
	require.NoError(t, err)
	assert.Equal(t, argv, words)
	assert.True(t, strings.HasPrefix(QuoteArgv(argv), "/bin/x "))
}

func TestIsPlaceholderQuoted(t *testing.T) {
	tests := []struct {
		tmpl string
		want bool
	}{
		{tmpl: `{program} "{input}"`, want: true},
		{tmpl: `{program} '{input}'`, want: true},
		{tmpl: `{program} "--in={input}.bak"`, want: true},
		{tmpl: `{program} -i "{input}`, want: true},
		{tmpl: `{program} {input}`, want: false},
		{tmpl: `{program} "{output_dir}" {input}`, want: false},
		{tmpl: `"{program}" {input} "{output_dir}"`, want: false},
		{tmpl: `"{program}" "{input}" "{output_dir}"`, want: true},
		{tmpl: `{program} 'it"s' {input}`, want: false},
		{tmpl: ``, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlaceholderQuoted(tt.tmpl, "{input}"))
		})
	}
}

func TestRawMode(t *testing.T) {
	assert.Equal(t, RawInQuotes, RawMode(true))
	assert.Equal(t, RawBare, RawMode(false))
}

func BenchmarkIsPlaceholderQuoted(b *testing.B) {
	tmpl := `{env} {program} -y -i "{input}" -c:a libmp3lame '{output_dir}/out.mp3'`

	for b.Loop() {
		IsPlaceholderQuoted(tmpl, "{input}")
		IsPlaceholderQuoted(tmpl, "{output_dir}")
	}
}
