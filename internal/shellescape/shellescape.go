// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellescape makes file-system paths safe to place in a shell command line.
package shellescape

import (
	"strings"

	posix "github.com/alessio/shellescape"
)

// Mode selects how a path is escaped.
type Mode int

const (
	// Quoted produces a single POSIX-quoted token.
	Quoted Mode = iota
	// RawInQuotes escapes only what could break out of a surrounding double-quoted context
	// written by the user in a template.
	RawInQuotes
	// RawBare escapes every shell metacharacter individually so the path can sit unquoted.
	RawBare
)

func (m Mode) String() string {
	switch m {
	case Quoted:
		return "quoted"
	case RawInQuotes:
		return "raw-in-quotes"
	case RawBare:
		return "raw-bare"
	default:
		return "unknown"
	}
}

// RawMode returns RawInQuotes when alreadyQuoted is true, otherwise RawBare.
func RawMode(alreadyQuoted bool) Mode {
	if alreadyQuoted {
		return RawInQuotes
	}

	return RawBare
}

// Characters escaped inside a user-written quoted context.
const quotedSpecials = "\"`$\\!"

// Characters escaped when the path is not surrounded by quotes. Backslash is handled first.
const bareSpecials = "\"'`$!&|;<>(){}[]*?~# \t\n\r"

// Escape escapes path according to mode. An empty path is returned unchanged.
func Escape(path string, mode Mode) string {
	if path == "" {
		return ""
	}

	switch mode {
	case Quoted:
		return Quote(path)
	case RawInQuotes:
		return EscapeRaw(path, true)
	default:
		return EscapeRaw(path, false)
	}
}

// Quote wraps s in single quotes when needed so that a POSIX shell reads it back verbatim.
func Quote(s string) string {
	return posix.Quote(s)
}

// QuoteArgv joins argv into a command line in which each element is a single shell word.
func QuoteArgv(argv []string) string {
	return posix.QuoteCommand(argv)
}

// EscapeRaw backslash-escapes path for interpolation into a template.
func EscapeRaw(path string, alreadyQuoted bool) string {
	if path == "" {
		return ""
	}

	specials := bareSpecials
	if alreadyQuoted {
		specials = quotedSpecials
	}

	var b strings.Builder

	b.Grow(len(path) * 2)

	for _, r := range path {
		if r == '\\' || strings.ContainsRune(specials, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

// IsPlaceholderQuoted reports whether placeholder (e.g. "{input}") appears inside quotes
// in tmpl: either directly after a quote character, or within a quoted region that is
// still open where the placeholder starts. Quotes are paired left to right; this is not
// a shell parser.
func IsPlaceholderQuoted(tmpl, placeholder string) bool {
	if tmpl == "" || placeholder == "" {
		return false
	}

	var open byte

	for i := 0; i < len(tmpl); i++ {
		if strings.HasPrefix(tmpl[i:], placeholder) {
			if open != 0 || (i > 0 && isQuote(tmpl[i-1])) {
				return true
			}

			i += len(placeholder) - 1

			continue
		}

		switch c := tmpl[i]; {
		case open == 0 && isQuote(c):
			open = c
		case c == open:
			open = 0
		}
	}

	return false
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}
