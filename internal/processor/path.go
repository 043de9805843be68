// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrInvalidProgram is returned by ValidateProgram.
	ErrInvalidProgram = errors.New("invalid processing program")

	whitespaceRun = regexp.MustCompile(`\s+`)
)

var unescapes = map[byte]string{
	' ': " ", '"': `"`, '\'': "'", '$': "$", '\\': `\`, '`': "`",
	'&': "&", '|': "|", ';': ";", '<': "<", '>': ">",
	'(': "(", ')': ")", '{': "{", '}': "}", '[': "[", ']': "]",
	'*': "*", '?': "?", '~': "~", '#': "#", '!': "!",
	't': "\t", 'n': "\n", 'r': "\r",
}

// NormalizePath cleans up a path pasted from a shell. A path that exists as given, or
// once surrounding whitespace is trimmed, is returned unchanged. Otherwise backslash
// escapes are undone and runs of whitespace collapse to one space. If the result
// does not exist but its directory does, the first file matching the name with every space
// taken as a wildcard is returned instead.
func NormalizePath(fs afero.Fs, p string) string {
	if p == "" {
		return p
	}

	if exists(fs, p) {
		return p
	}

	p = strings.TrimSpace(p)
	if exists(fs, p) {
		return p
	}

	p = unescape(p)
	p = whitespaceRun.ReplaceAllString(p, " ")

	if exists(fs, p) {
		return p
	}

	dir := filepath.Dir(p)
	if dir == "" || !exists(fs, dir) {
		return p
	}

	parts := strings.Split(filepath.Base(p), " ")
	for i, part := range parts {
		parts[i] = escapeGlob(part)
	}

	matches, err := afero.Glob(fs, filepath.Join(dir, strings.Join(parts, "*")))
	if err != nil || len(matches) == 0 {
		return p
	}

	return matches[0]
}

func unescape(p string) string {
	var b strings.Builder

	for i := 0; i < len(p); i++ {
		if p[i] == '\\' && i+1 < len(p) {
			if r, ok := unescapes[p[i+1]]; ok {
				b.WriteString(r)
				i++

				continue
			}
		}

		b.WriteByte(p[i])
	}

	return b.String()
}

func escapeGlob(s string) string {
	if runtime.GOOS == "windows" {
		return s
	}

	var b strings.Builder

	for _, r := range s {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

// ValidateProgram checks that p names an executable file, either by path or on PATH.
func ValidateProgram(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProgram, ErrNoProgram)
	}

	if _, err := exec.LookPath(unescape(strings.TrimSpace(p))); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProgram, err)
	}

	return nil
}

func exists(fs afero.Fs, p string) bool {
	_, err := fs.Stat(p)
	return err == nil
}
