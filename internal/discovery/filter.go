// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package discovery

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
)

// MinUsableSize is the size below which FilterProblematic treats a file as incomplete.
const MinUsableSize = 50

// NoMaxSize disables the upper bound of FilterBySize.
const NoMaxSize int64 = -1

// ProblematicPatterns mark partial, temporary or backup files.
var ProblematicPatterns = []string{".part", ".tmp", ".temp", ".bak", ".swp", ".DS_Store"}

// FilterBySize keeps the files whose size is within [minSize, maxSize].
// Files that cannot be stat'ed are dropped.
func (f *Finder) FilterBySize(files []string, minSize, maxSize int64) []string {
	var out []string

	for _, p := range files {
		st, ok := f.stat(p)
		if !ok {
			continue
		}

		if st.Size() >= minSize && (maxSize == NoMaxSize || st.Size() <= maxSize) {
			out = append(out, p)
		}
	}

	return out
}

// FilterByModTime keeps the files modified within [start, end].
// A zero bound is open.
func (f *Finder) FilterByModTime(files []string, start, end time.Time) []string {
	var out []string

	for _, p := range files {
		st, ok := f.stat(p)
		if !ok {
			continue
		}

		mt := st.ModTime()
		if (start.IsZero() || !mt.Before(start)) && (end.IsZero() || !mt.After(end)) {
			out = append(out, p)
		}
	}

	return out
}

// FilterProblematic drops files whose names contain one of ProblematicPatterns,
// files smaller than MinUsableSize and files that cannot be stat'ed.
func (f *Finder) FilterProblematic(ctx context.Context, files []string) []string {
	var out []string

	for _, p := range files {
		name := filepath.Base(p)

		st, ok := f.stat(p)
		if !ok {
			ctxlog.Debug(ctx, "skipping file", "file", name, "reason", "not readable")
			continue
		}

		problematic := isProblematic(name)
		tooSmall := st.Size() < MinUsableSize

		if problematic || tooSmall {
			ctxlog.Debug(ctx, "skipping file", "file", name, "size", st.Size(), "problematic", problematic, "too_small", tooSmall)
			continue
		}

		out = append(out, p)
	}

	return out
}

func isProblematic(name string) bool {
	for _, pat := range ProblematicPatterns {
		if strings.Contains(name, pat) {
			return true
		}
	}

	return false
}
