// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package reconcile works out which files a run produced by comparing directory snapshots.
//
// Snapshots hold base names only, so two snapshots taken in different directories can be
// compared. A consequence is that when two inputs of one batch produce outputs with the same
// base name, the second output is not reported as new.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/afero"
)

// ErrSnapshot is returned when a directory cannot be listed.
var ErrSnapshot = errors.New("cannot snapshot directory")

// Set is a set of file base names.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}

	return s
}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}

	slices.Sort(out)

	return out
}

// Snapshot lists the regular files directly inside dir. A missing directory yields an
// empty set.
func Snapshot(fs afero.Fs, dir string) (Set, error) {
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}

		return nil, fmt.Errorf("%w %s: %w", ErrSnapshot, dir, err)
	}

	s := make(Set, len(infos))

	for _, fi := range infos {
		if fi.Mode().IsRegular() {
			s[fi.Name()] = struct{}{}
		}
	}

	return s, nil
}

// Diff returns the names in post that are not in pre, sorted.
func Diff(pre, post Set) []string {
	var out []string

	for n := range post {
		if !pre.Has(n) {
			out = append(out, n)
		}
	}

	slices.Sort(out)

	return out
}
