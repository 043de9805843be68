// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrFind is returned when a directory cannot be walked.
var ErrFind = errors.New("failed to find files")

// IncludeHidden indicates whether hidden files and directories are searched.
type IncludeHidden bool

var (
	// HiddenInclude searches hidden files and directories.
	HiddenInclude = IncludeHidden(true)
	// HiddenExclude skips hidden files and directories.
	HiddenExclude = IncludeHidden(false)
)

// FsFactory creates the filesystem used by New.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Finder lists files whose names end in one of its extensions.
type Finder struct {
	fs         afero.Fs
	extensions []string
	recursive  bool
	hidden     IncludeHidden
}

// Option configures a Finder.
type Option func(*Finder)

// WithFs replaces the filesystem returned by FsFactory.
func WithFs(fs afero.Fs) Option {
	return func(f *Finder) {
		f.fs = fs
	}
}

// WithRecursive searches subdirectories too.
func WithRecursive(r bool) Option {
	return func(f *Finder) {
		f.recursive = r
	}
}

// WithHidden controls whether dot files and dot directories are searched.
func WithHidden(h IncludeHidden) Option {
	return func(f *Finder) {
		f.hidden = h
	}
}

// New returns a Finder for the given extensions. Extensions without a leading
// dot get one.
func New(extensions []string, opts ...Option) *Finder {
	f := &Finder{
		fs:     FsFactory(),
		hidden: HiddenExclude,
	}

	f.SetExtensions(extensions)

	for _, o := range opts {
		o(f)
	}

	return f
}

// Extensions returns a copy of the searched extensions.
func (f *Finder) Extensions() []string {
	return slices.Clone(f.extensions)
}

// SetExtensions replaces the searched extensions.
func (f *Finder) SetExtensions(extensions []string) {
	f.extensions = nil
	for _, e := range extensions {
		f.AddExtension(e)
	}
}

// AddExtension adds ext unless it is already present.
func (f *Finder) AddExtension(ext string) {
	ext = normalizeExt(ext)
	if ext == "" || slices.Contains(f.extensions, ext) {
		return
	}

	f.extensions = append(f.extensions, ext)
}

// RemoveExtension removes ext if present.
func (f *Finder) RemoveExtension(ext string) {
	ext = normalizeExt(ext)
	f.extensions = slices.DeleteFunc(f.extensions, func(e string) bool { return e == ext })
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}

	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return ext
}

// Find returns the sorted, de-duplicated paths of the matching regular files
// in dir. A missing directory yields no files and no error.
func (f *Finder) Find(ctx context.Context, dir string) ([]string, error) {
	if ok, _ := afero.DirExists(f.fs, dir); !ok {
		ctxlog.Debug(ctx, "input directory does not exist", "dir", dir)
		return nil, nil
	}

	var files []string

	err := afero.Walk(f.fs, dir, func(path string, info fs.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}

		hidden := path != dir && strings.HasPrefix(info.Name(), ".")

		if info.IsDir() {
			if path == dir {
				return nil
			}

			if !f.recursive || (hidden && !bool(f.hidden)) {
				return filepath.SkipDir
			}

			return nil
		}

		if hidden && !bool(f.hidden) {
			return nil
		}

		if info.Mode().IsRegular() && f.matches(info.Name()) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w in %s: %w", ErrFind, dir, err)
	}

	slices.Sort(files)
	files = slices.Compact(files)

	ctxlog.Debug(ctx, "discovered files", "dir", dir, "count", len(files), "recursive", f.recursive)

	return files, nil
}

func (f *Finder) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range f.extensions {
		if len(name) > len(ext) && strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}

	return false
}

// Info describes one file.
type Info struct {
	Name      string
	Path      string
	Size      int64
	Modified  time.Time
	Extension string
	Directory string
}

// FileInfo returns information about path.
func (f *Finder) FileInfo(path string) (Info, error) {
	st, err := f.fs.Stat(path)
	if err != nil {
		return Info{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return Info{
		Name:      st.Name(),
		Path:      abs,
		Size:      st.Size(),
		Modified:  st.ModTime(),
		Extension: filepath.Ext(path),
		Directory: filepath.Dir(abs),
	}, nil
}

// stat returns the info of path, or false when it cannot be read.
func (f *Finder) stat(path string) (os.FileInfo, bool) {
	st, err := f.fs.Stat(path)
	if err != nil {
		return nil, false
	}

	return st, true
}
