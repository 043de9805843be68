// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/spf13/afero"
)

// ProcessedSuffix is inserted before the extension when the output would overwrite the input.
const ProcessedSuffix = "_processed"

// OutputPath returns the output file expected for input. It is outputDir (or the input's
// directory when outputDir is empty) joined with the input's base name, unless that is the
// input itself, in which case ProcessedSuffix is added to the name.
func OutputPath(input, outputDir string) string {
	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}

	base := filepath.Base(input)
	candidate := filepath.Join(outputDir, base)

	if samePath(candidate, input) {
		ext := filepath.Ext(base)
		candidate = filepath.Join(outputDir, strings.TrimSuffix(base, ext)+ProcessedSuffix+ext)
	}

	return candidate
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}

	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)

	return err1 == nil && err2 == nil && aa == bb
}

// prepareOutput creates the output directory and checks that it and an existing output
// file are writable.
func prepareOutput(fs afero.Fs, outPath string) error {
	dir := filepath.Dir(outPath)

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create output directory %s: %w", ErrPermission, dir, err)
	}

	probe, err := afero.TempFile(fs, dir, ".infiniconv-probe-*")
	if err != nil {
		return fmt.Errorf("%w: output directory %s: %w", ErrPermission, dir, err)
	}

	_ = probe.Close()
	_ = fs.Remove(probe.Name())

	if !exists(fs, outPath) {
		return nil
	}

	f, err := fs.OpenFile(outPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: output file %s: %w", ErrPermission, outPath, err)
	}

	_ = f.Close()

	return nil
}

// saveStdout writes stdout as the output file after a successful run without one.
func saveStdout(ctx context.Context, fs afero.Fs, outPath, stdout string) {
	if strings.TrimSpace(stdout) == "" {
		ctxlog.Debug(ctx, "no output file created by program", "output", outPath)
		return
	}

	if err := afero.WriteFile(fs, outPath, []byte(stdout+"\n"), 0o644); err != nil {
		ctxlog.Warn(ctx, "failed to save stdout to output file", "output", outPath, "error", err)
		return
	}

	ctxlog.Debug(ctx, "saved stdout to output file", "output", outPath, "bytes", len(stdout)+1)
}

// cleanupAfterFailure removes the output of a non-zero exit when it is empty or holds
// nothing but the program's stdout.
func cleanupAfterFailure(ctx context.Context, fs afero.Fs, outPath, inPath, stdout string) {
	if samePath(outPath, inPath) {
		return
	}

	info, err := fs.Stat(outPath)
	if err != nil || info.IsDir() {
		return
	}

	remove := info.Size() == 0
	if !remove && strings.TrimSpace(stdout) != "" {
		content, err := afero.ReadFile(fs, outPath)
		remove = err == nil && bytes.Equal(bytes.TrimRight(content, "\r\n"), []byte(strings.TrimRight(stdout, "\r\n")))
	}

	if !remove {
		ctxlog.Debug(ctx, "keeping output written by failed program", "output", outPath, "bytes", info.Size())
		return
	}

	removeOutput(ctx, fs, outPath, "command failure")
}

// cleanupAfterAbort removes the output after a timeout or launch failure.
func cleanupAfterAbort(ctx context.Context, fs afero.Fs, outPath, inPath, reason string) {
	if samePath(outPath, inPath) {
		return
	}

	if info, err := fs.Stat(outPath); err != nil || info.IsDir() {
		return
	}

	removeOutput(ctx, fs, outPath, reason)
}

func removeOutput(ctx context.Context, fs afero.Fs, outPath, reason string) {
	if err := fs.Remove(outPath); err != nil {
		ctxlog.Warn(ctx, "failed to remove output file", "output", outPath, "reason", reason, "error", err)
		return
	}

	ctxlog.Info(ctx, "removed output file", "output", outPath, "reason", reason)
}
