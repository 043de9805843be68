// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/config"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/discovery"
	"github.com/urfave/cli/v3"
)

// ErrNoFiles is returned when neither arguments nor discovery yield any file.
var ErrNoFiles = errors.New("no input files found")

// Store opens the configuration store selected by --config-dir.
func Store(cmd *cli.Command) (*config.Store, error) {
	return config.NewStore(cmd.String(ConfigDirFlag))
}

// LoadSettings loads the configuration selected by --config and applies the
// flags that were set on the command line.
func LoadSettings(ctx context.Context, cmd *cli.Command) (config.Settings, error) {
	store, err := Store(cmd)
	if err != nil {
		return config.Default(), err
	}

	var s config.Settings

	switch src := cmd.String(ConfigFlag); {
	case src == "":
		s, err = store.Load()
	case isGetterURL(src):
		fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(cmd.Int(ConfigTimeoutFlag))*time.Second)
		defer cancel()

		s, err = config.FetchSettings(fetchCtx, src)
	default:
		s, err = store.LoadFrom(src)
	}

	if err != nil {
		return s, err
	}

	s = ApplyFlags(cmd, s)
	applyLogLevel(ctx, s.LogLevel)

	return s, nil
}

// isGetterURL reports whether src needs go-getter rather than a plain file read.
func isGetterURL(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// ApplyFlags overlays the flags that were explicitly set on s.
func ApplyFlags(cmd *cli.Command, s config.Settings) config.Settings {
	setString := func(name string, dst *string) {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	setBool := func(name string, dst *bool) {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}

	setString(InputDirFlag, &s.InputDir)
	setString(ProgramFlag, &s.Program)
	setString(TemplateFlag, &s.Template)
	setString(EnvFlag, &s.Env)
	setString(OutputDirFlag, &s.OutputDir)
	setBool(RecursiveFlag, &s.Recursive)
	setBool(SideBySideFlag, &s.SideBySide)
	setBool(DeleteOriginalsFlag, &s.DeleteOriginals)

	if cmd.IsSet(ExtFlag) {
		s.Extensions = cmd.StringSlice(ExtFlag)
	}

	return s
}

// applyLogLevel honours the configured level unless the environment already chose one.
func applyLogLevel(ctx context.Context, level string) {
	if level == "" || os.Getenv(ctxlog.LevelEnvName()) != "" {
		return
	}

	if l, ok := ctxlog.ParseLevel(level); ok {
		ctxlog.LevelVar.Set(l)
		ctxlog.Debug(ctx, "log level from configuration", "level", l.String())
	}
}

// ResolveFiles returns the files given as arguments, or discovers them in the
// input directory.
func ResolveFiles(ctx context.Context, cmd *cli.Command, s config.Settings) ([]string, error) {
	finder := discovery.New(s.Extensions, discovery.WithRecursive(s.Recursive))

	files := cmd.Args().Slice()
	if len(files) == 0 {
		if s.InputDir == "" {
			return nil, ErrNoFiles
		}

		found, err := finder.Find(ctx, s.InputDir)
		if err != nil {
			return nil, err
		}

		files = found
	}

	if cmd.Bool(SkipProblematicFlag) {
		files = finder.FilterProblematic(ctx, files)
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	return files, nil
}
