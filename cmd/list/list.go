// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list contains the command that shows the files a batch would process.
package list

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/infiniconv/cmd/cmdstate"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/discovery"
	"github.com/urfave/cli/v3"
)

const (
	detailsFlag = "details"
	minSizeFlag = "min-size"
	maxSizeFlag = "max-size"
	sinceFlag   = "since"
)

// New returns the command that prints the discovered input files.
func New() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List the files that would be processed",
		ArgsUsage: "[file...]",
		Flags: append(cmdstate.StoreFlags(), append(cmdstate.DiscoveryFlags(),
			&cli.BoolFlag{
				Name:    detailsFlag,
				Aliases: []string{"l"},
				Usage:   "Show size and modification time of each file",
			},
			&cli.Int64Flag{
				Name:  minSizeFlag,
				Usage: "Only list files of at least this many bytes",
			},
			&cli.Int64Flag{
				Name:  maxSizeFlag,
				Usage: "Only list files of at most this many bytes",
				Value: discovery.NoMaxSize,
			},
			&cli.DurationFlag{
				Name:  sinceFlag,
				Usage: "Only list files modified within this duration, e.g. 24h",
			},
		)...),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	settings, err := cmdstate.LoadSettings(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit("", 1)
	}

	w := cmd.Root().Writer

	files, err := cmdstate.ResolveFiles(ctx, cmd, settings)
	if errors.Is(err, cmdstate.ErrNoFiles) {
		fmt.Fprintln(w, "No files found.") //nolint:errcheck
		return nil
	}

	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	finder := discovery.New(settings.Extensions)

	if cmd.IsSet(minSizeFlag) || cmd.IsSet(maxSizeFlag) {
		files = finder.FilterBySize(files, cmd.Int64(minSizeFlag), cmd.Int64(maxSizeFlag))
	}

	if d := cmd.Duration(sinceFlag); d > 0 {
		files = finder.FilterByModTime(files, time.Now().Add(-d), time.Time{})
	}

	for _, f := range files {
		if !cmd.Bool(detailsFlag) {
			fmt.Fprintln(w, f) //nolint:errcheck
			continue
		}

		info, err := finder.FileInfo(f)
		if err != nil {
			ctxlog.Warn(ctx, "cannot stat file", "file", f, "error", err)
			continue
		}

		fmt.Fprintf(w, "%10d  %s  %s\n", info.Size, info.Modified.Format(time.DateTime), info.Path) //nolint:errcheck
	}

	return nil
}
