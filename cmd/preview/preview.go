// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package preview contains the command that shows what would be run for each file.
package preview

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/matt-FFFFFF/infiniconv/cmd/cmdstate"
	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/color"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/orchestrator"
	"github.com/urfave/cli/v3"
)

// New returns the command that prints the command for every input file without running anything.
func New() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Show the command that would run for each input file",
		Description: `Print, for every input file, the command line as shown to the user
and the literal command the subprocess would receive. Nothing is executed.`,
		ArgsUsage: "[file...]",
		Flags:     cmdstate.AllFlags(),
		Action:    actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	settings, err := cmdstate.LoadSettings(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit("", 1)
	}

	if err := settings.Validate(); err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	files, err := cmdstate.ResolveFiles(ctx, cmd, settings)
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	job := orchestrator.JobFromProvider(settings, files)
	w := cmd.Root().Writer

	for _, f := range files {
		req := job.Request(f)
		spec := req.Spec()

		fmt.Fprintln(w, color.Colorize(filepath.Base(f), color.Bold))                 //nolint:errcheck
		fmt.Fprintf(w, "  display: %s\n", cmdtemplate.DisplayString(spec))            //nolint:errcheck
		fmt.Fprintf(w, "  literal: %s\n", cmdtemplate.Preview(spec))                  //nolint:errcheck
		fmt.Fprintf(w, "  kind:    %s\n", cmdtemplate.Build(ctx, spec).Kind.String()) //nolint:errcheck
	}

	return nil
}
