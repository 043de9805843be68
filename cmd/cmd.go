// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"fmt"
	"os"

	"github.com/matt-FFFFFF/infiniconv"
	"github.com/matt-FFFFFF/infiniconv/cmd/config"
	"github.com/matt-FFFFFF/infiniconv/cmd/list"
	"github.com/matt-FFFFFF/infiniconv/cmd/preview"
	"github.com/matt-FFFFFF/infiniconv/cmd/run"
	"github.com/urfave/cli/v3"
)

// New returns the root command for the CLI.
func New() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			config.New(),
			list.New(),
			preview.New(),
			run.New(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "infiniconv",
		Version:   fmt.Sprintf("%s (commit: %s)", infiniconv.Version, infiniconv.Commit),
		Description: `infiniconv runs a user-chosen program once for every file in a batch.
The command for each file comes from a template with {program}, {input}, {output_dir}
and {env} placeholders. Outputs are reconciled against the output directory and
progress reported by the program is shown as it runs.`,
		Usage:     "infiniconv run --program ffmpeg --template '{program} -i {input} {output_dir}/out.mp3' *.wav",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}
