// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdstate

import (
	"github.com/urfave/cli/v3"
)

const (
	ConfigFlag          = "config"
	ConfigDirFlag       = "config-dir"
	ConfigTimeoutFlag   = "config-timeout"
	InputDirFlag        = "input-dir"
	ExtFlag             = "ext"
	RecursiveFlag       = "recursive"
	SkipProblematicFlag = "skip-problematic"
	ProgramFlag         = "program"
	TemplateFlag        = "template"
	EnvFlag             = "env"
	OutputDirFlag       = "output-dir"
	SideBySideFlag      = "side-by-side"
	DeleteOriginalsFlag = "delete-originals"

	configTimeoutSecondsDefault = 30
)

// StoreFlags select the configuration store and the configuration to load.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    ConfigFlag,
			Aliases: []string{"c"},
			Usage: "Name of a saved configuration, a path, or a go-getter URL of a YAML or HCL " +
				"configuration file. Defaults to the stored default configuration.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      ConfigDirFlag,
			Usage:     "Directory holding saved configurations. Defaults to the user configuration directory.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:  ConfigTimeoutFlag,
			Usage: "Maximum time in seconds to wait for a remote configuration file.",
			Value: configTimeoutSecondsDefault,
		},
	}
}

// DiscoveryFlags override how input files are found.
func DiscoveryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      InputDirFlag,
			Aliases:   []string{"i"},
			Usage:     "Directory to search for input files when no files are given as arguments.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringSliceFlag{
			Name:    ExtFlag,
			Aliases: []string{"e"},
			Usage:   "File extension to search for. Specify multiple times for several extensions.",
		},
		&cli.BoolFlag{
			Name:    RecursiveFlag,
			Aliases: []string{"r"},
			Usage:   "Search subdirectories of the input directory.",
		},
		&cli.BoolFlag{
			Name:  SkipProblematicFlag,
			Usage: "Skip partial, temporary and backup files and files smaller than 50 bytes.",
		},
	}
}

// ProcessingFlags override how each file is processed.
func ProcessingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     ProgramFlag,
			Aliases:  []string{"p"},
			Usage:    "Program that processes each file.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:    TemplateFlag,
			Aliases: []string{"t"},
			Usage: "Command template run through the shell. Placeholders: " +
				"{env} {program} {input} {output_dir}. Use {{ and }} for literal braces.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     EnvFlag,
			Usage:    "Whitespace separated KEY=VALUE pairs added to the environment of the program.",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:      OutputDirFlag,
			Aliases:   []string{"o"},
			Usage:     "Shared output directory. Without it outputs are written next to their inputs.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:  SideBySideFlag,
			Usage: "Write every output next to its input, ignoring the output directory.",
		},
		&cli.BoolFlag{
			Name:  DeleteOriginalsFlag,
			Usage: "Delete each input file after it was processed successfully.",
		},
	}
}

// AllFlags returns fresh instances of every shared flag.
func AllFlags() []cli.Flag {
	flags := StoreFlags()
	flags = append(flags, DiscoveryFlags()...)

	return append(flags, ProcessingFlags()...)
}
