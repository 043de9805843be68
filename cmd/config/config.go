// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config contains the commands that manage saved configurations.
package config

import (
	"context"
	"fmt"

	"github.com/matt-FFFFFF/infiniconv/cmd/cmdstate"
	"github.com/matt-FFFFFF/infiniconv/internal/config"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/urfave/cli/v3"
)

const (
	nameArg    = "name"
	formatFlag = "format"
)

// New returns the command that groups the configuration store commands.
func New() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show, save and list configurations",
		Commands: []*cli.Command{
			showCmd(),
			saveCmd(),
			listCmd(),
			defaultsCmd(),
		},
	}
}

func showCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the effective configuration, including any flags given",
		Flags: append(cmdstate.AllFlags(), &cli.StringFlag{
			Name:  formatFlag,
			Usage: "Output format, yaml or hcl",
			Value: "yaml",
		}),
		Action: showAction,
	}
}

func saveCmd() *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save the configuration with the flags given applied",
		Description: `Without a name the default configuration is overwritten.
With a name the configuration is stored under that name and can be loaded with --config <name>.`,
		Flags: cmdstate.AllFlags(),
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: nameArg,
			},
		},
		Action: saveAction,
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:   "list",
		Usage:  "List the saved configurations",
		Flags:  cmdstate.StoreFlags(),
		Action: listAction,
	}
}

func defaultsCmd() *cli.Command {
	return &cli.Command{
		Name:   "defaults",
		Usage:  "Reset the default configuration, keeping the input directory",
		Flags:  cmdstate.StoreFlags(),
		Action: defaultsAction,
	}
}

func showAction(ctx context.Context, cmd *cli.Command) error {
	s, err := cmdstate.LoadSettings(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit("", 1)
	}

	data, err := config.Encode("show."+cmd.String(formatFlag), s)
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	_, err = cmd.Root().Writer.Write(data)

	return err
}

func saveAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cmdstate.Store(cmd)
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	s, err := cmdstate.LoadSettings(ctx, cmd)
	if err != nil {
		ctxlog.Error(ctx, fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit("", 1)
	}

	path := store.Path()

	if name := cmd.StringArg(nameArg); name != "" {
		path, err = store.SaveAs(name, s)
	} else {
		err = store.Save(s)
	}

	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	fmt.Fprintf(cmd.Root().Writer, "Configuration saved to %s\n", path) //nolint:errcheck

	return nil
}

func listAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cmdstate.Store(cmd)
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	names, err := store.List()
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	w := cmd.Root().Writer

	if len(names) == 0 {
		fmt.Fprintf(w, "No saved configurations in %s\n", store.Dir()) //nolint:errcheck
		return nil
	}

	for _, n := range names {
		fmt.Fprintf(w, "- %s\n", n) //nolint:errcheck
	}

	return nil
}

func defaultsAction(ctx context.Context, cmd *cli.Command) error {
	store, err := cmdstate.Store(cmd)
	if err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	current, err := store.Load()
	if err != nil {
		ctxlog.Warn(ctx, "current configuration unreadable, resetting anyway", "error", err)
	}

	if err := store.Save(config.Defaults(current)); err != nil {
		ctxlog.Error(ctx, err.Error())
		return cli.Exit("", 1)
	}

	fmt.Fprintf(cmd.Root().Writer, "Default configuration written to %s\n", store.Path()) //nolint:errcheck

	return nil
}
