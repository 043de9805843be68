// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the infiniconv command-line application.
package main

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/infiniconv/cmd"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	stoppers := &signalbroker.Stoppers{}
	ctx = signalbroker.WithStoppers(ctx, stoppers)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel, stoppers)

	err := cmd.New().Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
