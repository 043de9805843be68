// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
)

// sysProcAttr puts the child in its own process group so a shell and everything it
// spawned can be killed together.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(ctx context.Context, ps *os.Process) {
	if err := syscall.Kill(-ps.Pid, syscall.SIGKILL); err == nil {
		ctxlog.Debug(ctx, "process group killed", "pgid", ps.Pid)
		return
	}

	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}
