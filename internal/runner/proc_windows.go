// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package runner

import (
	"context"
	"errors"
	"os"
	"syscall"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

func killProcessGroup(ctx context.Context, ps *os.Process) {
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
