// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// Packages that run external programs log through the logger found in their context
// instead of printing, so a host (CLI, TUI, tests) decides where output goes.
// The default logger writes human-readable lines to stderr using PrettyHandler.
//
// The level is read once from the environment variable <EXECUTABLE>_LOG_LEVEL,
// e.g. INFINICONV_LOG_LEVEL=DEBUG. Unknown or empty values mean WARN.
package ctxlog
