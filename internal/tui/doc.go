// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time terminal user interface for a batch. It lists
// every file with a status icon, elapsed time, its percentage and the last line
// of output or the error, above an overall progress bar.
//
// The TUI is fed by the progress event system through a TUIReporter.
package tui
