// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress holds the progress model of a batch.
//
// Extract guesses a completion percentage from one line of arbitrary program output.
// Event and Reporter carry per-file lifecycle updates from the orchestrator to a UI.
package progress
