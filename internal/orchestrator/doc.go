// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator processes a list of files one after another.
//
// An Orchestrator runs at most one batch at a time. The batch goroutine is the only writer
// of the batch state; observers read it through Status, which returns a copy.
// Stop is cooperative and only observed between files: the file in flight runs to
// completion or timeout. Cancelling the context passed to Run also kills the file in flight.
//
// Files that appeared in an output directory are found with reconcile snapshots, either
// once around the whole batch (shared output directory) or around every file (side-by-side
// mode, where each file's output directory is its own directory).
package orchestrator
