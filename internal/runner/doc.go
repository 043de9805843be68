// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner executes a built command as a child process.
//
// Stdout and stderr are each drained by their own goroutine while the process runs, so a
// child that fills one pipe can never block on it. Every line is offered to a callback as it
// arrives. When the context ends the whole process group is killed. After the child exits
// the drain goroutines get a short grace period to finish before their pipes are closed.
package runner
