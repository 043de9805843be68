// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package processor runs one input file through the external processing program.
//
// ProcessFile validates the request before anything is started, builds the command,
// runs it with a wall-clock timeout and reconciles the expected output file:
//
//   - exit code 0 and no output file: non-empty stdout becomes the output file
//   - non-zero exit: an output file that is empty or holds exactly the stdout is removed
//   - timeout or launch failure: the output file is removed
//
// The input file is never removed. Every outcome is returned as a Result; errors are
// reported in Result.Error and classified by Result.Kind.
package processor
