// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader splits a stream into lines as it is read, keeping the captured lines
// and the most recent one for progress display.
//
// "\n", "\r\n" and a bare "\r" all end a line, so carriage-return progress bars produce one
// line per redraw. Trailing whitespace is trimmed from every line.
package teereader
