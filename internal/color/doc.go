// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI escape codes for the result summary and the
// pretty log handler. Output is plain when NO_COLOR is set, or when stdout is not a
// terminal and FORCE_COLOR is unset.
package color
