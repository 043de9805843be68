// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdstate holds the flags shared by the commands that process files,
// and turns them plus the stored configuration into settings and a file list.
package cmdstate
