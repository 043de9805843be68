// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package discovery finds the input files of a batch by extension and
// filters out files that are unlikely to process cleanly.
package discovery
