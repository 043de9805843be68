// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the persisted settings of infiniconv.
//
// Settings are stored as YAML by default. Files with an .hcl extension are
// decoded with HCL and may reference environment variables as env.NAME:
//
//	processing_program = "${env.HOME}/bin/convert"
//	file_extensions    = [".wav", ".flac"]
//	side_by_side       = true
//
// Remote files are retrieved with go-getter, see Fetch.
package config
