// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmdtemplate turns a user command template into something that can be executed.
//
// A template may reference exactly four placeholders:
//
//	{env}         the raw environment string, e.g. "LANG=C TZ=UTC"
//	{program}     the processing program path
//	{input}       the input file, escaped for the shell
//	{output_dir}  the output directory, escaped for the shell
//
// "{{" and "}}" produce literal braces. A template yields a Shell command that is handed to
// the system shell so user-written quoting is preserved. An empty template, or the hint text
// shown by an empty settings field, yields an Argv command that involves no shell at all.
package cmdtemplate
