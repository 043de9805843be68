// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdtemplate

import (
	"context"
	"errors"
	"strings"

	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/shellescape"
)

// PlaceholderHint is the prefix of the hint text an empty template field shows.
// A template starting with it is treated as empty.
const PlaceholderHint = "Use placeholders:"

// Kind is the execution mode of a BuiltCommand.
type Kind int

const (
	// KindArgv runs Argv directly without a shell.
	KindArgv Kind = iota
	// KindShell hands CommandLine to the system shell.
	KindShell
)

func (k Kind) String() string {
	if k == KindShell {
		return "shell"
	}

	return "argv"
}

// BuiltCommand is ready for the runner. Exactly one of CommandLine and Argv is set.
type BuiltCommand struct {
	Kind        Kind
	CommandLine string
	Argv        []string
	// Fallback is set when the template could not be used and the minimal command was built.
	Fallback error
}

// String renders the command for logs and results.
func (c BuiltCommand) String() string {
	if c.Kind == KindShell {
		return c.CommandLine
	}

	return strings.Join(c.Argv, " ")
}

// Spec is the input of a build.
type Spec struct {
	Template  string
	Program   string
	Input     string
	OutputDir string
	Env       string
	ExtraArgs []string
}

// UsesTemplate reports whether s.Template is a real user template.
func (s Spec) UsesTemplate() bool {
	return s.Template != "" && !strings.HasPrefix(s.Template, PlaceholderHint)
}

// Build produces the command for s. It never fails: a template that cannot be parsed
// yields the minimal "<env> <program> <input> <output_dir>" shell command.
func Build(ctx context.Context, s Spec) BuiltCommand {
	if !s.UsesTemplate() {
		return BuiltCommand{Kind: KindArgv, Argv: argvOf(s)}
	}

	line, err := render(s)
	if err != nil {
		ctxlog.Warn(ctx, "command template unusable, using fallback command", "template", s.Template, "error", err)
	}

	return BuiltCommand{Kind: KindShell, CommandLine: line, Fallback: err}
}

// DisplayString returns the human readable form of the command Build would produce.
// Nothing is executed and nothing is logged.
func DisplayString(s Spec) string {
	if !s.UsesTemplate() {
		return BuiltCommand{Kind: KindArgv, Argv: argvOf(s)}.String()
	}

	line, _ := render(s)

	return line
}

// Preview returns exactly what will be invoked: the shell line verbatim, or the argv joined
// with POSIX quoting so it can be pasted into a terminal.
func Preview(s Spec) string {
	if s.Program == "" {
		return strings.TrimSpace(envPrefix(s.Env) + shellescape.Quote(s.Input))
	}

	if !s.UsesTemplate() {
		return shellescape.QuoteArgv(argvOf(s))
	}

	line, _ := render(s)

	return line
}

func argvOf(s Spec) []string {
	argv := make([]string, 0, len(s.ExtraArgs)+3)
	argv = append(argv, s.Program)
	argv = append(argv, s.ExtraArgs...)
	argv = append(argv, s.Input)

	if s.OutputDir != "" {
		argv = append(argv, s.OutputDir)
	}

	return argv
}

// ErrFallback wraps the parse error when the fallback command was used.
var ErrFallback = errors.New("command template fallback")

func render(s Spec) (string, error) {
	input := shellescape.EscapeRaw(s.Input, shellescape.IsPlaceholderQuoted(s.Template, "{input}"))

	var output string
	if s.OutputDir != "" {
		output = shellescape.EscapeRaw(s.OutputDir, shellescape.IsPlaceholderQuoted(s.Template, "{output_dir}"))
	}

	tmpl, err := Parse(s.Template)
	if err != nil {
		return fallback(s.Env, s.Program, input, output), errors.Join(ErrFallback, err)
	}

	return tmpl.Render(Values{Env: s.Env, Program: s.Program, Input: input, OutputDir: output}), nil
}

func fallback(env, program, input, output string) string {
	line := envPrefix(env) + program + " " + input
	if output != "" {
		line += " " + output
	}

	return line
}

func envPrefix(env string) string {
	if env == "" {
		return ""
	}

	return env + " "
}
