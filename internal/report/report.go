// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders batch results for people and for machines.
package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/infiniconv/internal/color"
	"github.com/matt-FFFFFF/infiniconv/internal/orchestrator"
	"github.com/matt-FFFFFF/infiniconv/internal/processor"
)

// ErrWriteYAML is returned when the results cannot be written as YAML.
var ErrWriteYAML = errors.New("failed to write yaml results")

// Options controls what WriteText includes.
type Options struct {
	IncludeStdOut      bool // stdout of each shown file
	IncludeStdErr      bool // stderr of each shown file
	ShowSuccessDetails bool // details for successful files, not only failures
	ShowCommand        bool // the command line that was run
}

// DefaultOptions returns the options used by the run command.
func DefaultOptions() *Options {
	return &Options{
		IncludeStdErr: true,
	}
}

// WriteText writes one status line per file followed by a summary.
func WriteText(w io.Writer, br orchestrator.BatchResult, options *Options) error {
	if options == nil {
		options = DefaultOptions()
	}

	for _, r := range br.Results {
		if err := writeResult(w, r, options); err != nil {
			return err
		}
	}

	if len(br.NewFiles) > 0 {
		if _, err := fmt.Fprintf(w, "New files:\n%s", formatLines(br.NewFiles, "  ")); err != nil {
			return err
		}
	}

	for _, p := range br.Problems {
		if _, err := fmt.Fprintf(w, "%s %s\n", color.Colorize("!", color.FgYellow), p); err != nil {
			return err
		}
	}

	return writeSummary(w, br)
}

func writeResult(w io.Writer, r processor.Result, options *Options) error {
	statusStr := color.Colorize("✓", color.FgGreen)
	labelCodes := []color.Code{color.Bold, color.FgGreen}

	if !r.Success {
		statusStr = color.Colorize("✗", color.FgRed)
		labelCodes = []color.Code{color.Bold, color.FgRed}
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s", statusStr, color.Colorize(filepath.Base(r.InputPath), labelCodes...))

	if r.ExitCode != 0 && r.ExitCode != processor.NoExitCode {
		fmt.Fprintf(&sb, " (exit code: %d)", r.ExitCode)
	}

	fmt.Fprintf(&sb, " [%s]\n", r.Duration.Round(time.Millisecond))

	if r.Error != nil {
		fmt.Fprintf(&sb, "  %s %s\n", color.Colorize("➜ Error:", color.FgRed), r.Error)
	}

	showDetails := !r.Success || options.ShowSuccessDetails

	if showDetails && options.ShowCommand && r.Command != "" {
		fmt.Fprintf(&sb, "  ➜ Command: %s\n", r.Command)
	}

	if r.Success && r.OutputExists {
		fmt.Fprintf(&sb, "  ➜ Output: %s\n", r.OutputPath)
	}

	if len(r.NewFiles) > 0 {
		fmt.Fprintf(&sb, "  ➜ New files:\n%s", formatLines(r.NewFiles, "     "))
	}

	if showDetails && options.IncludeStdOut && r.Stdout != "" {
		fmt.Fprintf(&sb, "  ➜ Stdout:\n%s", formatOutput(r.Stdout, "     "))
	}

	if showDetails && options.IncludeStdErr && r.Stderr != "" {
		fmt.Fprintf(&sb, "  %s\n%s", color.Colorize("➜ Stderr:", color.FgHiRed), formatOutput(r.Stderr, "     "))
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeSummary(w io.Writer, br orchestrator.BatchResult) error {
	summary := fmt.Sprintf("%d/%d processed, %d failed", br.Processed, br.Total, br.Failed)
	if s := br.Skipped(); s > 0 {
		summary += fmt.Sprintf(", %d skipped", s)
	}

	summary += fmt.Sprintf(" in %s", br.Duration.Round(time.Millisecond))

	code := color.FgGreen
	if br.Failed > 0 {
		code = color.FgRed
	} else if br.Stopped {
		code = color.FgYellow
	}

	if br.Stopped {
		summary += " (stopped)"
	}

	_, err := fmt.Fprintln(w, color.Colorize(summary, color.Bold, code))

	return err
}

// formatOutput indents every non-empty line of output.
func formatOutput(output, indent string) string {
	return formatLines(strings.Split(strings.TrimRight(output, "\n"), "\n"), indent)
}

func formatLines(lines []string, indent string) string {
	sb := strings.Builder{}

	for _, line := range lines {
		if line == "" {
			sb.WriteString("\n")
			continue
		}

		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

type yamlResult struct {
	processor.Result `yaml:",inline"`
	Error            string `yaml:"error,omitempty"`
	ErrorKind        string `yaml:"error_kind,omitempty"`
}

type yamlBatch struct {
	Total     int           `yaml:"total"`
	Processed int           `yaml:"processed"`
	Failed    int           `yaml:"failed"`
	Skipped   int           `yaml:"skipped"`
	Stopped   bool          `yaml:"stopped"`
	Duration  time.Duration `yaml:"duration"`
	NewFiles  []string      `yaml:"new_files,omitempty"`
	Deleted   []string      `yaml:"deleted,omitempty"`
	Problems  []string      `yaml:"problems,omitempty"`
	Results   []yamlResult  `yaml:"results"`
}

// WriteYAML writes the batch result, including error messages, as YAML.
func WriteYAML(w io.Writer, br orchestrator.BatchResult) error {
	out := yamlBatch{
		Total:     br.Total,
		Processed: br.Processed,
		Failed:    br.Failed,
		Skipped:   br.Skipped(),
		Stopped:   br.Stopped,
		Duration:  br.Duration,
		NewFiles:  br.NewFiles,
		Deleted:   br.Deleted,
		Results:   make([]yamlResult, 0, len(br.Results)),
	}

	for _, p := range br.Problems {
		out.Problems = append(out.Problems, p.Error())
	}

	for _, r := range br.Results {
		yr := yamlResult{Result: r, Error: r.ErrorString()}
		if r.Error != nil {
			yr.ErrorKind = r.Kind().String()
		}

		out.Results = append(out.Results, yr)
	}

	if err := yaml.NewEncoder(w).Encode(out); err != nil {
		return errors.Join(ErrWriteYAML, err)
	}

	return nil
}
