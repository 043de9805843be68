// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the command that processes a batch of files.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/infiniconv/cmd/cmdstate"
	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/color"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
	"github.com/matt-FFFFFF/infiniconv/internal/orchestrator"
	"github.com/matt-FFFFFF/infiniconv/internal/processor"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
	"github.com/matt-FFFFFF/infiniconv/internal/report"
	"github.com/matt-FFFFFF/infiniconv/internal/signalbroker"
	"github.com/matt-FFFFFF/infiniconv/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	outFlag                  = "out"
	noOutputStdErrFlag       = "no-output-stderr"
	outputStdOutFlag         = "output-stdout"
	outputSuccessDetailsFlag = "output-success-details"
	showCommandFlag          = "show-command"
	tuiFlag                  = "tui"
	confirmFlag              = "confirm"
	yesFlag                  = "yes"
	cliExitStr               = ""
	eventBufferSize          = 256
)

// ErrAborted is returned when the user declines the confirmation prompt.
var ErrAborted = errors.New("aborted by user")

// New returns the command that processes a batch of files.
func New() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Process files with the configured program",
		Description: `Run the processing program once for every input file.

Input files are given as arguments or discovered in the input directory by extension.
Settings come from the stored configuration (see 'config') and can be overridden with flags.
The --config flag accepts the name of a saved configuration, a file path,
or a URL using Hashicorp's go-getter syntax, see https://github.com/hashicorp/go-getter.

The first interrupt stops the batch after the current file; a second interrupt kills it.
`,
		ArgsUsage: "[file...]",
		Flags:     append(cmdstate.AllFlags(), runFlags()...),
		Action:    actionFunc,
	}
}

func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Write the results as YAML to this file",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:    outputSuccessDetailsFlag,
			Aliases: []string{"success"},
			Usage:   "Include details of successful files in the output",
		},
		&cli.BoolFlag{
			Name:    noOutputStdErrFlag,
			Aliases: []string{"no-stderr"},
			Usage:   "Exclude stderr output in the results",
		},
		&cli.BoolFlag{
			Name:    outputStdOutFlag,
			Aliases: []string{"stdout"},
			Usage:   "Include stdout output in the results",
		},
		&cli.BoolFlag{
			Name:  showCommandFlag,
			Usage: "Include the command line of each shown file in the results",
		},
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"interactive"},
			Usage:   "Run with an interactive terminal user interface showing real-time progress",
		},
		&cli.BoolFlag{
			Name:  confirmFlag,
			Usage: "Show the command for the first file and ask before processing",
		},
		&cli.BoolFlag{
			Name:    yesFlag,
			Aliases: []string{"y"},
			Usage:   "Do not ask for confirmation, even when the configuration asks to",
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	w := cmd.Root().Writer

	settings, err := cmdstate.LoadSettings(ctx, cmd)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if err := settings.Validate(); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	if err := processor.ValidateProgram(settings.Program); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	files, err := cmdstate.ResolveFiles(ctx, cmd, settings)
	if err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	job := orchestrator.JobFromProvider(settings, files)

	if (settings.ConfirmCommand || cmd.Bool(confirmFlag)) && !cmd.Bool(yesFlag) {
		ok, err := Confirm(w, confirmMessage(job))
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to read confirmation: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		if !ok {
			return cli.Exit(ErrAborted.Error(), 1)
		}
	}

	var br orchestrator.BatchResult

	if cmd.Bool(tuiFlag) {
		logger.Info("Starting interactive TUI mode...")

		buf := new(bytes.Buffer)

		br, err = runWithTUI(ctxlog.NewForTUI(ctx, buf), job)

		buf.WriteTo(cmd.Root().ErrWriter) //nolint:errcheck
	} else {
		br, err = runPlain(ctx, w, job)
	}

	if err != nil {
		logger.Error(fmt.Sprintf("Batch execution error: %s", err.Error()))
	}

	if outFileName := cmd.String(outFlag); outFileName != "" {
		if err := writeYAML(outFileName, br); err != nil {
			logger.Error(fmt.Sprintf("Failed to write results to file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Results written to %s", outFileName))
	}

	opts := report.DefaultOptions()
	opts.IncludeStdErr = !cmd.Bool(noOutputStdErrFlag)
	opts.IncludeStdOut = cmd.Bool(outputStdOutFlag)
	opts.ShowSuccessDetails = cmd.Bool(outputSuccessDetailsFlag)
	opts.ShowCommand = cmd.Bool(showCommandFlag)

	if err := report.WriteText(w, br, opts); err != nil {
		logger.Error(fmt.Sprintf("Failed to write results: %s", err.Error()))
		return cli.Exit(cliExitStr, 1)
	}

	if br.Failed > 0 || err != nil {
		logger.Error("Some files failed. See above for details.")
		return cli.Exit(cliExitStr, 1)
	}

	if ctx.Err() != nil {
		return cli.Exit("cancelled", 1)
	}

	return nil
}

// newProcessor creates a processor that forwards every output line to reporter
// as an event about the file current reports.
func newProcessor(reporter progress.Reporter, current func() (string, int, int)) *processor.Processor {
	return processor.New(processor.WithOutputFunc(func(stream progress.Stream, line string) {
		file, index, total := current()
		reporter.Report(progress.Event{
			FilePath: file,
			Index:    index,
			Total:    total,
			Type:     progress.EventOutput,
			Data:     progress.EventData{OutputLine: line, IsStderr: stream == progress.Stderr},
		})
	}))
}

func statusOf(o **orchestrator.Orchestrator) func() (string, int, int) {
	return func() (string, int, int) {
		st := (*o).Status()
		return st.CurrentFile, st.CurrentIndex, st.TotalFiles
	}
}

func runWithTUI(ctx context.Context, job orchestrator.Job) (orchestrator.BatchResult, error) {
	var orch *orchestrator.Orchestrator

	r := tui.NewRunner(ctx, job.Files, tui.WithStopFunc(func() bool { return orch.Stop() }))
	orch = orchestrator.New(newProcessor(r.Reporter(), statusOf(&orch)), orchestrator.WithReporter(r.Reporter()))

	remove := signalbroker.StoppersFrom(ctx).Add(orch)
	defer remove()

	return r.Run(ctx, func(ctx context.Context) (orchestrator.BatchResult, error) {
		return orch.Run(ctx, job)
	})
}

func runPlain(ctx context.Context, w io.Writer, job orchestrator.Job) (orchestrator.BatchResult, error) {
	reporter := progress.NewChannelReporter(ctx, eventBufferSize)
	reporter.Listen(&consoleListener{w: w})

	defer reporter.Close()

	orch := orchestrator.New(processor.New(), orchestrator.WithReporter(reporter))

	remove := signalbroker.StoppersFrom(ctx).Add(orch)
	defer remove()

	return orch.Run(ctx, job)
}

// consoleListener prints one line when a file starts and one when it ends.
type consoleListener struct {
	w io.Writer
}

func (l *consoleListener) OnEvent(e progress.Event) {
	prefix := fmt.Sprintf("[%d/%d]", e.Index+1, e.Total)
	name := filepath.Base(e.FilePath)

	switch e.Type {
	case progress.EventStarted:
		fmt.Fprintf(l.w, "%s %s\n", color.Colorize(prefix, color.FgCyan), name) //nolint:errcheck
	case progress.EventCompleted:
		fmt.Fprintf(l.w, "%s %s %s\n", color.Colorize(prefix, color.FgCyan), color.Colorize("✓", color.FgGreen), name) //nolint:errcheck
	case progress.EventFailed:
		fmt.Fprintf(l.w, "%s %s %s: %s\n", color.Colorize(prefix, color.FgCyan), color.Colorize("✗", color.FgRed), name, e.Message) //nolint:errcheck
	case progress.EventSkipped:
		fmt.Fprintf(l.w, "%s %s %s\n", color.Colorize(prefix, color.FgCyan), color.Colorize("skipped", color.FgYellow), name) //nolint:errcheck
	}
}

func writeYAML(name string, br orchestrator.BatchResult) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck

	return report.WriteYAML(f, br)
}

// confirmMessage shows exactly what will be run for the first file.
func confirmMessage(job orchestrator.Job) string {
	req := job.Request(job.Files[0])
	spec := req.Spec()

	var sb strings.Builder

	fmt.Fprintf(&sb, "Command for %s:\n  %s\n", filepath.Base(req.InputPath), cmdtemplate.Preview(spec))

	if len(job.Files) > 1 {
		fmt.Fprintf(&sb, "and %d more file(s).\n", len(job.Files)-1)
	}

	return sb.String()
}
