// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"errors"
	"time"

	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/progress"
)

// NoExitCode marks a result without a process exit code.
const NoExitCode = -1

var (
	// ErrNoProgram is returned when no processing program is configured.
	ErrNoProgram = errors.New("no processing program specified")
	// ErrInputNotFound is returned when the input file does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrPermission is returned when the output location is not writable.
	ErrPermission = errors.New("no write permission")
	// ErrTimeout is returned when the program ran longer than the timeout.
	ErrTimeout = errors.New("processing timed out")
	// ErrExecution is returned when the program could not be run to completion.
	ErrExecution = errors.New("execution failed")
	// ErrNonZeroExit is returned when the program exited with a non-zero code.
	ErrNonZeroExit = errors.New("program exited with non-zero code")
	// ErrOutputTruncated is returned when stdout was to become the output file but
	// exceeded the capture limit.
	ErrOutputTruncated = errors.New("stdout exceeded the capture limit")
)

// Request describes one file to process. It is not modified by ProcessFile.
type Request struct {
	InputPath string
	OutputDir string
	// OutputPath overrides the expected output file computed by OutputPath.
	OutputPath string
	Program    string
	Template   string
	// EnvVars is a whitespace separated list of KEY=VALUE pairs.
	EnvVars   string
	ExtraArgs []string
}

// Spec returns the command build input for r.
func (r Request) Spec() cmdtemplate.Spec {
	return cmdtemplate.Spec{
		Template:  r.Template,
		Program:   r.Program,
		Input:     r.InputPath,
		OutputDir: r.OutputDir,
		Env:       r.EnvVars,
		ExtraArgs: r.ExtraArgs,
	}
}

// Result is the outcome of ProcessFile.
type Result struct {
	Success      bool                   `yaml:"success"`
	ExitCode     int                    `yaml:"exit_code"`
	Stdout       string                 `yaml:"stdout,omitempty"`
	Stderr       string                 `yaml:"stderr,omitempty"`
	InputPath    string                 `yaml:"input_file"`
	OutputPath   string                 `yaml:"output_file,omitempty"`
	OutputDir    string                 `yaml:"output_directory,omitempty"`
	OutputExists bool                   `yaml:"output_exists"`
	Command      string                 `yaml:"command,omitempty"`
	Progress     []progress.Observation `yaml:"progress,omitempty"`
	NewFiles     []string               `yaml:"new_files,omitempty"`
	Duration     time.Duration          `yaml:"duration"`
	Error        error                  `yaml:"-"`
}

// ErrorKind classifies Result.Error.
type ErrorKind int

const (
	// KindNone means the file was processed successfully.
	KindNone ErrorKind = iota
	// KindConfiguration means no program was configured.
	KindConfiguration
	// KindInputNotFound means the input file is missing.
	KindInputNotFound
	// KindPermission means the output location is not writable.
	KindPermission
	// KindTimeout means the program was killed after the timeout.
	KindTimeout
	// KindExecution means the program could not be started or was interrupted.
	KindExecution
	// KindNonZeroExit means the program failed with an exit code.
	KindNonZeroExit
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindInputNotFound:
		return "input-not-found"
	case KindPermission:
		return "permission"
	case KindTimeout:
		return "timeout"
	case KindExecution:
		return "execution"
	case KindNonZeroExit:
		return "non-zero-exit"
	default:
		return "unknown"
	}
}

// Kind classifies the result's error.
func (r Result) Kind() ErrorKind {
	switch {
	case r.Error == nil:
		return KindNone
	case errors.Is(r.Error, ErrNoProgram):
		return KindConfiguration
	case errors.Is(r.Error, ErrInputNotFound):
		return KindInputNotFound
	case errors.Is(r.Error, ErrPermission):
		return KindPermission
	case errors.Is(r.Error, ErrTimeout):
		return KindTimeout
	case errors.Is(r.Error, ErrNonZeroExit):
		return KindNonZeroExit
	default:
		return KindExecution
	}
}

// LastProgress returns the most recent observation.
func (r Result) LastProgress() (progress.Observation, bool) {
	if len(r.Progress) == 0 {
		return progress.Observation{}, false
	}

	return r.Progress[len(r.Progress)-1], true
}

// ErrorString returns the error message or "".
func (r Result) ErrorString() string {
	if r.Error == nil {
		return ""
	}

	return r.Error.Error()
}
