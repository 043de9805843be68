// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/infiniconv/internal/config"
	"github.com/matt-FFFFFF/infiniconv/internal/processor"
)

// Job is one batch.
type Job struct {
	Files     []string
	Program   string
	Template  string
	EnvVars   string
	ExtraArgs []string
	// OutputDir is the shared output directory. Ignored in side-by-side mode.
	OutputDir string
	// SideBySide writes every output next to its input.
	SideBySide bool
	// DeleteOriginals removes the input of every successful file after reconciliation.
	DeleteOriginals bool
}

// JobFromProvider builds a Job from stored settings.
func JobFromProvider(p config.Provider, files []string) Job {
	return Job{
		Files:           files,
		Program:         p.ProcessingProgram(),
		Template:        p.CommandTemplate(),
		EnvVars:         p.EnvVars(),
		OutputDir:       p.OutputDirectory(),
		SideBySide:      p.SideBySideEnabled(),
		DeleteOriginals: p.DeleteOriginalsEnabled(),
	}
}

// sideBySide reports whether outputs go next to inputs. Without a shared output
// directory that is the only option.
func (j Job) sideBySide() bool {
	return j.SideBySide || j.OutputDir == ""
}

// Request returns the processing request for one file of the job.
func (j Job) Request(file string) processor.Request {
	outDir := j.OutputDir
	if j.sideBySide() {
		outDir = filepath.Dir(file)
	}

	return processor.Request{
		InputPath: file,
		OutputDir: outDir,
		Program:   j.Program,
		Template:  j.Template,
		EnvVars:   j.EnvVars,
		ExtraArgs: j.ExtraArgs,
	}
}

// BatchResult is passed to OnComplete and returned by Run.
type BatchResult struct {
	Results   []processor.Result `yaml:"results"`
	Processed int                `yaml:"processed"`
	Failed    int                `yaml:"failed"`
	Total     int                `yaml:"total"`
	// Stopped is set when the batch ended before every file was attempted.
	Stopped bool `yaml:"stopped"`
	// NewFiles are the files that appeared in the output directories, full paths, sorted.
	NewFiles []string `yaml:"new_files,omitempty"`
	// Deleted are the inputs removed because of Job.DeleteOriginals.
	Deleted  []string      `yaml:"deleted,omitempty"`
	Duration time.Duration `yaml:"duration"`
	// Problems are non-fatal errors such as failed snapshots or deletions.
	Problems []error `yaml:"-"`
}

// Err combines the errors of every failed file and every problem, or returns nil.
func (b BatchResult) Err() error {
	var merr *multierror.Error

	for _, r := range b.Results {
		if r.Error != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", r.InputPath, r.Error))
		}
	}

	for _, p := range b.Problems {
		merr = multierror.Append(merr, p)
	}

	return merr.ErrorOrNil()
}

// Skipped is the number of files that were not attempted.
func (b BatchResult) Skipped() int {
	return b.Total - b.Processed - b.Failed
}
