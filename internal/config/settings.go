// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/infiniconv/internal/cmdtemplate"
	"github.com/matt-FFFFFF/infiniconv/internal/ctxlog"
)

var (
	// ErrInvalidSettings wraps every problem found by Validate.
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrMissingProgram is reported when no processing program is set.
	ErrMissingProgram = errors.New("processing_program is required")
	// ErrInvalidExtension is reported for empty or malformed extensions.
	ErrInvalidExtension = errors.New("invalid file extension")
	// ErrInvalidLogLevel is reported when log_level is not a known level.
	ErrInvalidLogLevel = errors.New("invalid log_level")
	// ErrInvalidTemplate is reported when command_template does not parse.
	ErrInvalidTemplate = errors.New("invalid command_template")
)

// DefaultExtensions are the file extensions selected by a fresh configuration.
var DefaultExtensions = []string{".txt", ".csv", ".json", ".xml", ".log"}

// Provider supplies the processing settings a batch needs.
type Provider interface {
	ProcessingProgram() string
	OutputDirectory() string
	CommandTemplate() string
	EnvVars() string
	SideBySideEnabled() bool
	DeleteOriginalsEnabled() bool
}

var _ Provider = Settings{}

// Settings is the persisted configuration.
type Settings struct {
	InputDir   string   `yaml:"input_directory" hcl:"input_directory,optional"`
	Extensions []string `yaml:"file_extensions" hcl:"file_extensions,optional"`
	OutputDir  string   `yaml:"output_directory" hcl:"output_directory,optional"`
	Program    string   `yaml:"processing_program" hcl:"processing_program,optional"`
	Template   string   `yaml:"command_template" hcl:"command_template,optional"`
	// Env is a whitespace separated list of KEY=VALUE pairs.
	Env             string `yaml:"env_vars" hcl:"env_vars,optional"`
	SideBySide      bool   `yaml:"side_by_side" hcl:"side_by_side,optional"`
	DeleteOriginals bool   `yaml:"delete_originals" hcl:"delete_originals,optional"`
	ConfirmCommand  bool   `yaml:"show_command_confirm" hcl:"show_command_confirm,optional"`
	Recursive       bool   `yaml:"recursive" hcl:"recursive,optional"`
	LogLevel        string `yaml:"log_level,omitempty" hcl:"log_level,optional"`
}

// Default returns the settings of a fresh installation.
func Default() Settings {
	return Settings{
		Extensions: slices.Clone(DefaultExtensions),
	}
}

// Defaults resets s to the default settings, keeping the input directory.
func Defaults(s Settings) Settings {
	d := Default()
	d.InputDir = s.InputDir

	return d
}

// ProcessingProgram implements Provider.
func (s Settings) ProcessingProgram() string { return s.Program }

// OutputDirectory implements Provider.
func (s Settings) OutputDirectory() string { return s.OutputDir }

// CommandTemplate implements Provider.
func (s Settings) CommandTemplate() string { return s.Template }

// EnvVars implements Provider.
func (s Settings) EnvVars() string { return s.Env }

// SideBySideEnabled implements Provider.
func (s Settings) SideBySideEnabled() bool { return s.SideBySide }

// DeleteOriginalsEnabled implements Provider.
func (s Settings) DeleteOriginalsEnabled() bool { return s.DeleteOriginals }

// Validate reports every problem in s. The returned error wraps ErrInvalidSettings
// and each individual problem.
func (s Settings) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(s.Program) == "" {
		result = multierror.Append(result, ErrMissingProgram)
	}

	for _, ext := range s.Extensions {
		e := strings.TrimSpace(ext)
		if e == "" || e == "." || strings.ContainsAny(e, `/\ `) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidExtension, ext))
		}
	}

	if s.LogLevel != "" {
		if _, ok := ctxlog.ParseLevel(s.LogLevel); !ok {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s.LogLevel))
		}
	}

	if s.Template != "" {
		if _, err := cmdtemplate.Parse(s.Template); err != nil {
			result = multierror.Append(result, errors.Join(ErrInvalidTemplate, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidSettings, err)
	}

	return nil
}
