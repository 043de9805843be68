// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

const (
	// DefaultName is the name of the configuration loaded when none is given.
	DefaultName = "config"
	// AppDirName is the directory below the user configuration directory.
	AppDirName = "infiniconv"

	extYAML = ".yaml"
	extYML  = ".yml"
	extHCL  = ".hcl"
)

var (
	// ErrLoad is returned when a configuration file cannot be read or decoded.
	ErrLoad = errors.New("failed to load configuration")
	// ErrSave is returned when a configuration file cannot be written.
	ErrSave = errors.New("failed to save configuration")
	// ErrInvalidName is returned by SaveAs for names with no usable characters.
	ErrInvalidName = errors.New("invalid configuration name")
	// ErrUnknownFormat is returned for file extensions other than yaml, yml and hcl.
	ErrUnknownFormat = errors.New("unknown configuration format")
)

// FsFactory creates the filesystem used by NewStore.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Store reads and writes named configurations in one directory.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore returns a Store rooted at dir. An empty dir selects DefaultDir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}

		dir = d
	}

	return &Store{
		fs:  FsFactory(),
		dir: dir,
	}, nil
}

// DefaultDir is the per-user configuration directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Join(ErrLoad, err)
	}

	return filepath.Join(base, AppDirName), nil
}

// Dir returns the directory of the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds the default configuration.
func (s *Store) Path() string {
	return filepath.Join(s.dir, DefaultName+extYAML)
}

// Load reads the default configuration. A missing file yields Default().
func (s *Store) Load() (Settings, error) {
	exists, err := afero.Exists(s.fs, s.Path())
	if err != nil {
		return Default(), errors.Join(ErrLoad, err)
	}

	if !exists {
		return Default(), nil
	}

	return s.LoadFrom(s.Path())
}

// LoadFrom reads the configuration file at path, overlaying it on Default().
// Names without a directory are looked up in the store.
func (s *Store) LoadFrom(path string) (Settings, error) {
	if !strings.ContainsAny(path, `/\`) && filepath.Ext(path) == "" {
		p, err := s.PathFor(path)
		if err != nil {
			return Default(), err
		}

		path = p
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return Default(), errors.Join(ErrLoad, err)
	}

	return Decode(path, data)
}

// Save writes settings to the default configuration file.
func (s *Store) Save(settings Settings) error {
	return s.write(s.Path(), settings)
}

// SaveAs writes settings to a named configuration and returns its path.
func (s *Store) SaveAs(name string, settings Settings) (string, error) {
	path, err := s.PathFor(name)
	if err != nil {
		return "", err
	}

	return path, s.write(path, settings)
}

// PathFor returns the file a named configuration is stored in.
// An existing HCL file of that name takes precedence over YAML.
func (s *Store) PathFor(name string) (string, error) {
	safe, err := SanitizeName(name)
	if err != nil {
		return "", err
	}

	hclPath := filepath.Join(s.dir, safe+extHCL)
	if ok, _ := afero.Exists(s.fs, hclPath); ok {
		return hclPath, nil
	}

	return filepath.Join(s.dir, safe+extYAML), nil
}

// List returns the names of the saved configurations, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Join(ErrLoad, err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := filepath.Ext(e.Name())
		switch ext {
		case extYAML, extYML, extHCL:
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}

	slices.Sort(names)

	return slices.Compact(names), nil
}

func (s *Store) write(path string, settings Settings) error {
	data, err := Encode(path, settings)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Join(ErrSave, err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return errors.Join(ErrSave, err)
	}

	return nil
}

// SanitizeName keeps letters, digits, '-', '_' and spaces, trims the result
// and replaces the remaining spaces with underscores.
func SanitizeName(name string) (string, error) {
	var sb strings.Builder

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' ' {
			sb.WriteRune(r)
		}
	}

	safe := strings.TrimSpace(sb.String())
	if safe == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return strings.ReplaceAll(safe, " ", "_"), nil
}

// Decode parses data in the format implied by the extension of filename.
// Fields absent from the file keep their Default() values.
func Decode(filename string, data []byte) (Settings, error) {
	settings := Default()

	switch strings.ToLower(filepath.Ext(filename)) {
	case extYAML, extYML, "":
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Default(), errors.Join(ErrLoad, err)
		}
	case extHCL:
		var decoded Settings
		if err := hclsimple.Decode(filename, data, evalContext(), &decoded); err != nil {
			return Default(), errors.Join(ErrLoad, err)
		}

		if decoded.Extensions == nil {
			decoded.Extensions = settings.Extensions
		}

		settings = decoded
	default:
		return Default(), fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}

	return settings, nil
}

// Encode renders settings in the format implied by the extension of filename.
func Encode(filename string, settings Settings) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extYAML, extYML, "":
		data, err := yaml.Marshal(settings)
		if err != nil {
			return nil, errors.Join(ErrSave, err)
		}

		return data, nil
	case extHCL:
		f := hclwrite.NewEmptyFile()
		gohcl.EncodeIntoBody(settings, f.Body())

		return f.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
	}
}

// evalContext exposes the process environment to HCL expressions as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntax.ValidIdentifier(k) {
			continue
		}

		vars[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}
