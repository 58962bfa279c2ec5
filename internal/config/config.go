// Package config decodes and validates devflow.toml, devflow's single
// declarative policy file. Decoding is strict: any key not in the schema
// below, at any nesting level, fails the load (spec §4.2).
package config

import (
	"bytes"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"

	"github.com/devflow-sh/devflow/internal/command"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// RuntimeProfile is runtime.profile's closed enumeration.
type RuntimeProfile string

const (
	ProfileHost      RuntimeProfile = "host"
	ProfileContainer RuntimeProfile = "container"
	ProfileAuto      RuntimeProfile = "auto"
)

// Engine is container.engine's closed enumeration.
type Engine string

const (
	EngineDocker Engine = "docker"
	EnginePodman Engine = "podman"
	EngineAuto   Engine = "auto"
)

// ExtensionSource is extensions.<name>.source's closed enumeration.
type ExtensionSource string

const (
	SourceBuiltin    ExtensionSource = "builtin"
	SourcePath       ExtensionSource = "path"
	SourceSubprocess ExtensionSource = "subprocess"
	SourceCustom     ExtensionSource = "custom"
)

// Reserved target profile names, in the fixed order ci:plan must emit them
// first, per spec §4.3.
var ReservedProfiles = []string{"pr", "main", "release"}

// Project is the `[project]` table.
type Project struct {
	Name  string   `toml:"name"`
	Stack []string `toml:"stack"`
}

// Runtime is the `[runtime]` table.
type Runtime struct {
	Profile RuntimeProfile `toml:"profile"`
}

// Container is the `[container]` table.
type Container struct {
	Image  string `toml:"image"`
	Engine Engine `toml:"engine"`
}

// ExtensionSpec is one `[extensions.<name>]` entry.
type ExtensionSpec struct {
	Source       ExtensionSource `toml:"source"`
	Path         string          `toml:"path"`
	Required     bool            `toml:"required"`
	Capabilities []string        `toml:"capabilities"`

	// FingerprintInputs are repo-root-relative paths this extension's
	// toolchain identity depends on (e.g. Cargo.lock, package-lock.json),
	// fed to the Fingerprinter per spec §4.6.
	FingerprintInputs []string `toml:"fingerprint_inputs"`
}

// Config is the fully decoded, defaulted, and validated devflow.toml.
type Config struct {
	Project    Project                  `toml:"project"`
	Runtime    Runtime                  `toml:"runtime"`
	Container  Container                `toml:"container"`
	Targets    map[string][]string      `toml:"targets"`
	Extensions map[string]ExtensionSpec `toml:"extensions"`
}

// HasTarget reports whether name is a defined target profile, satisfying
// command.KnownProfiles.
func (c *Config) HasTarget(name string) bool {
	_, ok := c.Targets[name]
	return ok
}

// Load reads and validates the devflow.toml at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dferrors.ConfigError("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates raw TOML bytes. path is used only for error
// context and is not read.
func Parse(data []byte, path string) (*Config, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, dferrors.ConfigError("parse", path, err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, dferrors.ConfigError("validate", path, err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Runtime.Profile == "" {
		cfg.Runtime.Profile = ProfileAuto
	}
	if cfg.Extensions == nil {
		cfg.Extensions = make(map[string]ExtensionSpec)
	}
	for name, spec := range cfg.Extensions {
		// ExtensionSpec.Required already defaults to its zero value
		// (false) per Go's struct semantics; no rewrite is needed for
		// required, but Source defaults to builtin when unset.
		if spec.Source == "" {
			spec.Source = SourceBuiltin
			cfg.Extensions[name] = spec
		}
	}
}

// validate applies spec §4.2's cross-reference checks, accumulating every
// violation with go-multierror rather than stopping at the first one, so
// ConfigError's Cause carries the complete set.
func validate(cfg *Config) error {
	var errs *multierror.Error

	for _, stack := range cfg.Project.Stack {
		if stack == "custom" {
			continue
		}
		if _, ok := cfg.Extensions[stack]; !ok {
			errs = multierror.Append(errs, &missingExtensionError{stack: stack})
		}
	}

	for name, spec := range cfg.Extensions {
		if spec.Source == SourcePath {
			if spec.Path == "" {
				errs = multierror.Append(errs, &badPathError{name: name, path: spec.Path})
				continue
			}
			if _, err := os.Stat(spec.Path); err != nil {
				errs = multierror.Append(errs, &badPathError{name: name, path: spec.Path})
			}
		}
	}

	seen := make(map[string]bool, len(cfg.Targets))
	for profile, literals := range cfg.Targets {
		if seen[profile] {
			errs = multierror.Append(errs, &duplicateProfileError{profile: profile})
		}
		seen[profile] = true
		for _, literal := range literals {
			if _, err := command.Parse(literal, cfg); err != nil {
				errs = multierror.Append(errs, &badTargetLiteralError{profile: profile, literal: literal, cause: err})
			}
		}
	}

	return errs.ErrorOrNil()
}
