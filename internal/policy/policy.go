// Package policy expands a devflow.toml target profile into the ordered
// sequence of commands it names, and orders the profile set for ci:plan,
// per spec §4.3.
package policy

import (
	"sort"

	"github.com/devflow-sh/devflow/internal/command"
	"github.com/devflow-sh/devflow/internal/config"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// reservedOrder is the fixed lead-in order ci:plan must emit before any
// remaining profile names, per spec §4.3.
var reservedOrder = []string{"pr", "main", "release"}

// Expand returns the ordered sequence of CommandRef that targets[name]
// names. Order is preserved verbatim and duplicates are kept: the operator
// chose that order deliberately, so this is not a set.
func Expand(cfg *config.Config, name string) ([]command.CommandRef, error) {
	literals, ok := cfg.Targets[name]
	if !ok {
		return nil, dferrors.UnknownSelector("check", name)
	}

	refs := make([]command.CommandRef, 0, len(literals))
	for _, literal := range literals {
		ref, err := command.Parse(literal, cfg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Plan returns every target profile name defined in cfg, with the reserved
// names pr, main, release first (in that order, skipping any not defined),
// followed by the remaining profile names sorted lexicographically.
func Plan(cfg *config.Config) []string {
	remaining := make(map[string]bool, len(cfg.Targets))
	for name := range cfg.Targets {
		remaining[name] = true
	}

	ordered := make([]string, 0, len(cfg.Targets))
	for _, reserved := range reservedOrder {
		if remaining[reserved] {
			ordered = append(ordered, reserved)
			delete(remaining, reserved)
		}
	}

	rest := make([]string, 0, len(remaining))
	for name := range remaining {
		rest = append(rest, name)
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}
