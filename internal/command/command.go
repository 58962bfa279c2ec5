// Package command implements devflow's verb/selector grammar: parsing a
// `primary:selector` token into a canonical CommandRef, legacy alias
// rewriting, and the primary/selector closed enumerations of spec §4.1.
package command

import (
	"regexp"
	"strings"

	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// Primary is one of the fixed set of command primaries.
type Primary string

const (
	PrimaryInit    Primary = "init"
	PrimarySetup   Primary = "setup"
	PrimaryFmt     Primary = "fmt"
	PrimaryLint    Primary = "lint"
	PrimaryBuild   Primary = "build"
	PrimaryTest    Primary = "test"
	PrimaryPackage Primary = "package"
	PrimaryCheck   Primary = "check"
	PrimaryRelease Primary = "release"
	PrimaryCI      Primary = "ci"
)

// primaries is the closed enumeration of valid primaries.
var primaries = map[Primary]bool{
	PrimaryInit:    true,
	PrimarySetup:   true,
	PrimaryFmt:     true,
	PrimaryLint:    true,
	PrimaryBuild:   true,
	PrimaryTest:    true,
	PrimaryPackage: true,
	PrimaryCheck:   true,
	PrimaryRelease: true,
	PrimaryCI:      true,
}

// selectors is the closed selector set allowed per primary, per spec §4.1.
// `init` accepts any template name (validated separately by the scaffolder,
// not here) and `check` accepts any target profile name (validated against
// Config.Targets by the caller, not this package).
var selectors = map[Primary]map[string]bool{
	PrimaryFmt:     {"check": true, "fix": true},
	PrimaryLint:    {"static": true},
	PrimaryBuild:   {"debug": true, "release": true},
	PrimaryTest:    {"unit": true, "integration": true, "smoke": true},
	PrimaryPackage: {"artifact": true},
	PrimaryRelease: {"candidate": true},
	PrimaryCI:      {"generate": true, "check": true, "plan": true},
	PrimarySetup:   {"doctor": true, "deps": true},
}

// tokenPattern matches the two lowercase-alnum-dash segments of a
// `primary[:selector]` token, reused from the teacher's substitution-pattern
// style: a constrained grammar expressed as a single anchored regexp rather
// than a hand-rolled character scanner.
var tokenPattern = regexp.MustCompile(`^([a-z0-9-]+)(?::([a-z0-9-]+))?$`)

// CommandRef is the canonical in-memory representation of an invocation.
type CommandRef struct {
	Primary  Primary
	Selector string // "" when no selector is present
}

// String renders the canonical "primary:selector" or "primary" form.
func (c CommandRef) String() string {
	if c.Selector == "" {
		return string(c.Primary)
	}
	return string(c.Primary) + ":" + c.Selector
}

// legacyAliases rewrites a raw token to its canonical form before parsing,
// per spec §4.1.
var legacyAliases = map[string]string{
	"verify":    "check",
	"smoke":     "test:smoke",
	"ci:render": "ci:generate",
}

// RewriteAlias applies the legacy alias table to a raw token. Tokens not in
// the table pass through unchanged.
func RewriteAlias(token string) string {
	if rewritten, ok := legacyAliases[token]; ok {
		return rewritten
	}
	return token
}

// KnownProfiles is implemented by callers that can validate a `check`
// selector against configured target profile names, so this package never
// needs to know about Config.
type KnownProfiles interface {
	HasTarget(name string) bool
}

// Parse parses a raw token (already alias-rewritten) into a CommandRef.
// profiles may be nil, in which case any `check:<name>` selector is
// accepted — callers that have a Config should always pass it.
//
// Parse never panics: every input string yields either a valid CommandRef
// or a typed *errors.DevflowError.
func Parse(token string, profiles KnownProfiles) (CommandRef, error) {
	m := tokenPattern.FindStringSubmatch(token)
	if m == nil {
		return CommandRef{}, dferrors.UnknownPrimary(token)
	}

	primary := Primary(strings.ToLower(m[1]))
	selector := m[2]

	if !primaries[primary] {
		return CommandRef{}, dferrors.UnknownPrimary(string(primary))
	}

	if primary == PrimaryInit {
		// init accepts any template name as selector; validated by the
		// scaffolder against its own template set, not here.
		return CommandRef{Primary: primary, Selector: selector}, nil
	}

	if selector == "" {
		return CommandRef{Primary: primary}, nil
	}

	if primary == PrimaryCheck {
		if profiles != nil && !profiles.HasTarget(selector) {
			return CommandRef{}, dferrors.UnknownSelector(string(primary), selector)
		}
		return CommandRef{Primary: primary, Selector: selector}, nil
	}

	allowed, ok := selectors[primary]
	if !ok || !allowed[selector] {
		return CommandRef{}, dferrors.UnknownSelector(string(primary), selector)
	}

	return CommandRef{Primary: primary, Selector: selector}, nil
}

// ParseAlias rewrites legacy aliases and then parses the result.
func ParseAlias(token string, profiles KnownProfiles) (CommandRef, error) {
	return Parse(RewriteAlias(token), profiles)
}
