// Package diag implements devflow's RUST_LOG-style diagnostic logger,
// following the teacher's internal/util/logging.go slog pattern, gated by
// the environment rather than a package-level global per spec §6/§10.2.
package diag

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits one step below slog.LevelDebug, for the diagnostic
// variable's "trace" level (spec.md §6 enumerates error|warn|info|debug|
// trace; slog has no built-in level finer than Debug).
const LevelTrace = slog.LevelDebug - 4

var levelNames = map[string]slog.Level{
	"error": slog.LevelError,
	"warn":  slog.LevelWarn,
	"info":  slog.LevelInfo,
	"debug": slog.LevelDebug,
	"trace": LevelTrace,
}

// levelName renders level back to its spec-recognized name, including the
// "trace" name slog itself has no word for.
func levelName(level slog.Level) string {
	if level == LevelTrace {
		return "TRACE"
	}
	return level.String()
}

// New builds the devflow diagnostic logger, writing leveled text output to
// w. The effective level is read from RUST_LOG or DWF_LOG per spec §6 and
// SPEC_FULL §10.2/§12's DWF_LOG synonym; verbose forces at least debug
// regardless of either variable, matching the CLI's --verbose flag.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := levelFromEnv()
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: levelVar,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(levelName(lvl))
				}
			}
			return a
		},
	})
	return slog.New(handler)
}

// Default builds the devflow diagnostic logger writing to stderr.
func Default(verbose bool) *slog.Logger {
	return New(os.Stderr, verbose)
}

// levelFromEnv parses DWF_LOG (a bare level) and RUST_LOG (`devflow=<level>`
// or a bare level naming the default target) into a slog.Level, defaulting
// to Info when neither is set or recognized. DWF_LOG takes precedence, per
// SPEC_FULL §12's "DWF_LOG ... scoped specifically to the devflow module".
func levelFromEnv() slog.Level {
	if raw := os.Getenv("DWF_LOG"); raw != "" {
		if level, ok := parseLevel(raw); ok {
			return level
		}
	}
	if raw := os.Getenv("RUST_LOG"); raw != "" {
		if level, ok := parseLevel(scopeToDevflow(raw)); ok {
			return level
		}
	}
	return slog.LevelInfo
}

// scopeToDevflow extracts the level for the "devflow" target out of a
// RUST_LOG-style value, which may be a bare level (applies to everything)
// or a comma-separated list of `target=level` pairs.
func scopeToDevflow(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		target, level, hasEquals := strings.Cut(part, "=")
		if !hasEquals {
			if _, ok := levelNames[strings.ToLower(target)]; ok {
				return target
			}
			continue
		}
		if target == "devflow" {
			return level
		}
	}
	return ""
}

func parseLevel(raw string) (slog.Level, bool) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(raw))]
	return level, ok
}
