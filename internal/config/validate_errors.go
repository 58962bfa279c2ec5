package config

import "fmt"

// missingExtensionError reports a project.stack entry with no corresponding
// extensions.<name> entry.
type missingExtensionError struct {
	stack string
}

func (e *missingExtensionError) Error() string {
	return fmt.Sprintf("project.stack names %q but extensions.%s is not defined", e.stack, e.stack)
}

// badPathError reports an extensions.<name>.source = path entry whose path
// is empty or does not exist.
type badPathError struct {
	name string
	path string
}

func (e *badPathError) Error() string {
	if e.path == "" {
		return fmt.Sprintf("extensions.%s has source \"path\" but no path is set", e.name)
	}
	return fmt.Sprintf("extensions.%s.path %q does not exist or is not readable", e.name, e.path)
}

// duplicateProfileError reports a targets key that appears more than once.
//
// In practice go-toml/v2 rejects a duplicated targets key while parsing, so
// such a file fails with a "parse" ConfigError first. validate() builds this
// error from a walk over Config.Targets, which is a Go map and so never holds
// the same key twice; the check never fires.
type duplicateProfileError struct {
	profile string
}

func (e *duplicateProfileError) Error() string {
	return fmt.Sprintf("duplicate target profile name %q", e.profile)
}

// badTargetLiteralError reports a targets.<profile> entry that does not
// parse as a valid CommandRef.
type badTargetLiteralError struct {
	profile string
	literal string
	cause   error
}

func (e *badTargetLiteralError) Error() string {
	return fmt.Sprintf("targets.%s entry %q is invalid: %v", e.profile, e.literal, e.cause)
}

func (e *badTargetLiteralError) Unwrap() error {
	return e.cause
}
