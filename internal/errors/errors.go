// Package errors provides structured error handling for devflow.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Category groups related error kinds for badge rendering and exit-code lookup.
type Category string

// Error categories, one per spec.md §7 error kind family.
const (
	CategoryConfig    Category = "config"
	CategoryCommand   Category = "command"
	CategoryExtension Category = "extension"
	CategoryProtocol  Category = "protocol"
	CategoryRuntime   Category = "runtime"
	CategoryPolicy    Category = "policy"
	CategoryCI        Category = "ci"
	CategoryScaffold  Category = "scaffold"
	CategoryExec      Category = "exec"
)

// Error codes, one per spec.md §7 error kind.
const (
	CodeConfigError               = "CONFIG_ERROR"
	CodeUnknownPrimary            = "UNKNOWN_PRIMARY"
	CodeUnknownSelector           = "UNKNOWN_SELECTOR"
	CodeNoCapableExtension        = "NO_CAPABLE_EXTENSION"
	CodeExtensionDiscoveryFailure = "EXTENSION_DISCOVERY_FAILURE"
	CodeProtocolError             = "PROTOCOL_ERROR"
	CodeEngineMissing             = "ENGINE_MISSING"
	CodeMissingFingerprintInput   = "MISSING_FINGERPRINT_INPUT"
	CodeWorkflowDrift             = "WORKFLOW_DRIFT"
	CodeScaffoldExists            = "SCAFFOLD_EXISTS"
	CodeCommandFailed             = "COMMAND_FAILED"
)

// DevflowError is a structured error carrying a category, machine-readable
// code, human message, optional cause, hint, and free-form context.
type DevflowError struct {
	Category Category
	Code     string
	Message  string
	Cause    error
	Hint     string
	DocURL   string
	Context  map[string]string

	// ConfigSubkind further classifies a CONFIG_ERROR per spec.md §7 by the
	// loader stage that failed: "read", "parse" (including unknown keys) or
	// "validate" (cross-reference checks).
	ConfigSubkind string

	// Diff carries a unified diff payload for WORKFLOW_DRIFT errors.
	Diff string
}

// Error implements the error interface.
func (e *DevflowError) Error() string {
	return fmt.Sprintf("[%s/%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DevflowError) Unwrap() error {
	return e.Cause
}

// UserFriendly returns a user-facing error message with hints and context.
func (e *DevflowError) UserFriendly() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Message))

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", e.Cause.Error()))
	}

	if e.Diff != "" {
		sb.WriteString(fmt.Sprintf("\n%s\n", e.Diff))
	}

	if e.Hint != "" {
		sb.WriteString(fmt.Sprintf("\nHint: %s\n", e.Hint))
	}

	if e.DocURL != "" {
		sb.WriteString(fmt.Sprintf("\nDocumentation: %s\n", e.DocURL))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:\n")
		for k, v := range e.Context {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	return sb.String()
}

// WithCause adds a cause to the error.
func (e *DevflowError) WithCause(cause error) *DevflowError {
	e.Cause = cause
	return e
}

// WithHint adds a hint to the error.
func (e *DevflowError) WithHint(hint string) *DevflowError {
	e.Hint = hint
	return e
}

// WithContext adds a context key/value pair to the error.
func (e *DevflowError) WithContext(key, value string) *DevflowError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithDiff attaches a unified diff payload (used by WorkflowDrift).
func (e *DevflowError) WithDiff(diff string) *DevflowError {
	e.Diff = diff
	return e
}

// New creates a new DevflowError.
func New(category Category, code string, message string) *DevflowError {
	return &DevflowError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  make(map[string]string),
	}
}

// Newf creates a new DevflowError with a formatted message.
func Newf(category Category, code string, format string, args ...interface{}) *DevflowError {
	return &DevflowError{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Context:  make(map[string]string),
	}
}

// Wrap wraps an existing error as a DevflowError.
func Wrap(err error, category Category, code string, message string) *DevflowError {
	return &DevflowError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    err,
		Context:  make(map[string]string),
	}
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, category Category, code string, format string, args ...interface{}) *DevflowError {
	return &DevflowError{
		Category: category,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Cause:    err,
		Context:  make(map[string]string),
	}
}

// Is checks whether err is a DevflowError with the given code.
func Is(err error, code string) bool {
	var dfErr *DevflowError
	if errors.As(err, &dfErr) {
		return dfErr.Code == code
	}
	return false
}

// GetCategory returns the category of a DevflowError, or "" if err is not one.
func GetCategory(err error) Category {
	var dfErr *DevflowError
	if errors.As(err, &dfErr) {
		return dfErr.Category
	}
	return ""
}

// GetCode returns the code of a DevflowError, or "" if err is not one.
func GetCode(err error) string {
	var dfErr *DevflowError
	if errors.As(err, &dfErr) {
		return dfErr.Code
	}
	return ""
}

// AsDevflowError attempts to convert err to a *DevflowError.
func AsDevflowError(err error) (*DevflowError, bool) {
	var dfErr *DevflowError
	if errors.As(err, &dfErr) {
		return dfErr, true
	}
	return nil, false
}

// Clone returns a copy of the error that can be mutated independently.
func (e *DevflowError) Clone() *DevflowError {
	clone := &DevflowError{
		Category:      e.Category,
		Code:          e.Code,
		Message:       e.Message,
		Cause:         e.Cause,
		Hint:          e.Hint,
		DocURL:        e.DocURL,
		ConfigSubkind: e.ConfigSubkind,
		Diff:          e.Diff,
		Context:       make(map[string]string),
	}
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	return clone
}

// --- Per-kind constructors, one family per spec.md §7 error kind. ---

// ConfigError builds a CONFIG_ERROR of the given subkind.
func ConfigError(subkind, path string, cause error) *DevflowError {
	e := Wrapf(cause, CategoryConfig, CodeConfigError, "devflow.toml: %s", subkind).
		WithContext("path", path)
	e.ConfigSubkind = subkind
	return e
}

// UnknownPrimary builds an UNKNOWN_PRIMARY error for an unrecognized command primary.
func UnknownPrimary(primary string) *DevflowError {
	return Newf(CategoryCommand, CodeUnknownPrimary, "unknown primary %q", primary).
		WithContext("primary", primary).
		WithHint("run `dwf --help` to see the list of known primaries")
}

// UnknownSelector builds an UNKNOWN_SELECTOR error for a selector not defined
// on an otherwise-known primary.
func UnknownSelector(primary, selector string) *DevflowError {
	return Newf(CategoryCommand, CodeUnknownSelector, "unknown selector %q for primary %q", selector, primary).
		WithContext("primary", primary).
		WithContext("selector", selector)
}

// NoCapableExtension builds a NO_CAPABLE_EXTENSION error when no registered
// extension can build an action for a resolved command.
func NoCapableExtension(capability string) *DevflowError {
	return Newf(CategoryExtension, CodeNoCapableExtension, "no extension provides capability %q", capability).
		WithContext("capability", capability).
		WithHint("check devflow.toml's [extensions.<name>] entries and their capability lists")
}

// ExtensionDiscoveryFailure builds an EXTENSION_DISCOVERY_FAILURE error when
// an extension's --discover invocation fails or returns malformed output.
func ExtensionDiscoveryFailure(extension string, cause error) *DevflowError {
	return Wrapf(cause, CategoryExtension, CodeExtensionDiscoveryFailure, "extension %q discovery failed", extension).
		WithContext("extension", extension)
}

// ProtocolError builds a PROTOCOL_ERROR for a malformed subprocess response.
func ProtocolError(extension string, cause error) *DevflowError {
	return Wrapf(cause, CategoryProtocol, CodeProtocolError, "extension %q returned a malformed response", extension).
		WithContext("extension", extension)
}

// EngineMissing builds an ENGINE_MISSING error when a container/host runtime
// required by the resolved profile is unavailable.
func EngineMissing(engine string, cause error) *DevflowError {
	return Wrapf(cause, CategoryRuntime, CodeEngineMissing, "runtime engine %q is not available", engine).
		WithContext("engine", engine).
		WithHint("install or start " + engine + ", or set profile to \"host\" in devflow.toml")
}

// MissingFingerprintInput builds a MISSING_FINGERPRINT_INPUT error when a
// fingerprint input path does not exist.
func MissingFingerprintInput(path string) *DevflowError {
	return Newf(CategoryPolicy, CodeMissingFingerprintInput, "fingerprint input not found: %s", path).
		WithContext("path", path)
}

// WorkflowDrift builds a WORKFLOW_DRIFT error carrying the unified diff
// between the generated and on-disk CI workflow.
func WorkflowDrift(path, diff string) *DevflowError {
	return Newf(CategoryCI, CodeWorkflowDrift, "generated workflow drifted from %s", path).
		WithContext("path", path).
		WithDiff(diff).
		WithHint("run `dwf ci:generate` to refresh the checked-in workflow")
}

// ScaffoldExists builds a SCAFFOLD_EXISTS error when init would overwrite an
// existing devflow.toml or workflow file without --force.
func ScaffoldExists(path string) *DevflowError {
	return Newf(CategoryScaffold, CodeScaffoldExists, "%s already exists", path).
		WithContext("path", path).
		WithHint("pass --force to overwrite")
}

// CommandFailed builds a COMMAND_FAILED error carrying the child process's
// exit code.
func CommandFailed(command string, exitCode int, cause error) *DevflowError {
	return Wrapf(cause, CategoryExec, CodeCommandFailed, "command %q exited with status %d", command, exitCode).
		WithContext("command", command).
		WithContext("exit_code", fmt.Sprintf("%d", exitCode))
}

// Internal builds an internal error for conditions devflow's own contract
// should have prevented.
func Internal(message string, cause error) *DevflowError {
	return Wrap(cause, CategoryRuntime, "INTERNAL", message).
		WithHint("this is an internal devflow error; please file an issue")
}

// Exit codes per spec.md §6.
const (
	ExitSuccess              = 0
	ExitGenericFailure       = 1
	ExitConfigError          = 2
	ExitUnknownCommand       = 3
	ExitExtensionDiscovery   = 4
	ExitWorkflowDrift        = 5
	ExitEngineMissing        = 6
)

// ExitCode maps err to the process exit code the CLI dispatcher should use.
// CommandFailed is the one exception: its own exit code is the spawned
// child's exit status, carried in its Context["exit_code"] rather than one
// of the fixed codes above, so ExitCode reads that value back out.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	dfErr, ok := AsDevflowError(err)
	if !ok {
		return ExitGenericFailure
	}
	switch dfErr.Code {
	case CodeConfigError:
		return ExitConfigError
	case CodeUnknownPrimary, CodeUnknownSelector:
		return ExitUnknownCommand
	case CodeExtensionDiscoveryFailure:
		return ExitExtensionDiscovery
	case CodeWorkflowDrift:
		return ExitWorkflowDrift
	case CodeEngineMissing:
		return ExitEngineMissing
	case CodeCommandFailed:
		if code, err := strconv.Atoi(dfErr.Context["exit_code"]); err == nil {
			return code
		}
		return ExitGenericFailure
	default:
		return ExitGenericFailure
	}
}
