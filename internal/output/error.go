package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	dferrors "github.com/devflow-sh/devflow/internal/errors"
)

// ErrorFormatter provides consistent error formatting.
type ErrorFormatter struct {
	writer io.Writer
	color  *ColorConfig
}

// NewErrorFormatter creates a new error formatter.
func NewErrorFormatter(w io.Writer) *ErrorFormatter {
	return &ErrorFormatter{
		writer: w,
		color:  Color(),
	}
}

// Format formats an error for display.
func (f *ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}

	var dfErr *dferrors.DevflowError
	if errors.As(err, &dfErr) {
		return f.formatDevflowError(dfErr)
	}

	return f.formatGenericError(err)
}

// formatDevflowError formats a DevflowError with full context.
func (f *ErrorFormatter) formatDevflowError(err *dferrors.DevflowError) string {
	var sb strings.Builder

	// Category badge
	badge := f.color.Badge(fmt.Sprintf(" %s ", strings.ToUpper(string(err.Category))))
	sb.WriteString(badge)
	sb.WriteString(" ")

	// Error message
	sb.WriteString(f.color.Error(err.Message))
	sb.WriteString("\n")

	// Cause (if present)
	if err.Cause != nil {
		sb.WriteString("\n")
		sb.WriteString(f.color.Label("Cause"))
		sb.WriteString(": ")
		sb.WriteString(err.Cause.Error())
		sb.WriteString("\n")
	}

	// Diff (if present, e.g. WorkflowDrift)
	if err.Diff != "" {
		sb.WriteString("\n")
		sb.WriteString(err.Diff)
		sb.WriteString("\n")
	}

	// Context (if present)
	if len(err.Context) > 0 {
		sb.WriteString("\n")
		sb.WriteString(f.color.Label("Context"))
		sb.WriteString(":\n")
		for k, v := range err.Context {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", f.color.Dim(k), v))
		}
	}

	// Hint (if present)
	if err.Hint != "" {
		sb.WriteString("\n")
		sb.WriteString(f.color.Info(Symbols.Info))
		sb.WriteString(" ")
		sb.WriteString(f.color.Hint(err.Hint))
		sb.WriteString("\n")
	}

	// Documentation URL (if present)
	if err.DocURL != "" {
		sb.WriteString("\n")
		sb.WriteString(f.color.Dim("See: "))
		sb.WriteString(f.color.Code(err.DocURL))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatGenericError formats a regular error.
func (f *ErrorFormatter) formatGenericError(err error) string {
	return fmt.Sprintf("%s %s\n", f.color.Error(Symbols.Error), err.Error())
}

// Write writes a formatted error to the writer.
func (f *ErrorFormatter) Write(err error) {
	if err == nil {
		return
	}
	fmt.Fprint(f.writer, f.Format(err))
}

// PrintError prints a formatted error using the global output.
func PrintError(err error) {
	if err == nil {
		return
	}

	o := Global()
	formatter := NewErrorFormatter(o.ErrWriter())

	if o.IsJSON() {
		// JSON mode - use JSON error response
		var dfErr *dferrors.DevflowError
		if errors.As(err, &dfErr) {
			resp := ErrorResponse{
				Error:   dfErr.Error(),
				Code:    dfErr.Code,
				Message: dfErr.Message,
				Hint:    dfErr.Hint,
				Context: dfErr.Context,
			}
			o.JSON(resp)
		} else {
			resp := ErrorResponse{
				Error: err.Error(),
			}
			o.JSON(resp)
		}
		return
	}

	// Text mode - use formatted output
	formatter.Write(err)
}

// FormatErrorBrief returns a brief one-line error message.
func FormatErrorBrief(err error) string {
	if err == nil {
		return ""
	}

	var dfErr *dferrors.DevflowError
	if errors.As(err, &dfErr) {
		return fmt.Sprintf("[%s/%s] %s", dfErr.Category, dfErr.Code, dfErr.Message)
	}

	return err.Error()
}

// IsUserError returns true if the error is likely a user error (vs an
// internal devflow bug).
func IsUserError(err error) bool {
	if err == nil {
		return false
	}

	var dfErr *dferrors.DevflowError
	if errors.As(err, &dfErr) {
		return dfErr.Category != dferrors.CategoryRuntime || dfErr.Code != "INTERNAL"
	}

	return true
}
