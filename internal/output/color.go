package output

import (
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// ColorConfig holds color configuration and provides coloring methods
// backed by pterm styles.
type ColorConfig struct {
	enabled bool
}

// NewColorConfig creates a new ColorConfig with TTY and environment detection.
func NewColorConfig(w io.Writer, forceNoColor bool) *ColorConfig {
	enabled := !forceNoColor && shouldEnableColor(w)
	return &ColorConfig{enabled: enabled}
}

// shouldEnableColor determines if colors should be enabled based on terminal and environment.
func shouldEnableColor(w io.Writer) bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	// Check TERM=dumb
	if os.Getenv("TERM") == "dumb" {
		return false
	}

	// Check FORCE_COLOR environment variable
	if _, exists := os.LookupEnv("FORCE_COLOR"); exists {
		return true
	}

	// Check if output is a terminal
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}

	return false
}

// Enabled returns whether colors are enabled.
func (c *ColorConfig) Enabled() bool {
	return c.enabled
}

// apply renders text through a pterm style, or returns it unchanged when
// colors are disabled.
func (c *ColorConfig) apply(text string, style *pterm.Style) string {
	if !c.enabled {
		return text
	}
	return style.Sprint(text)
}

// --- Semantic coloring methods ---

// Bold makes text bold.
func (c *ColorConfig) Bold(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.Bold))
}

// Dim makes text dimmed.
func (c *ColorConfig) Dim(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgGray))
}

// Success colors text for success messages.
func (c *ColorConfig) Success(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgGreen, pterm.Bold))
}

// Error colors text for error messages.
func (c *ColorConfig) Error(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgRed, pterm.Bold))
}

// Warning colors text for warning messages.
func (c *ColorConfig) Warning(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgYellow, pterm.Bold))
}

// Info colors text for info messages.
func (c *ColorConfig) Info(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgCyan, pterm.Bold))
}

// Hint colors text for hints.
func (c *ColorConfig) Hint(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgGray))
}

// Code colors text for code/paths.
func (c *ColorConfig) Code(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgCyan))
}

// Header colors text for headers.
func (c *ColorConfig) Header(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.Bold))
}

// Label colors text for labels/keys.
func (c *ColorConfig) Label(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgBlue))
}

// Value colors text for values.
func (c *ColorConfig) Value(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgWhite))
}

// Badge renders a bold white-on-red category badge, e.g. for an error's
// category in ErrorFormatter.
func (c *ColorConfig) Badge(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold))
}

// --- Check result colors ---

// CheckPass colors text for passed checks.
func (c *ColorConfig) CheckPass(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgGreen))
}

// CheckFail colors text for failed checks.
func (c *ColorConfig) CheckFail(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgRed))
}

// CheckWarn colors text for warning checks.
func (c *ColorConfig) CheckWarn(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgYellow))
}

// CheckSkip colors text for skipped checks.
func (c *ColorConfig) CheckSkip(text string) string {
	return c.apply(text, pterm.NewStyle(pterm.FgGray))
}
