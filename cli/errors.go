package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/jugglec/core/diag"
	"github.com/aledsdavies/jugglec/core/matrixfmt"
	"github.com/aledsdavies/jugglec/core/matrixfmt/formatter"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "input", "settings", "watch"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// errPatternsDiffer is returned by diff so the process exits non-zero. The
// diff itself has already been printed.
var errPatternsDiffer = errors.New("patterns differ")

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var userErr *diag.UserError
	var internalErr *diag.InternalError
	var cliErr *CLIError
	switch {
	case errors.As(err, &userErr):
		formatUserError(w, userErr, useColor)
	case errors.As(err, &internalErr):
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Internal error: ", ColorRed, useColor), internalErr.Error())
		_, _ = fmt.Fprintf(w, "%s\n", Colorize("This is a bug in jugglec; please report it with the pattern above.", ColorGray, useColor))
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatUserError prints the message, a caret snippet and the suggestion
func formatUserError(w io.Writer, err *diag.UserError, useColor bool) {
	msg := err.Message
	if err.Offset >= 0 {
		msg = fmt.Sprintf("%s (at position %d)", msg, err.Offset+1)
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize(fmt.Sprintf("Error [%s]: ", err.Stage), ColorRed, useColor), msg)

	if snippet := err.Snippet(); snippet != "" {
		for _, line := range strings.Split(snippet, "\n") {
			_, _ = fmt.Fprintf(w, "  %s\n", Colorize(line, ColorGray, useColor))
		}
	}

	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Suggestion)
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

// FormatPatternDiff prints the beat-by-beat differences between two patterns
func FormatPatternDiff(w io.Writer, expected, actual *matrixfmt.Pattern, useColor bool) bool {
	diff := formatter.Diff(expected, actual)
	_, _ = fmt.Fprint(w, formatter.FormatDiff(diff, useColor))
	return diff.Empty()
}
