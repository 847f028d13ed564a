// Package diag defines the two error classes reported by the compiler.
//
// A UserError is always traceable to the input: a bad average, an invalid
// permutation, a malformed handspec. It carries the stage that rejected the
// input and, where known, the byte offset of the offending character.
//
// An InternalError signals a compiler defect or an unimplemented feature. It
// wraps a github.com/pkg/errors error so the stack of the failing check is
// preserved for bug reports.
package diag

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/aledsdavies/jugglec/core/invariant"
)

// Stage names the component that produced a diagnostic.
type Stage string

const (
	StageConfig   Stage = "config"
	StageParse    Stage = "parse"
	StageCompile  Stage = "compile"
	StageHSS      Stage = "hss"
	StageHandspec Stage = "handspec"
	StageHands    Stage = "hands"
	StageBody     Stage = "body"
)

// UserError is a validation failure caused by the input.
type UserError struct {
	Stage      Stage
	Message    string
	Input      string // Input being processed, for the caret snippet
	Offset     int    // Byte offset into Input, -1 when unknown
	Suggestion string
}

// Error returns "stage: message" followed by a caret snippet when the offset
// is known.
func (e *UserError) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(string(e.Stage))
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Offset >= 0 && e.Input != "" {
		b.WriteString(" (at position ")
		fmt.Fprintf(&b, "%d", e.Offset+1)
		b.WriteString(")")
	}
	if snippet := e.Snippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}
	if e.Suggestion != "" {
		b.WriteString("\n")
		b.WriteString(e.Suggestion)
	}
	return b.String()
}

// Snippet renders the input with a caret under the offending character.
//
//	   |
//	   | 3[45
//	   |   ^
func (e *UserError) Snippet() string {
	if e.Input == "" || e.Offset < 0 || strings.ContainsAny(e.Input, "\n") {
		return ""
	}
	col := e.Offset
	if col > len(e.Input) {
		col = len(e.Input)
	}
	var b strings.Builder
	b.WriteString("   |\n")
	fmt.Fprintf(&b, "   | %s\n", e.Input)
	b.WriteString("   | ")
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString("^")
	return b.String()
}

// Userf creates a UserError without position information.
func Userf(stage Stage, format string, args ...interface{}) *UserError {
	return &UserError{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Offset:  -1,
	}
}

// UserAt creates a UserError pointing at offset within input.
func UserAt(stage Stage, input string, offset int, format string, args ...interface{}) *UserError {
	return &UserError{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Input:   input,
		Offset:  offset,
	}
}

// WithSuggestion attaches a hint and returns the same error.
func (e *UserError) WithSuggestion(format string, args ...interface{}) *UserError {
	e.Suggestion = fmt.Sprintf(format, args...)
	return e
}

// Shift moves the offset of e by delta and rebases it onto input. Used when a
// sub-parser reports positions relative to a slice of a larger string.
func (e *UserError) Shift(input string, delta int) *UserError {
	if e.Offset >= 0 {
		e.Offset += delta
	}
	e.Input = input
	return e
}

// InternalError is a compiler defect or an unimplemented feature.
type InternalError struct {
	Stage Stage
	err   error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error in %s: %v", e.Stage, e.err)
}

// Unwrap exposes the wrapped error (with stack) to errors.Is/As.
func (e *InternalError) Unwrap() error {
	return e.err
}

// StackTrace returns the stack recorded when the error was created.
func (e *InternalError) StackTrace() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	if st, ok := e.err.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// Internalf creates an InternalError with a captured stack.
func Internalf(stage Stage, format string, args ...interface{}) *InternalError {
	return &InternalError{Stage: stage, err: errors.Errorf(format, args...)}
}

// FromViolation converts a recovered invariant violation into an InternalError.
func FromViolation(stage Stage, v *invariant.Violation) *InternalError {
	return &InternalError{Stage: stage, err: errors.WithStack(v)}
}

// IsUser reports whether err is (or wraps) a UserError.
func IsUser(err error) bool {
	var ue *UserError
	return errors.As(err, &ue)
}

// IsInternal reports whether err is (or wraps) an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
