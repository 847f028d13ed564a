// Package invariant provides contract assertions for the notation compiler.
//
// Assertions guard the compiler's own bookkeeping: matrix bounds, period
// arithmetic, hand assignment tables. A failed assertion is a compiler defect,
// never a problem with the user's pattern, so every function here panics with
// a *Violation. Public entry points recover the panic and report it as an
// internal error (see core/diag).
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Violation is the panic value raised by every failed assertion.
type Violation struct {
	Kind    string // PRECONDITION, POSTCONDITION or INVARIANT
	Message string
	File    string
	Line    int
}

func (v *Violation) Error() string {
	if v.File == "" {
		return fmt.Sprintf("%s VIOLATION: %s", v.Kind, v.Message)
	}
	return fmt.Sprintf("%s VIOLATION: %s\n  at %s:%d", v.Kind, v.Message, v.File, v.Line)
}

// Precondition checks an input contract at function entry.
//
// Example:
//
//	func newMatrix(jugglers, indexes, slots int) *Matrix {
//	    invariant.Precondition(jugglers > 0, "matrix needs at least one juggler")
//	    // ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency during a computation.
//
// Example:
//
//	for beat := start; beat < indexes; beat += period {
//	    invariant.Invariant(period > 0, "period must be positive")
//	}
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// NotNil panics if value is nil or a typed nil.
func NotNil(value interface{}, name string) {
	if value == nil || isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// InRange panics if value is outside [minVal, maxVal].
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d",
			name, minVal, maxVal, value)
	}
}

// Positive panics if value <= 0.
func Positive(value int, name string) {
	if value <= 0 {
		fail("POSTCONDITION", "%s must be positive, got %d", name, value)
	}
}

// ExpectNoError panics if err is not nil. Use it only for operations that
// cannot fail on well-formed compiler state.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

// Recover converts a recovered panic value into a *Violation. Values that are
// not violations are re-panicked.
//
//	defer func() {
//	    if r := recover(); r != nil {
//	        err = diag.FromViolation(diag.StageCompile, invariant.Recover(r))
//	    }
//	}()
func Recover(r interface{}) *Violation {
	if v, ok := r.(*Violation); ok {
		return v
	}
	panic(r)
}

func fail(kind, format string, args ...interface{}) {
	v := &Violation{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}

	// skip runtime.Callers, fail and the exported wrapper
	pc := make([]uintptr, 4)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])
	if frame, ok := frames.Next(); ok {
		v.File = frame.File
		v.Line = frame.Line
	}

	panic(v)
}
