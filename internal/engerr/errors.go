// Package engerr implements the error taxonomy from spec.md §7: invalid
// input (caller-visible, rejected), state-invariant violations (fatal,
// halt the engine), and recoverable conditions (not errors at all — they
// are fields on result/decision records, never returned here). Grounded on
// the teacher's plain fmt.Errorf wrapping convention; the two exported
// types below exist only because spec.md §7 asks for a "stable error
// category" the embedding can switch on, which a single wrapped string
// cannot provide.
package engerr

import "fmt"

// InvalidInputError wraps a rejected caller input: a direction outside
// {+1,-1}, a magnitude outside [0,100], or a configuration value outside
// its documented range.
type InvalidInputError struct {
	Field  string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Detail)
}

// NewInvalidInput constructs an InvalidInputError.
func NewInvalidInput(field, detail string) *InvalidInputError {
	return &InvalidInputError{Field: field, Detail: detail}
}

// InvariantViolationError signals that state which must never occur was
// asserted: e.g. evaluating a signal against a block earlier than its
// signal_index, a pocket mismatch discovered during rebuild, or
// cumulative_profit observed negative before clamping. Per spec.md §7 this
// is fatal — the engine halts and refuses further add_block calls. State
// carries a shallow snapshot of the offending component's sub-state for
// diagnosis, mirroring the teacher's logging.WithFields structured-context
// convention.
type InvariantViolationError struct {
	Component string
	Detail    string
	State     map[string]any
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Component, e.Detail)
}

// NewInvariantViolation constructs an InvariantViolationError.
func NewInvariantViolation(component, detail string, state map[string]any) *InvariantViolationError {
	return &InvariantViolationError{Component: component, Detail: detail, State: state}
}

// IsFatal reports whether err must halt the engine.
func IsFatal(err error) bool {
	_, ok := err.(*InvariantViolationError)
	return ok
}
