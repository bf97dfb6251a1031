package cmd

import (
	"errors"
	"fmt"

	"github.com/modslice/modslice/internal/slice"
)

// Typed error taxonomy for the CLI layer (§7 of spec.md / §A.3 of
// SPEC_FULL.md). Library packages return their own typed errors
// (slice.ErrUnknownTarget, slice.CycleError) or plain wrapped errors;
// this file's job is only to classify an error returned from a
// command's RunE into an exit code, drawing the same split between
// "what failed" and "what the shell sees" that a small typed-error
// package gives a CLI.

// InputError covers a bad invocation: a missing source directory or an
// unreadable file. Exit 2.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

// GraphInvariantError covers an internal consistency breach that should
// never happen given a correct implementation: a duplicate vertex add,
// or an edge the meta-graph does not allow. Exit 1.
type GraphInvariantError struct {
	Reason string
}

func (e *GraphInvariantError) Error() string {
	return fmt.Sprintf("graph invariant violated: %s", e.Reason)
}

// IOError wraps a filesystem failure writing output. Exit 1.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// exitCode classifies err per §7's table: a user-facing input problem
// (a bad target name or an InputError) is exit 2; anything else,
// including an unresolvable cycle, is exit 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		return 2
	}
	var unknownTarget *slice.ErrUnknownTarget
	if errors.As(err, &unknownTarget) {
		return 2
	}
	return 1
}
