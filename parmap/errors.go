package parmap

import (
	"errors"
	"fmt"
)

const Namespace = "parmap"

var (
	// ErrInvalidConfig marks a precondition violation: a worker count below
	// one, a negative warm-up count, a nil work function, or an option
	// combination the call cannot honor.
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

	// ErrWarmup marks a failure raised by the synchronous warm-up phase.
	// The task's own error is available via errors.Unwrap / errors.Is.
	ErrWarmup = errors.New(Namespace + ": warm-up task failed")

	// ErrMissingArgument marks a named argument absent from a Kwargs input.
	ErrMissingArgument = errors.New(Namespace + ": missing named argument")

	// ErrArgumentType marks a named argument whose dynamic type does not
	// match the requested one.
	ErrArgumentType = errors.New(Namespace + ": named argument has wrong type")
)

// warmupError wraps a failure from the warm-up phase with the input's index.
// Warm-up failures bypass the error policy and abort the whole call.
type warmupError struct {
	err   error
	index int
}

func (e *warmupError) Error() string {
	return fmt.Sprintf("%s: warm-up input %d: %v", Namespace, e.index, e.err)
}

func (e *warmupError) Unwrap() error { return e.err }

func (e *warmupError) Is(target error) bool { return target == ErrWarmup }

// TaskMetaError exposes correlation metadata attached to a task failure when
// error tagging is enabled.
type TaskMetaError interface {
	error
	Unwrap() error
	InputIndex() (int, bool)
	RunID() (string, bool)
}

type taskTaggedError struct {
	err   error
	runID string
	index int
}

func newTaskTaggedError(err error, runID string, index int) error {
	if err == nil {
		return nil
	}
	return &taskTaggedError{err: err, runID: runID, index: index}
}

func (e *taskTaggedError) Error() string { return e.err.Error() }
func (e *taskTaggedError) Unwrap() error { return e.err }

func (e *taskTaggedError) InputIndex() (int, bool) { return e.index, true }

func (e *taskTaggedError) RunID() (string, bool) {
	if e.runID == "" {
		return "", false
	}
	return e.runID, true
}

func (e *taskTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "input(index=%d,run=%s): %+v", e.index, e.runID, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractInputIndex returns the input index recorded on err, if any.
func ExtractInputIndex(err error) (int, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.InputIndex()
	}
	return 0, false
}

// ExtractRunID returns the per-call run ID recorded on err, if any.
func ExtractRunID(err error) (string, bool) {
	var tme TaskMetaError
	if errors.As(err, &tme) {
		return tme.RunID()
	}
	return "", false
}
