package parmap

import "context"

// WorkFunc is the unit of work applied to each input element.
// It takes a context for cancellation control and an input of type T,
// returning a result of type R or an error describing the failure.
//
// Type parameters:
//   - T: The type of input element to be processed
//   - R: The type of result produced after processing
type WorkFunc[T any, R any] func(ctx context.Context, in T) (R, error)

// Outcome is the tagged result of one task: either a success value or a
// captured failure, along with the input's original position.
//
// Fields:
//   - Value: The result produced by the task (only valid if Err is nil)
//   - Err: Any error that occurred while running the task (nil on success)
//   - Index: The original position of the input in the sequence
type Outcome[R any] struct {
	Value R
	Err   error
	Index int
}

// Failed reports whether the task produced an error instead of a value.
func (o Outcome[R]) Failed() bool { return o.Err != nil }

// ErrorPolicy controls how task failures are treated during the ordered
// collection phase. Warm-up failures are exempt: they always propagate.
type ErrorPolicy int

const (
	// ErrorPolicyRaise returns the first failure, in submission order, and
	// abandons the rest of the collection pass. No partial output is exposed.
	ErrorPolicyRaise ErrorPolicy = iota

	// ErrorPolicyCollect keeps failures in place as entries of the result.
	// A typed output slice cannot hold an error where a value belongs, so
	// this policy is served by Outcomes (one Outcome per input) and, for
	// ForEach, by joining all failures into the returned error.
	ErrorPolicyCollect

	// ErrorPolicySuppress drops failed entries silently; the output shrinks
	// relative to the input count.
	ErrorPolicySuppress
)

// String returns a human-readable policy name.
func (p ErrorPolicy) String() string {
	switch p {
	case ErrorPolicyRaise:
		return "raise"
	case ErrorPolicyCollect:
		return "collect"
	case ErrorPolicySuppress:
		return "suppress"
	default:
		return "unknown"
	}
}

// AccumulateFunc is a custom accumulation strategy. It receives a successful
// task value and the output collection being built, and mutates the
// collection in place. An error it returns is treated as that element's
// failure and routed through the configured ErrorPolicy.
type AccumulateFunc[R any] func(value R, out *[]R) error

// ProgressFunc receives one tick per completed task. completed counts
// terminal tasks so far, total is the number of dispatched tasks (warm-up
// items are not counted). Ticks arrive in completion order, which may differ
// from submission order; the sink must be safe for concurrent use when more
// than one worker is configured. Progress is purely cosmetic and never
// affects results or errors.
type ProgressFunc func(completed, total int)
