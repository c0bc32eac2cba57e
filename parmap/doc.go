// Package parmap provides a small, generic parallel-map primitive: apply a
// unit of work to an ordered sequence of inputs, optionally on a fixed-size
// worker pool, and assemble a single ordered output collection with an
// explicit policy for partial failures.
//
// Every call runs three phases in sequence: a serial warm-up over the first
// few inputs (failures there abort the whole call, surfacing systemic
// problems before workers are committed), a dispatch phase that runs the
// remainder serially or on a pool of bounded size, and an ordered collection
// phase that harvests results in submission order regardless of completion
// timing. The pool is created fresh for each call and fully joined before
// the call returns.
//
// # Basic Usage
//
//	ctx := context.Background()
//	inputs := []int{1, 2, 3, 4, 5}
//	results, err := parmap.Map(ctx, inputs, func(ctx context.Context, x int) (int, error) {
//	    return x * x, nil
//	}, parmap.WithWorkers(2), parmap.WithWarmup(1))
//	// results: [1 4 9 16 25], always in input order
//
// # Operations
//
//   - Map: one result entry per input, appended in input order
//   - FlatMap: each result is a slice, flattened element-wise into the output
//   - Outcomes: one Outcome per input, failures kept in place as entries
//   - ForEach: side effects only, no output collection
//   - MapSeq: Map over a forward-only iter.Seq input
//
// # Error Policies
//
// Failures after the warm-up phase follow the configured policy:
//
//   - ErrorPolicyRaise (default): the first failure in submission order is
//     returned and no partial output is exposed
//   - ErrorPolicySuppress: failed entries are dropped, the output shrinks
//   - ErrorPolicyCollect: failures stay in the output as entries; served by
//     Outcomes, since a typed output slice cannot hold an error where a
//     value belongs
//
// Warm-up failures always propagate immediately, whatever the policy, and
// satisfy errors.Is(err, ErrWarmup). Panics inside the work function are
// recovered into that task's error.
//
// # Progress
//
//	_, err := parmap.Map(ctx, urls, fetch,
//	    parmap.WithWorkers(8),
//	    parmap.WithProgress(), // terminal bar over the dispatched tasks
//	)
//
// A custom sink can be injected with WithProgressFunc; ticks arrive in
// completion order and are purely cosmetic.
//
// # Named Arguments
//
// Inputs holding named arguments instead of a positional value use the
// Kwargs form, with the calling convention resolved once via Keyworded:
//
//	rows := []parmap.Kwargs{{"host": "a", "port": 80}, {"host": "b", "port": 443}}
//	results, err := parmap.Map(ctx, rows, parmap.Keyworded(probe))
//
// The package is designed to be small and idiomatic for Go 1.18+ (generics).
package parmap
