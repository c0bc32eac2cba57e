package parmap

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime"
	"sync/atomic"

	"github.com/ygrebnov/errorc"
	"golang.org/x/sync/errgroup"
)

// Map applies work to every element of inputs, optionally in parallel, and
// returns the results in input order: warm-up results first, followed by
// dispatched results in their original index order, regardless of completion
// timing.
//
// Failures after the warm-up phase follow the configured ErrorPolicy:
// raise returns the first failure in submission order with no partial
// output, suppress drops failed entries. The collect policy cannot fold an
// error into a typed output slice and is rejected; use Outcomes for it.
func Map[T any, R any](
	ctx context.Context,
	inputs []T,
	work WorkFunc[T, R],
	opts ...Option,
) ([]R, error) {
	cfg := newConfig(opts...)
	if err := checkCall(cfg, work == nil); err != nil {
		return nil, err
	}
	if cfg.policy == ErrorPolicyCollect {
		return nil, errorc.With(ErrInvalidConfig,
			errorc.String("", "collect policy cannot store errors in a typed output; use Outcomes"))
	}
	initial := checkInitial[R](cfg)
	custom := checkAccumulator[R](cfg)

	tag := cfg.tagger()
	outcomes, err := run(ctx, inputs, work, cfg, tag)
	if err != nil {
		return nil, err
	}
	return collectValues(outcomes, initial, custom, cfg.policy, tag)
}

// FlatMap is the extend-mode variant of Map: work returns a slice per input
// and each slice's elements are appended individually to the output, in
// order. Collection options follow the output element type E; a custom
// accumulator cannot be combined with FlatMap (use Map with WithAccumulator
// to customize accumulation instead).
func FlatMap[T any, E any](
	ctx context.Context,
	inputs []T,
	work WorkFunc[T, []E],
	opts ...Option,
) ([]E, error) {
	cfg := newConfig(opts...)
	if err := checkCall(cfg, work == nil); err != nil {
		return nil, err
	}
	if cfg.policy == ErrorPolicyCollect {
		return nil, errorc.With(ErrInvalidConfig,
			errorc.String("", "collect policy cannot store errors in a typed output; use Outcomes"))
	}
	if cfg.accumulator != nil {
		return nil, errorc.With(ErrInvalidConfig,
			errorc.String("", "WithAccumulator cannot be combined with FlatMap"))
	}
	initial := checkInitial[E](cfg)

	outcomes, err := run(ctx, inputs, work, cfg, cfg.tagger())
	if err != nil {
		return nil, err
	}
	return flattenOutcomes(outcomes, initial, cfg.policy)
}

// Outcomes applies work to every element of inputs and returns one Outcome
// per input, in submission order, successes and captured failures both. This
// is the collect-errors-as-entries mode: failure positions correspond
// exactly to the indices of failing inputs. No error policy is applied to
// dispatched tasks; warm-up failures and precondition violations still
// return an error with no outcomes.
func Outcomes[T any, R any](
	ctx context.Context,
	inputs []T,
	work WorkFunc[T, R],
	opts ...Option,
) ([]Outcome[R], error) {
	cfg := newConfig(opts...)
	if err := checkCall(cfg, work == nil); err != nil {
		return nil, err
	}
	return run(ctx, inputs, work, cfg, cfg.tagger())
}

// ForEach applies fn to every element of inputs purely for its side effects;
// no output collection is built. Under the raise policy the first failure in
// submission order is returned; suppress returns nil regardless of failures;
// collect returns every failure joined into one error.
func ForEach[T any](
	ctx context.Context,
	inputs []T,
	fn func(context.Context, T) error,
	opts ...Option,
) error {
	cfg := newConfig(opts...)
	if err := checkCall(cfg, fn == nil); err != nil {
		return err
	}
	work := func(ctx context.Context, in T) (struct{}, error) {
		return struct{}{}, fn(ctx, in)
	}
	outcomes, err := run(ctx, inputs, work, cfg, cfg.tagger())
	if err != nil {
		return err
	}

	switch cfg.policy {
	case ErrorPolicyRaise:
		for _, o := range outcomes {
			if o.Err != nil {
				return o.Err
			}
		}
	case ErrorPolicyCollect:
		var errs []error
		for _, o := range outcomes {
			if o.Err != nil {
				errs = append(errs, o.Err)
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

// MapSeq is Map over a forward-only input sequence. The warm-up phase
// consumes the head of seq irrevocably; the remainder is drained and
// dispatched like a slice. Useful when inputs are produced by an iterator
// rather than materialized up front.
func MapSeq[T any, R any](
	ctx context.Context,
	seq iter.Seq[T],
	work WorkFunc[T, R],
	opts ...Option,
) ([]R, error) {
	cfg := newConfig(opts...)
	if err := checkCall(cfg, work == nil); err != nil {
		return nil, err
	}
	if seq == nil {
		return nil, errorc.With(ErrInvalidConfig,
			errorc.String("", "input sequence must not be nil"))
	}
	if cfg.policy == ErrorPolicyCollect {
		return nil, errorc.With(ErrInvalidConfig,
			errorc.String("", "collect policy cannot store errors in a typed output; use Outcomes"))
	}
	initial := checkInitial[R](cfg)
	custom := checkAccumulator[R](cfg)
	tag := cfg.tagger()

	next, stop := iter.Pull(seq)
	defer stop()

	// Warm-up consumes the head of the sequence; this cannot be undone.
	var warmValues []R
	for i := 0; i < cfg.warmup; i++ {
		in, ok := next()
		if !ok {
			break
		}
		v, err := invoke(ctx, work, in)
		if err != nil {
			return nil, &warmupError{err: tag(err, i), index: i}
		}
		warmValues = append(warmValues, v)
	}

	var rest []T
	for {
		in, ok := next()
		if !ok {
			break
		}
		rest = append(rest, in)
	}

	outcomes := make([]Outcome[R], len(warmValues)+len(rest))
	for i, v := range warmValues {
		outcomes[i] = Outcome[R]{Value: v, Index: i}
	}
	if err := dispatch(ctx, rest, len(warmValues), outcomes, work, cfg, tag); err != nil {
		return nil, err
	}
	return collectValues(outcomes, initial, custom, cfg.policy, tag)
}

// checkCall bundles the validations every entry point performs.
func checkCall(cfg *config, nilWork bool) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if nilWork {
		return errorc.With(ErrInvalidConfig,
			errorc.String("", "work function must not be nil"))
	}
	return nil
}

// run executes the warm-up and dispatch phases over a slice of inputs and
// returns one outcome per input, index-ordered. A warm-up failure aborts the
// call immediately; dispatched failures are captured in their outcomes.
func run[T any, R any](
	ctx context.Context,
	inputs []T,
	work WorkFunc[T, R],
	cfg *config,
	tag func(error, int) error,
) ([]Outcome[R], error) {
	outcomes := make([]Outcome[R], len(inputs))

	warm := min(cfg.warmup, len(inputs))
	for i := 0; i < warm; i++ {
		v, err := invoke(ctx, work, inputs[i])
		if err != nil {
			return nil, &warmupError{err: tag(err, i), index: i}
		}
		outcomes[i] = Outcome[R]{Value: v, Index: i}
	}

	if err := dispatch(ctx, inputs[warm:], warm, outcomes, work, cfg, tag); err != nil {
		return nil, err
	}
	return outcomes, nil
}

type indexedTask[T any] struct {
	in    T
	index int
}

// dispatch runs the post-warm-up inputs either serially (workers == 1) or on
// a fixed-size pool, writing each outcome into its index-addressed slot of
// outcomes (offset by base). Every slot is written by exactly one goroutine
// and the errgroup join publishes the writes, so no locking is needed.
//
// The call returns only after every submitted task is terminal. Context
// cancellation is honored between task starts; a task that has started runs
// to completion.
func dispatch[T any, R any](
	ctx context.Context,
	rest []T,
	base int,
	outcomes []Outcome[R],
	work WorkFunc[T, R],
	cfg *config,
	tag func(error, int) error,
) error {
	if len(rest) == 0 {
		return nil
	}

	sink, finish := cfg.progressSink(len(rest))
	defer finish()

	if cfg.workers == 1 {
		for i, in := range rest {
			if cfg.rateLimiter != nil {
				if err := cfg.rateLimiter.Wait(ctx); err != nil {
					return err
				}
			}
			idx := base + i
			v, err := invoke(ctx, work, in)
			outcomes[idx] = Outcome[R]{Value: v, Err: tag(err, idx), Index: idx}
			sink(i+1, len(rest))
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	taskChan := make(chan indexedTask[T], cfg.workers)
	var completed atomic.Int64

	numWorkers := min(cfg.workers, len(rest))
	for range numWorkers {
		g.Go(func() error {
			for {
				select {
				case task, ok := <-taskChan:
					if !ok {
						return nil
					}
					if cfg.rateLimiter != nil {
						if err := cfg.rateLimiter.Wait(gctx); err != nil {
							return err
						}
					}
					v, err := invoke(gctx, work, task.in)
					outcomes[task.index] = Outcome[R]{Value: v, Err: tag(err, task.index), Index: task.index}
					sink(int(completed.Add(1)), len(rest))
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	g.Go(func() error {
		defer close(taskChan)
		for i, in := range rest {
			select {
			case taskChan <- indexedTask[T]{in: in, index: base + i}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// invoke runs the work function with panic recovery so a single task cannot
// crash the pool; a panic becomes that task's error, stack trace included.
func invoke[T any, R any](ctx context.Context, work WorkFunc[T, R], in T) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			err = fmt.Errorf("%s: task panic: %v\nstack trace:\n%s", Namespace, r, buf[:n])
		}
	}()

	return work(ctx, in)
}
