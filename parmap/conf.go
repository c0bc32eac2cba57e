package parmap

import (
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/ygrebnov/errorc"
	"golang.org/x/time/rate"
)

// defaultWarmup is the number of leading inputs run synchronously before any
// parallel dispatch, unless overridden with WithWarmup.
const defaultWarmup = 3

// Option is a functional option for configuring a mapping call.
type Option func(*config)

// config is shared by every entry point. Collection options whose types
// depend on the call's result type are stored as any and re-typed at call
// entry (see checkInitial and checkAccumulator).
type config struct {
	workers      int
	warmup       int
	policy       ErrorPolicy
	showProgress bool
	progress     ProgressFunc
	rateLimiter  *rate.Limiter
	tagging      bool

	initial         any
	initialType     string
	accumulator     any
	accumulatorType string
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		workers: runtime.GOMAXPROCS(0),
		warmup:  defaultWarmup,
		policy:  ErrorPolicyRaise,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// validate enforces the numeric preconditions shared by every entry point.
func (c *config) validate() error {
	if c.workers < 1 {
		return errorc.With(ErrInvalidConfig,
			errorc.String("", fmt.Sprintf("workers must be >= 1, got %d", c.workers)))
	}
	if c.warmup < 0 {
		return errorc.With(ErrInvalidConfig,
			errorc.String("", fmt.Sprintf("warmup must be >= 0, got %d", c.warmup)))
	}
	return nil
}

// tagger returns the failure decorator for one call. When tagging is off the
// decorator is the identity; otherwise every failure is wrapped with the
// input index and a run ID shared by all failures of this call.
func (c *config) tagger() func(err error, index int) error {
	if !c.tagging {
		return func(err error, _ int) error { return err }
	}
	runID := uuid.NewString()
	return func(err error, index int) error {
		return newTaskTaggedError(err, runID, index)
	}
}

// WithWorkers sets the degree of parallelism. A value of 1 forces fully
// serial execution. Values below 1 are rejected at call entry.
// If not specified, defaults to runtime.GOMAXPROCS(0).
func WithWorkers(count int) Option {
	return func(cfg *config) {
		cfg.workers = count
	}
}

// WithWarmup sets how many leading inputs run synchronously before parallel
// dispatch begins. A failure there aborts the whole call regardless of the
// error policy, which makes systemic problems (bad arguments, malformed
// first elements) surface before workers are committed.
// Negative values are rejected at call entry. Defaults to 3.
func WithWarmup(n int) Option {
	return func(cfg *config) {
		cfg.warmup = n
	}
}

// WithProgress renders a terminal progress bar over the dispatched tasks.
// Warm-up items are not counted in the total.
func WithProgress() Option {
	return func(cfg *config) {
		cfg.showProgress = true
	}
}

// WithProgressFunc installs fn as the progress sink instead of the default
// terminal bar. fn must be safe for concurrent use when workers > 1.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.showProgress = true
			cfg.progress = fn
		}
	}
}

// WithErrorPolicy sets how task failures after the warm-up phase are
// treated. Defaults to ErrorPolicyRaise.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(cfg *config) {
		cfg.policy = p
	}
}

// WithRaiseErrors selects ErrorPolicyRaise.
func WithRaiseErrors() Option { return WithErrorPolicy(ErrorPolicyRaise) }

// WithCollectErrors selects ErrorPolicyCollect.
func WithCollectErrors() Option { return WithErrorPolicy(ErrorPolicyCollect) }

// WithSuppressErrors selects ErrorPolicySuppress.
func WithSuppressErrors() Option { return WithErrorPolicy(ErrorPolicySuppress) }

// WithRateLimit caps task throughput across all workers.
// tasksPerSecond specifies the maximum number of tasks to start per second.
// burst specifies how many tasks may start in a burst. Useful when the work
// function calls external services or APIs.
// If not specified, no rate limiting is applied.
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *config) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithErrorTagging wraps every task failure with the input's index and a
// per-call run ID, retrievable via ExtractInputIndex and ExtractRunID.
func WithErrorTagging() Option {
	return func(cfg *config) {
		cfg.tagging = true
	}
}

// WithInitial seeds the output collection. The slice is mutated and returned
// by the call; its element type must match the call's result type.
func WithInitial[R any](initial []R) Option {
	return func(cfg *config) {
		cfg.initial = initial
		cfg.initialType = fmt.Sprintf("%T", initial)
	}
}

// WithAccumulator overrides the built-in append behavior with a custom
// accumulation strategy. The function's result type must match the call's.
func WithAccumulator[R any](fn AccumulateFunc[R]) Option {
	return func(cfg *config) {
		cfg.accumulator = fn
		cfg.accumulatorType = fmt.Sprintf("%T", fn)
	}
}

// checkInitial re-types the seed collection stored by WithInitial.
// A mismatch between the option's element type and the call's result type is
// a programming error and panics.
func checkInitial[R any](cfg *config) []R {
	if cfg.initial == nil {
		return nil
	}
	initial, ok := cfg.initial.([]R)
	if !ok {
		panic(fmt.Sprintf("WithInitial expects element type matching the call's result type %T, got %s",
			[]R(nil), cfg.initialType))
	}
	return initial
}

// checkAccumulator re-types the custom strategy stored by WithAccumulator.
// A mismatch is a programming error and panics.
func checkAccumulator[R any](cfg *config) AccumulateFunc[R] {
	if cfg.accumulator == nil {
		return nil
	}
	fn, ok := cfg.accumulator.(AccumulateFunc[R])
	if !ok {
		panic(fmt.Sprintf("WithAccumulator expects %T, got %s",
			AccumulateFunc[R](nil), cfg.accumulatorType))
	}
	return fn
}
