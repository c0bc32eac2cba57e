package parmap

import (
	"context"
	"fmt"

	"github.com/ygrebnov/errorc"
)

// Kwargs is the named-arguments form of an input element: each input is a
// mapping of argument name to value instead of a single positional value.
type Kwargs = map[string]any

// KeywordFunc is the named-arguments variant of the unit of work.
type KeywordFunc[R any] func(ctx context.Context, kwargs Kwargs) (R, error)

// Keyworded adapts a KeywordFunc into a WorkFunc over Kwargs inputs. The
// calling convention is resolved here, once, not per element: a mapping call
// built with Keyworded unpacks every input as named arguments.
//
//	results, err := parmap.Map(ctx, rows, parmap.Keyworded(load))
func Keyworded[R any](fn KeywordFunc[R]) WorkFunc[Kwargs, R] {
	if fn == nil {
		return nil
	}
	return func(ctx context.Context, kwargs Kwargs) (R, error) {
		return fn(ctx, kwargs)
	}
}

// Arg extracts the named argument from kwargs as type V. It returns
// ErrMissingArgument when the name is absent and ErrArgumentType when the
// stored value has a different dynamic type.
func Arg[V any](kwargs Kwargs, name string) (V, error) {
	var zero V
	raw, ok := kwargs[name]
	if !ok {
		return zero, errorc.With(ErrMissingArgument, errorc.String("name", name))
	}
	v, ok := raw.(V)
	if !ok {
		return zero, errorc.With(ErrArgumentType,
			errorc.String("name", name),
			errorc.String("have", fmt.Sprintf("%T", raw)),
			errorc.String("want", fmt.Sprintf("%T", zero)))
	}
	return v, nil
}
