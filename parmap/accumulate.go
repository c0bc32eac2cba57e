package parmap

// accumulate merges one successful value into the output collection, using
// the custom strategy when one is configured and a plain append otherwise.
// Both the serial and pooled paths funnel through the same collection code,
// so accumulation behavior is identical regardless of concurrency mode.
func accumulate[R any](value R, out *[]R, custom AccumulateFunc[R]) error {
	if custom != nil {
		return custom(value, out)
	}
	*out = append(*out, value)
	return nil
}

// collectValues walks outcomes in submission order and builds the output
// collection under the configured error policy. Task failures arrive already
// tagged; accumulator failures are tagged here and treated exactly like a
// failure of the element being accumulated.
//
// Only the raise and suppress policies reach this routine; the collect
// policy is served by Outcomes and is rejected before dispatch.
func collectValues[R any](
	outcomes []Outcome[R],
	initial []R,
	custom AccumulateFunc[R],
	policy ErrorPolicy,
	tag func(error, int) error,
) ([]R, error) {
	out := initial
	for _, o := range outcomes {
		if o.Err != nil {
			if policy == ErrorPolicyRaise {
				return nil, o.Err
			}
			continue
		}
		if err := accumulate(o.Value, &out, custom); err != nil {
			if policy == ErrorPolicyRaise {
				return nil, tag(err, o.Index)
			}
			continue
		}
	}
	return out, nil
}

// flattenOutcomes is the extend-mode counterpart of collectValues: each
// successful result is itself a slice whose elements are appended
// individually, in order.
func flattenOutcomes[E any](
	outcomes []Outcome[[]E],
	initial []E,
	policy ErrorPolicy,
) ([]E, error) {
	out := initial
	for _, o := range outcomes {
		if o.Err != nil {
			if policy == ErrorPolicyRaise {
				return nil, o.Err
			}
			continue
		}
		out = append(out, o.Value...)
	}
	return out, nil
}
