package inference

import (
	"context"
	"fmt"
)

// exhaustive enumerates every labeling in lexicographic order and keeps the
// first one with the highest score.
type exhaustive struct {
	opts Options
}

func (o *exhaustive) Method() Method { return MethodExhaustive }
func (o *exhaustive) Mode() Mode     { return Exact }

// Solve implements Oracle. Returns ErrProblemTooLarge when K^n exceeds
// Options.MaxEnumeration.
// Complexity: O(K^n·(n + E)).
func (o *exhaustive) Solve(ctx context.Context, e *Energy) ([]int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	n, k := e.Nodes(), e.NStates
	total := 1
	for i := 0; i < n; i++ {
		total *= k
		if total > o.opts.MaxEnumeration {
			return nil, fmt.Errorf("%w: %d^%d labelings", ErrProblemTooLarge, k, n)
		}
	}

	labels := make([]int, n)
	best := make([]int, n)
	bestScore := e.Score(labels)
	for step := 1; step < total; step++ {
		if step&4095 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		// odometer increment, last node fastest
		for i := n - 1; i >= 0; i-- {
			labels[i]++
			if labels[i] < k {
				break
			}
			labels[i] = 0
		}
		if s := e.Score(labels); s > bestScore+o.opts.Epsilon {
			bestScore = s
			copy(best, labels)
		}
	}

	return best, nil
}
