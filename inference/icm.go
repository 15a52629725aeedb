package inference

import "context"

// icm performs iterated conditional modes: starting from the unary argmax,
// each sweep moves every node (in index order) to its best state given its
// neighbors, until a sweep changes nothing or MaxSweeps is reached.
type icm struct {
	opts Options
}

func (o *icm) Method() Method { return MethodICM }
func (o *icm) Mode() Mode     { return Approximate }

// Solve implements Oracle.
// Complexity: O(MaxSweeps·(n·K + E·K)).
func (o *icm) Solve(ctx context.Context, e *Energy) ([]int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	labels := e.unaryArgmax()
	if err := icmSweeps(ctx, e, e.adjacency(), labels, o.opts); err != nil {
		return nil, err
	}

	return labels, nil
}

// icmSweeps improves labels in place. Every accepted move raises the score
// by more than opts.Epsilon, so the loop terminates.
func icmSweeps(ctx context.Context, e *Energy, adj [][]incidence, labels []int, opts Options) error {
	for sweep := 0; sweep < opts.MaxSweeps; sweep++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		changed := false
		for i := range labels {
			best, bestVal := labels[i], e.local(adj, labels, i, labels[i])
			for s := 0; s < e.NStates; s++ {
				if v := e.local(adj, labels, i, s); v > bestVal+opts.Epsilon {
					best, bestVal = s, v
				}
			}
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}

	return nil
}
