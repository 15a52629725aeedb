package inference

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ssvm/flow"
)

// graphCut implements alpha-expansion. Each expansion move asks every node
// whether to keep its state or switch to alpha; the binary move energy is
// minimized by an s-t cut (source side keeps, sink side switches).
type graphCut struct {
	opts Options
}

func (o *graphCut) Method() Method { return MethodGraphCut }
func (o *graphCut) Mode() Mode     { return Approximate }

// Solve implements Oracle.
//
// Steps:
//  1. Start from the unary argmax.
//  2. For alpha = 0..K-1 build the move network and cut it.
//  3. Keep the proposal only if its true score beats the current one.
//  4. Stop after a full cycle without an accepted move, or MaxSweeps cycles.
//
// Complexity: O(MaxSweeps·K·maxflow(n+2, n+E)).
func (o *graphCut) Solve(ctx context.Context, e *Energy) ([]int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	labels := e.unaryArgmax()
	if e.NStates == 1 {
		return labels, nil
	}
	current := e.Score(labels)

	for cycle := 0; cycle < o.opts.MaxSweeps; cycle++ {
		improved := false
		for alpha := 0; alpha < e.NStates; alpha++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			proposal, err := o.expand(ctx, e, labels, alpha)
			if err != nil {
				return nil, err
			}
			if s := e.Score(proposal); s > current+o.opts.Epsilon {
				labels, current = proposal, s
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	return labels, nil
}

// expand solves one alpha-expansion move from labels.
//
// With x_i = 1 meaning "switch to alpha" and costs E = -score, every edge
// term E(x_u, x_v) with values A=E(0,0), B=E(0,1), C=E(1,0), D=E(1,1) is
// split as A + (C-A)x_u + (D-C)x_v + (B+C-A-D)(1-x_u)x_v. The last
// coefficient becomes the capacity of arc u→v and is truncated at zero when
// the term is not submodular.
func (o *graphCut) expand(ctx context.Context, e *Energy, labels []int, alpha int) ([]int, error) {
	n := len(labels)
	src, sink := n, n+1
	nw, err := flow.NewNetwork(n + 2)
	if err != nil {
		return nil, err
	}
	k := e.NStates

	// cost[i] = E_i(switch) - E_i(keep)
	cost := make([]float64, n)
	for i := 0; i < n; i++ {
		cost[i] = e.Unary[i][labels[i]] - e.Unary[i][alpha]
	}
	for ei, ed := range e.Edges {
		u, v := ed[0], ed[1]
		th := e.Pairwise[ei]
		a := -th[labels[u]*k+labels[v]]
		b := -th[labels[u]*k+alpha]
		c := -th[alpha*k+labels[v]]
		d := -th[alpha*k+alpha]
		cost[u] += c - a
		cost[v] += d - c
		if w := b + c - a - d; w > 0 {
			if err = nw.AddEdge(u, v, w); err != nil {
				return nil, fmt.Errorf("inference: expansion edge %d: %w", ei, err)
			}
		}
	}
	for i, c := range cost {
		switch {
		case c > 0:
			err = nw.AddEdge(src, i, c)
		case c < 0:
			err = nw.AddEdge(i, sink, -c)
		}
		if err != nil {
			return nil, fmt.Errorf("inference: expansion terminal %d: %w", i, err)
		}
	}

	fo := flow.DefaultOptions()
	fo.Ctx = ctx
	if o.opts.Flow == FlowEdmondsKarp {
		_, err = flow.EdmondsKarp(nw, src, sink, fo)
	} else {
		_, err = flow.Dinic(nw, src, sink, fo)
	}
	if err != nil {
		return nil, err
	}
	side, err := nw.SourceSide(src, fo.Epsilon)
	if err != nil {
		return nil, err
	}

	out := make([]int, n)
	for i := range out {
		if side[i] {
			out[i] = labels[i]
		} else {
			out[i] = alpha
		}
	}

	return out, nil
}
