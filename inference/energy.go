package inference

import (
	"fmt"
	"math"
)

// Energy is a pairwise scoring function over labelings of n nodes with
// NStates states each. Pairwise[e] is a row-major NStates×NStates table
// indexed by (state of Edges[e][0], state of Edges[e][1]).
type Energy struct {
	NStates  int
	Unary    [][]float64
	Edges    [][2]int
	Pairwise [][]float64
}

// Nodes returns the number of nodes.
func (e *Energy) Nodes() int { return len(e.Unary) }

// Validate checks shapes, index ranges and finiteness.
// Returns an error wrapping ErrBadEnergy.
// Complexity: O(n·K + E·K²).
func (e *Energy) Validate() error {
	if e == nil || e.NStates < 1 || len(e.Unary) == 0 {
		return fmt.Errorf("%w: need at least one node and one state", ErrBadEnergy)
	}
	k := e.NStates
	for i, row := range e.Unary {
		if len(row) != k {
			return fmt.Errorf("%w: unary[%d] has %d states, want %d", ErrBadEnergy, i, len(row), k)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: unary[%d] not finite", ErrBadEnergy, i)
			}
		}
	}
	if len(e.Pairwise) != len(e.Edges) {
		return fmt.Errorf("%w: %d pairwise tables for %d edges", ErrBadEnergy, len(e.Pairwise), len(e.Edges))
	}
	n := len(e.Unary)
	for i, ed := range e.Edges {
		if ed[0] < 0 || ed[0] >= n || ed[1] < 0 || ed[1] >= n || ed[0] == ed[1] {
			return fmt.Errorf("%w: edge %d = %v", ErrBadEnergy, i, ed)
		}
		if len(e.Pairwise[i]) != k*k {
			return fmt.Errorf("%w: pairwise[%d] has %d entries, want %d", ErrBadEnergy, i, len(e.Pairwise[i]), k*k)
		}
		for _, v := range e.Pairwise[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: pairwise[%d] not finite", ErrBadEnergy, i)
			}
		}
	}

	return nil
}

// Score evaluates the energy at labels. labels must hold one valid state per node.
// Complexity: O(n + E).
func (e *Energy) Score(labels []int) float64 {
	var s float64
	for i, row := range e.Unary {
		s += row[labels[i]]
	}
	for i, ed := range e.Edges {
		s += e.Pairwise[i][labels[ed[0]]*e.NStates+labels[ed[1]]]
	}

	return s
}

// incidence records one edge as seen from one of its endpoints.
type incidence struct {
	edge  int
	other int
	first bool // true if the node is Edges[edge][0]
}

// adjacency builds per-node incidence lists in edge order.
func (e *Energy) adjacency() [][]incidence {
	adj := make([][]incidence, len(e.Unary))
	for i, ed := range e.Edges {
		adj[ed[0]] = append(adj[ed[0]], incidence{edge: i, other: ed[1], first: true})
		adj[ed[1]] = append(adj[ed[1]], incidence{edge: i, other: ed[0], first: false})
	}

	return adj
}

// pair returns the pairwise term of inc for node state s and neighbor state t.
func (e *Energy) pair(inc incidence, s, t int) float64 {
	if inc.first {
		return e.Pairwise[inc.edge][s*e.NStates+t]
	}

	return e.Pairwise[inc.edge][t*e.NStates+s]
}

// local returns the score contribution of node i taking state s given the
// current states of its neighbors.
func (e *Energy) local(adj [][]incidence, labels []int, i, s int) float64 {
	v := e.Unary[i][s]
	for _, inc := range adj[i] {
		v += e.pair(inc, s, labels[inc.other])
	}

	return v
}

// unaryArgmax labels every node with its best unary state (lowest index on ties).
func (e *Energy) unaryArgmax() []int {
	labels := make([]int, len(e.Unary))
	for i, row := range e.Unary {
		best := 0
		for s := 1; s < len(row); s++ {
			if row[s] > row[best] {
				best = s
			}
		}
		labels[i] = best
	}

	return labels
}
