package flow

import "math"

// arc is one direction of a paired residual edge. The partner of arc i is
// always arc i^1, so reverse lookups need no extra index.
type arc struct {
	to   int
	cap  float64 // residual capacity
	orig float64 // capacity at construction time, restored by Reset
}

// Network is a directed residual network over vertices 0..n-1.
// It is not safe for concurrent use; build one per solve.
type Network struct {
	n    int
	adj  [][]int // adj[u] = indices into arcs of arcs leaving u
	arcs []arc
}

// NewNetwork allocates an empty network with n vertices.
// Returns ErrEmptyNetwork if n < 2.
// Complexity: O(n).
func NewNetwork(n int) (*Network, error) {
	if n < 2 {
		return nil, ErrEmptyNetwork
	}

	return &Network{n: n, adj: make([][]int, n)}, nil
}

// Vertices returns the number of vertices.
func (nw *Network) Vertices() int { return nw.n }

// Arcs returns the number of forward arcs added (reverse partners excluded).
func (nw *Network) Arcs() int { return len(nw.arcs) / 2 }

// AddEdge adds the arc u→v with capacity c and a zero-capacity reverse partner.
// Self-loops are accepted and ignored, mirroring how loops never carry flow.
// Complexity: O(1) amortized.
func (nw *Network) AddEdge(u, v int, c float64) error {
	return nw.AddBiEdge(u, v, c, 0)
}

// AddBiEdge adds a pair of opposite arcs u→v (capacity cuv) and v→u (capacity cvu)
// sharing one residual pair. This is the natural encoding of an undirected
// pairwise term in a graph-cut construction.
// Complexity: O(1) amortized.
func (nw *Network) AddBiEdge(u, v int, cuv, cvu float64) error {
	if u < 0 || u >= nw.n || v < 0 || v >= nw.n {
		return ErrVertexRange
	}
	if cuv < 0 || math.IsNaN(cuv) || math.IsInf(cuv, 0) {
		return EdgeError{From: u, To: v, Cap: cuv}
	}
	if cvu < 0 || math.IsNaN(cvu) || math.IsInf(cvu, 0) {
		return EdgeError{From: v, To: u, Cap: cvu}
	}
	if u == v {
		return nil
	}
	idx := len(nw.arcs)
	nw.arcs = append(nw.arcs,
		arc{to: v, cap: cuv, orig: cuv},
		arc{to: u, cap: cvu, orig: cvu},
	)
	nw.adj[u] = append(nw.adj[u], idx)
	nw.adj[v] = append(nw.adj[v], idx+1)

	return nil
}

// Reset restores every arc to its construction-time capacity.
// Complexity: O(E).
func (nw *Network) Reset() {
	for i := range nw.arcs {
		nw.arcs[i].cap = nw.arcs[i].orig
	}
}

// push moves f units along arc i and credits its partner.
func (nw *Network) push(i int, f float64) {
	nw.arcs[i].cap -= f
	nw.arcs[i^1].cap += f
}

// SourceSide returns, for every vertex, whether it is reachable from source
// through arcs with residual capacity > eps. After a max-flow run this is
// the source set of a minimum cut.
// Complexity: O(V + E).
func (nw *Network) SourceSide(source int, eps float64) ([]bool, error) {
	if source < 0 || source >= nw.n {
		return nil, ErrSourceNotFound
	}
	seen := make([]bool, nw.n)
	seen[source] = true
	queue := make([]int, 0, nw.n)
	queue = append(queue, source)
	for i := 0; i < len(queue); i++ {
		u := queue[i]
		for _, ai := range nw.adj[u] {
			a := nw.arcs[ai]
			if a.cap > eps && !seen[a.to] {
				seen[a.to] = true
				queue = append(queue, a.to)
			}
		}
	}

	return seen, nil
}

// CutValue sums the original capacities of arcs leaving the given side.
// With side taken from SourceSide after a max-flow run, it equals the max-flow value.
// Complexity: O(E).
func (nw *Network) CutValue(side []bool) float64 {
	var total float64
	for u := 0; u < nw.n; u++ {
		if !side[u] {
			continue
		}
		for _, ai := range nw.adj[u] {
			a := nw.arcs[ai]
			if !side[a.to] {
				total += a.orig
			}
		}
	}

	return total
}

// checkEndpoints validates a source/sink pair against the network.
func (nw *Network) checkEndpoints(source, sink int) error {
	if source < 0 || source >= nw.n {
		return ErrSourceNotFound
	}
	if sink < 0 || sink >= nw.n {
		return ErrSinkNotFound
	}
	if source == sink {
		return ErrSameEndpoints
	}

	return nil
}
