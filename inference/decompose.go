package inference

import "math"

// forest is an acyclic subset of an Energy's edges. It spans every node:
// nodes without an edge in the forest are single-node components.
// order lists the nodes so that every parent precedes its children.
type forest struct {
	order   []int
	parent  []int  // -1 for component roots
	up      []int  // edge to the parent, -1 for roots
	upFirst []bool // node is Edges[up][0]
}

// decompose splits the edges of e into forests, greedily in edge order: an
// edge joins the first forest in which its endpoints are still disconnected.
// A 4-connected grid listing right edges before down edges splits into a
// spanning comb and the remaining column chains.
// Complexity: O(E·T·α(n) + T·(n+E)) for T forests.
func decompose(e *Energy) []*forest {
	n := e.Nodes()
	var (
		sets    [][]int // union-find parents, one per forest
		members [][]int // edge indices, one list per forest
	)
	for ei, ed := range e.Edges {
		placed := false
		for t := range sets {
			a, b := find(sets[t], ed[0]), find(sets[t], ed[1])
			if a != b {
				sets[t][a] = b
				members[t] = append(members[t], ei)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		uf := make([]int, n)
		for i := range uf {
			uf[i] = i
		}
		uf[ed[0]] = ed[1]
		sets = append(sets, uf)
		members = append(members, []int{ei})
	}
	if len(members) == 0 {
		members = [][]int{nil}
	}

	out := make([]*forest, len(members))
	for t, edges := range members {
		out[t] = newForest(e, edges)
	}

	return out
}

// find returns the representative of x with path halving.
func find(uf []int, x int) int {
	for uf[x] != x {
		uf[x] = uf[uf[x]]
		x = uf[x]
	}

	return x
}

// newForest roots every component at its lowest node and orders it breadth first.
func newForest(e *Energy, edges []int) *forest {
	n := e.Nodes()
	adj := make([][]int, n)
	for _, ei := range edges {
		ed := e.Edges[ei]
		adj[ed[0]] = append(adj[ed[0]], ei)
		adj[ed[1]] = append(adj[ed[1]], ei)
	}
	f := &forest{
		order:   make([]int, 0, n),
		parent:  make([]int, n),
		up:      make([]int, n),
		upFirst: make([]bool, n),
	}
	seen := make([]bool, n)
	for r := 0; r < n; r++ {
		if seen[r] {
			continue
		}
		seen[r] = true
		f.parent[r], f.up[r] = -1, -1
		f.order = append(f.order, r)
		for q := len(f.order) - 1; q < len(f.order); q++ {
			v := f.order[q]
			for _, ei := range adj[v] {
				ed := e.Edges[ei]
				w := ed[1]
				if w == v {
					w = ed[0]
				}
				if seen[w] {
					continue
				}
				seen[w] = true
				f.parent[w], f.up[w], f.upFirst[w] = v, ei, ed[0] == w
				f.order = append(f.order, w)
			}
		}
	}

	return f
}

// maximize runs max-product over the forest and returns
//
//	max_y Σ_i lam[i·K+y_i] + Σ_{e ∈ forest} Pairwise[e](y)
//
// over labelings that agree with every clamp[i] ≥ 0, writing an argmax into
// labels (lowest state on ties). bel and arg are n·K scratch buffers.
// Complexity: O(n·K + |forest|·K²).
func (f *forest) maximize(e *Energy, lam []float64, clamp, labels []int, bel []float64, arg []int) float64 {
	k := e.NStates
	negInf := math.Inf(-1)
	for i, c := range clamp {
		for s := 0; s < k; s++ {
			if c >= 0 && c != s {
				bel[i*k+s] = negInf
			} else {
				bel[i*k+s] = lam[i*k+s]
			}
		}
	}

	// 1) leaves to roots
	var total float64
	for q := len(f.order) - 1; q >= 0; q-- {
		v := f.order[q]
		p := f.parent[v]
		if p < 0 {
			best := 0
			for s := 1; s < k; s++ {
				if bel[v*k+s] > bel[v*k+best] {
					best = s
				}
			}
			total += bel[v*k+best]
			labels[v] = best
			continue
		}
		tab := e.Pairwise[f.up[v]]
		for sp := 0; sp < k; sp++ {
			best, bestVal := -1, negInf
			for sv := 0; sv < k; sv++ {
				b := bel[v*k+sv]
				if math.IsInf(b, -1) {
					continue
				}
				if f.upFirst[v] {
					b += tab[sv*k+sp]
				} else {
					b += tab[sp*k+sv]
				}
				if best < 0 || b > bestVal {
					best, bestVal = sv, b
				}
			}
			arg[v*k+sp] = best
			bel[p*k+sp] += bestVal
		}
	}

	// 2) roots to leaves
	for _, v := range f.order {
		if p := f.parent[v]; p >= 0 {
			labels[v] = arg[v*k+labels[p]]
		}
	}

	return total
}
