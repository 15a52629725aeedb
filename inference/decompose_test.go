package inference

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/gridgraph"
)

func gridEnergy(t *testing.T, seed int64, h, w, k int, conn gridgraph.Connectivity) *Energy {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g, err := gridgraph.New(h, w, gridgraph.Options{Conn: conn})
	require.NoError(t, err)
	edges, _ := g.Edges()
	e := &Energy{NStates: k, Unary: make([][]float64, g.Size())}
	for i := range e.Unary {
		e.Unary[i] = make([]float64, k)
		for s := range e.Unary[i] {
			e.Unary[i][s] = rng.NormFloat64()
		}
	}
	for _, ed := range edges {
		e.Edges = append(e.Edges, [2]int{ed.From, ed.To})
		tab := make([]float64, k*k)
		for j := range tab {
			tab[j] = rng.NormFloat64()
		}
		e.Pairwise = append(e.Pairwise, tab)
	}
	require.NoError(t, e.Validate())

	return e
}

// TestDecompose_CoversEveryEdgeOnce checks forests partition the edges and
// list parents before children.
func TestDecompose_CoversEveryEdgeOnce(t *testing.T) {
	for _, tc := range []struct {
		conn       gridgraph.Connectivity
		minForests int
		maxForests int
	}{
		// a spanning comb plus column chains
		{gridgraph.Conn4, 2, 2},
		// 55 edges cannot fit in two 19-edge forests
		{gridgraph.Conn8, 3, 4},
	} {
		e := gridEnergy(t, 1, 4, 5, 2, tc.conn)
		fs := decompose(e)
		require.GreaterOrEqual(t, len(fs), tc.minForests)
		require.LessOrEqual(t, len(fs), tc.maxForests)

		seen := make([]int, len(e.Edges))
		for _, f := range fs {
			require.Len(t, f.order, e.Nodes())
			pos := make([]int, e.Nodes())
			for q, v := range f.order {
				pos[v] = q
			}
			for v, p := range f.parent {
				if p < 0 {
					require.Equal(t, -1, f.up[v])
					continue
				}
				require.Less(t, pos[p], pos[v])
				ed := e.Edges[f.up[v]]
				require.ElementsMatch(t, []int{v, p}, []int{ed[0], ed[1]})
				require.Equal(t, ed[0] == v, f.upFirst[v])
				seen[f.up[v]]++
			}
		}
		for ei, c := range seen {
			require.Equal(t, 1, c, "edge %d", ei)
		}
	}
}

// TestMaximize_MatchesEnumeration compares max-product with brute force,
// with and without a clamped node.
func TestMaximize_MatchesEnumeration(t *testing.T) {
	e := gridEnergy(t, 3, 2, 3, 3, gridgraph.Conn4)
	n, k := e.Nodes(), e.NStates
	lam := make([]float64, n*k)
	rng := rand.New(rand.NewSource(9))
	for i := range lam {
		lam[i] = rng.NormFloat64()
	}

	for _, f := range decompose(e) {
		for _, c := range []int{-1, 0, 2} {
			clamp := make([]int, n)
			for i := range clamp {
				clamp[i] = -1
			}
			clamp[4] = c

			labels := make([]int, n)
			got := f.maximize(e, lam, clamp, labels, make([]float64, n*k), make([]int, n*k))
			require.InDelta(t, forestValue(e, f, lam, labels), got, 1e-9)

			best := bruteForest(e, f, lam, clamp)
			require.InDelta(t, best, got, 1e-9, "clamp %d", c)
			if c >= 0 {
				require.Equal(t, c, labels[4])
			}
		}
	}
}

func forestValue(e *Energy, f *forest, lam []float64, y []int) float64 {
	k := e.NStates
	var v float64
	for i := range y {
		v += lam[i*k+y[i]]
	}
	for _, ei := range f.up {
		if ei >= 0 {
			ed := e.Edges[ei]
			v += e.Pairwise[ei][y[ed[0]]*k+y[ed[1]]]
		}
	}

	return v
}

func bruteForest(e *Energy, f *forest, lam []float64, clamp []int) float64 {
	n, k := e.Nodes(), e.NStates
	y := make([]int, n)
	best := -1e300
	var rec func(i int)
	rec = func(i int) {
		if i == n {
			if v := forestValue(e, f, lam, y); v > best {
				best = v
			}
			return
		}
		for s := 0; s < k; s++ {
			if clamp[i] >= 0 && clamp[i] != s {
				continue
			}
			y[i] = s
			rec(i + 1)
		}
	}
	rec(0)

	return best
}

// TestBranchAndBound_DecompositionBoundIsAdmissible: the even split already
// bounds the optimum from above.
func TestBranchAndBound_DecompositionBoundIsAdmissible(t *testing.T) {
	e := gridEnergy(t, 5, 3, 3, 2, gridgraph.Conn4)
	ex, err := (&exhaustive{opts: DefaultOptions()}).Solve(t.Context(), e)
	require.NoError(t, err)

	b := newBBEngine(t.Context(), e, DefaultOptions())
	require.GreaterOrEqual(t, b.evaluate(b.evenSplit()), e.Score(ex)-1e-9)
}
