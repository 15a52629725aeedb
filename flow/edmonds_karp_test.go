package flow_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/flow"
)

// buildRandomNetwork constructs a network with V vertices and roughly p
// probability of an arc between any ordered pair u→v.
// Capacities are uniform in [1, maxCap+1).
func buildRandomNetwork(t require.TestingT, V int, p, maxCap float64, seed int64) *flow.Network {
	r := rand.New(rand.NewSource(seed)) // deterministic seed for reproducibility
	nw, err := flow.NewNetwork(V)
	require.NoError(t, err)
	for u := 0; u < V; u++ {
		for v := 0; v < V; v++ {
			if u == v {
				continue
			}
			if r.Float64() < p {
				require.NoError(t, nw.AddEdge(u, v, r.Float64()*maxCap+1.0))
			}
		}
	}

	return nw
}

func TestEdmondsKarp_Textbook(t *testing.T) {
	nw := clrsNetwork(t)
	mf, err := flow.EdmondsKarp(nw, 0, 5, flow.DefaultOptions())
	require.NoError(t, err)
	require.InDelta(t, 23.0, mf, 1e-9)
}

func TestEdmondsKarp_Disconnected(t *testing.T) {
	nw, err := flow.NewNetwork(4)
	require.NoError(t, err)
	require.NoError(t, nw.AddEdge(0, 1, 3))
	require.NoError(t, nw.AddEdge(2, 3, 3))

	mf, err := flow.EdmondsKarp(nw, 0, 3, flow.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 0.0, mf)
}

// TestAlgorithmsAgree cross-checks Dinic and Edmonds–Karp on random networks,
// and checks that the residual source side is a minimum cut for both.
func TestAlgorithmsAgree(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		a := buildRandomNetwork(t, 12, 0.3, 10, seed)
		b := buildRandomNetwork(t, 12, 0.3, 10, seed)

		fa, err := flow.Dinic(a, 0, 11, flow.DefaultOptions())
		require.NoError(t, err)
		fb, err := flow.EdmondsKarp(b, 0, 11, flow.DefaultOptions())
		require.NoError(t, err)
		require.InDelta(t, fa, fb, 1e-6, "seed %d", seed)

		side, err := a.SourceSide(0, flow.DefaultEpsilon)
		require.NoError(t, err)
		require.InDelta(t, fa, a.CutValue(side), 1e-6, "seed %d", seed)
	}
}
