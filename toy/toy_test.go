package toy_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/toy"
)

func TestBlocks_Deterministic(t *testing.T) {
	opts := toy.Options{NSamples: 4, Height: 5, Width: 6, BlockSize: 2, Noise: 0.5, Seed: 42}
	a, err := toy.Blocks(opts)
	require.NoError(t, err)
	b, err := toy.Blocks(opts)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different datasets (-a +b):\n%s", diff)
	}

	// a prefix of a larger dataset is the same dataset
	opts.NSamples = 6
	c, err := toy.Blocks(opts)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(a.Y, c.Y[:4]))
}

func TestBlocksMultinomial_Structure(t *testing.T) {
	opts := toy.Options{NSamples: 3, Height: 4, Width: 5, BlockSize: 2, NStates: 3, Noise: 0, Seed: 7}
	ds, err := toy.BlocksMultinomial(opts)
	require.NoError(t, err)
	require.Len(t, ds.X, 3)
	require.Len(t, ds.Y, 3)
	for i := range ds.Y {
		require.Len(t, ds.Y[i], 4)
		for r := range ds.Y[i] {
			require.Len(t, ds.Y[i][r], 5)
			for c, s := range ds.Y[i][r] {
				require.GreaterOrEqual(t, s, 0)
				require.Less(t, s, 3)
				// constant inside a block
				require.Equal(t, ds.Y[i][r-r%2][c-c%2], s)
				// noise-free evidence is one-hot
				want := make([]float64, 3)
				want[s] = 1
				require.Equal(t, want, ds.X[i][r][c])
			}
		}
	}
}

func TestOptionsErrors(t *testing.T) {
	bad := []toy.Options{
		{},
		{NSamples: 1, Height: 2, Width: 2, BlockSize: 0, NStates: 2},
		{NSamples: 1, Height: 2, Width: 2, BlockSize: 1, NStates: 1},
		{NSamples: 1, Height: 2, Width: 2, BlockSize: 1, NStates: 2, Noise: -1},
	}
	for _, o := range bad {
		_, err := toy.BlocksMultinomial(o)
		require.ErrorIs(t, err, toy.ErrOptions)
	}
	ds, err := toy.BlocksMultinomial(toy.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, ds.X, 20)
}
