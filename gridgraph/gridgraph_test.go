package gridgraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssvm/gridgraph"
)

//----------------------------------------------------------------------------//
// New and InBounds Tests
//----------------------------------------------------------------------------//

// TestNew_Errors verifies that New rejects empty shapes and unknown connectivity.
func TestNew_Errors(t *testing.T) {
	cases := []struct {
		name string
		h, w int
		opts gridgraph.Options
		err  error
	}{
		{"EmptyRows", 0, 3, gridgraph.DefaultOptions(), gridgraph.ErrEmptyGrid},
		{"EmptyCols", 3, 0, gridgraph.DefaultOptions(), gridgraph.ErrEmptyGrid},
		{"BadConn", 2, 2, gridgraph.Options{Conn: 7}, gridgraph.ErrConnectivity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := gridgraph.New(tc.h, tc.w, tc.opts)
			if !errors.Is(err, tc.err) {
				t.Errorf("New(%d,%d) error = %v; want %v", tc.h, tc.w, err, tc.err)
			}
		})
	}
}

// TestInBounds checks InBounds on a 3×2 grid.
func TestInBounds(t *testing.T) {
	g, err := gridgraph.New(2, 3, gridgraph.DefaultOptions())
	require.NoError(t, err)

	valid := [][2]int{{0, 0}, {2, 1}, {1, 1}}
	for _, xy := range valid {
		if !g.InBounds(xy[0], xy[1]) {
			t.Errorf("InBounds(%d,%d)=false; want true", xy[0], xy[1])
		}
	}
	invalid := [][2]int{{-1, 0}, {3, 0}, {1, 2}, {2, -1}}
	for _, xy := range invalid {
		if g.InBounds(xy[0], xy[1]) {
			t.Errorf("InBounds(%d,%d)=true; want false", xy[0], xy[1])
		}
	}
}

// TestIndexCoordinateRoundTrip verifies row-major numbering.
func TestIndexCoordinateRoundTrip(t *testing.T) {
	g, err := gridgraph.New(3, 4, gridgraph.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 12, g.Size())
	require.Equal(t, 6, g.Index(2, 1))
	for i := 0; i < g.Size(); i++ {
		x, y := g.Coordinate(i)
		require.Equal(t, i, g.Index(x, y))
	}
}

func TestShape(t *testing.T) {
	rows := [][]int{{1, 2, 3}, {4, 5, 6}}
	h, w, err := gridgraph.Shape(len(rows), func(y int) int { return len(rows[y]) })
	require.NoError(t, err)
	require.Equal(t, 2, h)
	require.Equal(t, 3, w)

	ragged := [][]int{{1, 2}, {3}}
	_, _, err = gridgraph.Shape(len(ragged), func(y int) int { return len(ragged[y]) })
	require.ErrorIs(t, err, gridgraph.ErrNonRectangular)

	_, _, err = gridgraph.Shape(0, func(int) int { return 0 })
	require.ErrorIs(t, err, gridgraph.ErrEmptyGrid)
}

//----------------------------------------------------------------------------//
// Edge enumeration
//----------------------------------------------------------------------------//

// TestEdges_Conn4 checks edge counts and orientation on a 3×3 grid.
func TestEdges_Conn4(t *testing.T) {
	g, err := gridgraph.New(3, 3, gridgraph.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []gridgraph.EdgeKind{gridgraph.Right, gridgraph.Down}, g.Kinds())

	edges, counts := g.Edges()
	require.Equal(t, []int{6, 6}, counts)
	require.Len(t, edges, 12)
	require.Equal(t, gridgraph.Edge{From: 0, To: 1}, edges[0])
	require.Equal(t, gridgraph.Edge{From: 0, To: 3}, edges[6])
	require.Nil(t, g.EdgesByKind(gridgraph.UpRight))
}

// TestEdges_Conn8 checks that diagonals are added with the documented orientation.
func TestEdges_Conn8(t *testing.T) {
	g, err := gridgraph.New(3, 3, gridgraph.Options{Conn: gridgraph.Conn8})
	require.NoError(t, err)
	require.Equal(t, 8, g.Conn.Neighborhood())

	edges, counts := g.Edges()
	require.Equal(t, []int{6, 6, 4, 4}, counts)
	require.Len(t, edges, 20)

	up := g.EdgesByKind(gridgraph.UpRight)
	// (x=0,y=1) → (x=1,y=0)
	require.Equal(t, gridgraph.Edge{From: 3, To: 1}, up[0])
	down := g.EdgesByKind(gridgraph.DownRight)
	require.Equal(t, gridgraph.Edge{From: 0, To: 4}, down[0])

	// every neighbor pair appears once
	seen := map[[2]int]bool{}
	for _, e := range edges {
		a, b := e.From, e.To
		if a > b {
			a, b = b, a
		}
		require.False(t, seen[[2]int{a, b}], "duplicate edge %v", e)
		seen[[2]int{a, b}] = true
	}
}
