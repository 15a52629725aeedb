package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/ssvm/flow"
)

// clrsNetwork builds the textbook six-vertex network whose max flow is 23.
// Vertex 0 is the source, 5 the sink.
func clrsNetwork(t require.TestingT) *flow.Network {
	nw, err := flow.NewNetwork(6)
	require.NoError(t, err)
	arcs := []struct {
		u, v int
		c    float64
	}{
		{0, 1, 16}, {0, 2, 13}, {1, 3, 12}, {2, 1, 4}, {2, 4, 14},
		{3, 2, 9}, {3, 5, 20}, {4, 3, 7}, {4, 5, 4},
	}
	for _, a := range arcs {
		require.NoError(t, nw.AddEdge(a.u, a.v, a.c))
	}

	return nw
}

// DinicSuite exercises the Dinic implementation under various scenarios.
type DinicSuite struct {
	suite.Suite
}

// TestSingleEdge verifies that a single edge yields max flow equal to its capacity.
func (s *DinicSuite) TestSingleEdge() {
	nw, err := flow.NewNetwork(2)
	require.NoError(s.T(), err)
	require.NoError(s.T(), nw.AddEdge(0, 1, 7))

	mf, err := flow.Dinic(nw, 0, 1, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 7.0, mf)

	side, err := nw.SourceSide(0, flow.DefaultEpsilon)
	require.NoError(s.T(), err)
	require.Equal(s.T(), []bool{true, false}, side, "forward arc should be saturated")
}

// TestMultiPath verifies max flow on two disjoint paths.
func (s *DinicSuite) TestMultiPath() {
	nw, err := flow.NewNetwork(3)
	require.NoError(s.T(), err)
	// Path1: 0→1 (5)
	require.NoError(s.T(), nw.AddEdge(0, 1, 5))
	// Path2: 0→2 (4) → 2→1 (3)
	require.NoError(s.T(), nw.AddEdge(0, 2, 4))
	require.NoError(s.T(), nw.AddEdge(2, 1, 3))

	mf, err := flow.Dinic(nw, 0, 1, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 8.0, mf) // 5 + 3
}

// TestTextbookNetwork checks the classic 23-unit instance and that the
// residual source side is a cut of the same value.
func (s *DinicSuite) TestTextbookNetwork() {
	nw := clrsNetwork(s.T())
	mf, err := flow.Dinic(nw, 0, 5, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.InDelta(s.T(), 23.0, mf, 1e-9)

	side, err := nw.SourceSide(0, flow.DefaultEpsilon)
	require.NoError(s.T(), err)
	require.True(s.T(), side[0])
	require.False(s.T(), side[5])
	require.InDelta(s.T(), mf, nw.CutValue(side), 1e-9)
}

// TestBiEdge verifies that paired arcs carry flow in either direction.
func (s *DinicSuite) TestBiEdge() {
	nw, err := flow.NewNetwork(3)
	require.NoError(s.T(), err)
	require.NoError(s.T(), nw.AddEdge(0, 1, 10))
	require.NoError(s.T(), nw.AddBiEdge(1, 2, 3, 6))

	mf, err := flow.Dinic(nw, 0, 2, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 3.0, mf)

	nw.Reset()
	mf, err = flow.Dinic(nw, 2, 0, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0.0, mf, "0 has no incoming arc")
}

// TestZeroCapacity ensures that zero-capacity edges yield zero flow.
func (s *DinicSuite) TestZeroCapacity() {
	nw, err := flow.NewNetwork(2)
	require.NoError(s.T(), err)
	require.NoError(s.T(), nw.AddEdge(0, 1, 0))

	mf, err := flow.Dinic(nw, 0, 1, flow.DefaultOptions())
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0.0, mf)
}

// TestLevelRebuildInterval ensures frequent level rebuilds do not change the answer.
func (s *DinicSuite) TestLevelRebuildInterval() {
	nw := clrsNetwork(s.T())
	opts := flow.DefaultOptions()
	opts.LevelRebuildInterval = 1
	mf, err := flow.Dinic(nw, 0, 5, opts)
	require.NoError(s.T(), err)
	require.InDelta(s.T(), 23.0, mf, 1e-9)
}

// TestErrors verifies sentinel errors for bad endpoints and capacities.
func (s *DinicSuite) TestErrors() {
	_, err := flow.NewNetwork(1)
	require.ErrorIs(s.T(), err, flow.ErrEmptyNetwork)

	nw, err := flow.NewNetwork(2)
	require.NoError(s.T(), err)

	_, err = flow.Dinic(nw, -1, 1, flow.DefaultOptions())
	require.ErrorIs(s.T(), err, flow.ErrSourceNotFound)
	_, err = flow.Dinic(nw, 0, 2, flow.DefaultOptions())
	require.ErrorIs(s.T(), err, flow.ErrSinkNotFound)
	_, err = flow.Dinic(nw, 1, 1, flow.DefaultOptions())
	require.ErrorIs(s.T(), err, flow.ErrSameEndpoints)

	require.ErrorIs(s.T(), nw.AddEdge(0, 5, 1), flow.ErrVertexRange)

	err = nw.AddEdge(0, 1, -2)
	var ee flow.EdgeError
	require.True(s.T(), errors.As(err, &ee))
	require.Equal(s.T(), 0, ee.From)
	require.Equal(s.T(), 1, ee.To)
}

// TestContextCancellation verifies that a canceled context aborts the run.
func (s *DinicSuite) TestContextCancellation() {
	nw := clrsNetwork(s.T())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := flow.DefaultOptions()
	opts.Ctx = ctx
	_, err := flow.Dinic(nw, 0, 5, opts)
	require.ErrorIs(s.T(), err, context.Canceled)
}

func TestDinicSuite(t *testing.T) {
	suite.Run(t, new(DinicSuite))
}
