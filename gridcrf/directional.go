package gridcrf

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ssvm/gridgraph"
	"github.com/katalvlaran/ssvm/inference"
)

// DirectionalGridCRF scores each state by one weight times the matching
// feature and learns a separate, unconstrained pairwise table for every edge
// direction of the grid (2 under 4-connectivity, 4 under 8-connectivity).
//
// Weight layout:
//
//	w[s]                          unary weight of state s
//	w[NStates + t·K² + a·K + b]    direction t, From state a, To state b
type DirectionalGridCRF struct {
	opts  Options
	kinds int
}

// NewDirectionalGridCRF validates opts and returns the model.
// NFeatures must equal NStates.
func NewDirectionalGridCRF(opts Options) (*DirectionalGridCRF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.NFeatures != opts.NStates {
		return nil, fmt.Errorf("%w: directional model needs NFeatures == NStates, got %d and %d",
			ErrConfig, opts.NFeatures, opts.NStates)
	}
	kinds := 2
	if opts.Conn == gridgraph.Conn8 {
		kinds = 4
	}

	return &DirectionalGridCRF{opts: opts, kinds: kinds}, nil
}

// Options returns the model configuration.
func (m *DirectionalGridCRF) Options() Options { return m.opts }

// SizePsi returns NStates + directions·NStates².
func (m *DirectionalGridCRF) SizePsi() int {
	k := m.opts.NStates
	return k + m.kinds*k*k
}

// directions labels every edge with the index of its kind.
func directions(counts []int) []int {
	var out []int
	for t, c := range counts {
		for j := 0; j < c; j++ {
			out = append(out, t)
		}
	}

	return out
}

// Psi returns the joint feature vector of (x, y).
// Complexity: O(H·W + E).
func (m *DirectionalGridCRF) Psi(x Image, y Labeling) ([]float64, error) {
	g, err := layout(x, m.opts.NFeatures, m.opts.Conn)
	if err != nil {
		return nil, err
	}
	flat, err := flatten(g, y, m.opts.NStates)
	if err != nil {
		return nil, err
	}
	k := m.opts.NStates
	psi := make([]float64, m.SizePsi())
	for i, s := range flat {
		cx, cy := g.Coordinate(i)
		psi[s] += x[cy][cx][s]
	}
	edges, counts := g.Edges()
	dir := directions(counts)
	for i, e := range edges {
		psi[k+dir[i]*k*k+flat[e.From]*k+flat[e.To]]++
	}

	return psi, nil
}

// Energy builds the inference problem for x under weights w.
func (m *DirectionalGridCRF) Energy(x Image, w []float64) (*inference.Energy, error) {
	e, _, err := m.energy(x, w)
	return e, err
}

func (m *DirectionalGridCRF) energy(x Image, w []float64) (*inference.Energy, *gridgraph.Grid, error) {
	if err := checkWeights(w, m.SizePsi()); err != nil {
		return nil, nil, err
	}
	g, err := layout(x, m.opts.NFeatures, m.opts.Conn)
	if err != nil {
		return nil, nil, err
	}
	k := m.opts.NStates
	e := &inference.Energy{NStates: k, Unary: make([][]float64, g.Size())}
	for i := range e.Unary {
		cx, cy := g.Coordinate(i)
		row := make([]float64, k)
		for s := range row {
			row[s] = w[s] * x[cy][cx][s]
		}
		e.Unary[i] = row
	}
	edges, counts := g.Edges()
	dir := directions(counts)
	e.Edges = make([][2]int, len(edges))
	e.Pairwise = make([][]float64, len(edges))
	for i, ed := range edges {
		off := k + dir[i]*k*k
		e.Edges[i] = [2]int{ed.From, ed.To}
		e.Pairwise[i] = w[off : off+k*k : off+k*k]
	}

	return e, g, nil
}

// Loss is the Hamming loss.
func (m *DirectionalGridCRF) Loss(y, yhat Labeling) float64 { return Hamming(y, yhat) }

// Inference returns the oracle's best labeling of x under w.
func (m *DirectionalGridCRF) Inference(ctx context.Context, x Image, w []float64, o inference.Oracle) (Labeling, error) {
	e, g, err := m.energy(x, w)
	if err != nil {
		return nil, err
	}
	return solve(ctx, o, e, g)
}

// LossAugmentedInference returns the oracle's best labeling of x under
// w·psi + Hamming(y, ·).
func (m *DirectionalGridCRF) LossAugmentedInference(ctx context.Context, x Image, y Labeling, w []float64, o inference.Oracle) (Labeling, error) {
	e, g, err := m.energy(x, w)
	if err != nil {
		return nil, err
	}
	truth, err := flatten(g, y, m.opts.NStates)
	if err != nil {
		return nil, err
	}
	augment(e, truth)

	return solve(ctx, o, e, g)
}
