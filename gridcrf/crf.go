package gridcrf

import (
	"context"

	"github.com/katalvlaran/ssvm/gridgraph"
	"github.com/katalvlaran/ssvm/inference"
)

// GridCRF is a grid CRF with per-state linear unaries and one symmetric
// pairwise table shared by all edges.
//
// Weight layout:
//
//	w[s·NFeatures + f]                      unary weight of feature f for state s
//	w[NStates·NFeatures + tri(max(a,b), min(a,b))]  pairwise weight for states (a,b)
//
// where tri(a, b) = a(a+1)/2 + b enumerates the lower triangle row by row.
type GridCRF struct {
	opts Options
}

// NewGridCRF validates opts and returns the model.
func NewGridCRF(opts Options) (*GridCRF, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	return &GridCRF{opts: opts}, nil
}

// Options returns the model configuration.
func (m *GridCRF) Options() Options { return m.opts }

// SizePsi returns NStates·NFeatures + NStates·(NStates+1)/2.
func (m *GridCRF) SizePsi() int {
	k := m.opts.NStates
	return k*m.opts.NFeatures + k*(k+1)/2
}

func (m *GridCRF) pairIndex(a, b int) int {
	if a < b {
		a, b = b, a
	}
	return m.opts.NStates*m.opts.NFeatures + a*(a+1)/2 + b
}

// Psi returns the joint feature vector of (x, y).
// Complexity: O(H·W·NFeatures + E).
func (m *GridCRF) Psi(x Image, y Labeling) ([]float64, error) {
	g, err := layout(x, m.opts.NFeatures, m.opts.Conn)
	if err != nil {
		return nil, err
	}
	flat, err := flatten(g, y, m.opts.NStates)
	if err != nil {
		return nil, err
	}
	nf := m.opts.NFeatures
	psi := make([]float64, m.SizePsi())
	for i, s := range flat {
		cx, cy := g.Coordinate(i)
		for f, v := range x[cy][cx] {
			psi[s*nf+f] += v
		}
	}
	edges, _ := g.Edges()
	for _, e := range edges {
		psi[m.pairIndex(flat[e.From], flat[e.To])]++
	}

	return psi, nil
}

// Energy builds the inference problem for x under weights w.
func (m *GridCRF) Energy(x Image, w []float64) (*inference.Energy, error) {
	e, _, err := m.energy(x, w)
	return e, err
}

func (m *GridCRF) energy(x Image, w []float64) (*inference.Energy, *gridgraph.Grid, error) {
	if err := checkWeights(w, m.SizePsi()); err != nil {
		return nil, nil, err
	}
	g, err := layout(x, m.opts.NFeatures, m.opts.Conn)
	if err != nil {
		return nil, nil, err
	}
	k, nf := m.opts.NStates, m.opts.NFeatures
	e := &inference.Energy{NStates: k, Unary: make([][]float64, g.Size())}
	for i := range e.Unary {
		cx, cy := g.Coordinate(i)
		row := make([]float64, k)
		for s := 0; s < k; s++ {
			for f, v := range x[cy][cx] {
				row[s] += w[s*nf+f] * v
			}
		}
		e.Unary[i] = row
	}
	tab := make([]float64, k*k)
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			tab[a*k+b] = w[m.pairIndex(a, b)]
		}
	}
	edges, _ := g.Edges()
	e.Edges = make([][2]int, len(edges))
	e.Pairwise = make([][]float64, len(edges))
	for i, ed := range edges {
		e.Edges[i] = [2]int{ed.From, ed.To}
		e.Pairwise[i] = tab
	}

	return e, g, nil
}

// Loss is the Hamming loss.
func (m *GridCRF) Loss(y, yhat Labeling) float64 { return Hamming(y, yhat) }

// Inference returns the oracle's best labeling of x under w.
func (m *GridCRF) Inference(ctx context.Context, x Image, w []float64, o inference.Oracle) (Labeling, error) {
	e, g, err := m.energy(x, w)
	if err != nil {
		return nil, err
	}
	return solve(ctx, o, e, g)
}

// LossAugmentedInference returns the oracle's best labeling of x under
// w·psi + Hamming(y, ·).
func (m *GridCRF) LossAugmentedInference(ctx context.Context, x Image, y Labeling, w []float64, o inference.Oracle) (Labeling, error) {
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
