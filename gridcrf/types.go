package gridcrf

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/ssvm/gridgraph"
	"github.com/katalvlaran/ssvm/inference"
)

var (
	// ErrShape indicates mismatched or ragged image/labeling shapes.
	ErrShape = errors.New("gridcrf: shape mismatch")
	// ErrState indicates a label outside the state range.
	ErrState = errors.New("gridcrf: state out of range")
	// ErrWeights indicates a weight vector of the wrong length.
	ErrWeights = errors.New("gridcrf: weight length mismatch")
	// ErrConfig indicates invalid model parameters.
	ErrConfig = errors.New("gridcrf: invalid model configuration")
)

// Image is an H×W grid of feature vectors: Image[y][x][f].
type Image [][][]float64

// Labeling assigns a state to every cell: Labeling[y][x].
type Labeling [][]int

// Options configures a grid model.
//   - NStates: number of states per cell (≥ 2).
//   - NFeatures: features per cell (≥ 1); DirectionalGridCRF requires NFeatures == NStates.
//   - Conn: neighborhood used to build pairwise edges (default 4-connectivity).
type Options struct {
	NStates   int
	NFeatures int
	Conn      gridgraph.Connectivity
}

// DefaultOptions returns a binary model with one feature per state and 4-connectivity.
func DefaultOptions() Options {
	return Options{NStates: 2, NFeatures: 2, Conn: gridgraph.Conn4}
}

func (o Options) validate() error {
	if o.NStates < 2 {
		return fmt.Errorf("%w: NStates=%d", ErrConfig, o.NStates)
	}
	if o.NFeatures < 1 {
		return fmt.Errorf("%w: NFeatures=%d", ErrConfig, o.NFeatures)
	}
	if o.Conn != gridgraph.Conn4 && o.Conn != gridgraph.Conn8 {
		return fmt.Errorf("%w: %v", ErrConfig, gridgraph.ErrConnectivity)
	}

	return nil
}

// layout validates x against the feature count and returns its grid.
func layout(x Image, nFeatures int, conn gridgraph.Connectivity) (*gridgraph.Grid, error) {
	h, w, err := gridgraph.Shape(len(x), func(y int) int { return len(x[y]) })
	if err != nil {
		return nil, fmt.Errorf("%w: image: %v", ErrShape, err)
	}
	for r := range x {
		for c := range x[r] {
			if len(x[r][c]) != nFeatures {
				return nil, fmt.Errorf("%w: cell (%d,%d) has %d features, want %d",
					ErrShape, c, r, len(x[r][c]), nFeatures)
			}
		}
	}

	return gridgraph.New(h, w, gridgraph.Options{Conn: conn})
}

// flatten checks y against g and returns it in row-major order.
func flatten(g *gridgraph.Grid, y Labeling, nStates int) ([]int, error) {
	if len(y) != g.Height {
		return nil, fmt.Errorf("%w: labeling has %d rows, want %d", ErrShape, len(y), g.Height)
	}
	out := make([]int, 0, g.Size())
	for r := range y {
		if len(y[r]) != g.Width {
			return nil, fmt.Errorf("%w: labeling row %d has %d cells, want %d", ErrShape, r, len(y[r]), g.Width)
		}
		for _, s := range y[r] {
			if s < 0 || s >= nStates {
				return nil, fmt.Errorf("%w: %d", ErrState, s)
			}
			out = append(out, s)
		}
	}

	return out, nil
}

// reshape turns a row-major labeling back into a grid.
func reshape(g *gridgraph.Grid, flat []int) Labeling {
	out := make(Labeling, g.Height)
	for r := range out {
		out[r] = append([]int(nil), flat[r*g.Width:(r+1)*g.Width]...)
	}

	return out
}

// Hamming counts the cells where y and yhat differ. Shapes are assumed equal;
// extra cells in either argument count as differences.
func Hamming(y, yhat Labeling) float64 {
	var d int
	for r := 0; r < len(y) || r < len(yhat); r++ {
		if r >= len(y) || r >= len(yhat) {
			d += max(rowLen(y, r), rowLen(yhat, r))
			continue
		}
		a, b := y[r], yhat[r]
		for c := 0; c < len(a) || c < len(b); c++ {
			if c >= len(a) || c >= len(b) || a[c] != b[c] {
				d++
			}
		}
	}

	return float64(d)
}

func rowLen(y Labeling, r int) int {
	if r < len(y) {
		return len(y[r])
	}

	return 0
}

// augment adds the Hamming loss to e's unaries: +1 on every state that
// differs from the true one.
func augment(e *inference.Energy, truth []int) {
	for i, row := range e.Unary {
		for s := range row {
			if s != truth[i] {
				row[s]++
			}
		}
	}
}

func checkWeights(w []float64, size int) error {
	if len(w) != size {
		return fmt.Errorf("%w: got %d, want %d", ErrWeights, len(w), size)
	}

	return nil
}

// solve runs the oracle and reshapes its answer to g.
func solve(ctx context.Context, o inference.Oracle, e *inference.Energy, g *gridgraph.Grid) (Labeling, error) {
	flat, err := o.Solve(ctx, e)
	if err != nil {
		return nil, err
	}

	return reshape(g, flat), nil
}
