package qp

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrBadProblem indicates inconsistent problem dimensions or values.
	ErrBadProblem = errors.New("qp: malformed problem")
	// ErrNotConverged indicates the solver hit its iteration cap.
	ErrNotConverged = errors.New("qp: did not converge")
)

// Problem is one master problem instance.
//   - Vectors: δψ_c per constraint, all of the same length.
//   - Loss: Δ_c per constraint.
//   - Groups: owning example of each constraint, in [0, NGroups).
//   - NGroups: number of training examples n.
//   - C: regularization constant (> 0).
//   - Init: optional warm start; negative entries are clipped and
//     over-budget groups rescaled.
type Problem struct {
	Vectors [][]float64
	Loss    []float64
	Groups  []int
	NGroups int
	C       float64
	Init    []float64
}

// Solution is the solver output.
//   - Alpha: dual weight per constraint.
//   - W: primal weights (1/n) Σ α_c δψ_c.
//   - Dual: dual objective value.
//   - Slack: (1/n) Σ_i max(0, max_{c∈i} (Δ_c − w·δψ_c)).
//   - GroupSlack: the per-example terms of Slack.
//   - Gap: final KKT gap in loss units.
type Solution struct {
	Alpha      []float64
	W          []float64
	Dual       float64
	Slack      float64
	GroupSlack []float64
	Iterations int
	Gap        float64
}

// Solver is a master problem backend.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// Defaults (single source of truth).
const (
	DefaultEps     = 1e-6
	DefaultMaxIter = 100000
)

// Options configures the SMO backend.
//   - Eps: KKT gap tolerance in loss units (default 1e-6).
//   - MaxIter: pair updates before ErrNotConverged (default 100000).
//   - Logger: debug summary of every solve; nil means no logging.
type Options struct {
	Eps     float64
	MaxIter int
	Logger  *zap.Logger
}

// DefaultOptions returns production-safe defaults.
func DefaultOptions() Options {
	return Options{Eps: DefaultEps, MaxIter: DefaultMaxIter}
}

func (o *Options) normalize() {
	if o.Eps <= 0 {
		o.Eps = DefaultEps
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}
