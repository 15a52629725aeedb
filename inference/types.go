package inference

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for inference operations.
var (
	// ErrUnknownMethod indicates a method identifier outside the closed set.
	ErrUnknownMethod = errors.New("inference: unknown method")
	// ErrBadEnergy indicates a malformed energy.
	ErrBadEnergy = errors.New("inference: malformed energy")
	// ErrNodeLimit indicates branch-and-bound ran out of its node budget.
	ErrNodeLimit = errors.New("inference: node limit exceeded")
	// ErrProblemTooLarge indicates the labeling space is too large to enumerate.
	ErrProblemTooLarge = errors.New("inference: problem too large for enumeration")
)

// Mode is the oracle family: approximate or exact.
type Mode int

const (
	// Approximate oracles return local optima (undergenerating).
	Approximate Mode = iota
	// Exact oracles return global optima up to tolerance.
	Exact
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case Approximate:
		return "approximate"
	case Exact:
		return "exact"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// Method identifies a concrete oracle.
type Method string

const (
	// MethodICM selects iterated conditional modes (approximate).
	MethodICM Method = "icm"
	// MethodGraphCut selects alpha-expansion via s-t min cuts (approximate).
	MethodGraphCut Method = "graphcut"
	// MethodBranchAndBound selects exact branch-and-bound search.
	MethodBranchAndBound Method = "bb"
	// MethodExhaustive selects exact enumeration.
	MethodExhaustive Method = "exhaustive"
)

// Methods lists the closed set in canonical order.
func Methods() []Method {
	return []Method{MethodICM, MethodGraphCut, MethodBranchAndBound, MethodExhaustive}
}

// Family reports the Mode a method belongs to.
// Returns ErrUnknownMethod for identifiers outside the closed set.
func (m Method) Family() (Mode, error) {
	switch m {
	case MethodICM, MethodGraphCut:
		return Approximate, nil
	case MethodBranchAndBound, MethodExhaustive:
		return Exact, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, string(m))
	}
}

// FlowAlgorithm selects the max-flow routine behind MethodGraphCut.
type FlowAlgorithm int

const (
	// FlowDinic uses flow.Dinic.
	FlowDinic FlowAlgorithm = iota
	// FlowEdmondsKarp uses flow.EdmondsKarp.
	FlowEdmondsKarp
)

// Defaults (single source of truth).
const (
	DefaultMaxSweeps        = 100
	DefaultEpsilon          = 1e-9
	DefaultMaxEnumeration   = 1 << 20
	DefaultNodeLimit        = 10000
	DefaultGap              = 1e-8
	DefaultDualIterations   = 100
	DefaultBranchIterations = 15
	DefaultDualStep         = 0.9
)

// Options configures oracle construction.
//   - MaxSweeps: ICM sweeps / expansion cycles before giving up improving (default 100).
//   - Epsilon: minimum score improvement to accept a move or a new incumbent (default 1e-9).
//   - NodeLimit: branch-and-bound node budget (default 10000); negative means unlimited.
//   - Gap: relative gap at which branch-and-bound prunes a subtree,
//     bound ≤ best + Gap·max(1, |best|) (default 1e-8).
//   - DualIterations: subgradient steps on the decomposition bound at the root (default 100).
//   - BranchIterations: subgradient steps at every other search node (default 15).
//   - DualStep: subgradient step scale α in (0, 2) (default 0.9).
//   - MaxEnumeration: largest K^n that MethodExhaustive accepts (default 1<<20).
//   - Flow: max-flow routine for MethodGraphCut.
type Options struct {
	MaxSweeps        int
	Epsilon          float64
	NodeLimit        int
	Gap              float64
	DualIterations   int
	BranchIterations int
	DualStep         float64
	MaxEnumeration   int
	Flow             FlowAlgorithm
}

// DefaultOptions returns production-safe defaults.
func DefaultOptions() Options {
	return Options{
		MaxSweeps:        DefaultMaxSweeps,
		Epsilon:          DefaultEpsilon,
		NodeLimit:        DefaultNodeLimit,
		Gap:              DefaultGap,
		DualIterations:   DefaultDualIterations,
		BranchIterations: DefaultBranchIterations,
		DualStep:         DefaultDualStep,
		MaxEnumeration:   DefaultMaxEnumeration,
		Flow:             FlowDinic,
	}
}

// normalize fills zero-valued fields with defaults.
func (o *Options) normalize() {
	if o.MaxSweeps <= 0 {
		o.MaxSweeps = DefaultMaxSweeps
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.NodeLimit == 0 {
		o.NodeLimit = DefaultNodeLimit
	}
	if o.Gap <= 0 {
		o.Gap = DefaultGap
	}
	if o.DualIterations <= 0 {
		o.DualIterations = DefaultDualIterations
	}
	if o.BranchIterations <= 0 {
		o.BranchIterations = DefaultBranchIterations
	}
	if o.DualStep <= 0 || o.DualStep >= 2 {
		o.DualStep = DefaultDualStep
	}
	if o.MaxEnumeration <= 0 {
		o.MaxEnumeration = DefaultMaxEnumeration
	}
}

// Oracle maximizes the score of an Energy.
// Implementations must be safe for concurrent use.
type Oracle interface {
	// Method returns the oracle's identifier.
	Method() Method
	// Mode returns the oracle's family.
	Mode() Mode
	// Solve returns a labeling with one state per node.
	Solve(ctx context.Context, e *Energy) ([]int, error)
}

// New constructs the oracle named by method.
// Returns ErrUnknownMethod for identifiers outside the closed set.
func New(method Method, opts Options) (Oracle, error) {
	opts.normalize()
	switch method {
	case MethodICM:
		return &icm{opts: opts}, nil
	case MethodGraphCut:
		return &graphCut{opts: opts}, nil
	case MethodBranchAndBound:
		return &branchAndBound{opts: opts}, nil
	case MethodExhaustive:
		return &exhaustive{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, string(method))
	}
}
