package flow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrSourceNotFound is returned when the source index is outside the network.
var ErrSourceNotFound = fmt.Errorf("flow: %w", errSourceNotFound)
var errSourceNotFound = errors.New("source vertex not found")

// ErrSinkNotFound is returned when the sink index is outside the network.
var ErrSinkNotFound = fmt.Errorf("flow: %w", errSinkNotFound)
var errSinkNotFound = errors.New("sink vertex not found")

// ErrSameEndpoints is returned when source and sink coincide.
var ErrSameEndpoints = errors.New("flow: source and sink must differ")

// ErrVertexRange is returned when an arc endpoint lies outside the network.
var ErrVertexRange = errors.New("flow: vertex index out of range")

// ErrEmptyNetwork is returned when a network with fewer than two vertices is requested.
var ErrEmptyNetwork = errors.New("flow: network needs at least two vertices")

// EdgeError is returned when an arc has a negative or non-finite capacity.
type EdgeError struct {
	From, To int
	Cap      float64
}

func (e EdgeError) Error() string {
	return fmt.Sprintf("flow: invalid capacity on arc %d→%d: %g", e.From, e.To, e.Cap)
}

// DefaultEpsilon is the residual threshold below which an arc counts as saturated.
const DefaultEpsilon = 1e-9

// FlowOptions configures all max-flow algorithms.
//   - Ctx: cancellation; nil means context.Background().
//   - Epsilon: treat residual capacities ≤ Epsilon as zero (default 1e-9).
//   - Logger: if non-nil, each augmentation is logged at debug level.
//   - LevelRebuildInterval: for Dinic, rebuild level graph every N augmentations.
type FlowOptions struct {
	Ctx                  context.Context
	Epsilon              float64
	Logger               *zap.Logger
	LevelRebuildInterval int
}

// DefaultOptions returns production-safe defaults.
func DefaultOptions() FlowOptions {
	return FlowOptions{
		Ctx:     context.Background(),
		Epsilon: DefaultEpsilon,
	}
}

// normalize fills zero-valued fields with defaults.
func (o *FlowOptions) normalize() {
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}
