package learner

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/ssvm/inference"
)

var (
	// ErrNoExamples indicates an empty training set.
	ErrNoExamples = errors.New("learner: no training examples")
	// ErrInvalidConfig indicates a configuration that fails validation.
	ErrInvalidConfig = errors.New("learner: invalid configuration")
	// ErrDimensionMismatch indicates a vector whose length differs from SizePsi.
	ErrDimensionMismatch = errors.New("learner: dimension mismatch")
	// ErrSolverFailed indicates a fatal master problem failure.
	ErrSolverFailed = errors.New("learner: master solver failed")
	// ErrNoWarmStart indicates a Result that cannot seed Resume.
	ErrNoWarmStart = errors.New("learner: result cannot be resumed")
	// ErrInvalidTransition indicates an event that the current state does not accept.
	ErrInvalidTransition = errors.New("learner: invalid state transition")
)

// Model is the capability contract of a structured model over inputs X and
// labelings Y.
//
// Psi must return SizePsi() values for every (x, y). Loss must be ≥ 0 and
// zero iff the labelings are equal. LossAugmentedInference must return a
// labeling whose w·psi + loss is at least that of the true labeling; the
// guarantee is certified only when the oracle's Mode is inference.Exact.
type Model[X, Y any] interface {
	SizePsi() int
	Psi(x X, y Y) ([]float64, error)
	Loss(y, yhat Y) float64
	Inference(ctx context.Context, x X, w []float64, o inference.Oracle) (Y, error)
	LossAugmentedInference(ctx context.Context, x X, y Y, w []float64, o inference.Oracle) (Y, error)
}

// Example is one immutable training pair.
type Example[X, Y any] struct {
	X X
	Y Y
}

// Config holds the learner options.
//   - C: regularization strength (> 0).
//   - MaxIter: pass cap (≥ 1).
//   - Tol: violation tolerance (≥ 0).
//   - NJobs: worker count; values < 1 mean all available CPUs.
//   - InferenceCache: per-example working-set capacity (≥ 1).
//   - InactiveWindow: passes a constraint may stay inactive before pruning (≥ 0).
//   - InferenceMethod: oracle used first.
//   - SwitchTo: exact oracle used after the switch; empty means InferenceMethod
//     when that is exact.
//   - StartExact: skip the approximate phase.
//   - CheckConstraints: re-solve the master problem even on passes that add nothing.
//   - ShowLossEvery: compute the exact training loss every N passes (0 disables).
//   - Verbose: 0 quiet, 1 per-pass info, 2 failures/evictions/pruning, 3 per-example violations.
//   - InactiveThreshold: dual weight above which a constraint counts as active.
//   - SolverEps, SolverMaxIter: master solver tolerance and iteration cap.
type Config struct {
	C                 float64          `mapstructure:"c" yaml:"c"`
	MaxIter           int              `mapstructure:"max_iter" yaml:"max_iter"`
	Tol               float64          `mapstructure:"tol" yaml:"tol"`
	NJobs             int              `mapstructure:"n_jobs" yaml:"n_jobs"`
	InferenceCache    int              `mapstructure:"inference_cache" yaml:"inference_cache"`
	InactiveWindow    int              `mapstructure:"inactive_window" yaml:"inactive_window"`
	InferenceMethod   inference.Method `mapstructure:"inference_method" yaml:"inference_method"`
	SwitchTo          inference.Method `mapstructure:"switch_to" yaml:"switch_to"`
	StartExact        bool             `mapstructure:"start_exact" yaml:"start_exact"`
	CheckConstraints  bool             `mapstructure:"check_constraints" yaml:"check_constraints"`
	ShowLossEvery     int              `mapstructure:"show_loss_every" yaml:"show_loss_every"`
	Verbose           int              `mapstructure:"verbose" yaml:"verbose"`
	InactiveThreshold float64          `mapstructure:"inactive_threshold" yaml:"inactive_threshold"`
	SolverEps         float64          `mapstructure:"solver_eps" yaml:"solver_eps"`
	SolverMaxIter     int              `mapstructure:"solver_max_iter" yaml:"solver_max_iter"`
}

// DefaultConfig returns the settings of the reference exact-learning run:
// C 1, 1000 passes, tol 1e-3, all CPUs, 100 cached constraints per example,
// a 50-pass inactivity window, re-solving on every pass and the training
// loss every 10 passes. The graph-cut and branch-and-bound oracles stand in
// for that run's QPBO and AD3 branch-and-bound.
func DefaultConfig() Config {
	return Config{
		C:                 1,
		MaxIter:           1000,
		Tol:               1e-3,
		NJobs:             -1,
		InferenceCache:    100,
		InactiveWindow:    50,
		InferenceMethod:   inference.MethodGraphCut,
		SwitchTo:          inference.MethodBranchAndBound,
		CheckConstraints:  true,
		ShowLossEvery:     10,
		InactiveThreshold: 1e-10,
		SolverEps:         1e-6,
		SolverMaxIter:     100000,
	}
}

// Validate checks ranges and the oracle selection.
// Every failure wraps ErrInvalidConfig.
func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}
	switch {
	case !(c.C > 0) || math.IsInf(c.C, 0):
		return fail("C must be positive and finite, got %g", c.C)
	case c.MaxIter < 1:
		return fail("max_iter must be ≥ 1, got %d", c.MaxIter)
	case !(c.Tol >= 0):
		return fail("tol must be ≥ 0, got %g", c.Tol)
	case c.InferenceCache < 1:
		return fail("inference_cache must be ≥ 1, got %d", c.InferenceCache)
	case c.InactiveWindow < 0:
		return fail("inactive_window must be ≥ 0, got %d", c.InactiveWindow)
	case c.ShowLossEvery < 0:
		return fail("show_loss_every must be ≥ 0, got %d", c.ShowLossEvery)
	case !(c.InactiveThreshold >= 0):
		return fail("inactive_threshold must be ≥ 0, got %g", c.InactiveThreshold)
	case c.SolverEps < 0 || c.SolverMaxIter < 0:
		return fail("solver settings must be non-negative")
	}
	if _, err := c.InferenceMethod.Family(); err != nil {
		return fail("inference_method: %v", err)
	}
	if _, err := c.exactMethod(); err != nil {
		return fail("%v", err)
	}

	return nil
}

// exactMethod resolves the oracle used in the exact phase.
func (c Config) exactMethod() (inference.Method, error) {
	if c.SwitchTo != "" {
		mode, err := c.SwitchTo.Family()
		if err != nil {
			return "", fmt.Errorf("switch_to: %w", err)
		}
		if mode != inference.Exact {
			return "", fmt.Errorf("switch_to %q is not an exact method", c.SwitchTo)
		}
		return c.SwitchTo, nil
	}
	if mode, _ := c.InferenceMethod.Family(); mode == inference.Exact {
		return c.InferenceMethod, nil
	}

	return "", fmt.Errorf("inference_method %q is approximate and switch_to is empty", c.InferenceMethod)
}

// Objective is one ObjectiveHistory entry, appended after every master solve.
// Primal is estimated at the weights the pass's oracle calls used; Dual is
// the master problem value after the solve.
type Objective struct {
	Iteration int     `yaml:"iteration"`
	Primal    float64 `yaml:"primal"`
	Dual      float64 `yaml:"dual"`
	Slack     float64 `yaml:"slack"`
}

// LossPoint is one diagnostic training-loss measurement.
type LossPoint struct {
	Iteration int     `yaml:"iteration"`
	Loss      float64 `yaml:"loss"`
}

// PassStats summarizes one pass.
type PassStats struct {
	Iteration int            `yaml:"iteration"`
	Mode      inference.Mode `yaml:"mode"`
	Added     int            `yaml:"added"`
	Skipped   int            `yaml:"skipped"`
	Evicted   int            `yaml:"evicted"`
	Pruned    int            `yaml:"pruned"`
	Solved    bool           `yaml:"solved"`
}

// Result is the outcome of Fit. On fatal errors it carries the best-effort
// weights reached so far. ExampleSlack holds the per-example slacks of the
// latest master solve. A Result also keeps its run's working set for Resume.
type Result struct {
	RunID            string         `yaml:"run_id"`
	State            State          `yaml:"state"`
	Mode             inference.Mode `yaml:"mode"`
	Weights          []float64      `yaml:"weights"`
	Slack            float64        `yaml:"slack"`
	Dual             float64        `yaml:"dual"`
	Primal           float64        `yaml:"primal"`
	History          []Objective    `yaml:"history"`
	LossCurve        []LossPoint    `yaml:"loss_curve,omitempty"`
	Passes           []PassStats    `yaml:"passes"`
	Iterations       int            `yaml:"iterations"`
	ConstraintsAdded int            `yaml:"constraints_added"`
	SwitchIteration  int            `yaml:"switch_iteration"`
	Skipped          int            `yaml:"skipped"`
	CacheSize        int            `yaml:"cache_size"`
	ExampleSlack     []float64      `yaml:"example_slack"`

	warm any // *warmStart[Y]
}
