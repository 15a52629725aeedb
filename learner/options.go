package learner

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/ssvm/inference"
	"github.com/katalvlaran/ssvm/metrics"
	"github.com/katalvlaran/ssvm/qp"
)

// settings collects the collaborators set through Options.
type settings struct {
	logger     *zap.Logger
	recorder   *metrics.Recorder
	solver     qp.Solver
	oracleOpts inference.Options
}

// Option customizes a Learner.
type Option func(*settings)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder exports metrics through r.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithSolver replaces the default SMO master solver.
func WithSolver(q qp.Solver) Option {
	return func(s *settings) {
		if q != nil {
			s.solver = q
		}
	}
}

// WithOracleOptions sets the options used to construct both oracles.
func WithOracleOptions(o inference.Options) Option {
	return func(s *settings) { s.oracleOpts = o }
}
