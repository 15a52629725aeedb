package learner

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/ssvm/inference"
	"github.com/katalvlaran/ssvm/metrics"
	"github.com/katalvlaran/ssvm/qp"
	"github.com/katalvlaran/ssvm/workingset"
)

var tracer = otel.Tracer("github.com/katalvlaran/ssvm/learner")

// Learner trains weights for a Model. A Learner may run several Fit calls,
// but not concurrently.
type Learner[X, Y any] struct {
	model    Model[X, Y]
	cfg      Config
	logger   *zap.Logger
	recorder *metrics.Recorder
	solver   qp.Solver

	first       inference.Oracle // oracle of the first phase
	exact       inference.Oracle
	startsExact bool
	workers     int
}

// New validates cfg, builds the oracles and returns a Learner.
func New[X, Y any](model Model[X, Y], cfg Config, opts ...Option) (*Learner[X, Y], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil || model.SizePsi() < 1 {
		return nil, fmt.Errorf("%w: model must report a positive SizePsi", ErrInvalidConfig)
	}
	s := settings{logger: zap.NewNop(), oracleOpts: inference.DefaultOptions()}
	for _, o := range opts {
		o(&s)
	}
	if s.solver == nil {
		s.solver = qp.NewSMO(qp.Options{Eps: cfg.SolverEps, MaxIter: cfg.SolverMaxIter, Logger: s.logger})
	}

	exactMethod, _ := cfg.exactMethod()
	exact, err := inference.New(exactMethod, s.oracleOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	first := exact
	startMode, _ := cfg.InferenceMethod.Family()
	startsExact := cfg.StartExact || startMode == inference.Exact
	if !startsExact {
		if first, err = inference.New(cfg.InferenceMethod, s.oracleOpts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	workers := cfg.NJobs
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Learner[X, Y]{
		model:       model,
		cfg:         cfg,
		logger:      s.logger,
		recorder:    s.recorder,
		solver:      s.solver,
		first:       first,
		exact:       exact,
		startsExact: startsExact,
		workers:     workers,
	}, nil
}

// Config returns the validated configuration.
func (l *Learner[X, Y]) Config() Config { return l.cfg }

// oracle returns the oracle of the given mode.
func (l *Learner[X, Y]) oracle(mode inference.Mode) inference.Oracle {
	if mode == inference.Exact {
		return l.exact
	}
	return l.first
}

// run holds the mutable state of one Fit call. It is only touched by the
// goroutine that owns the pass loop.
type run[X, Y any] struct {
	id       string
	log      *zap.Logger
	examples []Example[X, Y]
	psiTrue  [][]float64
	cache    *workingset.Cache[Y]
	machine  *machine
	w        []float64
	xi       []float64 // per-example slack of the latest master solve
	res      *Result
}

// Fit trains on examples starting from w0 (nil means zeros) and an empty
// working set.
//
// Steps:
//  1. Validate the examples and w0 against SizePsi (fatal ErrDimensionMismatch).
//  2. Run passes until the state machine reaches Converged or MaxIterReached.
//  3. Between passes, honour ctx cancellation.
//
// The returned Result is non-nil whenever examples were accepted, also on
// error, and then holds the best-effort weights.
func (l *Learner[X, Y]) Fit(ctx context.Context, examples []Example[X, Y], w0 []float64) (*Result, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}
	size := l.model.SizePsi()
	if w0 == nil {
		w0 = make([]float64, size)
	}
	if len(w0) != size {
		return nil, fmt.Errorf("%w: initial weights have %d entries, want %d", ErrDimensionMismatch, len(w0), size)
	}
	cache, err := workingset.New[Y](len(examples), l.cfg.InferenceCache, l.cfg.InactiveWindow)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return l.fit(ctx, examples, &warmStart[Y]{
		w:     append([]float64(nil), w0...),
		xi:    make([]float64, len(examples)),
		cache: cache,
	})
}

// Resume continues training from prev, a Result of an earlier Fit or Resume
// on the same examples. The weights, the per-example slacks and the working
// set with its duals carry over: every cached constraint keeps its plane and
// its inactivity clock, and violations are judged against the stored slacks.
// A converged run resumed on the same data therefore finds nothing new. The
// state machine restarts in the first phase and History starts empty.
//
// Returns ErrNoWarmStart if prev carries no working set for this learner's
// labeling type or was trained on a different number of examples.
func (l *Learner[X, Y]) Resume(ctx context.Context, examples []Example[X, Y], prev *Result) (*Result, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}
	if prev == nil {
		return nil, ErrNoWarmStart
	}
	ws, ok := prev.warm.(*warmStart[Y])
	if !ok {
		return nil, fmt.Errorf("%w: result holds no working set of this labeling type", ErrNoWarmStart)
	}
	if n := ws.cache.NExamples(); n != len(examples) {
		return nil, fmt.Errorf("%w: trained on %d examples, got %d", ErrNoWarmStart, n, len(examples))
	}
	if len(ws.w) != l.model.SizePsi() {
		return nil, fmt.Errorf("%w: weights have %d entries, want %d", ErrDimensionMismatch, len(ws.w), l.model.SizePsi())
	}

	return l.fit(ctx, examples, &warmStart[Y]{
		w:     append([]float64(nil), ws.w...),
		xi:    append([]float64(nil), ws.xi...),
		cache: ws.cache.Clone(-ws.iterations),
		prev:  prev,
	})
}

// warmStart is the state a run starts from and leaves behind for Resume.
type warmStart[Y any] struct {
	w          []float64
	xi         []float64
	cache      *workingset.Cache[Y]
	iterations int     // passes run, to rebase cache stamps on resume
	prev       *Result // objective values reported until the first solve
}

// fit runs the pass loop from start.
func (l *Learner[X, Y]) fit(ctx context.Context, examples []Example[X, Y], start *warmStart[Y]) (*Result, error) {
	size := l.model.SizePsi()
	id := uuid.NewString()
	ctx, span := tracer.Start(ctx, "learner.Fit",
		trace.WithAttributes(
			attribute.String("ssvm.run_id", id),
			attribute.Int("ssvm.examples", len(examples)),
			attribute.Int("ssvm.size_psi", size),
			attribute.Bool("ssvm.resumed", start.prev != nil),
		),
	)
	defer span.End()

	r := &run[X, Y]{
		id:       id,
		log:      l.logger.With(zap.String("run_id", id)),
		examples: examples,
		psiTrue:  make([][]float64, len(examples)),
		cache:    start.cache,
		machine:  newMachine(l.startsExact),
		w:        start.w,
		xi:       start.xi,
	}
	for i, ex := range examples {
		psi, err := l.psi(ex.X, ex.Y)
		if err != nil {
			err = fmt.Errorf("example %d: %w", i, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		r.psiTrue[i] = psi
	}
	r.res = &Result{RunID: id, State: r.machine.state, Mode: r.machine.mode}
	if p := start.prev; p != nil {
		r.res.Slack, r.res.Dual, r.res.Primal = p.Slack, p.Dual, p.Primal
	}
	l.recorder.Mode(r.machine.mode == inference.Exact)

	if l.cfg.Verbose >= 1 {
		r.log.Info("training started",
			zap.Int("examples", len(examples)),
			zap.Int("size_psi", size),
			zap.Int("workers", l.workers),
			zap.Int("cached", r.cache.Len()),
			zap.Stringer("mode", r.machine.mode),
			zap.String("oracle", string(l.oracle(r.machine.mode).Method())),
		)
	}

	var err error
	for it := 1; !r.machine.state.Terminal(); it++ {
		if err = ctx.Err(); err != nil {
			break
		}
		if err = l.pass(ctx, r, it); err != nil {
			break
		}
	}
	r.finish()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.Error("training aborted", zap.Error(err), zap.Int("iterations", r.res.Iterations))
		return r.res, err
	}
	span.SetAttributes(attribute.String("ssvm.state", r.res.State.String()))
	span.SetStatus(codes.Ok, "")
	if l.cfg.Verbose >= 1 {
		r.log.Info("training finished",
			zap.Stringer("state", r.res.State),
			zap.Int("iterations", r.res.Iterations),
			zap.Int("constraints", r.res.ConstraintsAdded),
			zap.Float64("primal", r.res.Primal),
			zap.Float64("dual", r.res.Dual),
		)
	}

	return r.res, nil
}

// finish copies the run's final state into the result.
func (r *run[X, Y]) finish() {
	r.res.State = r.machine.state
	r.res.Mode = r.machine.mode
	r.res.SwitchIteration = r.machine.switchedAt
	r.res.Weights = append([]float64(nil), r.w...)
	r.res.CacheSize = r.cache.Len()
	r.res.ExampleSlack = append([]float64(nil), r.xi...)
	r.res.warm = &warmStart[Y]{
		w:          append([]float64(nil), r.w...),
		xi:         append([]float64(nil), r.xi...),
		cache:      r.cache,
		iterations: r.res.Iterations,
	}
}

// psi evaluates the model and enforces the SizePsi contract.
func (l *Learner[X, Y]) psi(x X, y Y) ([]float64, error) {
	v, err := l.model.Psi(x, y)
	if err != nil {
		return nil, fmt.Errorf("psi: %w", err)
	}
	if len(v) != l.model.SizePsi() {
		return nil, fmt.Errorf("%w: psi has %d entries, want %d", ErrDimensionMismatch, len(v), l.model.SizePsi())
	}

	return v, nil
}

// primal estimates ½‖w‖² + C·mean_i h_i.
func (l *Learner[X, Y]) primal(w, h []float64) float64 {
	return 0.5*floats.Dot(w, w) + l.cfg.C*floats.Sum(h)/float64(len(h))
}
