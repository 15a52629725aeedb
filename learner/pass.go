package learner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/ssvm/inference"
	"github.com/katalvlaran/ssvm/qp"
	"github.com/katalvlaran/ssvm/workingset"
)

// evaluation is one worker's answer for one example.
type evaluation[Y any] struct {
	labeling  Y
	delta     []float64
	loss      float64
	violation float64 // loss - w·delta
	err       error   // soft oracle failure
}

// evaluate runs loss-augmented inference for example i against the snapshot w.
// Oracle errors are soft and returned inside the evaluation; feature map
// errors are fatal and returned as the error.
func (l *Learner[X, Y]) evaluate(ctx context.Context, r *run[X, Y], i int, w []float64, o inference.Oracle) (evaluation[Y], error) {
	ex := r.examples[i]
	start := time.Now()
	yhat, err := l.model.LossAugmentedInference(ctx, ex.X, ex.Y, w, o)
	l.recorder.OracleLatency(o.Mode().String(), time.Since(start))
	if err != nil {
		return evaluation[Y]{err: err}, nil
	}
	psi, err := l.psi(ex.X, yhat)
	if err != nil {
		return evaluation[Y]{}, fmt.Errorf("example %d: %w", i, err)
	}
	delta := make([]float64, len(psi))
	floats.SubTo(delta, r.psiTrue[i], psi)
	loss := l.model.Loss(ex.Y, yhat)

	return evaluation[Y]{
		labeling:  yhat,
		delta:     delta,
		loss:      loss,
		violation: loss - floats.Dot(w, delta),
	}, nil
}

// evaluateAll fans the examples out to the worker pool and joins them.
// Results land in per-example slots, so their order never depends on scheduling.
func (l *Learner[X, Y]) evaluateAll(ctx context.Context, r *run[X, Y], w []float64, o inference.Oracle) ([]evaluation[Y], error) {
	out := make([]evaluation[Y], len(r.examples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.workers, len(r.examples)))
	for i := range r.examples {
		g.Go(func() error {
			ev, err := l.evaluate(gctx, r, i, w, o)
			out[i] = ev
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// pass runs iteration it: evaluate, add, solve, prune, transition.
func (l *Learner[X, Y]) pass(ctx context.Context, r *run[X, Y], it int) error {
	mode := r.machine.mode
	ctx, span := tracer.Start(ctx, "learner.pass",
		trace.WithAttributes(
			attribute.Int("ssvm.iteration", it),
			attribute.String("ssvm.mode", mode.String()),
		),
	)
	defer span.End()

	// 1) parallel oracle calls on a read-only snapshot
	w := append([]float64(nil), r.w...)
	evals, err := l.evaluateAll(ctx, r, w, l.oracle(mode))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// 2) after the barrier: ascending example order
	stats := PassStats{Iteration: it, Mode: mode}
	hinge := make([]float64, len(evals))
	for i, ev := range evals {
		for _, con := range r.cache.Example(i) {
			hinge[i] = math.Max(hinge[i], con.Violation(w))
		}
		if ev.err != nil {
			stats.Skipped++
			l.recorder.OracleFailure(mode.String())
			if l.cfg.Verbose >= 2 {
				r.log.Debug("oracle failed, example skipped",
					zap.Int("iteration", it), zap.Int("example", i), zap.Error(ev.err))
			}
			continue
		}
		hinge[i] = math.Max(hinge[i], ev.violation)
		if ev.violation <= r.xi[i]+l.cfg.Tol {
			continue
		}
		if l.cfg.Verbose >= 3 {
			r.log.Debug("violated constraint",
				zap.Int("iteration", it), zap.Int("example", i),
				zap.Float64("violation", ev.violation), zap.Float64("slack", r.xi[i]), zap.Float64("loss", ev.loss))
		}
		if dup := r.cache.Find(i, func(y Y) bool { return l.model.Loss(y, ev.labeling) == 0 }); dup != nil {
			r.cache.Touch(dup, it)
			continue
		}
		_, evicted, err := r.cache.Add(i, ev.labeling, ev.delta, ev.loss, it)
		if err != nil {
			return err
		}
		stats.Added++
		if evicted != nil {
			stats.Evicted++
			if l.cfg.Verbose >= 2 {
				r.log.Debug("constraint evicted",
					zap.Int("example", i), zap.Int("created", evicted.Created), zap.Int("last_active", evicted.LastActive))
			}
		}
	}
	primal := l.primal(w, hinge)

	// 3) master problem
	if stats.Added > 0 || (l.cfg.CheckConstraints && r.cache.Len() > 0) {
		if err = l.solve(ctx, r, it, primal); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			l.record(r, stats)
			return err
		}
		stats.Solved = true
	}

	// 4) prune stale constraints; without a solve the last duals still hold
	if !stats.Solved {
		for _, con := range r.cache.All() {
			if con.Alpha > l.cfg.InactiveThreshold {
				r.cache.Touch(con, it)
			}
		}
	}
	pruned := r.cache.Prune(it)
	stats.Pruned = len(pruned)
	if l.cfg.Verbose >= 2 && len(pruned) > 0 {
		r.log.Debug("constraints pruned", zap.Int("iteration", it), zap.Int("count", len(pruned)))
	}
	l.record(r, stats)

	// 5) state machine
	ev := EventClean
	switch {
	case stats.Added > 0:
		ev = EventViolations
	case stats.Skipped > 0:
		ev = EventIncomplete
	}
	switched, err := r.machine.fire(ev, it)
	if err != nil {
		return err
	}
	if switched {
		l.recorder.ModeSwitch()
		if l.cfg.Verbose >= 1 {
			r.log.Info("switching to exact inference",
				zap.Int("iteration", it), zap.String("oracle", string(l.exact.Method())))
		}
	}
	if !r.machine.state.Terminal() && it >= l.cfg.MaxIter {
		if _, err = r.machine.fire(EventIterCap, it); err != nil {
			return err
		}
	}

	if l.cfg.Verbose >= 1 {
		r.log.Info("pass finished",
			zap.Int("iteration", it),
			zap.Stringer("mode", mode),
			zap.Int("added", stats.Added),
			zap.Int("skipped", stats.Skipped),
			zap.Float64("primal", primal),
			zap.Float64("dual", r.res.Dual),
			zap.Float64("slack", r.res.Slack),
			zap.Int("cache", r.cache.Len()),
			zap.Stringer("state", r.machine.state),
		)
	}

	// 6) diagnostics, never affects control flow
	if l.cfg.ShowLossEvery > 0 && it%l.cfg.ShowLossEvery == 0 {
		l.lossCurve(ctx, r, it)
	}
	span.SetStatus(codes.Ok, "")

	return nil
}

// record folds pass statistics into the result and the metrics.
func (l *Learner[X, Y]) record(r *run[X, Y], stats PassStats) {
	r.res.Passes = append(r.res.Passes, stats)
	r.res.Iterations = stats.Iteration
	r.res.ConstraintsAdded += stats.Added
	r.res.Skipped += stats.Skipped
	l.recorder.Pass()
	l.recorder.Constraints("added", stats.Added)
	l.recorder.Constraints("evicted", stats.Evicted)
	l.recorder.Constraints("pruned", stats.Pruned)
	l.recorder.CacheSize(r.cache.Len())
}

// solve re-solves the master problem over the whole cache, warm-started
// from the previous duals, and installs the new weights and slacks.
// On failure the weights stay untouched and ErrSolverFailed is returned.
func (l *Learner[X, Y]) solve(ctx context.Context, r *run[X, Y], it int, primal float64) error {
	cons := r.cache.All()
	ctx, span := tracer.Start(ctx, "learner.solve",
		trace.WithAttributes(attribute.Int("ssvm.constraints", len(cons))))
	defer span.End()

	p := &qp.Problem{
		Vectors: make([][]float64, len(cons)),
		Loss:    make([]float64, len(cons)),
		Groups:  make([]int, len(cons)),
		Init:    make([]float64, len(cons)),
		NGroups: len(r.examples),
		C:       l.cfg.C,
	}
	for c, con := range cons {
		p.Vectors[c] = con.Delta
		p.Loss[c] = con.Loss
		p.Groups[c] = con.Example
		p.Init[c] = con.Alpha
	}

	start := time.Now()
	sol, err := l.solver.Solve(ctx, p)
	l.recorder.SolveLatency(time.Since(start))
	if errors.Is(err, qp.ErrNotConverged) && sol != nil {
		// the last iterate is still feasible
		r.log.Warn("master problem stopped early",
			zap.Int("iteration", it), zap.Int("solver_iterations", sol.Iterations), zap.Float64("gap", sol.Gap))
		err = nil
	}
	if err == nil && (len(sol.W) != len(r.w) || len(sol.Alpha) != len(cons) || len(sol.GroupSlack) != len(r.xi)) {
		err = fmt.Errorf("%w: solver returned %d weights, %d duals, %d slacks",
			ErrDimensionMismatch, len(sol.W), len(sol.Alpha), len(sol.GroupSlack))
	}
	if err != nil {
		if !errors.Is(err, ErrDimensionMismatch) {
			err = fmt.Errorf("%w: %w", ErrSolverFailed, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	touch(r.cache, cons, sol.Alpha, l.cfg.InactiveThreshold, it)
	r.w = sol.W
	copy(r.xi, sol.GroupSlack)
	r.res.Slack, r.res.Dual, r.res.Primal = sol.Slack, sol.Dual, primal
	r.res.History = append(r.res.History, Objective{Iteration: it, Primal: primal, Dual: sol.Dual, Slack: sol.Slack})
	l.recorder.Objective(primal, sol.Dual, sol.Slack)
	span.SetAttributes(
		attribute.Float64("ssvm.dual", sol.Dual),
		attribute.Int("ssvm.solver_iterations", sol.Iterations),
	)

	return nil
}

// touch stores the new duals and marks constraints with non-negligible weight active.
func touch[Y any](cache *workingset.Cache[Y], cons []*workingset.Constraint[Y], alpha []float64, threshold float64, it int) {
	for c, con := range cons {
		con.Alpha = alpha[c]
		if alpha[c] > threshold {
			cache.Touch(con, it)
		}
	}
}
