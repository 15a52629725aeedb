package learner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/ssvm/inference"
)

// Predict labels every input under w with the exact oracle, in parallel.
// Any inference failure aborts the call.
func (l *Learner[X, Y]) Predict(ctx context.Context, xs []X, w []float64) ([]Y, error) {
	if len(w) != l.model.SizePsi() {
		return nil, fmt.Errorf("%w: weights have %d entries, want %d", ErrDimensionMismatch, len(w), l.model.SizePsi())
	}
	out := make([]Y, len(xs))
	if len(xs) == 0 {
		return out, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(l.workers, len(xs)))
	for i := range xs {
		g.Go(func() error {
			y, err := l.model.Inference(gctx, xs[i], w, l.exact)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			out[i] = y
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// Loss returns the mean loss of Predict over examples.
func (l *Learner[X, Y]) Loss(ctx context.Context, examples []Example[X, Y], w []float64) (float64, error) {
	if len(examples) == 0 {
		return 0, ErrNoExamples
	}
	xs := make([]X, len(examples))
	for i, ex := range examples {
		xs[i] = ex.X
	}
	pred, err := l.Predict(ctx, xs, w)
	if err != nil {
		return 0, err
	}
	var total float64
	for i, ex := range examples {
		total += l.model.Loss(ex.Y, pred[i])
	}

	return total / float64(len(examples)), nil
}

// lossCurve appends the exact training loss at the current weights.
// Failures are logged and leave the curve unchanged.
func (l *Learner[X, Y]) lossCurve(ctx context.Context, r *run[X, Y], it int) {
	loss, err := l.Loss(ctx, r.examples, r.w)
	if err != nil {
		r.log.Warn("training loss unavailable", zap.Int("iteration", it), zap.Error(err))
		return
	}
	r.res.LossCurve = append(r.res.LossCurve, LossPoint{Iteration: it, Loss: loss})
	l.recorder.TrainingLoss(loss)
	if l.cfg.Verbose >= 1 {
		r.log.Info("training loss", zap.Int("iteration", it), zap.Float64("loss", loss),
			zap.Stringer("oracle_mode", inference.Exact))
	}
}
