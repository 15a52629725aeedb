// Package learner implements the 1-slack cutting-plane structured SVM
// trainer.
//
// A Learner alternates, pass by pass, between
//
//  1. loss-augmented inference for every training example, evaluated in
//     parallel by a bounded worker pool against one read-only snapshot of
//     the weights;
//  2. adding the margin-violating labelings to a bounded working set
//     (workingset.Cache), in ascending example order;
//  3. re-solving the master problem (qp.Solver) over the whole working set;
//  4. pruning constraints that stayed inactive for too long;
//  5. advancing an explicit state machine.
//
// # States
//
//	RunningApproximate ─ clean pass ─▶ RunningExact ─ clean pass ─▶ Converged
//	        │                                │
//	        └──────── MaxIter passes ────────┴──────▶ MaxIterReached
//
// A pass is clean when it adds no constraint and skips no example. Only a
// clean exact pass certifies convergence; an approximate oracle can miss
// violated labelings, so it may only hand over to the exact one. The switch
// happens at most once per run. A pass that adds nothing but skipped some
// examples after oracle failures moves approximate runs to exact inference
// and keeps exact runs running.
//
// Resume continues from an earlier Result with its working set, duals and
// per-example slacks instead of an empty cache, as a warm start.
//
// # Errors
//
//	ErrNoExamples         - Fit called with an empty training set.
//	ErrInvalidConfig      - Config.Validate failed.
//	ErrDimensionMismatch  - a feature vector or weight vector of the wrong length (fatal).
//	ErrSolverFailed       - the master problem failed (fatal, best-effort weights returned).
//	ErrNoWarmStart        - Resume given a Result without a matching working set.
//	ErrInvalidTransition  - state machine misuse.
//
// Oracle failures on single examples are soft: the example is skipped for
// the pass, logged, counted in Result.Skipped and exported as a metric.
//
// # Observability
//
// Every Fit gets a run ID (uuid) attached to its log lines (zap) and to the
// Result. Passes and master solves are traced with OpenTelemetry spans and
// exported through an optional metrics.Recorder.
package learner
