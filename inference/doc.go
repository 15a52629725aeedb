// Package inference provides the closed set of MAP inference oracles used
// by the cutting-plane learner. Every oracle maximizes the score of a
// pairwise energy over discrete labelings:
//
//	score(y) = Σ_i Unary[i][y_i] + Σ_(u,v) Pairwise[e][y_u·K + y_v]
//
// Loss-augmented inference is expressed by the model adding the loss to the
// unaries before calling an oracle, so oracles never see true labels.
//
// Oracles come in two families (Mode). Approximate oracles are fast and
// return local optima:
//
//	icm        iterated conditional modes, single-node moves.
//	graphcut   alpha-expansion; each move is an s-t minimum cut solved with
//	           flow.Dinic or flow.EdmondsKarp. Non-submodular move terms are
//	           truncated and a move is kept only if it raises the true score.
//
// Exact oracles return global optima up to Options.Gap (bb) or
// Options.Epsilon (exhaustive):
//
//	bb          depth-first branch-and-bound. Each subtree is bounded by dual
//	            decomposition: the edges split into forests solved exactly by
//	            max-product, the unaries shared among them and the split tuned
//	            by subgradient steps. Seeded by ICM; Options.NodeLimit caps the
//	            search so a hard instance fails instead of running on.
//	exhaustive  enumeration of all K^n labelings (tiny problems only).
//
// Oracles hold no per-call state and are safe for concurrent use.
//
// # Errors
//
//	ErrUnknownMethod   - method identifier outside the closed set.
//	ErrBadEnergy       - malformed energy (shapes, indices, non-finite values).
//	ErrNodeLimit       - branch-and-bound exhausted its node budget.
//	ErrProblemTooLarge - exhaustive enumeration exceeds Options.MaxEnumeration.
package inference
