// Package ssvm trains structured support vector machines with the 1-slack
// cutting-plane method.
//
// What is ssvm?
//
//	A pure-Go learner for structured prediction that:
//		• alternates loss-augmented inference with a master QP over cached constraints
//		• runs a cheap approximate oracle first, then certifies convergence exactly
//		• evaluates examples on a bounded worker pool with a barrier per pass
//		• exports progress as zap logs, Prometheus metrics and OpenTelemetry spans
//
// Packages:
//
//	learner/    cutting-plane driver, state machine, objective history, Predict
//	workingset/ per-example constraint cache with LRU eviction and inactivity pruning
//	qp/         master problem interface and the SMO backend
//	inference/  oracles over pairwise energies: icm, graphcut (approximate); bb, exhaustive (exact)
//	gridcrf/    GridCRF and DirectionalGridCRF model adapters
//	flow/       max-flow (Dinic, Edmonds-Karp) behind the graph-cut oracle
//	gridgraph/  4/8-connected grid topology
//	toy/        seeded blocks datasets
//	metrics/    Prometheus recorder
//	config/     viper configuration (defaults, file, SSVM_* env, flags)
//	cmd/ssvm    the ssvm CLI
//
// Driver states:
//
//	RUNNING(APPROX) ──clean or incomplete pass──▶ RUNNING(EXACT) ──clean pass──▶ CONVERGED
//	        │                                            │
//	        └────────────── max_iter ──────────────▶ MAX_ITER_REACHED ◀──┘
//
//	go install github.com/katalvlaran/ssvm/cmd/ssvm@latest
package ssvm
