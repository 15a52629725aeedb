// Package qp solves the master problem of the 1-slack cutting-plane learner:
// the structured SVM dual restricted to the constraints in the working set.
//
// Given m cached constraints with feature differences δψ_c, losses Δ_c and
// owning examples g(c) ∈ [0, n), the dual is
//
//	maximize   (1/n) Σ_c μ_c Δ_c − ½ ‖w‖²,   w = (1/n) Σ_c μ_c δψ_c
//	subject to μ_c ≥ 0,   Σ_{c: g(c)=i} μ_c ≤ C   for every example i.
//
// This is the marginalized form of the 1-slack dual: every joint cutting
// plane is a sum of one labeling per example, so its dual weight splits into
// per-example budgets bounded by C.
//
// The SMO backend keeps one implicit slack variable per example (gradient 0,
// value C − Σ μ) and repeatedly moves weight between the most and the least
// attractive entries of the example with the largest KKT violation, using an
// exact line search on a precomputed Gram matrix (gonum/mat). Starting from
// a feasible Problem.Init the dual never decreases.
//
// Stopping: the KKT gap is reported in loss units (n × the gradient gap) and
// compared against Options.Eps. Exceeding Options.MaxIter returns the last
// iterate together with ErrNotConverged.
package qp
