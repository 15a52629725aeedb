// Package workingset implements the bounded per-example constraint cache of
// the cutting-plane learner.
//
// Every example owns a fixed-capacity slot list. A Constraint records the
// labeling that produced it, the feature difference psi(x, y) - psi(x, ŷ),
// the loss, the pass that created it and the last pass in which the master
// problem gave it non-negligible weight.
//
// Invariants:
//   - ExampleLen(i) ≤ Capacity() after every Add.
//   - Prune(t) removes exactly the constraints with t - LastActive > Window().
//   - Memory is bounded by NExamples()·Capacity() constraints.
//
// Eviction: when an example's slots are full, Add evicts the entry with the
// oldest LastActive; ties go to the oldest Created, then to the earliest
// insertion. The order is total, so runs are reproducible.
//
// A Cache is not safe for concurrent mutation; the learner mutates it only
// after the per-pass barrier.
package workingset
