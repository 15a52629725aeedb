// Package flow implements maximum-flow algorithms on compact, int-indexed
// residual networks. It is the combinatorial engine behind graph-cut
// inference: an s-t minimum cut of a suitably built network is the optimal
// binary move of an alpha-expansion step.
//
// The key algorithms offered are:
//
//   - Edmonds–Karp
//
//   - Method: breadth-first search for shortest (fewest-arc) augmenting paths.
//
//   - Time:   O(V · E²) in the worst case.
//
//   - Memory: O(V + E) for the parent arrays and BFS queue.
//
//   - Dinic
//
//   - Method: level graph construction + blocking-flow via DFS.
//
//   - Time:   O(V² · E) in general; much faster on the shallow networks produced
//     by grid energies.
//
//   - Memory: O(V + E) for level and iterator arrays.
//
// # Networks
//
// A Network stores arcs in paired form: every AddEdge(u, v, c) creates the
// forward arc u→v with capacity c and its reverse partner v→u with capacity 0
// (or the supplied reverse capacity for AddBiEdge). Capacities are float64;
// values ≤ Epsilon are treated as saturated.
//
// Algorithms mutate the residual capacities in place. After a run,
// SourceSide reports the vertices reachable from the source in the residual
// network, which is the source set of a minimum cut. Reset restores the
// original capacities so the same topology can be solved again.
//
// # API
//
// FlowOptions configures both algorithms:
//
//	type FlowOptions struct {
//	    Ctx                  context.Context // for cancellation / timeouts
//	    Epsilon              float64         // treat residuals ≤ Epsilon as zero
//	    Logger               *zap.Logger     // debug log of each augmentation (nil: silent)
//	    LevelRebuildInterval int             // Dinic only: rebuild level graph every N pushes
//	}
//
// # Errors
//
//	ErrSourceNotFound - if the source index is outside the network.
//	ErrSinkNotFound   - if the sink index is outside the network.
//	ErrSameEndpoints  - if source == sink.
//	EdgeError         - if a negative or non-finite capacity is added.
//	context.Canceled / context.DeadlineExceeded - if opts.Ctx is canceled.
package flow
