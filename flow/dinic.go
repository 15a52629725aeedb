package flow

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// Dinic computes the maximum flow from source to sink in nw using Dinic’s
// algorithm (level graph + blocking flows). Residual capacities of nw are
// updated in place; call nw.SourceSide afterwards to read the minimum cut.
//
// Steps:
//  1. Normalize options and validate endpoints (O(1)).
//  2. Repeat until the sink is unreachable:
//     a. Check for cancellation (O(1)).
//     b. BFS from source over arcs with residual > Epsilon to build levels (O(V + E)).
//     c. If sink unreachable, stop.
//     d. Reset per-vertex arc iterators and push blocking flow with DFS,
//     optionally rebuilding the level graph every LevelRebuildInterval pushes.
//
// Complexity:
//
//	Time:   O(V² · E) worst case.
//	Memory: O(V) for level and iterator arrays, plus recursion depth ≤ V.
func Dinic(nw *Network, source, sink int, opts FlowOptions) (maxFlow float64, err error) {
	// 1) Normalize options and validate endpoints
	opts.normalize()
	ctx := opts.Ctx
	if err = nw.checkEndpoints(source, sink); err != nil {
		return 0, err
	}

	level := make([]int, nw.n)
	iter := make([]int, nw.n)
	queue := make([]int, 0, nw.n)
	augmentCount := 0

	// 2) Main loop: level graph + blocking flows
	for {
		// 2a) Cancellation check before BFS
		if err = ctx.Err(); err != nil {
			return maxFlow, err
		}

		// 2b) BFS to compute levels
		for i := range level {
			level[i] = -1
		}
		level[source] = 0
		queue = append(queue[:0], source)
		for i := 0; i < len(queue); i++ {
			u := queue[i]
			for _, ai := range nw.adj[u] {
				a := nw.arcs[ai]
				if a.cap > opts.Epsilon && level[a.to] < 0 {
					level[a.to] = level[u] + 1
					queue = append(queue, a.to)
				}
			}
		}
		// 2c) If sink unreachable in level graph, we're done
		if level[sink] < 0 {
			break
		}

		// 2d) DFS-based blocking flow
		for i := range iter {
			iter[i] = 0
		}
		for {
			if err = ctx.Err(); err != nil {
				return maxFlow, err
			}
			pushed := dinicPush(ctx, nw, level, iter, source, sink, math.Inf(1), opts.Epsilon)
			if pushed <= opts.Epsilon {
				break
			}
			maxFlow += pushed
			augmentCount++
			opts.Logger.Debug("dinic push",
				zap.Float64("pushed", pushed),
				zap.Float64("total", maxFlow),
			)
			if opts.LevelRebuildInterval > 0 && augmentCount%opts.LevelRebuildInterval == 0 {
				break
			}
		}
	}

	return maxFlow, nil
}

// dinicPush recursively pushes flow along the level graph.
// It respects cancellation via ctx, updates residuals in place,
// and returns the amount actually sent.
func dinicPush(
	ctx context.Context,
	nw *Network,
	level, iter []int,
	u, sink int,
	available, eps float64,
) float64 {
	if ctx.Err() != nil {
		return 0
	}
	if u == sink {
		return available
	}
	for ; iter[u] < len(nw.adj[u]); iter[u]++ {
		ai := nw.adj[u][iter[u]]
		a := nw.arcs[ai]
		if a.cap <= eps || level[a.to] != level[u]+1 {
			continue
		}
		send := available
		if a.cap < send {
			send = a.cap
		}
		pushed := dinicPush(ctx, nw, level, iter, a.to, sink, send, eps)
		if pushed > 0 {
			nw.push(ai, pushed)

			return pushed
		}
	}

	return 0
}
