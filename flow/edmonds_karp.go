package flow

import (
	"math"

	"go.uber.org/zap"
)

// EdmondsKarp computes the maximum flow from source→sink
// using the Edmonds–Karp algorithm (BFS for shortest augmenting paths).
// Residual capacities of nw are updated in place.
//
// It returns:
//   - maxFlow: total flow value
//   - err: non-nil on invalid endpoints or cancellation.
//
// Complexity: O(V · E²)
// Memory:     O(V + E)
func EdmondsKarp(nw *Network, source, sink int, opts FlowOptions) (maxFlow float64, err error) {
	opts.normalize()
	if err = nw.checkEndpoints(source, sink); err != nil {
		return 0, err
	}

	parentArc := make([]int, nw.n)
	queue := make([]int, 0, nw.n)
	for {
		if err = opts.Ctx.Err(); err != nil {
			return maxFlow, err
		}

		// 1) BFS for the shortest augmenting path; parentArc[v] is the arc used to reach v
		for i := range parentArc {
			parentArc[i] = -1
		}
		queue = append(queue[:0], source)
		found := false
		for i := 0; i < len(queue) && !found; i++ {
			u := queue[i]
			for _, ai := range nw.adj[u] {
				a := nw.arcs[ai]
				if a.cap <= opts.Epsilon || a.to == source || parentArc[a.to] >= 0 {
					continue
				}
				parentArc[a.to] = ai
				if a.to == sink {
					found = true
					break
				}
				queue = append(queue, a.to)
			}
		}
		if !found {
			break
		}

		// 2) Bottleneck along the path (walk back via partner arcs)
		bottle := math.Inf(1)
		for v := sink; v != source; {
			ai := parentArc[v]
			if c := nw.arcs[ai].cap; c < bottle {
				bottle = c
			}
			v = nw.arcs[ai^1].to
		}

		// 3) Augment
		for v := sink; v != source; {
			ai := parentArc[v]
			nw.push(ai, bottle)
			v = nw.arcs[ai^1].to
		}
		maxFlow += bottle
		opts.Logger.Debug("edmonds-karp augmentation",
			zap.Float64("bottleneck", bottle),
			zap.Float64("total", maxFlow),
		)
	}

	return maxFlow, nil
}
