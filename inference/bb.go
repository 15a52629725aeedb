package inference

import (
	"context"
	"fmt"
	"math"
)

// branchAndBound is the exact oracle for graphs too large to enumerate.
//
// Bound (dual decomposition):
//
//	The edges are split into forests t = 1..T (decompose) and every unary is
//	shared out among them, Σ_t λ_t[i] = Unary[i]. For any split,
//	  score(y) = Σ_t (Σ_i λ_t[i][y_i] + Σ_{e ∈ t} Pairwise[e](y)) ≤ Σ_t max_t(λ_t)
//	and each max_t is solved exactly by max-product. The split starts even
//	and is tuned by projected subgradient steps
//	  λ_t[i][s] -= step·(g_t[i][s] − ḡ[i][s]),  step = α·(bound − best)/‖g − ḡ‖²
//	where g_t is the indicator of forest t's argmax; the sum over t is kept.
//
// Search:
//  1. Seed the incumbent with ICM; every forest argmax met on the way is
//     scored, polished with ICM and offered as a new incumbent.
//  2. At each search node tune the split, warm-started from the parent's best.
//     Prune once bound ≤ best + Gap·max(1, |best|). If all forests agree,
//     their common labeling is optimal for the subtree.
//  3. Otherwise clamp the free node the forests disagree on most, trying the
//     forests' states first, depth first.
//
// Complexity: exponential worst case, capped by NodeLimit;
// O(iterations·T·(n·K + E·K²)) per search node.
type branchAndBound struct {
	opts Options
}

func (o *branchAndBound) Method() Method { return MethodBranchAndBound }
func (o *branchAndBound) Mode() Mode     { return Exact }

// Solve implements Oracle. Returns ErrNodeLimit if the search visits more than
// Options.NodeLimit nodes before proving optimality.
func (o *branchAndBound) Solve(ctx context.Context, e *Energy) ([]int, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	eng := newBBEngine(ctx, e, o.opts)
	if err := eng.seed(); err != nil {
		return nil, err
	}
	if err := eng.visit(eng.evenSplit(), o.opts.DualIterations); err != nil {
		return nil, err
	}

	return eng.best, nil
}

// bbEngine holds precomputes and search state for one Solve call.
type bbEngine struct {
	ctx     context.Context
	e       *Energy
	opts    Options
	n, k    int
	adj     [][]incidence
	forests []*forest
	steps   int

	clamp  []int   // fixed state per node, -1 when free
	argmax [][]int // per-forest labeling of the latest evaluation
	bel    []float64
	arg    []int
	counts []float64
	polish []int

	best      []int
	bestScore float64
}

func newBBEngine(ctx context.Context, e *Energy, opts Options) *bbEngine {
	n, k := e.Nodes(), e.NStates
	b := &bbEngine{
		ctx:     ctx,
		e:       e,
		opts:    opts,
		n:       n,
		k:       k,
		adj:     e.adjacency(),
		forests: decompose(e),
		clamp:   make([]int, n),
		bel:     make([]float64, n*k),
		arg:     make([]int, n*k),
		counts:  make([]float64, k),
		polish:  make([]int, n),
	}
	for i := range b.clamp {
		b.clamp[i] = -1
	}
	b.argmax = make([][]int, len(b.forests))
	for t := range b.argmax {
		b.argmax[t] = make([]int, n)
	}

	return b
}

// seed installs the ICM labeling as the first incumbent.
func (b *bbEngine) seed() error {
	labels := b.e.unaryArgmax()
	if err := icmSweeps(b.ctx, b.e, b.adj, labels, b.opts); err != nil {
		return err
	}
	b.best = labels
	b.bestScore = b.e.Score(labels)

	return nil
}

// evenSplit shares every unary equally among the forests.
// Layout: forest t, node i, state s at (t·n + i)·K + s.
func (b *bbEngine) evenSplit() []float64 {
	nk := b.n * b.k
	share := 1 / float64(len(b.forests))
	lam := make([]float64, len(b.forests)*nk)
	for t := range b.forests {
		for i, row := range b.e.Unary {
			for s, v := range row {
				lam[t*nk+i*b.k+s] = v * share
			}
		}
	}

	return lam
}

// evaluate solves every forest under lam and returns the bound.
func (b *bbEngine) evaluate(lam []float64) float64 {
	nk := b.n * b.k
	var total float64
	for t, f := range b.forests {
		total += f.maximize(b.e, lam[t*nk:(t+1)*nk], b.clamp, b.argmax[t], b.bel, b.arg)
	}

	return total
}

// offer scores the forest labelings and their ICM polish against the incumbent.
func (b *bbEngine) offer() error {
	for _, y := range b.argmax {
		if b.e.Score(y) <= b.bestScore+b.opts.Epsilon {
			continue
		}
		copy(b.polish, y)
		if err := icmSweeps(b.ctx, b.e, b.adj, b.polish, b.opts); err != nil {
			return err
		}
		copy(b.best, b.polish)
		b.bestScore = b.e.Score(b.polish)
	}

	return nil
}

// pruned reports whether a subtree bounded by bound cannot beat the incumbent.
func (b *bbEngine) pruned(bound float64) bool {
	return bound <= b.bestScore+b.opts.Gap*math.Max(1, math.Abs(b.bestScore))
}

// tally counts, per state, the forests whose argmax puts node i there.
func (b *bbEngine) tally(i int) {
	for s := range b.counts {
		b.counts[s] = 0
	}
	for _, y := range b.argmax {
		b.counts[y[i]]++
	}
}

// disagreement returns ‖g − ḡ‖² over the free nodes.
func (b *bbEngine) disagreement() float64 {
	tf := float64(len(b.forests))
	var norm2 float64
	for i, c := range b.clamp {
		if c >= 0 {
			continue
		}
		b.tally(i)
		for _, cnt := range b.counts {
			mean := cnt / tf
			norm2 += cnt*(1-mean)*(1-mean) + (tf-cnt)*mean*mean
		}
	}

	return norm2
}

// descend takes one projected subgradient step on lam.
func (b *bbEngine) descend(lam []float64, step float64) {
	nk := b.n * b.k
	tf := float64(len(b.forests))
	for i, c := range b.clamp {
		if c >= 0 {
			continue
		}
		b.tally(i)
		for t, y := range b.argmax {
			row := lam[t*nk+i*b.k : t*nk+(i+1)*b.k]
			for s := range row {
				g := 0.0
				if y[i] == s {
					g = 1
				}
				row[s] -= step * (g - b.counts[s]/tf)
			}
		}
	}
}

// branchNode picks the free node with the most distinct forest states
// (lowest index on ties) and the order to try its states in.
func (b *bbEngine) branchNode() (int, []int) {
	node, most := -1, 0
	for i, c := range b.clamp {
		if c >= 0 {
			continue
		}
		b.tally(i)
		distinct := 0
		for _, cnt := range b.counts {
			if cnt > 0 {
				distinct++
			}
		}
		if distinct > most {
			node, most = i, distinct
		}
	}
	if node < 0 {
		return -1, nil
	}

	states := make([]int, 0, b.k)
	tried := make([]bool, b.k)
	for _, y := range b.argmax {
		if s := y[node]; !tried[s] {
			tried[s] = true
			states = append(states, s)
		}
	}
	for s := range tried {
		if !tried[s] {
			states = append(states, s)
		}
	}

	return node, states
}

// visit bounds the subtree under the current clamps, starting from split lam
// (owned by the call), and branches if it can neither prune nor close it.
func (b *bbEngine) visit(lam []float64, iterations int) error {
	b.steps++
	if b.opts.NodeLimit > 0 && b.steps > b.opts.NodeLimit {
		return fmt.Errorf("%w: %d nodes", ErrNodeLimit, b.opts.NodeLimit)
	}
	if err := b.ctx.Err(); err != nil {
		return err
	}

	bestLam := append([]float64(nil), lam...)
	bound := math.Inf(1)
	alpha, stall := b.opts.DualStep, 0
	for it := 0; it < iterations; it++ {
		val := b.evaluate(lam)
		if err := b.offer(); err != nil {
			return err
		}
		if val < bound-b.opts.Epsilon {
			bound = val
			copy(bestLam, lam)
			stall = 0
		} else if stall++; stall >= 3 {
			alpha /= 2
			stall = 0
		}
		if b.pruned(bound) {
			return nil
		}
		norm2 := b.disagreement()
		if norm2 == 0 {
			// the common labeling attains the bound and was offered
			return nil
		}
		b.descend(lam, alpha*(val-b.bestScore)/norm2)
	}

	node, states := b.branchNode()
	if node < 0 {
		return nil
	}
	defer func() { b.clamp[node] = -1 }()
	for _, s := range states {
		if b.pruned(bound) {
			return nil
		}
		b.clamp[node] = s
		if err := b.visit(append([]float64(nil), bestLam...), b.opts.BranchIterations); err != nil {
			return err
		}
	}

	return nil
}
