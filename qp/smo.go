package qp

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// curvatureFloor guards the line search against a flat direction.
const curvatureFloor = 1e-15

// SMO is the default master problem backend.
type SMO struct {
	opts Options
}

// NewSMO returns an SMO solver; zero-valued options take defaults.
func NewSMO(opts Options) *SMO {
	opts.normalize()
	return &SMO{opts: opts}
}

// validate checks p and returns the constraint count and dimension.
func (p *Problem) validate() (m, d int, err error) {
	m = len(p.Vectors)
	if m == 0 {
		return 0, 0, fmt.Errorf("%w: no constraints", ErrBadProblem)
	}
	if !(p.C > 0) || math.IsInf(p.C, 0) {
		return 0, 0, fmt.Errorf("%w: C=%g", ErrBadProblem, p.C)
	}
	if p.NGroups < 1 {
		return 0, 0, fmt.Errorf("%w: %d groups", ErrBadProblem, p.NGroups)
	}
	if len(p.Loss) != m || len(p.Groups) != m {
		return 0, 0, fmt.Errorf("%w: %d vectors, %d losses, %d groups", ErrBadProblem, m, len(p.Loss), len(p.Groups))
	}
	if p.Init != nil && len(p.Init) != m {
		return 0, 0, fmt.Errorf("%w: warm start has %d entries, want %d", ErrBadProblem, len(p.Init), m)
	}
	d = len(p.Vectors[0])
	if d == 0 {
		return 0, 0, fmt.Errorf("%w: empty feature vectors", ErrBadProblem)
	}
	for c, v := range p.Vectors {
		if len(v) != d {
			return 0, 0, fmt.Errorf("%w: vector %d has length %d, want %d", ErrBadProblem, c, len(v), d)
		}
		if floats.HasNaN(v) || math.IsInf(floats.Max(v), 1) || math.IsInf(floats.Min(v), -1) {
			return 0, 0, fmt.Errorf("%w: vector %d not finite", ErrBadProblem, c)
		}
		if g := p.Groups[c]; g < 0 || g >= p.NGroups {
			return 0, 0, fmt.Errorf("%w: constraint %d in group %d", ErrBadProblem, c, g)
		}
		if math.IsNaN(p.Loss[c]) || math.IsInf(p.Loss[c], 0) {
			return 0, 0, fmt.Errorf("%w: loss %d not finite", ErrBadProblem, c)
		}
	}

	return m, d, nil
}

// Solve implements Solver.
//
// Steps:
//  1. Scale v_c = δψ_c/n and build the Gram matrix K = V·Vᵀ.
//  2. Start from the projected warm start and set g = Δ/n − K·μ.
//  3. In the example with the widest gap, move weight from the lowest-gradient
//     entry with positive weight (or the example's unused budget) to the
//     highest-gradient entry (or back to the budget), by exact line search.
//  4. Stop when n·gap ≤ Eps.
//
// Complexity: O(m²·d) setup, O(m) per pair update.
func (s *SMO) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	m, d, err := p.validate()
	if err != nil {
		return nil, err
	}
	n := float64(p.NGroups)

	// 1) Gram matrix
	V := mat.NewDense(m, d, nil)
	for c, v := range p.Vectors {
		V.SetRow(c, v)
	}
	V.Scale(1/n, V)
	K := mat.NewSymDense(m, nil)
	K.SymOuterK(1, V)

	// 2) warm start
	mu := make([]float64, m)
	members := make([][]int, p.NGroups)
	used := make([]float64, p.NGroups)
	for c, g := range p.Groups {
		members[g] = append(members[g], c)
		if p.Init != nil && p.Init[c] > 0 {
			mu[c] = p.Init[c]
			used[g] += mu[c]
		}
	}
	for g, sum := range used {
		if sum > p.C {
			for _, c := range members[g] {
				mu[c] *= p.C / sum
			}
			used[g] = p.C
		}
	}
	muVec := mat.NewVecDense(m, mu)
	var kmu mat.VecDense
	kmu.MulVec(K, muVec)
	grad := make([]float64, m)
	for c := range grad {
		grad[c] = p.Loss[c]/n - kmu.AtVec(c)
	}

	// 3) pair updates
	var (
		iter      int
		gap       float64
		converged bool
		budgetEps = 1e-12 * p.C
	)
	for iter = 0; ; iter++ {
		if iter&1023 == 0 {
			if err = ctx.Err(); err != nil {
				return nil, err
			}
		}
		grp, up, down, viol := -1, -1, -1, 0.0
		for g, idx := range members {
			if len(idx) == 0 {
				continue
			}
			u, gu := -1, 0.0
			for _, c := range idx {
				if grad[c] > gu {
					u, gu = c, grad[c]
				}
			}
			dn, gd := -1, math.Inf(1)
			if p.C-used[g] > budgetEps {
				gd = 0
			}
			for _, c := range idx {
				if mu[c] > 0 && grad[c] < gd {
					dn, gd = c, grad[c]
				}
			}
			if v := gu - gd; v > viol && (u >= 0 || dn >= 0) {
				grp, up, down, viol = g, u, dn, v
			}
		}
		gap = viol * n
		if gap <= s.opts.Eps {
			converged = true
			break
		}
		if iter >= s.opts.MaxIter {
			break
		}

		q, limit := 0.0, p.C-used[grp]
		if up >= 0 {
			q += K.At(up, up)
		}
		if down >= 0 {
			q += K.At(down, down)
			limit = mu[down]
		}
		if up >= 0 && down >= 0 {
			q -= 2 * K.At(up, down)
		}
		t := limit
		if q > curvatureFloor && viol/q < limit {
			t = viol / q
		}

		for c := range grad {
			var dk, dj float64
			if up >= 0 {
				dk = K.At(c, up)
			}
			if down >= 0 {
				dj = K.At(c, down)
			}
			grad[c] -= t * (dk - dj)
		}
		if up >= 0 {
			mu[up] += t
			used[grp] += t
		}
		if down >= 0 {
			mu[down] -= t
			used[grp] -= t
		}
		if t == limit {
			// snap to the bound that stopped the step
			if down >= 0 {
				mu[down] = 0
			} else {
				used[grp] = p.C
			}
		}
	}

	// 4) primal recovery
	sol := &Solution{Alpha: mu, Iterations: iter, Gap: gap}
	var wVec mat.VecDense
	wVec.MulVec(V.T(), muVec)
	sol.W = make([]float64, d)
	for i := range sol.W {
		sol.W[i] = wVec.AtVec(i)
	}
	sol.Dual = floats.Dot(mu, p.Loss)/n - 0.5*floats.Dot(sol.W, sol.W)
	sol.GroupSlack = make([]float64, p.NGroups)
	for c, v := range p.Vectors {
		g := p.Groups[c]
		if h := p.Loss[c] - floats.Dot(sol.W, v); h > sol.GroupSlack[g] {
			sol.GroupSlack[g] = h
		}
	}
	sol.Slack = floats.Sum(sol.GroupSlack) / n

	s.opts.Logger.Debug("master problem solved",
		zap.Int("constraints", m),
		zap.Int("iterations", iter),
		zap.Float64("dual", sol.Dual),
		zap.Float64("gap", gap),
		zap.Bool("converged", converged),
	)
	if !converged {
		return sol, fmt.Errorf("%w after %d iterations (gap %g)", ErrNotConverged, iter, gap)
	}

	return sol, nil
}
