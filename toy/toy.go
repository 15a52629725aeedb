// Package toy generates small deterministic grid datasets for exercising the
// learner: piecewise-constant block labelings with noisy one-hot evidence.
//
// Determinism: the same Options (including Seed) yield identical datasets
// across platforms. Each sample draws from its own stream derived from the
// seed with a SplitMix64 mix, so sample i does not depend on NSamples.
package toy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/katalvlaran/ssvm/gridcrf"
)

// ErrOptions indicates invalid generator options.
var ErrOptions = errors.New("toy: invalid options")

// defaultSeed is used when Options.Seed is zero.
const defaultSeed int64 = 1

// Options configures the block generators.
//   - NSamples: number of (image, labeling) pairs.
//   - Height, Width: grid shape.
//   - BlockSize: side of the square blocks that share one state.
//   - NStates: states per cell (Blocks forces 2).
//   - Noise: standard deviation of Gaussian noise added to the one-hot evidence.
//   - Seed: RNG seed; 0 selects a fixed default.
type Options struct {
	NSamples  int
	Height    int
	Width     int
	BlockSize int
	NStates   int
	Noise     float64
	Seed      int64
}

// DefaultOptions mirrors a classic multinomial blocks setup: 20 samples of
// 10×12 grids, 3 states, noise 2, seed 1.
func DefaultOptions() Options {
	return Options{NSamples: 20, Height: 10, Width: 12, BlockSize: 4, NStates: 3, Noise: 2, Seed: 1}
}

// Dataset holds aligned inputs and labels.
type Dataset struct {
	X []gridcrf.Image
	Y []gridcrf.Labeling
}

// Blocks generates a binary blocks dataset (NStates is forced to 2).
func Blocks(opts Options) (*Dataset, error) {
	opts.NStates = 2
	return BlocksMultinomial(opts)
}

// BlocksMultinomial generates a dataset whose labelings are constant on
// BlockSize×BlockSize blocks, each block drawing its state uniformly. The
// evidence of every cell is the one-hot encoding of its state plus
// N(0, Noise²) per feature.
// Complexity: O(NSamples·H·W·NStates).
func BlocksMultinomial(opts Options) (*Dataset, error) {
	if opts.NSamples < 1 || opts.Height < 1 || opts.Width < 1 || opts.BlockSize < 1 || opts.NStates < 2 || opts.Noise < 0 {
		return nil, fmt.Errorf("%w: %+v", ErrOptions, opts)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = defaultSeed
	}

	ds := &Dataset{
		X: make([]gridcrf.Image, opts.NSamples),
		Y: make([]gridcrf.Labeling, opts.NSamples),
	}
	for i := 0; i < opts.NSamples; i++ {
		rng := rand.New(rand.NewSource(deriveSeed(seed, uint64(i))))
		ds.Y[i] = blockLabels(rng, opts)
		ds.X[i] = evidence(rng, ds.Y[i], opts)
	}

	return ds, nil
}

func blockLabels(rng *rand.Rand, opts Options) gridcrf.Labeling {
	bh := (opts.Height + opts.BlockSize - 1) / opts.BlockSize
	bw := (opts.Width + opts.BlockSize - 1) / opts.BlockSize
	states := make([]int, bh*bw)
	for j := range states {
		states[j] = rng.Intn(opts.NStates)
	}
	y := make(gridcrf.Labeling, opts.Height)
	for r := range y {
		y[r] = make([]int, opts.Width)
		for c := range y[r] {
			y[r][c] = states[(r/opts.BlockSize)*bw+c/opts.BlockSize]
		}
	}

	return y
}

func evidence(rng *rand.Rand, y gridcrf.Labeling, opts Options) gridcrf.Image {
	x := make(gridcrf.Image, len(y))
	for r := range y {
		x[r] = make([][]float64, len(y[r]))
		for c, s := range y[r] {
			cell := make([]float64, opts.NStates)
			cell[s] = 1
			if opts.Noise > 0 {
				for f := range cell {
					cell[f] += opts.Noise * rng.NormFloat64()
				}
			}
			x[r][c] = cell
		}
	}

	return x
}

// deriveSeed mixes a parent seed and a stream identifier (SplitMix64 finalizer).
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return int64(x)
}
