// Package gridgraph defines core types, options, and sentinel errors
// for grid topologies.
package gridgraph

import (
	"errors"
)

// Sentinel errors for gridgraph operations.
var (
	// ErrEmptyGrid indicates the grid has no rows or no columns.
	ErrEmptyGrid = errors.New("gridgraph: grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("gridgraph: all rows must have the same length")
	// ErrConnectivity indicates an unsupported connectivity value.
	ErrConnectivity = errors.New("gridgraph: connectivity must be Conn4 or Conn8")
)

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, E, S, W.
	Conn4 Connectivity = iota
	// Conn8 uses 8-directional connectivity: N, NE, E, SE, S, SW, W, NW.
	Conn8
)

// Neighborhood returns the number of neighbors of an interior cell (4 or 8).
func (c Connectivity) Neighborhood() int {
	if c == Conn8 {
		return 8
	}

	return 4
}

// EdgeKind names the direction of an edge. Every undirected neighbor pair is
// produced exactly once, oriented along its kind.
type EdgeKind int

const (
	// Right connects (x,y) → (x+1,y).
	Right EdgeKind = iota
	// Down connects (x,y) → (x,y+1).
	Down
	// UpRight connects (x,y+1) → (x+1,y).
	UpRight
	// DownRight connects (x,y) → (x+1,y+1).
	DownRight
)

// Edge is an oriented neighbor pair of row-major cell indices.
type Edge struct {
	From, To int
}

// Options contains tunable parameters for grid topologies.
type Options struct {
	// Conn chooses 4- or 8-directional connectivity.
	Conn Connectivity
}

// DefaultOptions returns Options with Conn=Conn4.
func DefaultOptions() Options {
	return Options{Conn: Conn4}
}

// Grid is an immutable Height×Width lattice.
type Grid struct {
	Width, Height int
	Conn          Connectivity
	kinds         []EdgeKind
}
