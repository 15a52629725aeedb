// Package gridgraph describes the topology of a 2D grid of cells as a graph,
// the structure underlying grid-shaped conditional random fields.
//
// What:
//
//   - Grid wraps a Height×Width lattice with 4- or 8-connectivity.
//   - Cells are numbered row-major: index = y*Width + x.
//   - Edges are produced grouped by direction (Right, Down, UpRight, DownRight),
//     so direction-aware models can attach separate parameters per group.
//
// Complexity:
//
//   - New:           O(1).
//   - EdgesByKind:   O(W×H) time and memory per kind.
//   - Edges:         O(W×H×d), Memory: O(W×H×d)    (d = 2 or 4 kinds).
//
// Options:
//
//   - Options.Conn: Conn4 (Right, Down) or Conn8 (adds UpRight, DownRight).
//
// Errors:
//
//   - ErrEmptyGrid: height or width is not positive.
//   - ErrNonRectangular: rows of a label/evidence grid have differing lengths.
//   - ErrConnectivity: connectivity is neither Conn4 nor Conn8.
package gridgraph
