package gridgraph

// New constructs a Grid of the given shape.
// Returns ErrEmptyGrid if height or width is not positive,
// ErrConnectivity if opts.Conn is unknown.
// Complexity: O(1).
func New(height, width int, opts Options) (*Grid, error) {
	if height <= 0 || width <= 0 {
		return nil, ErrEmptyGrid
	}
	var kinds []EdgeKind
	switch opts.Conn {
	case Conn4:
		kinds = []EdgeKind{Right, Down}
	case Conn8:
		kinds = []EdgeKind{Right, Down, UpRight, DownRight}
	default:
		return nil, ErrConnectivity
	}

	return &Grid{Width: width, Height: height, Conn: opts.Conn, kinds: kinds}, nil
}

// Shape validates that rows is a non-empty rectangular grid and returns its
// height and width. rowLen reports the length of row y.
// Complexity: O(H).
func Shape(rows int, rowLen func(y int) int) (height, width int, err error) {
	if rows == 0 || rowLen(0) == 0 {
		return 0, 0, ErrEmptyGrid
	}
	width = rowLen(0)
	for y := 1; y < rows; y++ {
		if rowLen(y) != width {
			return 0, 0, ErrNonRectangular
		}
	}

	return rows, width, nil
}

// Size returns the number of cells.
func (g *Grid) Size() int { return g.Width * g.Height }

// Kinds returns the edge kinds present under g.Conn, in canonical order.
// The returned slice must not be modified.
func (g *Grid) Kinds() []EdgeKind { return g.kinds }

// InBounds reports whether (x,y) lies within the grid boundaries.
// Complexity: O(1).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Index maps (x,y) to a row‑major index: y*Width + x.
// Complexity: O(1).
func (g *Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Coordinate converts a row‑major index back to (x,y).
// Complexity: O(1).
func (g *Grid) Coordinate(idx int) (x, y int) {
	return idx % g.Width, idx / g.Width
}

// EdgesByKind lists the edges of one direction, ordered row-major by their
// source cell. Kinds not present under g.Conn yield nil.
// Complexity: O(W×H).
func (g *Grid) EdgesByKind(kind EdgeKind) []Edge {
	var (
		out    []Edge
		x, y   int
		dx, dy int
		sy     int // source row offset (UpRight starts one row below)
	)
	switch kind {
	case Right:
		dx, dy = 1, 0
	case Down:
		dx, dy = 0, 1
	case UpRight:
		dx, dy, sy = 1, -1, 1
	case DownRight:
		dx, dy = 1, 1
	default:
		return nil
	}
	if kind >= UpRight && g.Conn != Conn8 {
		return nil
	}
	out = make([]Edge, 0, g.Width*g.Height)
	for y = sy; y < g.Height; y++ {
		for x = 0; x < g.Width; x++ {
			nx, ny := x+dx, y+dy
			if !g.InBounds(nx, ny) {
				continue
			}
			out = append(out, Edge{From: g.Index(x, y), To: g.Index(nx, ny)})
		}
	}

	return out
}

// Edges concatenates EdgesByKind over Kinds() and reports, for each kind,
// how many edges it contributed. counts[i] belongs to Kinds()[i].
// Complexity: O(W×H×d).
func (g *Grid) Edges() (edges []Edge, counts []int) {
	counts = make([]int, len(g.kinds))
	for i, k := range g.kinds {
		ek := g.EdgesByKind(k)
		counts[i] = len(ek)
		edges = append(edges, ek...)
	}

	return edges, counts
}
