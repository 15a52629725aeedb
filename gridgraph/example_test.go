package gridgraph_test

import (
	"fmt"

	"github.com/katalvlaran/ssvm/gridgraph"
)

// ExampleGrid_Edges lists the horizontal and vertical edges of a 2×2 grid.
func ExampleGrid_Edges() {
	g, _ := gridgraph.New(2, 2, gridgraph.DefaultOptions())
	edges, counts := g.Edges()
	fmt.Println(counts)
	fmt.Println(edges)
	// Output:
	// [2 2]
	// [{0 1} {2 3} {0 2} {1 3}]
}
