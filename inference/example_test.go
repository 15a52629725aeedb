package inference_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/ssvm/inference"
)

// ExampleNew smooths a three-node chain whose middle node weakly prefers
// state 0 while a Potts term rewards agreeing neighbours.
func ExampleNew() {
	potts := []float64{1, 0, 0, 1}
	e := &inference.Energy{
		NStates:  2,
		Unary:    [][]float64{{0, 1}, {0.2, 0}, {0, 1}},
		Edges:    [][2]int{{0, 1}, {1, 2}},
		Pairwise: [][]float64{potts, potts},
	}

	for _, m := range []inference.Method{inference.MethodICM, inference.MethodExhaustive} {
		o, err := inference.New(m, inference.DefaultOptions())
		if err != nil {
			fmt.Println(err)
			return
		}
		labels, err := o.Solve(context.Background(), e)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("%s (%s): %v score %.1f\n", o.Method(), o.Mode(), labels, e.Score(labels))
	}
	// Output:
	// icm (approximate): [1 1 1] score 4.0
	// exhaustive (exact): [1 1 1] score 4.0
}
