package flow_test

import (
	"fmt"
	"testing"

	"github.com/katalvlaran/ssvm/flow"
)

// BenchmarkFlowAlgorithms measures Dinic and Edmonds–Karp on random networks
// of increasing size. Each iteration resets the residuals so the topology is reused.
func BenchmarkFlowAlgorithms(b *testing.B) {
	sizes := []int{16, 64, 128}
	for _, V := range sizes {
		nw := buildRandomNetwork(b, V, 0.1, 50, 42)
		b.Run(fmt.Sprintf("Dinic/V=%d", V), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				nw.Reset()
				_, _ = flow.Dinic(nw, 0, V-1, flow.DefaultOptions())
			}
		})
		b.Run(fmt.Sprintf("EdmondsKarp/V=%d", V), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				nw.Reset()
				_, _ = flow.EdmondsKarp(nw, 0, V-1, flow.DefaultOptions())
			}
		})
	}
}
