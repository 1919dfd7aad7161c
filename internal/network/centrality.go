package network

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
	graphnet "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

// toWeightedGraph mirrors node indices 0..n-1 into a gonum graph carrying
// the absolute edge weights.
func toWeightedGraph(n int, edges []louvainEdge) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.u), T: simple.Node(e.v), W: e.weight})
	}
	return g
}

// modularityQ scores a partition over the weighted graph. Communities are
// assembled in sorted label order so the floating-point sum is reproducible.
func modularityQ(n int, edges []louvainEdge, labels []int) float64 {
	if n == 0 || len(edges) == 0 {
		return 0
	}
	byLabel := make(map[int][]graph.Node)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], simple.Node(i))
	}
	keys := make([]int, 0, len(byLabel))
	for l := range byLabel {
		keys = append(keys, l)
	}
	sort.Ints(keys)

	parts := make([][]graph.Node, 0, len(keys))
	for _, l := range keys {
		parts = append(parts, byLabel[l])
	}
	return community.Q(toWeightedGraph(n, edges), parts, 1)
}

// betweennessScores computes normalized betweenness centrality per node.
// The raw Brandes accumulation counts ordered endpoint pairs, so dividing
// by (n-1)(n-2) puts a star's center at exactly 1.
func betweennessScores(n int, edges []louvainEdge) []float64 {
	scores := make([]float64, n)
	if n <= 2 || len(edges) == 0 {
		return scores
	}
	raw := graphnet.Betweenness(toWeightedGraph(n, edges))
	norm := float64((n - 1) * (n - 2))
	for id, v := range raw {
		scores[int(id)] = v / norm
	}
	return scores
}
