package network

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
	"goassoc/internal/errors"
)

// ============================================================================
// ASSOCIATION NETWORK - Graph assembly from corrected pair results
// ============================================================================

// Builder turns corrected pair results into an association graph: it prunes
// by significance and effect magnitude, derives per-node centrality,
// partitions the survivors into communities, and flags hubs against a
// per-graph threshold.
type Builder struct {
	alpha              float64
	minEffect          float64
	metric             assoc.WeightMetric
	hubMultiplier      float64
	computeBetweenness bool
}

// NewBuilder validates thresholds and the weight metric up front so Build
// never has to.
func NewBuilder(alpha, minEffect float64, metric assoc.WeightMetric, hubMultiplier float64, computeBetweenness bool) (*Builder, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, errors.InvalidInput(fmt.Sprintf("alpha must be in (0,1), got %f", alpha))
	}
	if minEffect < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("minimum effect must be non-negative, got %f", minEffect))
	}
	if hubMultiplier <= 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("hub multiplier must be positive, got %f", hubMultiplier))
	}
	if _, err := assoc.ParseWeightMetric(string(metric)); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return &Builder{
		alpha:              alpha,
		minEffect:          minEffect,
		metric:             metric,
		hubMultiplier:      hubMultiplier,
		computeBetweenness: computeBetweenness,
	}, nil
}

// Build assembles the graph. Features that appear in the input but retain
// no significant edge are excluded from the graph and reported in the
// unconnected list instead. The result is deterministic for a given input
// set regardless of its order: nodes, edges, and communities all follow
// feature-key order.
func (b *Builder) Build(pairs []assoc.PairResult) (*assoc.AssociationGraph, error) {
	universe := make(map[core.FeatureKey]bool)
	seen := make(map[core.PairKey]bool)
	edges := make([]assoc.Edge, 0, len(pairs))

	for _, p := range pairs {
		universe[p.FeatureA] = true
		universe[p.FeatureB] = true

		if p.IsDegenerate() || p.FeatureA == p.FeatureB {
			continue
		}
		if p.AdjustedP > b.alpha {
			continue
		}
		w := p.Weight(b.metric)
		if math.Abs(w) < b.minEffect {
			continue
		}
		key := p.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		src, dst := p.FeatureA, p.FeatureB
		if dst < src {
			src, dst = dst, src
		}
		edges = append(edges, assoc.Edge{Source: src, Target: dst, Weight: w, AdjustedP: p.AdjustedP})
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	connected := make(map[core.FeatureKey]bool)
	for _, e := range edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	unconnected := make([]core.FeatureKey, 0, len(universe))
	for f := range universe {
		if !connected[f] {
			unconnected = append(unconnected, f)
		}
	}
	sort.Slice(unconnected, func(i, j int) bool { return unconnected[i] < unconnected[j] })

	g := &assoc.AssociationGraph{
		Nodes:        []assoc.Node{},
		Edges:        edges,
		Communities:  []assoc.Community{},
		Hubs:         []core.FeatureKey{},
		Unconnected:  unconnected,
		WeightMetric: b.metric,
	}
	if len(edges) == 0 {
		return g, nil
	}

	// Node indices in feature-key order; the community tie-break "lowest
	// node identifier" therefore means lexicographically smallest feature.
	keys := make([]core.FeatureKey, 0, len(connected))
	for f := range connected {
		keys = append(keys, f)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	index := make(map[core.FeatureKey]int, len(keys))
	for i, f := range keys {
		index[f] = i
	}

	n := len(keys)
	degrees := make([]int, n)
	ledges := make([]louvainEdge, 0, len(edges))
	for _, e := range edges {
		u, v := index[e.Source], index[e.Target]
		degrees[u]++
		degrees[v]++
		ledges = append(ledges, louvainEdge{u: u, v: v, weight: math.Abs(e.Weight)})
	}

	centrality := make([]float64, n)
	for i, d := range degrees {
		centrality[i] = float64(d) / float64(n-1)
	}

	labels := louvainPartition(n, ledges)
	g.Modularity = modularityQ(n, ledges, labels)

	var betweenness []float64
	if b.computeBetweenness {
		betweenness = betweennessScores(n, ledges)
	}

	// Hub cutoff is recomputed per graph from this graph's own centrality
	// distribution, never a global constant.
	mean := stat.Mean(centrality, nil)
	sd := 0.0
	if n >= 2 {
		sd = stat.StdDev(centrality, nil)
	}
	cutoff := mean + b.hubMultiplier*sd

	g.Nodes = make([]assoc.Node, n)
	for i, f := range keys {
		node := assoc.Node{
			Feature:          f,
			Degree:           degrees[i],
			DegreeCentrality: centrality[i],
			CommunityID:      labels[i],
			IsHub:            centrality[i] > cutoff,
		}
		if betweenness != nil {
			node.Betweenness = betweenness[i]
		}
		g.Nodes[i] = node
		if node.IsHub {
			g.Hubs = append(g.Hubs, f)
		}
	}

	g.Communities = buildCommunities(keys, labels, edges, index)

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(err, "assembled graph failed validation")
	}
	return g, nil
}

// buildCommunities groups nodes by partition label and measures each
// module's internal density.
func buildCommunities(keys []core.FeatureKey, labels []int, edges []assoc.Edge, index map[core.FeatureKey]int) []assoc.Community {
	features := make(map[int][]core.FeatureKey)
	for i, f := range keys {
		features[labels[i]] = append(features[labels[i]], f)
	}

	internal := make(map[int]int)
	for _, e := range edges {
		lu := labels[index[e.Source]]
		lv := labels[index[e.Target]]
		if lu == lv {
			internal[lu]++
		}
	}

	ids := make([]int, 0, len(features))
	for id := range features {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	communities := make([]assoc.Community, 0, len(ids))
	for _, id := range ids {
		members := features[id]
		size := len(members)
		density := 0.0
		if size > 1 {
			density = float64(internal[id]) / float64(size*(size-1)/2)
		}
		communities = append(communities, assoc.Community{
			ID:       id,
			Features: members,
			Size:     size,
			Density:  density,
		})
	}
	return communities
}
