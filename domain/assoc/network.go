package assoc

import (
	"fmt"

	"goassoc/domain/core"
)

// ============================================================================
// ASSOCIATION GRAPH
// ============================================================================

// Node is a feature participating in at least one significant association
type Node struct {
	Feature          core.FeatureKey `json:"feature"`
	Degree           int             `json:"degree"`
	DegreeCentrality float64         `json:"degree_centrality"` // Degree / (nodes-1)
	Betweenness      float64         `json:"betweenness_centrality,omitempty"`
	CommunityID      int             `json:"community_id"`
	IsHub            bool            `json:"is_hub"`
}

// Edge is one retained significant pair. Source is always the
// lexicographically smaller feature so the edge set has a canonical form.
type Edge struct {
	Source    core.FeatureKey `json:"source"`
	Target    core.FeatureKey `json:"target"`
	Weight    float64         `json:"weight"` // Chosen effect size, may be negative
	AdjustedP float64         `json:"adjusted_p"`
}

// Key returns the canonical pair key of the edge
func (e Edge) Key() core.PairKey { return core.NewPairKey(e.Source, e.Target) }

// Community is a modularity-detected module of features
type Community struct {
	ID       int               `json:"id"`
	Features []core.FeatureKey `json:"features"` // Sorted
	Size     int               `json:"size"`
	Density  float64           `json:"density"` // Internal edges / possible internal edges
}

// AssociationGraph is the undirected network of significant associations.
// Rebuilt fresh for every analysis run; never persisted by the core.
type AssociationGraph struct {
	Nodes        []Node            `json:"nodes"` // Sorted by feature key
	Edges        []Edge            `json:"edges"` // Canonical order, no self-loops, no duplicates
	Communities  []Community       `json:"communities"`
	Hubs         []core.FeatureKey `json:"hubs"`                 // Degree centrality above the per-graph cutoff
	Unconnected  []core.FeatureKey `json:"unconnected_features"` // Features with no significant edges
	Modularity   float64           `json:"modularity"`           // Of the final partition
	WeightMetric WeightMetric      `json:"weight_metric"`
}

// NodeCount returns the number of connected features
func (g *AssociationGraph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of retained associations
func (g *AssociationGraph) EdgeCount() int { return len(g.Edges) }

// FindNode returns the node for a feature key
func (g *AssociationGraph) FindNode(f core.FeatureKey) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Feature == f {
			return n, true
		}
	}
	return Node{}, false
}

// CommunityOf returns the community containing a feature
func (g *AssociationGraph) CommunityOf(f core.FeatureKey) (Community, bool) {
	n, ok := g.FindNode(f)
	if !ok {
		return Community{}, false
	}
	for _, c := range g.Communities {
		if c.ID == n.CommunityID {
			return c, true
		}
	}
	return Community{}, false
}

// Validate checks the structural invariants: undirected canonical edges,
// no self-loops, no duplicates, and every edge endpoint present as a node
func (g *AssociationGraph) Validate() error {
	nodes := make(map[core.FeatureKey]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if nodes[n.Feature] {
			return fmt.Errorf("duplicate node %s", n.Feature)
		}
		nodes[n.Feature] = true
	}

	seen := make(map[core.PairKey]bool, len(g.Edges))
	for _, e := range g.Edges {
		if e.Source == e.Target {
			return fmt.Errorf("self-loop on %s", e.Source)
		}
		if e.Target < e.Source {
			return fmt.Errorf("edge %s-%s not in canonical order", e.Source, e.Target)
		}
		key := e.Key()
		if seen[key] {
			return fmt.Errorf("duplicate edge %s", key)
		}
		seen[key] = true
		if !nodes[e.Source] || !nodes[e.Target] {
			return fmt.Errorf("edge %s references a missing node", key)
		}
	}
	return nil
}
