package network

import (
	"math"
	"reflect"
	"testing"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
)

func pair(a, b string, adjustedP, phi float64) assoc.PairResult {
	fa, fb := core.FeatureKey(a), core.FeatureKey(b)
	if fb < fa {
		fa, fb = fb, fa
	}
	return assoc.PairResult{
		FeatureA:   fa,
		FeatureB:   fb,
		Statistic:  12.3,
		PValue:     adjustedP / 2,
		TestKind:   assoc.TestChiSquare,
		SampleSize: 50,
		Effect: assoc.EffectSizes{
			Phi:      phi,
			CramersV: math.Abs(phi),
			LogOdds:  phi * 4,
		},
		AdjustedP: adjustedP,
		Rejected:  adjustedP <= 0.05,
	}
}

func degeneratePair(a, b string) assoc.PairResult {
	p := pair(a, b, 1.0, 0)
	p.TestKind = assoc.TestDegen
	p.Statistic = 0
	p.PValue = 1.0
	return p
}

func mustBuilder(t *testing.T, alpha, minEffect float64, betweenness bool) *Builder {
	t.Helper()
	b, err := NewBuilder(alpha, minEffect, assoc.WeightPhi, 1.5, betweenness)
	if err != nil {
		t.Fatalf("building builder: %v", err)
	}
	return b
}

func TestBuildRetainsOnlySignificantStrongPairs(t *testing.T) {
	pairs := []assoc.PairResult{
		pair("amrA", "amrB", 0.01, 0.8),  // retained
		pair("amrA", "amrC", 0.20, 0.9),  // fails alpha
		pair("amrB", "amrC", 0.01, 0.05), // fails minimum effect
	}

	b, err := NewBuilder(0.05, 0.1, assoc.WeightPhi, 1.5, false)
	if err != nil {
		t.Fatalf("building builder: %v", err)
	}
	g, err := b.Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.EdgeCount() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.EdgeCount())
	}
	e := g.Edges[0]
	if e.Source != "amrA" || e.Target != "amrB" || e.Weight != 0.8 {
		t.Errorf("wrong edge retained: %+v", e)
	}
	if g.NodeCount() != 2 {
		t.Errorf("expected nodes amrA and amrB, got %d nodes", g.NodeCount())
	}
	if !reflect.DeepEqual(g.Unconnected, []core.FeatureKey{"amrC"}) {
		t.Errorf("unconnected = %v, want [amrC]", g.Unconnected)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("graph invariants violated: %v", err)
	}
}

func TestBuildExcludesDegeneratePairs(t *testing.T) {
	pairs := []assoc.PairResult{
		degeneratePair("alwaysOn", "genA"),
		pair("genA", "genB", 0.001, 0.9),
	}

	g, err := mustBuilder(t, 0.05, 0, false).Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := g.FindNode("alwaysOn"); ok {
		t.Error("degenerate pair must not contribute a node")
	}
	if !reflect.DeepEqual(g.Unconnected, []core.FeatureKey{"alwaysOn"}) {
		t.Errorf("unconnected = %v, want [alwaysOn]", g.Unconnected)
	}
}

func TestBuildDeterministicRegardlessOfInputOrder(t *testing.T) {
	forward := []assoc.PairResult{
		pair("f1", "f2", 0.001, 0.9),
		pair("f2", "f3", 0.001, 0.8),
		pair("f1", "f3", 0.002, 0.7),
		pair("f4", "f5", 0.01, 0.6),
		pair("f3", "f4", 0.20, 0.5),
	}
	reversed := make([]assoc.PairResult, len(forward))
	for i, p := range forward {
		reversed[len(forward)-1-i] = p
	}

	b := mustBuilder(t, 0.05, 0, false)
	g1, err := b.Build(forward)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g2, err := b.Build(reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(g1, g2) {
		t.Error("identical edge sets in different input order produced different graphs")
	}
}

func TestBuildCommunityRecovery(t *testing.T) {
	// Two known modules joined by one weak bridge: a resistance clique
	// f1-f3 and a virulence clique f4-f6. Community detection must keep
	// them apart and the bridge must not merge them.
	pairs := []assoc.PairResult{
		pair("f1", "f2", 0.001, 0.9),
		pair("f1", "f3", 0.001, 0.9),
		pair("f2", "f3", 0.001, 0.9),
		pair("f4", "f5", 0.001, 0.8),
		pair("f4", "f6", 0.001, 0.8),
		pair("f5", "f6", 0.001, 0.8),
		pair("f3", "f4", 0.04, 0.2), // bridge
	}

	g, err := mustBuilder(t, 0.05, 0, false).Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c1, ok := g.CommunityOf("f1")
	if !ok {
		t.Fatal("f1 missing from communities")
	}
	c4, ok := g.CommunityOf("f4")
	if !ok {
		t.Fatal("f4 missing from communities")
	}

	if !reflect.DeepEqual(c1.Features, []core.FeatureKey{"f1", "f2", "f3"}) {
		t.Errorf("first module = %v, want [f1 f2 f3]", c1.Features)
	}
	if !reflect.DeepEqual(c4.Features, []core.FeatureKey{"f4", "f5", "f6"}) {
		t.Errorf("second module = %v, want [f4 f5 f6]", c4.Features)
	}
	if c1.ID == c4.ID {
		t.Error("bridge edge merged the two modules")
	}
	if c1.Density != 1.0 {
		t.Errorf("clique density = %f, want 1.0", c1.Density)
	}
	if g.Modularity <= 0.2 {
		t.Errorf("modularity = %f, expected clearly positive structure", g.Modularity)
	}
	t.Logf("modularity %.3f, communities %d", g.Modularity, len(g.Communities))
}

func TestBuildHubDetection(t *testing.T) {
	// Star around hubX plus one peripheral edge: hubX has centrality 1.0
	// against a population mean near 0.33, far beyond the 1.5-sigma cutoff.
	pairs := []assoc.PairResult{
		pair("hubX", "s1", 0.001, 0.7),
		pair("hubX", "s2", 0.001, 0.7),
		pair("hubX", "s3", 0.001, 0.7),
		pair("hubX", "s4", 0.001, 0.7),
		pair("hubX", "s5", 0.001, 0.7),
		pair("hubX", "s6", 0.001, 0.7),
		pair("s1", "s2", 0.01, 0.5),
	}

	g, err := mustBuilder(t, 0.05, 0, false).Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(g.Hubs, []core.FeatureKey{"hubX"}) {
		t.Errorf("hubs = %v, want [hubX]", g.Hubs)
	}
	hub, _ := g.FindNode("hubX")
	if !hub.IsHub || hub.DegreeCentrality != 1.0 {
		t.Errorf("hub node state wrong: %+v", hub)
	}
	leaf, _ := g.FindNode("s3")
	if leaf.IsHub {
		t.Error("leaf node flagged as hub")
	}
}

func TestBuildEmptyWhenNothingSignificant(t *testing.T) {
	pairs := []assoc.PairResult{
		pair("f1", "f2", 0.5, 0.9),
		pair("f2", "f3", 0.9, 0.8),
	}

	g, err := mustBuilder(t, 0.05, 0, false).Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 0 || g.EdgeCount() != 0 {
		t.Errorf("expected empty graph, got %d nodes %d edges", g.NodeCount(), g.EdgeCount())
	}
	if !reflect.DeepEqual(g.Unconnected, []core.FeatureKey{"f1", "f2", "f3"}) {
		t.Errorf("unconnected = %v, want all three features", g.Unconnected)
	}
	if g.Modularity != 0 {
		t.Errorf("empty graph modularity = %f, want 0", g.Modularity)
	}
}

func TestBuildBetweennessPathCenter(t *testing.T) {
	pairs := []assoc.PairResult{
		pair("left", "mid", 0.001, 0.6),
		pair("mid", "right", 0.001, 0.6),
	}

	g, err := mustBuilder(t, 0.05, 0, true).Build(pairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mid, _ := g.FindNode("mid")
	if mid.Betweenness != 1.0 {
		t.Errorf("path center betweenness = %f, want 1.0", mid.Betweenness)
	}
	left, _ := g.FindNode("left")
	if left.Betweenness != 0 {
		t.Errorf("path endpoint betweenness = %f, want 0", left.Betweenness)
	}
	if mid.DegreeCentrality != 1.0 || left.DegreeCentrality != 0.5 {
		t.Errorf("degree centralities wrong: mid %f, left %f", mid.DegreeCentrality, left.DegreeCentrality)
	}
}

func TestBuildWeightMetricSelection(t *testing.T) {
	p := pair("f1", "f2", 0.001, 0.5) // log-odds is phi*4 = 2.0

	b, err := NewBuilder(0.05, 0, assoc.WeightLogOdds, 1.5, false)
	if err != nil {
		t.Fatalf("building builder: %v", err)
	}
	g, err := b.Build([]assoc.PairResult{p})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Edges[0].Weight != 2.0 {
		t.Errorf("edge weight = %f, want the log-odds value 2.0", g.Edges[0].Weight)
	}
	if g.WeightMetric != assoc.WeightLogOdds {
		t.Errorf("graph metric = %s, want log_odds", g.WeightMetric)
	}
}

func TestNewBuilderValidation(t *testing.T) {
	if _, err := NewBuilder(0, 0, assoc.WeightPhi, 1.5, false); err == nil {
		t.Error("expected error for alpha 0")
	}
	if _, err := NewBuilder(0.05, -1, assoc.WeightPhi, 1.5, false); err == nil {
		t.Error("expected error for negative minimum effect")
	}
	if _, err := NewBuilder(0.05, 0, assoc.WeightMetric("bogus"), 1.5, false); err == nil {
		t.Error("expected error for unknown weight metric")
	}
	if _, err := NewBuilder(0.05, 0, assoc.WeightPhi, 0, false); err == nil {
		t.Error("expected error for zero hub multiplier")
	}
}
