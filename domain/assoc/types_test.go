package assoc

import (
	"testing"

	"goassoc/domain/core"
)

func TestNewPairResultNormalizesOrder(t *testing.T) {
	r, err := NewPairResult("geneZ", "geneA", 4.2, 0.03, TestChiSquare, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.FeatureA != "geneA" || r.FeatureB != "geneZ" {
		t.Errorf("expected lexicographic order (geneA, geneZ), got (%s, %s)", r.FeatureA, r.FeatureB)
	}
	if r.Key() != core.NewPairKey("geneA", "geneZ") {
		t.Errorf("canonical key mismatch: %s", r.Key())
	}
}

func TestNewPairResultValidation(t *testing.T) {
	if _, err := NewPairResult("a", "a", 0, 0.5, TestChiSquare, 10); err == nil {
		t.Error("expected error for self-pair")
	}
	if _, err := NewPairResult("a", "b", 0, 1.5, TestChiSquare, 10); err == nil {
		t.Error("expected error for p-value > 1")
	}
	if _, err := NewPairResult("a", "b", 0, 0.5, TestChiSquare, 0); err == nil {
		t.Error("expected error for zero sample size")
	}
}

func TestPairResultWeightSelection(t *testing.T) {
	r := MustNewPairResult("a", "b", 1, 0.01, TestChiSquare, 40)
	r.Effect = EffectSizes{Phi: -0.4, CramersV: 0.4, LogOdds: -1.2}

	if w := r.Weight(WeightPhi); w != -0.4 {
		t.Errorf("phi weight: expected -0.4, got %v", w)
	}
	if w := r.Weight(WeightCramersV); w != 0.4 {
		t.Errorf("cramers_v weight: expected 0.4, got %v", w)
	}
	if w := r.Weight(WeightLogOdds); w != -1.2 {
		t.Errorf("log_odds weight: expected -1.2, got %v", w)
	}
}

func TestSortPairsCanonical(t *testing.T) {
	pairs := []PairResult{
		*MustNewPairResult("c", "d", 0, 0.5, TestChiSquare, 10),
		*MustNewPairResult("a", "d", 0, 0.5, TestChiSquare, 10),
		*MustNewPairResult("a", "b", 0, 0.5, TestChiSquare, 10),
	}
	SortPairsCanonical(pairs)

	if pairs[0].FeatureA != "a" || pairs[0].FeatureB != "b" {
		t.Errorf("expected (a,b) first, got (%s,%s)", pairs[0].FeatureA, pairs[0].FeatureB)
	}
	if pairs[1].FeatureA != "a" || pairs[1].FeatureB != "d" {
		t.Errorf("expected (a,d) second, got (%s,%s)", pairs[1].FeatureA, pairs[1].FeatureB)
	}
	if pairs[2].FeatureA != "c" || pairs[2].FeatureB != "d" {
		t.Errorf("expected (c,d) third, got (%s,%s)", pairs[2].FeatureA, pairs[2].FeatureB)
	}
}

func TestParseWeightMetric(t *testing.T) {
	if _, err := ParseWeightMetric("phi"); err != nil {
		t.Errorf("phi should parse: %v", err)
	}
	if _, err := ParseWeightMetric("jaccard"); err == nil {
		t.Error("jaccard should not parse")
	}
}

func TestNewExclusivePatternSortsFeatures(t *testing.T) {
	p, err := NewExclusivePattern([]core.FeatureKey{"z", "a"}, 0.1, 0.3, PatternMutuallyExclusive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Features[0] != "a" || p.Features[1] != "z" {
		t.Errorf("features not sorted: %v", p.Features)
	}
	if p.Delta != 0.1-0.3 {
		t.Errorf("delta should be observed-expected, got %v", p.Delta)
	}

	if _, err := NewExclusivePattern([]core.FeatureKey{"a"}, 0, 0, PatternNeutral); err == nil {
		t.Error("expected error for single-feature pattern")
	}
	if _, err := NewExclusivePattern([]core.FeatureKey{"a", "a"}, 0, 0, PatternNeutral); err == nil {
		t.Error("expected error for repeated feature")
	}
}

func TestGraphValidate(t *testing.T) {
	good := &AssociationGraph{
		Nodes: []Node{{Feature: "a"}, {Feature: "b"}},
		Edges: []Edge{{Source: "a", Target: "b", Weight: 0.5}},
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid graph rejected: %v", err)
	}

	selfLoop := &AssociationGraph{
		Nodes: []Node{{Feature: "a"}},
		Edges: []Edge{{Source: "a", Target: "a"}},
	}
	if err := selfLoop.Validate(); err == nil {
		t.Error("self-loop should fail validation")
	}

	nonCanonical := &AssociationGraph{
		Nodes: []Node{{Feature: "a"}, {Feature: "b"}},
		Edges: []Edge{{Source: "b", Target: "a"}},
	}
	if err := nonCanonical.Validate(); err == nil {
		t.Error("non-canonical edge order should fail validation")
	}

	duplicate := &AssociationGraph{
		Nodes: []Node{{Feature: "a"}, {Feature: "b"}},
		Edges: []Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "b"},
		},
	}
	if err := duplicate.Validate(); err == nil {
		t.Error("duplicate edge should fail validation")
	}
}

func TestBundleSignificantAndFingerprint(t *testing.T) {
	build := func() *ResultBundle {
		p1 := *MustNewPairResult("a", "b", 9.1, 0.001, TestChiSquare, 50)
		p1.AdjustedP = 0.003
		p1.Rejected = true
		p2 := *MustNewPairResult("a", "c", 0.2, 0.7, TestChiSquare, 50)
		p2.AdjustedP = 0.7

		manifest := NewRunManifest("run-1", "matrix-hash", 42, 0.05)
		return &ResultBundle{
			RunID:    "run-1",
			Pairs:    []PairResult{p1, p2},
			Manifest: manifest,
		}
	}

	b := build()
	sig := b.Significant()
	if len(sig) != 1 || sig[0].FeatureA != "a" || sig[0].FeatureB != "b" {
		t.Fatalf("expected single significant pair (a,b), got %v", sig)
	}

	// Fingerprints ignore the per-run UUID and depend on matrix + seed + results.
	other := build()
	other.RunID = "run-2"
	other.Manifest.RunID = "run-2"
	if b.Fingerprint() != other.Fingerprint() {
		t.Error("fingerprint should be stable across run IDs for identical results")
	}

	other.Manifest.Seed = 43
	if b.Fingerprint() == other.Fingerprint() {
		t.Error("fingerprint should change when the seed changes")
	}
}

func TestBundleAddWarningCounts(t *testing.T) {
	b := &ResultBundle{Manifest: NewRunManifest("run-1", "m", 42, 0.05)}
	b.AddWarning(Warning{Component: "patterns", Code: WarningResourceExhausted, Message: "ceiling"})
	b.AddWarning(Warning{Component: "hypothesis", Code: WarningDegenerateInput, Message: "flat column", Pair: core.NewPairKey("a", "b")})

	if len(b.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(b.Warnings))
	}
	if b.Manifest.WarningCounts[WarningResourceExhausted] != 1 {
		t.Errorf("manifest should count RESOURCE_EXHAUSTED once")
	}
	if b.Manifest.WarningCounts[WarningDegenerateInput] != 1 {
		t.Errorf("manifest should count DEGENERATE_INPUT once")
	}
}
