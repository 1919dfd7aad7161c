package testkit

import (
	"reflect"
	"testing"

	"goassoc/domain/core"
	"goassoc/domain/genotype"
)

func crossCounts(t *testing.T, m *genotype.FeatureMatrix, a, b string) (n11, n10, n01, n00 int) {
	t.Helper()
	ja, ok := m.FeatureIndex(core.FeatureKey(a))
	if !ok {
		t.Fatalf("feature %s missing", a)
	}
	jb, ok := m.FeatureIndex(core.FeatureKey(b))
	if !ok {
		t.Fatalf("feature %s missing", b)
	}
	ca, cb := m.Column(ja), m.Column(jb)
	for i := range ca {
		switch {
		case ca[i] == 1 && cb[i] == 1:
			n11++
		case ca[i] == 1:
			n10++
		case cb[i] == 1:
			n01++
		default:
			n00++
		}
	}
	return
}

func TestGenerateLatentClusterShape(t *testing.T) {
	m, err := NewMatrixGenerator(DefaultMatrixConfig()).GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if m.StrainCount() != 60 || m.FeatureCount() != 12 {
		t.Errorf("matrix is %dx%d, want 60x12", m.StrainCount(), m.FeatureCount())
	}
	for _, key := range []string{"linked_01", "linked_02", "linked_03"} {
		if _, ok := m.FeatureIndex(core.FeatureKey(key)); !ok {
			t.Errorf("missing cluster feature %s", key)
		}
	}
	for j := 0; j < m.FeatureCount(); j++ {
		if m.IsDegenerate(j) {
			t.Errorf("column %s is constant", m.FeatureAt(j))
		}
	}
}

func TestGenerateLatentClusterPlantsAssociation(t *testing.T) {
	m, err := NewMatrixGenerator(DefaultMatrixConfig()).GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	pairs := [][2]string{
		{"linked_01", "linked_02"},
		{"linked_01", "linked_03"},
		{"linked_02", "linked_03"},
	}
	for _, pr := range pairs {
		n11, n10, n01, n00 := crossCounts(t, m, pr[0], pr[1])
		// Positive dependence: concordant cells dominate the discordant ones.
		if n11*n00 <= n10*n01 {
			t.Errorf("%s/%s not positively associated: table [%d %d %d %d]",
				pr[0], pr[1], n11, n10, n01, n00)
		}
	}
}

func TestGenerateComplementaryOpposition(t *testing.T) {
	m, err := NewMatrixGenerator(DefaultMatrixConfig()).GenerateComplementary()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	for _, pr := range [][2]string{
		{"excl_01a", "excl_01b"},
		{"excl_02a", "excl_02b"},
		{"excl_03a", "excl_03b"},
	} {
		n11, n10, n01, n00 := crossCounts(t, m, pr[0], pr[1])
		if n11*n00 >= n10*n01 {
			t.Errorf("%s/%s not mutually exclusive: table [%d %d %d %d]",
				pr[0], pr[1], n11, n10, n01, n00)
		}
	}
}

func TestGenerateIdenticalPairColumnsEqual(t *testing.T) {
	m, err := NewMatrixGenerator(DefaultMatrixConfig()).GenerateIdenticalPair()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	ja, _ := m.FeatureIndex("twin_a")
	jb, _ := m.FeatureIndex("twin_b")
	if !reflect.DeepEqual(m.Column(ja), m.Column(jb)) {
		t.Error("twin columns differ")
	}
}

func TestGenerateNoiseShape(t *testing.T) {
	m, err := NewMatrixGenerator(DefaultMatrixConfig()).GenerateNoise()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if m.FeatureCount() != 12 {
		t.Errorf("feature count = %d, want 12", m.FeatureCount())
	}
	for j := 0; j < m.FeatureCount(); j++ {
		if m.IsDegenerate(j) {
			t.Errorf("column %s is constant", m.FeatureAt(j))
		}
	}
}

func TestGeneratorDeterministicAcrossCallOrder(t *testing.T) {
	cfg := DefaultMatrixConfig()

	first, err := NewMatrixGenerator(cfg).GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	// A second generator produces other fixtures first; the cluster fixture
	// must come out identical anyway.
	gen := NewMatrixGenerator(cfg)
	if _, err := gen.GenerateNoise(); err != nil {
		t.Fatalf("noise generation failed: %v", err)
	}
	if _, err := gen.GenerateComplementary(); err != nil {
		t.Fatalf("complementary generation failed: %v", err)
	}
	second, err := gen.GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}

	if first.Fingerprint() != second.Fingerprint() {
		t.Errorf("fixture depends on call order: %s vs %s", first.Fingerprint(), second.Fingerprint())
	}
}

func TestGeneratorSeedChangesOutput(t *testing.T) {
	cfgA := DefaultMatrixConfig()
	cfgB := DefaultMatrixConfig()
	cfgB.Seed = 43

	a, err := NewMatrixGenerator(cfgA).GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	b, err := NewMatrixGenerator(cfgB).GenerateLatentCluster()
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different seeds produced identical matrices")
	}
}

func TestGeneratorRejectsImpossibleConfig(t *testing.T) {
	cfg := DefaultMatrixConfig()
	cfg.ClusterSize = 20
	cfg.FeatureCount = 10

	if _, err := NewMatrixGenerator(cfg).GenerateLatentCluster(); err == nil {
		t.Error("expected error when cluster exceeds feature count")
	}
	if _, err := NewMatrixGenerator(cfg).GenerateComplementary(); err == nil {
		t.Error("expected error when pairs exceed feature slots")
	}
}
