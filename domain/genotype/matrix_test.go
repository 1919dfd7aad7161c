package genotype

import (
	"errors"
	"testing"

	"goassoc/domain/core"
)

func strains(keys ...string) []core.StrainKey {
	out := make([]core.StrainKey, len(keys))
	for i, k := range keys {
		out[i] = core.StrainKey(k)
	}
	return out
}

func features(keys ...string) []core.FeatureKey {
	out := make([]core.FeatureKey, len(keys))
	for i, k := range keys {
		out[i] = core.FeatureKey(k)
	}
	return out
}

func TestNewFeatureMatrixValid(t *testing.T) {
	m, err := NewFeatureMatrix(
		strains("s1", "s2", "s3"),
		features("geneA", "geneB"),
		[][]uint8{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("expected valid matrix, got error: %v", err)
	}

	if m.StrainCount() != 3 {
		t.Errorf("expected 3 strains, got %d", m.StrainCount())
	}
	if m.FeatureCount() != 2 {
		t.Errorf("expected 2 features, got %d", m.FeatureCount())
	}

	colA, ok := m.ColumnByKey("geneA")
	if !ok {
		t.Fatal("geneA column not found")
	}
	if colA[0] != 1 || colA[1] != 0 || colA[2] != 1 {
		t.Errorf("geneA column wrong: %v", colA)
	}

	if m.Prevalence(0) != 2 {
		t.Errorf("expected geneA prevalence 2, got %d", m.Prevalence(0))
	}
	if m.IsDegenerate(0) {
		t.Error("geneA should not be degenerate")
	}
}

func TestNewFeatureMatrixRejectsTooSmall(t *testing.T) {
	_, err := NewFeatureMatrix(strains("s1"), features("a", "b"), [][]uint8{{1, 0}})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for 1 strain, got %v", err)
	}

	_, err = NewFeatureMatrix(strains("s1", "s2"), features("a"), [][]uint8{{1}, {0}})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for 1 feature, got %v", err)
	}
}

func TestNewFeatureMatrixRejectsDuplicates(t *testing.T) {
	_, err := NewFeatureMatrix(
		strains("s1", "s1"),
		features("a", "b"),
		[][]uint8{{1, 0}, {0, 1}},
	)
	if !errors.Is(err, core.ErrDuplicateStrain) {
		t.Fatalf("expected ErrDuplicateStrain, got %v", err)
	}

	_, err = NewFeatureMatrix(
		strains("s1", "s2"),
		features("a", "a"),
		[][]uint8{{1, 0}, {0, 1}},
	)
	if !errors.Is(err, core.ErrDuplicateFeature) {
		t.Fatalf("expected ErrDuplicateFeature, got %v", err)
	}
}

func TestNewFeatureMatrixRejectsNonBinary(t *testing.T) {
	_, err := NewFeatureMatrix(
		strains("s1", "s2"),
		features("a", "b"),
		[][]uint8{{1, 2}, {0, 1}},
	)
	if !errors.Is(err, core.ErrNonBinaryValue) {
		t.Fatalf("expected ErrNonBinaryValue, got %v", err)
	}
	if !core.IsValidationError(err) {
		t.Errorf("non-binary cell should classify as a validation error")
	}
}

func TestNewFeatureMatrixRejectsRaggedRows(t *testing.T) {
	_, err := NewFeatureMatrix(
		strains("s1", "s2"),
		features("a", "b"),
		[][]uint8{{1, 0, 1}, {0, 1}},
	)
	if err == nil {
		t.Fatal("expected error for ragged rows, got nil")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	build := func() *FeatureMatrix {
		return MustNewFeatureMatrix(
			strains("s1", "s2", "s3"),
			features("geneA", "geneB"),
			[][]uint8{{1, 0}, {0, 1}, {1, 1}},
		)
	}

	a, b := build(), build()
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("identical matrices should share a fingerprint: %s vs %s", a.Fingerprint(), b.Fingerprint())
	}

	c := MustNewFeatureMatrix(
		strains("s1", "s2", "s3"),
		features("geneA", "geneB"),
		[][]uint8{{1, 0}, {0, 1}, {1, 0}},
	)
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different cells should change the fingerprint")
	}
}

func TestRowReconstruction(t *testing.T) {
	m := MustNewFeatureMatrix(
		strains("s1", "s2"),
		features("a", "b", "c"),
		[][]uint8{{1, 0, 1}, {0, 1, 1}},
	)

	row := m.Row(0)
	if row[0] != 1 || row[1] != 0 || row[2] != 1 {
		t.Errorf("row 0 wrong: %v", row)
	}
}

func TestDegenerateDetection(t *testing.T) {
	m := MustNewFeatureMatrix(
		strains("s1", "s2", "s3"),
		features("everywhere", "nowhere", "mixed"),
		[][]uint8{{1, 0, 1}, {1, 0, 0}, {1, 0, 1}},
	)

	if !m.IsDegenerate(0) {
		t.Error("all-ones column should be degenerate")
	}
	if !m.IsDegenerate(1) {
		t.Error("all-zeros column should be degenerate")
	}
	if m.IsDegenerate(2) {
		t.Error("mixed column should not be degenerate")
	}
}
