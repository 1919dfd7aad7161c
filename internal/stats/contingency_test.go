package stats

import (
	"math"
	"testing"

	"goassoc/domain/core"
)

func TestNewTable2x2Counts(t *testing.T) {
	colA := []uint8{0, 0, 1, 1, 1}
	colB := []uint8{0, 1, 0, 1, 1}

	tab, err := NewTable2x2(colA, colB)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tab.N00 != 1 || tab.N01 != 1 || tab.N10 != 1 || tab.N11 != 2 {
		t.Errorf("wrong counts: got %+v", tab)
	}
	if tab.Total() != 5 {
		t.Errorf("expected total 5, got %d", tab.Total())
	}
}

func TestNewTable2x2RejectsMismatchedLengths(t *testing.T) {
	_, err := NewTable2x2([]uint8{0, 1}, []uint8{0, 1, 1})
	if err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestNewTable2x2RejectsTooFewRows(t *testing.T) {
	_, err := NewTable2x2([]uint8{1}, []uint8{0})
	if err == nil {
		t.Fatal("expected error for single-row columns")
	}
	if !core.IsValidationError(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestExpectedCellCounts(t *testing.T) {
	// 5 strains, A present in 3, B present in 3.
	tab := Table2x2{N00: 1, N01: 1, N10: 1, N11: 2}

	exp := tab.Expected()
	want := [2][2]float64{
		{2.0 * 2.0 / 5.0, 2.0 * 3.0 / 5.0},
		{3.0 * 2.0 / 5.0, 3.0 * 3.0 / 5.0},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(exp[i][j]-want[i][j]) > 1e-12 {
				t.Errorf("expected[%d][%d] = %f, want %f", i, j, exp[i][j], want[i][j])
			}
		}
	}
	if math.Abs(tab.MinExpected()-0.8) > 1e-12 {
		t.Errorf("min expected = %f, want 0.8", tab.MinExpected())
	}
}

func TestDegenerateDetection(t *testing.T) {
	allOnes := []uint8{1, 1, 1, 1}
	varied := []uint8{0, 1, 0, 1}

	tab, err := NewTable2x2(allOnes, varied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tab.IsDegenerate() {
		t.Error("constant column should make the table degenerate")
	}

	tab2, err := NewTable2x2(varied, varied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tab2.IsDegenerate() {
		t.Error("two varied columns should not be degenerate")
	}
}

func TestHasZeroCell(t *testing.T) {
	identical := []uint8{0, 0, 1, 1}
	tab, err := NewTable2x2(identical, identical)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tab.HasZeroCell() {
		t.Error("identical columns leave both off-diagonal cells empty")
	}
}

func TestTable2x2x2CountsAndExpected(t *testing.T) {
	// All 8 binary combinations exactly once: observed == expected everywhere.
	colA := []uint8{0, 0, 0, 0, 1, 1, 1, 1}
	colB := []uint8{0, 0, 1, 1, 0, 0, 1, 1}
	colC := []uint8{0, 1, 0, 1, 0, 1, 0, 1}

	tab, err := NewTable2x2x2(colA, colB, colC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tab.N != 8 {
		t.Fatalf("expected 8 rows, got %d", tab.N)
	}

	exp := tab.Expected()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				if tab.Counts[i][j][k] != 1 {
					t.Errorf("count[%d][%d][%d] = %d, want 1", i, j, k, tab.Counts[i][j][k])
				}
				if math.Abs(exp[i][j][k]-1.0) > 1e-12 {
					t.Errorf("expected[%d][%d][%d] = %f, want 1.0", i, j, k, exp[i][j][k])
				}
			}
		}
	}
	if tab.IsDegenerate() {
		t.Error("balanced triple should not be degenerate")
	}
}

func TestTable2x2x2DegenerateMargin(t *testing.T) {
	constant := []uint8{0, 0, 0, 0}
	varied := []uint8{0, 1, 0, 1}

	tab, err := NewTable2x2x2(constant, varied, varied)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tab.IsDegenerate() {
		t.Error("constant margin should make the triple degenerate")
	}
}
