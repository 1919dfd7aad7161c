package stats

import (
	"fmt"

	"goassoc/domain/core"
)

// Table2x2 is the cross-tabulation of two binary feature columns. Cell NXY
// counts strains where feature A has value X and feature B has value Y, so
// N11 is joint presence and N00 is joint absence. Tables are ephemeral: built
// for one test call, discarded after.
type Table2x2 struct {
	N00 int // A absent,  B absent
	N01 int // A absent,  B present
	N10 int // A present, B absent
	N11 int // A present, B present
}

// NewTable2x2 builds the contingency table from two equal-length binary columns
func NewTable2x2(colA, colB []uint8) (Table2x2, error) {
	if len(colA) != len(colB) {
		return Table2x2{}, fmt.Errorf("column length mismatch: %d vs %d", len(colA), len(colB))
	}
	if len(colA) < 2 {
		return Table2x2{}, fmt.Errorf("%w: need at least 2 strains, got %d", core.ErrInsufficientData, len(colA))
	}

	var t Table2x2
	for i := range colA {
		switch {
		case colA[i] == 0 && colB[i] == 0:
			t.N00++
		case colA[i] == 0 && colB[i] == 1:
			t.N01++
		case colA[i] == 1 && colB[i] == 0:
			t.N10++
		default:
			t.N11++
		}
	}
	return t, nil
}

// Total returns the sample size
func (t Table2x2) Total() int { return t.N00 + t.N01 + t.N10 + t.N11 }

// RowTotals returns the marginal counts of feature A: (absent, present)
func (t Table2x2) RowTotals() (int, int) { return t.N00 + t.N01, t.N10 + t.N11 }

// ColTotals returns the marginal counts of feature B: (absent, present)
func (t Table2x2) ColTotals() (int, int) { return t.N00 + t.N10, t.N01 + t.N11 }

// Expected returns the expected cell counts under independence,
// expected[a][b] = rowTotal(a) * colTotal(b) / n
func (t Table2x2) Expected() [2][2]float64 {
	r0, r1 := t.RowTotals()
	c0, c1 := t.ColTotals()
	n := float64(t.Total())

	var e [2][2]float64
	if n == 0 {
		return e
	}
	e[0][0] = float64(r0) * float64(c0) / n
	e[0][1] = float64(r0) * float64(c1) / n
	e[1][0] = float64(r1) * float64(c0) / n
	e[1][1] = float64(r1) * float64(c1) / n
	return e
}

// MinExpected returns the smallest expected cell count
func (t Table2x2) MinExpected() float64 {
	e := t.Expected()
	min := e[0][0]
	for _, row := range e {
		for _, v := range row {
			if v < min {
				min = v
			}
		}
	}
	return min
}

// HasZeroCell reports whether any observed cell is empty
func (t Table2x2) HasZeroCell() bool {
	return t.N00 == 0 || t.N01 == 0 || t.N10 == 0 || t.N11 == 0
}

// IsDegenerate reports whether either column has zero variance
// (an entire row or column margin is empty)
func (t Table2x2) IsDegenerate() bool {
	r0, r1 := t.RowTotals()
	c0, c1 := t.ColTotals()
	return r0 == 0 || r1 == 0 || c0 == 0 || c1 == 0
}

// Cells returns the observed counts as a 2x2 array indexed [a][b]
func (t Table2x2) Cells() [2][2]int {
	return [2][2]int{{t.N00, t.N01}, {t.N10, t.N11}}
}

// Table2x2x2 is the three-way cross-tabulation for a feature triple.
// Counts[a][b][c] counts strains with those presence values.
type Table2x2x2 struct {
	Counts [2][2][2]int
	N      int
}

// NewTable2x2x2 builds the three-way table from three equal-length binary columns
func NewTable2x2x2(colA, colB, colC []uint8) (Table2x2x2, error) {
	if len(colA) != len(colB) || len(colB) != len(colC) {
		return Table2x2x2{}, fmt.Errorf("column length mismatch: %d, %d, %d", len(colA), len(colB), len(colC))
	}
	if len(colA) < 2 {
		return Table2x2x2{}, fmt.Errorf("%w: need at least 2 strains, got %d", core.ErrInsufficientData, len(colA))
	}

	var t Table2x2x2
	for i := range colA {
		t.Counts[colA[i]][colB[i]][colC[i]]++
	}
	t.N = len(colA)
	return t, nil
}

// Marginals returns the presence counts of each feature
func (t Table2x2x2) Marginals() (nA, nB, nC int) {
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for c := 0; c < 2; c++ {
				v := t.Counts[a][b][c]
				if a == 1 {
					nA += v
				}
				if b == 1 {
					nB += v
				}
				if c == 1 {
					nC += v
				}
			}
		}
	}
	return nA, nB, nC
}

// Expected returns expected counts under mutual independence:
// the product of the three marginal presence/absence probabilities times n
func (t Table2x2x2) Expected() [2][2][2]float64 {
	nA, nB, nC := t.Marginals()
	n := float64(t.N)

	var e [2][2][2]float64
	if n == 0 {
		return e
	}
	pA := [2]float64{1 - float64(nA)/n, float64(nA) / n}
	pB := [2]float64{1 - float64(nB)/n, float64(nB) / n}
	pC := [2]float64{1 - float64(nC)/n, float64(nC) / n}

	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			for c := 0; c < 2; c++ {
				e[a][b][c] = n * pA[a] * pB[b] * pC[c]
			}
		}
	}
	return e
}

// IsDegenerate reports whether any of the three columns has zero variance
func (t Table2x2x2) IsDegenerate() bool {
	nA, nB, nC := t.Marginals()
	return nA == 0 || nA == t.N || nB == 0 || nB == t.N || nC == 0 || nC == t.N
}
