package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"goassoc/domain/assoc"
)

// ============================================================================
// HYPOTHESIS TESTING - Chi-square and Fisher exact over binary features
// ============================================================================

// Alternative selects the tail of the Fisher exact test.
type Alternative string

const (
	// TwoSided sums all tables with probability at or below the observed one.
	TwoSided Alternative = "two_sided"
	// Greater tests for enrichment of joint presence.
	Greater Alternative = "greater"
	// Less tests for depletion of joint presence.
	Less Alternative = "less"
)

// TestOutcome is the result of a single independence test.
type TestOutcome struct {
	Statistic float64        `json:"statistic"`
	PValue    float64        `json:"p_value"`
	Kind      assoc.TestKind `json:"test_kind"`
	DF        int            `json:"degrees_freedom"`
}

// Tester runs independence tests on contingency tables, selecting between the
// chi-square approximation and the Fisher exact test per table.
type Tester struct {
	minExpectedCell float64
}

// NewTester creates a tester. A non-positive threshold falls back to the
// default minimum expected cell count.
func NewTester(minExpectedCell float64) *Tester {
	if minExpectedCell <= 0 {
		minExpectedCell = DEFAULT_MIN_EXPECTED_CELL
	}
	return &Tester{minExpectedCell: minExpectedCell}
}

// SelectTest decides which test a table gets. Degenerate tables (a margin
// with zero variance) short-circuit; sparse tables (any expected cell below
// the threshold, or any observed cell empty) get the exact test.
func SelectTest(tab Table2x2, minExpectedCell float64) assoc.TestKind {
	if tab.IsDegenerate() {
		return assoc.TestDegen
	}
	if tab.MinExpected() < minExpectedCell || tab.HasZeroCell() {
		return assoc.TestFisher
	}
	return assoc.TestChiSquare
}

// TestPair tests independence of the two features behind a 2x2 table.
// Degenerate input is an outcome, not an error: statistic 0, p-value 1.
func (t *Tester) TestPair(tab Table2x2) TestOutcome {
	switch SelectTest(tab, t.minExpectedCell) {
	case assoc.TestDegen:
		return TestOutcome{Statistic: 0, PValue: 1.0, Kind: assoc.TestDegen}
	case assoc.TestFisher:
		p := t.FisherExact(tab, TwoSided)
		return TestOutcome{Statistic: 0, PValue: p, Kind: assoc.TestFisher}
	default:
		stat, p := chiSquareYates(tab)
		return TestOutcome{Statistic: stat, PValue: p, Kind: assoc.TestChiSquare, DF: 1}
	}
}

// TestTriple tests mutual independence of three features via chi-square on
// the 2x2x2 table, df = 4. The continuity correction does not apply beyond
// 2x2, and expected cells are strictly positive whenever no margin is
// degenerate, so the statistic is always finite.
func (t *Tester) TestTriple(tab Table2x2x2) TestOutcome {
	if tab.IsDegenerate() {
		return TestOutcome{Statistic: 0, PValue: 1.0, Kind: assoc.TestDegen}
	}
	exp := tab.Expected()
	stat := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				e := exp[i][j][k]
				d := float64(tab.Counts[i][j][k]) - e
				stat += d * d / e
			}
		}
	}
	p := distuv.ChiSquared{K: 4}.Survival(stat)
	return TestOutcome{Statistic: stat, PValue: clampUnit(p), Kind: assoc.TestChiSquare, DF: 4}
}

// FisherExact computes the exact hypergeometric p-value for a 2x2 table.
// The two-sided variant sums every table in the margin-preserving family
// whose probability does not exceed the observed table's, within a relative
// tolerance that keeps equal-probability tables from being dropped to
// floating-point noise.
func (t *Tester) FisherExact(tab Table2x2, alt Alternative) float64 {
	n := tab.Total()
	rA := tab.N10 + tab.N11 // feature A present
	cB := tab.N01 + tab.N11 // feature B present
	kObs := tab.N11

	kMin := rA + cB - n
	if kMin < 0 {
		kMin = 0
	}
	kMax := rA
	if cB < kMax {
		kMax = cB
	}

	logPObs := logHypergeom(kObs, rA, cB, n)

	sum := 0.0
	switch alt {
	case Greater:
		for k := kObs; k <= kMax; k++ {
			sum += math.Exp(logHypergeom(k, rA, cB, n))
		}
	case Less:
		for k := kMin; k <= kObs; k++ {
			sum += math.Exp(logHypergeom(k, rA, cB, n))
		}
	default:
		cutoff := logPObs + math.Log1p(FISHER_RELATIVE_EPS)
		for k := kMin; k <= kMax; k++ {
			lp := logHypergeom(k, rA, cB, n)
			if lp <= cutoff {
				sum += math.Exp(lp)
			}
		}
	}
	return clampUnit(sum)
}

// chiSquareYates computes the continuity-corrected chi-square statistic for
// a 2x2 table and its survival-function p-value at one degree of freedom.
func chiSquareYates(tab Table2x2) (float64, float64) {
	exp := tab.Expected()
	obs := tab.Cells()
	stat := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			d := math.Abs(float64(obs[i][j])-exp[i][j]) - YATES_CORRECTION
			if d < 0 {
				d = 0
			}
			stat += d * d / exp[i][j]
		}
	}
	p := distuv.ChiSquared{K: 1}.Survival(stat)
	return stat, clampUnit(p)
}

// logHypergeom returns log P(K = k) for the hypergeometric distribution
// induced by fixed 2x2 margins: K successes among cB draws from a population
// of n with rA marked.
func logHypergeom(k, rA, cB, n int) float64 {
	return lchoose(rA, k) + lchoose(n-rA, cB-k) - lchoose(n, cB)
}

// lchoose is log C(n, k) via the log-gamma function. Out-of-range k has zero
// ways, hence -Inf.
func lchoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	a, _ := math.Lgamma(float64(n + 1))
	b, _ := math.Lgamma(float64(k + 1))
	c, _ := math.Lgamma(float64(n - k + 1))
	return a - b - c
}

// clampUnit pins accumulated rounding error back into [0, 1].
func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
