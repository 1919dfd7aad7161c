package stats

import (
	"math"

	"goassoc/domain/assoc"
)

// ============================================================================
// EFFECT SIZES - Strength of association for binary feature pairs
// ============================================================================

// Calculator derives effect-size metrics from 2x2 contingency tables. The
// pseudocount stabilizes the odds ratio on sparse tables where a raw ratio
// would divide by zero.
type Calculator struct {
	pseudocount float64
}

// NewCalculator creates a calculator. A non-positive pseudocount falls back
// to the Haldane-Anscombe default.
func NewCalculator(pseudocount float64) *Calculator {
	if pseudocount <= 0 {
		pseudocount = DEFAULT_LOG_ODDS_PSEUDOCOUNT
	}
	return &Calculator{pseudocount: pseudocount}
}

// Compute returns the effect-size set for a 2x2 table. The second return
// reports whether the raw odds ratio was undefined (an empty cell) and only
// the pseudocount kept the log-odds finite; callers surface that as a
// numeric-instability warning. Every returned value is finite, never NaN.
func (c *Calculator) Compute(tab Table2x2) (assoc.EffectSizes, bool) {
	phi := Phi(tab)
	lo, loLow, loHigh := c.LogOddsInterval(tab)
	hA, hB, mi := MutualInformation(tab)

	es := assoc.EffectSizes{
		Phi:               phi,
		CramersV:          math.Abs(phi), // exact identity for 2x2 tables
		LogOdds:           lo,
		LogOddsCILow:      loLow,
		LogOddsCIHigh:     loHigh,
		EntropyA:          hA,
		EntropyB:          hB,
		MutualInformation: mi,
	}
	return es, tab.HasZeroCell()
}

// Phi is the sign-carrying association coefficient for a 2x2 table, in
// [-1, 1]. Positive means joint presence above independence. A degenerate
// margin collapses the denominator, in which case the association is zero.
func Phi(tab Table2x2) float64 {
	r0 := float64(tab.N00 + tab.N01)
	r1 := float64(tab.N10 + tab.N11)
	c0 := float64(tab.N00 + tab.N10)
	c1 := float64(tab.N01 + tab.N11)
	denom := math.Sqrt(r0 * r1 * c0 * c1)
	if denom == 0 {
		return 0
	}
	num := float64(tab.N11)*float64(tab.N00) - float64(tab.N10)*float64(tab.N01)
	return num / denom
}

// CramersV generalizes association strength to r x c tables:
// sqrt(chi2 / (n * min(r-1, c-1))), in [0, 1]. For the 2x2 case Compute
// uses |phi| directly, which is the same quantity without re-deriving the
// chi-square statistic.
func CramersV(chi2 float64, n, rows, cols int) float64 {
	if n == 0 || rows < 2 || cols < 2 {
		return 0
	}
	minDim := float64(rows - 1)
	if c := float64(cols - 1); c < minDim {
		minDim = c
	}
	v := math.Sqrt(chi2 / (float64(n) * minDim))
	if v > 1 {
		v = 1
	}
	return v
}

// LogOddsInterval returns the pseudocounted log-odds ratio and its 95%
// normal-approximation interval. The variance is the sum of reciprocals of
// the four stabilized cells, the standard Woolf construction.
func (c *Calculator) LogOddsInterval(tab Table2x2) (logOdds, ciLow, ciHigh float64) {
	a := float64(tab.N11) + c.pseudocount
	b := float64(tab.N10) + c.pseudocount
	cc := float64(tab.N01) + c.pseudocount
	d := float64(tab.N00) + c.pseudocount

	logOdds = math.Log((a * d) / (b * cc))
	se := math.Sqrt(1/a + 1/b + 1/cc + 1/d)
	ciLow = logOdds - NORMAL_Z_95*se
	ciHigh = logOdds + NORMAL_Z_95*se
	return logOdds, ciLow, ciHigh
}

// MutualInformation returns the base-2 marginal entropies of both features
// and their mutual information H(A) + H(B) - H(A,B). Floating-point
// cancellation can leave MI a hair below zero on independent features, so
// the result is clipped to be non-negative.
func MutualInformation(tab Table2x2) (entropyA, entropyB, mi float64) {
	n := float64(tab.Total())
	if n == 0 {
		return 0, 0, 0
	}

	pA := float64(tab.N10+tab.N11) / n
	pB := float64(tab.N01+tab.N11) / n
	entropyA = binaryEntropy(pA)
	entropyB = binaryEntropy(pB)

	joint := 0.0
	for _, count := range []int{tab.N00, tab.N01, tab.N10, tab.N11} {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		joint -= p * math.Log2(p)
	}

	mi = entropyA + entropyB - joint
	if mi < 0 {
		mi = 0
	}
	return entropyA, entropyB, mi
}

// binaryEntropy is H(p) for a Bernoulli variable, in bits. Zero at both
// endpoints by the 0*log(0) = 0 convention.
func binaryEntropy(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}
