package assoc

import (
	"fmt"
	"sort"

	"goassoc/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// TestKind defines which hypothesis test produced a pair result
type TestKind string

const (
	TestChiSquare TestKind = "chi2"       // Chi-square with Yates continuity correction
	TestFisher    TestKind = "fisher"     // Fisher's exact test
	TestDegen     TestKind = "degenerate" // Zero-variance column, no test performed
)

// WeightMetric selects the effect size used as network edge weight
type WeightMetric string

const (
	WeightPhi      WeightMetric = "phi"
	WeightCramersV WeightMetric = "cramers_v"
	WeightLogOdds  WeightMetric = "log_odds"
)

// ParseWeightMetric validates a metric name from config or CLI input
func ParseWeightMetric(s string) (WeightMetric, error) {
	switch WeightMetric(s) {
	case WeightPhi, WeightCramersV, WeightLogOdds:
		return WeightMetric(s), nil
	default:
		return "", fmt.Errorf("unknown weight metric %q (expected phi, cramers_v, or log_odds)", s)
	}
}

// WarningCode represents structured warning types
type WarningCode string

const (
	WarningDegenerateInput    WarningCode = "DEGENERATE_INPUT"    // Zero-variance column in a pair
	WarningNumericInstability WarningCode = "NUMERIC_INSTABILITY" // NaN/Inf caught before pseudocount correction
	WarningResourceExhausted  WarningCode = "RESOURCE_EXHAUSTED"  // Combination ceiling aborted a scan
	WarningComponentFailed    WarningCode = "COMPONENT_FAILED"    // A bundle component returned no results
	WarningSparsePattern      WarningCode = "SPARSE_PATTERN"      // Feature pruned by prevalence floor
)

// Warning annotates the bundle with a non-fatal, component-level issue
type Warning struct {
	Component string       `json:"component"` // e.g., "hypothesis", "patterns", "bootstrap"
	Code      WarningCode  `json:"code"`
	Message   string       `json:"message"`
	Pair      core.PairKey `json:"pair,omitempty"` // Set for per-pair warnings
}

// ============================================================================
// PAIR RESULTS
// ============================================================================

// EffectSizes carries every association strength measure for one pair
type EffectSizes struct {
	Phi               float64 `json:"phi"`                // Signed, in [-1,1]
	CramersV          float64 `json:"cramers_v"`          // In [0,1]; equals |phi| for 2x2
	LogOdds           float64 `json:"log_odds"`           // Pseudocounted log odds ratio
	LogOddsCILow      float64 `json:"log_odds_ci_low"`    // Normal-approximation 95% bounds
	LogOddsCIHigh     float64 `json:"log_odds_ci_high"`
	EntropyA          float64 `json:"entropy_a"`          // Base-2 marginal entropies
	EntropyB          float64 `json:"entropy_b"`
	MutualInformation float64 `json:"mutual_information"` // Clipped to >= 0
}

// PairResult is the complete record for one unordered feature pair.
// Immutable once emitted; the orchestrator collects them in canonical
// lexicographic order.
type PairResult struct {
	FeatureA   core.FeatureKey `json:"feature_a"` // Lexicographically smaller key
	FeatureB   core.FeatureKey `json:"feature_b"`
	Statistic  float64         `json:"test_statistic"`
	PValue     float64         `json:"p_value"`
	TestKind   TestKind        `json:"test_kind"`
	SampleSize int             `json:"sample_size"`
	Effect     EffectSizes     `json:"effect"`
	AdjustedP  float64         `json:"adjusted_p"`
	Rejected   bool            `json:"rejected"`
	Warnings   []WarningCode   `json:"warnings,omitempty"`
}

// Key returns the canonical pair key
func (r PairResult) Key() core.PairKey {
	return core.NewPairKey(r.FeatureA, r.FeatureB)
}

// Weight returns the effect size selected by metric
func (r PairResult) Weight(metric WeightMetric) float64 {
	switch metric {
	case WeightCramersV:
		return r.Effect.CramersV
	case WeightLogOdds:
		return r.Effect.LogOdds
	default:
		return r.Effect.Phi
	}
}

// IsDegenerate reports whether the pair was untestable
func (r PairResult) IsDegenerate() bool { return r.TestKind == TestDegen }

// NewPairResult creates a pair result with validation, normalizing the
// feature order so FeatureA is always the lexicographically smaller key
func NewPairResult(a, b core.FeatureKey, statistic, pValue float64, kind TestKind, sampleSize int) (*PairResult, error) {
	if a == "" || b == "" {
		return nil, fmt.Errorf("both feature keys must be set")
	}
	if a == b {
		return nil, fmt.Errorf("pair cannot reference feature %s twice", a)
	}
	if pValue < 0.0 || pValue > 1.0 {
		return nil, fmt.Errorf("p-value must be in [0,1], got %f", pValue)
	}
	if sampleSize <= 0 {
		return nil, fmt.Errorf("sample size must be > 0, got %d", sampleSize)
	}
	if b < a {
		a, b = b, a
	}
	return &PairResult{
		FeatureA:   a,
		FeatureB:   b,
		Statistic:  statistic,
		PValue:     pValue,
		TestKind:   kind,
		SampleSize: sampleSize,
	}, nil
}

// MustNewPairResult panics on invalid input; for tests and fixtures
func MustNewPairResult(a, b core.FeatureKey, statistic, pValue float64, kind TestKind, sampleSize int) *PairResult {
	r, err := NewPairResult(a, b, statistic, pValue, kind, sampleSize)
	if err != nil {
		panic(err)
	}
	return r
}

// SortPairsCanonical orders results lexicographically by (FeatureA, FeatureB)
// so downstream correction and network steps see a deterministic sequence
// regardless of completion order
func SortPairsCanonical(pairs []PairResult) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].FeatureA != pairs[j].FeatureA {
			return pairs[i].FeatureA < pairs[j].FeatureA
		}
		return pairs[i].FeatureB < pairs[j].FeatureB
	})
}

// ============================================================================
// CORRECTION & INTERVALS
// ============================================================================

// CorrectionResult is positionally parallel to the p-value batch it corrects
type CorrectionResult struct {
	AdjustedP float64 `json:"adjusted_p"` // Clipped to [0,1]
	Rejected  bool    `json:"rejected"`   // AdjustedP <= alpha
}

// BootstrapInterval is a percentile confidence interval for one statistic
type BootstrapInterval struct {
	Statistic     string  `json:"statistic"` // Label, e.g. "prevalence:blaKPC"
	PointEstimate float64 `json:"point_estimate"`
	CILow         float64 `json:"ci_low"`
	CIHigh        float64 `json:"ci_high"`
	Iterations    int     `json:"n_iterations"`
	Seed          int64   `json:"seed"`
}

// Contains reports whether the interval covers v. Percentile intervals can,
// in pathological cases, exclude the point estimate itself; callers report
// that rather than asserting it away.
func (b BootstrapInterval) Contains(v float64) bool {
	return b.CILow <= v && v <= b.CIHigh
}

// ============================================================================
// EXCLUSIVITY PATTERNS
// ============================================================================

// PatternClass labels how a feature combination deviates from independence
type PatternClass string

const (
	PatternMutuallyExclusive PatternClass = "mutually_exclusive"
	PatternCoOccurring       PatternClass = "co_occurring"
	PatternNeutral           PatternClass = "neutral"
)

// ExclusivePattern records one scanned feature combination
type ExclusivePattern struct {
	Features     []core.FeatureKey `json:"feature_set"` // Size 2 or 3, sorted
	ObservedRate float64           `json:"observed_cooccurrence_rate"`
	ExpectedRate float64           `json:"expected_cooccurrence_rate"`
	Delta        float64           `json:"delta"` // Observed minus expected
	Class        PatternClass      `json:"classification"`
}

// NewExclusivePattern creates a pattern with sorted features and validation
func NewExclusivePattern(feats []core.FeatureKey, observed, expected float64, class PatternClass) (*ExclusivePattern, error) {
	if len(feats) != 2 && len(feats) != 3 {
		return nil, fmt.Errorf("pattern needs 2 or 3 features, got %d", len(feats))
	}
	sorted := append([]core.FeatureKey(nil), feats...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("pattern repeats feature %s", sorted[i])
		}
	}
	return &ExclusivePattern{
		Features:     sorted,
		ObservedRate: observed,
		ExpectedRate: expected,
		Delta:        observed - expected,
		Class:        class,
	}, nil
}
