package patterns

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/combin"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
	"goassoc/domain/genotype"
)

// ============================================================================
// PATTERN SCANNING - Mutually exclusive and co-occurring feature sets
// ============================================================================

// Scanner enumerates feature combinations of size k and classifies each by
// how far its observed joint-presence rate sits from the rate independence
// predicts. The classification threshold is adaptive: derived from the
// spread of deltas across the scanned combinations, not a fixed constant,
// so sensitivity tracks each dataset's prevalence structure.
type Scanner struct {
	k               int
	sdMultiplier    float64
	prevalenceFloor int
	maxCombinations int
}

// NewScanner creates a scanner for combinations of size k (2 or 3).
// prevalenceFloor prunes non-informative features before enumeration: a
// feature must be present in at least floor strains and absent in at least
// floor strains to participate. maxCombinations caps the enumeration; k=3
// scans grow cubically and the cap is what keeps them honest.
func NewScanner(k int, sdMultiplier float64, prevalenceFloor, maxCombinations int) (*Scanner, error) {
	if k != 2 && k != 3 {
		return nil, fmt.Errorf("pattern size must be 2 or 3, got %d", k)
	}
	if sdMultiplier <= 0 {
		return nil, fmt.Errorf("sd multiplier must be positive, got %f", sdMultiplier)
	}
	if prevalenceFloor < 1 {
		prevalenceFloor = 1
	}
	if maxCombinations < 1 {
		return nil, fmt.Errorf("combination ceiling must be positive, got %d", maxCombinations)
	}
	return &Scanner{
		k:               k,
		sdMultiplier:    sdMultiplier,
		prevalenceFloor: prevalenceFloor,
		maxCombinations: maxCombinations,
	}, nil
}

// scanned holds one combination's rates before classification. Two passes
// are unavoidable: the threshold needs every delta before any combination
// can be classified.
type scanned struct {
	features []core.FeatureKey
	observed float64
	expected float64
	delta    float64
}

// Scan classifies every eligible combination. Results follow the canonical
// combination order (ascending feature indices), so identical matrices give
// identical output. Exceeding the combination ceiling fails this scan only;
// the error carries both counts so callers can trim features or lower k.
func (s *Scanner) Scan(m *genotype.FeatureMatrix) ([]assoc.ExclusivePattern, error) {
	eligible := s.eligibleFeatures(m)
	if len(eligible) < s.k {
		return []assoc.ExclusivePattern{}, nil
	}

	total := combin.Binomial(len(eligible), s.k)
	if total > s.maxCombinations {
		return nil, core.NewCeilingError(total, s.maxCombinations)
	}

	n := float64(m.StrainCount())
	candidates := make([]scanned, 0, total)
	deltas := make([]float64, 0, total)

	gen := combin.NewCombinationGenerator(len(eligible), s.k)
	combo := make([]int, s.k)
	cols := make([]int, s.k)
	for gen.Next() {
		gen.Combination(combo)
		for i, c := range combo {
			cols[i] = eligible[c]
		}

		observed := s.jointPresenceRate(m, cols)
		expected := 1.0
		for _, j := range cols {
			expected *= float64(m.Prevalence(j)) / n
		}

		feats := make([]core.FeatureKey, s.k)
		for i, j := range cols {
			feats[i] = m.FeatureAt(j)
		}
		candidates = append(candidates, scanned{
			features: feats,
			observed: observed,
			expected: expected,
			delta:    observed - expected,
		})
		deltas = append(deltas, observed-expected)
	}

	low, high := s.thresholds(deltas)

	patterns := make([]assoc.ExclusivePattern, 0, len(candidates))
	for _, c := range candidates {
		class := assoc.PatternNeutral
		switch {
		case c.delta < low:
			class = assoc.PatternMutuallyExclusive
		case c.delta > high:
			class = assoc.PatternCoOccurring
		}
		p, err := assoc.NewExclusivePattern(c.features, c.observed, c.expected, class)
		if err != nil {
			return nil, fmt.Errorf("building pattern: %w", err)
		}
		patterns = append(patterns, *p)
	}
	return patterns, nil
}

// CombinationCount reports how many combinations a scan of this matrix
// would enumerate, letting callers check the ceiling before committing.
func (s *Scanner) CombinationCount(m *genotype.FeatureMatrix) int {
	eligible := s.eligibleFeatures(m)
	if len(eligible) < s.k {
		return 0
	}
	return combin.Binomial(len(eligible), s.k)
}

// eligibleFeatures returns matrix column indices passing the prevalence
// floor, ascending. Degenerate columns never pass: with floor 1 a feature
// present everywhere or nowhere is pruned here.
func (s *Scanner) eligibleFeatures(m *genotype.FeatureMatrix) []int {
	n := m.StrainCount()
	eligible := make([]int, 0, m.FeatureCount())
	for j := 0; j < m.FeatureCount(); j++ {
		present := m.Prevalence(j)
		if present >= s.prevalenceFloor && n-present >= s.prevalenceFloor {
			eligible = append(eligible, j)
		}
	}
	return eligible
}

// jointPresenceRate is the fraction of strains where every listed column is 1.
func (s *Scanner) jointPresenceRate(m *genotype.FeatureMatrix, cols []int) float64 {
	n := m.StrainCount()
	count := 0
	for i := 0; i < n; i++ {
		all := true
		for _, j := range cols {
			if m.Column(j)[i] == 0 {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return float64(count) / float64(n)
}

// thresholds derives the adaptive classification band from the delta
// distribution: mean ± multiplier * sample standard deviation. Fewer than
// two combinations give no distribution to calibrate against, so the band
// widens to swallow everything and all patterns stay neutral.
func (s *Scanner) thresholds(deltas []float64) (low, high float64) {
	if len(deltas) < 2 {
		return -1, 1
	}
	mean, _ := stats.Mean(deltas)
	sd, _ := stats.StandardDeviationSample(deltas)
	return mean - s.sdMultiplier*sd, mean + s.sdMultiplier*sd
}
