package stats

import (
	"fmt"
	"math"
	"sort"

	"goassoc/domain/assoc"
	"goassoc/internal/errors"
)

// ============================================================================
// MULTIPLE TESTING - Benjamini-Hochberg false discovery rate control
// ============================================================================

// CorrectBH applies the Benjamini-Hochberg step-up procedure to a batch of
// p-values. The returned slice is parallel to the input: callers rely on
// position to join results back to their hypotheses, so input order is
// never changed.
//
// Sorted ascending by raw p-value, adjusted values are non-decreasing and
// clipped to [0, 1]; rejection means adjusted p <= alpha.
func CorrectBH(pValues []float64, alpha float64) ([]assoc.CorrectionResult, error) {
	if alpha <= 0 || alpha >= 1 {
		return nil, errors.InvalidInput("alpha must be in (0,1)")
	}
	m := len(pValues)
	if m == 0 {
		return []assoc.CorrectionResult{}, nil
	}
	for i, p := range pValues {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, errors.InvalidInput(fmt.Sprintf("p-value out of [0,1] at index %d", i))
		}
	}

	// Sort indices by p-value, index as tie-break so equal p-values keep a
	// stable rank assignment.
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if pValues[order[a]] != pValues[order[b]] {
			return pValues[order[a]] < pValues[order[b]]
		}
		return order[a] < order[b]
	})

	// Backward min-accumulator: adjusted[i] = min over j >= i of
	// p_sorted[j] * m / rank[j]. The same pass enforces monotonicity.
	adjusted := make([]float64, m)
	running := math.Inf(1)
	for i := m - 1; i >= 0; i-- {
		rank := float64(i + 1)
		cand := pValues[order[i]] * float64(m) / rank
		if cand < running {
			running = cand
		}
		v := running
		if v > 1 {
			v = 1
		}
		adjusted[i] = v
	}

	results := make([]assoc.CorrectionResult, m)
	for i, idx := range order {
		results[idx] = assoc.CorrectionResult{
			AdjustedP: adjusted[i],
			Rejected:  adjusted[i] <= alpha,
		}
	}
	return results, nil
}
