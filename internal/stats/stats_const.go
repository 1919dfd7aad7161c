package stats

// stats_const.go
//
// This file centralizes the numerical standards for association testing.
// These values determine test selection, effect-size stabilization, and
// interval coverage, so changing any of them changes which associations
// the system reports.
//
// Values here are the statistical-layer defaults; internal/config exposes
// the subset that callers may tune per run.

import (
	"fmt"
)

// ============================================================================
// 1. TEST SELECTION - Chi-square vs exact
// ============================================================================

const (
	// DEFAULT_MIN_EXPECTED_CELL: Cochran's rule of thumb. When any expected
	// contingency cell falls below this count the chi-square approximation
	// is unreliable and the exact test takes over.
	DEFAULT_MIN_EXPECTED_CELL = 5.0

	// YATES_CORRECTION: Continuity correction subtracted from |observed -
	// expected| in 2x2 chi-square tests. Compensates for approximating a
	// discrete distribution with a continuous one.
	YATES_CORRECTION = 0.5

	// FISHER_RELATIVE_EPS: Relative tolerance when summing tables "as or
	// more extreme" than the observed one in the two-sided exact test.
	// Guards against floating-point noise excluding tables with
	// mathematically equal probability.
	FISHER_RELATIVE_EPS = 1e-7
)

// ============================================================================
// 2. EFFECT SIZES - Stabilization and intervals
// ============================================================================

const (
	// DEFAULT_LOG_ODDS_PSEUDOCOUNT: Haldane-Anscombe correction added to all
	// four cells before the odds ratio. Keeps log-odds finite when a cell is
	// empty at the cost of a small bias toward zero.
	DEFAULT_LOG_ODDS_PSEUDOCOUNT = 0.5

	// NORMAL_Z_95: Two-sided 95% quantile of the standard normal, used by
	// the log-odds normal-approximation confidence interval.
	NORMAL_Z_95 = 1.959963984540054
)

// ============================================================================
// 3. BOOTSTRAP - Percentile interval bounds
// ============================================================================

const (
	// BOOTSTRAP_CI_LOWER_PERCENTILE / BOOTSTRAP_CI_UPPER_PERCENTILE: The
	// percentile-method bounds of a 95% interval over the resample
	// distribution.
	BOOTSTRAP_CI_LOWER_PERCENTILE = 2.5
	BOOTSTRAP_CI_UPPER_PERCENTILE = 97.5

	// DEFAULT_BOOTSTRAP_ITERATIONS: Resample count balancing interval
	// stability against runtime for typical strain collections.
	DEFAULT_BOOTSTRAP_ITERATIONS = 1000
)

// ============================================================================
// 4. CORRECTION - False discovery control
// ============================================================================

const (
	// DEFAULT_ALPHA: FDR threshold applied to Benjamini-Hochberg adjusted
	// p-values.
	DEFAULT_ALPHA = 0.05
)

// ============================================================================
// UTILITY FUNCTIONS - Access to standards
// ============================================================================

// ValidateConstants performs runtime validation of all constants.
// Called during engine initialization.
func ValidateConstants() error {
	if DEFAULT_MIN_EXPECTED_CELL <= 0 {
		return fmt.Errorf("DEFAULT_MIN_EXPECTED_CELL must be positive: %f", DEFAULT_MIN_EXPECTED_CELL)
	}
	if DEFAULT_LOG_ODDS_PSEUDOCOUNT <= 0 {
		return fmt.Errorf("DEFAULT_LOG_ODDS_PSEUDOCOUNT must be positive: %f", DEFAULT_LOG_ODDS_PSEUDOCOUNT)
	}
	if DEFAULT_ALPHA <= 0 || DEFAULT_ALPHA >= 1 {
		return fmt.Errorf("DEFAULT_ALPHA out of range: %f not in (0,1)", DEFAULT_ALPHA)
	}
	if BOOTSTRAP_CI_LOWER_PERCENTILE >= BOOTSTRAP_CI_UPPER_PERCENTILE {
		return fmt.Errorf("bootstrap percentile bounds inverted: %f >= %f",
			BOOTSTRAP_CI_LOWER_PERCENTILE, BOOTSTRAP_CI_UPPER_PERCENTILE)
	}
	if DEFAULT_BOOTSTRAP_ITERATIONS < 100 {
		return fmt.Errorf("DEFAULT_BOOTSTRAP_ITERATIONS too low: %d < 100", DEFAULT_BOOTSTRAP_ITERATIONS)
	}
	return nil
}

// GetAllThresholds returns a map of all threshold constants for logging/debugging
func GetAllThresholds() map[string]float64 {
	return map[string]float64{
		"DEFAULT_MIN_EXPECTED_CELL":     DEFAULT_MIN_EXPECTED_CELL,
		"YATES_CORRECTION":              YATES_CORRECTION,
		"FISHER_RELATIVE_EPS":           FISHER_RELATIVE_EPS,
		"DEFAULT_LOG_ODDS_PSEUDOCOUNT":  DEFAULT_LOG_ODDS_PSEUDOCOUNT,
		"NORMAL_Z_95":                   NORMAL_Z_95,
		"BOOTSTRAP_CI_LOWER_PERCENTILE": BOOTSTRAP_CI_LOWER_PERCENTILE,
		"BOOTSTRAP_CI_UPPER_PERCENTILE": BOOTSTRAP_CI_UPPER_PERCENTILE,
		"DEFAULT_ALPHA":                 DEFAULT_ALPHA,
	}
}
