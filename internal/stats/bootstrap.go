package stats

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"

	"goassoc/domain/assoc"
	"goassoc/internal/errors"
)

// ============================================================================
// BOOTSTRAP - Percentile confidence intervals by row resampling
// ============================================================================

// StatisticFn computes a scalar statistic over the data rows named by
// indices. Implementations must be pure: bootstrap iterations run
// concurrently and share nothing but the read-only matrix behind the closure.
type StatisticFn func(indices []int) float64

// Estimator produces percentile bootstrap intervals. Every iteration owns a
// private RNG seeded from the base seed and the iteration index, so interval
// bounds are bit-identical for a given (data, seed, iterations) triple no
// matter how many workers execute the iterations.
type Estimator struct {
	iterations int
	seed       int64
	workers    int
}

// NewEstimator creates an estimator. Iteration counts below 100 produce
// unusable 2.5th-percentile estimates and fall back to the default; workers
// below 1 fall back to serial execution.
func NewEstimator(iterations int, seed int64, workers int) *Estimator {
	if iterations < 100 {
		iterations = DEFAULT_BOOTSTRAP_ITERATIONS
	}
	if workers < 1 {
		workers = 1
	}
	return &Estimator{iterations: iterations, seed: seed, workers: workers}
}

// Estimate bootstraps the statistic over n data rows. The point estimate is
// the statistic of the ORIGINAL rows, not the resample mean, so bootstrap
// bias never shifts the reported central value; only the interval bounds
// come from the resample distribution.
//
// A non-nil strata slice (parallel to rows) switches to stratified
// resampling: each stratum is resampled independently at its own size,
// preserving group proportions in every resample.
func (e *Estimator) Estimate(ctx context.Context, name string, n int, fn StatisticFn, strata []string) (assoc.BootstrapInterval, error) {
	if n < 2 {
		return assoc.BootstrapInterval{}, errors.InvalidInput("bootstrap requires at least 2 rows")
	}
	if fn == nil {
		return assoc.BootstrapInterval{}, errors.InvalidInput("bootstrap statistic function is nil")
	}
	if strata != nil && len(strata) != n {
		return assoc.BootstrapInterval{}, errors.InvalidInput(
			fmt.Sprintf("strata length %d does not match row count %d", len(strata), n))
	}

	original := make([]int, n)
	for i := range original {
		original[i] = i
	}
	point := fn(original)

	groups := buildStrata(strata)

	values := make([]float64, e.iterations)
	sem := semaphore.NewWeighted(int64(e.workers))
	var wg sync.WaitGroup
	for i := 0; i < e.iterations; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return assoc.BootstrapInterval{}, errors.Wrap(err, "bootstrap interrupted")
		}
		wg.Add(1)
		go func(iter int) {
			defer sem.Release(1)
			defer wg.Done()
			rng := rand.New(rand.NewSource(deriveIterationSeed(e.seed, iter)))
			values[iter] = fn(resampleRows(rng, n, groups))
		}(i)
	}
	wg.Wait()

	low, err := mstats.Percentile(values, BOOTSTRAP_CI_LOWER_PERCENTILE)
	if err != nil {
		return assoc.BootstrapInterval{}, errors.Wrap(err, "lower percentile failed")
	}
	high, err := mstats.Percentile(values, BOOTSTRAP_CI_UPPER_PERCENTILE)
	if err != nil {
		return assoc.BootstrapInterval{}, errors.Wrap(err, "upper percentile failed")
	}

	return assoc.BootstrapInterval{
		Statistic:     name,
		PointEstimate: point,
		CILow:         low,
		CIHigh:        high,
		Iterations:    e.iterations,
		Seed:          e.seed,
	}, nil
}

// stratum is one resampling group: the row indices carrying a shared label.
type stratum struct {
	label string
	rows  []int
}

// buildStrata groups row indices by label, ordered by label so resampling
// visits groups in a fixed sequence. Nil input means a single implicit
// stratum, handled by resampleRows directly.
func buildStrata(strata []string) []stratum {
	if strata == nil {
		return nil
	}
	byLabel := make(map[string][]int)
	for i, label := range strata {
		byLabel[label] = append(byLabel[label], i)
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	groups := make([]stratum, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, stratum{label: label, rows: byLabel[label]})
	}
	return groups
}

// resampleRows draws n row indices with replacement. With strata, each group
// is drawn from independently at its own size.
func resampleRows(rng *rand.Rand, n int, groups []stratum) []int {
	sample := make([]int, 0, n)
	if groups == nil {
		for j := 0; j < n; j++ {
			sample = append(sample, rng.Intn(n))
		}
		return sample
	}
	for _, g := range groups {
		size := len(g.rows)
		for j := 0; j < size; j++ {
			sample = append(sample, g.rows[rng.Intn(size)])
		}
	}
	return sample
}

// deriveIterationSeed gives each iteration its own RNG stream. Seeding by
// iteration index rather than worker index is what keeps results identical
// across worker-count changes.
func deriveIterationSeed(base int64, iteration int) int64 {
	return base + int64(hashString(fmt.Sprintf("bootstrap:iter:%06d", iteration)))
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
