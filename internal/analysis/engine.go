package analysis

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
	"goassoc/domain/genotype"
	"goassoc/internal"
	"goassoc/internal/config"
	"goassoc/internal/errors"
	"goassoc/internal/network"
	"goassoc/internal/patterns"
	"goassoc/internal/stats"
)

// ============================================================================
// ASSOCIATION ENGINE - Full-run orchestration
// ============================================================================

// Fan-out guardrails, checked before any computation starts. MaxPairs binds
// first for wide matrices; MaxFeatures catches inputs so wide the pair count
// would overflow any reasonable budget.
const (
	MaxFeatures = 1500
	MaxPairs    = 1000000
)

// Engine runs the complete association pipeline over one feature matrix:
// pairwise hypothesis tests fanned out over a bounded worker pool, BH
// correction over the whole batch, network construction, pattern scanning,
// and bootstrap prevalence intervals. Component failures downgrade to bundle
// warnings; only input validation aborts the run.
type Engine struct {
	cfg     *config.Config
	tester  *stats.Tester
	calc    *stats.Calculator
	workers int
	log     *internal.Logger
}

// NewEngine wires the statistical components from configuration. A nil
// config gets the defaults; worker count 0 resolves to NumCPU.
func NewEngine(cfg *config.Config, logger *internal.Logger) (*Engine, error) {
	if err := stats.ValidateConstants(); err != nil {
		return nil, errors.Wrap(err, "statistical constants failed validation")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	workers := cfg.Runtime.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		cfg:     cfg,
		tester:  stats.NewTester(cfg.Analysis.MinExpectedCellCount),
		calc:    stats.NewCalculator(cfg.Analysis.LogOddsPseudocount),
		workers: workers,
		log:     logger.Component("Engine"),
	}, nil
}

// pairSpec is one unit of fan-out work: two matrix column indices whose
// feature keys are already in lexicographic order.
type pairSpec struct {
	ai, bi int
}

// Run executes the pipeline and returns the result bundle. The bundle can be
// partial: failed components appear in its warning list while the others
// still carry results. Results are deterministic for a given matrix, seed,
// and configuration regardless of worker count or goroutine scheduling.
func (e *Engine) Run(ctx context.Context, m *genotype.FeatureMatrix) (*assoc.ResultBundle, error) {
	if m == nil {
		return nil, errors.InvalidInput("feature matrix is required")
	}
	if e.cfg.Runtime.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Runtime.BatchTimeout)
		defer cancel()
	}

	nFeatures := m.FeatureCount()
	if nFeatures > MaxFeatures {
		return nil, errors.WithCode(errors.CodeResourceExhausted,
			fmt.Errorf("%w: %d features, cap is %d", core.ErrTooManyFeatures, nFeatures, MaxFeatures))
	}
	nPairs := nFeatures * (nFeatures - 1) / 2
	if nPairs > MaxPairs {
		return nil, errors.WithCode(errors.CodeResourceExhausted,
			fmt.Errorf("%w: %d pairs from %d features, cap is %d", core.ErrTooManyPairs, nPairs, nFeatures, MaxPairs))
	}

	start := time.Now()
	manifest := assoc.NewRunManifest(
		core.RunID(core.NewID()),
		m.Fingerprint(),
		e.cfg.Bootstrap.Seed,
		e.cfg.Analysis.Alpha,
	)
	bundle := &assoc.ResultBundle{
		RunID:    manifest.RunID,
		Manifest: manifest,
	}

	e.log.Info("Run %s: %d strains x %d features, %d pairs, %d workers",
		manifest.RunID, m.StrainCount(), nFeatures, nPairs, e.workers)

	// Column order sorted by feature key gives the canonical lexicographic
	// pair sequence; indexed result slots keep it regardless of scheduling.
	keys := m.Features()
	order := make([]int, nFeatures)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool { return keys[order[x]] < keys[order[y]] })

	jobs := make([]pairSpec, 0, nPairs)
	for x := 0; x < len(order); x++ {
		for y := x + 1; y < len(order); y++ {
			jobs = append(jobs, pairSpec{ai: order[x], bi: order[y]})
		}
	}

	results, err := e.testPairs(ctx, m, keys, jobs)
	if err != nil {
		return nil, err
	}

	degenerate := 0
	for i := range results {
		for _, code := range results[i].Warnings {
			switch code {
			case assoc.WarningDegenerateInput:
				bundle.AddWarning(degenerateWarning(results[i].Key()))
			case assoc.WarningNumericInstability:
				bundle.AddWarning(instabilityWarning(results[i].Key()))
			}
		}
		if results[i].IsDegenerate() {
			degenerate++
		}
	}
	manifest.TotalPairs = len(results)
	manifest.TestedPairs = len(results) - degenerate
	manifest.DegeneratePairs = degenerate
	manifest.ComponentsRun = append(manifest.ComponentsRun, ComponentHypothesis)
	e.log.Info("Tested %d pairs (%d degenerate) in %.2fms",
		len(results), degenerate, time.Since(start).Seconds()*1000)

	// BH over the full batch, degenerate pairs included: their p=1.0 never
	// rejects and keeps the adjusted values aligned with the bundle.
	significant := 0
	if len(results) > 0 {
		pv := make([]float64, len(results))
		for i := range results {
			pv[i] = results[i].PValue
		}
		corrected, err := stats.CorrectBH(pv, e.cfg.Analysis.Alpha)
		if err != nil {
			return nil, errors.Wrap(err, "multiple-testing correction failed")
		}
		for i := range results {
			results[i].AdjustedP = corrected[i].AdjustedP
			results[i].Rejected = corrected[i].Rejected
			if corrected[i].Rejected {
				significant++
			}
		}
	}
	manifest.SignificantPairs = significant
	manifest.ComponentsRun = append(manifest.ComponentsRun, ComponentCorrection)
	bundle.Pairs = results

	e.buildNetwork(bundle)
	e.scanPatterns(bundle, m)
	e.bootstrapPrevalence(ctx, bundle, m, keys, order)

	manifest.RuntimeMs = time.Since(start).Milliseconds()
	manifest.Fingerprint = bundle.Fingerprint()
	e.log.Info("Run %s complete: %d significant pairs, %d warnings, %dms",
		manifest.RunID, significant, len(bundle.Warnings), manifest.RuntimeMs)
	return bundle, nil
}

// testPairs fans the pair computations out over the worker pool and gathers
// them by index. Per-pair warnings travel on the results; fatal errors abort.
func (e *Engine) testPairs(ctx context.Context, m *genotype.FeatureMatrix, keys []core.FeatureKey, jobs []pairSpec) ([]assoc.PairResult, error) {
	results := make([]assoc.PairResult, len(jobs))
	errs := make([]error, len(jobs))

	sem := semaphore.NewWeighted(int64(e.workers))
	var wg sync.WaitGroup
	var acquireErr error

	for idx := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			acquireErr = err
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			j := jobs[i]
			tab, err := stats.NewTable2x2(m.Column(j.ai), m.Column(j.bi))
			if err != nil {
				errs[i] = err
				return
			}
			outcome := e.tester.TestPair(tab)
			effect, stabilized := e.calc.Compute(tab)

			r := assoc.PairResult{
				FeatureA:   keys[j.ai],
				FeatureB:   keys[j.bi],
				Statistic:  outcome.Statistic,
				PValue:     outcome.PValue,
				TestKind:   outcome.Kind,
				SampleSize: tab.Total(),
				Effect:     effect,
			}
			if outcome.Kind == assoc.TestDegen {
				r.Warnings = append(r.Warnings, assoc.WarningDegenerateInput)
			} else if stabilized {
				r.Warnings = append(r.Warnings, assoc.WarningNumericInstability)
			}
			results[i] = r
		}(idx)
	}
	wg.Wait()

	if acquireErr != nil {
		return nil, errors.Wrap(acquireErr, "pair fan-out interrupted")
	}
	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "pair %s/%s failed", keys[jobs[i].ai], keys[jobs[i].bi])
		}
	}
	return results, nil
}

func (e *Engine) buildNetwork(bundle *assoc.ResultBundle) {
	start := time.Now()
	builder, err := network.NewBuilder(
		e.cfg.Analysis.Alpha,
		e.cfg.Analysis.MinEffectSize,
		assoc.WeightMetric(e.cfg.Network.WeightMetric),
		e.cfg.Network.HubZScoreMultiplier,
		e.cfg.Network.ComputeBetweenness,
	)
	if err != nil {
		bundle.AddWarning(componentWarning(ComponentNetwork, err))
		return
	}
	g, err := builder.Build(bundle.Pairs)
	if err != nil {
		bundle.AddWarning(componentWarning(ComponentNetwork, err))
		return
	}
	bundle.Graph = g
	bundle.Manifest.ComponentsRun = append(bundle.Manifest.ComponentsRun, ComponentNetwork)
	e.log.Info("Network: %d nodes, %d edges, %d communities in %.2fms",
		g.NodeCount(), g.EdgeCount(), len(g.Communities), time.Since(start).Seconds()*1000)
}

func (e *Engine) scanPatterns(bundle *assoc.ResultBundle, m *genotype.FeatureMatrix) {
	start := time.Now()
	scanner, err := patterns.NewScanner(
		e.cfg.Patterns.K,
		e.cfg.Patterns.SDMultiplier,
		e.cfg.Patterns.PrevalenceFloor,
		e.cfg.Patterns.MaxCombinations,
	)
	if err != nil {
		bundle.AddWarning(componentWarning(ComponentPatterns, err))
		return
	}
	found, err := scanner.Scan(m)
	if err != nil {
		if core.IsResourceError(err) {
			bundle.AddWarning(ceilingWarning(err))
		} else {
			bundle.AddWarning(componentWarning(ComponentPatterns, err))
		}
		return
	}
	bundle.Patterns = found
	bundle.Manifest.ComponentsRun = append(bundle.Manifest.ComponentsRun, ComponentPatterns)
	e.log.Info("Patterns: %d combinations scanned (k=%d) in %.2fms",
		len(found), e.cfg.Patterns.K, time.Since(start).Seconds()*1000)
}

// bootstrapPrevalence estimates a percentile CI for every feature's
// prevalence, in lexicographic feature order.
func (e *Engine) bootstrapPrevalence(ctx context.Context, bundle *assoc.ResultBundle, m *genotype.FeatureMatrix, keys []core.FeatureKey, order []int) {
	start := time.Now()
	est := stats.NewEstimator(e.cfg.Bootstrap.Iterations, e.cfg.Bootstrap.Seed, e.workers)
	n := m.StrainCount()

	intervals := make([]assoc.BootstrapInterval, 0, len(order))
	for _, j := range order {
		col := m.Column(j)
		fn := func(indices []int) float64 {
			present := 0
			for _, i := range indices {
				if col[i] == 1 {
					present++
				}
			}
			return float64(present) / float64(len(indices))
		}
		iv, err := est.Estimate(ctx, "prevalence:"+string(keys[j]), n, fn, nil)
		if err != nil {
			bundle.AddWarning(componentWarning(ComponentBootstrap, err))
			return
		}
		intervals = append(intervals, iv)
	}
	bundle.Intervals = intervals
	bundle.Manifest.ComponentsRun = append(bundle.Manifest.ComponentsRun, ComponentBootstrap)
	e.log.Info("Bootstrap: %d prevalence intervals (%d iterations) in %.2fms",
		len(intervals), e.cfg.Bootstrap.Iterations, time.Since(start).Seconds()*1000)
}
