package assoc

import (
	"fmt"

	"goassoc/domain/core"
)

// ============================================================================
// RESULT BUNDLE (complete analysis output)
// ============================================================================

// RunManifest captures the determinism metadata and outcome counts of a run
type RunManifest struct {
	RunID             core.RunID          `json:"run_id"`
	MatrixFingerprint core.MatrixHash     `json:"matrix_fingerprint"`
	Seed              int64               `json:"seed"`
	Alpha             float64             `json:"alpha"`
	ComponentsRun     []string            `json:"components_run"`
	RuntimeMs         int64               `json:"runtime_ms"`
	TotalPairs        int                 `json:"total_pairs"`
	TestedPairs       int                 `json:"tested_pairs"`
	DegeneratePairs   int                 `json:"degenerate_pairs"`
	SignificantPairs  int                 `json:"significant_pairs"`
	WarningCounts     map[WarningCode]int `json:"warning_counts"`
	Fingerprint       core.BundleHash     `json:"fingerprint"`
	CreatedAt         core.Timestamp      `json:"created_at"`
}

// NewRunManifest creates a manifest with counters zeroed
func NewRunManifest(runID core.RunID, matrixFingerprint core.MatrixHash, seed int64, alpha float64) *RunManifest {
	return &RunManifest{
		RunID:             runID,
		MatrixFingerprint: matrixFingerprint,
		Seed:              seed,
		Alpha:             alpha,
		ComponentsRun:     []string{},
		WarningCounts:     make(map[WarningCode]int),
		CreatedAt:         core.Now(),
	}
}

// ResultBundle is everything one analysis run produces. The reporting layer
// consumes it; the core never persists it. A bundle can be partial: check
// Warnings for components that failed while the rest completed.
type ResultBundle struct {
	RunID     core.RunID          `json:"run_id"`
	Pairs     []PairResult        `json:"pairs"` // All pairs, canonical order, degenerate included
	Graph     *AssociationGraph   `json:"graph,omitempty"`
	Patterns  []ExclusivePattern  `json:"patterns,omitempty"`
	Intervals []BootstrapInterval `json:"bootstrap_intervals,omitempty"`
	Warnings  []Warning           `json:"warnings,omitempty"`
	Manifest  *RunManifest        `json:"manifest"`
}

// Significant returns the pairs surviving FDR correction, in bundle order
func (b *ResultBundle) Significant() []PairResult {
	out := make([]PairResult, 0, len(b.Pairs))
	for _, p := range b.Pairs {
		if p.Rejected {
			out = append(out, p)
		}
	}
	return out
}

// PairFor looks up the result for an unordered feature pair
func (b *ResultBundle) PairFor(a, x core.FeatureKey) (PairResult, bool) {
	want := core.NewPairKey(a, x)
	for _, p := range b.Pairs {
		if p.Key() == want {
			return p, true
		}
	}
	return PairResult{}, false
}

// AddWarning appends a component warning and bumps the manifest counter
func (b *ResultBundle) AddWarning(w Warning) {
	b.Warnings = append(b.Warnings, w)
	if b.Manifest != nil {
		b.Manifest.WarningCounts[w.Code]++
	}
}

// Fingerprint computes the deterministic hash of the bundle from its
// manifest identity and per-component summaries. Two runs with the same
// matrix, seed, and configuration produce the same fingerprint.
func (b *ResultBundle) Fingerprint() core.BundleHash {
	summaries := map[string]string{
		"pairs":    fmt.Sprintf("%d", len(b.Pairs)),
		"patterns": fmt.Sprintf("%d", len(b.Patterns)),
	}
	for _, p := range b.Pairs {
		if p.Rejected {
			summaries["sig:"+string(p.Key())] = fmt.Sprintf("%.9f", p.AdjustedP)
		}
	}
	if b.Graph != nil {
		summaries["graph"] = fmt.Sprintf("%d/%d/%d", b.Graph.NodeCount(), b.Graph.EdgeCount(), len(b.Graph.Communities))
	}
	for _, iv := range b.Intervals {
		summaries["ci:"+iv.Statistic] = fmt.Sprintf("%.9f/%.9f/%.9f", iv.PointEstimate, iv.CILow, iv.CIHigh)
	}
	var matrix core.MatrixHash
	var runID core.RunID
	if b.Manifest != nil {
		matrix = b.Manifest.MatrixFingerprint
		runID = "" // run UUID varies per run; identity comes from matrix + seed
		summaries["seed"] = fmt.Sprintf("%d", b.Manifest.Seed)
		summaries["alpha"] = fmt.Sprintf("%g", b.Manifest.Alpha)
	}
	return core.ComputeBundleHash(runID, matrix, summaries)
}
