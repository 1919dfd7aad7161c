package report

import (
	"fmt"
	"strings"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
)

// RenderMarkdown builds the run report as a markdown document. The output is
// a pure function of the bundle: fixed section order, fixed float precision,
// so the same bundle always renders to the same bytes.
func RenderMarkdown(bundle *assoc.ResultBundle) []byte {
	sections := []string{
		"# Association Analysis Report",
		summarySection(bundle),
		significantSection(bundle),
		networkSection(bundle),
		patternsSection(bundle),
		bootstrapSection(bundle),
		warningsSection(bundle),
	}
	return []byte(strings.Join(sections, "\n\n") + "\n")
}

func summarySection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Run Summary", ""}
	m := bundle.Manifest
	if m == nil {
		return strings.Join(append(lines, "No manifest recorded."), "\n")
	}
	lines = append(lines,
		fmt.Sprintf("- **Run:** `%s`", bundle.RunID),
		fmt.Sprintf("- **Matrix:** `%s`", m.MatrixFingerprint),
		fmt.Sprintf("- **Seed:** %d", m.Seed),
		fmt.Sprintf("- **Alpha:** %g", m.Alpha),
		fmt.Sprintf("- **Pairs:** %d total, %d tested, %d degenerate, %d significant",
			m.TotalPairs, m.TestedPairs, m.DegeneratePairs, m.SignificantPairs),
		fmt.Sprintf("- **Components:** %s", strings.Join(m.ComponentsRun, ", ")),
		fmt.Sprintf("- **Runtime:** %d ms", m.RuntimeMs),
	)
	return strings.Join(lines, "\n")
}

func significantSection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Significant Associations", ""}
	sig := bundle.Significant()
	if len(sig) == 0 {
		return strings.Join(append(lines, "None survived correction."), "\n")
	}
	lines = append(lines,
		"| Feature A | Feature B | Test | n | p | adj. p | phi | log-odds (95% CI) |",
		"|---|---|---|---|---|---|---|---|")
	for _, p := range sig {
		lines = append(lines, fmt.Sprintf("| %s | %s | %s | %d | %.3g | %.3g | %.4f | %.3f (%.3f, %.3f) |",
			p.FeatureA, p.FeatureB, p.TestKind, p.SampleSize, p.PValue, p.AdjustedP,
			p.Effect.Phi, p.Effect.LogOdds, p.Effect.LogOddsCILow, p.Effect.LogOddsCIHigh))
	}
	return strings.Join(lines, "\n")
}

func networkSection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Association Network", ""}
	g := bundle.Graph
	if g == nil {
		return strings.Join(append(lines, "Network construction skipped."), "\n")
	}
	lines = append(lines,
		fmt.Sprintf("- **Nodes:** %d", g.NodeCount()),
		fmt.Sprintf("- **Edges:** %d", g.EdgeCount()),
		fmt.Sprintf("- **Modularity:** %.4f", g.Modularity),
		fmt.Sprintf("- **Weight metric:** %s", g.WeightMetric),
	)
	if len(g.Communities) > 0 {
		lines = append(lines, "",
			"| Community | Size | Density | Members |",
			"|---|---|---|---|")
		for _, c := range g.Communities {
			lines = append(lines, fmt.Sprintf("| %d | %d | %.4f | %s |",
				c.ID, c.Size, c.Density, joinFeatures(c.Features)))
		}
	}
	if len(g.Hubs) > 0 {
		lines = append(lines, "", fmt.Sprintf("**Hubs:** %s", joinFeatures(g.Hubs)))
	}
	if len(g.Unconnected) > 0 {
		lines = append(lines, "", fmt.Sprintf("**Unconnected:** %s", joinFeatures(g.Unconnected)))
	}
	return strings.Join(lines, "\n")
}

func patternsSection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Exclusivity Patterns", ""}
	deviating := make([]assoc.ExclusivePattern, 0, len(bundle.Patterns))
	for _, p := range bundle.Patterns {
		if p.Class != assoc.PatternNeutral {
			deviating = append(deviating, p)
		}
	}
	if len(deviating) == 0 {
		return strings.Join(append(lines, "No combinations deviated from independence."), "\n")
	}
	lines = append(lines,
		"| Features | Observed | Expected | Delta | Class |",
		"|---|---|---|---|---|")
	for _, p := range deviating {
		lines = append(lines, fmt.Sprintf("| %s | %.4f | %.4f | %+.4f | %s |",
			joinFeatures(p.Features), p.ObservedRate, p.ExpectedRate, p.Delta, p.Class))
	}
	return strings.Join(lines, "\n")
}

func bootstrapSection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Bootstrap Intervals", ""}
	if len(bundle.Intervals) == 0 {
		return strings.Join(append(lines, "Bootstrap estimation skipped."), "\n")
	}
	lines = append(lines,
		"| Statistic | Point | 95% CI | Iterations |",
		"|---|---|---|---|")
	for _, iv := range bundle.Intervals {
		lines = append(lines, fmt.Sprintf("| %s | %.4f | [%.4f, %.4f] | %d |",
			iv.Statistic, iv.PointEstimate, iv.CILow, iv.CIHigh, iv.Iterations))
	}
	return strings.Join(lines, "\n")
}

func warningsSection(bundle *assoc.ResultBundle) string {
	lines := []string{"## Warnings", ""}
	if len(bundle.Warnings) == 0 {
		return strings.Join(append(lines, "None."), "\n")
	}
	for _, w := range bundle.Warnings {
		if w.Pair != "" {
			lines = append(lines, fmt.Sprintf("- `%s` %s: %s (%s)", w.Component, w.Code, w.Message, w.Pair))
		} else {
			lines = append(lines, fmt.Sprintf("- `%s` %s: %s", w.Component, w.Code, w.Message))
		}
	}
	return strings.Join(lines, "\n")
}

func joinFeatures(keys []core.FeatureKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}
