package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"goassoc/adapters/matrixio"
	"goassoc/adapters/report"
	"goassoc/app"
	"goassoc/domain/assoc"
	"goassoc/domain/core"
	"goassoc/domain/genotype"
	"goassoc/internal/analysis"
	"goassoc/internal/config"
	"goassoc/internal/patterns"
	"goassoc/internal/phylo"
	"goassoc/internal/stats"
	"goassoc/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "goassoc",
		Short: "Association analysis for microbial presence/absence matrices",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newCheckCmd(),
		newScanCmd(),
		newNetworkCmd(),
		newBootstrapCmd(),
		newTreeCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		seed      int64
		profile   string
		outDir    string
		transpose bool
		writeHTML bool
		writeXLSX bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [matrix-file]",
		Short: "Run the full association pipeline and write reports",
		Long: `Run pairwise association tests with FDR correction, network construction,
exclusivity scanning, and bootstrap intervals over a presence/absence matrix.

Accepts .csv, .tsv, .rtab, and .xlsx inputs. Results are deterministic for a
given matrix, seed, and configuration.

Example: goassoc analyze pan_genome.csv --seed 42 --out ./reports`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithProfile(profile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Bootstrap.Seed = seed
			}
			return runAnalyze(cmd.Context(), args[0], cfg, analyzeOptions{
				outDir:    outDir,
				transpose: transpose,
				writeHTML: writeHTML,
				writeXLSX: writeXLSX,
			})
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&profile, "config", "", "YAML analysis profile path")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory for reports (default from config)")
	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input rows are features, columns are strains (Rtab layout)")
	cmd.Flags().BoolVar(&writeHTML, "html", true, "Write the HTML report")
	cmd.Flags().BoolVar(&writeXLSX, "xlsx", true, "Write the Excel workbook")

	return cmd
}

func newCheckCmd() *cobra.Command {
	var transpose bool

	cmd := &cobra.Command{
		Use:   "check [matrix-file]",
		Short: "Matrix health report",
		Long: `Load a matrix and report dimensions, prevalence spread, degenerate
columns, and duplicate columns without running any analysis. Useful before
committing to a long run on a wide matrix.

Example: goassoc check pan_genome.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args[0], transpose)
		},
	}

	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input rows are features, columns are strains (Rtab layout)")

	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		k         int
		profile   string
		transpose bool
	)

	cmd := &cobra.Command{
		Use:   "scan [matrix-file]",
		Short: "Scan feature combinations for exclusivity patterns",
		Long: `Classify every size-k feature combination as mutually exclusive,
co-occurring, or neutral against an adaptive independence threshold.

Example: goassoc scan pan_genome.csv --k 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithProfile(profile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("k") {
				cfg.Patterns.K = k
			}
			return runScan(args[0], cfg, transpose)
		},
	}

	cmd.Flags().IntVar(&k, "k", 2, "Combination size (2 or 3)")
	cmd.Flags().StringVar(&profile, "config", "", "YAML analysis profile path")
	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input rows are features, columns are strains (Rtab layout)")

	return cmd
}

func newNetworkCmd() *cobra.Command {
	var (
		seed      int64
		profile   string
		metric    string
		transpose bool
	)

	cmd := &cobra.Command{
		Use:   "network [matrix-file]",
		Short: "Build the association network from significant pairs",
		Long: `Run the pipeline and print the association graph: communities, hubs,
and edges weighted by the chosen effect size metric.

Example: goassoc network pan_genome.csv --metric phi`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithProfile(profile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Bootstrap.Seed = seed
			}
			if cmd.Flags().Changed("metric") {
				switch metric {
				case config.WeightMetricPhi, config.WeightMetricCramersV, config.WeightMetricLogOdds:
					cfg.Network.WeightMetric = metric
				default:
					return fmt.Errorf("invalid metric: %s (expected phi|cramers_v|log_odds)", metric)
				}
			}
			return runNetwork(cmd.Context(), args[0], cfg, transpose)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&profile, "config", "", "YAML analysis profile path")
	cmd.Flags().StringVar(&metric, "metric", "phi", "Edge weight metric: phi|cramers_v|log_odds")
	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input rows are features, columns are strains (Rtab layout)")

	return cmd
}

func newBootstrapCmd() *cobra.Command {
	var (
		seed       int64
		iterations int
		transpose  bool
		treePath   string
		cutHeight  float64
	)

	cmd := &cobra.Command{
		Use:   "bootstrap [matrix-file] [features...]",
		Short: "Bootstrap prevalence confidence intervals",
		Long: `Estimate percentile confidence intervals for feature prevalence by
bootstrap resampling. With no feature arguments every feature is estimated.

A Newick tree switches to stratified resampling: strains are grouped into
clades cut at --cut and each clade is resampled at its own size, so
phylogenetic structure is preserved in every resample.

Example: goassoc bootstrap pan_genome.csv geneA geneB --tree core.nwk --cut 0.1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), args[0], args[1:], bootstrapOptions{
				seed:       seed,
				iterations: iterations,
				transpose:  transpose,
				treePath:   treePath,
				cutHeight:  cutHeight,
			})
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&iterations, "iterations", 500, "Bootstrap iterations (quick default; analyze uses the config value)")
	cmd.Flags().BoolVar(&transpose, "transpose", false, "Input rows are features, columns are strains (Rtab layout)")
	cmd.Flags().StringVar(&treePath, "tree", "", "Newick tree for stratified resampling")
	cmd.Flags().Float64Var(&cutHeight, "cut", 0.5, "Clade cut height for tree stratification")

	return cmd
}

func newTreeCmd() *cobra.Command {
	var cutHeight float64

	cmd := &cobra.Command{
		Use:   "tree [newick-file]",
		Short: "Summarize a phylogenetic tree",
		Long: `Parse a Newick tree and print leaf count, Faith's phylogenetic
diversity, clade strata at the cut height, and (for small trees) the full
patristic distance matrix.

Example: goassoc tree core_genome.nwk --cut 0.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args[0], cutHeight)
		},
	}

	cmd.Flags().Float64Var(&cutHeight, "cut", 0.5, "Clade cut height for strata")

	return cmd
}

func newDemoCmd() *cobra.Command {
	var (
		seed    int64
		fixture string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline on a synthetic fixture",
		Long: `Generate a synthetic presence/absence matrix with planted structure and
run the full pipeline on it. Useful for smoke-testing an installation and for
demonstrating what each report section looks like.

Fixtures: cluster (latent co-occurrence group), complementary (mutually
exclusive pairs), identical (duplicated column), noise (no structure).

Example: goassoc demo --fixture cluster --seed 42 --out ./demo_out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), fixture, seed, outDir)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&fixture, "fixture", "cluster", "Fixture: cluster|complementary|identical|noise")
	cmd.Flags().StringVar(&outDir, "out", "./demo_out", "Output directory for reports")

	return cmd
}

type analyzeOptions struct {
	outDir    string
	transpose bool
	writeHTML bool
	writeXLSX bool
}

func runAnalyze(ctx context.Context, matrixPath string, cfg *config.Config, opts analyzeOptions) error {
	fmt.Printf("Analyzing %s (seed %d, alpha %g)...\n", matrixPath, cfg.Bootstrap.Seed, cfg.Analysis.Alpha)

	svc, err := app.NewAnalysisService(matrixio.NewFileMatrixSource(), report.NewSink(), cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to build analysis service: %w", err)
	}

	result, err := svc.RunAnalysis(ctx, app.AnalysisRequest{
		MatrixPath:    matrixPath,
		Transpose:     opts.transpose,
		OutputDir:     opts.outDir,
		WriteHTML:     opts.writeHTML,
		WriteWorkbook: opts.writeXLSX,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	bundle := result.Bundle
	fmt.Printf("\n=== ANALYSIS RESULTS ===\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	if m := bundle.Manifest; m != nil {
		fmt.Printf("Pairs: %d total, %d tested, %d degenerate\n",
			m.TotalPairs, m.TestedPairs, m.DegeneratePairs)
		fmt.Printf("Components: %s\n", strings.Join(m.ComponentsRun, ", "))
	}
	fmt.Printf("Runtime: %d ms\n", result.RuntimeMs)
	fmt.Printf("Fingerprint: %s\n", result.Fingerprint)

	significant := bundle.Significant()
	fmt.Printf("\n=== SIGNIFICANT PAIRS (%d) ===\n", len(significant))
	for i, p := range significant {
		fmt.Printf("%d. %s ↔ %s\n", i+1, p.FeatureA, p.FeatureB)
		fmt.Printf("   Test: %s | N: %d | P: %.3g | Q: %.3g | Phi: %.4f | Log-odds: %.3f (%.3f, %.3f)\n",
			p.TestKind, p.SampleSize, p.PValue, p.AdjustedP,
			p.Effect.Phi, p.Effect.LogOdds, p.Effect.LogOddsCILow, p.Effect.LogOddsCIHigh)
	}

	if bundle.Graph != nil {
		printGraph(bundle.Graph)
	}
	printPatterns(bundle.Patterns)

	if len(bundle.Warnings) > 0 {
		fmt.Printf("\n=== WARNINGS (%d) ===\n", len(bundle.Warnings))
		for _, w := range bundle.Warnings {
			fmt.Printf("• [%s] %s: %s\n", w.Component, w.Code, w.Message)
		}
	}

	if result.HTMLPath != "" {
		fmt.Printf("\nHTML report: %s\n", result.HTMLPath)
	}
	if result.WorkbookPath != "" {
		fmt.Printf("Workbook: %s\n", result.WorkbookPath)
	}

	fmt.Printf("\n✅ ANALYSIS COMPLETED SUCCESSFULLY\n")
	fmt.Printf("Results are deterministic and replayable for seed %d.\n", cfg.Bootstrap.Seed)
	return nil
}

func runCheck(matrixPath string, transpose bool) error {
	matrix, err := matrixio.NewMatrixReader(matrixPath, transpose).Read()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	n := matrix.StrainCount()
	nf := matrix.FeatureCount()
	fmt.Println("=== Matrix Health Report ===")
	fmt.Printf("Dimensions: strains=%d | features=%d\n", n, nf)
	fmt.Printf("Fingerprint: %s\n", matrix.Fingerprint())

	var degenerate []core.FeatureKey
	minPrev, maxPrev, totalPrev := 1.0, 0.0, 0.0
	byColumn := map[string][]core.FeatureKey{}
	for j := 0; j < nf; j++ {
		rate := float64(matrix.Prevalence(j)) / float64(n)
		totalPrev += rate
		if rate < minPrev {
			minPrev = rate
		}
		if rate > maxPrev {
			maxPrev = rate
		}
		if matrix.IsDegenerate(j) {
			degenerate = append(degenerate, matrix.FeatureAt(j))
		}
		col := matrix.Column(j)
		byColumn[string(col)] = append(byColumn[string(col)], matrix.FeatureAt(j))
	}

	fmt.Println("\n-- Prevalence --")
	fmt.Printf("min=%.4f | mean=%.4f | max=%.4f\n", minPrev, totalPrev/float64(nf), maxPrev)

	fmt.Println("\n-- Degenerate features (all-present or all-absent) --")
	if len(degenerate) == 0 {
		fmt.Println("none")
	} else {
		fmt.Printf("%d of %d: %s\n", len(degenerate), nf, joinFeatures(degenerate))
	}

	fmt.Println("\n-- Duplicate columns --")
	var groups []string
	for _, features := range byColumn {
		if len(features) > 1 {
			groups = append(groups, joinFeatures(features))
		}
	}
	if len(groups) == 0 {
		fmt.Println("none")
	} else {
		sort.Strings(groups)
		for _, g := range groups {
			fmt.Println(g)
		}
	}

	return nil
}

func runScan(matrixPath string, cfg *config.Config, transpose bool) error {
	matrix, err := matrixio.NewMatrixReader(matrixPath, transpose).Read()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}
	fmt.Printf("Scanning %d features across %d strains (k=%d)...\n",
		matrix.FeatureCount(), matrix.StrainCount(), cfg.Patterns.K)

	scanner, err := patterns.NewScanner(
		cfg.Patterns.K,
		cfg.Patterns.SDMultiplier,
		cfg.Patterns.PrevalenceFloor,
		cfg.Patterns.MaxCombinations,
	)
	if err != nil {
		return err
	}
	found, err := scanner.Scan(matrix)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printPatterns(found)

	fmt.Printf("\n✅ SCAN COMPLETED (%d combinations classified)\n", len(found))
	return nil
}

func runNetwork(ctx context.Context, matrixPath string, cfg *config.Config, transpose bool) error {
	matrix, err := matrixio.NewMatrixReader(matrixPath, transpose).Read()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}
	fmt.Printf("Building %s-weighted network from %d features...\n",
		cfg.Network.WeightMetric, matrix.FeatureCount())

	engine, err := analysis.NewEngine(cfg, nil)
	if err != nil {
		return err
	}
	bundle, err := engine.Run(ctx, matrix)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if bundle.Graph == nil {
		for _, w := range bundle.Warnings {
			fmt.Printf("• [%s] %s: %s\n", w.Component, w.Code, w.Message)
		}
		return fmt.Errorf("network construction produced no graph")
	}

	g := bundle.Graph
	printGraph(g)

	fmt.Printf("\n=== EDGES (%d) ===\n", g.EdgeCount())
	for _, e := range g.Edges {
		fmt.Printf("%s ↔ %s  weight=%+.4f  q=%.3g\n", e.Source, e.Target, e.Weight, e.AdjustedP)
	}

	fmt.Printf("\n✅ NETWORK COMPLETED SUCCESSFULLY\n")
	return nil
}

type bootstrapOptions struct {
	seed       int64
	iterations int
	transpose  bool
	treePath   string
	cutHeight  float64
}

func runBootstrap(ctx context.Context, matrixPath string, featureNames []string, o bootstrapOptions) error {
	matrix, err := matrixio.NewMatrixReader(matrixPath, o.transpose).Read()
	if err != nil {
		return fmt.Errorf("failed to read matrix: %w", err)
	}

	var strata []string
	if o.treePath != "" {
		tree, err := readTree(o.treePath)
		if err != nil {
			return err
		}
		leaves := make([]string, matrix.StrainCount())
		for i := range leaves {
			leaves[i] = string(matrix.StrainAt(i))
		}
		strata, err = tree.StrataForLeaves(leaves, o.cutHeight)
		if err != nil {
			return fmt.Errorf("failed to stratify by tree: %w", err)
		}
		fmt.Printf("Stratified resampling over %d clades (cut height %g)\n",
			distinctCount(strata), o.cutHeight)
	}

	var keys []core.FeatureKey
	if len(featureNames) == 0 {
		keys = matrix.Features()
	} else {
		keys = make([]core.FeatureKey, len(featureNames))
		for i, name := range featureNames {
			key := core.FeatureKey(name)
			if _, ok := matrix.FeatureIndex(key); !ok {
				return fmt.Errorf("feature %q not in matrix", name)
			}
			keys[i] = key
		}
	}

	est := stats.NewEstimator(o.iterations, o.seed, 0)
	n := matrix.StrainCount()

	fmt.Printf("\n=== BOOTSTRAP PREVALENCE INTERVALS ===\n")
	for _, key := range keys {
		j, _ := matrix.FeatureIndex(key)
		col := matrix.Column(j)
		fn := func(indices []int) float64 {
			present := 0
			for _, i := range indices {
				if col[i] == 1 {
					present++
				}
			}
			return float64(present) / float64(len(indices))
		}
		iv, err := est.Estimate(ctx, "prevalence:"+string(key), n, fn, strata)
		if err != nil {
			return fmt.Errorf("bootstrap for %s failed: %w", key, err)
		}
		fmt.Printf("%s: %.4f [%.4f, %.4f]\n", key, iv.PointEstimate, iv.CILow, iv.CIHigh)
	}

	fmt.Printf("\n✅ BOOTSTRAP COMPLETED (%d iterations, seed %d)\n", o.iterations, o.seed)
	return nil
}

func runTree(path string, cutHeight float64) error {
	tree, err := readTree(path)
	if err != nil {
		return err
	}

	fmt.Printf("=== TREE SUMMARY ===\n")
	fmt.Printf("Leaves: %d\n", tree.LeafCount())
	pd, err := tree.FaithPD(tree.Leaves())
	if err != nil {
		return err
	}
	fmt.Printf("Faith PD (all leaves): %.4f\n", pd)

	counts := map[string]int{}
	for _, stratum := range tree.CladeCut(cutHeight) {
		counts[stratum]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("\n=== STRATA AT HEIGHT %g ===\n", cutHeight)
	for _, name := range names {
		fmt.Printf("%s: %d leaves\n", name, counts[name])
	}

	if tree.LeafCount() <= 12 {
		leaves, dist := tree.DistanceMatrix()
		fmt.Printf("\n=== PATRISTIC DISTANCES ===\n")
		fmt.Printf("%-14s", "")
		for _, l := range leaves {
			fmt.Printf(" %12s", l)
		}
		fmt.Println()
		for i, l := range leaves {
			fmt.Printf("%-14s", l)
			for j := range leaves {
				fmt.Printf(" %12.4f", dist[i][j])
			}
			fmt.Println()
		}
	}

	return nil
}

func runDemo(ctx context.Context, fixture string, seed int64, outDir string) error {
	fmt.Printf("Generating %s fixture (seed %d)...\n", fixture, seed)

	genCfg := testkit.DefaultMatrixConfig()
	genCfg.Seed = seed
	gen := testkit.NewMatrixGenerator(genCfg)

	var (
		matrix *genotype.FeatureMatrix
		err    error
	)
	switch fixture {
	case "cluster":
		matrix, err = gen.GenerateLatentCluster()
	case "complementary":
		matrix, err = gen.GenerateComplementary()
	case "identical":
		matrix, err = gen.GenerateIdenticalPair()
	case "noise":
		matrix, err = gen.GenerateNoise()
	default:
		return fmt.Errorf("invalid fixture: %s (expected cluster|complementary|identical|noise)", fixture)
	}
	if err != nil {
		return fmt.Errorf("fixture generation failed: %w", err)
	}

	cfg := config.Default()
	cfg.Bootstrap.Seed = seed

	engine, err := analysis.NewEngine(cfg, nil)
	if err != nil {
		return err
	}
	bundle, err := engine.Run(ctx, matrix)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	fmt.Printf("\n=== DEMO RESULTS ===\n")
	fmt.Printf("Matrix: %d strains x %d features (fingerprint %s)\n",
		matrix.StrainCount(), matrix.FeatureCount(), matrix.Fingerprint())
	significant := bundle.Significant()
	fmt.Printf("Significant pairs: %d\n", len(significant))
	for i, p := range significant {
		fmt.Printf("%d. %s ↔ %s (q=%.3g, phi=%.4f)\n",
			i+1, p.FeatureA, p.FeatureB, p.AdjustedP, p.Effect.Phi)
	}

	sink := report.NewSink()
	htmlPath, err := sink.WriteHTML(ctx, bundle, outDir)
	if err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	xlsxPath, err := sink.WriteWorkbook(ctx, bundle, outDir)
	if err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	csvPath := filepath.Join(outDir, fmt.Sprintf("matrix_%s.csv", fixture))
	if err := matrixio.WriteCSV(matrix, csvPath); err != nil {
		return fmt.Errorf("failed to save fixture matrix: %w", err)
	}
	fmt.Printf("\nHTML report: %s\n", htmlPath)
	fmt.Printf("Workbook: %s\n", xlsxPath)
	fmt.Printf("Fixture matrix: %s (feed it back through 'goassoc analyze')\n", csvPath)

	fmt.Printf("\n✅ DEMO COMPLETED SUCCESSFULLY\n")
	fmt.Printf("Re-running with seed %d reproduces these results bit for bit.\n", seed)
	return nil
}

func readTree(path string) (*phylo.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	tree, err := phylo.ParseNewick(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse newick: %w", err)
	}
	return tree, nil
}

func printGraph(g *assoc.AssociationGraph) {
	fmt.Printf("\n=== ASSOCIATION NETWORK ===\n")
	fmt.Printf("Nodes: %d | Edges: %d | Modularity: %.4f | Weight: %s\n",
		g.NodeCount(), g.EdgeCount(), g.Modularity, g.WeightMetric)
	for _, c := range g.Communities {
		fmt.Printf("Community %d (%d features, density %.4f): %s\n",
			c.ID, c.Size, c.Density, joinFeatures(c.Features))
	}
	if len(g.Hubs) > 0 {
		fmt.Printf("Hubs: %s\n", joinFeatures(g.Hubs))
	}
	if len(g.Unconnected) > 0 {
		fmt.Printf("Unconnected: %s\n", joinFeatures(g.Unconnected))
	}
}

// printPatterns shows the deviating combinations; neutral classifications
// stay in the bundle but are noise on a terminal.
func printPatterns(found []assoc.ExclusivePattern) {
	deviating := make([]assoc.ExclusivePattern, 0, len(found))
	for _, p := range found {
		if p.Class != assoc.PatternNeutral {
			deviating = append(deviating, p)
		}
	}
	fmt.Printf("\n=== EXCLUSIVITY PATTERNS (%d of %d combinations) ===\n",
		len(deviating), len(found))
	for i, p := range deviating {
		fmt.Printf("%d. %s\n", i+1, joinFeatures(p.Features))
		fmt.Printf("   Observed: %.4f | Expected: %.4f | Delta: %+.4f | Class: %s\n",
			p.ObservedRate, p.ExpectedRate, p.Delta, p.Class)
	}
}

func joinFeatures(keys []core.FeatureKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func distinctCount(values []string) int {
	seen := map[string]struct{}{}
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
