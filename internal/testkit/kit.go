package testkit

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"

	"goassoc/domain/assoc"
	"goassoc/domain/genotype"
	"goassoc/ports"
)

// TestKit provides fake port implementations and synthetic fixtures so the
// analysis pipeline can be exercised without touching the filesystem.
type TestKit struct {
	config MatrixGeneratorConfig
}

// NewTestKit creates a test kit with the default generator configuration
func NewTestKit() *TestKit {
	return &TestKit{config: DefaultMatrixConfig()}
}

// NewTestKitWithConfig creates a test kit with a custom generator configuration
func NewTestKitWithConfig(config MatrixGeneratorConfig) *TestKit {
	return &TestKit{config: config}
}

// Generator returns a matrix generator seeded from the kit configuration
func (t *TestKit) Generator() *MatrixGenerator {
	return NewMatrixGenerator(t.config)
}

// RNGAdapter returns the deterministic RNG adapter
func (t *TestKit) RNGAdapter() *RNGAdapter {
	return &RNGAdapter{}
}

// MatrixSourceAdapter returns a matrix source that serves synthetic data
// instead of reading files
func (t *TestKit) MatrixSourceAdapter() ports.MatrixSourcePort {
	return &FakeMatrixSource{generator: t.Generator()}
}

// ReportSinkAdapter returns an in-memory report sink
func (t *TestKit) ReportSinkAdapter() *MemoryReportSink {
	return &MemoryReportSink{}
}

// FakeMatrixSource implements ports.MatrixSourcePort with generated data.
// The request path selects the fixture: a path mentioning "noise" serves the
// pure-noise matrix, "excl" the complementary one, anything else the
// latent-cluster default.
type FakeMatrixSource struct {
	generator *MatrixGenerator
}

// LoadMatrix generates the fixture selected by the request path
func (f *FakeMatrixSource) LoadMatrix(ctx context.Context, req ports.MatrixLoadRequest) (*genotype.FeatureMatrix, error) {
	switch {
	case strings.Contains(req.Path, "noise"):
		return f.generator.GenerateNoise()
	case strings.Contains(req.Path, "excl"):
		return f.generator.GenerateComplementary()
	default:
		return f.generator.GenerateLatentCluster()
	}
}

// MemoryReportSink implements ports.ReportSinkPort by recording bundles
// instead of writing files.
type MemoryReportSink struct {
	mu      sync.Mutex
	Bundles []*assoc.ResultBundle
}

// WriteHTML records the bundle and returns the path a real sink would use
func (s *MemoryReportSink) WriteHTML(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error) {
	s.record(bundle)
	return filepath.Join(outputDir, "report.html"), nil
}

// WriteWorkbook records the bundle and returns the path a real sink would use
func (s *MemoryReportSink) WriteWorkbook(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error) {
	s.record(bundle)
	return filepath.Join(outputDir, "report.xlsx"), nil
}

func (s *MemoryReportSink) record(bundle *assoc.ResultBundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bundles = append(s.Bundles, bundle)
}

// Recorded returns a snapshot of the bundles written so far
func (s *MemoryReportSink) Recorded() []*assoc.ResultBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*assoc.ResultBundle(nil), s.Bundles...)
}

// RNGAdapter derives deterministic rand streams for named operations and
// work units, mirroring the explicit-seed rule the pipeline itself follows.
type RNGAdapter struct{}

// SeededStream creates a deterministic random number generator for a named operation
func (r *RNGAdapter) SeededStream(name string, seed int64) *rand.Rand {
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed))
}

// Stream creates a deterministic RNG stream for a component work unit. The
// seed depends only on the identifying strings and the base seed, never on
// scheduling, so fan-out order cannot change results.
func (r *RNGAdapter) Stream(runID, component, unitKey string, baseSeed int64) *rand.Rand {
	seed := baseSeed
	if runID != "" {
		seed += int64(hashString(runID))
	}
	if component != "" {
		seed += int64(hashString(component))
	}
	if unitKey != "" {
		seed += int64(hashString(unitKey))
	}
	return rand.New(rand.NewSource(seed))
}

// ValidateSeed draws len(expected) values from the named stream and compares
// them against the recorded reference sequence
func (r *RNGAdapter) ValidateSeed(name string, seed int64, expected []float64) error {
	rng := r.SeededStream(name, seed)
	for i, want := range expected {
		got := rng.Float64()
		if math.Abs(got-want) > 1e-12 {
			return fmt.Errorf("stream %q seed %d diverged at draw %d: got %v, want %v", name, seed, i, got, want)
		}
	}
	return nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
