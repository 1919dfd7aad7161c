package testkit

import (
	"fmt"
	"math/rand"

	"goassoc/domain/core"
	"goassoc/domain/genotype"
)

// MatrixGeneratorConfig configures the synthetic matrix generator
type MatrixGeneratorConfig struct {
	StrainCount     int     `json:"strain_count"`
	FeatureCount    int     `json:"feature_count"`
	ClusterSize     int     `json:"cluster_size"`
	CarriageRate    float64 `json:"carriage_rate"`    // fraction of strains carrying the latent element
	Penetrance      float64 `json:"penetrance"`       // P(feature present | element present)
	LeakRate        float64 `json:"leak_rate"`        // P(feature present | element absent)
	NoisePrevalence float64 `json:"noise_prevalence"` // prevalence of unlinked background features
	Seed            int64   `json:"seed"`
}

// DefaultMatrixConfig returns sensible defaults for synthetic matrix generation
func DefaultMatrixConfig() MatrixGeneratorConfig {
	return MatrixGeneratorConfig{
		StrainCount:     60,
		FeatureCount:    12,
		ClusterSize:     3,
		CarriageRate:    0.5,
		Penetrance:      0.95,
		LeakRate:        0.05,
		NoisePrevalence: 0.4,
		Seed:            42,
	}
}

// MatrixGenerator builds presence/absence matrices with planted structure:
// a cluster of features driven by one latent element, complementary pairs,
// identical twins, or pure background noise.
type MatrixGenerator struct {
	config MatrixGeneratorConfig
	rng    RNGAdapter
}

// NewMatrixGenerator creates a new matrix generator
func NewMatrixGenerator(config MatrixGeneratorConfig) *MatrixGenerator {
	return &MatrixGenerator{config: config}
}

// stream derives a fixture-specific RNG so that generating one fixture never
// shifts the randomness of another, regardless of call order.
func (g *MatrixGenerator) stream(name string) *rand.Rand {
	return g.rng.SeededStream(name, g.config.Seed)
}

// GenerateLatentCluster produces a matrix whose first ClusterSize features
// are all driven by one hidden carrier flag per strain. Carrier strains show
// each linked feature with probability Penetrance, non-carriers with
// probability LeakRate; the remaining features are independent background.
func (g *MatrixGenerator) GenerateLatentCluster() (*genotype.FeatureMatrix, error) {
	cfg := g.config
	if cfg.ClusterSize > cfg.FeatureCount {
		return nil, fmt.Errorf("testkit: cluster size %d exceeds feature count %d", cfg.ClusterSize, cfg.FeatureCount)
	}
	rng := g.stream("latent_cluster")

	carrier := make([]bool, cfg.StrainCount)
	for i := range carrier {
		carrier[i] = rng.Float64() < cfg.CarriageRate
	}

	features := make([]core.FeatureKey, 0, cfg.FeatureCount)
	columns := make([][]uint8, 0, cfg.FeatureCount)
	for j := 0; j < cfg.ClusterSize; j++ {
		col := make([]uint8, cfg.StrainCount)
		for i := range col {
			p := cfg.LeakRate
			if carrier[i] {
				p = cfg.Penetrance
			}
			col[i] = bernoulli(rng, p)
		}
		ensureInformative(col)
		features = append(features, core.FeatureKey(fmt.Sprintf("linked_%02d", j+1)))
		columns = append(columns, col)
	}
	for j := cfg.ClusterSize; j < cfg.FeatureCount; j++ {
		features = append(features, core.FeatureKey(fmt.Sprintf("noise_%02d", j+1)))
		columns = append(columns, g.noiseColumn(rng))
	}
	return g.assemble(features, columns)
}

// GenerateComplementary produces ClusterSize mutually exclusive feature
// pairs: within each pair one feature marks carriers of a latent element and
// the other marks non-carriers, with LeakRate flip noise on both. Remaining
// slots are background features.
func (g *MatrixGenerator) GenerateComplementary() (*genotype.FeatureMatrix, error) {
	cfg := g.config
	if 2*cfg.ClusterSize > cfg.FeatureCount {
		return nil, fmt.Errorf("testkit: %d complementary pairs need %d feature slots, have %d",
			cfg.ClusterSize, 2*cfg.ClusterSize, cfg.FeatureCount)
	}
	rng := g.stream("complementary")

	features := make([]core.FeatureKey, 0, cfg.FeatureCount)
	columns := make([][]uint8, 0, cfg.FeatureCount)
	for k := 0; k < cfg.ClusterSize; k++ {
		colA := make([]uint8, cfg.StrainCount)
		colB := make([]uint8, cfg.StrainCount)
		for i := 0; i < cfg.StrainCount; i++ {
			flag := rng.Float64() < cfg.CarriageRate
			a, b := uint8(0), uint8(1)
			if flag {
				a, b = 1, 0
			}
			if rng.Float64() < cfg.LeakRate {
				a = 1 - a
			}
			if rng.Float64() < cfg.LeakRate {
				b = 1 - b
			}
			colA[i], colB[i] = a, b
		}
		ensureInformative(colA)
		ensureInformative(colB)
		features = append(features,
			core.FeatureKey(fmt.Sprintf("excl_%02da", k+1)),
			core.FeatureKey(fmt.Sprintf("excl_%02db", k+1)))
		columns = append(columns, colA, colB)
	}
	for j := 2 * cfg.ClusterSize; j < cfg.FeatureCount; j++ {
		features = append(features, core.FeatureKey(fmt.Sprintf("noise_%02d", j+1)))
		columns = append(columns, g.noiseColumn(rng))
	}
	return g.assemble(features, columns)
}

// GenerateIdenticalPair produces a matrix whose first two columns are exact
// copies, the strongest association the pipeline can see.
func (g *MatrixGenerator) GenerateIdenticalPair() (*genotype.FeatureMatrix, error) {
	cfg := g.config
	if cfg.FeatureCount < 2 {
		return nil, fmt.Errorf("testkit: identical pair needs at least 2 features, have %d", cfg.FeatureCount)
	}
	rng := g.stream("identical_pair")

	twin := g.noiseColumn(rng)
	features := []core.FeatureKey{"twin_a", "twin_b"}
	columns := [][]uint8{twin, append([]uint8(nil), twin...)}
	for j := 2; j < cfg.FeatureCount; j++ {
		features = append(features, core.FeatureKey(fmt.Sprintf("noise_%02d", j+1)))
		columns = append(columns, g.noiseColumn(rng))
	}
	return g.assemble(features, columns)
}

// GenerateNoise produces a matrix of fully independent background features,
// the null case where nothing should survive correction.
func (g *MatrixGenerator) GenerateNoise() (*genotype.FeatureMatrix, error) {
	cfg := g.config
	rng := g.stream("noise")

	features := make([]core.FeatureKey, 0, cfg.FeatureCount)
	columns := make([][]uint8, 0, cfg.FeatureCount)
	for j := 0; j < cfg.FeatureCount; j++ {
		features = append(features, core.FeatureKey(fmt.Sprintf("noise_%02d", j+1)))
		columns = append(columns, g.noiseColumn(rng))
	}
	return g.assemble(features, columns)
}

func (g *MatrixGenerator) noiseColumn(rng *rand.Rand) []uint8 {
	col := make([]uint8, g.config.StrainCount)
	for i := range col {
		col[i] = bernoulli(rng, g.config.NoisePrevalence)
	}
	ensureInformative(col)
	return col
}

// assemble transposes columns into strain rows and runs the full matrix
// validation, so a bad config fails the same way bad input data would.
func (g *MatrixGenerator) assemble(features []core.FeatureKey, columns [][]uint8) (*genotype.FeatureMatrix, error) {
	strains := make([]core.StrainKey, g.config.StrainCount)
	for i := range strains {
		strains[i] = core.StrainKey(fmt.Sprintf("strain_%03d", i+1))
	}
	rows := make([][]uint8, len(strains))
	for i := range rows {
		rows[i] = make([]uint8, len(columns))
		for j := range columns {
			rows[i][j] = columns[j][i]
		}
	}
	return genotype.NewFeatureMatrix(strains, features, rows)
}

func bernoulli(rng *rand.Rand, p float64) uint8 {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

// A fully constant column is degenerate in every pairwise test; flipping one
// cell keeps small fixtures informative and prevents downstream tests from
// flaking on unlucky draws.
func ensureInformative(col []uint8) {
	first := col[0]
	for _, v := range col[1:] {
		if v != first {
			return
		}
	}
	col[0] = 1 - first
}
