package genotype

import (
	"fmt"

	"goassoc/domain/core"
)

// FeatureMatrix is the canonical input to all association analysis: an
// ordered strain collection crossed with an ordered feature set, every cell
// strictly 0 or 1 (absence/presence). It is built once by a loader and
// consumed read-only afterwards; no analysis component mutates it, which is
// what makes unsynchronized parallel column access safe.
//
// Storage is column-major because every core operation (pair tests, pattern
// scans, prevalence counts) walks whole columns.
type FeatureMatrix struct {
	strains  []core.StrainKey
	features []core.FeatureKey
	columns  [][]uint8 // columns[f][s] = presence of feature f in strain s

	strainIndex  map[core.StrainKey]int
	featureIndex map[core.FeatureKey]int

	fingerprint core.MatrixHash
	createdAt   core.Timestamp
}

// MinStrains and MinFeatures are the smallest matrix any computation accepts.
const (
	MinStrains  = 2
	MinFeatures = 2
)

// NewFeatureMatrix validates and builds a matrix from row-major cells
// (rows[s][f], matching the layout of presence/absence files: one row per
// strain, one column per feature). Validation failures are fatal and occur
// before any computation: duplicate keys, non-binary cells, or a matrix
// smaller than 2×2 all reject the input.
func NewFeatureMatrix(strains []core.StrainKey, features []core.FeatureKey, rows [][]uint8) (*FeatureMatrix, error) {
	if len(strains) < MinStrains {
		return nil, fmt.Errorf("%w: need at least %d strains, got %d", core.ErrInsufficientData, MinStrains, len(strains))
	}
	if len(features) < MinFeatures {
		return nil, fmt.Errorf("%w: need at least %d features, got %d", core.ErrInsufficientData, MinFeatures, len(features))
	}
	if len(rows) != len(strains) {
		return nil, core.NewValidationError("rows", fmt.Sprintf("%d rows for %d strains", len(rows), len(strains)))
	}

	strainIndex := make(map[core.StrainKey]int, len(strains))
	for i, s := range strains {
		if s == "" {
			return nil, core.NewValidationError("strains", fmt.Sprintf("empty strain key at row %d", i))
		}
		if _, dup := strainIndex[s]; dup {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateStrain, s)
		}
		strainIndex[s] = i
	}

	featureIndex := make(map[core.FeatureKey]int, len(features))
	for j, f := range features {
		if f == "" {
			return nil, core.NewValidationError("features", fmt.Sprintf("empty feature key at column %d", j))
		}
		if _, dup := featureIndex[f]; dup {
			return nil, fmt.Errorf("%w: %s", core.ErrDuplicateFeature, f)
		}
		featureIndex[f] = j
	}

	columns := make([][]uint8, len(features))
	for j := range columns {
		columns[j] = make([]uint8, len(strains))
	}
	for i, row := range rows {
		if len(row) != len(features) {
			return nil, core.NewValidationError("rows",
				fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(features)))
		}
		for j, v := range row {
			if v != 0 && v != 1 {
				return nil, fmt.Errorf("%w: strain %s, feature %s, value %d",
					core.ErrNonBinaryValue, strains[i], features[j], v)
			}
			columns[j][i] = v
		}
	}

	m := &FeatureMatrix{
		strains:      append([]core.StrainKey(nil), strains...),
		features:     append([]core.FeatureKey(nil), features...),
		columns:      columns,
		strainIndex:  strainIndex,
		featureIndex: featureIndex,
		createdAt:    core.Now(),
	}
	m.fingerprint = m.computeFingerprint()
	return m, nil
}

// MustNewFeatureMatrix panics on validation failure; for tests and fixtures.
func MustNewFeatureMatrix(strains []core.StrainKey, features []core.FeatureKey, rows [][]uint8) *FeatureMatrix {
	m, err := NewFeatureMatrix(strains, features, rows)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *FeatureMatrix) computeFingerprint() core.MatrixHash {
	cells := make([]uint8, 0, len(m.strains)*len(m.features))
	for _, col := range m.columns {
		cells = append(cells, col...)
	}
	return core.ComputeMatrixHash(m.strains, m.features, cells)
}

// StrainCount returns the number of strains (rows)
func (m *FeatureMatrix) StrainCount() int { return len(m.strains) }

// FeatureCount returns the number of features (columns)
func (m *FeatureMatrix) FeatureCount() int { return len(m.features) }

// Strains returns a copy of the ordered strain keys
func (m *FeatureMatrix) Strains() []core.StrainKey {
	return append([]core.StrainKey(nil), m.strains...)
}

// Features returns a copy of the ordered feature keys
func (m *FeatureMatrix) Features() []core.FeatureKey {
	return append([]core.FeatureKey(nil), m.features...)
}

// StrainAt returns the strain key at row index i
func (m *FeatureMatrix) StrainAt(i int) core.StrainKey { return m.strains[i] }

// FeatureAt returns the feature key at column index j
func (m *FeatureMatrix) FeatureAt(j int) core.FeatureKey { return m.features[j] }

// FeatureIndex returns the column index of a feature key
func (m *FeatureMatrix) FeatureIndex(key core.FeatureKey) (int, bool) {
	j, ok := m.featureIndex[key]
	return j, ok
}

// StrainIndex returns the row index of a strain key
func (m *FeatureMatrix) StrainIndex(key core.StrainKey) (int, bool) {
	i, ok := m.strainIndex[key]
	return i, ok
}

// Column returns the presence vector of feature column j, ordered by strain.
// The returned slice is the backing storage: callers must treat it as
// read-only. Hot paths share it across workers without copying.
func (m *FeatureMatrix) Column(j int) []uint8 { return m.columns[j] }

// ColumnByKey returns the presence vector for a feature key
func (m *FeatureMatrix) ColumnByKey(key core.FeatureKey) ([]uint8, bool) {
	j, ok := m.featureIndex[key]
	if !ok {
		return nil, false
	}
	return m.columns[j], true
}

// Prevalence returns the number of strains carrying feature column j
func (m *FeatureMatrix) Prevalence(j int) int {
	count := 0
	for _, v := range m.columns[j] {
		if v == 1 {
			count++
		}
	}
	return count
}

// IsDegenerate reports whether feature column j has zero variance
// (present in every strain or absent from every strain)
func (m *FeatureMatrix) IsDegenerate(j int) bool {
	p := m.Prevalence(j)
	return p == 0 || p == len(m.strains)
}

// Fingerprint returns the deterministic hash of keys and cells. Two loads of
// the same file produce equal fingerprints, which reproducibility checks
// compare.
func (m *FeatureMatrix) Fingerprint() core.MatrixHash { return m.fingerprint }

// CreatedAt returns the construction timestamp
func (m *FeatureMatrix) CreatedAt() core.Timestamp { return m.createdAt }

// Row reconstructs the presence vector of strain row i across all features.
// Used by writers; analysis paths stay on columns.
func (m *FeatureMatrix) Row(i int) []uint8 {
	row := make([]uint8, len(m.features))
	for j, col := range m.columns {
		row[j] = col[i]
	}
	return row
}
