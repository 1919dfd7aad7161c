package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	// MatrixHash fingerprints the input matrix (strains, features, cells).
	MatrixHash Hash
	// BundleHash fingerprints a complete analysis result bundle.
	BundleHash Hash
)

// Constructors
func NewMatrixHash(data []byte) MatrixHash { return MatrixHash(NewHash(data)) }
func NewBundleHash(data []byte) BundleHash { return BundleHash(NewHash(data)) }

// String conversions
func (h MatrixHash) String() string { return Hash(h).String() }
func (h BundleHash) String() string { return Hash(h).String() }

// ComputeMatrixHash fingerprints a matrix from its ordered strain keys,
// ordered feature keys, and cells in a caller-fixed order. Identical inputs
// produce identical hashes, which is what reproducibility checks compare.
func ComputeMatrixHash(strains []StrainKey, features []FeatureKey, cells []uint8) MatrixHash {
	var data strings.Builder
	for _, s := range strains {
		data.WriteString(string(s))
		data.WriteByte('\n')
	}
	data.WriteByte('|')
	for _, f := range features {
		data.WriteString(string(f))
		data.WriteByte('\n')
	}
	data.WriteByte('|')
	for _, c := range cells {
		data.WriteByte('0' + c)
	}
	return NewMatrixHash([]byte(data.String()))
}

// ComputeBundleHash fingerprints an analysis result from its run ID, the
// matrix fingerprint, and a sorted map of component summaries.
func ComputeBundleHash(runID RunID, matrix MatrixHash, summaries map[string]string) BundleHash {
	keys := make([]string, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	data.WriteString(runID.String())
	data.WriteByte('|')
	data.WriteString(matrix.String())
	for _, key := range keys {
		data.WriteString(fmt.Sprintf("|%s=%s", key, summaries[key]))
	}

	return NewBundleHash([]byte(data.String()))
}
