package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one full analysis run over a feature matrix.
	RunID ID
	// StrainKey is the row identifier of a strain in the input matrix.
	StrainKey string
	// FeatureKey is the column identifier of a feature in the input matrix.
	FeatureKey string
)

// String conversions for domain IDs
func (id RunID) String() string     { return ID(id).String() }
func (k StrainKey) String() string  { return string(k) }
func (k FeatureKey) String() string { return string(k) }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseStrainKey parses a string into StrainKey
func ParseStrainKey(s string) (StrainKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("strain key cannot be empty")
	}
	return StrainKey(s), nil
}

// ParseFeatureKey parses a string into FeatureKey
func ParseFeatureKey(s string) (FeatureKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("feature key cannot be empty")
	}
	return FeatureKey(s), nil
}

// PairKey is the canonical identifier for an unordered feature pair.
// The lexicographically smaller feature always comes first so the same
// pair hashes and sorts identically regardless of construction order.
type PairKey string

// NewPairKey builds the canonical key for two features.
func NewPairKey(a, b FeatureKey) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(string(a) + "|" + string(b))
}

// Features splits the key back into its two feature keys.
func (k PairKey) Features() (FeatureKey, FeatureKey) {
	parts := strings.SplitN(string(k), "|", 2)
	if len(parts) != 2 {
		return FeatureKey(k), ""
	}
	return FeatureKey(parts[0]), FeatureKey(parts[1])
}

// String returns the string representation
func (k PairKey) String() string { return string(k) }
