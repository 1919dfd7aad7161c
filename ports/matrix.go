package ports

import (
	"context"

	"goassoc/domain/genotype"
)

// MatrixSourcePort loads a validated presence/absence matrix from a file.
// Implementations own format dispatch (CSV, TSV, Excel) and reject anything
// that would violate the FeatureMatrix invariants before analysis starts.
type MatrixSourcePort interface {
	LoadMatrix(ctx context.Context, req MatrixLoadRequest) (*genotype.FeatureMatrix, error)
}

// MatrixLoadRequest defines the parameters for loading a matrix
type MatrixLoadRequest struct {
	// Path to the matrix file; extension selects the reader.
	Path string
	// Transpose flips the layout for exports that put features in rows
	// and strains in columns (e.g. a gene presence/absence Rtab).
	Transpose bool
}
