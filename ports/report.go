package ports

import (
	"context"

	"goassoc/domain/assoc"
)

// ReportSinkPort renders an analysis bundle for human consumption.
// Implementations own formats and styling; the core never writes files.
type ReportSinkPort interface {
	// WriteHTML renders the standalone HTML report and returns its path.
	WriteHTML(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error)

	// WriteWorkbook renders the multi-sheet Excel workbook and returns its path.
	WriteWorkbook(ctx context.Context, bundle *assoc.ResultBundle, outputDir string) (string, error)
}
