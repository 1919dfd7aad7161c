package matrixio

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"goassoc/domain/core"
	"goassoc/domain/genotype"
	"goassoc/internal/errors"
	"goassoc/ports"

	"github.com/xuri/excelize/v2"
)

// maxReportedCells caps the offending-cell list in validation errors so a
// malformed file cannot produce a megabyte error message.
const maxReportedCells = 20

// MatrixReader reads presence/absence matrices from CSV, TSV and Excel
// files. Layout: header row carries feature names, first column carries
// strain IDs, every other cell is a presence flag. Transposed exports
// (features as rows, strains as columns, e.g. a gene presence/absence Rtab)
// are flipped back before interpretation.
type MatrixReader struct {
	filePath  string
	fileType  string // "xlsx", "tsv" or "csv"
	transpose bool
}

// NewMatrixReader creates a reader with the format chosen by file extension
func NewMatrixReader(filePath string, transpose bool) *MatrixReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		fileType = "xlsx"
	case ".tsv", ".tab", ".rtab":
		fileType = "tsv"
	}
	return &MatrixReader{filePath: filePath, fileType: fileType, transpose: transpose}
}

// Read loads the file and returns a fully validated matrix
func (r *MatrixReader) Read() (*genotype.FeatureMatrix, error) {
	log.Printf("[MatrixReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("matrix file %s", r.filePath))
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	case "tsv":
		rows, err = r.readDelimitedRows('\t')
	default:
		rows, err = r.readDelimitedRows(',')
	}
	if err != nil {
		return nil, err
	}
	readTime := time.Since(start)
	log.Printf("[MatrixReader] %s file read in %.2fms (%d rows)",
		strings.ToUpper(r.fileType), float64(readTime.Nanoseconds())/1e6, len(rows))

	if r.transpose {
		rows = transposeGrid(rows)
	}
	return r.assembleMatrix(rows)
}

// readDelimitedRows reads a CSV or TSV file into a raw string grid. Field
// counts are checked later so every format gets the same structural error.
func (r *MatrixReader) readDelimitedRows(comma rune) ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	return rows, nil
}

// readExcelRows reads Sheet1 of an .xlsx workbook into a raw string grid
func (r *MatrixReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, errors.IOError(r.filePath, fmt.Errorf("failed to read Sheet1: %w", err))
	}
	return rows, nil
}

// assembleMatrix interprets the raw grid and builds the validated matrix,
// collecting every offending cell instead of stopping at the first.
func (r *MatrixReader) assembleMatrix(rows [][]string) (*genotype.FeatureMatrix, error) {
	if len(rows) < 2 {
		return nil, errors.ValidationError("matrix file must have a header row and at least one strain row")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, errors.ValidationError("matrix header must name at least one feature after the strain column")
	}
	features := make([]core.FeatureKey, len(header)-1)
	for j, name := range header[1:] {
		features[j] = core.FeatureKey(strings.TrimSpace(name))
	}

	strains := make([]core.StrainKey, 0, len(rows)-1)
	cells := make([][]uint8, 0, len(rows)-1)
	var offending []string
	invalidCount := 0

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, errors.ValidationError(fmt.Sprintf(
				"row %d has %d cells, want %d (matrix must be rectangular)", i+2, len(row), len(header)))
		}
		strain := core.StrainKey(strings.TrimSpace(row[0]))
		parsed := make([]uint8, len(features))
		for j, raw := range row[1:] {
			value, ok := parseCell(raw)
			if !ok {
				invalidCount++
				if len(offending) < maxReportedCells {
					offending = append(offending, fmt.Sprintf("strain %q feature %q: %q", strain, features[j], raw))
				}
				continue
			}
			parsed[j] = value
		}
		strains = append(strains, strain)
		cells = append(cells, parsed)
	}

	if invalidCount > 0 {
		msg := fmt.Sprintf("matrix contains %d invalid cells (want 0/1, true/false, yes/no): %s",
			invalidCount, strings.Join(offending, "; "))
		if invalidCount > maxReportedCells {
			msg += fmt.Sprintf("; +%d more", invalidCount-maxReportedCells)
		}
		return nil, errors.ValidationError(msg)
	}

	m, err := genotype.NewFeatureMatrix(strains, features, cells)
	if err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, err)
	}
	log.Printf("[MatrixReader] Matrix validated (%d strains, %d features)", m.StrainCount(), m.FeatureCount())
	return m, nil
}

// parseCell maps the accepted presence spellings onto {0,1}
func parseCell(s string) (uint8, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no":
		return 0, true
	case "1", "true", "yes":
		return 1, true
	}
	return 0, false
}

// transposeGrid flips rows and columns. Short rows pad with empty strings;
// the cell validation downstream reports those as offending cells.
func transposeGrid(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, width)
	for j := range out {
		out[j] = make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				out[j][i] = row[j]
			}
		}
	}
	return out
}

// FileMatrixSource implements ports.MatrixSourcePort over MatrixReader
type FileMatrixSource struct{}

// NewFileMatrixSource creates the file-backed matrix source
func NewFileMatrixSource() *FileMatrixSource {
	return &FileMatrixSource{}
}

// LoadMatrix reads the requested file into a validated matrix
func (s *FileMatrixSource) LoadMatrix(ctx context.Context, req ports.MatrixLoadRequest) (*genotype.FeatureMatrix, error) {
	return NewMatrixReader(req.Path, req.Transpose).Read()
}
