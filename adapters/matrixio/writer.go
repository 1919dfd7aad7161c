package matrixio

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"

	"goassoc/domain/genotype"
	"goassoc/internal/errors"
)

// WriteCSV round-trips a matrix to a CSV file in the same layout the reader
// accepts: header row of feature names, first column of strain IDs. Used for
// fixtures and for exporting cleaned-up matrices.
func WriteCSV(m *genotype.FeatureMatrix, path string) error {
	if m == nil {
		return errors.InvalidInput("feature matrix is required")
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.IOError(path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	header := make([]string, 0, m.FeatureCount()+1)
	header = append(header, "strain")
	for _, fk := range m.Features() {
		header = append(header, string(fk))
	}
	if err := w.Write(header); err != nil {
		return errors.IOError(path, err)
	}
	for i := 0; i < m.StrainCount(); i++ {
		record := make([]string, 0, m.FeatureCount()+1)
		record = append(record, string(m.StrainAt(i)))
		for _, cell := range m.Row(i) {
			record = append(record, strconv.Itoa(int(cell)))
		}
		if err := w.Write(record); err != nil {
			return errors.IOError(path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.IOError(path, err)
	}

	log.Printf("[MatrixWriter] Matrix written to %s (%d strains, %d features)",
		path, m.StrainCount(), m.FeatureCount())
	return nil
}
