package report

import (
	"github.com/xuri/excelize/v2"

	"goassoc/domain/assoc"
	"goassoc/internal/errors"
)

var workbookSheets = []string{"Pairs", "Significant", "Patterns", "Communities", "Bootstrap", "Warnings"}

// BuildWorkbook assembles the multi-sheet result workbook in memory. Pairs
// carries every tested pair, Significant only the survivors, and the rest
// map one component each.
func BuildWorkbook(bundle *assoc.ResultBundle) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", workbookSheets[0]); err != nil {
		return nil, errors.ReportError("renaming default sheet failed", err)
	}
	for _, sheet := range workbookSheets[1:] {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, errors.ReportError("creating sheet "+sheet+" failed", err)
		}
	}

	if err := writePairsSheet(f, "Pairs", bundle.Pairs); err != nil {
		return nil, err
	}
	if err := writePairsSheet(f, "Significant", bundle.Significant()); err != nil {
		return nil, err
	}
	if err := writePatternsSheet(f, bundle); err != nil {
		return nil, err
	}
	if err := writeCommunitiesSheet(f, bundle); err != nil {
		return nil, err
	}
	if err := writeBootstrapSheet(f, bundle); err != nil {
		return nil, err
	}
	if err := writeWarningsSheet(f, bundle); err != nil {
		return nil, err
	}
	return f, nil
}

func writePairsSheet(f *excelize.File, sheet string, pairs []assoc.PairResult) error {
	header := []interface{}{"Feature A", "Feature B", "Test", "Sample Size", "Statistic",
		"P Value", "Adjusted P", "Rejected", "Phi", "Cramers V",
		"Log Odds", "Log Odds CI Low", "Log Odds CI High", "Mutual Information"}
	if err := writeHeader(f, sheet, header); err != nil {
		return err
	}
	for i, p := range pairs {
		row := []interface{}{string(p.FeatureA), string(p.FeatureB), string(p.TestKind),
			p.SampleSize, p.Statistic, p.PValue, p.AdjustedP, p.Rejected,
			p.Effect.Phi, p.Effect.CramersV, p.Effect.LogOdds,
			p.Effect.LogOddsCILow, p.Effect.LogOddsCIHigh, p.Effect.MutualInformation}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writePatternsSheet(f *excelize.File, bundle *assoc.ResultBundle) error {
	header := []interface{}{"Features", "Observed Rate", "Expected Rate", "Delta", "Class"}
	if err := writeHeader(f, "Patterns", header); err != nil {
		return err
	}
	for i, p := range bundle.Patterns {
		row := []interface{}{joinFeatures(p.Features), p.ObservedRate, p.ExpectedRate, p.Delta, string(p.Class)}
		if err := writeRow(f, "Patterns", i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCommunitiesSheet(f *excelize.File, bundle *assoc.ResultBundle) error {
	header := []interface{}{"Community", "Size", "Density", "Members"}
	if err := writeHeader(f, "Communities", header); err != nil {
		return err
	}
	if bundle.Graph == nil {
		return nil
	}
	for i, c := range bundle.Graph.Communities {
		row := []interface{}{c.ID, c.Size, c.Density, joinFeatures(c.Features)}
		if err := writeRow(f, "Communities", i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeBootstrapSheet(f *excelize.File, bundle *assoc.ResultBundle) error {
	header := []interface{}{"Statistic", "Point Estimate", "CI Low", "CI High", "Iterations", "Seed"}
	if err := writeHeader(f, "Bootstrap", header); err != nil {
		return err
	}
	for i, iv := range bundle.Intervals {
		row := []interface{}{iv.Statistic, iv.PointEstimate, iv.CILow, iv.CIHigh, iv.Iterations, iv.Seed}
		if err := writeRow(f, "Bootstrap", i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeWarningsSheet(f *excelize.File, bundle *assoc.ResultBundle) error {
	header := []interface{}{"Component", "Code", "Pair", "Message"}
	if err := writeHeader(f, "Warnings", header); err != nil {
		return err
	}
	for i, w := range bundle.Warnings {
		row := []interface{}{w.Component, string(w.Code), string(w.Pair), w.Message}
		if err := writeRow(f, "Warnings", i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, header []interface{}) error {
	if err := writeRow(f, sheet, 1, header); err != nil {
		return err
	}
	styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.ReportError("creating header style failed", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return errors.ReportError("cell coordinate failed", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, styleID); err != nil {
		return errors.ReportError("styling header failed", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return errors.ReportError("column name failed", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return errors.ReportError("sizing columns failed", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return errors.ReportError("cell coordinate failed", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return errors.ReportError("writing cell failed", err)
		}
	}
	return nil
}
