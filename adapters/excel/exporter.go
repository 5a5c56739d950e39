package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"ecothread/adapters/tabular"
	"ecothread/domain/catalog"
	"ecothread/domain/run"
	"ecothread/internal/analysis"
)

const (
	sheetCleaned = "Cleaned"
	sheetSummary = "Summary"
	sheetTests   = "Tests"
)

// Exporter writes an Excel workbook with the cleaned table, per-group
// summaries and recorded test results.
type Exporter struct{}

// NewExporter creates a workbook exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes the workbook to path. Summaries is keyed by a section label
// (e.g. "material") mapping group labels to their env_impact_score summary.
func (e *Exporter) Export(path string, items []catalog.Item,
	summaries map[string]map[string]analysis.ColumnSummary, tests []run.TestRecord) error {

	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetCleaned)
	if err := e.writeCleaned(f, items); err != nil {
		return err
	}
	if err := e.writeSummaries(f, summaries); err != nil {
		return err
	}
	if err := e.writeTests(f, tests); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func (e *Exporter) writeCleaned(f *excelize.File, items []catalog.Item) error {
	if err := writeRow(f, sheetCleaned, 1, toInterfaces(tabular.CleanHeader)); err != nil {
		return err
	}

	for i, item := range items {
		row := []interface{}{
			item.ItemID,
			string(item.ClothingType),
			string(item.Material),
			string(item.ProductionMethod),
			item.LifespanYears,
			item.CO2EmissionsKg,
			item.WaterUsageLiters,
			item.PriceUSD,
			item.WashesBeforeDisposal,
			item.RecycledContentPct,
			item.CO2PerYear,
			item.WaterPerYear,
			item.EnvImpactScore,
			item.CostPerYear,
			string(item.SustainabilityCategory),
			item.MaterialSustainable,
			item.OutlierFlag,
		}
		if err := writeRow(f, sheetCleaned, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) writeSummaries(f *excelize.File,
	summaries map[string]map[string]analysis.ColumnSummary) error {

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return fmt.Errorf("creating %s sheet: %w", sheetSummary, err)
	}

	rowIdx := 1
	header := []interface{}{"section", "group", "n", "mean", "median", "std_dev", "min", "max"}
	if err := writeRow(f, sheetSummary, rowIdx, header); err != nil {
		return err
	}
	rowIdx++

	for _, section := range analysis.GroupKeys(summaries) {
		groups := summaries[section]
		for _, label := range analysis.GroupKeys(groups) {
			s := groups[label]
			row := []interface{}{section, label, s.N, s.Mean, s.Median, s.StdDev, s.Min, s.Max}
			if err := writeRow(f, sheetSummary, rowIdx, row); err != nil {
				return err
			}
			rowIdx++
		}
	}
	return nil
}

func (e *Exporter) writeTests(f *excelize.File, tests []run.TestRecord) error {
	if _, err := f.NewSheet(sheetTests); err != nil {
		return fmt.Errorf("creating %s sheet: %w", sheetTests, err)
	}

	header := []interface{}{"name", "statistic", "p_value", "effect_size", "detail"}
	if err := writeRow(f, sheetTests, 1, header); err != nil {
		return err
	}
	for i, t := range tests {
		row := []interface{}{t.Name, t.Statistic, t.PValue, t.EffectSize, t.Detail}
		if err := writeRow(f, sheetTests, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name for col %d row %d: %w", col+1, row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("setting %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
