package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"ecothread/domain/catalog"
)

// CleanHeader is RawHeader extended with the seven derived columns in
// output column order.
var CleanHeader = append(append([]string{}, RawHeader...),
	"co2_per_year",
	"water_per_year",
	"env_impact_score",
	"cost_per_year",
	"sustainability_category",
	"material_sustainable",
	"outlier_flag",
)

// Writer persists a cleaned table as CSV
type Writer struct{}

// NewWriter creates a CSV dataset writer
func NewWriter() *Writer {
	return &Writer{}
}

// Write emits the cleaned table. The file is written atomically via a
// temporary file so a failed run never leaves partial output behind.
func (w *Writer) Write(path string, items []catalog.Item) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, encodeRow(item))
	}
	return writeCSV(path, CleanHeader, rows)
}

// WriteRaw emits a raw (pre-cleaning) table. Missing optional values are
// serialized as empty cells, matching what Reader accepts back.
func (w *Writer) WriteRaw(path string, items []catalog.RawItem) error {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, encodeRawRow(item))
	}
	return writeCSV(path, RawHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			file.Close()
			os.Remove(tmp)
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("flushing output: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing output: %w", err)
	}
	return os.Rename(tmp, path)
}

func encodeRow(item catalog.Item) []string {
	return []string{
		strconv.Itoa(item.ItemID),
		string(item.ClothingType),
		string(item.Material),
		string(item.ProductionMethod),
		formatFloat(item.LifespanYears),
		formatFloat(item.CO2EmissionsKg),
		formatFloat(item.WaterUsageLiters),
		formatFloat(item.PriceUSD),
		formatFloat(item.WashesBeforeDisposal),
		formatFloat(item.RecycledContentPct),
		formatFloat(item.CO2PerYear),
		formatFloat(item.WaterPerYear),
		formatFloat(item.EnvImpactScore),
		formatFloat(item.CostPerYear),
		string(item.SustainabilityCategory),
		strconv.FormatBool(item.MaterialSustainable),
		strconv.FormatBool(item.OutlierFlag),
	}
}

func encodeRawRow(item catalog.RawItem) []string {
	return []string{
		strconv.Itoa(item.ItemID),
		string(item.ClothingType),
		string(item.Material),
		string(item.ProductionMethod),
		formatFloat(item.LifespanYears),
		formatFloat(item.CO2EmissionsKg),
		formatFloat(item.WaterUsageLiters),
		formatOptional(item.PriceUSD),
		formatOptional(item.WashesBeforeDisposal),
		formatOptional(item.RecycledContentPct),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatOptional(v catalog.OptionalFloat) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Value)
}
