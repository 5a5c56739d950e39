package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"ecothread/domain/catalog"
	"ecothread/domain/core"
)

// RawHeader is the required column order of a raw input file
var RawHeader = []string{
	"item_id",
	"clothing_type",
	"material",
	"production_method",
	"lifespan_years",
	"co2_emissions_kg",
	"water_usage_liters",
	"price_usd",
	"washes_before_disposal",
	"recycled_content_pct",
}

// Reader loads raw clothing items from a CSV file
type Reader struct{}

// NewReader creates a CSV dataset reader
func NewReader() *Reader {
	return &Reader{}
}

// Read parses a raw CSV file into validated records. Categorical labels are
// checked against the closed vocabularies and unrecognized labels are
// rejected; an empty cell in one of the three optional numeric columns is a
// missing value. Malformed input fails fast with row context.
func (r *Reader) Read(path string) ([]catalog.RawItem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedInput, err)
	}
	if len(rows) == 0 {
		return nil, core.ErrEmptyDataset
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, core.ErrEmptyDataset
	}

	items := make([]catalog.RawItem, 0, len(rows)-1)
	for i, row := range rows[1:] {
		item, err := parseRow(row, i+2) // 1-based, counting the header
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func checkHeader(header []string) error {
	if len(header) != len(RawHeader) {
		return fmt.Errorf("%w: expected %d columns, got %d",
			core.ErrMalformedInput, len(RawHeader), len(header))
	}
	for i, want := range RawHeader {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("%w: column %d is %q, want %q",
				core.ErrMalformedInput, i+1, strings.TrimSpace(header[i]), want)
		}
	}
	return nil
}

func parseRow(row []string, line int) (catalog.RawItem, error) {
	var item catalog.RawItem
	if len(row) != len(RawHeader) {
		return item, core.NewInputError(line, fmt.Sprintf("expected %d fields, got %d", len(RawHeader), len(row)))
	}

	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	id, err := strconv.Atoi(row[0])
	if err != nil {
		return item, core.NewInputError(line, fmt.Sprintf("item_id %q is not an integer", row[0]))
	}
	item.ItemID = id

	if item.ClothingType, err = catalog.ParseClothingType(row[1]); err != nil {
		return item, fmt.Errorf("row %d: %w", line, err)
	}
	if item.Material, err = catalog.ParseMaterial(row[2]); err != nil {
		return item, fmt.Errorf("row %d: %w", line, err)
	}
	if item.ProductionMethod, err = catalog.ParseProductionMethod(row[3]); err != nil {
		return item, fmt.Errorf("row %d: %w", line, err)
	}

	if item.LifespanYears, err = parseFloat(row[4], "lifespan_years", line); err != nil {
		return item, err
	}
	if item.CO2EmissionsKg, err = parseFloat(row[5], "co2_emissions_kg", line); err != nil {
		return item, err
	}
	if item.WaterUsageLiters, err = parseFloat(row[6], "water_usage_liters", line); err != nil {
		return item, err
	}

	if item.PriceUSD, err = parseOptional(row[7], "price_usd", line); err != nil {
		return item, err
	}
	if item.WashesBeforeDisposal, err = parseOptional(row[8], "washes_before_disposal", line); err != nil {
		return item, err
	}
	if item.RecycledContentPct, err = parseOptional(row[9], "recycled_content_pct", line); err != nil {
		return item, err
	}

	return item, nil
}

func parseFloat(s, field string, line int) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, core.NewInputError(line, fmt.Sprintf("%s %q is not numeric", field, s))
	}
	return v, nil
}

func parseOptional(s, field string, line int) (catalog.OptionalFloat, error) {
	if s == "" {
		return catalog.Missing(), nil
	}
	v, err := parseFloat(s, field, line)
	if err != nil {
		return catalog.Missing(), err
	}
	return catalog.Present(v), nil
}
