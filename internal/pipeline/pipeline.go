package pipeline

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"ecothread/domain/catalog"
	"ecothread/domain/core"
)

// Field names as they appear in the tabular formats; used in error and
// audit messages.
const (
	FieldRecycledContentPct   = "recycled_content_pct"
	FieldWashesBeforeDisposal = "washes_before_disposal"
	FieldPriceUSD             = "price_usd"
	FieldCO2EmissionsKg       = "co2_emissions_kg"
	FieldWaterUsageLiters     = "water_usage_liters"
	FieldLifespanYears        = "lifespan_years"
)

// outlierPercentile is the per-run threshold percentile for outlier flagging
const outlierPercentile = 99.0

// Options configures cleaning behavior
type Options struct {
	// StrictImputation fails with an empty-group error instead of falling
	// back to the global (ungrouped) statistic when a grouping key has no
	// observed values for the field being imputed.
	StrictImputation bool
}

// Summary is the audit trail of one cleaning pass
type Summary struct {
	InputRows         int            `json:"input_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	OutputRows        int            `json:"output_rows"`
	Imputed           map[string]int `json:"imputed"`
	GlobalFallbacks   map[string]int `json:"global_fallbacks"`
	OutlierCount      int            `json:"outlier_count"`
}

// TotalImputed returns the number of values filled across all fields
func (s *Summary) TotalImputed() int {
	total := 0
	for _, n := range s.Imputed {
		total += n
	}
	return total
}

// TotalGlobalFallbacks returns the number of fills that used the global
// statistic instead of a group statistic, across all fields.
func (s *Summary) TotalGlobalFallbacks() int {
	total := 0
	for _, n := range s.GlobalFallbacks {
		total += n
	}
	return total
}

// Clean transforms a raw record set into a cleaned, fully-populated one.
// It is a pure function of its input: deduplication, grouped imputation,
// derived metrics and outlier flagging run in that fixed order, and no row
// is ever discarded except exact duplicates.
func Clean(raw []catalog.RawItem, opts Options) ([]catalog.Item, *Summary, error) {
	if len(raw) == 0 {
		return nil, nil, core.ErrEmptyDataset
	}

	for i, r := range raw {
		if err := r.Validate(); err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	summary := &Summary{
		InputRows:       len(raw),
		Imputed:         map[string]int{},
		GlobalFallbacks: map[string]int{},
	}

	deduped := dedupe(raw)
	summary.DuplicatesRemoved = len(raw) - len(deduped)

	items, err := impute(deduped, opts, summary)
	if err != nil {
		return nil, nil, err
	}

	deriveMetrics(items)

	if err := flagOutliers(items, summary); err != nil {
		return nil, nil, err
	}

	summary.OutputRows = len(items)
	return items, summary, nil
}

// dedupe removes exact-duplicate records (full-field equality),
// order-preserving.
func dedupe(raw []catalog.RawItem) []catalog.RawItem {
	seen := make(map[catalog.RawItem]struct{}, len(raw))
	out := make([]catalog.RawItem, 0, len(raw))
	for _, r := range raw {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// impute fills the three optional fields. All group statistics are computed
// over the pre-imputation observed values, so earlier fills never feed back
// into later ones. Median is used for the skew-prone fields, rounded mean
// for washes_before_disposal; grouping preserves category-specific central
// tendency instead of collapsing to a global value.
func impute(raw []catalog.RawItem, opts Options, summary *Summary) ([]catalog.Item, error) {
	recycledStats, err := buildGroupStats(FieldRecycledContentPct, raw,
		func(r catalog.RawItem) string { return string(r.ProductionMethod) },
		func(r catalog.RawItem) catalog.OptionalFloat { return r.RecycledContentPct },
		median)
	if err != nil {
		return nil, err
	}

	washesStats, err := buildGroupStats(FieldWashesBeforeDisposal, raw,
		func(r catalog.RawItem) string { return string(r.ClothingType) },
		func(r catalog.RawItem) catalog.OptionalFloat { return r.WashesBeforeDisposal },
		roundedMean)
	if err != nil {
		return nil, err
	}

	priceStats, err := buildGroupStats(FieldPriceUSD, raw,
		func(r catalog.RawItem) string { return string(r.ClothingType) },
		func(r catalog.RawItem) catalog.OptionalFloat { return r.PriceUSD },
		median)
	if err != nil {
		return nil, err
	}

	items := make([]catalog.Item, len(raw))
	for i, r := range raw {
		recycled, err := fillValue(r.RecycledContentPct, recycledStats,
			string(r.ProductionMethod), opts, summary)
		if err != nil {
			return nil, err
		}
		washes, err := fillValue(r.WashesBeforeDisposal, washesStats,
			string(r.ClothingType), opts, summary)
		if err != nil {
			return nil, err
		}
		price, err := fillValue(r.PriceUSD, priceStats,
			string(r.ClothingType), opts, summary)
		if err != nil {
			return nil, err
		}

		items[i] = catalog.Item{
			ItemID:               r.ItemID,
			ClothingType:         r.ClothingType,
			Material:             r.Material,
			ProductionMethod:     r.ProductionMethod,
			LifespanYears:        r.LifespanYears,
			CO2EmissionsKg:       r.CO2EmissionsKg,
			WaterUsageLiters:     r.WaterUsageLiters,
			PriceUSD:             price,
			WashesBeforeDisposal: washes,
			RecycledContentPct:   recycled,
		}
	}
	return items, nil
}

// groupStats holds pre-imputation statistics for one field
type groupStats struct {
	field     string
	byGroup   map[string]float64
	global    float64
	hasGlobal bool
}

type aggregateFunc func(values []float64) (float64, error)

func buildGroupStats(field string, raw []catalog.RawItem,
	keyOf func(catalog.RawItem) string,
	valueOf func(catalog.RawItem) catalog.OptionalFloat,
	aggregate aggregateFunc) (*groupStats, error) {

	observedByGroup := map[string][]float64{}
	var observed []float64
	for _, r := range raw {
		v := valueOf(r)
		if !v.Valid {
			continue
		}
		key := keyOf(r)
		observedByGroup[key] = append(observedByGroup[key], v.Value)
		observed = append(observed, v.Value)
	}

	gs := &groupStats{field: field, byGroup: make(map[string]float64, len(observedByGroup))}
	for key, values := range observedByGroup {
		stat, err := aggregate(values)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s for group %q: %w", field, key, err)
		}
		gs.byGroup[key] = stat
	}
	if len(observed) > 0 {
		stat, err := aggregate(observed)
		if err != nil {
			return nil, fmt.Errorf("aggregating %s globally: %w", field, err)
		}
		gs.global = stat
		gs.hasGlobal = true
	}
	return gs, nil
}

// fillValue returns the observed value, or imputes it from the group
// statistic. Empty-group policy: fall back to the global statistic unless
// strict mode is on; a column with no observed values at all is always an
// error (imputing zeros silently would corrupt every downstream statistic).
func fillValue(v catalog.OptionalFloat, gs *groupStats, group string,
	opts Options, summary *Summary) (float64, error) {

	if v.Valid {
		return v.Value, nil
	}
	if stat, ok := gs.byGroup[group]; ok {
		summary.Imputed[gs.field]++
		return stat, nil
	}
	if opts.StrictImputation {
		return 0, core.NewEmptyGroupError(gs.field, group)
	}
	if !gs.hasGlobal {
		return 0, fmt.Errorf("%w: field %s has no observed values in any group",
			core.ErrEmptyImputationGroup, gs.field)
	}
	summary.Imputed[gs.field]++
	summary.GlobalFallbacks[gs.field]++
	return gs.global, nil
}

// deriveMetrics computes the derived columns in their required order. The
// env_impact_score normalization divides by the current dataset's maxima,
// so the score is dataset-relative by design.
func deriveMetrics(items []catalog.Item) {
	var maxCO2PerYear, maxWaterPerYear float64
	for i := range items {
		items[i].CO2PerYear = items[i].CO2EmissionsKg / items[i].LifespanYears
		items[i].WaterPerYear = items[i].WaterUsageLiters / items[i].LifespanYears
		if items[i].CO2PerYear > maxCO2PerYear {
			maxCO2PerYear = items[i].CO2PerYear
		}
		if items[i].WaterPerYear > maxWaterPerYear {
			maxWaterPerYear = items[i].WaterPerYear
		}
	}

	for i := range items {
		co2Norm := 0.0
		if maxCO2PerYear > 0 {
			co2Norm = items[i].CO2PerYear / maxCO2PerYear
		}
		waterNorm := 0.0
		if maxWaterPerYear > 0 {
			waterNorm = items[i].WaterPerYear / maxWaterPerYear
		}
		items[i].EnvImpactScore = (co2Norm + waterNorm) / 2
		items[i].CostPerYear = items[i].PriceUSD / items[i].LifespanYears
		items[i].SustainabilityCategory = catalog.ClassifyImpact(items[i].EnvImpactScore)
		items[i].MaterialSustainable = catalog.IsSustainableMaterial(items[i].Material)
	}
}

// flagOutliers marks records whose value on any monitored measure strictly
// exceeds the dataset's 99th percentile for that measure. Thresholds are
// per-run and data-dependent; outliers are flagged, never removed.
func flagOutliers(items []catalog.Item, summary *Summary) error {
	co2 := make([]float64, len(items))
	water := make([]float64, len(items))
	lifespan := make([]float64, len(items))
	for i, it := range items {
		co2[i] = it.CO2EmissionsKg
		water[i] = it.WaterUsageLiters
		lifespan[i] = it.LifespanYears
	}

	co2P, err := stats.Percentile(co2, outlierPercentile)
	if err != nil {
		return fmt.Errorf("computing %s percentile: %w", FieldCO2EmissionsKg, err)
	}
	waterP, err := stats.Percentile(water, outlierPercentile)
	if err != nil {
		return fmt.Errorf("computing %s percentile: %w", FieldWaterUsageLiters, err)
	}
	lifespanP, err := stats.Percentile(lifespan, outlierPercentile)
	if err != nil {
		return fmt.Errorf("computing %s percentile: %w", FieldLifespanYears, err)
	}

	for i := range items {
		items[i].OutlierFlag = items[i].CO2EmissionsKg > co2P ||
			items[i].WaterUsageLiters > waterP ||
			items[i].LifespanYears > lifespanP
		if items[i].OutlierFlag {
			summary.OutlierCount++
		}
	}
	return nil
}

func median(values []float64) (float64, error) {
	return stats.Median(values)
}

func roundedMean(values []float64) (float64, error) {
	m, err := stats.Mean(values)
	if err != nil {
		return 0, err
	}
	return math.Round(m), nil
}
