package catalog

import (
	"fmt"

	"ecothread/domain/core"
)

// OptionalFloat is a numeric measurement that may be absent before cleaning
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Present wraps an observed value
func Present(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Missing returns an absent value
func Missing() OptionalFloat {
	return OptionalFloat{}
}

// RawItem is one row of the dataset before cleaning. The three optional
// fields may be missing; every other field is present by construction.
type RawItem struct {
	ItemID               int
	ClothingType         ClothingType
	Material             Material
	ProductionMethod     ProductionMethod
	LifespanYears        float64
	CO2EmissionsKg       float64
	WaterUsageLiters     float64
	PriceUSD             OptionalFloat
	WashesBeforeDisposal OptionalFloat
	RecycledContentPct   OptionalFloat
}

// Validate checks categorical labels against the closed vocabularies and
// rejects non-positive lifespans (per-year rates divide by lifespan).
func (r RawItem) Validate() error {
	if _, err := ParseClothingType(string(r.ClothingType)); err != nil {
		return err
	}
	if _, err := ParseMaterial(string(r.Material)); err != nil {
		return err
	}
	if _, err := ParseProductionMethod(string(r.ProductionMethod)); err != nil {
		return err
	}
	if r.LifespanYears <= 0 {
		return fmt.Errorf("%w: item %d: lifespan_years must be positive, got %g",
			core.ErrMalformedInput, r.ItemID, r.LifespanYears)
	}
	return nil
}

// Category is the sustainability classification of a cleaned item
type Category string

const (
	CategoryLowImpact    Category = "Low Impact"
	CategoryMediumImpact Category = "Medium Impact"
	CategoryHighImpact   Category = "High Impact"
)

// Classification thresholds are fixed constants, independent of the dataset.
const (
	LowImpactMax    = 0.3
	MediumImpactMax = 0.6
)

// ClassifyImpact maps an env_impact_score to its category. Boundaries are
// inclusive: a score of exactly 0.3 is Low Impact, exactly 0.6 is Medium.
func ClassifyImpact(score float64) Category {
	switch {
	case score <= LowImpactMax:
		return CategoryLowImpact
	case score <= MediumImpactMax:
		return CategoryMediumImpact
	default:
		return CategoryHighImpact
	}
}

// Item is a cleaned, fully-populated record. EnvImpactScore is normalized
// against the current run's per-year maxima, so it is dataset-relative:
// recomputing it over a different slice of data changes every score. That is
// an intentional property of the metric, not drift.
type Item struct {
	ItemID               int
	ClothingType         ClothingType
	Material             Material
	ProductionMethod     ProductionMethod
	LifespanYears        float64
	CO2EmissionsKg       float64
	WaterUsageLiters     float64
	PriceUSD             float64
	WashesBeforeDisposal float64
	RecycledContentPct   float64

	// Derived fields, in output column order
	CO2PerYear             float64
	WaterPerYear           float64
	EnvImpactScore         float64
	CostPerYear            float64
	SustainabilityCategory Category
	MaterialSustainable    bool
	OutlierFlag            bool
}
