package generator

import (
	"math"
	"math/rand"

	"ecothread/domain/catalog"
)

// Config configures the synthetic dataset generator
type Config struct {
	Count           int   `json:"count"`
	Seed            int64 `json:"seed"`
	MissingPerField int   `json:"missing_per_field"`
}

// DefaultConfig returns the fixed scheme used by the standard run:
// 300 records, 5 deliberately-missing values in each of the three
// optional fields.
func DefaultConfig() Config {
	return Config{
		Count:           300,
		Seed:            42,
		MissingPerField: 5,
	}
}

// Generator produces a seed-deterministic synthetic clothing dataset.
// Identical configs always yield identical records.
type Generator struct {
	config Config
	rng    *rand.Rand
}

// New creates a generator for the given config
func New(config Config) *Generator {
	return &Generator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate produces the raw dataset. Item IDs are assigned sequentially
// starting at 1. lifespan_years, co2_emissions_kg and water_usage_liters are
// never missing by construction; missingness is injected only into
// recycled_content_pct, washes_before_disposal and price_usd.
func (g *Generator) Generate() []catalog.RawItem {
	items := make([]catalog.RawItem, 0, g.config.Count)

	for i := 0; i < g.config.Count; i++ {
		ct := g.randomClothingType()
		mat := g.randomMaterial()
		method := g.randomMethod(mat)

		lifespan := g.lifespanFor(ct)
		item := catalog.RawItem{
			ItemID:               i + 1,
			ClothingType:         ct,
			Material:             mat,
			ProductionMethod:     method,
			LifespanYears:        lifespan,
			CO2EmissionsKg:       g.co2For(mat),
			WaterUsageLiters:     g.waterFor(mat),
			PriceUSD:             catalog.Present(g.priceFor(ct, mat)),
			WashesBeforeDisposal: catalog.Present(g.washesFor(ct, lifespan)),
			RecycledContentPct:   catalog.Present(g.recycledFor(method)),
		}
		items = append(items, item)
	}

	g.injectMissing(items)
	return items
}

// injectMissing blanks a fixed number of values per optional field at
// rng-chosen distinct row indices.
func (g *Generator) injectMissing(items []catalog.RawItem) {
	n := g.config.MissingPerField
	if n <= 0 || len(items) == 0 {
		return
	}
	if n > len(items) {
		n = len(items)
	}

	for _, idx := range g.rng.Perm(len(items))[:n] {
		items[idx].RecycledContentPct = catalog.Missing()
	}
	for _, idx := range g.rng.Perm(len(items))[:n] {
		items[idx].WashesBeforeDisposal = catalog.Missing()
	}
	for _, idx := range g.rng.Perm(len(items))[:n] {
		items[idx].PriceUSD = catalog.Missing()
	}
}

func (g *Generator) randomClothingType() catalog.ClothingType {
	weights := []float64{0.25, 0.2, 0.15, 0.15, 0.15, 0.1}
	return catalog.ClothingTypes[g.weightedIndex(weights)]
}

func (g *Generator) randomMaterial() catalog.Material {
	weights := []float64{0.12, 0.1, 0.22, 0.08, 0.08, 0.2, 0.1, 0.1}
	return catalog.Materials[g.weightedIndex(weights)]
}

// randomMethod skews production method toward the material: recycled fabrics
// are mostly produced by the Recycled method, organic cotton by Organic.
func (g *Generator) randomMethod(mat catalog.Material) catalog.ProductionMethod {
	switch mat {
	case catalog.MaterialRecycledCotton:
		if g.rng.Float64() < 0.7 {
			return catalog.MethodRecycled
		}
	case catalog.MaterialOrganicCotton, catalog.MaterialHemp, catalog.MaterialLinen:
		if g.rng.Float64() < 0.6 {
			return catalog.MethodOrganic
		}
	}
	weights := []float64{0.5, 0.2, 0.15, 0.15}
	return catalog.ProductionMethods[g.weightedIndex(weights)]
}

func (g *Generator) lifespanFor(ct catalog.ClothingType) float64 {
	base := map[catalog.ClothingType]float64{
		catalog.TypeTShirt:  2.5,
		catalog.TypeJeans:   6.0,
		catalog.TypeDress:   4.0,
		catalog.TypeJacket:  8.0,
		catalog.TypeSweater: 5.0,
		catalog.TypeShirt:   3.5,
	}[ct]

	v := base + g.rng.NormFloat64()*base*0.3
	if v < 0.5 {
		v = 0.5
	}
	return round1(v)
}

func (g *Generator) co2For(mat catalog.Material) float64 {
	base := map[catalog.Material]float64{
		catalog.MaterialOrganicCotton:      6.0,
		catalog.MaterialRecycledCotton:     4.0,
		catalog.MaterialConventionalCotton: 10.0,
		catalog.MaterialHemp:               5.0,
		catalog.MaterialLinen:              5.5,
		catalog.MaterialPolyester:          14.0,
		catalog.MaterialNylon:              16.0,
		catalog.MaterialWool:               18.0,
	}[mat]

	v := base + g.rng.NormFloat64()*base*0.25
	if v < 0.5 {
		v = 0.5
	}
	return round1(v)
}

func (g *Generator) waterFor(mat catalog.Material) float64 {
	base := map[catalog.Material]float64{
		catalog.MaterialOrganicCotton:      2500.0,
		catalog.MaterialRecycledCotton:     1500.0,
		catalog.MaterialConventionalCotton: 8000.0,
		catalog.MaterialHemp:               1200.0,
		catalog.MaterialLinen:              1800.0,
		catalog.MaterialPolyester:          600.0,
		catalog.MaterialNylon:              700.0,
		catalog.MaterialWool:               5500.0,
	}[mat]

	v := base + g.rng.NormFloat64()*base*0.3
	if v < 100 {
		v = 100
	}
	return math.Round(v)
}

func (g *Generator) priceFor(ct catalog.ClothingType, mat catalog.Material) float64 {
	base := map[catalog.ClothingType]float64{
		catalog.TypeTShirt:  18.0,
		catalog.TypeJeans:   55.0,
		catalog.TypeDress:   65.0,
		catalog.TypeJacket:  110.0,
		catalog.TypeSweater: 45.0,
		catalog.TypeShirt:   35.0,
	}[ct]

	// Sustainable fabrics carry a price premium
	if catalog.IsSustainableMaterial(mat) {
		base *= 1.3
	}

	v := base + g.rng.NormFloat64()*base*0.35
	if v < 5 {
		v = 5
	}
	return round2(v)
}

func (g *Generator) washesFor(ct catalog.ClothingType, lifespan float64) float64 {
	// Roughly 20 washes per year of life, garment-dependent
	perYear := map[catalog.ClothingType]float64{
		catalog.TypeTShirt:  30.0,
		catalog.TypeJeans:   15.0,
		catalog.TypeDress:   10.0,
		catalog.TypeJacket:  5.0,
		catalog.TypeSweater: 12.0,
		catalog.TypeShirt:   25.0,
	}[ct]

	v := lifespan*perYear + g.rng.NormFloat64()*10
	if v < 1 {
		v = 1
	}
	return math.Round(v)
}

func (g *Generator) recycledFor(method catalog.ProductionMethod) float64 {
	var lo, hi float64
	switch method {
	case catalog.MethodRecycled:
		lo, hi = 40, 95
	case catalog.MethodOrganic:
		lo, hi = 5, 40
	case catalog.MethodFairTrade:
		lo, hi = 5, 50
	default:
		lo, hi = 0, 25
	}
	return round1(lo + g.rng.Float64()*(hi-lo))
}

// weightedIndex draws an index from a discrete weighted distribution
func (g *Generator) weightedIndex(weights []float64) int {
	r := g.rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r <= cumulative {
			return i
		}
	}
	return 0
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
