package run

import (
	"ecothread/domain/core"
)

// Manifest captures audit metadata for one end-to-end analysis run
type Manifest struct {
	ID                core.RunID     `json:"id" db:"id"`
	Seed              int64          `json:"seed" db:"seed"`
	InputRows         int            `json:"input_rows" db:"input_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed" db:"duplicates_removed"`
	OutputRows        int            `json:"output_rows" db:"output_rows"`
	ImputedValues     int            `json:"imputed_values" db:"imputed_values"`
	OutlierCount      int            `json:"outlier_count" db:"outlier_count"`
	Warnings          []string       `json:"warnings,omitempty" db:"-"`
	CreatedAt         core.Timestamp `json:"created_at" db:"created_at"`
}

// TestRecord is one scalar statistical result produced during a run
type TestRecord struct {
	Name       string  `json:"name" db:"name"`
	Statistic  float64 `json:"statistic" db:"statistic"`
	PValue     float64 `json:"p_value" db:"p_value"`
	EffectSize float64 `json:"effect_size" db:"effect_size"`
	Detail     string  `json:"detail,omitempty" db:"detail"`
}

// Result bundles a run manifest with its recorded test outcomes
type Result struct {
	Manifest Manifest     `json:"manifest"`
	Tests    []TestRecord `json:"tests"`
}
