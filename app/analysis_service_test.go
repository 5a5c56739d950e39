package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecothread/adapters/charts"
	"ecothread/adapters/excel"
	"ecothread/adapters/tabular"
	"ecothread/internal"
	"ecothread/internal/generator"
)

func newTestService() *AnalysisService {
	log := internal.NewLogger(internal.LogLevelError)
	return NewAnalysisService(
		log,
		tabular.NewReader(),
		tabular.NewWriter(),
		charts.NewRenderer(""),
		excel.NewExporter(),
		nil,
	)
}

func TestAnalysisService_FullRun(t *testing.T) {
	dir := t.TempDir()
	svc := NewAnalysisService(
		internal.NewLogger(internal.LogLevelError),
		tabular.NewReader(),
		tabular.NewWriter(),
		charts.NewRenderer(dir),
		excel.NewExporter(),
		nil,
	)

	result, err := svc.Run(context.Background(), RunParams{
		OutDir:    dir,
		Generator: generator.Config{Count: 240, Seed: 7, MissingPerField: 3},
	})
	require.NoError(t, err)

	m := result.Manifest
	assert.Equal(t, int64(7), m.Seed)
	assert.Equal(t, 240, m.InputRows)
	assert.Equal(t, 240, m.OutputRows)
	assert.Equal(t, 9, m.ImputedValues, "3 missing values per optional field")
	assert.False(t, m.ID.String() == "")
	assert.False(t, m.CreatedAt.IsZero())

	// One t-test, two ANOVAs, one regression
	require.Len(t, result.Tests, 4)
	names := map[string]bool{}
	for _, tr := range result.Tests {
		names[tr.Name] = true
		assert.GreaterOrEqual(t, tr.PValue, 0.0, "%s p-value", tr.Name)
		assert.LessOrEqual(t, tr.PValue, 1.0, "%s p-value", tr.Name)
	}
	for _, want := range []string{
		"ttest_env_impact_by_sustainable",
		"anova_co2_per_year_by_material",
		"anova_cost_per_year_by_clothing_type",
		"ols_env_impact_score",
	} {
		assert.True(t, names[want], "missing test record %s", want)
	}

	for _, name := range []string{
		"cleaned.csv",
		"analysis.xlsx",
		"report.txt",
		"report.md",
		"report.html",
		"impact_histogram.png",
		"co2_by_material.png",
		"price_vs_lifespan.png",
		"outliers_by_type.png",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "expected artifact %s", name)
		assert.Greater(t, info.Size(), int64(0), "artifact %s is empty", name)
	}
}

func TestAnalysisService_ReadsInputFile(t *testing.T) {
	dir := t.TempDir()

	// Materialize a generated dataset, then analyze it via the reader path
	raw := generator.New(generator.Config{Count: 80, Seed: 11, MissingPerField: 2}).Generate()
	input := filepath.Join(dir, "raw.csv")
	require.NoError(t, tabular.NewWriter().WriteRaw(input, raw))

	svc := NewAnalysisService(
		internal.NewLogger(internal.LogLevelError),
		tabular.NewReader(),
		tabular.NewWriter(),
		charts.NewRenderer(dir),
		excel.NewExporter(),
		nil,
	)

	result, err := svc.Run(context.Background(), RunParams{
		InputFile: input,
		OutDir:    dir,
	})
	require.NoError(t, err)
	assert.Equal(t, 80, result.Manifest.InputRows)
	assert.Equal(t, 80, result.Manifest.OutputRows)
}

func TestAnalysisService_InputStageFailure(t *testing.T) {
	svc := newTestService()

	_, err := svc.Run(context.Background(), RunParams{
		InputFile: filepath.Join(t.TempDir(), "does-not-exist.csv"),
		OutDir:    t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input stage")
}

func TestAnalysisService_NoCleanedOutputOnFailure(t *testing.T) {
	dir := t.TempDir()

	// A malformed row aborts cleaning; cleaned.csv must not appear
	bad := filepath.Join(dir, "bad.csv")
	content := "item_id,clothing_type,material,production_method,lifespan_years,co2_emissions_kg,water_usage_liters,price_usd,washes_before_disposal,recycled_content_pct\n" +
		"1,Jeans,Wool,Conventional,0,12,2500,49,80,10\n"
	require.NoError(t, os.WriteFile(bad, []byte(content), 0o644))

	svc := NewAnalysisService(
		internal.NewLogger(internal.LogLevelError),
		tabular.NewReader(),
		tabular.NewWriter(),
		charts.NewRenderer(dir),
		excel.NewExporter(),
		nil,
	)

	_, err := svc.Run(context.Background(), RunParams{InputFile: bad, OutDir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cleaning stage")

	_, statErr := os.Stat(filepath.Join(dir, "cleaned.csv"))
	assert.True(t, os.IsNotExist(statErr))

	// The deferred report flush still leaves a (partial) report behind
	_, statErr = os.Stat(filepath.Join(dir, "report.txt"))
	assert.NoError(t, statErr)
}
