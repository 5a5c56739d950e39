package app

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"ecothread/domain/catalog"
	"ecothread/domain/core"
	"ecothread/domain/run"
	"ecothread/internal"
	"ecothread/internal/analysis"
	"ecothread/internal/generator"
	"ecothread/internal/pipeline"
	"ecothread/internal/report"
	"ecothread/ports"
)

// WorkbookExporter writes the cleaned table and results as a workbook
type WorkbookExporter interface {
	Export(path string, items []catalog.Item,
		summaries map[string]map[string]analysis.ColumnSummary, tests []run.TestRecord) error
}

// RunParams configures one end-to-end analysis run
type RunParams struct {
	// InputFile, when set, is cleaned instead of generating synthetic data
	InputFile string
	OutDir    string
	Generator generator.Config
	Pipeline  pipeline.Options
}

// AnalysisService orchestrates a full run: load or generate, clean,
// analyze, render charts, export tables and emit the report. Stages run
// strictly in sequence; each stage fully consumes its input before the
// next begins, and a pipeline failure aborts before any cleaned output is
// written.
type AnalysisService struct {
	log      *internal.Logger
	reader   ports.DatasetReader
	writer   ports.DatasetWriter
	charts   ports.ChartRenderer
	exporter WorkbookExporter
	repo     ports.RunRepository // nil disables persistence
}

// NewAnalysisService wires the orchestrator
func NewAnalysisService(log *internal.Logger, reader ports.DatasetReader,
	writer ports.DatasetWriter, charts ports.ChartRenderer,
	exporter WorkbookExporter, repo ports.RunRepository) *AnalysisService {
	return &AnalysisService{
		log:      log.WithTag("app"),
		reader:   reader,
		writer:   writer,
		charts:   charts,
		exporter: exporter,
		repo:     repo,
	}
}

// Run executes the full pipeline and returns the run result
func (s *AnalysisService) Run(ctx context.Context, params RunParams) (*run.Result, error) {
	runID := core.NewRunID()
	rep := report.NewBuilder("Clothing Sustainability Analysis", runID, params.OutDir)
	// Flush whatever was captured even when a later stage fails
	defer rep.Close()

	raw, err := s.loadRaw(params)
	if err != nil {
		return nil, fmt.Errorf("input stage: %w", err)
	}
	s.log.Info("loaded %d raw records", len(raw))

	items, summary, err := pipeline.Clean(raw, params.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("cleaning stage: %w", err)
	}
	s.log.Info("cleaned %d records (%d duplicates removed, %d values imputed, %d outliers)",
		summary.OutputRows, summary.DuplicatesRemoved, summary.TotalImputed(), summary.OutlierCount)

	rep.KeyValues("Cleaning Summary",
		[2]string{"input rows", fmt.Sprintf("%d", summary.InputRows)},
		[2]string{"duplicates removed", fmt.Sprintf("%d", summary.DuplicatesRemoved)},
		[2]string{"output rows", fmt.Sprintf("%d", summary.OutputRows)},
		[2]string{"values imputed", fmt.Sprintf("%d", summary.TotalImputed())},
		[2]string{"global fallbacks", fmt.Sprintf("%d", summary.TotalGlobalFallbacks())},
		[2]string{"outliers flagged", fmt.Sprintf("%d", summary.OutlierCount)},
	)

	tests := s.analyze(items, rep)
	s.renderCharts(items, rep)

	if err := s.writer.Write(filepath.Join(params.OutDir, "cleaned.csv"), items); err != nil {
		return nil, fmt.Errorf("output stage: %w", err)
	}

	summaries := groupSummaries(items, rep)
	if err := s.exporter.Export(filepath.Join(params.OutDir, "analysis.xlsx"), items, summaries, tests); err != nil {
		return nil, fmt.Errorf("export stage: %w", err)
	}

	result := &run.Result{
		Manifest: run.Manifest{
			ID:                runID,
			Seed:              params.Generator.Seed,
			InputRows:         summary.InputRows,
			DuplicatesRemoved: summary.DuplicatesRemoved,
			OutputRows:        summary.OutputRows,
			ImputedValues:     summary.TotalImputed(),
			OutlierCount:      summary.OutlierCount,
			Warnings:          rep.Warnings(),
			CreatedAt:         core.Now(),
		},
		Tests: tests,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, result); err != nil {
			// Persistence is auxiliary; the file artifacts are the output
			s.log.Warn("persisting run failed: %v", err)
			rep.Warn("run persistence failed: %v", err)
		}
	}

	if err := rep.Close(); err != nil {
		return nil, fmt.Errorf("report stage: %w", err)
	}
	s.log.Info("run %s complete: %d test results", runID, len(tests))
	return result, nil
}

func (s *AnalysisService) loadRaw(params RunParams) ([]catalog.RawItem, error) {
	if params.InputFile != "" {
		s.log.Info("reading dataset from %s", params.InputFile)
		return s.reader.Read(params.InputFile)
	}
	s.log.Info("generating %d synthetic records (seed %d)",
		params.Generator.Count, params.Generator.Seed)
	return generator.New(params.Generator).Generate(), nil
}

// analyze runs the canned hypothesis tests and regression models.
// Statistical failures (degenerate samples, singular designs) become
// report caveats; the run still completes.
func (s *AnalysisService) analyze(items []catalog.Item, rep *report.Builder) []run.TestRecord {
	var tests []run.TestRecord

	tests = append(tests, s.sustainableTTest(items, rep)...)
	tests = append(tests, s.materialANOVA(items, rep)...)
	tests = append(tests, s.costANOVA(items, rep)...)
	tests = append(tests, s.impactRegression(items, rep)...)

	return tests
}

// sustainableTTest compares env_impact_score between sustainable and
// conventional materials.
func (s *AnalysisService) sustainableTTest(items []catalog.Item, rep *report.Builder) []run.TestRecord {
	var sustainable, conventional []float64
	for _, it := range items {
		if it.MaterialSustainable {
			sustainable = append(sustainable, it.EnvImpactScore)
		} else {
			conventional = append(conventional, it.EnvImpactScore)
		}
	}

	tt, err := analysis.WelchTTest("sustainable", sustainable, "conventional", conventional)
	if err != nil {
		rep.Warn("t-test env_impact_score by material_sustainable: %v", err)
		return nil
	}
	for _, w := range tt.Warnings {
		rep.Warn("t-test env_impact_score: %s", w)
	}

	rep.KeyValues("Welch t-test: env_impact_score, sustainable vs conventional",
		[2]string{"mean (sustainable)", fmt.Sprintf("%.4f (n=%d)", tt.MeanA, tt.NA)},
		[2]string{"mean (conventional)", fmt.Sprintf("%.4f (n=%d)", tt.MeanB, tt.NB)},
		[2]string{"t", fmt.Sprintf("%.4f (df=%.1f)", tt.TStatistic, tt.DF)},
		[2]string{"p-value", fmt.Sprintf("%.4g", tt.PValue)},
		[2]string{"Cohen's d", fmt.Sprintf("%.4f", tt.CohenD)},
	)

	return []run.TestRecord{{
		Name:       "ttest_env_impact_by_sustainable",
		Statistic:  tt.TStatistic,
		PValue:     tt.PValue,
		EffectSize: tt.CohenD,
		Detail:     fmt.Sprintf("sustainable n=%d vs conventional n=%d", tt.NA, tt.NB),
	}}
}

func (s *AnalysisService) materialANOVA(items []catalog.Item, rep *report.Builder) []run.TestRecord {
	groups := map[string][]float64{}
	for _, it := range items {
		groups[string(it.Material)] = append(groups[string(it.Material)], it.CO2PerYear)
	}
	return s.reportANOVA("co2_per_year", "material", groups, rep)
}

func (s *AnalysisService) costANOVA(items []catalog.Item, rep *report.Builder) []run.TestRecord {
	groups := map[string][]float64{}
	for _, it := range items {
		groups[string(it.ClothingType)] = append(groups[string(it.ClothingType)], it.CostPerYear)
	}
	return s.reportANOVA("cost_per_year", "clothing_type", groups, rep)
}

func (s *AnalysisService) reportANOVA(response, factor string,
	groups map[string][]float64, rep *report.Builder) []run.TestRecord {

	res, err := analysis.OneWayANOVA(groups)
	if err != nil {
		rep.Warn("ANOVA %s by %s: %v", response, factor, err)
		return nil
	}
	for _, w := range res.Warnings {
		rep.Warn("ANOVA %s by %s: %s", response, factor, w)
	}

	rows := make([][]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		rows = append(rows, []string{g.Label, fmt.Sprintf("%d", g.N), fmt.Sprintf("%.4f", g.Mean)})
	}
	rep.AddTable(fmt.Sprintf("ANOVA: %s by %s", response, factor),
		[]string{factor, "n", "mean"}, rows)
	rep.KeyValues(fmt.Sprintf("ANOVA result: %s by %s", response, factor),
		[2]string{"F", fmt.Sprintf("%.4f (df %d, %d)", res.FStatistic, res.DFBetween, res.DFWithin)},
		[2]string{"p-value", fmt.Sprintf("%.4g", res.PValue)},
		[2]string{"eta-squared", fmt.Sprintf("%.4f", res.EtaSquared)},
	)

	if len(res.Pairwise) > 0 {
		prows := make([][]string, 0, len(res.Pairwise))
		for _, p := range res.Pairwise {
			prows = append(prows, []string{
				p.GroupA + " vs " + p.GroupB,
				fmt.Sprintf("%.4f", p.TStatistic),
				fmt.Sprintf("%.4g", p.AdjustedP),
				fmt.Sprintf("%.4f", p.CohenD),
			})
		}
		rep.AddTable(fmt.Sprintf("Post-hoc (Bonferroni): %s by %s", response, factor),
			[]string{"comparison", "t", "adj p", "Cohen's d"}, prows)
	}

	return []run.TestRecord{{
		Name:       fmt.Sprintf("anova_%s_by_%s", response, factor),
		Statistic:  res.FStatistic,
		PValue:     res.PValue,
		EffectSize: res.EtaSquared,
		Detail:     fmt.Sprintf("%d groups", len(res.Groups)),
	}}
}

// impactRegression fits env_impact_score on the numeric predictors plus
// dummy-coded material, with forward stepwise AIC selection.
func (s *AnalysisService) impactRegression(items []catalog.Item, rep *report.Builder) []run.TestRecord {
	n := len(items)
	y := make([]float64, n)
	price := make([]float64, n)
	lifespan := make([]float64, n)
	recycled := make([]float64, n)
	washes := make([]float64, n)
	materials := make([]string, n)
	for i, it := range items {
		y[i] = it.EnvImpactScore
		price[i] = it.PriceUSD
		lifespan[i] = it.LifespanYears
		recycled[i] = it.RecycledContentPct
		washes[i] = it.WashesBeforeDisposal
		materials[i] = string(it.Material)
	}

	candidates := []analysis.Term{
		{Name: "price_usd", Values: price},
		{Name: "lifespan_years", Values: lifespan},
		{Name: "recycled_content_pct", Values: recycled},
		{Name: "washes_before_disposal", Values: washes},
	}
	candidates = append(candidates, analysis.DummyCode("material", materials)...)

	model, err := analysis.StepwiseAIC("env_impact_score", y, candidates)
	if err != nil {
		rep.Warn("regression env_impact_score: %v", err)
		return nil
	}
	model.EvaluateDiagnostics()
	for _, w := range model.Warnings {
		rep.Warn("regression env_impact_score: %s", w)
	}

	rows := make([][]string, 0, len(model.Coefficients))
	for _, c := range model.Coefficients {
		rows = append(rows, []string{
			c.Name,
			fmt.Sprintf("%.6f", c.Estimate),
			fmt.Sprintf("%.6f", c.StdErr),
			fmt.Sprintf("%.4f", c.TStatistic),
			fmt.Sprintf("%.4g", c.PValue),
		})
	}
	rep.AddTable("Regression: env_impact_score (stepwise AIC)",
		[]string{"term", "estimate", "std err", "t", "p"}, rows)
	rep.KeyValues("Regression fit",
		[2]string{"n", fmt.Sprintf("%d", model.N)},
		[2]string{"R-squared", fmt.Sprintf("%.4f", model.R2)},
		[2]string{"adj R-squared", fmt.Sprintf("%.4f", model.AdjR2)},
		[2]string{"F", fmt.Sprintf("%.4f", model.FStatistic)},
		[2]string{"F p-value", fmt.Sprintf("%.4g", model.FPValue)},
		[2]string{"AIC", fmt.Sprintf("%.2f", model.AIC)},
	)

	s.reportDiagnostics(model, rep)

	return []run.TestRecord{{
		Name:       "ols_env_impact_score",
		Statistic:  model.FStatistic,
		PValue:     model.FPValue,
		EffectSize: model.R2,
		Detail:     fmt.Sprintf("terms: %v", model.TermNames()),
	}}
}

func (s *AnalysisService) reportDiagnostics(model *analysis.ModelResult, rep *report.Builder) {
	d := model.Diagnostics
	if d == nil {
		return
	}

	rep.KeyValues("Regression diagnostics",
		[2]string{"Jarque-Bera", fmt.Sprintf("%.4f (p=%.4g)", d.JarqueBera, d.JarqueBeraP)},
		[2]string{"Breusch-Pagan", fmt.Sprintf("%.4f (p=%.4g)", d.BreuschPagan, d.BreuschPaganP)},
		[2]string{"Durbin-Watson", fmt.Sprintf("%.4f", d.DurbinWatson)},
	)

	if d.JarqueBeraP < 0.05 {
		rep.Warn("regression residuals depart from normality (Jarque-Bera p=%.4g)", d.JarqueBeraP)
	}
	if d.BreuschPaganP > 0 && d.BreuschPaganP < 0.05 {
		rep.Warn("regression residuals are heteroscedastic (Breusch-Pagan p=%.4g)", d.BreuschPaganP)
	}
	if math.Abs(d.DurbinWatson-2) > 0.5 {
		rep.Warn("regression residuals show autocorrelation (Durbin-Watson %.2f)", d.DurbinWatson)
	}
	for name, vif := range d.VIF {
		if vif > 10 {
			rep.Warn("predictor %s is strongly collinear (VIF %.1f)", name, vif)
		}
	}
}

// renderCharts draws the standard chart set; rendering failures are
// caveats, not fatal errors.
func (s *AnalysisService) renderCharts(items []catalog.Item, rep *report.Builder) {
	scores := make([]float64, len(items))
	price := make([]float64, len(items))
	lifespan := make([]float64, len(items))
	co2ByMaterial := map[string][]float64{}
	outliersByType := map[string]int{}
	for i, it := range items {
		scores[i] = it.EnvImpactScore
		price[i] = it.PriceUSD
		lifespan[i] = it.LifespanYears
		co2ByMaterial[string(it.Material)] = append(co2ByMaterial[string(it.Material)], it.CO2PerYear)
		if _, ok := outliersByType[string(it.ClothingType)]; !ok {
			outliersByType[string(it.ClothingType)] = 0
		}
		if it.OutlierFlag {
			outliersByType[string(it.ClothingType)]++
		}
	}

	if _, err := s.charts.Histogram(scores,
		"Environmental impact score", "env_impact_score", "impact_histogram.png"); err != nil {
		rep.Warn("rendering impact histogram: %v", err)
	}

	labels := analysis.GroupKeys(co2ByMaterial)
	means := make([]float64, len(labels))
	for i, l := range labels {
		sum := 0.0
		for _, v := range co2ByMaterial[l] {
			sum += v
		}
		means[i] = sum / float64(len(co2ByMaterial[l]))
	}
	if _, err := s.charts.Bar(labels, means,
		"Mean CO2 per year by material", "kg CO2 / year", "co2_by_material.png"); err != nil {
		rep.Warn("rendering CO2 bar chart: %v", err)
	}

	if _, err := s.charts.Scatter(lifespan, price,
		"Price vs lifespan", "lifespan_years", "price_usd", "price_vs_lifespan.png"); err != nil {
		rep.Warn("rendering price scatter: %v", err)
	}

	typeLabels := analysis.GroupKeys(outliersByType)
	counts := make([]float64, len(typeLabels))
	for i, l := range typeLabels {
		counts[i] = float64(outliersByType[l])
	}
	if _, err := s.charts.Bar(typeLabels, counts,
		"Outlier counts by clothing type", "flagged items", "outliers_by_type.png"); err != nil {
		rep.Warn("rendering outlier bar chart: %v", err)
	}
}

// groupSummaries builds per-material and per-type env_impact_score
// summaries for the workbook, also appending them to the report.
func groupSummaries(items []catalog.Item, rep *report.Builder) map[string]map[string]analysis.ColumnSummary {
	byMaterial := map[string][]float64{}
	byType := map[string][]float64{}
	for _, it := range items {
		byMaterial[string(it.Material)] = append(byMaterial[string(it.Material)], it.EnvImpactScore)
		byType[string(it.ClothingType)] = append(byType[string(it.ClothingType)], it.EnvImpactScore)
	}

	out := map[string]map[string]analysis.ColumnSummary{}
	for section, groups := range map[string]map[string][]float64{
		"material":      byMaterial,
		"clothing_type": byType,
	} {
		summaries, err := analysis.DescribeGroups(groups)
		if err != nil {
			rep.Warn("summarizing env_impact_score by %s: %v", section, err)
			continue
		}
		out[section] = summaries

		rows := make([][]string, 0, len(summaries))
		for _, label := range analysis.GroupKeys(summaries) {
			s := summaries[label]
			rows = append(rows, []string{
				label,
				fmt.Sprintf("%d", s.N),
				fmt.Sprintf("%.4f", s.Mean),
				fmt.Sprintf("%.4f", s.Median),
				fmt.Sprintf("%.4f", s.StdDev),
			})
		}
		rep.AddTable(fmt.Sprintf("env_impact_score by %s", section),
			[]string{section, "n", "mean", "median", "std dev"}, rows)
	}
	return out
}
