package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ecothread/adapters/charts"
	"ecothread/adapters/excel"
	"ecothread/adapters/postgres"
	"ecothread/adapters/tabular"
	"ecothread/app"
	"ecothread/domain/catalog"
	"ecothread/internal"
	"ecothread/internal/config"
	"ecothread/internal/generator"
	"ecothread/internal/pipeline"
	"ecothread/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ecothread",
		Short: "Clothing sustainability dataset pipeline and analysis",
	}

	rootCmd.AddCommand(
		newGenerateCmd(),
		newCleanCmd(),
		newAnalyzeCmd(),
		newRunCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flags common to every subcommand, layered over the env config
type commonFlags struct {
	outDir string
	seed   int64
	count  int
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.outDir, "out", "", "Output directory (default from ECOTHREAD_OUT)")
	cmd.Flags().Int64Var(&f.seed, "seed", -1, "Random seed for the synthetic generator")
	cmd.Flags().IntVar(&f.count, "count", 0, "Number of synthetic records to generate")
}

// apply overlays set flags on the loaded config
func (f *commonFlags) apply(cfg *config.Config) {
	if f.outDir != "" {
		cfg.Paths.OutputDir = f.outDir
	}
	if f.seed >= 0 {
		cfg.Generator.Seed = f.seed
	}
	if f.count > 0 {
		cfg.Generator.Count = f.count
	}
}

func newGenerateCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic raw dataset CSV",
		Long: `Generate a seed-deterministic synthetic clothing dataset and write it
as raw.csv in the output directory. Identical seeds always produce
identical files.

Example: ecothread generate --count 300 --seed 42 --out out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			log := internal.NewDefaultLogger().WithTag("cli")

			raw := generator.New(generator.Config{
				Count:           cfg.Generator.Count,
				Seed:            cfg.Generator.Seed,
				MissingPerField: cfg.Generator.MissingPerField,
			}).Generate()

			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			path := filepath.Join(cfg.Paths.OutputDir, "raw.csv")
			if err := tabular.NewWriter().WriteRaw(path, raw); err != nil {
				return err
			}
			log.Info("wrote %d raw records to %s", len(raw), path)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newCleanCmd() *cobra.Command {
	var flags commonFlags
	var input string
	var strict bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a raw dataset without running the analysis",
		Long: `Read a raw CSV (or generate one when --input is omitted), run the
cleaning pipeline (validation, deduplication, grouped imputation, derived
metrics, outlier flagging) and write cleaned.csv.

Example: ecothread clean --input out/raw.csv --out out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags.apply(cfg)
			if input != "" {
				cfg.Paths.InputFile = input
			}
			log := internal.NewDefaultLogger().WithTag("cli")

			raw, err := loadRaw(cfg, log)
			if err != nil {
				return err
			}

			items, summary, err := pipeline.Clean(raw, pipeline.Options{
				StrictImputation: strict || cfg.Pipeline.StrictImputation,
			})
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			path := filepath.Join(cfg.Paths.OutputDir, "cleaned.csv")
			if err := tabular.NewWriter().Write(path, items); err != nil {
				return err
			}
			log.Info("cleaned %d rows to %s (%d duplicates removed, %d imputed, %d outliers)",
				summary.OutputRows, path, summary.DuplicatesRemoved,
				summary.TotalImputed(), summary.OutlierCount)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&input, "input", "", "Raw CSV to clean (omit to generate)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on empty imputation groups instead of falling back")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var flags commonFlags
	var input string
	var strict bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze an existing raw CSV and emit all artifacts",
		Long: `Clean and analyze an existing dataset. Unlike run, no synthetic data is
generated; --input is required. Writes the same artifacts as run.

Example: ecothread analyze --input out/raw.csv --out out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			return executeAnalysis(cmd, &flags, input, strict)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&input, "input", "", "Raw CSV to analyze (required)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on empty imputation groups instead of falling back")
	return cmd
}

func newRunCmd() *cobra.Command {
	var flags commonFlags
	var input string
	var strict bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: clean, analyze, chart, export, report",
		Long: `Execute the end-to-end analysis. Reads --input when given, otherwise
generates a synthetic dataset. Writes cleaned.csv, analysis.xlsx, charts
and the report files into the output directory. When DATABASE_URL is set
the run manifest and test results are also persisted to Postgres.

Example: ecothread run --seed 42 --out out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeAnalysis(cmd, &flags, input, strict)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&input, "input", "", "Raw CSV to analyze (omit to generate)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on empty imputation groups instead of falling back")
	return cmd
}

// executeAnalysis wires the adapters and runs the end-to-end service; run
// and analyze share it, differing only in whether an input file is required.
func executeAnalysis(cmd *cobra.Command, flags *commonFlags, input string, strict bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags.apply(cfg)
	if input != "" {
		cfg.Paths.InputFile = input
	}
	log := internal.NewDefaultLogger()

	var repo ports.RunRepository
	if cfg.Database.URL != "" {
		repo, err = postgres.Connect(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
	}

	svc := app.NewAnalysisService(
		log,
		tabular.NewReader(),
		tabular.NewWriter(),
		charts.NewRenderer(cfg.Paths.OutputDir),
		excel.NewExporter(),
		repo,
	)

	result, err := svc.Run(cmd.Context(), app.RunParams{
		InputFile: cfg.Paths.InputFile,
		OutDir:    cfg.Paths.OutputDir,
		Generator: generator.Config{
			Count:           cfg.Generator.Count,
			Seed:            cfg.Generator.Seed,
			MissingPerField: cfg.Generator.MissingPerField,
		},
		Pipeline: pipeline.Options{
			StrictImputation: strict || cfg.Pipeline.StrictImputation,
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d rows cleaned, %d tests recorded, artifacts in %s\n",
		result.Manifest.ID, result.Manifest.OutputRows, len(result.Tests), cfg.Paths.OutputDir)
	return nil
}

func loadRaw(cfg *config.Config, log *internal.Logger) ([]catalog.RawItem, error) {
	if cfg.Paths.InputFile != "" {
		log.Info("reading dataset from %s", cfg.Paths.InputFile)
		return tabular.NewReader().Read(cfg.Paths.InputFile)
	}
	log.Info("generating %d synthetic records (seed %d)", cfg.Generator.Count, cfg.Generator.Seed)
	return generator.New(generator.Config{
		Count:           cfg.Generator.Count,
		Seed:            cfg.Generator.Seed,
		MissingPerField: cfg.Generator.MissingPerField,
	}).Generate(), nil
}
