// Command prepare transforms a raw wide-format livestock emissions export
// into the prepared long-format CSV consumed by the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"emiscli/internal/canonical"
	"emiscli/internal/config"
	"emiscli/internal/dataset"
	"emiscli/internal/exporter"
	"emiscli/internal/infrastructure"
	"emiscli/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "raw wide-format CSV or XLSX file (required)")
	output := flag.String("output", "", "output CSV path (defaults to livestock_PREPARED_long.csv next to the input)")
	gwp := flag.String("gwp", "", fmt.Sprintf("GWP convention: %s", strings.Join(canonical.GWPConventions(), " | ")))
	splitCattle := flag.Bool("split-cattle", true, "split generic Cattle rows into dairy and non-dairy for LSU")
	dairyShare := flag.Float64("dairy-share", -1, "dairy share of generic cattle in percent (0-100)")
	onlyLivestockTotal := flag.Bool("only-livestock-total", true, "restrict CH4/N2O inputs to livestock-total elements")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override the config file and environment
	if *input != "" {
		cfg.Pipeline.InputPath = *input
	}
	if *output != "" {
		cfg.Pipeline.OutputPath = *output
	}
	if *gwp != "" {
		cfg.Pipeline.GWP = *gwp
	}
	if *dairyShare >= 0 {
		cfg.Pipeline.DairySharePct = *dairyShare
	}
	cfg.Pipeline.SplitCattle = *splitCattle
	cfg.Pipeline.OnlyLivestockTotal = *onlyLivestockTotal

	if cfg.Pipeline.InputPath == "" {
		slog.Error("No input file given, use -input or EMIS_PIPELINE_INPUT_PATH")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid pipeline options", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	outputPath := cfg.Pipeline.ResolveOutputPath()
	logger.Info("Starting preparation run",
		slog.String("input", cfg.Pipeline.InputPath),
		slog.String("output", outputPath),
		slog.String("gwp", cfg.Pipeline.GWP),
		slog.Bool("split_cattle", cfg.Pipeline.SplitCattle),
		slog.Float64("dairy_share_pct", cfg.Pipeline.DairySharePct),
		slog.Bool("only_livestock_total", cfg.Pipeline.OnlyLivestockTotal))

	ctx := context.Background()

	table, err := dataset.Read(cfg.Pipeline.InputPath)
	if err != nil {
		logger.Error("Failed to read input table",
			slog.String("path", cfg.Pipeline.InputPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	runner := pipeline.NewRunner(logger, pipeline.Options{
		GWP:                cfg.Pipeline.GWP,
		SplitCattle:        cfg.Pipeline.SplitCattle,
		DairyFraction:      cfg.Pipeline.DairyFraction(),
		OnlyLivestockTotal: cfg.Pipeline.OnlyLivestockTotal,
	})

	records, err := runner.Run(ctx, table)
	if err != nil {
		logger.Error("Preparation run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(logger)
	if err := writer.WritePrepared(outputPath, records); err != nil {
		logger.Error("Failed to write prepared dataset",
			slog.String("path", outputPath),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Preparation run complete",
		slog.String("output", outputPath),
		slog.Int("records", len(records)))
}
