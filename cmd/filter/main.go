// Command filter trims a prepared long-format CSV down to the metrics the
// dashboard actually reads, Total_CO2e and Stocks. Useful for shipping a
// smaller file to the dashboard host.
package main

import (
	"encoding/csv"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"emiscli/internal/config"
	"emiscli/internal/infrastructure"
)

// keptMetrics are the metrics the dashboard queries.
var keptMetrics = map[string]bool{
	"Total_CO2e": true,
	"Stocks":     true,
}

func main() {
	input := flag.String("input", "", "prepared long-format CSV (required)")
	output := flag.String("output", "", "filtered output path (defaults to <input>_DASHBOARD.csv)")
	dropZero := flag.Bool("drop-zero", false, "also drop rows whose Value is zero")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if *input == "" {
		logger.Error("No input file given, use -input")
		os.Exit(1)
	}
	if *output == "" {
		ext := filepath.Ext(*input)
		*output = strings.TrimSuffix(*input, ext) + "_DASHBOARD" + ext
	}

	logger.Info("Filtering prepared dataset",
		slog.String("input", *input),
		slog.String("output", *output),
		slog.Bool("drop_zero", *dropZero))

	kept, total, err := filterFile(*input, *output, *dropZero)
	if err != nil {
		logger.Error("Filtering failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Filtering complete",
		slog.Int("rows_in", total),
		slog.Int("rows_out", kept),
		slog.String("output", *output))
}

// filterFile streams input to output keeping only dashboard metrics.
// Returns the kept and total data-row counts.
func filterFile(inPath, outPath string, dropZero bool) (kept, total int, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, 0, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, 0, err
	}
	defer out.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	w := csv.NewWriter(out)

	header, err := r.Read()
	if err != nil {
		return 0, 0, err
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	metricIdx, valueIdx := -1, -1
	for i, col := range header {
		switch col {
		case "Metric":
			metricIdx = i
		case "Value":
			valueIdx = i
		}
	}
	if metricIdx < 0 {
		return 0, 0, os.ErrInvalid
	}

	if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return 0, 0, err
	}
	if err := w.Write(header); err != nil {
		return 0, 0, err
	}

	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		total++
		if metricIdx >= len(row) || !keptMetrics[row[metricIdx]] {
			continue
		}
		if dropZero && valueIdx >= 0 && valueIdx < len(row) {
			if v, perr := strconv.ParseFloat(row[valueIdx], 64); perr == nil && v == 0 {
				continue
			}
		}
		if err := w.Write(row); err != nil {
			return kept, total, err
		}
		kept++
	}

	w.Flush()
	return kept, total, w.Error()
}
