package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"emiscli/internal/canonical"
	"emiscli/internal/errors"
	"emiscli/internal/pipeline"
)

// OutputColumns is the fixed column order of the prepared long CSV. The
// dashboard requires exactly this set.
var OutputColumns = []string{
	"Area", "Item", "Year", "Metric", "Value",
	"item_kind", "is_all", "is_aggregated", "is_atomic",
	"region_EU", "region_EUEEAUK", "region_europe",
}

// CSVWriter serializes prepared records to disk.
type CSVWriter struct {
	logger *slog.Logger
	// BOMPrefix prepends a UTF-8 BOM so Excel opens the file correctly.
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger, BOMPrefix: true}
}

// WritePrepared writes the prepared long table to path. The file is written
// to a temporary sibling first and renamed into place, so a failed run never
// publishes a partial table.
func (w *CSVWriter) WritePrepared(path string, records []pipeline.Record) error {
	w.logger.Info("writing prepared dataset",
		slog.String("path", path),
		slog.Int("record_count", len(records)))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewStorageError("failed to create output directory", err).
			WithContext("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.NewStorageError("failed to create temporary output file", err).
			WithContext("dir", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := w.writeAll(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.NewStorageError("failed to close output file", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.NewStorageError("failed to publish output file", err).
			WithContext("path", path)
	}

	w.logger.Info("prepared dataset written", slog.String("path", path))
	return nil
}

func (w *CSVWriter) writeAll(f *os.File, records []pipeline.Record) error {
	if w.BOMPrefix {
		if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return errors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(f)

	if err := writer.Write(OutputColumns); err != nil {
		return errors.NewStorageError("failed to write header row", err)
	}

	for i, r := range records {
		if err := writer.Write(Row(r)); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.NewStorageError("failed to flush CSV output", err)
	}
	return nil
}

// Row renders one prepared record in the fixed column order.
func Row(r pipeline.Record) []string {
	return []string{
		r.Area,
		r.Item,
		strconv.Itoa(r.Year),
		string(r.Metric),
		FormatValue(r.Value),
		string(r.Kind),
		formatBool(r.Kind == canonical.KindAll),
		formatBool(r.Kind == canonical.KindAggregated),
		formatBool(r.Kind == canonical.KindAtomic),
		formatBool(r.Flags.EU),
		formatBool(r.Flags.EUEEAUK),
		formatBool(r.Flags.Europe),
	}
}

// FormatValue renders a metric value without trailing zero noise.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
