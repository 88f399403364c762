package pipeline

import (
	"context"
	"log/slog"

	"emiscli/internal/dataset"
)

// Runner executes the preparation pipeline: validate, reshape, derive,
// aggregate. The stages run strictly in order and a failure at any stage
// aborts the run with no partial output.
type Runner struct {
	logger *slog.Logger
	opts   Options
}

// NewRunner creates a pipeline runner.
func NewRunner(logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger: logger.With(slog.String("component", "pipeline")),
		opts:   opts,
	}
}

// Run transforms a raw wide table into the prepared long records.
func (r *Runner) Run(ctx context.Context, t *dataset.Table) ([]Record, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "schema validated",
		slog.Int("columns", len(t.Columns)),
		slog.Int("rows", len(t.Rows)),
		slog.Int("year_columns", len(t.YearColumns())))

	obs := reshape(t, r.opts)
	r.logger.InfoContext(ctx, "reshaped to long format",
		slog.Int("observations", len(obs)),
		slog.Bool("only_livestock_total", r.opts.OnlyLivestockTotal))

	derived := deriveMetrics(obs, r.opts)
	r.logger.InfoContext(ctx, "metrics derived",
		slog.Int("records", len(derived)),
		slog.String("gwp", r.opts.GWP),
		slog.Bool("split_cattle", r.opts.SplitCattle),
		slog.Float64("dairy_fraction", clampFraction(r.opts.DairyFraction)))

	final, err := finalize(derived)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "aggregation complete", slog.Int("records", len(final)))

	return final, nil
}
