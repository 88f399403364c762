// Package pipeline transforms a raw wide-format emissions table into the
// prepared long-format dataset consumed by the dashboard.
//
// # Stages
//
// The pipeline is a strictly linear sequence of pure transformations over an
// in-memory table:
//
//	Schema validation → Reshape (melt) → Metric derivation → Aggregation
//
// Derived metrics are Stocks (pass-through), CH4_CO2e and N2O_CO2e
// (gas-to-CO2-equivalent via a GWP convention), Total_CO2e (their sum) and
// LSU (weighted livestock units with a guarded cattle split).
//
// # Determinism
//
// Given the same input table and Options, a run always produces the same
// records in the same order: grouping uses maps internally but the final
// aggregation sorts by (Area, Item, Year, Metric). The output key tuple is
// unique after the final grouping step.
package pipeline
