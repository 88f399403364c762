// Package canonical normalizes the free-text labels of the raw emissions
// dataset onto a fixed vocabulary and carries the static reference data the
// pipeline depends on: item vocabularies and their granularity tiers, the
// exclusion stoplist, region membership sets, global-warming-potential pairs
// and livestock-unit weights.
//
// All reference data is immutable and package-level; nothing here mutates
// state after init. Canonicalization is idempotent: applying Item twice
// yields the same label as applying it once.
package canonical
