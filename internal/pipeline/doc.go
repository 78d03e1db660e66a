// Package pipeline orchestrates the dataset processing stages:
// ingestion, normalization, feature derivation, aggregation, trend
// fitting, and prediction evaluation.
//
// Stages run strictly in order: feature derivation needs the whole
// canonical collection before any day offset exists, and every later
// stage consumes the complete output of the one before it. Each stage
// returns a fresh structure; nothing is mutated in place. Ingestion,
// normalization, and derivation failures abort the run. A degenerate
// trend fit is recorded on the run state but leaves the completed
// aggregates valid and served.
package pipeline
