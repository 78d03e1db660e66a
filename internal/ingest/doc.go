// Package ingest parses row-oriented tabular sources (CSV or Excel)
// into typed raw records. It is the first pipeline stage and the only
// one that touches external input; every downstream stage works on the
// structures produced here.
//
// Ingestion preserves row order and all declared columns, and fails
// with a ParseError when a row's field count does not match the header.
// Malformed rows abort the run rather than being silently skipped,
// since dropped rows would corrupt aggregate totals downstream.
package ingest
