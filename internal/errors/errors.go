// Package errors defines the pipeline error taxonomy and the HTTP error
// rendering used by the report API.
//
// Three error classes cover the pipeline:
//
//   - ParseError: a malformed row or an unparseable required field.
//     Fatal to the run; silently dropping rows would corrupt totals.
//   - DegenerateInputError: trend fitting attempted on fewer than two
//     points or a zero-variance predictor. Fatal to the model only.
//   - UndefinedRatioError: division by zero during ratio derivation.
//     Recovered per record by excluding it from ratio aggregates.
package errors

import (
	"fmt"
)

// ParseError reports a row that could not be ingested or a required
// field that could not be parsed. Row is the 1-based data row number.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("parse row %d column %q: %s (value %q)", e.Row, e.Column, e.Reason, e.Value)
	}
	return fmt.Sprintf("parse row %d: %s", e.Row, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NewParseError builds a ParseError for a whole-row failure.
func NewParseError(row int, reason string) *ParseError {
	return &ParseError{Row: row, Reason: reason}
}

// NewFieldParseError builds a ParseError for a single field.
func NewFieldParseError(row int, column, value, reason string, err error) *ParseError {
	return &ParseError{Row: row, Column: column, Value: value, Reason: reason, Err: err}
}

// DegenerateInputError reports a trend-fit input whose slope is
// undefined: fewer than two points, or a constant independent variable.
type DegenerateInputError struct {
	Points    int
	DistinctX int
}

func (e *DegenerateInputError) Error() string {
	if e.Points < 2 {
		return fmt.Sprintf("trend fit requires at least 2 points, got %d", e.Points)
	}
	return fmt.Sprintf("trend fit requires non-constant x values (%d points, %d distinct x)", e.Points, e.DistinctX)
}

// UndefinedRatioError reports a zero denominator in ratio derivation.
// Callers recover by dropping the record from ratio-dependent output.
type UndefinedRatioError struct {
	Row   int
	Name  string
	Field string
}

func (e *UndefinedRatioError) Error() string {
	return fmt.Sprintf("ratio %q undefined at row %d: denominator %q is zero", e.Name, e.Row, e.Field)
}
