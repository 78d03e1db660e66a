package domain

import (
	"time"
)

// Unknown is the canonical sentinel written over recognized bad
// categorical values during normalization.
const Unknown = "UNKNOWN"

// RawRecord is one parsed input row: an untyped field-name to value
// mapping plus the 1-based data row number it came from. Values stay
// strings until feature derivation; the raw stage never interprets them.
type RawRecord struct {
	Row    int               `json:"row"`
	Fields map[string]string `json:"fields"`
}

// Get returns the value of the named field and whether it exists.
func (r RawRecord) Get(field string) (string, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// Clone returns a deep copy so later stages never alias the raw row.
func (r RawRecord) Clone() RawRecord {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return RawRecord{Row: r.Row, Fields: fields}
}

// Table is the output of ingestion: the declared header in column order
// and one RawRecord per data row, in input order.
type Table struct {
	Header []string    `json:"header"`
	Rows   []RawRecord `json:"rows"`
}

// Record is a canonicalized, feature-augmented row. Fields holds the
// post-normalization values; the derived temporal and ratio features
// live alongside rather than being written back into the map.
type Record struct {
	Row       int               `json:"row"`
	Fields    map[string]string `json:"fields"`
	Date      time.Time         `json:"date"`
	Weekday   string            `json:"weekday"`
	DayOffset int               `json:"day_offset"`

	// Ratios holds derived ratio features by name. A ratio whose
	// denominator was zero is simply absent; no NaN or Inf is stored.
	Ratios map[string]float64 `json:"ratios,omitempty"`
}

// Ratio returns the named derived ratio and whether it is defined for
// this record.
func (r Record) Ratio(name string) (float64, bool) {
	v, ok := r.Ratios[name]
	return v, ok
}
