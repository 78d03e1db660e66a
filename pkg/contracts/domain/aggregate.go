package domain

// Bucket is one group-by result: the group key values, in the order of
// the grouping key fields, and the summed (or counted) measure.
type Bucket struct {
	Key   []string `json:"key"`
	Value float64  `json:"value"`
}

// BucketSet is a named collection of buckets plus the schema that
// produced it, so consumers can interpret Key positions.
type BucketSet struct {
	Name      string   `json:"name"`
	KeyFields []string `json:"key_fields"`
	Measure   string   `json:"measure"` // empty means count
	Buckets   []Bucket `json:"buckets"`
}

// Total returns the sum of all bucket measures.
func (s BucketSet) Total() float64 {
	var total float64
	for _, b := range s.Buckets {
		total += b.Value
	}
	return total
}

// SeriesPoint is one entry of a cumulative series: a bucket in sort
// order plus the running total up to and including it.
type SeriesPoint struct {
	Bucket
	Running float64 `json:"running"`
}

// Series is a cumulative (running-total) view of a BucketSet, sorted by
// OrderKey with ties broken by the full key tuple.
type Series struct {
	Name      string        `json:"name"`
	KeyFields []string      `json:"key_fields"`
	Measure   string        `json:"measure"`
	OrderKey  string        `json:"order_key"`
	Points    []SeriesPoint `json:"points"`
}
