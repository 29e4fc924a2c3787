package cube

import "encoding/json"

// TimeWindow scopes a query to a time field, with an optional granularity
// and an optional absolute [start, end] range of RFC 3339 timestamps.
// Windows are either authored on the panel or injected from the dashboard
// time range during normalization.
type TimeWindow struct {
	Field       string   `json:"field"`
	Granularity string   `json:"granularity,omitempty"`
	Range       []string `json:"range,omitempty"`
}

// AdhocFilter is a cross-panel filter owned by the dashboard and applied
// uniformly to every query against a given source. Values carries the
// multi-value operator variants; Value the single-value ones.
type AdhocFilter struct {
	Key      string   `json:"key"`
	Operator string   `json:"operator"`
	Value    string   `json:"value"`
	Values   []string `json:"values,omitempty"`
}

// Query is the stored, user-authored analytical request. Parts of it may
// arrive in legacy shapes written by older panel versions; DecodeQuery
// accepts those, and Order in particular holds either the current pair
// sequence or the legacy field mapping until normalization.
type Query struct {
	Dimensions  []string
	Measures    []string
	TimeWindows []TimeWindow
	Filters     []FilterNode
	Order       OrderSpec
	Limit       *int64
}

// NormalizedQuery is the canonical request shape consumed identically by
// the execution boundary and the SQL-preview compiler. Absent optional
// fields serialize as omitted, never as null or empty collections; the
// remote service's request schema is strict about this.
type NormalizedQuery struct {
	Dimensions  []string     `json:"dimensions,omitempty"`
	Measures    []string     `json:"measures,omitempty"`
	TimeWindows []TimeWindow `json:"timeWindows,omitempty"`
	Filters     []FilterNode `json:"filters,omitempty"`
	Order       []OrderPair  `json:"order,omitempty"`
	Limit       *int64       `json:"limit,omitempty"`
}

// LimitOf returns a limit pointer for literal construction. Zero is a
// real limit; only a nil pointer means "no limit".
func LimitOf(n int64) *int64 { return &n }

// MarshalJSON emits the query in its current shape, omitting empty parts.
// The order clause keeps whichever shape it was stored in; canonical
// output is NormalizedQuery's job.
func (q Query) MarshalJSON() ([]byte, error) {
	type wire struct {
		Dimensions  []string        `json:"dimensions,omitempty"`
		Measures    []string        `json:"measures,omitempty"`
		TimeWindows []TimeWindow    `json:"timeWindows,omitempty"`
		Filters     []FilterNode    `json:"filters,omitempty"`
		Order       json.RawMessage `json:"order,omitempty"`
		Limit       *int64          `json:"limit,omitempty"`
	}
	w := wire{
		Dimensions:  q.Dimensions,
		Measures:    q.Measures,
		TimeWindows: q.TimeWindows,
		Filters:     q.Filters,
		Limit:       q.Limit,
	}
	if !q.Order.IsZero() {
		order, err := json.Marshal(q.Order)
		if err != nil {
			return nil, err
		}
		w.Order = order
	}
	return json.Marshal(w)
}
