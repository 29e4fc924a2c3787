package cube

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Stored queries predate the current field names in a few places, so
// decoding accepts the old spellings alongside the new ones:
//
//   - timeDimensions, with dimension/dateRange members, for timeWindows
//   - member for field on filter conditions
//   - order as a field->direction object instead of a pair list

// DecodeQuery builds a Query from a loosely shaped map as deserialized
// from stored panel JSON or YAML. Unknown keys are ignored and
// individually malformed order entries and filter nodes are skipped; only
// a structurally alien document (filters that are not a list, and so on)
// is an error.
func DecodeQuery(raw map[string]any) (Query, error) {
	var aux struct {
		Dimensions     []string         `mapstructure:"dimensions"`
		Measures       []string         `mapstructure:"measures"`
		TimeWindows    []map[string]any `mapstructure:"timeWindows"`
		TimeDimensions []map[string]any `mapstructure:"timeDimensions"`
		Filters        []map[string]any `mapstructure:"filters"`
		Limit          *int64           `mapstructure:"limit"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &aux,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Query{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Query{}, fmt.Errorf("decode query: %w", err)
	}

	q := Query{
		Dimensions: aux.Dimensions,
		Measures:   aux.Measures,
		Limit:      aux.Limit,
		Order:      decodeOrderValue(raw["order"]),
	}

	windows := aux.TimeWindows
	if len(windows) == 0 {
		windows = aux.TimeDimensions
	}
	for _, w := range windows {
		q.TimeWindows = append(q.TimeWindows, decodeTimeWindow(w))
	}
	for _, f := range aux.Filters {
		q.Filters = append(q.Filters, decodeFilterNode(f))
	}
	return q, nil
}

// UnmarshalJSON decodes through DecodeQuery so JSON storage gets the same
// legacy-shape tolerance as every other load path.
func (q *Query) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeQuery(raw)
	if err != nil {
		return err
	}
	*q = decoded
	return nil
}

// UnmarshalJSON reads a canonical query back, e.g. from a service request
// body in tests or logs.
func (nq *NormalizedQuery) UnmarshalJSON(data []byte) error {
	var aux struct {
		Dimensions  []string          `json:"dimensions"`
		Measures    []string          `json:"measures"`
		TimeWindows []TimeWindow      `json:"timeWindows"`
		Filters     []json.RawMessage `json:"filters"`
		Order       []OrderPair       `json:"order"`
		Limit       *int64            `json:"limit"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*nq = NormalizedQuery{
		Dimensions:  aux.Dimensions,
		Measures:    aux.Measures,
		TimeWindows: aux.TimeWindows,
		Order:       aux.Order,
		Limit:       aux.Limit,
	}
	for _, rawNode := range aux.Filters {
		var m map[string]any
		if err := json.Unmarshal(rawNode, &m); err != nil {
			return err
		}
		nq.Filters = append(nq.Filters, decodeFilterNode(m))
	}
	return nil
}

func decodeTimeWindow(m map[string]any) TimeWindow {
	field := stringValue(m["field"])
	if field == "" {
		field = stringValue(m["dimension"])
	}
	rng := stringSlice(m["range"])
	if rng == nil {
		rng = stringSlice(m["dateRange"])
	}
	return TimeWindow{
		Field:       field,
		Granularity: stringValue(m["granularity"]),
		Range:       rng,
	}
}

func decodeFilterNode(m map[string]any) FilterNode {
	if children, ok := m["and"]; ok {
		return AndGroup{And: decodeFilterList(children)}
	}
	if children, ok := m["or"]; ok {
		return OrGroup{Or: decodeFilterList(children)}
	}
	field := stringValue(m["field"])
	if field == "" {
		field = stringValue(m["member"])
	}
	return Condition{
		Field:    field,
		Operator: Operator(stringValue(m["operator"])),
		Values:   stringSlice(m["values"]),
	}
}

func decodeFilterList(v any) []FilterNode {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []FilterNode
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, decodeFilterNode(m))
		}
	}
	return out
}

func decodeOrderValue(v any) OrderSpec {
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			return OrderSpec{}
		}
		legacy := make(map[string]Direction, len(val))
		for field, dir := range val {
			legacy[field] = Direction(stringValue(dir))
		}
		return OrderSpec{Legacy: legacy}
	case []any:
		var pairs []OrderPair
		for _, entry := range val {
			tuple, ok := entry.([]any)
			if !ok || len(tuple) < 2 {
				continue
			}
			pairs = append(pairs, OrderPair{
				Field:     stringValue(tuple[0]),
				Direction: Direction(stringValue(tuple[1])),
			})
		}
		return OrderSpec{Pairs: pairs}
	default:
		return OrderSpec{}
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		out := make([]string, len(vals))
		copy(out, vals)
		return out
	case []any:
		var out []string
		for _, item := range vals {
			out = append(out, stringValue(item))
		}
		return out
	case nil:
		return nil
	default:
		if s := stringValue(v); s != "" {
			return []string{s}
		}
		return nil
	}
}
