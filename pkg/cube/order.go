package cube

import (
	"encoding/json"
	"sort"
)

// Direction is a sort direction. DirectionNone entries carry no ordering
// and are dropped during normalization.
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
	DirectionNone Direction = "none"
)

// OrderPair is one (field, direction) entry of a canonical ordering.
// It serializes as a two-element array: ["field", "asc"].
type OrderPair struct {
	Field     string
	Direction Direction
}

// MarshalJSON emits the pair in its tuple wire shape.
func (p OrderPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Field, string(p.Direction)})
}

// UnmarshalJSON reads the tuple wire shape. Extra elements are ignored.
func (p *OrderPair) UnmarshalJSON(data []byte) error {
	var tuple []string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	*p = OrderPair{}
	if len(tuple) > 0 {
		p.Field = tuple[0]
	}
	if len(tuple) > 1 {
		p.Direction = Direction(tuple[1])
	}
	return nil
}

// OrderSpec holds an ordering in either of the two shapes found in stored
// queries: the current ordered pair sequence, or the legacy field mapping
// written by older panels. At most one of the two is normally set; when
// both are present the sequence wins.
type OrderSpec struct {
	Pairs  []OrderPair
	Legacy map[string]Direction
}

// IsZero reports whether no ordering was specified in either shape.
func (s OrderSpec) IsZero() bool { return len(s.Pairs) == 0 && len(s.Legacy) == 0 }

// MarshalJSON keeps the stored shape: a pair list when the sequence shape
// is present, the legacy object otherwise.
func (s OrderSpec) MarshalJSON() ([]byte, error) {
	if len(s.Legacy) > 0 && len(s.Pairs) == 0 {
		return json.Marshal(s.Legacy)
	}
	return json.Marshal(s.Pairs)
}

// UnmarshalJSON accepts both stored shapes. Individually malformed entries
// are skipped rather than failing the whole document.
func (s *OrderSpec) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = decodeOrderValue(raw)
	return nil
}

// NormalizeOrder converts either accepted ordering shape into the
// canonical pair sequence, dropping every entry whose direction is not
// asc or desc. A nil result means "no ordering": downstream serialization
// omits the order clause entirely rather than emitting an empty list, so
// an ordering that normalizes to nothing is indistinguishable from a
// missing one.
//
// Legacy mappings enumerate in sorted field order. The legacy shape never
// recorded the user's intended order, so sorting at least keeps the
// result stable; this is an accepted compatibility limitation.
func NormalizeOrder(spec OrderSpec) []OrderPair {
	pairs := spec.Pairs
	if len(pairs) == 0 && len(spec.Legacy) > 0 {
		fields := make([]string, 0, len(spec.Legacy))
		for field := range spec.Legacy {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		pairs = make([]OrderPair, 0, len(fields))
		for _, field := range fields {
			pairs = append(pairs, OrderPair{Field: field, Direction: spec.Legacy[field]})
		}
	}

	var out []OrderPair
	for _, p := range pairs {
		if p.Direction == DirectionAsc || p.Direction == DirectionDesc {
			out = append(out, p)
		}
	}
	return out
}
