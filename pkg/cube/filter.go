package cube

import "encoding/json"

// FilterNode is one node of a filter tree: a leaf Condition, or a logical
// And/Or group of child nodes. The variant set is closed; everything that
// walks the tree switches over these three types.
type FilterNode interface {
	filterNode()
}

// Condition is a single field/operator/values filter leaf. Unary
// operators (set, notSet) carry no values; every other operator requires
// at least one.
type Condition struct {
	Field    string
	Operator Operator
	Values   []string
}

// AndGroup combines child nodes with logical AND.
type AndGroup struct {
	And []FilterNode
}

// OrGroup combines child nodes with logical OR.
type OrGroup struct {
	Or []FilterNode
}

func (Condition) filterNode() {}
func (AndGroup) filterNode()  {}
func (OrGroup) filterNode()   {}

// MarshalJSON omits the values array when empty; the wire contract for
// unary operators forbids a values payload.
func (c Condition) MarshalJSON() ([]byte, error) {
	type wire struct {
		Field    string   `json:"field"`
		Operator Operator `json:"operator"`
		Values   []string `json:"values,omitempty"`
	}
	return json.Marshal(wire{Field: c.Field, Operator: c.Operator, Values: c.Values})
}

func (g AndGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		And []FilterNode `json:"and"`
	}{And: g.And})
}

func (g OrGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Or []FilterNode `json:"or"`
	}{Or: g.Or})
}

// ValidateFilter prunes a filter node. It returns nil when the node
// cannot contribute to a request: a condition without a field, a binary
// condition without values, or a group left with no valid children.
// Groups are rebuilt with only the surviving children; an empty logical
// group is meaningless and must never reach the downstream request.
// Under-specifying a filter is always safer than sending an invalid one.
func ValidateFilter(node FilterNode) FilterNode {
	switch n := node.(type) {
	case Condition:
		if n.Field == "" {
			return nil
		}
		if !n.Operator.Unary() && len(n.Values) == 0 {
			return nil
		}
		return n
	case AndGroup:
		kept := ValidFilters(n.And)
		if len(kept) == 0 {
			return nil
		}
		return AndGroup{And: kept}
	case OrGroup:
		kept := ValidFilters(n.Or)
		if len(kept) == 0 {
			return nil
		}
		return OrGroup{Or: kept}
	default:
		return nil
	}
}

// ValidFilters validates every node in the list and keeps the survivors
// in their original relative order. Invalid nodes degrade to omission,
// never to an error.
func ValidFilters(nodes []FilterNode) []FilterNode {
	var out []FilterNode
	for _, node := range nodes {
		if valid := ValidateFilter(node); valid != nil {
			out = append(out, valid)
		}
	}
	return out
}
