package cube

// Operator identifies a filter comparison in the query service's API.
type Operator string

// Operator tags understood by the engine. Anything outside this set still
// flows through normalization untouched, but the capability detector
// reports it as requiring the fallback editor.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "notContains"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpSet         Operator = "set"
	OpNotSet      Operator = "notSet"
)

// Unary reports whether the operator carries no comparison values.
func (o Operator) Unary() bool { return o == OpSet || o == OpNotSet }

// editorOperators is the operator set the visual editor can represent.
var editorOperators = map[Operator]bool{
	OpEquals:    true,
	OpNotEquals: true,
}

// EditorSupported reports whether the visual editor can represent the
// operator.
func (o Operator) EditorSupported() bool { return editorOperators[o] }

// MapHostOperator translates the host platform's comparison symbols,
// including the "one of" multi-value variants, into the engine's operator
// tags. Unrecognized symbols map to equality rather than failing.
func MapHostOperator(symbol string) Operator {
	switch symbol {
	case "=", "=|":
		return OpEquals
	case "!=", "!=|":
		return OpNotEquals
	case ">":
		return OpGt
	case "<":
		return OpLt
	default:
		return OpEquals
	}
}
