package cube

import (
	"strconv"
	"time"
)

// Well-known dashboard variables consulted when a query carries no time
// window of its own: the time-dimension selector, and the host's current
// time-range endpoints as epoch-millisecond strings.
const (
	TimeDimensionVariable = "timeDimension"
	timeFromVariable      = "__from"
	timeToVariable        = "__to"
)

// NormalizeContext is the ambient dashboard state a query is normalized
// against. Host may be nil and MapOperator defaults to MapHostOperator;
// every capability is optional.
type NormalizeContext struct {
	// Source identifies the query's data source; ad-hoc filters are
	// keyed by it.
	Source string
	Host   Host
	Vars   ScopedVars

	// MapOperator translates the host's operator symbols on ad-hoc
	// filters into engine operator tags.
	MapOperator func(string) Operator
}

func (ctx NormalizeContext) replace(value string) string {
	if ctx.Host == nil {
		return value
	}
	return ctx.Host.Replace(value, ctx.Vars)
}

func (ctx NormalizeContext) mapOperator(symbol string) Operator {
	if ctx.MapOperator != nil {
		return ctx.MapOperator(symbol)
	}
	return MapHostOperator(symbol)
}

// NormalizeQuery produces the canonical request from a stored query and
// its ambient context:
//
//  1. interpolate variables in filter values and time windows
//  2. append ad-hoc filters after the query's own, never reordering
//  3. strip stray values from unary-operator conditions
//  4. prune invalid filter nodes
//  5. keep panel time windows when present, else inject the
//     dashboard-wide window resolved from well-known variables
//  6. normalize ordering; pass the limit through (zero included)
//
// Both the execution boundary and the SQL-preview compiler consume this
// one function's output; the two paths must never normalize
// independently. The input is not mutated and nothing here fails: missing
// host capabilities degrade to "no ad-hoc filters" or "no injected time
// window".
func NormalizeQuery(q Query, ctx NormalizeContext) NormalizedQuery {
	filters := make([]FilterNode, 0, len(q.Filters))
	for _, node := range q.Filters {
		filters = append(filters, interpolateNode(node, ctx))
	}
	filters = append(filters, adhocConditions(ctx)...)
	filters = ValidFilters(stripUnaryValues(filters))

	windows := interpolateWindows(q.TimeWindows, ctx)
	if len(windows) == 0 {
		if injected, ok := dashboardTimeWindow(ctx); ok {
			windows = []TimeWindow{injected}
		}
	}

	nq := NormalizedQuery{
		Dimensions:  cloneStrings(q.Dimensions),
		Measures:    cloneStrings(q.Measures),
		TimeWindows: windows,
		Filters:     filters,
		Order:       NormalizeOrder(q.Order),
	}
	if q.Limit != nil {
		limit := *q.Limit // zero is a real limit; only nil means absent
		nq.Limit = &limit
	}
	return nq
}

func interpolateNode(node FilterNode, ctx NormalizeContext) FilterNode {
	switch n := node.(type) {
	case Condition:
		if len(n.Values) == 0 {
			return n
		}
		values := make([]string, len(n.Values))
		for i, v := range n.Values {
			values[i] = ctx.replace(v)
		}
		n.Values = values
		return n
	case AndGroup:
		children := make([]FilterNode, len(n.And))
		for i, child := range n.And {
			children[i] = interpolateNode(child, ctx)
		}
		return AndGroup{And: children}
	case OrGroup:
		children := make([]FilterNode, len(n.Or))
		for i, child := range n.Or {
			children[i] = interpolateNode(child, ctx)
		}
		return OrGroup{Or: children}
	default:
		return node
	}
}

func interpolateWindows(windows []TimeWindow, ctx NormalizeContext) []TimeWindow {
	if len(windows) == 0 {
		return nil
	}
	out := make([]TimeWindow, len(windows))
	for i, w := range windows {
		out[i] = TimeWindow{Field: ctx.replace(w.Field)}
		if w.Granularity != "" {
			out[i].Granularity = ctx.replace(w.Granularity)
		}
		if len(w.Range) > 0 {
			rng := make([]string, len(w.Range))
			for j, v := range w.Range {
				rng[j] = ctx.replace(v)
			}
			out[i].Range = rng
		}
	}
	return out
}

// adhocConditions converts the dashboard's cross-panel filters for the
// context's source into conditions. The multi-value array wins over the
// single value when present; a filter with neither yields a valueless
// condition that validation prunes.
func adhocConditions(ctx NormalizeContext) []FilterNode {
	if ctx.Host == nil {
		return nil
	}
	hostFilters := ctx.Host.AdhocFilters(ctx.Source)
	out := make([]FilterNode, 0, len(hostFilters))
	for _, f := range hostFilters {
		values := cloneStrings(f.Values)
		if len(values) == 0 && f.Value != "" {
			values = []string{f.Value}
		}
		out = append(out, Condition{
			Field:    f.Key,
			Operator: ctx.mapOperator(f.Operator),
			Values:   values,
		})
	}
	return out
}

// stripUnaryValues drops the values payload from unary-operator
// conditions anywhere in the tree. Upstream editors sometimes leave a
// stray value behind when the operator changes; the wire contract for
// unary operators must never include one.
func stripUnaryValues(nodes []FilterNode) []FilterNode {
	out := make([]FilterNode, len(nodes))
	for i, node := range nodes {
		out[i] = stripUnaryNode(node)
	}
	return out
}

func stripUnaryNode(node FilterNode) FilterNode {
	switch n := node.(type) {
	case Condition:
		if n.Operator.Unary() {
			n.Values = nil
		}
		return n
	case AndGroup:
		return AndGroup{And: stripUnaryValues(n.And)}
	case OrGroup:
		return OrGroup{Or: stripUnaryValues(n.Or)}
	default:
		return node
	}
}

// dashboardTimeWindow builds the dashboard-wide time window from the
// conventional time-dimension selector variable plus the host's range
// variables. Every link of the chain must resolve cleanly; otherwise
// nothing is injected, never a partial window.
func dashboardTimeWindow(ctx NormalizeContext) (TimeWindow, bool) {
	if ctx.Host == nil {
		return TimeWindow{}, false
	}
	placeholder := "$" + TimeDimensionVariable
	dim := ctx.replace(placeholder)
	if dim == "" || dim == placeholder {
		return TimeWindow{}, false
	}
	from, ok := resolveEpochMillis(ctx, timeFromVariable)
	if !ok {
		return TimeWindow{}, false
	}
	to, ok := resolveEpochMillis(ctx, timeToVariable)
	if !ok {
		return TimeWindow{}, false
	}
	return TimeWindow{Field: dim, Range: []string{from, to}}, true
}

// resolveEpochMillis resolves a range variable to an RFC 3339 UTC
// timestamp. The host stores range endpoints as epoch-millisecond
// strings.
func resolveEpochMillis(ctx NormalizeContext, name string) (string, bool) {
	placeholder := "$" + name
	resolved := ctx.replace(placeholder)
	if resolved == "" || resolved == placeholder {
		return "", false
	}
	ms, err := strconv.ParseInt(resolved, 10, 64)
	if err != nil {
		return "", false
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339), true
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
