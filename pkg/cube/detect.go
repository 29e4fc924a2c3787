package cube

import (
	"fmt"
	"regexp"
	"strings"
)

// Reasons the visual editor cannot represent a query. The frontend shows
// these verbatim, so the strings are part of the surface and stay stable.
const (
	ReasonTimeWindows    = "time windows are not supported by the visual editor"
	ReasonFilterGroups   = "and/or filter groups are not supported by the visual editor"
	ReasonMeasureFilters = "filters on measures are not supported by the visual editor"
	ReasonVariableValues = "dashboard variables in filter values are not supported by the visual editor"
)

// variablePattern matches the host's placeholder syntaxes: $name, ${name}
// and [[name]]. Variable names start with a letter or underscore, so a
// literal like "$100" is not a placeholder.
var variablePattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*|\$\{[A-Za-z_][A-Za-z0-9_]*\}|\[\[[A-Za-z_][A-Za-z0-9_]*\]\]`)

// ContainsVariable reports whether s contains a dashboard-variable
// placeholder.
func ContainsVariable(s string) bool { return variablePattern.MatchString(s) }

// CapabilityVerdict is the detector's judgment on whether the visual
// editor can represent a query. No reasons means it can.
type CapabilityVerdict struct {
	Reasons []string `json:"reasons"`
}

// Supported reports whether the query fits the visual editor.
func (v CapabilityVerdict) Supported() bool { return len(v.Reasons) == 0 }

// CheckQuery wraps DetectUnsupportedFeatures in a verdict.
func CheckQuery(q Query) CapabilityVerdict {
	return CapabilityVerdict{Reasons: DetectUnsupportedFeatures(q)}
}

// DetectUnsupportedFeatures classifies a query against what the visual
// editor can represent; an empty result means fully representable. It is
// a pure classification and may run on raw, un-normalized input. Each
// distinct reason appears at most once, and all unsupported operators are
// named inside a single reason in first-seen order. Operators the engine
// has not been told about are never treated as supported.
//
// A false "supported" verdict would render the query through an editor
// that silently drops the parts it cannot show, so every rule errs toward
// the fallback editor.
func DetectUnsupportedFeatures(q Query) []string {
	var reasons []string
	if len(q.TimeWindows) > 0 {
		reasons = append(reasons, ReasonTimeWindows)
	}

	measures := make(map[string]bool, len(q.Measures))
	for _, m := range q.Measures {
		measures[m] = true
	}

	var (
		badOps          []Operator
		seen            = make(map[Operator]bool)
		hasGroups       bool
		filtersMeasure  bool
		variableInValue bool
	)
	var walk func(node FilterNode)
	walk = func(node FilterNode) {
		switch n := node.(type) {
		case Condition:
			if !n.Operator.EditorSupported() && !seen[n.Operator] {
				seen[n.Operator] = true
				badOps = append(badOps, n.Operator)
			}
			if measures[n.Field] {
				filtersMeasure = true
			}
			for _, v := range n.Values {
				if ContainsVariable(v) {
					variableInValue = true
				}
			}
		case AndGroup:
			hasGroups = true
			for _, child := range n.And {
				walk(child)
			}
		case OrGroup:
			hasGroups = true
			for _, child := range n.Or {
				walk(child)
			}
		}
	}
	for _, node := range q.Filters {
		walk(node)
	}

	if len(badOps) > 0 {
		names := make([]string, len(badOps))
		for i, op := range badOps {
			names[i] = string(op)
		}
		reasons = append(reasons, fmt.Sprintf(
			"filter operators not supported by the visual editor: %s", strings.Join(names, ", ")))
	}
	if hasGroups {
		reasons = append(reasons, ReasonFilterGroups)
	}
	if filtersMeasure {
		reasons = append(reasons, ReasonMeasureFilters)
	}
	if variableInValue {
		reasons = append(reasons, ReasonVariableValues)
	}
	return reasons
}

// UnsupportedQueryKeys reports which top-level query fields keep the
// visual editor from loading the query, so the fallback editor can show
// just the offending JSON fragments.
func UnsupportedQueryKeys(q Query) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, reason := range DetectUnsupportedFeatures(q) {
		if reason == ReasonTimeWindows {
			keys["timeWindows"] = struct{}{}
		} else {
			keys["filters"] = struct{}{}
		}
	}
	return keys
}
