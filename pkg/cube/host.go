package cube

import "strings"

// ScopedVars carries the per-call variable scope the host resolves
// placeholders against. The engine treats it as opaque and only passes it
// through to Replace.
type ScopedVars map[string]any

// Host is the slice of the dashboard platform the engine depends on.
// Implementations may be partial: a nil Host, or one with no ad-hoc
// filter state, degrades to "no substitution" / "no ad-hoc filters".
type Host interface {
	// Replace interpolates dashboard-variable placeholders in value,
	// returning value unchanged when no substitution applies.
	Replace(value string, vars ScopedVars) string

	// AdhocFilters returns the cross-panel filters registered for a
	// source identity. A nil result is fine.
	AdhocFilters(sourceIdentity string) []AdhocFilter
}

// StaticHost is a Host backed by a fixed variable map and ad-hoc filter
// list. The resource server and the CLI use it to honor ambient context
// carried explicitly in a request; tests use it as a stand-in for the
// platform's variable service.
type StaticHost struct {
	Vars    map[string]string
	Filters []AdhocFilter
}

// Replace substitutes $name, ${name} and [[name]] placeholders from the
// variable map. Unknown placeholders are left untouched, matching the
// platform's replace semantics.
func (h StaticHost) Replace(value string, _ ScopedVars) string {
	return variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		name := strings.Trim(match, "${}[]")
		if v, ok := h.Vars[name]; ok {
			return v
		}
		return match
	})
}

// AdhocFilters returns the fixed filter list regardless of source; a
// StaticHost is built per request, for one source.
func (h StaticHost) AdhocFilters(string) []AdhocFilter { return h.Filters }
