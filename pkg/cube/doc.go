// Package cube shapes analytical queries for a semantic-layer query
// service: it normalizes heterogeneous stored query shapes and ambient
// dashboard context (variables, cross-panel ad-hoc filters, the dashboard
// time range) into one canonical request, and classifies whether a query
// can be represented by the simplified visual editor.
//
// Everything here is a pure function over value inputs; the package owns
// no I/O and raises no errors during normalization. Malformed fragments
// degrade to omission, so a request never reaches the service encoding
// the wrong semantics.
//
// The Golden Rule: pkg/cube imports ONLY mapstructure and stdlib.
// All other packages depend on cube, not the reverse.
package cube
