package cube_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

func TestValidateFilter_Conditions(t *testing.T) {
	tests := []struct {
		name  string
		node  cube.FilterNode
		valid bool
	}{
		{
			name:  "binary with field and values",
			node:  cube.Condition{Field: "status", Operator: cube.OpEquals, Values: []string{"active"}},
			valid: true,
		},
		{
			name:  "binary without values",
			node:  cube.Condition{Field: "status", Operator: cube.OpEquals},
			valid: false,
		},
		{
			name:  "missing field is always invalid",
			node:  cube.Condition{Operator: cube.OpEquals, Values: []string{"x"}},
			valid: false,
		},
		{
			name:  "unary without values",
			node:  cube.Condition{Field: "email", Operator: cube.OpSet},
			valid: true,
		},
		{
			name:  "unary with stray values is tolerated",
			node:  cube.Condition{Field: "email", Operator: cube.OpNotSet, Values: []string{"x"}},
			valid: true,
		},
		{
			name:  "unary without field is invalid",
			node:  cube.Condition{Operator: cube.OpSet},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cube.ValidateFilter(tt.node)
			if tt.valid {
				assert.Equal(t, tt.node, got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestValidateFilter_Groups(t *testing.T) {
	valid := cube.Condition{Field: "status", Operator: cube.OpEquals, Values: []string{"active"}}
	invalid := cube.Condition{Field: "", Operator: cube.OpEquals, Values: []string{"x"}}

	t.Run("group keeps only valid children", func(t *testing.T) {
		got := cube.ValidateFilter(cube.AndGroup{And: []cube.FilterNode{invalid, valid}})
		assert.Equal(t, cube.AndGroup{And: []cube.FilterNode{valid}}, got)
	})

	t.Run("group with no valid children is discarded", func(t *testing.T) {
		assert.Nil(t, cube.ValidateFilter(cube.OrGroup{Or: []cube.FilterNode{invalid}}))
		assert.Nil(t, cube.ValidateFilter(cube.AndGroup{}))
	})

	t.Run("validity is compositional through nesting", func(t *testing.T) {
		node := cube.OrGroup{Or: []cube.FilterNode{
			cube.AndGroup{And: []cube.FilterNode{invalid}},
			cube.AndGroup{And: []cube.FilterNode{valid, invalid}},
		}}
		got := cube.ValidateFilter(node)
		assert.Equal(t, cube.OrGroup{Or: []cube.FilterNode{
			cube.AndGroup{And: []cube.FilterNode{valid}},
		}}, got)
	})
}

func TestValidFilters(t *testing.T) {
	valid := cube.Condition{Field: "status", Operator: cube.OpEquals, Values: []string{"active"}}
	other := cube.Condition{Field: "region", Operator: cube.OpNotEquals, Values: []string{"eu"}}

	t.Run("survivors keep relative order", func(t *testing.T) {
		got := cube.ValidFilters([]cube.FilterNode{
			valid,
			cube.Condition{Operator: cube.OpEquals, Values: []string{"x"}},
			other,
		})
		assert.Equal(t, []cube.FilterNode{valid, other}, got)
	})

	t.Run("group of invalid children yields empty list", func(t *testing.T) {
		got := cube.ValidFilters([]cube.FilterNode{
			cube.AndGroup{And: []cube.FilterNode{
				cube.Condition{Field: "", Operator: cube.OpEquals, Values: []string{"x"}},
			}},
		})
		assert.Empty(t, got)
	})
}

func TestFilterNode_MarshalJSON(t *testing.T) {
	node := cube.AndGroup{And: []cube.FilterNode{
		cube.Condition{Field: "status", Operator: cube.OpEquals, Values: []string{"active"}},
		cube.OrGroup{Or: []cube.FilterNode{
			cube.Condition{Field: "email", Operator: cube.OpSet},
		}},
	}}

	out, err := json.Marshal(node)
	require.NoError(t, err)

	// Unary condition must not carry a values key.
	assert.JSONEq(t, `{
		"and": [
			{"field": "status", "operator": "equals", "values": ["active"]},
			{"or": [{"field": "email", "operator": "set"}]}
		]
	}`, string(out))
}
