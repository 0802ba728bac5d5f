package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateResolve_DotPaths(t *testing.T) {
	state := State{
		"age": float64(20),
		"user": map[string]any{
			"name": "ada",
			"address": map[string]any{
				"city": "london",
			},
		},
		"tags": []any{"a", "b"},
	}

	tests := []struct {
		name     string
		path     string
		expected any
	}{
		{"top level", "age", float64(20)},
		{"nested", "user.name", "ada"},
		{"deeply nested", "user.address.city", "london"},
		{"missing key", "user.email", nil},
		{"missing intermediate", "user.account.id", nil},
		{"non-object intermediate", "age.unit", nil},
		{"sequence is not an object", "tags.0", nil},
		{"empty path", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, state.Resolve(tt.path))
		})
	}
}

func TestStateQuery_JSONPath(t *testing.T) {
	state := State{
		"orders": []any{
			map[string]any{"id": "o1", "total": float64(10)},
			map[string]any{"id": "o2", "total": float64(25)},
		},
	}

	assert.Equal(t, "o2", state.Query("$.orders[1].id"))
	assert.Nil(t, state.Query("$.orders[9].id"))
	assert.Nil(t, state.Query("$.["), "invalid expressions yield nil, not an error")
}

func TestStateResolve_JSONPathDispatch(t *testing.T) {
	state := State{
		"items": []any{map[string]any{"sku": "x-1"}},
	}

	assert.Equal(t, "x-1", state.Resolve("$.items[0].sku"))
}
