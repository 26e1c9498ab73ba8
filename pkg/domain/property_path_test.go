package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int {
	return &i
}

func TestParsePropertyPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []PropertyPathSegment
		wantErr  bool
	}{
		{
			name:     "empty path",
			path:     "   ",
			expected: []PropertyPathSegment{},
		},
		{
			name:     "simple property",
			path:     "budget",
			expected: []PropertyPathSegment{{Key: "budget"}},
		},
		{
			name:     "nested property",
			path:     "student.email",
			expected: []PropertyPathSegment{{Key: "student"}, {Key: "email"}},
		},
		{
			name: "array with property",
			path: "items[2].name",
			expected: []PropertyPathSegment{
				{Key: "items", Index: intPtr(2)},
				{Key: "name"},
			},
		},
		{
			name:    "double dot",
			path:    "a..b",
			wantErr: true,
		},
		{
			name:    "invalid characters",
			path:    "a b",
			wantErr: true,
		},
		{
			name:    "dangling bracket",
			path:    "items[x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := ParsePropertyPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, segments)
		})
	}
}

func TestGetValueByPath(t *testing.T) {
	data := map[string]any{
		"budget": 35000,
		"student": map[string]any{
			"email": "ada@example.com",
		},
		"items": []any{
			map[string]any{"name": "first"},
			map[string]any{"name": "second"},
		},
		"nothing": nil,
	}

	value, ok := GetValueByPath(data, "budget")
	assert.True(t, ok)
	assert.Equal(t, 35000, value)

	value, ok = GetValueByPath(data, "student.email")
	assert.True(t, ok)
	assert.Equal(t, "ada@example.com", value)

	value, ok = GetValueByPath(data, "items[1].name")
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	value, ok = GetValueByPath(data, "nothing")
	assert.True(t, ok)
	assert.Nil(t, value)

	_, ok = GetValueByPath(data, "items[5].name")
	assert.False(t, ok)

	_, ok = GetValueByPath(data, "student.phone")
	assert.False(t, ok)

	_, ok = GetValueByPath(data, "budget.amount")
	assert.False(t, ok)
}

func TestSetValueByPath(t *testing.T) {
	data := map[string]any{
		"items": []any{map[string]any{"name": "first"}},
	}

	require.NoError(t, SetValueByPath(data, "result.name", "Ada"))
	require.NoError(t, SetValueByPath(data, "items[0].name", "changed"))

	value, ok := GetValueByPath(data, "result.name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", value)

	value, ok = GetValueByPath(data, "items[0].name")
	assert.True(t, ok)
	assert.Equal(t, "changed", value)

	assert.Error(t, SetValueByPath(data, "items[3].name", "x"))
	assert.Error(t, SetValueByPath(data, "", "x"))
}
