package expressions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateBinder_BindString(t *testing.T) {
	binder := NewTemplateBinder()

	scope := map[string]any{
		"student": map[string]any{"name": "Ada", "scores": []any{90.0}},
		"budget":  35000.0,
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"no placeholders", "Hello", "Hello"},
		{"single placeholder", "Hello {{student.name}}", "Hello Ada"},
		{"spaces inside braces", "Hello {{ student.name }}!", "Hello Ada!"},
		{"number formatting", "Budget: {{budget}}", "Budget: 35000"},
		{"array index", "Top score {{student.scores[0]}}", "Top score 90"},
		{"unknown path", "Hi {{missing}}.", "Hi ."},
		{"several placeholders", "{{student.name}}/{{budget}}", "Ada/35000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, binder.BindString(tt.template, scope))
		})
	}
}

func TestTemplateBinder_Bind(t *testing.T) {
	binder := NewTemplateBinder()

	scope := map[string]any{
		"budget": 35000.0,
		"tags":   []any{"vip"},
		"name":   "Ada",
	}

	bound := binder.Bind(map[string]any{
		"amount":  "{{budget}}",
		"tags":    "{{ tags }}",
		"missing": "{{nope}}",
		"subject": "Welcome {{name}}",
		"nested":  map[string]any{"list": []any{"{{name}}", 3}},
		"count":   2,
	}, scope)

	assert.Equal(t, map[string]any{
		"amount":  35000.0,
		"tags":    []any{"vip"},
		"missing": nil,
		"subject": "Welcome Ada",
		"nested":  map[string]any{"list": []any{"Ada", 3}},
		"count":   2,
	}, bound)
}

func TestBindConfig(t *testing.T) {
	assert.Equal(t, map[string]any{}, BindConfig(nil, nil, nil))
	assert.Equal(t, map[string]any{"a": "x"}, BindConfig(NewTemplateBinder(), map[string]any{"a": "{{v}}"}, map[string]any{"v": "x"}))
}
