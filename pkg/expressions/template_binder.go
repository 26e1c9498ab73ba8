package expressions

import (
	"regexp"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// TemplateBinder replaces {{path}} placeholders with values looked up in the
// scope. It only resolves property paths; nothing inside the braces is
// evaluated.
type TemplateBinder struct {
	exprRegex *regexp.Regexp
}

func NewTemplateBinder() *TemplateBinder {
	return &TemplateBinder{
		exprRegex: regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`),
	}
}

// BindString interpolates every placeholder. Unknown paths render as an
// empty string.
func (b *TemplateBinder) BindString(template string, scope map[string]any) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	return b.exprRegex.ReplaceAllStringFunc(template, func(match string) string {
		path := b.exprRegex.FindStringSubmatch(match)[1]

		value, ok := domain.GetValueByPath(scope, path)
		if !ok {
			return ""
		}

		return domain.ToString(value)
	})
}

// Bind walks maps and slices and binds every string. A string that is exactly
// one placeholder keeps the type of the referenced value.
func (b *TemplateBinder) Bind(value any, scope map[string]any) any {
	switch v := value.(type) {
	case string:
		return b.bindString(v, scope)
	case map[string]any:
		bound := make(map[string]any, len(v))
		for key, item := range v {
			bound[key] = b.Bind(item, scope)
		}
		return bound
	case domain.Payload:
		bound := make(domain.Payload, len(v))
		for key, item := range v {
			bound[key] = b.Bind(item, scope)
		}
		return bound
	case []any:
		bound := make([]any, len(v))
		for i, item := range v {
			bound[i] = b.Bind(item, scope)
		}
		return bound
	case []string:
		bound := make([]string, len(v))
		for i, item := range v {
			bound[i] = b.BindString(item, scope)
		}
		return bound
	default:
		return value
	}
}

func (b *TemplateBinder) bindString(template string, scope map[string]any) any {
	matches := b.exprRegex.FindStringSubmatchIndex(template)
	if matches != nil && matches[0] == 0 && matches[1] == len(template) {
		path := template[matches[2]:matches[3]]

		value, ok := domain.GetValueByPath(scope, path)
		if !ok {
			return nil
		}

		return value
	}

	return b.BindString(template, scope)
}

// BindConfig binds a node config map. It always returns a non-nil map.
func BindConfig(binder domain.ParameterBinder, config map[string]any, scope map[string]any) map[string]any {
	if binder == nil {
		if config == nil {
			return map[string]any{}
		}
		return config
	}

	bound, ok := binder.Bind(config, scope).(map[string]any)
	if !ok || bound == nil {
		return map[string]any{}
	}

	return bound
}
