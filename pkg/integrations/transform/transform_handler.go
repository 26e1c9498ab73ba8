package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/gosimple/slug"
)

type TransformationType string

const (
	TransformationType_Uppercase TransformationType = "uppercase"
	TransformationType_Lowercase TransformationType = "lowercase"
	TransformationType_Extract   TransformationType = "extract"
	TransformationType_Template  TransformationType = "template"
	TransformationType_Slug      TransformationType = "slug"
)

// Transformation is given either as a bare type name or as an object.
type Transformation struct {
	Type     TransformationType `json:"type"`
	Field    string             `json:"field"`
	Template string             `json:"template"`
}

type TransformHandler struct {
	binder domain.ParameterBinder
}

func NewTransformHandler(deps domain.HandlerDeps) domain.NodeHandler {
	return &TransformHandler{
		binder: deps.ParameterBinder,
	}
}

func (h *TransformHandler) Validate(config map[string]any) error {
	if err := domain.RequireFields(config, "transformation"); err != nil {
		return err
	}

	_, err := parseTransformation(config["transformation"])

	return err
}

func (h *TransformHandler) Execute(ctx context.Context, input domain.NodeInput) (domain.Payload, error) {
	transformation, err := parseTransformation(input.Config["transformation"])
	if err != nil {
		return nil, err
	}

	scope := input.Context.Scope(input.Input)

	var source any = map[string]any(input.Input.Clone())

	inputPath := domain.StringValue(input.Config, "inputPath", "")
	if inputPath != "" {
		source, _ = domain.GetValueByPath(scope, inputPath)
	}

	transformed, err := h.apply(transformation, source, scope)
	if err != nil {
		return nil, err
	}

	result := domain.Payload{
		"transformed":        transformed,
		"transformationType": string(transformation.Type),
	}

	if outputPath := domain.StringValue(input.Config, "outputPath", ""); outputPath != "" {
		if err := input.Context.Set(outputPath, transformed); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		result["outputPath"] = outputPath
	}

	return result, nil
}

func (h *TransformHandler) apply(t Transformation, source any, scope map[string]any) (any, error) {
	switch t.Type {
	case TransformationType_Uppercase:
		return mapStrings(source, strings.ToUpper), nil

	case TransformationType_Lowercase:
		return mapStrings(source, strings.ToLower), nil

	case TransformationType_Slug:
		return mapStrings(source, slug.Make), nil

	case TransformationType_Extract:
		object, ok := source.(map[string]any)
		if !ok {
			return nil, nil
		}

		value, _ := domain.GetValueByPath(object, t.Field)
		return value, nil

	case TransformationType_Template:
		data := domain.Payload(scope).Merge(map[string]any{"value": source})
		if object, ok := source.(map[string]any); ok {
			data = data.Merge(object)
		}

		if h.binder == nil {
			return t.Template, nil
		}

		return h.binder.BindString(t.Template, data), nil
	}

	return nil, domain.NewInvalidFieldError("transformation", fmt.Sprintf("unsupported type %q", t.Type))
}

// mapStrings applies fn to a string, or to every string inside maps and
// slices. Other scalars are converted to strings first.
func mapStrings(value any, fn func(string) string) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return fn(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = mapStrings(item, fn)
		}
		return out
	case domain.Payload:
		return mapStrings(map[string]any(v), fn)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = mapStrings(item, fn)
		}
		return out
	case bool:
		return v
	default:
		return fn(domain.ToString(v))
	}
}

func parseTransformation(raw any) (Transformation, error) {
	var t Transformation

	switch v := raw.(type) {
	case string:
		t.Type = TransformationType(v)
	case map[string]any:
		if err := domain.BindConfig(v, &t); err != nil {
			return Transformation{}, domain.NewInvalidFieldError("transformation", err.Error())
		}
	default:
		return Transformation{}, domain.NewInvalidFieldError("transformation", "must be a type name or an object")
	}

	t.Type = TransformationType(strings.ToLower(string(t.Type)))

	switch t.Type {
	case TransformationType_Uppercase, TransformationType_Lowercase, TransformationType_Slug:
	case TransformationType_Extract:
		if t.Field == "" {
			return Transformation{}, domain.NewInvalidFieldError("transformation", "extract requires a field")
		}
	case TransformationType_Template:
		if t.Template == "" {
			return Transformation{}, domain.NewInvalidFieldError("transformation", "template requires a template")
		}
	default:
		return Transformation{}, domain.NewInvalidFieldError("transformation", fmt.Sprintf("unsupported type %q", t.Type))
	}

	return t, nil
}
