package conditions

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// looseEqual compares numerically when both sides are numbers or numeric
// strings, then falls back to deep equality and finally string form.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, ok := domain.ToFloat(a); ok {
		if bf, ok := domain.ToFloat(b); ok {
			return af == bf
		}
	}

	if ab, ok := a.(bool); ok {
		bb, ok := toBool(b)
		return ok && ab == bb
	}

	if bb, ok := b.(bool); ok {
		ab, ok := toBool(a)
		return ok && ab == bb
	}

	if reflect.DeepEqual(a, b) {
		return true
	}

	return domain.ToString(a) == domain.ToString(b)
}

// compareNumbers returns -1, 0 or 1. It fails when either side is not numeric.
func compareNumbers(a, b any) (int, error) {
	af, ok := domain.ToFloat(a)
	if !ok {
		return 0, fmt.Errorf("%v is not a number", a)
	}

	bf, ok := domain.ToFloat(b)
	if !ok {
		return 0, fmt.Errorf("%v is not a number", b)
	}

	switch {
	case af < bf:
		return -1, nil
	case af > bf:
		return 1, nil
	default:
		return 0, nil
	}
}

// contains checks substring inclusion for strings, element inclusion for
// lists and key presence for objects.
func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case nil:
		return false
	case string:
		return strings.Contains(h, domain.ToString(needle))
	case []any:
		for _, item := range h {
			if looseEqual(item, needle) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range h {
			if item == domain.ToString(needle) {
				return true
			}
		}
		return false
	case map[string]any:
		_, ok := h[domain.ToString(needle)]
		return ok
	case domain.Payload:
		_, ok := h[domain.ToString(needle)]
		return ok
	default:
		return strings.Contains(domain.ToString(h), domain.ToString(needle))
	}
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}

	return false, false
}

// truthy follows JSON-ish truthiness: nil, false, 0, "" and empty
// collections are false.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	case domain.Payload:
		return len(v) > 0
	}

	if f, ok := domain.ToFloat(value); ok {
		return f != 0
	}

	return true
}
