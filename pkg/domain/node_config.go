package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RequireFields returns a ConfigurationError for the first field that is
// absent, nil or an empty string.
func RequireFields(config map[string]any, fields ...string) error {
	for _, field := range fields {
		if !HasValue(config, field) {
			return NewMissingFieldError(field)
		}
	}

	return nil
}

func HasValue(config map[string]any, field string) bool {
	value, ok := config[field]
	if !ok || value == nil {
		return false
	}

	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) != ""
	}

	return true
}

func StringValue(config map[string]any, field string, fallback string) string {
	value, ok := config[field]
	if !ok || value == nil {
		return fallback
	}

	s := ToString(value)
	if s == "" {
		return fallback
	}

	return s
}

func IntValue(config map[string]any, field string, fallback int) int {
	f, ok := ToFloat(config[field])
	if !ok {
		return fallback
	}

	return int(f)
}

func BoolValue(config map[string]any, field string, fallback bool) bool {
	switch v := config[field].(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

func MapValue(config map[string]any, field string) map[string]any {
	object, ok := asObject(config[field])
	if !ok {
		return nil
	}

	return object
}

// BindConfig decodes a node's config map into a typed struct through JSON.
func BindConfig(config map[string]any, out any) error {
	raw, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal node config: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to bind node config: %w", err)
	}

	return nil
}

// ToFloat converts numeric values and numeric strings to float64.
func ToFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func ToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case map[string]any, []any, Payload:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MillisToDuration converts milliseconds to a Duration, saturating at the
// largest representable Duration. NaN and non-positive values yield zero.
func MillisToDuration(ms float64) time.Duration {
	if math.IsNaN(ms) || ms <= 0 {
		return 0
	}

	ns := ms * float64(time.Millisecond)
	if ns >= float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(ns)
}
