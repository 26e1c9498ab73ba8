package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PropertyPathSegment represents a single segment in a property path
type PropertyPathSegment struct {
	Key   string `json:"key"`
	Index *int   `json:"index,omitempty"` // nil for non-array properties
}

var (
	pathCharactersRegex = regexp.MustCompile(`^[a-zA-Z0-9._\-\[\]]+$`)
	pathDotsRegex       = regexp.MustCompile(`\.\.|\.\[|^\.|\.+$`)
	pathArrayRegex      = regexp.MustCompile(`^(.+?)\[(\d+)\]$`)
)

// ParsePropertyPath breaks down a dot-notation path into segments.
//
// Path format examples:
//   - Simple: "budget"
//   - Nested: "student.email"
//   - Array: "items[0].name"
func ParsePropertyPath(path string) ([]PropertyPathSegment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return []PropertyPathSegment{}, nil
	}

	if !pathCharactersRegex.MatchString(path) {
		return nil, fmt.Errorf("invalid characters in path: '%s'", path)
	}

	if pathDotsRegex.MatchString(path) {
		return nil, fmt.Errorf("invalid dot placement in path: '%s'", path)
	}

	segments := []PropertyPathSegment{}

	for _, part := range strings.Split(path, ".") {
		matches := pathArrayRegex.FindStringSubmatch(part)

		if len(matches) == 3 {
			index, err := strconv.Atoi(matches[2])
			if err != nil {
				return nil, fmt.Errorf("invalid array index '%s' in path '%s'", matches[2], path)
			}

			segments = append(segments, PropertyPathSegment{
				Key:   matches[1],
				Index: &index,
			})

			continue
		}

		if strings.ContainsAny(part, "[]") {
			return nil, fmt.Errorf("invalid array notation in path segment '%s'", part)
		}

		segments = append(segments, PropertyPathSegment{Key: part})
	}

	return segments, nil
}

// GetValueByPath resolves path against data. The second return value is false
// when any segment along the way is missing.
func GetValueByPath(data map[string]any, path string) (any, bool) {
	segments, err := ParsePropertyPath(path)
	if err != nil || len(segments) == 0 {
		return nil, false
	}

	var current any = data

	for _, segment := range segments {
		object, ok := asObject(current)
		if !ok {
			return nil, false
		}

		current, ok = object[segment.Key]
		if !ok {
			return nil, false
		}

		if segment.Index == nil {
			continue
		}

		list, ok := current.([]any)
		if !ok || *segment.Index >= len(list) {
			return nil, false
		}

		current = list[*segment.Index]
	}

	return current, true
}

// SetValueByPath writes value at path, creating intermediate objects as
// needed. Array segments must already exist.
func SetValueByPath(data map[string]any, path string, value any) error {
	segments, err := ParsePropertyPath(path)
	if err != nil {
		return err
	}

	if len(segments) == 0 {
		return fmt.Errorf("empty property path")
	}

	current := data

	for i, segment := range segments {
		last := i == len(segments)-1

		if segment.Index != nil {
			list, ok := current[segment.Key].([]any)
			if !ok || *segment.Index >= len(list) {
				return fmt.Errorf("array index out of range at '%s' in path '%s'", segment.Key, path)
			}

			if last {
				list[*segment.Index] = value
				return nil
			}

			next, ok := asObject(list[*segment.Index])
			if !ok {
				next = map[string]any{}
				list[*segment.Index] = next
			}

			current = next

			continue
		}

		if last {
			current[segment.Key] = value
			return nil
		}

		next, ok := asObject(current[segment.Key])
		if !ok {
			next = map[string]any{}
			current[segment.Key] = next
		}

		current = next
	}

	return nil
}

func asObject(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Payload:
		return v, true
	default:
		return nil, false
	}
}
