package domain

import (
	"encoding/json"
	"maps"
)

// Payload is the JSON-like document a node receives or produces.
type Payload map[string]any

func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}

	return maps.Clone(p)
}

// Merge returns a new payload with the keys of others layered over p.
func (p Payload) Merge(others ...map[string]any) Payload {
	merged := p.Clone()

	for _, other := range others {
		maps.Copy(merged, other)
	}

	return merged
}

func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

// HasError reports whether the payload carries a non-empty error value.
func (p Payload) HasError() bool {
	value, ok := p["error"]
	if !ok || value == nil {
		return false
	}

	switch v := value.(type) {
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}

func (p Payload) JSON() ([]byte, error) {
	return json.Marshal(p)
}

// PayloadFrom converts an arbitrary value into a payload. Maps are used as is,
// anything else is wrapped under the value key.
func PayloadFrom(value any) Payload {
	switch v := value.(type) {
	case nil:
		return Payload{}
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	default:
		return Payload{"value": v}
	}
}
