package domain

import "fmt"

// ParseEmbeddedNode reads a node definition nested in another node's config,
// as used by loop bodies and parallel branches. fallbackID is used when the
// definition has no id.
func ParseEmbeddedNode(raw any, fallbackID string) (Node, error) {
	object, ok := asObject(raw)
	if !ok {
		return Node{}, fmt.Errorf("node definition must be an object")
	}

	nodeType := StringValue(object, "type", "")
	if nodeType == "" {
		return Node{}, fmt.Errorf("node definition is missing a type")
	}

	node := Node{
		ID:   StringValue(object, "id", fallbackID),
		Type: NodeType(nodeType),
		Name: StringValue(object, "name", ""),
		Data: MapValue(object, "data"),
	}

	if node.Data == nil {
		node.Data = map[string]any{}
	}

	return node, nil
}
