package conditions

import (
	"fmt"
	"strconv"
)

type node interface {
	eval(data map[string]any) (any, error)
	String() string
}

type literalNode struct {
	value any
}

type fieldNode struct {
	path string
}

type comparisonNode struct {
	op    tokenType
	left  node
	right node
}

type logicalNode struct {
	op    tokenType
	left  node
	right node
}

type notNode struct {
	operand node
}

func (n *literalNode) String() string {
	if s, ok := n.value.(string); ok {
		return strconv.Quote(s)
	}

	if n.value == nil {
		return "null"
	}

	return fmt.Sprintf("%v", n.value)
}

func (n *fieldNode) String() string {
	return n.path
}

func (n *comparisonNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

func (n *logicalNode) String() string {
	return fmt.Sprintf("(%s %s %s)", n.left, n.op, n.right)
}

func (n *notNode) String() string {
	return fmt.Sprintf("NOT %s", n.operand)
}
