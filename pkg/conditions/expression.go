package conditions

import (
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"
)

// Expression is a compiled custom condition. It only supports field
// references, literals, comparisons and boolean connectives.
type Expression struct {
	source string
	root   node
}

func Compile(source string) (*Expression, error) {
	root, err := parse(source)
	if err != nil {
		return nil, err
	}

	return &Expression{source: source, root: root}, nil
}

func (e *Expression) String() string {
	return e.root.String()
}

func (e *Expression) Source() string {
	return e.source
}

func (e *Expression) Evaluate(data map[string]any) (bool, error) {
	value, err := e.root.eval(data)
	if err != nil {
		return false, err
	}

	return truthy(value), nil
}

func (n *literalNode) eval(map[string]any) (any, error) {
	return n.value, nil
}

// Missing fields evaluate to null rather than failing.
func (n *fieldNode) eval(data map[string]any) (any, error) {
	value, _ := domain.GetValueByPath(data, n.path)
	return value, nil
}

func (n *notNode) eval(data map[string]any) (any, error) {
	value, err := n.operand.eval(data)
	if err != nil {
		return nil, err
	}

	return !truthy(value), nil
}

func (n *logicalNode) eval(data map[string]any) (any, error) {
	left, err := n.left.eval(data)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenAnd:
		if !truthy(left) {
			return false, nil
		}
	case tokenOr:
		if truthy(left) {
			return true, nil
		}
	default:
		return nil, fmt.Errorf("unknown logical operator %s", n.op)
	}

	right, err := n.right.eval(data)
	if err != nil {
		return nil, err
	}

	return truthy(right), nil
}

func (n *comparisonNode) eval(data map[string]any) (any, error) {
	left, err := n.left.eval(data)
	if err != nil {
		return nil, err
	}

	right, err := n.right.eval(data)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case tokenEQ:
		return looseEqual(left, right), nil
	case tokenNE:
		return !looseEqual(left, right), nil
	case tokenContains:
		return contains(left, right), nil
	}

	// Ordering against a missing field is false, not an error.
	if left == nil || right == nil {
		return false, nil
	}

	cmp, err := compareNumbers(left, right)
	if err != nil {
		cmp, err = compareStrings(left, right)
		if err != nil {
			return nil, err
		}
	}

	switch n.op {
	case tokenLT:
		return cmp < 0, nil
	case tokenGT:
		return cmp > 0, nil
	case tokenLE:
		return cmp <= 0, nil
	case tokenGE:
		return cmp >= 0, nil
	default:
		return nil, fmt.Errorf("unknown comparison operator %s", n.op)
	}
}

func compareStrings(a, b any) (int, error) {
	as, aok := a.(string)
	bs, bok := b.(string)

	if !aok || !bok {
		return 0, fmt.Errorf("cannot order %v and %v", a, b)
	}

	switch {
	case as < bs:
		return -1, nil
	case as > bs:
		return 1, nil
	default:
		return 0, nil
	}
}
