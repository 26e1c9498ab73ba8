package conditions

import (
	"fmt"
	"strconv"
)

// SyntaxError describes why a custom expression could not be parsed.
type SyntaxError struct {
	Pos     int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Message)
}

// parser is a recursive descent parser for the grammar
//
//	or         = and { OR and }
//	and        = unary { AND unary }
//	unary      = NOT unary | comparison
//	comparison = operand [ op operand ]
//	operand    = literal | field | "(" or ")"
type parser struct {
	lexer   *lexer
	current token
	peek    token
}

func parse(input string) (node, error) {
	p := &parser{lexer: newLexer(input)}
	p.advance()
	p.advance()

	if p.current.typ == tokenEOF {
		return nil, &SyntaxError{Pos: 0, Message: "empty expression"}
	}

	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.current.typ != tokenEOF {
		return nil, p.unexpected()
	}

	return root, nil
}

func (p *parser) advance() {
	p.current = p.peek
	p.peek = p.lexer.next()
}

func (p *parser) unexpected() error {
	if p.current.typ == tokenIllegal {
		return &SyntaxError{Pos: p.current.pos, Message: fmt.Sprintf("illegal token %q", p.current.literal)}
	}

	if p.current.typ == tokenEOF {
		return &SyntaxError{Pos: p.current.pos, Message: "unexpected end of expression"}
	}

	return &SyntaxError{Pos: p.current.pos, Message: fmt.Sprintf("unexpected %s %q", p.current.typ, p.current.literal)}
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.current.typ == tokenOr {
		p.advance()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &logicalNode{op: tokenOr, left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for p.current.typ == tokenAnd {
		p.advance()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &logicalNode{op: tokenAnd, left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.current.typ == tokenNot {
		p.advance()

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &notNode{operand: operand}, nil
	}

	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if !p.current.typ.isComparison() {
		return left, nil
	}

	op := p.current.typ
	p.advance()

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.current.typ.isComparison() {
		return nil, &SyntaxError{Pos: p.current.pos, Message: "comparisons cannot be chained, use AND"}
	}

	return &comparisonNode{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (node, error) {
	tok := p.current

	switch tok.typ {
	case tokenNumber:
		p.advance()

		value, err := strconv.ParseFloat(tok.literal, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.pos, Message: fmt.Sprintf("invalid number %q", tok.literal)}
		}

		return &literalNode{value: value}, nil
	case tokenString:
		p.advance()
		return &literalNode{value: tok.literal}, nil
	case tokenTrue:
		p.advance()
		return &literalNode{value: true}, nil
	case tokenFalse:
		p.advance()
		return &literalNode{value: false}, nil
	case tokenNull:
		p.advance()
		return &literalNode{value: nil}, nil
	case tokenIdent:
		p.advance()
		return &fieldNode{path: tok.literal}, nil
	case tokenLParen:
		p.advance()

		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.current.typ != tokenRParen {
			return nil, &SyntaxError{Pos: p.current.pos, Message: "missing closing parenthesis"}
		}

		p.advance()

		return inner, nil
	default:
		return nil, p.unexpected()
	}
}
