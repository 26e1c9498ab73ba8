package conditions

import (
	"strings"
)

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) peek(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}

	return l.input[l.pos+offset]
}

func (l *lexer) next() token {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}

	start := l.pos
	ch := l.peek(0)

	emit := func(typ tokenType, width int) token {
		l.pos += width
		return token{typ: typ, literal: l.input[start:l.pos], pos: start}
	}

	switch {
	case ch == 0:
		return token{typ: tokenEOF, pos: start}
	case ch == '(':
		return emit(tokenLParen, 1)
	case ch == ')':
		return emit(tokenRParen, 1)
	case ch == '=' && l.peek(1) == '=':
		if l.peek(2) == '=' {
			return emit(tokenEQ, 3)
		}
		return emit(tokenEQ, 2)
	case ch == '!' && l.peek(1) == '=':
		if l.peek(2) == '=' {
			return emit(tokenNE, 3)
		}
		return emit(tokenNE, 2)
	case ch == '!':
		return emit(tokenNot, 1)
	case ch == '<' && l.peek(1) == '=':
		return emit(tokenLE, 2)
	case ch == '<':
		return emit(tokenLT, 1)
	case ch == '>' && l.peek(1) == '=':
		return emit(tokenGE, 2)
	case ch == '>':
		return emit(tokenGT, 1)
	case ch == '&' && l.peek(1) == '&':
		return emit(tokenAnd, 2)
	case ch == '|' && l.peek(1) == '|':
		return emit(tokenOr, 2)
	case ch == '"' || ch == '\'':
		return l.readString(ch)
	case ch == '$' && l.peek(1) == '{':
		return l.readReference()
	case isDigit(ch) || (ch == '-' && isDigit(l.peek(1))):
		return l.readNumber()
	case isIdentStart(ch):
		return l.readIdentifier()
	default:
		return emit(tokenIllegal, 1)
	}
}

func (l *lexer) readString(quote byte) token {
	start := l.pos
	l.pos++

	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '\\' && l.pos+1 < len(l.input) {
			sb.WriteByte(l.input[l.pos+1])
			l.pos += 2
			continue
		}

		if ch == quote {
			l.pos++
			return token{typ: tokenString, literal: sb.String(), pos: start}
		}

		sb.WriteByte(ch)
		l.pos++
	}

	return token{typ: tokenIllegal, literal: "unterminated string", pos: start}
}

// readReference reads ${path} and returns it as a field token.
func (l *lexer) readReference() token {
	start := l.pos
	end := strings.IndexByte(l.input[l.pos:], '}')
	if end < 0 {
		l.pos = len(l.input)
		return token{typ: tokenIllegal, literal: "unterminated reference", pos: start}
	}

	path := strings.TrimSpace(l.input[l.pos+2 : l.pos+end])
	l.pos += end + 1

	if path == "" {
		return token{typ: tokenIllegal, literal: "empty reference", pos: start}
	}

	return token{typ: tokenIdent, literal: path, pos: start}
}

func (l *lexer) readNumber() token {
	start := l.pos

	if l.peek(0) == '-' {
		l.pos++
	}

	seenDot := false

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == '.' && !seenDot && isDigit(l.peek(1)) {
			seenDot = true
			l.pos++
			continue
		}

		if !isDigit(ch) {
			break
		}

		l.pos++
	}

	return token{typ: tokenNumber, literal: l.input[start:l.pos], pos: start}
}

// readIdentifier reads keywords and field paths such as student.scores[0].
func (l *lexer) readIdentifier() token {
	start := l.pos

	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}

	literal := l.input[start:l.pos]

	if typ, ok := keywords[strings.ToLower(literal)]; ok {
		return token{typ: typ, literal: literal, pos: start}
	}

	return token{typ: tokenIdent, literal: literal, pos: start}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '.' || ch == '[' || ch == ']' || ch == '-'
}
