package conditions

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIllegal

	tokenIdent
	tokenNumber
	tokenString
	tokenTrue
	tokenFalse
	tokenNull

	tokenEQ
	tokenNE
	tokenLT
	tokenGT
	tokenLE
	tokenGE
	tokenContains

	tokenAnd
	tokenOr
	tokenNot

	tokenLParen
	tokenRParen
)

var tokenNames = map[tokenType]string{
	tokenEOF:      "end of expression",
	tokenIllegal:  "illegal",
	tokenIdent:    "field",
	tokenNumber:   "number",
	tokenString:   "string",
	tokenTrue:     "true",
	tokenFalse:    "false",
	tokenNull:     "null",
	tokenEQ:       "==",
	tokenNE:       "!=",
	tokenLT:       "<",
	tokenGT:       ">",
	tokenLE:       "<=",
	tokenGE:       ">=",
	tokenContains: "contains",
	tokenAnd:      "AND",
	tokenOr:       "OR",
	tokenNot:      "NOT",
	tokenLParen:   "(",
	tokenRParen:   ")",
}

func (t tokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "unknown"
}

func (t tokenType) isComparison() bool {
	switch t {
	case tokenEQ, tokenNE, tokenLT, tokenGT, tokenLE, tokenGE, tokenContains:
		return true
	default:
		return false
	}
}

type token struct {
	typ     tokenType
	literal string
	pos     int
}

var keywords = map[string]tokenType{
	"and":      tokenAnd,
	"or":       tokenOr,
	"not":      tokenNot,
	"true":     tokenTrue,
	"false":    tokenFalse,
	"null":     tokenNull,
	"nil":      tokenNull,
	"contains": tokenContains,
}
