// Package chaos implements the front end for the CHAOS scripting language:
// tokenizer, three-layer parser, environment builder, and validator.
package chaos

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType uint8

const (
	TokenInvalid TokenType = iota
	TokenBracketOpen
	TokenBracketClose
	TokenBraceOpen
	TokenBraceClose
	TokenColon
	TokenComma
	TokenIdentifier
	TokenString
	TokenNumber
	TokenBoolean
	TokenNull
	TokenEnd
)

func (t TokenType) String() string {
	switch t {
	case TokenBracketOpen:
		return "BRACKET_OPEN"
	case TokenBracketClose:
		return "BRACKET_CLOSE"
	case TokenBraceOpen:
		return "BRACE_OPEN"
	case TokenBraceClose:
		return "BRACE_CLOSE"
	case TokenColon:
		return "COLON"
	case TokenComma:
		return "COMMA"
	case TokenIdentifier:
		return "IDENT"
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenBoolean:
		return "BOOLEAN"
	case TokenNull:
		return "NULL"
	case TokenEnd:
		return "END"
	default:
		return "INVALID"
	}
}

// Token is one lexical unit. Literal holds the source text of the token
// with string quotes stripped; Line and Column locate its first character.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Column)
}
