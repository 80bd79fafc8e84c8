package chaos

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lexer turns source text into the flat token stream shared by every layer
// scan. Tokenizing is total: anything the lexer does not recognize is
// skipped without a diagnostic, so every input yields a stream ending in
// exactly one End token.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize is shorthand for NewLexer(input).Tokenize().
func Tokenize(input string) []Token {
	return NewLexer(input).Tokenize()
}

// Tokenize consumes the whole input and returns its tokens. The final
// element is always a single End token.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0, 64)
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		switch {
		case r == '\n':
			l.pos += size
			l.line++
			l.col = 1
		case unicode.IsSpace(r):
			l.pos += size
			l.col++
		case r == '#':
			l.skipComment()
		case r == '[':
			tokens = append(tokens, l.readSingle(TokenBracketOpen))
		case r == ']':
			tokens = append(tokens, l.readSingle(TokenBracketClose))
		case r == '{':
			tokens = append(tokens, l.readSingle(TokenBraceOpen))
		case r == '}':
			tokens = append(tokens, l.readSingle(TokenBraceClose))
		case r == ':':
			tokens = append(tokens, l.readSingle(TokenColon))
		case r == ',':
			tokens = append(tokens, l.readSingle(TokenComma))
		case r == '"':
			tokens = append(tokens, l.readString())
		case isDigit(r):
			tokens = append(tokens, l.readNumber(false))
		case r == '-' && l.digitFollows():
			tokens = append(tokens, l.readNumber(true))
		case unicode.IsLetter(r) || r == '_':
			tokens = append(tokens, l.readWord())
		default:
			// Unrecognized character. Skip it and keep going.
			l.pos += size
			l.col++
		}
	}
	tokens = append(tokens, Token{Type: TokenEnd, Line: l.line, Column: l.col})
	return tokens
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size
		l.col++
	}
}

func (l *Lexer) readSingle(t TokenType) Token {
	tok := Token{Type: t, Literal: l.input[l.pos : l.pos+1], Line: l.line, Column: l.col}
	l.pos++
	l.col++
	return tok
}

// readString reads a double-quoted string. A missing closing quote is not
// an error: the literal runs to the end of input.
func (l *Lexer) readString() Token {
	tok := Token{Type: TokenString, Line: l.line, Column: l.col}
	l.pos++ // opening quote
	l.col++
	start := l.pos
	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\n' {
			l.pos++
			l.line++
			l.col = 1
			continue
		}
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size
		l.col++
	}
	tok.Literal = l.input[start:l.pos]
	if l.pos < len(l.input) {
		l.pos++ // closing quote
		l.col++
	}
	return tok
}

func (l *Lexer) readNumber(signed bool) Token {
	tok := Token{Type: TokenNumber, Line: l.line, Column: l.col}
	start := l.pos
	if signed {
		l.pos++ // leading minus
		l.col++
	}
	for l.pos < len(l.input) && isDigit(rune(l.input[l.pos])) {
		l.pos++
		l.col++
	}
	tok.Literal = l.input[start:l.pos]
	return tok
}

// readWord reads an identifier or keyword. Identifiers may continue with
// letters, digits, underscores, hyphens, and periods, so narrative words
// like "day." survive as a single token. TRUE, FALSE, and NULL are
// recognized in any casing.
func (l *Lexer) readWord() Token {
	tok := Token{Line: l.line, Column: l.col}
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' && r != '.' {
			break
		}
		l.pos += size
		l.col++
	}
	word := l.input[start:l.pos]
	switch strings.ToUpper(word) {
	case "TRUE", "FALSE":
		tok.Type = TokenBoolean
	case "NULL":
		tok.Type = TokenNull
	default:
		tok.Type = TokenIdentifier
	}
	tok.Literal = word
	return tok
}

func (l *Lexer) digitFollows() bool {
	return l.pos+1 < len(l.input) && isDigit(rune(l.input[l.pos+1]))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
