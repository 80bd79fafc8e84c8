package chaos

import (
	"strconv"
	"strings"
)

// layerCount is the fixed number of children under a program node.
const layerCount = 3

// Parser extracts the three layers of a script from a shared token stream.
// Each layer is collected by its own scan over the full stream, so layer
// content may be interleaved freely in the source. The parser never fails:
// malformed groups are skipped with at least one token of forward progress
// and strictness is left to the validator.
type Parser struct {
	tokens  []Token
	current int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the three layer scans and returns a program node whose
// children are always, in order: structured core, emotive layer,
// chaosfield layer.
func (p *Parser) Parse() *Node {
	p.current = 0
	structured := p.parseStructuredCore()
	p.current = 0
	emotive := p.parseEmotiveLayer()
	p.current = 0
	chaosfield := p.parseChaosfield()
	return &Node{
		Kind:     NodeProgram,
		Children: []*Node{structured, emotive, chaosfield},
	}
}

// parseStructuredCore collects key/value pairs. Bracket groups claimed by
// the emotive layer are skipped here so no group lands in both layers.
func (p *Parser) parseStructuredCore() *Node {
	pairs := make(map[string]any)
	for !p.isAtEnd() {
		start := p.current
		if !p.check(TokenBracketOpen) {
			p.advance()
			continue
		}

		var key string
		if trip, end, ok := probeTagTriplet(p.tokens, start); ok {
			if trip.routed() {
				p.current = end
				continue
			}
			// A non-routed pair like [OBJECT:BOX] keys a structured
			// entry under the joined form "OBJECT:BOX".
			key = trip.Tag + ":" + trip.Kind
			p.current = end
		} else {
			p.advance() // [
			if !p.check(TokenIdentifier) {
				p.current = start + 1
				continue
			}
			key = p.advance().Literal
			if !p.check(TokenBracketClose) {
				p.current = start + 1
				continue
			}
			p.advance() // ]
		}

		if !p.check(TokenColon) {
			p.current = start + 1
			continue
		}
		p.advance() // :

		value, ok := p.scanValue()
		if !ok {
			p.current = start + 1
			continue
		}
		pairs[key] = value
	}
	return &Node{Kind: NodeStructuredCore, Pairs: pairs}
}

// scanValue reads one structured-core value: a scalar token, or a nested
// bracket group collected as a single literal string.
func (p *Parser) scanValue() (any, bool) {
	if p.check(TokenBracketOpen) {
		// A routed triplet in value position still belongs to the
		// emotive layer. Refusing it leaves the group for that scan,
		// so no bracket group is claimed twice.
		if trip, _, ok := probeTagTriplet(p.tokens, p.current); ok && trip.routed() {
			return nil, false
		}
		p.advance() // [
		return p.collectBracketValue()
	}
	if p.isAtEnd() {
		return nil, false
	}
	tok := p.advance()
	switch tok.Type {
	case TokenString, TokenIdentifier:
		return tok.Literal, true
	case TokenNumber:
		n, err := strconv.Atoi(tok.Literal)
		if err != nil {
			return nil, false
		}
		return n, true
	case TokenBoolean:
		return strings.EqualFold(tok.Literal, "true"), true
	case TokenNull:
		return nil, true
	default:
		return nil, false
	}
}

// collectBracketValue joins the literals of a nested bracket group into one
// string, so [OBJECT:BOX]: [ATTRIBUTE:WOOD] stores "ATTRIBUTE:WOOD". The
// opening bracket has already been consumed. An unterminated group is not a
// value; the caller skips the whole pair.
func (p *Parser) collectBracketValue() (any, bool) {
	var sb strings.Builder
	depth := 1
	for !p.isAtEnd() {
		tok := p.advance()
		switch tok.Type {
		case TokenBracketOpen:
			depth++
		case TokenBracketClose:
			depth--
			if depth == 0 {
				return strings.TrimSpace(sb.String()), true
			}
		}
		sb.WriteString(tok.Literal)
	}
	return nil, false
}

// parseEmotiveLayer collects EMOTION triplets. Other routed tags such as
// SYMBOL are recognized and consumed here but not retained.
func (p *Parser) parseEmotiveLayer() *Node {
	emotions := make([]Emotion, 0)
	for !p.isAtEnd() {
		if !p.check(TokenBracketOpen) {
			p.advance()
			continue
		}
		trip, end, ok := probeTagTriplet(p.tokens, p.current)
		if !ok {
			p.advance()
			continue
		}
		p.current = end
		if trip.Tag != tagEmotion {
			continue
		}
		var raw any
		if trip.Value != "" {
			raw = trip.Value
		}
		emotions = append(emotions, Emotion{
			Name:      strings.ToUpper(trip.Kind),
			Intensity: SoftIntensity(raw),
		})
	}
	return &Node{Kind: NodeEmotiveLayer, Emotions: emotions}
}

// parseChaosfield captures the free-text narrative between the first brace
// pair. String literals keep their exact text and null tokens contribute
// nothing. A missing closing brace keeps the partial text; any later brace
// block is ignored.
func (p *Parser) parseChaosfield() *Node {
	opened := false
	for !p.isAtEnd() {
		if p.check(TokenBraceOpen) {
			p.advance()
			opened = true
			break
		}
		p.advance()
	}
	if !opened {
		return &Node{Kind: NodeChaosfield}
	}

	parts := make([]string, 0, 8)
	for !p.isAtEnd() && !p.check(TokenBraceClose) {
		tok := p.advance()
		if tok.Type == TokenNull {
			continue
		}
		parts = append(parts, tok.Literal)
	}
	if p.check(TokenBraceClose) {
		p.advance()
	}
	return &Node{Kind: NodeChaosfield, Text: strings.TrimSpace(strings.Join(parts, " "))}
}

func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEnd}
	}
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == TokenEnd
}

func (p *Parser) check(t TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}
