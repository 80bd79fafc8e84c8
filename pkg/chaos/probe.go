package chaos

const (
	tagEmotion = "EMOTION"
	tagSymbol  = "SYMBOL"
)

// routedTags lists the tags reserved for the emotive scan. A triplet
// carrying one of these, or any triplet with an explicit second colon,
// never becomes a structured-core key.
var routedTags = map[string]bool{
	tagEmotion: true,
	tagSymbol:  true,
}

// TagTriplet is the probe result for one bracketed tag group. It lives only
// long enough for the scan that requested it to decide routing.
type TagTriplet struct {
	Tag      string
	Kind     string
	Value    string // literal of the optional value slot, "" when absent
	HasValue bool   // an explicit second colon was present
}

func (t TagTriplet) routed() bool {
	return routedTags[t.Tag] || t.HasValue
}

// probeTagTriplet checks whether the tokens starting at start form
// [TAG:KIND] or [TAG:KIND:VALUE]. It reads ahead without touching any
// cursor and returns the index just past the closing bracket; the caller
// commits by jumping there, or ignores the result entirely.
func probeTagTriplet(tokens []Token, start int) (TagTriplet, int, bool) {
	at := func(i int, t TokenType) bool {
		return i < len(tokens) && tokens[i].Type == t
	}

	var trip TagTriplet
	idx := start
	if !at(idx, TokenBracketOpen) {
		return TagTriplet{}, 0, false
	}
	idx++
	if !at(idx, TokenIdentifier) {
		return TagTriplet{}, 0, false
	}
	trip.Tag = tokens[idx].Literal
	idx++
	if !at(idx, TokenColon) {
		return TagTriplet{}, 0, false
	}
	idx++
	if !at(idx, TokenIdentifier) {
		return TagTriplet{}, 0, false
	}
	trip.Kind = tokens[idx].Literal
	idx++
	if at(idx, TokenColon) {
		trip.HasValue = true
		idx++
		if at(idx, TokenIdentifier) || at(idx, TokenNumber) {
			trip.Value = tokens[idx].Literal
			idx++
		}
	}
	if !at(idx, TokenBracketClose) {
		return TagTriplet{}, 0, false
	}
	return trip, idx + 1, true
}
