package agent

// Memory is the agent's working state: symbols in the order they were
// first learned, plus the latest narrative.
type Memory struct {
	symbols   map[string]any
	order     []string
	narrative string
}

func NewMemory() *Memory {
	return &Memory{symbols: make(map[string]any)}
}

// SetSymbol stores a symbol value. First-time keys keep their insertion
// position; repeated keys update in place.
func (m *Memory) SetSymbol(key string, value any) {
	if _, seen := m.symbols[key]; !seen {
		m.order = append(m.order, key)
	}
	m.symbols[key] = value
}

func (m *Memory) Symbol(key string) (any, bool) {
	v, ok := m.symbols[key]
	return v, ok
}

// Symbols returns a copy of the symbol table.
func (m *Memory) Symbols() map[string]any {
	out := make(map[string]any, len(m.symbols))
	for k, v := range m.symbols {
		out[k] = v
	}
	return out
}

// SymbolKeys returns the keys in insertion order.
func (m *Memory) SymbolKeys() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Memory) SetNarrative(text string) {
	m.narrative = text
}

func (m *Memory) Narrative() string {
	return m.narrative
}

// Reset clears all remembered state.
func (m *Memory) Reset() {
	m.symbols = make(map[string]any)
	m.order = nil
	m.narrative = ""
}
