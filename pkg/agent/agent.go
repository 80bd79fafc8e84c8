// Package agent implements the heuristic consumer of parsed scripts: it
// folds environments into memory, stacks emotions, scores protocols into
// actions, and dreams.
package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// Agent is a long-lived script consumer. It is not safe for concurrent
// use; callers serialize steps per agent.
type Agent struct {
	name       string
	mem        *Memory
	emotions   *EmotionStack
	graph      *Graph
	registry   *Registry
	dreams     *DreamEngine
	psyche     *Psyche
	transcript *transcript
}

// Action is what the agent decided to do in one step.
type Action struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Report is the outward record of one agent step.
type Report struct {
	Emotions  []chaos.Emotion `json:"emotions"`
	Symbols   map[string]any  `json:"symbols"`
	Narrative string          `json:"narrative"`
	Action    *Action         `json:"action,omitempty"`
	Dreams    []string        `json:"dreams"`
	Composure int             `json:"composure"`
	Log       string          `json:"log"`
}

// StepInput carries the optional stimuli for one step. Both fields may be
// set; text is perceived before the script runs.
type StepInput struct {
	Text   string
	Script string
}

// State is the durable part of an agent, exported for session storage.
type State struct {
	Symbols     map[string]any  `json:"symbols"`
	SymbolOrder []string        `json:"symbol_order"`
	Emotions    []chaos.Emotion `json:"emotions"`
	Narrative   string          `json:"narrative"`
	Edges       [][2]string     `json:"edges"`
	Composure   int             `json:"composure"`
}

// New builds an agent with the default persona. A zero seed picks a
// time-based one.
func New(name string, seed int64) (*Agent, error) {
	p := DefaultPersona(name)
	p.Seed = seed
	return FromPersona(p)
}

// FromPersona builds an agent from a validated persona.
func FromPersona(p *Persona) (*Agent, error) {
	if p == nil {
		return nil, fmt.Errorf("agent: nil persona")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.applyDefaults()

	psyche, err := NewPsyche(p)
	if err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	triggers := p.Triggers
	if len(triggers) == 0 {
		triggers = DefaultTriggers()
	}
	transitions := p.Transitions
	if len(transitions) == 0 {
		transitions = DefaultTransitions()
	}
	return &Agent{
		name:       p.Name,
		mem:        NewMemory(),
		emotions:   NewEmotionStackWith(triggers, transitions),
		graph:      NewGraph(),
		registry:   NewRegistry(seed),
		dreams:     NewDreamEngine(seed),
		psyche:     psyche,
		transcript: newTranscript(),
	}, nil
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Graph() *Graph {
	return a.graph
}

func (a *Agent) Composure() int {
	return a.psyche.Composure()
}

func (a *Agent) Emotions() []chaos.Emotion {
	return a.emotions.Snapshot()
}

// PerceiveText scans free text for emotional triggers.
func (a *Agent) PerceiveText(text string) {
	a.transcript.logf("%s perceived: %s", a.name, chaos.Snippet(text, 120))
	a.emotions.TriggerFromText(text)
}

// PerceiveScript runs a script and folds its environment into memory.
func (a *Agent) PerceiveScript(source string) error {
	env, err := chaos.Run(source)
	if err != nil {
		return err
	}
	a.AbsorbEnvironment(env)
	return nil
}

// AbsorbEnvironment folds an already-built environment into memory.
// Structured keys become normalized symbols, emotive records join the
// stack, and a non-empty narrative replaces the remembered one.
func (a *Agent) AbsorbEnvironment(env *chaos.Environment) {
	if env == nil {
		return
	}
	keys := make([]string, 0, len(env.StructuredCore))
	for k := range env.StructuredCore {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		symbol := chaos.NormKey(k)
		a.mem.SetSymbol(symbol, env.StructuredCore[k])
		a.transcript.logf("symbol %s=%v", symbol, env.StructuredCore[k])
	}
	for _, entry := range env.EmotiveLayer {
		name := chaos.NormKey(entry.Name)
		if name == "" {
			name = "FEELING"
		}
		intensity := chaos.Clamp(entry.Intensity, 0, 10)
		a.emotions.Push(name, intensity)
		a.transcript.logf("emotion %s:%d", name, intensity)
	}
	if env.ChaosfieldLayer != "" {
		a.mem.SetNarrative(env.ChaosfieldLayer)
		a.transcript.logf("narrative %s", chaos.Snippet(env.ChaosfieldLayer, 120))
	}
}

// ClearNarrative erases the remembered narrative. Symbols and emotions
// are untouched.
func (a *Agent) ClearNarrative() {
	a.mem.SetNarrative("")
	a.transcript.logf("narrative cleared")
}

// Reflect generates dream visions from the current state.
func (a *Agent) Reflect() []string {
	visions := a.dreams.Visions(a.mem.SymbolKeys(), a.emotions.Snapshot(), a.mem.Narrative(), 3)
	for _, v := range visions {
		a.transcript.logf("dream %s", chaos.Snippet(v, 120))
	}
	return visions
}

// Decide picks an action. A spent psyche overrides every protocol and
// forces stabilization.
func (a *Agent) Decide() *Action {
	if a.psyche.Exhausted() {
		a.transcript.logf("composure spent, stabilizing")
		return &Action{
			Kind:    ActionStabilize,
			Payload: map[string]any{"affirmation": "You are safe."},
		}
	}
	choice := a.registry.Evaluate(a.mem, a.emotions.Snapshot())
	if choice == nil {
		a.transcript.logf("idle")
		return nil
	}
	a.transcript.logf("protocol %s:%d -> %s", choice.Name, choice.Score, choice.Action)
	return &Action{Kind: choice.Action, Payload: choice.Details}
}

// Act applies an action's side effects. Relating links neighboring
// symbols into the graph, in the order they were learned.
func (a *Agent) Act(action *Action) {
	if action == nil {
		return
	}
	a.transcript.logf("act %s", action.Kind)
	if action.Kind == ActionRelate {
		keys := a.mem.SymbolKeys()
		for i := 0; i+1 < len(keys); i++ {
			a.graph.AddEdge(keys[i], keys[i+1])
		}
	}
}

// Tick decays emotions and lets composure recover one point.
func (a *Agent) Tick(decay int) {
	a.emotions.DecayAll(decay)
	if err := a.psyche.Rally(1); err != nil {
		a.transcript.logf("psyche: %v", err)
	}
}

// Step runs one full cycle: perceive, absorb stress, reflect, decide,
// act, tick.
func (a *Agent) Step(in StepInput) (*Report, error) {
	if in.Text != "" {
		a.PerceiveText(in.Text)
	}
	if in.Script != "" {
		if err := a.PerceiveScript(in.Script); err != nil {
			return nil, err
		}
	}
	if err := a.psyche.Absorb(a.emotions.Snapshot()); err != nil {
		return nil, fmt.Errorf("agent: absorb stress: %w", err)
	}
	dreams := a.Reflect()
	action := a.Decide()
	a.Act(action)
	a.Tick(1)
	return &Report{
		Emotions:  a.emotions.Snapshot(),
		Symbols:   a.mem.Symbols(),
		Narrative: a.mem.Narrative(),
		Action:    action,
		Dreams:    dreams,
		Composure: a.psyche.Composure(),
		Log:       a.transcript.Export(),
	}, nil
}

// ExportState captures the durable state for persistence.
func (a *Agent) ExportState() *State {
	return &State{
		Symbols:     a.mem.Symbols(),
		SymbolOrder: a.mem.SymbolKeys(),
		Emotions:    a.emotions.Snapshot(),
		Narrative:   a.mem.Narrative(),
		Edges:       a.graph.Edges(),
		Composure:   a.psyche.Composure(),
	}
}

// RestoreState rebuilds memory, emotions, graph, and composure from a
// saved state. The transcript starts fresh.
func (a *Agent) RestoreState(st *State) error {
	if st == nil {
		return fmt.Errorf("agent: nil state")
	}
	a.mem.Reset()
	for _, key := range st.SymbolOrder {
		if v, ok := st.Symbols[key]; ok {
			a.mem.SetSymbol(key, v)
		}
	}
	// Symbols missing from the order list still restore, just after the
	// ordered ones.
	rest := make([]string, 0)
	for k := range st.Symbols {
		if _, ok := a.mem.Symbol(k); !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		a.mem.SetSymbol(k, st.Symbols[k])
	}
	a.mem.SetNarrative(st.Narrative)

	a.emotions.Clear()
	for _, e := range st.Emotions {
		a.emotions.Push(e.Name, e.Intensity)
	}

	a.graph = NewGraph()
	for _, edge := range st.Edges {
		a.graph.AddEdge(edge[0], edge[1])
	}
	if err := a.psyche.SetComposure(st.Composure); err != nil {
		return fmt.Errorf("agent: restore composure: %w", err)
	}
	return nil
}

// transcript accumulates the step-by-step record returned with reports.
type transcript struct {
	entries []string
}

func newTranscript() *transcript {
	return &transcript{}
}

func (t *transcript) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.entries = append(t.entries, fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), msg))
}

func (t *transcript) Export() string {
	return strings.Join(t.entries, "\n")
}
