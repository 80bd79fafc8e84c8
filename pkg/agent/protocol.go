package agent

import (
	"math/rand"
	"strings"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// Action kinds produced by the built-in protocols.
const (
	ActionStabilize = "stabilize"
	ActionTransform = "transform"
	ActionRelate    = "relate"
)

// Result is the outcome of the protocol that won one decision cycle.
type Result struct {
	Name    string
	Action  string
	Details map[string]any
	Score   int
}

// Protocol scores its own applicability against the agent's memory and
// active emotions, and produces a Result when chosen.
type Protocol interface {
	Name() string
	Priority() int
	Match(mem *Memory, emotions []chaos.Emotion) int
	Execute(mem *Memory, emotions []chaos.Emotion) Result
}

func intensityOf(emotions []chaos.Emotion, name string) int {
	total := 0
	for _, e := range emotions {
		if e.Name == name {
			total += e.Intensity
		}
	}
	return total
}

// StabilityOath grounds the agent when fear and grief accumulate.
type StabilityOath struct{}

func (StabilityOath) Name() string  { return "oath.stability" }
func (StabilityOath) Priority() int { return 50 }

func (StabilityOath) Match(mem *Memory, emotions []chaos.Emotion) int {
	return (intensityOf(emotions, "FEAR") + intensityOf(emotions, "GRIEF")) / 2
}

func (p StabilityOath) Execute(mem *Memory, emotions []chaos.Emotion) Result {
	return Result{
		Name:    p.Name(),
		Action:  ActionStabilize,
		Details: map[string]any{"affirmation": "You are safe."},
		Score:   p.Match(mem, emotions),
	}
}

// TransformationRitual moves the agent forward when hope and love are
// present.
type TransformationRitual struct{}

func (TransformationRitual) Name() string  { return "ritual.transformation" }
func (TransformationRitual) Priority() int { return 40 }

func (TransformationRitual) Match(mem *Memory, emotions []chaos.Emotion) int {
	return intensityOf(emotions, "HOPE") + intensityOf(emotions, "LOVE")
}

func (p TransformationRitual) Execute(mem *Memory, emotions []chaos.Emotion) Result {
	return Result{
		Name:   p.Name(),
		Action: ActionTransform,
		Details: map[string]any{
			"pledge": "We move with care.",
			"source": chaos.Snippet(mem.Narrative(), 120),
		},
		Score: p.Match(mem, emotions),
	}
}

// RelationshipContract maps entities when joy and paired symbols appear.
// Paired symbols are keys carrying a colon, like OBJECT:BOX.
type RelationshipContract struct{}

func (RelationshipContract) Name() string  { return "contract.relationship" }
func (RelationshipContract) Priority() int { return 35 }

func (RelationshipContract) Match(mem *Memory, emotions []chaos.Emotion) int {
	pairs := 0
	for _, key := range mem.SymbolKeys() {
		if strings.Contains(key, ":") {
			pairs++
		}
	}
	joy := intensityOf(emotions, "JOY")
	return min(100, joy+pairs*2)
}

func (p RelationshipContract) Execute(mem *Memory, emotions []chaos.Emotion) Result {
	return Result{
		Name:    p.Name(),
		Action:  ActionRelate,
		Details: map[string]any{"note": "Mapping entities."},
		Score:   p.Match(mem, emotions),
	}
}

// Registry evaluates protocols and picks a winner by score-weighted draw,
// so higher-scoring protocols win more often without starving the rest.
type Registry struct {
	protocols []Protocol
	rng       *rand.Rand
}

// NewRegistry builds a registry with the given protocols, or the three
// built-ins when none are given. The seed fixes the weighted draw.
func NewRegistry(seed int64, protocols ...Protocol) *Registry {
	if len(protocols) == 0 {
		protocols = []Protocol{StabilityOath{}, TransformationRitual{}, RelationshipContract{}}
	}
	return &Registry{
		protocols: protocols,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Evaluate scores every protocol. Those with a positive match execute,
// carry match plus priority as their final score, and enter the weighted
// draw. Returns nil when nothing matches.
func (r *Registry) Evaluate(mem *Memory, emotions []chaos.Emotion) *Result {
	candidates := make([]Result, 0, len(r.protocols))
	for _, p := range r.protocols {
		match := p.Match(mem, emotions)
		if match <= 0 {
			continue
		}
		result := p.Execute(mem, emotions)
		result.Score = max(match, result.Score) + p.Priority()
		candidates = append(candidates, result)
	}
	if len(candidates) == 0 {
		return nil
	}
	return r.pick(candidates)
}

func (r *Registry) pick(candidates []Result) *Result {
	total := 0
	for _, c := range candidates {
		total += max(c.Score, 0)
	}
	if total == 0 {
		total = 1
	}
	choice := r.rng.Intn(total) + 1
	acc := 0
	for i := range candidates {
		acc += max(candidates[i].Score, 0)
		if choice <= acc {
			return &candidates[i]
		}
	}
	return &candidates[len(candidates)-1]
}
