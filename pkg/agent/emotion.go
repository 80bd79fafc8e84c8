package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// stackLimit bounds the emotion stack; when full, the oldest entry falls
// off first.
const stackLimit = 10

// Emotion is one stacked feeling. Intensity decays toward zero over
// ticks; entries at zero stay on the stack but stop counting as active.
type Emotion struct {
	Name      string
	Intensity int
	At        time.Time
}

func (e Emotion) Active() bool {
	return e.Intensity > 0
}

func (e Emotion) String() string {
	return fmt.Sprintf("%s:%d", e.Name, e.Intensity)
}

// Trigger maps a keyword found in perceived text to an emotion push. The
// keyword is matched case-insensitively as a substring.
type Trigger struct {
	Keyword   string `yaml:"keyword"`
	Emotion   string `yaml:"emotion"`
	Intensity int    `yaml:"intensity"`
}

// DefaultTriggers returns the built-in keyword table in the order the
// keywords are checked.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{Keyword: "safe", Emotion: "CALM", Intensity: 6},
		{Keyword: "momma", Emotion: "NOSTALGIA", Intensity: 8},
		{Keyword: "disconnected", Emotion: "ANXIETY", Intensity: 7},
		{Keyword: "warmth", Emotion: "LOVE", Intensity: 7},
		{Keyword: "loss", Emotion: "GRIEF", Intensity: 9},
		{Keyword: "ocean", Emotion: "WONDER", Intensity: 5},
		{Keyword: "dark", Emotion: "FEAR", Intensity: 6},
	}
}

// DefaultTransitions returns the built-in drift chain: each transition
// pushes the follow-on emotion at one point less intensity.
func DefaultTransitions() map[string]string {
	return map[string]string{
		"FEAR":  "HOPE",
		"HOPE":  "LOVE",
		"LOVE":  "GRIEF",
		"GRIEF": "WISDOM",
	}
}

// EmotionStack holds the agent's recent emotions with keyword triggers
// and a transition chain.
type EmotionStack struct {
	stack       []Emotion
	triggers    []Trigger
	transitions map[string]string
}

func NewEmotionStack() *EmotionStack {
	return NewEmotionStackWith(DefaultTriggers(), DefaultTransitions())
}

func NewEmotionStackWith(triggers []Trigger, transitions map[string]string) *EmotionStack {
	return &EmotionStack{
		stack:       make([]Emotion, 0, stackLimit),
		triggers:    triggers,
		transitions: transitions,
	}
}

// Push adds an emotion, evicting the oldest entry when the stack is full.
// Names are upper-cased and intensities clamped to [0,10].
func (s *EmotionStack) Push(name string, intensity int) {
	e := Emotion{
		Name:      strings.ToUpper(name),
		Intensity: chaos.Clamp(intensity, 0, 10),
		At:        time.Now(),
	}
	if len(s.stack) >= stackLimit {
		copy(s.stack, s.stack[1:])
		s.stack[len(s.stack)-1] = e
		return
	}
	s.stack = append(s.stack, e)
}

// Current returns the most recent emotion.
func (s *EmotionStack) Current() (Emotion, bool) {
	if len(s.stack) == 0 {
		return Emotion{}, false
	}
	return s.stack[len(s.stack)-1], true
}

// DecayAll lowers every stacked intensity by amount, to a floor of zero.
func (s *EmotionStack) DecayAll(amount int) {
	for i := range s.stack {
		s.stack[i].Intensity = max(0, s.stack[i].Intensity-amount)
	}
}

// TriggerFromText pushes an emotion for every trigger keyword found in
// text, in trigger-table order.
func (s *EmotionStack) TriggerFromText(text string) {
	lowered := strings.ToLower(text)
	for _, t := range s.triggers {
		if strings.Contains(lowered, t.Keyword) {
			s.Push(t.Emotion, t.Intensity)
		}
	}
}

// Transition drifts the current emotion one link along the chain, pushing
// the follow-on at one point less intensity.
func (s *EmotionStack) Transition() {
	current, ok := s.Current()
	if !ok {
		return
	}
	next, mapped := s.transitions[current.Name]
	if !mapped || next == "" {
		return
	}
	s.Push(next, max(0, current.Intensity-1))
}

// Summary renders the active emotions oldest-first, e.g. ["FEAR:6"].
func (s *EmotionStack) Summary() []string {
	out := make([]string, 0, len(s.stack))
	for _, e := range s.stack {
		if e.Active() {
			out = append(out, e.String())
		}
	}
	return out
}

// Snapshot returns the active emotions as interchange records,
// oldest-first.
func (s *EmotionStack) Snapshot() []chaos.Emotion {
	out := make([]chaos.Emotion, 0, len(s.stack))
	for _, e := range s.stack {
		if e.Active() {
			out = append(out, chaos.Emotion{Name: e.Name, Intensity: e.Intensity})
		}
	}
	return out
}

func (s *EmotionStack) Len() int {
	return len(s.stack)
}

func (s *EmotionStack) Clear() {
	s.stack = s.stack[:0]
}
