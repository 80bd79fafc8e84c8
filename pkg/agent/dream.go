package agent

import (
	"fmt"
	"math/rand"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// Fallback dream elements for an agent with nothing yet in memory.
const (
	fallbackFirst  = "MEMORY"
	fallbackSecond = "LIGHT"
	fallbackMood   = "CALM"
)

// DreamEngine composes short visions from symbols, active emotions, and
// the narrative. A fixed seed makes the stream reproducible.
type DreamEngine struct {
	rng *rand.Rand
}

func NewDreamEngine(seed int64) *DreamEngine {
	return &DreamEngine{rng: rand.New(rand.NewSource(seed))}
}

// Visions returns count dream lines. Symbol keys are drawn uniformly;
// emotion names are weighted by half their intensity, one weight minimum.
func (d *DreamEngine) Visions(symbolKeys []string, emotions []chaos.Emotion, narrative string, count int) []string {
	moods := make([]string, 0, len(emotions))
	for _, e := range emotions {
		weight := max(e.Intensity/2, 1)
		for i := 0; i < weight; i++ {
			moods = append(moods, e.Name)
		}
	}
	base := chaos.Snippet(narrative, 160)

	visions := make([]string, 0, count)
	for i := 0; i < count; i++ {
		first := d.pick(symbolKeys, fallbackFirst)
		second := d.pick(symbolKeys, fallbackSecond)
		mood := d.pick(moods, fallbackMood)
		visions = append(visions, fmt.Sprintf("Dream of %s meeting %s under %s; context: %s", first, second, mood, base))
	}
	return visions
}

func (d *DreamEngine) pick(options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	return options[d.rng.Intn(len(options))]
}
