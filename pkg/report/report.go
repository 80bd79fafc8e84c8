// Package report projects a script environment into an executive
// snapshot: normalized emotions, headline signals, and rendered lines
// for the CLI.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

const (
	narrativeLimit = 280
	renderWidth    = 76
)

// EmotionReading is one normalized emotive entry.
type EmotionReading struct {
	Name      string `json:"name"`
	Intensity int    `json:"intensity"`
}

// Snapshot is the business projection of one environment.
type Snapshot struct {
	Structured  map[string]any   `json:"structured"`
	Emotions    []EmotionReading `json:"emotions"`
	TopEmotion  string           `json:"top_emotion,omitempty"`
	Narrative   string           `json:"narrative"`
	Tags        []string         `json:"tags"`
	Insight     string           `json:"insight"`
	GeneratedAt string           `json:"generated_at,omitempty"`
}

// Options controls snapshot generation.
type Options struct {
	// IncludeTimestamp stamps the snapshot with the generation time in
	// RFC 3339. Off for reproducible output.
	IncludeTimestamp bool
}

// Generate projects an environment into a snapshot. A nil environment
// yields an empty snapshot.
func Generate(env *chaos.Environment, opts Options) Snapshot {
	if env == nil {
		env = chaos.NewEnvironment()
	}

	structured := make(map[string]any, len(env.StructuredCore))
	for k, v := range env.StructuredCore {
		structured[k] = v
	}

	emotions := normalizeEmotions(env.EmotiveLayer)
	narrative := chaos.Snippet(env.ChaosfieldLayer, narrativeLimit)

	topEmotion := ""
	if len(emotions) > 0 {
		topEmotion = emotions[0].Name
	}

	s := Snapshot{
		Structured: structured,
		Emotions:   emotions,
		TopEmotion: topEmotion,
		Narrative:  narrative,
		Tags:       collectTags(structured),
		Insight:    craftInsight(structured, topEmotion, narrative),
	}
	if opts.IncludeTimestamp {
		s.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return s
}

// RenderLines renders a snapshot into CLI-friendly lines. Body text wraps
// at a fixed width.
func RenderLines(s Snapshot) []string {
	titleCaser := cases.Title(language.English)

	top := "None"
	if s.TopEmotion != "" {
		top = titleCaser.String(strings.ToLower(s.TopEmotion))
	}
	generated := s.GeneratedAt
	if generated == "" {
		generated = "n/a"
	}

	lines := []string{
		"=== CHAOS Business Report ===",
		"Generated: " + generated,
		"Top emotion: " + top,
	}

	if len(s.Structured) > 0 {
		lines = append(lines, "-- Structured Core --")
		keys := make([]string, 0, len(s.Structured))
		for k := range s.Structured {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, s.Structured[k]))
		}
	}

	if len(s.Emotions) > 0 {
		lines = append(lines, "-- Emotive Layer --")
		for _, e := range s.Emotions {
			lines = append(lines, fmt.Sprintf("%s: %d", e.Name, e.Intensity))
		}
	}

	if s.Narrative != "" {
		lines = append(lines, "-- Chaosfield Narrative --")
		lines = append(lines, strings.Split(wordwrap.String(s.Narrative, renderWidth), "\n")...)
	}

	if s.Insight != "" {
		lines = append(lines, "-- Insight --")
		lines = append(lines, strings.Split(wordwrap.String(s.Insight, renderWidth), "\n")...)
	}

	return lines
}

// normalizeEmotions coerces raw emotive entries into a predictable
// shape: upper-case names, intensities clamped to 0..10, sorted by
// intensity descending then name.
func normalizeEmotions(raw []chaos.Emotion) []EmotionReading {
	out := make([]EmotionReading, 0, len(raw))
	for _, e := range raw {
		name := strings.ToUpper(strings.TrimSpace(e.Name))
		if name == "" {
			continue
		}
		out = append(out, EmotionReading{
			Name:      name,
			Intensity: chaos.Clamp(e.Intensity, 0, 10),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Intensity != out[j].Intensity {
			return out[i].Intensity > out[j].Intensity
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// collectTags keeps the structured keys that read as tags: at least one
// letter, none of them lower-case. Sorted for stable output.
func collectTags(structured map[string]any) []string {
	var tags []string
	for k := range structured {
		if isTagKey(k) {
			tags = append(tags, k)
		}
	}
	sort.Strings(tags)
	return tags
}

func isTagKey(k string) bool {
	hasLetter := false
	for _, r := range k {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

// craftInsight stitches the headline signals into one sentence.
func craftInsight(structured map[string]any, topEmotion, narrative string) string {
	account := firstValue(structured, "ACCOUNT", "ACCOUNT_ID", "CLIENT")
	stage := firstValue(structured, "STAGE", "STATUS")

	var pieces []string
	if account != "" {
		pieces = append(pieces, "Account "+account)
	}
	if stage != "" {
		pieces = append(pieces, "is at "+stage)
	}
	if topEmotion != "" {
		pieces = append(pieces, "feeling "+strings.ToLower(topEmotion))
	}

	summary := strings.Join(pieces, " ")
	if narrative != "" {
		if summary != "" {
			return summary + ". Narrative: " + narrative
		}
		return "Narrative: " + narrative
	}
	return summary
}

func firstValue(structured map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := structured[k]; ok && v != nil {
			s := fmt.Sprintf("%v", v)
			if s != "" {
				return s
			}
		}
	}
	return ""
}
