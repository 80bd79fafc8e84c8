package report

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

func TestGenerateHighlightsTopEmotion(t *testing.T) {
	env, err := chaos.Run("[ACCOUNT]: A-19\n[STAGE]: Negotiation\n[EMOTION:JOY:8]\n[EMOTION:FEAR:2]\n{Momentum is strong; keep the executive briefing tight.}\n")
	if err != nil {
		t.Fatalf("chaos.Run() error: %v", err)
	}

	s := Generate(env, Options{})

	if s.TopEmotion != "JOY" {
		t.Errorf("top emotion = %q, expected JOY", s.TopEmotion)
	}
	wantEmotions := []EmotionReading{{Name: "JOY", Intensity: 8}, {Name: "FEAR", Intensity: 2}}
	if !reflect.DeepEqual(s.Emotions, wantEmotions) {
		t.Errorf("emotions = %v, expected %v", s.Emotions, wantEmotions)
	}
	if s.Structured["ACCOUNT"] != "A-19" {
		t.Errorf("structured = %v, expected ACCOUNT=A-19", s.Structured)
	}
	if !reflect.DeepEqual(s.Tags, []string{"ACCOUNT", "STAGE"}) {
		t.Errorf("tags = %v, expected [ACCOUNT STAGE]", s.Tags)
	}
	wantInsight := "Account A-19 is at Negotiation feeling joy. Narrative: Momentum is strong keep the executive briefing tight."
	if s.Insight != wantInsight {
		t.Errorf("insight = %q, expected %q", s.Insight, wantInsight)
	}
	if s.GeneratedAt != "" {
		t.Errorf("generated_at = %q, expected empty without timestamp option", s.GeneratedAt)
	}

	lines := RenderLines(s)
	joined := strings.Join(lines, "\n")
	for _, fragment := range []string{"JOY: 8", "Momentum is strong", "Top emotion: Joy"} {
		if !strings.Contains(joined, fragment) {
			t.Errorf("rendered lines missing %q:\n%s", fragment, joined)
		}
	}
}

func TestGenerateTimestamp(t *testing.T) {
	s := Generate(chaos.NewEnvironment(), Options{IncludeTimestamp: true})
	if s.GeneratedAt == "" {
		t.Fatal("expected a generation timestamp")
	}
	if _, err := time.Parse(time.RFC3339, s.GeneratedAt); err != nil {
		t.Errorf("generated_at = %q, expected RFC 3339: %v", s.GeneratedAt, err)
	}
}

func TestGenerateEmptyEnvironment(t *testing.T) {
	s := Generate(nil, Options{})

	if s.TopEmotion != "" {
		t.Errorf("top emotion = %q, expected empty", s.TopEmotion)
	}
	if len(s.Emotions) != 0 {
		t.Errorf("emotions = %v, expected none", s.Emotions)
	}
	if s.Insight != "" {
		t.Errorf("insight = %q, expected empty", s.Insight)
	}

	want := []string{
		"=== CHAOS Business Report ===",
		"Generated: n/a",
		"Top emotion: None",
	}
	if got := RenderLines(s); !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %v, expected %v", got, want)
	}
}

func TestNormalizeEmotions(t *testing.T) {
	env := chaos.NewEnvironment()
	env.EmotiveLayer = []chaos.Emotion{
		{Name: "  calm ", Intensity: 5},
		{Name: "", Intensity: 9},
		{Name: "anger", Intensity: 5},
		{Name: "DREAD", Intensity: 15},
		{Name: "GLOOM", Intensity: -2},
	}

	s := Generate(env, Options{})

	want := []EmotionReading{
		{Name: "DREAD", Intensity: 10},
		{Name: "ANGER", Intensity: 5},
		{Name: "CALM", Intensity: 5},
		{Name: "GLOOM", Intensity: 0},
	}
	if !reflect.DeepEqual(s.Emotions, want) {
		t.Errorf("emotions = %v, expected %v", s.Emotions, want)
	}
	if s.TopEmotion != "DREAD" {
		t.Errorf("top emotion = %q, expected DREAD", s.TopEmotion)
	}
}

func TestTagKeys(t *testing.T) {
	env := chaos.NewEnvironment()
	env.StructuredCore = map[string]any{
		"EVENT":    "memory",
		"Event":    "mixed case",
		"WARM_DAY": true,
		"A1":       1,
		"123":      "digits only",
	}

	s := Generate(env, Options{})

	want := []string{"A1", "EVENT", "WARM_DAY"}
	if !reflect.DeepEqual(s.Tags, want) {
		t.Errorf("tags = %v, expected %v", s.Tags, want)
	}
}

func TestRenderLinesStructuredOrder(t *testing.T) {
	env := chaos.NewEnvironment()
	env.StructuredCore = map[string]any{"STATUS": "open", "ACCOUNT": "ACME", "COUNT": 3}

	lines := RenderLines(Generate(env, Options{}))

	var structured []string
	for _, line := range lines {
		if line == "-- Insight --" {
			break
		}
		if strings.Contains(line, ": ") && !strings.HasPrefix(line, "Generated") && !strings.HasPrefix(line, "Top emotion") {
			structured = append(structured, line)
		}
	}
	want := []string{"ACCOUNT: ACME", "COUNT: 3", "STATUS: open"}
	if !reflect.DeepEqual(structured, want) {
		t.Errorf("structured lines = %v, expected sorted %v", structured, want)
	}
}
