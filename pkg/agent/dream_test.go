package agent

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

func TestVisionsFallbacks(t *testing.T) {
	d := NewDreamEngine(7)
	visions := d.Visions(nil, nil, "", 2)

	want := "Dream of MEMORY meeting LIGHT under CALM; context: "
	if len(visions) != 2 {
		t.Fatalf("got %d visions, expected 2", len(visions))
	}
	for i, v := range visions {
		if v != want {
			t.Errorf("vision %d = %q, expected %q", i, v, want)
		}
	}
}

func TestVisionsSingleSymbolAndMood(t *testing.T) {
	// One symbol and one mood leave nothing to the draw.
	d := NewDreamEngine(123)
	visions := d.Visions(
		[]string{"EVENT"},
		[]chaos.Emotion{{Name: "JOY", Intensity: 7}},
		"Warm day.",
		1,
	)

	want := []string{"Dream of EVENT meeting EVENT under JOY; context: Warm day."}
	if !reflect.DeepEqual(visions, want) {
		t.Errorf("visions = %v, expected %v", visions, want)
	}
}

func TestVisionsSeedDeterminism(t *testing.T) {
	keys := []string{"OCEAN", "SHORE", "MOON"}
	emotions := []chaos.Emotion{
		{Name: "WONDER", Intensity: 5},
		{Name: "FEAR", Intensity: 6},
	}

	first := NewDreamEngine(42).Visions(keys, emotions, "Night tide.", 5)
	second := NewDreamEngine(42).Visions(keys, emotions, "Night tide.", 5)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed diverged:\n%v\n%v", first, second)
	}
}

func TestVisionsDrawFromInputs(t *testing.T) {
	keys := []string{"OCEAN", "SHORE"}
	emotions := []chaos.Emotion{{Name: "WONDER", Intensity: 5}}

	visions := NewDreamEngine(1).Visions(keys, emotions, "Night tide.", 10)
	for i, v := range visions {
		if !strings.Contains(v, "OCEAN") && !strings.Contains(v, "SHORE") {
			t.Errorf("vision %d = %q, expected a known symbol", i, v)
		}
		if !strings.Contains(v, "under WONDER") {
			t.Errorf("vision %d = %q, expected mood WONDER", i, v)
		}
		if !strings.HasSuffix(v, "context: Night tide.") {
			t.Errorf("vision %d = %q, expected the narrative as context", i, v)
		}
	}
}

func TestVisionsTruncatesLongNarrative(t *testing.T) {
	long := strings.Repeat("wave after wave ", 20) // well past the snippet limit
	visions := NewDreamEngine(9).Visions(nil, nil, long, 1)

	if len(visions) != 1 {
		t.Fatalf("got %d visions, expected 1", len(visions))
	}
	if !strings.HasSuffix(visions[0], "…") {
		t.Errorf("vision = %q, expected a truncated context", visions[0])
	}
}
