package agent

import (
	"testing"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

func TestStabilityOathMatch(t *testing.T) {
	tests := []struct {
		name     string
		emotions []chaos.Emotion
		expected int
	}{
		{
			name:     "fear and grief average",
			emotions: []chaos.Emotion{{Name: "FEAR", Intensity: 6}, {Name: "GRIEF", Intensity: 4}},
			expected: 5,
		},
		{
			name:     "fear alone",
			emotions: []chaos.Emotion{{Name: "FEAR", Intensity: 7}},
			expected: 3,
		},
		{
			name:     "unrelated emotions",
			emotions: []chaos.Emotion{{Name: "JOY", Intensity: 9}},
			expected: 0,
		},
		{
			name:     "no emotions",
			emotions: nil,
			expected: 0,
		},
	}

	oath := StabilityOath{}
	mem := NewMemory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := oath.Match(mem, tt.emotions); got != tt.expected {
				t.Errorf("match = %d, expected %d", got, tt.expected)
			}
		})
	}
}

func TestStabilityOathExecute(t *testing.T) {
	oath := StabilityOath{}
	result := oath.Execute(NewMemory(), []chaos.Emotion{{Name: "FEAR", Intensity: 6}, {Name: "GRIEF", Intensity: 4}})

	if result.Name != "oath.stability" {
		t.Errorf("name = %q, expected oath.stability", result.Name)
	}
	if result.Action != ActionStabilize {
		t.Errorf("action = %q, expected %q", result.Action, ActionStabilize)
	}
	if result.Details["affirmation"] != "You are safe." {
		t.Errorf("affirmation = %v, expected %q", result.Details["affirmation"], "You are safe.")
	}
}

func TestTransformationRitual(t *testing.T) {
	mem := NewMemory()
	mem.SetNarrative("The tide turned at dawn.")
	emotions := []chaos.Emotion{{Name: "HOPE", Intensity: 3}, {Name: "LOVE", Intensity: 4}}

	ritual := TransformationRitual{}
	if got := ritual.Match(mem, emotions); got != 7 {
		t.Fatalf("match = %d, expected 7", got)
	}

	result := ritual.Execute(mem, emotions)
	if result.Action != ActionTransform {
		t.Errorf("action = %q, expected %q", result.Action, ActionTransform)
	}
	if result.Details["pledge"] != "We move with care." {
		t.Errorf("pledge = %v, expected %q", result.Details["pledge"], "We move with care.")
	}
	if result.Details["source"] != "The tide turned at dawn." {
		t.Errorf("source = %v, expected the narrative verbatim", result.Details["source"])
	}
}

func TestRelationshipContractMatch(t *testing.T) {
	mem := NewMemory()
	mem.SetSymbol("EVENT", "memory")
	mem.SetSymbol("OBJECT:BOX", "ATTRIBUTE:WOOD")
	mem.SetSymbol("PLACE:SHORE", "near")

	contract := RelationshipContract{}
	emotions := []chaos.Emotion{{Name: "JOY", Intensity: 7}}

	// Two paired keys contribute 2 each on top of joy.
	if got := contract.Match(mem, emotions); got != 11 {
		t.Errorf("match = %d, expected 11", got)
	}
}

func TestRelationshipContractMatchCapped(t *testing.T) {
	mem := NewMemory()
	for i := 0; i < 50; i++ {
		mem.SetSymbol(string(rune('A'+i%26))+":"+string(rune('0'+i%10)), i)
	}
	contract := RelationshipContract{}
	emotions := []chaos.Emotion{{Name: "JOY", Intensity: 10}}

	if got := contract.Match(mem, emotions); got != 100 {
		t.Errorf("match = %d, expected 100 cap", got)
	}
}

func TestRegistrySingleCandidate(t *testing.T) {
	// Only the oath matches, so the draw has one candidate and the
	// outcome is the same for any seed.
	emotions := []chaos.Emotion{{Name: "FEAR", Intensity: 8}, {Name: "GRIEF", Intensity: 8}}
	for _, seed := range []int64{0, 1, 42, 99} {
		reg := NewRegistry(seed)
		result := reg.Evaluate(NewMemory(), emotions)
		if result == nil {
			t.Fatalf("seed %d: expected a result", seed)
		}
		if result.Name != "oath.stability" {
			t.Errorf("seed %d: winner = %q, expected oath.stability", seed, result.Name)
		}
		if result.Score != 58 {
			t.Errorf("seed %d: score = %d, expected 58", seed, result.Score)
		}
	}
}

func TestRegistryNoMatch(t *testing.T) {
	reg := NewRegistry(1)
	if result := reg.Evaluate(NewMemory(), nil); result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
}

func TestRegistrySeedDeterminism(t *testing.T) {
	mem := NewMemory()
	mem.SetSymbol("OBJECT:BOX", "ATTRIBUTE:WOOD")
	emotions := []chaos.Emotion{
		{Name: "FEAR", Intensity: 6},
		{Name: "GRIEF", Intensity: 6},
		{Name: "HOPE", Intensity: 5},
		{Name: "LOVE", Intensity: 5},
		{Name: "JOY", Intensity: 7},
	}

	first := NewRegistry(42).Evaluate(mem, emotions)
	second := NewRegistry(42).Evaluate(mem, emotions)
	if first == nil || second == nil {
		t.Fatal("expected results from both registries")
	}
	if first.Name != second.Name || first.Score != second.Score {
		t.Errorf("same seed diverged: %q/%d vs %q/%d", first.Name, first.Score, second.Name, second.Score)
	}

	valid := map[string]bool{
		"oath.stability":        true,
		"ritual.transformation": true,
		"contract.relationship": true,
	}
	if !valid[first.Name] {
		t.Errorf("winner = %q, expected a built-in protocol", first.Name)
	}
}
