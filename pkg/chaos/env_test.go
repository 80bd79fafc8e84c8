package chaos

import (
	"encoding/json"
	"testing"
)

func TestBuildEnvironmentSlots(t *testing.T) {
	tree := NewParser(Tokenize("")).Parse()
	env, err := BuildEnvironment(tree)
	if err != nil {
		t.Fatalf("BuildEnvironment() error: %v", err)
	}
	if env.StructuredCore == nil {
		t.Error("StructuredCore is nil, expected empty map")
	}
	if env.EmotiveLayer == nil {
		t.Error("EmotiveLayer is nil, expected empty slice")
	}
	if env.ChaosfieldLayer != "" {
		t.Errorf("ChaosfieldLayer = %q, expected empty", env.ChaosfieldLayer)
	}
}

func TestBuildEnvironmentRejectsBadTrees(t *testing.T) {
	tests := []struct {
		name string
		tree *Node
	}{
		{"nil tree", nil},
		{"non-program root", &Node{Kind: NodeStructuredCore}},
		{"too few children", &Node{Kind: NodeProgram, Children: []*Node{{Kind: NodeStructuredCore}}}},
		{"nil child", &Node{Kind: NodeProgram, Children: []*Node{nil, nil, nil}}},
		{"invalid child kind", &Node{Kind: NodeProgram, Children: []*Node{
			{Kind: NodeStructuredCore},
			{Kind: NodeInvalid},
			{Kind: NodeChaosfield},
		}}},
		{"nested program", &Node{Kind: NodeProgram, Children: []*Node{
			{Kind: NodeStructuredCore},
			{Kind: NodeProgram},
			{Kind: NodeChaosfield},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildEnvironment(tt.tree); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestBuildEnvironmentCopiesPairs(t *testing.T) {
	tree := NewParser(Tokenize("[KEY]: 1")).Parse()
	env, err := BuildEnvironment(tree)
	if err != nil {
		t.Fatalf("BuildEnvironment() error: %v", err)
	}
	tree.Children[0].Pairs["KEY"] = 99
	if env.StructuredCore["KEY"] != 1 {
		t.Errorf("environment shares state with the tree: KEY = %v", env.StructuredCore["KEY"])
	}
}

func TestEnvironmentJSONFieldNames(t *testing.T) {
	env := &Environment{
		StructuredCore:  map[string]any{"EVENT": "memory"},
		EmotiveLayer:    []Emotion{{Name: "JOY", Intensity: 7}},
		ChaosfieldLayer: "Warm day.",
	}
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	expected := `{"structured_core":{"EVENT":"memory"},"emotive_layer":[{"name":"JOY","intensity":7}],"chaosfield_layer":"Warm day."}`
	if string(data) != expected {
		t.Errorf("JSON = %s, expected %s", data, expected)
	}
}

func TestEmptyEnvironmentJSON(t *testing.T) {
	data, err := json.Marshal(NewEnvironment())
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	expected := `{"structured_core":{},"emotive_layer":[],"chaosfield_layer":""}`
	if string(data) != expected {
		t.Errorf("JSON = %s, expected %s", data, expected)
	}
}
