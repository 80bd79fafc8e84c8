package chaos

import "fmt"

// Emotion is one emotive-layer record: an upper-cased name with an
// intensity in [0,10].
type Emotion struct {
	Name      string `json:"name"`
	Intensity int    `json:"intensity"`
}

// Environment is the three-slot record handed to every downstream
// consumer. The JSON field names are an interchange contract and must not
// change.
type Environment struct {
	StructuredCore  map[string]any `json:"structured_core"`
	EmotiveLayer    []Emotion      `json:"emotive_layer"`
	ChaosfieldLayer string         `json:"chaosfield_layer"`
}

// NewEnvironment returns an empty environment with all three slots
// populated, so marshaling yields {}, [], and "" rather than null.
func NewEnvironment() *Environment {
	return &Environment{
		StructuredCore: make(map[string]any),
		EmotiveLayer:   make([]Emotion, 0),
	}
}

// BuildEnvironment maps a program node's children onto a fresh
// Environment. Each call allocates; nothing is shared between builds. A
// node kind outside the four parser-produced kinds is a programming bug
// and comes back as an error, never as a validation failure.
func BuildEnvironment(tree *Node) (*Environment, error) {
	if tree == nil || tree.Kind != NodeProgram {
		return nil, fmt.Errorf("environment: expected a %s node, got %s", NodeProgram, kindOf(tree))
	}
	if len(tree.Children) != layerCount {
		return nil, fmt.Errorf("environment: program has %d children, want %d", len(tree.Children), layerCount)
	}

	env := NewEnvironment()
	for _, child := range tree.Children {
		if child == nil {
			return nil, fmt.Errorf("environment: nil layer node")
		}
		switch child.Kind {
		case NodeStructuredCore:
			for k, v := range child.Pairs {
				env.StructuredCore[k] = v
			}
		case NodeEmotiveLayer:
			env.EmotiveLayer = append(env.EmotiveLayer, child.Emotions...)
		case NodeChaosfield:
			env.ChaosfieldLayer = child.Text
		default:
			return nil, fmt.Errorf("environment: unexpected %s node in layer position", child.Kind)
		}
	}
	return env, nil
}

func kindOf(n *Node) NodeKind {
	if n == nil {
		return NodeInvalid
	}
	return n.Kind
}
