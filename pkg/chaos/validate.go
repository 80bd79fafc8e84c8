package chaos

import (
	"fmt"
	"strings"
)

// ValidationError reports a script rejected by Validate. Parsing itself
// never fails; skipped groups stay silent and only this gate turns
// structural or semantic problems into an error.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "chaos: validation failed: " + e.Reason
}

// ErrEmptyScript marks a source whose token stream holds nothing but the
// end token. It is reported distinctly so callers can tell "nothing there"
// apart from "something there, but broken".
var ErrEmptyScript = &ValidationError{Reason: "empty script: no content tokens"}

// Validate re-tokenizes and re-parses source as a strict pre-flight gate,
// independent of any later full run. The structural tier requires the
// fixed three-layer shape; the semantic tier requires each layer to carry
// well-formed content. It fails fast on the first offense.
func Validate(source string) error {
	tokens := Tokenize(source)
	if len(tokens) == 1 {
		return ErrEmptyScript
	}

	tree := NewParser(tokens).Parse()
	if len(tree.Children) != layerCount {
		return &ValidationError{Reason: fmt.Sprintf("program has %d layers, want %d", len(tree.Children), layerCount)}
	}
	order := []NodeKind{NodeStructuredCore, NodeEmotiveLayer, NodeChaosfield}
	for i, want := range order {
		if got := kindOf(tree.Children[i]); got != want {
			return &ValidationError{Reason: fmt.Sprintf("layer %d is %s, want %s", i, got, want)}
		}
	}

	env, err := BuildEnvironment(tree)
	if err != nil {
		return err
	}
	return ValidateEnvironment(env)
}

// ValidateEnvironment applies the semantic tier to a built environment:
// every layer must be non-empty, keys and emotion names non-blank, and
// intensities in range.
func ValidateEnvironment(env *Environment) error {
	if env == nil {
		return &ValidationError{Reason: "nil environment"}
	}
	if len(env.StructuredCore) == 0 {
		return &ValidationError{Reason: "structured_core is empty"}
	}
	for key := range env.StructuredCore {
		if strings.TrimSpace(key) == "" {
			return &ValidationError{Reason: "structured_core contains a blank key"}
		}
	}
	if len(env.EmotiveLayer) == 0 {
		return &ValidationError{Reason: "emotive_layer is empty"}
	}
	for i, emo := range env.EmotiveLayer {
		if strings.TrimSpace(emo.Name) == "" {
			return &ValidationError{Reason: fmt.Sprintf("emotive_layer[%d] has a blank name", i)}
		}
		if emo.Intensity < 0 || emo.Intensity > 10 {
			return &ValidationError{Reason: fmt.Sprintf("emotive_layer[%d] intensity %d out of range [0,10]", i, emo.Intensity)}
		}
	}
	if strings.TrimSpace(env.ChaosfieldLayer) == "" {
		return &ValidationError{Reason: "chaosfield_layer is blank"}
	}
	return nil
}
