package chaos

// NodeKind identifies the shape of a parse tree node. The parser produces
// exactly these four kinds and nothing else.
type NodeKind uint8

const (
	NodeInvalid NodeKind = iota
	NodeProgram
	NodeStructuredCore
	NodeEmotiveLayer
	NodeChaosfield
)

func (k NodeKind) String() string {
	switch k {
	case NodeProgram:
		return "PROGRAM"
	case NodeStructuredCore:
		return "STRUCTURED_CORE"
	case NodeEmotiveLayer:
		return "EMOTIVE_LAYER"
	case NodeChaosfield:
		return "CHAOSFIELD_LAYER"
	default:
		return "INVALID"
	}
}

// Node is one parse tree node. Which payload field is meaningful depends on
// Kind: Pairs for a structured core, Emotions for an emotive layer, Text
// for a chaosfield layer, and Children for a program.
type Node struct {
	Kind     NodeKind
	Pairs    map[string]any
	Emotions []Emotion
	Text     string
	Children []*Node
}
