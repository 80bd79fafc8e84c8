package chaos

import (
	"reflect"
	"testing"
)

// parseLayers parses src and returns the three layer nodes, failing the
// test if the program shape is wrong.
func parseLayers(t *testing.T, src string) (*Node, *Node, *Node) {
	t.Helper()
	tree := NewParser(Tokenize(src)).Parse()
	if tree.Kind != NodeProgram {
		t.Fatalf("root kind = %s, expected PROGRAM", tree.Kind)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("program has %d children, expected 3", len(tree.Children))
	}
	return tree.Children[0], tree.Children[1], tree.Children[2]
}

func TestParseEmptyInput(t *testing.T) {
	core, emotive, field := parseLayers(t, "")
	if core.Kind != NodeStructuredCore || len(core.Pairs) != 0 {
		t.Errorf("structured core = %s with %d pairs, expected empty STRUCTURED_CORE", core.Kind, len(core.Pairs))
	}
	if emotive.Kind != NodeEmotiveLayer || len(emotive.Emotions) != 0 {
		t.Errorf("emotive layer = %s with %d emotions, expected empty EMOTIVE_LAYER", emotive.Kind, len(emotive.Emotions))
	}
	if field.Kind != NodeChaosfield || field.Text != "" {
		t.Errorf("chaosfield = %s %q, expected empty CHAOSFIELD_LAYER", field.Kind, field.Text)
	}
}

func TestParseFixedChildOrder(t *testing.T) {
	// Authoring order is narrative first; output order must not follow it.
	src := "{ the tale comes first }\n[EMOTION:JOY:2]\n[KEY]: 1"
	core, emotive, field := parseLayers(t, src)
	if core.Kind != NodeStructuredCore {
		t.Errorf("child 0 = %s, expected STRUCTURED_CORE", core.Kind)
	}
	if emotive.Kind != NodeEmotiveLayer {
		t.Errorf("child 1 = %s, expected EMOTIVE_LAYER", emotive.Kind)
	}
	if field.Kind != NodeChaosfield {
		t.Errorf("child 2 = %s, expected CHAOSFIELD_LAYER", field.Kind)
	}
	if core.Pairs["KEY"] != 1 {
		t.Errorf("KEY = %v, expected 1", core.Pairs["KEY"])
	}
	if len(emotive.Emotions) != 1 || emotive.Emotions[0].Name != "JOY" {
		t.Errorf("emotions = %v, expected [JOY]", emotive.Emotions)
	}
	if field.Text != "the tale comes first" {
		t.Errorf("narrative = %q", field.Text)
	}
}

func TestParseStructuredValues(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		key   string
		value any
	}{
		{"quoted string", `[NAME]: "Ada"`, "NAME", "Ada"},
		{"identifier", "[EVENT]: memory", "EVENT", "memory"},
		{"number", "[COUNT]: 42", "COUNT", 42},
		{"negative number", "[DELTA]: -3", "DELTA", -3},
		{"boolean true", "[ACTIVE]: TRUE", "ACTIVE", true},
		{"boolean false mixed case", "[ACTIVE]: False", "ACTIVE", false},
		{"null", "[GONE]: null", "GONE", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, _, _ := parseLayers(t, tt.src)
			got, present := core.Pairs[tt.key]
			if !present {
				t.Fatalf("key %q missing from %v", tt.key, core.Pairs)
			}
			if !reflect.DeepEqual(got, tt.value) {
				t.Errorf("%s = %v (%T), expected %v (%T)", tt.key, got, got, tt.value, tt.value)
			}
		})
	}
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	core, _, _ := parseLayers(t, "[KEY]: 1\n[KEY]: 2")
	if core.Pairs["KEY"] != 2 {
		t.Errorf("KEY = %v, expected 2", core.Pairs["KEY"])
	}
}

func TestParseTripletKeyedPair(t *testing.T) {
	core, emotive, _ := parseLayers(t, "[OBJECT:BOX]: [ATTRIBUTE:WOOD]")
	want := map[string]any{"OBJECT:BOX": "ATTRIBUTE:WOOD"}
	if !reflect.DeepEqual(core.Pairs, want) {
		t.Errorf("pairs = %v, expected %v", core.Pairs, want)
	}
	if len(emotive.Emotions) != 0 {
		t.Errorf("emotions = %v, expected none", emotive.Emotions)
	}
}

func TestParseRoutedGroupsNeverBecomeKeys(t *testing.T) {
	src := "[EMOTION:JOY:7]\n[SYMBOL:OCEAN]\n[RELATIONSHIP:MOTHER:CHILD]"
	core, emotive, _ := parseLayers(t, src)
	if len(core.Pairs) != 0 {
		t.Errorf("structured core claimed a routed group: %v", core.Pairs)
	}
	// Only EMOTION is retained; SYMBOL and RELATIONSHIP are consumed
	// without being recorded.
	if len(emotive.Emotions) != 1 {
		t.Fatalf("emotions = %v, expected exactly JOY", emotive.Emotions)
	}
	if emotive.Emotions[0].Name != "JOY" || emotive.Emotions[0].Intensity != 7 {
		t.Errorf("emotion = %+v, expected JOY/7", emotive.Emotions[0])
	}
}

func TestParseRoutedGroupInValuePosition(t *testing.T) {
	// The pair is refused rather than swallowing a group the emotive
	// scan will claim.
	core, emotive, _ := parseLayers(t, "[KEY]: [EMOTION:FEAR:3]")
	if len(core.Pairs) != 0 {
		t.Errorf("pairs = %v, expected none", core.Pairs)
	}
	if len(emotive.Emotions) != 1 || emotive.Emotions[0].Name != "FEAR" || emotive.Emotions[0].Intensity != 3 {
		t.Errorf("emotions = %v, expected [FEAR/3]", emotive.Emotions)
	}
}

func TestParseEmotionIntensityVariants(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		emotion   string
		intensity int
	}{
		{"explicit value", "[EMOTION:JOY:7]", "JOY", 7},
		{"absent value defaults", "[EMOTION:JOY]", "JOY", 5},
		{"clamped high", "[EMOTION:JOY:15]", "JOY", 10},
		{"clamped low", "[EMOTION:SADNESS:-3]", "SADNESS", 0},
		{"non-numeric value defaults", "[EMOTION:CALM:high]", "CALM", 5},
		{"lowercase kind upper-cased", "[EMOTION:calm:2]", "CALM", 2},
		{"embedded digits extracted", "[EMOTION:JOY:approx7]", "JOY", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, emotive, _ := parseLayers(t, tt.src)
			if len(emotive.Emotions) != 1 {
				t.Fatalf("emotions = %v, expected one", emotive.Emotions)
			}
			got := emotive.Emotions[0]
			if got.Name != tt.emotion || got.Intensity != tt.intensity {
				t.Errorf("got %s/%d, expected %s/%d", got.Name, got.Intensity, tt.emotion, tt.intensity)
			}
		})
	}
}

func TestParseChaosfieldVariants(t *testing.T) {
	tests := []struct {
		name string
		src  string
		text string
	}{
		{"no braces", "[KEY]: 1", ""},
		{"simple narrative", "{ Warm day. }", "Warm day."},
		{"empty block", "{}", ""},
		{"only first block honored", "{ first } { second }", "first"},
		{"unterminated keeps partial text", "{ partial tale", "partial tale"},
		{"string literal verbatim", `{ "A quiet, exact phrase" }`, "A quiet, exact phrase"},
		{"mixed literals stringified", "{ count 3 true }", "count 3 true"},
		{"null adds nothing", "{ null void }", "void"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, field := parseLayers(t, tt.src)
			if field.Text != tt.text {
				t.Errorf("narrative = %q, expected %q", field.Text, tt.text)
			}
		})
	}
}

func TestParseMalformedInputTerminates(t *testing.T) {
	// None of these are valid shapes; parsing must still finish with the
	// fixed three-child program.
	inputs := []string{
		"[",
		"[:",
		"[]:",
		"[A",
		"[A]",
		"[A]:",
		"[A:B",
		"[[A]]: 1",
		"]]]",
		"::::",
		"{",
		"}",
		"[KEY]: [never closed",
		"[EMOTION:JOY:7.5]",
	}
	for _, src := range inputs {
		tree := NewParser(Tokenize(src)).Parse()
		if len(tree.Children) != 3 {
			t.Errorf("Parse(%q) produced %d children, expected 3", src, len(tree.Children))
		}
	}
}

func TestParseInterleavedLayers(t *testing.T) {
	src := "[SCENE]: shore\n[EMOTION:WONDER:6]\n[TIDE]: low\n{ The ocean breathing. }\n[EMOTION:CALM:4]"
	core, emotive, field := parseLayers(t, src)

	wantCore := map[string]any{"SCENE": "shore", "TIDE": "low"}
	if !reflect.DeepEqual(core.Pairs, wantCore) {
		t.Errorf("pairs = %v, expected %v", core.Pairs, wantCore)
	}
	wantEmotions := []Emotion{{Name: "WONDER", Intensity: 6}, {Name: "CALM", Intensity: 4}}
	if !reflect.DeepEqual(emotive.Emotions, wantEmotions) {
		t.Errorf("emotions = %v, expected %v", emotive.Emotions, wantEmotions)
	}
	if field.Text != "The ocean breathing." {
		t.Errorf("narrative = %q", field.Text)
	}
}
