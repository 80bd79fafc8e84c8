package runner

import (
	"time"

	"github.com/google/uuid"
)

// ResetSessionSource is the step source value that deletes the suite's
// session instead of executing a script. The next exec step starts fresh
// under the same id. Reset steps carry no expectations.
const ResetSessionSource = "RESET_SESSION"

// TestSuite defines a complete integration test case. A regular case
// carries Steps; a sequence references other case files instead.
type TestSuite struct {
	Name  string     `json:"name"`
	Agent string     `json:"agent,omitempty"` // expected persona name on the session
	Steps []TestStep `json:"steps,omitempty"`
	Cases []string   `json:"cases,omitempty"`
}

// IsSequence returns true if this suite sequences other case files.
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one script execution and the expected outcomes.
// Use source: "RESET_SESSION" to delete the session mid-suite.
type TestStep struct {
	Name   string       `json:"name,omitempty"`
	Source string       `json:"source"`
	Expect Expectations `json:"expect"`
}

// Expectations defines what to check after a step executes. All fields
// are optional; absent fields are not checked.
type Expectations struct {
	// Report properties, aligned with the agent step report.
	Action       *string           `json:"action,omitempty"`        // expected action kind; "" asserts no action
	TopEmotion   *string           `json:"top_emotion,omitempty"`   // first entry holding the highest intensity
	Emotions     map[string]int    `json:"emotions,omitempty"`      // name to summed active intensity
	EmotionCount *int              `json:"emotion_count,omitempty"` // active stack entries after the step
	Symbols      map[string]string `json:"symbols,omitempty"`       // listed keys must hold exactly these values
	SymbolCount  *int              `json:"symbol_count,omitempty"`
	Composure    *int              `json:"composure,omitempty"`
	DreamCount   *int              `json:"dream_count,omitempty"`

	// Narrative analysis, matched case-insensitively.
	NarrativeContains []string `json:"narrative_contains,omitempty"`

	// Session properties, read back from storage after the step.
	Edges *int `json:"edges,omitempty"` // relation graph edge count
}

// TestResult contains the outcome of running a single step.
type TestResult struct {
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Action   string // action kind the step produced, for logging
	IsReset  bool   // true for RESET_SESSION steps
}

// TestJob is one loaded suite ready to run.
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire suite.
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // id of the session used for this run
}
