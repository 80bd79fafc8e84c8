package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration test suites against a running engine API.
// Each suite steps one session from a client-generated id; the engine is
// deterministic for a fixed persona seed, so expectations are exact.
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner.
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Logger:            func(format string, args ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file.
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it is a
// sequence, returning one job per runnable case.
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursive, in case a sequence references another sequence.
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against one session.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	// A fresh well-formed id; the first exec step starts the session.
	sessionID := uuid.New()
	result.Session = sessionID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, sessionID, suite, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	// The session outlives its suite unless a reset ended it; clean up
	// so repeated runs never collide.
	_ = DeleteSession(ctx, r.Client, r.BaseURL, sessionID)

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a single step and checks its expectations. A
// ResetSessionSource step deletes the session and verifies it is gone.
func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, suite TestSuite, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{
		StepName: step.Name,
	}

	if step.Source == ResetSessionSource {
		if err := DeleteSession(ctx, r.Client, r.BaseURL, sessionID); err != nil {
			result.Error = fmt.Errorf("failed to reset session: %w", err)
			result.Duration = time.Since(start)
			return result
		}
		if _, found, err := GetSession(ctx, r.Client, r.BaseURL, sessionID); err != nil {
			result.Error = fmt.Errorf("failed to confirm reset: %w", err)
		} else if found {
			result.Error = fmt.Errorf("session still present after reset")
		}
		result.Success = result.Error == nil
		result.IsReset = true
		result.Duration = time.Since(start)
		return result
	}

	resp, err := PostExec(ctx, r.Client, r.BaseURL, step.Source, sessionID)
	if err != nil {
		result.Error = fmt.Errorf("exec failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	if resp.Report == nil {
		result.Error = fmt.Errorf("exec response carries no report")
		result.Duration = time.Since(start)
		return result
	}
	if resp.SessionID != sessionID.String() {
		result.Error = fmt.Errorf("exec answered for session %s, want %s", resp.SessionID, sessionID)
		result.Duration = time.Since(start)
		return result
	}
	if resp.Report.Action != nil {
		result.Action = resp.Report.Action.Kind
	}

	// Read the snapshot back so expectations can reach persisted state.
	sess, found, err := GetSession(ctx, r.Client, r.BaseURL, sessionID)
	if err != nil {
		result.Error = fmt.Errorf("failed to load session after exec: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	if !found {
		result.Error = fmt.Errorf("session missing after exec")
		result.Duration = time.Since(start)
		return result
	}
	if suite.Agent != "" && sess.Agent != suite.Agent {
		result.Error = fmt.Errorf("session agent %q, want %q", sess.Agent, suite.Agent)
		result.Duration = time.Since(start)
		return result
	}

	if err := checkExpectations(step.Expect, resp.Report, sess); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// checkExpectations validates the expectations against the step report
// and the persisted session.
func checkExpectations(exp Expectations, report *agent.Report, sess *session.Session) error {
	if exp.Action != nil {
		actual := ""
		if report.Action != nil {
			actual = report.Action.Kind
		}
		if actual != *exp.Action {
			return fmt.Errorf("expected action %q, got %q", *exp.Action, actual)
		}
	}

	if exp.TopEmotion != nil {
		if got := topEmotion(report.Emotions); got != *exp.TopEmotion {
			return fmt.Errorf("expected top emotion %s, got %s", *exp.TopEmotion, got)
		}
	}

	if len(exp.Emotions) > 0 {
		sums := make(map[string]int)
		for _, e := range report.Emotions {
			sums[e.Name] += e.Intensity
		}
		for name, want := range exp.Emotions {
			got, ok := sums[strings.ToUpper(name)]
			if !ok {
				return fmt.Errorf("expected emotion %s to be active, but it isn't. Active: %v", name, report.Emotions)
			}
			if got != want {
				return fmt.Errorf("expected emotion %s at %d, got %d", name, want, got)
			}
		}
	}

	if exp.EmotionCount != nil {
		if len(report.Emotions) != *exp.EmotionCount {
			return fmt.Errorf("expected %d active emotions, got %d: %v", *exp.EmotionCount, len(report.Emotions), report.Emotions)
		}
	}

	if len(exp.Symbols) > 0 {
		for key, want := range exp.Symbols {
			got, ok := report.Symbols[key]
			if !ok {
				return fmt.Errorf("expected symbol %s to exist, but it doesn't", key)
			}
			if fmt.Sprintf("%v", got) != want {
				return fmt.Errorf("expected symbol %s to be %q, got %q", key, want, fmt.Sprintf("%v", got))
			}
		}
	}

	if exp.SymbolCount != nil {
		if len(report.Symbols) != *exp.SymbolCount {
			return fmt.Errorf("expected %d symbols, got %d", *exp.SymbolCount, len(report.Symbols))
		}
	}

	if exp.Composure != nil {
		if report.Composure != *exp.Composure {
			return fmt.Errorf("expected composure %d, got %d", *exp.Composure, report.Composure)
		}
	}

	if exp.DreamCount != nil {
		if len(report.Dreams) != *exp.DreamCount {
			return fmt.Errorf("expected %d dreams, got %d", *exp.DreamCount, len(report.Dreams))
		}
	}

	if len(exp.NarrativeContains) > 0 {
		lowered := strings.ToLower(report.Narrative)
		for _, want := range exp.NarrativeContains {
			if !strings.Contains(lowered, strings.ToLower(want)) {
				return fmt.Errorf("expected narrative to contain %q, but it didn't", want)
			}
		}
	}

	if exp.Edges != nil {
		if len(sess.Edges) != *exp.Edges {
			return fmt.Errorf("expected %d graph edges, got %d: %v", *exp.Edges, len(sess.Edges), sess.Edges)
		}
	}

	return nil
}

// topEmotion mirrors the report summaries elsewhere: the first entry
// holding the highest intensity wins.
func topEmotion(emotions []chaos.Emotion) string {
	name := ""
	best := -1
	for _, e := range emotions {
		if e.Intensity > best {
			name = e.Name
			best = e.Intensity
		}
	}
	return name
}
