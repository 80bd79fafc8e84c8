// Package corpus batch-executes CHAOS scripts and aggregates the
// outcomes: the fuzz runner's engine.
package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

const defaultWorkers = 4

// Failure records one script that did not survive validate and run.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// Results aggregates one corpus run.
type Results struct {
	TotalFiles   int                           `json:"total_files"`
	Passed       int                           `json:"passed"`
	Failed       int                           `json:"failed"`
	Failures     []Failure                     `json:"failures"`
	Environments map[string]*chaos.Environment `json:"environments"`
}

// Stats are per-program averages over the passing environments.
type Stats struct {
	AvgSymbols         float64
	AvgEmotions        float64
	AvgNarrativeLength float64
}

// Summary is the headline block of a written report.
type Summary struct {
	SuccessRate   float64 `json:"success_rate"`
	TotalExecuted int     `json:"total_executed"`
}

// Report is the JSON document the fuzz CLI writes.
type Report struct {
	Timestamp   string   `json:"timestamp"`
	TestResults *Results `json:"test_results"`
	Summary     Summary  `json:"summary"`
}

// RunDir executes every .sn and .chaos file in dir. Files that cannot
// be read count as failures rather than aborting the run.
func RunDir(ctx context.Context, dir string, workers int) (*Results, error) {
	var files []string
	for _, pattern := range []string{"*.sn", "*.chaos"} {
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	sources := make(map[string]string, len(files))
	var readFailures []Failure
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			readFailures = append(readFailures, Failure{File: filepath.Base(f), Error: err.Error()})
			continue
		}
		sources[filepath.Base(f)] = string(data)
	}

	results, err := RunSources(ctx, sources, workers)
	results.TotalFiles += len(readFailures)
	results.Failed += len(readFailures)
	results.Failures = append(results.Failures, readFailures...)
	sortFailures(results.Failures)
	return results, err
}

// RunSources executes scripts keyed by name, in parallel up to workers.
// Script failures land in Results; the returned error reports only
// context cancellation.
func RunSources(ctx context.Context, sources map[string]string, workers int) (*Results, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := &Results{
		TotalFiles:   len(sources),
		Failures:     []Failure{},
		Environments: make(map[string]*chaos.Environment),
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for _, name := range names {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			env, runErr := execute(sources[name])

			mu.Lock()
			defer mu.Unlock()
			if runErr != nil {
				results.Failed++
				results.Failures = append(results.Failures, Failure{File: name, Error: runErr.Error()})
				return nil
			}
			results.Passed++
			results.Environments[name] = env
			return nil
		})
	}

	err := eg.Wait()
	sortFailures(results.Failures)
	return results, err
}

func execute(source string) (*chaos.Environment, error) {
	if err := chaos.Validate(source); err != nil {
		return nil, err
	}
	return chaos.Run(source)
}

func sortFailures(failures []Failure) {
	sort.Slice(failures, func(i, j int) bool { return failures[i].File < failures[j].File })
}

// Stats computes averages over the passing environments.
func (r *Results) Stats() Stats {
	n := len(r.Environments)
	if n == 0 {
		return Stats{}
	}
	var symbols, emotions, narrative int
	for _, env := range r.Environments {
		symbols += len(env.StructuredCore)
		emotions += len(env.EmotiveLayer)
		narrative += utf8.RuneCountInString(env.ChaosfieldLayer)
	}
	return Stats{
		AvgSymbols:         float64(symbols) / float64(n),
		AvgEmotions:        float64(emotions) / float64(n),
		AvgNarrativeLength: float64(narrative) / float64(n),
	}
}

// Report wraps the results into the writable document.
func (r *Results) Report() *Report {
	total := r.TotalFiles
	if total < 1 {
		total = 1
	}
	return &Report{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		TestResults: r,
		Summary: Summary{
			SuccessRate:   float64(r.Passed) / float64(total),
			TotalExecuted: r.TotalFiles,
		},
	}
}

// Write saves the report as indented JSON.
func (rep *Report) Write(path string) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
