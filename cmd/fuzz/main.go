// Package main is the corpus fuzz runner: it batch-executes every CHAOS
// script in a directory, or the packaged corpus, and summarizes the
// outcomes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jwebster45206/chaos-engine/pkg/corpus"
	"github.com/jwebster45206/chaos-engine/pkg/scripts"
)

func main() {
	os.Exit(run())
}

func run() int {
	corpusDir := flag.String("corpus", "", "directory of CHAOS test files, empty runs the packaged corpus")
	verbose := flag.Bool("verbose", false, "show per-file execution detail")
	reportPath := flag.String("report", "", "save the detailed results to this JSON file")
	exitOnFailure := flag.Bool("exit-on-failure", false, "exit non-zero when any script fails")
	workers := flag.Int("workers", 0, "parallel workers, 0 uses the default")
	flag.Parse()

	ctx := context.Background()

	var results *corpus.Results
	var err error
	if *corpusDir != "" {
		if _, statErr := os.Stat(*corpusDir); statErr != nil {
			fmt.Fprintf(os.Stderr, "fuzz: corpus directory not found: %s\n", *corpusDir)
			return 1
		}
		results, err = corpus.RunDir(ctx, *corpusDir, *workers)
	} else {
		results, err = corpus.RunSources(ctx, scripts.Sources(), *workers)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fuzz: %v\n", err)
		return 1
	}

	printResults(results, *verbose)

	if *reportPath != "" {
		if err := results.Report().Write(*reportPath); err != nil {
			fmt.Fprintf(os.Stderr, "fuzz: %v\n", err)
			return 1
		}
		fmt.Printf("Report saved to: %s\n", *reportPath)
	}

	if *exitOnFailure && results.Failed > 0 {
		return 1
	}
	return 0
}

func printResults(results *corpus.Results, verbose bool) {
	if results.TotalFiles == 0 {
		fmt.Println("No test files found.")
		return
	}

	failures := make(map[string]string, len(results.Failures))
	names := make([]string, 0, results.TotalFiles)
	for name := range results.Environments {
		names = append(names, name)
	}
	for _, f := range results.Failures {
		names = append(names, f.File)
		failures[f.File] = f.Error
	}
	sort.Strings(names)

	fmt.Printf("Running fuzz tests on %d CHAOS files...\n\n", results.TotalFiles)
	for _, name := range names {
		if reason, failed := failures[name]; failed {
			fmt.Printf("✖ %s: %s\n", name, reason)
			continue
		}
		fmt.Printf("✔ %s\n", name)
		if verbose {
			env := results.Environments[name]
			fmt.Printf("   symbols: %d, emotions: %d\n", len(env.StructuredCore), len(env.EmotiveLayer))
		}
	}

	fmt.Println("\nFuzz summary:")
	fmt.Printf("  Total files: %d\n", results.TotalFiles)
	fmt.Printf("  Passed: %d\n", results.Passed)
	fmt.Printf("  Failed: %d\n", results.Failed)

	if len(results.Environments) > 0 {
		stats := results.Stats()
		fmt.Println("\nExecution statistics:")
		fmt.Printf("  Average symbols per program: %.1f\n", stats.AvgSymbols)
		fmt.Printf("  Average emotions per program: %.1f\n", stats.AvgEmotions)
		fmt.Printf("  Average narrative length: %.0f characters\n", stats.AvgNarrativeLength)
	}
}
