// Package main is the batch validator for CHAOS files. By default it
// checks the document container format; with --lang it checks sources
// against the scripting language gate instead.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/format"
)

func main() {
	os.Exit(run())
}

func run() int {
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "print a line for each valid file")
	flag.BoolVar(&verbose, "verbose", false, "print a line for each valid file")
	dir := flag.String("dir", "", "validate all CHAOS files in a directory, recursive")
	requireConsent := flag.Bool("require-consent", false, "fail unless the consent field is 'explicit' (document mode)")
	failOnSensitive := flag.Bool("fail-on-sensitive", false, "fail when a file carries sensitive content (document mode)")
	langMode := flag.Bool("lang", false, "validate files as language scripts instead of documents")
	flag.Parse()

	var files []string
	if *dir != "" {
		info, err := os.Stat(*dir)
		if err != nil || !info.IsDir() {
			fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", *dir)
			return 1
		}
		files = append(files, findChaosFiles(*dir)...)
	}

	for _, arg := range flag.Args() {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			files = append(files, findChaosFiles(arg)...)
		case strings.ContainsAny(arg, "*?"):
			matches, err := filepath.Glob(arg)
			if err == nil {
				files = append(files, matches...)
			}
		default:
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No files to validate. Use --help for usage.")
		return 1
	}

	valid := 0
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✖ %s: File not found\n", path)
			continue
		}
		if info.IsDir() {
			fmt.Fprintf(os.Stderr, "✖ %s: Not a file\n", path)
			continue
		}

		if err := validateFile(path, *langMode, *requireConsent, *failOnSensitive); err != nil {
			fmt.Fprintf(os.Stderr, "✖ %s: %v\n", path, err)
			continue
		}
		if verbose {
			fmt.Printf("✔ %s\n", path)
		}
		valid++
	}

	if valid == len(files) {
		fmt.Printf("\n✓ All %d file(s) valid\n", valid)
		return 0
	}
	fmt.Fprintf(os.Stderr, "\n✖ %d/%d file(s) failed validation\n", len(files)-valid, len(files))
	return 1
}

// validateFile runs one file through the selected gate plus the optional
// header policies.
func validateFile(path string, langMode, requireConsent, failOnSensitive bool) error {
	if langMode {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		return chaos.Validate(string(data))
	}

	header, _, err := format.ParseFile(path)
	if err != nil {
		return err
	}
	if requireConsent {
		if consent := strings.TrimSpace(header.Get("consent")); consent != "explicit" {
			return fmt.Errorf("consent field is not 'explicit' (found: %q)", consent)
		}
	}
	if failOnSensitive {
		if sensitive := strings.TrimSpace(header.Get("sensitive")); sensitive == "pii" || sensitive == "trauma" {
			return fmt.Errorf("contains sensitive content (%s)", sensitive)
		}
	}
	return nil
}

// findChaosFiles collects .chaos and .sn files under root, sorted.
func findChaosFiles(root string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".chaos", ".sn":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}
