// Package scripts bundles a small corpus of CHAOS scripts into the
// binary and resolves script paths against it. The packaged corpus is
// the fallback when a requested file does not exist on disk, and the
// default input for the fuzz runner.
package scripts

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed corpus
var corpusFS embed.FS

const corpusDir = "corpus"

// Historical corpus locations, stripped during resolution so old
// invocations keep working.
var corpusPrefixes = []string{"artifacts/corpus_sn/", "chaos_corpus/"}

// List returns the names of the packaged scripts, sorted.
func List() []string {
	entries, err := corpusFS.ReadDir(corpusDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Read returns the source of a packaged script by name.
func Read(name string) (string, error) {
	data, err := corpusFS.ReadFile(path.Join(corpusDir, name))
	if err != nil {
		return "", fmt.Errorf("packaged script %s: %w", name, err)
	}
	return string(data), nil
}

// Sources returns the whole packaged corpus keyed by script name.
func Sources() map[string]string {
	out := make(map[string]string)
	for _, name := range List() {
		source, err := Read(name)
		if err != nil {
			continue
		}
		out[name] = source
	}
	return out
}

// Resolve returns the script at p, falling back to the packaged corpus
// when the file does not exist on disk. Corpus-relative paths resolve to
// their packaged entries.
func Resolve(p string) (string, error) {
	if data, err := os.ReadFile(p); err == nil {
		return string(data), nil
	}

	name := filepath.ToSlash(p)
	for _, prefix := range corpusPrefixes {
		name = strings.TrimPrefix(name, prefix)
	}
	if source, err := Read(name); err == nil {
		return source, nil
	}
	return "", fmt.Errorf("script not found: %s", p)
}
