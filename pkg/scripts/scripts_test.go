package scripts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

func TestListPackagedScripts(t *testing.T) {
	names := List()
	if len(names) < 5 {
		t.Fatalf("got %d packaged scripts, expected at least 5", len(names))
	}
	for i, name := range names {
		if !strings.HasSuffix(name, ".chaos") && !strings.HasSuffix(name, ".sn") {
			t.Errorf("script %q has an unexpected extension", name)
		}
		if i > 0 && names[i-1] > name {
			t.Errorf("names not sorted: %q before %q", names[i-1], name)
		}
	}
}

func TestEveryPackagedScriptIsValid(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			source, err := Read(name)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}
			if err := chaos.Validate(source); err != nil {
				t.Errorf("packaged script failed validation: %v", err)
			}
		})
	}
}

func TestResolveDiskFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.chaos")
	want := "[EVENT]: local\n[EMOTION:CALM:5]\n{ From disk. }\n"
	if err := os.WriteFile(path, []byte(want), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != want {
		t.Errorf("resolved %q, expected the disk content", got)
	}
}

func TestResolvePackagedFallback(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "bare name", path: "warm_day.chaos"},
		{name: "legacy artifacts prefix", path: "artifacts/corpus_sn/warm_day.chaos"},
		{name: "legacy corpus prefix", path: "chaos_corpus/warm_day.chaos"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := Resolve(tt.path)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if !strings.Contains(source, "[EVENT]: memory") {
				t.Errorf("resolved %q, expected the packaged canonical script", source)
			}
		})
	}
}

func TestResolveMissing(t *testing.T) {
	if _, err := Resolve("no/such/script.chaos"); err == nil {
		t.Error("expected an error for an unresolvable path")
	}
}
