package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePersonaFile(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "persona.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write persona file: %v", err)
	}
	return path
}

func TestLoadPersona(t *testing.T) {
	doc := `name: luna
seed: 42
composure: 30
stress_threshold: 15
temperament:
  resolve: 3
traits:
  steadfast: 2
triggers:
  - keyword: rain
    emotion: MELANCHOLY
    intensity: 4
transitions:
  MELANCHOLY: PEACE
`
	p, err := LoadPersona(writePersonaFile(t, doc))
	if err != nil {
		t.Fatalf("LoadPersona() error: %v", err)
	}

	if p.Name != "luna" {
		t.Errorf("name = %q, expected luna", p.Name)
	}
	if p.Seed != 42 {
		t.Errorf("seed = %d, expected 42", p.Seed)
	}
	if p.Composure != 30 {
		t.Errorf("composure = %d, expected 30", p.Composure)
	}
	if p.StressThreshold != 15 {
		t.Errorf("stress_threshold = %d, expected 15", p.StressThreshold)
	}
	if p.Temperament["resolve"] != 3 {
		t.Errorf("temperament = %v, expected resolve=3", p.Temperament)
	}
	if len(p.Triggers) != 1 || p.Triggers[0].Keyword != "rain" || p.Triggers[0].Emotion != "MELANCHOLY" || p.Triggers[0].Intensity != 4 {
		t.Errorf("triggers = %v, expected one rain trigger", p.Triggers)
	}
	if p.Transitions["MELANCHOLY"] != "PEACE" {
		t.Errorf("transitions = %v, expected MELANCHOLY -> PEACE", p.Transitions)
	}
}

func TestLoadPersonaAppliesDefaults(t *testing.T) {
	p, err := LoadPersona(writePersonaFile(t, "name: quiet\n"))
	if err != nil {
		t.Fatalf("LoadPersona() error: %v", err)
	}
	if p.Composure != 20 {
		t.Errorf("composure = %d, expected default 20", p.Composure)
	}
	if p.StressThreshold != 12 {
		t.Errorf("stress_threshold = %d, expected default 12", p.StressThreshold)
	}
	if p.Temperament["resolve"] != 2 {
		t.Errorf("temperament = %v, expected default resolve=2", p.Temperament)
	}
}

func TestLoadPersonaFailures(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing name",
			doc:  "composure: 10\n",
			want: "name is required",
		},
		{
			name: "negative composure",
			doc:  "name: x\ncomposure: -3\n",
			want: "composure must not be negative",
		},
		{
			name: "negative stress threshold",
			doc:  "name: x\nstress_threshold: -1\n",
			want: "stress_threshold must not be negative",
		},
		{
			name: "incomplete trigger",
			doc:  "name: x\ntriggers:\n  - keyword: rain\n",
			want: "trigger 0 needs both keyword and emotion",
		},
		{
			name: "not yaml",
			doc:  "{{{",
			want: "parse persona",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPersona(writePersonaFile(t, tt.doc))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, expected it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadPersonaMissingFile(t *testing.T) {
	_, err := LoadPersona(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !strings.Contains(err.Error(), "read persona") {
		t.Errorf("error = %q, expected a read failure", err)
	}
}
