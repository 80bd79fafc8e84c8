package agent

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persona configures an agent from a YAML document: identity, a
// reproducible seed, the composure pool, and optional overrides for the
// trigger table and transition chain.
type Persona struct {
	Name            string            `yaml:"name"`
	Seed            int64             `yaml:"seed,omitempty"`
	Composure       int               `yaml:"composure,omitempty"`
	StressThreshold int               `yaml:"stress_threshold,omitempty"`
	Temperament     map[string]int    `yaml:"temperament,omitempty"`
	Traits          map[string]int    `yaml:"traits,omitempty"`
	Triggers        []Trigger         `yaml:"triggers,omitempty"`
	Transitions     map[string]string `yaml:"transitions,omitempty"`
}

// DefaultPersona is the configuration used when no persona file is given.
func DefaultPersona(name string) *Persona {
	return &Persona{
		Name:            name,
		Composure:       20,
		StressThreshold: 12,
		Temperament: map[string]int{
			"resolve":  2,
			"openness": 1,
			"patience": 1,
		},
	}
}

// LoadPersona reads and validates a persona YAML file. Zero-valued
// numeric fields fall back to the defaults.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona: %w", err)
	}
	p := &Persona{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse persona: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.applyDefaults()
	return p, nil
}

func (p *Persona) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("persona: name is required")
	}
	if p.Composure < 0 {
		return fmt.Errorf("persona: composure must not be negative")
	}
	if p.StressThreshold < 0 {
		return fmt.Errorf("persona: stress_threshold must not be negative")
	}
	for i, t := range p.Triggers {
		if t.Keyword == "" || t.Emotion == "" {
			return fmt.Errorf("persona: trigger %d needs both keyword and emotion", i)
		}
	}
	return nil
}

func (p *Persona) applyDefaults() {
	def := DefaultPersona(p.Name)
	if p.Composure == 0 {
		p.Composure = def.Composure
	}
	if p.StressThreshold == 0 {
		p.StressThreshold = def.StressThreshold
	}
	if len(p.Temperament) == 0 {
		p.Temperament = def.Temperament
	}
}
