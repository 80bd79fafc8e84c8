package agent

import (
	"fmt"

	"github.com/jwebster45206/d20"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// negativeEmotions strain composure when they accumulate.
var negativeEmotions = map[string]bool{
	"FEAR":    true,
	"GRIEF":   true,
	"ANXIETY": true,
	"SADNESS": true,
	"ANGER":   true,
}

// Psyche tracks the agent's composure on a d20 actor: the hit-point pool
// is composure, armor class is the stress threshold, temperament scores
// ride along as attributes, and persona traits as modifiers.
type Psyche struct {
	actor *d20.Actor
}

func NewPsyche(p *Persona) (*Psyche, error) {
	actor, err := d20.NewActor(p.Name).
		WithHP(p.Composure).
		WithAC(p.StressThreshold).
		WithAttributes(p.Temperament).
		WithCombatModifiers(p.Traits).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build psyche: %w", err)
	}
	return &Psyche{actor: actor}, nil
}

func (p *Psyche) Composure() int {
	return p.actor.HP()
}

func (p *Psyche) MaxComposure() int {
	return p.actor.MaxHP()
}

func (p *Psyche) StressThreshold() int {
	return p.actor.AC()
}

// Exhausted reports whether composure is fully spent.
func (p *Psyche) Exhausted() bool {
	return p.actor.HP() <= 0
}

// Strain lowers composure by amount, to a floor of zero.
func (p *Psyche) Strain(amount int) error {
	if amount <= 0 {
		return nil
	}
	return p.actor.SetHP(max(0, p.actor.HP()-amount))
}

// Rally restores composure by amount, up to the pool maximum.
func (p *Psyche) Rally(amount int) error {
	if amount <= 0 {
		return nil
	}
	return p.actor.SetHP(min(p.actor.MaxHP(), p.actor.HP()+amount))
}

// SetComposure overwrites composure, clamped to the pool bounds. Used
// when restoring a saved session.
func (p *Psyche) SetComposure(n int) error {
	return p.actor.SetHP(chaos.Clamp(n, 0, p.actor.MaxHP()))
}

// Absorb applies the stress of the active emotions: the summed intensity
// of negative emotions beyond the stress threshold strains composure.
func (p *Psyche) Absorb(emotions []chaos.Emotion) error {
	stress := 0
	for _, e := range emotions {
		if negativeEmotions[e.Name] {
			stress += e.Intensity
		}
	}
	if stress <= p.actor.AC() {
		return nil
	}
	return p.Strain(stress - p.actor.AC())
}

// Temperament returns a temperament score by name.
func (p *Psyche) Temperament(name string) (int, bool) {
	return p.actor.Attribute(name)
}

// Traits returns the persona trait modifiers carried on the actor.
func (p *Psyche) Traits() map[string]int {
	out := make(map[string]int)
	for _, mod := range p.actor.GetCombatModifiers() {
		out[mod.Reason] = mod.Value
	}
	return out
}
