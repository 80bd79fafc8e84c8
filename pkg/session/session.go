// Package session carries the durable snapshot of one agent between
// runs. Sessions are what the HTTP service and the console persist.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/pkg/agent"
)

// Session is one agent's saved state, keyed for storage.
type Session struct {
	ID    uuid.UUID `json:"id"`
	Agent string    `json:"agent"`

	agent.State

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates an empty session for the named agent.
func New(agentName string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		Agent:     agentName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FromAgent creates a session holding the agent's current state.
func FromAgent(a *agent.Agent) *Session {
	s := New(a.Name())
	s.Capture(a)
	return s
}

// Capture refreshes the snapshot from the agent.
func (s *Session) Capture(a *agent.Agent) {
	s.State = *a.ExportState()
	s.UpdatedAt = time.Now().UTC()
}

// Apply restores the snapshot onto the agent.
func (s *Session) Apply(a *agent.Agent) error {
	st := s.State
	return a.RestoreState(&st)
}
