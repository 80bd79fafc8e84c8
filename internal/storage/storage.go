package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/pkg/session"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence and packaged
// script lookup
type Storage interface {
	HealthChecker
	Closer

	// SaveSession saves a session under its UUID
	SaveSession(ctx context.Context, id uuid.UUID, s *session.Session) error

	// LoadSession retrieves a session by UUID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.Session, error)

	// DeleteSession removes a session by UUID
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// ListScripts maps script names to paths under the scripts dir
	ListScripts(ctx context.Context) (map[string]string, error)

	// GetScript returns the source of one script by filename
	GetScript(ctx context.Context, filename string) (string, error)
}
