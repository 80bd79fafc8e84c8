// Package main is the interactive console for a local CHAOS agent: a
// terminal UI with a chat panel and an agent metadata panel, with
// optional Redis-backed session resume.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/internal/config"
	"github.com/jwebster45206/chaos-engine/internal/storage"
	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	persona := agent.DefaultPersona(cfg.AgentName)
	persona.Seed = cfg.AgentSeed
	if cfg.PersonaPath != "" {
		persona, err = agent.LoadPersona(cfg.PersonaPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load persona: %v\n", err)
			os.Exit(1)
		}
	}
	a, err := agent.FromPersona(persona)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build agent: %v\n", err)
		os.Exit(1)
	}

	// CHAOS_SESSION switches on Redis persistence: the session loads
	// before the UI starts and saves after it exits.
	var store *storage.RedisStorage
	var sess *session.Session
	if rawID := os.Getenv("CHAOS_SESSION"); rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid CHAOS_SESSION id: %v\n", err)
			os.Exit(1)
		}

		// Storage logs would tear up the terminal UI.
		quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
		store = storage.NewRedisStorage(cfg.RedisURL, cfg.ScriptsDir, cfg.SessionTTL, quiet)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sess, err = loadOrCreateSession(ctx, store, id, a)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resume session: %v\n", err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(NewConsoleUI(a, sess),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	if store != nil && sess != nil {
		sess.Capture(a)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.SaveSession(ctx, sess.ID, sess); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
		} else {
			fmt.Printf("Session %s saved.\n", sess.ID)
		}
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing storage: %v\n", err)
		}
	}
}

// loadOrCreateSession restores the session onto the agent when it
// exists, and otherwise starts a fresh one under the requested id.
func loadOrCreateSession(ctx context.Context, store *storage.RedisStorage, id uuid.UUID, a *agent.Agent) (*session.Session, error) {
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	sess, err := store.LoadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = session.New(a.Name())
		sess.ID = id
		return sess, nil
	}
	if err := sess.Apply(a); err != nil {
		return nil, err
	}
	return sess, nil
}
