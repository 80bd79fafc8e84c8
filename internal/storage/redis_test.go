package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

func setupTestRedis(t *testing.T, scriptsDir string, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStorage(mr.Addr(), scriptsDir, ttl, logger)

	return store, mr
}

func testSession() *session.Session {
	s := session.New("dreamer")
	s.State = agent.State{
		Symbols:     map[string]any{"EVENT": "memory", "PLACE": "shore"},
		SymbolOrder: []string{"EVENT", "PLACE"},
		Emotions:    []chaos.Emotion{{Name: "JOY", Intensity: 6}},
		Narrative:   "Warm day.",
		Edges:       [][2]string{{"EVENT", "PLACE"}},
		Composure:   18,
	}
	return s
}

func TestRedisStorage_SaveAndLoadSession(t *testing.T) {
	store, mr := setupTestRedis(t, "", 0)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	s := testSession()

	if err := store.SaveSession(ctx, s.ID, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := store.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil session")
	}

	if loaded.ID != s.ID {
		t.Errorf("Expected ID %v, got %v", s.ID, loaded.ID)
	}
	if loaded.Agent != "dreamer" {
		t.Errorf("Expected agent 'dreamer', got %v", loaded.Agent)
	}
	if !reflect.DeepEqual(loaded.Symbols, s.Symbols) {
		t.Errorf("Expected symbols %v, got %v", s.Symbols, loaded.Symbols)
	}
	if !reflect.DeepEqual(loaded.Emotions, s.Emotions) {
		t.Errorf("Expected emotions %v, got %v", s.Emotions, loaded.Emotions)
	}
	if loaded.Narrative != "Warm day." {
		t.Errorf("Expected narrative 'Warm day.', got %v", loaded.Narrative)
	}
	if !reflect.DeepEqual(loaded.Edges, s.Edges) {
		t.Errorf("Expected edges %v, got %v", s.Edges, loaded.Edges)
	}
	if loaded.Composure != 18 {
		t.Errorf("Expected composure 18, got %d", loaded.Composure)
	}
}

func TestRedisStorage_LoadMissingSession(t *testing.T) {
	store, mr := setupTestRedis(t, "", 0)
	defer mr.Close()
	defer store.Close()

	loaded, err := store.LoadSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing session, got: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil for missing session, got %+v", loaded)
	}
}

func TestRedisStorage_DeleteSession(t *testing.T) {
	store, mr := setupTestRedis(t, "", 0)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	s := testSession()

	if err := store.SaveSession(ctx, s.ID, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := store.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := store.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load after delete: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil after delete")
	}
}

func TestRedisStorage_SessionTTL(t *testing.T) {
	store, mr := setupTestRedis(t, "", 30*time.Minute)
	defer mr.Close()
	defer store.Close()

	s := testSession()
	if err := store.SaveSession(context.Background(), s.ID, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	ttl := mr.TTL("session:" + s.ID.String())
	if ttl != 30*time.Minute {
		t.Errorf("Expected TTL 30m, got %v", ttl)
	}
}

func TestRedisStorage_Ping(t *testing.T) {
	store, mr := setupTestRedis(t, "", 0)
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping to succeed: %v", err)
	}

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Error("Expected ping to fail after server shutdown")
	}
}

func TestRedisStorage_Scripts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"memory.chaos": "[EVENT]: memory\n[EMOTION:JOY:7]\n{ Warm day. }",
		"tide.sn":      "[PLACE]: shore\n[EMOTION:WONDER:5]\n{ Night tide. }",
		"notes.txt":    "not a script",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}
	}

	store, mr := setupTestRedis(t, dir, 0)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	scripts, err := store.ListScripts(ctx)
	if err != nil {
		t.Fatalf("Failed to list scripts: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 scripts, got %d: %v", len(scripts), scripts)
	}
	for _, name := range []string{"memory", "tide"} {
		if _, ok := scripts[name]; !ok {
			t.Errorf("Expected script %q in listing: %v", name, scripts)
		}
	}

	source, err := store.GetScript(ctx, "memory.chaos")
	if err != nil {
		t.Fatalf("Failed to get script: %v", err)
	}
	if source != files["memory.chaos"] {
		t.Errorf("Expected script source %q, got %q", files["memory.chaos"], source)
	}

	if _, err := store.GetScript(ctx, "missing.chaos"); err == nil {
		t.Error("Expected an error for a missing script")
	} else if !strings.Contains(err.Error(), "script not found") {
		t.Errorf("Expected 'script not found' error, got: %v", err)
	}
}
