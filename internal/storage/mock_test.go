package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestMockStorage_SaveAndLoadSession(t *testing.T) {
	mock := NewMockStorage()
	ctx := context.Background()

	s := testSession()
	if err := mock.SaveSession(ctx, s.ID, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := mock.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected non-nil session")
	}
	if loaded.ID != s.ID {
		t.Errorf("Expected ID %v, got %v", s.ID, loaded.ID)
	}
	if loaded.Narrative != "Warm day." {
		t.Errorf("Expected narrative 'Warm day.', got %v", loaded.Narrative)
	}
}

func TestMockStorage_SaveNilSession(t *testing.T) {
	mock := NewMockStorage()
	if err := mock.SaveSession(context.Background(), uuid.New(), nil); err == nil {
		t.Error("Expected an error for nil session")
	}
}

func TestMockStorage_LoadMissingSession(t *testing.T) {
	mock := NewMockStorage()

	loaded, err := mock.LoadSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Expected no error for missing session, got: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil for missing session")
	}
}

func TestMockStorage_DeleteSession(t *testing.T) {
	mock := NewMockStorage()
	ctx := context.Background()

	s := testSession()
	if err := mock.SaveSession(ctx, s.ID, s); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}
	if err := mock.DeleteSession(ctx, s.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	loaded, err := mock.LoadSession(ctx, s.ID)
	if err != nil {
		t.Fatalf("Failed to load after delete: %v", err)
	}
	if loaded != nil {
		t.Error("Expected nil after delete")
	}
}

func TestMockStorage_PingError(t *testing.T) {
	mock := NewMockStorage()

	if err := mock.Ping(context.Background()); err != nil {
		t.Errorf("Expected ping to succeed by default: %v", err)
	}

	want := errors.New("connection refused")
	mock.SetPingError(want)
	if err := mock.Ping(context.Background()); !errors.Is(err, want) {
		t.Errorf("Expected injected ping error, got: %v", err)
	}
}

func TestMockStorage_Scripts(t *testing.T) {
	mock := NewMockStorage()
	ctx := context.Background()

	mock.AddScript("memory.chaos", "[EVENT]: memory\n[EMOTION:JOY:7]\n{ Warm day. }")
	mock.AddScript("tide.sn", "[PLACE]: shore\n[EMOTION:WONDER:5]\n{ Night tide. }")

	scripts, err := mock.ListScripts(ctx)
	if err != nil {
		t.Fatalf("Failed to list scripts: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 scripts, got %d", len(scripts))
	}
	if scripts["memory"] != "memory.chaos" {
		t.Errorf("Expected memory -> memory.chaos, got %v", scripts)
	}

	source, err := mock.GetScript(ctx, "tide.sn")
	if err != nil {
		t.Fatalf("Failed to get script: %v", err)
	}
	if source == "" {
		t.Error("Expected script source")
	}

	if _, err := mock.GetScript(ctx, "missing.chaos"); err == nil {
		t.Error("Expected an error for a missing script")
	}
}
