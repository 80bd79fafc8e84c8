// Package main is the watch daemon: it re-validates and re-runs CHAOS
// scripts as they change on disk, feeding each one through a shared
// agent and appending outcomes to the action journal.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jwebster45206/chaos-engine/internal/config"
	"github.com/jwebster45206/chaos-engine/internal/logger"
	"github.com/jwebster45206/chaos-engine/internal/watch"
	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/journal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting CHAOS watch daemon",
		"environment", cfg.Environment,
		"scripts_dir", cfg.ScriptsDir)

	persona := agent.DefaultPersona(cfg.AgentName)
	persona.Seed = cfg.AgentSeed
	if cfg.PersonaPath != "" {
		persona, err = agent.LoadPersona(cfg.PersonaPath)
		if err != nil {
			log.Error("Failed to load persona", "error", err)
			os.Exit(1)
		}
	}
	a, err := agent.FromPersona(persona)
	if err != nil {
		log.Error("Failed to build agent", "error", err)
		os.Exit(1)
	}
	log.Info("Agent ready", "name", a.Name())

	var jw *journal.Writer
	if cfg.JournalPath != "" {
		jw, err = journal.NewWriter(cfg.JournalPath)
		if err != nil {
			log.Error("Failed to open journal", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := jw.Close(); err != nil {
				log.Error("Error closing journal", "error", err)
			}
		}()
		log.Info("Action journal enabled", "path", cfg.JournalPath)
	}

	runner := &scriptRunner{agent: a, journal: jw, logger: log}

	watcher, err := watch.New(cfg.ScriptsDir, runner.handle, log)
	if err != nil {
		log.Error("Failed to create watcher", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		log.Error("Failed to start watcher", "error", err)
		os.Exit(1)
	}
	log.Info("Watching for script changes...")

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Watch daemon shutdown signal received")

	watcher.Stop()

	stats := watcher.Stats()
	log.Info("Watch daemon exited",
		"runs", stats.RunsTriggered,
		"created", stats.FilesCreated,
		"modified", stats.FilesModified,
		"errors", stats.Errors)
}

// scriptRunner feeds changed scripts through the shared agent. The
// watcher loop delivers paths one at a time, so the agent needs no
// locking here.
type scriptRunner struct {
	agent   *agent.Agent
	journal *journal.Writer
	logger  *slog.Logger
}

func (r *scriptRunner) handle(ctx context.Context, path string) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("Failed to read script", "script", name, "error", err)
		return
	}
	source := string(data)

	if err := chaos.Validate(source); err != nil {
		r.logger.Warn("Script failed validation", "script", name, "error", err)
		r.record(journal.Entry{Source: name, Note: err.Error()})
		return
	}

	report, err := r.agent.Step(agent.StepInput{Script: source})
	if err != nil {
		r.logger.Error("Script run failed", "script", name, "error", err)
		r.record(journal.Entry{Source: name, Note: err.Error()})
		return
	}

	action := "idle"
	if report.Action != nil {
		action = report.Action.Kind
	}
	r.logger.Info("Script re-run",
		"script", name,
		"action", action,
		"emotions", len(report.Emotions),
		"symbols", len(report.Symbols),
		"composure", report.Composure)

	r.record(journal.Entry{
		Source:     name,
		Action:     action,
		TopEmotion: topEmotion(report.Emotions),
		Symbols:    len(report.Symbols),
	})
}

func (r *scriptRunner) record(e journal.Entry) {
	if r.journal == nil {
		return
	}
	if err := r.journal.Append(e); err != nil {
		r.logger.Error("Failed to append journal entry", "error", err)
	}
}

func topEmotion(emotions []chaos.Emotion) string {
	top := ""
	best := -1
	for _, e := range emotions {
		if e.Intensity > best {
			best = e.Intensity
			top = e.Name
		}
	}
	return top
}
