// Package main is the CHAOS language service: validation and execution
// endpoints over HTTP, with Redis-backed sessions.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/chaos-engine/internal/config"
	"github.com/jwebster45206/chaos-engine/internal/handlers"
	"github.com/jwebster45206/chaos-engine/internal/logger"
	"github.com/jwebster45206/chaos-engine/internal/middleware"
	"github.com/jwebster45206/chaos-engine/internal/storage"
	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/journal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting CHAOS Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"agent_name", cfg.AgentName)

	persona := agent.DefaultPersona(cfg.AgentName)
	persona.Seed = cfg.AgentSeed
	if cfg.PersonaPath != "" {
		persona, err = agent.LoadPersona(cfg.PersonaPath)
		if err != nil {
			log.Error("Failed to load persona", "error", err)
			os.Exit(1)
		}
		log.Info("Loaded persona", "name", persona.Name, "path", cfg.PersonaPath)
	}

	storageService := storage.NewRedisStorage(cfg.RedisURL, cfg.ScriptsDir, cfg.SessionTTL, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storageService.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	var jw *journal.Writer
	if cfg.JournalPath != "" {
		jw, err = journal.NewWriter(cfg.JournalPath)
		if err != nil {
			log.Error("Failed to open journal", "error", err)
			os.Exit(1)
		}
		log.Info("Action journal enabled", "path", cfg.JournalPath)
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(storageService, log)
	mux.Handle("/health", healthHandler)

	validateHandler := handlers.NewValidateHandler(log)
	mux.Handle("/v1/validate", validateHandler)

	execHandler := handlers.NewExecHandler(storageService, persona, jw, log)
	mux.Handle("/v1/exec", execHandler)

	sessionsHandler := handlers.NewSessionsHandler(storageService, log)
	mux.Handle("/v1/sessions", sessionsHandler)
	mux.Handle("/v1/sessions/", sessionsHandler)

	scriptsHandler := handlers.NewScriptsHandler(storageService, log)
	mux.Handle("/v1/scripts", scriptsHandler)

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	// Close storage connection
	if err := storageService.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}
	if jw != nil {
		if err := jw.Close(); err != nil {
			log.Error("Error closing journal", "error", err)
		}
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
