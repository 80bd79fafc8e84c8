package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/chaos-engine/internal/storage"
)

// ScriptsResponse lists the scripts available to the service.
type ScriptsResponse struct {
	Scripts map[string]string `json:"scripts"`
}

type ScriptsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewScriptsHandler(storage storage.Storage, logger *slog.Logger) *ScriptsHandler {
	return &ScriptsHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *ScriptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		h.logger.Warn("Method not allowed for scripts endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	scripts, err := h.storage.ListScripts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list scripts", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list scripts")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ScriptsResponse{Scripts: scripts}); err != nil {
		h.logger.Error("Failed to encode scripts response", "error", err)
	}
}
