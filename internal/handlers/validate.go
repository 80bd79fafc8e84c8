package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/chaos-engine/pkg/chaos"
)

// ValidateResponse reports the outcome of a validation request.
type ValidateResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateHandler checks CHAOS source against the strict gate.
type ValidateHandler struct {
	logger *slog.Logger
}

func NewValidateHandler(logger *slog.Logger) *ValidateHandler {
	return &ValidateHandler{logger: logger}
}

type validateRequest struct {
	Source string `json:"source"`
}

func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for validate endpoint", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		response := ValidateResponse{
			Error: "Method not allowed. Only POST is supported.",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in validate request", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		response := ValidateResponse{
			Error: "Invalid JSON in request body",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode error response", "error", err)
		}
		return
	}

	// Validation failures are client errors, never 500s. An empty
	// source lands here too, as the empty-script structural failure.
	if err := chaos.Validate(req.Source); err != nil {
		h.logger.Debug("Script failed validation", "error", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		response := ValidateResponse{
			Valid: false,
			Error: err.Error(),
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			h.logger.Error("Failed to encode validation response", "error", err)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ValidateResponse{Valid: true}); err != nil {
		h.logger.Error("Failed to encode validation response", "error", err)
	}
}
