package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/internal/storage"
	"github.com/jwebster45206/chaos-engine/pkg/agent"
	"github.com/jwebster45206/chaos-engine/pkg/chaos"
	"github.com/jwebster45206/chaos-engine/pkg/journal"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

// ExecRequest asks for one script execution, optionally inside a
// persistent session.
type ExecRequest struct {
	Source    string `json:"source"`
	SessionID string `json:"session_id,omitempty"`
}

// ExecResponse carries the script's environment and, for session
// runs, the session id and the agent's step report.
type ExecResponse struct {
	Environment *chaos.Environment `json:"environment"`
	SessionID   string             `json:"session_id,omitempty"`
	Report      *agent.Report      `json:"report,omitempty"`
}

// ExecHandler validates and runs CHAOS scripts. With a session id it
// steps a persistent agent and saves the snapshot afterward.
type ExecHandler struct {
	storage storage.Storage
	persona *agent.Persona
	journal *journal.Writer
	logger  *slog.Logger
}

// NewExecHandler builds the handler. The persona seeds every agent the
// handler creates; jw may be nil to disable the action journal.
func NewExecHandler(storage storage.Storage, persona *agent.Persona, jw *journal.Writer, logger *slog.Logger) *ExecHandler {
	return &ExecHandler{
		storage: storage,
		persona: persona,
		journal: jw,
		logger:  logger,
	}
}

func (h *ExecHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for exec endpoint", "method", r.Method)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req ExecRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in exec request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}
	if req.Source == "" {
		writeError(w, h.logger, http.StatusBadRequest, "source field is required")
		return
	}

	if err := chaos.Validate(req.Source); err != nil {
		h.logger.Debug("Script failed validation", "error", err)
		writeError(w, h.logger, http.StatusUnprocessableEntity, err.Error())
		return
	}

	env, err := chaos.Run(req.Source)
	if err != nil {
		h.logger.Error("Failed to run validated script", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to run script")
		return
	}

	// Stateless run: just the environment.
	if req.SessionID == "" {
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(ExecResponse{Environment: env}); err != nil {
			h.logger.Error("Failed to encode exec response", "error", err)
		}
		return
	}

	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", req.SessionID, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	sess, err := h.storage.LoadSession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}

	a, err := agent.FromPersona(h.persona)
	if err != nil {
		h.logger.Error("Failed to build agent", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to build agent")
		return
	}
	if sess == nil {
		// An unknown well-formed id starts a session under that id.
		sess = session.New(h.persona.Name)
		sess.ID = sessionID
		h.logger.Debug("Created session", "id", sessionID.String())
	} else if err := sess.Apply(a); err != nil {
		h.logger.Error("Failed to restore session state", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restore session")
		return
	}

	report, err := a.Step(agent.StepInput{Script: req.Source})
	if err != nil {
		h.logger.Error("Agent step failed", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to step agent")
		return
	}

	sess.Capture(a)
	if err := h.storage.SaveSession(r.Context(), sess.ID, sess); err != nil {
		h.logger.Error("Failed to save session", "error", err, "id", sessionID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.appendJournal(sess, report)

	w.WriteHeader(http.StatusOK)
	response := ExecResponse{
		Environment: env,
		SessionID:   sess.ID.String(),
		Report:      report,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode exec response", "error", err)
	}
}

// appendJournal records the step when journaling is enabled. Journal
// errors are logged, never surfaced to the client.
func (h *ExecHandler) appendJournal(sess *session.Session, report *agent.Report) {
	if h.journal == nil {
		return
	}
	entry := journal.Entry{
		Session:    sess.ID.String(),
		Source:     "exec",
		TopEmotion: topEmotion(report.Emotions),
		Symbols:    len(report.Symbols),
	}
	if report.Action != nil {
		entry.Action = report.Action.Kind
	}
	if err := h.journal.Append(entry); err != nil {
		h.logger.Warn("Failed to append journal entry", "error", err)
	}
}

func topEmotion(emotions []chaos.Emotion) string {
	name := ""
	best := -1
	for _, e := range emotions {
		if e.Intensity > best {
			name = e.Name
			best = e.Intensity
		}
	}
	return name
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
