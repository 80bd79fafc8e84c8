package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/chaos-engine/internal/handlers"
	"github.com/jwebster45206/chaos-engine/pkg/session"
)

// HTTP calls against a running engine API. Helpers decode the real
// contract types, so a drift in the wire format fails loudly here.

// CheckHealth verifies the API is up and its storage reachable.
func CheckHealth(ctx context.Context, client *http.Client, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("health returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// PostExec runs one script inside the given session and returns the
// decoded response.
func PostExec(ctx context.Context, client *http.Client, baseURL string, source string, sessionID uuid.UUID) (*handlers.ExecResponse, error) {
	body, err := json.Marshal(handlers.ExecRequest{
		Source:    source,
		SessionID: sessionID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal exec request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/exec", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create exec request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exec request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("exec returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out handlers.ExecResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode exec response: %w", err)
	}
	return &out, nil
}

// GetSession loads the session snapshot. A 404 comes back as found=false
// with no error, so callers can assert on absence.
func GetSession(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) (*session.Session, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/v1/sessions/"+id.String(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create session request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("session request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var sess session.Session
		if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
			return nil, false, fmt.Errorf("failed to decode session: %w", err)
		}
		return &sess, true, nil
	case http.StatusNotFound:
		return nil, false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("get session returned %d: %s", resp.StatusCode, string(body))
	}
}

// DeleteSession removes the session from storage.
func DeleteSession(ctx context.Context, client *http.Client, baseURL string, id uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, baseURL+"/v1/sessions/"+id.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("delete request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete session returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
