// Package journal is an append-only JSONL log of agent activity.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one line of the journal.
type Entry struct {
	Time       time.Time `json:"time"`
	Session    string    `json:"session,omitempty"`
	Source     string    `json:"source,omitempty"`
	Action     string    `json:"action,omitempty"`
	TopEmotion string    `json:"top_emotion,omitempty"`
	Symbols    int       `json:"symbols"`
	Note       string    `json:"note,omitempty"`
}

// Writer appends entries to a journal file, one JSON object per line.
type Writer struct {
	f *os.File
}

// NewWriter opens the journal at path, creating it if missing.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Writer{f: f}, nil
}

// Append writes one entry. A zero Time is stamped with the current
// time in UTC.
func (w *Writer) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	if _, err := w.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// Read loads every entry from the journal at path, skipping blank
// lines. A missing file yields an empty journal.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("parse journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return entries, nil
}
