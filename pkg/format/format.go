// Package format validates the CHAOS document container: header lines of
// key/value pairs followed by one [CONTENT BEGIN]/[CONTENT END] block.
// This is the on-disk envelope, not the scripting language inside it.
package format

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

// Content block markers.
const (
	ContentBegin = "[CONTENT BEGIN]"
	ContentEnd   = "[CONTENT END]"
)

// requiredFields must be present in every document header.
var requiredFields = []string{"file_type", "tags"}

// enumFields constrain header values when the field is present and
// non-blank.
var enumFields = []struct {
	name    string
	allowed []string
}{
	{"consent", []string{"explicit", "implicit", "none"}},
	{"safety_tier", []string{"low", "med", "high"}},
	{"sensitive", []string{"pii", "trauma", "none"}},
}

// ValidationError reports why a document failed the format gate. Line is
// the 1-based header line when the failure is line-scoped, zero otherwise.
type ValidationError struct {
	Line   int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("format: line %d: %s", e.Line, e.Reason)
	}
	return "format: " + e.Reason
}

// Header holds the parsed key/value lines above the content block.
type Header map[string]string

// Get returns a header value, or the empty string when absent.
func (h Header) Get(key string) string {
	return h[key]
}

// Has reports whether a header key is present.
func (h Header) Has(key string) bool {
	_, ok := h[key]
	return ok
}

// Tags returns the comma-separated tags list with blanks dropped.
func (h Header) Tags() []string {
	var tags []string
	for _, t := range strings.Split(h["tags"], ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ParseDocument splits a document into its validated header and trimmed
// content block.
func ParseDocument(text string) (Header, string, error) {
	if err := checkMarkers(text); err != nil {
		return nil, "", err
	}

	head, rest, _ := strings.Cut(text, ContentBegin)
	content, _, ok := strings.Cut(rest, ContentEnd)
	if !ok {
		return nil, "", &ValidationError{Reason: "content markers out of order"}
	}

	header := make(Header)
	for i, line := range strings.Split(head, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, "", &ValidationError{
				Line:   i + 1,
				Reason: fmt.Sprintf("invalid header format, expected 'key: value', got: %s", line),
			}
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, "", &ValidationError{Line: i + 1, Reason: "header key cannot be empty"}
		}
		header[key] = strings.TrimSpace(parts[1])
	}

	if err := header.validate(); err != nil {
		return nil, "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, "", &ValidationError{Reason: "content block cannot be empty"}
	}

	return header, content, nil
}

// ParseFile reads and parses a document from disk.
func ParseFile(path string) (Header, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read document: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, "", &ValidationError{Reason: "file must be valid UTF-8"}
	}
	return ParseDocument(string(data))
}

// ValidateDocument runs the format gate without returning the parts.
func ValidateDocument(text string) error {
	_, _, err := ParseDocument(text)
	return err
}

// ValidateFile runs the format gate on a file.
func ValidateFile(path string) error {
	_, _, err := ParseFile(path)
	return err
}

func checkMarkers(text string) error {
	switch strings.Count(text, ContentBegin) {
	case 0:
		return &ValidationError{Reason: "missing " + ContentBegin + " marker"}
	case 1:
	default:
		return &ValidationError{Reason: "multiple " + ContentBegin + " markers found"}
	}
	switch strings.Count(text, ContentEnd) {
	case 0:
		return &ValidationError{Reason: "missing " + ContentEnd + " marker"}
	case 1:
	default:
		return &ValidationError{Reason: "multiple " + ContentEnd + " markers found"}
	}
	return nil
}

func (h Header) validate() error {
	var missing []string
	for _, field := range requiredFields {
		if !h.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Reason: "missing required field(s): " + strings.Join(missing, ", ")}
	}

	if strings.TrimSpace(h.Get("file_type")) == "" {
		return &ValidationError{Reason: "file_type cannot be empty"}
	}
	if strings.TrimSpace(h.Get("tags")) == "" {
		return &ValidationError{Reason: "tags cannot be empty"}
	}
	if len(h.Tags()) == 0 {
		return &ValidationError{Reason: "tags must contain at least one non-empty tag"}
	}

	for _, enum := range enumFields {
		if !h.Has(enum.name) {
			continue
		}
		value := strings.TrimSpace(h.Get(enum.name))
		if value == "" {
			continue
		}
		if !slices.Contains(enum.allowed, value) {
			return &ValidationError{
				Reason: fmt.Sprintf("invalid %s value %q, must be one of: %s",
					enum.name, value, strings.Join(enum.allowed, ", ")),
			}
		}
	}
	return nil
}
