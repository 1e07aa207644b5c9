// Package server implements the standalone review API: a minimal
// HTTP file store holding one JSON review blob per review identifier,
// plus a templated viewer page and a live event feed for connected
// viewers.
package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// MaxBodyBytes caps the size of an uploaded review payload.
const MaxBodyBytes = 1 << 20 // 1MB

// reviewIDPattern matches the identifier constraint: fixed character
// set, 8-64 characters. Anything else is not routed to the store.
var reviewIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

// ValidReviewID reports whether id may address a stored review.
func ValidReviewID(id string) bool {
	return reviewIDPattern.MatchString(id)
}

// emptyReview is the canonical shape returned when nothing is stored:
// clients get a valid empty review, never a 404.
var emptyReview = []byte(`{"comments":[],"approval":"pending"}`)

// Store persists review payloads as {id}.json files in a data
// directory. Payloads are opaque blobs beyond one structural check:
// `comments` must be a JSON array.
type Store struct {
	dataDir string
}

// NewStore creates the data directory if needed and returns a store.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Store{dataDir: dataDir}, nil
}

// DataDir returns the directory backing the store.
func (s *Store) DataDir() string { return s.dataDir }

// path maps a review id to its backing file. IDs are validated before
// this is called, so the id can never escape the data directory.
func (s *Store) path(reviewID string) string {
	return filepath.Join(s.dataDir, reviewID+".json")
}

// Get returns the stored payload for a review, or the canonical empty
// shape when none exists yet.
func (s *Store) Get(reviewID string) ([]byte, error) {
	if !ValidReviewID(reviewID) {
		return nil, fmt.Errorf("invalid review id %q", reviewID)
	}
	data, err := os.ReadFile(s.path(reviewID))
	if err != nil {
		if os.IsNotExist(err) {
			return emptyReview, nil
		}
		return nil, fmt.Errorf("failed to read review %s: %w", reviewID, err)
	}
	return data, nil
}

// ErrInvalidPayload marks a payload rejected by structural validation.
type ErrInvalidPayload struct {
	Reason string
}

func (e *ErrInvalidPayload) Error() string {
	return "invalid review payload: " + e.Reason
}

// Put validates and stores a review payload, pretty-printed so the
// files stay inspectable. Fields beyond `comments` are preserved as
// given.
func (s *Store) Put(reviewID string, body []byte) error {
	if !ValidReviewID(reviewID) {
		return fmt.Errorf("invalid review id %q", reviewID)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return &ErrInvalidPayload{Reason: err.Error()}
	}
	var comments []json.RawMessage
	raw, ok := payload["comments"]
	if !ok || string(raw) == "null" || json.Unmarshal(raw, &comments) != nil {
		return &ErrInvalidPayload{Reason: "comments must be an array"}
	}

	pretty, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format review payload: %w", err)
	}
	if err := os.WriteFile(s.path(reviewID), pretty, 0644); err != nil {
		return fmt.Errorf("failed to write review %s: %w", reviewID, err)
	}
	return nil
}
