// Package review provides the data structures for review records.
package review

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Approval is the review verdict for a file.
type Approval string

const (
	// ApprovalPending means no verdict has been given yet.
	ApprovalPending Approval = "pending"
	// ApprovalApproved means the reviewer accepted the cut.
	ApprovalApproved Approval = "approved"
	// ApprovalRevisions means the reviewer requested changes.
	ApprovalRevisions Approval = "revisions"
)

// Valid reports whether a is one of the known approval values.
func (a Approval) Valid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRevisions:
		return true
	}
	return false
}

// Color is a comment marker tag.
//
// The known set is fixed, but unrecognized values are tolerated and
// treated as an "other" tag by consumers, never rejected.
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// Known reports whether c belongs to the fixed tag set.
func (c Color) Known() bool {
	switch c {
	case ColorRed, ColorYellow, ColorGreen, ColorBlue, ColorPurple:
		return true
	}
	return false
}

// Comment is a single timestamped review annotation.
//
// The ID is assigned at creation and never changes; it is the merge
// key across clients. Timestamp is seconds into the video and may be
// fractional for sub-frame precision.
type Comment struct {
	ID        string  `json:"id"`
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
	Author    string  `json:"author"`
	Color     Color   `json:"color"`
	Drawing   string  `json:"drawing,omitempty"` // data URI, opaque to the engine
	CreatedAt string  `json:"createdAt"`
}

// NewComment builds a comment with a fresh ID and creation timestamp.
func NewComment(timestamp float64, text, author string, color Color) Comment {
	return Comment{
		ID:        uuid.NewString(),
		Timestamp: timestamp,
		Text:      text,
		Author:    author,
		Color:     color,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// RecordVersion is the current schema tag for persisted records.
const RecordVersion = 1

// Record is the unit of persistence and synchronization: all comments
// plus the approval verdict for one file.
type Record struct {
	Version   int       `json:"version"`
	FileID    string    `json:"fileId"`
	Approval  Approval  `json:"approval"`
	Comments  []Comment `json:"comments"`
	UpdatedAt string    `json:"updatedAt,omitempty"`
}

// NewRecord returns the canonical empty record for a file: no
// comments, approval pending. This is the default when no stored
// artifact exists anywhere.
func NewRecord(fileID string) *Record {
	return &Record{
		Version:  RecordVersion,
		FileID:   fileID,
		Approval: ApprovalPending,
		Comments: []Comment{},
	}
}

// Validate checks the structural invariants of a record.
func (r *Record) Validate() error {
	if r.FileID == "" {
		return fmt.Errorf("fileId is required")
	}
	if !r.Approval.Valid() {
		return fmt.Errorf("invalid approval %q", r.Approval)
	}
	seen := make(map[string]struct{}, len(r.Comments))
	for _, c := range r.Comments {
		if c.ID == "" {
			return fmt.Errorf("comment id is required")
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate comment id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// SetDefaults fills optional fields so records loaded from older or
// partial payloads behave consistently.
func (r *Record) SetDefaults() {
	if r.Version == 0 {
		r.Version = RecordVersion
	}
	if r.Approval == "" {
		r.Approval = ApprovalPending
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
}

// Touch sets UpdatedAt to the current time. Called on every write;
// the value is observability only, never used for conflict
// resolution.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Comments = make([]Comment, len(r.Comments))
	copy(out.Comments, r.Comments)
	return &out
}

// FindComment returns the comment with the given id, if present.
func (r *Record) FindComment(id string) (Comment, bool) {
	for _, c := range r.Comments {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

// AddComment appends a comment to the record.
func (r *Record) AddComment(c Comment) {
	r.Comments = append(r.Comments, c)
}

// RemoveComment drops every comment matching id (expected exactly
// one) and reports whether anything was removed.
func (r *Record) RemoveComment(id string) bool {
	kept := r.Comments[:0]
	removed := false
	for _, c := range r.Comments {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	r.Comments = kept
	return removed
}

// Decode parses a serialized record payload. Unknown colors and extra
// fields are tolerated; structurally invalid payloads return an error
// so callers can treat them as absence.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse review record: %w", err)
	}
	rec.SetDefaults()
	return &rec, nil
}

// Encode serializes a record with pretty-printed formatting, matching
// what other review clients write.
func (r *Record) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal review record: %w", err)
	}
	return data, nil
}
