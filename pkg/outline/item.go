// Package outline defines the outline item model and the bridge between
// flat item records and the tree widget: building a tree from parent
// references and flattening one back for persistence.
package outline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind classifies an outline item.
type Kind string

const (
	// KindNote is free-form text, the default.
	KindNote Kind = "note"
	// KindTask carries a completion status.
	KindTask Kind = "task"
	// KindHeading is a structural container: it folds even while empty.
	KindHeading Kind = "heading"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindNote, KindTask, KindHeading:
		return true
	}
	return false
}

// Status is the completion state of a task item.
type Status string

const (
	StatusOpen Status = "open"
	StatusDone Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusDone
}

// Item is one outline entry as stored on disk. Tree shape is encoded by
// ParentID plus Position; everything else is content.
type Item struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id,omitempty"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Kind      Kind       `json:"kind,omitempty"`
	Status    Status     `json:"status,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Position  int        `json:"position,omitempty"`
	Priority  int        `json:"priority,omitempty"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

// NewItem returns a note with a fresh id and creation timestamp.
func NewItem(title string) Item {
	now := time.Now().UTC()
	return Item{
		ID:        uuid.NewString(),
		Title:     title,
		Kind:      KindNote,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewHeading returns a heading item with a fresh id.
func NewHeading(title string) Item {
	it := NewItem(title)
	it.Kind = KindHeading
	return it
}

// NewTask returns an open task with a fresh id.
func NewTask(title string) Item {
	it := NewItem(title)
	it.Kind = KindTask
	it.Status = StatusOpen
	return it
}

// IsContainer reports whether the item folds even while childless.
func (it Item) IsContainer() bool {
	return it.Kind == KindHeading
}

// Done reports whether the item is a completed task.
func (it Item) Done() bool {
	return it.Kind == KindTask && it.Status == StatusDone
}

// Normalize trims and lowercases the enum-ish fields and fills defaults, so
// hand-edited files with stray case or whitespace still load.
func (it *Item) Normalize() {
	it.Kind = Kind(strings.ToLower(strings.TrimSpace(string(it.Kind))))
	if it.Kind == "" {
		it.Kind = KindNote
	}
	it.Status = Status(strings.ToLower(strings.TrimSpace(string(it.Status))))
	if it.Kind == KindTask && it.Status == "" {
		it.Status = StatusOpen
	}
}

// Validate checks the fields that loaders must reject rather than repair.
func (it *Item) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("item missing id")
	}
	if it.Kind != "" && !it.Kind.Valid() {
		return fmt.Errorf("item %s: unknown kind %q", it.ID, it.Kind)
	}
	if it.Status != "" && !it.Status.Valid() {
		return fmt.Errorf("item %s: unknown status %q", it.ID, it.Status)
	}
	return nil
}

// Compare orders siblings: explicit position first, then creation time,
// then id as the final tiebreak so the order is total and stable.
func Compare(a, b Item) int {
	if a.Position != b.Position {
		if a.Position < b.Position {
			return -1
		}
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
