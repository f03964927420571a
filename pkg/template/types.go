// Package template provides outline scaffolds: built-in and user-defined
// document skeletons that `tw --init` materializes into a fresh outline
// file. Templates are plain YAML (name, description, nested items) and can
// be overridden per user or per project.
package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/vanderheijden86/treework/pkg/outline"
)

// Entry is one node of a template skeleton. Kind and Status use the
// outline vocabulary ("note", "task", "heading" / "open", "done"); empty
// values take the outline defaults.
type Entry struct {
	Title    string   `yaml:"title" json:"title"`
	Body     string   `yaml:"body,omitempty" json:"body,omitempty"`
	Kind     string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Status   string   `yaml:"status,omitempty" json:"status,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	DueIn    string   `yaml:"due_in,omitempty" json:"due_in,omitempty"`
	Children []Entry  `yaml:"children,omitempty" json:"children,omitempty"`
}

// Template is a named outline skeleton. Disabled lets a user or project
// file hide a template (including a builtin) without replacing it.
type Template struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Disabled    bool    `yaml:"disabled,omitempty" json:"disabled,omitempty"`
	Items       []Entry `yaml:"items" json:"items"`
}

// Count returns the total number of entries in the skeleton.
func (t *Template) Count() int {
	var n int
	var walk func(entries []Entry)
	walk = func(entries []Entry) {
		n += len(entries)
		for i := range entries {
			walk(entries[i].Children)
		}
	}
	walk(t.Items)
	return n
}

// Materialize converts the skeleton into outline items with fresh IDs,
// parent references, sibling positions, and timestamps. DueIn expressions
// resolve relative to now. Items come back in document order (parents
// before children), ready for SaveJSONL or BuildTree.
func (t *Template) Materialize(now time.Time) ([]outline.Item, error) {
	items := make([]outline.Item, 0, t.Count())

	var walk func(entries []Entry, parentID string) error
	walk = func(entries []Entry, parentID string) error {
		for i := range entries {
			e := &entries[i]

			it := outline.NewItem(e.Title)
			it.ParentID = parentID
			it.Body = e.Body
			it.Kind = outline.Kind(e.Kind)
			it.Status = outline.Status(e.Status)
			it.Tags = e.Tags
			it.Position = i
			it.CreatedAt = now
			it.UpdatedAt = now
			it.Normalize()
			if err := it.Validate(); err != nil {
				return fmt.Errorf("template %q: %w", t.Name, err)
			}

			if e.DueIn != "" {
				due, err := ParseDueOffset(e.DueIn, now)
				if err != nil {
					return fmt.Errorf("template %q, item %q: %w", t.Name, e.Title, err)
				}
				it.DueDate = &due
			}

			items = append(items, it)
			if err := walk(e.Children, it.ID); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(t.Items, ""); err != nil {
		return nil, err
	}
	return items, nil
}

// TimeParseError reports a due expression that could not be parsed.
type TimeParseError struct {
	Input string
}

func (e *TimeParseError) Error() string {
	return fmt.Sprintf("cannot parse time expression %q (want e.g. 7d, 2w, 1m, 1y, or 2006-01-02)", e.Input)
}

var durationPattern = regexp.MustCompile(`^(\d+)([dwmy])$`)

// ParseDueOffset resolves a due expression relative to now. Supported
// forms: relative offsets "7d", "2w", "1m", "1y" (case-insensitive,
// pointing into the future), an ISO date "2006-01-02" (midnight in now's
// location), or a full RFC 3339 timestamp. Empty input yields the zero
// time with no error.
func ParseDueOffset(input string, now time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return time.Time{}, nil
	}

	if m := durationPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, &TimeParseError{Input: input}
		}
		switch m[2] {
		case "d":
			return now.AddDate(0, 0, n), nil
		case "w":
			return now.AddDate(0, 0, 7*n), nil
		case "m":
			return now.AddDate(0, n, 0), nil
		case "y":
			return now.AddDate(n, 0, 0), nil
		}
	}

	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(input)); err == nil {
		return t, nil
	}

	return time.Time{}, &TimeParseError{Input: input}
}
