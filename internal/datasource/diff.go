package datasource

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/treework/pkg/outline"
)

// Diff represents differences between two item sets, typically the
// outline before and after a watched-file reload.
type Diff struct {
	// Added contains item IDs present in the new set but not the old
	Added []string
	// Removed contains item IDs present in the old set but not the new
	Removed []string
	// Changed contains item IDs whose content differs between the sets
	Changed []string
	// CountOld is the number of items in the old set
	CountOld int
	// CountNew is the number of items in the new set
	CountNew int
}

// HasChanges returns true if the sets differ at all
func (d Diff) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Summary returns a one-line description suitable for a status bar
func (d Diff) Summary() string {
	if !d.HasChanges() {
		return fmt.Sprintf("no changes (%d items)", d.CountNew)
	}
	return fmt.Sprintf("+%d -%d ~%d (%d items)",
		len(d.Added), len(d.Removed), len(d.Changed), d.CountNew)
}

// Report returns a multi-line description listing the first few changes
func (d Diff) Report() string {
	if !d.HasChanges() {
		return fmt.Sprintf("Outlines match (%d items each)", d.CountNew)
	}

	report := "Outline changed:\n"

	if d.CountOld != d.CountNew {
		report += fmt.Sprintf("  - Count: %d -> %d\n", d.CountOld, d.CountNew)
	}

	if len(d.Added) > 0 {
		report += fmt.Sprintf("  - %d items added\n", len(d.Added))
		if len(d.Added) <= 5 {
			for _, id := range d.Added {
				report += fmt.Sprintf("    + %s\n", id)
			}
		}
	}

	if len(d.Removed) > 0 {
		report += fmt.Sprintf("  - %d items removed\n", len(d.Removed))
		if len(d.Removed) <= 5 {
			for _, id := range d.Removed {
				report += fmt.Sprintf("    - %s\n", id)
			}
		}
	}

	if len(d.Changed) > 0 {
		report += fmt.Sprintf("  - %d items changed\n", len(d.Changed))
		if len(d.Changed) <= 5 {
			for _, id := range d.Changed {
				report += fmt.Sprintf("    ~ %s\n", id)
			}
		}
	}

	return report
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// MaxDifferences limits the number of IDs tracked per bucket (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		MaxDifferences: 100,
	}
}

// DetectChanges compares two item sets and returns their differences.
// Change detection compares canonical encodings, so any field difference
// counts, not just a chosen few.
func DetectChanges(old, new []outline.Item, opts DiffOptions) Diff {
	diff := Diff{
		CountOld: len(old),
		CountNew: len(new),
	}

	// Build maps for fast lookup
	oldMap := make(map[string]outline.Item, len(old))
	for _, item := range old {
		oldMap[item.ID] = item
	}

	newMap := make(map[string]outline.Item, len(new))
	for _, item := range new {
		newMap[item.ID] = item
	}

	// Find items removed from the old set
	for id := range oldMap {
		if _, exists := newMap[id]; !exists {
			if opts.MaxDifferences == 0 || len(diff.Removed) < opts.MaxDifferences {
				diff.Removed = append(diff.Removed, id)
			}
		}
	}

	// Find items added in the new set, and content changes
	for id, newItem := range newMap {
		oldItem, exists := oldMap[id]
		if !exists {
			if opts.MaxDifferences == 0 || len(diff.Added) < opts.MaxDifferences {
				diff.Added = append(diff.Added, id)
			}
		} else {
			if !itemsEqual(oldItem, newItem) {
				if opts.MaxDifferences == 0 || len(diff.Changed) < opts.MaxDifferences {
					diff.Changed = append(diff.Changed, id)
				}
			}
		}
	}

	return diff
}

// itemsEqual compares two items by canonical encoding
func itemsEqual(a, b outline.Item) bool {
	da, errA := json.Marshal(a)
	db, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(da, db)
}

// CompareSources loads and compares two outline sources
func CompareSources(sourceA, sourceB Source, opts DiffOptions) (*Diff, error) {
	itemsA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}

	itemsB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectChanges(itemsA, itemsB, opts)
	return &diff, nil
}

// CheckAllSourcesConsistent compares all valid sources pairwise and
// reports any that disagree
func CheckAllSourcesConsistent(sources []Source, opts DiffOptions) ([]Diff, error) {
	var diffs []Diff

	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}

			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				// Log error but continue
				continue
			}

			if diff.HasChanges() {
				diffs = append(diffs, *diff)
			}
		}
	}

	return diffs, nil
}
