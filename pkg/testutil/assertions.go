package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/treework/pkg/outline"
)

// AssertItemCount verifies the expected number of items.
func AssertItemCount(t *testing.T, items []outline.Item, expected int) {
	t.Helper()
	if len(items) != expected {
		t.Errorf("expected %d items, got %d", expected, len(items))
	}
}

// AssertNoDuplicateIDs verifies all item IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, items []outline.Item) {
	t.Helper()
	seen := make(map[string]bool)
	for _, item := range items {
		if seen[item.ID] {
			t.Errorf("duplicate item ID: %s", item.ID)
		}
		seen[item.ID] = true
	}
}

// AssertAllValid verifies all items pass validation.
func AssertAllValid(t *testing.T, items []outline.Item) {
	t.Helper()
	for i, item := range items {
		if err := item.Validate(); err != nil {
			t.Errorf("item %d (%s) invalid: %v", i, item.ID, err)
		}
	}
}

// AssertParent verifies that a specific item names the expected parent.
// Pass an empty parentID to assert the item is a root.
func AssertParent(t *testing.T, items []outline.Item, childID, parentID string) {
	t.Helper()
	for _, item := range items {
		if item.ID == childID {
			if item.ParentID != parentID {
				t.Errorf("expected %s to have parent %q, got %q", childID, parentID, item.ParentID)
			}
			return
		}
	}
	t.Errorf("item %s not found", childID)
}

// AssertNoCycles verifies that every parent chain terminates.
// Chains ending at an unknown parent count as terminated.
func AssertNoCycles(t *testing.T, items []outline.Item) {
	t.Helper()

	parentOf := make(map[string]string, len(items))
	for _, item := range items {
		parentOf[item.ID] = item.ParentID
	}

	for _, item := range items {
		inPath := make(map[string]bool)
		cur := item.ID
		for cur != "" {
			if inPath[cur] {
				t.Errorf("cycle detected in parent chain of item %s", item.ID)
				return
			}
			inPath[cur] = true
			next, ok := parentOf[cur]
			if !ok {
				break // unknown parent terminates the chain
			}
			cur = next
		}
	}
}

// AssertHasCycle verifies that at least one parent chain loops.
func AssertHasCycle(t *testing.T, items []outline.Item) {
	t.Helper()

	parentOf := make(map[string]string, len(items))
	for _, item := range items {
		parentOf[item.ID] = item.ParentID
	}

	for _, item := range items {
		inPath := make(map[string]bool)
		cur := item.ID
		for cur != "" {
			if inPath[cur] {
				return // Found a cycle, assertion passes
			}
			inPath[cur] = true
			next, ok := parentOf[cur]
			if !ok {
				break
			}
			cur = next
		}
	}
	t.Error("expected cycle but none found")
}

// AssertStatusCounts verifies the count of items in each status.
func AssertStatusCounts(t *testing.T, items []outline.Item, open, done int) {
	t.Helper()
	counts := make(map[outline.Status]int)
	for _, item := range items {
		counts[item.Status]++
	}

	if counts[outline.StatusOpen] != open {
		t.Errorf("expected %d open items, got %d", open, counts[outline.StatusOpen])
	}
	if counts[outline.StatusDone] != done {
		t.Errorf("expected %d done items, got %d", done, counts[outline.StatusDone])
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		// Update golden file
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	// Compare against golden file
	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Find first difference for helpful error message
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s\n\nFull diff (expected vs actual):\n%s\nvs\n%s",
					i+1, expLine, actLine, string(expected), actual)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// AssertJSON compares actual value as JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual interface{}) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}

	g.Assert(string(data))
}

// TempDir helpers

// TempOutlineDir creates a temporary directory with a .tw subdirectory
// and returns the path. The directory is cleaned up after the test.
func TempOutlineDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	twDir := filepath.Join(dir, ".tw")
	if err := os.MkdirAll(twDir, 0755); err != nil {
		t.Fatalf("failed to create .tw dir: %v", err)
	}
	return dir
}

// WriteOutlineFile writes items to an outline.jsonl file in the given directory.
func WriteOutlineFile(t *testing.T, dir string, items []outline.Item) string {
	t.Helper()

	outlinePath := filepath.Join(dir, ".tw", "outline.jsonl")
	content := ToJSONL(items)

	if err := os.WriteFile(outlinePath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write outline file: %v", err)
	}
	return outlinePath
}

// WriteItemsFile writes items to a custom path.
func WriteItemsFile(t *testing.T, path string, items []outline.Item) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}

	content := ToJSONL(items)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write items file: %v", err)
	}
}

// ItemMap helpers

// BuildItemMap creates a map from ID to Item for quick lookups.
func BuildItemMap(items []outline.Item) map[string]*outline.Item {
	m := make(map[string]*outline.Item, len(items))
	for i := range items {
		m[items[i].ID] = &items[i]
	}
	return m
}

// FindItem returns the item with the given ID, or nil if not found.
func FindItem(items []outline.Item, id string) *outline.Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}

// CountByStatus returns a map of status -> count.
func CountByStatus(items []outline.Item) map[outline.Status]int {
	counts := make(map[outline.Status]int)
	for _, item := range items {
		counts[item.Status]++
	}
	return counts
}

// CountByKind returns a map of kind -> count.
func CountByKind(items []outline.Item) map[outline.Kind]int {
	counts := make(map[outline.Kind]int)
	for _, item := range items {
		counts[item.Kind]++
	}
	return counts
}

// GetIDs returns a slice of all item IDs.
func GetIDs(items []outline.Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// ItemID generates a standard test item ID with the given index.
// Format: "test-{index}" for consistency across tests.
func ItemID(index int) string {
	return fmt.Sprintf("test-%d", index)
}
