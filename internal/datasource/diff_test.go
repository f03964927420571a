package datasource_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/treework/internal/datasource"
	"github.com/vanderheijden86/treework/pkg/outline"
)

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// =============================================================================
// DetectChanges Tests
// =============================================================================

func TestDetectChanges_NoChanges(t *testing.T) {
	items := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}

	diff := datasource.DetectChanges(items, items, datasource.DefaultDiffOptions())
	if diff.HasChanges() {
		t.Errorf("Expected no changes, got %+v", diff)
	}
	if diff.CountOld != 2 || diff.CountNew != 2 {
		t.Errorf("Count mismatch: old=%d new=%d", diff.CountOld, diff.CountNew)
	}
}

func TestDetectChanges_Added(t *testing.T) {
	old := []outline.Item{{ID: "a", Title: "A"}}
	new := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	if len(diff.Added) != 1 || !contains(diff.Added, "b") {
		t.Errorf("Expected added [b], got %v", diff.Added)
	}
	if len(diff.Removed) != 0 {
		t.Errorf("Expected no removals, got %v", diff.Removed)
	}
	if len(diff.Changed) != 0 {
		t.Errorf("Expected no changes, got %v", diff.Changed)
	}
}

func TestDetectChanges_Removed(t *testing.T) {
	old := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	}
	new := []outline.Item{{ID: "a", Title: "A"}}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	if len(diff.Removed) != 1 || !contains(diff.Removed, "b") {
		t.Errorf("Expected removed [b], got %v", diff.Removed)
	}
	if !diff.HasChanges() {
		t.Error("Expected HasChanges to be true")
	}
}

func TestDetectChanges_Changed(t *testing.T) {
	old := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "Before"},
	}
	new := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "After"},
	}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	if len(diff.Changed) != 1 || !contains(diff.Changed, "b") {
		t.Errorf("Expected changed [b], got %v", diff.Changed)
	}
	if contains(diff.Changed, "a") {
		t.Error("Unchanged item should not be flagged")
	}
}

func TestDetectChanges_AnyFieldCounts(t *testing.T) {
	old := []outline.Item{{ID: "a", Title: "A", Kind: outline.KindTask, Status: outline.StatusOpen}}
	new := []outline.Item{{ID: "a", Title: "A", Kind: outline.KindTask, Status: outline.StatusDone}}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	if len(diff.Changed) != 1 {
		t.Errorf("Status flip should register as a change, got %v", diff.Changed)
	}
}

func TestDetectChanges_MaxDifferences(t *testing.T) {
	var old, new []outline.Item
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		new = append(new, outline.Item{ID: id, Title: id})
	}

	diff := datasource.DetectChanges(old, new, datasource.DiffOptions{MaxDifferences: 5})
	if len(diff.Added) != 5 {
		t.Errorf("Expected cap of 5 tracked additions, got %d", len(diff.Added))
	}
	// Counts still reflect the full sets
	if diff.CountNew != 20 {
		t.Errorf("Expected CountNew 20, got %d", diff.CountNew)
	}
}

func TestDetectChanges_UnlimitedWhenZero(t *testing.T) {
	var new []outline.Item
	for i := 0; i < 150; i++ {
		id := "item-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		new = append(new, outline.Item{ID: id, Title: id})
	}

	diff := datasource.DetectChanges(nil, new, datasource.DiffOptions{MaxDifferences: 0})
	if len(diff.Added) != 150 {
		t.Errorf("Expected all 150 additions tracked, got %d", len(diff.Added))
	}
}

func TestDetectChanges_BothEmpty(t *testing.T) {
	diff := datasource.DetectChanges(nil, nil, datasource.DefaultDiffOptions())
	if diff.HasChanges() {
		t.Error("Two empty sets should not differ")
	}
	if diff.CountOld != 0 || diff.CountNew != 0 {
		t.Errorf("Counts should be zero: old=%d new=%d", diff.CountOld, diff.CountNew)
	}
}

// =============================================================================
// Summary and Report Tests
// =============================================================================

func TestDiffSummary_NoChanges(t *testing.T) {
	items := []outline.Item{{ID: "a", Title: "A"}}
	diff := datasource.DetectChanges(items, items, datasource.DefaultDiffOptions())

	summary := diff.Summary()
	if !strings.Contains(summary, "no changes") {
		t.Errorf("Expected 'no changes' summary, got %q", summary)
	}
}

func TestDiffSummary_WithChanges(t *testing.T) {
	old := []outline.Item{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "Old"},
	}
	new := []outline.Item{
		{ID: "b", Title: "New"},
		{ID: "c", Title: "C"},
	}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	summary := diff.Summary()
	if !strings.Contains(summary, "+1") || !strings.Contains(summary, "-1") || !strings.Contains(summary, "~1") {
		t.Errorf("Expected +1 -1 ~1 in summary, got %q", summary)
	}
}

func TestDiffReport_ListsSmallChangeSets(t *testing.T) {
	old := []outline.Item{{ID: "gone-1", Title: "Gone"}}
	new := []outline.Item{{ID: "new-1", Title: "New"}}

	diff := datasource.DetectChanges(old, new, datasource.DefaultDiffOptions())
	report := diff.Report()
	if !strings.Contains(report, "new-1") {
		t.Errorf("Report should list added IDs: %q", report)
	}
	if !strings.Contains(report, "gone-1") {
		t.Errorf("Report should list removed IDs: %q", report)
	}
}

// =============================================================================
// CompareSources Tests
// =============================================================================

func TestCompareSources(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.jsonl")
	pathB := filepath.Join(dir, "b.jsonl")
	writeFile(t, pathA, `{"id":"x","title":"Same"}
{"id":"y","title":"Only in A"}
`)
	writeFile(t, pathB, `{"id":"x","title":"Same"}
{"id":"z","title":"Only in B"}
`)

	srcA := datasource.Source{Type: datasource.SourceTypeJSONLProject, Path: pathA, Valid: true}
	srcB := datasource.Source{Type: datasource.SourceTypeJSONLProject, Path: pathB, Valid: true}

	diff, err := datasource.CompareSources(srcA, srcB, datasource.DefaultDiffOptions())
	if err != nil {
		t.Fatalf("CompareSources failed: %v", err)
	}
	if len(diff.Added) != 1 || !contains(diff.Added, "z") {
		t.Errorf("Expected added [z], got %v", diff.Added)
	}
	if len(diff.Removed) != 1 || !contains(diff.Removed, "y") {
		t.Errorf("Expected removed [y], got %v", diff.Removed)
	}
	if len(diff.Changed) != 0 {
		t.Errorf("Expected no content changes, got %v", diff.Changed)
	}
}

func TestCompareSources_LoadFailure(t *testing.T) {
	srcA := datasource.Source{Type: datasource.SourceTypeJSONLProject, Path: "/nonexistent/a.jsonl"}
	srcB := datasource.Source{Type: datasource.SourceTypeJSONLProject, Path: "/nonexistent/b.jsonl"}

	if _, err := datasource.CompareSources(srcA, srcB, datasource.DefaultDiffOptions()); err == nil {
		t.Fatal("Expected error when a source cannot be loaded")
	}
}

func TestCheckAllSourcesConsistent(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.jsonl")
	pathB := filepath.Join(dir, "b.jsonl")
	writeFile(t, pathA, `{"id":"x","title":"One"}`+"\n")
	writeFile(t, pathB, `{"id":"x","title":"Two"}`+"\n")

	sources := []datasource.Source{
		{Type: datasource.SourceTypeJSONLProject, Path: pathA, Valid: true},
		{Type: datasource.SourceTypeJSONLProject, Path: pathB, Valid: true},
		{Type: datasource.SourceTypeJSONLProject, Path: "/nonexistent/c.jsonl", Valid: false},
	}

	diffs, err := datasource.CheckAllSourcesConsistent(sources, datasource.DefaultDiffOptions())
	if err != nil {
		t.Fatalf("CheckAllSourcesConsistent failed: %v", err)
	}
	if len(diffs) != 1 {
		t.Fatalf("Expected 1 inconsistency, got %d", len(diffs))
	}
	if len(diffs[0].Changed) != 1 || !contains(diffs[0].Changed, "x") {
		t.Errorf("Expected changed [x], got %v", diffs[0].Changed)
	}
}
