package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/vanderheijden86/treework/pkg/outline"
)

func TestChain(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name      string
		size      int
		wantNodes int
		wantRoots int
		wantDepth int
	}{
		{"chain_1", 1, 1, 1, 0},
		{"chain_2", 2, 2, 1, 1},
		{"chain_5", 5, 5, 1, 4},
		{"chain_10", 10, 10, 1, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := gen.Chain(tt.size)

			if len(tf.Nodes) != tt.wantNodes {
				t.Errorf("Chain(%d) nodes = %d, want %d", tt.size, len(tf.Nodes), tt.wantNodes)
			}
			if tf.Properties.HasCycles {
				t.Error("Chain should not have cycles")
			}
			if tf.Properties.RootCount != tt.wantRoots {
				t.Errorf("Chain(%d) roots = %d, want %d", tt.size, tf.Properties.RootCount, tt.wantRoots)
			}
			if tf.Properties.ExpectedDepth != tt.wantDepth {
				t.Errorf("Chain(%d) depth = %d, want %d", tt.size, tf.Properties.ExpectedDepth, tt.wantDepth)
			}

			// Verify nesting: node i sits under node i-1
			for i, p := range tf.Parents {
				if p != i-1 {
					t.Errorf("Parent of node %d: got %d, want %d", i, p, i-1)
				}
			}
		})
	}
}

func TestFlat(t *testing.T) {
	gen := NewDefault()
	tf := gen.Flat(5)

	if len(tf.Nodes) != 5 {
		t.Errorf("Flat(5) nodes = %d, want 5", len(tf.Nodes))
	}
	if tf.Properties.RootCount != 5 {
		t.Errorf("Flat(5) roots = %d, want 5", tf.Properties.RootCount)
	}
	if tf.Properties.ExpectedDepth != 0 {
		t.Errorf("Flat depth should be 0, got %d", tf.Properties.ExpectedDepth)
	}
	for i, p := range tf.Parents {
		if p != -1 {
			t.Errorf("Flat node %d should be a root, has parent %d", i, p)
		}
	}
}

func TestSections(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name      string
		sections  int
		itemsPer  int
		wantNodes int
	}{
		{"sections_1_3", 1, 3, 4},
		{"sections_3_2", 3, 2, 9},
		{"sections_5_0", 5, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := gen.Sections(tt.sections, tt.itemsPer)

			if len(tf.Nodes) != tt.wantNodes {
				t.Errorf("Sections(%d,%d) nodes = %d, want %d", tt.sections, tt.itemsPer, len(tf.Nodes), tt.wantNodes)
			}
			if tf.Properties.RootCount != tt.sections {
				t.Errorf("Sections roots = %d, want %d", tf.Properties.RootCount, tt.sections)
			}

			// Every non-root should point at a section node
			for i, p := range tf.Parents {
				if p == -1 {
					if !strings.HasPrefix(tf.Nodes[i], "s") || strings.Contains(tf.Nodes[i], "_") {
						t.Errorf("Root node %d has unexpected name %s", i, tf.Nodes[i])
					}
					continue
				}
				if tf.Parents[p] != -1 {
					t.Errorf("Node %d parent %d should be a section root", i, p)
				}
			}
		})
	}
}

func TestTree(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name      string
		depth     int
		breadth   int
		wantNodes int
	}{
		{"tree_1_2", 1, 2, 3},  // root + 2 children
		{"tree_2_2", 2, 2, 7},  // 1 + 2 + 4
		{"tree_3_2", 3, 2, 15}, // 1 + 2 + 4 + 8
		{"tree_2_3", 2, 3, 13}, // 1 + 3 + 9
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := gen.Tree(tt.depth, tt.breadth)

			if len(tf.Nodes) != tt.wantNodes {
				t.Errorf("Tree(%d,%d) nodes = %d, want %d", tt.depth, tt.breadth, len(tf.Nodes), tt.wantNodes)
			}
			if tf.Properties.HasCycles {
				t.Error("Tree should not have cycles")
			}
			if tf.Properties.ExpectedDepth != tt.depth {
				t.Errorf("Tree depth = %d, want %d", tf.Properties.ExpectedDepth, tt.depth)
			}
			if tf.Properties.RootCount != 1 {
				t.Errorf("Tree roots = %d, want 1", tf.Properties.RootCount)
			}
		})
	}
}

func TestForest(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name          string
		components    int
		componentSize int
		wantNodes     int
	}{
		{"forest_2_3", 2, 3, 6},
		{"forest_3_2", 3, 2, 6},
		{"forest_5_1", 5, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := gen.Forest(tt.components, tt.componentSize)

			if len(tf.Nodes) != tt.wantNodes {
				t.Errorf("Forest nodes = %d, want %d", len(tf.Nodes), tt.wantNodes)
			}
			if tf.Properties.RootCount != tt.components {
				t.Errorf("Forest roots = %d, want %d", tf.Properties.RootCount, tt.components)
			}

			roots := 0
			for _, p := range tf.Parents {
				if p == -1 {
					roots++
				}
			}
			if roots != tt.components {
				t.Errorf("Forest actual roots = %d, want %d", roots, tt.components)
			}
		})
	}
}

func TestCycle(t *testing.T) {
	gen := NewDefault()

	tests := []struct {
		name string
		size int
	}{
		{"cycle_2", 2},
		{"cycle_3", 3},
		{"cycle_5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := gen.Cycle(tt.size)

			if !tf.Properties.HasCycles {
				t.Error("Cycle should have cycles")
			}
			if tf.Properties.RootCount != 0 {
				t.Errorf("Cycle roots = %d, want 0", tf.Properties.RootCount)
			}

			// Last node's parent should wrap around to n0
			last := tf.Parents[len(tf.Parents)-1]
			if last != 0 {
				t.Errorf("Last node's parent should wrap to 0, got %d", last)
			}
		})
	}
}

func TestSelfLoop(t *testing.T) {
	gen := NewDefault()
	tf := gen.SelfLoop()

	if len(tf.Nodes) != 1 {
		t.Errorf("SelfLoop should have 1 node, got %d", len(tf.Nodes))
	}
	if tf.Parents[0] != 0 {
		t.Error("SelfLoop node should name itself as parent")
	}
	if !tf.Properties.HasCycles {
		t.Error("SelfLoop should have cycles")
	}
}

func TestRandom(t *testing.T) {
	gen := NewDefault()

	// Test determinism - same seed should produce same result
	tf1 := gen.Random(10, 0.5)

	gen2 := New(DefaultConfig()) // Same seed
	tf2 := gen2.Random(10, 0.5)

	if tf1.Properties.RootCount != tf2.Properties.RootCount {
		t.Errorf("Random not deterministic: %d vs %d roots", tf1.Properties.RootCount, tf2.Properties.RootCount)
	}

	// Verify acyclic shape (parents always earlier in the slice)
	for i, p := range tf1.Parents {
		if p >= i {
			t.Errorf("Random has invalid parent %d for node %d (should be earlier)", p, i)
		}
	}
}

func TestToItems(t *testing.T) {
	gen := NewDefault()
	tf := gen.Chain(3) // n0 > n1 > n2
	items := gen.ToItems(tf)

	if len(items) != 3 {
		t.Errorf("ToItems should produce 3 items, got %d", len(items))
	}

	// First item (n0) should be a root
	if items[0].ParentID != "" {
		t.Errorf("First item (n0) should be a root, has parent %s", items[0].ParentID)
	}

	// Second item (n1) should sit under the first (n0)
	if items[1].ParentID != items[0].ID {
		t.Errorf("Second item should sit under first, parent is %s", items[1].ParentID)
	}

	// Third item (n2) should sit under the second (n1)
	if items[2].ParentID != items[1].ID {
		t.Errorf("Third item should sit under second, parent is %s", items[2].ParentID)
	}

	// Verify all items have valid IDs
	for i, item := range items {
		if item.ID == "" {
			t.Errorf("Item %d has empty ID", i)
		}
		if !strings.HasPrefix(item.ID, "TEST-") {
			t.Errorf("Item %d ID should start with TEST-, got %s", i, item.ID)
		}
	}
}

func TestToItemsSiblingPositions(t *testing.T) {
	gen := NewDefault()
	items := gen.ToItems(gen.Sections(2, 3))

	// Children of each section should carry positions 0, 1, 2
	byParent := make(map[string][]int)
	for _, item := range items {
		byParent[item.ParentID] = append(byParent[item.ParentID], item.Position)
	}

	for parent, positions := range byParent {
		for i, pos := range positions {
			if pos != i {
				t.Errorf("Children of %q have position %d at index %d, want %d", parent, pos, i, i)
			}
		}
	}
}

func TestToItemsWithConfig(t *testing.T) {
	cfg := GeneratorConfig{
		Seed:           123,
		IDPrefix:       "CUSTOM",
		IncludeTags:    true,
		IncludeDue:     true,
		HeadingParents: true,
		StatusMix:      []outline.Status{outline.StatusOpen, outline.StatusDone},
		KindMix:        []outline.Kind{outline.KindTask},
	}
	gen := New(cfg)
	tf := gen.Sections(2, 3)
	items := gen.ToItems(tf)

	// Check prefix
	for _, item := range items {
		if !strings.HasPrefix(item.ID, "CUSTOM-") {
			t.Errorf("Item ID should start with CUSTOM-, got %s", item.ID)
		}
	}

	// Section roots should be headings
	for _, item := range items {
		if item.ParentID == "" && item.Kind != outline.KindHeading {
			t.Errorf("Section root %s should be a heading, got %s", item.ID, item.Kind)
		}
	}

	// Tasks should carry a status
	for _, item := range items {
		if item.Kind == outline.KindTask && item.Status == "" {
			t.Errorf("Task %s has no status", item.ID)
		}
	}

	// Check that at least some items have tags
	hasTags := false
	for _, item := range items {
		if len(item.Tags) > 0 {
			hasTags = true
			break
		}
	}
	if !hasTags {
		t.Error("Expected at least some items to have tags")
	}

	// Check that at least some items have due dates
	hasDue := false
	for _, item := range items {
		if item.DueDate != nil {
			hasDue = true
			break
		}
	}
	if !hasDue {
		t.Error("Expected at least some items to have due dates")
	}
}

func TestToJSONL(t *testing.T) {
	items := QuickChain(3)
	jsonl := ToJSONL(items)

	lines := strings.Split(strings.TrimSpace(jsonl), "\n")
	if len(lines) != 3 {
		t.Errorf("JSONL should have 3 lines, got %d", len(lines))
	}

	// Verify each line is valid JSON
	for i, line := range lines {
		var item outline.Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Errorf("Line %d is invalid JSON: %v", i, err)
		}
	}
}

func TestQuickFunctions(t *testing.T) {
	tests := []struct {
		name   string
		fn     func() []outline.Item
		minLen int
	}{
		{"QuickChain", func() []outline.Item { return QuickChain(5) }, 5},
		{"QuickFlat", func() []outline.Item { return QuickFlat(5) }, 5},
		{"QuickSections", func() []outline.Item { return QuickSections(2, 3) }, 8},
		{"QuickTree", func() []outline.Item { return QuickTree(2, 2) }, 7},
		{"QuickForest", func() []outline.Item { return QuickForest(2, 3) }, 6},
		{"QuickRandom", func() []outline.Item { return QuickRandom(10, 0.3) }, 10},
		{"Empty", func() []outline.Item { return Empty() }, 0},
		{"Single", func() []outline.Item { return Single() }, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := tt.fn()
			if len(items) < tt.minLen {
				t.Errorf("%s returned %d items, want at least %d", tt.name, len(items), tt.minLen)
			}

			// Verify all items are valid
			for i, item := range items {
				if err := item.Validate(); err != nil {
					t.Errorf("%s item %d invalid: %v", tt.name, i, err)
				}
			}
		})
	}
}

func TestDeterminism(t *testing.T) {
	// Generate twice with same config
	cfg := DefaultConfig()

	gen1 := New(cfg)
	items1 := gen1.ToItems(gen1.Random(20, 0.4))

	gen2 := New(cfg)
	items2 := gen2.ToItems(gen2.Random(20, 0.4))

	// Should be identical
	if len(items1) != len(items2) {
		t.Fatalf("Different lengths: %d vs %d", len(items1), len(items2))
	}

	for i := range items1 {
		if items1[i].ID != items2[i].ID {
			t.Errorf("Item %d ID differs: %s vs %s", i, items1[i].ID, items2[i].ID)
		}
		if items1[i].ParentID != items2[i].ParentID {
			t.Errorf("Item %d parent differs: %s vs %s", i, items1[i].ParentID, items2[i].ParentID)
		}
	}
}

func TestTreeFixtureJSON(t *testing.T) {
	gen := NewDefault()
	tf := gen.Chain(5)

	// Should be JSON serializable
	data, err := json.Marshal(tf)
	if err != nil {
		t.Fatalf("Failed to marshal TreeFixture: %v", err)
	}

	// Should round-trip
	var tf2 TreeFixture
	if err := json.Unmarshal(data, &tf2); err != nil {
		t.Fatalf("Failed to unmarshal TreeFixture: %v", err)
	}

	if len(tf2.Nodes) != len(tf.Nodes) {
		t.Errorf("Nodes count differs after round-trip: %d vs %d", len(tf2.Nodes), len(tf.Nodes))
	}
}

// Benchmarks

func BenchmarkChain100(b *testing.B) {
	gen := NewDefault()
	for i := 0; i < b.N; i++ {
		_ = gen.ToItems(gen.Chain(100))
	}
}

func BenchmarkSections100(b *testing.B) {
	gen := NewDefault()
	for i := 0; i < b.N; i++ {
		_ = gen.ToItems(gen.Sections(10, 9))
	}
}

func BenchmarkRandom500(b *testing.B) {
	gen := NewDefault()
	for i := 0; i < b.N; i++ {
		_ = gen.ToItems(gen.Random(500, 0.7))
	}
}

func BenchmarkToJSONL1000(b *testing.B) {
	gen := NewDefault()
	items := gen.ToItems(gen.Chain(1000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ToJSONL(items)
	}
}
