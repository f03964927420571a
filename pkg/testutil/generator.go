// Package testutil provides test fixture generators for various outline shapes.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vanderheijden86/treework/pkg/outline"
)

// TreeFixture represents an abstract outline shape for testing tree building
// and projection. This is the format used by testdata/trees/*.json files.
type TreeFixture struct {
	Description string     `json:"description"`
	Nodes       []string   `json:"nodes"`
	Parents     []int      `json:"parents"` // parent index per node, -1 for roots
	Properties  Properties `json:"properties,omitempty"`
}

// Properties holds optional metadata about the fixture.
type Properties struct {
	HasCycles     bool `json:"has_cycles,omitempty"`
	RootCount     int  `json:"root_count,omitempty"`
	ExpectedDepth int  `json:"expected_depth,omitempty"`
}

// ItemFixture represents a set of outline items for integration testing.
type ItemFixture struct {
	Description string         `json:"description"`
	Items       []outline.Item `json:"items"`
}

// GeneratorConfig controls item generation.
type GeneratorConfig struct {
	Seed           int64            // Random seed for determinism (0 = use current time)
	IDPrefix       string           // Prefix for item IDs (default: "TEST")
	BaseTime       time.Time        // Base time for timestamps (default: fixed time)
	IncludeTags    bool             // Generate random tags
	IncludeDue     bool             // Generate due dates
	HeadingParents bool             // Make every node with children a heading
	StatusMix      []outline.Status // Status distribution for tasks (nil = all open)
	KindMix        []outline.Kind   // Kind distribution (nil = all note)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42, // Deterministic
		IDPrefix:  "TEST",
		BaseTime:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		StatusMix: []outline.Status{outline.StatusOpen},
		KindMix:   []outline.Kind{outline.KindNote},
	}
}

// Generator creates test fixtures with various outline shapes.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "TEST"
	}
	if len(cfg.StatusMix) == 0 {
		cfg.StatusMix = []outline.Status{outline.StatusOpen}
	}
	if len(cfg.KindMix) == 0 {
		cfg.KindMix = []outline.Kind{outline.KindNote}
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ============================================================================
// Outline Shape Generators
// ============================================================================

// Chain creates a nesting chain: n0 contains n1 contains n2 ...
// n0 is the single root, n{size-1} is the deepest leaf.
// Properties: depth = size-1, single root
func (g *Generator) Chain(size int) TreeFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		parents[i] = i - 1 // n0 gets -1
	}

	return TreeFixture{
		Description: fmt.Sprintf("Nesting chain of %d nodes: n0 > n1 > ... > n%d", size, size-1),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles:     false,
			RootCount:     1,
			ExpectedDepth: size - 1,
		},
	}
}

// Flat creates a forest of sibling roots with no nesting.
// Properties: depth = 0, every node a root
func (g *Generator) Flat(size int) TreeFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		parents[i] = -1
	}

	return TreeFixture{
		Description: fmt.Sprintf("Flat list of %d root nodes", size),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles:     false,
			RootCount:     size,
			ExpectedDepth: 0,
		},
	}
}

// Sections creates section roots each holding the same number of children.
// Shape: s0 > {s0_i0..}, s1 > {s1_i0..}, ...
// Properties: depth = 1, one root per section
func (g *Generator) Sections(sections, itemsPer int) TreeFixture {
	size := sections * (itemsPer + 1)
	nodes := make([]string, 0, size)
	parents := make([]int, 0, size)

	for s := 0; s < sections; s++ {
		sectionIdx := len(nodes)
		nodes = append(nodes, fmt.Sprintf("s%d", s))
		parents = append(parents, -1)
		for i := 0; i < itemsPer; i++ {
			nodes = append(nodes, fmt.Sprintf("s%d_i%d", s, i))
			parents = append(parents, sectionIdx)
		}
	}

	return TreeFixture{
		Description: fmt.Sprintf("%d sections with %d items each", sections, itemsPer),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles:     false,
			RootCount:     sections,
			ExpectedDepth: 1,
		},
	}
}

// Tree creates a uniform tree with given depth and branching factor.
// Each non-leaf node has `breadth` children.
func (g *Generator) Tree(depth, breadth int) TreeFixture {
	if depth < 1 {
		depth = 1
	}
	if breadth < 1 {
		breadth = 1
	}

	var nodes []string
	var parents []int

	// BFS-style generation
	nodeID := 0
	nodes = append(nodes, fmt.Sprintf("n%d", nodeID))
	parents = append(parents, -1)
	nodeID++

	// Track nodes at each level
	currentLevel := []int{0}

	for d := 0; d < depth; d++ {
		var nextLevel []int
		for _, parent := range currentLevel {
			for b := 0; b < breadth; b++ {
				child := nodeID
				nodes = append(nodes, fmt.Sprintf("n%d", child))
				parents = append(parents, parent)
				nextLevel = append(nextLevel, child)
				nodeID++
			}
		}
		currentLevel = nextLevel
	}

	return TreeFixture{
		Description: fmt.Sprintf("Tree with depth=%d, breadth=%d (%d nodes)", depth, breadth, len(nodes)),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles:     false,
			RootCount:     1,
			ExpectedDepth: depth,
		},
	}
}

// Forest creates multiple independent subtrees.
// Each component is a small nesting chain of `componentSize` nodes.
func (g *Generator) Forest(components, componentSize int) TreeFixture {
	var nodes []string
	var parents []int

	nodeID := 0
	for c := 0; c < components; c++ {
		for i := 0; i < componentSize; i++ {
			nodes = append(nodes, fmt.Sprintf("c%d_n%d", c, i))
			if i == 0 {
				parents = append(parents, -1)
			} else {
				parents = append(parents, nodeID-1)
			}
			nodeID++
		}
	}

	return TreeFixture{
		Description: fmt.Sprintf("%d independent subtrees, each a chain of %d nodes", components, componentSize),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles:     false,
			RootCount:     components,
			ExpectedDepth: componentSize - 1,
		},
	}
}

// Cycle creates a circular parent chain (invalid forest).
// Shape: n0's parent is n1, n1's parent is n2, ..., n{size-1}'s parent is n0.
func (g *Generator) Cycle(size int) TreeFixture {
	nodes := make([]string, size)
	parents := make([]int, size)

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		parents[i] = (i + 1) % size
	}

	return TreeFixture{
		Description: fmt.Sprintf("Parent cycle of %d nodes: n0 under n1 under ... under n0", size),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles: true,
			RootCount: 0,
		},
	}
}

// SelfLoop creates a single node that names itself as parent.
func (g *Generator) SelfLoop() TreeFixture {
	return TreeFixture{
		Description: "Single node claiming itself as parent",
		Nodes:       []string{"n0"},
		Parents:     []int{0},
		Properties: Properties{
			HasCycles: true,
			RootCount: 0,
		},
	}
}

// Random creates a random forest. Each node after the first picks an
// earlier node as parent with probability `nesting`, otherwise becomes
// a root. Earlier-only parents guarantee an acyclic shape.
func (g *Generator) Random(size int, nesting float64) TreeFixture {
	if nesting < 0 {
		nesting = 0
	}
	if nesting > 1 {
		nesting = 1
	}

	nodes := make([]string, size)
	parents := make([]int, size)
	roots := 0

	for i := 0; i < size; i++ {
		nodes[i] = fmt.Sprintf("n%d", i)
		if i > 0 && g.rng.Float64() < nesting {
			parents[i] = g.rng.Intn(i)
		} else {
			parents[i] = -1
			roots++
		}
	}

	return TreeFixture{
		Description: fmt.Sprintf("Random forest with %d nodes, nesting=%.2f (%d roots)", size, nesting, roots),
		Nodes:       nodes,
		Parents:     parents,
		Properties: Properties{
			HasCycles: false,
			RootCount: roots,
		},
	}
}

// ============================================================================
// Item Generators (convert tree fixtures to outline.Item slices)
// ============================================================================

// ToItems converts a TreeFixture to a slice of outline.Item.
func (g *Generator) ToItems(tf TreeFixture) []outline.Item {
	items := make([]outline.Item, len(tf.Nodes))

	// Count children per parent so kinds can be assigned
	childCount := make(map[int]int)
	for _, p := range tf.Parents {
		if p >= 0 {
			childCount[p]++
		}
	}

	// Sibling position counters, keyed by parent index (-1 = roots)
	position := make(map[int]int)

	for i, nodeName := range tf.Nodes {
		id := fmt.Sprintf("%s-%s", g.cfg.IDPrefix, nodeName)
		title := fmt.Sprintf("Item %s", nodeName)

		kind := g.pickKind()
		if g.cfg.HeadingParents && childCount[i] > 0 {
			kind = outline.KindHeading
		}

		item := outline.Item{
			ID:        id,
			Title:     title,
			Kind:      kind,
			Priority:  g.rng.Intn(5), // P0-P4
			Position:  position[tf.Parents[i]],
			CreatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
			UpdatedAt: g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
		}
		position[tf.Parents[i]]++

		if item.Kind == outline.KindTask {
			item.Status = g.pickStatus()
		}

		if p := tf.Parents[i]; p >= 0 {
			item.ParentID = fmt.Sprintf("%s-%s", g.cfg.IDPrefix, tf.Nodes[p])
		}

		// Add tags if configured
		if g.cfg.IncludeTags {
			item.Tags = g.pickTags()
		}

		// Add due dates if configured
		if g.cfg.IncludeDue {
			due := g.cfg.BaseTime.Add(time.Duration(i+1) * 24 * time.Hour)
			item.DueDate = &due
		}

		items[i] = item
	}

	return items
}

// ToJSONL converts items to JSONL format (one JSON object per line).
func ToJSONL(items []outline.Item) string {
	var sb strings.Builder
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Helper methods

func (g *Generator) pickStatus() outline.Status {
	return g.cfg.StatusMix[g.rng.Intn(len(g.cfg.StatusMix))]
}

func (g *Generator) pickKind() outline.Kind {
	return g.cfg.KindMix[g.rng.Intn(len(g.cfg.KindMix))]
}

var sampleTags = []string{"work", "home", "urgent", "someday", "research", "errand", "writing", "review", "idea", "waiting"}

func (g *Generator) pickTags() []string {
	count := g.rng.Intn(3) + 1 // 1-3 tags
	tags := make([]string, 0, count)
	used := make(map[int]bool)
	for len(tags) < count {
		idx := g.rng.Intn(len(sampleTags))
		if !used[idx] {
			used[idx] = true
			tags = append(tags, sampleTags[idx])
		}
	}
	return tags
}

// ============================================================================
// Convenience Functions
// ============================================================================

// QuickChain creates a chain fixture with default settings.
func QuickChain(size int) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Chain(size))
}

// QuickFlat creates a flat fixture with default settings.
func QuickFlat(size int) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Flat(size))
}

// QuickSections creates a sections fixture with default settings.
func QuickSections(sections, itemsPer int) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Sections(sections, itemsPer))
}

// QuickTree creates a tree fixture with default settings.
func QuickTree(depth, breadth int) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Tree(depth, breadth))
}

// QuickForest creates independent subtrees with default settings.
func QuickForest(components, size int) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Forest(components, size))
}

// QuickRandom creates a random forest with default settings.
func QuickRandom(size int, nesting float64) []outline.Item {
	gen := NewDefault()
	return gen.ToItems(gen.Random(size, nesting))
}

// Empty returns an empty item slice for edge case testing.
func Empty() []outline.Item {
	return []outline.Item{}
}

// Single returns a single root item.
func Single() []outline.Item {
	gen := NewDefault()
	return []outline.Item{{
		ID:        fmt.Sprintf("%s-single", gen.cfg.IDPrefix),
		Title:     "Single Item",
		Kind:      outline.KindNote,
		Priority:  1,
		CreatedAt: gen.cfg.BaseTime,
		UpdatedAt: gen.cfg.BaseTime,
	}}
}
