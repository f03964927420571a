package outline

import (
	"fmt"
	"slices"

	"github.com/vanderheijden86/treework/pkg/tree"
)

// BuildOptions configures BuildTree's handling of malformed input.
type BuildOptions struct {
	// WarningHandler receives one message per repaired defect (duplicate
	// ids, unknown parents, parent cycles). Nil discards them.
	WarningHandler func(string)
}

// BuildTree assembles items into a tree. Sibling order follows Compare.
// Defects are repaired, never fatal: duplicate ids keep their first record,
// items with unknown parents become roots, and parent cycles are broken at
// their first-sorted member.
func BuildTree(items []Item) (*tree.Tree[Item], map[string]tree.NodeID) {
	return BuildTreeWithOptions(items, BuildOptions{})
}

// BuildTreeWithOptions is BuildTree with warning reporting.
func BuildTreeWithOptions(items []Item, opts BuildOptions) (*tree.Tree[Item], map[string]tree.NodeID) {
	warn := opts.WarningHandler
	if warn == nil {
		warn = func(string) {}
	}

	sorted := make([]Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ID] {
			warn(fmt.Sprintf("duplicate item id %q: keeping first, ignoring later record", it.ID))
			continue
		}
		seen[it.ID] = true
		sorted = append(sorted, it)
	}
	slices.SortStableFunc(sorted, Compare)

	parentOf := make(map[string]string, len(sorted))
	for _, it := range sorted {
		parentOf[it.ID] = it.ParentID
	}

	// Cycle guard: chase each item's parent chain. When the walk re-enters
	// its own path the chain has looped; the link is cut at the member
	// where the loop closes, which turns the whole cycle into an ordinary
	// subtree. Chains that reach a root clear every id on the way so each
	// id is chased at most once.
	reachesRoot := make(map[string]bool, len(sorted))
	for _, it := range sorted {
		var path []string
		onPath := make(map[string]bool)
		cur := it.ID
		for {
			if reachesRoot[cur] {
				break
			}
			if onPath[cur] {
				warn(fmt.Sprintf("parent cycle through %q: treating it as a root", cur))
				parentOf[cur] = ""
				break
			}
			onPath[cur] = true
			path = append(path, cur)
			p := parentOf[cur]
			if p == "" || !seen[p] {
				break
			}
			cur = p
		}
		for _, id := range path {
			reachesRoot[id] = true
		}
	}

	// Group children under their effective parent, roots under "".
	childrenOf := make(map[string][]Item, len(sorted))
	for _, it := range sorted {
		p := parentOf[it.ID]
		if p != "" && !seen[p] {
			warn(fmt.Sprintf("item %q references unknown parent %q: treating it as a root", it.ID, p))
			p = ""
		}
		childrenOf[p] = append(childrenOf[p], it)
	}

	tr := tree.New[Item]()
	index := make(map[string]tree.NodeID, len(sorted))

	type frame struct {
		item Item
		node tree.NodeID
	}
	var stack []frame
	for _, root := range childrenOf[""] {
		node := appendRoot(tr, root)
		index[root.ID] = node
		stack = append(stack, frame{root, node})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range childrenOf[f.item.ID] {
			node, err := insertChild(tr, child, f.node)
			if err != nil {
				// Unreachable: the parent node was just created.
				warn(fmt.Sprintf("attaching %q under %q: %v", child.ID, f.item.ID, err))
				continue
			}
			index[child.ID] = node
			stack = append(stack, frame{child, node})
		}
	}

	return tr, index
}

func appendRoot(tr *tree.Tree[Item], it Item) tree.NodeID {
	if it.IsContainer() {
		return tr.AppendContainer(it)
	}
	return tr.Append(it)
}

func insertChild(tr *tree.Tree[Item], it Item, parent tree.NodeID) (tree.NodeID, error) {
	if it.IsContainer() {
		return tr.InsertContainer(it, tree.LastChild, parent)
	}
	return tr.Insert(it, tree.LastChild, parent)
}

// Flatten walks the whole tree, collapsed branches included, and returns
// the items in depth-first pre-order with ParentID and Position rewritten
// from the structure. The result round-trips through BuildTree.
func Flatten(tr *tree.Tree[Item]) []Item {
	out := make([]Item, 0, tr.Len())

	type frame struct {
		node     tree.NodeID
		parentID string
		position int
	}
	var stack []frame
	push := func(parentID string, children []tree.NodeID) {
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{children[i], parentID, i})
		}
	}

	var roots []tree.NodeID
	for id := range tr.Roots() {
		roots = append(roots, id)
	}
	push("", roots)

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		it, err := tr.Payload(f.node)
		if err != nil {
			continue
		}
		it.ParentID = f.parentID
		it.Position = f.position
		out = append(out, it)

		var kids []tree.NodeID
		for id := range tr.Children(f.node) {
			kids = append(kids, id)
		}
		push(it.ID, kids)
	}
	return out
}
