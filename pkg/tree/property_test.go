package tree_test

import (
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/treework/pkg/tree"
)

// refNode mirrors one node in plain pointer form. The reference model is
// deliberately naive (recursive, slice-backed, nothing cached) so that any
// disagreement points at the arena implementation, not the oracle.
type refNode struct {
	id        tree.NodeID
	label     int
	collapsed bool
	container bool
	parent    *refNode
	children  []*refNode
}

type refModel struct {
	roots []*refNode
	live  []*refNode // insertion order, for deterministic sampling
	next  int
}

func (m *refModel) newNode(id tree.NodeID, container bool) *refNode {
	n := &refNode{id: id, label: m.next, container: container, collapsed: container}
	m.next++
	m.live = append(m.live, n)
	return n
}

func (m *refModel) siblingsOf(n *refNode) *[]*refNode {
	if n.parent == nil {
		return &m.roots
	}
	return &n.parent.children
}

func indexIn(list []*refNode, n *refNode) int {
	for i, c := range list {
		if c == n {
			return i
		}
	}
	return -1
}

func (m *refModel) insert(n *refNode, p tree.Placement, ref *refNode) {
	switch p {
	case tree.Before:
		sibs := m.siblingsOf(ref)
		n.parent = ref.parent
		*sibs = slices.Insert(*sibs, indexIn(*sibs, ref), n)
	case tree.After:
		sibs := m.siblingsOf(ref)
		n.parent = ref.parent
		*sibs = slices.Insert(*sibs, indexIn(*sibs, ref)+1, n)
	case tree.FirstChild:
		n.parent = ref
		ref.children = slices.Insert(ref.children, 0, n)
	case tree.LastChild:
		n.parent = ref
		ref.children = append(ref.children, n)
	case tree.Parent:
		sibs := m.siblingsOf(ref)
		n.parent = ref.parent
		(*sibs)[indexIn(*sibs, ref)] = n
		ref.parent = n
		n.children = []*refNode{ref}
		n.collapsed = false
	}
}

func (m *refModel) preorder(n *refNode) []int {
	out := []int{n.label}
	for _, c := range n.children {
		out = append(out, m.preorder(c)...)
	}
	return out
}

func (m *refModel) dropFromLive(n *refNode) {
	dead := map[*refNode]bool{}
	var mark func(*refNode)
	mark = func(x *refNode) {
		dead[x] = true
		for _, c := range x.children {
			mark(c)
		}
	}
	mark(n)
	kept := m.live[:0]
	for _, x := range m.live {
		if !dead[x] {
			kept = append(kept, x)
		}
	}
	m.live = kept
}

func (m *refModel) removeSubtree(n *refNode) []int {
	payloads := m.preorder(n)
	sibs := m.siblingsOf(n)
	*sibs = slices.Delete(*sibs, indexIn(*sibs, n), indexIn(*sibs, n)+1)
	m.dropFromLive(n)
	return payloads
}

func (m *refModel) removeChildren(n *refNode) []int {
	var payloads []int
	for _, c := range n.children {
		payloads = append(payloads, m.preorder(c)...)
		m.dropFromLive(c)
	}
	n.children = nil
	return payloads
}

func (m *refModel) extract(n *refNode) int {
	sibs := m.siblingsOf(n)
	i := indexIn(*sibs, n)
	for _, c := range n.children {
		c.parent = n.parent
	}
	*sibs = slices.Replace(*sibs, i, i+1, n.children...)
	n.children = nil
	m.dropFromLive(n)
	return n.label
}

func (m *refModel) setCollapsed(n *refNode, v bool) {
	if n.collapsed == v {
		return
	}
	if len(n.children) == 0 && !n.container {
		return
	}
	n.collapsed = v
}

type refRow struct {
	id          tree.NodeID
	label       int
	depth       int
	collapsed   bool
	hasChildren bool
}

func (m *refModel) rows() []refRow {
	var out []refRow
	var walk func(n *refNode, depth int)
	walk = func(n *refNode, depth int) {
		out = append(out, refRow{n.id, n.label, depth, n.collapsed, len(n.children) > 0})
		if n.collapsed {
			return
		}
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	for _, r := range m.roots {
		walk(r, 0)
	}
	return out
}

func (m *refModel) depthOf(n *refNode) int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

func (m *refModel) visible(n *refNode) bool {
	for p := n.parent; p != nil; p = p.parent {
		if p.collapsed {
			return false
		}
	}
	return true
}

func rowIDs[T any](tr *tree.Tree[T]) []tree.NodeID {
	rows := tr.Rows()
	out := make([]tree.NodeID, len(rows))
	for i, r := range rows {
		out[i] = r.Node
	}
	return out
}

var placements = []tree.Placement{
	tree.Before, tree.After, tree.FirstChild, tree.LastChild, tree.Parent,
}

// TestTreeMatchesReferenceModel drives the arena through random operation
// sequences and checks the full projection, plus every per-node accessor,
// against the naive model after each step.
func TestTreeMatchesReferenceModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := tree.New[int]()
		m := &refModel{}

		t.Repeat(map[string]func(*rapid.T){
			"appendRoot": func(t *rapid.T) {
				container := rapid.Bool().Draw(t, "container")
				n := m.newNode(tree.NoNode, container)
				if container {
					n.id = tr.AppendContainer(n.label)
				} else {
					n.id = tr.Append(n.label)
				}
				m.roots = append(m.roots, n)
			},
			"insert": func(t *rapid.T) {
				if len(m.live) == 0 {
					t.Skip("no nodes")
				}
				ref := rapid.SampledFrom(m.live).Draw(t, "ref")
				p := rapid.SampledFrom(placements).Draw(t, "placement")
				container := rapid.Bool().Draw(t, "container")
				n := m.newNode(tree.NoNode, container)
				var err error
				if container {
					n.id, err = tr.InsertContainer(n.label, p, ref.id)
				} else {
					n.id, err = tr.Insert(n.label, p, ref.id)
				}
				if err != nil {
					t.Fatalf("Insert(%v): %v", p, err)
				}
				m.insert(n, p, ref)
			},
			"removeSubtree": func(t *rapid.T) {
				if len(m.live) == 0 {
					t.Skip("no nodes")
				}
				ref := rapid.SampledFrom(m.live).Draw(t, "ref")
				got, err := tr.RemoveSubtree(ref.id)
				if err != nil {
					t.Fatalf("RemoveSubtree: %v", err)
				}
				want := m.removeSubtree(ref)
				if !slices.Equal(got, want) {
					t.Fatalf("RemoveSubtree payloads: got %v, want %v", got, want)
				}
			},
			"removeChildren": func(t *rapid.T) {
				if len(m.live) == 0 {
					t.Skip("no nodes")
				}
				ref := rapid.SampledFrom(m.live).Draw(t, "ref")
				got, err := tr.RemoveChildren(ref.id)
				if err != nil {
					t.Fatalf("RemoveChildren: %v", err)
				}
				want := m.removeChildren(ref)
				if !slices.Equal(got, want) {
					t.Fatalf("RemoveChildren payloads: got %v, want %v", got, want)
				}
			},
			"extract": func(t *rapid.T) {
				if len(m.live) == 0 {
					t.Skip("no nodes")
				}
				ref := rapid.SampledFrom(m.live).Draw(t, "ref")
				got, err := tr.Extract(ref.id)
				if err != nil {
					t.Fatalf("Extract: %v", err)
				}
				if want := m.extract(ref); got != want {
					t.Fatalf("Extract payload: got %d, want %d", got, want)
				}
			},
			"setCollapsed": func(t *rapid.T) {
				if len(m.live) == 0 {
					t.Skip("no nodes")
				}
				ref := rapid.SampledFrom(m.live).Draw(t, "ref")
				v := rapid.Bool().Draw(t, "collapsed")
				before := rowIDs(tr)
				changed, err := tr.SetCollapsed(ref.id, v)
				if err != nil {
					t.Fatalf("SetCollapsed: %v", err)
				}
				m.setCollapsed(ref, v)
				after := rowIDs(tr)
				if changed != !slices.Equal(before, after) {
					t.Fatalf("SetCollapsed reported %v but row set equality says %v",
						changed, slices.Equal(before, after))
				}
			},
			"": func(t *rapid.T) {
				checkAgainstModel(t, tr, m)
			},
		})
	})
}

func checkAgainstModel(t *rapid.T, tr *tree.Tree[int], m *refModel) {
	t.Helper()
	want := m.rows()
	got := tr.Rows()
	if len(got) != len(want) {
		t.Fatalf("row count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.Node != w.id || g.Payload != w.label || g.Depth != w.depth ||
			g.Collapsed != w.collapsed || g.HasChildren != w.hasChildren {
			t.Fatalf("row %d: got {%v %d %d %v %v}, want {%v %d %d %v %v}",
				i, g.Node, g.Payload, g.Depth, g.Collapsed, g.HasChildren,
				w.id, w.label, w.depth, w.collapsed, w.hasChildren)
		}
		if j := tr.RowOf(w.id); j != i {
			t.Fatalf("RowOf(row %d) = %d", i, j)
		}
	}

	if tr.Len() != len(m.live) {
		t.Fatalf("Len: got %d, want %d", tr.Len(), len(m.live))
	}
	for _, n := range m.live {
		if !tr.Valid(n.id) {
			t.Fatalf("node %d unexpectedly invalid", n.label)
		}
		if d, err := tr.DepthOf(n.id); err != nil || d != m.depthOf(n) {
			t.Fatalf("DepthOf(%d): got %d (%v), want %d", n.label, d, err, m.depthOf(n))
		}
		if v, err := tr.IsVisible(n.id); err != nil || v != m.visible(n) {
			t.Fatalf("IsVisible(%d): got %v (%v), want %v", n.label, v, err, m.visible(n))
		}
		if c, err := tr.ChildCount(n.id); err != nil || c != len(n.children) {
			t.Fatalf("ChildCount(%d): got %d (%v), want %d", n.label, c, err, len(n.children))
		}
		if col, err := tr.Collapsed(n.id); err != nil || col != n.collapsed {
			t.Fatalf("Collapsed(%d): got %v (%v), want %v", n.label, col, err, n.collapsed)
		}
		parent, err := tr.ParentOf(n.id)
		if err != nil {
			t.Fatalf("ParentOf(%d): %v", n.label, err)
		}
		switch {
		case n.parent == nil && !parent.IsNone():
			t.Fatalf("ParentOf(%d): expected root", n.label)
		case n.parent != nil && parent != n.parent.id:
			t.Fatalf("ParentOf(%d): wrong parent", n.label)
		}
		hidden := !m.visible(n)
		if i := tr.RowOf(n.id); hidden && i != -1 {
			t.Fatalf("RowOf hidden node %d = %d", n.label, i)
		}
	}
}

// TestNavigatorNeverDangles drives a navigator over a mutating tree and
// checks that after OnStructureChanged the selection is always a real row,
// present exactly when the projection is non-empty.
func TestNavigatorNeverDangles(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tr := tree.New[int]()
		m := &refModel{}
		nav := tree.NewNavigator(tr)
		nav.SetWrap(rapid.Bool().Draw(t, "wrap"))

		mutate := func(t *rapid.T) {
			if len(m.live) == 0 || rapid.Bool().Draw(t, "grow") {
				n := m.newNode(tree.NoNode, false)
				n.id = tr.Append(n.label)
				m.roots = append(m.roots, n)
				return
			}
			ref := rapid.SampledFrom(m.live).Draw(t, "ref")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				n := m.newNode(tree.NoNode, false)
				p := rapid.SampledFrom(placements).Draw(t, "placement")
				id, err := tr.Insert(n.label, p, ref.id)
				if err != nil {
					t.Fatalf("Insert: %v", err)
				}
				n.id = id
				m.insert(n, p, ref)
			case 1:
				if _, err := tr.RemoveSubtree(ref.id); err != nil {
					t.Fatalf("RemoveSubtree: %v", err)
				}
				m.removeSubtree(ref)
			case 2:
				v := rapid.Bool().Draw(t, "collapsed")
				if _, err := tr.SetCollapsed(ref.id, v); err != nil {
					t.Fatalf("SetCollapsed: %v", err)
				}
				m.setCollapsed(ref, v)
			}
		}

		t.Repeat(map[string]func(*rapid.T){
			"mutate": func(t *rapid.T) {
				mutate(t)
				nav.OnStructureChanged()
			},
			"move": func(t *rapid.T) {
				switch rapid.IntRange(0, 5).Draw(t, "dir") {
				case 0:
					nav.MoveUp()
				case 1:
					nav.MoveDown()
				case 2:
					nav.MoveBy(rapid.IntRange(-20, 20).Draw(t, "delta"))
				case 3:
					nav.MoveToParent()
				case 4:
					nav.MoveToFirstChild()
				case 5:
					if rapid.Bool().Draw(t, "top") {
						nav.MoveToTop()
					} else {
						nav.MoveToBottom()
					}
				}
			},
			"": func(t *rapid.T) {
				count := tr.RowCount()
				if count == 0 {
					if nav.HasSelection() {
						t.Fatalf("selection %d on empty projection", nav.SelectedRow())
					}
					return
				}
				if !nav.HasSelection() {
					// Selection appears on the first move or structure
					// notification; until then none is legal.
					return
				}
				i := nav.SelectedRow()
				if i < 0 || i >= count {
					t.Fatalf("selection %d out of range [0,%d)", i, count)
				}
				row, ok := tr.RowAt(i)
				if !ok {
					t.Fatalf("no row at selection %d", i)
				}
				if row.Node != nav.SelectedNode() {
					t.Fatalf("selection points at row %d but node differs", i)
				}
			},
		})
	})
}
