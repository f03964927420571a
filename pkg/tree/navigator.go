package tree

// Navigator tracks a single selected row over a Tree's projection and moves
// it the way list widgets expect: clamped at the edges, one optional wrap
// mode, parent/child jumps, and a repair rule for when the structure changes
// underneath the selection.
//
// A Navigator holds either one selected row or none. It shares its Tree's
// single-threaded contract, and after any structural mutation the caller
// must invoke OnStructureChanged before trusting the selection again.
type Navigator[T any] struct {
	tree *Tree[T]
	row  int
	node NodeID
	// prev is the node that sat one row above the selection when it was
	// last validated. If the selected node disappears, its old neighbor is
	// the nearest preceding row we can still name.
	prev NodeID
	wrap bool
}

// NewNavigator returns a Navigator over t with no selection.
func NewNavigator[T any](t *Tree[T]) *Navigator[T] {
	return &Navigator[T]{tree: t, row: -1}
}

// SetWrap sets whether single-step moves wrap past the ends. Off by
// default: MoveUp on the first row and MoveDown on the last clamp in place.
// Multi-step moves clamp regardless.
func (n *Navigator[T]) SetWrap(wrap bool) { n.wrap = wrap }

// Wrap reports whether single-step wrap is enabled.
func (n *Navigator[T]) Wrap() bool { return n.wrap }

// HasSelection reports whether a row is selected.
func (n *Navigator[T]) HasSelection() bool { return n.row >= 0 }

// SelectedRow returns the selected list position, or -1 when none.
func (n *Navigator[T]) SelectedRow() int { return n.row }

// SelectedNode returns the selected node's identity, or NoNode when none.
func (n *Navigator[T]) SelectedNode() NodeID {
	if n.row < 0 {
		return NoNode
	}
	return n.node
}

// Selection returns the selected row. ok is false when nothing is selected.
func (n *Navigator[T]) Selection() (Row[T], bool) {
	if n.row < 0 {
		return Row[T]{}, false
	}
	return n.tree.RowAt(n.row)
}

// ClearSelection drops the selection.
func (n *Navigator[T]) ClearSelection() {
	n.row = -1
	n.node = NoNode
	n.prev = NoNode
}

func (n *Navigator[T]) setRow(i int) {
	rows := n.tree.Rows()
	n.row = i
	n.node = rows[i].Node
	if i > 0 {
		n.prev = rows[i-1].Node
	} else {
		n.prev = NoNode
	}
}

// ensureSelection gives an unselected navigator the first row. Reports
// whether a selection now exists.
func (n *Navigator[T]) ensureSelection() bool {
	if n.tree.RowCount() == 0 {
		return false
	}
	n.setRow(0)
	return true
}

// MoveUp moves the selection one row up, clamping on the first row unless
// wrap is enabled. With no selection it selects the first row. Reports
// whether the selection changed.
func (n *Navigator[T]) MoveUp() bool {
	if n.row < 0 {
		return n.ensureSelection()
	}
	count := n.tree.RowCount()
	if n.row > 0 {
		n.setRow(n.row - 1)
		return true
	}
	if n.wrap && count > 1 {
		n.setRow(count - 1)
		return true
	}
	return false
}

// MoveDown moves the selection one row down, clamping on the last row
// unless wrap is enabled. With no selection it selects the first row.
// Reports whether the selection changed.
func (n *Navigator[T]) MoveDown() bool {
	if n.row < 0 {
		return n.ensureSelection()
	}
	count := n.tree.RowCount()
	if n.row < count-1 {
		n.setRow(n.row + 1)
		return true
	}
	if n.wrap && count > 1 {
		n.setRow(0)
		return true
	}
	return false
}

// MoveBy moves the selection delta rows (negative is up), clamping into
// range; it never wraps. With no selection it selects the first row.
// Reports whether the selection changed.
func (n *Navigator[T]) MoveBy(delta int) bool {
	if n.row < 0 {
		return n.ensureSelection()
	}
	count := n.tree.RowCount()
	target := n.row + delta
	if target < 0 {
		target = 0
	}
	if target >= count {
		target = count - 1
	}
	if target == n.row {
		return false
	}
	n.setRow(target)
	return true
}

// MoveToTop selects the first row. Reports whether the selection changed.
func (n *Navigator[T]) MoveToTop() bool {
	if n.tree.RowCount() == 0 || n.row == 0 {
		return false
	}
	n.setRow(0)
	return true
}

// MoveToBottom selects the last row. Reports whether the selection changed.
func (n *Navigator[T]) MoveToBottom() bool {
	count := n.tree.RowCount()
	if count == 0 || n.row == count-1 {
		return false
	}
	n.setRow(count - 1)
	return true
}

// MoveToParent selects the parent of the selected node. Reports whether the
// selection changed; roots and empty selections stay put.
func (n *Navigator[T]) MoveToParent() bool {
	if n.row < 0 {
		return false
	}
	parent, err := n.tree.ParentOf(n.node)
	if err != nil || parent.IsNone() {
		return false
	}
	i := n.tree.RowOf(parent)
	if i < 0 {
		return false
	}
	n.setRow(i)
	return true
}

// MoveToFirstChild selects the first child of the selected node. The child
// of an expanded node is by pre-order the very next row. Collapsed or
// childless selections stay put.
func (n *Navigator[T]) MoveToFirstChild() bool {
	row, ok := n.Selection()
	if !ok || !row.HasChildren || row.Collapsed {
		return false
	}
	n.setRow(n.row + 1)
	return true
}

// Select sets the selection to the given node. The node must be alive
// (ErrInvalidNode) and currently visible (ErrNotVisible); on error the
// selection is left unchanged.
func (n *Navigator[T]) Select(id NodeID) error {
	if !n.tree.Valid(id) {
		return ErrInvalidNode
	}
	i := n.tree.RowOf(id)
	if i < 0 {
		return ErrNotVisible
	}
	n.setRow(i)
	return nil
}

// SelectRow sets the selection to list position i. Reports false when i is
// out of range, leaving the selection unchanged.
func (n *Navigator[T]) SelectRow(i int) bool {
	if i < 0 || i >= n.tree.RowCount() {
		return false
	}
	n.setRow(i)
	return true
}

// OnStructureChanged re-validates the selection after the tree has been
// mutated. The repair ladder, best match first:
//
//  1. Empty projection: the selection is cleared.
//  2. No prior selection: the first row is selected.
//  3. The selected node is still visible: its (possibly shifted) row is
//     selected again.
//  4. The selected node is alive but folded away: its nearest visible
//     ancestor is selected, which is exactly the nearest preceding row
//     that survives.
//  5. The selected node is gone: its former upstairs neighbor if that is
//     still visible, otherwise the old position pulled one row back and
//     clamped into range.
func (n *Navigator[T]) OnStructureChanged() {
	rows := n.tree.Rows()
	if len(rows) == 0 {
		n.ClearSelection()
		return
	}
	if n.row < 0 {
		n.setRow(0)
		return
	}
	oldRow := n.row
	if n.tree.Valid(n.node) {
		if i := n.tree.RowOf(n.node); i >= 0 {
			n.setRow(i)
			return
		}
		if ancestors, err := n.tree.Ancestors(n.node); err == nil {
			for a := range ancestors {
				if i := n.tree.RowOf(a); i >= 0 {
					n.setRow(i)
					return
				}
			}
		}
	} else if n.tree.Valid(n.prev) {
		if i := n.tree.RowOf(n.prev); i >= 0 {
			n.setRow(i)
			return
		}
	}
	i := oldRow - 1
	if i >= len(rows) {
		i = len(rows) - 1
	}
	if i < 0 {
		i = 0
	}
	n.setRow(i)
}
