package tree

// Row is one visible line of the projection: a transient view row, not a
// stored object. It carries the node's identity, its depth, its collapse
// flag, and a copy of its payload; everything else about presentation is the
// renderer's business.
type Row[T any] struct {
	// Node identifies the projected node. Valid until the node is removed.
	Node NodeID
	// Depth is the node's ancestor count. Roots project at depth 0.
	Depth int
	// Collapsed is the node's own collapse flag, for drawing fold markers.
	Collapsed bool
	// HasChildren reports whether the node has at least one child.
	HasChildren bool
	// Container reports whether the node was inserted as a container.
	Container bool
	// Payload is a copy of the node's payload at projection time.
	Payload T
}

// Rows returns the current projection: every visible node in depth-first
// pre-order. A node appears before its descendants, siblings in insertion
// order, and descendants of a collapsed node do not appear at all; that one
// rule produces the whole list. The slice is owned by the tree and valid
// until the next mutation.
func (t *Tree[T]) Rows() []Row[T] {
	t.rebuild()
	return t.rows
}

// RowCount returns the number of visible rows.
func (t *Tree[T]) RowCount() int {
	t.rebuild()
	return len(t.rows)
}

// RowAt returns the row at list position i. ok is false when i is out of
// range.
func (t *Tree[T]) RowAt(i int) (Row[T], bool) {
	t.rebuild()
	if i < 0 || i >= len(t.rows) {
		return Row[T]{}, false
	}
	return t.rows[i], true
}

// RowOf returns the list position of the node's row, or -1 when the node is
// dead or hidden under a collapsed ancestor.
func (t *Tree[T]) RowOf(id NodeID) int {
	t.rebuild()
	if i, ok := t.rowIndex[id]; ok {
		return i
	}
	return -1
}

// rebuild recomputes the projection if any mutation happened since the last
// one. A full rebuild is O(visible nodes) and allocation-free once the row
// slice has reached its high-water mark; mutation-heavy call sites pay for
// at most one rebuild per read.
func (t *Tree[T]) rebuild() {
	if !t.dirty {
		return
	}
	t.rows = t.rows[:0]
	if t.rowIndex == nil {
		t.rowIndex = make(map[NodeID]int, t.count)
	} else {
		clear(t.rowIndex)
	}

	// Pre-order walk using the stored parent/sibling links as the stack:
	// descend into firstChild only when the node is expanded, otherwise
	// climb via nextSib, falling back to the parent chain. No recursion,
	// no auxiliary stack.
	idx := t.firstRoot
	depth := 0
	for idx >= 0 {
		s := &t.slots[idx]
		id := t.idAt(idx)
		t.rowIndex[id] = len(t.rows)
		t.rows = append(t.rows, Row[T]{
			Node:        id,
			Depth:       depth,
			Collapsed:   s.collapsed,
			HasChildren: s.childCount > 0,
			Container:   s.container,
			Payload:     s.payload,
		})

		if s.firstChild >= 0 && !s.collapsed {
			idx = s.firstChild
			depth++
			continue
		}
		for idx >= 0 {
			if next := t.slots[idx].nextSib; next >= 0 {
				idx = next
				break
			}
			idx = t.slots[idx].parent
			depth--
		}
	}
	t.dirty = false
}
