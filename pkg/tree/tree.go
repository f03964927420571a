// Package tree maintains a mutable forest of payload-carrying nodes with
// per-node collapse state and projects it into the flat, ordered list of
// visible rows a terminal list widget can render.
//
// The package is deliberately render-free: it never formats, draws, or
// handles input. It answers one question for the embedding application --
// which rows exist right now, in what order, at what depth, with what
// collapse flag. Everything about drawing those rows belongs to the caller.
//
// A Tree and its Navigator form a single-threaded, synchronous unit. There
// is no internal locking and no reentrancy; callers that share a Tree across
// goroutines must serialize access themselves (a Bubble Tea update loop does
// this naturally).
//
// Nodes are stored in an arena of slots addressed by index, with index-based
// parent and sibling links, so the structure holds no pointer cycles and
// node identity stays stable while the node lives. Identities are
// generation-tagged: once a node is removed its NodeID is detectably dead
// even after the slot is reused.
package tree

import "iter"

// NodeID identifies a node in a Tree. The zero value (NoNode) never names a
// live node. A NodeID remains valid until the node it names is removed;
// after that every operation using it reports ErrInvalidNode.
type NodeID struct {
	index int32
	gen   uint32
}

// NoNode is the null node identity. ParentOf returns it for roots.
var NoNode = NodeID{}

// IsNone reports whether id is the null identity.
func (id NodeID) IsNone() bool { return id == NoNode }

const none = int32(-1)

// slot is one arena cell. Links are slot indices; none (-1) terminates.
type slot[T any] struct {
	payload    T
	parent     int32
	firstChild int32
	lastChild  int32
	nextSib    int32
	childCount int
	gen        uint32
	collapsed  bool
	container  bool
	live       bool
}

// Tree is a mutable forest with per-node collapse state and a cached
// projection of its visible rows. The zero value is not usable; construct
// with New.
type Tree[T any] struct {
	slots     []slot[T]
	free      []int32
	firstRoot int32
	lastRoot  int32
	count     int

	rows     []Row[T]
	rowIndex map[NodeID]int
	dirty    bool
}

// New returns an empty Tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{
		firstRoot: none,
		lastRoot:  none,
		dirty:     true,
	}
}

// Len returns the number of live nodes in the tree.
func (t *Tree[T]) Len() int { return t.count }

// Valid reports whether id names a live node in this tree.
func (t *Tree[T]) Valid(id NodeID) bool {
	_, ok := t.slotOf(id)
	return ok
}

// slotOf resolves id to its slot, rejecting out-of-range indices, freed
// slots, and identities from a previous occupant of a reused slot.
func (t *Tree[T]) slotOf(id NodeID) (*slot[T], bool) {
	if id.index < 0 || int(id.index) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[id.index]
	if !s.live || s.gen != id.gen {
		return nil, false
	}
	return s, true
}

func (t *Tree[T]) idAt(idx int32) NodeID {
	return NodeID{index: idx, gen: t.slots[idx].gen}
}

// alloc claims a slot (reusing freed ones first) and initializes it as an
// unlinked node. Generations survive reuse so stale ids stay dead.
func (t *Tree[T]) alloc(payload T, container bool) int32 {
	var idx int32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.slots = append(t.slots, slot[T]{gen: 1})
		idx = int32(len(t.slots) - 1)
	}
	s := &t.slots[idx]
	s.payload = payload
	s.parent = none
	s.firstChild = none
	s.lastChild = none
	s.nextSib = none
	s.childCount = 0
	s.container = container
	// Containers fold even when empty and start out folded.
	s.collapsed = container
	s.live = true
	t.count++
	return idx
}

// freeSlot returns a slot to the free list. The generation bump is what
// invalidates every NodeID that named this occupant.
func (t *Tree[T]) freeSlot(idx int32) {
	s := &t.slots[idx]
	var zero T
	s.payload = zero
	s.live = false
	s.gen++
	s.parent = none
	s.firstChild = none
	s.lastChild = none
	s.nextSib = none
	s.childCount = 0
	s.collapsed = false
	s.container = false
	t.free = append(t.free, idx)
	t.count--
}

// Sibling-list bounds. parent == none addresses the root list, so every
// splice below works identically for roots and children.

func (t *Tree[T]) first(parent int32) int32 {
	if parent < 0 {
		return t.firstRoot
	}
	return t.slots[parent].firstChild
}

func (t *Tree[T]) last(parent int32) int32 {
	if parent < 0 {
		return t.lastRoot
	}
	return t.slots[parent].lastChild
}

func (t *Tree[T]) setFirst(parent, idx int32) {
	if parent < 0 {
		t.firstRoot = idx
	} else {
		t.slots[parent].firstChild = idx
	}
}

func (t *Tree[T]) setLast(parent, idx int32) {
	if parent < 0 {
		t.lastRoot = idx
	} else {
		t.slots[parent].lastChild = idx
	}
}

func (t *Tree[T]) bumpChildCount(parent int32, delta int) {
	if parent >= 0 {
		t.slots[parent].childCount += delta
	}
}

// prevSibling walks the sibling chain and returns the index of the node
// before idx, or none when idx is the first sibling.
func (t *Tree[T]) prevSibling(parent, idx int32) int32 {
	prev := none
	for c := t.first(parent); c >= 0; c = t.slots[c].nextSib {
		if c == idx {
			return prev
		}
		prev = c
	}
	return none
}

func (t *Tree[T]) linkLast(parent, child int32) {
	t.slots[child].parent = parent
	if t.first(parent) < 0 {
		t.setFirst(parent, child)
		t.setLast(parent, child)
	} else {
		t.slots[t.last(parent)].nextSib = child
		t.setLast(parent, child)
	}
	t.bumpChildCount(parent, 1)
}

func (t *Tree[T]) linkFirst(parent, child int32) {
	t.slots[child].parent = parent
	old := t.first(parent)
	t.slots[child].nextSib = old
	t.setFirst(parent, child)
	if old < 0 {
		t.setLast(parent, child)
	}
	t.bumpChildCount(parent, 1)
}

func (t *Tree[T]) linkAfter(ref, child int32) {
	parent := t.slots[ref].parent
	t.slots[child].parent = parent
	t.slots[child].nextSib = t.slots[ref].nextSib
	t.slots[ref].nextSib = child
	if t.last(parent) == ref {
		t.setLast(parent, child)
	}
	t.bumpChildCount(parent, 1)
}

func (t *Tree[T]) linkBefore(ref, child int32) {
	parent := t.slots[ref].parent
	prev := t.prevSibling(parent, ref)
	t.slots[child].parent = parent
	t.slots[child].nextSib = ref
	if prev < 0 {
		t.setFirst(parent, child)
	} else {
		t.slots[prev].nextSib = child
	}
	t.bumpChildCount(parent, 1)
}

// unlink detaches idx from its sibling list without freeing it. The node's
// own child links are left intact.
func (t *Tree[T]) unlink(idx int32) {
	parent := t.slots[idx].parent
	prev := t.prevSibling(parent, idx)
	next := t.slots[idx].nextSib
	if prev < 0 {
		t.setFirst(parent, next)
	} else {
		t.slots[prev].nextSib = next
	}
	if t.last(parent) == idx {
		t.setLast(parent, prev)
	}
	t.slots[idx].parent = none
	t.slots[idx].nextSib = none
	t.bumpChildCount(parent, -1)
}

// Append adds payload as the last root and returns its identity.
func (t *Tree[T]) Append(payload T) NodeID {
	return t.appendNode(payload, false)
}

// AppendContainer adds a container node as the last root. Container nodes
// keep a meaningful collapse flag even while childless and start collapsed.
func (t *Tree[T]) AppendContainer(payload T) NodeID {
	return t.appendNode(payload, true)
}

func (t *Tree[T]) appendNode(payload T, container bool) NodeID {
	idx := t.alloc(payload, container)
	t.linkLast(none, idx)
	t.dirty = true
	return t.idAt(idx)
}

// Insert splices a new node at the given placement relative to ref and
// returns its identity. Validation happens before any link is touched: a
// failed insert leaves the tree exactly as it was.
func (t *Tree[T]) Insert(payload T, p Placement, ref NodeID) (NodeID, error) {
	return t.insertNode(payload, p, ref, false)
}

// InsertContainer is Insert for container nodes.
func (t *Tree[T]) InsertContainer(payload T, p Placement, ref NodeID) (NodeID, error) {
	return t.insertNode(payload, p, ref, true)
}

func (t *Tree[T]) insertNode(payload T, p Placement, ref NodeID, container bool) (NodeID, error) {
	if !p.valid() {
		return NoNode, ErrInvalidPlacement
	}
	if _, ok := t.slotOf(ref); !ok {
		return NoNode, ErrInvalidNode
	}

	// alloc may grow the arena; work with indices from here on.
	refIdx := ref.index
	idx := t.alloc(payload, container)

	switch p {
	case Before:
		t.linkBefore(refIdx, idx)
	case After:
		t.linkAfter(refIdx, idx)
	case FirstChild:
		t.linkFirst(refIdx, idx)
	case LastChild:
		t.linkLast(refIdx, idx)
	case Parent:
		t.adoptAsParent(refIdx, idx)
	}

	t.dirty = true
	return t.idAt(idx), nil
}

// adoptAsParent splices idx into ref's position and reattaches ref beneath
// it. The surrounding child count does not change: one occupant is swapped
// for another.
func (t *Tree[T]) adoptAsParent(refIdx, idx int32) {
	parent := t.slots[refIdx].parent
	prev := t.prevSibling(parent, refIdx)

	t.slots[idx].parent = parent
	t.slots[idx].nextSib = t.slots[refIdx].nextSib
	if prev < 0 {
		t.setFirst(parent, idx)
	} else {
		t.slots[prev].nextSib = idx
	}
	if t.last(parent) == refIdx {
		t.setLast(parent, idx)
	}

	t.slots[refIdx].parent = idx
	t.slots[refIdx].nextSib = none
	t.slots[idx].firstChild = refIdx
	t.slots[idx].lastChild = refIdx
	t.slots[idx].childCount = 1
	// The new parent has a child from the start, so it is born expanded
	// even as a container.
	t.slots[idx].collapsed = false
}

// RemoveSubtree removes the node and every descendant. It returns the
// removed payloads in depth-first pre-order, the node's own payload first.
// All removed identities are invalid afterwards.
func (t *Tree[T]) RemoveSubtree(id NodeID) ([]T, error) {
	if _, ok := t.slotOf(id); !ok {
		return nil, ErrInvalidNode
	}
	idx := id.index
	t.unlink(idx)
	removed := t.freeSubtree(idx)
	t.dirty = true
	return removed, nil
}

// RemoveChildren removes every descendant of the node but keeps the node
// itself, collapse flag included. It returns the removed payloads in
// depth-first pre-order.
func (t *Tree[T]) RemoveChildren(id NodeID) ([]T, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return nil, ErrInvalidNode
	}
	var removed []T
	for c := s.firstChild; c >= 0; {
		next := t.slots[c].nextSib
		removed = append(removed, t.freeSubtree(c)...)
		c = next
	}
	s.firstChild = none
	s.lastChild = none
	s.childCount = 0
	t.dirty = true
	return removed, nil
}

// Extract removes only the node itself: its children are spliced into its
// position in the parent's child list, keeping their order, each promoted
// one level up. Returns the extracted payload.
func (t *Tree[T]) Extract(id NodeID) (T, error) {
	var zero T
	s, ok := t.slotOf(id)
	if !ok {
		return zero, ErrInvalidNode
	}
	idx := id.index
	parent := s.parent
	payload := s.payload
	next := s.nextSib
	prev := t.prevSibling(parent, idx)

	var kids []int32
	for c := s.firstChild; c >= 0; c = t.slots[c].nextSib {
		kids = append(kids, c)
	}

	if len(kids) > 0 {
		for _, k := range kids {
			t.slots[k].parent = parent
		}
		if prev < 0 {
			t.setFirst(parent, kids[0])
		} else {
			t.slots[prev].nextSib = kids[0]
		}
		t.slots[kids[len(kids)-1]].nextSib = next
		if t.last(parent) == idx {
			t.setLast(parent, kids[len(kids)-1])
		}
	} else {
		if prev < 0 {
			t.setFirst(parent, next)
		} else {
			t.slots[prev].nextSib = next
		}
		if t.last(parent) == idx {
			t.setLast(parent, prev)
		}
	}
	t.bumpChildCount(parent, len(kids)-1)

	t.freeSlot(idx)
	t.dirty = true
	return payload, nil
}

// freeSubtree frees idx and all its descendants, returning their payloads
// in pre-order. Iterative with an explicit stack.
func (t *Tree[T]) freeSubtree(root int32) []T {
	var out []T
	stack := []int32{root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := &t.slots[idx]
		out = append(out, s.payload)

		// Collect children before the slot is wiped, pushed in reverse so
		// the first child pops first.
		var kids []int32
		for c := s.firstChild; c >= 0; c = t.slots[c].nextSib {
			kids = append(kids, c)
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
		t.freeSlot(idx)
	}
	return out
}

// Clear removes every node. All previously issued identities become invalid;
// slot generations survive so stale ids cannot alias nodes inserted later.
func (t *Tree[T]) Clear() {
	for i := range t.slots {
		if t.slots[i].live {
			t.freeSlot(int32(i))
		}
	}
	t.firstRoot = none
	t.lastRoot = none
	t.dirty = true
}

// SetCollapsed sets the node's collapse flag and reports whether the visible
// row set changed. The two are distinct on purpose: flipping the flag of a
// hidden node, or of a childless container, changes row contents but not
// row membership and reports false. On a childless non-container node the
// call is a complete no-op. Setting the flag to its current value is
// idempotent. Never an error beyond a dead identity.
func (t *Tree[T]) SetCollapsed(id NodeID, collapsed bool) (bool, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return false, ErrInvalidNode
	}
	if s.collapsed == collapsed {
		return false, nil
	}
	if s.childCount == 0 && !s.container {
		// A leaf has nothing to fold; the flag stays clear.
		return false, nil
	}
	s.collapsed = collapsed
	t.dirty = true
	if s.childCount == 0 {
		// Childless container: indicator changes, membership does not.
		return false, nil
	}
	// Membership changes only if the node itself is on a visible path. No
	// row arithmetic happens here at all, so a hidden node cannot shrink a
	// range it never occupied.
	return t.visibleSlot(id.index), nil
}

// ToggleCollapsed flips the node's collapse flag. Same result contract as
// SetCollapsed.
func (t *Tree[T]) ToggleCollapsed(id NodeID) (bool, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return false, ErrInvalidNode
	}
	return t.SetCollapsed(id, !s.collapsed)
}

// Collapsed returns the node's collapse flag.
func (t *Tree[T]) Collapsed(id NodeID) (bool, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return false, ErrInvalidNode
	}
	return s.collapsed, nil
}

// IsContainer reports whether the node was inserted as a container.
func (t *Tree[T]) IsContainer(id NodeID) (bool, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return false, ErrInvalidNode
	}
	return s.container, nil
}

// SetContainer changes whether the node is a container. Demoting a childless
// container clears its collapse flag, since a plain leaf has nothing to fold.
func (t *Tree[T]) SetContainer(id NodeID, container bool) error {
	s, ok := t.slotOf(id)
	if !ok {
		return ErrInvalidNode
	}
	if s.container == container {
		return nil
	}
	s.container = container
	if !container && s.childCount == 0 {
		s.collapsed = false
	}
	t.dirty = true
	return nil
}

// HasChildren reports whether the node has at least one child.
func (t *Tree[T]) HasChildren(id NodeID) (bool, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return false, ErrInvalidNode
	}
	return s.childCount > 0, nil
}

// ChildCount returns the number of direct children.
func (t *Tree[T]) ChildCount(id NodeID) (int, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return 0, ErrInvalidNode
	}
	return s.childCount, nil
}

// Payload returns a copy of the node's payload.
func (t *Tree[T]) Payload(id NodeID) (T, error) {
	s, ok := t.slotOf(id)
	if !ok {
		var zero T
		return zero, ErrInvalidNode
	}
	return s.payload, nil
}

// SetPayload replaces the node's payload. Rows carry payload copies, so the
// cached projection is invalidated.
func (t *Tree[T]) SetPayload(id NodeID, payload T) error {
	s, ok := t.slotOf(id)
	if !ok {
		return ErrInvalidNode
	}
	s.payload = payload
	t.dirty = true
	return nil
}

// ParentOf returns the node's parent, or NoNode for roots.
func (t *Tree[T]) ParentOf(id NodeID) (NodeID, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return NoNode, ErrInvalidNode
	}
	if s.parent < 0 {
		return NoNode, nil
	}
	return t.idAt(s.parent), nil
}

// Ancestors returns a lazy sequence of the node's ancestors, nearest first.
// The sequence is finite (bounded by depth) and restartable: ranging again
// re-walks from the node. Mutating the tree while ranging is caller error.
func (t *Tree[T]) Ancestors(id NodeID) (iter.Seq[NodeID], error) {
	if _, ok := t.slotOf(id); !ok {
		return nil, ErrInvalidNode
	}
	start := id.index
	return func(yield func(NodeID) bool) {
		for p := t.slots[start].parent; p >= 0; p = t.slots[p].parent {
			if !yield(t.idAt(p)) {
				return
			}
		}
	}, nil
}

// Children returns a lazy sequence of the node's direct children in sibling
// order. Unknown or dead ids yield an empty sequence; use Valid or the
// scalar accessors when the distinction matters.
func (t *Tree[T]) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		s, ok := t.slotOf(id)
		if !ok {
			return
		}
		for c := s.firstChild; c >= 0; c = t.slots[c].nextSib {
			if !yield(t.idAt(c)) {
				return
			}
		}
	}
}

// Roots returns a lazy sequence of the root nodes in order.
func (t *Tree[T]) Roots() iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for r := t.firstRoot; r >= 0; r = t.slots[r].nextSib {
			if !yield(t.idAt(r)) {
				return
			}
		}
	}
}

// DepthOf returns the node's depth: the number of ancestors between it and
// its root. Roots have depth 0. O(depth) parent walk, no recursion.
func (t *Tree[T]) DepthOf(id NodeID) (int, error) {
	s, ok := t.slotOf(id)
	if !ok {
		return 0, ErrInvalidNode
	}
	depth := 0
	for p := s.parent; p >= 0; p = t.slots[p].parent {
		depth++
	}
	return depth, nil
}

// IsVisible reports whether the node would appear in the projection: true
// iff every ancestor is expanded. A node's own collapse flag does not affect
// its visibility, only its descendants'.
func (t *Tree[T]) IsVisible(id NodeID) (bool, error) {
	if _, ok := t.slotOf(id); !ok {
		return false, ErrInvalidNode
	}
	return t.visibleSlot(id.index), nil
}

func (t *Tree[T]) visibleSlot(idx int32) bool {
	for p := t.slots[idx].parent; p >= 0; p = t.slots[p].parent {
		if t.slots[p].collapsed {
			return false
		}
	}
	return true
}
