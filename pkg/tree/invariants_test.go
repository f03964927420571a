package tree

import "testing"

// checkIntegrity walks the raw arena and verifies every structural
// invariant the exported API relies on: link symmetry, child counts,
// acyclic parent chains, and free-list bookkeeping.
func checkIntegrity(t *testing.T, tr *Tree[int]) {
	t.Helper()

	liveCount := 0
	for i := range tr.slots {
		s := &tr.slots[i]
		if !s.live {
			continue
		}
		liveCount++
		idx := int32(i)

		if s.parent >= 0 && !tr.slots[s.parent].live {
			t.Fatalf("slot %d: dead parent %d", i, s.parent)
		}

		// The node must appear exactly once in its parent's child chain.
		seen := 0
		for c := tr.first(s.parent); c >= 0; c = tr.slots[c].nextSib {
			if c == idx {
				seen++
			}
		}
		if seen != 1 {
			t.Fatalf("slot %d: appears %d times in its sibling chain", i, seen)
		}

		// Child chain: every entry live and pointing back, lastChild is the
		// final link, childCount matches.
		n := 0
		last := int32(-1)
		for c := s.firstChild; c >= 0; c = tr.slots[c].nextSib {
			if !tr.slots[c].live {
				t.Fatalf("slot %d: dead child %d", i, c)
			}
			if tr.slots[c].parent != idx {
				t.Fatalf("slot %d: child %d points at parent %d", i, c, tr.slots[c].parent)
			}
			last = c
			n++
			if n > tr.count {
				t.Fatalf("slot %d: sibling chain longer than the tree", i)
			}
		}
		if n != s.childCount {
			t.Fatalf("slot %d: childCount %d but chain has %d", i, s.childCount, n)
		}
		if last != s.lastChild {
			t.Fatalf("slot %d: lastChild %d but chain ends at %d", i, s.lastChild, last)
		}

		// Parent chain terminates: no cycles.
		steps := 0
		for p := s.parent; p >= 0; p = tr.slots[p].parent {
			steps++
			if steps > tr.count {
				t.Fatalf("slot %d: parent chain does not terminate", i)
			}
		}
	}

	if liveCount != tr.count {
		t.Fatalf("count %d but %d live slots", tr.count, liveCount)
	}
	if len(tr.free)+tr.count != len(tr.slots) {
		t.Fatalf("free %d + live %d != slots %d", len(tr.free), tr.count, len(tr.slots))
	}
	for _, f := range tr.free {
		if tr.slots[f].live {
			t.Fatalf("free list holds live slot %d", f)
		}
	}

	// Root chain: all live, parentless, ending at lastRoot.
	last := int32(-1)
	n := 0
	for r := tr.firstRoot; r >= 0; r = tr.slots[r].nextSib {
		if !tr.slots[r].live || tr.slots[r].parent != none {
			t.Fatalf("root chain holds bad slot %d", r)
		}
		last = r
		n++
		if n > tr.count {
			t.Fatal("root chain does not terminate")
		}
	}
	if last != tr.lastRoot {
		t.Fatalf("lastRoot %d but chain ends at %d", tr.lastRoot, last)
	}
}

func TestArenaIntegrityThroughMutations(t *testing.T) {
	tr := New[int]()
	checkIntegrity(t, tr)

	a := tr.Append(1)
	b := tr.Append(2)
	checkIntegrity(t, tr)

	a1, err := tr.Insert(11, LastChild, a)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Insert(12, LastChild, a); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Insert(10, FirstChild, a); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	if _, err := tr.Insert(0, Before, a); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Insert(15, After, a); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	w, err := tr.Insert(100, Parent, a)
	if err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	if _, err := tr.SetCollapsed(w, true); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	if _, err := tr.RemoveChildren(a); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)
	if tr.Valid(a1) {
		t.Error("expected removed child to be invalid")
	}

	if _, err := tr.Extract(w); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	if _, err := tr.RemoveSubtree(a); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	if _, err := tr.RemoveSubtree(b); err != nil {
		t.Fatal(err)
	}
	checkIntegrity(t, tr)

	tr.Clear()
	checkIntegrity(t, tr)
}

func TestSlotReuseKeepsGenerationsMoving(t *testing.T) {
	tr := New[int]()
	var ids []NodeID
	for round := 0; round < 3; round++ {
		for i := 0; i < 4; i++ {
			ids = append(ids, tr.Append(round*10+i))
		}
		for _, id := range ids[len(ids)-4:] {
			if _, err := tr.RemoveSubtree(id); err != nil {
				t.Fatal(err)
			}
		}
		checkIntegrity(t, tr)
	}
	// Every identity from every round must be dead, and the arena must not
	// have grown past the working-set size.
	for _, id := range ids {
		if tr.Valid(id) {
			t.Errorf("identity %+v survived removal", id)
		}
	}
	if len(tr.slots) != 4 {
		t.Errorf("expected 4 slots after reuse, got %d", len(tr.slots))
	}
}

func TestProjectionCacheInvalidation(t *testing.T) {
	tr := New[int]()
	a := tr.Append(1)
	if got := tr.RowCount(); got != 1 {
		t.Fatalf("expected 1 row, got %d", got)
	}
	if tr.dirty {
		t.Error("expected cache clean after read")
	}

	if _, err := tr.Insert(2, LastChild, a); err != nil {
		t.Fatal(err)
	}
	if !tr.dirty {
		t.Error("expected insert to dirty the cache")
	}
	tr.Rows()
	if tr.dirty {
		t.Error("expected read to clean the cache")
	}

	// Reads alone never flip the flag back.
	tr.RowOf(a)
	tr.RowAt(0)
	if tr.dirty {
		t.Error("expected reads to leave the cache clean")
	}
}
