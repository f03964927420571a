package tree_test

import (
	"math/rand"

	"github.com/vanderheijden86/treework/pkg/tree"
)

// Topology generators for benchmarks. Each builds a specific shape so the
// projection and mutation paths get exercised under different link layouts.

// buildChain creates n nodes in a single parent-child chain: worst case for
// depth-dependent walks.
func buildChain(n int) *tree.Tree[int] {
	tr := tree.New[int]()
	id := tr.Append(0)
	for i := 1; i < n; i++ {
		next, err := tr.Insert(i, tree.LastChild, id)
		if err != nil {
			panic(err)
		}
		id = next
	}
	return tr
}

// buildWide creates one root with n-1 direct children: worst case for
// sibling-chain walks.
func buildWide(n int) *tree.Tree[int] {
	tr := tree.New[int]()
	root := tr.Append(0)
	for i := 1; i < n; i++ {
		if _, err := tr.Insert(i, tree.LastChild, root); err != nil {
			panic(err)
		}
	}
	return tr
}

// buildBranchy creates a balanced tree with the given branching factor,
// stopping once n nodes exist. Typical outline shape.
func buildBranchy(n, branching int) *tree.Tree[int] {
	tr := tree.New[int]()
	queue := []tree.NodeID{tr.Append(0)}
	count := 1
	for count < n {
		parent := queue[0]
		queue = queue[1:]
		for i := 0; i < branching && count < n; i++ {
			id, err := tr.Insert(count, tree.LastChild, parent)
			if err != nil {
				panic(err)
			}
			queue = append(queue, id)
			count++
		}
	}
	return tr
}

// buildRandom creates n nodes attached to random earlier nodes with random
// placements. Deterministic seed for reproducibility.
func buildRandom(n int) *tree.Tree[int] {
	rng := rand.New(rand.NewSource(42))
	tr := tree.New[int]()
	ids := []tree.NodeID{tr.Append(0)}
	placements := []tree.Placement{
		tree.Before, tree.After, tree.FirstChild, tree.LastChild,
	}
	for i := 1; i < n; i++ {
		ref := ids[rng.Intn(len(ids))]
		p := placements[rng.Intn(len(placements))]
		id, err := tr.Insert(i, p, ref)
		if err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return tr
}

// collapseEveryOther collapses every second parent so projections walk a
// mix of folded and open branches.
func collapseEveryOther(tr *tree.Tree[int]) {
	var parents []tree.NodeID
	for _, row := range tr.Rows() {
		if row.HasChildren {
			parents = append(parents, row.Node)
		}
	}
	for i, id := range parents {
		if i%2 != 0 {
			continue
		}
		if _, err := tr.SetCollapsed(id, true); err != nil {
			panic(err)
		}
	}
}
