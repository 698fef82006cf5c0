package pedigree

import "sort"

// SharedAncestor is one ancestor present in both the sire-side and the
// dam-side ancestry, with every generation distance at which it occurs on
// each side. An ancestor reachable via several paths occurs several times.
type SharedAncestor struct {
	ID         string
	SireDepths []int // generations from the sire-side root, ascending
	DamDepths  []int // generations from the dam-side root, ascending

	// Node is the occurrence with the largest remaining subtree, used to
	// resolve the ancestor's own pedigree without further lookups.
	Node *Node
}

// CommonAncestors intersects two trees by ancestor id. Ancestors present on
// only one side are dropped. The result is ordered by id so that downstream
// floating-point accumulation is reproducible.
//
// Each tree is traversed exactly once; the cross-product of occurrence
// pairs is left to the caller.
func CommonAncestors(sire, dam *Tree) []SharedAncestor {
	if sire == nil || dam == nil {
		return nil
	}
	return SharedBetween(sire.Root, dam.Root)
}

// SharedBetween is CommonAncestors over bare subtrees. Depths are counted
// relative to the given roots, which occur themselves at depth 0.
func SharedBetween(sire, dam *Node) []SharedAncestor {
	sireOcc := collect(sire)
	damOcc := collect(dam)

	shared := make([]SharedAncestor, 0, len(sireOcc))
	for id, sNodes := range sireOcc {
		dNodes, ok := damOcc[id]
		if !ok {
			continue
		}
		// Prefer whichever side leaves the most generations below the
		// occurrence for resolving the ancestor's own pedigree.
		sBest, dBest := shallowest(sNodes), shallowest(dNodes)
		node := sBest.Node
		if dBest.reldepth < sBest.reldepth {
			node = dBest.Node
		}
		shared = append(shared, SharedAncestor{
			ID:         id,
			SireDepths: depthsOf(sNodes),
			DamDepths:  depthsOf(dNodes),
			Node:       node,
		})
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].ID < shared[j].ID })
	return shared
}

// occurrence tags a node with its depth relative to the traversal root.
type occurrence struct {
	*Node
	reldepth int
}

// collect walks a subtree once and groups every node occurrence by id.
func collect(root *Node) map[string][]occurrence {
	occ := make(map[string][]occurrence)
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if n == nil {
			return
		}
		occ[n.ID] = append(occ[n.ID], occurrence{Node: n, reldepth: depth})
		walk(n.Sire, depth+1)
		walk(n.Dam, depth+1)
	}
	walk(root, 0)
	return occ
}

func depthsOf(nodes []occurrence) []int {
	depths := make([]int, len(nodes))
	for i, n := range nodes {
		depths[i] = n.reldepth
	}
	sort.Ints(depths)
	return depths
}

func shallowest(nodes []occurrence) occurrence {
	best := nodes[0]
	for _, n := range nodes[1:] {
		if n.reldepth < best.reldepth {
			best = n
		}
	}
	return best
}
