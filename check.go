package bptree

import "github.com/cockroachdb/errors"

// Check validates the whole tree against its structural invariants:
// occupancy bounds (root exempt from floors), child counts, strictly
// ascending keys in every node, separator bounds between adjacent subtrees,
// uniform leaf depth, the leaf chain matching in-order traversal, and the
// recorded count, height, and live-node totals.
//
// Returns nil when sound, otherwise an error wrapping ErrTreeInvalid that
// names the offending node and condition. Intended for tests and for
// debugging sessions on trees suspected of corruption; it visits every
// node.
//
// Separators are validated as bounds, not identities: a separator must sort
// above everything in the subtree to its left and at or below the minimum
// of the subtree to its right. Deleting a leaf's first key legitimately
// leaves the ancestor separator above that minimum, and routing stays
// correct.
func (t *Tree[K, V]) Check() error {
	if t.root == nil {
		return errors.Wrap(ErrTreeInvalid, "nil root")
	}

	var w checkState[K, V]
	info, err := t.checkNode(t.root, true, &w)
	if err != nil {
		return err
	}

	if info.keys != t.count {
		return errors.Wrapf(ErrTreeInvalid,
			"leaves hold %d keys, tree records %d", info.keys, t.count)
	}
	if info.leafDepth != t.height {
		return errors.Wrapf(ErrTreeInvalid,
			"leaves sit at depth %d, tree records height %d", info.leafDepth, t.height)
	}
	if w.nodes != t.nodes {
		return errors.Wrapf(ErrTreeInvalid,
			"found %d nodes, tree records %d live", w.nodes, t.nodes)
	}
	return t.checkLeafChain(w.leaves)
}

// checkState accumulates traversal facts that only make sense tree-wide.
type checkState[K comparable, V any] struct {
	nodes  int
	leaves []*leafNode[K, V]
}

// subtreeInfo summarizes a validated subtree for its parent's checks.
// min and max are meaningful only when keys > 0; the empty case exists
// solely for the empty root leaf.
type subtreeInfo[K comparable] struct {
	keys      int
	leafDepth int
	min, max  K
}

func (t *Tree[K, V]) checkNode(n node[K, V], isRoot bool, w *checkState[K, V]) (subtreeInfo[K], error) {
	var info subtreeInfo[K]
	w.nodes++

	if err := t.checkOccupancy(n, isRoot); err != nil {
		return info, err
	}

	switch nd := n.(type) {
	case *leafNode[K, V]:
		if len(nd.values) != len(nd.keys) {
			return info, errors.Wrapf(ErrTreeInvalid,
				"leaf %p: %d keys but %d values", nd, len(nd.keys), len(nd.values))
		}
		if err := t.checkAscending(nd, nd.keys); err != nil {
			return info, err
		}
		w.leaves = append(w.leaves, nd)
		info.keys = len(nd.keys)
		info.leafDepth = 1
		if len(nd.keys) > 0 {
			info.min = nd.keys[0]
			info.max = nd.keys[len(nd.keys)-1]
		}
		return info, nil

	case *innerNode[K, V]:
		if len(nd.children) != len(nd.keys)+1 {
			return info, errors.Wrapf(ErrTreeInvalid,
				"internal %p: %d keys but %d children", nd, len(nd.keys), len(nd.children))
		}
		if err := t.checkAscending(nd, nd.keys); err != nil {
			return info, err
		}

		var depth int
		var prevMax K
		for i, child := range nd.children {
			if child == nil {
				return info, errors.Wrapf(ErrTreeInvalid, "internal %p: nil child at index %d", nd, i)
			}
			ci, err := t.checkNode(child, false, w)
			if err != nil {
				return info, err
			}

			if i == 0 {
				depth = ci.leafDepth
				info.min = ci.min
			} else {
				if ci.leafDepth != depth {
					return info, errors.Wrapf(ErrTreeInvalid,
						"internal %p: leaf depth %d under child %d, siblings have %d", nd, ci.leafDepth, i, depth)
				}
				sep := nd.keys[i-1]
				if t.cmp(prevMax, sep) >= 0 {
					return info, errors.Wrapf(ErrTreeInvalid,
						"internal %p: separator %d does not sort above its left subtree", nd, i-1)
				}
				if t.cmp(sep, ci.min) > 0 {
					return info, errors.Wrapf(ErrTreeInvalid,
						"internal %p: separator %d sorts above its right subtree minimum", nd, i-1)
				}
			}
			prevMax = ci.max
			info.keys += ci.keys
		}
		info.max = prevMax
		info.leafDepth = depth + 1
		return info, nil
	}

	return info, errors.Wrapf(ErrTreeInvalid, "node %p: unknown kind", n)
}

func (t *Tree[K, V]) checkOccupancy(n node[K, V], isRoot bool) error {
	kc := n.keyCount()
	if kc > t.maxKeys {
		return errors.Wrapf(ErrTreeInvalid,
			"node %p: %d keys exceeds max %d", n, kc, t.maxKeys)
	}
	if isRoot {
		// The root has no floor, except that an internal root must still
		// separate at least two children.
		if !n.isLeaf() && kc < 1 {
			return errors.Wrapf(ErrTreeInvalid, "internal root %p has no keys", n)
		}
		return nil
	}
	if n.isLeaf() && kc < t.minLeafKeys {
		return errors.Wrapf(ErrTreeInvalid,
			"leaf %p: %d keys below floor %d", n, kc, t.minLeafKeys)
	}
	if !n.isLeaf() && kc < t.minInternalKeys {
		return errors.Wrapf(ErrTreeInvalid,
			"internal %p: %d keys below floor %d", n, kc, t.minInternalKeys)
	}
	return nil
}

func (t *Tree[K, V]) checkAscending(n node[K, V], keys []K) error {
	for i := 1; i < len(keys); i++ {
		if t.cmp(keys[i-1], keys[i]) >= 0 {
			return errors.Wrapf(ErrTreeInvalid,
				"node %p: keys out of order at index %d", n, i)
		}
	}
	return nil
}

// checkLeafChain verifies the next pointers visit exactly the leaves of the
// tree, in traversal order, ending at nil.
func (t *Tree[K, V]) checkLeafChain(leaves []*leafNode[K, V]) error {
	chain := t.firstLeaf()
	for i, leaf := range leaves {
		if chain == nil {
			return errors.Wrapf(ErrTreeInvalid,
				"leaf chain ends after %d of %d leaves", i, len(leaves))
		}
		if chain != leaf {
			return errors.Wrapf(ErrTreeInvalid,
				"leaf chain diverges from tree order at leaf %d", i)
		}
		chain = chain.next
	}
	if chain != nil {
		return errors.Wrap(ErrTreeInvalid, "leaf chain continues past the last leaf")
	}
	return nil
}
