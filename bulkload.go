package bptree

import "github.com/cockroachdb/errors"

// nodeRef pairs a built node with the first key of its subtree, which
// becomes the separator in front of it one level up.
type nodeRef[K comparable, V any] struct {
	firstKey K
	n        node[K, V]
}

// BulkLoader builds a tree from pre-sorted input far faster than repeated
// Put calls: leaves are packed full left to right, then the internal levels
// are laid down bottom-up with no splits at all. Finalize atomically
// replaces the target tree's contents.
//
// Keys MUST be inserted in strictly ascending order.
type BulkLoader[K comparable, V any] struct {
	tree *Tree[K, V]

	leaves  []*leafNode[K, V]
	current *leafNode[K, V]
	lastKey K // Enforce sorted order
	hasLast bool
	done    bool

	// Stats tracking
	keysInserted int
}

// NewBulkLoader returns a loader targeting t. The tree stays fully usable
// with its old contents until Finalize succeeds.
func (t *Tree[K, V]) NewBulkLoader() *BulkLoader[K, V] {
	return &BulkLoader[K, V]{tree: t}
}

// Put adds a key/value pair to the loader.
// Keys MUST be inserted in strictly ascending sorted order.
func (l *BulkLoader[K, V]) Put(key K, value V) error {
	if l.done {
		return ErrLoaderFinalized
	}

	// Enforce sorted order
	if l.hasLast && l.tree.cmp(key, l.lastKey) <= 0 {
		return ErrKeysUnsorted
	}

	// Start a new leaf when the current one is packed full. Loader nodes
	// come straight off the free list; they count against the node budget
	// only at finalize, when they become the tree.
	if l.current == nil || len(l.current.keys) == l.tree.maxKeys {
		leaf := l.tree.freelist.getLeaf(l.tree.maxKeys)
		if l.current != nil {
			l.current.next = leaf
		}
		l.current = leaf
		l.leaves = append(l.leaves, leaf)
	}

	// Append directly: no search, no splits.
	l.current.keys = append(l.current.keys, key)
	l.current.values = append(l.current.values, value)
	l.keysInserted++

	l.lastKey = key
	l.hasLast = true
	return nil
}

// Finalize builds the internal levels over the packed leaves and swaps the
// result into the tree: old nodes go back to the free list and the lookup
// cache is purged. The loader is dead afterwards.
//
// An empty loader is ErrBulkLoaderEmpty. If the built tree would exceed the
// tree's node budget, Finalize returns ErrAllocationFailed, releases
// everything it built, and leaves the tree's old contents untouched.
func (l *BulkLoader[K, V]) Finalize() error {
	if l.done {
		return ErrLoaderFinalized
	}
	if l.keysInserted == 0 {
		return ErrBulkLoaderEmpty
	}
	l.done = true

	l.fixTrailingLeaf()

	refs := make([]nodeRef[K, V], 0, len(l.leaves))
	for _, leaf := range l.leaves {
		refs = append(refs, nodeRef[K, V]{firstKey: leaf.keys[0], n: leaf})
	}

	// Build internal levels until one node covers everything.
	t := l.tree
	var inners []*innerNode[K, V]
	height := 1
	for len(refs) > 1 {
		refs, inners = t.buildLevel(refs, inners)
		height++
	}

	built := len(l.leaves) + len(inners)
	if t.maxNodes > 0 && built > t.maxNodes {
		for _, leaf := range l.leaves {
			t.freelist.putLeaf(leaf)
		}
		for _, in := range inners {
			t.freelist.putInner(in)
		}
		return errors.Wrapf(ErrAllocationFailed,
			"bulk load needs %d nodes, budget is %d", built, t.maxNodes)
	}

	t.releaseSubtree(t.root)
	t.root = refs[0].n
	t.nodes = built
	t.count = l.keysInserted
	t.height = height
	if t.lookups != nil {
		t.lookups.Purge()
	}
	t.debugf("bulk load finalized", "keys", t.count, "leaves", len(l.leaves), "height", height)
	return nil
}

// fixTrailingLeaf rebalances the last leaf when packing left it under the
// occupancy floor. Its left neighbor is packed full, so it can always give
// up the deficit and stay legal itself.
func (l *BulkLoader[K, V]) fixTrailingLeaf() {
	if len(l.leaves) < 2 {
		return
	}
	last := l.leaves[len(l.leaves)-1]
	deficit := l.tree.minLeafKeys - len(last.keys)
	if deficit <= 0 {
		return
	}
	prev := l.leaves[len(l.leaves)-2]
	cut := len(prev.keys) - deficit

	n := len(last.keys)
	last.keys = last.keys[:n+deficit]
	last.values = last.values[:n+deficit]
	copy(last.keys[deficit:], last.keys[:n])
	copy(last.values[deficit:], last.values[:n])
	copy(last.keys[:deficit], prev.keys[cut:])
	copy(last.values[:deficit], prev.values[cut:])
	prev.keys = truncate(prev.keys, cut)
	prev.values = truncate(prev.values, cut)
}

// buildLevel groups refs into internal nodes of up to maxKeys+1 children.
// The first child of each node contributes no separator; every later child
// is fronted by its subtree's first key. When a full split would strand the
// tail group under its floor, the final two groups are balanced instead.
func (t *Tree[K, V]) buildLevel(refs []nodeRef[K, V], inners []*innerNode[K, V]) ([]nodeRef[K, V], []*innerNode[K, V]) {
	fanout := t.maxKeys + 1
	minChildren := t.minInternalKeys + 1

	var next []nodeRef[K, V]
	for i := 0; i < len(refs); {
		n := fanout
		rest := len(refs) - i
		if rest <= fanout {
			n = rest
		} else if rest < fanout+minChildren {
			n = (rest + 1) / 2
		}

		in := t.freelist.getInner(t.maxKeys)
		inners = append(inners, in)
		for j, ref := range refs[i : i+n] {
			if j > 0 {
				in.keys = append(in.keys, ref.firstKey)
			}
			in.children = append(in.children, ref.n)
		}
		next = append(next, nodeRef[K, V]{firstKey: refs[i].firstKey, n: in})
		i += n
	}
	return next, inners
}

// BulkLoaderStats contains progress information about a bulk load.
type BulkLoaderStats struct {
	KeysInserted    int     // Total number of keys inserted so far
	LeavesBuilt     int     // Number of leaf nodes created
	CurrentLeafFill float64 // Current leaf fullness (0.0 to 1.0)
}

// Stats returns current progress statistics for this bulk load operation.
// Useful for monitoring progress during long-running loads.
func (l *BulkLoader[K, V]) Stats() BulkLoaderStats {
	fill := 0.0
	if l.current != nil {
		fill = float64(len(l.current.keys)) / float64(l.tree.maxKeys)
	}

	return BulkLoaderStats{
		KeysInserted:    l.keysInserted,
		LeavesBuilt:     len(l.leaves),
		CurrentLeafFill: fill,
	}
}
