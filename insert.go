package bptree

// Put inserts a key/value pair. A key the comparator reports equal to a
// stored one is rejected with ErrDuplicateKey; there is no update in place.
//
// Every node a split cascade could need is acquired before the tree is
// touched, so a Put that fails with ErrAllocationFailed leaves the tree
// exactly as it was.
func (t *Tree[K, V]) Put(key K, value V) error {
	leaf, path := t.descend(key, nil)

	pos := findInsertPosition(t.cmp, leaf.keys, key)
	if pos < len(leaf.keys) && t.cmp(key, leaf.keys[pos]) == 0 {
		return ErrDuplicateKey
	}

	right, rightInners, newRoot, err := t.acquireSplitNodes(leaf, path)
	if err != nil {
		return err
	}

	leaf.keys = insertAt(leaf.keys, pos, key)
	leaf.values = insertAt(leaf.values, pos, value)
	t.count++

	if right != nil {
		t.splitCascade(leaf, right, path, rightInners, newRoot)
	}
	return nil
}

// acquireSplitNodes sizes the split cascade an insert into leaf would set
// off and allocates every node it needs up front. The cascade length is
// fully determined by the path: the leaf splits when full, and each
// ancestor that is itself full splits in turn. On a refused allocation,
// whatever was acquired goes back to the free list and the error returns
// with the tree untouched.
func (t *Tree[K, V]) acquireSplitNodes(leaf *leafNode[K, V], path []pathEntry[K, V]) (right *leafNode[K, V], rightInners []*innerNode[K, V], newRoot *innerNode[K, V], err error) {
	if len(leaf.keys) < t.maxKeys {
		return nil, nil, nil, nil
	}

	splits := 1
	for lvl := len(path) - 1; lvl >= 0; lvl-- {
		if len(path[lvl].parent.keys) < t.maxKeys {
			break
		}
		splits++
	}
	needRoot := splits == len(path)+1

	release := func() {
		if right != nil {
			t.freeLeaf(right)
		}
		for _, n := range rightInners {
			t.freeInner(n)
		}
	}

	right, err = t.allocLeaf()
	if err != nil {
		return nil, nil, nil, err
	}
	for i := 1; i < splits; i++ {
		var n *innerNode[K, V]
		if n, err = t.allocInner(); err != nil {
			release()
			return nil, nil, nil, err
		}
		rightInners = append(rightInners, n)
	}
	if needRoot {
		if newRoot, err = t.allocInner(); err != nil {
			release()
			return nil, nil, nil, err
		}
	}
	return right, rightInners, newRoot, nil
}

// splitCascade resolves the overflow left in leaf by the insert. All target
// nodes were acquired up front, so nothing in here can fail.
func (t *Tree[K, V]) splitCascade(leaf *leafNode[K, V], right *leafNode[K, V], path []pathEntry[K, V], rightInners []*innerNode[K, V], newRoot *innerNode[K, V]) {
	// Leaf split: right sibling takes the upper half, the chain is relinked
	// around it, and a copy of its first key goes up as the separator. The
	// key itself stays in the leaf; leaves hold all the data.
	splitAt := (len(leaf.keys) + 1) / 2
	right.keys = append(right.keys, leaf.keys[splitAt:]...)
	right.values = append(right.values, leaf.values[splitAt:]...)
	leaf.keys = truncate(leaf.keys, splitAt)
	leaf.values = truncate(leaf.values, splitAt)
	right.next = leaf.next
	leaf.next = right

	sepKey := right.keys[0]
	var carry node[K, V] = right
	t.debugf("leaf split", "leftKeys", len(leaf.keys), "rightKeys", len(right.keys))

	inners := 0
	for lvl := len(path) - 1; lvl >= 0; lvl-- {
		parent := path[lvl].parent
		at := path[lvl].childIdx
		parent.keys = insertAt(parent.keys, at, sepKey)
		parent.children = insertAt(parent.children, at+1, carry)
		if len(parent.keys) <= t.maxKeys {
			return
		}

		// Internal overflow: the median moves up, it does not stay behind.
		mid := len(parent.keys) / 2
		rightIn := rightInners[inners]
		inners++
		sepKey = parent.keys[mid]
		rightIn.keys = append(rightIn.keys, parent.keys[mid+1:]...)
		rightIn.children = append(rightIn.children, parent.children[mid+1:]...)
		parent.keys = truncate(parent.keys, mid)
		parent.children = truncate(parent.children, mid+1)
		carry = rightIn
		t.debugf("internal split", "leftKeys", len(parent.keys), "rightKeys", len(rightIn.keys))
	}

	// The cascade passed the old root: the tree grows one level.
	newRoot.keys = append(newRoot.keys, sepKey)
	newRoot.children = append(newRoot.children, t.root, carry)
	t.root = newRoot
	t.height++
	t.debugf("root split", "height", t.height)
}
