package bptree

import "github.com/cockroachdb/errors"

// Delete removes key and its value. An absent key is ErrKeyNotFound with
// the tree unchanged.
func (t *Tree[K, V]) Delete(key K) error {
	leaf, path := t.descend(key, nil)
	idx := findKeyInLeaf(t.cmp, leaf, key)
	if idx < 0 {
		return ErrKeyNotFound
	}

	leaf.keys = removeAt(leaf.keys, idx)
	leaf.values = removeAt(leaf.values, idx)
	t.count--
	if t.lookups != nil {
		t.lookups.Remove(key)
	}

	// Repair underfull nodes bottom-up along the recorded path. A borrow
	// ends the walk: the parent kept its key count. A merge costs the
	// parent a key, so the check repeats one level up.
	var child node[K, V] = leaf
	for lvl := len(path) - 1; lvl >= 0; lvl-- {
		if !t.underfull(child) {
			break
		}
		parent := path[lvl].parent
		merged, err := t.repair(parent, path[lvl].childIdx)
		if err != nil {
			return err
		}
		if !merged {
			break
		}
		child = parent
	}

	// An internal root emptied by a merge hands the tree to its sole child.
	if rootInner, ok := t.root.(*innerNode[K, V]); ok && len(rootInner.keys) == 0 {
		t.root = rootInner.children[0]
		t.freeInner(rootInner)
		t.height--
		t.debugf("root collapsed", "height", t.height)
	}
	return nil
}

// underfull reports whether a non-root node is below its occupancy floor.
// The root is never passed here; it is exempt.
func (t *Tree[K, V]) underfull(n node[K, V]) bool {
	if n.isLeaf() {
		return n.keyCount() < t.minLeafKeys
	}
	return n.keyCount() < t.minInternalKeys
}

// surplus reports whether a node can lend a key and stay at or above its
// floor.
func (t *Tree[K, V]) surplus(n node[K, V]) bool {
	if n.isLeaf() {
		return n.keyCount() > t.minLeafKeys
	}
	return n.keyCount() > t.minInternalKeys
}

// repair fixes the underfull child at parent.children[at]: borrow from the
// left sibling first, then the right, then merge, preferring the left
// sibling as the merge target. Returns whether a merge removed a key from
// parent. A non-root internal node always has a sibling on one side.
func (t *Tree[K, V]) repair(parent *innerNode[K, V], at int) (merged bool, err error) {
	if at > 0 && t.surplus(parent.children[at-1]) {
		t.borrowFromLeft(parent, at)
		return false, nil
	}
	if at < len(parent.children)-1 && t.surplus(parent.children[at+1]) {
		t.borrowFromRight(parent, at)
		return false, nil
	}
	if at > 0 {
		return true, t.mergeChildren(parent, at-1)
	}
	return true, t.mergeChildren(parent, at)
}

// borrowFromLeft moves the left sibling's last entry into the child at
// parent.children[at].
func (t *Tree[K, V]) borrowFromLeft(parent *innerNode[K, V], at int) {
	switch child := parent.children[at].(type) {
	case *leafNode[K, V]:
		left := parent.children[at-1].(*leafNode[K, V])
		last := len(left.keys) - 1
		child.keys = insertAt(child.keys, 0, left.keys[last])
		child.values = insertAt(child.values, 0, left.values[last])
		left.keys = removeAt(left.keys, last)
		left.values = removeAt(left.values, last)
		// The separator tracks the borrower's new first key.
		parent.keys[at-1] = child.keys[0]
	case *innerNode[K, V]:
		left := parent.children[at-1].(*innerNode[K, V])
		lastKey := len(left.keys) - 1
		lastChild := len(left.children) - 1
		// Rotate through the parent: the separator drops into the child
		// and the left sibling's last key replaces it. The sibling's last
		// child moves across with it.
		child.keys = insertAt(child.keys, 0, parent.keys[at-1])
		child.children = insertAt(child.children, 0, left.children[lastChild])
		parent.keys[at-1] = left.keys[lastKey]
		left.keys = removeAt(left.keys, lastKey)
		left.children = removeAt(left.children, lastChild)
	}
	t.debugf("borrow from left", "childIdx", at)
}

// borrowFromRight moves the right sibling's first entry into the child at
// parent.children[at].
func (t *Tree[K, V]) borrowFromRight(parent *innerNode[K, V], at int) {
	switch child := parent.children[at].(type) {
	case *leafNode[K, V]:
		right := parent.children[at+1].(*leafNode[K, V])
		child.keys = append(child.keys, right.keys[0])
		child.values = append(child.values, right.values[0])
		right.keys = removeAt(right.keys, 0)
		right.values = removeAt(right.values, 0)
		parent.keys[at] = right.keys[0]
	case *innerNode[K, V]:
		right := parent.children[at+1].(*innerNode[K, V])
		child.keys = append(child.keys, parent.keys[at])
		child.children = append(child.children, right.children[0])
		parent.keys[at] = right.keys[0]
		right.keys = removeAt(right.keys, 0)
		right.children = removeAt(right.children, 0)
	}
	t.debugf("borrow from right", "childIdx", at)
}

// mergeChildren merges parent.children[li+1] into parent.children[li] and
// drops the separator between them. A leaf merge discards the separator
// (leaves carry all the data); an internal merge pulls it down into the
// merged node. The combined size is checked before anything moves: an
// overflow here means corrupted occupancy accounting and comes back as
// ErrInternal with both nodes untouched.
func (t *Tree[K, V]) mergeChildren(parent *innerNode[K, V], li int) error {
	switch left := parent.children[li].(type) {
	case *leafNode[K, V]:
		right := parent.children[li+1].(*leafNode[K, V])
		if len(left.keys)+len(right.keys) > t.maxKeys {
			return errors.Wrapf(ErrInternal,
				"leaf merge of %d+%d keys exceeds max %d", len(left.keys), len(right.keys), t.maxKeys)
		}
		left.keys = append(left.keys, right.keys...)
		left.values = append(left.values, right.values...)
		left.next = right.next
		parent.keys = removeAt(parent.keys, li)
		parent.children = removeAt(parent.children, li+1)
		t.freeLeaf(right)
		t.debugf("leaf merge", "keys", len(left.keys))
	case *innerNode[K, V]:
		right := parent.children[li+1].(*innerNode[K, V])
		if len(left.keys)+1+len(right.keys) > t.maxKeys {
			return errors.Wrapf(ErrInternal,
				"internal merge of %d+1+%d keys exceeds max %d", len(left.keys), len(right.keys), t.maxKeys)
		}
		left.keys = append(left.keys, parent.keys[li])
		left.keys = append(left.keys, right.keys...)
		left.children = append(left.children, right.children...)
		parent.keys = removeAt(parent.keys, li)
		parent.children = removeAt(parent.children, li+1)
		t.freeInner(right)
		t.debugf("internal merge", "keys", len(left.keys))
	}
	return nil
}
