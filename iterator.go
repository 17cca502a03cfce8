package bptree

// Iterator provides ordered forward iteration over the tree's keys by
// walking the leaf chain. It holds no locks and takes no snapshot:
// mutating the tree while an iterator is open leaves the iterator's
// position undefined.
type Iterator[K comparable, V any] struct {
	leaf  *leafNode[K, V]
	idx   int
	key   K    // Cached current key
	value V    // Cached current value
	valid bool // Is the iterator positioned on a valid key?
}

// Iter returns an iterator positioned before the first key.
// Call Next to advance onto it.
func (t *Tree[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{leaf: t.firstLeaf()}
}

// Seek returns an iterator positioned before the first key >= start.
func (t *Tree[K, V]) Seek(start K) *Iterator[K, V] {
	leaf := t.findLeaf(start)
	return &Iterator[K, V]{
		leaf: leaf,
		idx:  findInsertPosition(t.cmp, leaf.keys, start),
	}
}

// Next advances to the next key.
// Returns true if advanced successfully, false if exhausted.
func (it *Iterator[K, V]) Next() bool {
	for it.leaf != nil {
		if it.idx < len(it.leaf.keys) {
			it.key = it.leaf.keys[it.idx]
			it.value = it.leaf.values[it.idx]
			it.idx++
			it.valid = true
			return true
		}
		it.leaf = it.leaf.next
		it.idx = 0
	}
	it.valid = false
	return false
}

// Key returns the current key (only valid when Valid() == true)
func (it *Iterator[K, V]) Key() K {
	return it.key
}

// Value returns the current value (only valid when Valid() == true)
func (it *Iterator[K, V]) Value() V {
	return it.value
}

// Valid returns true if the iterator is positioned on a valid key
func (it *Iterator[K, V]) Valid() bool {
	return it.valid
}
