package bptree

import "sort"

// searchThreshold is the node size at which key lookups switch from a
// linear scan to binary search.
const searchThreshold = 32

// node is either a *leafNode or an *innerNode. The two kinds are distinct
// types so that leaf-only fields (values, chain pointer) and internal-only
// fields (children) cannot be touched on the wrong kind.
type node[K comparable, V any] interface {
	isLeaf() bool
	keyCount() int
}

// leafNode stores the actual key/value pairs. Leaves are chained through
// next in ascending key order; the chain is what range scans walk.
//
// keys and values are parallel slices. Capacity reserves one slot beyond
// maxKeys so an insert can overflow transiently before the split.
type leafNode[K comparable, V any] struct {
	keys   []K
	values []V
	next   *leafNode[K, V]
}

func (n *leafNode[K, V]) isLeaf() bool  { return true }
func (n *leafNode[K, V]) keyCount() int { return len(n.keys) }

// reset clears the node for reuse. Slice elements are zeroed first so the
// backing arrays do not pin freed keys or values.
func (n *leafNode[K, V]) reset() {
	clear(n.keys)
	clear(n.values)
	n.keys = n.keys[:0]
	n.values = n.values[:0]
	n.next = nil
}

// innerNode routes lookups. It holds no values: keys[i] separates the
// subtrees children[i] and children[i+1]. There is always exactly one more
// child than keys.
type innerNode[K comparable, V any] struct {
	keys     []K
	children []node[K, V]
}

func (n *innerNode[K, V]) isLeaf() bool  { return false }
func (n *innerNode[K, V]) keyCount() int { return len(n.keys) }

func (n *innerNode[K, V]) reset() {
	clear(n.keys)
	clear(n.children)
	n.keys = n.keys[:0]
	n.children = n.children[:0]
}

func newLeafNode[K comparable, V any](maxKeys int) *leafNode[K, V] {
	return &leafNode[K, V]{
		keys:   make([]K, 0, maxKeys+1),
		values: make([]V, 0, maxKeys+1),
	}
}

func newInnerNode[K comparable, V any](maxKeys int) *innerNode[K, V] {
	return &innerNode[K, V]{
		keys:     make([]K, 0, maxKeys+1),
		children: make([]node[K, V], 0, maxKeys+2),
	}
}

// findChildIndex returns the index of the child pointer to follow for key:
// the least i with key < keys[i]. A key equal to a separator routes right.
func findChildIndex[K comparable](cmp CompareFunc[K], keys []K, key K) int {
	if len(keys) < searchThreshold {
		i := 0
		for i < len(keys) && cmp(key, keys[i]) >= 0 {
			i++
		}
		return i
	}

	return sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) < 0
	})
}

// findKeyInLeaf returns the index of key in the leaf, or -1 if not present.
func findKeyInLeaf[K comparable, V any](cmp CompareFunc[K], leaf *leafNode[K, V], key K) int {
	if len(leaf.keys) < searchThreshold {
		for i := range leaf.keys {
			if cmp(key, leaf.keys[i]) == 0 {
				return i
			}
		}
		return -1
	}

	idx := sort.Search(len(leaf.keys), func(i int) bool {
		return cmp(leaf.keys[i], key) >= 0
	})
	if idx < len(leaf.keys) && cmp(leaf.keys[idx], key) == 0 {
		return idx
	}
	return -1
}

// findInsertPosition returns the position key would occupy in keys. When the
// key is already present this is its exact index.
func findInsertPosition[K comparable](cmp CompareFunc[K], keys []K, key K) int {
	if len(keys) < searchThreshold {
		pos := 0
		for pos < len(keys) && cmp(key, keys[pos]) > 0 {
			pos++
		}
		return pos
	}

	return sort.Search(len(keys), func(i int) bool {
		return cmp(key, keys[i]) <= 0
	})
}

// insertAt inserts v at index i, shifting the tail right.
func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeAt removes the element at index i, shifting the tail left. The
// vacated slot is zeroed so the backing array does not pin it.
func removeAt[T any](s []T, i int) []T {
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}

// truncate shortens s to n elements, zeroing the cut region.
func truncate[T any](s []T, n int) []T {
	clear(s[n:])
	return s[:n]
}
