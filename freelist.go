package bptree

import "sync"

// DefaultFreeListSize is the per-kind capacity of a FreeList built by New
// when the caller does not supply one.
const DefaultFreeListSize = 32

// FreeList pools freed nodes for reuse so steady churn does not allocate.
// A single FreeList may be shared by several trees with the same key and
// value types; it is the one internally locked component, trees themselves
// are single-writer.
type FreeList[K comparable, V any] struct {
	mu     sync.Mutex
	leaves []*leafNode[K, V]
	inners []*innerNode[K, V]
}

// NewFreeList creates a FreeList holding up to size nodes of each kind.
// A non-positive size gets DefaultFreeListSize.
func NewFreeList[K comparable, V any](size int) *FreeList[K, V] {
	if size <= 0 {
		size = DefaultFreeListSize
	}
	return &FreeList[K, V]{
		leaves: make([]*leafNode[K, V], 0, size),
		inners: make([]*innerNode[K, V], 0, size),
	}
}

// Size returns the number of pooled nodes of both kinds.
func (f *FreeList[K, V]) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.leaves) + len(f.inners)
}

// getLeaf returns a pooled leaf, or a fresh one sized for maxKeys. Pooled
// nodes from a tree with a smaller degree get their slices regrown.
func (f *FreeList[K, V]) getLeaf(maxKeys int) *leafNode[K, V] {
	f.mu.Lock()
	var n *leafNode[K, V]
	if i := len(f.leaves) - 1; i >= 0 {
		n = f.leaves[i]
		f.leaves[i] = nil
		f.leaves = f.leaves[:i]
	}
	f.mu.Unlock()

	if n == nil {
		return newLeafNode[K, V](maxKeys)
	}
	if cap(n.keys) < maxKeys+1 {
		n.keys = make([]K, 0, maxKeys+1)
		n.values = make([]V, 0, maxKeys+1)
	}
	return n
}

func (f *FreeList[K, V]) getInner(maxKeys int) *innerNode[K, V] {
	f.mu.Lock()
	var n *innerNode[K, V]
	if i := len(f.inners) - 1; i >= 0 {
		n = f.inners[i]
		f.inners[i] = nil
		f.inners = f.inners[:i]
	}
	f.mu.Unlock()

	if n == nil {
		return newInnerNode[K, V](maxKeys)
	}
	if cap(n.keys) < maxKeys+1 {
		n.keys = make([]K, 0, maxKeys+1)
		n.children = make([]node[K, V], 0, maxKeys+2)
	}
	return n
}

// putLeaf resets the node and pools it if there is room. Reset happens
// either way so freed keys and values are unpinned immediately.
func (f *FreeList[K, V]) putLeaf(n *leafNode[K, V]) (pooled bool) {
	n.reset()
	f.mu.Lock()
	if len(f.leaves) < cap(f.leaves) {
		f.leaves = append(f.leaves, n)
		pooled = true
	}
	f.mu.Unlock()
	return pooled
}

func (f *FreeList[K, V]) putInner(n *innerNode[K, V]) (pooled bool) {
	n.reset()
	f.mu.Lock()
	if len(f.inners) < cap(f.inners) {
		f.inners = append(f.inners, n)
		pooled = true
	}
	f.mu.Unlock()
	return pooled
}
