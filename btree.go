// Package bptree implements an in-memory B+tree: an ordered key/value index
// with logarithmic point operations and linear range scans over a linked
// leaf chain.
package bptree

import (
	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-uuid"

	"github.com/alSheiye5h/bptree/internal/cache"
)

const (
	// MinMaxKeys is the smallest degree a tree accepts. Below three keys
	// per node a split cannot leave both halves at their occupancy floors.
	MinMaxKeys = 3
)

// Tree is an in-memory B+tree: an ordered index from K to V. Internal nodes
// route only; every value lives in a leaf, and leaves are chained in
// ascending key order for range scans.
//
// A Tree is not internally synchronized. Concurrent readers are safe only
// while no writer runs; the caller serializes writers (the shared FreeList
// is the one component with its own lock).
type Tree[K comparable, V any] struct {
	root node[K, V]
	cmp  CompareFunc[K]

	maxKeys         int
	minLeafKeys     int // occupancy floor for non-root leaves
	minInternalKeys int // occupancy floor for non-root internal nodes

	count  int // live keys
	height int // levels from root to leaves; empty tree has height 1

	freelist *FreeList[K, V]
	nodes    int // live nodes, root included
	maxNodes int // 0 means unlimited

	lookups *cache.Cache[K, V]

	logger Logger
	debug  bool
	id     string // tags debug output when several trees share a sink
}

// New creates an empty tree of degree maxKeys ordered by cmp.
// maxKeys below MinMaxKeys or a nil cmp is ErrInvalidArgument.
func New[K comparable, V any](maxKeys int, cmp CompareFunc[K], opts ...Option) (*Tree[K, V], error) {
	return NewWithFreeList(maxKeys, cmp, NewFreeList[K, V](DefaultFreeListSize), opts...)
}

// NewOrdered creates an empty tree over a key type with natural order,
// using the default comparator.
func NewOrdered[K Ordered, V any](maxKeys int, opts ...Option) (*Tree[K, V], error) {
	return New[K, V](maxKeys, Compare[K], opts...)
}

// NewWithFreeList creates an empty tree drawing nodes from the given
// FreeList. Trees with the same key and value types may share one.
func NewWithFreeList[K comparable, V any](maxKeys int, cmp CompareFunc[K], f *FreeList[K, V], opts ...Option) (*Tree[K, V], error) {
	if maxKeys < MinMaxKeys {
		return nil, errors.Wrapf(ErrInvalidArgument, "max keys %d, minimum is %d", maxKeys, MinMaxKeys)
	}
	if cmp == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "nil comparator")
	}
	if f == nil {
		f = NewFreeList[K, V](DefaultFreeListSize)
	}

	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxNodes < 0 {
		options.maxNodes = 0
	}

	id, _ := uuid.GenerateUUID()

	t := &Tree[K, V]{
		cmp:             cmp,
		maxKeys:         maxKeys,
		minLeafKeys:     (maxKeys + 1) / 2,
		minInternalKeys: maxKeys / 2,
		height:          1,
		freelist:        f,
		maxNodes:        options.maxNodes,
		logger:          options.logger,
		debug:           options.debug,
		id:              id,
	}

	root, err := t.allocLeaf()
	if err != nil {
		return nil, err
	}
	t.root = root

	t.debugf("tree created",
		"maxKeys", maxKeys,
		"minLeafKeys", t.minLeafKeys,
		"minInternalKeys", t.minInternalKeys,
		"maxNodes", t.maxNodes,
	)
	return t, nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (t *Tree[K, V]) Get(key K) (V, error) {
	if t.lookups != nil {
		if v, ok := t.lookups.Get(key); ok {
			return v, nil
		}
	}

	leaf := t.findLeaf(key)
	idx := findKeyInLeaf(t.cmp, leaf, key)
	if idx < 0 {
		var zero V
		return zero, ErrKeyNotFound
	}

	v := leaf.values[idx]
	if t.lookups != nil {
		t.lookups.Add(key, v)
	}
	return v, nil
}

// Contains reports whether key is present. It descends directly and leaves
// the lookup cache untouched.
func (t *Tree[K, V]) Contains(key K) bool {
	leaf := t.findLeaf(key)
	return findKeyInLeaf(t.cmp, leaf, key) >= 0
}

// Min returns the smallest key and its value. ok is false on an empty tree.
func (t *Tree[K, V]) Min() (key K, value V, ok bool) {
	if t.count == 0 {
		return key, value, false
	}
	leaf := t.firstLeaf()
	return leaf.keys[0], leaf.values[0], true
}

// Max returns the largest key and its value. ok is false on an empty tree.
func (t *Tree[K, V]) Max() (key K, value V, ok bool) {
	if t.count == 0 {
		return key, value, false
	}
	n := t.root
	for {
		inner, ok := n.(*innerNode[K, V])
		if !ok {
			break
		}
		n = inner.children[len(inner.children)-1]
	}
	leaf := n.(*leafNode[K, V])
	last := len(leaf.keys) - 1
	return leaf.keys[last], leaf.values[last], true
}

// Len returns the number of live keys.
func (t *Tree[K, V]) Len() int {
	return t.count
}

// Height returns the number of levels, counting the root level. An empty
// tree has height 1: the root always exists, as an empty leaf.
func (t *Tree[K, V]) Height() int {
	return t.height
}

// MaxKeys returns the degree the tree was built with.
func (t *Tree[K, V]) MaxKeys() int {
	return t.maxKeys
}

// Clear releases every node back to the free list and resets the tree to a
// single empty root leaf. The lookup cache, if any, is purged.
func (t *Tree[K, V]) Clear() {
	t.releaseSubtree(t.root)

	// The budget cannot refuse here: everything was just released.
	root := t.freelist.getLeaf(t.maxKeys)
	t.nodes++
	t.root = root
	t.count = 0
	t.height = 1

	if t.lookups != nil {
		t.lookups.Purge()
	}
	t.debugf("tree cleared")
}

// EnableLookupCache attaches a bounded LRU consulted by Get before
// descending. hash maps a key to a uint32; see HashString and friends.
// Mutations invalidate affected entries, so cached reads always match
// uncached reads.
func (t *Tree[K, V]) EnableLookupCache(capacity uint32, hash func(K) uint32) error {
	if hash == nil {
		return errors.Wrap(ErrInvalidArgument, "nil hash callback")
	}
	c, err := cache.New[K, V](capacity, hash)
	if err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}
	t.lookups = c
	t.debugf("lookup cache enabled", "capacity", capacity)
	return nil
}

// CacheStats reports lookup cache counters. Zero values when no cache is
// enabled.
type CacheStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

func (t *Tree[K, V]) CacheStats() CacheStats {
	if t.lookups == nil {
		return CacheStats{}
	}
	s := t.lookups.Stats()
	return CacheStats{Hits: s.Hits, Misses: s.Misses, Evictions: s.Evictions}
}

// Stats summarizes the tree shape.
type Stats struct {
	Keys      int
	Height    int
	Nodes     int
	Leaves    int
	Internals int
}

// Stats walks the tree counting nodes by kind. O(nodes).
func (t *Tree[K, V]) Stats() Stats {
	s := Stats{Keys: t.count, Height: t.height}
	t.countNodes(t.root, &s)
	return s
}

func (t *Tree[K, V]) countNodes(n node[K, V], s *Stats) {
	s.Nodes++
	switch nd := n.(type) {
	case *leafNode[K, V]:
		s.Leaves++
	case *innerNode[K, V]:
		s.Internals++
		for _, child := range nd.children {
			t.countNodes(child, s)
		}
	}
}

// findLeaf descends to the leaf that owns key. Separator keys route right
// on equality, so a stored key always lands in the subtree after its
// separator.
func (t *Tree[K, V]) findLeaf(key K) *leafNode[K, V] {
	n := t.root
	for {
		inner, ok := n.(*innerNode[K, V])
		if !ok {
			return n.(*leafNode[K, V])
		}
		n = inner.children[findChildIndex(t.cmp, inner.keys, key)]
	}
}

// firstLeaf returns the head of the leaf chain.
func (t *Tree[K, V]) firstLeaf() *leafNode[K, V] {
	n := t.root
	for {
		inner, ok := n.(*innerNode[K, V])
		if !ok {
			return n.(*leafNode[K, V])
		}
		n = inner.children[0]
	}
}

// pathEntry records one descent step: the internal node and which child
// was taken. Deletion repairs walk this stack bottom-up; insertion uses it
// to find split targets.
type pathEntry[K comparable, V any] struct {
	parent   *innerNode[K, V]
	childIdx int
}

// descend walks from the root to the leaf owning key, recording every
// internal step.
func (t *Tree[K, V]) descend(key K, path []pathEntry[K, V]) (*leafNode[K, V], []pathEntry[K, V]) {
	n := t.root
	for {
		inner, ok := n.(*innerNode[K, V])
		if !ok {
			return n.(*leafNode[K, V]), path
		}
		idx := findChildIndex(t.cmp, inner.keys, key)
		path = append(path, pathEntry[K, V]{parent: inner, childIdx: idx})
		n = inner.children[idx]
	}
}

// allocLeaf draws a leaf from the free list, honoring the node budget.
func (t *Tree[K, V]) allocLeaf() (*leafNode[K, V], error) {
	if t.maxNodes > 0 && t.nodes >= t.maxNodes {
		return nil, errors.Wrapf(ErrAllocationFailed, "node budget %d exhausted", t.maxNodes)
	}
	t.nodes++
	return t.freelist.getLeaf(t.maxKeys), nil
}

func (t *Tree[K, V]) allocInner() (*innerNode[K, V], error) {
	if t.maxNodes > 0 && t.nodes >= t.maxNodes {
		return nil, errors.Wrapf(ErrAllocationFailed, "node budget %d exhausted", t.maxNodes)
	}
	t.nodes++
	return t.freelist.getInner(t.maxKeys), nil
}

func (t *Tree[K, V]) freeLeaf(n *leafNode[K, V]) {
	t.nodes--
	t.freelist.putLeaf(n)
}

func (t *Tree[K, V]) freeInner(n *innerNode[K, V]) {
	t.nodes--
	t.freelist.putInner(n)
}

// releaseSubtree returns n and everything below it to the free list,
// children before parents.
func (t *Tree[K, V]) releaseSubtree(n node[K, V]) {
	switch nd := n.(type) {
	case *leafNode[K, V]:
		t.freeLeaf(nd)
	case *innerNode[K, V]:
		for _, child := range nd.children {
			t.releaseSubtree(child)
		}
		t.freeInner(nd)
	}
}

func (t *Tree[K, V]) debugf(msg string, args ...any) {
	if !t.debug {
		return
	}
	args = append(args, "tree", t.id)
	t.logger.Debug(msg, args...)
}
