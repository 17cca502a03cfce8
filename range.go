package bptree

import "github.com/cockroachdb/errors"

// Range returns the values for every key in [start, end], both bounds
// inclusive, in ascending key order. The bounds need not be stored keys.
// One descent finds the leaf owning start; the rest is a leaf-chain walk,
// O(log n + k) for k results. No matches returns a nil slice and nil error.
// start sorting after end is ErrInvalidArgument.
func (t *Tree[K, V]) Range(start, end K) ([]V, error) {
	if t.cmp(start, end) > 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "range start after end")
	}

	var out []V
	leaf := t.findLeaf(start)
	i := findInsertPosition(t.cmp, leaf.keys, start)
	for ; leaf != nil; leaf, i = leaf.next, 0 {
		for ; i < len(leaf.keys); i++ {
			if t.cmp(leaf.keys[i], end) > 0 {
				return out, nil
			}
			out = append(out, leaf.values[i])
		}
	}
	return out, nil
}

// Ascend calls fn for every pair in ascending key order, stopping early
// when fn returns false. The tree must not be mutated from inside fn.
func (t *Tree[K, V]) Ascend(fn func(key K, value V) bool) {
	for leaf := t.firstLeaf(); leaf != nil; leaf = leaf.next {
		for i := range leaf.keys {
			if !fn(leaf.keys[i], leaf.values[i]) {
				return
			}
		}
	}
}

// AscendRange calls fn for every pair with key in [start, end], both bounds
// inclusive, stopping early when fn returns false.
func (t *Tree[K, V]) AscendRange(start, end K, fn func(key K, value V) bool) error {
	if t.cmp(start, end) > 0 {
		return errors.Wrap(ErrInvalidArgument, "range start after end")
	}

	leaf := t.findLeaf(start)
	i := findInsertPosition(t.cmp, leaf.keys, start)
	for ; leaf != nil; leaf, i = leaf.next, 0 {
		for ; i < len(leaf.keys); i++ {
			if t.cmp(leaf.keys[i], end) > 0 {
				return nil
			}
			if !fn(leaf.keys[i], leaf.values[i]) {
				return nil
			}
		}
	}
	return nil
}
