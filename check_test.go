package bptree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant Oracle Tests
//
// Check is the correctness oracle for everything else: these workloads run
// it after every single mutation, over degrees chosen to cover the minimum,
// odd/even split arithmetic, and the linear-to-binary search switchover.

func TestCheckAfterEveryMutation(t *testing.T) {
	t.Parallel()

	for _, maxKeys := range []int{3, 4, 5, 7, 16, 33} {
		maxKeys := maxKeys
		t.Run(fmt.Sprintf("maxKeys=%d", maxKeys), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(int64(maxKeys) * 131))
			tree, err := NewOrdered[int, string](maxKeys)
			require.NoError(t, err)

			const n = 300
			for _, k := range rng.Perm(n) {
				require.NoError(t, tree.Put(k, val(k)))
				require.NoError(t, tree.Check())
			}
			for _, k := range rng.Perm(n) {
				require.NoError(t, tree.Delete(k))
				require.NoError(t, tree.Check())
			}
			assert.Equal(t, 0, tree.Len())
		})
	}
}

func TestCheckAdversarialOrders(t *testing.T) {
	t.Parallel()

	orders := map[string]func(n int) []int{
		"ascending": func(n int) []int {
			keys := make([]int, n)
			for i := range keys {
				keys[i] = i
			}
			return keys
		},
		"descending": func(n int) []int {
			keys := make([]int, n)
			for i := range keys {
				keys[i] = n - i
			}
			return keys
		},
		// Alternating outside-in: worst case for separator placement
		"zigzag": func(n int) []int {
			keys := make([]int, 0, n)
			lo, hi := 0, n-1
			for lo <= hi {
				keys = append(keys, lo)
				if lo != hi {
					keys = append(keys, hi)
				}
				lo++
				hi--
			}
			return keys
		},
	}

	for name, order := range orders {
		for _, maxKeys := range []int{3, 4, 7} {
			name, order, maxKeys := name, order, maxKeys
			t.Run(fmt.Sprintf("%s/maxKeys=%d", name, maxKeys), func(t *testing.T) {
				t.Parallel()

				tree, err := NewOrdered[int, string](maxKeys)
				require.NoError(t, err)

				keys := order(250)
				for _, k := range keys {
					require.NoError(t, tree.Put(k, val(k)))
					require.NoError(t, tree.Check())
				}
				for _, k := range keys {
					require.NoError(t, tree.Delete(k))
					require.NoError(t, tree.Check())
				}
			})
		}
	}
}

func TestCheckAllDuplicateAttempts(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 3)
	for i := 0; i < 50; i++ {
		require.NoError(t, tree.Put(i, val(i)))
	}

	// A storm of rejected duplicates must never disturb the structure
	for round := 0; round < 3; round++ {
		for i := 0; i < 50; i++ {
			assert.ErrorIs(t, tree.Put(i, "dup"), ErrDuplicateKey)
			require.NoError(t, tree.Check())
		}
	}
}

// Corruption Detection Tests
//
// Each test vandalizes the node graph directly and asserts Check names the
// damage. This is what makes Check trustworthy as an oracle.

// buildCorruptible returns a three-level tree to vandalize.
func buildCorruptible(t *testing.T) *Tree[int, string] {
	t.Helper()
	tree := newTestTree(t, 3)
	for i := 0; i < 60; i++ {
		require.NoError(t, tree.Put(i, val(i)))
	}
	require.GreaterOrEqual(t, tree.Height(), 3)
	require.NoError(t, tree.Check())
	return tree
}

func TestCheckDetectsUnsortedKeys(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	leaf := tree.firstLeaf()
	leaf.keys[0], leaf.keys[1] = leaf.keys[1], leaf.keys[0]
	leaf.values[0], leaf.values[1] = leaf.values[1], leaf.values[0]

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
	assert.Contains(t, err.Error(), "out of order")
}

func TestCheckDetectsSeparatorViolation(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	root := tree.root.(*innerNode[int, string])
	// Push the first separator above its right subtree's minimum
	root.keys[0] += 1000

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
}

func TestCheckDetectsBrokenLeafChain(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	leaf := tree.firstLeaf()
	// Skip a leaf: the chain no longer covers every stored key
	leaf.next = leaf.next.next

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
	assert.Contains(t, err.Error(), "chain")
}

func TestCheckDetectsCountDrift(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	tree.count += 5

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
}

func TestCheckDetectsHeightDrift(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	tree.height++

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
	assert.Contains(t, err.Error(), "height")
}

func TestCheckDetectsUnderflow(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	leaf := tree.firstLeaf()
	// Strand the leaf below its floor behind the structure's back
	leaf.keys = leaf.keys[:1]
	leaf.values = leaf.values[:1]

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
}

func TestCheckDetectsNilChild(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	root := tree.root.(*innerNode[int, string])
	root.children[1] = nil

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
	assert.Contains(t, err.Error(), "nil child")
}

func TestCheckDetectsNodeCountDrift(t *testing.T) {
	t.Parallel()

	tree := buildCorruptible(t)
	tree.nodes++

	err := tree.Check()
	assert.ErrorIs(t, err, ErrTreeInvalid)
}

func TestCheckEmptyTree(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 3)
	assert.NoError(t, tree.Check())
}
