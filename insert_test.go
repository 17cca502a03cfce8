package bptree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Split Tests

func TestSequentialInsertAscending(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 3)
	for i := 1; i <= 1000; i++ {
		require.NoError(t, tree.Put(i, val(i)))
		assert.Equal(t, i, tree.Len())
	}
	require.NoError(t, tree.Check())

	for i := 1; i <= 1000; i++ {
		got, err := tree.Get(i)
		require.NoError(t, err)
		assert.Equal(t, val(i), got)
	}
}

func TestSequentialInsertDescending(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 3)
	for i := 1000; i >= 1; i-- {
		require.NoError(t, tree.Put(i, val(i)))
	}
	require.NoError(t, tree.Check())
	assert.Equal(t, 1000, tree.Len())

	// Ascending reads come back in order despite descending inserts
	got, err := tree.Range(1, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1000)
	assert.Equal(t, val(1), got[0])
	assert.Equal(t, val(1000), got[999])
}

func TestRandomInsert(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	tree := newTestTree(t, 4)

	keys := rng.Perm(2000)
	for _, k := range keys {
		require.NoError(t, tree.Put(k, val(k)))
	}
	require.NoError(t, tree.Check())
	assert.Equal(t, 2000, tree.Len())

	for _, k := range keys {
		got, err := tree.Get(k)
		require.NoError(t, err)
		assert.Equal(t, val(k), got)
	}
}

func TestHeightGrowsOneLevelAtATime(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 3)
	prev := tree.Height()
	for i := 0; i < 500; i++ {
		require.NoError(t, tree.Put(i, val(i)))
		h := tree.Height()
		assert.LessOrEqual(t, h-prev, 1)
		assert.GreaterOrEqual(t, h, prev)
		prev = h
	}
	assert.Greater(t, tree.Height(), 2)
}

// Every degree has its own split arithmetic; run the same workload over a
// spread of odd, even, minimum, and above-binary-search-threshold degrees.
func TestInsertAcrossDegrees(t *testing.T) {
	t.Parallel()

	for _, maxKeys := range []int{3, 4, 5, 7, 16, 33, 64} {
		maxKeys := maxKeys
		t.Run(fmt.Sprintf("maxKeys=%d", maxKeys), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewSource(int64(maxKeys)))
			tree := newTestTree(t, maxKeys)
			keys := rng.Perm(1500)

			for i, k := range keys {
				require.NoError(t, tree.Put(k, val(k)))
				// Full validation every insert is quadratic; sample it
				if i%97 == 0 {
					require.NoError(t, tree.Check())
				}
			}
			require.NoError(t, tree.Check())
			assert.Equal(t, len(keys), tree.Len())

			for _, k := range keys {
				got, err := tree.Get(k)
				require.NoError(t, err)
				assert.Equal(t, val(k), got)
			}
		})
	}
}

func TestInsertIntoClearedTree(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t, 5)
	for round := 0; round < 3; round++ {
		for i := 0; i < 300; i++ {
			require.NoError(t, tree.Put(i, val(i)))
		}
		require.NoError(t, tree.Check())
		tree.Clear()
		require.NoError(t, tree.Check())
		assert.Equal(t, 0, tree.Len())
	}
}
