package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityHasher returns the key unchanged (cast to uint64), so
// directory placement is deterministic and easy to reason about by
// hand in these tests — xxhash itself is exercised via Int32Hasher in
// the buffer pool's own tests.
func identityHasher() Hasher[int] {
	return func(key int) uint64 { return uint64(key) }
}

func TestExtendibleHashTable_FindAbsentKey(t *testing.T) {
	tbl := New[int, string](4, identityHasher())
	_, ok := tbl.Find(42)
	assert.False(t, ok)
}

func TestExtendibleHashTable_InsertThenFind(t *testing.T) {
	tbl := New[int, string](4, identityHasher())
	tbl.Insert(1, "a")
	tbl.Insert(2, "b")

	v, ok := tbl.Find(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok = tbl.Find(2)
	require.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestExtendibleHashTable_InsertOverwritesExistingKey(t *testing.T) {
	tbl := New[int, string](4, identityHasher())
	tbl.Insert(1, "a")
	tbl.Insert(1, "b")

	v, ok := tbl.Find(1)
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, tbl.NumBuckets())
}

func TestExtendibleHashTable_Remove(t *testing.T) {
	tbl := New[int, string](4, identityHasher())
	tbl.Insert(1, "a")

	assert.True(t, tbl.Remove(1))
	assert.False(t, tbl.Remove(1))

	_, ok := tbl.Find(1)
	assert.False(t, ok)
}

func TestExtendibleHashTable_SplitsAndGrowsDirectory(t *testing.T) {
	// Scenario 3 (spec §8.3): bucket_size=2, insert keys 0..7
	// sequentially. Directory should grow to depth 3 (8 slots), every
	// bucket holds at most 2 entries, and every key remains findable.
	tbl := New[int, int](2, identityHasher())

	for k := 0; k < 8; k++ {
		tbl.Insert(k, k*10)
	}

	assert.Equal(t, 3, tbl.GlobalDepth())

	for k := 0; k < 8; k++ {
		v, ok := tbl.Find(k)
		require.True(t, ok, "key %d should be found", k)
		assert.Equal(t, k*10, v)
	}
}

func TestExtendibleHashTable_LocalDepthInvariant(t *testing.T) {
	// For every bucket b, 2^(globalDepth - localDepth(b)) directory
	// slots reference it (spec §8 invariants).
	tbl := New[int, int](2, identityHasher())
	for k := 0; k < 8; k++ {
		tbl.Insert(k, k)
	}

	global := tbl.GlobalDepth()
	dirSize := 1 << global

	refCount := map[int]int{}
	// Re-derive bucket identity indirectly: two directory indices
	// sharing the same local depth AND whose low-local-depth bits match
	// must be the same bucket. We can't reach bucket pointers from the
	// test, so instead verify a consequence of the counting invariant
	// using local depth alone: for every distinct local depth value d,
	// the number of slots reporting d must be a multiple of
	// 2^(global-d), the slot count of each bucket at that depth.
	for i := 0; i < dirSize; i++ {
		d := tbl.LocalDepth(i)
		refCount[d]++
	}
	for d, count := range refCount {
		slotsPerBucket := 1 << (global - d)
		assert.Equal(t, 0, count%slotsPerBucket, "local depth %d count %d not a multiple of %d", d, count, slotsPerBucket)
	}
}

func TestExtendibleHashTable_ManyKeysSameLowBitsForceRepeatedSplits(t *testing.T) {
	// All of these keys collide on the low bits (multiples of 8 under
	// the identity hasher), so inserting them must split the owning
	// bucket multiple times in a single Insert call before succeeding.
	tbl := New[int, int](1, identityHasher())
	keys := []int{0, 8, 16, 24, 32}
	for _, k := range keys {
		tbl.Insert(k, k)
	}
	for _, k := range keys {
		v, ok := tbl.Find(k)
		require.True(t, ok)
		assert.Equal(t, k, v)
	}
}
