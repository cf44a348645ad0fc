// Package hash implements a concurrent extendible hash table: a
// directory of shared bucket references that doubles on local-depth
// overflow, giving predictable worst-case lookups with per-bucket
// locking instead of a single lock over one flat map.
package hash

import (
	"sync"
)

// Hasher produces the hash a key is indexed by. Keys only need to be
// comparable; how they're hashed is the caller's business, which is
// why it's threaded in rather than derived from K via reflection.
type Hasher[K comparable] func(key K) uint64

// bucket holds at most size entries sharing a directory prefix of
// depth bits. Many directory slots may point at the same bucket; the
// bucket itself doesn't know how many.
type bucket[K comparable, V any] struct {
	mu    sync.RWMutex
	depth int
	size  int
	keys  []K
	vals  []V
}

func newBucket[K comparable, V any](size, depth int) *bucket[K, V] {
	return &bucket[K, V]{size: size, depth: depth}
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for i, k := range b.keys {
		if k == key {
			return b.vals[i], true
		}
	}
	var zero V
	return zero, false
}

func (b *bucket[K, V]) remove(key K) bool {
	for i, k := range b.keys {
		if k == key {
			last := len(b.keys) - 1
			b.keys[i] = b.keys[last]
			b.vals[i] = b.vals[last]
			b.keys = b.keys[:last]
			b.vals = b.vals[:last]
			return true
		}
	}
	return false
}

// insert reports whether the key now has value stored in the bucket.
// false means the bucket is full and the key is absent: the caller
// must split.
func (b *bucket[K, V]) insert(key K, val V) bool {
	for i, k := range b.keys {
		if k == key {
			b.vals[i] = val
			return true
		}
	}
	if len(b.keys) >= b.size {
		return false
	}
	b.keys = append(b.keys, key)
	b.vals = append(b.vals, val)
	return true
}

// ExtendibleHashTable is a concurrent map from K to V. A directory of
// 2^globalDepth slots holds shared references to buckets; a bucket's
// localDepth (≤ globalDepth) determines how many directory slots
// alias it: exactly 2^(globalDepth-localDepth) of them, namely every
// index sharing the bucket's low localDepth bits.
type ExtendibleHashTable[K comparable, V any] struct {
	mu sync.RWMutex // directory lock: guards dir/globalDepth/numBuckets, not bucket contents

	globalDepth int
	bucketSize  int
	numBuckets  int
	dir         []*bucket[K, V]
	hash        Hasher[K]
}

// New builds a table with one empty bucket of the given capacity,
// hashing keys with hash.
func New[K comparable, V any](bucketSize int, hash Hasher[K]) *ExtendibleHashTable[K, V] {
	if bucketSize < 1 {
		panic("hash: bucket size must be >= 1")
	}
	b0 := newBucket[K, V](bucketSize, 0)
	return &ExtendibleHashTable[K, V]{
		bucketSize: bucketSize,
		numBuckets: 1,
		dir:        []*bucket[K, V]{b0},
		hash:       hash,
	}
}

func (t *ExtendibleHashTable[K, V]) indexOf(key K) int {
	mask := (uint64(1) << uint(t.globalDepth)) - 1
	return int(t.hash(key) & mask)
}

// pairIndex returns the sibling slot a bucket at bucketNo is split
// against when its local depth becomes localDepth.
func pairIndex(bucketNo, localDepth int) int {
	return bucketNo ^ (1 << (localDepth - 1))
}

// Find looks up key under the directory read-lock just long enough to
// resolve the owning bucket, then releases it before searching.
func (t *ExtendibleHashTable[K, V]) Find(key K) (V, bool) {
	t.mu.RLock()
	idx := t.indexOf(key)
	b := t.dir[idx]
	t.mu.RUnlock()

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.find(key)
}

// Remove erases key, reporting whether it was present.
func (t *ExtendibleHashTable[K, V]) Remove(key K) bool {
	t.mu.RLock()
	idx := t.indexOf(key)
	b := t.dir[idx]
	t.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remove(key)
}

// Insert writes key → val, splitting and doubling the directory as
// many times as needed to make room.
func (t *ExtendibleHashTable[K, V]) Insert(key K, val V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		bucketNo := t.indexOf(key)
		b := t.dir[bucketNo]
		b.mu.Lock()
		if b.insert(key, val) {
			b.mu.Unlock()
			return
		}

		// Overflow: split this bucket and retry from the top, since the
		// key that triggered the split may land in either half and may
		// itself still overflow if many keys share a long hash prefix.
		b.depth++
		localDepth := b.depth
		if localDepth > t.globalDepth {
			dirSize := len(t.dir)
			t.dir = append(t.dir, t.dir[:dirSize]...)
			t.globalDepth++
		}

		siblingIdx := pairIndex(bucketNo, localDepth)
		sibling := newBucket[K, V](t.bucketSize, localDepth)
		t.numBuckets++

		oldKeys, oldVals := b.keys, b.vals
		b.keys, b.vals = nil, nil
		b.mu.Unlock()

		t.dir[siblingIdx] = sibling

		step := 1 << uint(localDepth)
		dirSize := 1 << uint(t.globalDepth)
		for i := siblingIdx - step; i >= 0; i -= step {
			t.dir[i] = sibling
		}
		for i := siblingIdx + step; i < dirSize; i += step {
			t.dir[i] = sibling
		}

		for i, k := range oldKeys {
			dst := t.dir[t.indexOf(k)]
			dst.mu.Lock()
			dst.insert(k, oldVals[i])
			dst.mu.Unlock()
		}
	}
}

// GlobalDepth is the directory's addressing width in bits.
func (t *ExtendibleHashTable[K, V]) GlobalDepth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.globalDepth
}

// LocalDepth is the local depth of the bucket referenced by dirIndex.
func (t *ExtendibleHashTable[K, V]) LocalDepth(dirIndex int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dir[dirIndex].depth
}

// NumBuckets is the count of distinct buckets behind the directory.
func (t *ExtendibleHashTable[K, V]) NumBuckets() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.numBuckets
}
