package common

// PageID identifies a page as it is known to the disk manager. It is
// signed so that InvalidPageID can be represented without a reserved
// magic number inside the valid range.
type PageID = int32

// FrameID identifies a slot inside a buffer pool's frame array.
type FrameID = int32

const (
	// InvalidPageID is the sentinel returned in place of a page id when
	// no page is associated, e.g. an empty frame or a failed allocation.
	InvalidPageID PageID = -1

	// InvalidFrameID is the sentinel frame id returned when no frame
	// could be produced (pool exhausted, nothing evictable).
	InvalidFrameID FrameID = -1
)

const (
	// DefaultPoolSize is a default frame count for callers to pass as
	// the pool size; the demo in main.go uses it.
	DefaultPoolSize = 64

	// DefaultReplacerK is the K in LRU-K when callers don't specify one.
	DefaultReplacerK = 2

	// DefaultBucketSize bounds the number of entries an extendible hash
	// table bucket may hold before it must split.
	DefaultBucketSize = 4

	// DefaultShardCount is a default number of independent pool shards
	// for callers to pass to NewShardedPool, which always takes an
	// explicit shard count.
	DefaultShardCount = 4
)
