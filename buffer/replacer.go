package buffer

import "github.com/BinyuHuang-nju/bustub/common"

// Replacer is the eviction-policy capability the pool depends on. The
// pool never knows which concrete policy backs it; LRUKReplacer is the
// only implementation this module ships, but nothing about the pool's
// logic assumes that.
type Replacer interface {
	// RecordAccess notes that frameID was just accessed.
	RecordAccess(frameID common.FrameID)
	// SetEvictable flips whether frameID participates in Evict.
	SetEvictable(frameID common.FrameID, evictable bool)
	// Evict removes and returns the frame the policy picks to replace.
	// ok is false when no evictable frame exists.
	Evict() (frameID common.FrameID, ok bool)
	// Remove drops frameID's tracking state without regard to the
	// eviction order. On a frame that is not tracked or not currently
	// evictable it does nothing.
	Remove(frameID common.FrameID)
	// Size is the number of frames currently evictable.
	Size() int
}
