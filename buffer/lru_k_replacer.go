package buffer

import (
	"container/list"
	"log"
	"sync"

	"github.com/BinyuHuang-nju/bustub/common"
)

// lruKNode is the per-frame bookkeeping record tracked by LRUKReplacer.
// It lives inside exactly one of the replacer's two lists at a time;
// which one is recorded by which map holds its *list.Element, not by a
// field on the node itself (mirrors the two-map split of the original
// C++ implementation rather than a single "inHistory" flag).
type lruKNode struct {
	frameID     common.FrameID
	accessCount int
	evictable   bool
}

// LRUKReplacer implements the replacer capability over backward
// K-distance: frames with fewer than K accesses sit in the history
// list and are evicted first, least-recently-accessed first; frames
// with K or more accesses sit in the cache list and are evicted only
// when no history frame is evictable, again least-recently-accessed
// first.
type LRUKReplacer struct {
	mu sync.Mutex

	k            int
	replacerSize int
	curSize      int

	history    *list.List
	cache      *list.List
	historyIdx map[common.FrameID]*list.Element
	cacheIdx   map[common.FrameID]*list.Element
}

var _ Replacer = &LRUKReplacer{}

// NewLRUKReplacer builds a replacer tracking up to numFrames distinct
// frame ids with backward-K-distance parameter k. k < 1 is a
// programming error: there is no such thing as a 0th-most-recent
// access.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	if k < 1 {
		panic("buffer: LRU-K replacer requires k >= 1")
	}
	return &LRUKReplacer{
		k:            k,
		replacerSize: numFrames,
		history:      list.New(),
		cache:        list.New(),
		historyIdx:   make(map[common.FrameID]*list.Element),
		cacheIdx:     make(map[common.FrameID]*list.Element),
	}
}

func (r *LRUKReplacer) RecordAccess(frameID common.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var node *lruKNode
	if el, ok := r.historyIdx[frameID]; ok {
		node = el.Value.(*lruKNode)
	} else if el, ok := r.cacheIdx[frameID]; ok {
		node = el.Value.(*lruKNode)
	} else {
		if len(r.historyIdx)+len(r.cacheIdx) == r.replacerSize {
			log.Printf("buffer: LRUKReplacer full (%d tracked frames), dropping RecordAccess(%d)", r.replacerSize, frameID)
			return
		}
		node = &lruKNode{frameID: frameID}
		r.historyIdx[frameID] = r.history.PushFront(node)
	}

	node.accessCount++
	switch {
	case node.accessCount == r.k:
		el := r.historyIdx[frameID]
		r.history.Remove(el)
		delete(r.historyIdx, frameID)
		r.cacheIdx[frameID] = r.cache.PushFront(node)
	case node.accessCount < r.k:
		if node.accessCount != 1 {
			r.history.MoveToFront(r.historyIdx[frameID])
		}
	default: // > k
		r.cache.MoveToFront(r.cacheIdx[frameID])
	}
}

func (r *LRUKReplacer) SetEvictable(frameID common.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	node := r.lookup(frameID)
	if node == nil || node.evictable == evictable {
		return
	}
	node.evictable = evictable
	if evictable {
		r.curSize++
	} else {
		r.curSize--
	}
}

func (r *LRUKReplacer) Evict() (common.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.curSize == 0 {
		return common.InvalidFrameID, false
	}

	el := firstEvictableFromBack(r.history)
	inHistory := el != nil
	if el == nil {
		el = firstEvictableFromBack(r.cache)
	}

	node := el.Value.(*lruKNode)
	frameID := node.frameID
	if inHistory {
		r.history.Remove(el)
		delete(r.historyIdx, frameID)
	} else {
		r.cache.Remove(el)
		delete(r.cacheIdx, frameID)
	}
	r.curSize--
	return frameID, true
}

func (r *LRUKReplacer) Remove(frameID common.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if el, ok := r.historyIdx[frameID]; ok {
		node := el.Value.(*lruKNode)
		if !node.evictable {
			return
		}
		r.history.Remove(el)
		delete(r.historyIdx, frameID)
		r.curSize--
		return
	}
	if el, ok := r.cacheIdx[frameID]; ok {
		node := el.Value.(*lruKNode)
		if !node.evictable {
			return
		}
		r.cache.Remove(el)
		delete(r.cacheIdx, frameID)
		r.curSize--
	}
}

func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.curSize
}

func (r *LRUKReplacer) lookup(frameID common.FrameID) *lruKNode {
	if el, ok := r.historyIdx[frameID]; ok {
		return el.Value.(*lruKNode)
	}
	if el, ok := r.cacheIdx[frameID]; ok {
		return el.Value.(*lruKNode)
	}
	return nil
}

// firstEvictableFromBack scans a most-recent-first list from its tail
// (oldest) toward its head, returning the first evictable element.
func firstEvictableFromBack(l *list.List) *list.Element {
	for el := l.Back(); el != nil; el = el.Prev() {
		if el.Value.(*lruKNode).evictable {
			return el
		}
	}
	return nil
}
