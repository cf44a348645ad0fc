package buffer

import (
	"fmt"
	"log"
	"sync"

	"github.com/BinyuHuang-nju/bustub/common"
	"github.com/BinyuHuang-nju/bustub/disk"
	"github.com/BinyuHuang-nju/bustub/hash"
)

// BufferPool mediates between a fixed array of in-memory Frames and a
// disk.Manager: callers fetch pages by id, pin them for the duration
// of their use, and the pool decides which unpinned frame to reclaim
// when it needs room for a new one. Every public method here is
// atomic under a single pool-wide lock, including the disk I/O it
// performs — that's deliberate, not an oversight: evict-then-install
// has to be invisible to callers as an intermediate state, and the
// simplest way to guarantee that is to never let go of the lock
// in between.
type BufferPool struct {
	mu sync.Mutex

	frames    []*Frame
	freeList  []common.FrameID
	pageTable *hash.ExtendibleHashTable[common.PageID, common.FrameID]
	replacer  Replacer
	disk      disk.IManager
	logHook   LogHook
	stats     *poolStats

	// nextPageID is the pool's own monotonic id counter (spec §4.1.2:
	// "AllocatePage returns a monotonically increasing integer, starting
	// at 0"), exactly as BusTub's BufferPoolManagerInstance owns
	// next_page_id_ itself rather than asking the disk manager for one.
	// idStride lets ShardedPool give each shard a disjoint id space
	// (shard i starts at i and steps by the shard count) without any
	// coordination with the disk layer.
	nextPageID common.PageID
	idStride   common.PageID
}

// NewBufferPoolManager builds a pool of poolSize frames backed by dm,
// evicting via LRU-K with parameter k and indexing pages through an
// extendible hash table whose buckets hold up to bucketSize entries.
// hook may be nil, in which case NoopLogHook is used. Page ids start at
// 0 and increase by 1 per NewPage call.
func NewBufferPoolManager(poolSize, k, bucketSize int, dm disk.IManager, hook LogHook) *BufferPool {
	return newBufferPoolManager(poolSize, k, bucketSize, dm, hook, 0, 1)
}

// newBufferPoolManager is the general constructor: idStart/idStride let
// a caller (ShardedPool) carve out a disjoint id space per pool instead
// of letting every instance start at 0 with stride 1.
func newBufferPoolManager(poolSize, k, bucketSize int, dm disk.IManager, hook LogHook, idStart, idStride common.PageID) *BufferPool {
	if hook == nil {
		hook = NoopLogHook
	}

	frames := make([]*Frame, poolSize)
	freeList := make([]common.FrameID, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = newFrame(common.FrameID(i))
		freeList[i] = common.FrameID(i)
	}

	return &BufferPool{
		frames:     frames,
		freeList:   freeList,
		pageTable:  hash.New[common.PageID, common.FrameID](bucketSize, hash.Int32Hasher()),
		replacer:   NewLRUKReplacer(poolSize, k),
		disk:       dm,
		logHook:    hook,
		stats:      newPoolStats(),
		nextPageID: idStart,
		idStride:   idStride,
	}
}

// GetPoolSize returns the fixed number of frames the pool was built
// with.
func (p *BufferPool) GetPoolSize() int {
	return len(p.frames)
}

// FrameAt exposes a frame by its array index. It exists for tests and
// introspection; ordinary callers go through FetchPage/NewPage.
func (p *BufferPool) FrameAt(frameID common.FrameID) *Frame {
	return p.frames[frameID]
}

// NewPage allocates a fresh page id, installs it into a victim frame,
// and returns that frame pinned once with zeroed contents. ok is false
// when no victim is available (pool full and every frame pinned).
func (p *BufferPool) NewPage() (pageID common.PageID, frame *Frame, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, found := p.takeVictim()
	if !found {
		return common.InvalidPageID, nil, false
	}

	frame = p.frames[frameID]
	p.evictOccupant(frame)

	pageID = p.nextPageID
	p.nextPageID += p.idStride
	frame.install(pageID)
	for i := range frame.data {
		frame.data[i] = 0
	}

	p.pageTable.Insert(pageID, frameID)
	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)
	return pageID, frame, true
}

// FetchPage returns the frame holding pageID, pinning it, reading it
// from disk first if it isn't already resident. ok is false only when
// the page is absent and no victim frame is available.
func (p *BufferPool) FetchPage(pageID common.PageID) (frame *Frame, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frameID, hit := p.pageTable.Find(pageID); hit {
		p.stats.recordHit()
		frame := p.frames[frameID]
		frame.pinCount++
		p.replacer.RecordAccess(frameID)
		p.replacer.SetEvictable(frameID, false)
		return frame, true
	}
	p.stats.recordMiss()

	frameID, found := p.takeVictim()
	if !found {
		return nil, false
	}

	frame = p.frames[frameID]
	p.evictOccupant(frame)
	frame.install(pageID)

	// The read happens here, under the pool lock: a second caller
	// fetching the same page id blocks on the lock rather than racing
	// to install a duplicate mapping. The tradeoff is that disk latency
	// is fully serialized against every other pool operation; this
	// module accepts that rather than release-and-reacquire around I/O.
	if err := p.disk.ReadPage(pageID, frame.data); err != nil {
		panic(fmt.Sprintf("buffer: ReadPage(%d) failed: %v", pageID, err))
	}

	p.pageTable.Insert(pageID, frameID)
	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)
	return frame, true
}

// UnpinPage releases a caller's hold on pageID. Once the pin count
// drops to zero the frame becomes eligible for eviction. isDirty only
// ever sets the dirty flag, never clears it: dirtiness is sticky until
// an explicit flush.
func (p *BufferPool) UnpinPage(pageID common.PageID, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.pageTable.Find(pageID)
	if !ok {
		return false
	}

	frame := p.frames[frameID]
	if frame.pinCount == 0 {
		return false
	}

	if isDirty {
		frame.isDirty = true
	}
	frame.pinCount--
	if frame.pinCount == 0 {
		p.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID's frame to disk unconditionally (even if
// clean, since a caller asked explicitly) and clears its dirty flag.
func (p *BufferPool) FlushPage(pageID common.PageID) bool {
	if pageID == common.InvalidPageID {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.pageTable.Find(pageID)
	if !ok {
		return false
	}

	p.flushFrame(p.frames[frameID])
	return true
}

// FlushAllPages flushes every frame currently holding a valid page.
func (p *BufferPool) FlushAllPages() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, frame := range p.frames {
		if frame.pageID != common.InvalidPageID {
			p.flushFrame(frame)
		}
	}
	p.stats.logSummary(len(p.frames))
}

// DeletePage removes pageID from the pool and returns its frame to the
// free list. Deleting an absent page is a no-op success; deleting a
// pinned page fails.
func (p *BufferPool) DeletePage(pageID common.PageID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.pageTable.Find(pageID)
	if !ok {
		return true
	}

	frame := p.frames[frameID]
	if frame.pinCount > 0 {
		return false
	}

	if frame.isDirty {
		p.flushFrame(frame)
	}

	p.pageTable.Remove(pageID)
	p.replacer.Remove(frameID)
	p.disk.DeallocatePage(pageID)
	frame.reset()
	p.freeList = append(p.freeList, frameID)
	p.stats.recordEviction()
	return true
}

// takeVictim picks a frame to reuse: the free list first, the
// replacer second.
func (p *BufferPool) takeVictim() (common.FrameID, bool) {
	if len(p.freeList) > 0 {
		frameID := p.freeList[0]
		p.freeList = p.freeList[1:]
		return frameID, true
	}
	return p.replacer.Evict()
}

// evictOccupant purges frame's current occupant, if any, flushing it
// first if dirty. Called only from within a victim-install sequence,
// already holding the pool lock, so no other caller can observe the
// frame between purge and reinstall.
func (p *BufferPool) evictOccupant(frame *Frame) {
	if frame.pageID == common.InvalidPageID {
		return
	}
	if frame.pinCount != 0 {
		panic(fmt.Sprintf("buffer: frame %d chosen as victim while pinned (pin count %d)", frame.id, frame.pinCount))
	}
	if frame.isDirty {
		p.flushFrame(frame)
	}
	p.pageTable.Remove(frame.pageID)
	frame.reset()
	p.stats.recordEviction()
}

// flushFrame writes frame's contents to disk, consulting the log hook
// first so a dirty page is never persisted ahead of the log record
// that justifies its contents.
func (p *BufferPool) flushFrame(frame *Frame) {
	if frame.lsn > p.logHook.FlushedLSN() {
		if err := p.logHook.Flush(); err != nil {
			log.Printf("buffer: log hook flush failed before writing page %d: %v", frame.pageID, err)
		}
	}
	if err := p.disk.WritePage(frame.pageID, frame.data); err != nil {
		panic(fmt.Sprintf("buffer: WritePage(%d) failed: %v", frame.pageID, err))
	}
	frame.isDirty = false
}
