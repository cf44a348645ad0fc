package buffer

import (
	"sync"

	"github.com/BinyuHuang-nju/bustub/common"
	"github.com/BinyuHuang-nju/bustub/disk"
)

// Frame is one slot of the pool's backing array. It holds the bytes of
// whatever page is currently resident plus the metadata the pool and
// replacer need to decide its fate: pin count, dirty flag, and a latch
// callers may take to guard the contents across a pin.
type Frame struct {
	id common.FrameID

	pageID   common.PageID
	pinCount int
	isDirty  bool
	lsn      uint64

	rwLatch sync.RWMutex
	data    []byte
}

func newFrame(id common.FrameID) *Frame {
	return &Frame{
		id:     id,
		pageID: common.InvalidPageID,
		data:   make([]byte, disk.PageSize),
	}
}

func (f *Frame) ID() common.FrameID {
	return f.id
}

func (f *Frame) PageID() common.PageID {
	return f.pageID
}

func (f *Frame) PinCount() int {
	return f.pinCount
}

func (f *Frame) IsDirty() bool {
	return f.isDirty
}

func (f *Frame) Data() []byte {
	return f.data
}

// LSN is an opaque marker a caller may stamp via SetLSN. The pool never
// interprets it beyond comparing it to a log hook's flushed watermark.
func (f *Frame) LSN() uint64 {
	return f.lsn
}

func (f *Frame) SetLSN(lsn uint64) {
	f.lsn = lsn
}

func (f *Frame) WLatch() {
	f.rwLatch.Lock()
}

func (f *Frame) WUnlatch() {
	f.rwLatch.Unlock()
}

func (f *Frame) RLatch() {
	f.rwLatch.RLock()
}

func (f *Frame) RUnlatch() {
	f.rwLatch.RUnlock()
}

// reset restores a frame to the free-list state: no page, no pins,
// clean, zeroed contents, LSN forgotten.
func (f *Frame) reset() {
	f.pageID = common.InvalidPageID
	f.pinCount = 0
	f.isDirty = false
	f.lsn = 0
	for i := range f.data {
		f.data[i] = 0
	}
}

// install assigns pageID to this frame with pin count 1 and clean
// contents; callers fill in f.data themselves afterward (NewPage
// zeroes it, FetchPage's miss path reads it from disk).
func (f *Frame) install(pageID common.PageID) {
	f.pageID = pageID
	f.pinCount = 1
	f.isDirty = false
}
