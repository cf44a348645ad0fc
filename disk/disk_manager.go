package disk

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/google/uuid"
)

const PageSize int = 4096

// IManager is the contract the buffer pool core consumes from the
// on-disk page store (spec §6): raw page I/O plus a reclaim hint. Page
// id assignment is not part of this contract — the pool hands out its
// own monotonic ids (see BufferPool.NewPage) rather than delegating
// that to the store, so page id 0 is an ordinary page here, not
// metadata.
type IManager interface {
	ReadPage(pageId int32, dst []byte) error
	WritePage(pageId int32, src []byte) error
	DeallocatePage(pageId int32)
	Close() error
}

var _ IManager = &Manager{}

// Manager is a single-file reference implementation of IManager: one
// page per PageSize-byte slot, indexed directly by page id. A small
// sidecar file carries the store's instance id across restarts without
// stealing any page-indexed byte range for it.
type Manager struct {
	file     *os.File
	metaFile *os.File

	instanceID uuid.UUID
	mu         sync.Mutex
}

// NewDiskManager opens (or creates) file as a page store. The second
// return value reports whether the file was freshly created.
func NewDiskManager(file string) (*Manager, bool, error) {
	d := &Manager{}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return nil, false, err
	}
	d.file = f

	mf, err := os.OpenFile(file+".meta", os.O_CREATE|os.O_RDWR, os.ModePerm)
	if err != nil {
		return nil, false, err
	}
	d.metaFile = mf

	stat, err := mf.Stat()
	if err != nil {
		return nil, false, err
	}

	fresh := stat.Size() == 0
	log.Printf("disk: page store %q is initializing, fresh=%v\n", file, fresh)

	if fresh {
		d.instanceID = uuid.New()
		if err := d.writeMeta(); err != nil {
			return nil, false, err
		}
		return d, true, nil
	}

	id, err := d.readMeta()
	if err != nil {
		return nil, false, err
	}
	d.instanceID = id
	return d, false, nil
}

// InstanceID identifies this page store across process restarts.
func (d *Manager) InstanceID() uuid.UUID {
	return d.instanceID
}

func (d *Manager) ReadPage(pageId int32, dst []byte) error {
	if len(dst) != PageSize {
		return fmt.Errorf("disk: ReadPage dst must be %d bytes, got %d", PageSize, len(dst))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.file.Seek(int64(PageSize)*int64(pageId), io.SeekStart); err != nil {
		return err
	}

	n, err := io.ReadFull(d.file, dst)
	if err != nil {
		return err
	}
	if n != PageSize {
		panic(fmt.Sprintf("disk: partial page read for page %d", pageId))
	}
	return nil
}

func (d *Manager) WritePage(pageId int32, src []byte) error {
	if len(src) != PageSize {
		return fmt.Errorf("disk: WritePage src must be %d bytes, got %d", PageSize, len(src))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.file.Seek(int64(PageSize)*int64(pageId), io.SeekStart); err != nil {
		return err
	}

	n, err := d.file.Write(src)
	if err != nil {
		return err
	}
	if n != PageSize {
		panic("disk: written bytes are not equal to page size")
	}
	return nil
}

// DeallocatePage is a reclaim hint: page ids themselves are never
// reused (the pool's counter only ever increases), so there is no free
// list to thread this onto. This implementation is a no-op, matching
// the original BusTub disk manager's own unimplemented DeallocatePage;
// it exists on the interface so a store that does reclaim space has
// somewhere to do it.
func (d *Manager) DeallocatePage(pageId int32) {}

func (d *Manager) Close() error {
	if err := d.file.Close(); err != nil {
		return err
	}
	return d.metaFile.Close()
}

func (d *Manager) readMeta() (uuid.UUID, error) {
	var buf [16]byte
	if _, err := d.metaFile.ReadAt(buf[:], 0); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.FromBytes(buf[:])
}

func (d *Manager) writeMeta() error {
	idBytes, err := d.instanceID.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = d.metaFile.WriteAt(idBytes, 0)
	return err
}
