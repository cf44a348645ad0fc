package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Int32Hasher hashes the table's most common key type, a signed
// 32-bit id (page ids and frame ids are both int32 in this module),
// with xxhash for a well-distributed, non-cryptographic spread across
// directory slots.
func Int32Hasher() Hasher[int32] {
	return func(key int32) uint64 {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(key))
		return xxhash.Sum64(buf[:])
	}
}
