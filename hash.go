package bptree

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash callbacks for EnableLookupCache. The cache needs a uint32 hash of
// the key; these cover the common key types via xxhash. Custom key types
// supply their own func(K) uint32.

// HashString hashes a string key.
func HashString(key string) uint32 {
	return uint32(xxhash.Sum64String(key))
}

// HashBytes hashes a byte-slice-backed key.
//
//goland:noinspection GoUnusedExportedFunction
func HashBytes(key []byte) uint32 {
	return uint32(xxhash.Sum64(key))
}

// HashUint64 hashes an unsigned integer key.
func HashUint64(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return uint32(xxhash.Sum64(buf[:]))
}

// HashInt64 hashes a signed 64-bit integer key.
func HashInt64(key int64) uint32 {
	return HashUint64(uint64(key))
}

// HashInt hashes an int key.
func HashInt(key int) uint32 {
	return HashUint64(uint64(key))
}
