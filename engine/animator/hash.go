package animator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// HashCombine folds a sequence of identities into one pose-cache key.
// The result depends on argument order.
//
// Parameters:
//   - ids: the identities to combine
//
// Returns:
//   - uint64: the combined key
func HashCombine(ids ...uint64) uint64 {
	var buf [8]byte
	d := xxhash.New()
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], id)
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// HashString returns the 64-bit identity of a string.
func HashString(s string) uint64 {
	return xxhash.Sum64String(s)
}
