// Package hash provides the blake3 digest used for state roots.
package hash

import (
	"sync"

	"github.com/zeebo/blake3"
)

// Size of the digest.
const Size = 32

var pool = &sync.Pool{
	New: func() any {
		return blake3.New()
	},
}

// GetHasher will get a blake3 hasher from the pool.
// Consumers are expected to call Reset() on the hasher before putting it back.
func GetHasher() *blake3.Hasher {
	return pool.Get().(*blake3.Hasher)
}

// PutHasher returns the hasher back to the pool.
func PutHasher(hasher *blake3.Hasher) {
	pool.Put(hasher)
}

// Sum returns the blake3 digest of the concatenated chunks.
func Sum(chunks ...[]byte) (rst [Size]byte) {
	hh := GetHasher()
	defer func() {
		hh.Reset()
		PutHasher(hh)
	}()
	for _, chunk := range chunks {
		hh.Write(chunk)
	}
	hh.Sum(rst[:0])
	return rst
}
