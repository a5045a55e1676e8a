package core

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/spacemeshos/go-entrypoint/codec"
)

// StorageKey derives a storage slot from its parts.
func StorageKey(parts ...[]byte) Hash32 {
	return crypto.Keccak256Hash(parts...)
}

// GetUint64 reads counter stored under key, missing key reads as zero.
func GetUint64(host Host, key Hash32) (uint64, error) {
	value, err := host.Get(key)
	if err != nil {
		return 0, err
	}
	switch len(value) {
	case 0:
		return 0, nil
	case 8:
		return binary.BigEndian.Uint64(value), nil
	}
	return 0, fmt.Errorf("%w: storage value of %d bytes at %v", ErrInternal, len(value), key)
}

// SetUint64 stores counter under key, zero deletes the key.
func SetUint64(host Host, key Hash32, value uint64) error {
	if value == 0 {
		return host.Set(key, nil)
	}
	return host.Set(key, binary.BigEndian.AppendUint64(nil, value))
}

// GetObject decodes value stored under key. Returns false if the key is missing.
func GetObject(host Host, key Hash32, value codec.Decodable) (bool, error) {
	raw, err := host.Get(key)
	if err != nil || len(raw) == 0 {
		return false, err
	}
	if err := codec.Decode(raw, value); err != nil {
		return false, fmt.Errorf("%w: decode storage at %v: %w", ErrInternal, key, err)
	}
	return true, nil
}

// SetObject encodes value under key.
func SetObject(host Host, key Hash32, value codec.Encodable) error {
	raw, err := codec.Encode(value)
	if err != nil {
		return fmt.Errorf("%w: encode storage at %v: %w", ErrInternal, key, err)
	}
	return host.Set(key, raw)
}
