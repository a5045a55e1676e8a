package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spacemeshos/go-scale"
)

const (
	// AddressLength is the expected length of the address.
	AddressLength = common.AddressLength
	// Hash32Length is the expected length of the hash.
	Hash32Length = common.HashLength
)

// Address of an account, a template or the engine itself.
type Address = common.Address

// Hash32 is a 32-byte keccak256 digest.
type Hash32 = common.Hash

// EmptyAddress is the zero address.
var EmptyAddress Address

// HexToAddress parses a 0x-prefixed hex address and fails on malformed input.
func HexToAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// BytesToAddress converts b to an address, b must be exactly AddressLength long.
func BytesToAddress(b []byte) (Address, error) {
	if len(b) != AddressLength {
		return Address{}, fmt.Errorf("wrong address length: expected %d, got %d", AddressLength, len(b))
	}
	return common.BytesToAddress(b), nil
}

// EncodeAddress writes address as a fixed size array.
func EncodeAddress(enc *scale.Encoder, addr Address) (int, error) {
	return scale.EncodeByteArray(enc, addr[:])
}

// DecodeAddress reads a fixed size address.
func DecodeAddress(dec *scale.Decoder) (Address, int, error) {
	var addr Address
	n, err := scale.DecodeByteArray(dec, addr[:])
	return addr, n, err
}

// EncodeHash32 writes hash as a fixed size array.
func EncodeHash32(enc *scale.Encoder, h Hash32) (int, error) {
	return scale.EncodeByteArray(enc, h[:])
}

// DecodeHash32 reads a fixed size hash.
func DecodeHash32(dec *scale.Decoder) (Hash32, int, error) {
	var h Hash32
	n, err := scale.DecodeByteArray(dec, h[:])
	return h, n, err
}

// TemplateAddress returns the reserved address of the n-th builtin template.
func TemplateAddress(n byte) Address {
	var addr Address
	addr[AddressLength-1] = n
	return addr
}
