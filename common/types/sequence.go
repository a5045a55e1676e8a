package types

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spacemeshos/go-scale"
)

// SequenceKeyBits is the width of the queue key in the upper part of a sequence.
const SequenceKeyBits = 192

// SequenceKey identifies an independent ordering queue of a sender.
type SequenceKey [SequenceKeyBits / 8]byte

// Sequence is a 256-bit replay protection value: key(192) << 64 | counter(64).
type Sequence struct {
	Key     SequenceKey
	Counter uint64
}

// NewSequence builds a sequence from its parts.
func NewSequence(key SequenceKey, counter uint64) Sequence {
	return Sequence{Key: key, Counter: counter}
}

// SequenceFromUint256 splits a 256-bit value into key and counter.
func SequenceFromUint256(v *uint256.Int) Sequence {
	b := v.Bytes32()
	var seq Sequence
	copy(seq.Key[:], b[:len(seq.Key)])
	seq.Counter = v.Uint64()
	return seq
}

// Uint256 packs the sequence into a 256-bit value.
func (s Sequence) Uint256() *uint256.Int {
	var b [32]byte
	copy(b[:], s.Key[:])
	v := new(uint256.Int).SetBytes32(b[:])
	return v.Or(v, uint256.NewInt(s.Counter))
}

// Next returns the sequence that follows s in the same queue.
func (s Sequence) Next() Sequence {
	return Sequence{Key: s.Key, Counter: s.Counter + 1}
}

func (s Sequence) String() string {
	return s.Uint256().Hex()
}

// EncodeScale implements scale codec interface.
func (s *Sequence) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, s.Key[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, s.Counter)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (s *Sequence) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, s.Key[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.Counter = field
	}
	return total, nil
}

// ParseSequence parses a hex or decimal 256-bit sequence.
func ParseSequence(s string) (Sequence, error) {
	v, err := uint256.FromHex(s)
	if err != nil {
		v, err = uint256.FromDecimal(s)
		if err != nil {
			return Sequence{}, fmt.Errorf("parse sequence %q: %w", s, err)
		}
	}
	return SequenceFromUint256(v), nil
}
