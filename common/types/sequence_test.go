package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSequenceUint256(t *testing.T) {
	var key SequenceKey
	key[len(key)-1] = 7
	seq := NewSequence(key, 42)

	v := seq.Uint256()
	expected := new(uint256.Int).Lsh(uint256.NewInt(7), 64)
	expected.Or(expected, uint256.NewInt(42))
	require.Equal(t, expected, v)
	require.Equal(t, seq, SequenceFromUint256(v))
}

func TestSequenceNext(t *testing.T) {
	seq := NewSequence(SequenceKey{1}, 9)
	next := seq.Next()
	require.Equal(t, seq.Key, next.Key)
	require.EqualValues(t, 10, next.Counter)
}

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence("0x10000000000000005")
	require.NoError(t, err)
	require.EqualValues(t, 5, seq.Counter)
	require.EqualValues(t, 1, seq.Key[len(seq.Key)-1])

	seq, err = ParseSequence("12")
	require.NoError(t, err)
	require.EqualValues(t, 12, seq.Counter)

	_, err = ParseSequence("zz")
	require.Error(t, err)
}
