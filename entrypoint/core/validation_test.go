package core

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestValidationDataPack(t *testing.T) {
	for _, v := range []ValidationData{
		Valid(),
		Failed(),
		Window(10, 20),
		{Marker: Address{0xee, 1}, ValidAfter: maxUint48, ValidUntil: 1},
	} {
		require.Equal(t, v, UnpackValidationData(v.Pack()))
	}

	packed := Window(1, 2).Pack()
	expected := new(uint256.Int).Lsh(uint256.NewInt(2), 160)
	expected.Or(expected, new(uint256.Int).Lsh(uint256.NewInt(1), 208))
	require.Equal(t, expected, packed)
	require.Equal(t, uint256.NewInt(1), Failed().Pack())
}

func TestValidationDataMarker(t *testing.T) {
	require.False(t, Valid().SignatureFailed())
	require.False(t, Valid().External())
	require.True(t, Failed().SignatureFailed())
	require.False(t, Failed().External())
	external := ValidationData{Marker: Address{0xee}}
	require.True(t, external.External())
	require.False(t, external.SignatureFailed())
}

func TestCheckWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	for _, tc := range []struct {
		desc  string
		data  ValidationData
		valid bool
	}{
		{"unbounded", Valid(), true},
		{"inside", Window(999, 1001), true},
		{"bounds are inclusive", Window(1000, 1000), true},
		{"only after", Window(1000, 0), true},
		{"expired", Window(0, 999), false},
		{"not yet valid", Window(1001, 0), false},
		{"empty", Window(20, 10), false},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.data.CheckWindow(now)
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrValidationFailed)
			}
		})
	}
}

func TestIntersect(t *testing.T) {
	marker := Address{0xee}
	rst := Window(10, 100).Intersect(ValidationData{Marker: marker, ValidAfter: 20, ValidUntil: 0})
	require.Equal(t, ValidationData{Marker: marker, ValidAfter: 20, ValidUntil: 100}, rst)

	rst = Valid().Intersect(Window(5, 50))
	require.Equal(t, Window(5, 50), rst)

	rst = Failed().Intersect(ValidationData{Marker: marker})
	require.True(t, rst.SignatureFailed())
}
