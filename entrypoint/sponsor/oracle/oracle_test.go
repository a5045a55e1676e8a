package oracle

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

func TestFresh(t *testing.T) {
	now := time.Unix(1000, 0)
	require.NoError(t, Fresh(Quote{Price: 1, UpdatedAt: now.Add(-time.Minute)}, now, time.Minute))
	require.ErrorIs(t, Fresh(Quote{Price: 1, UpdatedAt: now.Add(-time.Minute - 1)}, now, time.Minute),
		core.ErrStaleOrDeviatedPrice)
	require.ErrorIs(t, Fresh(Quote{UpdatedAt: now}, now, time.Minute), core.ErrStaleOrDeviatedPrice)
}

func TestWithinDeviation(t *testing.T) {
	require.NoError(t, WithinDeviation(0, 100, 0))
	require.NoError(t, WithinDeviation(1000, 1100, 1000))
	require.NoError(t, WithinDeviation(1000, 900, 1000))
	require.ErrorIs(t, WithinDeviation(1000, 1101, 1000), core.ErrStaleOrDeviatedPrice)
	require.ErrorIs(t, WithinDeviation(1000, 899, 1000), core.ErrStaleOrDeviatedPrice)
}

func TestConversions(t *testing.T) {
	asset, err := ToAsset(3, 2*Denominator)
	require.NoError(t, err)
	require.EqualValues(t, 6, asset)

	// rounds up in favor of the sponsor
	asset, err = ToAsset(1, Denominator/3)
	require.NoError(t, err)
	require.EqualValues(t, 1, asset)

	native, err := ToNative(7, 2*Denominator)
	require.NoError(t, err)
	require.EqualValues(t, 3, native)

	_, err = ToNative(1, 0)
	require.ErrorIs(t, err, core.ErrStaleOrDeviatedPrice)

	_, err = ToAsset(math.MaxUint64, 2*Denominator)
	require.ErrorIs(t, err, core.ErrMalformed)

	marked, err := Markup(Denominator, 500)
	require.NoError(t, err)
	require.EqualValues(t, Denominator*105/100, marked)

	require.EqualValues(t, 99, MinOut(100, 100))
	require.EqualValues(t, 0, MinOut(100, BasisPoints))
}
