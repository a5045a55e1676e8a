package stakes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/sql/escrow"
	"github.com/spacemeshos/go-entrypoint/sql/sequences"
	"github.com/spacemeshos/go-entrypoint/sql/storage"
)

func TestStakes(t *testing.T) {
	db := sql.InMemory()
	address := types.Address{1}

	stake, err := Get(db, address)
	require.NoError(t, err)
	require.Equal(t, types.Stake{}, stake)

	locked := types.Stake{Amount: 10, UnstakeDelay: time.Hour}
	require.NoError(t, Set(db, address, locked))
	stake, err = Get(db, address)
	require.NoError(t, err)
	require.Equal(t, locked, stake)
	require.True(t, stake.Active())

	unlocked := locked
	unlocked.WithdrawReady = time.Unix(1000, 0).UTC()
	require.NoError(t, Set(db, address, unlocked))
	stake, err = Get(db, address)
	require.NoError(t, err)
	require.Equal(t, unlocked, stake)
	require.False(t, stake.Active())
}

func TestLedgerTables(t *testing.T) {
	db := sql.InMemory()
	address := types.Address{2}

	require.NoError(t, escrow.Set(db, address, 50))
	balance, err := escrow.Balance(db, address)
	require.NoError(t, err)
	require.EqualValues(t, 50, balance)

	key := types.SequenceKey{1}
	next, err := sequences.Next(db, address, key)
	require.NoError(t, err)
	require.Zero(t, next)
	require.NoError(t, sequences.Set(db, address, key, 3))
	next, err = sequences.Next(db, address, key)
	require.NoError(t, err)
	require.EqualValues(t, 3, next)
	next, err = sequences.Next(db, address, types.SequenceKey{})
	require.NoError(t, err)
	require.Zero(t, next)

	slot := types.Hash32{3}
	require.NoError(t, storage.Set(db, address, slot, []byte("value")))
	value, err := storage.Get(db, address, slot)
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)
	require.NoError(t, storage.Set(db, address, slot, nil))
	value, err = storage.Get(db, address, slot)
	require.NoError(t, err)
	require.Nil(t, value)
}
