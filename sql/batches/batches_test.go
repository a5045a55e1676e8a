package batches

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

func TestAddAndQuery(t *testing.T) {
	db := sql.InMemory()
	batch := &Batch{
		Beneficiary: types.Address{1},
		Collected:   22,
		Root:        types.Hash32{2},
		Timestamp:   time.Unix(100, 0).UTC(),
	}
	receipts := []Receipt{
		{Index: 0, OpHash: types.Hash32{3}, Sender: types.Address{4}, Status: 0, Fee: 22, Used: 22},
		{Index: 1, OpHash: types.Hash32{5}, Sender: types.Address{6}, Status: 2, Reason: "validation failed"},
	}
	id, err := Add(db, batch, receipts)
	require.NoError(t, err)
	require.Equal(t, id, batch.ID)

	got, err := Get(db, id)
	require.NoError(t, err)
	require.Equal(t, batch, got)

	stored, err := Receipts(db, id)
	require.NoError(t, err)
	require.Equal(t, receipts, stored)

	inBatch, receipt, err := ByHash(db, types.Hash32{5})
	require.NoError(t, err)
	require.Equal(t, id, inBatch)
	require.Equal(t, receipts[1], *receipt)

	_, _, err = ByHash(db, types.Hash32{9})
	require.ErrorIs(t, err, sql.ErrNotFound)
	_, err = Get(db, id+1)
	require.ErrorIs(t, err, sql.ErrNotFound)
}
