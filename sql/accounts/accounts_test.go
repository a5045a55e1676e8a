package accounts

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

func TestUpdateGet(t *testing.T) {
	db := sql.InMemory()
	address := types.Address{1, 2, 3}

	account, err := Get(db, address)
	require.NoError(t, err)
	require.Equal(t, types.Account{Address: address}, account)
	has, err := Has(db, address)
	require.NoError(t, err)
	require.False(t, has)

	template := types.TemplateAddress(1)
	require.NoError(t, Update(db, &types.Account{
		Address:  address,
		Balance:  100,
		Template: &template,
		State:    []byte{7, 7},
	}))
	account, err = Get(db, address)
	require.NoError(t, err)
	require.EqualValues(t, 100, account.Balance)
	require.Equal(t, template, *account.Template)
	require.Equal(t, []byte{7, 7}, account.State)

	require.NoError(t, Update(db, &types.Account{Address: address, Balance: 5, Template: &template, State: []byte{7, 7}}))
	account, err = Get(db, address)
	require.NoError(t, err)
	require.EqualValues(t, 5, account.Balance)

	other := types.Address{9}
	require.NoError(t, Update(db, &types.Account{Address: other, Balance: 1}))
	all, err := All(db)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, address, all[0].Address)
	require.Nil(t, all[1].Template)
}
