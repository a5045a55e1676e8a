package accounts

import (
	"fmt"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Has the account in the database.
func Has(db sql.Executor, address types.Address) (bool, error) {
	rows, err := db.Exec("select 1 from accounts where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
		}, nil,
	)
	if err != nil {
		return false, fmt.Errorf("has address %v: %w", address, err)
	}
	return rows > 0, nil
}

// Get account data. Missing accounts are returned empty.
func Get(db sql.Executor, address types.Address) (types.Account, error) {
	account := types.Account{Address: address}
	_, err := db.Exec("select balance, template, state from accounts where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
		}, func(stmt *sql.Statement) bool {
			account.Balance = uint64(stmt.ColumnInt64(0))
			if stmt.ColumnLen(1) > 0 {
				account.Template = &types.Address{}
				stmt.ColumnBytes(1, account.Template[:])
				account.State = sql.ColumnBlob(stmt, 2)
			}
			return false
		})
	if err != nil {
		return types.Account{}, fmt.Errorf("failed to load %v: %w", address, err)
	}
	return account, nil
}

// Update inserts or replaces the account.
func Update(db sql.Executor, account *types.Account) error {
	_, err := db.Exec(`insert into accounts (address, balance, template, state)
		values (?1, ?2, ?3, ?4)
		on conflict (address) do update set balance = ?2, template = ?3, state = ?4;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, account.Address.Bytes())
			stmt.BindInt64(2, int64(account.Balance))
			if account.Template != nil {
				stmt.BindBytes(3, account.Template.Bytes())
				stmt.BindBytes(4, account.State)
			} else {
				stmt.BindNull(3)
				stmt.BindNull(4)
			}
		}, nil)
	if err != nil {
		return fmt.Errorf("failed to update account %v: %w", account.Address, err)
	}
	return nil
}

// All returns every stored account ordered by address.
func All(db sql.Executor) ([]types.Account, error) {
	var rst []types.Account
	_, err := db.Exec("select address, balance, template, state from accounts order by address;", nil,
		func(stmt *sql.Statement) bool {
			var account types.Account
			stmt.ColumnBytes(0, account.Address[:])
			account.Balance = uint64(stmt.ColumnInt64(1))
			if stmt.ColumnLen(2) > 0 {
				account.Template = &types.Address{}
				stmt.ColumnBytes(2, account.Template[:])
				account.State = sql.ColumnBlob(stmt, 3)
			}
			rst = append(rst, account)
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("load all accounts: %w", err)
	}
	return rst, nil
}
