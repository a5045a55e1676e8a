// Package escrow persists prepaid balances held by the engine.
package escrow

import (
	"fmt"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Balance of the address, zero if missing.
func Balance(db sql.Executor, address types.Address) (uint64, error) {
	var balance uint64
	_, err := db.Exec("select balance from escrow where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
		}, func(stmt *sql.Statement) bool {
			balance = uint64(stmt.ColumnInt64(0))
			return false
		})
	if err != nil {
		return 0, fmt.Errorf("escrow %v: %w", address, err)
	}
	return balance, nil
}

// Set balance of the address.
func Set(db sql.Executor, address types.Address, balance uint64) error {
	if _, err := db.Exec(`insert into escrow (address, balance) values (?1, ?2)
		on conflict (address) do update set balance = ?2;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindInt64(2, int64(balance))
		}, nil); err != nil {
		return fmt.Errorf("set escrow %v: %w", address, err)
	}
	return nil
}
