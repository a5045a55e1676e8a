// Package stakes persists bonded sponsor collateral.
package stakes

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Get the stake of the address, zero value if missing.
func Get(db sql.Executor, address types.Address) (types.Stake, error) {
	var stake types.Stake
	_, err := db.Exec("select amount, unstake_delay, withdraw_ready from stakes where address = ?1;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
		}, func(stmt *sql.Statement) bool {
			stake.Amount = uint64(stmt.ColumnInt64(0))
			stake.UnstakeDelay = time.Duration(stmt.ColumnInt64(1))
			if ready := stmt.ColumnInt64(2); ready != 0 {
				stake.WithdrawReady = time.Unix(0, ready).UTC()
			}
			return false
		})
	if err != nil {
		return types.Stake{}, fmt.Errorf("stake %v: %w", address, err)
	}
	return stake, nil
}

// Set the stake of the address.
func Set(db sql.Executor, address types.Address, stake types.Stake) error {
	var ready int64
	if !stake.WithdrawReady.IsZero() {
		ready = stake.WithdrawReady.UnixNano()
	}
	if _, err := db.Exec(`insert into stakes (address, amount, unstake_delay, withdraw_ready)
		values (?1, ?2, ?3, ?4)
		on conflict (address) do update set amount = ?2, unstake_delay = ?3, withdraw_ready = ?4;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindInt64(2, int64(stake.Amount))
			stmt.BindInt64(3, int64(stake.UnstakeDelay))
			stmt.BindInt64(4, ready)
		}, nil); err != nil {
		return fmt.Errorf("set stake %v: %w", address, err)
	}
	return nil
}
