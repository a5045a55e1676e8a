// Package sequences persists the next expected counter per sender queue.
package sequences

import (
	"fmt"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Next returns the next expected counter of the queue, zero if the queue was never used.
func Next(db sql.Executor, address types.Address, key types.SequenceKey) (uint64, error) {
	var counter uint64
	_, err := db.Exec("select counter from sequences where address = ?1 and key = ?2;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindBytes(2, key[:])
		}, func(stmt *sql.Statement) bool {
			counter = uint64(stmt.ColumnInt64(0))
			return false
		})
	if err != nil {
		return 0, fmt.Errorf("sequence %v: %w", address, err)
	}
	return counter, nil
}

// Set the next expected counter of the queue.
func Set(db sql.Executor, address types.Address, key types.SequenceKey, counter uint64) error {
	if _, err := db.Exec(`insert into sequences (address, key, counter) values (?1, ?2, ?3)
		on conflict (address, key) do update set counter = ?3;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindBytes(2, key[:])
			stmt.BindInt64(3, int64(counter))
		}, nil); err != nil {
		return fmt.Errorf("set sequence %v: %w", address, err)
	}
	return nil
}
