// Package storage persists per-instance key/value storage of templates.
package storage

import (
	"fmt"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
)

// Get value stored under key of the instance, nil if missing.
func Get(db sql.Executor, address types.Address, key types.Hash32) ([]byte, error) {
	var value []byte
	_, err := db.Exec("select value from storage where address = ?1 and key = ?2;",
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindBytes(2, key.Bytes())
		}, func(stmt *sql.Statement) bool {
			value = sql.ColumnBlob(stmt, 0)
			return false
		})
	if err != nil {
		return nil, fmt.Errorf("get storage %v/%v: %w", address, key, err)
	}
	return value, nil
}

// Set value under key. Empty value deletes the key.
func Set(db sql.Executor, address types.Address, key types.Hash32, value []byte) error {
	if len(value) == 0 {
		if _, err := db.Exec("delete from storage where address = ?1 and key = ?2;",
			func(stmt *sql.Statement) {
				stmt.BindBytes(1, address.Bytes())
				stmt.BindBytes(2, key.Bytes())
			}, nil); err != nil {
			return fmt.Errorf("delete storage %v/%v: %w", address, key, err)
		}
		return nil
	}
	if _, err := db.Exec(`insert into storage (address, key, value) values (?1, ?2, ?3)
		on conflict (address, key) do update set value = ?3;`,
		func(stmt *sql.Statement) {
			stmt.BindBytes(1, address.Bytes())
			stmt.BindBytes(2, key.Bytes())
			stmt.BindBytes(3, value)
		}, nil); err != nil {
		return fmt.Errorf("set storage %v/%v: %w", address, key, err)
	}
	return nil
}
