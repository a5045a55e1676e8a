package state

import (
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/sql/accounts"
	"github.com/spacemeshos/go-entrypoint/sql/escrow"
	"github.com/spacemeshos/go-entrypoint/sql/sequences"
	"github.com/spacemeshos/go-entrypoint/sql/stakes"
	"github.com/spacemeshos/go-entrypoint/sql/storage"
)

// Loader reads the committed state.
type Loader interface {
	Account(types.Address) (types.Account, error)
	Storage(types.Address, types.Hash32) ([]byte, error)
	Sequence(types.Address, types.SequenceKey) (uint64, error)
	Escrow(types.Address) (uint64, error)
	Stake(types.Address) (types.Stake, error)
}

// DBLoader reads committed state from the database.
type DBLoader struct {
	sql.Executor
}

func (l DBLoader) Account(address types.Address) (types.Account, error) {
	return accounts.Get(l.Executor, address)
}

func (l DBLoader) Storage(address types.Address, key types.Hash32) ([]byte, error) {
	return storage.Get(l.Executor, address, key)
}

func (l DBLoader) Sequence(address types.Address, key types.SequenceKey) (uint64, error) {
	return sequences.Next(l.Executor, address, key)
}

func (l DBLoader) Escrow(address types.Address) (uint64, error) {
	return escrow.Balance(l.Executor, address)
}

func (l DBLoader) Stake(address types.Address) (types.Stake, error) {
	return stakes.Get(l.Executor, address)
}
