package state

import (
	"github.com/spacemeshos/go-entrypoint/common/types"
)

// stateObj is the live, cached view of one address while a batch is processed.
type stateObj struct {
	address types.Address
	account types.Account
	escrow  uint64
	stake   types.Stake

	storage   map[types.Hash32][]byte
	sequences map[types.SequenceKey]uint64
}

func newObject(account types.Account, escrow uint64, stake types.Stake) *stateObj {
	return &stateObj{
		address:   account.Address,
		account:   account,
		escrow:    escrow,
		stake:     stake,
		storage:   map[types.Hash32][]byte{},
		sequences: map[types.SequenceKey]uint64{},
	}
}
