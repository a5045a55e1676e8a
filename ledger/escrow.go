// Package ledger implements the escrow ledger and the stake registry on top of the world state.
package ledger

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/state"
)

var (
	// ErrInsufficientEscrow is returned when a prepaid balance can't cover a debit.
	ErrInsufficientEscrow = errors.New("insufficient escrow")
	// ErrZeroAmount is returned for deposits and stakes of zero.
	ErrZeroAmount = errors.New("zero amount")
)

// Escrow is the per-address prepaid balance bookkeeping.
type Escrow struct {
	state *state.StateDB
}

// NewEscrow binds escrow rules to the state.
func NewEscrow(st *state.StateDB) *Escrow {
	return &Escrow{state: st}
}

// BalanceOf returns prepaid balance of the address.
func (e *Escrow) BalanceOf(address types.Address) uint64 {
	return e.state.GetEscrow(address)
}

// Deposit moves amount of the native balance of from into the escrow of to.
func (e *Escrow) Deposit(from, to types.Address, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if err := e.state.SubBalance(from, amount); err != nil {
		return fmt.Errorf("deposit for %v: %w", to, err)
	}
	return e.Credit(to, amount)
}

// WithdrawTo moves amount from the escrow of owner into the native balance of dest.
// The caller is responsible for authorizing owner.
func (e *Escrow) WithdrawTo(owner, dest types.Address, amount uint64) error {
	if err := e.Debit(owner, amount); err != nil {
		return err
	}
	return e.state.AddBalance(dest, amount)
}

// Debit decreases escrow, it never becomes negative.
func (e *Escrow) Debit(address types.Address, amount uint64) error {
	balance := e.state.GetEscrow(address)
	if balance < amount {
		return fmt.Errorf("%w: %v holds %d, needs %d", ErrInsufficientEscrow, address, balance, amount)
	}
	e.state.SetEscrow(address, balance-amount)
	return nil
}

// Credit increases escrow.
func (e *Escrow) Credit(address types.Address, amount uint64) error {
	sum, carry := bits.Add64(e.state.GetEscrow(address), amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: escrow of %v", state.ErrOverflow, address)
	}
	e.state.SetEscrow(address, sum)
	return nil
}
