package ledger

import (
	"errors"
	"fmt"
	"math/bits"
	"time"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/state"
)

var (
	// ErrNotStaked is returned when unlocking or withdrawing without a stake.
	ErrNotStaked = errors.New("no stake")
	// ErrDelayDecreased is returned when a new stake shortens the unstake delay.
	ErrDelayDecreased = errors.New("unstake delay can't be decreased")
	// ErrAlreadyUnlocking is returned when unlock was already requested.
	ErrAlreadyUnlocking = errors.New("stake already unlocking")
	// ErrStakeLocked is returned when withdrawing a stake that wasn't unlocked.
	ErrStakeLocked = errors.New("stake is locked")
	// ErrStakeNotReady is returned when withdrawing before the unstake delay elapsed.
	ErrStakeNotReady = errors.New("stake withdrawal is not due")
)

// Stakes is the registry of bonded collateral.
type Stakes struct {
	state *state.StateDB
}

// NewStakes binds stake rules to the state.
func NewStakes(st *state.StateDB) *Stakes {
	return &Stakes{state: st}
}

// Get returns stake of the address.
func (s *Stakes) Get(address types.Address) types.Stake {
	return s.state.GetStake(address)
}

// AddStake bonds amount from the native balance of owner. The stake is locked
// again even if unlock was requested before.
func (s *Stakes) AddStake(owner types.Address, delay time.Duration, amount uint64) error {
	stake := s.state.GetStake(owner)
	if delay <= 0 {
		return fmt.Errorf("unstake delay must be positive, got %v", delay)
	}
	if delay < stake.UnstakeDelay {
		return fmt.Errorf("%w: %v < %v", ErrDelayDecreased, delay, stake.UnstakeDelay)
	}
	total, carry := bits.Add64(stake.Amount, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: stake of %v", state.ErrOverflow, owner)
	}
	if total == 0 {
		return ErrZeroAmount
	}
	if err := s.state.SubBalance(owner, amount); err != nil {
		return fmt.Errorf("add stake: %w", err)
	}
	s.state.SetStake(owner, types.Stake{Amount: total, UnstakeDelay: delay})
	return nil
}

// UnlockStake starts the unstake delay. The stake stops being active immediately.
func (s *Stakes) UnlockStake(owner types.Address, now time.Time) error {
	stake := s.state.GetStake(owner)
	if stake.Amount == 0 {
		return ErrNotStaked
	}
	if !stake.WithdrawReady.IsZero() {
		return ErrAlreadyUnlocking
	}
	stake.WithdrawReady = now.Add(stake.UnstakeDelay)
	s.state.SetStake(owner, stake)
	return nil
}

// WithdrawStake moves the whole unlocked stake of owner into native balance of dest.
func (s *Stakes) WithdrawStake(owner, dest types.Address, now time.Time) (uint64, error) {
	stake := s.state.GetStake(owner)
	switch {
	case stake.Amount == 0:
		return 0, ErrNotStaked
	case stake.WithdrawReady.IsZero():
		return 0, ErrStakeLocked
	case now.Before(stake.WithdrawReady):
		return 0, fmt.Errorf("%w: ready at %v", ErrStakeNotReady, stake.WithdrawReady)
	}
	s.state.SetStake(owner, types.Stake{})
	if err := s.state.AddBalance(dest, stake.Amount); err != nil {
		return 0, err
	}
	return stake.Amount, nil
}

// IsStaked is true if the address holds an active stake of at least amount
// with at least the given unstake delay.
func (s *Stakes) IsStaked(address types.Address, amount uint64, delay time.Duration) bool {
	stake := s.state.GetStake(address)
	return stake.Active() && stake.Amount >= amount && stake.UnstakeDelay >= delay
}
