package ledger

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/state"
)

func TestEscrow(t *testing.T) {
	st := state.NewFromDB(sql.InMemory())
	escrow := NewEscrow(st)
	owner, other, dest := types.Address{1}, types.Address{2}, types.Address{3}
	require.NoError(t, st.AddBalance(owner, 100))

	require.ErrorIs(t, escrow.Deposit(owner, other, 0), ErrZeroAmount)
	require.ErrorIs(t, escrow.Deposit(owner, other, 101), state.ErrInsufficientFunds)
	require.NoError(t, escrow.Deposit(owner, other, 60))
	require.EqualValues(t, 40, st.GetBalance(owner))
	require.EqualValues(t, 60, escrow.BalanceOf(other))

	require.ErrorIs(t, escrow.WithdrawTo(other, dest, 61), ErrInsufficientEscrow)
	require.NoError(t, escrow.WithdrawTo(other, dest, 25))
	require.EqualValues(t, 35, escrow.BalanceOf(other))
	require.EqualValues(t, 25, st.GetBalance(dest))

	require.NoError(t, escrow.Debit(other, 35))
	require.Zero(t, escrow.BalanceOf(other))
	require.ErrorIs(t, escrow.Debit(other, 1), ErrInsufficientEscrow)
	require.NoError(t, escrow.Credit(other, 5))
	require.ErrorIs(t, escrow.Credit(other, ^uint64(0)), state.ErrOverflow)
	require.EqualValues(t, 5, escrow.BalanceOf(other))
}

func TestStakeLifecycle(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	st := state.NewFromDB(sql.InMemory())
	stakes := NewStakes(st)
	sponsor, dest := types.Address{1}, types.Address{2}
	require.NoError(t, st.AddBalance(sponsor, 100))

	require.ErrorIs(t, stakes.UnlockStake(sponsor, clock.Now()), ErrNotStaked)
	require.Error(t, stakes.AddStake(sponsor, 0, 10))
	require.ErrorIs(t, stakes.AddStake(sponsor, time.Hour, 0), ErrZeroAmount)
	require.NoError(t, stakes.AddStake(sponsor, time.Hour, 30))
	require.True(t, stakes.IsStaked(sponsor, 30, time.Hour))
	require.False(t, stakes.IsStaked(sponsor, 31, time.Hour))
	require.False(t, stakes.IsStaked(sponsor, 30, 2*time.Hour))
	require.ErrorIs(t, stakes.AddStake(sponsor, time.Minute, 10), ErrDelayDecreased)
	require.NoError(t, stakes.AddStake(sponsor, time.Hour, 10))
	require.EqualValues(t, 40, stakes.Get(sponsor).Amount)
	require.EqualValues(t, 60, st.GetBalance(sponsor))

	_, err := stakes.WithdrawStake(sponsor, dest, clock.Now())
	require.ErrorIs(t, err, ErrStakeLocked)

	require.NoError(t, stakes.UnlockStake(sponsor, clock.Now()))
	require.False(t, stakes.IsStaked(sponsor, 1, 0))
	require.ErrorIs(t, stakes.UnlockStake(sponsor, clock.Now()), ErrAlreadyUnlocking)

	clock.Advance(time.Hour - time.Second)
	_, err = stakes.WithdrawStake(sponsor, dest, clock.Now())
	require.ErrorIs(t, err, ErrStakeNotReady)

	clock.Advance(time.Second)
	amount, err := stakes.WithdrawStake(sponsor, dest, clock.Now())
	require.NoError(t, err)
	require.EqualValues(t, 40, amount)
	require.EqualValues(t, 40, st.GetBalance(dest))
	require.Equal(t, types.Stake{}, stakes.Get(sponsor))
	_, err = stakes.WithdrawStake(sponsor, dest, clock.Now())
	require.ErrorIs(t, err, ErrNotStaked)
}

func TestAddStakeRelocks(t *testing.T) {
	now := time.Unix(1000, 0)
	st := state.NewFromDB(sql.InMemory())
	stakes := NewStakes(st)
	sponsor := types.Address{1}
	require.NoError(t, st.AddBalance(sponsor, 100))
	require.NoError(t, stakes.AddStake(sponsor, time.Hour, 10))
	require.NoError(t, stakes.UnlockStake(sponsor, now))
	require.NoError(t, stakes.AddStake(sponsor, time.Hour, 1))
	require.True(t, stakes.IsStaked(sponsor, 11, time.Hour))
}
