package entrypoint

import (
	"context"
	"fmt"
	"time"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/factory"
	"github.com/spacemeshos/go-entrypoint/sql/batches"
)

// Deposit moves amount of native balance of from into escrow of to.
func (e *Engine) Deposit(ctx context.Context, from, to core.Address, amount uint64) error {
	return e.update(ctx, func(env *core.Env) error {
		return env.Escrow.Deposit(from, to, amount)
	})
}

// BalanceOf returns escrow balance of the address.
func (e *Engine) BalanceOf(address core.Address) (uint64, error) {
	var balance uint64
	err := e.view(func(env *core.Env) error {
		balance = env.Escrow.BalanceOf(address)
		return nil
	})
	return balance, err
}

// Balance returns native balance of the address.
func (e *Engine) Balance(address core.Address) (uint64, error) {
	var balance uint64
	err := e.view(func(env *core.Env) error {
		balance = env.State.GetBalance(address)
		return nil
	})
	return balance, err
}

// Account returns the persisted account.
func (e *Engine) Account(address core.Address) (types.Account, error) {
	var account types.Account
	err := e.view(func(env *core.Env) error {
		account = env.State.GetAccount(address)
		return nil
	})
	return account, err
}

// NextSequence returns the counter expected by the default sequence policy.
func (e *Engine) NextSequence(address core.Address, key types.SequenceKey) (uint64, error) {
	var next uint64
	err := e.view(func(env *core.Env) error {
		next = env.State.GetSequence(address, key)
		return nil
	})
	return next, err
}

// WithdrawTo moves amount from escrow of owner to native balance of dest.
// The caller authenticates owner.
func (e *Engine) WithdrawTo(ctx context.Context, owner, dest core.Address, amount uint64) error {
	return e.update(ctx, func(env *core.Env) error {
		return env.Escrow.WithdrawTo(owner, dest, amount)
	})
}

// AddStake bonds amount of native balance of owner with the unstake delay.
func (e *Engine) AddStake(ctx context.Context, owner core.Address, delay time.Duration, amount uint64) error {
	return e.update(ctx, func(env *core.Env) error {
		return env.Stakes.AddStake(owner, delay, amount)
	})
}

// UnlockStake starts the unstake delay of owner.
func (e *Engine) UnlockStake(ctx context.Context, owner core.Address) error {
	return e.update(ctx, func(env *core.Env) error {
		return env.Stakes.UnlockStake(owner, env.Now)
	})
}

// WithdrawStake sends the unlocked stake of owner to dest once the delay elapsed.
func (e *Engine) WithdrawStake(ctx context.Context, owner, dest core.Address) (uint64, error) {
	var amount uint64
	err := e.update(ctx, func(env *core.Env) error {
		var err error
		amount, err = env.Stakes.WithdrawStake(owner, dest, env.Now)
		return err
	})
	return amount, err
}

// Stake returns stake of the address.
func (e *Engine) Stake(address core.Address) (types.Stake, error) {
	var stake types.Stake
	err := e.view(func(env *core.Env) error {
		stake = env.Stakes.Get(address)
		return nil
	})
	return stake, err
}

// ComputeAddress returns the address of an account created by the factory instance
// for owner and salt. It doesn't matter whether the account exists.
func (e *Engine) ComputeAddress(factoryAddr core.Address, owner []byte, salt core.Hash32) (core.Address, error) {
	var address core.Address
	err := e.view(func(env *core.Env) error {
		tmpl, err := env.Instances.Load(factoryAddr)
		if err != nil {
			return err
		}
		f, ok := tmpl.(*factory.Factory)
		if !ok {
			return fmt.Errorf("%w: %v is not a factory", core.ErrMalformed, factoryAddr)
		}
		address = factory.ComputeAddress(e.cfg.Address, f.Implementation, owner, salt)
		return nil
	})
	return address, err
}

// Receipt returns the last recorded outcome of the operation and the id of its batch.
func (e *Engine) Receipt(opHash core.Hash32) (int64, *batches.Receipt, error) {
	return batches.ByHash(e.db, opHash)
}
