package entrypoint

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// engineHandler serves calls that templates make to the engine address.
type engineHandler struct {
	env *core.Env
}

var _ core.EngineHandler = (*engineHandler)(nil)

func (h *engineHandler) ExecEngine(host core.Host, caller core.Address, value uint64, payload []byte) ([]byte, error) {
	method, args, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	if value > 0 && method != core.MethodDeposit && method != core.MethodAddStake {
		return nil, fmt.Errorf("%w: method %d doesn't accept value", core.ErrMalformed, method)
	}
	switch method {
	case core.MethodDeposit:
		var deposit core.DepositArgs
		if err := core.DecodeArgs(args, &deposit); err != nil {
			return nil, err
		}
		if err := host.Consume(h.env.Schedule.Transfer); err != nil {
			return nil, err
		}
		if err := h.env.Escrow.Deposit(caller, deposit.To, value); err != nil {
			return nil, err
		}
	case core.MethodWithdrawTo:
		var withdraw core.WithdrawArgs
		if err := core.DecodeArgs(args, &withdraw); err != nil {
			return nil, err
		}
		if err := host.Consume(h.env.Schedule.Transfer); err != nil {
			return nil, err
		}
		if err := h.env.Escrow.WithdrawTo(caller, withdraw.Dest, withdraw.Amount); err != nil {
			return nil, err
		}
	case core.MethodAddStake:
		var stake core.AddStakeArgs
		if err := core.DecodeArgs(args, &stake); err != nil {
			return nil, err
		}
		if err := host.Consume(h.env.Schedule.Update); err != nil {
			return nil, err
		}
		delay := time.Duration(stake.UnstakeDelay) * time.Second
		if err := h.env.Stakes.AddStake(caller, delay, value); err != nil {
			return nil, err
		}
	case core.MethodUnlockStake:
		if err := host.Consume(h.env.Schedule.Update); err != nil {
			return nil, err
		}
		if err := h.env.Stakes.UnlockStake(caller, h.env.Now); err != nil {
			return nil, err
		}
	case core.MethodWithdrawStake:
		var withdraw core.WithdrawStakeArgs
		if err := core.DecodeArgs(args, &withdraw); err != nil {
			return nil, err
		}
		if err := host.Consume(h.env.Schedule.Transfer); err != nil {
			return nil, err
		}
		amount, err := h.env.Stakes.WithdrawStake(caller, withdraw.Dest, h.env.Now)
		if err != nil {
			return nil, err
		}
		h.env.Logger.Debug("stake withdrawn",
			zap.Stringer("owner", caller),
			zap.Stringer("dest", withdraw.Dest),
			zap.Uint64("amount", amount),
		)
	case core.MethodRun:
		return nil, core.ErrReentrancy
	default:
		return nil, fmt.Errorf("%w: unknown engine method %d", core.ErrMalformed, method)
	}
	return nil, nil
}
