// Package sponsor holds the management surface shared by sponsor templates.
package sponsor

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// Management methods are numbered from MethodOwnerBase so that they never collide with
// methods of a concrete sponsor.
const (
	MethodOwnerBase uint8 = 0x80 + iota
	MethodUnlockStake
	MethodWithdrawStake
	MethodAddStake

	// MethodWithdrawEscrow moves escrow of the sponsor to the destination.
	MethodWithdrawEscrow = MethodOwnerBase
)

// AddStakeArguments lock Amount of the sponsor native balance.
type AddStakeArguments struct {
	UnstakeDelay uint64
	Amount       uint64
}

func (a *AddStakeArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, a.UnstakeDelay)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, a.Amount)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (a *AddStakeArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.UnstakeDelay = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Amount = field
	}
	return total, nil
}

// IsOwnerMethod is true for the management methods.
func IsOwnerMethod(method uint8) bool {
	return method >= MethodOwnerBase && method <= MethodAddStake
}

// ExecOwner executes management method after checking that the caller is the owner.
// Escrow and stake are kept by the engine, the sponsor calls it on its own behalf.
func ExecOwner(host core.Host, owner core.Address, method uint8, raw []byte) ([]byte, error) {
	if host.Caller() != owner {
		return nil, fmt.Errorf("%w: %v is not the owner of %v", core.ErrUnauthorized, host.Caller(), host.Self())
	}
	switch method {
	case MethodWithdrawEscrow:
		var args core.WithdrawArgs
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return host.Call(host.Engine(), 0, core.Payload(core.MethodWithdrawTo, &args))
	case MethodAddStake:
		var args AddStakeArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return host.Call(host.Engine(), args.Amount,
			core.Payload(core.MethodAddStake, &core.AddStakeArgs{UnstakeDelay: args.UnstakeDelay}))
	case MethodUnlockStake:
		return host.Call(host.Engine(), 0, core.Payload(core.MethodUnlockStake, nil))
	case MethodWithdrawStake:
		var args core.WithdrawStakeArgs
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return host.Call(host.Engine(), 0, core.Payload(core.MethodWithdrawStake, &args))
	}
	return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
}

// Data returns sponsor-defined part of the sponsorship payload.
func Data(op *core.Operation) []byte {
	_, data := op.Sponsor()
	return data
}
