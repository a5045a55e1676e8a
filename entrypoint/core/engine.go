package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
)

// DefaultEngineAddress is the well-known address of the engine.
var DefaultEngineAddress = common.HexToAddress("0x0000000000000000000000000000000000004337")

// Methods of the engine address.
const (
	MethodDeposit uint8 = iota
	MethodWithdrawTo
	MethodAddStake
	MethodUnlockStake
	MethodWithdrawStake
	MethodRun
)

// DepositArgs credit escrow of To with the value attached to the call.
type DepositArgs struct {
	To Address
}

func (a *DepositArgs) EncodeScale(enc *scale.Encoder) (int, error) {
	return types.EncodeAddress(enc, a.To)
}

func (a *DepositArgs) DecodeScale(dec *scale.Decoder) (int, error) {
	addr, n, err := types.DecodeAddress(dec)
	a.To = addr
	return n, err
}

// WithdrawArgs move Amount from escrow of the caller to native balance of Dest.
type WithdrawArgs struct {
	Dest   Address
	Amount uint64
}

func (a *WithdrawArgs) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.Dest)
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

func (a *WithdrawArgs) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Dest = field
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

// AddStakeArgs lock the value attached to the call with unstake delay in seconds.
type AddStakeArgs struct {
	UnstakeDelay uint64
}

func (a *AddStakeArgs) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeCompact64(enc, a.UnstakeDelay)
}

func (a *AddStakeArgs) DecodeScale(dec *scale.Decoder) (int, error) {
	field, n, err := scale.DecodeCompact64(dec)
	a.UnstakeDelay = field
	return n, err
}

// WithdrawStakeArgs send unlocked stake of the caller to Dest.
type WithdrawStakeArgs struct {
	Dest Address
}

func (a *WithdrawStakeArgs) EncodeScale(enc *scale.Encoder) (int, error) {
	return types.EncodeAddress(enc, a.Dest)
}

func (a *WithdrawStakeArgs) DecodeScale(dec *scale.Decoder) (int, error) {
	addr, n, err := types.DecodeAddress(dec)
	a.Dest = addr
	return n, err
}
