package token

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// Amount of the token.
type Amount uint64

func (a *Amount) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeCompact64(enc, uint64(*a))
}

func (a *Amount) DecodeScale(dec *scale.Decoder) (int, error) {
	value, n, err := scale.DecodeCompact64(dec)
	*a = Amount(value)
	return n, err
}

// TransferArguments are used by transfer, approve, mint and balance queries.
type TransferArguments struct {
	To     core.Address
	Amount uint64
}

func (a *TransferArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.To)
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

func (a *TransferArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.To = field
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

// TransferFromArguments move Amount from From to To using allowance of the caller.
type TransferFromArguments struct {
	From   core.Address
	To     core.Address
	Amount uint64
}

func (a *TransferFromArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.From)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := types.EncodeAddress(enc, a.To)
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

func (a *TransferFromArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.From = field
	}
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.To = field
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

// Transfer builds payload of MethodTransfer.
func Transfer(to core.Address, amount uint64) []byte {
	return core.Payload(MethodTransfer, &TransferArguments{To: to, Amount: amount})
}

// Approve builds payload of MethodApprove.
func Approve(spender core.Address, amount uint64) []byte {
	return core.Payload(MethodApprove, &TransferArguments{To: spender, Amount: amount})
}

// TransferFrom builds payload of MethodTransferFrom.
func TransferFrom(from, to core.Address, amount uint64) []byte {
	return core.Payload(MethodTransferFrom, &TransferFromArguments{From: from, To: to, Amount: amount})
}

// Mint builds payload of MethodMint.
func Mint(to core.Address, amount uint64) []byte {
	return core.Payload(MethodMint, &TransferArguments{To: to, Amount: amount})
}
