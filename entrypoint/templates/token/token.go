// Package token implements a fungible asset with balances and allowances held in storage.
package token

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
)

const (
	MethodTransfer uint8 = iota
	MethodApprove
	MethodTransferFrom
	MethodMint
	MethodBalanceOf
	MethodAllowance
)

// TemplateAddress is an address of the token template.
var TemplateAddress = types.TemplateAddress(19)

var _ core.Handler = (*handler)(nil)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load token from its state.
func (*handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Token{Minter: args.Minter}, nil
}

// SpawnArguments is the immutable state of the token.
type SpawnArguments struct {
	Minter core.Address
}

func (a *SpawnArguments) EncodeScale(enc *scale.Encoder) (int, error) {
	return types.EncodeAddress(enc, a.Minter)
}

func (a *SpawnArguments) DecodeScale(dec *scale.Decoder) (int, error) {
	minter, n, err := types.DecodeAddress(dec)
	a.Minter = minter
	return n, err
}

// Token with a single minter.
type Token struct {
	Minter core.Address
}

func balanceKey(owner core.Address) core.Hash32 {
	return core.StorageKey([]byte("balance"), owner[:])
}

func allowanceKey(owner, spender core.Address) core.Hash32 {
	return core.StorageKey([]byte("allowance"), owner[:], spender[:])
}

// BalanceOf reads the balance of owner in the token instance.
func BalanceOf(host core.Host, token, owner core.Address) (uint64, error) {
	return readUint64(host, token, balanceKey(owner))
}

// Allowance reads amount that spender may transfer from owner.
func Allowance(host core.Host, token, owner, spender core.Address) (uint64, error) {
	return readUint64(host, token, allowanceKey(owner, spender))
}

func readUint64(host core.Host, token core.Address, key core.Hash32) (uint64, error) {
	raw, err := host.Read(token, key)
	if err != nil {
		return 0, err
	}
	var value Amount
	if len(raw) > 0 {
		if err := codec.Decode(raw, &value); err != nil {
			return 0, fmt.Errorf("%w: %w", core.ErrInternal, err)
		}
	}
	return uint64(value), nil
}

// Exec dispatches token methods on behalf of the caller.
func (t *Token) Exec(host core.Host, payload []byte) ([]byte, error) {
	method, raw, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	caller := host.Caller()
	switch method {
	case MethodTransfer:
		var args TransferArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, t.move(host, caller, args.To, args.Amount)
	case MethodApprove:
		var args TransferArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, t.set(host, allowanceKey(caller, args.To), args.Amount)
	case MethodTransferFrom:
		var args TransferFromArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		allowance, err := t.get(host, allowanceKey(args.From, caller))
		if err != nil {
			return nil, err
		}
		if allowance < args.Amount {
			return nil, fmt.Errorf("%w: allowance %d of %v below %d",
				core.ErrUnauthorized, allowance, caller, args.Amount)
		}
		if err := t.set(host, allowanceKey(args.From, caller), allowance-args.Amount); err != nil {
			return nil, err
		}
		return nil, t.move(host, args.From, args.To, args.Amount)
	case MethodMint:
		if caller != t.Minter {
			return nil, fmt.Errorf("%w: %v is not a minter", core.ErrUnauthorized, caller)
		}
		var args TransferArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		balance, err := t.get(host, balanceKey(args.To))
		if err != nil {
			return nil, err
		}
		if balance+args.Amount < balance {
			return nil, fmt.Errorf("%w: balance of %v overflows", core.ErrMalformed, args.To)
		}
		return nil, t.set(host, balanceKey(args.To), balance+args.Amount)
	case MethodBalanceOf:
		var args TransferArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		balance, err := t.get(host, balanceKey(args.To))
		if err != nil {
			return nil, err
		}
		return codec.MustEncode(ptr(Amount(balance))), nil
	case MethodAllowance:
		var args TransferFromArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		allowance, err := t.get(host, allowanceKey(args.From, args.To))
		if err != nil {
			return nil, err
		}
		return codec.MustEncode(ptr(Amount(allowance))), nil
	}
	return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
}

func ptr[T any](v T) *T {
	return &v
}

func (t *Token) move(host core.Host, from, to core.Address, amount uint64) error {
	balance, err := t.get(host, balanceKey(from))
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("%w: token balance of %v is %d, need %d", core.ErrInsufficientFunds, from, balance, amount)
	}
	if err := t.set(host, balanceKey(from), balance-amount); err != nil {
		return err
	}
	received, err := t.get(host, balanceKey(to))
	if err != nil {
		return err
	}
	if received+amount < received {
		return fmt.Errorf("%w: balance of %v overflows", core.ErrMalformed, to)
	}
	return t.set(host, balanceKey(to), received+amount)
}

func (t *Token) get(host core.Host, key core.Hash32) (uint64, error) {
	return readUint64(host, host.Self(), key)
}

func (t *Token) set(host core.Host, key core.Hash32, value uint64) error {
	if value == 0 {
		return host.Set(key, nil)
	}
	return host.Set(key, codec.MustEncode(ptr(Amount(value))))
}
