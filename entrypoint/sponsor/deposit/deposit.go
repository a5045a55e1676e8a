// Package deposit implements the sponsor that is paid in assets deposited by accounts.
//
// Accounts (or anyone on their behalf) deposit an accepted asset into the sponsor.
// A deposit is locked by default and only a locked deposit pays for operations.
// An unlocked deposit can be withdrawn. When validating an operation the sponsor
// converts the max cost into the asset using the price source bound to the asset,
// pulls any shortfall from the allowance granted by the account, and reserves that
// amount until the operation is settled.
package deposit

import (
	"fmt"
	"time"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/oracle"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
)

const (
	MethodAddAsset uint8 = iota
	MethodAddDepositFor
	MethodLock
	MethodUnlock
	MethodWithdrawTo
	MethodDepositOf
)

// TemplateAddress is an address of the deposit sponsor template.
var TemplateAddress = types.TemplateAddress(49)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Sponsor = (*Sponsor)(nil)
)

// Register template. Assets may only be bound to price sources from sources.
func Register(r *registry.Registry, sources oracle.Sources) {
	r.Register(TemplateAddress, &handler{sources: sources})
}

type handler struct {
	sources oracle.Sources
}

// Load sponsor from its state.
func (h *handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Sponsor{
		Owner:   args.Owner,
		MaxAge:  time.Duration(args.MaxAge) * time.Second,
		sources: h.sources,
	}, nil
}

// Sponsor accepts deposits in several assets.
type Sponsor struct {
	Owner  core.Address
	MaxAge time.Duration

	sources oracle.Sources
}

func oracleKey(asset core.Address) core.Hash32 {
	return core.StorageKey([]byte("oracle"), asset[:])
}

func depositKey(asset, account core.Address) core.Hash32 {
	return core.StorageKey([]byte("deposit"), asset[:], account[:])
}

func unlockedKey(account core.Address) core.Hash32 {
	return core.StorageKey([]byte("unlocked"), account[:])
}

func (s *Sponsor) source(host core.Host, asset core.Address) (oracle.PriceSource, core.Address, error) {
	raw, err := host.Get(oracleKey(asset))
	if err != nil {
		return nil, core.Address{}, err
	}
	if len(raw) == 0 {
		return nil, core.Address{}, fmt.Errorf("asset %v is not accepted", asset)
	}
	addr, err := types.BytesToAddress(raw)
	if err != nil {
		return nil, core.Address{}, fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	src, exist := s.sources[addr]
	if !exist {
		return nil, core.Address{}, fmt.Errorf("price source %v is not available", addr)
	}
	return src, addr, nil
}

func (s *Sponsor) unlocked(host core.Host, account core.Address) (bool, error) {
	flag, err := core.GetUint64(host, unlockedKey(account))
	return flag != 0, err
}

func (s *Sponsor) addDeposit(host core.Host, asset, account core.Address, amount uint64) error {
	balance, err := core.GetUint64(host, depositKey(asset, account))
	if err != nil {
		return err
	}
	if balance+amount < balance {
		return fmt.Errorf("%w: deposit of %v overflows", core.ErrMalformed, account)
	}
	return core.SetUint64(host, depositKey(asset, account), balance+amount)
}

// ValidateSponsorship reserves the asset equivalent of maxCost from the deposit of the sender.
// Sponsor data is the address of the asset.
func (s *Sponsor) ValidateSponsorship(host core.Host, op *core.Operation, _ core.Hash32, maxCost uint64) ([]byte, core.ValidationData, error) {
	asset, err := types.BytesToAddress(sponsor.Data(op))
	if err != nil {
		return nil, core.ValidationData{}, fmt.Errorf("%w: %w", core.ErrMalformed, err)
	}
	src, _, err := s.source(host, asset)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	unlocked, err := s.unlocked(host, op.Sender)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	if unlocked {
		return nil, core.ValidationData{}, fmt.Errorf("deposit of %v is unlocked", op.Sender)
	}
	quote, err := src.Quote(asset)
	if err != nil {
		return nil, core.ValidationData{}, fmt.Errorf("%w: %w", core.ErrStaleOrDeviatedPrice, err)
	}
	if err := oracle.Fresh(quote, host.Now(), s.MaxAge); err != nil {
		return nil, core.ValidationData{}, err
	}
	required, err := oracle.ToAsset(maxCost, quote.Price)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	balance, err := core.GetUint64(host, depositKey(asset, op.Sender))
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	if balance < required {
		shortfall := required - balance
		if _, err := host.Call(asset, 0, token.TransferFrom(op.Sender, host.Self(), shortfall)); err != nil {
			return nil, core.ValidationData{}, fmt.Errorf("pull %d of %v from %v: %w", shortfall, asset, op.Sender, err)
		}
		balance = required
	}
	if err := core.SetUint64(host, depositKey(asset, op.Sender), balance-required); err != nil {
		return nil, core.ValidationData{}, err
	}
	context := codec.MustEncode(&Context{Account: op.Sender, Asset: asset, Locked: required, Price: quote.Price})
	return context, core.Valid(), nil
}

// Settle returns the unused part of the reservation to the account and credits the owner.
func (s *Sponsor) Settle(host core.Host, _ core.SettleMode, raw []byte, actualCost uint64) error {
	var ctx Context
	if err := codec.Decode(raw, &ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	charge, err := oracle.ToAsset(actualCost, ctx.Price)
	if err != nil {
		return err
	}
	charge = min(charge, ctx.Locked)
	if err := s.addDeposit(host, ctx.Asset, ctx.Account, ctx.Locked-charge); err != nil {
		return err
	}
	return s.addDeposit(host, ctx.Asset, s.Owner, charge)
}

// Exec dispatches deposit management methods.
func (s *Sponsor) Exec(host core.Host, payload []byte) ([]byte, error) {
	method, raw, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	if sponsor.IsOwnerMethod(method) {
		return sponsor.ExecOwner(host, s.Owner, method, raw)
	}
	caller := host.Caller()
	switch method {
	case MethodAddAsset:
		if caller != s.Owner {
			return nil, fmt.Errorf("%w: %v is not the owner", core.ErrUnauthorized, caller)
		}
		var args AssetArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if _, exist := s.sources[args.Oracle]; !exist {
			return nil, fmt.Errorf("%w: unknown price source %v", core.ErrMalformed, args.Oracle)
		}
		return nil, host.Set(oracleKey(args.Asset), args.Oracle.Bytes())
	case MethodAddDepositFor:
		var args DepositArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if _, _, err := s.source(host, args.Asset); err != nil {
			return nil, err
		}
		if _, err := host.Call(args.Asset, 0, token.TransferFrom(caller, host.Self(), args.Amount)); err != nil {
			return nil, err
		}
		return nil, s.addDeposit(host, args.Asset, args.Account, args.Amount)
	case MethodLock:
		return nil, core.SetUint64(host, unlockedKey(caller), 0)
	case MethodUnlock:
		return nil, core.SetUint64(host, unlockedKey(caller), 1)
	case MethodWithdrawTo:
		var args DepositArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		unlocked, err := s.unlocked(host, caller)
		if err != nil {
			return nil, err
		}
		if !unlocked {
			return nil, fmt.Errorf("%w: deposit of %v is locked", core.ErrUnauthorized, caller)
		}
		balance, err := core.GetUint64(host, depositKey(args.Asset, caller))
		if err != nil {
			return nil, err
		}
		if balance < args.Amount {
			return nil, fmt.Errorf("%w: deposit %d below %d", core.ErrInsufficientFunds, balance, args.Amount)
		}
		if err := core.SetUint64(host, depositKey(args.Asset, caller), balance-args.Amount); err != nil {
			return nil, err
		}
		_, err = host.Call(args.Asset, 0, token.Transfer(args.Account, args.Amount))
		return nil, err
	case MethodDepositOf:
		var args DepositArguments
		if err := core.DecodeArgs(raw, &args); err != nil {
			return nil, err
		}
		balance, err := core.GetUint64(host, depositKey(args.Asset, args.Account))
		if err != nil {
			return nil, err
		}
		return codec.MustEncode(ptr(token.Amount(balance))), nil
	}
	return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
}

func ptr[T any](v T) *T {
	return &v
}
