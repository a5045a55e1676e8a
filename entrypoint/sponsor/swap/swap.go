// Package swap implements the sponsor that charges accounts in a single asset and converts
// the collected asset into native units to keep its escrow funded.
package swap

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/oracle"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
)

const (
	// MethodUpdatePrice refreshes the cached price without the deviation check. Owner only.
	MethodUpdatePrice uint8 = iota
	// MethodPrice returns the cached price.
	MethodPrice
)

// TemplateAddress is an address of the swap sponsor template.
var TemplateAddress = types.TemplateAddress(50)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Sponsor = (*Sponsor)(nil)

	priceKey = core.StorageKey([]byte("price"))
)

// Register template with price sources and liquidity venues available to instances.
func Register(r *registry.Registry, sources oracle.Sources, venues oracle.Venues) {
	r.Register(TemplateAddress, &handler{sources: sources, venues: venues})
}

type handler struct {
	sources oracle.Sources
	venues  oracle.Venues
}

// Load sponsor from its state.
func (h *handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	if args.CacheTTL > args.MaxAge {
		return nil, fmt.Errorf("%w: cache ttl %ds exceeds max quote age %ds", core.ErrInternal, args.CacheTTL, args.MaxAge)
	}
	src, exist := h.sources[args.Oracle]
	if !exist {
		return nil, fmt.Errorf("%w: price source %v is not available", core.ErrInternal, args.Oracle)
	}
	venue, exist := h.venues[args.Venue]
	if !exist {
		return nil, fmt.Errorf("%w: venue %v is not available", core.ErrInternal, args.Venue)
	}
	return &Sponsor{conf: args, source: src, venue: venue}, nil
}

// Sponsor sells compute for a single asset.
type Sponsor struct {
	conf   SpawnArguments
	source oracle.PriceSource
	venue  oracle.Liquidity
}

func (s *Sponsor) cached(host core.Host) (CachedPrice, error) {
	var cached CachedPrice
	_, err := core.GetObject(host, priceKey, &cached)
	return cached, err
}

func (s *Sponsor) refresh(host core.Host, checkDeviation bool) (CachedPrice, error) {
	cached, err := s.cached(host)
	if err != nil {
		return CachedPrice{}, err
	}
	now := host.Now()
	maxAge := time.Duration(s.conf.MaxAge) * time.Second
	ttl := min(time.Duration(s.conf.CacheTTL)*time.Second, maxAge)
	if cached.Price != 0 && now.Sub(cached.Time()) <= ttl {
		return cached, nil
	}
	if err := host.Consume(host.Schedule().Load); err != nil {
		return CachedPrice{}, err
	}
	quote, err := s.source.Quote(s.conf.Asset)
	if err != nil {
		return CachedPrice{}, fmt.Errorf("%w: %w", core.ErrStaleOrDeviatedPrice, err)
	}
	if err := oracle.Fresh(quote, now, maxAge); err != nil {
		return CachedPrice{}, err
	}
	if checkDeviation {
		if err := oracle.WithinDeviation(cached.Price, quote.Price, s.conf.MaxDeviationBps); err != nil {
			return CachedPrice{}, err
		}
	}
	updated := CachedPrice{Price: quote.Price, UpdatedAt: uint64(quote.UpdatedAt.Unix())}
	if err := core.SetObject(host, priceKey, &updated); err != nil {
		return CachedPrice{}, err
	}
	return updated, nil
}

// ClientCap encodes the highest price that the account accepts.
func ClientCap(price uint64) []byte {
	b := uint256.NewInt(price).Bytes32()
	return b[:]
}

func parseCap(data []byte) (uint64, bool, error) {
	switch len(data) {
	case 0:
		return 0, false, nil
	case 32:
		v := new(uint256.Int).SetBytes32(data)
		if !v.IsUint64() {
			return 0, false, fmt.Errorf("%w: price cap overflows", core.ErrMalformed)
		}
		return v.Uint64(), true, nil
	}
	return 0, false, fmt.Errorf("%w: sponsor data of %d bytes", core.ErrMalformed, len(data))
}

// ValidateSponsorship prefunds the asset equivalent of maxCost from the allowance of the sender.
// Sponsor data is empty or the highest price that the sender accepts.
func (s *Sponsor) ValidateSponsorship(host core.Host, op *core.Operation, _ core.Hash32, maxCost uint64) ([]byte, core.ValidationData, error) {
	limit, capped, err := parseCap(sponsor.Data(op))
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	cached, err := s.refresh(host, true)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	price, err := oracle.Markup(cached.Price, s.conf.MarkupBps)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	if capped && price > limit {
		return nil, core.ValidationData{}, fmt.Errorf("price %d above the cap %d of %v", price, limit, op.Sender)
	}
	prefund, err := oracle.ToAsset(maxCost, price)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	if _, err := host.Call(s.conf.Asset, 0, token.TransferFrom(op.Sender, host.Self(), prefund)); err != nil {
		return nil, core.ValidationData{}, fmt.Errorf("prefund %d of %v: %w", prefund, s.conf.Asset, err)
	}
	context := codec.MustEncode(&Context{Account: op.Sender, Prefunded: prefund, Price: price})
	return context, core.Valid(), nil
}

// Settle refunds the unused prefund and converts collected asset if escrow is below the refill level.
// After a failed attempt only the refund is retried.
func (s *Sponsor) Settle(host core.Host, mode core.SettleMode, raw []byte, actualCost uint64) error {
	var ctx Context
	if err := codec.Decode(raw, &ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	charge, err := oracle.ToAsset(actualCost, ctx.Price)
	if err != nil {
		return err
	}
	charge = min(charge, ctx.Prefunded)
	if refund := ctx.Prefunded - charge; refund > 0 {
		if _, err := host.Call(s.conf.Asset, 0, token.Transfer(ctx.Account, refund)); err != nil {
			return fmt.Errorf("refund %d to %v: %w", refund, ctx.Account, err)
		}
	}
	if mode == core.SettleAfterFailure {
		return nil
	}
	escrow, err := host.EscrowOf(host.Self())
	if err != nil {
		return err
	}
	if escrow >= s.conf.RefillBelow {
		return nil
	}
	return s.convert(host)
}

func (s *Sponsor) convert(host core.Host) error {
	balance, err := token.BalanceOf(host, s.conf.Asset, host.Self())
	if err != nil || balance == 0 {
		return err
	}
	cached, err := s.cached(host)
	if err != nil {
		return err
	}
	expected, err := oracle.ToNative(balance, cached.Price)
	if err != nil {
		return err
	}
	out, err := s.venue.Convert(s.conf.Asset, balance)
	if err != nil {
		return fmt.Errorf("convert %d of %v: %w", balance, s.conf.Asset, err)
	}
	if least := oracle.MinOut(expected, s.conf.SlippageBps); out < least {
		return fmt.Errorf("%w: conversion returned %d, expected at least %d",
			core.ErrStaleOrDeviatedPrice, out, least)
	}
	venue := s.venue.Venue()
	if _, err := host.Call(s.conf.Asset, 0, token.Transfer(venue, balance)); err != nil {
		return err
	}
	if err := host.Exchange(venue, out); err != nil {
		return err
	}
	host.Logger().Debug("converted collected asset",
		zap.Stringer("sponsor", host.Self()),
		zap.Uint64("asset", balance),
		zap.Uint64("native", out),
	)
	return nil
}

// Exec serves price queries and management methods of the owner.
func (s *Sponsor) Exec(host core.Host, payload []byte) ([]byte, error) {
	method, raw, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	if sponsor.IsOwnerMethod(method) {
		return sponsor.ExecOwner(host, s.conf.Owner, method, raw)
	}
	switch method {
	case MethodUpdatePrice:
		if host.Caller() != s.conf.Owner {
			return nil, fmt.Errorf("%w: %v is not the owner", core.ErrUnauthorized, host.Caller())
		}
		if err := host.Set(priceKey, nil); err != nil {
			return nil, err
		}
		cached, err := s.refresh(host, false)
		if err != nil {
			return nil, err
		}
		return codec.MustEncode(&cached), nil
	case MethodPrice:
		cached, err := s.cached(host)
		if err != nil {
			return nil, err
		}
		return codec.MustEncode(&cached), nil
	}
	return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
}
