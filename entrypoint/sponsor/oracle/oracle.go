// Package oracle describes the price and liquidity collaborators consumed by sponsors
// and the arithmetic guards applied to their answers.
package oracle

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

//go:generate mockgen -typed -package=mocks -destination=./mocks/mocks.go -source=./oracle.go

// Denominator of the fixed-point price.
const Denominator = 1_000_000

// BasisPoints is the denominator of markups, deviations and slippage.
const BasisPoints = 10_000

// Quote is the number of asset units worth one native unit, scaled by Denominator.
type Quote struct {
	Price     uint64
	UpdatedAt time.Time
}

// PriceSource quotes assets against the native unit.
type PriceSource interface {
	Quote(asset core.Address) (Quote, error)
}

// Liquidity converts assets into native units.
type Liquidity interface {
	// Venue is the address that receives the asset and pays native units into escrow.
	Venue() core.Address
	// Convert returns native units paid for amount of the asset.
	Convert(asset core.Address, amount uint64) (uint64, error)
}

// Sources maps oracle addresses to price sources.
type Sources map[core.Address]PriceSource

// Venues maps venue addresses to liquidity.
type Venues map[core.Address]Liquidity

// Fresh fails with ErrStaleOrDeviatedPrice if the quote is older than maxAge or has zero price.
func Fresh(quote Quote, now time.Time, maxAge time.Duration) error {
	if quote.Price == 0 {
		return fmt.Errorf("%w: zero price", core.ErrStaleOrDeviatedPrice)
	}
	if age := now.Sub(quote.UpdatedAt); age > maxAge {
		return fmt.Errorf("%w: price updated %s ago, max age %s", core.ErrStaleOrDeviatedPrice, age, maxAge)
	}
	return nil
}

// WithinDeviation fails with ErrStaleOrDeviatedPrice if next differs from prev by more than bps.
// Zero prev is accepted.
func WithinDeviation(prev, next, bps uint64) error {
	if prev == 0 {
		return nil
	}
	diff := next - prev
	if next < prev {
		diff = prev - next
	}
	allowed, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(prev), uint256.NewInt(bps), uint256.NewInt(BasisPoints))
	if !overflow && diff > allowed.Uint64() {
		return fmt.Errorf("%w: price moved from %d to %d, allowed deviation %d bps",
			core.ErrStaleOrDeviatedPrice, prev, next, bps)
	}
	return nil
}

// ToAsset converts native amount into asset units rounding up.
func ToAsset(native, price uint64) (uint64, error) {
	return mulDivUp(native, price, Denominator)
}

// ToNative converts asset amount into native units rounding down.
func ToNative(asset, price uint64) (uint64, error) {
	if price == 0 {
		return 0, fmt.Errorf("%w: zero price", core.ErrStaleOrDeviatedPrice)
	}
	rst, overflow := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(asset), uint256.NewInt(Denominator), uint256.NewInt(price))
	if overflow || !rst.IsUint64() {
		return 0, fmt.Errorf("%w: %d asset units at price %d overflow", core.ErrMalformed, asset, price)
	}
	return rst.Uint64(), nil
}

// Markup increases price by bps.
func Markup(price, bps uint64) (uint64, error) {
	return mulDivUp(price, BasisPoints+bps, BasisPoints)
}

// MinOut is the least acceptable output of conversion of expected amount with slippage bps.
func MinOut(expected, bps uint64) uint64 {
	if bps >= BasisPoints {
		return 0
	}
	rst, _ := new(uint256.Int).MulDivOverflow(
		uint256.NewInt(expected), uint256.NewInt(BasisPoints-bps), uint256.NewInt(BasisPoints))
	return rst.Uint64()
}

func mulDivUp(x, y, denominator uint64) (uint64, error) {
	d := uint256.NewInt(denominator)
	num := new(uint256.Int).Mul(uint256.NewInt(x), uint256.NewInt(y))
	rst, rem := new(uint256.Int).DivMod(num, d, new(uint256.Int))
	if !rem.IsZero() {
		rst.AddUint64(rst, 1)
	}
	if !rst.IsUint64() {
		return 0, fmt.Errorf("%w: %d * %d / %d overflows", core.ErrMalformed, x, y, denominator)
	}
	return rst.Uint64(), nil
}
