package swap

import (
	"time"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// SpawnArguments is the immutable configuration of the sponsor.
type SpawnArguments struct {
	Owner  core.Address
	Asset  core.Address
	Oracle core.Address
	Venue  core.Address

	// MarkupBps is added to the oracle price.
	MarkupBps uint64
	// CacheTTL in seconds, the cached price is refreshed when older. Must not exceed MaxAge.
	CacheTTL uint64
	// MaxAge of an oracle quote in seconds.
	MaxAge uint64
	// MaxDeviationBps between the cached and the refreshed price.
	MaxDeviationBps uint64
	// SlippageBps tolerated on conversion.
	SlippageBps uint64
	// RefillBelow is the escrow level that triggers conversion of collected asset.
	RefillBelow uint64
}

func (a *SpawnArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	for _, addr := range []core.Address{a.Owner, a.Asset, a.Oracle, a.Venue} {
		n, err := types.EncodeAddress(enc, addr)
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, value := range []uint64{a.MarkupBps, a.CacheTTL, a.MaxAge, a.MaxDeviationBps, a.SlippageBps, a.RefillBelow} {
		n, err := scale.EncodeCompact64(enc, value)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (a *SpawnArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	for _, addr := range []*core.Address{&a.Owner, &a.Asset, &a.Oracle, &a.Venue} {
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		*addr = field
	}
	for _, value := range []*uint64{&a.MarkupBps, &a.CacheTTL, &a.MaxAge, &a.MaxDeviationBps, &a.SlippageBps, &a.RefillBelow} {
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		*value = field
	}
	return total, nil
}

// CachedPrice is the last accepted oracle price.
type CachedPrice struct {
	Price     uint64
	UpdatedAt uint64
}

func (c *CachedPrice) Time() time.Time {
	return time.Unix(int64(c.UpdatedAt), 0)
}

func (c *CachedPrice) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact64(enc, c.Price)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.UpdatedAt)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *CachedPrice) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Price = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.UpdatedAt = field
	}
	return total, nil
}

// Context is passed from validation to settlement.
type Context struct {
	Account   core.Address
	Prefunded uint64
	Price     uint64
}

func (c *Context) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, c.Account)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.Prefunded)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.Price)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Context) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Account = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Prefunded = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Price = field
	}
	return total, nil
}
