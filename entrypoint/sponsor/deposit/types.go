package deposit

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// SpawnArguments is the immutable state of the sponsor.
type SpawnArguments struct {
	Owner core.Address
	// MaxAge of a price quote in seconds.
	MaxAge uint64
}

func (a *SpawnArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.Owner)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, a.MaxAge)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (a *SpawnArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Owner = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.MaxAge = field
	}
	return total, nil
}

// AssetArguments bind Asset to the price source registered at Oracle.
type AssetArguments struct {
	Asset  core.Address
	Oracle core.Address
}

func (a *AssetArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.Asset)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := types.EncodeAddress(enc, a.Oracle)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (a *AssetArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Asset = field
	}
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Oracle = field
	}
	return total, nil
}

// DepositArguments name the asset and the account that receives a deposit or a withdrawal.
type DepositArguments struct {
	Asset   core.Address
	Account core.Address
	Amount  uint64
}

func (a *DepositArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, a.Asset)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := types.EncodeAddress(enc, a.Account)
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

func (a *DepositArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Asset = field
	}
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Account = field
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

// Context is passed from validation to settlement.
type Context struct {
	Account core.Address
	Asset   core.Address
	Locked  uint64
	Price   uint64
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
		n, err := types.EncodeAddress(enc, c.Asset)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.Locked)
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
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Asset = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Locked = field
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
