// Package sponsors builds sponsorship payloads for the sponsor templates.
package sponsors

import (
	"slices"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sdk"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/swap"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/verifying"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// Verifying returns sponsorship signed by the authorizer of the verifying sponsor.
func Verifying(sponsor core.Address, authorizer *signing.EthSigner, validUntil, validAfter uint64) sdk.Sponsor {
	return func(op *core.Operation, engine core.Address, chainID uint64) []byte {
		unsigned := *op
		unsigned.Sponsorship = slices.Concat(sponsor.Bytes(), verifying.Window(validUntil, validAfter))
		hash, err := verifying.SigningHash(&unsigned, engine, chainID, validUntil, validAfter)
		if err != nil {
			panic(err)
		}
		return slices.Concat(unsigned.Sponsorship, authorizer.Sign(hash))
	}
}

// Deposit returns sponsorship paid from the deposit of asset.
func Deposit(sponsor, asset core.Address) sdk.Sponsor {
	return func(*core.Operation, core.Address, uint64) []byte {
		return slices.Concat(sponsor.Bytes(), asset.Bytes())
	}
}

// Swap returns sponsorship paid in the asset of the swap sponsor.
// Zero maxPrice accepts any price.
func Swap(sponsor core.Address, maxPrice uint64) sdk.Sponsor {
	return func(*core.Operation, core.Address, uint64) []byte {
		if maxPrice == 0 {
			return sponsor.Bytes()
		}
		return slices.Concat(sponsor.Bytes(), swap.ClientCap(maxPrice))
	}
}
