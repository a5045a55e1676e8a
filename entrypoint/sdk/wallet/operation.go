// Package wallet builds operations of the ed25519 wallet.
package wallet

import (
	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sdk"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/wallet"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// State is the immutable state of a wallet controlled by pub.
func State(pub signing.PublicKey) []byte {
	return codec.MustEncode(&wallet.SpawnArguments{PublicKey: pub})
}

// Execute builds operation that runs calls on behalf of sender and signs it with signer.
func Execute(signer *signing.EdSigner, sender core.Address, seq core.Sequence, calls []core.Call, opts ...sdk.Opt) *core.Operation {
	options := sdk.Apply(opts...)
	op := sdk.Unsigned(options, sender, seq, sdk.Execute(calls...), signing.SignatureSize)
	hash := sdk.Hash(options, op)
	sig := signer.Sign(signing.OPERATION, hash[:])
	op.Authorization = sig[:]
	return op
}
