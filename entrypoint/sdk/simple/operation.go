// Package simple builds operations of the single-owner account.
package simple

import (
	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/factory"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sdk"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// State is the immutable state of an account owned by owner.
func State(owner core.Address) []byte {
	return codec.MustEncode(&simple.SpawnArguments{Owner: owner})
}

// Deployment builds the deployment payload of an account created by the factory instance.
func Deployment(factoryAddr, owner core.Address, salt core.Hash32) []byte {
	return factory.Deployment(factoryAddr, State(owner), salt)
}

// Operation builds operation that runs call on behalf of sender and signs it with signer.
func Operation(signer *signing.EthSigner, sender core.Address, seq core.Sequence, call []byte, opts ...sdk.Opt) *core.Operation {
	options := sdk.Apply(opts...)
	op := sdk.Unsigned(options, sender, seq, call, signing.RecoverableSize)
	Sign(options, signer, op)
	return op
}

// Execute builds signed operation that runs calls.
func Execute(signer *signing.EthSigner, sender core.Address, seq core.Sequence, calls []core.Call, opts ...sdk.Opt) *core.Operation {
	return Operation(signer, sender, seq, sdk.Execute(calls...), opts...)
}

// Sign replaces authorization of the operation.
func Sign(options *sdk.Options, signer *signing.EthSigner, op *core.Operation) {
	op.Authorization = signer.Sign(sdk.Hash(options, op))
}

// AddSession builds the call payload that authorizes key within the window.
func AddSession(key core.Address, validAfter, validUntil uint64) []byte {
	return core.Payload(simple.MethodAddSession, &simple.Session{
		Key:        key,
		ValidAfter: validAfter,
		ValidUntil: validUntil,
	})
}

// RemoveSession builds the call payload that revokes key.
func RemoveSession(key core.Address) []byte {
	return core.Payload(simple.MethodRemoveSession, &simple.RemoveSessionArguments{Key: key})
}
