// Package multisig builds operations of the k-of-n account.
package multisig

import (
	"sort"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sdk"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/multisig"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// State is the immutable state of an account that requires k signatures out of pubs.
func State(k uint8, pubs ...signing.PublicKey) []byte {
	return codec.MustEncode(&multisig.MultiSig{Required: k, PublicKeys: pubs})
}

// Aggregator is a signature accumulator.
type Aggregator struct {
	op    *core.Operation
	hash  core.Hash32
	parts map[uint8]multisig.Part
}

// Execute returns accumulator for operation that runs calls on behalf of sender.
// k is the number of signatures that will be attached.
func Execute(k uint8, sender core.Address, seq core.Sequence, calls []core.Call, opts ...sdk.Opt) *Aggregator {
	options := sdk.Apply(opts...)
	sigs := make(multisig.Signatures, k)
	op := sdk.Unsigned(options, sender, seq, sdk.Execute(calls...), len(codec.MustEncode(&sigs)))
	return &Aggregator{op: op, hash: sdk.Hash(options, op), parts: map[uint8]multisig.Part{}}
}

// Sign adds signature of the key with reference ref.
func (a *Aggregator) Sign(ref uint8, signer *signing.EdSigner) *Aggregator {
	a.Add(multisig.Part{Ref: ref, Sig: signer.Sign(signing.OPERATION, a.hash[:])})
	return a
}

// Add signature parts to the accumulator.
func (a *Aggregator) Add(parts ...multisig.Part) {
	for _, part := range parts {
		a.parts[part.Ref] = part
	}
}

// Part returns signature part from ref public key.
func (a *Aggregator) Part(ref uint8) *multisig.Part {
	part, exists := a.parts[ref]
	if !exists {
		return nil
	}
	return &part
}

// Operation returns the operation with all accumulated signatures.
func (a *Aggregator) Operation() *core.Operation {
	sigs := make(multisig.Signatures, 0, len(a.parts))
	for _, part := range a.parts {
		sigs = append(sigs, part)
	}
	sort.Slice(sigs, func(i, j int) bool {
		return sigs[i].Ref < sigs[j].Ref
	})
	op := *a.op
	op.Authorization = codec.MustEncode(&sigs)
	return &op
}
