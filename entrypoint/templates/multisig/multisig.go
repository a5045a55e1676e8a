// Package multisig implements the k-of-n ed25519 account.
package multisig

import (
	"fmt"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/wallet"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// StorageLimit is a limit of keys that can be used when multisig is spawned.
const StorageLimit = 10

// TemplateAddress is an address of the multisig template.
var TemplateAddress = types.TemplateAddress(18)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Account = (*MultiSig)(nil)

	verifier, _ = signing.NewEdVerifier()
)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load multisig from its state.
func (*handler) Load(state []byte) (core.Template, error) {
	var ms MultiSig
	if err := codec.Decode(state, &ms); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	if ms.Required == 0 || int(ms.Required) > len(ms.PublicKeys) {
		return nil, fmt.Errorf("%w: %d of %d keys", core.ErrInternal, ms.Required, len(ms.PublicKeys))
	}
	return &ms, nil
}

// MultiSig K/N account.
type MultiSig struct {
	Required   uint8
	PublicKeys []signing.PublicKey
}

// ValidateOperation requires Required signatures from distinct keys in ascending order of reference.
func (ms *MultiSig) ValidateOperation(host core.Host, op *core.Operation, opHash core.Hash32, missingFunds uint64) (core.ValidationData, error) {
	if err := host.Consume(uint64(ms.Required) * host.Schedule().Verify); err != nil {
		return core.ValidationData{}, err
	}
	data := core.Failed()
	if ms.verify(opHash, op.Authorization) {
		data = core.Valid()
	}
	if missingFunds > 0 {
		_ = host.Deposit(missingFunds)
	}
	return data, nil
}

func (ms *MultiSig) verify(opHash core.Hash32, authorization []byte) bool {
	var sigs Signatures
	if err := codec.Decode(authorization, &sigs); err != nil {
		return false
	}
	if len(sigs) != int(ms.Required) {
		return false
	}
	batch := verifier.Batch(int(ms.Required))
	last := uint8(0)
	for i, part := range sigs {
		if part.Ref >= uint8(len(ms.PublicKeys)) {
			return false
		}
		if i != 0 && part.Ref <= last {
			return false
		}
		last = part.Ref
		batch.Add(signing.OPERATION, ms.PublicKeys[part.Ref], opHash[:], part.Sig)
	}
	return batch.Verify()
}

// Exec runs calls if invoked by the engine or by the account itself.
func (ms *MultiSig) Exec(host core.Host, payload []byte) ([]byte, error) {
	return nil, wallet.ExecuteCalls(host, payload)
}
