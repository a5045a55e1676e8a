// Package wallet implements the single-owner ed25519 account.
package wallet

import (
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// MethodExecute runs core.Calls on behalf of the wallet.
const MethodExecute uint8 = 0

// TemplateAddress is an address of the wallet template.
var TemplateAddress = types.TemplateAddress(17)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Account = (*Wallet)(nil)

	verifier, _ = signing.NewEdVerifier()
)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load wallet from its state.
func (*handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Wallet{PublicKey: args.PublicKey}, nil
}

// SpawnArguments is the immutable state of the wallet.
type SpawnArguments struct {
	PublicKey signing.PublicKey
}

func (a *SpawnArguments) EncodeScale(enc *scale.Encoder) (int, error) {
	return a.PublicKey.EncodeScale(enc)
}

func (a *SpawnArguments) DecodeScale(dec *scale.Decoder) (int, error) {
	return a.PublicKey.DecodeScale(dec)
}

// Wallet is controlled by a single ed25519 key.
type Wallet struct {
	PublicKey signing.PublicKey
}

// ValidateOperation verifies the ed25519 signature of opHash.
func (w *Wallet) ValidateOperation(host core.Host, op *core.Operation, opHash core.Hash32, missingFunds uint64) (core.ValidationData, error) {
	if err := host.Consume(host.Schedule().Verify); err != nil {
		return core.ValidationData{}, err
	}
	data := core.Failed()
	if len(op.Authorization) == signing.SignatureSize &&
		verifier.Verify(signing.OPERATION, w.PublicKey, opHash[:], signing.Signature(op.Authorization)) {
		data = core.Valid()
	}
	if missingFunds > 0 {
		// the engine rejects the operation if escrow is still short
		_ = host.Deposit(missingFunds)
	}
	return data, nil
}

// Exec runs calls if invoked by the engine or by the wallet itself.
func (w *Wallet) Exec(host core.Host, payload []byte) ([]byte, error) {
	return nil, ExecuteCalls(host, payload)
}

// ExecuteCalls decodes MethodExecute payload and runs it.
func ExecuteCalls(host core.Host, payload []byte) error {
	if host.Caller() != host.Engine() && host.Caller() != host.Self() {
		return fmt.Errorf("%w: %v can't call account %v", core.ErrUnauthorized, host.Caller(), host.Self())
	}
	method, args, err := core.Method(payload)
	if err != nil {
		return err
	}
	if method != MethodExecute {
		return fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
	}
	var calls core.Calls
	if err := core.DecodeArgs(args, &calls); err != nil {
		return err
	}
	return core.Execute(host, calls)
}
