// Package simple implements the single-owner account. Operations are signed with a
// secp256k1 key over the EIP-191 message hash of the operation hash.
package simple

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/signing"
)

const (
	// MethodExecute runs core.Calls on behalf of the account.
	MethodExecute uint8 = iota
	// MethodAddSession stores a Session.
	MethodAddSession
	// MethodRemoveSession deletes a session.
	MethodRemoveSession
)

// TemplateAddress is an address of the single-owner account template.
var TemplateAddress = types.TemplateAddress(16)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Account = (*Account)(nil)
)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load account from its state.
func (*handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Account{Owner: args.Owner}, nil
}

// Account is controlled by a single owner and optional session keys.
type Account struct {
	Owner core.Address
}

func sessionKey(key core.Address) core.Hash32 {
	return core.StorageKey([]byte("session"), key[:])
}

// ValidateOperation recovers the signer of opHash. Operations signed by the owner
// are valid forever, operations signed by a session key are valid within the
// session window and may only execute calls to other addresses.
func (a *Account) ValidateOperation(host core.Host, op *core.Operation, opHash core.Hash32, missingFunds uint64) (core.ValidationData, error) {
	if err := host.Consume(host.Schedule().Verify); err != nil {
		return core.ValidationData{}, err
	}
	data := core.Failed()
	signer, ok := signing.Recover(opHash, op.Authorization)
	switch {
	case !ok:
	case signer == a.Owner:
		data = core.Valid()
	default:
		var session Session
		found, err := core.GetObject(host, sessionKey(signer), &session)
		if err != nil {
			return core.ValidationData{}, err
		}
		if found && a.sessionAllowed(host, op.Call) {
			data = core.Window(session.ValidAfter, session.ValidUntil)
		}
	}
	if missingFunds > 0 {
		if err := host.Deposit(missingFunds); err != nil {
			host.Logger().Debug("escrow top-up failed",
				zap.Stringer("account", host.Self()),
				zap.Uint64("missing", missingFunds),
				zap.Error(err),
			)
		}
	}
	return data, nil
}

func (a *Account) sessionAllowed(host core.Host, call []byte) bool {
	method, args, err := core.Method(call)
	if err != nil || method != MethodExecute {
		return false
	}
	var calls core.Calls
	if err := core.DecodeArgs(args, &calls); err != nil {
		return false
	}
	for _, c := range calls {
		if c.Target == host.Self() || c.Target == host.Engine() {
			return false
		}
	}
	return true
}

// Exec dispatches methods callable by the engine or by the account itself.
func (a *Account) Exec(host core.Host, payload []byte) ([]byte, error) {
	if host.Caller() != host.Engine() && host.Caller() != host.Self() {
		return nil, fmt.Errorf("%w: %v can't call account %v", core.ErrUnauthorized, host.Caller(), host.Self())
	}
	method, args, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	switch method {
	case MethodExecute:
		var calls core.Calls
		if err := core.DecodeArgs(args, &calls); err != nil {
			return nil, err
		}
		return nil, core.Execute(host, calls)
	case MethodAddSession:
		var session Session
		if err := core.DecodeArgs(args, &session); err != nil {
			return nil, err
		}
		if session.ValidUntil != 0 && session.ValidUntil < session.ValidAfter {
			return nil, fmt.Errorf("%w: empty session window", core.ErrMalformed)
		}
		return nil, core.SetObject(host, sessionKey(session.Key), &session)
	case MethodRemoveSession:
		var remove RemoveSessionArguments
		if err := core.DecodeArgs(args, &remove); err != nil {
			return nil, err
		}
		return nil, host.Set(sessionKey(remove.Key), nil)
	}
	return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
}
