// Package factory derives account addresses from owner and salt and materializes them on first use.
package factory

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
)

// MethodCreateAccount deploys the account, returns its address.
const MethodCreateAccount uint8 = 0

// OwnerLimit is the maximal size of the account state passed as owner.
const OwnerLimit = 1 << 10

// TemplateAddress is an address of the factory template.
var TemplateAddress = types.TemplateAddress(32)

var (
	_ core.Handler  = (*handler)(nil)
	_ core.Deployer = (*Factory)(nil)
)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load factory bound to the account template stored in its state.
func (*handler) Load(state []byte) (core.Template, error) {
	impl, err := types.BytesToAddress(state)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Factory{Implementation: impl}, nil
}

// ComputeAddress is a pure function of engine, implementation, owner and salt.
func ComputeAddress(engine, implementation core.Address, owner []byte, salt core.Hash32) core.Address {
	initHash := crypto.Keccak256(implementation[:], owner)
	return crypto.CreateAddress2(engine, salt, initHash)
}

// Factory creates accounts of a single template. Owner is the immutable state of the account.
type Factory struct {
	Implementation core.Address
}

// CreateArguments are the deployment arguments of an operation.
type CreateArguments struct {
	Owner []byte
	Salt  core.Hash32
}

func (a *CreateArguments) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, a.Owner, OwnerLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := types.EncodeHash32(enc, a.Salt)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (a *CreateArguments) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, OwnerLimit)
		if err != nil {
			return total, err
		}
		total += n
		a.Owner = field
	}
	{
		field, n, err := types.DecodeHash32(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Salt = field
	}
	return total, nil
}

// Deployment builds the deployment payload of an operation.
func Deployment(factory core.Address, owner []byte, salt core.Hash32) []byte {
	args := codec.MustEncode(&CreateArguments{Owner: owner, Salt: salt})
	return append(factory.Bytes(), args...)
}

// Deploy creates account at the computed address. An existing account is returned unchanged.
func (f *Factory) Deploy(host core.Host, raw []byte) (core.Address, error) {
	var args CreateArguments
	if err := core.DecodeArgs(raw, &args); err != nil {
		return core.Address{}, err
	}
	return f.CreateAccount(host, args.Owner, args.Salt)
}

// CreateAccount is idempotent.
func (f *Factory) CreateAccount(host core.Host, owner []byte, salt core.Hash32) (core.Address, error) {
	address := ComputeAddress(host.Engine(), f.Implementation, owner, salt)
	exists, err := host.Exists(address)
	if err != nil {
		return core.Address{}, err
	}
	if exists {
		return address, nil
	}
	if err := host.Spawn(address, f.Implementation, owner); err != nil {
		return core.Address{}, err
	}
	return address, nil
}

// Exec creates an account on request of any caller.
func (f *Factory) Exec(host core.Host, payload []byte) ([]byte, error) {
	method, raw, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	if method != MethodCreateAccount {
		return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
	}
	address, err := f.Deploy(host, raw)
	if err != nil {
		return nil, err
	}
	return address.Bytes(), nil
}
