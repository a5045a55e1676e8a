// Package verifying implements the sponsor that pays for operations approved by an off-chain authorizer.
package verifying

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor"
	"github.com/spacemeshos/go-entrypoint/signing"
)

// TemplateAddress is an address of the verifying sponsor template.
var TemplateAddress = types.TemplateAddress(48)

// MethodSponsored returns total sponsored for the account.
const MethodSponsored uint8 = 0

const (
	windowSize = 64
	dataSize   = windowSize + signing.RecoverableSize
)

var (
	_ core.Handler = (*handler)(nil)
	_ core.Sponsor = (*Sponsor)(nil)

	uint48Ty, _  = abi.NewType("uint48", "", nil)
	addressTy, _ = abi.NewType("address", "", nil)
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)

	windowArgs = abi.Arguments{{Type: uint48Ty}, {Type: uint48Ty}}
	signedArgs = abi.Arguments{
		{Type: bytes32Ty}, // operation hash without the sponsor signature
		{Type: addressTy}, // sponsor
		{Type: uint48Ty},  // valid until
		{Type: uint48Ty},  // valid after
	}
)

// Register template.
func Register(r *registry.Registry) {
	r.Register(TemplateAddress, &handler{})
}

type handler struct{}

// Load sponsor from its state.
func (*handler) Load(state []byte) (core.Template, error) {
	var args SpawnArguments
	if err := codec.Decode(state, &args); err != nil {
		return nil, fmt.Errorf("%w: malformed state %w", core.ErrInternal, err)
	}
	return &Sponsor{Owner: args.Owner, Signer: args.Signer}, nil
}

// SpawnArguments is the immutable state of the sponsor.
type SpawnArguments struct {
	Owner  core.Address
	Signer core.Address
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
		n, err := types.EncodeAddress(enc, a.Signer)
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
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		a.Signer = field
	}
	return total, nil
}

// Sponsor trusts Signer to decide which operations are paid for.
type Sponsor struct {
	Owner  core.Address
	Signer core.Address
}

func sponsoredKey(account core.Address) core.Hash32 {
	return core.StorageKey([]byte("sponsored"), account[:])
}

// SigningHash is the hash that the authorizer signs. It binds the operation hash computed
// without the authorizer signature, the sponsor and the validity window.
func SigningHash(op *core.Operation, engine core.Address, chainID uint64, validUntil, validAfter uint64) (core.Hash32, error) {
	unsigned := *op
	if len(op.Sponsorship) < types.AddressLength+windowSize {
		return core.Hash32{}, fmt.Errorf("%w: sponsorship of %d bytes", core.ErrMalformed, len(op.Sponsorship))
	}
	unsigned.Sponsorship = op.Sponsorship[:types.AddressLength+windowSize]
	sponsorAddr, _ := op.Sponsor()
	packed, err := signedArgs.Pack(
		[32]byte(unsigned.Hash(engine, chainID)),
		sponsorAddr,
		new(big.Int).SetUint64(validUntil),
		new(big.Int).SetUint64(validAfter),
	)
	if err != nil {
		return core.Hash32{}, fmt.Errorf("%w: %w", core.ErrMalformed, err)
	}
	return crypto.Keccak256Hash(packed), nil
}

// Window encodes the validity window of the sponsorship payload.
func Window(validUntil, validAfter uint64) []byte {
	packed, err := windowArgs.Pack(new(big.Int).SetUint64(validUntil), new(big.Int).SetUint64(validAfter))
	if err != nil {
		panic(fmt.Sprintf("pack window: %v", err))
	}
	return packed
}

// ParseData splits sponsor data into the window and the signature.
func ParseData(data []byte) (validUntil, validAfter uint64, sig []byte, err error) {
	if len(data) != dataSize {
		return 0, 0, nil, fmt.Errorf("%w: sponsor data of %d bytes, expected %d", core.ErrMalformed, len(data), dataSize)
	}
	values, err := windowArgs.Unpack(data[:windowSize])
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %w", core.ErrMalformed, err)
	}
	return values[0].(*big.Int).Uint64(), values[1].(*big.Int).Uint64(), data[windowSize:], nil
}

// ValidateSponsorship recovers the authorizer of the operation. A wrong authorizer is reported
// with the signature failure marker together with the window.
func (s *Sponsor) ValidateSponsorship(host core.Host, op *core.Operation, _ core.Hash32, maxCost uint64) ([]byte, core.ValidationData, error) {
	if err := host.Consume(host.Schedule().Verify); err != nil {
		return nil, core.ValidationData{}, err
	}
	until, after, sig, err := ParseData(sponsor.Data(op))
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	hash, err := SigningHash(op, host.Engine(), host.ChainID(), until, after)
	if err != nil {
		return nil, core.ValidationData{}, err
	}
	data := core.Window(after, until)
	if signer, ok := signing.Recover(hash, sig); !ok || signer != s.Signer {
		data.Marker = core.SignatureFailure
	}
	return op.Sender.Bytes(), data, nil
}

// Settle records the cost paid for the account.
func (s *Sponsor) Settle(host core.Host, _ core.SettleMode, context []byte, actualCost uint64) error {
	account, err := types.BytesToAddress(context)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	total, err := core.GetUint64(host, sponsoredKey(account))
	if err != nil {
		return err
	}
	return core.SetUint64(host, sponsoredKey(account), total+actualCost)
}

// Exec serves queries and management methods of the owner.
func (s *Sponsor) Exec(host core.Host, payload []byte) ([]byte, error) {
	method, raw, err := core.Method(payload)
	if err != nil {
		return nil, err
	}
	if sponsor.IsOwnerMethod(method) {
		return sponsor.ExecOwner(host, s.Owner, method, raw)
	}
	if method != MethodSponsored {
		return nil, fmt.Errorf("%w: unknown method %d", core.ErrMalformed, method)
	}
	account, err := types.BytesToAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformed, err)
	}
	total, err := core.GetUint64(host, sponsoredKey(account))
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetUint64(total).Bytes(), nil
}
