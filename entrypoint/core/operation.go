package core

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-entrypoint/common/types"
)

const (
	// DeploymentLimit is the maximal size of the deployment payload.
	DeploymentLimit = 1 << 16
	// CallLimit is the maximal size of the call payload.
	CallLimit = 1 << 17
	// SponsorshipLimit is the maximal size of the sponsorship payload.
	SponsorshipLimit = 1 << 12
	// AuthorizationLimit is the maximal size of the authorization payload.
	AuthorizationLimit = 1 << 12
)

var (
	addressTy, _ = abi.NewType("address", "", nil)
	uint256Ty, _ = abi.NewType("uint256", "", nil)
	bytes32Ty, _ = abi.NewType("bytes32", "", nil)

	operationArgs = abi.Arguments{
		{Type: addressTy}, // sender
		{Type: uint256Ty}, // sequence
		{Type: bytes32Ty}, // keccak(deployment)
		{Type: bytes32Ty}, // keccak(call)
		{Type: uint256Ty}, // call budget
		{Type: uint256Ty}, // validation budget
		{Type: uint256Ty}, // preamble budget
		{Type: uint256Ty}, // fee ceiling
		{Type: uint256Ty}, // fee priority ceiling
		{Type: bytes32Ty}, // keccak(sponsorship)
	}
	domainArgs = abi.Arguments{
		{Type: bytes32Ty}, // operation digest
		{Type: addressTy}, // engine
		{Type: uint256Ty}, // chain id
	}
)

// Operation is a single signed request to act on behalf of the sender.
type Operation struct {
	Sender   Address
	Sequence types.Sequence
	// Deployment is non-empty only if the sender doesn't exist yet:
	// factory address (20 bytes) followed by the factory arguments.
	Deployment []byte
	// Call is executed by the sender after validation.
	Call []byte

	CallBudget       uint64
	ValidationBudget uint64
	PreambleBudget   uint64

	FeeCeiling         uint64
	FeePriorityCeiling uint64

	// Sponsorship is empty for self-funded operations, otherwise
	// sponsor address (20 bytes) followed by sponsor-defined data.
	Sponsorship []byte
	// Authorization is opaque to the engine.
	Authorization []byte
}

func bigUint(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

func keccak(b []byte) [32]byte {
	return crypto.Keccak256Hash(b)
}

// Digest is the hash of all fields except authorization, not bound to an engine.
func (op *Operation) Digest() Hash32 {
	packed, err := operationArgs.Pack(
		op.Sender,
		op.Sequence.Uint256().ToBig(),
		keccak(op.Deployment),
		keccak(op.Call),
		bigUint(op.CallBudget),
		bigUint(op.ValidationBudget),
		bigUint(op.PreambleBudget),
		bigUint(op.FeeCeiling),
		bigUint(op.FeePriorityCeiling),
		keccak(op.Sponsorship),
	)
	if err != nil {
		panic(fmt.Sprintf("pack operation: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// Hash binds the digest to the engine address and the chain id. Signatures are computed over it.
func (op *Operation) Hash(engine Address, chainID uint64) Hash32 {
	packed, err := domainArgs.Pack([32]byte(op.Digest()), engine, bigUint(chainID))
	if err != nil {
		panic(fmt.Sprintf("pack operation domain: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// TotalBudget is the compute ceiling of the operation.
func (op *Operation) TotalBudget() (uint64, error) {
	total, carry1 := bits.Add64(op.PreambleBudget, op.ValidationBudget, 0)
	total, carry2 := bits.Add64(total, op.CallBudget, 0)
	if carry1|carry2 != 0 {
		return 0, fmt.Errorf("%w: total budget overflows", ErrMalformed)
	}
	return total, nil
}

// MaxCost is the prospective debit: every budget priced at the fee ceiling.
func (op *Operation) MaxCost() (uint64, error) {
	total, err := op.TotalBudget()
	if err != nil {
		return 0, err
	}
	hi, lo := bits.Mul64(total, op.FeeCeiling)
	if hi != 0 {
		return 0, fmt.Errorf("%w: max cost overflows", ErrMalformed)
	}
	return lo, nil
}

// Price is the fee per compute unit given the base fee.
func (op *Operation) Price(baseFee uint64) uint64 {
	sum, carry := bits.Add64(baseFee, op.FeePriorityCeiling, 0)
	if carry != 0 || sum > op.FeeCeiling {
		return op.FeeCeiling
	}
	return sum
}

// Sponsored is true if the operation names a sponsor.
func (op *Operation) Sponsored() bool {
	return len(op.Sponsorship) > 0
}

// Sponsor address and sponsor-defined data.
func (op *Operation) Sponsor() (Address, []byte) {
	if len(op.Sponsorship) < types.AddressLength {
		return Address{}, nil
	}
	return types.Address(op.Sponsorship[:types.AddressLength]), op.Sponsorship[types.AddressLength:]
}

// Factory address and factory arguments of the deployment payload.
func (op *Operation) Factory() (Address, []byte) {
	if len(op.Deployment) < types.AddressLength {
		return Address{}, nil
	}
	return types.Address(op.Deployment[:types.AddressLength]), op.Deployment[types.AddressLength:]
}

// Verify static properties that don't depend on state.
func (op *Operation) Verify(schedule Schedule) error {
	if op.FeePriorityCeiling > op.FeeCeiling {
		return fmt.Errorf("%w: priority fee %d above fee ceiling %d",
			ErrMalformed, op.FeePriorityCeiling, op.FeeCeiling)
	}
	if len(op.Sponsorship) > 0 && len(op.Sponsorship) < types.AddressLength {
		return fmt.Errorf("%w: sponsorship payload of %d bytes", ErrMalformed, len(op.Sponsorship))
	}
	if len(op.Deployment) > 0 && len(op.Deployment) < types.AddressLength {
		return fmt.Errorf("%w: deployment payload of %d bytes", ErrMalformed, len(op.Deployment))
	}
	if _, err := op.MaxCost(); err != nil {
		return err
	}
	size, err := op.Size()
	if err != nil {
		return err
	}
	if intrinsic := schedule.IntrinsicCost(size); op.PreambleBudget < intrinsic {
		return fmt.Errorf("%w: preamble budget %d below intrinsic cost %d",
			ErrMalformed, op.PreambleBudget, intrinsic)
	}
	return nil
}

// Size of the encoded operation.
func (op *Operation) Size() (int, error) {
	var counter countingWriter
	n, err := op.EncodeScale(scale.NewEncoder(&counter))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return n, nil
}

type countingWriter struct{}

func (countingWriter) Write(b []byte) (int, error) {
	return len(b), nil
}

// MarshalLogObject implements encoding for the operation.
func (op *Operation) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("sender", op.Sender.Hex())
	encoder.AddString("sequence", op.Sequence.String())
	encoder.AddBool("deploy", len(op.Deployment) > 0)
	encoder.AddUint64("call_budget", op.CallBudget)
	encoder.AddUint64("validation_budget", op.ValidationBudget)
	encoder.AddUint64("preamble_budget", op.PreambleBudget)
	encoder.AddUint64("fee_ceiling", op.FeeCeiling)
	encoder.AddUint64("priority_ceiling", op.FeePriorityCeiling)
	if sponsor, _ := op.Sponsor(); op.Sponsored() {
		encoder.AddString("sponsor", sponsor.Hex())
	}
	return nil
}
