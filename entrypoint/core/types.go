package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/common/types"
)

type (
	// Address is an alias to types.Address.
	Address = types.Address
	// Hash32 is an alias to types.Hash32.
	Hash32 = types.Hash32
	// Sequence is an alias to types.Sequence.
	Sequence = types.Sequence
)

// Handler is the static part of a template bound to a template address.
type Handler interface {
	// Load decodes the instance from its immutable state.
	Load(state []byte) (Template, error)
}

// Template is an instance of a handler bound to an address.
type Template interface {
	// Exec dispatches a call payload, the first byte of the payload is the method selector.
	Exec(host Host, payload []byte) ([]byte, error)
}

// Account is a template that can be the sender of operations.
type Account interface {
	Template
	// ValidateOperation checks authorization against opHash. If missingFunds is
	// non-zero the account is expected to deposit it into its own escrow.
	ValidateOperation(host Host, op *Operation, opHash Hash32, missingFunds uint64) (ValidationData, error)
}

// SequencePolicy is implemented by accounts that order operations on their own.
// The policy must consume the sequence when it accepts it.
type SequencePolicy interface {
	ValidateSequence(host Host, seq Sequence) error
}

// Deployer is a template that can materialize the sender of an operation.
type Deployer interface {
	Template
	// Deploy creates (or finds) an account from the arguments and returns its address.
	Deploy(host Host, args []byte) (Address, error)
}

// SettleMode tells the sponsor what happened to the operation.
type SettleMode uint8

const (
	// SettleSucceeded after a successful call.
	SettleSucceeded SettleMode = iota
	// SettleReverted after a reverted call.
	SettleReverted
	// SettleAfterFailure after the first settle attempt failed and all its effects were reverted.
	SettleAfterFailure
)

func (m SettleMode) String() string {
	switch m {
	case SettleSucceeded:
		return "succeeded"
	case SettleReverted:
		return "reverted"
	case SettleAfterFailure:
		return "after_failure"
	}
	return "unknown"
}

// Sponsor is a template that pays for operations of other accounts.
type Sponsor interface {
	Template
	// ValidateSponsorship decides whether to pay at most maxCost for the operation.
	// The returned context is passed back to Settle.
	ValidateSponsorship(host Host, op *Operation, opHash Hash32, maxCost uint64) ([]byte, ValidationData, error)
	// Settle is invoked once the actual cost is known.
	Settle(host Host, mode SettleMode, context []byte, actualCost uint64) error
}

// ExternalValidator checks authorization of accounts that delegate it by returning its address as a marker.
type ExternalValidator interface {
	ValidateSignature(op *Operation, opHash Hash32) error
}

// TemplateLookup returns handler registered for the template address, nil if none.
type TemplateLookup interface {
	Get(Address) Handler
}

// InstanceLoader resolves the template instance bound to an address.
type InstanceLoader interface {
	Load(Address) (Template, error)
}

// EngineHandler executes calls that target the engine address.
type EngineHandler interface {
	ExecEngine(host Host, caller Address, value uint64, payload []byte) ([]byte, error)
}

// Host is the capability surface available to templates. Every state access
// is metered, accessors fail with ErrBudgetExceeded once the budget is exhausted.
type Host interface {
	Self() Address
	Caller() Address
	Engine() Address
	ChainID() uint64
	Now() time.Time
	Schedule() Schedule
	Logger() *zap.Logger

	Consume(gas uint64) error
	Remaining() uint64

	Exists(Address) (bool, error)
	Balance(Address) (uint64, error)
	Transfer(to Address, amount uint64) error

	Get(key Hash32) ([]byte, error)
	Set(key Hash32, value []byte) error
	Read(owner Address, key Hash32) ([]byte, error)

	Call(target Address, value uint64, payload []byte) ([]byte, error)
	Spawn(address, template Address, state []byte) error

	EscrowOf(Address) (uint64, error)
	Deposit(amount uint64) error
	Exchange(venue Address, native uint64) error
}
