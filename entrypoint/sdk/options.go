package sdk

import (
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// Opt modifies Options.
type Opt func(*Options)

// Defaults returns default Options.
func Defaults() *Options {
	return &Options{
		Engine:           core.DefaultEngineAddress,
		ChainID:          1,
		Schedule:         core.DefaultSchedule(),
		FeeCeiling:       1,
		CallBudget:       200_000,
		ValidationBudget: 100_000,
	}
}

// Options to modify common operation fields.
type Options struct {
	Engine   core.Address
	ChainID  uint64
	Schedule core.Schedule

	FeeCeiling         uint64
	FeePriorityCeiling uint64

	CallBudget       uint64
	ValidationBudget uint64
	// PreambleBudget is derived from the intrinsic cost when zero.
	PreambleBudget uint64

	Deployment []byte
	Sponsor    Sponsor
}

// Sponsor builds the sponsorship payload of an operation that is not signed yet.
// The payload must have the same size for any operation.
type Sponsor func(op *core.Operation, engine core.Address, chainID uint64) []byte

// WithEngine binds operations to the engine address and chain id.
func WithEngine(engine core.Address, chainID uint64) Opt {
	return func(opts *Options) {
		opts.Engine = engine
		opts.ChainID = chainID
	}
}

// WithSchedule modifies the schedule used to derive the preamble budget.
func WithSchedule(schedule core.Schedule) Opt {
	return func(opts *Options) {
		opts.Schedule = schedule
	}
}

// WithFees modifies FeeCeiling and FeePriorityCeiling.
func WithFees(ceiling, priority uint64) Opt {
	return func(opts *Options) {
		opts.FeeCeiling = ceiling
		opts.FeePriorityCeiling = priority
	}
}

// WithBudgets modifies CallBudget and ValidationBudget.
func WithBudgets(call, validation uint64) Opt {
	return func(opts *Options) {
		opts.CallBudget = call
		opts.ValidationBudget = validation
	}
}

// WithPreambleBudget sets PreambleBudget instead of deriving it.
func WithPreambleBudget(budget uint64) Opt {
	return func(opts *Options) {
		opts.PreambleBudget = budget
	}
}

// WithDeployment sets the deployment payload.
func WithDeployment(payload []byte) Opt {
	return func(opts *Options) {
		opts.Deployment = payload
	}
}

// WithSponsor makes the operation sponsored.
func WithSponsor(sponsor Sponsor) Opt {
	return func(opts *Options) {
		opts.Sponsor = sponsor
	}
}
