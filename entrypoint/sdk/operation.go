// Package sdk builds operations for the account and sponsor templates.
package sdk

import (
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// compactSlack is the largest growth of a compact encoded budget.
const compactSlack = 8

// Apply returns Defaults modified by opts.
func Apply(opts ...Opt) *Options {
	options := Defaults()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Unsigned builds operation without authorization. authSize is the size of the
// authorization that will be attached, it is covered by the derived preamble budget.
func Unsigned(options *Options, sender core.Address, seq core.Sequence, call []byte, authSize int) *core.Operation {
	op := &core.Operation{
		Sender:             sender,
		Sequence:           seq,
		Deployment:         options.Deployment,
		Call:               call,
		CallBudget:         options.CallBudget,
		ValidationBudget:   options.ValidationBudget,
		PreambleBudget:     options.PreambleBudget,
		FeeCeiling:         options.FeeCeiling,
		FeePriorityCeiling: options.FeePriorityCeiling,
	}
	if options.Sponsor != nil {
		op.Sponsorship = options.Sponsor(op, options.Engine, options.ChainID)
	}
	if options.PreambleBudget == 0 {
		op.Authorization = make([]byte, authSize)
		size, err := op.Size()
		if err != nil {
			panic(err)
		}
		op.Authorization = nil
		op.PreambleBudget = options.Schedule.IntrinsicCost(size + compactSlack)
		if options.Sponsor != nil {
			// sponsors may sign the budgets
			op.Sponsorship = options.Sponsor(op, options.Engine, options.ChainID)
		}
	}
	return op
}

// Hash of the operation signed by accounts.
func Hash(options *Options, op *core.Operation) core.Hash32 {
	return op.Hash(options.Engine, options.ChainID)
}

// Execute builds the call payload that runs calls on behalf of the sender.
// All account templates use method 0 for it.
func Execute(calls ...core.Call) []byte {
	list := core.Calls(calls)
	return core.Payload(0, &list)
}
