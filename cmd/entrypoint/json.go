package main

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// operationJSON is an operation as accepted by the run command.
type operationJSON struct {
	Sender             types.Address  `json:"sender"`
	Sequence           string         `json:"sequence"`
	Deployment         hexutil.Bytes  `json:"deployment,omitempty"`
	Call               hexutil.Bytes  `json:"call"`
	CallBudget         hexutil.Uint64 `json:"callBudget"`
	ValidationBudget   hexutil.Uint64 `json:"validationBudget"`
	PreambleBudget     hexutil.Uint64 `json:"preambleBudget"`
	FeeCeiling         hexutil.Uint64 `json:"feeCeiling"`
	FeePriorityCeiling hexutil.Uint64 `json:"feePriorityCeiling"`
	Sponsorship        hexutil.Bytes  `json:"sponsorship,omitempty"`
	Authorization      hexutil.Bytes  `json:"authorization"`
}

func fromOperation(op *core.Operation) operationJSON {
	return operationJSON{
		Sender:             op.Sender,
		Sequence:           op.Sequence.String(),
		Deployment:         op.Deployment,
		Call:               op.Call,
		CallBudget:         hexutil.Uint64(op.CallBudget),
		ValidationBudget:   hexutil.Uint64(op.ValidationBudget),
		PreambleBudget:     hexutil.Uint64(op.PreambleBudget),
		FeeCeiling:         hexutil.Uint64(op.FeeCeiling),
		FeePriorityCeiling: hexutil.Uint64(op.FeePriorityCeiling),
		Sponsorship:        op.Sponsorship,
		Authorization:      op.Authorization,
	}
}

func (o *operationJSON) operation() (core.Operation, error) {
	seq, err := types.ParseSequence(o.Sequence)
	if err != nil {
		return core.Operation{}, err
	}
	return core.Operation{
		Sender:             o.Sender,
		Sequence:           seq,
		Deployment:         o.Deployment,
		Call:               o.Call,
		CallBudget:         uint64(o.CallBudget),
		ValidationBudget:   uint64(o.ValidationBudget),
		PreambleBudget:     uint64(o.PreambleBudget),
		FeeCeiling:         uint64(o.FeeCeiling),
		FeePriorityCeiling: uint64(o.FeePriorityCeiling),
		Sponsorship:        o.Sponsorship,
		Authorization:      o.Authorization,
	}, nil
}

type outcomeJSON struct {
	Index  int           `json:"index"`
	OpHash types.Hash32  `json:"opHash"`
	Sender types.Address `json:"sender"`
	Payer  types.Address `json:"payer"`
	Status string        `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Fee    uint64        `json:"fee"`
	Used   uint64        `json:"used"`
}

// reportJSON is written by the run command.
type reportJSON struct {
	Batch     int64         `json:"batch"`
	Root      types.Hash32  `json:"root"`
	Collected uint64        `json:"collected"`
	Outcomes  []outcomeJSON `json:"outcomes"`
}

func newReport(rst *entrypoint.Result) reportJSON {
	report := reportJSON{
		Batch:     rst.ID,
		Root:      rst.Root,
		Collected: rst.Collected,
		Outcomes:  make([]outcomeJSON, 0, len(rst.Outcomes)),
	}
	for _, out := range rst.Outcomes {
		encoded := outcomeJSON{
			Index:  out.Index,
			OpHash: out.OpHash,
			Sender: out.Sender,
			Payer:  out.Payer,
			Status: out.Status.String(),
			Fee:    out.Fee,
			Used:   out.Used,
		}
		if out.Reason != nil {
			encoded.Reason = out.Reason.Error()
		}
		report.Outcomes = append(report.Outcomes, encoded)
	}
	return report
}

type stakeJSON struct {
	Amount        uint64 `json:"amount"`
	UnstakeDelay  string `json:"unstakeDelay"`
	WithdrawReady string `json:"withdrawReady,omitempty"`
}

// accountJSON is printed by the balance command.
type accountJSON struct {
	Address  types.Address  `json:"address"`
	Balance  uint64         `json:"balance"`
	Escrow   uint64         `json:"escrow"`
	Template *types.Address `json:"template,omitempty"`
	State    hexutil.Bytes  `json:"state,omitempty"`
	Stake    *stakeJSON     `json:"stake,omitempty"`
}
