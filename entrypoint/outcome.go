package entrypoint

import (
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// Status of an operation after the batch.
type Status uint8

const (
	// StatusSuccess is recorded when the call succeeded and the fee was charged.
	StatusSuccess Status = iota
	// StatusReverted is recorded when the call failed, its effects were reverted and the fee was charged.
	StatusReverted
	// StatusValidationFailed is recorded when the operation was skipped without any effect.
	StatusValidationFailed
	// StatusPostSettlementFailed is recorded when the sponsor failed to settle, the fee was charged.
	StatusPostSettlementFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusReverted:
		return "reverted"
	case StatusValidationFailed:
		return "validation_failed"
	case StatusPostSettlementFailed:
		return "post_settlement_failed"
	}
	return "unknown"
}

// Charged is true if the operation paid a fee.
func (s Status) Charged() bool {
	return s != StatusValidationFailed
}

// Outcome of a single operation.
type Outcome struct {
	Index  int
	OpHash core.Hash32
	Sender core.Address
	Payer  core.Address
	Status Status
	// Reason wraps one of the taxonomy errors from core, nil on success.
	Reason error
	// Fee charged to the payer.
	Fee uint64
	// Used compute units.
	Used uint64
}

// MarshalLogObject implements encoding for the outcome.
func (o *Outcome) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddInt("index", o.Index)
	encoder.AddString("op_hash", o.OpHash.Hex())
	encoder.AddString("sender", o.Sender.Hex())
	encoder.AddString("status", o.Status.String())
	if o.Reason != nil {
		encoder.AddString("reason", o.Reason.Error())
	}
	if o.Status.Charged() {
		encoder.AddString("payer", o.Payer.Hex())
		encoder.AddUint64("fee", o.Fee)
		encoder.AddUint64("used", o.Used)
	}
	return nil
}

// Result of a batch.
type Result struct {
	// ID of the persisted batch receipt.
	ID        int64
	Outcomes  []Outcome
	Collected uint64
	Root      core.Hash32
}
