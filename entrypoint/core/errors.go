package core

import (
	"errors"

	"github.com/spacemeshos/go-entrypoint/ledger"
	"github.com/spacemeshos/go-entrypoint/state"
)

var (
	// ErrUnknownSender is returned when the sender has no code and no deployment payload.
	ErrUnknownSender = errors.New("unknown sender")
	// ErrInvalidSequence is returned when the sender rejects the sequence.
	ErrInvalidSequence = errors.New("invalid sequence")
	// ErrValidationFailed is returned for bad authorization or a validation window that doesn't cover now.
	ErrValidationFailed = errors.New("validation failed")
	// ErrInsufficientEscrow is returned when the payer's escrow can't cover the max cost.
	ErrInsufficientEscrow = ledger.ErrInsufficientEscrow
	// ErrSponsorRejected is returned when the sponsor refused or is not eligible.
	ErrSponsorRejected = errors.New("sponsor rejected")
	// ErrExecutionReverted is recorded when the call payload failed.
	ErrExecutionReverted = errors.New("execution reverted")
	// ErrPostSettlementFailed is recorded when the sponsor failed to settle.
	ErrPostSettlementFailed = errors.New("post settlement failed")
	// ErrStaleOrDeviatedPrice is returned by sponsors that can't trust their price data.
	ErrStaleOrDeviatedPrice = errors.New("stale or deviated price")
	// ErrReentrancy is returned when the batch surface is entered from an executing operation.
	ErrReentrancy = errors.New("reentrant batch submission")

	// ErrBudgetExceeded is returned when the compute budget of a phase is exhausted.
	ErrBudgetExceeded = errors.New("compute budget exceeded")
	// ErrMalformed is returned when a payload can't be decoded or fails static checks.
	ErrMalformed = errors.New("malformed")
	// ErrNotAccount is returned when the sender is bound to a template that doesn't validate operations.
	ErrNotAccount = errors.New("not an account")
	// ErrNotSponsor is returned when the sponsor is bound to a template that doesn't sponsor operations.
	ErrNotSponsor = errors.New("not a sponsor")
	// ErrNoCode is returned when a payload is sent to an address without a template.
	ErrNoCode = errors.New("no code at address")
	// ErrUnauthorized is returned when the caller is not allowed to invoke a method.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCallDepth is returned when nested calls go too deep.
	ErrCallDepth = errors.New("call depth exceeded")
	// ErrInsufficientFunds is returned when a native balance can't cover a transfer.
	ErrInsufficientFunds = state.ErrInsufficientFunds
	// ErrAccountExists is returned when spawning over an existing instance.
	ErrAccountExists = state.ErrAccountExists
	// ErrInternal is returned when the state can't be read or written.
	ErrInternal = errors.New("internal")
)
