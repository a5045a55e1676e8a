package types

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Account is the persisted part of an address: native balance and the
// template binding with its immutable instance state.
type Account struct {
	Address  Address
	Balance  uint64
	Template *Address
	State    []byte
}

// HasCode is true if the account is bound to a template.
func (a *Account) HasCode() bool {
	return a.Template != nil
}

// MarshalLogObject implements encoding for the account.
func (a *Account) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("address", a.Address.Hex())
	encoder.AddUint64("balance", a.Balance)
	if a.Template != nil {
		encoder.AddString("template", a.Template.Hex())
	}
	return nil
}

// Stake is the collateral bonded by an address.
type Stake struct {
	Amount       uint64
	UnstakeDelay time.Duration
	// WithdrawReady is zero while the stake is locked, and the earliest
	// withdrawal time after unlock was requested.
	WithdrawReady time.Time
}

// Active is true if the stake is locked and counts as collateral.
func (s Stake) Active() bool {
	return s.Amount > 0 && s.WithdrawReady.IsZero()
}

// MarshalLogObject implements encoding for the stake.
func (s Stake) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddUint64("amount", s.Amount)
	encoder.AddDuration("unstake_delay", s.UnstakeDelay)
	if !s.WithdrawReady.IsZero() {
		encoder.AddTime("withdraw_ready", s.WithdrawReady)
	}
	return nil
}
