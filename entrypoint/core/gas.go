package core

import "math/bits"

const (
	// INTRINSIC is charged once per operation from the preamble budget.
	INTRINSIC = 21000
	// TXDATA is a cost for the encoded operation. Charged per 8 byte.
	TXDATA = 128
	// DEPLOY is a cost for binding an address to a template.
	DEPLOY = 30000
	// LOAD is a cost for reading a state entry.
	LOAD = 182
	// UPDATE is a cost for writing a state entry.
	UPDATE = 725
	// VERIFY is a cost of one signature verification or recovery.
	VERIFY = 3000
	// CALL is a cost of dispatching a nested call.
	CALL = 700
	// TRANSFER is a cost of moving native units between balances.
	TRANSFER = 2500
)

// Schedule is the cost of every metered step.
type Schedule struct {
	Intrinsic uint64 `mapstructure:"intrinsic"`
	TxData    uint64 `mapstructure:"txdata"`
	Deploy    uint64 `mapstructure:"deploy"`
	Load      uint64 `mapstructure:"load"`
	Update    uint64 `mapstructure:"update"`
	Verify    uint64 `mapstructure:"verify"`
	Call      uint64 `mapstructure:"call"`
	Transfer  uint64 `mapstructure:"transfer"`
}

// DefaultSchedule returns the default costs.
func DefaultSchedule() Schedule {
	return Schedule{
		Intrinsic: INTRINSIC,
		TxData:    TXDATA,
		Deploy:    DEPLOY,
		Load:      LOAD,
		Update:    UPDATE,
		Verify:    VERIFY,
		Call:      CALL,
		Transfer:  TRANSFER,
	}
}

// IntrinsicCost is the minimal preamble budget of an operation encoded into size bytes.
func (s Schedule) IntrinsicCost(size int) uint64 {
	return s.Intrinsic + SizeGas(s.TxData, size)
}

// SizeGas returns the cost of size bytes charged per 8 byte.
func SizeGas(gas uint64, size int) uint64 {
	return gas * ((uint64(size) + 7) / 8)
}

// Meter tracks compute units consumed against a limit.
type Meter struct {
	limit, used uint64
}

// NewMeter creates meter with limit.
func NewMeter(limit uint64) *Meter {
	return &Meter{limit: limit}
}

// Consume gas. When the limit is reached the meter is exhausted and ErrBudgetExceeded returned.
func (m *Meter) Consume(gas uint64) error {
	total, carry := bits.Add64(m.used, gas, 0)
	if carry != 0 || total > m.limit {
		m.used = m.limit
		return ErrBudgetExceeded
	}
	m.used = total
	return nil
}

// Used returns consumed gas.
func (m *Meter) Used() uint64 {
	return m.used
}

// Remaining returns gas left before the limit.
func (m *Meter) Remaining() uint64 {
	return m.limit - m.used
}

// Limit of the meter.
func (m *Meter) Limit() uint64 {
	return m.limit
}
