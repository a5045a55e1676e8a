package core

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/ledger"
	"github.com/spacemeshos/go-entrypoint/state"
)

// MaxCallDepth limits nesting of calls.
const MaxCallDepth = 16

// Env is shared by every context created while one batch is processed.
type Env struct {
	State     *state.StateDB
	Escrow    *ledger.Escrow
	Stakes    *ledger.Stakes
	Templates TemplateLookup
	Instances InstanceLoader
	Handler   EngineHandler

	Address  Address
	ChainID  uint64
	Now      time.Time
	Schedule Schedule
	// Venues may pay native units into escrow of sponsors that sold assets to them.
	Venues map[Address]struct{}
	Logger *zap.Logger
}

// Context serves a single template invocation.
type Context struct {
	env    *Env
	self   Address
	caller Address
	meter  *Meter
	depth  int
}

var _ Host = (*Context)(nil)

// NewContext creates context for self invoked by caller, all gas is charged to meter.
func NewContext(env *Env, self, caller Address, meter *Meter) *Context {
	return &Context{env: env, self: self, caller: caller, meter: meter}
}

func (c *Context) Self() Address       { return c.self }
func (c *Context) Caller() Address     { return c.caller }
func (c *Context) Engine() Address     { return c.env.Address }
func (c *Context) ChainID() uint64     { return c.env.ChainID }
func (c *Context) Now() time.Time      { return c.env.Now }
func (c *Context) Schedule() Schedule  { return c.env.Schedule }
func (c *Context) Logger() *zap.Logger { return c.env.Logger }

// Meter charged by this context.
func (c *Context) Meter() *Meter {
	return c.meter
}

// Consume gas from the meter.
func (c *Context) Consume(gas uint64) error {
	return c.meter.Consume(gas)
}

// Remaining gas of the meter.
func (c *Context) Remaining() uint64 {
	return c.meter.Remaining()
}

// Exists is true if the address is bound to a template.
func (c *Context) Exists(address Address) (bool, error) {
	if err := c.Consume(c.env.Schedule.Load); err != nil {
		return false, err
	}
	return c.env.State.Exist(address), nil
}

// Balance returns native balance of the address.
func (c *Context) Balance(address Address) (uint64, error) {
	if err := c.Consume(c.env.Schedule.Load); err != nil {
		return 0, err
	}
	return c.env.State.GetBalance(address), nil
}

// Transfer amount from native balance of self.
func (c *Context) Transfer(to Address, amount uint64) error {
	if err := c.Consume(c.env.Schedule.Transfer); err != nil {
		return err
	}
	return c.transfer(to, amount)
}

func (c *Context) transfer(to Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := c.env.State.SubBalance(c.self, amount); err != nil {
		return err
	}
	return c.env.State.AddBalance(to, amount)
}

// Get value from the storage of self.
func (c *Context) Get(key Hash32) ([]byte, error) {
	return c.Read(c.self, key)
}

// Set value in the storage of self, empty value deletes the key.
func (c *Context) Set(key Hash32, value []byte) error {
	if err := c.Consume(c.env.Schedule.Update); err != nil {
		return err
	}
	c.env.State.SetStorage(c.self, key, value)
	return nil
}

// Read value from the storage of any instance.
func (c *Context) Read(owner Address, key Hash32) ([]byte, error) {
	if err := c.Consume(c.env.Schedule.Load); err != nil {
		return nil, err
	}
	return c.env.State.GetStorage(owner, key), nil
}

// Call target with value and payload on behalf of self. Changes made by a failed
// call are reverted, gas consumed by it is not refunded.
func (c *Context) Call(target Address, value uint64, payload []byte) ([]byte, error) {
	if c.depth >= MaxCallDepth {
		return nil, ErrCallDepth
	}
	if err := c.Consume(c.env.Schedule.Call); err != nil {
		return nil, err
	}
	snapshot := c.env.State.Snapshot()
	out, err := c.call(target, value, payload)
	if err != nil {
		c.env.State.RevertToSnapshot(snapshot)
		return nil, err
	}
	return out, nil
}

func (c *Context) call(target Address, value uint64, payload []byte) ([]byte, error) {
	child := &Context{env: c.env, self: target, caller: c.self, meter: c.meter, depth: c.depth + 1}
	if target == c.env.Address {
		if c.env.Handler == nil {
			return nil, fmt.Errorf("%w: engine", ErrNoCode)
		}
		return c.env.Handler.ExecEngine(child, c.self, value, payload)
	}
	if value > 0 {
		if err := c.Consume(c.env.Schedule.Transfer); err != nil {
			return nil, err
		}
		if err := c.transfer(target, value); err != nil {
			return nil, err
		}
	}
	if len(payload) == 0 {
		return nil, nil
	}
	if !c.env.State.Exist(target) {
		return nil, fmt.Errorf("%w: %v", ErrNoCode, target)
	}
	tmpl, err := c.env.Instances.Load(target)
	if err != nil {
		return nil, err
	}
	return tmpl.Exec(child, payload)
}

// Spawn binds address to the template. State must be loadable by the template.
func (c *Context) Spawn(address, template Address, state []byte) error {
	if err := c.Consume(c.env.Schedule.Deploy); err != nil {
		return err
	}
	handler := c.env.Templates.Get(template)
	if handler == nil {
		return fmt.Errorf("%w: unknown template %v", ErrNoCode, template)
	}
	if c.env.Templates.Get(address) != nil {
		return fmt.Errorf("%w: %v is a template", ErrAccountExists, address)
	}
	if _, err := handler.Load(state); err != nil {
		return err
	}
	return c.env.State.Spawn(address, template, state)
}

// EscrowOf returns the prepaid balance of the address.
func (c *Context) EscrowOf(address Address) (uint64, error) {
	if err := c.Consume(c.env.Schedule.Load); err != nil {
		return 0, err
	}
	return c.env.Escrow.BalanceOf(address), nil
}

// Deposit amount of native balance of self into escrow of self.
func (c *Context) Deposit(amount uint64) error {
	if amount == 0 {
		return nil
	}
	if err := c.Consume(c.env.Schedule.Transfer); err != nil {
		return err
	}
	return c.env.Escrow.Deposit(c.self, c.self, amount)
}

// Exchange credits escrow of self with native units paid by a recognized venue.
func (c *Context) Exchange(venue Address, native uint64) error {
	if _, exist := c.env.Venues[venue]; !exist {
		return fmt.Errorf("%w: %v is not a recognized venue", ErrUnauthorized, venue)
	}
	if err := c.Consume(c.env.Schedule.Transfer); err != nil {
		return err
	}
	if err := c.env.State.SubBalance(venue, native); err != nil {
		return fmt.Errorf("venue %v: %w", venue, err)
	}
	return c.env.Escrow.Credit(c.self, native)
}
