// Package coretest provides an environment for exercising templates without the engine.
package coretest

import (
	"fmt"
	"testing"
	"time"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/ledger"
	"github.com/spacemeshos/go-entrypoint/log/logtest"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/state"
)

type loader struct {
	state    *state.StateDB
	registry *registry.Registry
}

func (l *loader) Load(address core.Address) (core.Template, error) {
	account := l.state.GetAccount(address)
	if !account.HasCode() {
		return nil, fmt.Errorf("%w: %v", core.ErrNoCode, address)
	}
	handler := l.registry.Get(*account.Template)
	if handler == nil {
		return nil, fmt.Errorf("%w: unknown template %v", core.ErrInternal, *account.Template)
	}
	return handler.Load(account.State)
}

// NewEnv creates an in-memory environment that resolves instances with reg.
func NewEnv(tb testing.TB, reg *registry.Registry) *core.Env {
	st := state.NewFromDB(sql.InMemory())
	return &core.Env{
		State:     st,
		Escrow:    ledger.NewEscrow(st),
		Stakes:    ledger.NewStakes(st),
		Templates: reg,
		Instances: &loader{state: st, registry: reg},
		Address:   core.DefaultEngineAddress,
		ChainID:   1,
		Now:       time.Unix(1000, 0),
		Schedule:  core.DefaultSchedule(),
		Venues:    map[core.Address]struct{}{},
		Logger:    logtest.New(tb),
	}
}

// Host creates a context for self invoked by caller with a generous budget.
func Host(env *core.Env, self, caller core.Address) *core.Context {
	return core.NewContext(env, self, caller, core.NewMeter(1<<30))
}

// Load the instance bound to address.
func Load(tb testing.TB, env *core.Env, address core.Address) core.Template {
	tb.Helper()
	tmpl, err := env.Instances.Load(address)
	if err != nil {
		tb.Fatalf("load %v: %v", address, err)
	}
	return tmpl
}
