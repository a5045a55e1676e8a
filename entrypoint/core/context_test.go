package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/ledger"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/state"
)

// funcTemplate runs exec for every call.
type funcTemplate func(host Host, payload []byte) ([]byte, error)

func (f funcTemplate) Exec(host Host, payload []byte) ([]byte, error) {
	return f(host, payload)
}

type staticHandler struct {
	template Template
}

func (h staticHandler) Load([]byte) (Template, error) {
	return h.template, nil
}

type lookup map[Address]Handler

func (l lookup) Get(address Address) Handler {
	return l[address]
}

type instances struct {
	st        *state.StateDB
	templates lookup
}

func (i *instances) Load(address Address) (Template, error) {
	account := i.st.GetAccount(address)
	if !account.HasCode() {
		return nil, ErrNoCode
	}
	return i.templates[*account.Template].Load(account.State)
}

func newTestEnv(tb testing.TB, templates lookup) *Env {
	st := state.NewFromDB(sql.InMemory())
	return &Env{
		State:     st,
		Escrow:    ledger.NewEscrow(st),
		Stakes:    ledger.NewStakes(st),
		Templates: templates,
		Instances: &instances{st: st, templates: templates},
		Address:   Address{0xe},
		ChainID:   1,
		Now:       time.Unix(1000, 0),
		Schedule:  Schedule{Load: 1, Update: 2, Call: 3, Transfer: 4, Deploy: 5},
		Venues:    map[Address]struct{}{},
		Logger:    zap.NewNop(),
	}
}

func TestContextCall(t *testing.T) {
	template := Address{0x10}
	recursive := Address{0x11}
	failing := errors.New("failing")
	var depth int
	templates := lookup{
		template: staticHandler{funcTemplate(func(host Host, payload []byte) ([]byte, error) {
			if err := host.Set(Hash32{1}, payload); err != nil {
				return nil, err
			}
			if len(payload) > 0 && payload[0] == 0xff {
				return nil, failing
			}
			return []byte{host.Caller()[0]}, nil
		})},
		recursive: staticHandler{funcTemplate(func(host Host, payload []byte) ([]byte, error) {
			depth++
			return host.Call(host.Self(), 0, payload)
		})},
	}
	env := newTestEnv(t, templates)
	self, target := Address{1}, Address{2}
	require.NoError(t, env.State.AddBalance(self, 100))
	require.NoError(t, env.State.Spawn(target, template, nil))

	t.Run("success", func(t *testing.T) {
		meter := NewMeter(100)
		out, err := NewContext(env, self, Address{}, meter).Call(target, 10, []byte{1})
		require.NoError(t, err)
		require.Equal(t, []byte{1}, out)
		require.EqualValues(t, 90, env.State.GetBalance(self))
		require.EqualValues(t, 10, env.State.GetBalance(target))
		require.Equal(t, []byte{1}, env.State.GetStorage(target, Hash32{1}))
		// call, transfer and update
		require.EqualValues(t, 9, meter.Used())
	})
	t.Run("failed call is reverted", func(t *testing.T) {
		meter := NewMeter(100)
		_, err := NewContext(env, self, Address{}, meter).Call(target, 10, []byte{0xff})
		require.ErrorIs(t, err, failing)
		require.EqualValues(t, 90, env.State.GetBalance(self))
		require.Equal(t, []byte{1}, env.State.GetStorage(target, Hash32{1}))
		require.EqualValues(t, 9, meter.Used())
	})
	t.Run("no code", func(t *testing.T) {
		_, err := NewContext(env, self, Address{}, NewMeter(100)).Call(Address{3}, 0, []byte{1})
		require.ErrorIs(t, err, ErrNoCode)
		out, err := NewContext(env, self, Address{}, NewMeter(100)).Call(Address{3}, 5, nil)
		require.NoError(t, err)
		require.Nil(t, out)
		require.EqualValues(t, 5, env.State.GetBalance(Address{3}))
	})
	t.Run("insufficient funds", func(t *testing.T) {
		_, err := NewContext(env, self, Address{}, NewMeter(100)).Call(target, 1000, nil)
		require.ErrorIs(t, err, ErrInsufficientFunds)
	})
	t.Run("budget", func(t *testing.T) {
		meter := NewMeter(5)
		_, err := NewContext(env, self, Address{}, meter).Call(target, 1, []byte{1})
		require.ErrorIs(t, err, ErrBudgetExceeded)
		require.EqualValues(t, 5, meter.Used())
	})
	t.Run("depth", func(t *testing.T) {
		addr := Address{4}
		require.NoError(t, env.State.Spawn(addr, recursive, nil))
		_, err := NewContext(env, self, Address{}, NewMeter(1<<20)).Call(addr, 0, []byte{1})
		require.ErrorIs(t, err, ErrCallDepth)
		require.Equal(t, MaxCallDepth, depth)
	})
	t.Run("engine without handler", func(t *testing.T) {
		_, err := NewContext(env, self, Address{}, NewMeter(100)).Call(env.Address, 0, []byte{1})
		require.ErrorIs(t, err, ErrNoCode)
	})
}

func TestContextSpawn(t *testing.T) {
	template := Address{0x10}
	env := newTestEnv(t, lookup{template: staticHandler{funcTemplate(nil)}})
	host := NewContext(env, Address{1}, Address{}, NewMeter(100))

	require.NoError(t, host.Spawn(Address{2}, template, []byte{1}))
	require.ErrorIs(t, host.Spawn(Address{2}, template, nil), ErrAccountExists)
	require.ErrorIs(t, host.Spawn(Address{3}, Address{0x20}, nil), ErrNoCode)
	require.ErrorIs(t, host.Spawn(template, template, nil), ErrAccountExists)
	exists, err := host.Exists(Address{2})
	require.NoError(t, err)
	require.True(t, exists)
}

func TestContextEscrow(t *testing.T) {
	env := newTestEnv(t, lookup{})
	self, venue := Address{1}, Address{0xee}
	require.NoError(t, env.State.AddBalance(self, 100))
	require.NoError(t, env.State.AddBalance(venue, 100))
	host := NewContext(env, self, Address{}, NewMeter(100))

	require.NoError(t, host.Deposit(0))
	require.NoError(t, host.Deposit(40))
	escrow, err := host.EscrowOf(self)
	require.NoError(t, err)
	require.EqualValues(t, 40, escrow)
	require.EqualValues(t, 60, env.State.GetBalance(self))

	require.ErrorIs(t, host.Exchange(venue, 10), ErrUnauthorized)
	env.Venues[venue] = struct{}{}
	require.NoError(t, host.Exchange(venue, 10))
	require.EqualValues(t, 50, env.Escrow.BalanceOf(self))
	require.EqualValues(t, 90, env.State.GetBalance(venue))
	require.ErrorIs(t, host.Exchange(venue, 1000), ErrInsufficientFunds)
}

func TestStorageHelpers(t *testing.T) {
	env := newTestEnv(t, lookup{})
	host := NewContext(env, Address{1}, Address{}, NewMeter(100))
	key := StorageKey([]byte("counter"))

	value, err := GetUint64(host, key)
	require.NoError(t, err)
	require.Zero(t, value)
	require.NoError(t, SetUint64(host, key, 7))
	value, err = GetUint64(host, key)
	require.NoError(t, err)
	require.EqualValues(t, 7, value)
	require.NoError(t, SetUint64(host, key, 0))
	require.Empty(t, env.State.GetStorage(Address{1}, key))

	require.NoError(t, host.Set(key, []byte{1, 2}))
	_, err = GetUint64(host, key)
	require.ErrorIs(t, err, ErrInternal)

	calls := Calls{{Target: Address{2}, Value: 1, Data: []byte{1}}}
	require.NoError(t, SetObject(host, key, &calls))
	var decoded Calls
	found, err := GetObject(host, key, &decoded)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, calls, decoded)
}
