package simple_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core/coretest"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	sdksimple "github.com/spacemeshos/go-entrypoint/entrypoint/sdk/simple"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
	"github.com/spacemeshos/go-entrypoint/signing"
)

type tester struct {
	env     *core.Env
	owner   *signing.EthSigner
	address core.Address
	account *simple.Account
}

func newTester(tb testing.TB) *tester {
	reg := registry.New()
	simple.Register(reg)
	env := coretest.NewEnv(tb, reg)
	owner, err := signing.NewEthSigner()
	require.NoError(tb, err)
	address := core.Address{1}
	require.NoError(tb, env.State.Spawn(address, simple.TemplateAddress,
		codec.MustEncode(&simple.SpawnArguments{Owner: owner.Address()})))
	account, ok := coretest.Load(tb, env, address).(*simple.Account)
	require.True(tb, ok)
	return &tester{env: env, owner: owner, address: address, account: account}
}

func (tt *tester) validate(tb testing.TB, op *core.Operation, missing uint64) core.ValidationData {
	tb.Helper()
	host := coretest.Host(tt.env, tt.address, tt.env.Address)
	data, err := tt.account.ValidateOperation(host, op, op.Hash(tt.env.Address, tt.env.ChainID), missing)
	require.NoError(tb, err)
	return data
}

func (tt *tester) exec(caller core.Address, payload []byte) error {
	_, err := tt.account.Exec(coretest.Host(tt.env, tt.address, caller), payload)
	return err
}

func transfer(to core.Address, value uint64) []core.Call {
	return []core.Call{{Target: to, Value: value}}
}

func TestLoad(t *testing.T) {
	reg := registry.New()
	simple.Register(reg)
	_, err := reg.Get(simple.TemplateAddress).Load([]byte{1, 2})
	require.ErrorIs(t, err, core.ErrInternal)
	require.Panics(t, func() { simple.Register(reg) })
}

func TestOwnerSignature(t *testing.T) {
	tt := newTester(t)
	seq := types.NewSequence(types.SequenceKey{}, 0)

	op := sdksimple.Execute(tt.owner, tt.address, seq, transfer(core.Address{2}, 1))
	require.Equal(t, core.Valid(), tt.validate(t, op, 0))

	other, err := signing.NewEthSigner()
	require.NoError(t, err)
	forged := sdksimple.Execute(other, tt.address, seq, transfer(core.Address{2}, 1))
	require.True(t, tt.validate(t, forged, 0).SignatureFailed())

	op.Authorization = []byte{1, 2, 3}
	require.True(t, tt.validate(t, op, 0).SignatureFailed())

	tampered := sdksimple.Execute(tt.owner, tt.address, seq, transfer(core.Address{2}, 1))
	tampered.CallBudget++
	require.True(t, tt.validate(t, tampered, 0).SignatureFailed())
}

func TestMissingFunds(t *testing.T) {
	tt := newTester(t)
	require.NoError(t, tt.env.State.AddBalance(tt.address, 100))
	op := sdksimple.Execute(tt.owner, tt.address, types.NewSequence(types.SequenceKey{}, 0), nil)

	require.Equal(t, core.Valid(), tt.validate(t, op, 40))
	require.EqualValues(t, 40, tt.env.Escrow.BalanceOf(tt.address))
	require.EqualValues(t, 60, tt.env.State.GetBalance(tt.address))

	// failed top-up is left to the engine
	require.Equal(t, core.Valid(), tt.validate(t, op, 1000))
	require.EqualValues(t, 40, tt.env.Escrow.BalanceOf(tt.address))
}

func TestSessions(t *testing.T) {
	tt := newTester(t)
	session, err := signing.NewEthSigner()
	require.NoError(t, err)
	seq := types.NewSequence(types.SequenceKey{1}, 0)

	op := sdksimple.Execute(session, tt.address, seq, transfer(core.Address{2}, 1))
	require.True(t, tt.validate(t, op, 0).SignatureFailed())

	require.NoError(t, tt.exec(tt.address, sdksimple.AddSession(session.Address(), 10, 2000)))
	require.Equal(t, core.Window(10, 2000), tt.validate(t, op, 0))

	for _, tc := range []struct {
		desc string
		call []byte
	}{
		{"call to self", sdksimple.Execute(session, tt.address, seq, transfer(tt.address, 1)).Call},
		{"call to engine", sdksimple.Execute(session, tt.address, seq, transfer(tt.env.Address, 1)).Call},
		{"add session", sdksimple.AddSession(session.Address(), 0, 0)},
		{"remove session", sdksimple.RemoveSession(tt.owner.Address())},
		{"malformed", []byte{simple.MethodExecute, 0xff}},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			op := sdksimple.Operation(session, tt.address, seq, tc.call)
			require.True(t, tt.validate(t, op, 0).SignatureFailed())
		})
	}

	require.NoError(t, tt.exec(tt.env.Address, sdksimple.RemoveSession(session.Address())))
	require.True(t, tt.validate(t, op, 0).SignatureFailed())

	err = tt.exec(tt.address, sdksimple.AddSession(session.Address(), 20, 10))
	require.ErrorIs(t, err, core.ErrMalformed)
}

func TestExec(t *testing.T) {
	tt := newTester(t)
	require.NoError(t, tt.env.State.AddBalance(tt.address, 100))
	execute := sdksimple.Execute(tt.owner, tt.address, types.NewSequence(types.SequenceKey{}, 0),
		transfer(core.Address{2}, 30)).Call

	require.ErrorIs(t, tt.exec(core.Address{9}, execute), core.ErrUnauthorized)
	require.ErrorIs(t, tt.exec(tt.env.Address, []byte{0xff}), core.ErrMalformed)
	require.Error(t, tt.exec(tt.env.Address, nil))

	require.NoError(t, tt.exec(tt.env.Address, execute))
	require.EqualValues(t, 70, tt.env.State.GetBalance(tt.address))
	require.EqualValues(t, 30, tt.env.State.GetBalance(core.Address{2}))

	require.ErrorIs(t, tt.exec(tt.address, sdksimple.Execute(tt.owner, tt.address,
		types.NewSequence(types.SequenceKey{}, 1), transfer(core.Address{2}, 1000)).Call), core.ErrInsufficientFunds)
}
