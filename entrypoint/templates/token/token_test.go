package token_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core/coretest"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
)

var (
	minter  = core.Address{1}
	alice   = core.Address{2}
	bob     = core.Address{3}
	asset   = core.Address{0xa5}
	spender = core.Address{4}
)

type tester struct {
	env *core.Env
}

func newTester(tb testing.TB) *tester {
	reg := registry.New()
	token.Register(reg)
	env := coretest.NewEnv(tb, reg)
	require.NoError(tb, env.State.Spawn(asset, token.TemplateAddress,
		codec.MustEncode(&token.SpawnArguments{Minter: minter})))
	return &tester{env: env}
}

func (tt *tester) call(caller core.Address, payload []byte) ([]byte, error) {
	return coretest.Host(tt.env, caller, core.Address{}).Call(asset, 0, payload)
}

func (tt *tester) balance(tb testing.TB, owner core.Address) uint64 {
	tb.Helper()
	balance, err := token.BalanceOf(coretest.Host(tt.env, owner, core.Address{}), asset, owner)
	require.NoError(tb, err)
	return balance
}

func (tt *tester) allowance(tb testing.TB, owner, spender core.Address) uint64 {
	tb.Helper()
	allowance, err := token.Allowance(coretest.Host(tt.env, owner, core.Address{}), asset, owner, spender)
	require.NoError(tb, err)
	return allowance
}

func TestMint(t *testing.T) {
	tt := newTester(t)
	_, err := tt.call(alice, token.Mint(alice, 100))
	require.ErrorIs(t, err, core.ErrUnauthorized)
	require.Zero(t, tt.balance(t, alice))

	_, err = tt.call(minter, token.Mint(alice, 100))
	require.NoError(t, err)
	require.EqualValues(t, 100, tt.balance(t, alice))

	_, err = tt.call(minter, token.Mint(alice, math.MaxUint64))
	require.ErrorIs(t, err, core.ErrMalformed)
	require.EqualValues(t, 100, tt.balance(t, alice))
}

func TestTransfer(t *testing.T) {
	tt := newTester(t)
	_, err := tt.call(minter, token.Mint(alice, 100))
	require.NoError(t, err)

	_, err = tt.call(alice, token.Transfer(bob, 30))
	require.NoError(t, err)
	require.EqualValues(t, 70, tt.balance(t, alice))
	require.EqualValues(t, 30, tt.balance(t, bob))

	_, err = tt.call(bob, token.Transfer(alice, 31))
	require.ErrorIs(t, err, core.ErrInsufficientFunds)
	require.EqualValues(t, 30, tt.balance(t, bob))

	_, err = tt.call(alice, token.Transfer(alice, 70))
	require.NoError(t, err)
	require.EqualValues(t, 70, tt.balance(t, alice))

	_, err = tt.call(bob, token.Transfer(alice, 30))
	require.NoError(t, err)
	require.Zero(t, tt.balance(t, bob))
	require.Empty(t, tt.env.State.GetStorage(asset, core.StorageKey([]byte("balance"), bob[:])))
}

func TestTransferFrom(t *testing.T) {
	tt := newTester(t)
	_, err := tt.call(minter, token.Mint(alice, 100))
	require.NoError(t, err)

	_, err = tt.call(spender, token.TransferFrom(alice, bob, 10))
	require.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = tt.call(alice, token.Approve(spender, 50))
	require.NoError(t, err)
	require.EqualValues(t, 50, tt.allowance(t, alice, spender))

	_, err = tt.call(spender, token.TransferFrom(alice, bob, 20))
	require.NoError(t, err)
	require.EqualValues(t, 30, tt.allowance(t, alice, spender))
	require.EqualValues(t, 80, tt.balance(t, alice))
	require.EqualValues(t, 20, tt.balance(t, bob))

	_, err = tt.call(spender, token.TransferFrom(alice, bob, 31))
	require.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = tt.call(bob, token.TransferFrom(alice, bob, 1))
	require.ErrorIs(t, err, core.ErrUnauthorized)

	// reverted with the failed move
	_, err = tt.call(alice, token.Approve(spender, 1000))
	require.NoError(t, err)
	_, err = tt.call(spender, token.TransferFrom(alice, bob, 500))
	require.ErrorIs(t, err, core.ErrInsufficientFunds)
	require.EqualValues(t, 1000, tt.allowance(t, alice, spender))
}

func TestQueries(t *testing.T) {
	tt := newTester(t)
	_, err := tt.call(minter, token.Mint(alice, 42))
	require.NoError(t, err)
	_, err = tt.call(alice, token.Approve(bob, 7))
	require.NoError(t, err)

	out, err := tt.call(bob, core.Payload(token.MethodBalanceOf, &token.TransferArguments{To: alice}))
	require.NoError(t, err)
	var amount token.Amount
	require.NoError(t, codec.Decode(out, &amount))
	require.EqualValues(t, 42, amount)

	out, err = tt.call(bob, core.Payload(token.MethodAllowance, &token.TransferFromArguments{From: alice, To: bob}))
	require.NoError(t, err)
	require.NoError(t, codec.Decode(out, &amount))
	require.EqualValues(t, 7, amount)

	_, err = tt.call(bob, []byte{0xff})
	require.ErrorIs(t, err, core.ErrMalformed)
	_, err = tt.call(bob, []byte{token.MethodTransfer, 1})
	require.ErrorIs(t, err, core.ErrMalformed)
}
