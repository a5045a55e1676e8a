package factory_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core/coretest"
	"github.com/spacemeshos/go-entrypoint/entrypoint/factory"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	sdksimple "github.com/spacemeshos/go-entrypoint/entrypoint/sdk/simple"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
)

var factoryAddress = core.Address{0xfa}

func newEnv(tb testing.TB) *core.Env {
	reg := registry.New()
	factory.Register(reg)
	simple.Register(reg)
	env := coretest.NewEnv(tb, reg)
	require.NoError(tb, env.State.Spawn(factoryAddress, factory.TemplateAddress, simple.TemplateAddress.Bytes()))
	return env
}

func TestComputeAddress(t *testing.T) {
	engine, impl := core.Address{0xe}, simple.TemplateAddress
	owner, salt := []byte{1}, core.Hash32{2}
	address := factory.ComputeAddress(engine, impl, owner, salt)
	require.Equal(t, address, factory.ComputeAddress(engine, impl, owner, salt))

	require.NotEqual(t, address, factory.ComputeAddress(core.Address{0xf}, impl, owner, salt))
	require.NotEqual(t, address, factory.ComputeAddress(engine, core.Address{1}, owner, salt))
	require.NotEqual(t, address, factory.ComputeAddress(engine, impl, []byte{2}, salt))
	require.NotEqual(t, address, factory.ComputeAddress(engine, impl, owner, core.Hash32{3}))
}

func TestCreateAccount(t *testing.T) {
	env := newEnv(t)
	instance, ok := coretest.Load(t, env, factoryAddress).(*factory.Factory)
	require.True(t, ok)
	require.Equal(t, simple.TemplateAddress, instance.Implementation)

	owner := sdksimple.State(core.Address{7})
	salt := core.Hash32{1}
	expected := factory.ComputeAddress(env.Address, simple.TemplateAddress, owner, salt)

	address, err := instance.CreateAccount(coretest.Host(env, factoryAddress, core.Address{9}), owner, salt)
	require.NoError(t, err)
	require.Equal(t, expected, address)
	account := env.State.GetAccount(address)
	require.True(t, account.HasCode())
	require.Equal(t, simple.TemplateAddress, *account.Template)
	require.Equal(t, owner, account.State)

	again, err := instance.CreateAccount(coretest.Host(env, factoryAddress, core.Address{9}), owner, salt)
	require.NoError(t, err)
	require.Equal(t, address, again)

	_, err = instance.CreateAccount(coretest.Host(env, factoryAddress, core.Address{9}), []byte{1}, salt)
	require.ErrorIs(t, err, core.ErrInternal)
}

func TestDeploy(t *testing.T) {
	env := newEnv(t)
	instance := coretest.Load(t, env, factoryAddress).(*factory.Factory)
	owner := sdksimple.State(core.Address{7})
	salt := core.Hash32{3}

	payload := sdksimple.Deployment(factoryAddress, core.Address{7}, salt)
	require.Equal(t, factoryAddress.Bytes(), payload[:len(factoryAddress)])
	address, err := instance.Deploy(coretest.Host(env, factoryAddress, env.Address), payload[len(factoryAddress):])
	require.NoError(t, err)
	require.Equal(t, factory.ComputeAddress(env.Address, simple.TemplateAddress, owner, salt), address)

	_, err = instance.Deploy(coretest.Host(env, factoryAddress, env.Address), []byte{1})
	require.ErrorIs(t, err, core.ErrMalformed)
}

func TestExec(t *testing.T) {
	env := newEnv(t)
	host := coretest.Host(env, core.Address{9}, core.Address{})
	owner := sdksimple.State(core.Address{7})
	salt := core.Hash32{4}

	out, err := host.Call(factoryAddress, 0, core.Payload(factory.MethodCreateAccount,
		&factory.CreateArguments{Owner: owner, Salt: salt}))
	require.NoError(t, err)
	require.Equal(t, factory.ComputeAddress(env.Address, simple.TemplateAddress, owner, salt).Bytes(), out)

	_, err = host.Call(factoryAddress, 0, []byte{1})
	require.ErrorIs(t, err, core.ErrMalformed)
}

func TestMalformedState(t *testing.T) {
	reg := registry.New()
	factory.Register(reg)
	_, err := reg.Get(factory.TemplateAddress).Load([]byte{1, 2})
	require.ErrorIs(t, err, core.ErrInternal)
}
