package swap_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core/coretest"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/oracle"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/oracle/mocks"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/swap"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
)

var (
	owner         = core.Address{1}
	account       = core.Address{2}
	asset         = core.Address{0xa5}
	oracleAddress = core.Address{0x0c}
	venueAddress  = core.Address{0x0d}
	sponsorAddr   = core.Address{0x5a}
)

type tester struct {
	env *core.Env
	reg *registry.Registry
	src *mocks.MockPriceSource
}

func newTester(tb testing.TB) *tester {
	ctrl := gomock.NewController(tb)
	src := mocks.NewMockPriceSource(ctrl)
	liq := mocks.NewMockLiquidity(ctrl)
	reg := registry.New()
	token.Register(reg)
	swap.Register(reg, oracle.Sources{oracleAddress: src}, oracle.Venues{venueAddress: liq})
	env := coretest.NewEnv(tb, reg)
	require.NoError(tb, env.State.Spawn(asset, token.TemplateAddress,
		codec.MustEncode(&token.SpawnArguments{Minter: owner})))
	_, err := coretest.Host(env, owner, core.Address{}).Call(asset, 0, token.Mint(account, 1_000_000))
	require.NoError(tb, err)
	_, err = coretest.Host(env, account, core.Address{}).Call(asset, 0, token.Approve(sponsorAddr, 1_000_000))
	require.NoError(tb, err)
	return &tester{env: env, reg: reg, src: src}
}

func (tt *tester) spawn(tb testing.TB, args swap.SpawnArguments) {
	args.Owner = owner
	args.Asset = asset
	args.Oracle = oracleAddress
	args.Venue = venueAddress
	require.NoError(tb, tt.env.State.Spawn(sponsorAddr, swap.TemplateAddress, codec.MustEncode(&args)))
}

func (tt *tester) validate(tb testing.TB) error {
	tb.Helper()
	sp := coretest.Load(tb, tt.env, sponsorAddr).(core.Sponsor)
	op := &core.Operation{Sender: account, Sponsorship: sponsorAddr.Bytes()}
	_, _, err := sp.ValidateSponsorship(coretest.Host(tt.env, sponsorAddr, tt.env.Address), op, core.Hash32{}, 1000)
	return err
}

func TestCacheOutlivingQuoteAge(t *testing.T) {
	tt := newTester(t)
	state := codec.MustEncode(&swap.SpawnArguments{
		Owner:    owner,
		Asset:    asset,
		Oracle:   oracleAddress,
		Venue:    venueAddress,
		CacheTTL: 600,
		MaxAge:   60,
	})
	_, err := tt.reg.Get(swap.TemplateAddress).Load(state)
	require.ErrorIs(t, err, core.ErrInternal)

	err = coretest.Host(tt.env, owner, owner).Spawn(core.Address{0x5b}, swap.TemplateAddress, state)
	require.ErrorIs(t, err, core.ErrInternal)
}

func TestCachedPriceExpires(t *testing.T) {
	tt := newTester(t)
	tt.spawn(t, swap.SpawnArguments{CacheTTL: 60, MaxAge: 60, MaxDeviationBps: 100})

	quoted := tt.env.Now.Add(-50 * time.Second)
	tt.src.EXPECT().Quote(asset).Return(oracle.Quote{Price: oracle.Denominator, UpdatedAt: quoted}, nil).Times(2)
	require.NoError(t, tt.validate(t))

	// served from the cache
	tt.env.Now = tt.env.Now.Add(10 * time.Second)
	require.NoError(t, tt.validate(t))

	// the cached quote is older than max age, the source still returns it
	tt.env.Now = tt.env.Now.Add(time.Second)
	require.ErrorIs(t, tt.validate(t), core.ErrStaleOrDeviatedPrice)

	tt.src.EXPECT().Quote(asset).Return(oracle.Quote{Price: oracle.Denominator, UpdatedAt: tt.env.Now}, nil).Times(1)
	require.NoError(t, tt.validate(t))
}
