package entrypoint

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sdk"
	sdksimple "github.com/spacemeshos/go-entrypoint/entrypoint/sdk/simple"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
	"github.com/spacemeshos/go-entrypoint/log/logtest"
	"github.com/spacemeshos/go-entrypoint/signing"
	"github.com/spacemeshos/go-entrypoint/sql"
)

const (
	testBalance = 1_000_000
	testEscrow  = 10_000_000
)

var genesisTime = time.Unix(1_700_000_000, 0)

func testSchedule() core.Schedule {
	return core.Schedule{Deploy: 5, Load: 1, Update: 1, Verify: 4, Call: 3, Transfer: 3}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Schedule = testSchedule()
	cfg.MinSponsorStake = 100
	cfg.MinUnstakeDelay = time.Hour
	return cfg
}

func newTester(tb testing.TB, opts ...Opt) *tester {
	clock := clockwork.NewFakeClockAt(genesisTime)
	all := append([]Opt{
		WithLogger(logtest.New(tb)),
		WithConfig(testConfig()),
		WithClock(clock),
	}, opts...)
	return &tester{
		TB:          tb,
		Engine:      New(sql.InMemory(), all...),
		clock:       clock,
		beneficiary: core.Address{0xbe, 0xef},
	}
}

type tester struct {
	testing.TB
	*Engine

	clock       clockwork.FakeClock
	beneficiary core.Address

	signers  []*signing.EthSigner
	accounts []core.Address
	seqs     []uint64
}

// addAccounts installs n single-owner accounts with balance and escrow.
func (t *tester) addAccounts(n int, balance, escrow uint64) *tester {
	genesis := make([]GenesisAccount, 0, n)
	for range n {
		signer, err := signing.NewEthSigner()
		require.NoError(t, err)
		address := core.Address{0xac, byte(len(t.accounts))}
		t.signers = append(t.signers, signer)
		t.accounts = append(t.accounts, address)
		t.seqs = append(t.seqs, 0)
		genesis = append(genesis, GenesisAccount{
			Address:  address,
			Balance:  balance,
			Escrow:   escrow,
			Template: &simple.TemplateAddress,
			State:    sdksimple.State(signer.Address()),
		})
	}
	require.NoError(t, t.ApplyGenesis(context.Background(), genesis))
	return t
}

// spawn installs an instance of the template.
func (t *tester) spawn(address, template core.Address, state codec.Encodable, balance, escrow uint64) *tester {
	var raw []byte
	if state != nil {
		raw = codec.MustEncode(state)
	}
	return t.spawnRaw(address, template, raw, balance, escrow)
}

// spawnRaw installs an instance of the template with state that is not scale encoded.
func (t *tester) spawnRaw(address, template core.Address, raw []byte, balance, escrow uint64) *tester {
	require.NoError(t, t.ApplyGenesis(context.Background(), []GenesisAccount{{
		Address:  address,
		Balance:  balance,
		Escrow:   escrow,
		Template: &template,
		State:    raw,
	}}))
	return t
}

func (t *tester) sdkOpts(opts ...sdk.Opt) []sdk.Opt {
	return append([]sdk.Opt{
		sdk.WithEngine(t.Address(), t.ChainID()),
		sdk.WithSchedule(t.cfg.Schedule),
		sdk.WithBudgets(10_000, 10_000),
	}, opts...)
}

func (t *tester) nextSeq(i int) core.Sequence {
	seq := types.NewSequence(types.SequenceKey{}, t.seqs[i])
	t.seqs[i]++
	return seq
}

// execute builds operation of account i that runs calls.
func (t *tester) execute(i int, calls []core.Call, opts ...sdk.Opt) core.Operation {
	return *sdksimple.Execute(t.signers[i], t.accounts[i], t.nextSeq(i), calls, t.sdkOpts(opts...)...)
}

// call builds operation of account i that invokes target with payload.
func (t *tester) call(i int, target core.Address, payload []byte, opts ...sdk.Opt) core.Operation {
	return t.execute(i, []core.Call{{Target: target, Data: payload}}, opts...)
}

func (t *tester) run(ops ...core.Operation) *Result {
	t.Helper()
	rst, err := t.Run(context.Background(), ops, t.beneficiary)
	require.NoError(t, err)
	require.Len(t, rst.Outcomes, len(ops))
	return rst
}

// mustSucceed runs ops and requires every outcome to be successful.
func (t *tester) mustSucceed(ops ...core.Operation) *Result {
	t.Helper()
	rst := t.run(ops...)
	for _, out := range rst.Outcomes {
		require.Equal(t, StatusSuccess, out.Status, "operation %d: %v", out.Index, out.Reason)
	}
	return rst
}

func (t *tester) escrowOf(address core.Address) uint64 {
	t.Helper()
	balance, err := t.BalanceOf(address)
	require.NoError(t, err)
	return balance
}

func (t *tester) balanceOf(address core.Address) uint64 {
	t.Helper()
	balance, err := t.Balance(address)
	require.NoError(t, err)
	return balance
}

func (t *tester) nextSequence(address core.Address) uint64 {
	t.Helper()
	next, err := t.NextSequence(address, types.SequenceKey{})
	require.NoError(t, err)
	return next
}

// query executes payload against target without persisting anything.
func (t *tester) query(caller, target core.Address, payload []byte) []byte {
	t.Helper()
	var out []byte
	require.NoError(t, t.view(func(env *core.Env) error {
		tmpl, err := env.Instances.Load(target)
		if err != nil {
			return err
		}
		out, err = tmpl.Exec(core.NewContext(env, target, caller, core.NewMeter(1<<20)), payload)
		return err
	}))
	return out
}

func (t *tester) tokenBalance(asset, owner core.Address) uint64 {
	t.Helper()
	var amount token.Amount
	raw := t.query(owner, asset, core.Payload(token.MethodBalanceOf, &token.TransferArguments{To: owner}))
	require.NoError(t, codec.Decode(raw, &amount))
	return uint64(amount)
}

// hooks implement a template that behaves as an account and as a sponsor.
type hooks struct {
	validate func(host core.Host, op *core.Operation) (core.ValidationData, error)
	sequence func(host core.Host, seq core.Sequence) error
	exec     func(host core.Host, payload []byte) ([]byte, error)
	sponsor  func(host core.Host, op *core.Operation, maxCost uint64) ([]byte, core.ValidationData, error)
	settle   func(host core.Host, mode core.SettleMode, context []byte, cost uint64) error
}

type hookHandler struct {
	hooks *hooks
}

func (h *hookHandler) Load([]byte) (core.Template, error) {
	if h.hooks.sequence != nil {
		return &hookSequence{hookTemplate{h.hooks}}, nil
	}
	return &hookTemplate{h.hooks}, nil
}

type hookTemplate struct {
	*hooks
}

func (t *hookTemplate) ValidateOperation(host core.Host, op *core.Operation, _ core.Hash32, _ uint64) (core.ValidationData, error) {
	if t.validate == nil {
		return core.Valid(), nil
	}
	return t.validate(host, op)
}

func (t *hookTemplate) Exec(host core.Host, payload []byte) ([]byte, error) {
	if t.exec == nil {
		return nil, nil
	}
	return t.exec(host, payload)
}

func (t *hookTemplate) ValidateSponsorship(host core.Host, op *core.Operation, _ core.Hash32, maxCost uint64) ([]byte, core.ValidationData, error) {
	if t.sponsor == nil {
		return nil, core.Valid(), nil
	}
	return t.sponsor(host, op, maxCost)
}

func (t *hookTemplate) Settle(host core.Host, mode core.SettleMode, context []byte, cost uint64) error {
	if t.settle == nil {
		return nil
	}
	return t.settle(host, mode, context, cost)
}

type hookSequence struct {
	hookTemplate
}

func (t *hookSequence) ValidateSequence(host core.Host, seq core.Sequence) error {
	return t.sequence(host, seq)
}

// hookOperation builds unsigned operation of a hook account.
func (t *tester) hookOperation(sender core.Address, counter uint64, call []byte, opts ...sdk.Opt) core.Operation {
	options := sdk.Apply(t.sdkOpts(opts...)...)
	return *sdk.Unsigned(options, sender, types.NewSequence(types.SequenceKey{}, counter), call, 0)
}

type validatorFunc func(op *core.Operation, opHash core.Hash32) error

func (f validatorFunc) ValidateSignature(op *core.Operation, opHash core.Hash32) error {
	return f(op, opHash)
}

// sponsoredBy attaches a sponsorship payload without sponsor data.
func sponsoredBy(sponsor core.Address) sdk.Opt {
	return sdk.WithSponsor(func(*core.Operation, core.Address, uint64) []byte {
		return sponsor.Bytes()
	})
}
