// Package entrypoint implements the settlement engine: it validates batches of operations
// against their accounts and sponsors, executes them and settles their cost against escrow.
package entrypoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/factory"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/deposit"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/oracle"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/swap"
	"github.com/spacemeshos/go-entrypoint/entrypoint/sponsor/verifying"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/multisig"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/token"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/wallet"
	"github.com/spacemeshos/go-entrypoint/ledger"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/sql/batches"
	"github.com/spacemeshos/go-entrypoint/state"
)

// Opt is for changing Engine during initialization.
type Opt func(*Engine)

// WithLogger sets logger for Engine.
func WithLogger(logger *zap.Logger) Opt {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithConfig sets Config for Engine.
func WithConfig(cfg Config) Opt {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithClock sets the clock used for validity windows and stake delays.
func WithClock(clock clockwork.Clock) Opt {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithPriceSources makes price sources and liquidity venues available to sponsors.
func WithPriceSources(sources oracle.Sources, venues oracle.Venues) Opt {
	return func(e *Engine) {
		e.sources = sources
		e.venues = venues
	}
}

// WithExternalValidator recognizes marker returned by accounts that delegate signature checks.
func WithExternalValidator(marker core.Address, validator core.ExternalValidator) Opt {
	return func(e *Engine) {
		e.validators[marker] = validator
	}
}

// WithTemplate registers an additional template.
func WithTemplate(address core.Address, handler core.Handler) Opt {
	return func(e *Engine) {
		e.extra[address] = handler
	}
}

// Engine processes batches of operations. Batches are processed one at a time.
type Engine struct {
	logger *zap.Logger
	db     *sql.Database
	cfg    Config
	clock  clockwork.Clock

	sources    oracle.Sources
	venues     oracle.Venues
	validators map[core.Address]core.ExternalValidator
	extra      map[core.Address]core.Handler

	registry *registry.Registry
	cache    *instanceCache

	mu sync.Mutex
}

// New returns Engine instance.
func New(db *sql.Database, opts ...Opt) *Engine {
	e := &Engine{
		logger:     zap.NewNop(),
		db:         db,
		cfg:        DefaultConfig(),
		clock:      clockwork.NewRealClock(),
		sources:    oracle.Sources{},
		venues:     oracle.Venues{},
		validators: map[core.Address]core.ExternalValidator{},
		extra:      map[core.Address]core.Handler{},
		registry:   registry.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	simple.Register(e.registry)
	wallet.Register(e.registry)
	multisig.Register(e.registry)
	token.Register(e.registry)
	factory.Register(e.registry)
	verifying.Register(e.registry)
	deposit.Register(e.registry, e.sources)
	swap.Register(e.registry, e.sources, e.venues)
	for address, handler := range e.extra {
		e.registry.Register(address, handler)
	}
	size := e.cfg.InstanceCacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[[32]byte, core.Template](size)
	if err != nil {
		panic(fmt.Sprintf("instance cache: %v", err))
	}
	e.cache = cache
	return e
}

// Address of the engine.
func (e *Engine) Address() core.Address {
	return e.cfg.Address
}

// ChainID bound into operation hashes.
func (e *Engine) ChainID() uint64 {
	return e.cfg.ChainID
}

// Hash of the operation as signed by accounts of this engine.
func (e *Engine) Hash(op *core.Operation) core.Hash32 {
	return op.Hash(e.cfg.Address, e.cfg.ChainID)
}

func (e *Engine) newEnv(st *state.StateDB) *core.Env {
	venues := make(map[core.Address]struct{}, len(e.cfg.Venues))
	for _, venue := range e.cfg.Venues {
		venues[venue] = struct{}{}
	}
	env := &core.Env{
		State:     st,
		Escrow:    ledger.NewEscrow(st),
		Stakes:    ledger.NewStakes(st),
		Templates: e.registry,
		Instances: &instances{state: st, registry: e.registry, cache: e.cache},
		Address:   e.cfg.Address,
		ChainID:   e.cfg.ChainID,
		Now:       e.clock.Now(),
		Schedule:  e.cfg.Schedule,
		Venues:    venues,
		Logger:    e.logger,
	}
	env.Handler = &engineHandler{env: env}
	return env
}

// Run validates, executes and settles operations in order and pays collected fees to beneficiary.
// A failing operation never affects the rest of the batch, its outcome records the reason.
// Run fails only if the state can't be loaded or persisted, or if it is entered while
// another batch or update is processed. Concurrent callers are not queued, they get
// ErrReentrancy and must serialize their calls.
func (e *Engine) Run(ctx context.Context, ops []core.Operation, beneficiary core.Address) (*Result, error) {
	if !e.mu.TryLock() {
		return nil, core.ErrReentrancy
	}
	defer e.mu.Unlock()
	if e.cfg.MaxBatchSize > 0 && len(ops) > e.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d operations, limit %d", core.ErrMalformed, len(ops), e.cfg.MaxBatchSize)
	}
	start := time.Now()
	st := state.NewFromDB(e.db)
	b := &batch{
		engine:   e,
		env:      e.newEnv(st),
		unstaked: map[core.Address]int{},
	}
	rst := &Result{Outcomes: make([]Outcome, len(ops))}
	for i := range ops {
		rst.Outcomes[i] = b.apply(i, &ops[i])
		if err := st.Error(); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrInternal, err)
		}
		outcomes.WithLabelValues(rst.Outcomes[i].Status.String()).Inc()
	}
	rst.Collected = b.collected
	if err := st.AddBalance(beneficiary, b.collected); err != nil {
		return nil, fmt.Errorf("%w: pay beneficiary: %w", core.ErrInternal, err)
	}
	receipts := make([]batches.Receipt, len(rst.Outcomes))
	for i, out := range rst.Outcomes {
		receipts[i] = batches.Receipt{
			Index:  out.Index,
			OpHash: out.OpHash,
			Sender: out.Sender,
			Status: uint8(out.Status),
			Fee:    out.Fee,
			Used:   out.Used,
		}
		if out.Reason != nil {
			receipts[i].Reason = out.Reason.Error()
		}
	}
	if err := e.db.WithTx(ctx, func(tx *sql.Tx) error {
		root, err := st.Commit(tx)
		if err != nil {
			return err
		}
		rst.Root = root
		rst.ID, err = batches.Add(tx, &batches.Batch{
			Beneficiary: beneficiary,
			Collected:   rst.Collected,
			Root:        root,
			Timestamp:   b.env.Now,
		}, receipts)
		return err
	}); err != nil {
		return nil, fmt.Errorf("%w: commit batch: %w", core.ErrInternal, err)
	}
	collected.Add(float64(rst.Collected))
	batchSize.Observe(float64(len(ops)))
	batchDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("batch processed",
		zap.Int64("id", rst.ID),
		zap.Int("operations", len(ops)),
		zap.Stringer("beneficiary", beneficiary),
		zap.Uint64("collected", rst.Collected),
		zap.Stringer("root", rst.Root),
		zap.Duration("duration", time.Since(start)),
	)
	return rst, nil
}

// update applies fn to the latest state and commits its changes.
// Like Run it fails with ErrReentrancy while the engine is busy.
func (e *Engine) update(ctx context.Context, fn func(env *core.Env) error) error {
	if !e.mu.TryLock() {
		return core.ErrReentrancy
	}
	defer e.mu.Unlock()
	st := state.NewFromDB(e.db)
	env := e.newEnv(st)
	if err := fn(env); err != nil {
		return err
	}
	if err := st.Error(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	return e.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := st.Commit(tx)
		return err
	})
}

// view runs fn against the latest state without persisting anything.
func (e *Engine) view(fn func(env *core.Env) error) error {
	st := state.NewFromDB(e.db)
	if err := fn(e.newEnv(st)); err != nil {
		return err
	}
	if err := st.Error(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInternal, err)
	}
	return nil
}
