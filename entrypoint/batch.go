package entrypoint

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// batch is the state of a single Run.
type batch struct {
	engine    *Engine
	env       *core.Env
	collected uint64
	// unstaked counts operations paid by sponsors without an active stake.
	unstaked map[core.Address]int
}

// validated is the result of a successful validation phase.
type validated struct {
	account core.Template
	payer   core.Address
	maxCost uint64
	meter   *core.Meter

	sponsor        core.Sponsor
	sponsorContext []byte
}

func (b *batch) host(self core.Address, meter *core.Meter) *core.Context {
	return core.NewContext(b.env, self, b.env.Address, meter)
}

func (b *batch) apply(index int, op *core.Operation) Outcome {
	logger := b.engine.logger
	out := Outcome{
		Index:  index,
		OpHash: op.Hash(b.env.Address, b.env.ChainID),
		Sender: op.Sender,
	}
	snapshot := b.env.State.Snapshot()
	v, err := b.validate(op, out.OpHash)
	if err != nil {
		b.env.State.RevertToSnapshot(snapshot)
		out.Status = StatusValidationFailed
		out.Reason = err
		logger.Debug("operation skipped",
			zap.Object("operation", op),
			zap.Stringer("hash", out.OpHash),
			zap.Error(err),
		)
		return out
	}
	out.Payer = v.payer

	execSnapshot := b.env.State.Snapshot()
	callMeter := core.NewMeter(op.CallBudget)
	out.Status = StatusSuccess
	if len(op.Call) > 0 {
		if _, err := v.account.Exec(b.host(op.Sender, callMeter), op.Call); err != nil {
			b.env.State.RevertToSnapshot(execSnapshot)
			out.Status = StatusReverted
			out.Reason = fmt.Errorf("%w: %w", core.ErrExecutionReverted, err)
		}
	}

	price := op.Price(b.engine.cfg.BaseFee)
	var settleUsed uint64
	if v.sponsor != nil {
		mode := core.SettleSucceeded
		if out.Status == StatusReverted {
			mode = core.SettleReverted
		}
		sponsorAddr, _ := op.Sponsor()
		settleMeter := core.NewMeter(v.meter.Remaining())
		host := b.host(sponsorAddr, settleMeter)
		cost := (op.PreambleBudget + v.meter.Used() + callMeter.Used()) * price
		if err := v.sponsor.Settle(host, mode, v.sponsorContext, cost); err != nil {
			b.env.State.RevertToSnapshot(execSnapshot)
			out.Status = StatusPostSettlementFailed
			out.Reason = fmt.Errorf("%w: %w", core.ErrPostSettlementFailed, err)
			retry := b.env.State.Snapshot()
			if err := v.sponsor.Settle(host, core.SettleAfterFailure, v.sponsorContext, cost); err != nil {
				b.env.State.RevertToSnapshot(retry)
				out.Reason = fmt.Errorf("%w: retry: %w", out.Reason, err)
			}
			logger.Warn("sponsor failed to settle",
				zap.Stringer("sponsor", sponsorAddr),
				zap.Stringer("hash", out.OpHash),
				zap.Error(out.Reason),
			)
		}
		settleUsed = settleMeter.Used()
	}

	out.Used = op.PreambleBudget + v.meter.Used() + callMeter.Used() + settleUsed
	out.Fee = out.Used * price
	if err := b.env.Escrow.Credit(v.payer, v.maxCost-out.Fee); err != nil {
		// the refund is lower than the amount debited in this batch
		panic(fmt.Sprintf("refund %d to %v: %v", v.maxCost-out.Fee, v.payer, err))
	}
	b.collected += out.Fee
	logger.Debug("operation settled", zap.Object("outcome", &out))
	return out
}

// validate runs the validation phase. Any error leaves the operation without effect.
func (b *batch) validate(op *core.Operation, opHash core.Hash32) (*validated, error) {
	cfg := &b.engine.cfg
	if err := op.Verify(cfg.Schedule); err != nil {
		return nil, err
	}
	maxCost, err := op.MaxCost()
	if err != nil {
		return nil, err
	}
	v := &validated{maxCost: maxCost, meter: core.NewMeter(op.ValidationBudget), payer: op.Sender}

	if err := b.resolve(op, v.meter); err != nil {
		return nil, err
	}
	tmpl, err := b.env.Instances.Load(op.Sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrValidationFailed, err)
	}
	account, ok := tmpl.(core.Account)
	if !ok {
		return nil, fmt.Errorf("%w: %w: %v", core.ErrValidationFailed, core.ErrNotAccount, op.Sender)
	}
	v.account = account
	host := b.host(op.Sender, v.meter)

	if err := b.checkSequence(host, tmpl, op); err != nil {
		return nil, err
	}

	var missing uint64
	if !op.Sponsored() {
		if balance := b.env.Escrow.BalanceOf(op.Sender); balance < maxCost {
			missing = maxCost - balance
		}
	}
	data, err := account.ValidateOperation(host, op, opHash, missing)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrValidationFailed, err)
	}
	if err := b.checkAccountData(op, opHash, data); err != nil {
		return nil, err
	}

	if !op.Sponsored() {
		if err := b.env.Escrow.Debit(op.Sender, maxCost); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := b.validateSponsor(op, opHash, v); err != nil {
		return nil, err
	}
	return v, nil
}

// resolve deploys the sender if it has no code.
func (b *batch) resolve(op *core.Operation, meter *core.Meter) error {
	if b.env.State.Exist(op.Sender) {
		if len(op.Deployment) > 0 {
			return fmt.Errorf("%w: deployment payload for existing sender %v", core.ErrValidationFailed, op.Sender)
		}
		return nil
	}
	if len(op.Deployment) == 0 {
		return fmt.Errorf("%w: %v", core.ErrUnknownSender, op.Sender)
	}
	factoryAddr, args := op.Factory()
	tmpl, err := b.env.Instances.Load(factoryAddr)
	if err != nil {
		return fmt.Errorf("%w: factory: %w", core.ErrUnknownSender, err)
	}
	deployer, ok := tmpl.(core.Deployer)
	if !ok {
		return fmt.Errorf("%w: %v is not a factory", core.ErrUnknownSender, factoryAddr)
	}
	address, err := deployer.Deploy(b.host(factoryAddr, meter), args)
	if err != nil {
		return fmt.Errorf("%w: deploy: %w", core.ErrUnknownSender, err)
	}
	if address != op.Sender {
		return fmt.Errorf("%w: deployment created %v instead of %v", core.ErrUnknownSender, address, op.Sender)
	}
	if !b.env.State.Exist(op.Sender) {
		return fmt.Errorf("%w: deployment didn't create %v", core.ErrUnknownSender, op.Sender)
	}
	return nil
}

// checkSequence defers to the account policy if there is one. Otherwise the
// counter must match the next counter of the queue, and is consumed.
func (b *batch) checkSequence(host core.Host, tmpl core.Template, op *core.Operation) error {
	if policy, ok := tmpl.(core.SequencePolicy); ok {
		if err := policy.ValidateSequence(host, op.Sequence); err != nil {
			if errors.Is(err, core.ErrInvalidSequence) {
				return err
			}
			return fmt.Errorf("%w: %w", core.ErrInvalidSequence, err)
		}
		return nil
	}
	if err := host.Consume(b.env.Schedule.Load); err != nil {
		return fmt.Errorf("%w: %w", core.ErrValidationFailed, err)
	}
	next := b.env.State.GetSequence(op.Sender, op.Sequence.Key)
	if next != op.Sequence.Counter {
		return fmt.Errorf("%w: expected %d, got %d", core.ErrInvalidSequence, next, op.Sequence.Counter)
	}
	if err := host.Consume(b.env.Schedule.Update); err != nil {
		return fmt.Errorf("%w: %w", core.ErrValidationFailed, err)
	}
	b.env.State.SetSequence(op.Sender, op.Sequence.Key, next+1)
	return nil
}

func (b *batch) checkAccountData(op *core.Operation, opHash core.Hash32, data core.ValidationData) error {
	switch {
	case data.SignatureFailed():
		return fmt.Errorf("%w: invalid authorization", core.ErrValidationFailed)
	case data.External():
		validator, exist := b.engine.validators[data.Marker]
		if !exist {
			return fmt.Errorf("%w: unrecognized validator %v", core.ErrValidationFailed, data.Marker)
		}
		if err := validator.ValidateSignature(op, opHash); err != nil {
			return fmt.Errorf("%w: validator %v: %w", core.ErrValidationFailed, data.Marker, err)
		}
	}
	return data.CheckWindow(b.env.Now)
}

func (b *batch) validateSponsor(op *core.Operation, opHash core.Hash32, v *validated) error {
	cfg := &b.engine.cfg
	sponsorAddr, _ := op.Sponsor()
	tmpl, err := b.env.Instances.Load(sponsorAddr)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrSponsorRejected, err)
	}
	sponsor, ok := tmpl.(core.Sponsor)
	if !ok {
		return fmt.Errorf("%w: %w: %v", core.ErrSponsorRejected, core.ErrNotSponsor, sponsorAddr)
	}
	staked := b.env.Stakes.IsStaked(sponsorAddr, cfg.MinSponsorStake, cfg.MinUnstakeDelay)
	if !staked && b.unstaked[sponsorAddr] >= cfg.UnstakedSponsorOps {
		return fmt.Errorf("%w: %v is not staked and already paid for %d operations in the batch",
			core.ErrSponsorRejected, sponsorAddr, b.unstaked[sponsorAddr])
	}
	if balance := b.env.Escrow.BalanceOf(sponsorAddr); balance < v.maxCost {
		return fmt.Errorf("%w: %w: %v holds %d, needs %d",
			core.ErrSponsorRejected, core.ErrInsufficientEscrow, sponsorAddr, balance, v.maxCost)
	}
	context, data, err := sponsor.ValidateSponsorship(b.host(sponsorAddr, v.meter), op, opHash, v.maxCost)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrSponsorRejected, err)
	}
	if data.Marker != (core.Address{}) {
		return fmt.Errorf("%w: authorization rejected", core.ErrSponsorRejected)
	}
	if err := data.CheckWindow(b.env.Now); err != nil {
		return err
	}
	if err := b.env.Escrow.Debit(sponsorAddr, v.maxCost); err != nil {
		return fmt.Errorf("%w: %w", core.ErrSponsorRejected, err)
	}
	if !staked {
		b.unstaked[sponsorAddr]++
	}
	v.payer = sponsorAddr
	v.sponsor = sponsor
	v.sponsorContext = context
	return nil
}
