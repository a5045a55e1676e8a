package entrypoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// GenesisAccount is installed before the first batch.
type GenesisAccount struct {
	Address core.Address
	Balance uint64
	Escrow  uint64
	// Template is nil for accounts without code.
	Template *core.Address
	State    []byte
}

// MarshalLogObject implements encoding for the genesis account.
func (a *GenesisAccount) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddString("address", a.Address.Hex())
	encoder.AddUint64("balance", a.Balance)
	encoder.AddUint64("escrow", a.Escrow)
	if a.Template != nil {
		encoder.AddString("template", a.Template.Hex())
	}
	return nil
}

// ApplyGenesis saves list of accounts. Instance state is validated by the template.
func (e *Engine) ApplyGenesis(ctx context.Context, genesis []GenesisAccount) error {
	return e.update(ctx, func(env *core.Env) error {
		for i := range genesis {
			account := &genesis[i]
			e.logger.Info("genesis account", zap.Object("account", account))
			if err := env.State.AddBalance(account.Address, account.Balance+account.Escrow); err != nil {
				return err
			}
			if account.Escrow > 0 {
				if err := env.Escrow.Deposit(account.Address, account.Address, account.Escrow); err != nil {
					return err
				}
			}
			if account.Template == nil {
				continue
			}
			handler := env.Templates.Get(*account.Template)
			if handler == nil {
				return fmt.Errorf("%w: genesis account %v: unknown template %v",
					core.ErrNoCode, account.Address, *account.Template)
			}
			if _, err := handler.Load(account.State); err != nil {
				return fmt.Errorf("genesis account %v: %w", account.Address, err)
			}
			if err := env.State.Spawn(account.Address, *account.Template, account.State); err != nil {
				return fmt.Errorf("genesis account %v: %w", account.Address, err)
			}
		}
		return nil
	})
}
