package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint"
)

// GenesisAccount is an account installed before the first batch.
// Zero Template installs an account without code.
type GenesisAccount struct {
	Address  types.Address `mapstructure:"address"`
	Balance  uint64        `mapstructure:"balance"`
	Escrow   uint64        `mapstructure:"escrow"`
	Template types.Address `mapstructure:"template"`
	State    hexutil.Bytes `mapstructure:"state"`
}

// GenesisConfig lists the accounts installed before the first batch.
type GenesisConfig struct {
	Accounts []GenesisAccount `mapstructure:"accounts"`
}

// Validate rejects duplicate and zero addresses and state without a template.
func (g *GenesisConfig) Validate() error {
	seen := make(map[types.Address]struct{}, len(g.Accounts))
	for _, account := range g.Accounts {
		if account.Address == (types.Address{}) {
			return errors.New("genesis: zero address")
		}
		if _, exist := seen[account.Address]; exist {
			return fmt.Errorf("genesis: duplicate account %v", account.Address)
		}
		seen[account.Address] = struct{}{}
		if account.Template == (types.Address{}) && len(account.State) > 0 {
			return fmt.Errorf("genesis: account %v has state without template", account.Address)
		}
	}
	return nil
}

// ToAccounts converts config into accounts accepted by the engine.
func (g *GenesisConfig) ToAccounts() []entrypoint.GenesisAccount {
	rst := make([]entrypoint.GenesisAccount, 0, len(g.Accounts))
	for _, account := range g.Accounts {
		converted := entrypoint.GenesisAccount{
			Address: account.Address,
			Balance: account.Balance,
			Escrow:  account.Escrow,
		}
		if account.Template != (types.Address{}) {
			template := account.Template
			converted.Template = &template
			converted.State = account.State
		}
		rst = append(rst, converted)
	}
	return rst
}
