package entrypoint

import (
	"time"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// DefaultAddress is the address of the engine when none is configured.
var DefaultAddress = core.DefaultEngineAddress

// Config defines the configuration options for the engine.
type Config struct {
	// Address of the engine. Operation hashes are bound to it.
	Address core.Address `mapstructure:"address"`
	// ChainID is bound into operation hashes.
	ChainID uint64 `mapstructure:"chain-id"`
	// BaseFee per compute unit, the price of an operation is min(fee ceiling, base fee + priority).
	BaseFee  uint64        `mapstructure:"base-fee"`
	Schedule core.Schedule `mapstructure:"schedule"`

	// MinSponsorStake and MinUnstakeDelay make a sponsor staked.
	MinSponsorStake uint64        `mapstructure:"min-sponsor-stake"`
	MinUnstakeDelay time.Duration `mapstructure:"min-unstake-delay"`
	// UnstakedSponsorOps limits operations per batch paid by a sponsor that is not staked.
	UnstakedSponsorOps int `mapstructure:"unstaked-sponsor-ops"`

	// Venues may pay native units into escrow of sponsors.
	Venues []core.Address `mapstructure:"venues"`

	// MaxBatchSize limits number of operations in a batch.
	MaxBatchSize int `mapstructure:"max-batch-size"`
	// InstanceCacheSize is the number of decoded template instances kept in memory.
	InstanceCacheSize int `mapstructure:"instance-cache-size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Address:            DefaultAddress,
		ChainID:            1,
		BaseFee:            1,
		Schedule:           core.DefaultSchedule(),
		MinSponsorStake:    1_000_000,
		MinUnstakeDelay:    24 * time.Hour,
		UnstakedSponsorOps: 1,
		MaxBatchSize:       256,
		InstanceCacheSize:  1024,
	}
}
