// Package cmd contains flags and configuration shared by the command line tools.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/config"
	"github.com/spacemeshos/go-entrypoint/config/presets"
)

var (
	// Version is the app's semantic version. Designed to be overwritten by make.
	Version string
	// Commit is the git commit used to build the app. Designed to be overwritten by make.
	Commit string
)

// AddFlags binds fields of conf to flags. Returned pointer holds the path of the config file.
func AddFlags(flagSet *pflag.FlagSet, conf *config.Config) *string {
	configPath := flagSet.StringP("config", "c", "", "load configuration from file")
	flagSet.StringVarP(&conf.Preset, "preset", "p", conf.Preset,
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&conf.Database, "database", "d", conf.Database, "path of the sqlite state")
	flagSet.BoolVar(&conf.CollectMetrics, "metrics", conf.CollectMetrics, "serve prometheus metrics")
	flagSet.IntVar(&conf.MetricsPort, "metrics-port", conf.MetricsPort, "metrics server port")

	/** ======================== Logging Flags ========================== **/
	flagSet.StringVar(&conf.Logging.Encoder, "log-encoder", conf.Logging.Encoder, "console or json")
	flagSet.StringVar(&conf.Logging.AppLoggerLevel, "log-level", conf.Logging.AppLoggerLevel, "level of the app logger")
	flagSet.StringVar(&conf.Logging.EngineLoggerLevel, "engine-log-level",
		conf.Logging.EngineLoggerLevel, "level of the engine logger")

	/** ======================== Engine Flags ========================== **/
	flagSet.Var(NewAddressValue(&conf.Engine.Address), "engine-address", "address operations are bound to")
	flagSet.Uint64Var(&conf.Engine.ChainID, "chain-id", conf.Engine.ChainID, "chain id operations are bound to")
	flagSet.Uint64Var(&conf.Engine.BaseFee, "base-fee", conf.Engine.BaseFee, "base fee per compute unit")
	flagSet.Uint64Var(&conf.Engine.MinSponsorStake, "min-sponsor-stake",
		conf.Engine.MinSponsorStake, "minimal stake of a sponsor that is not rate limited")
	flagSet.DurationVar(&conf.Engine.MinUnstakeDelay, "min-unstake-delay",
		conf.Engine.MinUnstakeDelay, "minimal unstake delay of a sponsor that is not rate limited")
	flagSet.IntVar(&conf.Engine.UnstakedSponsorOps, "unstaked-sponsor-ops",
		conf.Engine.UnstakedSponsorOps, "operations per batch paid by a sponsor that is not staked")
	flagSet.IntVar(&conf.Engine.MaxBatchSize, "max-batch-size", conf.Engine.MaxBatchSize, "operations per batch")
	flagSet.Var(&addressList{&conf.Engine.Venues}, "venues", "comma separated liquidity venues")
	return configPath
}

// Configure applies preset and config file to conf. Flags set on the command line
// take precedence over both.
func Configure(flagSet *pflag.FlagSet, configPath string, conf *config.Config) error {
	changed := map[string]string{}
	flagSet.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})
	vip := viper.New()
	if len(configPath) > 0 {
		if err := config.LoadConfig(configPath, vip); err != nil {
			return err
		}
	}
	preset := conf.Preset
	if len(preset) == 0 && vip.IsSet("main.preset") {
		preset = vip.GetString("main.preset")
	}
	if len(preset) > 0 {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*conf = p
		conf.Preset = preset
	}
	if err := config.Decode(vip, conf); err != nil {
		return err
	}
	for name, value := range changed {
		if err := flagSet.Set(name, value); err != nil {
			return fmt.Errorf("apply flag %s: %w", name, err)
		}
	}
	return conf.Genesis.Validate()
}

// NewAddressValue returns a flag value that parses a hex address into address.
func NewAddressValue(address *types.Address) pflag.Value {
	return &addressValue{address: address}
}

type addressValue struct {
	address *types.Address
}

func (v *addressValue) String() string {
	if v.address == nil {
		return ""
	}
	return v.address.Hex()
}

func (v *addressValue) Set(s string) error {
	address, err := types.HexToAddress(s)
	if err != nil {
		return err
	}
	*v.address = address
	return nil
}

func (v *addressValue) Type() string {
	return "address"
}

// addressList replaces the list on every Set.
type addressList struct {
	addresses *[]types.Address
}

func (l *addressList) String() string {
	if l.addresses == nil {
		return ""
	}
	parts := make([]string, 0, len(*l.addresses))
	for _, address := range *l.addresses {
		parts = append(parts, address.Hex())
	}
	return strings.Join(parts, ",")
}

func (l *addressList) Set(s string) error {
	var rst []types.Address
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if len(part) == 0 {
			continue
		}
		address, err := types.HexToAddress(part)
		if err != nil {
			return err
		}
		rst = append(rst, address)
	}
	*l.addresses = rst
	return nil
}

func (l *addressList) Type() string {
	return "addresses"
}
