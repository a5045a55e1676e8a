package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/templates/simple"
)

func writeConfig(tb testing.TB, content string) string {
	path := filepath.Join(tb.TempDir(), "config.toml")
	require.NoError(tb, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	vip := viper.New()
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"), vip)
	require.ErrorContains(t, err, "failed to read config file")
}

func TestDecode(t *testing.T) {
	path := writeConfig(t, `
[main]
database = "/tmp/state.sql"
metrics = true

[logging]
engine = "debug"

[engine]
address = "0x0000000000000000000000000000000000001234"
chain-id = 5
min-unstake-delay = "90m"
venues = ["0x00000000000000000000000000000000000000ee"]

[engine.schedule]
intrinsic = 1

[[genesis.accounts]]
address = "0x0000000000000000000000000000000000000001"
balance = 1000
escrow = 10
template = "0x0000000000000000000000000000000000000010"
state = "0x0102"
`)
	vip := viper.New()
	require.NoError(t, LoadConfig(path, vip))
	cfg := DefaultConfig()
	require.NoError(t, Decode(vip, &cfg))

	require.Equal(t, "/tmp/state.sql", cfg.Database)
	require.True(t, cfg.CollectMetrics)
	require.Equal(t, 1010, cfg.MetricsPort)
	require.Equal(t, "debug", cfg.Logging.EngineLoggerLevel)
	require.Equal(t, ConsoleLogEncoder, cfg.Logging.Encoder)

	require.Equal(t, types.Address{18: 0x12, 19: 0x34}, cfg.Engine.Address)
	require.EqualValues(t, 5, cfg.Engine.ChainID)
	require.Equal(t, 90*time.Minute, cfg.Engine.MinUnstakeDelay)
	require.Equal(t, []types.Address{{19: 0xee}}, cfg.Engine.Venues)
	require.EqualValues(t, 1, cfg.Engine.Schedule.Intrinsic)
	require.EqualValues(t, 256, cfg.Engine.MaxBatchSize)

	require.Len(t, cfg.Genesis.Accounts, 1)
	account := cfg.Genesis.Accounts[0]
	require.Equal(t, types.Address{19: 1}, account.Address)
	require.EqualValues(t, 1000, account.Balance)
	require.EqualValues(t, 10, account.Escrow)
	require.Equal(t, simple.TemplateAddress, account.Template)
	require.Equal(t, []byte{1, 2}, []byte(account.State))
}

func TestDecodeUnknownKey(t *testing.T) {
	vip := viper.New()
	require.NoError(t, LoadConfig(writeConfig(t, "[engine]\nunknown = 1\n"), vip))
	cfg := DefaultConfig()
	require.Error(t, Decode(vip, &cfg))
}

func TestDecodeMalformedAddress(t *testing.T) {
	vip := viper.New()
	require.NoError(t, LoadConfig(writeConfig(t, "[engine]\naddress = \"0x12\"\n"), vip))
	cfg := DefaultConfig()
	require.Error(t, Decode(vip, &cfg))
}

func TestGenesis(t *testing.T) {
	template := simple.TemplateAddress
	for _, tc := range []struct {
		desc     string
		accounts []GenesisAccount
		err      string
	}{
		{desc: "empty"},
		{
			desc: "valid",
			accounts: []GenesisAccount{
				{Address: types.Address{1}, Balance: 10},
				{Address: types.Address{2}, Template: template, State: []byte{1}},
			},
		},
		{
			desc:     "zero address",
			accounts: []GenesisAccount{{Balance: 1}},
			err:      "zero address",
		},
		{
			desc:     "duplicate",
			accounts: []GenesisAccount{{Address: types.Address{1}}, {Address: types.Address{1}}},
			err:      "duplicate",
		},
		{
			desc:     "state without template",
			accounts: []GenesisAccount{{Address: types.Address{1}, State: []byte{1}}},
			err:      "without template",
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := GenesisConfig{Accounts: tc.accounts}
			err := cfg.Validate()
			if tc.err != "" {
				require.ErrorContains(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			accounts := cfg.ToAccounts()
			require.Len(t, accounts, len(tc.accounts))
			for i, account := range accounts {
				require.Equal(t, tc.accounts[i].Address, account.Address)
				if tc.accounts[i].Template == (types.Address{}) {
					require.Nil(t, account.Template)
				} else {
					require.Equal(t, template, *account.Template)
					require.Equal(t, []byte(tc.accounts[i].State), account.State)
				}
			}
		})
	}
}
