// entrypoint settles batches of operations against a local sqlite state.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/go-entrypoint/cmd"
	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/config"
	"github.com/spacemeshos/go-entrypoint/entrypoint"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/metrics"
	"github.com/spacemeshos/go-entrypoint/sql"
)

var (
	version string
	commit  string
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newCommand().ExecuteContext(ctx); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

type app struct {
	conf       config.Config
	configPath *string
	loggers    *cmd.Loggers
}

func newCommand() *cobra.Command {
	a := &app{conf: config.DefaultConfig()}
	root := &cobra.Command{
		Use:          "entrypoint",
		Short:        "settle batches of operations against a local state",
		SilenceUsage: true,
	}
	a.configPath = cmd.AddFlags(root.PersistentFlags(), &a.conf)
	root.AddCommand(
		a.genesisCommand(),
		a.runCommand(),
		a.balanceCommand(),
		a.sequenceCommand(),
		a.addressCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintf(c.OutOrStdout(), "%s+%s\n", cmd.Version, cmd.Commit)
		},
	}
}

func (a *app) configure(c *cobra.Command) error {
	if err := cmd.Configure(c.Flags(), *a.configPath, &a.conf); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	loggers, err := cmd.NewLoggers(a.conf.Logging)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	a.loggers = loggers
	return nil
}

// open locks the database for exclusive use and creates the engine.
// The returned function releases both.
func (a *app) open() (*entrypoint.Engine, func(), error) {
	path := a.conf.Database
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("ensure database folder: %w", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, nil, fmt.Errorf("flock %s: %w", lock.Path(), err)
	} else if !locked {
		return nil, nil, fmt.Errorf("database is locked by another process (locking file %s)", lock.Path())
	}
	db, err := sql.Open("file:"+path, sql.WithLogger(a.loggers.Database))
	if err != nil {
		return nil, nil, errors.Join(err, lock.Unlock())
	}
	engine := entrypoint.New(db,
		entrypoint.WithLogger(a.loggers.Engine),
		entrypoint.WithConfig(a.conf.Engine),
	)
	closer := func() {
		if err := db.Close(); err != nil {
			a.loggers.App.Warn("failed to close database", zap.Error(err))
		}
		if err := lock.Unlock(); err != nil {
			a.loggers.App.Warn("failed to unlock file", zap.String("path", lock.Path()), zap.Error(err))
		}
	}
	return engine, closer, nil
}

func (a *app) withEngine(fn func(c *cobra.Command, engine *entrypoint.Engine, args []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		if err := a.configure(c); err != nil {
			return err
		}
		engine, closer, err := a.open()
		if err != nil {
			return err
		}
		defer closer()
		return fn(c, engine, args)
	}
}

func (a *app) genesisCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genesis",
		Short: "install accounts from the genesis section of the config",
		Args:  cobra.NoArgs,
		RunE: a.withEngine(func(c *cobra.Command, engine *entrypoint.Engine, _ []string) error {
			accounts := a.conf.Genesis.ToAccounts()
			if err := engine.ApplyGenesis(c.Context(), accounts); err != nil {
				return fmt.Errorf("apply genesis: %w", err)
			}
			a.loggers.App.Info("genesis applied", zap.Int("accounts", len(accounts)))
			return nil
		}),
	}
}

func (a *app) runCommand() *cobra.Command {
	var (
		beneficiary types.Address
		reportPath  string
	)
	c := &cobra.Command{
		Use:   "run <batch.json>",
		Short: "settle a batch of operations and write the outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEngine(func(c *cobra.Command, engine *entrypoint.Engine, args []string) error {
			ops, err := readBatch(args[0])
			if err != nil {
				return err
			}
			if a.conf.CollectMetrics {
				srv := metrics.StartMetricsServer(a.loggers.App, a.conf.MetricsPort)
				defer srv.Close()
			}
			rst, err := engine.Run(c.Context(), ops, beneficiary)
			if err != nil {
				return fmt.Errorf("run batch: %w", err)
			}
			buf, err := json.MarshalIndent(newReport(rst), "", "  ")
			if err != nil {
				return err
			}
			if len(reportPath) == 0 {
				_, err = c.OutOrStdout().Write(append(buf, '\n'))
				return err
			}
			if err := atomic.WriteFile(reportPath, bytes.NewReader(buf)); err != nil {
				return fmt.Errorf("write report %s: %w", reportPath, err)
			}
			a.loggers.App.Info("report written",
				zap.String("path", reportPath),
				zap.Int64("batch", rst.ID),
				zap.Uint64("collected", rst.Collected),
			)
			return nil
		}),
	}
	c.Flags().Var(cmd.NewAddressValue(&beneficiary), "beneficiary", "receiver of the collected fees")
	c.Flags().StringVar(&reportPath, "report", "", "write outcomes to the file instead of stdout")
	_ = c.MarkFlagRequired("beneficiary")
	return c
}

func readBatch(path string) ([]core.Operation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var encoded []operationJSON
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", path, err)
	}
	ops := make([]core.Operation, 0, len(encoded))
	for i := range encoded {
		op, err := encoded[i].operation()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (a *app) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "print balance, escrow and stake of an account",
		Args:  cobra.ExactArgs(1),
		RunE: a.withEngine(func(c *cobra.Command, engine *entrypoint.Engine, args []string) error {
			address, err := types.HexToAddress(args[0])
			if err != nil {
				return err
			}
			account, err := engine.Account(address)
			if err != nil {
				return err
			}
			escrow, err := engine.BalanceOf(address)
			if err != nil {
				return err
			}
			stake, err := engine.Stake(address)
			if err != nil {
				return err
			}
			encoded := accountJSON{
				Address:  address,
				Balance:  account.Balance,
				Escrow:   escrow,
				Template: account.Template,
				State:    account.State,
			}
			if stake.Amount > 0 {
				encoded.Stake = &stakeJSON{Amount: stake.Amount, UnstakeDelay: stake.UnstakeDelay.String()}
				if !stake.WithdrawReady.IsZero() {
					encoded.Stake.WithdrawReady = stake.WithdrawReady.UTC().Format("2006-01-02T15:04:05Z")
				}
			}
			return json.NewEncoder(c.OutOrStdout()).Encode(encoded)
		}),
	}
}

func (a *app) sequenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sequence <address> [key]",
		Short: "print the next sequence expected from the sender in the queue",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.withEngine(func(c *cobra.Command, engine *entrypoint.Engine, args []string) error {
			address, err := types.HexToAddress(args[0])
			if err != nil {
				return err
			}
			var key types.SequenceKey
			if len(args) == 2 {
				seq, err := types.ParseSequence(args[1])
				if err != nil {
					return err
				}
				key = seq.Key
			}
			counter, err := engine.NextSequence(address, key)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), types.NewSequence(key, counter))
			return err
		}),
	}
}

func (a *app) addressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <factory> <owner> <salt>",
		Short: "print the address of an account created by the factory for hex owner state and salt",
		Args:  cobra.ExactArgs(3),
		RunE: a.withEngine(func(c *cobra.Command, engine *entrypoint.Engine, args []string) error {
			factoryAddr, err := types.HexToAddress(args[0])
			if err != nil {
				return err
			}
			owner, err := hexutil.Decode(args[1])
			if err != nil {
				return fmt.Errorf("owner: %w", err)
			}
			salt, err := hexutil.Decode(args[2])
			if err != nil {
				return fmt.Errorf("salt: %w", err)
			}
			if len(salt) > types.Hash32Length {
				return fmt.Errorf("salt is longer than %d bytes", types.Hash32Length)
			}
			address, err := engine.ComputeAddress(factoryAddr, owner, common.BytesToHash(salt))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout(), address.Hex())
			return err
		}),
	}
}
