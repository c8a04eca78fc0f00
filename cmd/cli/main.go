package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/config"
	"github.com/ninja0404/lobsterpad/pkg/rpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

type globalOpts struct {
	configPath     string
	envFile        string
	rpcURL         string
	commitment     string
	retryAttempts  int
	retryBackoffMs int
	rateLimitRPS   float64
	logLevel       string
	timeoutSec     int
	jitoURL        string
	storePath      string
	historyDSN     string
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "lobsterpad",
		Short:         "Launch pump.fun tokens from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config (ignored if missing)")
	pf.StringVar(&opts.rpcURL, "rpc-url", "", "RPC endpoint (default mainnet if empty)")
	pf.StringVar(&opts.commitment, "commitment", "", "RPC commitment level")
	pf.IntVar(&opts.retryAttempts, "retry-attempts", 0, "RPC read retry attempts")
	pf.IntVar(&opts.retryBackoffMs, "retry-backoff-ms", 0, "initial backoff in ms")
	pf.Float64Var(&opts.rateLimitRPS, "rate-limit-rps", -1, "rate limit RPS (0 to disable)")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	pf.IntVar(&opts.timeoutSec, "timeout-sec", 0, "RPC timeout seconds")
	pf.StringVar(&opts.jitoURL, "jito-url", "", "submit through a Jito block engine (comma separated list rotates)")
	pf.StringVar(&opts.storePath, "store", "", "JSON file for wallets and launch history")
	pf.StringVar(&opts.historyDSN, "history-dsn", "", "postgres DSN for launch history")

	root.AddCommand(
		newConfigCmd(opts),
		newWalletCmd(opts),
		newVanityCmd(opts),
		newLaunchCmd(opts),
		newSpamCmd(opts),
		newCloneCmd(opts),
		newTradeCmd(opts),
		newHistoryCmd(opts),
	)

	return root
}

func newConfigCmd(opts *globalOpts) *cobra.Command {
	var ping bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "network=%s\nrpc=%s\ncommitment=%s\n", cfg.RPC.Network, cfg.RPC.ResolveRPCURL(), cfg.RPC.Commitment)
			fmt.Fprintf(out, "ipfs=%s\npumpportal=%s\nmoralis=%s\n", cfg.Endpoints.IPFSURL, cfg.Endpoints.PumpPortalURL, cfg.Endpoints.MoralisURL)
			fmt.Fprintf(out, "amount_sol=%g\nslippage_pct=%g\npriority_fee_sol=%g\npool=%s\n",
				cfg.Launch.AmountSOL, cfg.Launch.SlippagePct, cfg.Launch.PriorityFeeSOL, cfg.Launch.Pool)
			fmt.Fprintf(out, "vanity_suffix=%q\nvanity_workers=%d\n", cfg.Launch.VanitySuffix, cfg.Launch.VanityWorkers)
			fmt.Fprintf(out, "moralis_api_key=%s\nstore=%s\nhistory_dsn=%s\njito=%s\n",
				mask(cfg.MoralisAPIKey), cfg.StorePath, mask(cfg.HistoryDSN), cfg.JitoURL)
			if !ping {
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			start := time.Now()
			bh, err := rpc.NewClient(cfg.RPC).GetLatestBlockhash(ctx)
			if err != nil {
				return fmt.Errorf("rpc ping: %w", err)
			}
			if bh == nil || bh.Value == nil {
				return fmt.Errorf("rpc ping: empty response")
			}
			fmt.Fprintf(out, "rpc_ping=%s blockhash=%s\n", time.Since(start).Round(time.Millisecond), bh.Value.Blockhash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ping, "ping", false, "also check that the RPC endpoint answers")
	return cmd
}

// loadEnvFile loads path into the environment. A missing default file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadConfig reads the config file and environment, then applies global flags.
func loadConfig(cmd *cobra.Command, opts *globalOpts) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if opts.rpcURL != "" {
		cfg.RPC.RPCURL = opts.rpcURL
		cfg.RPC.Network = config.NetworkCustom
	}
	if opts.commitment != "" {
		cfg.RPC.Commitment = opts.commitment
	}
	if opts.rateLimitRPS >= 0 {
		cfg.RPC.RateLimit.RPS = opts.rateLimitRPS
	}
	if opts.retryAttempts > 0 {
		cfg.RPC.Retry.MaxAttempts = opts.retryAttempts
	}
	if opts.retryBackoffMs > 0 {
		cfg.RPC.Retry.InitialBackoff = msDuration(opts.retryBackoffMs)
	}
	if opts.timeoutSec > 0 {
		cfg.RPC.Timeout = secDuration(opts.timeoutSec)
	}
	if opts.jitoURL != "" {
		cfg.JitoURL = opts.jitoURL
	}
	if opts.storePath != "" {
		cfg.StorePath = opts.storePath
	}
	if opts.historyDSN != "" {
		cfg.HistoryDSN = opts.historyDSN
	}
	cfg.RPC.Logger = newLogger(cmd, opts)
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, opts *globalOpts) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(parseLogLevel(opts.logLevel)).
		With().Timestamp().Logger()
}

func parseLogLevel(lvl string) zerolog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
