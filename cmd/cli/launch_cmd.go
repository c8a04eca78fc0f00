package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/launch"
	"github.com/ninja0404/lobsterpad/pkg/sender"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// launchFlags are shared by launch and spam.
type launchFlags struct {
	name        string
	symbol      string
	description string
	imagePath   string
	twitter     string
	telegram    string
	website     string
	privateKey  string
	walletIndex int
	amount      float64
	slippage    float64
	priorityFee float64
	pool        string
	vanity      string
	noVanity    bool
	vanityWait  time.Duration
	mayhem      bool
	cloneMint   string
}

func (f *launchFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "token name")
	fl.StringVar(&f.symbol, "symbol", "", "token symbol")
	fl.StringVar(&f.description, "description", "", "token description")
	fl.StringVar(&f.imagePath, "image", "", "path to the token image")
	fl.StringVar(&f.twitter, "twitter", "", "twitter / x link")
	fl.StringVar(&f.telegram, "telegram", "", "telegram link")
	fl.StringVar(&f.website, "website", "", "website link")
	fl.StringVar(&f.privateKey, "private-key", "", "signer private key (default $"+privateKeyEnv+" or the active stored wallet)")
	fl.IntVar(&f.walletIndex, "wallet", -1, "use the stored wallet at this index")
	fl.Float64Var(&f.amount, "amount", -1, "initial buy in SOL (default from config)")
	fl.Float64Var(&f.slippage, "slippage", 0, "slippage percent (default from config)")
	fl.Float64Var(&f.priorityFee, "priority-fee", 0, "priority fee in SOL (default from config)")
	fl.StringVar(&f.pool, "pool", "", "pool (default from config)")
	fl.StringVar(&f.vanity, "vanity", "", "mint address suffix (default from config)")
	fl.BoolVar(&f.noVanity, "no-vanity", false, "use a random mint address")
	fl.DurationVar(&f.vanityWait, "vanity-timeout", 0, "give up the vanity search after this long (default from config)")
	fl.BoolVar(&f.mayhem, "mayhem", false, "enable mayhem mode")
	fl.StringVar(&f.cloneMint, "clone", "", "pre-fill metadata from an existing token mint")
}

// request builds the launch request. Cloned metadata is applied first so
// explicit flags win.
func (f *launchFlags) request(ctx context.Context, cmd *cobra.Command, deps *runtimeDeps) (types.LaunchRequest, error) {
	var meta types.TokenMetadata
	if f.cloneMint != "" {
		cloned, err := deps.newCloner().Clone(ctx, f.cloneMint)
		if err != nil {
			return types.LaunchRequest{}, fmt.Errorf("clone %s: %w", f.cloneMint, err)
		}
		cloned.ApplyTo(&meta)
		if cloned.Partial() && f.imagePath == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: metadata cloned but the image could not be downloaded; pass --image")
		}
	}

	for _, o := range []struct {
		dst *string
		v   string
	}{
		{&meta.Name, f.name},
		{&meta.Symbol, f.symbol},
		{&meta.Description, f.description},
		{&meta.Twitter, f.twitter},
		{&meta.Telegram, f.telegram},
		{&meta.Website, f.website},
	} {
		if o.v != "" {
			*o.dst = o.v
		}
	}
	if f.imagePath != "" {
		img, err := readImage(f.imagePath)
		if err != nil {
			return types.LaunchRequest{}, err
		}
		meta.Image = img
	}

	if f.walletIndex >= 0 {
		if err := deps.keyring.Select(f.walletIndex); err != nil {
			return types.LaunchRequest{}, err
		}
	}

	d := deps.cfg.Launch
	req := types.LaunchRequest{
		SignerPrivateKey: resolvePrivateKey(f.privateKey, deps),
		Metadata:         meta,
		AmountSOL:        d.AmountSOL,
		SlippagePct:      d.SlippagePct,
		PriorityFeeSOL:   d.PriorityFeeSOL,
		Pool:             d.Pool,
		VanitySuffix:     d.VanitySuffix,
		MayhemMode:       f.mayhem,
	}
	if f.amount >= 0 {
		req.AmountSOL = f.amount
	}
	if f.slippage > 0 {
		req.SlippagePct = f.slippage
	}
	if f.priorityFee > 0 {
		req.PriorityFeeSOL = f.priorityFee
	}
	if f.pool != "" {
		req.Pool = f.pool
	}
	if f.vanity != "" {
		req.VanitySuffix = f.vanity
	}
	if f.noVanity {
		req.VanitySuffix = ""
	}
	if f.vanityWait > 0 {
		deps.cfg.Launch.VanityTimeout = f.vanityWait
	}
	return req, nil
}

func newLaunchCmd(opts *globalOpts) *cobra.Command {
	var (
		flags launchFlags
		wait  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a token on pump.fun",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			ctx := cmd.Context()
			req, err := flags.request(ctx, cmd, deps)
			if err != nil {
				return err
			}

			res, err := deps.newLauncher().Launch(ctx, req)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), *res)

			if wait <= 0 {
				return nil
			}
			sig, err := solana.SignatureFromBase58(res.Signature)
			if err != nil {
				return err
			}
			waitCtx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()
			if err := deps.sender.WaitForConfirmation(waitCtx, sig, sender.ConfirmationConfirmed); err != nil {
				return fmt.Errorf("confirmation: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status:    confirmed")
			return nil
		},
	}

	flags.bind(cmd)
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for confirmation (0 = don't wait)")
	return cmd
}

func newSpamCmd(opts *globalOpts) *cobra.Command {
	var (
		flags    launchFlags
		count    int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "spam",
		Short: "Launch the same token several times in a row",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			ctx := cmd.Context()
			req, err := flags.request(ctx, cmd, deps)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			results, err := deps.newLauncher().SpamLaunch(ctx, req, count,
				launch.WithInterval(interval),
				launch.WithProgress(func(i int, r types.LaunchResult) {
					fmt.Fprintf(out, "[%d/%d] %s  %s\n", i+1, count, r.MintAddress, r.ExplorerURL)
				}),
			)
			fmt.Fprintf(out, "%d/%d launches succeeded\n", len(results), count)
			return err
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVar(&count, "count", 1, "number of launches")
	cmd.Flags().DurationVar(&interval, "interval", 0, "minimum time between launches")
	return cmd
}

func printResult(out io.Writer, r types.LaunchResult) {
	fmt.Fprintf(out, "name:      %s (%s)\n", r.Name, r.Symbol)
	fmt.Fprintf(out, "mint:      %s\n", r.MintAddress)
	fmt.Fprintf(out, "signature: %s\n", r.Signature)
	fmt.Fprintf(out, "explorer:  %s\n", r.ExplorerURL)
	fmt.Fprintf(out, "pump.fun:  %s%s\n", constants.PumpCoinURL, r.MintAddress)
}
