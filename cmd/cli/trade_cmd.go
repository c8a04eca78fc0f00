package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/pumpportal"
	"github.com/ninja0404/lobsterpad/pkg/sender"
	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

func newTradeCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Buy or sell an existing pump.fun token",
	}
	cmd.AddCommand(
		newTradeActionCmd(opts, pumpportal.ActionBuy),
		newTradeActionCmd(opts, pumpportal.ActionSell),
	)
	return cmd
}

func newTradeActionCmd(opts *globalOpts, action string) *cobra.Command {
	var (
		privateKey    string
		amount        string
		inSOL         bool
		slippage      float64
		priorityFee   float64
		pool          string
		skipBroadcast bool
		simulate      bool
	)

	cmd := &cobra.Command{
		Use:   action + " <mint>",
		Short: action + " a token through PumpPortal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			if _, err := types.ValidatePublicKey("mint", args[0]); err != nil {
				return err
			}
			w, err := wallet.FromBase58(resolvePrivateKey(privateKey, deps))
			if err != nil {
				return err
			}
			signer, err := w.Signer()
			if err != nil {
				return err
			}

			if slippage <= 0 {
				slippage = deps.cfg.Launch.SlippagePct
			}
			if priorityFee <= 0 {
				priorityFee = deps.cfg.Launch.PriorityFeeSOL
			}
			if pool == "" {
				pool = deps.cfg.Launch.Pool
			}

			ctx := cmd.Context()
			raw, err := deps.newPumpPortal().TradeTransaction(ctx, pumpportal.TradeRequest{
				PublicKey:        w.PublicAddress,
				Action:           action,
				Mint:             args[0],
				Amount:           amount,
				DenominatedInSol: inSOL,
				SlippagePct:      slippage,
				PriorityFeeSOL:   priorityFee,
				Pool:             pool,
			})
			if err != nil {
				return err
			}
			tx, err := sender.Decode(raw)
			if err != nil {
				return err
			}
			if err := sender.Sign(ctx, tx, signer); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if simulate {
				res, err := simulateTransaction(ctx, deps, tx)
				if err != nil {
					return err
				}
				printSimResult(out, res)
				return nil
			}
			if skipBroadcast {
				b64, err := tx.ToBase64()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, b64)
				return nil
			}

			sig, err := deps.sender.Submit(ctx, tx, signer)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "signature: %s\nexplorer:  %s%s\n", sig, deps.cfg.Endpoints.ExplorerTxURL, sig)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&privateKey, "private-key", "", "signer private key (default $"+privateKeyEnv+" or the active stored wallet)")
	fl.StringVar(&amount, "amount", "", "amount in tokens, in SOL with --sol, or a percentage such as 100%")
	fl.BoolVar(&inSOL, "sol", action == pumpportal.ActionBuy, "amount is denominated in SOL")
	fl.Float64Var(&slippage, "slippage", 0, "slippage percent (default from config)")
	fl.Float64Var(&priorityFee, "priority-fee", 0, "priority fee in SOL (default from config)")
	fl.StringVar(&pool, "pool", "", "pool (default from config)")
	fl.BoolVar(&skipBroadcast, "skip-broadcast", false, "print the signed transaction instead of sending it")
	fl.BoolVar(&simulate, "simulate", false, "simulate the signed transaction instead of sending it")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
