package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

func newWalletCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Create, import and inspect wallets",
	}
	cmd.AddCommand(
		newWalletNewCmd(opts),
		newWalletImportCmd(opts),
		newWalletListCmd(opts),
		newWalletBalanceCmd(opts),
	)
	return cmd
}

func newWalletNewCmd(opts *globalOpts) *cobra.Command {
	var (
		withMnemonic bool
		account      uint32
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Generate a new wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			var (
				w        wallet.Wallet
				mnemonic string
			)
			if withMnemonic {
				mnemonic, err = wallet.NewMnemonic()
				if err != nil {
					return err
				}
				w, err = wallet.FromMnemonic(mnemonic, account)
			} else {
				w, err = wallet.Generate()
			}
			if err != nil {
				return err
			}

			return addWallet(cmd, deps, w, mnemonic)
		},
	}

	cmd.Flags().BoolVar(&withMnemonic, "mnemonic", false, "derive the wallet from a new BIP-39 mnemonic")
	cmd.Flags().Uint32Var(&account, "account", 0, "account index for m/44'/501'/<account>'/0'")
	return cmd
}

func newWalletImportCmd(opts *globalOpts) *cobra.Command {
	var (
		mnemonic   string
		keygenFile string
		account    uint32
	)

	cmd := &cobra.Command{
		Use:   "import [private-key]",
		Short: "Import a base58 private key, a mnemonic or a solana-keygen file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				w   wallet.Wallet
				err error
			)
			switch {
			case mnemonic != "":
				w, err = wallet.FromMnemonic(mnemonic, account)
			case keygenFile != "":
				w, err = wallet.FromKeygenFile(keygenFile)
			case len(args) == 1:
				w, err = wallet.FromBase58(args[0])
			default:
				w, err = wallet.FromBase58(resolvePrivateKey("", nil))
			}
			if err != nil {
				return err
			}

			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			return addWallet(cmd, deps, w, "")
		},
	}

	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "BIP-39 mnemonic to import")
	cmd.Flags().StringVar(&keygenFile, "keygen-file", "", "solana-keygen JSON keypair file to import")
	cmd.Flags().Uint32Var(&account, "account", 0, "account index for m/44'/501'/<account>'/0'")
	return cmd
}

func addWallet(cmd *cobra.Command, deps *runtimeDeps, w wallet.Wallet, mnemonic string) error {
	idx := deps.keyring.Add(w)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "wallet #%d\naddress:     %s\nprivate key: %s\n", idx, w.PublicAddress, w.PrivateKey)
	if mnemonic != "" {
		fmt.Fprintf(out, "mnemonic:    %s\n", mnemonic)
	}

	if deps.cfg.StorePath == "" {
		fmt.Fprintln(out, "not persisted: pass --store or set store_path to keep wallets between runs")
		return nil
	}
	if err := deps.saveWallets(cmd.Context()); err != nil {
		return fmt.Errorf("save wallets: %w", err)
	}
	deps.log.Info().Str("address", w.PublicAddress).Str("store", deps.cfg.StorePath).Msg("wallet saved")
	return nil
}

func newWalletListCmd(opts *globalOpts) *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored wallets",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			wallets := deps.keyring.List()
			if len(wallets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no wallets stored")
				return nil
			}
			active := deps.keyring.ActiveIndex()
			for i, w := range wallets {
				marker := " "
				if i == active {
					marker = "*"
				}
				line := fmt.Sprintf("%s %d  %s", marker, i, w.PublicAddress)
				if showKeys {
					line += "  " + w.PrivateKey
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKeys, "show-keys", false, "also print private keys")
	return cmd
}

func newWalletBalanceCmd(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show the SOL balance of an address (default: active wallet)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			addr := ""
			if len(args) == 1 {
				addr = strings.TrimSpace(args[0])
			} else if w, ok := deps.keyring.Active(); ok {
				addr = w.PublicAddress
			}
			pub, err := types.ValidatePublicKey("address", addr)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
			defer cancel()
			lamports, err := deps.rpc.GetBalance(ctx, pub)
			if err != nil {
				return fmt.Errorf("get balance: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", pub, formatSOL(lamports))
			return nil
		},
	}
}
