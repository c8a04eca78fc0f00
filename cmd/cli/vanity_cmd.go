package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/vanity"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

func newVanityCmd(opts *globalOpts) *cobra.Command {
	var (
		prefix        string
		workers       int
		timeout       time.Duration
		caseSensitive bool
		save          bool
	)

	cmd := &cobra.Command{
		Use:   "vanity <suffix>",
		Short: "Grind a keypair whose address ends with suffix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suffix := ""
			if len(args) == 1 {
				suffix = args[0]
			}
			log := newLogger(cmd, opts)
			log.Info().
				Str("prefix", prefix).
				Str("suffix", suffix).
				Uint64("expected_attempts", vanity.EstimateDifficulty(len(prefix), len(suffix))).
				Msg("searching")

			res, err := vanity.Generate(cmd.Context(), vanity.Options{
				Prefix:        prefix,
				Suffix:        suffix,
				Workers:       workers,
				Timeout:       timeout,
				CaseSensitive: caseSensitive,
				OnProgress: func(attempts uint64) {
					if attempts%1_000_000 == 0 {
						log.Debug().Uint64("attempts", attempts).Msg("still searching")
					}
				},
			})
			if err != nil {
				return err
			}

			w := wallet.FromPrivateKey(res.PrivateKey)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:     %s\nprivate key: %s\n", w.PublicAddress, w.PrivateKey)
			fmt.Fprintf(out, "attempts:    %d in %s (%.0f/s)\n", res.Attempts, res.Duration.Round(time.Millisecond),
				float64(res.Attempts)/res.Duration.Seconds())

			if !save {
				return nil
			}
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()
			return addWallet(cmd, deps, w, "")
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "required address prefix")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "give up after this long (0 = no limit)")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "match the exact case")
	cmd.Flags().BoolVar(&save, "save", false, "add the keypair to the wallet store")
	return cmd
}
