package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

type signatureLookup interface {
	GetBySignature(ctx context.Context, signature string) (types.LaunchResult, error)
}

// findLaunch uses an indexed lookup when the store has one.
func findLaunch(ctx context.Context, h store.HistoryStore, signature string) (types.LaunchResult, error) {
	if l, ok := h.(signatureLookup); ok {
		return l.GetBySignature(ctx, signature)
	}
	launches, err := h.List(ctx)
	if err != nil {
		return types.LaunchResult{}, err
	}
	for _, r := range launches {
		if r.Signature == signature {
			return r, nil
		}
	}
	return types.LaunchResult{}, fmt.Errorf("launch %s: %w", signature, types.ErrNotFound)
}

func newHistoryCmd(opts *globalOpts) *cobra.Command {
	var (
		asJSON    bool
		limit     int
		signature string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded launches",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newRuntime(cmd, opts)
			if err != nil {
				return err
			}
			defer deps.close()

			out := cmd.OutOrStdout()
			if signature != "" {
				r, err := findLaunch(cmd.Context(), deps.history, signature)
				if err != nil {
					return err
				}
				printResult(out, r)
				return nil
			}

			launches, err := deps.history.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if limit > 0 && len(launches) > limit {
				launches = launches[len(launches)-limit:]
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(launches)
			}
			if len(launches) == 0 {
				fmt.Fprintln(out, "no launches recorded")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LAUNCHED\tSYMBOL\tNAME\tMINT\tSIGNATURE")
			for _, l := range launches {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					l.LaunchedAt.Local().Format(time.DateTime), l.Symbol, l.Name, l.MintAddress, l.Signature)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "only show the most recent N launches")
	cmd.Flags().StringVar(&signature, "signature", "", "show a single launch")
	return cmd
}
