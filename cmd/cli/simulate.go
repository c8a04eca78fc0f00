package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
)

func simulateTransaction(ctx context.Context, deps *runtimeDeps, tx *solana.Transaction) (*solanarpc.SimulateTransactionResponse, error) {
	if deps == nil || deps.rpc == nil {
		return nil, fmt.Errorf("runtime deps not ready")
	}
	res, err := deps.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return res, nil
}

func printSimResult(out io.Writer, res *solanarpc.SimulateTransactionResponse) {
	if res == nil || res.Value == nil {
		fmt.Fprintf(out, "no simulation result\n")
		return
	}
	if res.Value.Err != nil {
		fmt.Fprintf(out, "simulation error: %v\n", res.Value.Err)
	} else {
		fmt.Fprintln(out, "simulation ok")
	}
	if res.Value.UnitsConsumed != nil {
		fmt.Fprintf(out, "compute units: %d\n", *res.Value.UnitsConsumed)
	}
	if len(res.Value.Logs) > 0 {
		fmt.Fprintln(out, "logs:")
		for _, l := range res.Value.Logs {
			fmt.Fprintf(out, "  %s\n", l)
		}
	}
}
