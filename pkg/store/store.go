// Package store is the persistence boundary for wallets and launch history.
// Nothing is written to disk unless a file or database store is configured.
package store

import (
	"context"
	"errors"

	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// ErrDuplicateKey is returned when a launch with the same signature is already recorded.
var ErrDuplicateKey = errors.New("duplicate key")

// HistoryStore records submitted launches.
type HistoryStore interface {
	// Append records a launch. Returns ErrDuplicateKey if the signature exists.
	Append(ctx context.Context, r types.LaunchResult) error

	// List returns all launches, oldest first.
	List(ctx context.Context) ([]types.LaunchResult, error)
}

// WalletStore persists wallets, including their private keys.
type WalletStore interface {
	SaveWallets(ctx context.Context, wallets []wallet.Wallet) error
	LoadWallets(ctx context.Context) ([]wallet.Wallet, error)
}
