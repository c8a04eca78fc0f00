package store

import (
	"context"
	"sync"

	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// Memory keeps wallets and history for the lifetime of the process.
type Memory struct {
	mu       sync.RWMutex
	wallets  []wallet.Wallet
	launches []types.LaunchResult
	seen     map[string]struct{}
}

// Compile-time interface checks.
var (
	_ HistoryStore = (*Memory)(nil)
	_ WalletStore  = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

func (m *Memory) Append(_ context.Context, r types.LaunchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[r.Signature]; ok {
		return ErrDuplicateKey
	}
	m.seen[r.Signature] = struct{}{}
	m.launches = append(m.launches, r)
	return nil
}

func (m *Memory) List(_ context.Context) ([]types.LaunchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.LaunchResult(nil), m.launches...), nil
}

func (m *Memory) SaveWallets(_ context.Context, wallets []wallet.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets = append([]wallet.Wallet(nil), wallets...)
	return nil
}

func (m *Memory) LoadWallets(_ context.Context) ([]wallet.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]wallet.Wallet(nil), m.wallets...), nil
}
