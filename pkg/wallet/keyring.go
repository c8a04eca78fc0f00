package wallet

import (
	"fmt"
	"sync"
)

// Keyring is an in-memory wallet list with one active entry. It never touches
// disk; persistence goes through the store package on explicit request.
type Keyring struct {
	mu      sync.RWMutex
	wallets []Wallet
	active  int
}

// NewKeyring builds a keyring seeded with wallets. The last one becomes active.
func NewKeyring(wallets ...Wallet) *Keyring {
	k := &Keyring{active: -1}
	for _, w := range wallets {
		k.Add(w)
	}
	return k
}

// Add appends a wallet, makes it active and returns its index. Duplicates are allowed.
func (k *Keyring) Add(w Wallet) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.wallets = append(k.wallets, w)
	k.active = len(k.wallets) - 1
	return k.active
}

// List returns a copy of all wallets.
func (k *Keyring) List() []Wallet {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make([]Wallet, len(k.wallets))
	copy(out, k.wallets)
	return out
}

// Len returns the number of wallets.
func (k *Keyring) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.wallets)
}

// Select makes the wallet at idx active.
func (k *Keyring) Select(idx int) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if idx < 0 || idx >= len(k.wallets) {
		return fmt.Errorf("wallet index %d out of range [0, %d)", idx, len(k.wallets))
	}
	k.active = idx
	return nil
}

// Active returns the active wallet, if any.
func (k *Keyring) Active() (Wallet, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.active < 0 || k.active >= len(k.wallets) {
		return Wallet{}, false
	}
	return k.wallets[k.active], true
}

// ActiveIndex returns the index of the active wallet, or -1 when empty.
func (k *Keyring) ActiveIndex() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.active
}
