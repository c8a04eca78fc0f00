package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// FileMode is the permission of the store file. It holds private keys.
const FileMode fs.FileMode = 0o600

// document is the on-disk layout: one JSON object with fixed keys.
type document struct {
	Wallets  []wallet.Wallet      `json:"wallets"`
	Launches []types.LaunchResult `json:"launches"`
}

// File persists wallets and history to a single JSON file.
// Every write replaces the file atomically.
type File struct {
	mu   sync.Mutex
	path string
}

// Compile-time interface checks.
var (
	_ HistoryStore = (*File)(nil)
	_ WalletStore  = (*File)(nil)
)

// NewFile opens the store at path. The file is created on first write.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	return &File{path: path}, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Append(_ context.Context, r types.LaunchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	for _, l := range doc.Launches {
		if l.Signature == r.Signature {
			return ErrDuplicateKey
		}
	}
	doc.Launches = append(doc.Launches, r)
	return f.write(doc)
}

func (f *File) List(_ context.Context) ([]types.LaunchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc.Launches, nil
}

func (f *File) SaveWallets(_ context.Context, wallets []wallet.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.Wallets = append([]wallet.Wallet(nil), wallets...)
	return f.write(doc)
}

func (f *File) LoadWallets(_ context.Context) ([]wallet.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return doc.Wallets, nil
}

func (f *File) read() (document, error) {
	var doc document
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode store %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File) write(doc document) error {
	if doc.Wallets == nil {
		doc.Wallets = []wallet.Wallet{}
	}
	if doc.Launches == nil {
		doc.Launches = []types.LaunchResult{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".lobsterpad-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(FileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
