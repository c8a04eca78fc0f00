package wallet

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

// Wallet is a Solana keypair in its user-facing form.
type Wallet struct {
	PublicAddress string `json:"address"`
	PrivateKey    string `json:"privateKey"` // base58, 64 bytes (seed || public key)
}

// Generate creates a wallet from a fresh random keypair.
func Generate() (Wallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return Wallet{}, fmt.Errorf("generate keypair: %w", err)
	}
	return FromPrivateKey(key), nil
}

// FromPrivateKey wraps an existing private key.
func FromPrivateKey(key solana.PrivateKey) Wallet {
	return Wallet{
		PublicAddress: key.PublicKey().String(),
		PrivateKey:    base58.Encode(key),
	}
}

// FromBase58 imports a user-supplied base58 private key. Empty input matches
// types.ErrMissingPrivateKey, anything else malformed matches
// types.ErrInvalidKeyFormat.
func FromBase58(privateKey string) (Wallet, error) {
	key, err := decodePrivateKey(privateKey)
	if err != nil {
		return Wallet{}, err
	}
	return Wallet{
		PublicAddress: key.PublicKey().String(),
		PrivateKey:    strings.TrimSpace(privateKey),
	}, nil
}

// Key decodes the wallet's private key.
func (w Wallet) Key() (solana.PrivateKey, error) {
	return decodePrivateKey(w.PrivateKey)
}

// Signer returns a local signer for the wallet.
func (w Wallet) Signer() (Signer, error) {
	key, err := w.Key()
	if err != nil {
		return nil, err
	}
	return NewLocalFromPrivateKey(key), nil
}

// FromKeygenFile imports a solana-keygen JSON keypair file.
func FromKeygenFile(path string) (Wallet, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return Wallet{}, fmt.Errorf("load keypair: %w", err)
	}
	return FromPrivateKey(key), nil
}

// decodePrivateKey decodes a 64-byte base58 keypair and checks that the
// embedded public half matches the one derived from the seed.
func decodePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, types.NewValidationError("privateKey", "is empty", types.ErrMissingPrivateKey)
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidKeyFormat, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", types.ErrInvalidKeyFormat, ed25519.PrivateKeySize, len(raw))
	}
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: public key does not match seed", types.ErrInvalidKeyFormat)
	}
	return solana.PrivateKey(raw), nil
}
