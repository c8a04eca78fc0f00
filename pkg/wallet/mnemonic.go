package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

const hardenedOffset uint32 = 0x80000000

// NewMnemonic returns a fresh 12-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("build mnemonic: %w", err)
	}
	return mnemonic, nil
}

// FromMnemonic derives the wallet at m/44'/501'/account'/0', the path used by
// Phantom and solana-keygen's --derivation-path default.
func FromMnemonic(mnemonic string, account uint32) (Wallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return Wallet{}, fmt.Errorf("invalid mnemonic: %w", err)
	}
	key := deriveEd25519(seed, []uint32{44, 501, account, 0})
	return FromPrivateKey(key), nil
}

// deriveEd25519 implements SLIP-10 ed25519 derivation. Every path segment is hardened.
func deriveEd25519(seed []byte, path []uint32) solana.PrivateKey {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	for _, segment := range path {
		data := make([]byte, 0, 37)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, segment|hardenedOffset)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(key))
}
