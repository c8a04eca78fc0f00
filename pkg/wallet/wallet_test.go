package wallet

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mr-tron/base58"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func TestGenerateImportRoundTrip(t *testing.T) {
	for i := 0; i < 20; i++ {
		w, err := Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		imported, err := FromBase58(w.PrivateKey)
		if err != nil {
			t.Fatalf("import %s: %v", w.PublicAddress, err)
		}
		if imported.PublicAddress != w.PublicAddress {
			t.Fatalf("address mismatch: generated %s, imported %s", w.PublicAddress, imported.PublicAddress)
		}
		key, err := imported.Key()
		if err != nil {
			t.Fatalf("key: %v", err)
		}
		if key.PublicKey().String() != w.PublicAddress {
			t.Fatalf("derived key %s != %s", key.PublicKey(), w.PublicAddress)
		}
	}
}

func TestFromBase58Invalid(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw, _ := base58.Decode(w.PrivateKey)
	tampered := append([]byte{}, raw...)
	tampered[40] ^= 0xff

	cases := map[string]string{
		"not base58":   "0OIl-not-base58",
		"too short":    base58.Encode(raw[:32]),
		"tampered pub": base58.Encode(tampered),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromBase58(in)
			if !errors.Is(err, types.ErrInvalidKeyFormat) {
				t.Fatalf("expected ErrInvalidKeyFormat, got %v", err)
			}
		})
	}

	if _, err := FromBase58("   "); !errors.Is(err, types.ErrMissingPrivateKey) {
		t.Fatalf("expected ErrMissingPrivateKey for blank input, got %v", err)
	}
}

func TestSignerSignsWithWalletKey(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	signer, err := w.Signer()
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	if signer.PublicKey().String() != w.PublicAddress {
		t.Fatalf("signer pubkey %s != %s", signer.PublicKey(), w.PublicAddress)
	}
	msg := []byte("lobster")
	sig, err := signer.SignMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !sig.Verify(signer.PublicKey(), msg) {
		t.Fatal("signature does not verify")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := signer.SignMessage(ctx, msg); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMnemonicDerivation(t *testing.T) {
	mnemonic, err := NewMnemonic()
	if err != nil {
		t.Fatalf("mnemonic: %v", err)
	}
	a, err := FromMnemonic(mnemonic, 0)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	again, err := FromMnemonic("  "+mnemonic+"  ", 0)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if a.PublicAddress != again.PublicAddress {
		t.Fatalf("derivation not deterministic: %s vs %s", a.PublicAddress, again.PublicAddress)
	}
	b, err := FromMnemonic(mnemonic, 1)
	if err != nil {
		t.Fatalf("derive account 1: %v", err)
	}
	if a.PublicAddress == b.PublicAddress {
		t.Fatal("different accounts produced the same address")
	}
	if _, err := FromBase58(a.PrivateKey); err != nil {
		t.Fatalf("derived key should import cleanly: %v", err)
	}
	if _, err := FromMnemonic("lobster lobster lobster", 0); err == nil {
		t.Fatal("expected invalid mnemonic error")
	}
}

// SLIP-10 test vector 1 for ed25519.
func TestDeriveEd25519Vectors(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	cases := []struct {
		path []uint32
		key  string
	}{
		{nil, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7"},
		{[]uint32{0}, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3"},
	}
	for _, tc := range cases {
		key := deriveEd25519(seed, tc.path)
		if got := hex.EncodeToString(key[:32]); got != tc.key {
			t.Errorf("path %v: key = %s, want %s", tc.path, got, tc.key)
		}
	}
}

func TestFromMnemonicKnownAddress(t *testing.T) {
	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	w, err := FromMnemonic(mnemonic, 0)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if w.PublicAddress != "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk" {
		t.Fatalf("address = %s", w.PublicAddress)
	}
}

func TestKeyring(t *testing.T) {
	k := NewKeyring()
	if _, ok := k.Active(); ok {
		t.Fatal("empty keyring should have no active wallet")
	}
	if k.ActiveIndex() != -1 {
		t.Fatalf("active index = %d, want -1", k.ActiveIndex())
	}
	w1, _ := Generate()
	w2, _ := Generate()
	k.Add(w1)
	idx := k.Add(w2)
	if idx != 1 {
		t.Fatalf("index = %d, want 1", idx)
	}
	active, ok := k.Active()
	if !ok || active.PublicAddress != w2.PublicAddress {
		t.Fatalf("active = %+v", active)
	}
	if err := k.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	active, _ = k.Active()
	if active.PublicAddress != w1.PublicAddress || k.ActiveIndex() != 0 {
		t.Fatalf("active after select = %s (index %d)", active.PublicAddress, k.ActiveIndex())
	}
	if err := k.Select(5); err == nil {
		t.Fatal("expected out of range error")
	}
	k.Add(w1)
	if k.Len() != 3 {
		t.Fatalf("duplicates should be allowed, len = %d", k.Len())
	}
}

func TestFromKeygenFile(t *testing.T) {
	w, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key, _ := w.Key()

	// solana-keygen writes the 64 key bytes as a JSON number array
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	bz, _ := json.Marshal(ints)
	path := filepath.Join(t.TempDir(), "id.json")
	if err := os.WriteFile(path, bz, 0o600); err != nil {
		t.Fatal(err)
	}

	imported, err := FromKeygenFile(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != w {
		t.Fatalf("imported %+v, want %+v", imported, w)
	}
	if _, err := FromKeygenFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
