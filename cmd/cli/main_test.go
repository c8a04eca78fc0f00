package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ninja0404/lobsterpad/pkg/config"
	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"WARN":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
		"":      zerolog.InfoLevel,
		"bogus": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMask(t *testing.T) {
	if got := mask(""); got != "" {
		t.Fatalf("mask empty = %q", got)
	}
	if got := mask("short"); got != "****" {
		t.Fatalf("mask short = %q", got)
	}
	if got := mask("abcdefghijkl"); got != "abcd****" {
		t.Fatalf("mask long = %q", got)
	}
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(png, []byte("\x89PNG\r\n\x1a\nrest"), 0o600); err != nil {
		t.Fatal(err)
	}
	img, err := readImage(png)
	if err != nil {
		t.Fatalf("readImage: %v", err)
	}
	if img.Filename != "logo.png" || img.ContentType != "image/png" || len(img.Data) == 0 {
		t.Fatalf("unexpected image %+v", img)
	}

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readImage(txt); err == nil {
		t.Fatal("expected error for non-image file")
	}
	if _, err := readImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolvePrivateKeyPrecedence(t *testing.T) {
	stored, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	deps := &runtimeDeps{keyring: wallet.NewKeyring(stored)}

	t.Setenv(privateKeyEnv, "")
	if got := resolvePrivateKey("", deps); got != stored.PrivateKey {
		t.Fatal("expected active stored wallet")
	}
	t.Setenv(privateKeyEnv, "from-env")
	if got := resolvePrivateKey("", deps); got != "from-env" {
		t.Fatalf("got %q, want env value", got)
	}
	if got := resolvePrivateKey("from-flag", deps); got != "from-flag" {
		t.Fatalf("got %q, want flag value", got)
	}
	t.Setenv(privateKeyEnv, "")
	if got := resolvePrivateKey("", nil); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cmd := &cobra.Command{}
	opts := &globalOpts{
		rpcURL:       "https://rpc.example.com",
		commitment:   "finalized",
		rateLimitRPS: -1,
		timeoutSec:   7,
		storePath:    "/tmp/lobsterpad.json",
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RPC.Network != config.NetworkCustom || cfg.RPC.ResolveRPCURL() != "https://rpc.example.com" {
		t.Fatalf("rpc override not applied: %+v", cfg.RPC)
	}
	if cfg.RPC.Commitment != "finalized" || cfg.RPC.Timeout != secDuration(7) {
		t.Fatalf("unexpected rpc config %+v", cfg.RPC)
	}
	if cfg.RPC.RateLimit.RPS != config.Default().RPC.RateLimit.RPS {
		t.Fatalf("rate limit should keep its default, got %v", cfg.RPC.RateLimit.RPS)
	}
	if cfg.StorePath != "/tmp/lobsterpad.json" {
		t.Fatalf("store path = %q", cfg.StorePath)
	}

	opts.rpcURL = "ftp://nope"
	if _, err := loadConfig(cmd, opts); err == nil {
		t.Fatal("expected validation error for bad rpc url")
	}
}

func TestLaunchFlagsOverrideDefaults(t *testing.T) {
	t.Setenv(privateKeyEnv, "")
	stored, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	other, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	deps := &runtimeDeps{cfg: config.Default(), keyring: wallet.NewKeyring(stored, other)}

	f := launchFlags{
		name:        "Lobster",
		symbol:      "LOB",
		description: "claws",
		walletIndex: 1,
		amount:      0,
		slippage:    25,
		pool:        "bonk",
		vanity:      "pump",
		noVanity:    true,
		mayhem:      true,
	}
	req, err := f.request(t.Context(), &cobra.Command{}, deps)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.SignerPrivateKey != other.PrivateKey {
		t.Fatal("expected the selected wallet's key")
	}
	if req.Metadata.Name != "Lobster" || req.Metadata.Symbol != "LOB" || req.Metadata.Description != "claws" {
		t.Fatalf("metadata %+v", req.Metadata)
	}
	if req.AmountSOL != 0 || req.SlippagePct != 25 || req.Pool != "bonk" {
		t.Fatalf("overrides not applied: %+v", req)
	}
	if req.PriorityFeeSOL != deps.cfg.Launch.PriorityFeeSOL {
		t.Fatalf("priority fee = %v, want default", req.PriorityFeeSOL)
	}
	if req.VanitySuffix != "" || !req.MayhemMode {
		t.Fatalf("vanity/mayhem: %+v", req)
	}

	f = launchFlags{amount: -1, walletIndex: 5}
	if _, err := f.request(t.Context(), &cobra.Command{}, deps); err == nil {
		t.Fatal("expected error for out of range wallet index")
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"history", "--env-file", "", "--store", filepath.Join(t.TempDir(), "store.json")})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out.String(), "no launches recorded") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestConfigCommandMasksSecrets(t *testing.T) {
	t.Setenv(config.EnvPrefix+"_MORALIS_API_KEY", "supersecretvalue")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--env-file", ""})
	if err := root.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("config: %v", err)
	}
	if strings.Contains(out.String(), "supersecretvalue") {
		t.Fatal("api key printed in clear")
	}
	if !strings.Contains(out.String(), "moralis_api_key=supe****") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFindLaunchScansList(t *testing.T) {
	mem := store.NewMemory()
	want := types.LaunchResult{Signature: "sig-2", MintAddress: "mint-2", Symbol: "TWO"}
	for _, r := range []types.LaunchResult{{Signature: "sig-1"}, want} {
		if err := mem.Append(t.Context(), r); err != nil {
			t.Fatal(err)
		}
	}
	got, err := findLaunch(t.Context(), mem, "sig-2")
	if err != nil || got != want {
		t.Fatalf("findLaunch = %+v, %v", got, err)
	}
	if _, err := findLaunch(t.Context(), mem, "nope"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
