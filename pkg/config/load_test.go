package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPC.ResolveRPCURL() != DefaultRPCURL(NetworkMainnet) {
		t.Errorf("rpc url = %s", cfg.RPC.ResolveRPCURL())
	}
	if cfg.Launch.SlippagePct != 10 {
		t.Errorf("slippage = %v, want 10", cfg.Launch.SlippagePct)
	}
	if cfg.Launch.PriorityFeeSOL != 0.0005 {
		t.Errorf("priority fee = %v, want 0.0005", cfg.Launch.PriorityFeeSOL)
	}
	if cfg.StorePath != "" {
		t.Errorf("store path should default to in-memory, got %q", cfg.StorePath)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lobsterpad.yaml")
	content := `
rpc:
  url: https://rpc.example.org
  timeout: 5s
launch:
  amount_sol: 0.25
  vanity_suffix: inu
endpoints:
  pumpportal_url: https://portal.example.org/api
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("LOBSTERPAD_MORALIS_API_KEY", "secret")
	t.Setenv("LOBSTERPAD_LAUNCH_SLIPPAGE_PCT", "15")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPC.RPCURL != "https://rpc.example.org" {
		t.Errorf("rpc url = %s", cfg.RPC.RPCURL)
	}
	if cfg.RPC.Timeout != 5*time.Second {
		t.Errorf("timeout = %s", cfg.RPC.Timeout)
	}
	if cfg.Launch.AmountSOL != 0.25 {
		t.Errorf("amount = %v", cfg.Launch.AmountSOL)
	}
	if cfg.Launch.VanitySuffix != "inu" {
		t.Errorf("vanity suffix = %q", cfg.Launch.VanitySuffix)
	}
	if cfg.Launch.SlippagePct != 15 {
		t.Errorf("slippage from env = %v", cfg.Launch.SlippagePct)
	}
	if cfg.MoralisAPIKey != "secret" {
		t.Errorf("moralis key from env = %q", cfg.MoralisAPIKey)
	}
	if cfg.Endpoints.PumpPortalURL != "https://portal.example.org/api" {
		t.Errorf("pumpportal url = %s", cfg.Endpoints.PumpPortalURL)
	}
	// untouched keys keep defaults
	if cfg.Endpoints.IPFSURL != DefaultEndpoints().IPFSURL {
		t.Errorf("ipfs url = %s", cfg.Endpoints.IPFSURL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Launch.SlippagePct = 120
	if err := cfg.Validate(); !errors.Is(err, types.ErrInvalidAmount) || !types.IsValidation(err) {
		t.Fatalf("expected slippage validation error, got %v", err)
	}

	cfg = Default()
	cfg.JitoTipSOL = -0.001
	if err := cfg.Validate(); !errors.Is(err, types.ErrInvalidAmount) {
		t.Fatalf("expected jito tip error, got %v", err)
	}

	cfg = Default()
	cfg.Endpoints.IPFSURL = "ftp://pump.fun/api/ipfs"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected scheme error")
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
