package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. LOBSTERPAD_RPC_URL.
const EnvPrefix = "LOBSTERPAD"

// Load reads configuration from path (yaml, toml or json) and overlays
// LOBSTERPAD_* environment variables. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]interface{}{
		"rpc.network":                d.RPC.Network,
		"rpc.url":                    d.RPC.RPCURL,
		"rpc.commitment":             d.RPC.Commitment,
		"rpc.timeout":                d.RPC.Timeout,
		"rpc.retry.enabled":          d.RPC.Retry.Enabled,
		"rpc.retry.max_attempts":     d.RPC.Retry.MaxAttempts,
		"rpc.retry.initial_backoff":  d.RPC.Retry.InitialBackoff,
		"rpc.retry.max_backoff":      d.RPC.Retry.MaxBackoff,
		"rpc.retry.jitter":           d.RPC.Retry.Jitter,
		"rpc.rate_limit.rps":         d.RPC.RateLimit.RPS,
		"rpc.rate_limit.burst":       d.RPC.RateLimit.Burst,
		"endpoints.ipfs_url":         d.Endpoints.IPFSURL,
		"endpoints.pumpportal_url":   d.Endpoints.PumpPortalURL,
		"endpoints.moralis_url":      d.Endpoints.MoralisURL,
		"endpoints.image_proxy_url":  d.Endpoints.ImageProxyURL,
		"endpoints.ipfs_gateway_url": d.Endpoints.IPFSGatewayURL,
		"endpoints.explorer_tx_url":  d.Endpoints.ExplorerTxURL,
		"endpoints.http_timeout":     d.Endpoints.HTTPTimeout,
		"launch.amount_sol":          d.Launch.AmountSOL,
		"launch.slippage_pct":        d.Launch.SlippagePct,
		"launch.priority_fee_sol":    d.Launch.PriorityFeeSOL,
		"launch.pool":                d.Launch.Pool,
		"launch.vanity_suffix":       d.Launch.VanitySuffix,
		"launch.vanity_workers":      d.Launch.VanityWorkers,
		"launch.vanity_timeout":      d.Launch.VanityTimeout,
		"moralis_api_key":            "",
		"store_path":                 "",
		"history_dsn":                "",
		"jito_url":                   "",
		"jito_uuid":                  "",
		"jito_tip_sol":               d.JitoTipSOL,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Validate checks URLs and numeric launch parameters.
func (c Config) Validate() error {
	if err := validateURL("rpc.url", c.RPC.ResolveRPCURL()); err != nil {
		return err
	}
	for name, raw := range map[string]string{
		"endpoints.ipfs_url":         c.Endpoints.IPFSURL,
		"endpoints.pumpportal_url":   c.Endpoints.PumpPortalURL,
		"endpoints.moralis_url":      c.Endpoints.MoralisURL,
		"endpoints.image_proxy_url":  c.Endpoints.ImageProxyURL,
		"endpoints.ipfs_gateway_url": c.Endpoints.IPFSGatewayURL,
	} {
		if err := validateURL(name, raw); err != nil {
			return err
		}
	}
	if err := types.ValidateAmount("launch.amount_sol", c.Launch.AmountSOL); err != nil {
		return err
	}
	if err := types.ValidateSlippage("launch.slippage_pct", c.Launch.SlippagePct); err != nil {
		return err
	}
	if err := types.ValidateAmount("launch.priority_fee_sol", c.Launch.PriorityFeeSOL); err != nil {
		return err
	}
	return types.ValidateAmount("jito_tip_sol", c.JitoTipSOL)
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is empty", name)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", name, err)
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return fmt.Errorf("%s: unsupported scheme %q", name, parsed.Scheme)
	}
	return nil
}
