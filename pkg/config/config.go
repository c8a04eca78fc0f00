package config

import (
	"io"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/pkg/constants"
)

// Network defines the target Solana cluster.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkDevnet  Network = "devnet"
	NetworkCustom  Network = "custom"
)

// DefaultRPCURL returns the standard RPC endpoint for a known network.
func DefaultRPCURL(network Network) string {
	switch network {
	case NetworkMainnet:
		return "https://api.mainnet-beta.solana.com"
	case NetworkTestnet:
		return "https://api.testnet.solana.com"
	case NetworkDevnet:
		return "https://api.devnet.solana.com"
	default:
		return ""
	}
}

// RetryConfig controls retries of idempotent RPC reads.
// Transaction submission is never retried.
type RetryConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Jitter         bool          `mapstructure:"jitter"`
}

// RateLimitConfig throttles outbound RPC calls.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// RPCConfig aggregates runtime settings for RPC usage.
type RPCConfig struct {
	Network    Network         `mapstructure:"network"`
	RPCURL     string          `mapstructure:"url"`
	Commitment string          `mapstructure:"commitment"`
	Timeout    time.Duration   `mapstructure:"timeout"`
	Retry      RetryConfig     `mapstructure:"retry"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	Logger     zerolog.Logger  `mapstructure:"-"`
}

// DefaultRPCConfig yields mainnet defaults with confirmed commitment,
// which is what launch submission uses for preflight.
func DefaultRPCConfig() RPCConfig {
	return RPCConfig{
		Network:    NetworkMainnet,
		RPCURL:     DefaultRPCURL(NetworkMainnet),
		Commitment: "confirmed",
		Timeout:    30 * time.Second,
		Retry: RetryConfig{
			Enabled:        true,
			MaxAttempts:    3,
			InitialBackoff: 150 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			Jitter:         true,
		},
		RateLimit: RateLimitConfig{
			RPS:   8,
			Burst: 16,
		},
		Logger: zerolog.New(io.Discard),
	}
}

// ResolveRPCURL returns RPCURL if set, otherwise falls back to network defaults.
func (c RPCConfig) ResolveRPCURL() string {
	if c.RPCURL != "" {
		return c.RPCURL
	}
	return DefaultRPCURL(c.Network)
}

// Endpoints lists the HTTP collaborators of the launch flow.
type Endpoints struct {
	IPFSURL        string        `mapstructure:"ipfs_url"`
	PumpPortalURL  string        `mapstructure:"pumpportal_url"`
	MoralisURL     string        `mapstructure:"moralis_url"`
	ImageProxyURL  string        `mapstructure:"image_proxy_url"`
	IPFSGatewayURL string        `mapstructure:"ipfs_gateway_url"`
	ExplorerTxURL  string        `mapstructure:"explorer_tx_url"`
	HTTPTimeout    time.Duration `mapstructure:"http_timeout"`
}

// DefaultEndpoints points at the public services.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		IPFSURL:        constants.IPFSUploadURL,
		PumpPortalURL:  constants.PumpPortalURL,
		MoralisURL:     constants.MoralisURL,
		ImageProxyURL:  constants.ImageProxyURL,
		IPFSGatewayURL: constants.IPFSGatewayURL,
		ExplorerTxURL:  constants.ExplorerTxURL,
		HTTPTimeout:    30 * time.Second,
	}
}

// LaunchDefaults holds per-launch parameters used when the caller leaves them unset.
type LaunchDefaults struct {
	AmountSOL      float64       `mapstructure:"amount_sol"`
	SlippagePct    float64       `mapstructure:"slippage_pct"`
	PriorityFeeSOL float64       `mapstructure:"priority_fee_sol"`
	Pool           string        `mapstructure:"pool"`
	VanitySuffix   string        `mapstructure:"vanity_suffix"`
	VanityWorkers  int           `mapstructure:"vanity_workers"`
	VanityTimeout  time.Duration `mapstructure:"vanity_timeout"` // 0 = unbounded
}

// DefaultLaunchDefaults mirrors the PumpPortal defaults.
func DefaultLaunchDefaults() LaunchDefaults {
	return LaunchDefaults{
		AmountSOL:      constants.DefaultAmountSOL,
		SlippagePct:    constants.DefaultSlippagePct,
		PriorityFeeSOL: constants.DefaultPriorityFeeSOL,
		Pool:           constants.DefaultPool,
		VanityWorkers:  runtime.NumCPU(),
	}
}

// Config is the aggregate application configuration.
type Config struct {
	RPC           RPCConfig      `mapstructure:"rpc"`
	Endpoints     Endpoints      `mapstructure:"endpoints"`
	Launch        LaunchDefaults `mapstructure:"launch"`
	MoralisAPIKey string         `mapstructure:"moralis_api_key"`
	// StorePath enables the file store for wallets and launch history. Empty keeps
	// everything in memory.
	StorePath  string `mapstructure:"store_path"`
	HistoryDSN string `mapstructure:"history_dsn"`
	JitoURL    string `mapstructure:"jito_url"`
	JitoUUID   string `mapstructure:"jito_uuid"`
	// JitoTipSOL is paid to a Jito tip account with every bundle.
	JitoTipSOL float64 `mapstructure:"jito_tip_sol"`
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		RPC:        DefaultRPCConfig(),
		Endpoints:  DefaultEndpoints(),
		Launch:     DefaultLaunchDefaults(),
		JitoTipSOL: constants.DefaultJitoTipSOL,
	}
}
