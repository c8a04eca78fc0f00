package constants

// Public service endpoints
const (
	PumpPortalURL  = "https://pumpportal.fun/api"
	IPFSUploadURL  = "https://pump.fun/api/ipfs"
	MoralisURL     = "https://solana-gateway.moralis.io"
	ImageProxyURL  = "https://images.weserv.nl/"
	IPFSGatewayURL = "https://ipfs.io"
	ExplorerTxURL  = "https://solscan.io/tx/"
	PumpCoinURL    = "https://pump.fun/coin/"
)

// Launch defaults
const (
	DefaultAmountSOL      = 0.01
	DefaultSlippagePct    = 10.0
	DefaultPriorityFeeSOL = 0.0005
	DefaultPool           = "pump"
	DefaultJitoTipSOL     = 0.0001
)

// LamportsPerSOL converts lamport balances for display.
const LamportsPerSOL = 1_000_000_000
