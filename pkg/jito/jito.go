// Package jito submits signed launch transactions through the Jito Block Engine
// instead of a plain RPC node.
//
// See: https://github.com/jito-labs/jito-go-rpc
package jito

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	jitorpc "github.com/jito-labs/jito-go-rpc"
)

// MainnetBlockEngine is the default Jito endpoint.
const MainnetBlockEngine = "https://mainnet.block-engine.jito.wtf/api/v1"

// MainnetBlockEngines contains regional mainnet endpoints, rotated on rate limiting.
var MainnetBlockEngines = []string{
	"https://mainnet.block-engine.jito.wtf/api/v1",
	"https://amsterdam.mainnet.block-engine.jito.wtf/api/v1",
	"https://frankfurt.mainnet.block-engine.jito.wtf/api/v1",
	"https://ny.mainnet.block-engine.jito.wtf/api/v1",
	"https://tokyo.mainnet.block-engine.jito.wtf/api/v1",
}

// DefaultTipLamports is paid when no tip is configured.
const DefaultTipLamports uint64 = 100_000

// MainnetTipAccounts are the published Jito tip accounts. They are used when
// the block engine cannot be asked for its list.
var MainnetTipAccounts = []solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// GetRandomTipAccountLocal returns a random tip account from MainnetTipAccounts
// without a network call.
func GetRandomTipAccountLocal() solana.PublicKey {
	return MainnetTipAccounts[rand.Intn(len(MainnetTipAccounts))]
}

// Client wraps the Jito RPC client with endpoint rotation.
type Client struct {
	endpoints    []string
	uuid         string
	currentIndex uint32
	maxRetries   int
	retryDelay   time.Duration
	tipLamports  uint64

	tipMu       sync.Mutex
	tipAccounts []solana.PublicKey
}

// NewClient creates a client for endpoint. A comma separated list rotates
// between endpoints, "all" uses every regional mainnet engine. uuid is optional.
func NewClient(endpoint string, uuid string) *Client {
	if strings.EqualFold(strings.TrimSpace(endpoint), "all") {
		endpoint = strings.Join(MainnetBlockEngines, ",")
	}
	var endpoints []string
	for _, e := range strings.Split(endpoint, ",") {
		if e = strings.TrimSpace(e); e != "" {
			endpoints = append(endpoints, e)
		}
	}
	if len(endpoints) == 0 {
		endpoints = []string{MainnetBlockEngine}
	}
	return &Client{
		endpoints:   endpoints,
		uuid:        uuid,
		maxRetries:  len(endpoints) + 2,
		retryDelay:  200 * time.Millisecond,
		tipLamports: DefaultTipLamports,
	}
}

// WithTip sets the tip paid with every bundle. Zero keeps the default.
func (c *Client) WithTip(lamports uint64) *Client {
	if lamports > 0 {
		c.tipLamports = lamports
	}
	return c
}

// TipLamports returns the tip paid with every bundle.
func (c *Client) TipLamports() uint64 {
	return c.tipLamports
}

func (c *Client) next() *jitorpc.JitoJsonRpcClient {
	idx := atomic.AddUint32(&c.currentIndex, 1)
	endpoint := c.endpoints[int(idx)%len(c.endpoints)]
	return jitorpc.NewJitoJsonRpcClient(endpoint, c.uuid)
}

// Rate-limited requests are rejected before the bundle is accepted.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "congested") ||
		strings.Contains(errStr, "429")
}

// GetTipAccounts asks the block engine for its tip accounts.
func (c *Client) GetTipAccounts(ctx context.Context) ([]solana.PublicKey, error) {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rawResp, err := c.next().GetTipAccounts()
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				sleep(ctx, c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("get tip accounts: %w", err)
		}

		var accounts []string
		if err := json.Unmarshal(rawResp, &accounts); err != nil {
			return nil, fmt.Errorf("unmarshal tip accounts: %w", err)
		}
		result := make([]solana.PublicKey, 0, len(accounts))
		for _, acc := range accounts {
			pk, err := solana.PublicKeyFromBase58(acc)
			if err != nil {
				continue
			}
			result = append(result, pk)
		}
		return result, nil
	}
	return nil, fmt.Errorf("get tip accounts failed after %d attempts: %w", c.maxRetries, lastErr)
}

// TipAccount picks a random tip account. The engine's list is fetched once
// and MainnetTipAccounts is used when that fails.
func (c *Client) TipAccount(ctx context.Context) solana.PublicKey {
	c.tipMu.Lock()
	defer c.tipMu.Unlock()
	if c.tipAccounts == nil {
		accounts, err := c.GetTipAccounts(ctx)
		if err != nil || len(accounts) == 0 {
			return GetRandomTipAccountLocal()
		}
		c.tipAccounts = accounts
	}
	return c.tipAccounts[rand.Intn(len(c.tipAccounts))]
}

// TipTransaction builds the unsigned transfer of the configured tip from payer
// to a tip account. It reuses blockhash so it expires with the bundle.
func (c *Client) TipTransaction(ctx context.Context, payer solana.PublicKey, blockhash solana.Hash) (*solana.Transaction, error) {
	tip := system.NewTransferInstruction(c.tipLamports, payer, c.TipAccount(ctx)).Build()
	tx, err := solana.NewTransaction([]solana.Instruction{tip}, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("build tip transaction: %w", err)
	}
	return tx, nil
}

// SendResult contains the result of sending a bundle via Jito.
type SendResult struct {
	Signature solana.Signature
	BundleID  string
}

// SendBundle sends fully signed transactions as one bundle. The returned
// signature is the first signature of the first transaction.
func (c *Client) SendBundle(ctx context.Context, txs ...*solana.Transaction) (SendResult, error) {
	if len(txs) == 0 {
		return SendResult{}, fmt.Errorf("bundle is empty")
	}
	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		txBytes, err := tx.MarshalBinary()
		if err != nil {
			return SendResult{}, fmt.Errorf("marshal transaction: %w", err)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(txBytes))
	}

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return SendResult{}, err
		}
		rawResp, err := c.next().SendBundle([][]string{encoded})
		if err != nil {
			lastErr = err
			if isRateLimitError(err) {
				sleep(ctx, c.retryDelay)
				continue
			}
			return SendResult{}, fmt.Errorf("jito send bundle: %w", err)
		}

		var bundleID string
		if err = json.Unmarshal(rawResp, &bundleID); err != nil {
			return SendResult{}, fmt.Errorf("unmarshal bundle response: %w", err)
		}
		var sig solana.Signature
		if len(txs[0].Signatures) > 0 {
			sig = txs[0].Signatures[0]
		}
		return SendResult{Signature: sig, BundleID: bundleID}, nil
	}
	return SendResult{}, fmt.Errorf("jito send bundle failed after %d attempts: %w", c.maxRetries, lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
