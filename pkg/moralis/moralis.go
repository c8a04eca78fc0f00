// Package moralis reads token metadata from the Moralis Solana gateway.
package moralis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/internal/httpx"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// Network is the Solana cluster segment of the gateway path.
const Network = "mainnet"

// Client is a Moralis Solana API client.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client. apiKey is sent as X-API-Key.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = constants.MoralisURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpx.NewClient(0),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenMetadata returns the raw metadata document for mint.
func (c *Client) TokenMetadata(ctx context.Context, mint string) (map[string]interface{}, error) {
	if c.apiKey == "" {
		return nil, types.NewValidationError("moralis_api_key", "set moralis_api_key or LOBSTERPAD_MORALIS_API_KEY", types.ErrMissingAPIKey)
	}
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return nil, types.NewValidationError("mint", "must not be empty", types.ErrMissingField)
	}

	endpoint := fmt.Sprintf("%s/token/%s/%s/metadata", c.baseURL, Network, url.PathEscape(mint))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewStageError(types.StageMoralis, "could not reach Moralis",
			fmt.Errorf("%w: %v", types.ErrServiceUnreachable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewStageError(types.StageMoralis, "metadata lookup failed", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, types.NewStageError(types.StageMoralis, "token not found", fmt.Errorf("%w: %s", types.ErrNotFound, mint))
	}
	if !httpx.OK(resp.StatusCode) {
		return nil, types.NewStageError(types.StageMoralis, "metadata lookup failed",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, httpx.Excerpt(body)))
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, types.NewStageError(types.StageMoralis, "metadata lookup failed", fmt.Errorf("unmarshal response: %w", err))
	}
	c.log.Debug().Str("mint", mint).Msg("moralis metadata fetched")
	return out, nil
}

// MetadataURI returns metaplex.metadataUri, falling back to uri.
func MetadataURI(resp map[string]interface{}) string {
	if mp, ok := resp["metaplex"].(map[string]interface{}); ok {
		if s, ok := mp["metadataUri"].(string); ok && s != "" {
			return s
		}
	}
	if s, ok := resp["uri"].(string); ok {
		return s
	}
	return ""
}
