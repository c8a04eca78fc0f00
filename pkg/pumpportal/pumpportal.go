// Package pumpportal requests unsigned transactions from the PumpPortal
// trade-local API. Signing and submission happen locally.
package pumpportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/internal/httpx"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// Trade actions accepted by trade-local.
const (
	ActionCreate = "create"
	ActionBuy    = "buy"
	ActionSell   = "sell"
)

// CreateRequest describes a token creation with an initial dev buy.
type CreateRequest struct {
	PublicKey      string
	Mint           string
	Name           string
	Symbol         string
	URI            string
	AmountSOL      float64
	SlippagePct    float64
	PriorityFeeSOL float64
	Pool           string
	MayhemMode     bool
}

// TradeRequest describes a buy or sell of an existing token.
// Amount is a number or a percentage of holdings such as "100%".
type TradeRequest struct {
	PublicKey        string
	Action           string
	Mint             string
	Amount           string
	DenominatedInSol bool
	SlippagePct      float64
	PriorityFeeSOL   float64
	Pool             string
}

type tokenMetadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

type tradeBody struct {
	PublicKey        string         `json:"publicKey"`
	Action           string         `json:"action"`
	TokenMetadata    *tokenMetadata `json:"tokenMetadata,omitempty"`
	Mint             string         `json:"mint"`
	DenominatedInSol string         `json:"denominatedInSol"`
	Amount           interface{}    `json:"amount"`
	Slippage         float64        `json:"slippage"`
	PriorityFee      float64        `json:"priorityFee"`
	Pool             string         `json:"pool"`
	IsMayhemMode     string         `json:"isMayhemMode,omitempty"`
}

// Client talks to the trade-local endpoint.
type Client struct {
	baseURL string
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

// NewClient creates a client for the API rooted at baseURL, e.g. https://pumpportal.fun/api.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = constants.PumpPortalURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpx.NewClient(0),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateTransaction returns the serialized unsigned create transaction.
func (c *Client) CreateTransaction(ctx context.Context, req CreateRequest) ([]byte, error) {
	for _, f := range []struct{ name, value string }{
		{"publicKey", req.PublicKey},
		{"mint", req.Mint},
		{"uri", req.URI},
	} {
		if f.value == "" {
			return nil, types.NewValidationError(f.name, "must not be empty", types.ErrMissingField)
		}
	}
	if err := types.ValidateTradeParams(req.AmountSOL, req.SlippagePct, req.PriorityFeeSOL); err != nil {
		return nil, err
	}

	body := tradeBody{
		PublicKey: req.PublicKey,
		Action:    ActionCreate,
		TokenMetadata: &tokenMetadata{
			Name:   req.Name,
			Symbol: req.Symbol,
			URI:    req.URI,
		},
		Mint:             req.Mint,
		DenominatedInSol: "true",
		Amount:           req.AmountSOL,
		Slippage:         orDefault(req.SlippagePct, constants.DefaultSlippagePct),
		PriorityFee:      orDefault(req.PriorityFeeSOL, constants.DefaultPriorityFeeSOL),
		Pool:             poolOrDefault(req.Pool),
		IsMayhemMode:     strconv.FormatBool(req.MayhemMode),
	}
	return c.post(ctx, body)
}

// TradeTransaction returns the serialized unsigned buy or sell transaction.
func (c *Client) TradeTransaction(ctx context.Context, req TradeRequest) ([]byte, error) {
	if req.Action != ActionBuy && req.Action != ActionSell {
		return nil, types.NewValidationError("action", fmt.Sprintf("must be %q or %q", ActionBuy, ActionSell), types.ErrMissingField)
	}
	if req.PublicKey == "" || req.Mint == "" {
		return nil, types.NewValidationError("mint", "public key and mint are required", types.ErrMissingField)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	if err := types.ValidateTradeParams(0, req.SlippagePct, req.PriorityFeeSOL); err != nil {
		return nil, err
	}

	body := tradeBody{
		PublicKey:        req.PublicKey,
		Action:           req.Action,
		Mint:             req.Mint,
		DenominatedInSol: strconv.FormatBool(req.DenominatedInSol),
		Amount:           amount,
		Slippage:         orDefault(req.SlippagePct, constants.DefaultSlippagePct),
		PriorityFee:      orDefault(req.PriorityFeeSOL, constants.DefaultPriorityFeeSOL),
		Pool:             poolOrDefault(req.Pool),
	}
	return c.post(ctx, body)
}

func (c *Client) post(ctx context.Context, body tradeBody) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/trade-local"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewStageError(types.StageTrade,
			"could not reach the transaction builder; check your connection or the pumpportal_url setting",
			fmt.Errorf("%w: %v", types.ErrServiceUnreachable, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewStageError(types.StageTrade, "transaction request failed", fmt.Errorf("read response: %w", err))
	}
	if !httpx.OK(resp.StatusCode) {
		return nil, types.NewStageError(types.StageTrade, "transaction request failed",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, httpx.Excerpt(raw)))
	}
	if len(raw) == 0 {
		return nil, types.NewStageError(types.StageTrade, "transaction request failed", types.ErrEmptyTransaction)
	}

	c.log.Debug().
		Str("action", body.Action).
		Str("mint", body.Mint).
		Int("bytes", len(raw)).
		Msg("transaction received")
	return raw, nil
}

// parseAmount keeps percentages as strings and sends everything else as a number.
func parseAmount(s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || pct <= 0 || pct > 100 {
			return nil, types.NewValidationError("amount", "percentage must be in (0, 100]", types.ErrInvalidAmount)
		}
		return s, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return nil, types.NewValidationError("amount", "must be a positive number or a percentage", types.ErrInvalidAmount)
	}
	return v, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func poolOrDefault(pool string) string {
	if pool == "" {
		return constants.DefaultPool
	}
	return pool
}
