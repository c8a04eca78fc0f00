// Package launch orchestrates a token launch: mint keypair, metadata upload,
// transaction request, local signing and submission.
package launch

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/lobsterpad/pkg/config"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/pumpportal"
	"github.com/ninja0404/lobsterpad/pkg/sender"
	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/vanity"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// Uploader stores token metadata and returns its URI.
type Uploader interface {
	Upload(ctx context.Context, meta types.TokenMetadata) (string, error)
}

// Requester builds the unsigned create transaction.
type Requester interface {
	CreateTransaction(ctx context.Context, req pumpportal.CreateRequest) ([]byte, error)
}

// Submitter sends a signed transaction. payer signs any extra transaction
// the route needs, such as a Jito tip.
type Submitter interface {
	Submit(ctx context.Context, tx *solana.Transaction, payer wallet.Signer) (solana.Signature, error)
}

// Compile-time interface checks.
var (
	_ Requester = (*pumpportal.Client)(nil)
	_ Submitter = (*sender.Sender)(nil)
)

// Launcher runs launches one at a time. A nil Mints grinds mints with
// VanityMints configured from Defaults.
type Launcher struct {
	Uploader  Uploader
	Requester Requester
	Submitter Submitter
	// SubmitterFor, when set, is used for requests that carry their own RPC URL.
	SubmitterFor func(rpcURL string) (Submitter, error)
	Mints        MintSource
	History      store.HistoryStore
	Defaults     config.LaunchDefaults
	ExplorerURL  string
	Log          zerolog.Logger

	busy atomic.Bool
	now  func() time.Time
}

// Busy reports whether a launch is in progress.
func (l *Launcher) Busy() bool {
	return l.busy.Load()
}

// Launch validates req and launches one token. Invalid input fails before
// any network call. Returns types.ErrBusy while another launch runs.
func (l *Launcher) Launch(ctx context.Context, req types.LaunchRequest) (*types.LaunchResult, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, types.ErrBusy
	}
	defer l.busy.Store(false)

	return l.launch(ctx, req)
}

// SpamOption configures SpamLaunch.
type SpamOption func(*spamOptions)

type spamOptions struct {
	limiter    *rate.Limiter
	onProgress func(i int, r types.LaunchResult)
}

// WithInterval waits at least d between launches.
func WithInterval(d time.Duration) SpamOption {
	return func(o *spamOptions) {
		if d > 0 {
			o.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithProgress is called after each successful launch.
func WithProgress(fn func(i int, r types.LaunchResult)) SpamOption {
	return func(o *spamOptions) {
		o.onProgress = fn
	}
}

// SpamLaunch launches the same token n times in sequence. It stops at the
// first failure and returns the launches that succeeded along with the error.
func (l *Launcher) SpamLaunch(ctx context.Context, req types.LaunchRequest, n int, opts ...SpamOption) ([]types.LaunchResult, error) {
	if n <= 0 {
		return nil, types.NewValidationError("count", "must be at least 1", types.ErrInvalidAmount)
	}
	var o spamOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !l.busy.CompareAndSwap(false, true) {
		return nil, types.ErrBusy
	}
	defer l.busy.Store(false)

	results := make([]types.LaunchResult, 0, n)
	for i := 0; i < n; i++ {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return results, fmt.Errorf("launch %d of %d: %w", i+1, n, err)
			}
		}
		res, err := l.launch(ctx, req)
		if err != nil {
			l.Log.Error().Err(err).Int("launch", i+1).Int("total", n).Msg("spam launch stopped")
			return results, fmt.Errorf("launch %d of %d: %w", i+1, n, err)
		}
		results = append(results, *res)
		if o.onProgress != nil {
			o.onProgress(i, *res)
		}
	}
	return results, nil
}

func (l *Launcher) launch(ctx context.Context, req types.LaunchRequest) (*types.LaunchResult, error) {
	signer, err := l.validate(req)
	if err != nil {
		return nil, err
	}
	if l.Uploader == nil || l.Requester == nil {
		return nil, fmt.Errorf("launcher needs an uploader and a requester")
	}
	submitter, err := l.submitter(req.RPCURL)
	if err != nil {
		return nil, err
	}

	log := l.Log.With().
		Str("signer", signer.PublicKey().String()).
		Str("symbol", req.Metadata.Symbol).
		Logger()

	mintKey, err := l.mints().NewMint(ctx, req.VanitySuffix)
	if err != nil {
		return nil, fmt.Errorf("mint keypair: %w", err)
	}
	mint := wallet.NewLocalFromPrivateKey(mintKey)
	log = log.With().Str("mint", mint.PublicKey().String()).Logger()

	uri, err := l.Uploader.Upload(ctx, req.Metadata)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("uri", uri).Msg("metadata uploaded")

	raw, err := l.Requester.CreateTransaction(ctx, pumpportal.CreateRequest{
		PublicKey:      signer.PublicKey().String(),
		Mint:           mint.PublicKey().String(),
		Name:           req.Metadata.Name,
		Symbol:         req.Metadata.Symbol,
		URI:            uri,
		AmountSOL:      req.AmountSOL,
		SlippagePct:    orDefault(req.SlippagePct, l.Defaults.SlippagePct),
		PriorityFeeSOL: orDefault(req.PriorityFeeSOL, l.Defaults.PriorityFeeSOL),
		Pool:           firstNonEmpty(req.Pool, l.Defaults.Pool),
		MayhemMode:     req.MayhemMode,
	})
	if err != nil {
		return nil, err
	}

	tx, err := sender.Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := sender.Sign(ctx, tx, mint, signer); err != nil {
		return nil, err
	}

	sig, err := submitter.Submit(ctx, tx, signer)
	if err != nil {
		return nil, err
	}

	result := &types.LaunchResult{
		Signature:   sig.String(),
		MintAddress: mint.PublicKey().String(),
		ExplorerURL: firstNonEmpty(l.ExplorerURL, constants.ExplorerTxURL) + sig.String(),
		Name:        req.Metadata.Name,
		Symbol:      req.Metadata.Symbol,
		LaunchedAt:  l.clock().UTC(),
	}
	log.Info().Str("signature", result.Signature).Msg("token launched")

	if l.History != nil {
		// best effort once the transaction is out
		if err := l.History.Append(ctx, *result); err != nil {
			log.Error().Err(err).Str("signature", result.Signature).Msg("record launch history")
		}
	}
	return result, nil
}

// validate checks everything that does not need the network and decodes the signer.
func (l *Launcher) validate(req types.LaunchRequest) (wallet.Signer, error) {
	if req.Metadata.Image.Empty() {
		return nil, types.NewValidationError("image", "an image file is required", types.ErrMissingImage)
	}
	if strings.TrimSpace(req.SignerPrivateKey) == "" {
		return nil, types.NewValidationError("private_key", "a signer private key is required", types.ErrMissingPrivateKey)
	}
	if err := req.Metadata.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateTradeParams(req.AmountSOL, req.SlippagePct, req.PriorityFeeSOL); err != nil {
		return nil, err
	}
	if err := vanity.ValidatePattern(req.VanitySuffix, l.caseSensitive()); err != nil {
		return nil, types.NewValidationError("vanity", "suffix can never match a base58 address", err)
	}

	w, err := wallet.FromBase58(strings.TrimSpace(req.SignerPrivateKey))
	if err != nil {
		return nil, err
	}
	return w.Signer()
}

func (l *Launcher) submitter(rpcURL string) (Submitter, error) {
	if rpcURL != "" && l.SubmitterFor != nil {
		return l.SubmitterFor(rpcURL)
	}
	if l.Submitter == nil {
		return nil, fmt.Errorf("launcher has no submitter")
	}
	return l.Submitter, nil
}

func (l *Launcher) mints() MintSource {
	if l.Mints != nil {
		return l.Mints
	}
	return VanityMints{
		Workers: l.Defaults.VanityWorkers,
		Timeout: l.Defaults.VanityTimeout,
		Log:     l.Log,
	}
}

// caseSensitive reports how the mint source matches suffixes.
func (l *Launcher) caseSensitive() bool {
	switch m := l.mints().(type) {
	case VanityMints:
		return m.CaseSensitive
	case *VanityMints:
		return m != nil && m.CaseSensitive
	}
	return false
}

func (l *Launcher) clock() time.Time {
	if l.now != nil {
		return l.now()
	}
	return time.Now()
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
