package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ninja0404/lobsterpad/pkg/config"
)

// Client wraps solana-go rpc.Client with timeout and rate limiting.
// Reads are retried with exponential backoff; sendTransaction never is.
type Client struct {
	raw     *solanarpc.Client
	cfg     config.RPCConfig
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient builds a configured Client.
func NewClient(cfg config.RPCConfig) *Client {
	endpoint := cfg.ResolveRPCURL()
	rpcClient := solanarpc.New(endpoint)

	var limiter *rate.Limiter
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst == 0 {
			burst = int(cfg.RateLimit.RPS * 2)
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}

	log := cfg.Logger
	if log.GetLevel() == zerolog.NoLevel {
		log = zerolog.Nop()
	}

	return &Client{
		raw:     rpcClient,
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}
}

// Endpoint returns the RPC URL in use.
func (c *Client) Endpoint() string {
	return c.cfg.ResolveRPCURL()
}

// GetLatestBlockhash fetches the latest blockhash at the configured commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (*solanarpc.GetLatestBlockhashResult, error) {
	return read(ctx, c, "getLatestBlockhash", func(ctx context.Context) (*solanarpc.GetLatestBlockhashResult, error) {
		return c.raw.GetLatestBlockhash(ctx, solanarpc.CommitmentType(c.cfg.Commitment))
	})
}

// GetBalance returns the lamport balance of account.
func (c *Client) GetBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := read(ctx, c, "getBalance", func(ctx context.Context) (*solanarpc.GetBalanceResult, error) {
		return c.raw.GetBalance(ctx, account, solanarpc.CommitmentType(c.cfg.Commitment))
	})
	if err != nil {
		return 0, err
	}
	if res == nil {
		return 0, fmt.Errorf("getBalance: empty response")
	}
	return res.Value, nil
}

// GetSignatureStatuses looks up the status of submitted signatures.
func (c *Client) GetSignatureStatuses(ctx context.Context, sigs ...solana.Signature) (*solanarpc.GetSignatureStatusesResult, error) {
	return read(ctx, c, "getSignatureStatuses", func(ctx context.Context) (*solanarpc.GetSignatureStatusesResult, error) {
		return c.raw.GetSignatureStatuses(ctx, true, sigs...)
	})
}

// SimulateTransaction dry-runs a signed transaction with signature verification.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*solanarpc.SimulateTransactionResponse, error) {
	return read(ctx, c, "simulateTransaction", func(ctx context.Context) (*solanarpc.SimulateTransactionResponse, error) {
		return c.raw.SimulateTransactionWithOpts(ctx, tx, &solanarpc.SimulateTransactionOpts{
			SigVerify:  true,
			Commitment: solanarpc.CommitmentType(c.cfg.Commitment),
		})
	})
}

// SendTransaction submits a signed transaction exactly once.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts solanarpc.TransactionOpts) (solana.Signature, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	return c.raw.SendTransactionWithOpts(ctx, tx, opts)
}

func read[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	operation := func() (T, error) {
		if err := c.wait(ctx); err != nil {
			var zero T
			return zero, backoff.Permanent(err)
		}
		out, err := fn(ctx)
		if err != nil && !retryable(err) {
			return out, backoff.Permanent(err)
		}
		return out, err
	}

	if !c.cfg.Retry.Enabled || c.cfg.Retry.MaxAttempts <= 1 {
		if err := c.wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx)
	}

	out, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(uint(c.cfg.Retry.MaxAttempts)),
		backoff.WithNotify(func(err error, d time.Duration) {
			c.log.Debug().
				Str("op", op).
				Dur("backoff", d).
				Err(err).
				Msg("rpc retry")
		}),
	)
	if err != nil {
		return out, fmt.Errorf("%s failed after %d attempts: %w", op, c.cfg.Retry.MaxAttempts, err)
	}
	return out, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

func (c *Client) backoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Retry.InitialBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = 100 * time.Millisecond
	}
	if c.cfg.Retry.MaxBackoff > 0 {
		b.MaxInterval = c.cfg.Retry.MaxBackoff
	}
	if !c.cfg.Retry.Jitter {
		b.RandomizationFactor = 0
	}
	return b
}

func retryable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
