// Package vanity provides vanity address generation utilities.
package vanity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// progressEvery is how many attempts pass between OnProgress calls.
const progressEvery = 10_000

// Result represents a vanity address search result.
type Result struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
	Attempts   uint64
	Duration   time.Duration
}

// Options configures vanity address generation.
type Options struct {
	Prefix        string        // Required prefix
	Suffix        string        // Required suffix
	Workers       int           // Number of parallel workers (default: NumCPU)
	Timeout       time.Duration // Max search time (0 = no timeout)
	CaseSensitive bool          // Default false: "inu" matches "...INU"
	// OnProgress is called from worker goroutines with the running attempt count.
	OnProgress func(attempts uint64)
}

var errFound = errors.New("found")

// Generate searches for a keypair matching the specified criteria. The search
// runs on its own worker goroutines and stops as soon as ctx is done.
//
// Example:
//
//	result, err := vanity.Generate(ctx, vanity.Options{Suffix: "inu"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Found: %s (attempts: %d, time: %s)\n",
//	    result.PublicKey, result.Attempts, result.Duration)
func Generate(ctx context.Context, opts Options) (*Result, error) {
	if opts.Prefix == "" && opts.Suffix == "" {
		return nil, fmt.Errorf("prefix or suffix is required")
	}
	if err := ValidatePattern(opts.Prefix, opts.CaseSensitive); err != nil {
		return nil, err
	}
	if err := ValidatePattern(opts.Suffix, opts.CaseSensitive); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	searchCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	var (
		attempts atomic.Uint64
		found    atomic.Pointer[Result]
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(searchCtx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				key, err := solana.NewRandomPrivateKey()
				if err != nil {
					return fmt.Errorf("generate keypair: %w", err)
				}
				n := attempts.Add(1)
				if opts.OnProgress != nil && n%progressEvery == 0 {
					opts.OnProgress(n)
				}

				pub := key.PublicKey()
				addr := pub.String()
				if !hasAffixes(addr, opts.Prefix, opts.Suffix, opts.CaseSensitive) {
					continue
				}
				found.CompareAndSwap(nil, &Result{
					PrivateKey: key,
					PublicKey:  pub,
					Attempts:   n,
					Duration:   time.Since(startTime),
				})
				// errFound cancels gctx so the other workers stop.
				return errFound
			}
		})
	}

	err := g.Wait()
	if res := found.Load(); res != nil {
		return res, nil
	}
	if searchCtx.Err() != nil {
		return nil, fmt.Errorf("search cancelled after %d attempts: %w", attempts.Load(), searchCtx.Err())
	}
	return nil, fmt.Errorf("search failed after %d attempts: %w", attempts.Load(), err)
}

// Matches reports whether address ends with suffix.
func Matches(address, suffix string, caseSensitive bool) bool {
	return hasAffixes(address, "", suffix, caseSensitive)
}

func hasAffixes(address, prefix, suffix string, caseSensitive bool) bool {
	if !caseSensitive {
		address = strings.ToLower(address)
		prefix = strings.ToLower(prefix)
		suffix = strings.ToLower(suffix)
	}
	return strings.HasPrefix(address, prefix) && strings.HasSuffix(address, suffix)
}

// ValidatePattern rejects patterns that no base58 address can contain.
// Case-insensitive patterns only need one casing of each rune to be valid.
func ValidatePattern(pattern string, caseSensitive bool) error {
	for _, r := range pattern {
		s := string(r)
		ok := strings.Contains(base58Alphabet, s)
		if !ok && !caseSensitive {
			ok = strings.Contains(base58Alphabet, strings.ToLower(s)) ||
				strings.Contains(base58Alphabet, strings.ToUpper(s))
		}
		if !ok {
			return fmt.Errorf("%w: %q in %q", types.ErrInvalidPattern, r, pattern)
		}
	}
	return nil
}

// EstimateDifficulty estimates the average attempts needed for a given pattern.
// Base58 has 58 possible characters. The result saturates at math.MaxUint64.
func EstimateDifficulty(prefixLen, suffixLen int) uint64 {
	// Each character has 1/58 probability
	// Average attempts = 58^(prefixLen + suffixLen)
	total := prefixLen + suffixLen
	result := uint64(1)
	for i := 0; i < total; i++ {
		if result > math.MaxUint64/58 {
			return math.MaxUint64
		}
		result *= 58
	}
	return result
}
