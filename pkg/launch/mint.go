package launch

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/pkg/vanity"
)

// MintSource produces the keypair of a new token mint.
type MintSource interface {
	NewMint(ctx context.Context, suffix string) (solana.PrivateKey, error)
}

// VanityMints grinds a mint address ending in the requested suffix, or
// returns a random keypair when the suffix is empty.
type VanityMints struct {
	Workers       int
	Timeout       time.Duration
	CaseSensitive bool
	Log           zerolog.Logger
}

func (v VanityMints) NewMint(ctx context.Context, suffix string) (solana.PrivateKey, error) {
	if suffix == "" {
		return solana.NewRandomPrivateKey()
	}
	res, err := vanity.Generate(ctx, vanity.Options{
		Suffix:        suffix,
		Workers:       v.Workers,
		Timeout:       v.Timeout,
		CaseSensitive: v.CaseSensitive,
	})
	if err != nil {
		return nil, err
	}
	v.Log.Debug().
		Str("mint", res.PublicKey.String()).
		Uint64("attempts", res.Attempts).
		Dur("took", res.Duration).
		Msg("vanity mint found")
	return res.PrivateKey, nil
}
