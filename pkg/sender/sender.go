// Package sender decodes, signs and submits the serialized transactions
// returned by the transaction builder service.
package sender

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/pkg/jito"
	wraprpc "github.com/ninja0404/lobsterpad/pkg/rpc"
	"github.com/ninja0404/lobsterpad/pkg/types"
	"github.com/ninja0404/lobsterpad/pkg/wallet"
)

// ConfirmationLevel represents transaction confirmation depth.
type ConfirmationLevel string

const (
	ConfirmationProcessed ConfirmationLevel = "processed"
	ConfirmationConfirmed ConfirmationLevel = "confirmed"
	ConfirmationFinalized ConfirmationLevel = "finalized"
)

// ForbiddenHint is shown when the RPC node rejects sendTransaction with HTTP 403.
const ForbiddenHint = "the RPC endpoint rejected the transaction with 403 Forbidden; " +
	"public endpoints often block sendTransaction, switch to a private RPC endpoint with --rpc-url"

// Decode parses a serialized (legacy or versioned) transaction.
func Decode(raw []byte) (*solana.Transaction, error) {
	if len(raw) == 0 {
		return nil, types.ErrEmptyTransaction
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, types.NewStageError(types.StageSign, "could not decode transaction", err)
	}
	return tx, nil
}

// Sign signs using the provided signers in account-key order. Every required
// signature slot must have a signer.
func Sign(ctx context.Context, tx *solana.Transaction, signers ...wallet.Signer) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	required := int(tx.Message.Header.NumRequiredSignatures)
	if required == 0 {
		return nil
	}
	if len(tx.Message.AccountKeys) < required {
		return fmt.Errorf("not enough account keys for required signatures")
	}

	signerMap := make(map[solana.PublicKey]wallet.Signer, len(signers))
	for _, s := range signers {
		if s != nil {
			signerMap[s.PublicKey()] = s
		}
	}

	messageBytes, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	sigs := make([]solana.Signature, required)
	for i := 0; i < required; i++ {
		pk := tx.Message.AccountKeys[i]
		signer, ok := signerMap[pk]
		if !ok {
			return types.NewStageError(types.StageSign, "transaction needs a signature this wallet cannot provide",
				fmt.Errorf("%w for %s", types.ErrMissingSigner, pk))
		}
		sig, err := signer.SignMessage(ctx, messageBytes)
		if err != nil {
			return fmt.Errorf("sign message for %s: %w", pk, err)
		}
		sigs[i] = sig
	}
	tx.Signatures = sigs
	return nil
}

// Sender submits signed transactions over RPC or, when configured, Jito.
type Sender struct {
	client     *wraprpc.Client
	commitment solanarpc.CommitmentType
	jitoClient *jito.Client
	log        zerolog.Logger
}

// New constructs a sender. Preflight runs at the given commitment.
func New(client *wraprpc.Client, commitment solanarpc.CommitmentType) *Sender {
	if commitment == "" {
		commitment = solanarpc.CommitmentConfirmed
	}
	return &Sender{client: client, commitment: commitment, log: zerolog.Nop()}
}

// WithJito routes submission through the Jito block engine. Every bundle
// carries a tip transfer signed by the payer. Pass nil to use RPC.
func (s *Sender) WithJito(jitoClient *jito.Client) *Sender {
	s.jitoClient = jitoClient
	return s
}

// WithLogger sets the logger.
func (s *Sender) WithLogger(log zerolog.Logger) *Sender {
	s.log = log
	return s
}

// Endpoint returns the RPC URL transactions are sent to.
func (s *Sender) Endpoint() string {
	if s.client == nil {
		return ""
	}
	return s.client.Endpoint()
}

// Submit sends a signed transaction exactly once. payer is only needed for
// Jito, where it signs the tip.
func (s *Sender) Submit(ctx context.Context, tx *solana.Transaction, payer wallet.Signer) (solana.Signature, error) {
	if s.jitoClient != nil {
		return s.submitBundle(ctx, tx, payer)
	}
	if s.client == nil {
		return solana.Signature{}, fmt.Errorf("rpc client is nil")
	}

	opts := solanarpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: s.commitment,
	}
	sig, err := s.client.SendTransaction(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, classify(err)
	}
	s.log.Debug().Str("rpc", s.client.Endpoint()).Stringer("signature", sig).Msg("sent via rpc")
	return sig, nil
}

func (s *Sender) submitBundle(ctx context.Context, tx *solana.Transaction, payer wallet.Signer) (solana.Signature, error) {
	if tx == nil {
		return solana.Signature{}, fmt.Errorf("transaction is nil")
	}
	if payer == nil {
		return solana.Signature{}, types.NewStageError(types.StageSign, "a jito bundle needs the payer to sign the tip", types.ErrMissingSigner)
	}
	tip, err := s.jitoClient.TipTransaction(ctx, payer.PublicKey(), tx.Message.RecentBlockhash)
	if err != nil {
		return solana.Signature{}, err
	}
	if err := Sign(ctx, tip, payer); err != nil {
		return solana.Signature{}, err
	}

	res, err := s.jitoClient.SendBundle(ctx, tx, tip)
	if err != nil {
		return solana.Signature{}, classify(err)
	}
	s.log.Debug().
		Str("bundle", res.BundleID).
		Stringer("signature", res.Signature).
		Uint64("tip_lamports", s.jitoClient.TipLamports()).
		Msg("sent via jito")
	return res.Signature, nil
}

// WaitForConfirmation polls transaction status until the level is reached or ctx is done.
func (s *Sender) WaitForConfirmation(ctx context.Context, sig solana.Signature, level ConfirmationLevel) error {
	if s.client == nil {
		return fmt.Errorf("rpc client is nil")
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := s.client.GetSignatureStatuses(ctx, sig)
			if err != nil {
				continue // transient
			}
			if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
				continue // not yet visible
			}
			status := resp.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction failed: %v", status.Err)
			}
			if reached(status.ConfirmationStatus, level) {
				return nil
			}
		}
	}
}

func reached(status solanarpc.ConfirmationStatusType, level ConfirmationLevel) bool {
	switch level {
	case ConfirmationFinalized:
		return status == solanarpc.ConfirmationStatusFinalized
	case ConfirmationConfirmed:
		return status == solanarpc.ConfirmationStatusConfirmed ||
			status == solanarpc.ConfirmationStatusFinalized
	default:
		return true
	}
}

// classify maps a submission failure to a user facing stage error.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isForbidden(err) {
		return types.NewStageError(types.StageRPC, ForbiddenHint, fmt.Errorf("%w: %v", types.ErrRPCForbidden, err))
	}
	return types.NewStageError(types.StageRPC, "transaction submission failed", err)
}

var status403 = regexp.MustCompile(`\b403\b`)

func isForbidden(err error) bool {
	if err == nil {
		return false
	}
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusForbidden {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return status403.MatchString(errStr) || strings.Contains(errStr, "forbidden")
}
