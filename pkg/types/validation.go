package types

import (
	"github.com/gagliardetto/solana-go"
)

// ValidateAmount validates a SOL denominated amount.
func ValidateAmount(name string, sol float64) error {
	if sol < 0 {
		return NewValidationError(name, "must not be negative", ErrInvalidAmount)
	}
	return nil
}

// ValidateSlippage validates slippage in percent.
func ValidateSlippage(name string, pct float64) error {
	if pct < 0 || pct > 100 {
		return NewValidationError(name, "must be between 0 and 100", ErrInvalidAmount)
	}
	return nil
}

// ValidateTradeParams validates the numeric parameters shared by create,
// buy and sell requests.
func ValidateTradeParams(amountSOL, slippagePct, priorityFeeSOL float64) error {
	if err := ValidateAmount("amount", amountSOL); err != nil {
		return err
	}
	if err := ValidateSlippage("slippage", slippagePct); err != nil {
		return err
	}
	return ValidateAmount("priority_fee", priorityFeeSOL)
}

// ValidatePublicKey decodes a base58 public key and rejects the zero key.
func ValidatePublicKey(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, NewValidationError(name, "is required", ErrMissingField)
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, NewValidationError(name, "invalid public key: "+err.Error(), ErrInvalidPublicKey)
	}
	if pk.IsZero() {
		return solana.PublicKey{}, NewValidationError(name, "cannot be zero", ErrInvalidPublicKey)
	}
	return pk, nil
}
