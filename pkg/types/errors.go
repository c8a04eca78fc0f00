package types

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Validation errors, raised before any network call
	ErrMissingImage      = errors.New("image is required")
	ErrMissingPrivateKey = errors.New("private key is required")
	ErrMissingField      = errors.New("required field is empty")
	ErrInvalidKeyFormat  = errors.New("invalid private key format")
	ErrInvalidPattern    = errors.New("pattern contains characters outside the base58 alphabet")
	ErrInvalidAmount     = errors.New("amount must be greater than or equal to 0")
	ErrInvalidPublicKey  = errors.New("invalid public key")
	ErrMissingAPIKey     = errors.New("api key is required")

	// Upstream errors
	ErrServiceUnreachable = errors.New("service unreachable")
	ErrEmptyTransaction   = errors.New("transaction builder returned an empty body")
	ErrRPCForbidden       = errors.New("rpc endpoint refused the request (HTTP 403)")
	ErrMissingSigner      = errors.New("missing signer")

	// Store / orchestration errors
	ErrNotFound = errors.New("not found")
	ErrBusy     = errors.New("another launch is in progress")
)

// Stage names used in StageError.
const (
	StageIPFS     = "ipfs"
	StageTrade    = "trade"
	StageSign     = "sign"
	StageRPC      = "rpc"
	StageMoralis  = "moralis"
	StageMetadata = "metadata"
	StageImage    = "image"
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, err error) ValidationError {
	return ValidationError{Field: field, Message: message, Err: err}
}

// StageError wraps an upstream failure with the stage of the flow it happened in.
// Message is the human readable text shown to the user.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new stage error.
func NewStageError(stage, message string, err error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: err}
}

// StageOf returns the stage of the first StageError in err's chain, or "".
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
