package types

import (
	"strings"
	"time"
)

// Image is an in-memory image file attached to token metadata.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Empty reports whether there is no image payload.
func (i *Image) Empty() bool {
	return i == nil || len(i.Data) == 0
}

// TokenMetadata is the user-facing description of a token to launch.
type TokenMetadata struct {
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
	Image       *Image
}

// Validate checks the fields that must be set before anything is uploaded.
// The image is checked first.
func (m TokenMetadata) Validate() error {
	if m.Image.Empty() {
		return NewValidationError("image", "an image file is required", ErrMissingImage)
	}
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"symbol", m.Symbol},
		{"description", m.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			return NewValidationError(f.name, "must not be empty", ErrMissingField)
		}
	}
	return nil
}

// LaunchRequest carries everything a single token launch needs.
// Zero slippage, zero priority fee and an empty Pool fall back to configured
// defaults. A zero AmountSOL launches without an initial buy.
type LaunchRequest struct {
	SignerPrivateKey string
	Metadata         TokenMetadata
	RPCURL           string
	AmountSOL        float64
	SlippagePct      float64
	PriorityFeeSOL   float64
	Pool             string
	VanitySuffix     string
	MayhemMode       bool
}

// LaunchResult records a submitted launch. It never changes once produced.
type LaunchResult struct {
	Signature   string    `json:"signature"`
	MintAddress string    `json:"mintAddress"`
	ExplorerURL string    `json:"explorerUrl"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	LaunchedAt  time.Time `json:"launchedAt"`
}
