// Package ipfs uploads token metadata and its image to the pump.fun IPFS endpoint.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/internal/httpx"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// Client posts metadata as multipart form data and returns the content URI.
type Client struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
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

// NewClient creates an uploader for endpoint, or the public endpoint when empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = constants.IPFSUploadURL
	}
	c := &Client{
		endpoint: endpoint,
		client:   httpx.NewClient(0),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadResponse struct {
	MetadataURI string `json:"metadataUri"`
}

// Upload sends one multipart POST and returns the metadata URI. It is not retried.
func (c *Client) Upload(ctx context.Context, meta types.TokenMetadata) (string, error) {
	if meta.Image.Empty() {
		return "", types.NewValidationError("image", "an image file is required", types.ErrMissingImage)
	}

	body, contentType, err := encodeForm(meta)
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewStageError(types.StageIPFS, "metadata upload failed, IPFS endpoint unreachable",
			fmt.Errorf("%w: %v", types.ErrServiceUnreachable, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewStageError(types.StageIPFS, "metadata upload failed", fmt.Errorf("read response: %w", err))
	}
	if !httpx.OK(resp.StatusCode) {
		return "", types.NewStageError(types.StageIPFS, "metadata upload failed",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, httpx.Excerpt(respBody)))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", types.NewStageError(types.StageIPFS, "metadata upload failed", fmt.Errorf("unmarshal response: %w", err))
	}
	if out.MetadataURI == "" {
		return "", types.NewStageError(types.StageIPFS, "metadata upload failed", fmt.Errorf("response has no metadataUri"))
	}

	c.log.Debug().Str("uri", out.MetadataURI).Str("symbol", meta.Symbol).Msg("metadata uploaded")
	return out.MetadataURI, nil
}

func encodeForm(meta types.TokenMetadata) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"name", meta.Name},
		{"symbol", meta.Symbol},
		{"description", meta.Description},
		{"twitter", meta.Twitter},
		{"telegram", meta.Telegram},
		{"website", meta.Website},
		{"showName", "true"},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	filename := meta.Image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := meta.Image.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(meta.Image.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(meta.Image.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
