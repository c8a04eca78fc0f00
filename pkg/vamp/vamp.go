// Package vamp clones the public metadata of an existing token so a new
// launch can be pre-filled from it.
package vamp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ninja0404/lobsterpad/internal/httpx"
	"github.com/ninja0404/lobsterpad/pkg/constants"
	"github.com/ninja0404/lobsterpad/pkg/moralis"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// Ordered key lists searched by Extract.
var (
	TwitterKeys     = []string{"twitter", "twitter_url", "x_url", "x"}
	TelegramKeys    = []string{"telegram", "telegram_url", "tg"}
	WebsiteKeys     = []string{"website", "website_url", "external_url", "url"}
	ImageKeys       = []string{"image", "logo", "image_uri", "imageUri"}
	DescriptionKeys = []string{"description"}
)

const maxImageBytes = 10 << 20

// MetadataSource looks up the indexed metadata of a mint.
type MetadataSource interface {
	TokenMetadata(ctx context.Context, mint string) (map[string]interface{}, error)
}

var _ MetadataSource = (*moralis.Client)(nil)

// ClonedMetadata is what could be recovered from an existing token.
// ImageErr is set when the metadata was cloned but the image was not.
type ClonedMetadata struct {
	Mint        string
	Name        string
	Symbol      string
	Description string
	Twitter     string
	Telegram    string
	Website     string
	ImageURL    string
	Image       *types.Image
	ImageErr    error
}

// Partial reports whether the image has to be supplied manually.
func (m *ClonedMetadata) Partial() bool {
	return m.ImageErr != nil || m.Image.Empty()
}

// ApplyTo copies every non-empty field into dst. Fields with nothing cloned are left as they are.
func (m *ClonedMetadata) ApplyTo(dst *types.TokenMetadata) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&dst.Name, m.Name)
	set(&dst.Symbol, m.Symbol)
	set(&dst.Description, m.Description)
	set(&dst.Twitter, m.Twitter)
	set(&dst.Telegram, m.Telegram)
	set(&dst.Website, m.Website)
	if !m.Image.Empty() {
		dst.Image = m.Image
	}
}

// Cloner fetches metadata and the token image.
type Cloner struct {
	source  MetadataSource
	client  *http.Client
	gateway string
	proxy   string
	log     zerolog.Logger
}

// Option configures Cloner.
type Option func(*Cloner)

// WithHTTPClient sets the client used for metadata URIs and images.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Cloner) {
		c.client = hc
	}
}

// WithGateway sets the HTTPS gateway ipfs:// URIs are rewritten to.
func WithGateway(gateway string) Option {
	return func(c *Cloner) {
		c.gateway = strings.TrimRight(gateway, "/")
	}
}

// WithImageProxy sets the image proxy. An empty proxy downloads directly.
func WithImageProxy(proxy string) Option {
	return func(c *Cloner) {
		c.proxy = proxy
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cloner) {
		c.log = log
	}
}

// NewCloner creates a Cloner reading indexed metadata from source.
func NewCloner(source MetadataSource, opts ...Option) *Cloner {
	c := &Cloner{
		source:  source,
		client:  httpx.NewClient(0),
		gateway: constants.IPFSGatewayURL,
		proxy:   constants.ImageProxyURL,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone looks up mint and resolves its metadata in two steps: the indexer
// response, then the metadata URI when the indexer did not resolve it.
// A failed image download does not fail the clone; see ClonedMetadata.Partial.
func (c *Cloner) Clone(ctx context.Context, mint string) (*ClonedMetadata, error) {
	indexed, err := c.source.TokenMetadata(ctx, mint)
	if err != nil {
		return nil, err
	}

	links, _ := indexed["links"].(map[string]interface{})
	indexedSources := []map[string]interface{}{links, indexed}

	var external map[string]interface{}
	if !resolved(indexedSources) {
		if uri := moralis.MetadataURI(indexed); uri != "" {
			external, err = c.fetchJSON(ctx, uri)
			if err != nil {
				c.log.Warn().Err(err).Str("uri", uri).Msg("external metadata unavailable")
			}
		}
	}
	sources := []map[string]interface{}{external, links, indexed}

	out := &ClonedMetadata{
		Mint:        mint,
		Name:        Extract([]map[string]interface{}{indexed, external}, "name"),
		Symbol:      Extract([]map[string]interface{}{indexed, external}, "symbol"),
		Description: Extract(sources, DescriptionKeys...),
		Twitter:     Extract(sources, TwitterKeys...),
		Telegram:    Extract(sources, TelegramKeys...),
		Website:     Extract(sources, WebsiteKeys...),
		ImageURL:    Extract(sources, ImageKeys...),
	}

	if out.ImageURL == "" {
		out.ImageErr = fmt.Errorf("%w: token has no image", types.ErrNotFound)
	} else {
		out.Image, out.ImageErr = c.downloadImage(ctx, out.ImageURL, imageName(out))
	}
	if out.ImageErr != nil {
		c.log.Warn().Err(out.ImageErr).Str("mint", mint).Msg("image not cloned, upload it manually")
	}

	c.log.Info().
		Str("mint", mint).
		Str("name", out.Name).
		Str("symbol", out.Symbol).
		Bool("partial", out.Partial()).
		Msg("metadata cloned")
	return out, nil
}

// Extract returns the first non-empty string found under keys, searching each
// source in order and then that source's "extensions" object.
func Extract(sources []map[string]interface{}, keys ...string) string {
	for _, src := range sources {
		if src == nil {
			continue
		}
		if v := lookup(src, keys); v != "" {
			return v
		}
		if ext, ok := src["extensions"].(map[string]interface{}); ok {
			if v := lookup(ext, keys); v != "" {
				return v
			}
		}
	}
	return ""
}

func lookup(m map[string]interface{}, keys []string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// resolved reports whether the indexer already carries the off-chain fields.
func resolved(sources []map[string]interface{}) bool {
	for _, keys := range [][]string{DescriptionKeys, TwitterKeys, TelegramKeys, WebsiteKeys} {
		if Extract(sources, keys...) != "" {
			return true
		}
	}
	return false
}

// ResolveURI rewrites ipfs:// URIs to gateway/ipfs/<cid>.
func ResolveURI(uri, gateway string) string {
	if cid, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return strings.TrimRight(gateway, "/") + "/ipfs/" + cid
	}
	return uri
}

func (c *Cloner) fetchJSON(ctx context.Context, uri string) (map[string]interface{}, error) {
	body, _, err := c.get(ctx, ResolveURI(uri, c.gateway), 1<<20)
	if err != nil {
		return nil, types.NewStageError(types.StageMetadata, "could not fetch metadata URI", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, types.NewStageError(types.StageMetadata, "metadata URI is not a JSON object", err)
	}
	return out, nil
}

func (c *Cloner) downloadImage(ctx context.Context, imageURL, name string) (*types.Image, error) {
	imageURL = ResolveURI(imageURL, c.gateway)

	if c.proxy != "" {
		proxied := fmt.Sprintf("%s?url=%s&output=webp", c.proxyBase(), url.QueryEscape(imageURL))
		data, contentType, err := c.get(ctx, proxied, maxImageBytes)
		if err == nil {
			return newImage(name, contentType, "image/webp", data), nil
		}
		c.log.Debug().Err(err).Msg("image proxy failed, trying direct download")
	}

	data, contentType, err := c.get(ctx, imageURL, maxImageBytes)
	if err != nil {
		return nil, types.NewStageError(types.StageImage, "could not download token image", err)
	}
	return newImage(name, contentType, "image/png", data), nil
}

func (c *Cloner) proxyBase() string {
	if strings.HasSuffix(c.proxy, "/") {
		return c.proxy
	}
	return c.proxy + "/"
}

func (c *Cloner) get(ctx context.Context, target string, limit int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", types.ErrServiceUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if !httpx.OK(resp.StatusCode) {
		return nil, "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, httpx.Excerpt(body))
	}
	if len(body) == 0 {
		return nil, "", fmt.Errorf("empty response from %s", target)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func newImage(name, contentType, fallback string, data []byte) *types.Image {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	contentType = strings.TrimSpace(contentType)
	if !strings.HasPrefix(contentType, "image/") {
		contentType = fallback
	}
	ext := strings.TrimPrefix(contentType, "image/")
	if i := strings.IndexByte(ext, '+'); i >= 0 {
		ext = ext[:i] // svg+xml
	}
	return &types.Image{
		Filename:    name + "." + ext,
		ContentType: contentType,
		Data:        data,
	}
}

func imageName(m *ClonedMetadata) string {
	if m.Symbol != "" {
		return strings.ToLower(m.Symbol)
	}
	return "image"
}
