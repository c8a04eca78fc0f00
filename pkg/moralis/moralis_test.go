package moralis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func TestTokenMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/token/mainnet/Mint111/metadata" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"name":"Lobster","symbol":"LOB","metaplex":{"metadataUri":"ipfs://QmMeta"}}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "secret").TokenMetadata(context.Background(), "Mint111")
	if err != nil {
		t.Fatalf("token metadata: %v", err)
	}
	if resp["name"] != "Lobster" {
		t.Errorf("name = %v", resp["name"])
	}
	if got := MetadataURI(resp); got != "ipfs://QmMeta" {
		t.Errorf("MetadataURI = %q", got)
	}

	_, err = NewClient(server.URL, "wrong").TokenMetadata(context.Background(), "Mint111")
	if types.StageOf(err) != types.StageMoralis {
		t.Fatalf("expected moralis stage error, got %v", err)
	}

	_, err = NewClient(server.URL, "secret").TokenMetadata(context.Background(), "Other")
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenMetadataRequiresKey(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:1", "").TokenMetadata(context.Background(), "Mint111")
	if !errors.Is(err, types.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestMetadataURIFallback(t *testing.T) {
	if got := MetadataURI(map[string]interface{}{"uri": "https://x/meta.json"}); got != "https://x/meta.json" {
		t.Errorf("uri fallback = %q", got)
	}
	if got := MetadataURI(map[string]interface{}{"metaplex": map[string]interface{}{}}); got != "" {
		t.Errorf("empty = %q", got)
	}
}
