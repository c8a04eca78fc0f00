package pumpportal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ninja0404/lobsterpad/pkg/types"
)

func TestCreateTransaction(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/trade-local" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Write([]byte{1, 2, 3})
	}))
	defer server.Close()

	raw, err := NewClient(server.URL+"/api/").CreateTransaction(context.Background(), CreateRequest{
		PublicKey: "Signer111",
		Mint:      "MintINU",
		Name:      "Lobster",
		Symbol:    "LOB",
		URI:       "https://ipfs.io/ipfs/QmMeta",
		AmountSOL: 0.01,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("raw = %v", raw)
	}

	want := map[string]interface{}{
		"publicKey":        "Signer111",
		"action":           "create",
		"mint":             "MintINU",
		"denominatedInSol": "true",
		"amount":           0.01,
		"slippage":         10.0,
		"priorityFee":      0.0005,
		"pool":             "pump",
		"isMayhemMode":     "false",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	meta, _ := got["tokenMetadata"].(map[string]interface{})
	if meta["name"] != "Lobster" || meta["symbol"] != "LOB" || meta["uri"] != "https://ipfs.io/ipfs/QmMeta" {
		t.Errorf("tokenMetadata = %v", meta)
	}
}

func TestCreateTransactionErrors(t *testing.T) {
	req := CreateRequest{PublicKey: "a", Mint: "b", URI: "c"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Bad Request: invalid mint", http.StatusBadRequest)
	}))
	_, err := NewClient(server.URL).CreateTransaction(context.Background(), req)
	server.Close()
	if types.StageOf(err) != types.StageTrade || !strings.Contains(err.Error(), "400") ||
		!strings.Contains(err.Error(), "invalid mint") {
		t.Fatalf("unexpected error: %v", err)
	}

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, err = NewClient(empty.URL).CreateTransaction(context.Background(), req)
	empty.Close()
	if !errors.Is(err, types.ErrEmptyTransaction) {
		t.Fatalf("expected ErrEmptyTransaction, got %v", err)
	}

	_, err = NewClient(empty.URL).CreateTransaction(context.Background(), req)
	if !errors.Is(err, types.ErrServiceUnreachable) {
		t.Fatalf("expected ErrServiceUnreachable, got %v", err)
	}
	if !strings.Contains(err.Error(), "pumpportal_url") {
		t.Fatalf("missing hint: %v", err)
	}

	_, err = NewClient(empty.URL).CreateTransaction(context.Background(), CreateRequest{PublicKey: "a"})
	if !types.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad := req
	bad.SlippagePct = 150
	_, err = NewClient(empty.URL).CreateTransaction(context.Background(), bad)
	if !errors.Is(err, types.ErrInvalidAmount) || !types.IsValidation(err) {
		t.Fatalf("expected slippage validation error, got %v", err)
	}
	bad = req
	bad.PriorityFeeSOL = -1
	if _, err = NewClient(empty.URL).CreateTransaction(context.Background(), bad); !errors.Is(err, types.ErrInvalidAmount) {
		t.Fatalf("expected priority fee validation error, got %v", err)
	}
}

func TestTradeTransaction(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte{9})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.TradeTransaction(context.Background(), TradeRequest{
		PublicKey: "Signer111",
		Action:    ActionSell,
		Mint:      "MintINU",
		Amount:    "100%",
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if got["action"] != "sell" || got["amount"] != "100%" || got["denominatedInSol"] != "false" {
		t.Errorf("sell body = %v", got)
	}
	if _, ok := got["tokenMetadata"]; ok {
		t.Error("trade body must not carry tokenMetadata")
	}

	_, err = c.TradeTransaction(context.Background(), TradeRequest{
		PublicKey:        "Signer111",
		Action:           ActionBuy,
		Mint:             "MintINU",
		Amount:           "0.5",
		DenominatedInSol: true,
	})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if got["amount"] != 0.5 || got["denominatedInSol"] != "true" {
		t.Errorf("buy body = %v", got)
	}

	for _, amount := range []string{"", "-1", "150%", "abc"} {
		_, err := c.TradeTransaction(context.Background(), TradeRequest{
			PublicKey: "a", Action: ActionBuy, Mint: "b", Amount: amount,
		})
		if !errors.Is(err, types.ErrInvalidAmount) {
			t.Errorf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}
