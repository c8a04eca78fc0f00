package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// setupTestDB connects to the database named by LOBSTERPAD_TEST_POSTGRES_DSN.
func setupTestDB(t *testing.T) *Pool {
	t.Helper()
	dsn := os.Getenv("LOBSTERPAD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LOBSTERPAD_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := pool.Exec(ctx, "TRUNCATE launches"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func TestHistoryStore(t *testing.T) {
	pool := setupTestDB(t)
	s := NewHistoryStore(pool)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, sig := range []string{"sig1", "sig2"} {
		err := s.Append(ctx, types.LaunchResult{
			Signature:   sig,
			MintAddress: "MintINU",
			ExplorerURL: "https://solscan.io/tx/" + sig,
			Name:        "Lobster",
			Symbol:      "LOB",
			LaunchedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("append %s: %v", sig, err)
		}
	}

	err := s.Append(ctx, types.LaunchResult{Signature: "sig1", LaunchedAt: base})
	if !errors.Is(err, store.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Signature != "sig1" || got[1].Signature != "sig2" {
		t.Fatalf("list = %+v", got)
	}
	if !got[1].LaunchedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("launched_at = %v", got[1].LaunchedAt)
	}

	if _, err := s.GetBySignature(ctx, "missing"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
