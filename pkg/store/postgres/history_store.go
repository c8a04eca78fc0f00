package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ninja0404/lobsterpad/pkg/store"
	"github.com/ninja0404/lobsterpad/pkg/types"
)

// HistoryStore implements store.HistoryStore using PostgreSQL.
type HistoryStore struct {
	pool *Pool
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(pool *Pool) *HistoryStore {
	return &HistoryStore{pool: pool}
}

// Compile-time interface check.
var _ store.HistoryStore = (*HistoryStore)(nil)

// Append records a launch. Returns store.ErrDuplicateKey if the signature exists.
func (s *HistoryStore) Append(ctx context.Context, r types.LaunchResult) error {
	query := `
		INSERT INTO launches (signature, mint_address, explorer_url, name, symbol, launched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		r.Signature, r.MintAddress, r.ExplorerURL, r.Name, r.Symbol, r.LaunchedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return store.ErrDuplicateKey
		}
		return fmt.Errorf("insert launch: %w", err)
	}
	return nil
}

// List returns all launches ordered by launch time ASC.
func (s *HistoryStore) List(ctx context.Context) ([]types.LaunchResult, error) {
	query := `
		SELECT signature, mint_address, explorer_url, name, symbol, launched_at
		FROM launches
		ORDER BY launched_at ASC, signature ASC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	var out []types.LaunchResult
	for rows.Next() {
		r, err := scanLaunch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return out, nil
}

// GetBySignature returns one launch. Returns types.ErrNotFound if absent.
func (s *HistoryStore) GetBySignature(ctx context.Context, signature string) (types.LaunchResult, error) {
	query := `
		SELECT signature, mint_address, explorer_url, name, symbol, launched_at
		FROM launches
		WHERE signature = $1
	`
	r, err := scanLaunch(s.pool.QueryRow(ctx, query, signature))
	if err != nil {
		if isNotFoundError(err) {
			return types.LaunchResult{}, fmt.Errorf("launch %s: %w", signature, types.ErrNotFound)
		}
		return types.LaunchResult{}, err
	}
	return r, nil
}

func scanLaunch(row pgx.Row) (types.LaunchResult, error) {
	var r types.LaunchResult
	err := row.Scan(&r.Signature, &r.MintAddress, &r.ExplorerURL, &r.Name, &r.Symbol, &r.LaunchedAt)
	if err != nil {
		if isNotFoundError(err) {
			return r, err
		}
		return r, fmt.Errorf("scan launch: %w", err)
	}
	r.LaunchedAt = r.LaunchedAt.UTC()
	return r, nil
}
