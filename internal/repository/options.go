package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// OptionsRepository persists named options records as JSONB documents.
type OptionsRepository struct {
	pool *pgxpool.Pool
}

// Get returns the stored record, or nil when nothing is stored under name.
func (r *OptionsRepository) Get(ctx context.Context, name string) (domain.Options, error) {
	const query = `SELECT value FROM options WHERE name = $1`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get options %s: %w", name, err)
	}
	return domain.Options(payload), nil
}

// Put replaces the record stored under name.
func (r *OptionsRepository) Put(ctx context.Context, name string, value domain.Options) error {
	const query = `
        INSERT INTO options (name, value)
        VALUES ($1,$2::jsonb)
        ON CONFLICT (name)
        DO UPDATE SET value = EXCLUDED.value, updated_at = now()
    `
	if _, err := r.pool.Exec(ctx, query, name, string(value.Bytes())); err != nil {
		return fmt.Errorf("put options %s: %w", name, err)
	}
	return nil
}
