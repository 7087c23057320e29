package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostMetaRepository stores scalar metadata entries keyed by post and key.
type PostMetaRepository struct {
	pool *pgxpool.Pool
}

// Get returns the stored value and whether an entry exists.
func (r *PostMetaRepository) Get(ctx context.Context, postID int64, key string) (string, bool, error) {
	const query = `SELECT meta_value FROM post_meta WHERE post_id = $1 AND meta_key = $2`

	var value string
	err := r.pool.QueryRow(ctx, query, postID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get post meta %d/%s: %w", postID, key, err)
	}
	return value, true, nil
}

// Set creates or overwrites a metadata entry.
func (r *PostMetaRepository) Set(ctx context.Context, postID int64, key, value string) error {
	const query = `
        INSERT INTO post_meta (post_id, meta_key, meta_value)
        VALUES ($1,$2,$3)
        ON CONFLICT (post_id, meta_key)
        DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = now()
    `
	if _, err := r.pool.Exec(ctx, query, postID, key, value); err != nil {
		return fmt.Errorf("set post meta %d/%s: %w", postID, key, err)
	}
	return nil
}
