package repository

import (
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/post-rating/internal/store"
)

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("repository: not found")

// psql builds statements with PostgreSQL placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Posts    *PostsRepository
	PostMeta *PostMetaRepository
	Options  *OptionsRepository
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Posts:    &PostsRepository{pool: pool},
		PostMeta: &PostMetaRepository{pool: pool},
		Options:  &OptionsRepository{pool: pool},
	}
}
