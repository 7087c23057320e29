package presenter

import (
	"context"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// DefaultTopRatedLimit is the page size used unless overridden.
const DefaultTopRatedLimit = 5

// QueryOption overrides one parameter of the top-rated query.
type QueryOption func(*domain.PostQuery)

// WithPostType restricts results to a post type; "any" spans every type but revisions.
func WithPostType(postType string) QueryOption {
	return func(q *domain.PostQuery) { q.PostType = postType }
}

// WithOrder sets the sort direction, domain.OrderAsc or domain.OrderDesc.
func WithOrder(order string) QueryOption {
	return func(q *domain.PostQuery) { q.Order = order }
}

// WithOrderBy sets the sort key.
func WithOrderBy(orderBy string) QueryOption {
	return func(q *domain.PostQuery) { q.OrderBy = orderBy }
}

// WithLimit sets the page size; negative means unlimited.
func WithLimit(limit int) QueryOption {
	return func(q *domain.PostQuery) { q.PostsPerPage = limit }
}

// WithOffset skips the first offset results.
func WithOffset(offset int) QueryOption {
	return func(q *domain.PostQuery) { q.Offset = offset }
}

// DefaultQuery is the top-rated query before overrides.
func DefaultQuery() domain.PostQuery {
	return domain.PostQuery{
		PostType:     domain.PostTypePost,
		MetaKey:      domain.RatingMetaKey,
		OrderBy:      domain.OrderByMetaValueNum,
		Order:        domain.OrderDesc,
		PostsPerPage: DefaultTopRatedLimit,
		Offset:       0,
	}
}

// BuildQuery applies opts on top of DefaultQuery.
func BuildQuery(opts ...QueryOption) domain.PostQuery {
	q := DefaultQuery()
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// TopRated lists posts sorted by rating.
func (p *Presenter) TopRated(ctx context.Context, opts ...QueryOption) (domain.PostPage, error) {
	return p.posts.Query(ctx, BuildQuery(opts...))
}
