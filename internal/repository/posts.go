package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/guregu/null.v4"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// PostsRepository provides persistence helpers for posts and the query engine
// used to list them.
type PostsRepository struct {
	pool *pgxpool.Pool
}

const postColumns = `
    id,
    parent_id,
    post_type,
    title,
    created_at,
    updated_at
`

var qualifiedPostColumns = []string{
	"p.id", "p.parent_id", "p.post_type", "p.title", "p.created_at", "p.updated_at",
}

// orderColumns maps the accepted orderby values onto SQL expressions.
var orderColumns = map[string]string{
	domain.OrderByMetaValueNum: "meta_value_num(m.meta_value)",
	"meta_value":               "m.meta_value",
	"date":                     "p.created_at",
	"modified":                 "p.updated_at",
	"title":                    "p.title",
	"ID":                       "p.id",
}

// PostCreateParams bundles the fields required to create a post.
type PostCreateParams struct {
	Type     string
	Title    string
	ParentID null.Int
}

// Create inserts a new post row and returns the stored entity.
func (r *PostsRepository) Create(ctx context.Context, params PostCreateParams) (domain.Post, error) {
	postType := params.Type
	if postType == "" {
		postType = domain.PostTypePost
	}

	query := fmt.Sprintf(`
        INSERT INTO posts (parent_id, post_type, title)
        VALUES ($1,$2,$3)
        RETURNING %s
    `, postColumns)

	post, err := scanPost(r.pool.QueryRow(ctx, query, params.ParentID, postType, params.Title))
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetByID fetches a post by its identifier.
func (r *PostsRepository) GetByID(ctx context.Context, id int64) (domain.Post, error) {
	query := fmt.Sprintf(`SELECT %s FROM posts WHERE id = $1`, postColumns)
	post, err := scanPost(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	return post, nil
}

// UpdateTitle changes a post's title when one is given and bumps updated_at.
func (r *PostsRepository) UpdateTitle(ctx context.Context, id int64, title *string) (domain.Post, error) {
	query := fmt.Sprintf(`
        UPDATE posts
        SET title = COALESCE($2, title),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, postColumns)

	post, err := scanPost(r.pool.QueryRow(ctx, query, id, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, err
	}
	return post, nil
}

// CreateRevision snapshots a post as a new revision row pointing at it.
func (r *PostsRepository) CreateRevision(ctx context.Context, postID int64) (domain.Post, error) {
	query := fmt.Sprintf(`
        INSERT INTO posts (parent_id, post_type, title)
        SELECT id, '%s', title FROM posts WHERE id = $1 AND post_type <> '%s'
        RETURNING %s
    `, domain.PostTypeRevision, domain.PostTypeRevision, postColumns)

	post, err := scanPost(r.pool.QueryRow(ctx, query, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("create revision of %d: %w", postID, err)
	}
	return post, nil
}

// RevisionParent returns the parent of a revision. ok is false when postID is
// not a revision (including when it does not exist).
func (r *PostsRepository) RevisionParent(ctx context.Context, postID int64) (int64, bool, error) {
	const query = `SELECT parent_id FROM posts WHERE id = $1 AND post_type = $2 AND parent_id IS NOT NULL`

	var parentID int64
	err := r.pool.QueryRow(ctx, query, postID, domain.PostTypeRevision).Scan(&parentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve revision parent of %d: %w", postID, err)
	}
	return parentID, true, nil
}

// Query lists posts carrying q.MetaKey, sorted and paginated as requested.
// Posts without the meta entry are excluded.
func (r *PostsRepository) Query(ctx context.Context, q domain.PostQuery) (domain.PostPage, error) {
	base := filterPosts(q)

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return domain.PostPage{}, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.PostPage{}, fmt.Errorf("count posts: %w", err)
	}

	listSQL, listArgs, err := listPosts(base, q).ToSql()
	if err != nil {
		return domain.PostPage{}, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return domain.PostPage{}, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := make([]domain.RatedPost, 0)
	for rows.Next() {
		var item domain.RatedPost
		if err := rows.Scan(
			&item.ID,
			&item.ParentID,
			&item.Type,
			&item.Title,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.MetaValue,
		); err != nil {
			return domain.PostPage{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.PostPage{}, err
	}

	return domain.PostPage{Items: items, Total: total}, nil
}

func filterPosts(q domain.PostQuery) squirrel.SelectBuilder {
	b := psql.Select().
		From("posts p").
		Join("post_meta m ON m.post_id = p.id AND m.meta_key = ?", q.MetaKey)

	switch q.PostType {
	case "", "any":
		b = b.Where(squirrel.NotEq{"p.post_type": domain.PostTypeRevision})
	default:
		b = b.Where(squirrel.Eq{"p.post_type": q.PostType})
	}
	return b
}

func listPosts(base squirrel.SelectBuilder, q domain.PostQuery) squirrel.SelectBuilder {
	order := strings.ToUpper(strings.TrimSpace(q.Order))
	if order != domain.OrderAsc {
		order = domain.OrderDesc
	}
	column, ok := orderColumns[q.OrderBy]
	if !ok {
		column = orderColumns[domain.OrderByMetaValueNum]
	}

	b := base.
		Columns(qualifiedPostColumns...).
		Column("m.meta_value").
		OrderBy(column+" "+order, "p.id "+order)

	if q.PostsPerPage >= 0 {
		b = b.Limit(uint64(q.PostsPerPage))
	}
	if q.Offset > 0 {
		b = b.Offset(uint64(q.Offset))
	}
	return b
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var post domain.Post
	err := row.Scan(
		&post.ID,
		&post.ParentID,
		&post.Type,
		&post.Title,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}
