package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// Post types known to the host.
const (
	PostTypePost     = "post"
	PostTypePage     = "page"
	PostTypeRevision = "revision"
)

// Post represents a content item owned by the host.
type Post struct {
	ID        int64
	ParentID  null.Int
	Type      string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRevision reports whether the post is a historical snapshot of another post.
func (p Post) IsRevision() bool {
	return p.Type == PostTypeRevision && p.ParentID.Valid
}
