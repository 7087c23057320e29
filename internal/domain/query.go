package domain

// Sort directions accepted by PostQuery.
const (
	OrderDesc = "DESC"
	OrderAsc  = "ASC"
)

// OrderByMetaValueNum sorts by the numeric value of PostQuery.MetaKey.
const OrderByMetaValueNum = "meta_value_num"

// PostQuery shapes a request to the host query engine.
type PostQuery struct {
	PostType     string
	MetaKey      string
	OrderBy      string
	Order        string
	PostsPerPage int // negative means no limit
	Offset       int
}

// RatedPost is a post returned by a meta-ordered query together with its meta value.
type RatedPost struct {
	Post
	MetaValue string
}

// PostPage is one page of query results.
type PostPage struct {
	Items []RatedPost
	Total int64
}
