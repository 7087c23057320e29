package domain

// RatingMetaKey is the post metadata key holding a post's rating.
const RatingMetaKey = "rating"

// DefaultMaximumRating applies whenever the stored maximum is absent or zero.
const DefaultMaximumRating = 5.0

// Rating pairs a post's rating with the site-wide maximum it is displayed against.
type Rating struct {
	PostID  int64
	Value   float64
	Maximum float64
}
