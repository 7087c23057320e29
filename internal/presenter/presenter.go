// Package presenter renders ratings outside the editor.
package presenter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/rating"
)

// StarUnit is the width in pixels of one rating point; it matches the star
// glyph width in the stylesheet.
const StarUnit = 23.0

// Output formats.
const (
	FormatStars = "stars"
	FormatText  = "text"
)

// RatingReader reads a post's rating and the maximum it is shown against.
type RatingReader interface {
	GetRating(ctx context.Context, postID int64) (float64, float64, error)
}

// QueryEngine executes post queries on behalf of the presenter.
type QueryEngine interface {
	Query(ctx context.Context, q domain.PostQuery) (domain.PostPage, error)
}

// Presenter renders ratings and shapes top-rated queries.
type Presenter struct {
	ratings RatingReader
	posts   QueryEngine
}

// New constructs a Presenter.
func New(ratings RatingReader, posts QueryEngine) *Presenter {
	if ratings == nil || posts == nil {
		panic("presenter: ratings and posts must not be nil")
	}
	return &Presenter{ratings: ratings, posts: posts}
}

var ratingTemplate = template.Must(template.New("rating").Parse(
	`<div class="post-rating">` +
		`{{if .Stars}}` +
		`<span class="post-rating post-rating-max" title="{{.Title}}" style="{{.BackgroundStyle}}"></span>` +
		`<span class="post-rating" title="{{.Title}}" style="{{.Style}}"></span>` +
		`{{else}}Rating: {{.Title}}{{end}}` +
		`</div>`))

type ratingView struct {
	Stars           bool
	Title           string
	Style           template.CSS
	BackgroundStyle template.CSS
}

// Render reads the post's rating and renders it in format. An empty format
// means stars; any unknown format renders text.
func (p *Presenter) Render(ctx context.Context, postID int64, format string) (template.HTML, error) {
	value, maximum, err := p.ratings.GetRating(ctx, postID)
	if err != nil {
		return "", err
	}
	return RenderRating(value, maximum, format)
}

// RenderRating renders an already loaded rating.
func RenderRating(value, maximum float64, format string) (template.HTML, error) {
	if format == "" {
		format = FormatStars
	}
	width, background := StarWidths(value, maximum)
	view := ratingView{
		Stars:           format == FormatStars,
		Title:           rating.FormatNumber(value) + " / " + rating.FormatNumber(maximum),
		Style:           template.CSS(fmt.Sprintf("width: %spx;", rating.FormatNumber(width))),
		BackgroundStyle: template.CSS(fmt.Sprintf("width: %spx;", rating.FormatNumber(background))),
	}

	var buf bytes.Buffer
	if err := ratingTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render rating: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// StarWidths returns the filled and background bar widths in pixels. The
// filled bar is not clamped to the background.
func StarWidths(value, maximum float64) (width, background float64) {
	return StarUnit * value, StarUnit * maximum
}
