package httpserver

import (
	"net/url"
	"testing"

	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/presenter"
)

func TestBuildTopRatedOptions(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, q domain.PostQuery)
	}{
		{
			name:  "defaults",
			query: "",
			check: func(t *testing.T, q domain.PostQuery) {
				if q != presenter.DefaultQuery() {
					t.Fatalf("query = %+v, want defaults", q)
				}
			},
		},
		{
			name:  "overrides",
			query: "post_type=page&order=asc&limit=10&offset=20",
			check: func(t *testing.T, q domain.PostQuery) {
				if q.PostType != domain.PostTypePage || q.Order != domain.OrderAsc || q.PostsPerPage != 10 || q.Offset != 20 {
					t.Fatalf("unexpected query %+v", q)
				}
				if q.MetaKey != domain.RatingMetaKey || q.OrderBy != domain.OrderByMetaValueNum {
					t.Fatalf("overrides leaked into other fields: %+v", q)
				}
			},
		},
		{
			name:  "unlimited",
			query: "limit=-1",
			check: func(t *testing.T, q domain.PostQuery) {
				if q.PostsPerPage != -1 {
					t.Fatalf("limit = %d, want -1", q.PostsPerPage)
				}
			},
		},
		{name: "bad order", query: "order=up", wantErr: true},
		{name: "limit not a number", query: "limit=abc", wantErr: true},
		{name: "limit too large", query: "limit=1000", wantErr: true},
		{name: "limit too small", query: "limit=-2", wantErr: true},
		{name: "negative offset", query: "offset=-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			opts, err := buildTopRatedOptions(values)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, presenter.BuildQuery(opts...))
		})
	}
}
