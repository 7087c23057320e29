package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/presenter"
	"github.com/Clark-Hu/post-rating/internal/rating"
	"github.com/Clark-Hu/post-rating/internal/repository"
)

const maxTopRatedLimit = 100

type ratedPostResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	PostType string  `json:"postType"`
	Rating   float64 `json:"rating"`
}

type topRatedResponse struct {
	Items         []ratedPostResponse `json:"items"`
	Total         int64               `json:"total"`
	MaximumRating float64             `json:"maximumRating"`
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	opts, err := buildTopRatedOptions(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	page, err := s.plugin.Presenter.TopRated(r.Context(), opts...)
	if err != nil {
		s.logger.Error("top rated query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list posts")
		return
	}
	maximum, err := s.plugin.Store.MaximumRating(r.Context())
	if err != nil {
		s.logger.Error("read maximum rating failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list posts")
		return
	}

	items := make([]ratedPostResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, ratedPostResponse{
			ID:       item.ID,
			Title:    item.Title,
			PostType: item.Type,
			Rating:   rating.ParseFloat(item.MetaValue),
		})
	}
	s.respondJSON(w, http.StatusOK, topRatedResponse{
		Items:         items,
		Total:         page.Total,
		MaximumRating: maximum,
	})
}

// buildTopRatedOptions turns query parameters into overrides of the
// top-rated defaults. Absent parameters keep their default.
func buildTopRatedOptions(query url.Values) ([]presenter.QueryOption, error) {
	var opts []presenter.QueryOption

	if postType := strings.TrimSpace(query.Get("post_type")); postType != "" {
		opts = append(opts, presenter.WithPostType(postType))
	}

	if raw := strings.TrimSpace(query.Get("order")); raw != "" {
		order := strings.ToUpper(raw)
		if order != domain.OrderAsc && order != domain.OrderDesc {
			return nil, fmt.Errorf("order must be asc or desc")
		}
		opts = append(opts, presenter.WithOrder(order))
	}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < -1 || limit > maxTopRatedLimit {
			return nil, fmt.Errorf("limit must be between -1 and %d", maxTopRatedLimit)
		}
		opts = append(opts, presenter.WithLimit(limit))
	}

	if raw := strings.TrimSpace(query.Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("offset must be a non-negative integer")
		}
		opts = append(opts, presenter.WithOffset(offset))
	}

	return opts, nil
}

func (s *Server) handleShowPost(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}

	fragment, err := s.plugin.Presenter.Render(r.Context(), post.ID, r.URL.Query().Get("format"))
	if err != nil {
		s.logger.Error("render rating failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var styles bytes.Buffer
	if err := s.registry.Styles.RenderLinks(&styles); err != nil {
		s.logger.Error("render stylesheet links failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var body bytes.Buffer
	err = postPageTemplate.Execute(&body, postPageView{
		ID:     post.ID,
		Title:  post.Title,
		Styles: template.HTML(styles.String()),
		Rating: fragment,
	})
	if err != nil {
		s.logger.Error("render post page failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.respondHTML(w, http.StatusOK, body.Bytes())
}

func (s *Server) handleRatingFragment(w http.ResponseWriter, r *http.Request) {
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}

	fragment, err := s.plugin.Presenter.Render(r.Context(), post.ID, r.URL.Query().Get("format"))
	if err != nil {
		s.logger.Error("render rating failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.respondHTML(w, http.StatusOK, []byte(fragment))
}

// loadPost resolves the {id} route parameter. It writes the error response
// itself and reports false when the request cannot continue.
func (s *Server) loadPost(w http.ResponseWriter, r *http.Request) (domain.Post, bool) {
	id, err := parsePostID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return domain.Post{}, false
	}
	post, err := s.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "Post not found", http.StatusNotFound)
			return domain.Post{}, false
		}
		s.logger.Error("load post failed", zap.Int64("post_id", id), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return domain.Post{}, false
	}
	return post, true
}

func parsePostID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return 0, fmt.Errorf("missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}
