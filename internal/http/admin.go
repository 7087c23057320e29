package httpserver

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/admin"
	"github.com/Clark-Hu/post-rating/internal/host"
	"github.com/Clark-Hu/post-rating/internal/i18n"
	"github.com/Clark-Hu/post-rating/internal/plugin"
	"github.com/Clark-Hu/post-rating/internal/repository"
)

const (
	maxFormBody     = 64 << 10
	settingsUpdated = "settings-updated"
	optionsPrefix   = "/admin/options/"
)

func (s *Server) handleOptionsPage(w http.ResponseWriter, r *http.Request) {
	page, ok := s.registry.Menu.Page(chi.URLParam(r, "slug"))
	if !ok {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	actor := s.actorFor(r.Header.Get("Authorization"))
	if !actor.Can(page.Capability) {
		s.forbidden(w, r)
		return
	}

	var body bytes.Buffer
	if err := page.Render(r.Context(), &body, actor); err != nil {
		if errors.Is(err, admin.ErrPermissionDenied) {
			s.forbidden(w, r)
			return
		}
		s.logger.Error("render options page failed", zap.String("slug", page.Slug), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	view := adminPageView{
		Title: i18n.T(r.Context(), page.Title),
		Body:  template.HTML(body.String()),
	}
	if r.URL.Query().Get(settingsUpdated) == "true" {
		view.Notice = i18n.T(r.Context(), "Settings saved.")
	}
	s.renderAdminPage(w, view)
}

func (s *Server) handleSaveOptions(w http.ResponseWriter, r *http.Request) {
	actor := s.actorFor(r.Header.Get("Authorization"))
	if !actor.Can(host.CapManageOptions) {
		s.forbidden(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Unable to parse form", http.StatusBadRequest)
		return
	}
	group := r.PostForm.Get(host.OptionPageField)
	options := s.registry.Settings.Options(group)
	if len(options) == 0 {
		http.Error(w, "Unknown settings group", http.StatusBadRequest)
		return
	}

	for _, option := range options {
		value, err := s.registry.Settings.Validate(r.Context(), option, host.FormFields(r.PostForm, option))
		if err != nil {
			s.logger.Error("validate option failed", zap.String("option", option), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := s.options.Put(r.Context(), option, value); err != nil {
			s.logger.Error("save option failed", zap.String("option", option), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.logger.Info("option saved", zap.String("option", option))
	}

	http.Redirect(w, r, s.settingsReturnPath(r), http.StatusSeeOther)
}

// settingsReturnPath sends the browser back to the options page the form was
// posted from, falling back to the first registered page.
func (s *Server) settingsReturnPath(r *http.Request) string {
	var target string
	if ref, err := url.Parse(r.Referer()); err == nil && strings.HasPrefix(ref.Path, optionsPrefix) {
		target = ref.Path
	} else if pages := s.registry.Menu.Pages(); len(pages) > 0 {
		target = optionsPrefix + pages[0].Slug
	} else {
		target = "/admin/plugins"
	}
	return target + "?" + settingsUpdated + "=true"
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	if !s.actorFor(r.Header.Get("Authorization")).Can(host.CapEditPosts) {
		s.forbidden(w, r)
		return
	}
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	view := editPostView{
		ID:      post.ID,
		Heading: i18n.T(ctx, "Edit Post"),
		Title:   post.Title,
		Submit:  i18n.T(ctx, "Update"),
	}
	for _, box := range s.registry.MetaBoxes.For(post.Type) {
		var body bytes.Buffer
		if err := box.Render(ctx, &body, post); err != nil {
			s.logger.Error("render meta box failed", zap.String("box", box.ID), zap.Int64("post_id", post.ID), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		view.Boxes = append(view.Boxes, metaBoxView{
			ID:      box.ID,
			Context: box.Context,
			Title:   i18n.T(ctx, box.Title),
			Body:    template.HTML(body.String()),
		})
	}

	var body bytes.Buffer
	if err := editPostTemplate.Execute(&body, view); err != nil {
		s.logger.Error("render edit screen failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.renderAdminPage(w, adminPageView{Title: view.Heading, Body: template.HTML(body.String())})
}

// handleSavePost stores the edit form. Like a CMS save, it snapshots a
// revision and fires save_post for the revision first and then the post.
func (s *Server) handleSavePost(w http.ResponseWriter, r *http.Request) {
	if !s.actorFor(r.Header.Get("Authorization")).Can(host.CapEditPosts) {
		s.forbidden(w, r)
		return
	}
	post, ok := s.loadPost(w, r)
	if !ok {
		return
	}
	if post.IsRevision() {
		http.Error(w, "Revisions cannot be edited", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Unable to parse form", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	var title *string
	if _, ok := r.PostForm["post_title"]; ok {
		val := strings.TrimSpace(r.PostForm.Get("post_title"))
		title = &val
	}
	if _, err := s.posts.UpdateTitle(ctx, post.ID, title); err != nil {
		s.logger.Error("update post failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	revision, err := s.posts.CreateRevision(ctx, post.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("create revision failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err == nil {
		if err := s.hooks.FireSavePost(ctx, revision.ID, r.PostForm); err != nil {
			s.logger.Error("save_post failed", zap.Int64("post_id", revision.ID), zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	if err := s.hooks.FireSavePost(ctx, post.ID, r.PostForm); err != nil {
		s.logger.Error("save_post failed", zap.Int64("post_id", post.ID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/posts/"+strconv.FormatInt(post.ID, 10)+"/edit", http.StatusSeeOther)
}

type pluginResponse struct {
	File        string   `json:"file"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Links       []string `json:"links"`
}

type pluginListResponse struct {
	Items []pluginResponse `json:"items"`
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	if !s.actorFor(r.Header.Get("Authorization")).Can(host.CapManageOptions) {
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", i18n.T(r.Context(), admin.PermissionDeniedMessage))
		return
	}

	info := plugin.Manifest
	links := s.hooks.ApplyPluginRowMeta(r.Context(), []string{"Version " + info.Version}, info.File)
	s.respondJSON(w, http.StatusOK, pluginListResponse{Items: []pluginResponse{{
		File:        info.File,
		Name:        info.Name,
		Version:     info.Version,
		Description: info.Description,
		Links:       links,
	}}})
}

func (s *Server) renderAdminPage(w http.ResponseWriter, view adminPageView) {
	var page bytes.Buffer
	if err := adminPageTemplate.Execute(&page, view); err != nil {
		s.logger.Error("render admin page failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.respondHTML(w, http.StatusOK, page.Bytes())
}
