package httpserver

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/Clark-Hu/post-rating/internal/config"
	"github.com/Clark-Hu/post-rating/internal/host"
)

func newThrottledServer() *Server {
	cfg := config.Config{AuthToken: adminToken, EditorToken: editorToken, AdminEnabled: true, AdminWriteRPS: 1}
	return New(cfg, Dependencies{Registry: &host.Registry{
		Menu:      &host.Menu{},
		Settings:  host.NewSettings(),
		MetaBoxes: &host.MetaBoxes{},
		Styles:    &host.Styles{},
	}}, nil)
}

func TestAdminWritesAreThrottled(t *testing.T) {
	srv := newThrottledServer()

	// An empty form names no settings group, so an allowed request gets 400.
	first := httptestDo(srv, formRequest("/admin/options", url.Values{}, adminToken))
	if first.Code != http.StatusBadRequest {
		t.Fatalf("first status = %d, want 400", first.Code)
	}
	second := httptestDo(srv, formRequest("/admin/options", url.Values{}, adminToken))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("Retry-After = %q, want 1", second.Header().Get("Retry-After"))
	}
}

func TestAnonymousWritesDoNotDrainAdminBudget(t *testing.T) {
	srv := newThrottledServer()

	for i := 0; i < 3; i++ {
		rec := httptestDo(srv, formRequest("/admin/options", url.Values{}, ""))
		if rec.Code != http.StatusForbidden {
			t.Fatalf("anonymous request %d status = %d, want 403", i, rec.Code)
		}
	}
	rec := httptestDo(srv, formRequest("/admin/options", url.Values{}, "not-a-token"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unknown token status = %d, want 403", rec.Code)
	}

	rec = httptestDo(srv, formRequest("/admin/options", url.Values{}, adminToken))
	if rec.Code == http.StatusTooManyRequests {
		t.Fatalf("administrator throttled after anonymous traffic")
	}
}

func TestEditorWritesDoNotDrainAdminBudget(t *testing.T) {
	srv := newThrottledServer()

	rec := httptestDo(srv, formRequest("/admin/options", url.Values{}, editorToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("editor status = %d, want 403", rec.Code)
	}
	rec = httptestDo(srv, formRequest("/admin/options", url.Values{}, editorToken))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second editor status = %d, want 429", rec.Code)
	}

	rec = httptestDo(srv, formRequest("/admin/options", url.Values{}, adminToken))
	if rec.Code == http.StatusTooManyRequests {
		t.Fatalf("administrator throttled by editor traffic")
	}
}

func TestAdminRoutesDisabled(t *testing.T) {
	srv := New(config.Config{AuthToken: adminToken}, Dependencies{}, nil)

	rec := httptestDo(srv, formRequest("/admin/options", url.Values{}, adminToken))
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want admin routes absent", rec.Code)
	}
}
