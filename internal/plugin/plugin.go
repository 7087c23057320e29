// Package plugin attaches the rating components to the host's hooks.
package plugin

import (
	"context"
	_ "embed"

	"go.uber.org/zap"

	"github.com/Clark-Hu/post-rating/internal/admin"
	"github.com/Clark-Hu/post-rating/internal/host"
	"github.com/Clark-Hu/post-rating/internal/presenter"
	"github.com/Clark-Hu/post-rating/internal/rating"
)

// Stylesheet registration.
const (
	StyleHandle    = "post-rating"
	StylesheetPath = "/stylesheets/post-rating.css"
)

// Stylesheet is the front-end stylesheet served at StylesheetPath.
//
//go:embed assets/post-rating.css
var Stylesheet []byte

// Info describes a plugin in the host's plugin list.
type Info struct {
	File        string
	Name        string
	Version     string
	Description string
}

// Manifest is this plugin's entry in the plugin list.
var Manifest = Info{
	File:        admin.PluginFile,
	Name:        "Post rating",
	Version:     "0.1",
	Description: "A simple rating plugin.",
}

// Plugin owns the components built once at startup.
type Plugin struct {
	Store     *rating.Store
	Admin     *admin.Panel
	Presenter *presenter.Presenter
	logger    *zap.Logger
}

// New bundles the components. admin may be nil when the host runs without
// an administration surface.
func New(store *rating.Store, panel *admin.Panel, view *presenter.Presenter, logger *zap.Logger) *Plugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{Store: store, Admin: panel, Presenter: view, logger: logger}
}

// Register attaches the plugin's handlers to hooks. Admin handlers are only
// attached when adminEnabled is set and a panel was provided.
func (p *Plugin) Register(hooks *host.Hooks, adminEnabled bool) {
	hooks.OnInit(p.init)
	hooks.OnPrintStyles(EnqueueStylesheets)

	if !adminEnabled || p.Admin == nil {
		return
	}
	hooks.OnAdminMenu(p.Admin.RegisterMenu)
	hooks.OnAdminInit(p.Admin.RegisterSettings)
	hooks.OnAddMetaBoxes(p.Admin.RegisterMetaBoxes)
	hooks.OnSavePost(p.Admin.OnPostSaved)
	hooks.AddPluginRowMetaFilter(p.Admin.PluginRowMeta)
}

func (p *Plugin) init(ctx context.Context) error {
	maximum, err := p.Store.MaximumRating(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("post rating ready", zap.Float64("maximum_rating", maximum))
	return nil
}

// EnqueueStylesheets adds the rating stylesheet.
func EnqueueStylesheets(s *host.Styles) {
	s.Enqueue(StyleHandle, StylesheetPath)
}
