// Package host defines the extension points plugins attach to: a typed hook
// table plus the registries those hooks populate.
package host

import (
	"context"
	"fmt"
	"net/url"
)

// SavePostFunc handles a saved post. form is the submitted edit form.
type SavePostFunc func(ctx context.Context, postID int64, form url.Values) error

// RowMetaFilter rewrites the links shown under a plugin in the plugin list.
type RowMetaFilter func(ctx context.Context, links []string, file string) []string

// Hooks is the table of lifecycle events and their handlers. Handlers must be
// registered before the host starts serving; the table is read-only afterwards.
type Hooks struct {
	init          []func(ctx context.Context) error
	adminMenu     []func(*Menu)
	adminInit     []func(*Settings)
	addMetaBoxes  []func(*MetaBoxes)
	savePost      []SavePostFunc
	printStyles   []func(*Styles)
	pluginRowMeta []RowMetaFilter
}

// NewHooks returns an empty hook table.
func NewHooks() *Hooks {
	return &Hooks{}
}

// OnInit registers a handler for host initialization.
func (h *Hooks) OnInit(fn func(ctx context.Context) error) { h.init = append(h.init, fn) }

// OnAdminMenu registers a handler that adds admin menu pages.
func (h *Hooks) OnAdminMenu(fn func(*Menu)) { h.adminMenu = append(h.adminMenu, fn) }

// OnAdminInit registers a handler that registers settings, sections and fields.
func (h *Hooks) OnAdminInit(fn func(*Settings)) { h.adminInit = append(h.adminInit, fn) }

// OnAddMetaBoxes registers a handler that adds meta boxes to edit screens.
func (h *Hooks) OnAddMetaBoxes(fn func(*MetaBoxes)) { h.addMetaBoxes = append(h.addMetaBoxes, fn) }

// OnSavePost registers a handler run after every post save, revisions included.
func (h *Hooks) OnSavePost(fn SavePostFunc) { h.savePost = append(h.savePost, fn) }

// OnPrintStyles registers a handler that enqueues front-end stylesheets.
func (h *Hooks) OnPrintStyles(fn func(*Styles)) { h.printStyles = append(h.printStyles, fn) }

// AddPluginRowMetaFilter registers a filter over plugin list row links.
func (h *Hooks) AddPluginRowMetaFilter(fn RowMetaFilter) {
	h.pluginRowMeta = append(h.pluginRowMeta, fn)
}

// FireInit runs init handlers in registration order.
func (h *Hooks) FireInit(ctx context.Context) error {
	for _, fn := range h.init {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("init hook: %w", err)
		}
	}
	return nil
}

// FireAdminMenu populates m.
func (h *Hooks) FireAdminMenu(m *Menu) {
	for _, fn := range h.adminMenu {
		fn(m)
	}
}

// FireAdminInit populates s.
func (h *Hooks) FireAdminInit(s *Settings) {
	for _, fn := range h.adminInit {
		fn(s)
	}
}

// FireAddMetaBoxes populates b.
func (h *Hooks) FireAddMetaBoxes(b *MetaBoxes) {
	for _, fn := range h.addMetaBoxes {
		fn(b)
	}
}

// FireSavePost runs save handlers in order and stops at the first error.
func (h *Hooks) FireSavePost(ctx context.Context, postID int64, form url.Values) error {
	for _, fn := range h.savePost {
		if err := fn(ctx, postID, form); err != nil {
			return fmt.Errorf("save_post hook for %d: %w", postID, err)
		}
	}
	return nil
}

// FirePrintStyles populates s.
func (h *Hooks) FirePrintStyles(s *Styles) {
	for _, fn := range h.printStyles {
		fn(s)
	}
}

// ApplyPluginRowMeta threads links through every row-meta filter.
func (h *Hooks) ApplyPluginRowMeta(ctx context.Context, links []string, file string) []string {
	for _, fn := range h.pluginRowMeta {
		links = fn(ctx, links, file)
	}
	return links
}
