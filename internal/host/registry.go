package host

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"sort"

	"github.com/Clark-Hu/post-rating/internal/domain"
)

// PageFunc renders an admin page for actor.
type PageFunc func(ctx context.Context, w io.Writer, actor Actor) error

// RenderFunc renders a fragment such as a settings section or field.
type RenderFunc func(ctx context.Context, w io.Writer) error

// MetaBoxFunc renders a meta box for the post being edited.
type MetaBoxFunc func(ctx context.Context, w io.Writer, post domain.Post) error

// Registry holds everything plugins registered while the host booted.
type Registry struct {
	Menu      *Menu
	Settings  *Settings
	MetaBoxes *MetaBoxes
	Styles    *Styles
}

// Boot fires the startup hooks and collects their registrations.
func Boot(ctx context.Context, hooks *Hooks) (*Registry, error) {
	if err := hooks.FireInit(ctx); err != nil {
		return nil, err
	}
	reg := &Registry{
		Menu:      &Menu{},
		Settings:  NewSettings(),
		MetaBoxes: &MetaBoxes{},
		Styles:    &Styles{},
	}
	hooks.FireAdminMenu(reg.Menu)
	hooks.FireAdminInit(reg.Settings)
	hooks.FireAddMetaBoxes(reg.MetaBoxes)
	hooks.FirePrintStyles(reg.Styles)
	return reg, nil
}

// Page is an admin menu entry.
type Page struct {
	Title      string
	MenuTitle  string
	Capability string
	Slug       string
	Render     PageFunc
}

// Menu collects admin pages.
type Menu struct {
	pages []Page
}

// AddOptionsPage adds a page under the settings menu.
func (m *Menu) AddOptionsPage(title, menuTitle, capability, slug string, render PageFunc) {
	m.pages = append(m.pages, Page{
		Title:      title,
		MenuTitle:  menuTitle,
		Capability: capability,
		Slug:       slug,
		Render:     render,
	})
}

// Page looks a page up by slug.
func (m *Menu) Page(slug string) (Page, bool) {
	for _, p := range m.pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Pages returns the registered pages in registration order.
func (m *Menu) Pages() []Page {
	return append([]Page(nil), m.pages...)
}

// MetaBox is a panel on a post edit screen.
type MetaBox struct {
	ID       string
	Title    string
	Render   MetaBoxFunc
	Screen   string
	Context  string
	Priority string
}

var (
	contextOrder  = map[string]int{"normal": 0, "advanced": 1, "side": 2}
	priorityOrder = map[string]int{"high": 0, "core": 1, "default": 2, "low": 3}
)

// MetaBoxes collects meta boxes per screen.
type MetaBoxes struct {
	boxes []MetaBox
}

// Add registers a meta box. Empty context and priority mean "advanced" and "default".
func (b *MetaBoxes) Add(id, title string, render MetaBoxFunc, screen, context, priority string) {
	if context == "" {
		context = "advanced"
	}
	if priority == "" {
		priority = "default"
	}
	b.boxes = append(b.boxes, MetaBox{
		ID:       id,
		Title:    title,
		Render:   render,
		Screen:   screen,
		Context:  context,
		Priority: priority,
	})
}

// For returns the boxes shown on screen, ordered by context then priority.
func (b *MetaBoxes) For(screen string) []MetaBox {
	var out []MetaBox
	for _, box := range b.boxes {
		if box.Screen == screen {
			out = append(out, box)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := contextOrder[out[i].Context], contextOrder[out[j].Context]
		if ci != cj {
			return ci < cj
		}
		return priorityOrder[out[i].Priority] < priorityOrder[out[j].Priority]
	})
	return out
}

// Style is an enqueued stylesheet.
type Style struct {
	Handle string
	URL    string
}

// Styles collects stylesheets to link from rendered pages.
type Styles struct {
	styles []Style
}

// Enqueue adds a stylesheet. A handle already enqueued is ignored.
func (s *Styles) Enqueue(handle, url string) {
	for _, st := range s.styles {
		if st.Handle == handle {
			return
		}
	}
	s.styles = append(s.styles, Style{Handle: handle, URL: url})
}

// Links returns the enqueued stylesheets in order.
func (s *Styles) Links() []Style {
	return append([]Style(nil), s.styles...)
}

// RenderLinks writes one <link> element per stylesheet.
func (s *Styles) RenderLinks(w io.Writer) error {
	for _, st := range s.styles {
		_, err := fmt.Fprintf(w, "<link rel=\"stylesheet\" id=\"%s-css\" href=\"%s\" type=\"text/css\">\n",
			template.HTMLEscapeString(st.Handle), template.HTMLEscapeString(st.URL))
		if err != nil {
			return err
		}
	}
	return nil
}
