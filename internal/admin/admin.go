// Package admin implements the rating's administration surface: the options
// page, its settings and validation, the post edit meta box and the post-save
// handler.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"

	"github.com/russross/blackfriday/v2"

	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/host"
	"github.com/Clark-Hu/post-rating/internal/i18n"
	"github.com/Clark-Hu/post-rating/internal/rating"
)

// Identifiers registered with the host.
const (
	SettingsGroup   = "post_rating_options"
	SettingsPage    = "post-rating-options"
	PageSlug        = "post-rating"
	SectionID       = "post_rating_options_section"
	MaximumFieldID  = "post_rating_maximum_rating"
	MetaBoxID       = "post-rating"
	RatingFormField = "post_rating"
	PluginFile      = "post-rating/post-rating.php"
	OptionsEndpoint = "/admin/options"
)

// PermissionDeniedMessage is shown, translated, when ErrPermissionDenied is returned.
const PermissionDeniedMessage = "You do not have sufficient permissions to access this page."

// ErrPermissionDenied is returned when the actor lacks the capability a page requires.
var ErrPermissionDenied = errors.New("admin: permission denied")

// RatingStore is the slice of rating.Store the panel uses.
type RatingStore interface {
	GetRating(ctx context.Context, postID int64) (float64, float64, error)
	SetRating(ctx context.Context, postID int64, value float64) error
	Options(ctx context.Context) (domain.Options, error)
}

// PostResolver maps revisions onto the post they belong to.
type PostResolver interface {
	RevisionParent(ctx context.Context, postID int64) (int64, bool, error)
}

// Panel renders and handles the admin screens.
type Panel struct {
	store    RatingStore
	posts    PostResolver
	settings *host.Settings
}

// New constructs a Panel.
func New(store RatingStore, posts PostResolver) *Panel {
	if store == nil || posts == nil {
		panic("admin: store and posts must not be nil")
	}
	return &Panel{store: store, posts: posts}
}

// RegisterMenu adds the options page.
func (p *Panel) RegisterMenu(m *host.Menu) {
	m.AddOptionsPage("PostRating", "Post rating", host.CapManageOptions, PageSlug, p.RenderSettingsPage)
}

// RegisterSettings declares the options record with its section and field.
// The registry is kept so the options page can render its sections.
func (p *Panel) RegisterSettings(s *host.Settings) {
	p.settings = s
	s.Register(SettingsGroup, domain.OptionsName, p.OnSettingsSaved)
	s.AddSection(SectionID, "Options", p.RenderSectionText, SettingsPage)
	s.AddField(MaximumFieldID, "Maximum rating", p.RenderMaximumRatingField, SettingsPage, SectionID)
}

// RegisterMetaBoxes adds the rating box to the post edit screen.
func (p *Panel) RegisterMetaBoxes(b *host.MetaBoxes) {
	b.Add(MetaBoxID, "Post rating", p.RenderPostMetaBox, domain.PostTypePost, "side", "low")
}

var settingsPageTemplate = template.Must(template.New("settings").Parse(`<div>
<h2>{{.Heading}}</h2>
<form action="{{.Action}}" method="post">
{{.Fields}}{{.Sections}}
<input name="Submit" type="submit" value="{{.Submit}}" />
</form>
</div>
`))

type settingsPageView struct {
	Heading  string
	Action   string
	Fields   template.HTML
	Sections template.HTML
	Submit   string
}

// RenderSettingsPage writes the options page. Actors without manage_options
// get ErrPermissionDenied and nothing is written.
func (p *Panel) RenderSettingsPage(ctx context.Context, w io.Writer, actor host.Actor) error {
	if actor == nil || !actor.Can(host.CapManageOptions) {
		return ErrPermissionDenied
	}

	var fields, sections bytes.Buffer
	if p.settings != nil {
		if err := p.settings.RenderGroupFields(&fields, SettingsGroup); err != nil {
			return err
		}
		if err := p.settings.RenderSections(ctx, &sections, SettingsPage); err != nil {
			return err
		}
	}

	var page bytes.Buffer
	err := settingsPageTemplate.Execute(&page, settingsPageView{
		Heading:  i18n.T(ctx, "Post rating"),
		Action:   OptionsEndpoint,
		Fields:   template.HTML(fields.String()),
		Sections: template.HTML(sections.String()),
		Submit:   i18n.T(ctx, "Save Changes"),
	})
	if err != nil {
		return fmt.Errorf("render settings page: %w", err)
	}
	_, err = page.WriteTo(w)
	return err
}

// RenderSectionText writes the options section description.
func (p *Panel) RenderSectionText(ctx context.Context, w io.Writer) error {
	_, err := w.Write(blackfriday.Run([]byte(i18n.T(ctx, "Post rating options."))))
	return err
}

var maximumFieldTemplate = template.Must(template.New("maximum").Parse(
	`<input id="post_rating_maximum_rating" name="post_rating_options[maximum_rating]" type="number" step="0.1" min="0.1" value="{{.}}">`))

// RenderMaximumRatingField writes the maximum rating input, pre-filled with
// the stored value or the default when it is zero.
func (p *Panel) RenderMaximumRatingField(ctx context.Context, w io.Writer) error {
	options, err := p.store.Options(ctx)
	if err != nil {
		return err
	}
	maximum := rating.StoredMaximum(options)
	if maximum == 0 {
		maximum = domain.DefaultMaximumRating
	}
	return maximumFieldTemplate.Execute(w, rating.FormatNumber(maximum))
}

var metaBoxTemplate = template.Must(template.New("metabox").Parse(
	`<input id="post_rating" name="post_rating" type="number" min="0" max="{{.Maximum}}" step="0.1" value="{{.Value}}">`))

// RenderPostMetaBox writes the rating input for post.
func (p *Panel) RenderPostMetaBox(ctx context.Context, w io.Writer, post domain.Post) error {
	value, maximum, err := p.store.GetRating(ctx, post.ID)
	if err != nil {
		return err
	}
	return metaBoxTemplate.Execute(w, struct{ Value, Maximum string }{
		Value:   rating.FormatNumber(value),
		Maximum: rating.FormatNumber(maximum),
	})
}

// OnPostSaved stores the submitted rating. Revisions write to their parent
// post. Forms without the rating field leave the stored rating alone.
func (p *Panel) OnPostSaved(ctx context.Context, postID int64, form url.Values) error {
	if _, ok := form[RatingFormField]; !ok {
		return nil
	}
	parent, isRevision, err := p.posts.RevisionParent(ctx, postID)
	if err != nil {
		return err
	}
	if isRevision {
		postID = parent
	}
	return p.store.SetRating(ctx, postID, rating.ParseFloat(form.Get(RatingFormField)))
}

// OnSettingsSaved returns the stored options record with only the maximum
// rating replaced by the coerced submitted value. A missing field coerces to 0.
func (p *Panel) OnSettingsSaved(ctx context.Context, submitted map[string]string) (domain.Options, error) {
	current, err := p.store.Options(ctx)
	if err != nil {
		return nil, err
	}
	return rating.SetMaximumRating(current, rating.ParseFloat(submitted[domain.MaximumRatingField]))
}

// PluginRowMeta appends a settings link to this plugin's row in the plugin list.
func (p *Panel) PluginRowMeta(ctx context.Context, links []string, file string) []string {
	if file != PluginFile {
		return links
	}
	return append(links, fmt.Sprintf(`<a href="/admin/options/%s">%s</a>`,
		PageSlug, template.HTMLEscapeString(i18n.T(ctx, "Settings"))))
}
