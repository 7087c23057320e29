package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/Clark-Hu/post-rating/internal/domain"
	"github.com/Clark-Hu/post-rating/internal/i18n"
)

// ErrUnknownOption is returned when saving an option nobody registered.
var ErrUnknownOption = errors.New("host: unknown option")

// OptionPageField names the hidden form field carrying the settings group.
const OptionPageField = "option_page"

// ValidateFunc turns submitted fields into the record to persist.
type ValidateFunc func(ctx context.Context, submitted map[string]string) (domain.Options, error)

type setting struct {
	group    string
	option   string
	validate ValidateFunc
}

type section struct {
	id     string
	title  string
	render RenderFunc
	page   string
	fields []field
}

type field struct {
	id     string
	title  string
	render RenderFunc
}

// Settings is the settings registry: options grouped for saving, and
// sections/fields grouped by page for rendering.
type Settings struct {
	settings []setting
	sections []*section
}

// NewSettings returns an empty registry.
func NewSettings() *Settings {
	return &Settings{}
}

// Register declares option as saved by forms of group.
func (s *Settings) Register(group, option string, validate ValidateFunc) {
	s.settings = append(s.settings, setting{group: group, option: option, validate: validate})
}

// AddSection adds a section to page.
func (s *Settings) AddSection(id, title string, render RenderFunc, page string) {
	s.sections = append(s.sections, &section{id: id, title: title, render: render, page: page})
}

// AddField adds a field to a section of page. Fields for unknown sections are dropped.
func (s *Settings) AddField(id, title string, render RenderFunc, page, sectionID string) {
	for _, sec := range s.sections {
		if sec.page == page && sec.id == sectionID {
			sec.fields = append(sec.fields, field{id: id, title: title, render: render})
			return
		}
	}
}

// Options lists the options saved by group.
func (s *Settings) Options(group string) []string {
	var out []string
	for _, st := range s.settings {
		if st.group == group {
			out = append(out, st.option)
		}
	}
	return out
}

// Validate runs the option's validation callback. Options registered without
// one store the submitted fields verbatim.
func (s *Settings) Validate(ctx context.Context, option string, submitted map[string]string) (domain.Options, error) {
	for _, st := range s.settings {
		if st.option != option {
			continue
		}
		if st.validate == nil {
			payload, err := json.Marshal(submitted)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", option, err)
			}
			return domain.Options(payload), nil
		}
		return st.validate(ctx, submitted)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOption, option)
}

// RenderGroupFields writes the hidden fields that tie a form to group.
func (s *Settings) RenderGroupFields(w io.Writer, group string) error {
	_, err := fmt.Fprintf(w, "<input type=\"hidden\" name=\"%s\" value=\"%s\">\n",
		OptionPageField, template.HTMLEscapeString(group))
	return err
}

// RenderSections writes every section of page with its fields as a form table.
// Section and field titles are msgids translated with the request locale.
func (s *Settings) RenderSections(ctx context.Context, w io.Writer, page string) error {
	for _, sec := range s.sections {
		if sec.page != page {
			continue
		}
		if sec.title != "" {
			if _, err := fmt.Fprintf(w, "<h3>%s</h3>\n", template.HTMLEscapeString(i18n.T(ctx, sec.title))); err != nil {
				return err
			}
		}
		if sec.render != nil {
			if err := sec.render(ctx, w); err != nil {
				return fmt.Errorf("render section %s: %w", sec.id, err)
			}
		}
		if len(sec.fields) == 0 {
			continue
		}
		if _, err := io.WriteString(w, "<table class=\"form-table\">\n"); err != nil {
			return err
		}
		for _, f := range sec.fields {
			if _, err := fmt.Fprintf(w, "<tr><th scope=\"row\">%s</th><td>", template.HTMLEscapeString(i18n.T(ctx, f.title))); err != nil {
				return err
			}
			if err := f.render(ctx, w); err != nil {
				return fmt.Errorf("render field %s: %w", f.id, err)
			}
			if _, err := io.WriteString(w, "</td></tr>\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</table>\n"); err != nil {
			return err
		}
	}
	return nil
}

// FormFields extracts option[field] entries from a submitted form.
func FormFields(form url.Values, option string) map[string]string {
	prefix := option + "["
	out := make(map[string]string)
	for key, values := range form {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "]")
		if name == "" || strings.ContainsAny(name, "[]") {
			continue
		}
		out[name] = values[0]
	}
	return out
}
