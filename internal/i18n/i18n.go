// Package i18n loads gettext catalogs and picks one per request.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

// SourceLocale is the language msgids are written in.
const SourceLocale = "en"

//go:embed locales/*.po
var localeFS embed.FS

// Translator maps a msgid onto the active language.
type Translator interface {
	Get(str string, vars ...interface{}) string
}

// Catalog holds one translator per supported locale.
type Catalog struct {
	fallback    string
	names       []string
	translators map[string]Translator
	matcher     language.Matcher
}

// Load parses the embedded catalogs. defaultLocale is served when nothing in
// Accept-Language matches and must be SourceLocale or one of the catalogs.
func Load(defaultLocale string) (*Catalog, error) {
	translators := map[string]Translator{SourceLocale: gotext.NewPo()}

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("list locales: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".po" {
			continue
		}
		payload, err := localeFS.ReadFile(path.Join("locales", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", entry.Name(), err)
		}
		po := gotext.NewPo()
		po.Parse(payload)
		translators[strings.TrimSuffix(entry.Name(), ".po")] = po
	}

	if _, ok := translators[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no catalog", defaultLocale)
	}

	names := make([]string, 0, len(translators))
	for name := range translators {
		if name != defaultLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	// The matcher falls back to its first tag.
	names = append([]string{defaultLocale}, names...)

	tags := make([]language.Tag, 0, len(names))
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse locale %q: %w", name, err)
		}
		tags = append(tags, tag)
	}

	return &Catalog{
		fallback:    defaultLocale,
		names:       names,
		translators: translators,
		matcher:     language.NewMatcher(tags),
	}, nil
}

// Locales lists the supported locales, default first.
func (c *Catalog) Locales() []string {
	return append([]string(nil), c.names...)
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return c.fallback
	}
	_, index := language.MatchStrings(c.matcher, acceptLanguage)
	if index < 0 || index >= len(c.names) {
		return c.fallback
	}
	return c.names[index]
}

// Translator returns the translator for locale, or the default one.
func (c *Catalog) Translator(locale string) Translator {
	if tr, ok := c.translators[locale]; ok {
		return tr
	}
	return c.translators[c.fallback]
}

type ctxKey struct{}

// WithTranslator stores tr in ctx for T.
func WithTranslator(ctx context.Context, tr Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, tr)
}

// T translates str with the translator carried by ctx. Without one the
// msgid is returned unchanged.
func T(ctx context.Context, str string) string {
	if tr, ok := ctx.Value(ctxKey{}).(Translator); ok && tr != nil {
		return tr.Get(str)
	}
	return str
}
