package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRejectsUnknownDefault(t *testing.T) {
	_, err := Load("xx")
	require.Error(t, err)
}

func TestNegotiate(t *testing.T) {
	catalog, err := Load(SourceLocale)
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "sv"}, catalog.Locales())

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"sv-SE,sv;q=0.9,en;q=0.5", "sv"},
		{"de-DE,de;q=0.9", "en"},
		{"en-GB", "en"},
		{"fr;q=0.8, sv;q=0.6", "sv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, catalog.Negotiate(tt.header), "header %q", tt.header)
	}
}

func TestTranslate(t *testing.T) {
	catalog, err := Load(SourceLocale)
	require.NoError(t, err)

	sv := WithTranslator(context.Background(), catalog.Translator("sv"))
	assert.Equal(t, "Högsta betyg", T(sv, "Maximum rating"))
	assert.Equal(t, "Untranslated", T(sv, "Untranslated"))

	en := WithTranslator(context.Background(), catalog.Translator("en"))
	assert.Equal(t, "Maximum rating", T(en, "Maximum rating"))

	assert.Equal(t, "Maximum rating", T(context.Background(), "Maximum rating"))
	assert.Equal(t, "Save Changes", T(WithTranslator(context.Background(), catalog.Translator("zz")), "Save Changes"))
}
