package i18n_test

import (
	"context"
	"testing"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONParser(t *testing.T) {
	t.Parallel()

	parser := i18n.NewJSONParser()

	t.Run("parses locale documents", func(t *testing.T) {
		docs, err := parser.Parse(context.Background(), []byte(`{
			"en": {"messages": {"required": "{_field_} is required"}},
			"de": {"names": {"email": "E-Mail"}}
		}`))

		require.NoError(t, err)
		assert.Len(t, docs, 2)
		assert.Equal(t, map[string]any{"email": "E-Mail"}, docs["de"]["names"])
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), []byte(`{"en": `))
		assert.ErrorIs(t, err, i18n.ErrFailedToParseJSON)
	})

	t.Run("rejects non-map locale", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), []byte(`{"en": "hello"}`))
		assert.ErrorIs(t, err, i18n.ErrInvalidFragment)
	})

	t.Run("rejects empty document", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), []byte(`{}`))
		assert.ErrorIs(t, err, i18n.ErrInvalidFragment)
	})

	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := parser.Parse(ctx, []byte(`{"en": {}}`))
		assert.ErrorIs(t, err, i18n.ErrJSONParsingCancelled)
	})

	t.Run("supported extensions", func(t *testing.T) {
		assert.True(t, parser.SupportsFileExtension(".json"))
		assert.True(t, parser.SupportsFileExtension("JSON"))
		assert.False(t, parser.SupportsFileExtension(".yaml"))
	})
}

func TestYAMLParser(t *testing.T) {
	t.Parallel()

	parser := i18n.NewYAMLParser()

	t.Run("parses nested documents", func(t *testing.T) {
		docs, err := parser.Parse(context.Background(), []byte(`
en:
  fields:
    password:
      min: "Use at least {length} characters"
`))

		require.NoError(t, err)
		fields := docs["en"]["fields"].(map[string]any)
		password := fields["password"].(map[string]any)
		assert.Equal(t, "Use at least {length} characters", password["min"])
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), []byte("en:\n  messages: [unclosed"))
		assert.ErrorIs(t, err, i18n.ErrFailedToParseYAML)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		_, err := parser.Parse(context.Background(), nil)
		assert.ErrorIs(t, err, i18n.ErrInvalidFragment)
	})

	t.Run("respects cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := parser.Parse(ctx, []byte("en: {}"))
		assert.ErrorIs(t, err, i18n.ErrYAMLParsingCancelled)
	})

	t.Run("supported extensions", func(t *testing.T) {
		assert.True(t, parser.SupportsFileExtension(".yaml"))
		assert.True(t, parser.SupportsFileExtension("yml"))
		assert.False(t, parser.SupportsFileExtension(".json"))
	})
}

func TestNewParserForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     any
	}{
		{"en.json", &i18n.JSONParser{}},
		{"en.YAML", &i18n.YAMLParser{}},
		{"locales/fr.yml", &i18n.YAMLParser{}},
		{"en.toml", nil},
		{"en", nil},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := i18n.NewParserForFile(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestDecodeFragments(t *testing.T) {
	t.Parallel()

	t.Run("decodes all sections", func(t *testing.T) {
		frags, err := i18n.DecodeFragments(map[string]map[string]any{
			"en": {
				"messages": map[string]any{"required": "{_field_} is required"},
				"fields":   map[string]any{"email": map[string]any{"email": "Bad address"}},
				"names":    map[string]any{"email": "E-mail"},
			},
		})

		require.NoError(t, err)
		frag := frags["en"]
		assert.Equal(t, "{_field_} is required", frag.Messages["required"].String())
		assert.Equal(t, "Bad address", frag.Fields["email"]["email"].String())
		assert.Equal(t, "E-mail", frag.Names["email"])
	})

	t.Run("rejects empty locale", func(t *testing.T) {
		_, err := i18n.DecodeFragments(map[string]map[string]any{"": {}})
		assert.ErrorIs(t, err, i18n.ErrEmptyLocale)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		_, err := i18n.DecodeFragment(map[string]any{"translations": map[string]any{}})
		assert.ErrorIs(t, err, i18n.ErrInvalidFragment)
	})
}
