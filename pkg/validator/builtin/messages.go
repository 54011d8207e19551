package builtin

import (
	"context"
	"embed"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

// Messages holds the dictionaries of the built-in rules, one YAML file per
// locale under "locales".
//
//go:embed locales/*.yaml
var Messages embed.FS

// MessagesAdapter returns an adapter serving Messages.
func MessagesAdapter() i18n.Adapter {
	if a := i18n.NewFSAdapter(i18n.NewYAMLParser(), Messages, "locales"); a != nil {
		return a
	}
	return nil
}

// LoadMessages merges the built-in dictionaries into dict.
func LoadMessages(ctx context.Context, dict *i18n.Dictionary) error {
	return dict.Load(ctx, MessagesAdapter())
}
