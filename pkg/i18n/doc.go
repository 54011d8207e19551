// Package i18n provides the locale dictionary used to render validation
// messages, together with message templates and dictionary sources.
//
// The package allows you to:
//
//   - Keep per-locale dictionaries of rule messages, field-specific overrides
//     and field display names, merged additively from any number of sources.
//   - Render messages from static templates with `{placeholder}` interpolation
//     or from functions, through the Template type.
//   - Load dictionaries from memory, a file, a directory, any fs.FS (e.g. an
//     embed.FS) or a Redis hash by implementing or using an Adapter.
//   - Switch the active locale at runtime and be notified about it, so that
//     already rendered validation errors can be regenerated in the new locale
//     without validating again.
//   - Hot-reload dictionary files from disk with Watcher.
//   - Negotiate the locale from an Accept-Language header.
//
// # Architecture
//
// Dictionary is the central type. It holds one catalog per locale and the
// active locale. Lookups for a field and rule follow this precedence:
// field-specific override, global rule message, configured default message,
// then the literal FallbackMessage "{_field_} is not valid".
//
// Localize switches the active locale and publishes a Change to every
// Subscription created with Subscribe. Delivery never blocks: a subscriber
// whose buffer is full misses that change.
//
// # Usage
//
//	dict := i18n.NewDictionary("en")
//	dict.Localize("en", i18n.Fragment{
//	    Messages: map[string]i18n.Template{
//	        "required": i18n.Text("The {_field_} field is required"),
//	    },
//	    Names: map[string]string{"email": "E-mail"},
//	})
//
//	msg := dict.Resolve("email", "required", nil)
//	// Returns: "The E-mail field is required"
//
// Loading dictionaries shipped with the binary:
//
//	//go:embed locales
//	var locales embed.FS
//
//	err := dict.Load(ctx, i18n.NewFSAdapter(i18n.NewYAMLParser(), locales, "locales"))
//
// # Error Handling
//
// Loading errors are joined with package sentinels (for example
// ErrFailedToParseYAML) so callers can use errors.Is. Lookups never fail.
package i18n
