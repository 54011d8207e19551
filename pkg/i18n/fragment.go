package i18n

import (
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Fragment is a piece of a locale dictionary. Merging fragments is additive:
// entries present in a later fragment override earlier ones leaf by leaf,
// everything else is kept.
type Fragment struct {
	// Messages maps a rule name to its message template.
	Messages map[string]Template
	// Fields maps a field name to rule-specific overrides for that field.
	Fields map[string]map[string]Template
	// Names maps a field name to its display name.
	Names map[string]string
}

// fragmentDocument is the serialized form of a Fragment found in YAML/JSON sources.
type fragmentDocument struct {
	Messages map[string]string            `mapstructure:"messages"`
	Fields   map[string]map[string]string `mapstructure:"fields"`
	Names    map[string]string            `mapstructure:"names"`
}

// DecodeFragment converts a raw document (as produced by a Parser) into a Fragment.
//
// Expected shape:
//
//	messages: {rule: template}
//	fields:   {field: {rule: template}}
//	names:    {field: display name}
func DecodeFragment(raw map[string]any) (Fragment, error) {
	var doc fragmentDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Fragment{}, errors.Join(ErrInvalidFragment, err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Fragment{}, errors.Join(ErrInvalidFragment, err)
	}

	frag := Fragment{
		Messages: make(map[string]Template, len(doc.Messages)),
		Fields:   make(map[string]map[string]Template, len(doc.Fields)),
		Names:    doc.Names,
	}
	for rule, msg := range doc.Messages {
		frag.Messages[rule] = Text(msg)
	}
	for field, rules := range doc.Fields {
		frag.Fields[field] = make(map[string]Template, len(rules))
		for rule, msg := range rules {
			frag.Fields[field][rule] = Text(msg)
		}
	}
	return frag, nil
}

// DecodeFragments decodes every locale of a parsed source.
func DecodeFragments(raw map[string]map[string]any) (map[string]Fragment, error) {
	result := make(map[string]Fragment, len(raw))
	for locale, doc := range raw {
		if locale == "" {
			return nil, ErrEmptyLocale
		}
		frag, err := DecodeFragment(doc)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", locale, err)
		}
		result[locale] = frag
	}
	return result, nil
}

// catalog is the merged dictionary content for a single locale.
type catalog struct {
	messages map[string]Template
	fields   map[string]map[string]Template
	names    map[string]string
}

func newCatalog() *catalog {
	return &catalog{
		messages: make(map[string]Template),
		fields:   make(map[string]map[string]Template),
		names:    make(map[string]string),
	}
}

// merge deep-merges a fragment into the catalog, last write wins per leaf.
func (c *catalog) merge(f Fragment) {
	for rule, tmpl := range f.Messages {
		c.messages[rule] = tmpl
	}
	for field, rules := range f.Fields {
		dst, ok := c.fields[field]
		if !ok {
			dst = make(map[string]Template, len(rules))
			c.fields[field] = dst
		}
		for rule, tmpl := range rules {
			dst[rule] = tmpl
		}
	}
	for field, name := range f.Names {
		c.names[field] = name
	}
}
