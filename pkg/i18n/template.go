package i18n

import (
	"fmt"
	"regexp"
)

// MessageFunc builds a message for a field display name and its placeholder values.
type MessageFunc func(field string, values map[string]any) string

// Template is a message template. It is either static text with {placeholder}
// interpolation (see Text) or a function computing the message (see Func).
// The zero value is an empty template; use IsZero to detect it.
type Template struct {
	text string
	fn   MessageFunc
}

// Text returns a static template interpolated with Interpolate at render time.
func Text(s string) Template {
	return Template{text: s}
}

// Func returns a dynamic template. A nil fn yields the zero Template.
func Func(fn MessageFunc) Template {
	return Template{fn: fn}
}

// IsZero reports whether the template carries neither text nor a function.
func (t Template) IsZero() bool {
	return t.fn == nil && t.text == ""
}

// IsDynamic reports whether the template is function-backed.
func (t Template) IsDynamic() bool {
	return t.fn != nil
}

// String returns the static text of the template. Dynamic templates return "".
func (t Template) String() string {
	return t.text
}

// Render produces the message. Static templates get the field display name
// injected under the "_field_" placeholder before interpolation; dynamic
// templates receive field and values untouched.
func (t Template) Render(field string, values map[string]any) string {
	if t.fn != nil {
		return t.fn(field, values)
	}

	merged := make(map[string]any, len(values)+1)
	for k, v := range values {
		merged[k] = v
	}
	merged["_field_"] = field

	return Interpolate(t.text, merged)
}

// UnmarshalText lets a Template be populated from env variables, YAML or flags.
func (t *Template) UnmarshalText(text []byte) error {
	*t = Text(string(text))
	return nil
}

// MarshalText returns the static text. Dynamic templates cannot be serialized.
func (t Template) MarshalText() ([]byte, error) {
	if t.fn != nil {
		return nil, ErrDynamicTemplate
	}
	return []byte(t.text), nil
}

// placeholderRegex matches {name} placeholders.
var placeholderRegex = regexp.MustCompile(`\{([^}]+)\}`)

// Interpolate replaces every {name} placeholder in tmpl with the matching
// entry from values. Placeholders without a value are kept verbatim.
//
// Example:
//
//	i18n.Interpolate("{_field_} must be at least {length}", map[string]any{"_field_": "Name", "length": 3})
//	// Returns: "Name must be at least 3"
func Interpolate(tmpl string, values map[string]any) string {
	if len(values) == 0 {
		return tmpl
	}
	return placeholderRegex.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[1 : len(match)-1]
		if val, ok := values[name]; ok {
			return stringify(val)
		}
		return match
	})
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
