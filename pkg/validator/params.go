package validator

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-viper/mapstructure/v2"
)

// Params holds the arguments bound to one rule. Params of a rule with a
// declared schema are named and ordered by declaration. Params of a rule
// without a schema are the raw positional arguments.
//
// Params is immutable once built. Locators stay unresolved inside a RuleSet
// and are replaced by the cross-field values in the copy handed to a rule.
type Params struct {
	positional bool
	names      []string
	values     map[string]any
	list       []any
	// multi marks slots that collected several values into a []any.
	multi map[string]struct{}
}

func positionalParams(args []any) Params {
	return Params{positional: true, list: slices.Clone(args)}
}

// NamedParams builds named params from a map, ordered by key. It is mostly
// useful for calling a rule's ValidateFunc directly in tests.
func NamedParams(values map[string]any) Params {
	var p Params
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		p.set(k, values[k])
	}
	return p
}

// PositionalParams builds positional params from args.
func PositionalParams(args ...any) Params {
	return positionalParams(args)
}

// IsPositional reports whether the params are unbound positional arguments.
func (p Params) IsPositional() bool {
	return p.positional
}

// Len returns the number of params.
func (p Params) Len() int {
	if p.positional {
		return len(p.list)
	}
	return len(p.names)
}

// Names returns the param names in declaration order. Positional params
// have no names.
func (p Params) Names() []string {
	return slices.Clone(p.names)
}

// Lookup returns the param called name. Positional params are addressed by
// their index ("0", "1", ...).
func (p Params) Lookup(name string) (any, bool) {
	if p.positional {
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(p.list) {
			return nil, false
		}
		return p.list[i], true
	}
	v, ok := p.values[name]
	return v, ok
}

// Get returns the param called name or nil.
func (p Params) Get(name string) any {
	v, _ := p.Lookup(name)
	return v
}

// At returns the i-th param in declaration order or nil.
func (p Params) At(i int) any {
	if i < 0 || i >= p.Len() {
		return nil
	}
	if p.positional {
		return p.list[i]
	}
	return p.values[p.names[i]]
}

// Values returns the param values in declaration order.
func (p Params) Values() []any {
	if p.positional {
		return slices.Clone(p.list)
	}
	out := make([]any, 0, len(p.names))
	for _, name := range p.names {
		out = append(out, p.values[name])
	}
	return out
}

// Map returns a copy of the params keyed by name, or by index for
// positional params. Message templates are interpolated with it.
func (p Params) Map() map[string]any {
	out := make(map[string]any, p.Len())
	if p.positional {
		for i, v := range p.list {
			out[strconv.Itoa(i)] = v
		}
		return out
	}
	for name, v := range p.values {
		out[name] = v
	}
	return out
}

// Decode copies the params into out, usually a pointer to a struct with
// mapstructure tags. Input is weakly typed, so "3" decodes into an int.
func (p Params) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "validator: decode params")
	}
	if err := decoder.Decode(p.Map()); err != nil {
		return errors.Wrap(err, "validator: decode params")
	}
	return nil
}

func (p Params) String() string {
	vals := p.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = stringifyArg(v)
	}
	if p.positional {
		return strings.Join(parts, ",")
	}
	for i, name := range p.names {
		parts[i] = name + "=" + parts[i]
	}
	return strings.Join(parts, ",")
}

// set binds value to name. Binding the same name again collects the values
// into a []any in binding order.
func (p *Params) set(name string, value any) {
	if p.values == nil {
		p.values = make(map[string]any)
	}
	prev, exists := p.values[name]
	if !exists {
		p.names = append(p.names, name)
		p.values[name] = value
		return
	}

	if _, ok := p.multi[name]; ok {
		p.values[name] = append(prev.([]any), value)
		return
	}
	if p.multi == nil {
		p.multi = make(map[string]struct{})
	}
	p.multi[name] = struct{}{}
	p.values[name] = []any{prev, value}
}

// merge folds other into p, used when a rule is declared twice.
func (p Params) merge(other Params) Params {
	if p.positional && other.positional {
		return positionalParams(append(slices.Clone(p.list), other.list...))
	}

	out := p.clone()
	if out.positional {
		out = NamedParams(out.Map())
	}
	if other.positional {
		for i, v := range other.list {
			out.set(strconv.Itoa(i), v)
		}
		return out
	}
	for _, name := range other.names {
		out.set(name, other.values[name])
	}
	return out
}

func (p Params) clone() Params {
	out := Params{
		positional: p.positional,
		names:      slices.Clone(p.names),
		list:       slices.Clone(p.list),
	}
	if p.values != nil {
		out.values = make(map[string]any, len(p.values))
		for k, v := range p.values {
			if _, ok := p.multi[k]; ok {
				v = slices.Clone(v.([]any))
			}
			out.values[k] = v
		}
	}
	if p.multi != nil {
		out.multi = make(map[string]struct{}, len(p.multi))
		for k := range p.multi {
			out.multi[k] = struct{}{}
		}
	}
	return out
}

// resolve returns a copy with every locator replaced by its value in table.
// Positional "@key" strings are replaced when key exists in table.
func (p Params) resolve(table map[string]any) Params {
	out := p.clone()
	if out.positional {
		for i, v := range out.list {
			out.list[i] = resolveArg(v, table, true)
		}
		return out
	}
	for name, v := range out.values {
		if _, ok := out.multi[name]; ok {
			items := v.([]any)
			for i, item := range items {
				items[i] = resolveArg(item, table, false)
			}
			continue
		}
		out.values[name] = resolveArg(v, table, false)
	}
	return out
}

func resolveArg(v any, table map[string]any, positional bool) any {
	if l, ok := asLocator(v); ok {
		return Resolve(l, table)
	}
	if s, ok := v.(string); ok && positional && strings.HasPrefix(s, "@") {
		if val, ok := table[s[1:]]; ok {
			return val
		}
	}
	return v
}

func stringifyArg(v any) string {
	if l, ok := asLocator(v); ok {
		return l.String()
	}
	return fmt.Sprint(v)
}

// locators returns the named params bound directly to a locator.
func (p Params) locators() map[string]Locator {
	if p.positional {
		return nil
	}
	out := make(map[string]Locator)
	for name, v := range p.values {
		if l, ok := asLocator(v); ok {
			out[name] = l
		}
	}
	return out
}
