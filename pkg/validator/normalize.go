package validator

import (
	"reflect"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// Rule is one entry of the ordered object form of a rule declaration.
//
// Args follows the object-form conventions: true or nil means no args,
// false drops the rule, a slice is positional args, a map[string]any is
// named args and any other value is a single positional arg.
type Rule struct {
	Name string
	Args any
}

// Set is an ordered rule declaration. Use it instead of a map when the
// evaluation order matters.
type Set []Rule

// RuleSet is a normalized rule declaration: rule names in declaration order
// with their bound params. Normalizing a *RuleSet returns it unchanged.
type RuleSet struct {
	names  []string
	params map[string]Params
}

func newRuleSet() *RuleSet {
	return &RuleSet{params: make(map[string]Params)}
}

// Names returns the rule names in declaration order.
func (rs *RuleSet) Names() []string {
	return slices.Clone(rs.names)
}

// Params returns the bound params of rule.
func (rs *RuleSet) Params(rule string) (Params, bool) {
	p, ok := rs.params[rule]
	return p, ok
}

// Has reports whether rule is part of the set.
func (rs *RuleSet) Has(rule string) bool {
	_, ok := rs.params[rule]
	return ok
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.names)
}

// String renders the set back into the string form, e.g. "required|min:length=3".
func (rs *RuleSet) String() string {
	parts := make([]string, 0, len(rs.names))
	for _, name := range rs.names {
		p := rs.params[name]
		if p.Len() == 0 {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+":"+p.String())
	}
	return strings.Join(parts, "|")
}

func (rs *RuleSet) add(name string, p Params) {
	if prev, ok := rs.params[name]; ok {
		rs.params[name] = prev.merge(p)
		return
	}
	rs.names = append(rs.names, name)
	rs.params[name] = p
}

// remove drops name and its params. An opt-out wins over earlier declarations.
func (rs *RuleSet) remove(name string) {
	if _, ok := rs.params[name]; !ok {
		return
	}
	delete(rs.params, name)
	rs.names = slices.DeleteFunc(rs.names, func(n string) bool { return n == name })
}

// ParseRule splits one rule of the string form into its name and
// comma-separated args. Everything after the first ":" is args, so args may
// contain ":" themselves.
func ParseRule(rule string) (name string, args []string) {
	name, rest, found := strings.Cut(rule, ":")
	name = strings.TrimSpace(name)
	if found {
		args = strings.Split(rest, ",")
	}
	return name, args
}

// Normalize turns a rule declaration into a RuleSet bound against the
// registry's param schemas. Accepted inputs:
//
//   - string: "required|min:3|confirmed:@password"
//   - Set or []Rule: ordered object form
//   - map[string]any: object form, evaluated in sorted key order
//   - *RuleSet: returned as is
//   - nil: an empty set
//
// Unknown rule names are kept with their args unbound; they only fail when
// validated.
func (r *Registry) Normalize(rules any) (*RuleSet, error) {
	switch v := rules.(type) {
	case nil:
		return newRuleSet(), nil
	case *RuleSet:
		if v == nil {
			return newRuleSet(), nil
		}
		return v, nil
	case string:
		return r.normalizeString(v)
	case Set:
		return r.normalizeSet(v)
	case []Rule:
		return r.normalizeSet(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		set := make(Set, 0, len(keys))
		for _, k := range keys {
			set = append(set, Rule{Name: k, Args: v[k]})
		}
		return r.normalizeSet(set)
	case map[string]bool:
		m := make(map[string]any, len(v))
		for k, b := range v {
			m[k] = b
		}
		return r.Normalize(m)
	}

	return nil, errors.Wrapf(ErrInvalidRules, "got %T", rules)
}

func (r *Registry) normalizeString(rules string) (*RuleSet, error) {
	key := parseKey{gen: r.generation(), rules: rules}
	if rs, ok := r.parsed.Get(key); ok {
		return rs, nil
	}

	rs := newRuleSet()
	for _, raw := range strings.Split(rules, "|") {
		name, args := ParseRule(raw)
		if name == "" {
			continue
		}
		positional := make([]any, len(args))
		for i, a := range args {
			positional[i] = a
		}
		p, err := r.bind(name, positional)
		if err != nil {
			return nil, err
		}
		rs.add(name, p)
	}
	r.parsed.Add(key, rs)
	return rs, nil
}

func (r *Registry) normalizeSet(set []Rule) (*RuleSet, error) {
	rs := newRuleSet()
	for _, rule := range set {
		if rule.Name == "" {
			continue
		}
		args, keep := ruleArgs(rule.Args)
		if !keep {
			rs.remove(rule.Name)
			continue
		}
		p, err := r.bind(rule.Name, args)
		if err != nil {
			return nil, err
		}
		rs.add(rule.Name, p)
	}
	return rs, nil
}

// ruleArgs converts an object-form value into []any (positional) or
// map[string]any (named). keep is false for an explicit opt-out.
func ruleArgs(v any) (args any, keep bool) {
	switch a := v.(type) {
	case nil:
		return []any{}, true
	case bool:
		if !a {
			return nil, false
		}
		return []any{}, true
	case []any:
		return a, true
	case map[string]any:
		return a, true
	case Params:
		if a.IsPositional() {
			return a.Values(), true
		}
		return a.Map(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			break
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	return []any{v}, true
}

// bind maps raw args onto the rule's declared params.
func (r *Registry) bind(name string, args any) (Params, error) {
	positional, isList := args.([]any)
	named, _ := args.(map[string]any)

	def, ok := r.Lookup(name)
	if !ok {
		if isList {
			return positionalParams(positional), nil
		}
		return NamedParams(named), nil
	}

	if len(def.Params) == 0 {
		if !isList {
			return Params{}, errors.WithStack(&UnschemedNamedParamsError{Rule: name})
		}
		return positionalParams(positional), nil
	}

	// Extra positional args reuse the last declared param.
	declared := def.Params
	if isList && len(positional) > len(declared) {
		declared = make([]Param, len(positional))
		for i := range positional {
			declared[i] = def.Params[min(i, len(def.Params)-1)]
		}
	}

	var p Params
	for i, param := range declared {
		value := param.Default
		switch {
		case isList:
			if i < len(positional) {
				value = positional[i]
			}
		default:
			if v, ok := named[param.Name]; ok {
				value = v
			} else if len(declared) == 1 && len(named) > 0 {
				value = named
			}
		}
		p.set(param.Name, bindValue(param, value))
	}
	return p, nil
}

func bindValue(param Param, value any) any {
	if l, ok := asLocator(value); ok {
		return l
	}
	if s, ok := value.(string); ok && (param.IsTarget || strings.HasPrefix(s, "@")) {
		return NewLocator(s, param.Cast)
	}
	if param.Cast != nil && value != nil {
		return param.Cast(value)
	}
	return value
}
