package validator

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dmitrymomot/fieldrules/pkg/cache"
	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

// Param declares one parameter of a rule.
type Param struct {
	Name    string
	Default any
	// Cast converts a bound argument. It is not applied to locators; a
	// locator applies it when resolved.
	Cast func(any) any
	// IsTarget marks a param whose argument always names another field.
	IsTarget bool
}

// ValidateFunc checks value against resolved params. The result must be a
// bool, a string (a failure message template) or an Outcome. A non-nil error
// aborts the validation and is returned to the caller.
type ValidateFunc func(ctx context.Context, value any, params Params) (any, error)

// Outcome is the object form of a rule result. Require-computing rules must
// return it.
type Outcome struct {
	Valid bool
	// Required reports whether the field is logically required. Nil means
	// the rule has no opinion.
	Required *bool
}

// Required builds an Outcome that also reports the required flag.
func Required(valid, required bool) Outcome {
	return Outcome{Valid: valid, Required: &required}
}

// Definition is the canonical form of a registered rule.
type Definition struct {
	Name             string
	Validate         ValidateFunc
	Params           []Param
	Lazy             bool
	ComputesRequired bool
	Message          i18n.Template
	// CastValue normalizes the validated value before Validate sees it.
	CastValue func(any) any
}

// Schema is a partial rule definition used for registration. Unset fields
// leave the existing definition untouched when a rule is registered again.
type Schema struct {
	Validate ValidateFunc
	// Params replaces the declared params when non-nil.
	Params           []Param
	Lazy             *bool
	ComputesRequired *bool
	Message          i18n.Template
	CastValue        func(any) any
}

// ParseCacheSize is the number of string rule declarations a Registry keeps
// in normalized form.
const ParseCacheSize = 256

// Registry is a catalog of rule definitions. Rules are only ever added or
// merged, never removed. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	rules  map[string]Definition
	gen    uint64
	parsed *cache.LRU[parseKey, *RuleSet]
}

// parseKey ties a cached declaration to the registry generation it was
// bound against.
type parseKey struct {
	gen   uint64
	rules string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:  make(map[string]Definition),
		parsed: cache.NewLRU[parseKey, *RuleSet](ParseCacheSize),
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package-level
// helpers and by validators created without WithRegistry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a rule to the default registry.
func Register(name string, schema any) error {
	return defaultRegistry.Register(name, schema)
}

// Lookup reads a rule from the default registry.
func Lookup(name string) (Definition, bool) {
	return defaultRegistry.Lookup(name)
}

// Register adds or extends a rule. schema may be one of:
//
//   - ValidateFunc or func(context.Context, any, Params) (any, error)
//   - func(any, Params) bool
//   - func(any) bool
//   - Schema or *Schema
//   - Definition or *Definition
//
// When name is already registered the schema is merged into the existing
// definition, last write wins per field, so a partial Schema without
// Validate is accepted. A new rule must provide Validate.
func (r *Registry) Register(name string, schema any) error {
	if name == "" {
		return errors.WithStack(&RuleRegistrationError{Rule: name, Reason: "empty rule name"})
	}

	s, err := toSchema(name, schema)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rules[name]
	if !ok {
		if s.Validate == nil {
			return errors.WithHint(
				errors.WithStack(&RuleRegistrationError{Rule: name, Reason: "schema has no validate function"}),
				"pass a function or a Schema with Validate set",
			)
		}
		existing = Definition{Name: name}
	}

	r.rules[name] = mergeDefinition(existing, s)
	r.gen++
	r.parsed.Purge()
	return nil
}

// Lookup returns the definition of name. The returned value shares nothing
// mutable with the registry.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	def, ok := r.rules[name]
	r.mu.RUnlock()

	if ok {
		def.Params = slices.Clone(def.Params)
	}
	return def, ok
}

func (r *Registry) generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gen
}

// IsLazy reports whether name is registered and lazy.
func (r *Registry) IsLazy(name string) bool {
	def, ok := r.Lookup(name)
	return ok && def.Lazy
}

// IsRequireRule reports whether name is registered and computes the
// required flag.
func (r *Registry) IsRequireRule(name string) bool {
	def, ok := r.Lookup(name)
	return ok && def.ComputesRequired
}

// Names returns the registered rule names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func toSchema(name string, schema any) (Schema, error) {
	switch s := schema.(type) {
	case ValidateFunc:
		return Schema{Validate: s}, nil
	case func(context.Context, any, Params) (any, error):
		return Schema{Validate: s}, nil
	case func(any, Params) bool:
		return Schema{Validate: func(_ context.Context, value any, params Params) (any, error) {
			return s(value, params), nil
		}}, nil
	case func(any) bool:
		return Schema{Validate: func(_ context.Context, value any, _ Params) (any, error) {
			return s(value), nil
		}}, nil
	case Schema:
		return s, nil
	case *Schema:
		if s != nil {
			return *s, nil
		}
	case Definition:
		return definitionSchema(s), nil
	case *Definition:
		if s != nil {
			return definitionSchema(*s), nil
		}
	}

	return Schema{}, errors.WithStack(&RuleRegistrationError{
		Rule:   name,
		Reason: fmt.Sprintf("unsupported schema type %T", schema),
	})
}

func definitionSchema(d Definition) Schema {
	params := d.Params
	if params == nil {
		params = []Param{}
	}
	return Schema{
		Validate:         d.Validate,
		Params:           params,
		Lazy:             &d.Lazy,
		ComputesRequired: &d.ComputesRequired,
		Message:          d.Message,
		CastValue:        d.CastValue,
	}
}

// mergeDefinition applies every set field of s on top of def.
func mergeDefinition(def Definition, s Schema) Definition {
	if s.Validate != nil {
		def.Validate = s.Validate
	}
	if s.Params != nil {
		def.Params = slices.Clone(s.Params)
	}
	if s.Lazy != nil {
		def.Lazy = *s.Lazy
	}
	if s.ComputesRequired != nil {
		def.ComputesRequired = *s.ComputesRequired
	}
	if !s.Message.IsZero() {
		def.Message = s.Message
	}
	if s.CastValue != nil {
		def.CastValue = s.CastValue
	}
	return def
}
