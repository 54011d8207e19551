package validator

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/dmitrymomot/fieldrules/pkg/async"
	"github.com/dmitrymomot/fieldrules/pkg/i18n"
	"github.com/dmitrymomot/fieldrules/pkg/logger"
)

// Validator runs rule sets against values. It holds no per-call state, so
// one Validator serves any number of concurrent Validate calls.
type Validator struct {
	registry *Registry
	messages MessageResolver
	observer Observer
	logger   *slog.Logger

	mu     sync.RWMutex
	config Config
}

// New creates a Validator. Without options it uses DefaultRegistry(),
// DefaultConfig() and no dictionary.
func New(opts ...Option) *Validator {
	v := &Validator{
		registry: defaultRegistry,
		observer: nopObserver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		config:   DefaultConfig(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.logger = v.logger.With(logger.Component("validator"))
	return v
}

var (
	defaultValidator     *Validator
	defaultValidatorOnce sync.Once
)

// Default returns the process-wide Validator bound to DefaultRegistry().
func Default() *Validator {
	defaultValidatorOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// Validate validates value with the process-wide Validator.
func Validate(ctx context.Context, value, rules any, opts ...ValidateOption) (*Result, error) {
	return Default().Validate(ctx, value, rules, opts...)
}

// Configure merges s into the process-wide Validator's configuration.
func Configure(s Settings) {
	Default().Configure(s)
}

// Registry returns the registry rules are looked up in.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// Config returns the current configuration.
func (v *Validator) Config() Config {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config
}

// Configure merges s into the configuration. Calls in flight keep the
// configuration they started with.
func (v *Validator) Configure(s Settings) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.config = v.config.apply(s)
}

// field is the per-call validation state.
type field struct {
	name        string
	rules       *RuleSet
	bails       bool
	skipIfEmpty bool
	initial     bool
	values      map[string]any
	names       map[string]string
	custom      map[string]i18n.Template
}

// fieldError is a failed rule with a deferred message.
type fieldError struct {
	rule string
	msg  func() string
}

// ruleResult is the interpreted return of one rule invocation.
type ruleResult struct {
	valid    bool
	required *bool
	outcome  bool
	raw      any
	err      *fieldError
}

// Validate runs rules against value. rules may be anything Normalize
// accepts. Rules run one at a time in declaration order:
//
//  1. require-computing rules, which decide whether the field is required
//  2. when the value is empty and not required it may skip the rest
//  3. the remaining rules, lazy ones excluded on an Initial pass
//
// Failed rules are reported in the Result. A returned error is a contract
// error, an error returned by a rule, or ctx's error.
func (v *Validator) Validate(ctx context.Context, value, rules any, opts ...ValidateOption) (*Result, error) {
	start := time.Now()
	cfg := v.Config()

	o := validateOptions{name: DefaultFieldName}
	for _, opt := range opts {
		opt(&o)
	}

	set, err := v.registry.Normalize(rules)
	if err != nil {
		return nil, err
	}

	f := &field{
		name:        o.name,
		rules:       set,
		bails:       cfg.Bails,
		skipIfEmpty: cfg.SkipOptional,
		initial:     o.initial,
		values:      o.values,
		names:       o.names,
		custom:      o.customMessages,
	}
	if o.bails != nil {
		f.bails = *o.bails
	}
	if o.skipIfEmpty != nil {
		f.skipIfEmpty = *o.skipIfEmpty
	}
	if f.values == nil {
		f.values = map[string]any{}
	}

	errs, required, skipped, err := v.run(ctx, f, value)
	if err != nil {
		v.logger.DebugContext(ctx, "validation aborted",
			logger.Field(f.name),
			logger.Rules(set.Names()),
			logger.Error(err),
		)
		return nil, err
	}

	res := &Result{
		Valid:         len(errs) == 0,
		Required:      required,
		Errors:        make([]string, 0, len(errs)),
		FailedRules:   make(map[string]string, len(errs)),
		RegenerateMap: make(map[string]func() string, len(errs)),
		field:         f.name,
	}
	for _, e := range errs {
		msg := e.msg()
		res.Errors = append(res.Errors, msg)
		if _, seen := res.FailedRules[e.rule]; !seen {
			res.order = append(res.order, e.rule)
		}
		res.FailedRules[e.rule] = msg
		res.RegenerateMap[e.rule] = e.msg
	}

	elapsed := time.Since(start)
	v.observer.FieldValidated(ctx, f.name, res.Valid, skipped, elapsed)
	v.logger.DebugContext(ctx, "field validated",
		logger.Field(f.name),
		logger.Valid(res.Valid),
		logger.Count(len(res.Errors)),
		logger.Duration(elapsed),
	)
	return res, nil
}

// ValidateAsync runs Validate in its own goroutine.
func (v *Validator) ValidateAsync(ctx context.Context, value, rules any, opts ...ValidateOption) *async.Future[*Result] {
	return async.Async(ctx, value, func(ctx context.Context, value any) (*Result, error) {
		return v.Validate(ctx, value, rules, opts...)
	})
}

func (v *Validator) run(ctx context.Context, f *field, value any) ([]*fieldError, *bool, bool, error) {
	var (
		errs     []*fieldError
		required *bool
	)

	for _, name := range f.rules.names {
		if !v.registry.IsRequireRule(name) {
			continue
		}
		res, err := v.test(ctx, f, value, name)
		if err != nil {
			return nil, nil, false, err
		}
		if !res.outcome {
			return nil, nil, false, errors.WithStack(&RequireRuleContractError{Rule: name, Result: res.raw})
		}
		if res.required != nil {
			required = res.required
		}
		if !res.valid && res.err != nil {
			errs = append(errs, res.err)
			if f.bails {
				return errs, res.required, true, nil
			}
		}
	}

	if shouldSkip(f, value, required) {
		return errs, required, true, nil
	}

	for _, name := range f.rules.names {
		if v.registry.IsRequireRule(name) {
			continue
		}
		if f.initial && v.registry.IsLazy(name) {
			continue
		}
		res, err := v.test(ctx, f, value, name)
		if err != nil {
			return nil, nil, false, err
		}
		if res.required != nil {
			required = res.required
		}
		if !res.valid && res.err != nil {
			errs = append(errs, res.err)
			if f.bails {
				break
			}
		}
	}

	return errs, required, false, nil
}

// shouldSkip decides whether an empty value bypasses the non-require rules.
// An empty value that is not required is still validated when skipIfEmpty
// is off, and when bails is off only empty-and-optional values skip.
func shouldSkip(f *field, value any, required *bool) bool {
	isEmpty := isEmptyValue(value)
	isRequired := required != nil && *required

	if isEmpty && !isRequired && !f.skipIfEmpty {
		return false
	}
	if !f.bails && !(isEmpty && f.skipIfEmpty) {
		return false
	}
	return !isRequired && isEmpty
}

// test invokes one rule with its params resolved against the cross-field table.
func (v *Validator) test(ctx context.Context, f *field, value any, name string) (ruleResult, error) {
	if err := ctx.Err(); err != nil {
		return ruleResult{}, err
	}

	def, ok := v.registry.Lookup(name)
	if !ok || def.Validate == nil {
		return ruleResult{}, errors.WithStack(&UnknownRuleError{Rule: name})
	}

	input := value
	if def.CastValue != nil {
		input = def.CastValue(value)
	}

	bound, _ := f.rules.Params(name)
	params := bound.resolve(f.values)

	start := time.Now()
	raw, err := def.Validate(ctx, input, params)
	if err != nil {
		v.observer.RuleEvaluated(ctx, name, false, time.Since(start))
		return ruleResult{}, errors.Wrapf(err, "validator: rule %q", name)
	}

	res := ruleResult{raw: raw}
	switch r := raw.(type) {
	case bool:
		res.valid = r
	case string:
		values := params.Map()
		values["_field_"] = f.name
		values["_value_"] = value
		values["_rule_"] = name
		res.err = &fieldError{rule: name, msg: func() string { return i18n.Interpolate(r, values) }}
	case Outcome:
		res.valid, res.required, res.outcome = r.Valid, r.Required, true
	case *Outcome:
		if r == nil {
			return ruleResult{}, errors.WithStack(&RuleContractError{Rule: name, Result: raw})
		}
		res.valid, res.required, res.outcome = r.Valid, r.Required, true
	default:
		return ruleResult{}, errors.WithStack(&RuleContractError{Rule: name, Result: raw})
	}

	v.observer.RuleEvaluated(ctx, name, res.valid, time.Since(start))

	if !res.valid && res.err == nil {
		res.err = v.fieldError(f, value, def, name, bound, params)
	}
	return res, nil
}

// fieldError builds the deferred message of a failed rule. The placeholder
// values are captured now so regeneration never sees a newer cross-field
// table.
func (v *Validator) fieldError(f *field, value any, def Definition, name string, bound, params Params) *fieldError {
	values := params.Map()
	values["_field_"] = f.name
	values["_value_"] = value
	values["_rule_"] = name

	for param, l := range bound.locators() {
		display := l.Target
		if n, ok := f.names[l.Target]; ok && n != "" {
			display = n
		}
		values[param] = display
		values["_"+param+"_"] = f.values[l.Target]
	}

	tmpl, ok := f.custom[name]
	if !ok || tmpl.IsZero() {
		tmpl = def.Message
	}
	fieldName := f.name

	return &fieldError{rule: name, msg: func() string {
		if !tmpl.IsZero() {
			return tmpl.Render(fieldName, values)
		}
		if v.messages != nil {
			if msg, ok := v.messages.Message(fieldName, name, values); ok {
				return msg
			}
		}
		if fallback := v.Config().DefaultMessage; !fallback.IsZero() {
			return fallback.Render(fieldName, values)
		}
		return i18n.Text(i18n.FallbackMessage).Render(fieldName, values)
	}}
}

// isEmptyValue reports nil, "" and empty slices or arrays.
func isEmptyValue(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
