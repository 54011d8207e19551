package validator_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrymomot/fieldrules/pkg/async"
	"github.com/dmitrymomot/fieldrules/pkg/i18n"
	"github.com/dmitrymomot/fieldrules/pkg/validator"
	"github.com/dmitrymomot/fieldrules/pkg/validator/builtin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spy counts invocations of a rule.
type spy struct {
	calls atomic.Int32
	valid bool
}

func (s *spy) validate(context.Context, any, validator.Params) (any, error) {
	s.calls.Add(1)
	return s.valid, nil
}

func builtinRegistry(t *testing.T) *validator.Registry {
	t.Helper()
	reg := validator.NewRegistry()
	require.NoError(t, builtin.Install(reg))
	return reg
}

func spyRegistry(t *testing.T, spies map[string]*spy) *validator.Registry {
	t.Helper()
	reg := validator.NewRegistry()
	for name, s := range spies {
		require.NoError(t, reg.Register(name, validator.Schema{
			Validate: s.validate,
			Message:  i18n.Text("{_rule_} failed"),
		}))
	}
	return reg
}

func TestValidate_Examples(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := validator.New(validator.WithRegistry(builtinRegistry(t)))

	t.Run("empty required value", func(t *testing.T) {
		res, err := v.Validate(ctx, "", map[string]any{"required": true})
		require.NoError(t, err)

		assert.False(t, res.Valid)
		assert.Equal(t, []string{"{field} is not valid."}, res.Errors)
		assert.Contains(t, res.FailedRules, "required")
		assert.True(t, res.IsRequired())
	})

	t.Run("alpha numeric", func(t *testing.T) {
		res, err := v.Validate(ctx, "abc123", map[string]any{"alpha_num": true})
		require.NoError(t, err)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
		assert.Nil(t, res.Required)
	})

	t.Run("between out of range", func(t *testing.T) {
		res, err := v.Validate(ctx, 15, map[string]any{"between": map[string]any{"min": 1, "max": 10}})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Contains(t, res.FailedRules, "between")
	})

	t.Run("confirmed against cross-field value", func(t *testing.T) {
		res, err := v.Validate(ctx, "secret", map[string]any{"confirmed": "@password"},
			validator.WithValues(map[string]any{"password": "secret"}),
		)
		require.NoError(t, err)
		assert.True(t, res.Valid)
	})

	t.Run("custom predicate", func(t *testing.T) {
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("is_even", func(v any) bool {
			n, _ := v.(int)
			return n%2 == 0
		}))

		res, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, 3, map[string]any{"is_even": true})
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"is_even"}, res.Rules())
	})
}

func TestValidate_Bails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rules := validator.Set{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	t.Run("stops at first failure", func(t *testing.T) {
		a, b, c := &spy{}, &spy{valid: true}, &spy{}
		v := validator.New(validator.WithRegistry(spyRegistry(t, map[string]*spy{"a": a, "b": b, "c": c})))

		res, err := v.Validate(ctx, "x", rules)
		require.NoError(t, err)

		assert.Equal(t, []string{"a failed"}, res.Errors)
		assert.Equal(t, int32(1), a.calls.Load())
		assert.Equal(t, int32(0), b.calls.Load())
		assert.Equal(t, int32(0), c.calls.Load())
	})

	t.Run("reports every failure without bails", func(t *testing.T) {
		a, b, c := &spy{}, &spy{valid: true}, &spy{}
		v := validator.New(validator.WithRegistry(spyRegistry(t, map[string]*spy{"a": a, "b": b, "c": c})))

		res, err := v.Validate(ctx, "x", rules, validator.WithBails(false))
		require.NoError(t, err)

		assert.False(t, res.Valid)
		assert.Equal(t, []string{"a failed", "c failed"}, res.Errors)
		assert.Equal(t, []string{"a", "c"}, res.Rules())
		assert.Equal(t, int32(1), b.calls.Load())
	})

	t.Run("failing require rule bails before other rules", func(t *testing.T) {
		other := &spy{valid: true}
		reg := builtinRegistry(t)
		require.NoError(t, reg.Register("other", other.validate))

		res, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, nil, "other|required")
		require.NoError(t, err)

		assert.Equal(t, []string{"required"}, res.Rules())
		assert.True(t, res.IsRequired())
		assert.Equal(t, int32(0), other.calls.Load())
	})
}

func TestValidate_SkipEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	newValidator := func(t *testing.T) (*validator.Validator, *spy) {
		reg := builtinRegistry(t)
		minSpy := &spy{}
		require.NoError(t, reg.Register("min", validator.Schema{Validate: minSpy.validate}))
		return validator.New(validator.WithRegistry(reg)), minSpy
	}

	t.Run("optional empty value skips rules", func(t *testing.T) {
		v, minSpy := newValidator(t)

		res, err := v.Validate(ctx, "", map[string]any{"required": false, "min": 3})
		require.NoError(t, err)

		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
		assert.Equal(t, int32(0), minSpy.calls.Load())
	})

	t.Run("skipping disabled runs rules on empty value", func(t *testing.T) {
		v, minSpy := newValidator(t)

		res, err := v.Validate(ctx, "", "min:3", validator.WithSkipIfEmpty(false))
		require.NoError(t, err)

		assert.False(t, res.Valid)
		assert.Equal(t, int32(1), minSpy.calls.Load())
	})

	t.Run("without bails an empty optional value still skips", func(t *testing.T) {
		v, minSpy := newValidator(t)

		res, err := v.Validate(ctx, []string{}, "min:3", validator.WithBails(false))
		require.NoError(t, err)

		assert.True(t, res.Valid)
		assert.Equal(t, int32(0), minSpy.calls.Load())
	})

	t.Run("required value is never skipped", func(t *testing.T) {
		reg := validator.NewRegistry()
		after := &spy{valid: true}
		require.NoError(t, reg.Register("always", validator.Schema{
			Validate: func(context.Context, any, validator.Params) (any, error) {
				return validator.Required(true, true), nil
			},
			ComputesRequired: ptr(true),
		}))
		require.NoError(t, reg.Register("after", after.validate))

		res, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, "", "always|after")
		require.NoError(t, err)

		assert.True(t, res.Valid)
		assert.Equal(t, int32(1), after.calls.Load())
	})
}

func TestValidate_CrossFieldLocators(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := builtinRegistry(t)
	v := validator.New(validator.WithRegistry(reg))

	rules, err := reg.Normalize("confirmed:@password")
	require.NoError(t, err)

	t.Run("resolved at call time", func(t *testing.T) {
		res, err := v.Validate(ctx, "secret", rules, validator.WithValues(map[string]any{"password": "secret"}))
		require.NoError(t, err)
		assert.True(t, res.Valid)

		res, err = v.Validate(ctx, "secret", rules, validator.WithValues(map[string]any{"password": "other"}))
		require.NoError(t, err)
		assert.False(t, res.Valid)
	})

	t.Run("rule set keeps the locator", func(t *testing.T) {
		p, ok := rules.Params("confirmed")
		require.True(t, ok)
		assert.Equal(t, validator.Locator{Target: "password"}, p.Get("target"))
	})

	t.Run("messages name the target field", func(t *testing.T) {
		require.NoError(t, reg.Register("match", validator.Definition{
			Params:  []validator.Param{{Name: "target", IsTarget: true}},
			Message: i18n.Text("{_field_} must match {target} ({_target_})"),
			Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
				return value == params.Get("target"), nil
			},
		}))

		res, err := v.Validate(ctx, "a", "match:password",
			validator.WithName("Confirmation"),
			validator.WithValues(map[string]any{"password": "b"}),
			validator.WithNames(map[string]string{"password": "Password"}),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"Confirmation must match Password (b)"}, res.Errors)
	})

	t.Run("positional @ args of schema-less rules", func(t *testing.T) {
		res, err := v.Validate(ctx, "b", "oneOf:@first,c",
			validator.WithValues(map[string]any{"first": "b"}),
		)
		require.NoError(t, err)
		assert.True(t, res.Valid)
	})
}

func TestValidate_Messages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("dictionary message", func(t *testing.T) {
		dict := i18n.NewDictionary("en")
		require.NoError(t, builtin.LoadMessages(ctx, dict))
		v := validator.New(validator.WithRegistry(builtinRegistry(t)), validator.WithMessages(dict))

		res, err := v.Validate(ctx, 15, "between:1,10", validator.WithName("score"))
		require.NoError(t, err)
		assert.Equal(t, []string{"The score field must be between 1 and 10"}, res.Errors)
	})

	t.Run("custom message wins", func(t *testing.T) {
		dict := i18n.NewDictionary("en")
		require.NoError(t, builtin.LoadMessages(ctx, dict))
		v := validator.New(validator.WithRegistry(builtinRegistry(t)), validator.WithMessages(dict))

		res, err := v.Validate(ctx, 15, "between:1,10",
			validator.WithName("score"),
			validator.WithCustomMessage("between", i18n.Text("{_field_} out of range {min}-{max}")),
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"score out of range 1-10"}, res.Errors)
	})

	t.Run("rule returning a message", func(t *testing.T) {
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("odd", func(context.Context, any, validator.Params) (any, error) {
			return "{_field_} has {_value_} for {_rule_}", nil
		}))

		res, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, 3, "odd", validator.WithName("age"))
		require.NoError(t, err)
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"age has 3 for odd"}, res.Errors)
	})

	t.Run("configured default message", func(t *testing.T) {
		reg := spyRegistry(t, map[string]*spy{})
		require.NoError(t, reg.Register("bad", func(any) bool { return false }))
		v := validator.New(validator.WithRegistry(reg))
		v.Configure(validator.Settings{DefaultMessage: ptr(i18n.Text("{_field_}: {_rule_} rejected {_value_}"))})

		res, err := v.Validate(ctx, 7, "bad", validator.WithName("qty"))
		require.NoError(t, err)
		assert.Equal(t, []string{"qty: bad rejected 7"}, res.Errors)
	})

	t.Run("fallback message", func(t *testing.T) {
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("bad", func(any) bool { return false }))
		v := validator.New(validator.WithRegistry(reg), validator.WithConfig(validator.Config{Bails: true}))

		res, err := v.Validate(ctx, 7, "bad", validator.WithName("qty"))
		require.NoError(t, err)
		assert.Equal(t, []string{"qty is not valid"}, res.Errors)
	})
}

func TestValidate_Regenerate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	dict := i18n.NewDictionary("en")
	require.NoError(t, builtin.LoadMessages(ctx, dict))
	dict.Merge(map[string]i18n.Fragment{
		"en": {Messages: map[string]i18n.Template{"even": i18n.Text("{_field_} must be even")}},
		"fr": {Messages: map[string]i18n.Template{"even": i18n.Text("{_field_} doit être pair")}},
	})

	even := &spy{}
	reg := validator.NewRegistry()
	require.NoError(t, reg.Register("even", even.validate))
	v := validator.New(validator.WithRegistry(reg), validator.WithMessages(dict))

	sub := dict.Subscribe(ctx)

	res, err := v.Validate(ctx, 3, "even", validator.WithName("count"))
	require.NoError(t, err)
	assert.Equal(t, []string{"count must be even"}, res.Errors)
	assert.Equal(t, int32(1), even.calls.Load())

	dict.Localize("fr")

	select {
	case change := <-sub.Changes():
		assert.Equal(t, "fr", change.Locale)
		assert.Equal(t, "en", change.Previous)
	case <-time.After(time.Second):
		t.Fatal("no locale change delivered")
	}

	assert.Equal(t, "count doit être pair", res.RegenerateMap["even"]())

	regenerated := res.Regenerate()
	assert.Equal(t, []string{"count doit être pair"}, regenerated.Errors)
	assert.Equal(t, "count doit être pair", regenerated.FailedRules["even"])
	assert.Equal(t, []string{"count must be even"}, res.Errors, "the original result is not mutated")
	assert.Equal(t, int32(1), even.calls.Load(), "regenerating never re-runs rules")
}

func TestValidate_ContractErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown rule", func(t *testing.T) {
		v := validator.New(validator.WithRegistry(validator.NewRegistry()))
		_, err := v.Validate(ctx, "x", "nope")

		require.ErrorIs(t, err, validator.ErrUnknownRule)
		var unknown *validator.UnknownRuleError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "nope", unknown.Rule)
	})

	t.Run("require rule without outcome", func(t *testing.T) {
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("req", validator.Schema{
			Validate:         func(context.Context, any, validator.Params) (any, error) { return true, nil },
			ComputesRequired: ptr(true),
		}))

		_, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, "x", "req")
		require.ErrorIs(t, err, validator.ErrRequireRuleContract)
		var contract *validator.RequireRuleContractError
		require.True(t, errors.As(err, &contract))
		assert.Equal(t, "req", contract.Rule)
	})

	t.Run("unsupported rule result", func(t *testing.T) {
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("weird", func(context.Context, any, validator.Params) (any, error) { return 42, nil }))

		_, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, "x", "weird")
		assert.ErrorIs(t, err, validator.ErrRuleContract)
	})

	t.Run("rule error is returned", func(t *testing.T) {
		boom := errors.New("boom")
		reg := validator.NewRegistry()
		require.NoError(t, reg.Register("boom", func(context.Context, any, validator.Params) (any, error) { return nil, boom }))

		_, err := validator.New(validator.WithRegistry(reg)).Validate(ctx, "x", "boom")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid rules input", func(t *testing.T) {
		_, err := validator.New(validator.WithRegistry(validator.NewRegistry())).Validate(ctx, "x", 12)
		assert.ErrorIs(t, err, validator.ErrInvalidRules)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := validator.New(validator.WithRegistry(builtinRegistry(t))).Validate(cancelled, "x", "required")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestValidate_RequiredFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := validator.NewRegistry()
	for name, required := range map[string]bool{"yes": true, "no": false} {
		require.NoError(t, reg.Register(name, validator.Schema{
			Validate: func(context.Context, any, validator.Params) (any, error) {
				return validator.Required(true, required), nil
			},
			ComputesRequired: ptr(true),
		}))
	}
	require.NoError(t, reg.Register("marks", func(context.Context, any, validator.Params) (any, error) {
		return validator.Outcome{Valid: true, Required: ptr(true)}, nil
	}))
	require.NoError(t, reg.Register("plain", func(any) bool { return true }))
	v := validator.New(validator.WithRegistry(reg))

	tests := []struct {
		rules validator.Set
		want  *bool
	}{
		{validator.Set{{Name: "yes"}, {Name: "no"}}, ptr(false)},
		{validator.Set{{Name: "no"}, {Name: "yes"}}, ptr(true)},
		{validator.Set{{Name: "plain"}}, nil},
		{validator.Set{{Name: "no"}, {Name: "marks"}}, ptr(true)},
	}
	for _, tt := range tests {
		res, err := v.Validate(ctx, "x", tt.rules)
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Required)
	}
}

func TestValidate_Lazy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	slow := &spy{}
	reg := validator.NewRegistry()
	require.NoError(t, reg.Register("slow", validator.Schema{Validate: slow.validate, Lazy: ptr(true)}))
	v := validator.New(validator.WithRegistry(reg))

	res, err := v.Validate(ctx, "x", "slow", validator.Initial())
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, int32(0), slow.calls.Load())

	res, err = v.Validate(ctx, "x", "slow")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, int32(1), slow.calls.Load())
}

func TestValidate_Configure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, c := &spy{}, &spy{}
	v := validator.New(validator.WithRegistry(spyRegistry(t, map[string]*spy{"a": a, "c": c})))

	assert.True(t, v.Config().Bails)
	v.Configure(validator.Settings{Bails: ptr(false)})
	assert.False(t, v.Config().Bails)
	assert.True(t, v.Config().SkipOptional, "unset settings are left unchanged")

	res, err := v.Validate(ctx, "x", "a|c")
	require.NoError(t, err)
	assert.Len(t, res.Errors, 2)

	res, err = v.Validate(ctx, "x", "a|c", validator.WithBails(true))
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1)
}

func TestValidateAsync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	v := validator.New(validator.WithRegistry(builtinRegistry(t)))

	values := []any{"ok", "", "fine"}
	futures := make([]*async.Future[*validator.Result], 0, len(values))
	for _, value := range values {
		futures = append(futures, v.ValidateAsync(ctx, value, "required"))
	}

	results, err := async.WaitAll(futures...)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Valid)
	assert.False(t, results[1].Valid)
	assert.True(t, results[2].Valid)
}

type recordingObserver struct {
	mu     sync.Mutex
	rules  []string
	fields []string
}

func (o *recordingObserver) RuleEvaluated(_ context.Context, rule string, _ bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rules = append(o.rules, rule)
}

func (o *recordingObserver) FieldValidated(_ context.Context, field string, _, _ bool, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fields = append(o.fields, field)
}

func TestValidate_Observer(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	v := validator.New(validator.WithRegistry(builtinRegistry(t)), validator.WithObserver(obs))

	_, err := v.Validate(context.Background(), "abc", "required|min:2", validator.WithName("name"))
	require.NoError(t, err)

	assert.Equal(t, []string{"required", "min"}, obs.rules)
	assert.Equal(t, []string{"name"}, obs.fields)
}

func TestResult_Err(t *testing.T) {
	t.Parallel()

	v := validator.New(validator.WithRegistry(builtinRegistry(t)))

	res, err := v.Validate(context.Background(), "", "required", validator.WithName("email"))
	require.NoError(t, err)
	assert.Equal(t, "email", res.Field())

	verr := res.Err()
	require.Error(t, verr)

	var ve validator.ValidationErrors
	require.ErrorAs(t, verr, &ve)
	require.Len(t, ve, 1)
	assert.True(t, ve.Has("email"))
	assert.Equal(t, []string{"email is not valid."}, ve.Get("email"))
	assert.Equal(t, []string{"email"}, ve.Fields())
	assert.Equal(t, "validation failed: email: email is not valid.", ve.Error())

	ok, err := v.Validate(context.Background(), "x", "required")
	require.NoError(t, err)
	assert.NoError(t, ok.Err())
}
