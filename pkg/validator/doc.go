// Package validator is a declarative field validation engine. A field value
// is checked against a set of named rules with parameters, other fields'
// values and display names, and the result carries the failed rules with
// human-readable, locale-aware messages.
//
// # Architecture
//
// Registry is the catalog of rules. A rule is a Definition: a ValidateFunc,
// an ordered list of Param declarations and flags marking it lazy or
// require-computing. Registering an existing name merges the new Schema into
// the existing definition, last write wins per field.
//
// Normalize turns a declaration such as "required|min:3|confirmed:@password"
// (or the object forms Set and map[string]any) into a RuleSet. Positional
// args are bound to declared params; extra args reuse the last declared
// param and are collected into a []any. Args starting with "@" and args of
// target params become Locator values. A RuleSet never holds another
// field's value: locators are resolved against the table given to each
// Validate call, right before the rule runs.
//
// Validator runs a RuleSet sequentially. Require-computing rules run first
// and decide the required flag, then an empty and optional value may skip
// the rest, then the remaining rules run in declaration order. With bails
// enabled the first failure stops the pass.
//
// Messages are rendered lazily. Each failed rule keeps a function in
// Result.RegenerateMap that renders its message again from the active
// dictionary locale, so a locale switch does not require validating again.
//
// # Usage
//
//	reg := validator.NewRegistry()
//	builtin.Install(reg)
//
//	dict := i18n.NewDictionary("en")
//	_ = builtin.LoadMessages(ctx, dict)
//
//	v := validator.New(validator.WithRegistry(reg), validator.WithMessages(dict))
//
//	res, err := v.Validate(ctx, "secret", "required|confirmed:@password",
//	    validator.WithName("password confirmation"),
//	    validator.WithValues(map[string]any{"password": "secret"}),
//	)
//
// # Error Handling
//
// Failed rules are never errors; they are reported in Result. Validate
// returns an error only for misuse (UnknownRuleError, RuleContractError,
// RequireRuleContractError, UnschemedNamedParamsError), for an error
// returned by a rule, or when ctx is done. All of them match their sentinel
// with errors.Is.
package validator
