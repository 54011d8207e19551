package validator

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Contract errors signal misuse of the engine. They are returned from
// Register, Normalize and Validate and are never part of Result.Errors.
var (
	ErrUnknownRule          = errors.New("validator: unknown rule")
	ErrInvalidRuleSchema    = errors.New("validator: invalid rule schema")
	ErrRequireRuleContract  = errors.New("validator: require rule must return an outcome")
	ErrRuleContract         = errors.New("validator: rule returned an unsupported result")
	ErrUnschemedNamedParams = errors.New("validator: named params given to a rule without a params schema")
	ErrInvalidRules         = errors.New("validator: rules must be a string, Set, map or *RuleSet")
)

// UnknownRuleError is returned when a rule referenced by a rule set is not
// registered at validation time.
type UnknownRuleError struct {
	Rule string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("validator: no such rule %q", e.Rule)
}

func (e *UnknownRuleError) Unwrap() error { return ErrUnknownRule }

// RuleRegistrationError is returned by Register when a schema cannot become a
// rule definition.
type RuleRegistrationError struct {
	Rule   string
	Reason string
}

func (e *RuleRegistrationError) Error() string {
	return fmt.Sprintf("validator: cannot register rule %q: %s", e.Rule, e.Reason)
}

func (e *RuleRegistrationError) Unwrap() error { return ErrInvalidRuleSchema }

// RequireRuleContractError is returned when a require-computing rule does not
// return an Outcome.
type RequireRuleContractError struct {
	Rule   string
	Result any
}

func (e *RequireRuleContractError) Error() string {
	return fmt.Sprintf("validator: require rule %q returned %T, want Outcome", e.Rule, e.Result)
}

func (e *RequireRuleContractError) Unwrap() error { return ErrRequireRuleContract }

// RuleContractError is returned when a rule returns something other than a
// bool, a string or an Outcome.
type RuleContractError struct {
	Rule   string
	Result any
}

func (e *RuleContractError) Error() string {
	return fmt.Sprintf("validator: rule %q returned unsupported %T", e.Rule, e.Result)
}

func (e *RuleContractError) Unwrap() error { return ErrRuleContract }

// UnschemedNamedParamsError is returned when named params are bound to a
// registered rule that declares no params.
type UnschemedNamedParamsError struct {
	Rule string
}

func (e *UnschemedNamedParamsError) Error() string {
	return fmt.Sprintf("validator: rule %q has no params schema, only positional args are allowed", e.Rule)
}

func (e *UnschemedNamedParamsError) Unwrap() error { return ErrUnschemedNamedParams }
