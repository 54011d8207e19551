package validator

import (
	"log/slog"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

// MessageResolver renders a rule message for a field from the active locale.
// It reports false when the locale has no message, so the validator can
// fall back to the configured default. *i18n.Dictionary implements it.
type MessageResolver interface {
	Message(field, rule string, values map[string]any) (string, bool)
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry sets the rule registry. Defaults to DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(v *Validator) {
		if r != nil {
			v.registry = r
		}
	}
}

// WithMessages sets the dictionary consulted for rule messages.
func WithMessages(m MessageResolver) Option {
	return func(v *Validator) {
		v.messages = m
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(v *Validator) {
		v.config = cfg
	}
}

// WithLogger sets the logger. If not specified, a discard logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithObserver registers an Observer, e.g. the Prometheus one from pkg/metrics.
func WithObserver(o Observer) Option {
	return func(v *Validator) {
		if o != nil {
			v.observer = o
		}
	}
}

// ValidateOption configures a single Validate call.
type ValidateOption func(*validateOptions)

type validateOptions struct {
	name           string
	values         map[string]any
	names          map[string]string
	bails          *bool
	skipIfEmpty    *bool
	initial        bool
	customMessages map[string]i18n.Template
}

// WithName sets the display name of the validated field.
func WithName(name string) ValidateOption {
	return func(o *validateOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithValues sets the cross-field table locators are resolved against.
func WithValues(values map[string]any) ValidateOption {
	return func(o *validateOptions) {
		o.values = values
	}
}

// WithNames sets the display names of other fields, used in messages of
// rules that reference them.
func WithNames(names map[string]string) ValidateOption {
	return func(o *validateOptions) {
		o.names = names
	}
}

// WithBails overrides Config.Bails for this call.
func WithBails(bails bool) ValidateOption {
	return func(o *validateOptions) {
		o.bails = &bails
	}
}

// WithSkipIfEmpty overrides Config.SkipOptional for this call.
func WithSkipIfEmpty(skip bool) ValidateOption {
	return func(o *validateOptions) {
		o.skipIfEmpty = &skip
	}
}

// Initial marks a first, non-interactive pass: lazy rules are not run.
func Initial() ValidateOption {
	return func(o *validateOptions) {
		o.initial = true
	}
}

// WithCustomMessage overrides the message template of rule for this call.
func WithCustomMessage(rule string, tmpl i18n.Template) ValidateOption {
	return func(o *validateOptions) {
		if o.customMessages == nil {
			o.customMessages = make(map[string]i18n.Template)
		}
		o.customMessages[rule] = tmpl
	}
}
