package i18n

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/dmitrymomot/fieldrules/pkg/logger"
)

// DefaultLocale is the locale a Dictionary starts with when none is given.
const DefaultLocale = "en"

// FallbackMessage is the last-resort template used when neither the active
// locale nor the configured default provides a message.
const FallbackMessage = "{_field_} is not valid"

// SubscriptionBuffer is how many undelivered changes a subscription holds
// before further changes are dropped for it.
const SubscriptionBuffer = 16

// Dictionary is the locale-aware message store consulted when validation
// errors are rendered. All methods are safe for concurrent use.
//
// Lookups follow this precedence for the active locale:
//
//  1. field-specific override (fields[field][rule])
//  2. global rule message (messages[rule])
//  3. the configured default message (WithDefaultMessage)
//  4. FallbackMessage
type Dictionary struct {
	locale         string
	container      map[string]*catalog
	defaultMessage Template
	missingLogMode bool
	logger         *slog.Logger
	notifier       *notifier
	mu             sync.RWMutex
}

// NewDictionary creates a Dictionary with the given active locale.
func NewDictionary(locale string, options ...Option) *Dictionary {
	if locale == "" {
		locale = DefaultLocale
	}

	d := &Dictionary{
		locale:    CanonicalLocale(locale),
		container: make(map[string]*catalog),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, option := range options {
		option(d)
	}

	d.notifier = newNotifier(SubscriptionBuffer)
	return d
}

// Locale returns the active locale.
func (d *Dictionary) Locale() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.locale
}

// Locales returns the sorted list of locales that have dictionary content.
func (d *Dictionary) Locales() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	locales := make([]string, 0, len(d.container))
	for locale := range d.container {
		locales = append(locales, locale)
	}
	slices.Sort(locales)
	return locales
}

// Localize switches the active locale, merging the optional fragments into
// that locale first, and notifies every subscription so already rendered
// messages can be regenerated.
func (d *Dictionary) Localize(locale string, fragments ...Fragment) {
	locale = CanonicalLocale(locale)

	d.mu.Lock()
	previous := d.locale
	d.locale = locale
	for _, f := range fragments {
		d.catalogLocked(locale).merge(f)
	}
	d.mu.Unlock()

	delivered := d.notifier.publish(Change{Locale: locale, Previous: previous})
	d.logger.Debug("locale changed",
		logger.Locale(locale),
		slog.String("previous", previous),
		logger.Count(delivered),
	)
}

// Merge deep-merges fragments keyed by locale without switching the active
// locale and without notifying subscribers.
func (d *Dictionary) Merge(fragments map[string]Fragment) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for locale, f := range fragments {
		d.catalogLocked(CanonicalLocale(locale)).merge(f)
	}
}

// Load reads every locale from the adapter, merges it and notifies
// subscribers that the dictionary content changed.
func (d *Dictionary) Load(ctx context.Context, adapter Adapter) error {
	if isNil(adapter) {
		return ErrNilAdapter
	}

	raw, err := adapter.Load(ctx)
	if err != nil {
		return err
	}

	fragments, err := DecodeFragments(raw)
	if err != nil {
		return err
	}

	d.Merge(fragments)

	locale := d.Locale()
	d.notifier.publish(Change{Locale: locale, Previous: locale})
	d.logger.InfoContext(ctx, "dictionaries loaded", slog.Any("locales", d.Locales()))
	return nil
}

// Subscribe registers for dictionary changes. The subscription is dropped
// when ctx is cancelled or the dictionary is closed.
func (d *Dictionary) Subscribe(ctx context.Context) *Subscription {
	return d.notifier.subscribe(ctx)
}

// Close closes all subscriptions. Later Localize calls still switch the
// locale but notify nobody.
func (d *Dictionary) Close() error {
	d.notifier.close()
	return nil
}

// HasRule reports whether the active locale has a global message for rule.
func (d *Dictionary) HasRule(rule string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.container[d.locale]
	if !ok {
		return false
	}
	_, ok = c.messages[rule]
	return ok
}

// Name returns the display name registered for field in the active locale.
func (d *Dictionary) Name(field string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	c, ok := d.container[d.locale]
	if !ok {
		return "", false
	}
	name, ok := c.names[field]
	return name, ok
}

// Message renders the active locale's message for field and rule. It only
// consults the locale content (field override, then global rule message)
// and reports false when neither exists.
func (d *Dictionary) Message(field, rule string, values map[string]any) (string, bool) {
	d.mu.RLock()
	tmpl, display, ok := d.lookupLocked(d.locale, field, rule)
	d.mu.RUnlock()

	if !ok {
		if d.missingLogMode {
			d.logger.Warn("message not found", logger.Field(field), logger.Rule(rule))
		}
		return "", false
	}
	return tmpl.Render(display, values), true
}

// Resolve renders the message for field and rule in the active locale using
// the full precedence chain. It never fails.
func (d *Dictionary) Resolve(field, rule string, values map[string]any) string {
	return d.Format(d.Locale(), field, rule, values)
}

// Format renders the message for field and rule in the given locale.
func (d *Dictionary) Format(locale, field, rule string, values map[string]any) string {
	d.mu.RLock()
	tmpl, display, ok := d.lookupLocked(CanonicalLocale(locale), field, rule)
	fallback := d.defaultMessage
	d.mu.RUnlock()

	if ok {
		return tmpl.Render(display, values)
	}
	if !fallback.IsZero() {
		return fallback.Render(display, values)
	}
	return Text(FallbackMessage).Render(display, values)
}

// Negotiate picks the best locale with dictionary content for an
// Accept-Language header. The active locale is returned when nothing matches.
func (d *Dictionary) Negotiate(acceptLanguage string) string {
	return MatchLocale(acceptLanguage, d.Locales(), d.Locale())
}

func (d *Dictionary) lookupLocked(locale, field, rule string) (Template, string, bool) {
	display := field
	c, ok := d.container[locale]
	if !ok {
		return Template{}, display, false
	}
	if name, ok := c.names[field]; ok && name != "" {
		display = name
	}
	if rules, ok := c.fields[field]; ok {
		if tmpl, ok := rules[rule]; ok && !tmpl.IsZero() {
			return tmpl, display, true
		}
	}
	if tmpl, ok := c.messages[rule]; ok && !tmpl.IsZero() {
		return tmpl, display, true
	}
	return Template{}, display, false
}

// isNil also catches a nil pointer stored in the interface, which the
// New*Adapter constructors return for invalid arguments.
func isNil(adapter Adapter) bool {
	if adapter == nil {
		return true
	}
	v := reflect.ValueOf(adapter)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func (d *Dictionary) catalogLocked(locale string) *catalog {
	c, ok := d.container[locale]
	if !ok {
		c = newCatalog()
		d.container[locale] = c
	}
	return c
}

// LoadDictionary is a convenience constructor that creates a Dictionary and
// loads the adapter content into it.
func LoadDictionary(ctx context.Context, locale string, adapter Adapter, options ...Option) (*Dictionary, error) {
	d := NewDictionary(locale, options...)
	if err := d.Load(ctx, adapter); err != nil {
		return nil, err
	}
	return d, nil
}
