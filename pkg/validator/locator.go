package validator

import (
	"reflect"
	"strings"
)

// Locator is a reference to another field's value. It is resolved against
// the cross-field table supplied to each Validate call, never at bind time.
type Locator struct {
	Target string
	Cast   func(any) any
}

// NewLocator builds a locator from a field key, stripping a leading "@".
func NewLocator(target string, cast func(any) any) Locator {
	return Locator{Target: strings.TrimPrefix(target, "@"), Cast: cast}
}

// Equal reports whether both locators point at the same field with the same
// cast function.
func (l Locator) Equal(other Locator) bool {
	return l.Target == other.Target && funcPointer(l.Cast) == funcPointer(other.Cast)
}

func (l Locator) String() string {
	return "@" + l.Target
}

// Resolve returns the current value of the locator's target in table, with
// the locator's cast applied to non-nil values. It never mutates l or table.
func Resolve(l Locator, table map[string]any) any {
	val := table[l.Target]
	if l.Cast != nil && val != nil {
		return l.Cast(val)
	}
	return val
}

// IsLocator reports whether v is a Locator or a non-nil *Locator.
func IsLocator(v any) bool {
	_, ok := asLocator(v)
	return ok
}

func asLocator(v any) (Locator, bool) {
	switch l := v.(type) {
	case Locator:
		return l, true
	case *Locator:
		if l != nil {
			return *l, true
		}
	}
	return Locator{}, false
}

func funcPointer(fn func(any) any) uintptr {
	if fn == nil {
		return 0
	}
	return reflect.ValueOf(fn).Pointer()
}
