package builtin

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

// Definitions returns the built-in rule catalog.
func Definitions() []validator.Definition {
	return []validator.Definition{
		requiredRule(),
		requiredIfRule(),
		confirmedRule(),
		betweenRule(),
		minRule(),
		maxRule(),
		minValueRule(),
		maxValueRule(),
		lengthRule(),
		digitsRule(),
		alphaRule("alpha", alphaPatterns),
		alphaRule("alpha_num", alphaNumPatterns),
		alphaRule("alpha_dash", alphaDashPatterns),
		alphaRule("alpha_spaces", alphaSpacesPatterns),
		emailRule(),
		regexRule(),
		oneOfRule(),
		excludedRule(),
		doubleRule(),
		numericRule(),
		integerRule(),
		urlRule(),
		ipRule(),
	}
}

// Install registers the built-in rules in reg. Rules already present in reg
// are extended, so applications can override parts of a built-in rule by
// registering it first or afterwards.
func Install(reg *validator.Registry) error {
	var errs []error
	for _, def := range Definitions() {
		if err := reg.Register(def.Name, def); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// toNumber is the cast used by numeric params. Values that are not numbers
// become NaN, which fails every comparison.
func toNumber(v any) any {
	n, ok := toFloat(v)
	if !ok {
		return math.NaN()
	}
	return n
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case fmt.Stringer:
		return toFloat(n.String())
	}
	return 0, false
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// elements returns the items of slices and arrays other than []byte.
func elements(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// every applies check to each element of a collection value, or to the
// value itself.
func every(v any, check func(any) bool) bool {
	if items, ok := elements(v); ok {
		for _, item := range items {
			if !check(item) {
				return false
			}
		}
		return true
	}
	return check(v)
}

// isBlank is the emptiness test of conditional requirements.
func isBlank(v any) bool {
	if items, ok := elements(v); ok {
		return len(items) == 0
	}
	switch b := v.(type) {
	case nil:
		return true
	case bool:
		return !b
	}
	return strings.TrimSpace(toString(v)) == ""
}

// list turns a param that may hold one value or many into a slice.
func list(v any) []any {
	if v == nil {
		return nil
	}
	if items, ok := elements(v); ok {
		return items
	}
	return []any{v}
}
