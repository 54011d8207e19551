package builtin

import (
	"context"
	"math"
	"unicode/utf8"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

// lengthParam is the shape of rules taking a single numeric "length".
type lengthParam struct {
	Length float64 `mapstructure:"length"`
}

func numberParam(name string) validator.Param {
	return validator.Param{Name: name, Cast: toNumber}
}

func confirmedRule() validator.Definition {
	return validator.Definition{
		Name:   "confirmed",
		Params: []validator.Param{{Name: "target", IsTarget: true}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			return toString(value) == toString(params.Get("target")), nil
		},
	}
}

func betweenRule() validator.Definition {
	return validator.Definition{
		Name:   "between",
		Params: []validator.Param{numberParam("min"), numberParam("max")},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p struct {
				Min float64 `mapstructure:"min"`
				Max float64 `mapstructure:"max"`
			}
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			return every(value, func(v any) bool {
				n, ok := toFloat(v)
				return ok && n >= p.Min && n <= p.Max
			}), nil
		},
	}
}

func minRule() validator.Definition {
	return validator.Definition{
		Name:   "min",
		Params: []validator.Param{numberParam("length")},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p lengthParam
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			if value == nil {
				return false, nil
			}
			return every(value, func(v any) bool {
				return float64(utf8.RuneCountInString(toString(v))) >= p.Length
			}), nil
		},
	}
}

func maxRule() validator.Definition {
	return validator.Definition{
		Name:   "max",
		Params: []validator.Param{numberParam("length")},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p lengthParam
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			if value == nil {
				return p.Length >= 0, nil
			}
			return every(value, func(v any) bool {
				return float64(utf8.RuneCountInString(toString(v))) <= p.Length
			}), nil
		},
	}
}

func minValueRule() validator.Definition {
	return boundRule("min_value", "min", func(n, bound float64) bool { return n >= bound })
}

func maxValueRule() validator.Definition {
	return boundRule("max_value", "max", func(n, bound float64) bool { return n <= bound })
}

// boundRule builds min_value and max_value: empty values fail, collections
// must be non-empty and every element must satisfy cmp.
func boundRule(name, param string, cmp func(n, bound float64) bool) validator.Definition {
	var check func(value any, bound float64) bool
	check = func(value any, bound float64) bool {
		if value == nil || value == "" {
			return false
		}
		if items, ok := elements(value); ok {
			if len(items) == 0 {
				return false
			}
			for _, item := range items {
				if !check(item, bound) {
					return false
				}
			}
			return true
		}
		n, ok := toFloat(value)
		return ok && cmp(n, bound)
	}

	return validator.Definition{
		Name:   name,
		Params: []validator.Param{numberParam(param)},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			bound, ok := toFloat(params.Get(param))
			if !ok {
				bound = math.NaN()
			}
			return check(value, bound), nil
		},
	}
}

func lengthRule() validator.Definition {
	return validator.Definition{
		Name:   "length",
		Params: []validator.Param{numberParam("length")},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p lengthParam
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			if value == nil {
				return false, nil
			}
			if items, ok := elements(value); ok {
				return float64(len(items)) == p.Length, nil
			}
			return float64(utf8.RuneCountInString(toString(value))) == p.Length, nil
		},
	}
}

func digitsRule() validator.Definition {
	return validator.Definition{
		Name:   "digits",
		Params: []validator.Param{numberParam("length")},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p lengthParam
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			return every(value, func(v any) bool {
				s := toString(v)
				return digitsPattern.MatchString(s) && float64(len(s)) == p.Length
			}), nil
		},
	}
}
