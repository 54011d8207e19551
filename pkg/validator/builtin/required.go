package builtin

import (
	"context"
	"strings"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

func requiredRule() validator.Definition {
	return validator.Definition{
		Name:             "required",
		ComputesRequired: true,
		Params:           []validator.Param{{Name: "allowFalse", Default: true}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p struct {
				AllowFalse bool `mapstructure:"allowFalse"`
			}
			if err := params.Decode(&p); err != nil {
				return nil, err
			}

			if value == nil {
				return validator.Required(false, true), nil
			}
			if items, ok := elements(value); ok && len(items) == 0 {
				return validator.Required(false, true), nil
			}
			if b, ok := value.(bool); ok && !b && !p.AllowFalse {
				return validator.Required(false, true), nil
			}
			return validator.Required(strings.TrimSpace(toString(value)) != "", true), nil
		},
	}
}

// required_if:country,US,CA makes the field required when the country field
// equals one of the values, or when it is not blank if no values are given.
func requiredIfRule() validator.Definition {
	return validator.Definition{
		Name:             "required_if",
		ComputesRequired: true,
		Params: []validator.Param{
			{Name: "target", IsTarget: true},
			{Name: "values"},
		},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			target := params.Get("target")
			values := list(params.Get("values"))

			var required bool
			if len(values) > 0 {
				want := strings.TrimSpace(toString(target))
				for _, v := range values {
					if toString(v) == want {
						required = true
						break
					}
				}
			} else {
				required = !isBlank(target)
			}

			if !required {
				return validator.Required(true, false), nil
			}
			return validator.Required(!isBlank(value), true), nil
		},
	}
}
