package builtin

import (
	"context"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

// oneOf and excluded take their options as positional args, compared by
// their string form so "1" matches 1.
func oneOfRule() validator.Definition {
	return validator.Definition{
		Name: "oneOf",
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			options := params.Values()
			return every(value, func(v any) bool { return contains(options, v) }), nil
		},
	}
}

func excludedRule() validator.Definition {
	return validator.Definition{
		Name: "excluded",
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			options := params.Values()
			return every(value, func(v any) bool { return !contains(options, v) }), nil
		},
	}
}

func contains(options []any, v any) bool {
	want := toString(v)
	for _, opt := range options {
		if toString(opt) == want {
			return true
		}
	}
	return false
}
