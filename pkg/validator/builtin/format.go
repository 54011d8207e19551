package builtin

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

var (
	digitsPattern  = regexp.MustCompile(`^[0-9]*$`)
	numericPattern = regexp.MustCompile(`^[0-9]+$`)
	integerPattern = regexp.MustCompile(`^-?[0-9]+$`)

	// checker backs the email, url and ip rules. It is safe for concurrent use.
	checker = playground.New()
)

// localePatterns holds an ASCII pattern used for "en" and a Unicode pattern
// used for any other locale and when no locale is given.
type localePatterns struct {
	en      *regexp.Regexp
	unicode *regexp.Regexp
}

func (lp localePatterns) match(locale, s string) bool {
	if locale == "en" {
		return lp.en.MatchString(s)
	}
	return lp.unicode.MatchString(s)
}

var (
	alphaPatterns = localePatterns{
		en:      regexp.MustCompile(`^(?i)[A-Z]*$`),
		unicode: regexp.MustCompile(`^[\p{L}\p{M}]*$`),
	}
	alphaNumPatterns = localePatterns{
		en:      regexp.MustCompile(`^(?i)[0-9A-Z]*$`),
		unicode: regexp.MustCompile(`^[\p{L}\p{M}\p{Nd}]*$`),
	}
	alphaDashPatterns = localePatterns{
		en:      regexp.MustCompile(`^(?i)[0-9A-Z_-]*$`),
		unicode: regexp.MustCompile(`^[\p{L}\p{M}\p{Nd}_-]*$`),
	}
	alphaSpacesPatterns = localePatterns{
		en:      regexp.MustCompile(`^(?i)[A-Z\s]*$`),
		unicode: regexp.MustCompile(`^[\p{L}\p{M}\s]*$`),
	}
)

func alphaRule(name string, patterns localePatterns) validator.Definition {
	return validator.Definition{
		Name:   name,
		Params: []validator.Param{{Name: "locale"}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			locale := toString(params.Get("locale"))
			return every(value, func(v any) bool {
				return patterns.match(locale, toString(v))
			}), nil
		},
	}
}

func emailRule() validator.Definition {
	return validator.Definition{
		Name:   "email",
		Params: []validator.Param{{Name: "multiple", Default: false}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p struct {
				Multiple bool `mapstructure:"multiple"`
			}
			if err := params.Decode(&p); err != nil {
				return nil, err
			}
			if _, isList := elements(value); p.Multiple && !isList {
				parts := strings.Split(toString(value), ",")
				items := make([]any, len(parts))
				for i, part := range parts {
					items[i] = strings.TrimSpace(part)
				}
				value = items
			}
			return every(value, func(v any) bool {
				return checker.Var(toString(v), "required,email") == nil
			}), nil
		},
	}
}

func urlRule() validator.Definition {
	return validator.Definition{
		Name: "url",
		Validate: func(_ context.Context, value any, _ validator.Params) (any, error) {
			return every(value, func(v any) bool {
				return checker.Var(toString(v), "required,url") == nil
			}), nil
		},
	}
}

// ip accepts an optional version: ip, ip:4 or ip:6.
func ipRule() validator.Definition {
	return validator.Definition{
		Name:   "ip",
		Params: []validator.Param{{Name: "version", Default: ""}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			tag := "ip"
			switch v := strings.TrimPrefix(toString(params.Get("version")), "v"); v {
			case "":
			case "4", "6":
				tag = "ipv" + v
			default:
				return nil, fmt.Errorf("builtin: ip version must be 4 or 6, got %q", v)
			}
			return every(value, func(v any) bool {
				return checker.Var(toString(v), "required,"+tag) == nil
			}), nil
		},
	}
}

// regex params are compiled when bound. Patterns containing "," must use the
// object form because the string form splits args on ",".
func regexRule() validator.Definition {
	return validator.Definition{
		Name: "regex",
		Params: []validator.Param{{Name: "regex", Cast: func(v any) any {
			s, ok := v.(string)
			if !ok {
				return v
			}
			re, err := regexp.Compile(s)
			if err != nil {
				return fmt.Errorf("builtin: invalid regex %q: %w", s, err)
			}
			return re
		}}},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var re *regexp.Regexp
			switch p := params.Get("regex").(type) {
			case *regexp.Regexp:
				re = p
			case error:
				return nil, p
			default:
				return nil, fmt.Errorf("builtin: regex param must be a single pattern, got %T", p)
			}
			return every(value, func(v any) bool {
				return re.MatchString(toString(v))
			}), nil
		},
	}
}

func doubleRule() validator.Definition {
	return validator.Definition{
		Name: "double",
		Params: []validator.Param{
			{Name: "decimals", Default: 0},
			{Name: "separator", Default: "dot"},
		},
		Validate: func(_ context.Context, value any, params validator.Params) (any, error) {
			var p struct {
				Decimals  int    `mapstructure:"decimals"`
				Separator string `mapstructure:"separator"`
			}
			if err := params.Decode(&p); err != nil {
				return nil, err
			}

			delimiter := `\.?`
			if p.Separator == "comma" {
				delimiter = `,?`
			}
			decimals := `\d*`
			if p.Decimals != 0 {
				decimals = fmt.Sprintf(`(\d{%d})?`, p.Decimals)
			}
			re, err := regexp.Compile(`^-?\d+` + delimiter + decimals + `$`)
			if err != nil {
				return nil, err
			}
			return every(value, func(v any) bool {
				return re.MatchString(toString(v))
			}), nil
		},
	}
}

func numericRule() validator.Definition {
	return patternRule("numeric", numericPattern)
}

func integerRule() validator.Definition {
	return patternRule("integer", integerPattern)
}

func patternRule(name string, re *regexp.Regexp) validator.Definition {
	return validator.Definition{
		Name: name,
		Validate: func(_ context.Context, value any, _ validator.Params) (any, error) {
			return every(value, func(v any) bool {
				return re.MatchString(toString(v))
			}), nil
		},
	}
}
