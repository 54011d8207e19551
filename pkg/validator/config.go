package validator

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
)

// DefaultFieldName is the display name used when Validate gets no WithName.
const DefaultFieldName = "{field}"

// ErrParsingConfig is returned when environment variables cannot be parsed
// into Config.
var ErrParsingConfig = errors.New("validator: failed to parse environment variables into config")

// Config holds the defaults consulted when a Validate call omits a setting.
type Config struct {
	// DefaultMessage renders failures of rules without any message.
	DefaultMessage i18n.Template `env:"FIELDRULES_DEFAULT_MESSAGE" envDefault:"{_field_} is not valid."`
	// Bails stops a field's validation at its first failing rule.
	Bails bool `env:"FIELDRULES_BAILS" envDefault:"true"`
	// SkipOptional lets empty, non-required values skip their rules.
	SkipOptional bool `env:"FIELDRULES_SKIP_OPTIONAL" envDefault:"true"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		DefaultMessage: i18n.Text("{_field_} is not valid."),
		Bails:          true,
		SkipOptional:   true,
	}
}

// LoadConfig reads Config from the environment. The given .env files are
// loaded first; without paths the optional .env in the working directory is
// used. Variables already set in the environment win over .env files.
func LoadConfig(paths ...string) (Config, error) {
	if err := godotenv.Load(paths...); err != nil {
		if len(paths) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrParsingConfig, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Settings is a partial Config for Configure. Nil fields are left unchanged.
type Settings struct {
	DefaultMessage *i18n.Template
	Bails          *bool
	SkipOptional   *bool
}

func (c Config) apply(s Settings) Config {
	if s.DefaultMessage != nil {
		c.DefaultMessage = *s.DefaultMessage
	}
	if s.Bails != nil {
		c.Bails = *s.Bails
	}
	if s.SkipOptional != nil {
		c.SkipOptional = *s.SkipOptional
	}
	return c
}
