// Package commands implements the fieldrules CLI.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
	"github.com/dmitrymomot/fieldrules/pkg/logger"
	"github.com/dmitrymomot/fieldrules/pkg/redis"
	"github.com/dmitrymomot/fieldrules/pkg/validator"
	"github.com/dmitrymomot/fieldrules/pkg/validator/builtin"
)

// version is set at build time via ldflags.
var version = "0.1.0"

// ErrInvalid is returned when at least one value failed validation. The
// report is already printed, so callers only need the exit status.
var ErrInvalid = errors.New("validation failed")

// app is the state shared by all commands of one root command.
type app struct {
	v        *viper.Viper
	logger   *slog.Logger
	cfg      validator.Config
	registry *validator.Registry
	dict     *i18n.Dictionary
}

// NewRootCmd builds the command tree. Every call returns an independent
// tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "fieldrules",
		Short: "Validate values against rule declarations",
		Long: `fieldrules validates values against rule declarations such as
"required|min:3|confirmed:@password" and renders localized messages
for the failures.

Settings come from flags, FIELDRULES_* environment variables, a .env
file in the working directory and an optional config file, in that
order of precedence.`,
		Example: `  # Validate a single value
  fieldrules validate "" --rules required --field email

  # Compare against another field
  fieldrules validate secret --rules confirmed:@password --value password=secret

  # List the built-in rules
  fieldrules rules`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("fieldrules version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, json or toml)")
	flags.String("env", "", "environment preset for logging: development, staging, production")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.String("locale", i18n.DefaultLocale, "message locale")
	flags.String("dict", "", "dictionary file or directory merged over the built-in messages")
	flags.String("redis-url", "", "also load dictionaries from a Redis hash, e.g. redis://localhost:6379/0")
	flags.String("redis-key", redis.DefaultKey, "Redis hash holding one JSON dictionary per locale")
	flags.Int("redis-retries", 3, "Redis connection attempts")
	flags.Duration("redis-timeout", 10*time.Second, "Redis connection timeout")
	flags.StringP("output", "o", "text", "output format: text, json")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix("FIELDRULES")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(
		newValidateCmd(a),
		newRulesCmd(a),
		newMessageCmd(a),
		newDictCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
		cmd.SetContext(ctx)
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config file %s", path)
		}
	}

	// Loads .env first so its FIELDRULES_* variables reach viper too.
	cfg, err := validator.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.setupLogger(cmd); err != nil {
		return err
	}

	a.registry = validator.NewRegistry()
	if err := builtin.Install(a.registry); err != nil {
		return errors.Wrap(err, "installing built-in rules")
	}

	a.dict = i18n.NewDictionary(a.v.GetString("locale"),
		i18n.WithLogger(a.logger),
		i18n.WithMissingMessagesLogging(true),
		i18n.WithDefaultMessage(cfg.DefaultMessage),
	)
	if err := builtin.LoadMessages(ctx, a.dict); err != nil {
		return errors.Wrap(err, "loading built-in messages")
	}
	return a.loadDictionaries(ctx)
}

// setupLogger builds the logger from --env, then lets an explicit
// --log-level or --log-format override the preset. Without --env the flag
// defaults apply.
func (a *app) setupLogger(cmd *cobra.Command) error {
	opts := []logger.Option{
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithAttr(slog.String("version", version)),
		// Set per request by the serve command's router.
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	}

	preset := a.v.GetString("env")
	if preset != "" {
		name, err := logger.ParseEnvironment(preset)
		if err != nil {
			return err
		}
		opts = append(opts, logger.WithEnvironment(name, "fieldrules"))
	}

	if preset == "" || a.v.IsSet("log-level") {
		level, err := logger.ParseLevel(a.v.GetString("log-level"))
		if err != nil {
			return err
		}
		opts = append(opts, logger.WithLevel(level))
	}

	if preset == "" || a.v.IsSet("log-format") {
		format := logger.Format(a.v.GetString("log-format"))
		if format != logger.FormatText && format != logger.FormatJSON {
			return errors.Newf("invalid log format %q (valid: text, json)", format)
		}
		opts = append(opts, logger.WithFormat(format))
	}

	a.logger = logger.New(opts...)
	return nil
}

// loadDictionaries merges the user dictionaries over the built-in ones.
func (a *app) loadDictionaries(ctx context.Context) error {
	if path := a.v.GetString("dict"); path != "" {
		adapter, err := pathAdapter(path)
		if err != nil {
			return err
		}
		if err := a.dict.Load(ctx, adapter); err != nil {
			return errors.Wrapf(err, "loading dictionary %s", path)
		}
	}

	if a.v.GetString("redis-url") != "" {
		store, closeStore, err := a.dictionaryStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := a.dict.Load(ctx, store.Adapter()); err != nil {
			return errors.Wrapf(err, "loading dictionaries from redis hash %s", store.Key())
		}
	}
	return nil
}

// dictionaryStore connects to the Redis server given by --redis-url.
func (a *app) dictionaryStore(ctx context.Context) (*redis.DictionaryStore, func(), error) {
	url := a.v.GetString("redis-url")
	if url == "" {
		return nil, nil, errors.WithHint(errors.New("no redis server configured"), "set --redis-url or FIELDRULES_REDIS_URL")
	}

	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  a.v.GetInt("redis-retries"),
		RetryInterval:  time.Second,
		ConnectTimeout: a.v.GetDuration("redis-timeout"),
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to redis")
	}

	store := redis.NewDictionaryStore(client, a.v.GetString("redis-key"))
	return store, func() { _ = client.Close() }, nil
}

func pathAdapter(path string) (i18n.Adapter, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening dictionary")
	}
	if info.IsDir() {
		return i18n.NewDirectoryAdapter(i18n.NewYAMLParser(), path), nil
	}

	parser := i18n.NewParserForFile(path)
	if parser == nil {
		return nil, errors.WithHint(
			errors.Newf("unsupported dictionary file %s", path),
			"use a .yaml, .yml or .json file",
		)
	}
	return i18n.NewFileAdapter(parser, path), nil
}

func (a *app) jsonOutput() bool {
	return a.v.GetString("output") == "json"
}
