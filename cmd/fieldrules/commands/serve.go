package commands

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/fieldrules/pkg/i18n"
	"github.com/dmitrymomot/fieldrules/pkg/metrics"
	"github.com/dmitrymomot/fieldrules/pkg/server"
	"github.com/dmitrymomot/fieldrules/pkg/validator"
)

type serveOptions struct {
	addr    string
	watch   bool
	metrics bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve validation over HTTP",
		Long: `Serve POST /validate, GET /rules and GET /metrics until interrupted.

Listener settings come from FIELDRULES_HTTP_* and metric naming from
FIELDRULES_METRICS_* environment variables. With --watch, the --dict
directory is reloaded whenever one of its files changes.`,
		Example: `  fieldrules serve --addr :9090
  fieldrules serve --dict ./locales --watch

  curl -d '{"value": "", "rules": "required"}' localhost:8080/validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", "", "listen address (default from FIELDRULES_HTTP_ADDR or :8080)")
	flags.BoolVar(&opts.watch, "watch", false, "reload the --dict directory when it changes")
	flags.BoolVar(&opts.metrics, "metrics", true, "expose Prometheus metrics on /metrics")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg, err := env.ParseAs[server.Config]()
	if err != nil {
		return errors.Wrap(err, "parsing server config")
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}

	var watcher *i18n.Watcher
	if opts.watch {
		dir := a.v.GetString("dict")
		if info, err := os.Stat(dir); dir == "" || err != nil || !info.IsDir() {
			return errors.WithHint(errors.New("--watch needs a dictionary directory"), "set --dict to a directory of YAML files")
		}
		watcher = i18n.NewWatcher(a.dict, i18n.NewYAMLParser(), dir, 0, a.logger)
	}

	vopts := []validator.Option{
		validator.WithRegistry(a.registry),
		validator.WithMessages(a.dict),
		validator.WithConfig(a.cfg),
		validator.WithLogger(a.logger),
	}
	hopts := []server.HandlerOption{
		server.WithLogger(a.logger),
		server.WithMaxBodyBytes(cfg.MaxBodyBytes),
	}
	if opts.metrics {
		mcfg, err := metrics.LoadConfig()
		if err != nil {
			return err
		}
		obs := metrics.NewObserver(mcfg, nil)
		vopts = append(vopts, validator.WithObserver(obs))
		hopts = append(hopts, server.WithMetrics(obs.Handler()))
	}

	handler := server.NewHandler(validator.New(vopts...), hopts...)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(server.New(cfg, handler, a.logger).Run(ctx))
	if watcher != nil {
		g.Go(func() error { return watcher.Watch(ctx) })
	}
	return g.Wait()
}
