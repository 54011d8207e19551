package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrParsingConfig is returned when the metrics environment variables are invalid.
var ErrParsingConfig = errors.New("metrics: failed to parse environment variables into config")

// Config controls metric naming and histogram buckets.
type Config struct {
	Namespace string `env:"FIELDRULES_METRICS_NAMESPACE" envDefault:"fieldrules"`
	Subsystem string `env:"FIELDRULES_METRICS_SUBSYSTEM" envDefault:"validator"`
	// DurationBuckets are used for both rule and field durations, in seconds.
	DurationBuckets []float64 `env:"FIELDRULES_METRICS_BUCKETS" envSeparator:","`
}

// LoadConfig reads Config from FIELDRULES_METRICS_* environment variables.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// DefaultBuckets cover 1µs to roughly 33ms. Rules are plain predicates and
// should stay at the low end.
var DefaultBuckets = prometheus.ExponentialBuckets(0.000001, 2, 16)

// Observer records validation metrics. It implements validator.Observer.
//
// Metrics:
//   - <ns>_<sub>_rules_evaluated_total: rule invocations by rule and result
//   - <ns>_<sub>_rule_duration_seconds: rule invocation duration by rule
//   - <ns>_<sub>_fields_validated_total: completed field validations by result
//   - <ns>_<sub>_fields_skipped_total: empty optional fields whose rules were skipped
//   - <ns>_<sub>_field_duration_seconds: whole field validation duration
//
// Field names are not used as labels, they are unbounded.
type Observer struct {
	registry *prometheus.Registry

	rulesTotal    *prometheus.CounterVec
	ruleDuration  *prometheus.HistogramVec
	fieldsTotal   *prometheus.CounterVec
	fieldsSkipped prometheus.Counter
	fieldDuration prometheus.Histogram
}

// NewObserver creates the metrics and registers them with registry. If
// registry is nil, a new one is created. It panics if the metrics are
// already registered, like prometheus.MustRegister.
func NewObserver(cfg Config, registry *prometheus.Registry) *Observer {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "fieldrules"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "validator"
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = DefaultBuckets
	}

	o := &Observer{
		registry: registry,
		rulesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_evaluated_total",
				Help:      "Total number of rule evaluations.",
			},
			[]string{"rule", "result"},
		),
		ruleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_duration_seconds",
				Help:      "Duration of rule evaluations in seconds.",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"rule"},
		),
		fieldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fields_validated_total",
				Help:      "Total number of field validations.",
			},
			[]string{"result"},
		),
		fieldsSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fields_skipped_total",
				Help:      "Total number of empty optional fields whose rules were skipped.",
			},
		),
		fieldDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "field_duration_seconds",
				Help:      "Duration of field validations in seconds.",
				Buckets:   cfg.DurationBuckets,
			},
		),
	}

	registry.MustRegister(
		o.rulesTotal,
		o.ruleDuration,
		o.fieldsTotal,
		o.fieldsSkipped,
		o.fieldDuration,
	)
	return o
}

// RuleEvaluated records one rule invocation.
func (o *Observer) RuleEvaluated(_ context.Context, rule string, valid bool, elapsed time.Duration) {
	o.rulesTotal.WithLabelValues(rule, result(valid, "pass", "fail")).Inc()
	o.ruleDuration.WithLabelValues(rule).Observe(elapsed.Seconds())
}

// FieldValidated records one completed field validation.
func (o *Observer) FieldValidated(_ context.Context, _ string, valid, skipped bool, elapsed time.Duration) {
	o.fieldsTotal.WithLabelValues(result(valid, "valid", "invalid")).Inc()
	if skipped {
		o.fieldsSkipped.Inc()
	}
	o.fieldDuration.Observe(elapsed.Seconds())
}

// Registry returns the registry the metrics are registered with.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

func result(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
