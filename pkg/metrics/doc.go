// Package metrics exports validation metrics to Prometheus.
//
// Observer implements validator.Observer and is plugged into a validator:
//
//	obs := metrics.NewObserver(metrics.Config{}, nil)
//	v := validator.New(validator.WithObserver(obs))
//	http.Handle("/metrics", obs.Handler())
package metrics
