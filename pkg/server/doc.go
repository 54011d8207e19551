// Package server exposes a validator.Validator over HTTP.
//
// NewHandler builds a chi router serving POST /validate, the rule catalog
// and, optionally, Prometheus metrics. Server runs a handler with graceful
// shutdown and fits into an errgroup:
//
//	v := validator.New(validator.WithRegistry(reg), validator.WithMessages(dict))
//	srv := server.New(cfg, server.NewHandler(v), log)
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx))
//	err := g.Wait()
//
// A validation request carries the value and the rule declaration in either
// form:
//
//	{"value": "", "rules": "required|min:3", "field": "name"}
//	{"value": 15, "rules": {"between": [1, 10]}}
//
// Validation failures are reported with status 200 and "valid": false.
// Malformed declarations and unknown rules get 400.
package server
