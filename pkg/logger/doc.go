// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// Every component of the module (validator, dictionary, watcher, CLI) logs
// through loggers built here. The package exposes a single factory – New – that creates a *slog.Logger configured by
// a set of Option functions. These options allow you to:
//
//   • Select an output format (text or json)
//   • Set the minimum log level
//   • Supply default slog.Attr values applied to every record
//   • Register ContextExtractor callbacks that inject attributes pulled from a
//     context value (for example a request id) every time Handle is invoked.
//
// # Architecture
//
// Logger builds a decorated slog.Handler. First, New determines the concrete
// slog.Handler implementation – slog.NewTextHandler or slog.NewJSONHandler –
// based on the configured Format. It then wraps the handler with
// LogHandlerDecorator which is responsible for executing any registered
// ContextExtractor callbacks before delegating to the underlying handler.
//
// Helper constructors such as Rule, Field, Locale and Error live in attr.go
// and return commonly-used slog.Attr instances to keep attribute naming
// consistent across the codebase.
//
// # Usage
//
//	import "github.com/dmitrymomot/fieldrules/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithEnvironment(os.Getenv("FIELDRULES_ENV"), "fieldrules"),
//	        logger.WithContextValue("form", ctxKeyForm),
//	    )
//
//	    ctx := context.WithValue(context.Background(), ctxKeyForm, "signup")
//	    log.InfoContext(ctx, "field validated",
//	        logger.Field("email"),
//	        logger.Duration(time.Since(start)),
//	    )
//	}
//
// # Configuration
//
// The behaviour of New can be tuned with a variety of Option helpers:
//
//   • WithEnvironment – level and format preset per environment (see ParseEnvironment).
//   • WithFormat – override output format.
//   • WithLevel – set a custom slog.Level (see ParseLevel).
//   • WithAttr – attach static attributes.
//   • WithContextExtractors / WithContextValue – inject attributes from context.
//
// # Error Handling
//
// Error produces an attribute only when the supplied error is non-nil,
// allowing calls like:
//
//	log.Info("dictionary reloaded", logger.Error(err))
//
// without an additional nil check. ParseLevel converts a level name taken
// from flags or the environment into a slog.Level.
package logger
