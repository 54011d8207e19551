package i18n

import "log/slog"

// Option configures a Dictionary instance.
type Option func(*Dictionary)

// WithDefaultMessage sets the template used when the active locale has no
// message for a rule. The zero Template keeps the built-in fallback.
func WithDefaultMessage(tmpl Template) Option {
	return func(d *Dictionary) {
		d.defaultMessage = tmpl
	}
}

// WithLogger provides a customizable logger for the dictionary.
// If not specified, a discard logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dictionary) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMissingMessagesLogging controls whether lookups that find no locale
// message are logged. Default is false to avoid excessive logging.
func WithMissingMessagesLogging(log bool) Option {
	return func(d *Dictionary) {
		d.missingLogMode = log
	}
}
