package point

import "log/slog"

// Option configures a SQLiteStore.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	pragmas []string
}

// WithLogger configures structured logging for store operations.
// Pass nil to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithPragmas overrides the PRAGMA statements executed when Open connects.
// By default engine.FilePragmas or engine.MemoryPragmas are used.
func WithPragmas(pragmas ...string) Option {
	return func(o *options) {
		o.pragmas = append([]string(nil), pragmas...)
	}
}

func applyOptions(optFns []Option) options {
	var o options
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
