package status

import "log/slog"

type config struct {
	logger      *slog.Logger
	strictNames bool
}

// Option configures a Machine.
type Option func(*config)

// WithLogger sets the logger used for diagnostics. Aborted operations are
// reported at warn level, silent fallbacks at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrictStateNames makes AddState reject a state whose name is already
// taken by a different state instead of replacing it. States passed to New
// are always indexed last-write-wins.
func WithStrictStateNames() Option {
	return func(c *config) {
		c.strictNames = true
	}
}
