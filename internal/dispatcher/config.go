package dispatcher

// Config holds dispatcher configuration options.
type Config struct {
	// EnableMetrics enables per-command outcome statistics.
	EnableMetrics bool

	// RestoreGUICapture cancels Ready mouse commands when the GUI starts
	// wanting the mouse.
	RestoreGUICapture bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableMetrics:     false,
		RestoreGUICapture: true,
	}
}

// WithMetrics returns a copy of the config with metrics enabled.
func (c Config) WithMetrics() Config {
	c.EnableMetrics = true
	return c
}
