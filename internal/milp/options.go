package milp

import "time"

// Option tunes a single solve.
type Option func(*Config)

// Config is the resolved set of options. Backends ignore fields they cannot honor.
type Config struct {
	Threads   int
	TimeLimit time.Duration
	Output    bool
	MIPRelGap float64
	NodeLimit int
}

func NewConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// WithThreads is a worker-count hint.
func WithThreads(n int) Option {
	return func(c *Config) { c.Threads = n }
}

func WithTimeLimit(d time.Duration) Option {
	return func(c *Config) { c.TimeLimit = d }
}

// WithOutput enables backend logging.
func WithOutput(enabled bool) Option {
	return func(c *Config) { c.Output = enabled }
}

func WithMIPRelGap(gap float64) Option {
	return func(c *Config) { c.MIPRelGap = gap }
}

// WithNodeLimit caps the number of branch-and-bound nodes.
func WithNodeLimit(n int) Option {
	return func(c *Config) { c.NodeLimit = n }
}
