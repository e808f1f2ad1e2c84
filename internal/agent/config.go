package agent

import "time"

// Default values for Config.
const (
	DefaultMaxSteps     = 10
	DefaultTimeout      = 5 * time.Minute
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Config controls the orchestrator loop.
type Config struct {
	// MaxSteps is the step budget of one run.
	MaxSteps int `yaml:"max_steps"`

	// Timeout is the maximum wall-clock duration of one run.
	Timeout time.Duration `yaml:"timeout"`

	// Retries is how many extra attempts a step gets when it ends in a
	// timeout or rate_limited condition. Zero disables retries.
	Retries int `yaml:"retries"`

	// RetryBackoff is the wait before each retry.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}
