package conduit

import "fmt"

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON, YAML, environment variables, etc. The zero-value is
// useful, nested fields inherit their package defaults.
type Config struct {
	Processor ProcessorConfig `json:"processor" yaml:"processor"`
	Invoker   InvokerConfig   `json:"invoker" yaml:"invoker"`
}

type ProcessorConfig struct {
	WorkerCount int `json:"workers" yaml:"workers"`
}

type InvokerConfig struct {
	// TimeoutMs bounds a single service-call attempt.
	TimeoutMs int `json:"timeout" yaml:"timeout"`
}

// DefaultConfig returns a Config populated with the package defaults. Callers
// may modify the returned struct before passing it to New via WithConfig.
func DefaultConfig() *Config {
	return &Config{
		Processor: ProcessorConfig{WorkerCount: 5},
		Invoker:   InvokerConfig{TimeoutMs: 30000},
	}
}

// applyDefaults fills zero-valued fields with the package defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Processor.WorkerCount == 0 {
		c.Processor.WorkerCount = defaults.Processor.WorkerCount
	}
	if c.Invoker.TimeoutMs == 0 {
		c.Invoker.TimeoutMs = defaults.Invoker.TimeoutMs
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.workerCount must be > 0")
	}
	if c.Invoker.TimeoutMs < 0 {
		return fmt.Errorf("invoker.timeout must be >= 0")
	}
	return nil
}
