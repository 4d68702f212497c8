package policy

import (
	"math"
	"time"
)

// Retry strategies recognised by the engine.
const (
	TypeNone        = "none"
	TypeFixed       = "fixed"
	TypeExponential = "exponential"
)

// Retry is a serialisable retry policy.  It can be declared on a workflow's
// errorHandling section, on an individual service_call step or installed as
// the invoker-wide default.
//
//   - MaxRetries counts retries, not attempts: MaxRetries=3 allows up to four
//     calls in total.
//   - Delay/MaxDelay are duration strings ("250ms", "1s"); invalid or empty
//     values fall back to the package defaults.
type Retry struct {
	Type       string  `json:"type,omitempty" yaml:"type,omitempty"`
	MaxRetries int     `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Delay      string  `json:"delay,omitempty" yaml:"delay,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
	MaxDelay   string  `json:"maxDelay,omitempty" yaml:"maxDelay,omitempty"`
}

// Default returns the invoker default policy: exponential backoff starting at
// one second, doubling per attempt and capped at ten seconds.
func Default() *Retry {
	return &Retry{
		Type:       TypeExponential,
		MaxRetries: 3,
		Delay:      "1s",
		Multiplier: 2,
		MaxDelay:   "10s",
	}
}

// ShouldRetry reports whether another attempt is allowed after the supplied
// number of already-performed retries.
func (r *Retry) ShouldRetry(retries int) bool {
	if r == nil || r.Type == TypeNone {
		return false
	}
	return retries < r.MaxRetries
}

// Backoff returns the delay preceding the given retry attempt (1-based).
// For the exponential type the delay is baseDelay * multiplier^(attempt-1),
// capped at MaxDelay.
func (r *Retry) Backoff(attempt int) time.Duration {
	if r == nil {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	base := r.baseDelay()
	switch r.Type {
	case TypeExponential:
		mult := r.Multiplier
		if mult <= 1 {
			mult = 2
		}
		delay := time.Duration(float64(base) * math.Pow(mult, float64(attempt-1)))
		if max := r.maxDelay(); max > 0 && delay > max {
			delay = max
		}
		return delay
	default:
		return base
	}
}

func (r *Retry) baseDelay() time.Duration {
	if r.Delay != "" {
		if d, err := time.ParseDuration(r.Delay); err == nil {
			return d
		}
	}
	return time.Second
}

func (r *Retry) maxDelay() time.Duration {
	if r.MaxDelay != "" {
		if d, err := time.ParseDuration(r.MaxDelay); err == nil {
			return d
		}
	}
	return 10 * time.Second
}

// Clone returns a copy so callers can adjust limits without mutating shared
// defaults.
func (r *Retry) Clone() *Retry {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
