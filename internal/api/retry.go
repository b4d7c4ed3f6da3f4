package api

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Kind separates reads from writes; they retry differently
type Kind int

const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// RetryConfig tunes the retry policy
type RetryConfig struct {
	QueryRetries     int           `yaml:"queryRetries"`
	ThrottledRetries int           `yaml:"throttledRetries"`
	MutationRetries  int           `yaml:"mutationRetries"`
	InitialInterval  time.Duration `yaml:"initialInterval"`
	MaxInterval      time.Duration `yaml:"maxInterval"`
}

// DefaultRetry mirrors the storefront UI: three retries for reads, two for reads that
// were throttled or timed out, two for writes, exponential from one second up to 30s.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		QueryRetries:     3,
		ThrottledRetries: 2,
		MutationRetries:  2,
		InitialInterval:  time.Second,
		MaxInterval:      30 * time.Second,
	}
}

// Policy decides whether a failed call is attempted again
type Policy struct {
	cfg RetryConfig
}

func NewPolicy(cfg RetryConfig) Policy {
	return Policy{cfg: cfg}
}

// ShouldRetry reports whether a call of kind that failed with err after `retries`
// earlier retries gets another attempt. Client errors other than 408 and 429 are final,
// as is anything that is not an *Error (cancellation, encoding).
func (p Policy) ShouldRetry(kind Kind, retries int, err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) || !apiErr.retryable() {
		return false
	}
	if kind == Mutation {
		return retries < p.cfg.MutationRetries
	}
	if throttled(apiErr.Status) {
		return retries < p.cfg.ThrottledRetries
	}
	return retries < p.cfg.QueryRetries
}

func (p Policy) maxTries(kind Kind) uint {
	n := p.cfg.QueryRetries
	if p.cfg.ThrottledRetries > n {
		n = p.cfg.ThrottledRetries
	}
	if kind == Mutation {
		n = p.cfg.MutationRetries
	}
	return uint(n + 1)
}

func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.cfg.InitialInterval > 0 {
		b.InitialInterval = p.cfg.InitialInterval
	}
	if p.cfg.MaxInterval > 0 {
		b.MaxInterval = p.cfg.MaxInterval
	}
	b.Multiplier = 2
	return b
}
