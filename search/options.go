package search

import (
	"errors"
	"fmt"
)

const (
	// DefaultMaxResults is the number of hits retained when WithMaxResults is
	// not provided.
	DefaultMaxResults = 20

	// DefaultThreshold is the minimum relevance score applied when
	// WithThreshold is not provided.
	DefaultThreshold = 0.1
)

// maxIndexableRecords is a defensive bound on construction. Callers feed the
// index from paginated API responses, so collections past this size indicate
// a caller bug rather than a real workload.
const maxIndexableRecords = 10_000

// ErrInvalidConfiguration is the sentinel error matched by every
// ConfigurationError via errors.Is.
var ErrInvalidConfiguration = errors.New("invalid index configuration")

// ConfigurationError reports an invalid option passed to CreateIndex.
// Invalid values are surfaced immediately, never clamped, so a caller cannot
// end up silently searching with a configuration it did not ask for.
type ConfigurationError struct {
	Option  string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for option '%s': %s", e.Option, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(option, message string) *ConfigurationError {
	return &ConfigurationError{Option: option, Message: message}
}

type options struct {
	maxResults int
	threshold  float64
}

// Option configures CreateIndex. Omitted options fall back to
// DefaultMaxResults and DefaultThreshold.
type Option func(*options)

// WithMaxResults sets the maximum number of hits a search returns.
// Values <= 0 cause CreateIndex to fail with a ConfigurationError.
func WithMaxResults(n int) Option {
	return func(o *options) {
		o.maxResults = n
	}
}

// WithThreshold sets the minimum relevance score for a record to appear in
// results. Values outside [0, 1] cause CreateIndex to fail with a
// ConfigurationError. A threshold of 0 is valid and keeps every record that
// is not strictly below it.
func WithThreshold(t float64) Option {
	return func(o *options) {
		o.threshold = t
	}
}

func applyOptions(opts []Option) (options, error) {
	o := options{
		maxResults: DefaultMaxResults,
		threshold:  DefaultThreshold,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxResults <= 0 {
		return options{}, NewConfigurationError("maxResults", fmt.Sprintf("must be a positive integer, got %d", o.maxResults))
	}
	if o.threshold < 0 || o.threshold > 1 {
		return options{}, NewConfigurationError("threshold", fmt.Sprintf("must be within [0, 1], got %g", o.threshold))
	}
	return o, nil
}
