// Package resilience wraps outbound calls (push transport, weather
// provider) with a circuit breaker and a deadline, so a flapping external
// dependency degrades to TransientFailure without blocking the request
// path. Grounded on tomtom215-cartographus's use of sony/gobreaker.
package resilience

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
)

// Breaker wraps a named external dependency call.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a Breaker named name. It trips after 5 consecutive failures
// and stays open for 30 seconds before allowing a trial request.
func New[T any](name string) *Breaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// Call runs fn with a deadline, through the circuit breaker. Any failure
// (breaker-open or fn error) is surfaced as dberrors.ErrTransientFailure so
// callers never have to special-case the breaker's own error type.
func (b *Breaker[T]) Call(ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := b.cb.Execute(func() (T, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", dberrors.ErrTransientFailure, err)
	}
	return result, nil
}
