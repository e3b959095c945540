// Package poll implements the retry-until-ready primitive shared by every
// workflow stage that waits on eventually consistent remote state: recording
// availability, transcript export, and AI summary completion.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrExhausted is returned after the attempt budget is spent without the
// producer reporting a ready value.
var ErrExhausted = errors.New("poll budget exhausted")

const (
	// DefaultMaxAttempts bounds how many times a producer is invoked.
	DefaultMaxAttempts = 20
	// DefaultBaseDelay is multiplied by (attempt+1) between attempts, giving
	// the linear 10s, 20s, ... sequence. Worst case across 20 attempts is
	// 2100 seconds.
	DefaultBaseDelay = 10 * time.Second
)

// Producer makes one remote observation. It returns the value and ready=true
// once the remote state exists. A false ready with a nil error means "not
// yet"; a non-nil error also counts as a failed attempt.
type Producer[T any] func(ctx context.Context) (T, bool, error)

// Option customizes poller behavior.
type Option func(*settings)

type settings struct {
	baseDelay time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// WithBaseDelay overrides the base delay unit.
func WithBaseDelay(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.baseDelay = d
		}
	}
}

// WithSleep replaces the sleep function. Tests use this to record the delay
// sequence without waiting.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *settings) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// Until invokes producer up to maxAttempts times, sleeping baseDelay*(n+1)
// after the n-th failed attempt. The first ready result is returned
// immediately. No sleep follows the final attempt, and no attempt beyond
// maxAttempts is ever made.
func Until[T any](ctx context.Context, maxAttempts int, producer Producer[T], opts ...Option) (T, error) {
	var zero T
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	cfg := settings{
		baseDelay: DefaultBaseDelay,
		sleep:     sleepWithContext,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		value, ready, err := producer(ctx)
		if err != nil {
			lastErr = err
		} else if ready {
			return value, nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		delay := cfg.baseDelay * time.Duration(attempt+1)
		if err := cfg.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	if lastErr != nil {
		return zero, errors.Join(ErrExhausted, lastErr)
	}
	return zero, ErrExhausted
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
