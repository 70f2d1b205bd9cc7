package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss is returned by GetJSON when an item is not cached.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnavailable marks a backend that could not be reached.
	ErrUnavailable = errors.New("cache backend unavailable")
)

// RetryableError marks a transient failure worth another attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so Backoff.Do retries it. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff retries an operation with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used for backend connection checks.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do runs fn until it succeeds, fails with an error not marked Retryable, or
// runs out of attempts. It returns ctx.Err() if ctx ends while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := range max(b.Attempts, 1) {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == b.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// nullCache never stores anything. It backs --no-cache and the "none"
// backend.
type nullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return nullCache{} }

func (nullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (nullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (nullCache) Delete(context.Context, string) error                    { return nil }
func (nullCache) Close() error                                             { return nil }
