// Package retry retries calls to external APIs with exponential backoff and turns
// their failure statuses into messages a user can act on.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Policy controls how many times and how fast a call is retried.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	BackoffFactor float64
	// NonRetryable statuses are returned to the caller on the first attempt.
	NonRetryable []int
	Logger       *zap.Logger
	// Sleep waits between attempts; nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultPolicy retries up to 3 times starting at 1s and doubling, never on auth or client errors.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:    3,
		BaseDelay:     time.Second,
		BackoffFactor: 2,
		NonRetryable:  []int{400, 401, 403, 404, 422},
	}
}

// StatusError is implemented by errors that carry the HTTP status of a failed call.
type StatusError interface {
	error
	HTTPStatus() int
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so Do returns it without retrying. Do unwraps the mark.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Delay returns the wait before retry number attempt+1.
func (p Policy) Delay(attempt int) time.Duration {
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt)))
}

// Retryable reports whether a failed call with status should be tried again.
// Status 0 means no response was received.
func (p Policy) Retryable(status int) bool {
	return !slices.Contains(p.NonRetryable, status)
}

func (p Policy) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p Policy) wait(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls op until it succeeds, fails with a non-retryable status, or the retry budget runs out.
// The status of a failure is read from errors implementing StatusError; other errors count as
// network failures and are retried.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		var pe *permanentError
		if errors.As(err, &pe) {
			return zero, pe.err
		}

		status := 0
		var se StatusError
		if errors.As(err, &se) {
			status = se.HTTPStatus()
		}
		if !p.Retryable(status) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		if attempt < p.MaxRetries {
			delay := p.Delay(attempt)
			p.logger().Warn("API request failed, retrying",
				zap.Int("status", status),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", p.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(err))
			if werr := p.wait(ctx, delay); werr != nil {
				return zero, werr
			}
		}
	}

	return zero, lastErr
}

// DoHTTP sends the request built by newReq, retrying network errors and retryable statuses.
// Like a plain client call, any response that arrives is returned, successful or not, so the
// caller can read the error body. An error is returned only when no response was received.
func DoHTTP(ctx context.Context, p Policy, client *http.Client, newReq func(context.Context) (*http.Request, error)) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		req, err := newReq(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err == nil {
			if resp.StatusCode < 300 || !p.Retryable(resp.StatusCode) || attempt == p.MaxRetries {
				return resp, nil
			}
			drain(resp)
			lastErr = fmt.Errorf("HTTP status %d", resp.StatusCode)
		} else {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
		}

		if attempt < p.MaxRetries {
			delay := p.Delay(attempt)
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			p.logger().Warn("API request failed, retrying",
				zap.Int("status", status),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", p.MaxRetries),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if werr := p.wait(ctx, delay); werr != nil {
				return nil, werr
			}
		}
	}

	if lastErr == nil {
		lastErr = errors.New("request failed after retries")
	}
	return nil, lastErr
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
