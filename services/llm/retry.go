// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxAttempts       = 3
	defaultBaseDelay         = 1 * time.Second
	defaultPerAttemptTimeout = 30 * time.Second
)

// RetryingClient wraps a Client with bounded retries, exponential
// backoff, a per-attempt timeout, and optional rate limiting.
//
// # Description
//
//	Attempt n waits baseDelay * 2^(n-1) before retrying: 1s, 2s, 4s
//	with the defaults. Context cancellation aborts both waits and
//	in-flight attempts. The last provider error is returned when all
//	attempts fail. ErrDisabled is never retried; a disabled backend
//	fails on the first attempt with no backoff.
//
// # Thread Safety
//
//	Safe for concurrent use.
type RetryingClient struct {
	inner             Client
	limiter           *rate.Limiter
	logger            *slog.Logger
	maxAttempts       int
	baseDelay         time.Duration
	perAttemptTimeout time.Duration
	sleep             func(ctx context.Context, d time.Duration) error
}

// RetryOption customizes a RetryingClient.
type RetryOption func(*RetryingClient)

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(n int) RetryOption {
	return func(r *RetryingClient) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithBaseDelay overrides the first backoff delay.
func WithBaseDelay(d time.Duration) RetryOption {
	return func(r *RetryingClient) {
		if d > 0 {
			r.baseDelay = d
		}
	}
}

// WithPerAttemptTimeout overrides the per-attempt deadline.
func WithPerAttemptTimeout(d time.Duration) RetryOption {
	return func(r *RetryingClient) {
		if d > 0 {
			r.perAttemptTimeout = d
		}
	}
}

// WithRateLimiter throttles attempts through limiter.
func WithRateLimiter(limiter *rate.Limiter) RetryOption {
	return func(r *RetryingClient) { r.limiter = limiter }
}

// withSleep replaces the backoff sleeper. Test hook.
func withSleep(fn func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(r *RetryingClient) { r.sleep = fn }
}

// NewRetryingClient wraps inner with the default 3-attempt budget.
func NewRetryingClient(inner Client, logger *slog.Logger, opts ...RetryOption) *RetryingClient {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RetryingClient{
		inner:             inner,
		logger:            logger,
		maxAttempts:       defaultMaxAttempts,
		baseDelay:         defaultBaseDelay,
		perAttemptTimeout: defaultPerAttemptTimeout,
		sleep:             sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate implements Client.
func (r *RetryingClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := r.baseDelay << (attempt - 2)
			r.logger.Warn("llm attempt failed, backing off",
				slog.Int("attempt", attempt-1),
				slog.Duration("delay", delay),
				slog.String("error", lastErr.Error()))
			if err := r.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("llm rate limit wait: %w", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.perAttemptTimeout)
		text, err := r.inner.Generate(attemptCtx, prompt, params)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err

		// A disabled backend cannot succeed on a later attempt.
		if errors.Is(err, ErrDisabled) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("llm generation failed after %d attempts: %w", r.maxAttempts, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
