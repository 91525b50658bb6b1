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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails a configurable number of times before succeeding.
type flakyClient struct {
	failures int
	calls    int
}

func (f *flakyClient) Generate(_ context.Context, _ string, _ GenerationParams) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", errors.New("transient provider failure")
	}
	return "generated text", nil
}

func noSleep() (RetryOption, *[]time.Duration) {
	var delays []time.Duration
	return withSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}), &delays
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	inner := &flakyClient{failures: 0}
	opt, delays := noSleep()
	client := NewRetryingClient(inner, nil, opt)

	text, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, 1, inner.calls)
	assert.Empty(t, *delays)
}

func TestRetryExponentialBackoff(t *testing.T) {
	inner := &flakyClient{failures: 2}
	opt, delays := noSleep()
	client := NewRetryingClient(inner, nil, opt)

	text, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, 3, inner.calls)
	// 1s then 2s with the default base delay.
	require.Len(t, *delays, 2)
	assert.Equal(t, 1*time.Second, (*delays)[0])
	assert.Equal(t, 2*time.Second, (*delays)[1])
}

func TestRetryExhaustsBudget(t *testing.T) {
	inner := &flakyClient{failures: 10}
	opt, _ := noSleep()
	client := NewRetryingClient(inner, nil, opt)

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, 3, inner.calls)
}

func TestRetryRespectsCancellation(t *testing.T) {
	inner := &flakyClient{failures: 10}
	client := NewRetryingClient(inner, nil,
		withSleep(func(ctx context.Context, _ time.Duration) error {
			return ctx.Err()
		}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, "prompt", GenerationParams{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls, "no retries after cancellation")
}

// countingClient records calls around an inner client.
type countingClient struct {
	inner Client
	calls int
}

func (c *countingClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	c.calls++
	return c.inner.Generate(ctx, prompt, params)
}

func TestRetryDoesNotRetryDisabledBackend(t *testing.T) {
	inner := &countingClient{inner: NewDisabledClient()}
	opt, delays := noSleep()
	client := NewRetryingClient(inner, nil, opt)

	_, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, 1, inner.calls, "disabled backend must fail without retrying")
	assert.Empty(t, *delays, "disabled backend must not back off")
}

func TestRetryCustomAttempts(t *testing.T) {
	inner := &flakyClient{failures: 4}
	opt, _ := noSleep()
	client := NewRetryingClient(inner, nil, opt, WithMaxAttempts(5))

	text, err := client.Generate(context.Background(), "prompt", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, 5, inner.calls)
}
