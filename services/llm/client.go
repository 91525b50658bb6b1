// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package llm is the boundary between the deterministic pipeline and the
language model. The rest of the system sees a single text-in, text-out
contract; provider selection, retries, and rate limiting stay behind it.
*/
package llm

import (
	"context"
)

// GenerationParams tunes a single generation request. Nil pointer
// fields fall through to the provider's defaults.
type GenerationParams struct {
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	Stop        []string
}

// Client generates text from a prompt.
//
// # Description
//
//	Implementations must honor ctx cancellation and return the raw
//	provider error on failure; the caller decides whether to retry or
//	fall back.
//
// # Thread Safety
//
//	Implementations must be safe for concurrent use.
type Client interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// FloatPtr is a convenience for literal GenerationParams.
func FloatPtr(v float32) *float32 { return &v }

// IntPtr is a convenience for literal GenerationParams.
func IntPtr(v int) *int { return &v }
