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
)

// ErrDisabled is returned by the disabled client.
var ErrDisabled = errors.New("llm backend disabled")

// DisabledClient always fails, which drives every caller onto its
// deterministic fallback. Used when no provider is configured: the
// service still answers, just without prose enhancement.
type DisabledClient struct{}

// NewDisabledClient creates the always-failing client.
func NewDisabledClient() *DisabledClient { return &DisabledClient{} }

// Generate implements Client.
func (c *DisabledClient) Generate(_ context.Context, _ string, _ GenerationParams) (string, error) {
	return "", ErrDisabled
}
